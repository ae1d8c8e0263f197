// Copyright 2021-2024 hhorai. All rights reserved.
// Use of this source code is governed by a MIT license that can be found
// in the LICENSE file.

package pdcp

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSDUListInsertAscending(t *testing.T) {
	var l sduList
	l.insert(sdu{count: 5, payload: []byte{1}})
	l.insert(sdu{count: 1, payload: []byte{2, 2}})
	l.insert(sdu{count: 3, payload: []byte{3, 3, 3}})

	require.Equal(t, []uint32{1, 3, 5}, counts(l.items))
	require.Equal(t, 6, l.size)
}

func TestSDUListInsertDuplicateIsNoop(t *testing.T) {
	var l sduList
	l.insert(sdu{count: 1, payload: []byte{1}})
	l.insert(sdu{count: 1, payload: []byte{1, 2, 3}})
	require.Equal(t, 1, l.len())
	require.Equal(t, 1, l.size)
}

func TestSDUListHas(t *testing.T) {
	var l sduList
	l.insert(sdu{count: 10, payload: nil})
	require.True(t, l.has(10))
	require.False(t, l.has(11))
}

func TestSDUListDrainContiguous(t *testing.T) {
	var l sduList
	l.insert(sdu{count: 0, payload: []byte{0}})
	l.insert(sdu{count: 1, payload: []byte{1}})
	l.insert(sdu{count: 3, payload: []byte{3}})

	drained := l.drainContiguous(0)
	require.Equal(t, []uint32{0, 1}, counts(drained))
	require.Equal(t, 1, l.len())
	require.Equal(t, 1, l.size)
}

func TestSDUListDrainContiguousNoMatchReturnsNil(t *testing.T) {
	var l sduList
	l.insert(sdu{count: 5, payload: []byte{1}})
	require.Nil(t, l.drainContiguous(0))
	require.Equal(t, 1, l.len())
}

func TestSDUListDrainBelowSkipsGaps(t *testing.T) {
	var l sduList
	l.insert(sdu{count: 1, payload: []byte{1}})
	l.insert(sdu{count: 4, payload: []byte{1, 2}})
	l.insert(sdu{count: 5, payload: []byte{1, 2, 3}})

	drained := l.drainBelow(5)
	require.Equal(t, []uint32{1, 4}, counts(drained))
	require.Equal(t, 1, l.len())
	require.Equal(t, 3, l.size)
}

func counts(items []sdu) []uint32 {
	out := make([]uint32, len(items))
	for i, it := range items {
		out[i] = it.count
	}
	return out
}
