// Copyright 2021-2024 hhorai. All rights reserved.
// Use of this source code is governed by a MIT license that can be found
// in the LICENSE file.

package pdcp

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNEA2RoundTrip(t *testing.T) {
	key := bytes.Repeat([]byte{0x42}, 16)

	tx, err := newNEA2Cipher(key)
	require.NoError(t, err)
	rx, err := newNEA2Cipher(key)
	require.NoError(t, err)

	plaintext := []byte("hello pdcp payload")
	buf := append([]byte(nil), plaintext...)

	tx.XORKeyStream(buf, 5, 1000, DirectionDownlink)
	require.NotEqual(t, plaintext, buf)

	rx.XORKeyStream(buf, 5, 1000, DirectionDownlink)
	require.Equal(t, plaintext, buf)
}

func TestNEA2DifferentCountDiffersKeystream(t *testing.T) {
	key := bytes.Repeat([]byte{0x01}, 16)
	c, err := newNEA2Cipher(key)
	require.NoError(t, err)

	plaintext := bytes.Repeat([]byte{0xAA}, 32)

	buf1 := append([]byte(nil), plaintext...)
	c.XORKeyStream(buf1, 1, 0, DirectionUplink)

	buf2 := append([]byte(nil), plaintext...)
	c.XORKeyStream(buf2, 1, 1, DirectionUplink)

	require.NotEqual(t, buf1, buf2)
}

func TestNEA2RejectsBadKeyLength(t *testing.T) {
	_, err := newNEA2Cipher([]byte{1, 2, 3})
	require.Error(t, err)
}

func TestNoopCipherIsIdentity(t *testing.T) {
	buf := []byte{1, 2, 3}
	var c noopCipher
	c.XORKeyStream(buf, 1, 1, DirectionUplink)
	require.Equal(t, []byte{1, 2, 3}, buf)
}
