// Copyright 2021-2024 hhorai. All rights reserved.
// Use of this source code is governed by a MIT license that can be found
// in the LICENSE file.

package pdcp

import "sort"

// sdu is a single buffered, received-but-undelivered service data unit.
type sdu struct {
	count   uint32
	payload []byte
}

// sduList is the rx_list of spec.md §3: pending SDUs, ascending by COUNT,
// no duplicates. A sorted slice keeps insert/drain/membership at
// O(log n) search + O(n) shift, which is the shape the pack reaches for
// (see the nack-queue sorted-slice-plus-sort.Search pattern) for pending
// lists that are small and mostly drained in order.
type sduList struct {
	items []sdu
	size  int // sum of buffered payload bytes
}

// search returns the index of count in the list, or the insertion point
// and ok=false if absent.
func (l *sduList) search(count uint32) (idx int, ok bool) {
	idx = sort.Search(len(l.items), func(i int) bool { return l.items[i].count >= count })
	ok = idx < len(l.items) && l.items[idx].count == count
	return idx, ok
}

// has reports whether count is already buffered.
func (l *sduList) has(count uint32) bool {
	_, ok := l.search(count)
	return ok
}

// insert adds s in ascending-COUNT order. Caller must ensure s.count is
// not already present (spec.md's duplicate check happens before insert).
func (l *sduList) insert(s sdu) {
	idx, ok := l.search(s.count)
	if ok {
		return
	}
	l.items = append(l.items, sdu{})
	copy(l.items[idx+1:], l.items[idx:])
	l.items[idx] = s
	l.size += len(s.payload)
}

// drainContiguous removes and returns, in order, the maximal prefix of the
// list whose COUNTs form the contiguous sequence start, start+1, ….
func (l *sduList) drainContiguous(start uint32) []sdu {
	count := start
	n := 0
	for n < len(l.items) && l.items[n].count == count {
		count++
		n++
	}
	if n == 0 {
		return nil
	}
	drained := append([]sdu(nil), l.items[:n]...)
	for _, d := range drained {
		l.size -= len(d.payload)
	}
	l.items = l.items[n:]
	return drained
}

// drainBelow removes and returns, in ascending order, every buffered SDU
// with COUNT strictly less than bound. Gaps are skipped (loss on expiry).
func (l *sduList) drainBelow(bound uint32) []sdu {
	n := 0
	for n < len(l.items) && l.items[n].count < bound {
		n++
	}
	if n == 0 {
		return nil
	}
	drained := append([]sdu(nil), l.items[:n]...)
	for _, d := range drained {
		l.size -= len(d.payload)
	}
	l.items = l.items[n:]
	return drained
}

// len returns the number of buffered SDUs (observability only).
func (l *sduList) len() int { return len(l.items) }
