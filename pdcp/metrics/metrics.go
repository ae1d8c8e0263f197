// Copyright 2021-2024 hhorai. All rights reserved.
// Use of this source code is governed by a MIT license that can be found
// in the LICENSE file.

// Package metrics is the optional observability seam for a pdcp.Entity.
// It never influences the entity's behavior; it only observes it
// (SPEC_FULL.md §2/§6).
package metrics

// Recorder receives observations from a pdcp.Entity. All methods must be
// safe to call from the goroutine driving that entity's operations; no
// Recorder implementation may block that goroutine for long.
type Recorder interface {
	// PDUSent records one downward PDU delivery from RecvSDU.
	PDUSent(rbID uint32)
	// PDUDropped records a dropped inbound PDU, labeled by reason:
	// "malformed", "control", "duplicate", or "stale".
	PDUDropped(rbID uint32, reason string)
	// SDUDelivered records one upward SDU delivery.
	SDUDelivered(rbID uint32)
	// BufferedBytes sets the current rx_size gauge.
	BufferedBytes(rbID uint32, n int)
	// TimerExpired records one t-Reordering expiry.
	TimerExpired(rbID uint32)
}

// Noop implements Recorder with no-ops. It is the default when a Config
// does not supply a Recorder.
type Noop struct{}

func (Noop) PDUSent(uint32)            {}
func (Noop) PDUDropped(uint32, string) {}
func (Noop) SDUDelivered(uint32)       {}
func (Noop) BufferedBytes(uint32, int) {}
func (Noop) TimerExpired(uint32)       {}
