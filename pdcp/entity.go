// Copyright 2021-2024 hhorai. All rights reserved.
// Use of this source code is governed by a MIT license that can be found
// in the LICENSE file.

// Package pdcp implements a single per-radio-bearer 5G NR PDCP entity:
// sequence numbering and (optional) ciphering on transmit, and
// COUNT/HFN reconstruction, duplicate/stale rejection, out-of-order
// buffering and in-order delivery on receive.
//
// An Entity is single-threaded with respect to itself: RecvSDU, RecvPDU,
// SetTime, SetIntegrityKey and Close must be serialized by the caller.
// It spawns no goroutines and performs no internal locking.
package pdcp

import (
	"log/slog"

	"github.com/hhorai/nr-pdcp/pdcp/metrics"
)

// Entity is one PDCP entity bound to a single radio bearer. Build one with
// New; every field below mirrors spec.md §3's state table.
type Entity struct {
	typ   BearerType
	isGNB bool
	rbID  uint32

	snSize     SNSize
	snMax      uint32
	windowSize uint32

	txNext uint32

	rxNext  uint32
	rxDeliv uint32
	rxReord uint32

	tReordering uint64
	// tReorderingStart is the timestamp the timer was armed at; meaningful
	// only while timerArmed. Kept as a separate bool rather than the
	// reference's "!= 0 means armed" sentinel, so a legitimate arm at
	// t_current == 0 isn't mistaken for "disarmed" (DESIGN.md, pdcp/entity.go).
	tReorderingStart uint64
	timerArmed       bool
	tCurrent         uint64

	discardTimer uint64 // accepted, never consulted (non-goal)

	rxList sduList

	hasCiphering bool
	cipher       Cipher

	deliverSDU DeliverSDUFunc
	deliverPDU DeliverPDUFunc

	logger  *slog.Logger
	metrics metrics.Recorder

	closed bool
}

// New constructs a PDCP entity per spec.md §6's constructor parameters,
// validating cfg and refusing construction (SPEC_FULL.md §7 class 3)
// instead of the reference's exit(1).
func New(cfg Config) (*Entity, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	e := &Entity{
		typ:          cfg.Type,
		isGNB:        cfg.IsGNB,
		rbID:         cfg.RBID,
		snSize:       cfg.SNSize,
		snMax:        cfg.SNSize.snMax(),
		windowSize:   cfg.SNSize.windowSize(),
		tReordering:  cfg.TReordering,
		discardTimer: cfg.DiscardTimer,
		deliverSDU:   cfg.DeliverSDU,
		deliverPDU:   cfg.DeliverPDU,
		logger:       cfg.Logger,
		metrics:      cfg.Metrics,
	}

	if e.logger == nil {
		e.logger = slog.Default()
	}
	if e.metrics == nil {
		e.metrics = metrics.Noop{}
	}

	if cfg.CipheringAlgorithm != CipherNone {
		c, err := newNEA2Cipher(cfg.CipheringKey)
		if err != nil {
			return nil, err
		}
		e.hasCiphering = true
		e.cipher = c
	} else {
		e.cipher = noopCipher{}
	}

	return e, nil
}

// txDirection and rxDirection compute the cipher direction bit, mirrored exactly between
// TX (spec.md §4.1) and RX (spec.md §4.2).
func (e *Entity) txDirection() Direction {
	if e.isGNB {
		return DirectionDownlink
	}
	return DirectionUplink
}

func (e *Entity) rxDirection() Direction {
	if e.isGNB {
		return DirectionUplink
	}
	return DirectionDownlink
}

// RecvSDU accepts an SDU from the upper layer, frames it with a PDCP
// header, ciphers the payload if enabled, and delivers exactly one PDU
// downward (spec.md §4.1). sduID is an opaque correlator echoed back to
// DeliverPDU.
func (e *Entity) RecvSDU(payload []byte, sduID int) {
	count := e.txNext
	sn := count & e.snMax

	header := encodeHeader(e.snSize, sn)
	buf := make([]byte, len(header)+len(payload))
	copy(buf, header)
	copy(buf[len(header):], payload)

	if e.hasCiphering {
		e.cipher.XORKeyStream(buf[len(header):], e.rbID, count, e.txDirection())
	}

	e.txNext++

	e.logger.Debug("pdcp: sent PDU", "rb_id", e.rbID, "count", count, "sn", sn, "size", len(buf))
	e.metrics.PDUSent(e.rbID)

	e.deliverPDU(e, buf, sduID)
}

// RecvPDU accepts a PDU from the lower layer: decodes the header,
// reconstructs the 32-bit COUNT from the truncated SN via HFN inference,
// deciphers, rejects duplicates/stale PDUs, buffers out-of-order arrivals,
// delivers the in-order prefix, and re-evaluates the t-Reordering timer
// (spec.md §4.2). It returns the number of SDUs delivered upward during
// this call. Malformed, duplicate, stale and control PDUs are dropped
// silently (delivered == 0, err == nil, per SPEC_FULL.md §7) — observable
// only via the logger/metrics, never via a returned error.
func (e *Entity) RecvPDU(buffer []byte) (delivered int, err error) {
	sn, headerSize, decErr := decodeHeader(e.snSize, buffer)
	if decErr != nil {
		if de, ok := decErr.(*headerDecodeError); ok && de.controlPDU {
			e.logger.Warn("pdcp: dropping control PDU on data path", "rb_id", e.rbID)
			e.metrics.PDUDropped(e.rbID, "control")
			return 0, nil
		}
		e.logger.Error("pdcp: dropping malformed PDU", "rb_id", e.rbID, "err", decErr)
		e.metrics.PDUDropped(e.rbID, "malformed")
		return 0, nil
	}

	rcvdCount := e.inferCount(sn)

	payload := append([]byte(nil), buffer[headerSize:]...)
	if e.hasCiphering {
		e.cipher.XORKeyStream(payload, e.rbID, rcvdCount, e.rxDirection())
	}

	if rcvdCount < e.rxDeliv {
		e.logger.Debug("pdcp: discard stale PDU", "rb_id", e.rbID, "count", rcvdCount, "rx_deliv", e.rxDeliv)
		e.metrics.PDUDropped(e.rbID, "stale")
		return 0, nil
	}
	if e.rxList.has(rcvdCount) {
		e.logger.Debug("pdcp: discard duplicate PDU", "rb_id", e.rbID, "count", rcvdCount)
		e.metrics.PDUDropped(e.rbID, "duplicate")
		return 0, nil
	}

	e.rxList.insert(sdu{count: rcvdCount, payload: payload})
	e.metrics.BufferedBytes(e.rbID, e.rxList.size)

	if rcvdCount >= e.rxNext {
		e.rxNext = rcvdCount + 1
	}

	if rcvdCount == e.rxDeliv {
		delivered = e.deliverPrefix(e.rxList.drainContiguous(e.rxDeliv))
	}

	e.evaluateTimerOnArrival()

	return delivered, nil
}

// inferCount implements spec.md §4.2's HFN-inference formula, taking the
// HFN of rx_deliv as rx_deliv >> sn_size. The window-offset comparisons
// are evaluated in a signed domain so the subtraction can legitimately go
// negative.
func (e *Entity) inferCount(rcvdSN uint32) uint32 {
	rxDelivSN := int64(e.rxDeliv & e.snMax)
	rxDelivHFN := int64(e.rxDeliv >> uint(e.snSize))

	sn := int64(rcvdSN)
	window := int64(e.windowSize)

	var rcvdHFN int64
	switch {
	case sn < rxDelivSN-window:
		rcvdHFN = rxDelivHFN + 1
	case sn >= rxDelivSN+window:
		rcvdHFN = rxDelivHFN - 1
	default:
		rcvdHFN = rxDelivHFN
	}

	return uint32(rcvdHFN)<<uint(e.snSize) | rcvdSN
}

// deliverPrefix delivers, in order, SDUs already drained from rx_list,
// advances rx_deliv to one past the last delivered COUNT, and returns how
// many SDUs were delivered.
func (e *Entity) deliverPrefix(drained []sdu) int {
	if len(drained) == 0 {
		return 0
	}
	for _, d := range drained {
		e.deliverSDU(e, d.payload)
		e.metrics.SDUDelivered(e.rbID)
	}
	e.rxDeliv = drained[len(drained)-1].count + 1
	e.metrics.BufferedBytes(e.rbID, e.rxList.size)
	return len(drained)
}

// evaluateTimerOnArrival implements spec.md §4.2's t-Reordering management
// step, run after every RecvPDU mutation.
func (e *Entity) evaluateTimerOnArrival() {
	// rx_deliv reaching rx_reord (not only exceeding it) means every COUNT
	// that had arrived when the timer was armed is now delivered, which is
	// what should stop t-Reordering (3GPP TS 38.323 §5.2.2.2 uses >=; the
	// OAI reference this module is grounded on uses a strict >, which
	// leaves the timer armed one delivery too long — see DESIGN.md).
	if e.timerArmed && e.rxDeliv >= e.rxReord {
		e.timerArmed = false
		e.tReorderingStart = 0
		e.logger.Debug("pdcp: t-Reordering stopped", "rb_id", e.rbID, "rx_deliv", e.rxDeliv, "rx_reord", e.rxReord, "rx_next", e.rxNext)
	}
	if !e.timerArmed && e.rxDeliv < e.rxNext {
		e.rxReord = e.rxNext
		e.tReorderingStart = e.tCurrent
		e.timerArmed = true
		e.logger.Debug("pdcp: t-Reordering armed", "rb_id", e.rbID, "rx_deliv", e.rxDeliv, "rx_reord", e.rxReord, "rx_next", e.rxNext)
	}
}

// SetTime assigns t_current and evaluates t-Reordering expiry
// (spec.md §4.3). now must be monotonically non-decreasing across calls.
func (e *Entity) SetTime(now uint64) {
	e.tCurrent = now
	e.checkReorderingExpiry()
}

func (e *Entity) checkReorderingExpiry() {
	if !e.timerArmed || e.tCurrent <= e.tReorderingStart+e.tReordering {
		return
	}

	e.timerArmed = false
	e.tReorderingStart = 0
	e.metrics.TimerExpired(e.rbID)
	e.logger.Debug("pdcp: t-Reordering expired", "rb_id", e.rbID, "rx_deliv", e.rxDeliv, "rx_reord", e.rxReord, "rx_next", e.rxNext)

	below := e.rxList.drainBelow(e.rxReord)
	for _, d := range below {
		e.deliverSDU(e, d.payload)
		e.metrics.SDUDelivered(e.rbID)
	}

	contiguous := e.rxList.drainContiguous(e.rxReord)
	for _, d := range contiguous {
		e.deliverSDU(e, d.payload)
		e.metrics.SDUDelivered(e.rbID)
	}

	// rx_deliv becomes rx_reord plus however many of the contiguous run
	// starting exactly at rx_reord were just delivered, matching the
	// reference's running "count" variable.
	e.rxDeliv = e.rxReord + uint32(len(contiguous))
	e.metrics.BufferedBytes(e.rbID, e.rxList.size)

	if e.rxDeliv < e.rxNext {
		e.rxReord = e.rxNext
		e.tReorderingStart = e.tCurrent
		e.timerArmed = true
		e.logger.Debug("pdcp: t-Reordering rearmed", "rb_id", e.rbID, "rx_deliv", e.rxDeliv, "rx_reord", e.rxReord, "rx_next", e.rxNext)
	}
}

// SetIntegrityKey exists for API parity with the reference's
// set_integrity_key operation, but always refuses: integrity protection is
// not implemented (spec.md §1/§4.4), and SPEC_FULL.md §4.4/§4.5 commits to
// refusing the key rather than silently accepting and ignoring it.
func (e *Entity) SetIntegrityKey(key [16]byte) error {
	return ErrIntegrityNotSupported
}

// Close drains rx_list and releases cipher state. After Close, no further
// operation on e is valid (spec.md §4.5).
func (e *Entity) Close() {
	e.rxList = sduList{}
	e.cipher = nil
	e.closed = true
}

// RBID returns the bearer id this entity serves (observability only).
func (e *Entity) RBID() uint32 { return e.rbID }

// Stats are the observability fields spec.md §3 calls out explicitly.
type Stats struct {
	TxNext  uint32
	RxNext  uint32
	RxDeliv uint32
	RxReord uint32
	RxSize  int
}

// Stats returns a snapshot of the entity's counters and buffer size.
func (e *Entity) Stats() Stats {
	return Stats{
		TxNext:  e.txNext,
		RxNext:  e.rxNext,
		RxDeliv: e.rxDeliv,
		RxReord: e.rxReord,
		RxSize:  e.rxList.size,
	}
}
