// Copyright 2021-2024 hhorai. All rights reserved.
// Use of this source code is governed by a MIT license that can be found
// in the LICENSE file.

package pdcp

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/hhorai/nr-pdcp/pdcp/metrics"
)

// BearerType distinguishes signalling (SRB) from user-plane (DRB) bearers.
// spec.md §3 keeps it opaque to the core algorithm; it is stored on the
// Entity and not read by any operation, log record or metric.
type BearerType int

const (
	Signalling BearerType = iota
	UserPlane
)

func (t BearerType) String() string {
	if t == Signalling {
		return "signalling"
	}
	return "user-plane"
}

// DeliverSDUFunc delivers a reassembled SDU upward. buf is borrowed for
// the duration of the call only; the host must copy if it needs to retain
// it (spec.md §6).
type DeliverSDUFunc func(entity *Entity, buf []byte)

// DeliverPDUFunc delivers a framed PDU downward. buf is borrowed for the
// duration of the call only. sduID is the opaque correlator passed into
// RecvSDU.
type DeliverPDUFunc func(entity *Entity, buf []byte, sduID int)

// Config are the construction-time parameters of a PDCP entity
// (spec.md §6 "Constructor parameters"). It is validated once, inside New;
// the live Entity never re-validates it.
type Config struct {
	Type  BearerType
	IsGNB bool
	RBID  uint32

	DeliverSDU DeliverSDUFunc
	DeliverPDU DeliverPDUFunc

	SNSize       SNSize
	TReordering  uint64 // same units as the t_current pushed via SetTime
	DiscardTimer uint64 // accepted, never consulted (spec.md §4.4/§9 non-goal)

	CipheringAlgorithm CipherAlgorithm
	CipheringKey       []byte // exactly 16 bytes, required iff CipheringAlgorithm != CipherNone

	// IntegrityAlgorithm/IntegrityKey are accepted for API parity with the
	// reference but integrity protection is out of scope (spec.md §1).
	// A non-zero IntegrityAlgorithm or non-nil IntegrityKey refuses
	// construction (SPEC_FULL.md §9 Open Question resolution).
	IntegrityAlgorithm int
	IntegrityKey       []byte

	// Logger and Metrics are optional external collaborators (spec.md §2).
	// Both default to no-ops; neither ever changes the algorithm's outcome.
	Logger  *slog.Logger
	Metrics metrics.Recorder
}

var (
	ErrUnsupportedSNSize       = errors.New("pdcp: sn_size must be 12 or 18")
	ErrUnsupportedCipher       = errors.New("pdcp: only ciphering algorithm 0 (none) or 2 (nea2) is supported")
	ErrMissingCipherKey        = errors.New("pdcp: ciphering key required when ciphering is enabled")
	ErrIntegrityNotSupported   = errors.New("pdcp: integrity protection is not implemented")
	ErrMissingDeliverCallbacks = errors.New("pdcp: DeliverSDU and DeliverPDU callbacks are required")
)

func (c *Config) validate() error {
	if !c.SNSize.valid() {
		return ErrUnsupportedSNSize
	}
	if c.DeliverSDU == nil || c.DeliverPDU == nil {
		return ErrMissingDeliverCallbacks
	}
	if c.CipheringAlgorithm != CipherNone && c.CipheringAlgorithm != CipherNEA2 {
		return fmt.Errorf("%w: got %d", ErrUnsupportedCipher, c.CipheringAlgorithm)
	}
	if c.CipheringAlgorithm != CipherNone && len(c.CipheringKey) != 16 {
		return ErrMissingCipherKey
	}
	if c.IntegrityAlgorithm != 0 || c.IntegrityKey != nil {
		return ErrIntegrityNotSupported
	}
	return nil
}
