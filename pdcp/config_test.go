// Copyright 2021-2024 hhorai. All rights reserved.
// Use of this source code is governed by a MIT license that can be found
// in the LICENSE file.

package pdcp

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func noopCallbacks() (DeliverSDUFunc, DeliverPDUFunc) {
	return func(*Entity, []byte) {}, func(*Entity, []byte, int) {}
}

func TestNewRejectsBadSNSize(t *testing.T) {
	sdu, pdu := noopCallbacks()
	_, err := New(Config{SNSize: 13, DeliverSDU: sdu, DeliverPDU: pdu})
	require.True(t, errors.Is(err, ErrUnsupportedSNSize))
}

func TestNewRejectsMissingCallbacks(t *testing.T) {
	_, err := New(Config{SNSize: SN12})
	require.True(t, errors.Is(err, ErrMissingDeliverCallbacks))
}

func TestNewRejectsUnsupportedCipher(t *testing.T) {
	sdu, pdu := noopCallbacks()
	_, err := New(Config{
		SNSize: SN12, DeliverSDU: sdu, DeliverPDU: pdu,
		CipheringAlgorithm: 1,
		CipheringKey:       bytes.Repeat([]byte{1}, 16),
	})
	require.True(t, errors.Is(err, ErrUnsupportedCipher))
}

func TestNewRejectsMissingCipherKey(t *testing.T) {
	sdu, pdu := noopCallbacks()
	_, err := New(Config{
		SNSize: SN12, DeliverSDU: sdu, DeliverPDU: pdu,
		CipheringAlgorithm: CipherNEA2,
	})
	require.True(t, errors.Is(err, ErrMissingCipherKey))
}

func TestNewRejectsIntegrityKey(t *testing.T) {
	sdu, pdu := noopCallbacks()
	_, err := New(Config{
		SNSize: SN12, DeliverSDU: sdu, DeliverPDU: pdu,
		IntegrityKey: bytes.Repeat([]byte{1}, 16),
	})
	require.True(t, errors.Is(err, ErrIntegrityNotSupported))
}

func TestNewAcceptsValidConfig(t *testing.T) {
	sdu, pdu := noopCallbacks()
	e, err := New(Config{SNSize: SN12, DeliverSDU: sdu, DeliverPDU: pdu})
	require.NoError(t, err)
	require.NotNil(t, e)
}
