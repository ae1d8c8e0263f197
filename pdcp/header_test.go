// Copyright 2021-2024 hhorai. All rights reserved.
// Use of this source code is governed by a MIT license that can be found
// in the LICENSE file.

package pdcp

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeHeader12Bit(t *testing.T) {
	h := encodeHeader(SN12, 0x0abc)
	require.Equal(t, []byte{0x8a, 0xbc}, h)
	require.Equal(t, byte(0x80), h[0]&0x80, "D/C bit must be set")
}

func TestEncodeHeader18Bit(t *testing.T) {
	h := encodeHeader(SN18, 0x02abcd)
	require.Equal(t, []byte{0x82, 0xab, 0xcd}, h)
}

func TestDecodeHeaderRoundTrip(t *testing.T) {
	for _, snSize := range []SNSize{SN12, SN18} {
		sn := uint32(snSize.snMax())
		header := encodeHeader(snSize, sn)
		pdu := append(header, 0xff)
		gotSN, hs, err := decodeHeader(snSize, pdu)
		require.NoError(t, err)
		require.Equal(t, sn, gotSN)
		require.Equal(t, snSize.headerSize(), hs)
	}
}

func TestDecodeHeaderTooShort(t *testing.T) {
	_, _, err := decodeHeader(SN12, nil)
	require.Error(t, err)
}

func TestDecodeHeaderMissingPayload(t *testing.T) {
	// header-only PDU: valid D/C bit, but no payload byte.
	_, _, err := decodeHeader(SN12, []byte{0x80, 0x00})
	require.Error(t, err)
}

func TestDecodeHeaderControlPDU(t *testing.T) {
	_, _, err := decodeHeader(SN12, []byte{0x00, 0x00, 0xff})
	require.Error(t, err)
	var de *headerDecodeError
	require.ErrorAs(t, err, &de)
	require.True(t, de.controlPDU)
}

func TestSNSizeDerivedConstants(t *testing.T) {
	require.Equal(t, uint32(0xfff), SN12.snMax())
	require.Equal(t, uint32(0x800), SN12.windowSize())
	require.Equal(t, uint32(0x3ffff), SN18.snMax())
	require.Equal(t, uint32(0x20000), SN18.windowSize())
}
