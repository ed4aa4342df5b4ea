package binex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGPSRawEphemeris_EncodeDecodeRoundtrip(t *testing.T) {
	var sub [72]byte
	for i := range sub {
		sub[i] = byte(i)
	}
	e := GPSRawEphemeris{PRN: 5, TOW: 123456, Subframe: sub}

	encoded := e.Encode()
	assert.Len(t, encoded, GPSRawEphemerisEncodedLen)

	got, err := DecodeGPSRawEphemeris(encoded)
	require.NoError(t, err)
	assert.Equal(t, e, got)
}

func TestDecodeGPSRawEphemeris_WrongLength(t *testing.T) {
	_, err := DecodeGPSRawEphemeris([]byte{1, 2, 3})
	require.Error(t, err)
}
