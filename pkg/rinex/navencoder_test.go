package rinex

import (
	"bufio"
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/de-bkg/gognss/pkg/gnss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNavEncoder_WriteEphemeris_roundtrip(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	orig := &EphGPS{
		PRN:            PRN{Sys: gnss.SysGPS, Num: 1},
		TOC:            time.Date(2020, 6, 25, 0, 0, 0, 0, time.UTC),
		ClockBias:      1.234567890123e-04,
		ClockDrift:     -2.2e-12,
		ClockDriftRate: 0,
		IODE:           71,
		Crs:            -69.34375,
		DeltaN:         4.2e-09,
		M0:             1.1,
		Cuc:            -1.1e-06,
		Ecc:            0.0021,
		Cus:            9.0e-06,
		SqrtA:          5153.6,
		Toe:            345600,
		URA:            2,
		Health:         0,
	}

	var buf bytes.Buffer
	enc := NewNavEncoder(&buf)
	require.NoError(enc.WriteEphemeris(orig))

	dec := &NavDecoder{Header: NavHeader{RINEXVersion: 3.04}, sc: bufio.NewScanner(strings.NewReader(buf.String()))}
	require.True(dec.readLine())
	err := dec.decodeEPH(gnss.SysGPS)
	require.NoError(err)

	got, ok := dec.Ephemeris().(*EphGPS)
	require.True(ok)
	assert.Equal(orig.PRN, got.PRN)
	assert.Equal(orig.TOC, got.TOC)
	assert.InDelta(orig.ClockBias, got.ClockBias, 1e-15)
	assert.InDelta(orig.Crs, got.Crs, 1e-9)
	assert.InDelta(orig.Ecc, got.Ecc, 1e-15)
	assert.InDelta(orig.SqrtA, got.SqrtA, 1e-6)
}

func TestFormatNavFloat(t *testing.T) {
	assert := assert.New(t)
	for _, v := range []float64{0, 1, -1, 0.1, -0.1, 123.456, -9.87e-12, 1e20} {
		s := formatNavFloat(v)
		assert.Len(s, 19)
		got, err := parseFloat(s)
		assert.NoError(err)
		assert.InEpsilon(v+1, got+1, 1e-9, "round-trip of %v", v)
	}
}
