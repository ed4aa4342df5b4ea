package sp3

import (
	"bytes"
	"testing"
	"time"

	"github.com/de-bkg/gognss/pkg/gnss"
	"github.com/stretchr/testify/assert"
)

func TestEncoderDecoder_RoundTrip(t *testing.T) {
	assert := assert.New(t)

	start := time.Date(2020, 6, 25, 0, 0, 0, 0, time.UTC)
	g01 := gnss.PRN{Sys: gnss.SysGPS, Num: 1}
	g02 := gnss.PRN{Sys: gnss.SysGPS, Num: 2}

	hdr := Header{
		Version:      "c",
		FileType:     "P",
		StartEpoch:   start,
		NumEpochs:    2,
		DataUsed:     "ORBIT",
		CoordSys:     "IGS14",
		OrbitType:    "HLM",
		Agency:       "IGS",
		GPSWeek:      2111,
		SecOfWeek:    0,
		Interval:     900,
		ModJulianDay: 59025,
		TimeSystem:   "GPS",
		Satellites:   []gnss.PRN{g01, g02},
		Accuracies:   []Accuracy{{SV: g01, Exp: 8}, {SV: g02, Exp: 9}},
		PosBase:      1.25,
		ClockBase:    1.025,
		Comments:     []string{"generated for a round-trip test"},
	}

	var buf bytes.Buffer
	enc := NewEncoder(&buf)
	assert.NoError(enc.WriteHeader(hdr))

	clk1 := 123.456789
	rate1 := 0.0001
	recs := []Record{
		{Epoch: start, SV: g01, Pos: Coord{X: 12345.678, Y: -23456.789, Z: 5678.123}, Clock: &clk1,
			Vel: &CoordNEU{N: 1.234, E: -2.345, Up: 0.567}, ClockRate: &rate1},
		{Epoch: start, SV: g02, Pos: Coord{X: -11111.111, Y: 22222.222, Z: -3333.333}},
	}
	assert.NoError(enc.WriteEpoch(start, recs))
	assert.NoError(enc.WriteEOF())

	dec, err := NewDecoder(bytes.NewReader(buf.Bytes()))
	assert.NoError(err)
	assert.Equal("c", dec.Header.Version)
	assert.Equal("P", dec.Header.FileType)
	assert.Equal("IGS14", dec.Header.CoordSys)
	assert.Equal([]gnss.PRN{g01, g02}, dec.Header.Satellites)
	exp, ok := dec.Header.AccuracyFor(g02)
	assert.True(ok)
	assert.Equal(9, exp)
	assert.True(start.Equal(dec.Header.StartEpoch))

	assert.True(dec.NextEpoch())
	got := dec.Records()
	assert.Len(got, 2)
	assert.Equal(g01, got[0].SV)
	assert.InDelta(12345.678, got[0].Pos.X, 1e-3)
	assert.InDelta(-23456.789, got[0].Pos.Y, 1e-3)
	assert.NotNil(got[0].Clock)
	assert.InDelta(clk1, *got[0].Clock, 1e-6)
	assert.NotNil(got[0].Vel)
	assert.InDelta(1.234, got[0].Vel.N, 1e-6)
	assert.NotNil(got[0].ClockRate)
	assert.InDelta(rate1, *got[0].ClockRate, 1e-6)

	assert.Equal(g02, got[1].SV)
	assert.Nil(got[1].Clock)
	assert.Nil(got[1].Vel)

	assert.False(dec.NextEpoch())
}
