package rinex

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIonexEncoderDecoder_RoundTrip(t *testing.T) {
	assert := assert.New(t)

	hdr := IonexHeader{
		RINEXVersion:    1.0,
		RINEXType:       "I",
		Pgm:             "rnxgo",
		RunBy:           "BKG",
		Description:     []string{"global ionosphere map"},
		EpochOfFirstMap: time.Date(2020, 6, 25, 0, 0, 0, 0, time.UTC),
		EpochOfLastMap:  time.Date(2020, 6, 25, 2, 0, 0, 0, time.UTC),
		IntervalSec:     7200,
		NumMaps:         2,
		MappingFunction: "NONE",
		ElevationCutoff: 0,
		BaseRadius:      6371.0,
		MapDim:          2,
		Hgt:             IonexGrid{Start: 450, End: 450, Step: 0},
		Lat:             IonexGrid{Start: 2.5, End: -2.5, Step: -2.5},
		Lon:             IonexGrid{Start: -5, End: 5, Step: 5},
		Exponent:        -1,
	}

	var buf bytes.Buffer
	enc := NewIonexEncoder(&buf)
	assert.NoError(enc.WriteHeader(hdr))

	epoch := hdr.EpochOfFirstMap
	recs := []IonexRecord{
		{Epoch: epoch, Lat: 2.5, Lon: -5, Hgt: 450, TEC: 10},
		{Epoch: epoch, Lat: 2.5, Lon: 0, Hgt: 450, TEC: 20},
		{Epoch: epoch, Lat: 2.5, Lon: 5, Hgt: 450, TEC: 30},
		{Epoch: epoch, Lat: 0, Lon: -5, Hgt: 450, TEC: 40},
		{Epoch: epoch, Lat: 0, Lon: 0, Hgt: 450, TEC: 50},
		{Epoch: epoch, Lat: 0, Lon: 5, Hgt: 450, TEC: 60},
		{Epoch: epoch, Lat: -2.5, Lon: -5, Hgt: 450, TEC: 70},
		{Epoch: epoch, Lat: -2.5, Lon: 0, Hgt: 450, TEC: 80},
		{Epoch: epoch, Lat: -2.5, Lon: 5, Hgt: 450, TEC: 90},
	}
	assert.NoError(enc.WriteMap(1, recs))
	assert.NoError(enc.WriteEOF())

	dec, err := NewIonexDecoder(bytes.NewReader(buf.Bytes()))
	assert.NoError(err)
	assert.Equal(hdr.NumMaps, dec.Header.NumMaps)
	assert.Equal(hdr.Lat, dec.Header.Lat)
	assert.Equal(hdr.Lon, dec.Header.Lon)
	assert.Equal(hdr.Exponent, dec.Header.Exponent)
	assert.True(hdr.EpochOfFirstMap.Equal(dec.Header.EpochOfFirstMap))

	assert.True(dec.NextMap())
	got := dec.Map()
	assert.Len(got, len(recs))
	for i, r := range recs {
		assert.Equal(r.TEC, got[i].TEC)
		assert.InDelta(r.Lat, got[i].Lat, 1e-6)
		assert.InDelta(r.Lon, got[i].Lon, 1e-6)
	}
	assert.True(epoch.Equal(dec.MapEpoch()))
	assert.False(dec.NextMap()) // only one map written
}
