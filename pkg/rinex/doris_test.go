package rinex

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDorisEncoderDecoder_RoundTrip(t *testing.T) {
	assert := assert.New(t)

	hdr := DorisHeader{
		RINEXVersion: 3.04,
		RINEXType:    "D",
		Pgm:          "rnxgo",
		RunBy:        "BKG",
		Date:         "20230101 000000 UTC",
		MarkerName:   "CHAI",
		ObsTypes:     []ObsCode{"L1", "L2", "C1", "C2", "W1", "W2", "F", "P", "T", "H"},
		Stations: []DorisBeacon{
			{ID: "D01", Name: "CHAI", DOMES: "97401S005", BeaconType: "STAREC", K: 0},
			{ID: "D02", Name: "GRSA", DOMES: "38501S004", BeaconType: "STAREC", K: -1},
		},
		TimeOfFirstObs: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	var buf bytes.Buffer
	enc := NewDorisEncoder(&buf)
	assert.NoError(enc.WriteHeader(hdr))

	epo := DorisEpoch{
		Time: time.Date(2023, 1, 1, 0, 0, 30, 0, time.UTC),
		Flag: 0,
		ObsList: []DorisSatObs{
			{Station: "D02", Obss: map[ObsCode]Obs{
				"L1": {Val: 123456.789, LLI: 0, SNR: 5},
				"L2": {Val: 234567.891, LLI: 0, SNR: 6},
			}},
			{Station: "D01", Obss: map[ObsCode]Obs{
				"L1": {Val: 987654.321, LLI: 1, SNR: 7},
				"L2": {Val: 876543.219, LLI: 0, SNR: 4},
			}},
		},
	}
	assert.NoError(enc.WriteEpoch(epo))

	dec, err := NewDorisDecoder(bytes.NewReader(buf.Bytes()))
	assert.NoError(err)
	assert.Equal(hdr.MarkerName, dec.Header.MarkerName)
	assert.Len(dec.Header.Stations, 2)
	assert.Equal(StationID("D01"), dec.Header.Stations[0].ID)
	assert.Equal("97401S005", dec.Header.Stations[0].DOMES)
	assert.Equal(hdr.ObsTypes, dec.Header.ObsTypes)

	assert.True(dec.NextEpoch())
	got := dec.Epoch()
	assert.True(epo.Time.Equal(got.Time))
	assert.Len(got.ObsList, 2)

	// the encoder writes stations in ascending StationID order and the
	// decoder keeps the order of the file
	assert.Equal(StationID("D01"), got.ObsList[0].Station)
	assert.Equal(StationID("D02"), got.ObsList[1].Station)

	d01 := got.ObsList[0]
	assert.InDelta(987654.321, d01.Obss["L1"].Val, 1e-3)
	assert.Equal(int8(1), d01.Obss["L1"].LLI)
	assert.Equal(int8(7), d01.Obss["L1"].SNR)

	assert.False(dec.NextEpoch())
}

func TestNewStationID(t *testing.T) {
	assert := assert.New(t)

	id, err := NewStationID("D01")
	assert.NoError(err)
	assert.Equal(StationID("D01"), id)

	id, err = NewStationID(" 7")
	assert.NoError(err)
	assert.Equal(StationID("D07"), id)

	_, err = NewStationID("")
	assert.Error(err)
}
