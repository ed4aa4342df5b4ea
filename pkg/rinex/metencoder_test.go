package rinex

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetEncoder_roundtrip(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	hdr := MeteoHeader{
		RINEXVersion: 3.04,
		Pgm:          "rnxgo",
		RunBy:        "TEST",
		MarkerName:   "BAUT",
		ObsTypes:     []MeteoObsType{"PR", "TD", "HR"},
		Sensors: []*MeteoSensor{
			{Model: "M3910031", Type: "WXTPTU", Accuracy: 1, ObservationType: "PR",
				Position: Coord{X: 3877548.3, Y: 1004400.3, Z: 4947140.2}, Height: 211.9},
		},
	}

	var buf bytes.Buffer
	enc := NewMetEncoder(&buf)
	require.NoError(enc.WriteHeader(hdr))
	require.NoError(enc.WriteEpoch(MeteoEpoch{
		Time: time.Date(2022, 11, 9, 13, 0, 0, 0, time.UTC),
		Obs:  []float64{1002.3, 12.5, 88.0},
	}))

	dec, err := NewMetDecoder(&buf)
	require.NoError(err)
	assert.Equal("BAUT", dec.Header.MarkerName)
	assert.Equal([]MeteoObsType{"PR", "TD", "HR"}, dec.Header.ObsTypes)
	require.True(dec.NextEpoch())
	epo := dec.Epoch()
	assert.Equal(2022, epo.Time.Year())
	assert.InDeltaSlice([]float64{1002.3, 12.5, 88.0}, epo.Obs, 1e-6)
}
