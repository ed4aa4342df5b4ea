package rinex

import (
	"bufio"
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClockEncoder_WriteRecord_roundtrip(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	orig := ClockRecord{
		Type:       ClockRecordAR,
		Name:       "BAUT",
		Epoch:      time.Date(2022, 11, 9, 0, 0, 0, 0, time.UTC),
		Bias:       1.234567890123e-06,
		BiasSigma:  1.1e-11,
		HasBias:    true,
		Drift:      -2.3e-12,
		DriftSigma: 4.5e-13,
		HasDrift:   true,
	}

	var buf bytes.Buffer
	enc := NewClockEncoder(&buf)
	require.NoError(enc.WriteRecord(orig))

	dec := &ClockDecoder{sc: bufio.NewScanner(strings.NewReader(buf.String()))}
	require.True(dec.NextRecord())
	require.NoError(dec.Err())

	got := dec.Record()
	require.NotNil(got)
	assert.Equal(orig.Type, got.Type)
	assert.Equal(orig.Name, got.Name)
	assert.Equal(orig.Epoch, got.Epoch)
	assert.True(got.HasBias)
	assert.InDelta(orig.Bias, got.Bias, 1e-18)
	assert.InDelta(orig.BiasSigma, got.BiasSigma, 1e-18)
	assert.True(got.HasDrift)
	assert.InDelta(orig.Drift, got.Drift, 1e-18)
	assert.InDelta(orig.DriftSigma, got.DriftSigma, 1e-18)
	assert.False(got.HasAccel)
}

func TestParseClockRecordLine_biasOnly(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	rec := ClockRecord{
		Type:    ClockRecordAS,
		Name:    "G01",
		Epoch:   time.Date(2022, 1, 1, 12, 30, 0, 0, time.UTC),
		Bias:    9.87e-05,
		HasBias: true,
	}

	var buf bytes.Buffer
	enc := NewClockEncoder(&buf)
	require.NoError(enc.WriteRecord(rec))

	got, err := parseClockRecordLine(strings.TrimRight(buf.String(), "\n"))
	require.NoError(err)
	assert.Equal(rec.Type, got.Type)
	assert.Equal(rec.Name, got.Name)
	assert.Equal(rec.Epoch, got.Epoch)
	assert.True(got.HasBias)
	assert.False(got.HasDrift)
	assert.False(got.HasAccel)
	assert.InDelta(rec.Bias, got.Bias, 1e-12)
}
