package binex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSolutionRecord_EncodeDecodeRoundtrip(t *testing.T) {
	rec := SolutionRecord{Fields: []SolutionField{
		{FieldID: FieldECEFPosition, Values: []float64{4000000.123, 300000.456, 5000000.789}},
		{FieldID: FieldClockOffset, Values: []float64{1.5e-6}},
		{FieldID: FieldExtraString, String: "note"},
	}}

	encoded := rec.Encode()
	got, err := DecodeSolutionRecord(encoded)
	require.NoError(t, err)
	assert.Equal(t, rec, got)
}

func TestDecodeSolutionRecord_UnknownField(t *testing.T) {
	_, err := DecodeSolutionRecord([]byte{99})
	require.Error(t, err)
}
