package crinex

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHatanakaEngine_EpochRoundTrip(t *testing.T) {
	lines := []string{
		"> 2021 01 01 00 00  0.0000000  0 12",
		"> 2021 01 01 00 00 30.0000000  0 12",
	}

	enc, err := NewHatanakaEngine(3)
	assert.NoError(t, err)
	var kernels []string
	for _, l := range lines {
		kernels = append(kernels, enc.CompressEpoch(l))
	}

	dec, err := NewHatanakaEngine(3)
	assert.NoError(t, err)
	for i, k := range kernels {
		got, err := dec.DecompressEpoch(k)
		assert.NoError(t, err)
		assert.Equal(t, lines[i], got)
	}
}

func TestHatanakaEngine_ClockReinitThenDelta(t *testing.T) {
	enc, err := NewHatanakaEngine(3)
	assert.NoError(t, err)

	k1, err := enc.CompressClock("12345", true)
	assert.NoError(t, err)
	assert.Equal(t, "&312345", k1)

	k2, err := enc.CompressClock("12345", false)
	assert.NoError(t, err)
	assert.Equal(t, "0", k2)

	dec, err := NewHatanakaEngine(3)
	assert.NoError(t, err)
	v1, err := dec.DecompressClock(k1)
	assert.NoError(t, err)
	assert.Equal(t, "12345", v1)
	v2, err := dec.DecompressClock(k2)
	assert.NoError(t, err)
	assert.Equal(t, "12345", v2)
}

func TestHatanakaEngine_ClockAbsentField(t *testing.T) {
	enc, err := NewHatanakaEngine(3)
	assert.NoError(t, err)
	k, err := enc.CompressClock("", false)
	assert.NoError(t, err)
	assert.Equal(t, "", k)

	dec, err := NewHatanakaEngine(3)
	assert.NoError(t, err)
	v, err := dec.DecompressClock("")
	assert.NoError(t, err)
	assert.Equal(t, "", v)
}

// TestHatanakaEngine_ConstantObservableSeries reproduces the constant
// three-epoch observation series scenario: a value of 10.000 repeated
// across three epochs, differential order 3. The first epoch emits a
// reinitialiser carrying the quantised initial value; the next two emit a
// zero delta each, since the series never changes.
func TestHatanakaEngine_ConstantObservableSeries(t *testing.T) {
	const key = "G01C1C"
	samples := []float64{10.000, 10.000, 10.000}

	enc, err := NewHatanakaEngine(3)
	assert.NoError(t, err)

	q0, err := Quantize(samples[0])
	assert.NoError(t, err)
	assert.Equal(t, int64(10000), q0)

	k0, err := enc.CompressValue(key, q0, true)
	assert.NoError(t, err)
	assert.Equal(t, "&310000", k0)

	var kernels []string
	for _, s := range samples[1:] {
		q, err := Quantize(s)
		assert.NoError(t, err)
		k, err := enc.CompressValue(key, q, false)
		assert.NoError(t, err)
		kernels = append(kernels, k)
	}
	assert.Equal(t, []string{"0", "0"}, kernels)

	dec, err := NewHatanakaEngine(3)
	assert.NoError(t, err)
	v0, err := dec.DecompressValue(key, "&310000")
	assert.NoError(t, err)
	assert.Equal(t, q0, v0)
	for i, k := range kernels {
		v, err := dec.DecompressValue(key, k)
		assert.NoError(t, err)
		assert.Equal(t, int64(10000), v, "epoch %d", i+1)
		assert.InDelta(t, 10.000, Dequantize(v), 1e-9)
	}
}

func TestHatanakaEngine_FlagsRoundTrip(t *testing.T) {
	const key = "G01C1C"
	enc, err := NewHatanakaEngine(3)
	assert.NoError(t, err)

	lliKernels := []string{"1", " "}
	snrKernels := []string{"7", " "}
	var outLLI, outSNR []string
	for i := range lliKernels {
		l, s := enc.CompressFlags(key, lliKernels[i], snrKernels[i])
		outLLI = append(outLLI, l)
		outSNR = append(outSNR, s)
	}

	dec, err := NewHatanakaEngine(3)
	assert.NoError(t, err)
	for i := range outLLI {
		l, s, err := dec.DecompressFlags(key, outLLI[i], outSNR[i])
		assert.NoError(t, err)
		assert.Equal(t, lliKernels[i], l)
		assert.Equal(t, snrKernels[i], s)
	}
}

func TestEpochFlagResets(t *testing.T) {
	for _, f := range []int{1, 3, 4, 5, 6} {
		assert.True(t, EpochFlagResets(f), "flag %d", f)
	}
	for _, f := range []int{0, 2} {
		assert.False(t, EpochFlagResets(f), "flag %d", f)
	}
}

func TestHatanakaEngine_ResetAllClearsSlotsAndClock(t *testing.T) {
	const key = "G01C1C"
	h, err := NewHatanakaEngine(2)
	assert.NoError(t, err)

	_, err = h.CompressValue(key, 1000, true)
	assert.NoError(t, err)
	_, err = h.CompressClock("500", true)
	assert.NoError(t, err)

	h.ResetAll()

	// after a full reset, the next value/clock kernel must be a reinitialiser again.
	k, err := h.CompressValue(key, 2000, false)
	assert.NoError(t, err)
	assert.Equal(t, "&22000", k)

	ck, err := h.CompressClock("700", false)
	assert.NoError(t, err)
	assert.Equal(t, "&2700", ck)
}
