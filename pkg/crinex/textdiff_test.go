package crinex

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTextDiff_RoundTrip(t *testing.T) {
	lines := []string{
		"G01G02G03G04G05G06G07G08",
		"G01G02G09G04G05G06G07G08",
		"G01G02G09G04G05G06G07G10",
	}

	enc := NewTextDiff()
	var kernels []string
	for _, l := range lines {
		kernels = append(kernels, enc.Compress(l))
	}
	assert.Equal(t, lines[0], kernels[0])

	dec := NewTextDiff()
	for i, k := range kernels {
		got, err := dec.Decompress(k)
		assert.NoError(t, err)
		assert.Equal(t, lines[i], got)
	}
}

func TestTextDiff_UnchangedColumnsBecomeSpaces(t *testing.T) {
	d := NewTextDiff()
	first := d.Compress("ABCDEF")
	assert.Equal(t, "ABCDEF", first)

	second := d.Compress("ABXDEF")
	assert.Equal(t, "  X   ", second)
}

func TestTextDiff_ExtendsShorterReference(t *testing.T) {
	d := NewTextDiff()
	d.Compress("ABC")
	out := d.Compress("ABCDE")
	// columns 0-2 unchanged -> spaces; columns 3-4 are new, always emitted.
	assert.Equal(t, "   DE", out)
}

func TestTextDiff_NoResetIsError(t *testing.T) {
	d := NewTextDiff()
	d.ref = nil
	d.reset = true
	_, err := d.Decompress("abc")
	assert.ErrorIs(t, err, ErrNoReset)
}

func TestTextDiff_Reset(t *testing.T) {
	d := NewTextDiff()
	d.Compress("ABCDEF")
	d.Reset()
	out := d.Compress("ABCDEF")
	assert.Equal(t, "ABCDEF", out)
}
