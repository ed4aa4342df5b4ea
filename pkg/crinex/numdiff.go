package crinex

import (
	"errors"
	"fmt"
	"math"
)

// ErrNotInitialized is returned by Decompress/Compress when no Init/Reset has happened yet.
var ErrNotInitialized = errors.New("crinex: numdiff: not initialized")

// ErrArithmeticOverflow is returned when a quantised sample no longer fits
// a signed 64-bit integer.
var ErrArithmeticOverflow = errors.New("crinex: numdiff: arithmetic overflow")

// MaxOrder is the largest differential order the Hatanaka format supports.
const MaxOrder = 5

// scale is the fixed-point scale applied to real-valued observations before
// differencing: three decimal digits of precision, per the RINEX observation
// field width.
const scale = 1000.0

// NumDiff is a fixed-order polynomial numeric differential codec over
// signed integers. The encoder transmits the Mth forward difference of the
// integerised sample series; the decoder reconstructs the series by
// iterated prefix-sum. Grounded on the satoshi-pes-crinex reference
// decoder's diffRecord type (ladder-of-differences plus repeated
// pairwise-sum reconstruction), reimplemented over int64 per the 64-bit
// arithmetic this spec requires; the encoder is this module's own (the
// reference repo is decode-only), derived as the verified inverse of that
// decode algorithm.
type NumDiff struct {
	order   int
	started bool

	// decode-side ladder of differences, mirroring diffRecord.
	diffData []int64
	ref      int64

	// encode-side sliding window of the most recent raw (already
	// quantised) samples, capped at order+1.
	samples []int64
}

// NewNumDiff returns an uninitialized NumDiff; call Init or Reset before use.
func NewNumDiff() *NumDiff {
	return &NumDiff{}
}

// Init starts a fresh stream at differential order m with initial as the
// first sample (already quantised to integer units). It returns the
// quantised initial value unchanged, matching the wire behaviour of
// emitting the first sample verbatim.
func (d *NumDiff) Init(m int, initial int64) (int64, error) {
	if m < 1 || m > MaxOrder {
		return 0, fmt.Errorf("crinex: numdiff: order out of range: %d", m)
	}
	d.order = m
	d.diffData = d.diffData[:0]
	d.samples = append(d.samples[:0], initial)
	d.ref = initial
	d.started = true
	return initial, nil
}

// Reset discards the window and reinstates initial as the current sample,
// keeping the previously configured order. Used on stream resets and
// Hatanaka epoch-flag events 1/3/4/5/6.
func (d *NumDiff) Reset(initial int64) {
	d.diffData = d.diffData[:0]
	d.samples = append(d.samples[:0], initial)
	d.ref = initial
	d.started = true
}

// Compress computes the Mth forward difference for next (already
// quantised) and returns the value to emit on the wire. It maintains a
// sliding window of up to order+1 raw samples and collapses it by repeated
// first-differencing; during the first `order` calls after Init/Reset the
// window is shorter than order+1 and a lower effective order is used,
// which is exactly the ramp-up behaviour the decoder expects (see
// Decompress).
func (d *NumDiff) Compress(next int64) (int64, error) {
	if !d.started {
		return 0, ErrNotInitialized
	}

	d.samples = append(d.samples, next)
	if len(d.samples) > d.order+1 {
		d.samples = d.samples[1:]
	}
	d.ref = next

	diffs := append([]int64(nil), d.samples...)
	for len(diffs) > 1 {
		diffs = forwardDiff(diffs)
	}
	return diffs[0], nil
}

// Decompress reconstructs the next sample by adding the Mth-order
// extrapolation to the current reference. It ports diffRecord.Decode's
// ladder-accumulate-then-integrate scheme: once the ladder reaches depth
// `order`, the newest entry is folded in via one right-to-left adjacent-sum
// pass before the oldest entry is dropped, then the whole ladder is
// collapsed by repeated pairwise summation to yield the single-order delta
// applied to the reference.
func (d *NumDiff) Decompress(delta int64) (int64, error) {
	if !d.started {
		return 0, ErrNotInitialized
	}

	d.diffData = append(d.diffData, delta)
	if len(d.diffData) > d.order {
		for i := d.order; i > 1; i-- {
			d.diffData[i-1] += d.diffData[i-2]
		}
		d.diffData = d.diffData[1:]
	}

	dv := append([]int64(nil), d.diffData...)
	for len(dv) > 1 {
		dv = pairwiseSum(dv)
	}

	sum, err := addChecked(d.ref, dv[0])
	if err != nil {
		return 0, err
	}
	d.ref = sum
	return d.ref, nil
}

// forwardDiff performs one pass of first-differencing: out[i] = in[i+1] - in[i].
func forwardDiff(in []int64) []int64 {
	out := make([]int64, len(in)-1)
	for i := 0; i < len(out); i++ {
		out[i] = in[i+1] - in[i]
	}
	return out
}

// pairwiseSum performs one pass of discrete integration, the inverse of
// forwardDiff: out[i] = in[i+1] + in[i].
func pairwiseSum(in []int64) []int64 {
	n := len(in)
	out := make([]int64, n-1)
	for i := n - 1; i > 0; i-- {
		out[i-1] = in[i] + in[i-1]
	}
	return out
}

func addChecked(a, b int64) (int64, error) {
	if b > 0 && a > math.MaxInt64-b {
		return 0, ErrArithmeticOverflow
	}
	if b < 0 && a < math.MinInt64-b {
		return 0, ErrArithmeticOverflow
	}
	return a + b, nil
}

// Quantize converts a real-valued observation (metres or cycles, three
// decimal digits of precision) to the fixed-point integer NumDiff operates
// on.
func Quantize(v float64) (int64, error) {
	scaled := v * scale
	if scaled > math.MaxInt64 || scaled < math.MinInt64 {
		return 0, ErrArithmeticOverflow
	}
	return int64(math.Round(scaled)), nil
}

// Dequantize converts a NumDiff fixed-point integer back to its real value.
func Dequantize(v int64) float64 {
	return float64(v) / scale
}
