// Package crinex implements the Hatanaka differential codecs used by
// Compact RINEX (CRINEX): a per-column text differential codec (TextDiff),
// a fixed-order polynomial numeric differential codec (NumDiff), and the
// per-epoch orchestrator (HatanakaEngine) that combines them to
// compress/decompress a RINEX observation record block.
package crinex

import "errors"

// ErrNoReset is returned by TextDiff.Decompress when a decompression input
// is encountered before any reset (the reference line is unknown).
var ErrNoReset = errors.New("crinex: textdiff: no reference line (missing reset)")

// TextDiff is a per-column ASCII differential codec over a text line. It
// keeps a reference line; Compress emits only the columns that changed
// since the reference (as spaces elsewhere), and Decompress reconstructs a
// line by overlaying non-space columns onto the reference.
type TextDiff struct {
	ref   []byte
	reset bool
}

// NewTextDiff returns a fresh, unreset TextDiff.
func NewTextDiff() *TextDiff {
	return &TextDiff{}
}

// Reset discards the stored reference line; the next Compress or Decompress
// call will be treated as the stream's first line.
func (d *TextDiff) Reset() {
	d.ref = nil
	d.reset = false
}

// Compress encodes line against the stored reference. On the first call (or
// the first call after Reset), it stores line verbatim and returns it
// unchanged. On later calls it returns a line of the same length as the
// (possibly extended) reference, where each column holds the input
// character if it differs from the reference, or a space if it matches;
// the reference is then updated to equal the (decoded) input line.
func (d *TextDiff) Compress(line string) string {
	if !d.reset {
		d.ref = []byte(line)
		d.reset = true
		return line
	}

	in := padTo(line, len(d.ref))
	if len(in) > len(d.ref) {
		d.ref = padTo(string(d.ref), len(in))
	}

	out := make([]byte, len(d.ref))
	for i := range d.ref {
		if in[i] == d.ref[i] {
			out[i] = ' '
		} else {
			out[i] = in[i]
		}
	}
	for i := range in {
		if in[i] != ' ' {
			d.ref[i] = in[i]
		}
	}
	return string(out)
}

// Decompress reconstructs a line from a compressed/delta input: non-space
// columns overwrite the reference, spaces preserve it. Returns
// ErrNoReset if called before any reset/first line.
func (d *TextDiff) Decompress(line string) (string, error) {
	if !d.reset {
		d.ref = []byte(line)
		d.reset = true
		return line, nil
	}
	if d.ref == nil {
		return "", ErrNoReset
	}

	in := padTo(line, len(d.ref))
	if len(in) > len(d.ref) {
		d.ref = padTo(string(d.ref), len(in))
	}

	out := make([]byte, len(d.ref))
	copy(out, d.ref)
	for i := 0; i < len(in); i++ {
		if in[i] != ' ' {
			out[i] = in[i]
		}
	}
	d.ref = append([]byte(nil), out...)
	return string(out), nil
}

// padTo right-pads s with spaces to length n; s longer than n is returned unchanged.
func padTo(s string, n int) []byte {
	if len(s) >= n {
		return []byte(s)
	}
	b := make([]byte, n)
	copy(b, s)
	for i := len(s); i < n; i++ {
		b[i] = ' '
	}
	return b
}
