// Package sp3 decodes and encodes IGS SP3-c/d precise orbit and clock
// products: a terse fixed-column header describing the satellite roster and
// epoch spacing, followed by one position/velocity/clock record block per
// epoch.
package sp3

import (
	"fmt"
	"time"

	"github.com/de-bkg/gognss/pkg/gnss"
)

// Coord is an Earth-centred, Earth-fixed position in metres (SP3 text
// records carry kilometres; decoding/encoding rescales at the boundary).
type Coord struct {
	X, Y, Z float64
}

// CoordNEU is an SP3 velocity vector in metres/second, keyed to the same
// X/Y/Z axes as Coord despite the field names (kept for symmetry with
// pkg/rinex.CoordNEU, which this type otherwise has nothing to do with).
// SP3 text records carry the value in units of 1e-4 dm/s; decoding/encoding
// rescales at the boundary, same as Coord.
type CoordNEU struct {
	N, E, Up float64
}

// Accuracy is a satellite's SP3 accuracy exponent: the nominal accuracy is
// 2**Exp millimetres, or unknown when Exp is 0.
type Accuracy struct {
	SV  gnss.PRN
	Exp int
}

// Header carries the SP3 file-level metadata: format version, position or
// position+velocity content, the satellite roster with accuracy codes, the
// declared epoch spacing, and file provenance.
type Header struct {
	Version  string // "a", "b", "c" or "d"
	FileType string // "P" (position only) or "V" (position + velocity)

	StartEpoch time.Time
	NumEpochs  int
	DataUsed   string // e.g. "ORBIT", "ORBIT+CLK"
	CoordSys   string // e.g. "IGS14"
	OrbitType  string // e.g. "HLM", "FIT", "BCT"
	Agency     string

	GPSWeek      int
	SecOfWeek    float64
	Interval     float64 // seconds between epochs
	ModJulianDay int
	FracDay      float64

	TimeSystem string // "GPS", "GLO", "GAL", "UTC", ...

	Satellites []gnss.PRN
	Accuracies []Accuracy

	PosBase   float64 // %f base number for position/clock std-dev exponents
	ClockBase float64 // %f base number for velocity/clock-rate std-dev exponents

	Comments []string
}

// AccuracyFor returns the accuracy exponent declared for sv, and false if sv
// carries no "++" accuracy entry.
func (h Header) AccuracyFor(sv gnss.PRN) (int, bool) {
	for _, a := range h.Accuracies {
		if a.SV == sv {
			return a.Exp, true
		}
	}
	return 0, false
}

// Record holds one satellite's position, and optionally velocity and clock
// data, for a single epoch. Pos is always present in a "P" record; Vel is
// populated only when the same epoch block also carries a "V" line for the
// satellite.
type Record struct {
	Epoch      time.Time
	SV         gnss.PRN
	Pos        Coord
	Clock      *float64 // microseconds
	Vel        *CoordNEU
	ClockRate  *float64 // microseconds/second (SP3 text carries 1e-4 microseconds/second)
	PosPred    bool     // position/clock entries from an orbit-prediction fit
	ClockEvent bool     // clock discontinuity flagged on this record
}

// sp3NoData is the sentinel SP3 writes for an absent position or clock value.
const sp3NoData = 999999.999999

func isNoData(v float64) bool {
	const eps = 1e-6
	d := v - sp3NoData
	if d < 0 {
		d = -d
	}
	return d < eps
}

func (h Header) String() string {
	return fmt.Sprintf("sp3 %s%s %s %d sats, %d epochs @ %gs", h.Version, h.FileType, h.Agency, len(h.Satellites), h.NumEpochs, h.Interval)
}
