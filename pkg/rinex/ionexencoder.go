package rinex

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"
)

// IonexEncoder writes a RINEX IONEX header and TEC-map records in the
// fixed-column format spec.md section 4.4 requires, mirroring MetEncoder's
// shape (a *bufio.Writer plus the header state needed to re-derive the
// grid layout for every WriteMap call).
type IonexEncoder struct {
	w   *bufio.Writer
	hdr IonexHeader
}

// NewIonexEncoder creates an encoder that will write w.
func NewIonexEncoder(w io.Writer) *IonexEncoder {
	return &IonexEncoder{w: bufio.NewWriter(w)}
}

func (enc *IonexEncoder) writeLabeled(value, label string) {
	if len(value) > 60 {
		value = value[:60]
	}
	fmt.Fprintf(enc.w, "%-60s%-20s\n", value, label)
}

// WriteHeader writes a RINEX IONEX header.
func (enc *IonexEncoder) WriteHeader(hdr IonexHeader) error {
	enc.hdr = hdr
	version := hdr.RINEXVersion
	if version == 0 {
		version = 1.0
	}
	rinexType := hdr.RINEXType
	if rinexType == "" {
		rinexType = "I"
	}
	enc.writeLabeled(fmt.Sprintf("%9.2f%11s%-20s%1s%28s", version, "", "IONOSPHERE MAPS", rinexType, ""), "IONEX VERSION / TYPE")
	enc.writeLabeled(fmt.Sprintf("%-20s%-20s%-20s", hdr.Pgm, hdr.RunBy, hdr.Date), "PGM / RUN BY / DATE")
	for _, c := range hdr.Comments {
		enc.writeLabeled(c, "COMMENT")
	}
	for _, d := range hdr.Description {
		enc.writeLabeled(d, "DESCRIPTION")
	}
	if !hdr.EpochOfFirstMap.IsZero() {
		t := hdr.EpochOfFirstMap
		enc.writeLabeled(fmt.Sprintf("%6d%6d%6d%6d%6d%6d", t.Year(), int(t.Month()), t.Day(), t.Hour(), t.Minute(), t.Second()), "EPOCH OF FIRST MAP")
	}
	if !hdr.EpochOfLastMap.IsZero() {
		t := hdr.EpochOfLastMap
		enc.writeLabeled(fmt.Sprintf("%6d%6d%6d%6d%6d%6d", t.Year(), int(t.Month()), t.Day(), t.Hour(), t.Minute(), t.Second()), "EPOCH OF LAST MAP")
	}
	if hdr.IntervalSec != 0 {
		enc.writeLabeled(fmt.Sprintf("%6d", hdr.IntervalSec), "INTERVAL")
	}
	enc.writeLabeled(fmt.Sprintf("%6d", hdr.NumMaps), "# OF MAPS IN FILE")
	if hdr.MappingFunction != "" {
		enc.writeLabeled(fmt.Sprintf("%4s", hdr.MappingFunction), "MAPPING FUNCTION")
	}
	enc.writeLabeled(fmt.Sprintf("%8.1f", hdr.ElevationCutoff), "ELEVATION CUTOFF")
	if len(hdr.Observables) > 0 {
		enc.writeLabeled(strings.Join(hdr.Observables, " "), "OBSERVABLES USED")
	}
	enc.writeLabeled(fmt.Sprintf("%8.1f", hdr.BaseRadius), "BASE RADIUS")
	mapDim := hdr.MapDim
	if mapDim == 0 {
		mapDim = 2
	}
	enc.writeLabeled(fmt.Sprintf("%6d", mapDim), "MAP DIMENSION")
	enc.writeLabeled(formatIonexGrid(hdr.Hgt), "HGT1 / HGT2 / DHGT")
	enc.writeLabeled(formatIonexGrid(hdr.Lat), "LAT1 / LAT2 / DLAT")
	enc.writeLabeled(formatIonexGrid(hdr.Lon), "LON1 / LON2 / DLON")
	exp := hdr.Exponent
	if exp == 0 {
		exp = -1
	}
	enc.writeLabeled(fmt.Sprintf("%6d", exp), "EXPONENT")
	enc.writeLabeled("", "END OF HEADER")
	return enc.w.Flush()
}

func formatIonexGrid(g IonexGrid) string {
	return fmt.Sprintf("%6.1f%6.1f%6.1f", g.Start, g.End, g.Step)
}

// WriteMap writes one TEC map (and, if any record carries an RMS value, a
// matching RMS map) for a single epoch. recs must all share the same
// Epoch and must cover the full Lat x Lon grid in the header's declared
// row-major order; mapIndex is the 1-based sequence number written on the
// START/END OF [..] MAP label lines.
func (enc *IonexEncoder) WriteMap(mapIndex int, recs []IonexRecord) error {
	if len(recs) == 0 {
		return &FormatError{Reason: "ionex: WriteMap called with no grid records"}
	}
	epoch := recs[0].Epoch

	enc.writeLabeled(fmt.Sprintf("%6d", mapIndex), "START OF TEC MAP")
	enc.writeEpochAndGrid(epoch, recs, func(r IonexRecord) int { return r.TEC })
	enc.writeLabeled(fmt.Sprintf("%6d", mapIndex), "END OF TEC MAP")

	hasRMS := false
	for _, r := range recs {
		if r.RMS != nil {
			hasRMS = true
			break
		}
	}
	if hasRMS {
		enc.writeLabeled(fmt.Sprintf("%6d", mapIndex), "START OF RMS MAP")
		enc.writeEpochAndGrid(epoch, recs, func(r IonexRecord) int {
			if r.RMS == nil {
				return 0
			}
			return *r.RMS
		})
		enc.writeLabeled(fmt.Sprintf("%6d", mapIndex), "END OF RMS MAP")
	}

	return enc.w.Flush()
}

// writeEpochAndGrid writes the "EPOCH OF CURRENT MAP" line followed by one
// "LAT/LON1/LON2/DLON/H" scan per latitude row, each row's values wrapped
// at 16 per line (5-column integer fields), per spec.md section 4.4.
func (enc *IonexEncoder) writeEpochAndGrid(epoch time.Time, recs []IonexRecord, value func(IonexRecord) int) {
	enc.writeLabeled(fmt.Sprintf("%6d%6d%6d%6d%6d%6d",
		epoch.Year(), int(epoch.Month()), epoch.Day(), epoch.Hour(), epoch.Minute(), epoch.Second()),
		"EPOCH OF CURRENT MAP")

	latN := enc.hdr.Lat.N()
	lonN := enc.hdr.Lon.N()
	for i := 0; i < latN; i++ {
		lat := enc.hdr.Lat.Start + float64(i)*enc.hdr.Lat.Step
		enc.writeLabeled(fmt.Sprintf("%6.1f%6.1f%6.1f%6.1f%6.1f", lat, enc.hdr.Lon.Start, enc.hdr.Lon.End, enc.hdr.Lon.Step, enc.hdr.Hgt.Start), "LAT/LON1/LON2/DLON/H")

		var b strings.Builder
		for j := 0; j < lonN; j++ {
			idx := i*lonN + j
			v := 9999 // RINEX IONEX "no data" sentinel
			if idx < len(recs) {
				v = value(recs[idx])
			}
			fmt.Fprintf(&b, "%5d", v)
			if (j+1)%16 == 0 || j == lonN-1 {
				enc.w.WriteString(b.String())
				enc.w.WriteByte('\n')
				b.Reset()
			}
		}
	}
}

// WriteEOF writes the terminal "END OF FILE" label some IONEX writers emit.
func (enc *IonexEncoder) WriteEOF() error {
	enc.writeLabeled("", "END OF FILE")
	return enc.w.Flush()
}
