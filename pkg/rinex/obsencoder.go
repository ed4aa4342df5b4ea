package rinex

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/de-bkg/gognss/pkg/gnss"
)

// ObsEncoder writes a RINEX3 observation header and data epochs in the
// fixed-column format spec.md section 4.4 requires on emission: numeric
// fields right-aligned, padded with spaces, never trailing whitespace past
// the last observation column. The teacher (de-bkg/gognss) ships no RINEX
// formatter at all — only the external Rnx2crx/Crx2rnx tools in obs.go —
// so this mirrors the *Decoder family's shape (a struct wrapping a
// *bufio.Writer plus the header state it needs to re-derive column
// layout) rather than adapting an existing formatter.
type ObsEncoder struct {
	w   *bufio.Writer
	hdr ObsHeader
}

// NewObsEncoder creates an encoder that will write w.
func NewObsEncoder(w io.Writer) *ObsEncoder {
	return &ObsEncoder{w: bufio.NewWriter(w)}
}

// WriteHeader writes a RINEX3 observation header. Observable order per
// constellation is taken from hdr.ObsTypes and re-used for every
// subsequent WriteEpoch call; a later epoch naming an observable for a
// system not declared in this header is rejected by WriteEpoch with
// FormatError{observable-ordering}, per spec.md section 4.4.
func (enc *ObsEncoder) WriteHeader(hdr ObsHeader) error {
	enc.hdr = hdr
	version := hdr.RINEXVersion
	if version == 0 {
		version = 3.04
	}
	enc.writeLabeled(fmt.Sprintf("%9.2f%11s%-20s%1s%19s", version, "", "OBSERVATION DATA", hdr.SatSystem.Abbr(), ""), "RINEX VERSION / TYPE")
	enc.writeLabeled(fmt.Sprintf("%-20s%-20s%-20s", hdr.Pgm, hdr.RunBy, hdr.Date.Format("20060102 150405 UTC")), "PGM / RUN BY / DATE")
	for _, c := range hdr.Comments {
		enc.writeLabeled(c, "COMMENT")
	}
	enc.writeLabeled(hdr.MarkerName, "MARKER NAME")
	enc.writeLabeled(fmt.Sprintf("%-20s%-20s", hdr.Observer, hdr.Agency), "OBSERVER / AGENCY")
	enc.writeLabeled(fmt.Sprintf("%-20s%-20s%-20s", hdr.ReceiverNumber, hdr.ReceiverType, hdr.ReceiverVersion), "REC # / TYPE / VERS")
	enc.writeLabeled(fmt.Sprintf("%-20s%-20s", hdr.AntennaNumber, hdr.AntennaType), "ANT # / TYPE")
	enc.writeLabeled(fmt.Sprintf("%14.4f%14.4f%14.4f", hdr.Position.X, hdr.Position.Y, hdr.Position.Z), "APPROX POSITION XYZ")
	enc.writeLabeled(fmt.Sprintf("%14.4f%14.4f%14.4f", hdr.AntennaDelta.Up, hdr.AntennaDelta.E, hdr.AntennaDelta.N), "ANTENNA: DELTA H/E/N")

	for _, sys := range sortedSystems(hdr.ObsTypes) {
		codes := hdr.ObsTypes[sys]
		var b strings.Builder
		fmt.Fprintf(&b, "%1s  %3d", sys.Abbr(), len(codes))
		for _, c := range codes {
			fmt.Fprintf(&b, " %3s", string(c))
		}
		enc.writeLabeled(b.String(), "SYS / # / OBS TYPES")
	}

	if !hdr.TimeOfFirstObs.IsZero() {
		enc.writeLabeled(fmt.Sprintf("%6d%6d%6d%6d%6d%13.7f%8s%5s", hdr.TimeOfFirstObs.Year(), int(hdr.TimeOfFirstObs.Month()), hdr.TimeOfFirstObs.Day(), hdr.TimeOfFirstObs.Hour(), hdr.TimeOfFirstObs.Minute(), float64(hdr.TimeOfFirstObs.Second()), "GPS", ""), "TIME OF FIRST OBS")
	}
	enc.writeLabeled("", "END OF HEADER")
	return enc.w.Flush()
}

func sortedSystems(m map[gnss.System][]ObsCode) []gnss.System {
	syss := make([]gnss.System, 0, len(m))
	for s := range m {
		syss = append(syss, s)
	}
	sort.Slice(syss, func(i, j int) bool { return syss[i].Abbr() < syss[j].Abbr() })
	return syss
}

func (enc *ObsEncoder) writeLabeled(value, label string) {
	if len(value) > 60 {
		value = value[:60]
	}
	fmt.Fprintf(enc.w, "%-60s%-20s\n", value, label)
}

// WriteEpoch writes one observation epoch in RINEX3 fixed-column form: a
// ">"-prefixed epoch line followed by one data line per satellite, in
// roster order (ascending constellation letter then PRN).
func (enc *ObsEncoder) WriteEpoch(epo Epoch) error {
	obsList := make([]SatObs, len(epo.ObsList))
	copy(obsList, epo.ObsList)
	sort.Slice(obsList, func(i, j int) bool { return lessPRN(obsList[i].Prn, obsList[j].Prn) })

	fmt.Fprintf(enc.w, "> %4d %2d %2d %2d %2d%11.7f  %d%3d\n",
		epo.Time.Year(), int(epo.Time.Month()), epo.Time.Day(),
		epo.Time.Hour(), epo.Time.Minute(), float64(epo.Time.Second()),
		epo.Flag, len(obsList))

	for _, sat := range obsList {
		codes, ok := enc.hdr.ObsTypes[sat.Prn.Sys]
		if !ok {
			return &FormatError{Reason: "observable-ordering: no declared observables for " + sat.Prn.Sys.String()}
		}
		var b strings.Builder
		b.WriteString(sat.Prn.String())
		for _, code := range codes {
			obs, has := sat.Obss[code]
			if !has {
				b.WriteString(strings.Repeat(" ", 16))
				continue
			}
			fmt.Fprintf(&b, "%14.3f", obs.Val)
			b.WriteString(flagColumn(obs.LLI))
			b.WriteString(flagColumn(obs.SNR))
		}
		line := strings.TrimRight(b.String(), " ")
		enc.w.WriteString(line)
		enc.w.WriteByte('\n')
	}
	return enc.w.Flush()
}

func flagColumn(v int8) string {
	if v == 0 {
		return " "
	}
	return strconv.Itoa(int(v))
}
