package rinex

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"
)

// DorisEncoder writes a RINEX DORIS header and data epochs, mirroring
// ObsEncoder's shape and column conventions but keyed by StationID.
type DorisEncoder struct {
	w   *bufio.Writer
	hdr DorisHeader
}

// NewDorisEncoder creates an encoder that will write w.
func NewDorisEncoder(w io.Writer) *DorisEncoder {
	return &DorisEncoder{w: bufio.NewWriter(w)}
}

func (enc *DorisEncoder) writeLabeled(value, label string) {
	if len(value) > 60 {
		value = value[:60]
	}
	fmt.Fprintf(enc.w, "%-60s%-20s\n", value, label)
}

// WriteHeader writes a RINEX DORIS header.
func (enc *DorisEncoder) WriteHeader(hdr DorisHeader) error {
	enc.hdr = hdr
	version := hdr.RINEXVersion
	if version == 0 {
		version = 3.04
	}
	enc.writeLabeled(fmt.Sprintf("%9.2f%11s%-20s%1s%19s", version, "", "OBSERVATION DATA", "D", ""), "RINEX VERSION / TYPE")
	enc.writeLabeled(fmt.Sprintf("%-20s%-20s%-20s", hdr.Pgm, hdr.RunBy, hdr.Date), "PGM / RUN BY / DATE")
	for _, c := range hdr.Comments {
		enc.writeLabeled(c, "COMMENT")
	}
	enc.writeLabeled(hdr.MarkerName, "MARKER NAME")

	if len(hdr.ObsTypes) > 0 {
		var b strings.Builder
		fmt.Fprintf(&b, "   %3d", len(hdr.ObsTypes))
		for _, c := range hdr.ObsTypes {
			fmt.Fprintf(&b, " %3s", string(c))
		}
		enc.writeLabeled(b.String(), "SYS / # / OBS TYPES")
	}

	for _, st := range hdr.Stations {
		enc.writeLabeled(fmt.Sprintf("%-3s %9s %-20s%-9s%3d", st.ID, st.DOMES, st.Name, st.BeaconType, st.K), "STATION REFERENCE")
	}

	if hdr.SignalStrengthUnit != "" {
		enc.writeLabeled(hdr.SignalStrengthUnit, "SIGNAL STRENGTH UNIT")
	}
	if !hdr.TimeOfFirstObs.IsZero() {
		t := hdr.TimeOfFirstObs
		enc.writeLabeled(fmt.Sprintf("%6d%6d%6d%6d%6d%13.7f%8s%5s", t.Year(), int(t.Month()), t.Day(), t.Hour(), t.Minute(), float64(t.Second()), "GPS", ""), "TIME OF FIRST OBS")
	}
	if hdr.L2L1DateOffset != 0 {
		enc.writeLabeled(fmt.Sprintf("%10.3f", hdr.L2L1DateOffset), "L2 / L1 DATE OFFSET")
	}
	enc.writeLabeled("", "END OF HEADER")
	return enc.w.Flush()
}

// WriteEpoch writes one DORIS epoch: a ">"-prefixed epoch line followed by
// one data line per ground station, in ascending StationID order.
func (enc *DorisEncoder) WriteEpoch(epo DorisEpoch) error {
	obsList := make([]DorisSatObs, len(epo.ObsList))
	copy(obsList, epo.ObsList)
	sort.Sort(ByStationID(obsList))

	fmt.Fprintf(enc.w, "> %4d %2d %2d %2d %2d%11.7f  %d%3d\n",
		epo.Time.Year(), int(epo.Time.Month()), epo.Time.Day(),
		epo.Time.Hour(), epo.Time.Minute(), float64(epo.Time.Second()),
		epo.Flag, len(obsList))

	for _, sta := range obsList {
		var b strings.Builder
		b.WriteString(string(sta.Station))
		for _, code := range enc.hdr.ObsTypes {
			obs, has := sta.Obss[code]
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
