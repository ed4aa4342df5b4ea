package rinex

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// MetEncoder writes a RINEX3 meteo header and epochs in fixed-column
// ASCII, the observation-code order re-derived from the header exactly as
// ObsEncoder does for signal observations (spec.md section 4.4).
type MetEncoder struct {
	w   *bufio.Writer
	hdr MeteoHeader
}

// NewMetEncoder creates an encoder that will write w.
func NewMetEncoder(w io.Writer) *MetEncoder {
	return &MetEncoder{w: bufio.NewWriter(w)}
}

// WriteHeader writes a RINEX3 meteo header.
func (enc *MetEncoder) WriteHeader(hdr MeteoHeader) error {
	enc.hdr = hdr
	version := hdr.RINEXVersion
	if version == 0 {
		version = 3.04
	}
	enc.writeLabeled(fmt.Sprintf("%9.2f%11s%-20s%20s", version, "", "M", "METEOROLOGICAL DATA"), "RINEX VERSION / TYPE")
	enc.writeLabeled(fmt.Sprintf("%-20s%-20s%-20s", hdr.Pgm, hdr.RunBy, hdr.Date.Format("20060102 150405 UTC")), "PGM / RUN BY / DATE")
	for _, c := range hdr.Comments {
		enc.writeLabeled(c, "COMMENT")
	}
	enc.writeLabeled(hdr.MarkerName, "MARKER NAME")
	if hdr.MarkerNumber != "" {
		enc.writeLabeled(hdr.MarkerNumber, "MARKER NUMBER")
	}
	if hdr.DOI != "" {
		enc.writeLabeled(hdr.DOI, "DOI")
	}
	for _, l := range hdr.Licenses {
		enc.writeLabeled(l, "LICENSE OF USE")
	}
	for _, s := range hdr.StationInfos {
		enc.writeLabeled(s, "STATION INFORMATION")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%6d", len(hdr.ObsTypes))
	for _, t := range hdr.ObsTypes {
		fmt.Fprintf(&b, "%6s", string(t))
	}
	enc.writeLabeled(b.String(), "# / TYPES OF OBSERV")

	for _, sens := range hdr.Sensors {
		// Columns follow metdecoder.go's readHeader slicing: model[0:20],
		// type[20:40], accuracy[40:53], observation-type[57:59].
		enc.writeLabeled(fmt.Sprintf("%-20s%-20s%13.4f%4s%2s", sens.Model, sens.Type, sens.Accuracy, "", sens.ObservationType), "SENSOR MOD/TYPE/ACC")
		// x[0:14], y[14:28], z[28:42], height[44:56], observation-type[57:59].
		enc.writeLabeled(fmt.Sprintf("%14.4f%14.4f%14.4f%2s%12.4f%1s%2s", sens.Position.X, sens.Position.Y, sens.Position.Z, "", sens.Height, "", sens.ObservationType), "SENSOR POS XYZ/H")
	}

	enc.writeLabeled("", "END OF HEADER")
	return enc.w.Flush()
}

func (enc *MetEncoder) writeLabeled(value, label string) {
	if len(value) > 60 {
		value = value[:60]
	}
	fmt.Fprintf(enc.w, "%-60s%-20s\n", value, label)
}

// WriteEpoch writes one meteo epoch: the epoch timestamp followed by the
// declared observables in header order, 8 per line with 4-column
// continuation indentation, per metdecoder.go's NextEpoch column layout.
func (enc *MetEncoder) WriteEpoch(epo MeteoEpoch) error {
	fmt.Fprintf(enc.w, " %4d %2d %2d %2d %2d %2d",
		epo.Time.Year(), int(epo.Time.Month()), epo.Time.Day(),
		epo.Time.Hour(), epo.Time.Minute(), epo.Time.Second())

	for i, v := range epo.Obs {
		if i > 0 && i%8 == 0 {
			enc.w.WriteByte('\n')
			enc.w.WriteString("    ")
		}
		fmt.Fprintf(enc.w, "%7.1f", v)
	}
	enc.w.WriteByte('\n')
	return enc.w.Flush()
}
