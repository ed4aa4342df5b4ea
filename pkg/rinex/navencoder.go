package rinex

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strings"
	"time"
)

// NavEncoder writes a RINEX3 navigation header and ephemeris records in
// fixed-column ASCII. The teacher ships no navigation formatter -- only
// NavDecoder -- so this mirrors ObsEncoder's shape (a *bufio.Writer plus
// the header fields it needs to reproduce) generalised to the 4-float,
// D19.12-style data lines navdecoder.go's parseFloatsFromLine consumes.
type NavEncoder struct {
	w   *bufio.Writer
	hdr NavHeader
}

// NewNavEncoder creates an encoder that will write w.
func NewNavEncoder(w io.Writer) *NavEncoder {
	return &NavEncoder{w: bufio.NewWriter(w)}
}

// WriteHeader writes a RINEX3 navigation header.
func (enc *NavEncoder) WriteHeader(hdr NavHeader) error {
	enc.hdr = hdr
	version := hdr.RINEXVersion
	if version == 0 {
		version = 3.04
	}
	enc.writeLabeled(fmt.Sprintf("%9.2f%11s%-20s%1s%19s", version, "", "NAVIGATION DATA", hdr.SatSystem.Abbr(), ""), "RINEX VERSION / TYPE")
	enc.writeLabeled(fmt.Sprintf("%-20s%-20s%-20s", hdr.Pgm, hdr.RunBy, hdr.Date.Format("20060102 150405 UTC")), "PGM / RUN BY / DATE")
	for _, c := range hdr.Comments {
		enc.writeLabeled(c, "COMMENT")
	}
	if hdr.MergedFiles > 0 {
		enc.writeLabeled(fmt.Sprintf("%9d", hdr.MergedFiles), "MERGED FILE")
	}
	if hdr.DOI != "" {
		enc.writeLabeled(hdr.DOI, "DOI")
	}
	for _, l := range hdr.Licenses {
		enc.writeLabeled(l, "LICENSE OF USE")
	}
	enc.writeLabeled("", "END OF HEADER")
	return enc.w.Flush()
}

func (enc *NavEncoder) writeLabeled(value, label string) {
	if len(value) > 60 {
		value = value[:60]
	}
	fmt.Fprintf(enc.w, "%-60s%-20s\n", value, label)
}

// WriteEphemeris writes one ephemeris record in RINEX3 form: a
// "Gnn epoch bias drift driftrate" kernel line followed by the message's
// data lines, each four D19.12-style fields wide per spec.md section 4.4's
// "4-line (v2) or 8-line (v3+) fixed-column record" contract.
func (enc *NavEncoder) WriteEphemeris(eph Eph) error {
	switch e := eph.(type) {
	case *EphGPS:
		enc.writeKernel(e.PRN, e.TOC, e.ClockBias, e.ClockDrift, e.ClockDriftRate)
		enc.writeDataLine(e.IODE, e.Crs, e.DeltaN, e.M0)
		enc.writeDataLine(e.Cuc, e.Ecc, e.Cus, e.SqrtA)
		enc.writeDataLine(e.Toe, e.Cic, e.Omega0, e.Cis)
		enc.writeDataLine(e.I0, e.Crc, e.Omega, e.OmegaDot)
		enc.writeDataLine(e.IDOT, e.L2Codes, e.ToeWeek, e.L2PFlag)
		enc.writeDataLine(e.URA, e.Health, e.TGD, e.IODC)
		enc.writeDataLine(e.Tom, e.FitInterval, 0, 0)
	case *EphGLO:
		enc.writeKernel(e.PRN, e.TOC, e.ClockBias, e.RelFreqBias, e.MsgFrameTime)
		enc.writeDataLine(e.PosX, e.VelX, e.AccX, 0)
		enc.writeDataLine(e.PosY, e.VelY, e.AccY, 0)
		enc.writeDataLine(e.PosZ, e.VelZ, e.AccZ, e.Health)
	case *EphGAL:
		enc.writeKernel(e.PRN, e.TOC, e.ClockBias, e.ClockDrift, e.ClockDriftRate)
		enc.writeDataLine(e.IODNav, e.Crs, e.DeltaN, e.M0)
		enc.writeDataLine(e.Cuc, e.Ecc, e.Cus, e.SqrtA)
		enc.writeDataLine(e.Toe, e.Cic, e.Omega0, e.Cis)
		enc.writeDataLine(e.I0, e.Crc, e.Omega, e.OmegaDot)
		enc.writeDataLine(e.IDOT, e.DataSrc, e.ToeWeek, 0)
		enc.writeDataLine(e.SISA, e.Health, e.BGDE5a, e.BGDE5b)
		enc.writeDataLine(e.Tom, 0, 0, 0)
	case *EphQZSS:
		enc.writeKernel(e.PRN, e.TOC, e.ClockBias, e.ClockDrift, e.ClockDriftRate)
		enc.writeDataLine(e.IODE, e.Crs, e.DeltaN, e.M0)
		enc.writeDataLine(e.Cuc, e.Ecc, e.Cus, e.SqrtA)
		enc.writeDataLine(e.Toe, e.Cic, e.Omega0, e.Cis)
		enc.writeDataLine(e.I0, e.Crc, e.Omega, e.OmegaDot)
		enc.writeDataLine(e.IDOT, e.L2Codes, e.ToeWeek, e.L2PFlag)
		enc.writeDataLine(e.URA, e.Health, e.TGD, e.IODC)
		enc.writeDataLine(e.Tom, e.FitInterval, 0, 0)
	case *EphBDS:
		enc.writeKernel(e.PRN, e.TOC, e.ClockBias, e.ClockDrift, e.ClockDriftRate)
		enc.writeDataLine(e.AODE, e.Crs, e.DeltaN, e.M0)
		enc.writeDataLine(e.Cuc, e.Ecc, e.Cus, e.SqrtA)
		enc.writeDataLine(e.Toe, e.Cic, e.Omega0, e.Cis)
		enc.writeDataLine(e.I0, e.Crc, e.Omega, e.OmegaDot)
		enc.writeDataLine(e.IDOT, 0, e.ToeWeek, 0)
		enc.writeDataLine(e.SVAccuracy, e.SatH1, e.TGD1, e.TGD2)
		enc.writeDataLine(e.Tom, e.AODC, 0, 0)
	case *EphNavIC:
		enc.writeKernel(e.PRN, e.TOC, e.ClockBias, e.ClockDrift, e.ClockDriftRate)
		enc.writeDataLine(e.IODEC, e.Crs, e.DeltaN, e.M0)
		enc.writeDataLine(e.Cuc, e.Ecc, e.Cus, e.SqrtA)
		enc.writeDataLine(e.Toe, e.Cic, e.Omega0, e.Cis)
		enc.writeDataLine(e.I0, e.Crc, e.Omega, e.OmegaDot)
		enc.writeDataLine(e.IDOT, 0, e.ToeWeek, 0)
		enc.writeDataLine(e.URA, e.Health, e.TGD, 0)
		enc.writeDataLine(e.Tom, 0, 0, 0)
	case *EphSBAS:
		enc.writeKernel(e.PRN, e.TOC, e.ClockBias, e.ClockDrift, e.Tom)
		enc.writeDataLine(e.PosX, e.VelX, e.AccX, e.Health)
		enc.writeDataLine(e.PosY, e.VelY, e.AccY, e.URA)
		enc.writeDataLine(e.PosZ, e.VelZ, e.AccZ, e.IODN)
	default:
		return &FormatError{Reason: "unsupported ephemeris type for encoding"}
	}
	return enc.w.Flush()
}

// writeKernel writes a RINEX3 ephemeris kernel line: "Gnn yyyy mm dd hh mm
// ss bias drift driftrate", per navdecoder.go's parseToC/decodeEPH column
// layout (prn in [0:3], TOC in [4:23], three D19.12 fields following).
func (enc *NavEncoder) writeKernel(prn PRN, toc time.Time, f1, f2, f3 float64) {
	enc.w.WriteString(prn.String())
	enc.w.WriteByte(' ')
	enc.w.WriteString(toc.Format(TimeOfClockFormat))
	enc.w.WriteString(formatNavFloat(f1))
	enc.w.WriteString(formatNavFloat(f2))
	enc.w.WriteString(formatNavFloat(f3))
	enc.w.WriteByte('\n')
}

func (enc *NavEncoder) writeDataLine(f1, f2, f3, f4 float64) {
	var b strings.Builder
	b.WriteString("    ")
	b.WriteString(formatNavFloat(f1))
	b.WriteString(formatNavFloat(f2))
	b.WriteString(formatNavFloat(f3))
	b.WriteString(formatNavFloat(f4))
	line := strings.TrimRight(b.String(), " ")
	enc.w.WriteString(line)
	enc.w.WriteByte('\n')
}

// formatNavFloat formats v as a 19-column D19.12-style normalised
// scientific field (sign, no leading integer digit, 12 mantissa digits,
// "E", signed 2-digit exponent) -- the width navdecoder.go's
// parseFloatsFromLine/parseFloat slices expect.
func formatNavFloat(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		v = 0
	}
	neg := math.Signbit(v) && v != 0
	av := math.Abs(v)

	exp := 0
	mant := 0.0
	if av != 0 {
		exp = int(math.Floor(math.Log10(av))) + 1
		mant = av / math.Pow(10, float64(exp))
		for mant >= 1.0 {
			mant /= 10
			exp++
		}
		for mant < 0.1 {
			mant *= 10
			exp--
		}
		// Rounding to 12 digits may carry the mantissa back up to 1.0.
		rounded := fmt.Sprintf("%.12f", mant)
		if rounded[:1] == "1" {
			mant /= 10
			exp++
		}
	}

	mantStr := fmt.Sprintf("%.12f", mant) // "0.123456789012"
	mantStr = strings.TrimPrefix(mantStr, "0")

	sign := " "
	if neg {
		sign = "-"
	}
	expSign := "+"
	if exp < 0 {
		expSign = "-"
		exp = -exp
	}
	core := fmt.Sprintf("%s%sE%s%02d", sign, mantStr, expSign, exp)
	return fmt.Sprintf("%19s", core)
}
