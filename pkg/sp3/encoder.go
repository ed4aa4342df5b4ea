package sp3

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"
)

// Encoder writes an SP3 header followed by per-epoch position/velocity/clock
// records. The teacher repo ships no SP3 formatter; this encoder follows the
// rinex package's WriteHeader/WriteEpoch encoder shape instead.
type Encoder struct {
	w   *bufio.Writer
	hdr Header
}

// NewEncoder creates an encoder that will write w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: bufio.NewWriter(w)}
}

// WriteHeader writes the SP3 "#", "##", "+", "++", "%c", "%f", "%i" and "/*"
// lines.
func (enc *Encoder) WriteHeader(hdr Header) error {
	enc.hdr = hdr
	version := hdr.Version
	if version == "" {
		version = "c"
	}
	fileType := hdr.FileType
	if fileType == "" {
		fileType = "P"
	}

	t := hdr.StartEpoch
	fmt.Fprintf(enc.w, "#%s%s%4d %2d %2d %2d %2d %11.8f %7d %-5s %-5s %-3s %-4s\n",
		version, fileType, t.Year(), int(t.Month()), t.Day(), t.Hour(), t.Minute(),
		float64(t.Second())+float64(t.Nanosecond())/1e9,
		hdr.NumEpochs, hdr.DataUsed, hdr.CoordSys, hdr.OrbitType, hdr.Agency)

	fmt.Fprintf(enc.w, "## %4d %15.8f %14.8f %5d %15.13f\n",
		hdr.GPSWeek, hdr.SecOfWeek, hdr.Interval, hdr.ModJulianDay, hdr.FracDay)

	ns := len(hdr.Satellites)
	const perLine = 17
	for i := 0; i < ns || i == 0; i += perLine {
		var b strings.Builder
		if i == 0 {
			fmt.Fprintf(&b, "+  %3d   ", ns)
		} else {
			b.WriteString("+        ")
		}
		for j := i; j < i+perLine; j++ {
			if j < ns {
				fmt.Fprintf(&b, "%s", hdr.Satellites[j].String())
			} else {
				b.WriteString("  0")
			}
		}
		enc.w.WriteString(b.String())
		enc.w.WriteByte('\n')
		if ns == 0 {
			break
		}
	}

	for i := 0; i < ns || i == 0; i += perLine {
		var b strings.Builder
		b.WriteString("++       ")
		for j := i; j < i+perLine; j++ {
			exp := 0
			if j < len(hdr.Accuracies) {
				exp = hdr.Accuracies[j].Exp
			}
			fmt.Fprintf(&b, "%3d", exp)
		}
		enc.w.WriteString(b.String())
		enc.w.WriteByte('\n')
		if ns == 0 {
			break
		}
	}

	fmt.Fprintf(enc.w, "%%c %-2s  cc %-3s ccc cccc cccc cccc cccc ccccc ccccc ccccc ccccc\n", "L", orDefault(hdr.TimeSystem, "GPS"))
	fmt.Fprintf(enc.w, "%%f %10.7f %12.9f  0.00000000000  0.000000000000000\n", hdr.PosBase, hdr.ClockBase)
	enc.w.WriteString("%i    0    0    0    0      0      0      0      0         0\n")
	for _, c := range hdr.Comments {
		fmt.Fprintf(enc.w, "/* %-57s\n", c)
	}
	return enc.w.Flush()
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// WriteEpoch writes one "*" epoch line followed by a "P" record per
// satellite, in the order records are given; a "V" record follows the "P"
// record only when the Record carries Vel.
func (enc *Encoder) WriteEpoch(epoch time.Time, recs []Record) error {
	fmt.Fprintf(enc.w, "*  %4d %2d %2d %2d %2d %11.8f\n",
		epoch.Year(), int(epoch.Month()), epoch.Day(), epoch.Hour(), epoch.Minute(),
		float64(epoch.Second())+float64(epoch.Nanosecond())/1e9)

	for _, r := range recs {
		clk := sp3NoData
		if r.Clock != nil {
			clk = *r.Clock
		}
		fmt.Fprintf(enc.w, "P%s%14.6f%14.6f%14.6f%14.6f\n",
			r.SV.String(), r.Pos.X/1000, r.Pos.Y/1000, r.Pos.Z/1000, clk)

		if r.Vel != nil {
			rate := sp3NoData
			if r.ClockRate != nil {
				rate = *r.ClockRate * 10000
			}
			fmt.Fprintf(enc.w, "V%s%14.6f%14.6f%14.6f%14.6f\n",
				r.SV.String(), r.Vel.N*10000, r.Vel.E*10000, r.Vel.Up*10000, rate)
		}
	}
	return enc.w.Flush()
}

// WriteEOF writes the terminal "EOF" line.
func (enc *Encoder) WriteEOF() error {
	enc.w.WriteString("EOF\n")
	return enc.w.Flush()
}
