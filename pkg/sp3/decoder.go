package sp3

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/de-bkg/gognss/pkg/gnss"
)

// ErrNoHeader is returned when the input does not start with a "#" SP3
// version line.
var ErrNoHeader = errors.New("sp3: missing or malformed header")

// Decoder reads an SP3 header followed by its epoch records, mirroring the
// rinex package's readHeader/NextEpoch decoder shape: a header parsed once
// up front, then one epoch pulled at a time by repeated NextEpoch calls.
type Decoder struct {
	Header Header

	sc       *bufio.Scanner
	pending  string
	havePend bool
	lineNum  int

	rec []Record
	epo time.Time
	err error
}

// NewDecoder creates a new decoder and immediately parses the SP3 header.
func NewDecoder(r io.Reader) (*Decoder, error) {
	dec := &Decoder{sc: bufio.NewScanner(r)}
	dec.Header, dec.err = dec.readHeader()
	return dec, dec.err
}

// Err returns the first non-EOF error encountered by the decoder.
func (dec *Decoder) Err() error {
	if dec.err == io.EOF {
		return nil
	}
	return dec.err
}

func (dec *Decoder) setErr(err error) {
	dec.err = errors.Join(dec.err, err)
}

func (dec *Decoder) readLine() bool {
	if dec.havePend {
		dec.havePend = false
		return true
	}
	if ok := dec.sc.Scan(); !ok {
		return false
	}
	dec.lineNum++
	return true
}

func (dec *Decoder) unreadLine() {
	dec.havePend = true
}

func (dec *Decoder) line() string {
	if dec.havePend {
		return dec.pending
	}
	dec.pending = dec.sc.Text()
	return dec.pending
}

// readHeader parses the SP3 "#", "##", "+", "++", "%c", "%f", "%i" and "/*"
// lines, stopping (without consuming) at the first epoch line.
func (dec *Decoder) readHeader() (hdr Header, err error) {
	satsDeclared := 0

	for dec.readLine() {
		line := dec.line()
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "*") || strings.HasPrefix(line, "EOF") {
			dec.unreadLine()
			break
		}

		switch {
		case dec.lineNum == 1:
			if !strings.HasPrefix(line, "#") || len(line) < 3 {
				return hdr, ErrNoHeader
			}
			hdr.Version = line[1:2]
			hdr.FileType = line[2:3]
			t, terr := parseSp3Time(line[3:])
			if terr != nil {
				return hdr, fmt.Errorf("sp3: parse header epoch: %v", terr)
			}
			hdr.StartEpoch = t
			fields := strings.Fields(line[32:])
			if len(fields) >= 4 {
				hdr.NumEpochs, _ = strconv.Atoi(fields[0])
				hdr.DataUsed = fields[1]
				hdr.CoordSys = fields[2]
				hdr.OrbitType = fields[3]
			}
			if len(fields) >= 5 {
				hdr.Agency = fields[4]
			}

		case dec.lineNum == 2 && strings.HasPrefix(line, "##"):
			fields := strings.Fields(line[2:])
			if len(fields) >= 5 {
				hdr.GPSWeek, _ = strconv.Atoi(fields[0])
				hdr.SecOfWeek, _ = strconv.ParseFloat(fields[1], 64)
				hdr.Interval, _ = strconv.ParseFloat(fields[2], 64)
				hdr.ModJulianDay, _ = strconv.Atoi(fields[3])
				hdr.FracDay, _ = strconv.ParseFloat(fields[4], 64)
			}

		case strings.HasPrefix(line, "+ ") && len(line) > 9:
			if satsDeclared == 0 {
				n, _ := strconv.Atoi(strings.TrimSpace(line[3:6]))
				satsDeclared = n
			}
			for col := 9; col+3 <= len(line) && len(hdr.Satellites) < satsDeclared; col += 3 {
				tok := strings.TrimSpace(line[col : col+3])
				if tok == "" || tok == "0" {
					continue
				}
				prn, perr := parseSp3PRN(tok)
				if perr != nil {
					continue
				}
				hdr.Satellites = append(hdr.Satellites, prn)
			}

		case strings.HasPrefix(line, "++") && len(line) > 9:
			for col := 9; col+3 <= len(line) && len(hdr.Accuracies) < satsDeclared; col += 3 {
				tok := strings.TrimSpace(line[col : col+3])
				exp, aerr := strconv.Atoi(tok)
				if aerr != nil {
					exp = 0
				}
				idx := len(hdr.Accuracies)
				if idx < len(hdr.Satellites) {
					hdr.Accuracies = append(hdr.Accuracies, Accuracy{SV: hdr.Satellites[idx], Exp: exp})
				}
			}

		case strings.HasPrefix(line, "%c") && hdr.TimeSystem == "":
			fields := strings.Fields(line[2:])
			if len(fields) >= 3 {
				hdr.TimeSystem = fields[2]
			}

		case strings.HasPrefix(line, "%f"):
			fields := strings.Fields(line[2:])
			if len(fields) >= 2 {
				hdr.PosBase, _ = strconv.ParseFloat(fields[0], 64)
				hdr.ClockBase, _ = strconv.ParseFloat(fields[1], 64)
			}

		case strings.HasPrefix(line, "%i"):
			// reserved, not used downstream.

		case strings.HasPrefix(line, "/*"):
			hdr.Comments = append(hdr.Comments, strings.TrimSpace(line[2:]))
		}
	}

	if err := dec.sc.Err(); err != nil {
		return hdr, err
	}
	return hdr, nil
}

// parseSp3Time parses the free-format "yyyy mm dd hh mm ss.ssssssss" epoch
// field shared by the "#" header line and every "*" epoch line.
func parseSp3Time(s string) (time.Time, error) {
	fields := strings.Fields(s)
	if len(fields) < 6 {
		return time.Time{}, fmt.Errorf("sp3: malformed epoch: %q", s)
	}
	year, err := strconv.Atoi(fields[0])
	if err != nil {
		return time.Time{}, err
	}
	month, err := strconv.Atoi(fields[1])
	if err != nil {
		return time.Time{}, err
	}
	day, err := strconv.Atoi(fields[2])
	if err != nil {
		return time.Time{}, err
	}
	hour, err := strconv.Atoi(fields[3])
	if err != nil {
		return time.Time{}, err
	}
	minute, err := strconv.Atoi(fields[4])
	if err != nil {
		return time.Time{}, err
	}
	secF, err := strconv.ParseFloat(fields[5], 64)
	if err != nil {
		return time.Time{}, err
	}
	sec := int(secF)
	nsec := int((secF - float64(sec)) * 1e9)
	return time.Date(year, time.Month(month), day, hour, minute, sec, nsec, time.UTC), nil
}

// parseSp3PRN parses a satellite token from a "+" roster line, e.g. "G01",
// "R02", or a bare "01" (GPS assumed, matching the SP3-a convention).
func parseSp3PRN(tok string) (gnss.PRN, error) {
	if len(tok) > 0 && (tok[0] < '0' || tok[0] > '9') {
		return gnss.NewPRN(tok)
	}
	return gnss.NewPRN("G" + tok)
}

// NextEpoch reads the next epoch's worth of P/V records. It returns false
// once the input is exhausted or an "EOF" trailer line is reached.
func (dec *Decoder) NextEpoch() bool {
	dec.rec = nil

	for dec.readLine() {
		line := dec.line()
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "EOF") {
			return false
		}
		if !strings.HasPrefix(line, "*") {
			continue
		}

		t, err := parseSp3Time(line[1:])
		if err != nil {
			dec.setErr(fmt.Errorf("sp3: line %d: %v", dec.lineNum, err))
			return false
		}
		dec.epo = t
		recByPRN := map[gnss.PRN]*Record{}
		order := make([]gnss.PRN, 0, len(dec.Header.Satellites))

		for dec.readLine() {
			body := dec.line()
			if body == "" {
				continue
			}
			if strings.HasPrefix(body, "*") || strings.HasPrefix(body, "EOF") {
				dec.unreadLine()
				break
			}
			if len(body) < 4 || (body[0] != 'P' && body[0] != 'V') {
				continue
			}

			prn, perr := parseSp3PRN(strings.TrimSpace(body[1:4]))
			if perr != nil {
				dec.setErr(fmt.Errorf("sp3: line %d: parse satellite id: %v", dec.lineNum, perr))
				return false
			}

			fields := strings.Fields(body[4:])
			vals := make([]float64, 4)
			for i := 0; i < 4 && i < len(fields); i++ {
				vals[i], _ = strconv.ParseFloat(fields[i], 64)
			}

			r, ok := recByPRN[prn]
			if !ok {
				r = &Record{Epoch: t, SV: prn}
				recByPRN[prn] = r
				order = append(order, prn)
			}

			switch body[0] {
			case 'P':
				r.Pos = Coord{X: vals[0] * 1000, Y: vals[1] * 1000, Z: vals[2] * 1000}
				if !isNoData(vals[3]) {
					clk := vals[3]
					r.Clock = &clk
				}
				if len(body) >= 76 {
					r.ClockEvent = body[75] == 'E'
				}
				if len(body) >= 80 {
					r.PosPred = body[79] == 'P'
				}
			case 'V':
				vel := CoordNEU{N: vals[0] / 10000, E: vals[1] / 10000, Up: vals[2] / 10000}
				r.Vel = &vel
				if !isNoData(vals[3]) {
					rate := vals[3] / 10000
					r.ClockRate = &rate
				}
			}
		}

		dec.rec = make([]Record, 0, len(order))
		for _, prn := range order {
			dec.rec = append(dec.rec, *recByPRN[prn])
		}
		return true
	}

	if err := dec.sc.Err(); err != nil {
		dec.setErr(fmt.Errorf("sp3: read epochs: %v", err))
	}
	return false
}

// Epoch returns the time of the most recently decoded epoch.
func (dec *Decoder) Epoch() time.Time {
	return dec.epo
}

// Records returns the satellite records decoded for the most recent
// NextEpoch call, in the order their satellites first appear in the epoch
// block.
func (dec *Decoder) Records() []Record {
	return dec.rec
}
