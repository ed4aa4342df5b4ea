package rinex

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"time"
)

// parseIonexEpoch parses an "EPOCH OF FIRST/LAST MAP" or "EPOCH OF CURRENT
// MAP" value field: six whitespace-separated integers (year, month, day,
// hour, minute, second), 6I6-formatted. Fields are split rather than
// matched against a fixed time.Parse layout since the field width (6)
// leaves a variable number of leading spaces depending on the value's
// digit count.
func parseIonexEpoch(val string) (time.Time, error) {
	fields := strings.Fields(val)
	if len(fields) < 6 {
		return time.Time{}, fmt.Errorf("expected 6 integer fields, got %q", val)
	}
	nums := make([]int, 6)
	for i := 0; i < 6; i++ {
		n, err := strconv.Atoi(fields[i])
		if err != nil {
			return time.Time{}, fmt.Errorf("parse field %d: %v", i, err)
		}
		nums[i] = n
	}
	return time.Date(nums[0], time.Month(nums[1]), nums[2], nums[3], nums[4], nums[5], 0, time.UTC), nil
}

// IonexDecoder reads and decodes header and TEC-map records from a RINEX
// IONEX input stream. It mirrors MetDecoder's shape (header struct +
// bufio.Scanner + one current-record pointer) since IONEX, like meteo data,
// is a single flat series of epoch-keyed records rather than a per-SV one.
type IonexDecoder struct {
	Header IonexHeader
	sc     *bufio.Scanner

	pending  string // a line read ahead of the current record and not yet consumed
	havePend bool
	rec      []IonexRecord // all grid points of the map most recently read by NextMap
	epo      time.Time     // epoch of the map most recently read by NextMap
	lineNum  int
	err      error
	cfg      Config
}

// NewIonexDecoder creates a new decoder for RINEX IONEX data. The header
// must exist.
func NewIonexDecoder(r io.Reader, opts ...Option) (*IonexDecoder, error) {
	dec := &IonexDecoder{sc: bufio.NewScanner(r), cfg: resolveConfig(opts)}
	dec.Header, dec.err = dec.readHeader()
	return dec, dec.err
}

// Err returns the first non-EOF error encountered by the decoder.
func (dec *IonexDecoder) Err() error {
	if dec.err == io.EOF {
		return nil
	}
	return dec.err
}

func (dec *IonexDecoder) setErr(err error) {
	dec.err = errors.Join(dec.err, err)
}

// readLine advances to the next line, either the one pushed back by
// unreadLine or a fresh one from the scanner.
func (dec *IonexDecoder) readLine() bool {
	if dec.havePend {
		dec.havePend = false
		return true
	}
	if ok := dec.sc.Scan(); !ok {
		return ok
	}
	dec.lineNum++
	return true
}

// unreadLine pushes the current line back so the next readLine returns it
// again; used when a label-scan discovers it has read one record too far.
func (dec *IonexDecoder) unreadLine() {
	dec.pending = dec.sc.Text()
	dec.havePend = true
}

func (dec *IonexDecoder) line() string {
	if dec.havePend {
		return dec.pending
	}
	return dec.sc.Text()
}

func (dec *IonexDecoder) readHeader() (hdr IonexHeader, err error) {
readln:
	for dec.readLine() {
		line := dec.line()
		if len(line) < 60 {
			continue
		}

		val := line[:60]
		key := strings.TrimSpace(line[60:])
		hdr.Labels = append(hdr.Labels, key)

		switch key {
		case "IONEX VERSION / TYPE":
			if f64, perr := strconv.ParseFloat(strings.TrimSpace(val[:20]), 32); perr == nil {
				hdr.RINEXVersion = float32(f64)
			} else {
				return hdr, fmt.Errorf("rinex ionex: parse VERSION: %v", perr)
			}
			hdr.RINEXType = strings.TrimSpace(val[20:21])
		case "PGM / RUN BY / DATE":
			hdr.Pgm = strings.TrimSpace(val[:20])
			hdr.RunBy = strings.TrimSpace(val[20:40])
			if date, derr := parseHeaderDate(strings.TrimSpace(val[40:])); derr == nil {
				hdr.Date = date
			} else {
				log.Printf("rinex ionex header: parse date: %v", derr)
			}
		case "COMMENT":
			hdr.Comments = append(hdr.Comments, strings.TrimSpace(val))
		case "DESCRIPTION":
			hdr.Description = append(hdr.Description, strings.TrimSpace(val))
		case "EPOCH OF FIRST MAP":
			hdr.EpochOfFirstMap, err = parseIonexEpoch(val)
			if err != nil {
				return hdr, fmt.Errorf("rinex ionex: EPOCH OF FIRST MAP: %v", err)
			}
		case "EPOCH OF LAST MAP":
			hdr.EpochOfLastMap, err = parseIonexEpoch(val)
			if err != nil {
				return hdr, fmt.Errorf("rinex ionex: EPOCH OF LAST MAP: %v", err)
			}
		case "INTERVAL":
			hdr.IntervalSec, err = strconv.Atoi(strings.TrimSpace(val[:6]))
			if err != nil {
				return hdr, fmt.Errorf("rinex ionex: INTERVAL: %v", err)
			}
		case "# OF MAPS IN FILE":
			hdr.NumMaps, err = strconv.Atoi(strings.TrimSpace(val[:6]))
			if err != nil {
				return hdr, fmt.Errorf("rinex ionex: # OF MAPS IN FILE: %v", err)
			}
		case "MAPPING FUNCTION":
			hdr.MappingFunction = strings.TrimSpace(val[:4])
		case "ELEVATION CUTOFF":
			hdr.ElevationCutoff, err = parseFloat(val[:8])
			if err != nil {
				return hdr, fmt.Errorf("rinex ionex: ELEVATION CUTOFF: %v", err)
			}
		case "OBSERVABLES USED":
			hdr.Observables = strings.Fields(val)
		case "BASE RADIUS":
			hdr.BaseRadius, err = parseFloat(val[:8])
			if err != nil {
				return hdr, fmt.Errorf("rinex ionex: BASE RADIUS: %v", err)
			}
		case "MAP DIMENSION":
			hdr.MapDim, err = strconv.Atoi(strings.TrimSpace(val[:6]))
			if err != nil {
				return hdr, fmt.Errorf("rinex ionex: MAP DIMENSION: %v", err)
			}
		case "HGT1 / HGT2 / DHGT":
			hdr.Hgt, err = parseIonexGrid(val)
			if err != nil {
				return hdr, fmt.Errorf("rinex ionex: HGT1/HGT2/DHGT: %v", err)
			}
		case "LAT1 / LAT2 / DLAT":
			hdr.Lat, err = parseIonexGrid(val)
			if err != nil {
				return hdr, fmt.Errorf("rinex ionex: LAT1/LAT2/DLAT: %v", err)
			}
		case "LON1 / LON2 / DLON":
			hdr.Lon, err = parseIonexGrid(val)
			if err != nil {
				return hdr, fmt.Errorf("rinex ionex: LON1/LON2/DLON: %v", err)
			}
		case "EXPONENT":
			hdr.Exponent, err = strconv.Atoi(strings.TrimSpace(val[:6]))
			if err != nil {
				return hdr, fmt.Errorf("rinex ionex: EXPONENT: %v", err)
			}
		case "END OF HEADER":
			break readln
		default:
			// unknown labels are preserved verbatim in hdr.Labels for
			// lossless round-tripping, per spec.md section 4.4.
		}
	}

	if hdr.Exponent == 0 {
		hdr.Exponent = -1 // RINEX default TEC scaling when EXPONENT is absent
	}

	if err := dec.sc.Err(); err != nil {
		return hdr, err
	}
	if dec.cfg.ValidateHeader {
		if verr := validateHeader(&hdr, dec.cfg.TolerateMissingLabels); verr != nil {
			return hdr, verr
		}
	}
	return hdr, nil
}

// parseIonexGrid parses a "START1 START2 STEP" 3x6.1 header value field.
func parseIonexGrid(val string) (IonexGrid, error) {
	fields := strings.Fields(val)
	if len(fields) < 3 {
		return IonexGrid{}, fmt.Errorf("expected 3 fields, got %q", val)
	}
	start, err := parseFloat(fields[0])
	if err != nil {
		return IonexGrid{}, err
	}
	end, err := parseFloat(fields[1])
	if err != nil {
		return IonexGrid{}, err
	}
	step, err := parseFloat(fields[2])
	if err != nil {
		return IonexGrid{}, err
	}
	return IonexGrid{Start: start, End: end, Step: step}, nil
}

func ionexLabel(line string) string {
	if len(line) < 60 {
		return ""
	}
	return strings.TrimSpace(line[60:])
}

// NextMap reads one complete TEC map, plus its matching RMS map if one
// immediately follows, bounded by "START OF TEC/RMS MAP" / "END OF TEC/RMS
// MAP" labels. It returns false at EOF or on error.
func (dec *IonexDecoder) NextMap() bool {
	var tec, rms []int
	var epoch time.Time
	haveTec := false
	done := false

	for !done && dec.readLine() {
		label := ionexLabel(dec.line())

		switch {
		case strings.HasSuffix(label, "START OF TEC MAP"):
			if haveTec {
				dec.unreadLine()
				done = true
				continue
			}
			var err error
			epoch, tec, err = dec.readMapBody("END OF TEC MAP")
			if err != nil {
				dec.setErr(err)
				return false
			}
			haveTec = true
		case strings.HasSuffix(label, "START OF RMS MAP"):
			_, r, err := dec.readMapBody("END OF RMS MAP")
			if err != nil {
				dec.setErr(err)
				return false
			}
			rms = r
			done = true
		}
	}

	if !haveTec {
		if err := dec.sc.Err(); err != nil {
			dec.setErr(err)
		}
		return false
	}

	latN := dec.Header.Lat.N()
	lonN := dec.Header.Lon.N()
	recs := make([]IonexRecord, 0, len(tec))
	for i, v := range tec {
		latIdx := i / lonN
		lonIdx := i % lonN
		if latIdx >= latN {
			break
		}
		rec := IonexRecord{
			Epoch: epoch,
			Lat:   dec.Header.Lat.Start + float64(latIdx)*dec.Header.Lat.Step,
			Lon:   dec.Header.Lon.Start + float64(lonIdx)*dec.Header.Lon.Step,
			Hgt:   dec.Header.Hgt.Start,
			TEC:   v,
		}
		if i < len(rms) {
			rv := rms[i]
			rec.RMS = &rv
		}
		recs = append(recs, rec)
	}
	dec.rec = recs
	dec.epo = epoch
	return true
}

// readMapBody reads "EPOCH OF CURRENT MAP" followed by latitude-scan
// blocks until endLabel, returning the quantised integer values in
// lat-major, lon-minor order.
func (dec *IonexDecoder) readMapBody(endLabel string) (time.Time, []int, error) {
	var epoch time.Time
	var values []int
	lonN := dec.Header.Lon.N()

	for dec.readLine() {
		line := dec.line()
		label := ionexLabel(line)

		switch {
		case strings.HasSuffix(label, "EPOCH OF CURRENT MAP"):
			var err error
			epoch, err = parseIonexEpoch(line[:60])
			if err != nil {
				return epoch, nil, fmt.Errorf("rinex ionex: line %d: EPOCH OF CURRENT MAP: %v", dec.lineNum, err)
			}
		case strings.HasSuffix(label, "LAT/LON1/LON2/DLON/H"):
			row := make([]int, 0, lonN)
			for len(row) < lonN {
				if !dec.readLine() {
					return epoch, nil, fmt.Errorf("rinex ionex: line %d: unexpected EOF in TEC row", dec.lineNum)
				}
				rowLine := dec.line()
				pos := 0
				for pos+5 <= len(rowLine) && len(row) < lonN {
					v, err := strconv.Atoi(strings.TrimSpace(rowLine[pos : pos+5]))
					if err != nil {
						return epoch, nil, fmt.Errorf("rinex ionex: line %d: parse value: %v", dec.lineNum, err)
					}
					row = append(row, v)
					pos += 5
				}
			}
			values = append(values, row...)
		case strings.HasSuffix(label, endLabel):
			return epoch, values, nil
		}
	}

	if err := dec.sc.Err(); err != nil {
		return epoch, nil, err
	}
	return epoch, values, fmt.Errorf("rinex ionex: line %d: missing %s", dec.lineNum, endLabel)
}

// Map returns the grid records of the map most recently read by NextMap.
func (dec *IonexDecoder) Map() []IonexRecord {
	return dec.rec
}

// MapEpoch returns the epoch of the map most recently read by NextMap.
func (dec *IonexDecoder) MapEpoch() time.Time {
	return dec.epo
}
