package rinex

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// DorisDecoder reads and decodes header and data records from a RINEX
// DORIS input stream. Structurally this is the ObsDecoder shape (header
// struct + bufio.Scanner + one current-epoch pointer) keyed by StationID
// rather than PRN, since a DORIS epoch line is column-identical to a
// RINEX3 observation epoch line save for the roster it carries.
type DorisDecoder struct {
	Header  DorisHeader
	sc      *bufio.Scanner
	epo     *DorisEpoch
	lineNum int
	err     error
	cfg     Config
}

// NewDorisDecoder creates a new decoder for RINEX DORIS data. The header
// must exist.
func NewDorisDecoder(r io.Reader, opts ...Option) (*DorisDecoder, error) {
	dec := &DorisDecoder{sc: bufio.NewScanner(r), cfg: resolveConfig(opts)}
	dec.Header, dec.err = dec.readHeader()
	return dec, dec.err
}

// Err returns the first non-EOF error encountered by the decoder.
func (dec *DorisDecoder) Err() error {
	if dec.err == io.EOF {
		return nil
	}
	return dec.err
}

func (dec *DorisDecoder) setErr(err error) {
	dec.err = errors.Join(dec.err, err)
}

func (dec *DorisDecoder) readLine() bool {
	if ok := dec.sc.Scan(); !ok {
		return ok
	}
	dec.lineNum++
	return true
}

func (dec *DorisDecoder) line() string {
	return dec.sc.Text()
}

func (dec *DorisDecoder) readHeader() (hdr DorisHeader, err error) {
readln:
	for dec.readLine() {
		line := dec.line()
		if dec.lineNum == 1 && !strings.Contains(line, "RINEX VERS") {
			return hdr, ErrNoHeader
		}
		if len(line) < 60 {
			continue
		}

		val := line[:60]
		key := strings.TrimSpace(line[60:])
		hdr.Labels = append(hdr.Labels, key)

		switch key {
		case "RINEX VERSION / TYPE":
			if f64, perr := strconv.ParseFloat(strings.TrimSpace(val[:20]), 32); perr == nil {
				hdr.RINEXVersion = float32(f64)
			} else {
				return hdr, fmt.Errorf("rinex doris: parse VERSION: %v", perr)
			}
			hdr.RINEXType = strings.TrimSpace(val[20:21])
		case "PGM / RUN BY / DATE":
			hdr.Pgm = strings.TrimSpace(val[:20])
			hdr.RunBy = strings.TrimSpace(val[20:40])
			hdr.Date = strings.TrimSpace(val[40:])
		case "COMMENT":
			hdr.Comments = append(hdr.Comments, strings.TrimSpace(val))
		case "MARKER NAME":
			hdr.MarkerName = strings.TrimSpace(val)
		case "MARKER NUMBER":
			hdr.MarkerNumber = strings.TrimSpace(val[:20])
		case "SYS / # / OBS TYPES":
			hdr.ObsTypes = append(hdr.ObsTypes, convStringsToObscodes(strings.Fields(val[7:]))...)
		case "SIGNAL STRENGTH UNIT":
			hdr.SignalStrengthUnit = strings.TrimSpace(val[:20])
		case "TIME OF FIRST OBS":
			t, terr := time.Parse(epochTimeFormat, strings.TrimSpace(val[:43]))
			if terr != nil {
				return hdr, fmt.Errorf("rinex doris: parse TIME OF FIRST OBS: %v", terr)
			}
			hdr.TimeOfFirstObs = t
		case "TIME OF LAST OBS":
			t, terr := time.Parse(epochTimeFormat, strings.TrimSpace(val[:43]))
			if terr != nil {
				return hdr, fmt.Errorf("rinex doris: parse TIME OF LAST OBS: %v", terr)
			}
			hdr.TimeOfLastObs = t
		case "L2 / L1 DATE OFFSET":
			hdr.L2L1DateOffset, err = parseFloat(val[:10])
			if err != nil {
				return hdr, fmt.Errorf("rinex doris: parse L2 / L1 DATE OFFSET: %v", err)
			}
		case "STATION REFERENCE":
			beacon, berr := parseDorisBeacon(val)
			if berr != nil {
				return hdr, fmt.Errorf("rinex doris: line %d: %v", dec.lineNum, berr)
			}
			hdr.Stations = append(hdr.Stations, beacon)
		case "END OF HEADER":
			break readln
		default:
			// unknown labels preserved verbatim in hdr.Labels.
		}
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

// parseDorisBeacon parses a "STATION REFERENCE" header value field:
// station number, DOMES number, station name, beacon generation, and
// frequency shift factor k, whitespace-separated.
func parseDorisBeacon(val string) (DorisBeacon, error) {
	fields := strings.Fields(val)
	if len(fields) < 2 {
		return DorisBeacon{}, &FormatError{Reason: "doris: malformed STATION REFERENCE: " + val}
	}
	id, err := NewStationID(fields[0])
	if err != nil {
		return DorisBeacon{}, err
	}
	beacon := DorisBeacon{ID: id}
	if len(fields) > 1 {
		beacon.DOMES = fields[1]
	}
	if len(fields) > 2 {
		beacon.Name = fields[2]
	}
	if len(fields) > 3 {
		beacon.BeaconType = fields[3]
	}
	if len(fields) > 4 {
		if k, kerr := strconv.Atoi(fields[4]); kerr == nil {
			beacon.K = k
		}
	}
	return beacon, nil
}

// NextEpoch reads the observations for the next DORIS epoch. It returns
// false when the scan stops, either by reaching the end of the input or
// an error.
func (dec *DorisDecoder) NextEpoch() bool {
readln:
	for dec.readLine() {
		line := dec.line()
		if len(line) < 1 {
			continue
		}
		if !strings.HasPrefix(line, "> ") {
			continue
		}

		epoFlag, err := strconv.Atoi(line[31:32])
		if err != nil {
			dec.setErr(fmt.Errorf("rinex doris: parse epoch flag in line %d: %v", dec.lineNum, err))
			return false
		}

		epoTime, err := time.Parse(epochTimeFormat, line[2:29])
		if err != nil {
			dec.setErr(fmt.Errorf("rinex doris: line %d: %v", dec.lineNum, err))
			return false
		}

		numSta, err := strconv.Atoi(strings.TrimSpace(line[32:35]))
		if err != nil {
			dec.setErr(fmt.Errorf("rinex doris: line %d: %v", dec.lineNum, err))
			return false
		}

		dec.epo = &DorisEpoch{Time: epoTime, Flag: int8(epoFlag), NumSta: uint8(numSta),
			ObsList: make([]DorisSatObs, 0, numSta)}

		for ii := 1; ii <= numSta; ii++ {
			if ok := dec.readLine(); !ok {
				break readln
			}
			line = dec.line()
			linelen := len(line)

			sta, err := NewStationID(line[0:3])
			if err != nil {
				dec.setErr(fmt.Errorf("rinex doris: parse station id in line %d: %v", dec.lineNum, err))
				return false
			}

			obsPerTyp := make(map[ObsCode]Obs, len(dec.Header.ObsTypes))
			for ityp, typ := range dec.Header.ObsTypes {
				pos := 3 + 16*ityp
				if pos >= linelen {
					obsPerTyp[typ] = Obs{}
					continue
				}
				end := pos + 16
				if end > linelen {
					end = linelen
				}
				obs, err := decodeObs(line[pos:end], epoFlag)
				if err != nil {
					dec.setErr(fmt.Errorf("rinex doris: parse %s observation in line %d: %v", typ, dec.lineNum, err))
					return false
				}
				obsPerTyp[typ] = obs
			}
			dec.epo.ObsList = append(dec.epo.ObsList, DorisSatObs{Station: sta, Obss: obsPerTyp})
		}
		return true
	}

	if err := dec.sc.Err(); err != nil {
		dec.setErr(fmt.Errorf("rinex doris: read epochs: %v", err))
	}
	return false
}

// Epoch returns the most recent epoch generated by a call to NextEpoch.
func (dec *DorisDecoder) Epoch() *DorisEpoch {
	return dec.epo
}
