package rinex

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// ClockRecordType is the two-character line-type prefix that selects a
// RINEX clock data record's sub-parser, per spec.md section 4.4: AR
// (receiver clock), AS (satellite clock), CR (clock reference/calibration),
// DR (discontinuity), MS (misc/monitor station).
type ClockRecordType string

// Clock data record line types.
const (
	ClockRecordAR ClockRecordType = "AR" // receiver clock
	ClockRecordAS ClockRecordType = "AS" // satellite clock
	ClockRecordCR ClockRecordType = "CR" // calibration/reference
	ClockRecordDR ClockRecordType = "DR" // discontinuity
	ClockRecordMS ClockRecordType = "MS" // misc/monitor station
)

// ClockRecord is one decoded RINEX clock data line: a bias, and optionally
// drift and drift-rate, each with an optional uncertainty, for a receiver,
// satellite, or other named entity at one epoch.
type ClockRecord struct {
	Type  ClockRecordType
	Name  string // 4-char receiver/station code (AR) or PRN (AS), entity-specific for CR/DR/MS
	Epoch time.Time

	Bias      float64
	BiasSigma float64
	HasBias   bool

	Drift      float64
	DriftSigma float64
	HasDrift   bool

	Accel      float64
	AccelSigma float64
	HasAccel   bool
}

// clockRecordTimeFormat is the fixed-width, zero-padded epoch layout used
// on clock data lines: "yyyy mm dd hh mm ss.ssssss" (26 columns).
const clockRecordTimeFormat = "2006 01 02 15 04 05.000000"
const clockRecordTimeWidth = len("2006 01 02 15 04 05.000000")

// NextRecord reads the next clock data record. It returns false at EOF or
// on error; inspect Err() to distinguish the two.
func (dec *ClockDecoder) NextRecord() bool {
	for dec.readLine() {
		line := dec.line()
		if len(line) < 2 {
			continue
		}

		typ := ClockRecordType(line[:2])
		switch typ {
		case ClockRecordAR, ClockRecordAS, ClockRecordCR, ClockRecordDR, ClockRecordMS:
		default:
			continue
		}

		rec, err := parseClockRecordLine(line)
		if err != nil {
			dec.setErr(&FormatError{Line: dec.lineNum, Reason: err.Error()})
			return false
		}
		dec.rec = rec
		return true
	}

	if err := dec.sc.Err(); err != nil {
		dec.setErr(fmt.Errorf("rinex: read clock record: %v", err))
	}
	return false
}

// Record returns the most recent record produced by NextRecord.
func (dec *ClockDecoder) Record() *ClockRecord {
	return dec.rec
}

// parseClockRecordLine parses one clock data line of the form
// "TT name   yyyy mm dd hh mm ss.ssssss nv bias[sigma][drift[sigma[accel sigma]]]"
// with fixed columns: type[0:2], name[3:12], epoch[12:12+clockRecordTimeWidth],
// value count[+1:+4], then one or more 19-column D19.12-style value fields.
func parseClockRecordLine(line string) (*ClockRecord, error) {
	epochEnd := 12 + clockRecordTimeWidth
	countEnd := epochEnd + 1 + 3
	if len(line) < countEnd {
		return nil, fmt.Errorf("clock record line too short: %q", line)
	}

	rec := &ClockRecord{
		Type: ClockRecordType(line[:2]),
		Name: strings.TrimSpace(line[3:12]),
	}

	epoch, err := time.Parse(clockRecordTimeFormat, line[12:epochEnd])
	if err != nil {
		return nil, fmt.Errorf("parse clock epoch: %q: %v", line[12:epochEnd], err)
	}
	rec.Epoch = epoch

	nvStr := strings.TrimSpace(line[epochEnd+1 : countEnd])
	nv, err := strconv.Atoi(nvStr)
	if err != nil {
		return nil, fmt.Errorf("parse clock value count: %q: %v", nvStr, err)
	}

	vals := make([]float64, 0, nv)
	pos := countEnd + 1
	for len(vals) < nv {
		if pos+19 > len(line) {
			return nil, fmt.Errorf("clock record: expected %d values, short line %q", nv, line)
		}
		v, err := parseFloat(line[pos : pos+19])
		if err != nil {
			return nil, fmt.Errorf("parse clock value: %v", err)
		}
		vals = append(vals, v)
		pos += 19
	}

	if len(vals) > 0 {
		rec.Bias, rec.HasBias = vals[0], true
	}
	if len(vals) > 1 {
		rec.BiasSigma = vals[1]
	}
	if len(vals) > 2 {
		rec.Drift, rec.HasDrift = vals[2], true
	}
	if len(vals) > 3 {
		rec.DriftSigma = vals[3]
	}
	if len(vals) > 4 {
		rec.Accel, rec.HasAccel = vals[4], true
	}
	if len(vals) > 5 {
		rec.AccelSigma = vals[5]
	}

	return rec, nil
}

// ClockEncoder writes RINEX clock header and data records. The teacher
// only ever parses clock headers (clockdecoder.go); this emits records
// too, per spec.md section 9's design note that the formatter must emit
// calibration records in declared-field order even though the source it
// was distilled from never did.
type ClockEncoder struct {
	w *bufio.Writer
}

// NewClockEncoder creates an encoder that will write w.
func NewClockEncoder(w io.Writer) *ClockEncoder {
	return &ClockEncoder{w: bufio.NewWriter(w)}
}

// WriteHeader writes a minimal RINEX3 clock header.
func (enc *ClockEncoder) WriteHeader(hdr ClockHeader) error {
	version := hdr.RINEXVersion
	if version == 0 {
		version = 3.04
	}
	enc.writeLabeled(fmt.Sprintf("%9.2f%11s%-20s%1s%19s", version, "", "CLOCK DATA", hdr.SatSystem.Abbr(), ""), "RINEX VERSION / TYPE")
	enc.writeLabeled(fmt.Sprintf("%-20s%-20s%-20s", hdr.Pgm, hdr.RunBy, hdr.Date.Format("20060102 150405 UTC")), "PGM / RUN BY / DATE")
	for _, c := range hdr.Comments {
		enc.writeLabeled(c, "COMMENT")
	}
	if hdr.TimeSystemID != "" {
		enc.writeLabeled(fmt.Sprintf("%-3s", hdr.TimeSystemID), "TIME SYSTEM ID")
	}
	enc.writeLabeled("", "END OF HEADER")
	return enc.w.Flush()
}

func (enc *ClockEncoder) writeLabeled(value, label string) {
	if len(value) > 60 {
		value = value[:60]
	}
	fmt.Fprintf(enc.w, "%-60s%-20s\n", value, label)
}

// WriteRecord writes one clock data record in declared-field order: bias
// (and sigma, if present), then drift, then drift-rate, matching
// parseClockRecordLine's column layout exactly so the pair round-trips.
func (enc *ClockEncoder) WriteRecord(rec ClockRecord) error {
	vals := make([]float64, 0, 6)
	if rec.HasBias {
		vals = append(vals, rec.Bias, rec.BiasSigma)
	}
	if rec.HasDrift {
		vals = append(vals, rec.Drift, rec.DriftSigma)
	}
	if rec.HasAccel {
		vals = append(vals, rec.Accel, rec.AccelSigma)
	}

	fmt.Fprintf(enc.w, "%-2s %-9s%s %3d ",
		string(rec.Type), rec.Name, rec.Epoch.Format(clockRecordTimeFormat), len(vals))
	for _, v := range vals {
		enc.w.WriteString(formatNavFloat(v))
	}
	enc.w.WriteByte('\n')
	return enc.w.Flush()
}
