package rinex

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/de-bkg/gognss/pkg/crinex"
	"github.com/de-bkg/gognss/pkg/gnss"
)

// crinexOrder is the differential order used for every numeric stream a
// CRINEX body carries. The format allows this to vary per file (encoded in
// a real CRINEX stream's own framing), but this module fixes it, which is
// recorded as an open-question resolution in DESIGN.md.
const crinexOrder = 3

// epochFixedWidth is the number of leading columns of a "> ..." epoch line
// that the epoch TextDiff carries: date/time, flag and satellite count.
// Anything from epochClockCol onward (the optional receiver clock offset,
// spec.md §4.3 step 3) is handled separately via clock_num_diff, not by the
// epoch TextDiff, so it gets its own kernel line in the compressed stream.
const epochFixedWidth = 35

// epochClockCol is the column (0-based) at which the receiver clock offset
// field begins on a plain RINEX3 epoch line, when present.
const epochClockCol = 41

// clockScale converts the plain decimal seconds RINEX carries the receiver
// clock offset in to the nanosecond-integer domain clock_num_diff operates
// on, per spec.md §4.3.
const clockScale = 1e9

// DecompressObs reads a RINEX observation stream that may be
// Hatanaka-compressed (CRINEX) and returns a reader over the equivalent
// plain RINEX text. Streams that are not Hatanaka-compressed are returned
// unchanged (buffered, so the original reader need not support seeking).
//
// This wraps the same per-column TextDiff/NumDiff state HatanakaEngine
// exposes at the crinex package's lowest level; the line-splitting and
// fixed-column reconstruction here is this module's own, since the
// teacher (de-bkg/gognss) never implements Hatanaka decoding in process,
// only by shelling out to the external CRX2RNX tool (see Rnx2crx/Crx2rnx
// in obs.go).
func DecompressObs(r io.Reader, opts ...Option) (io.Reader, error) {
	cfg := resolveConfig(opts)
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if !looksHatanakaCompressed(data) {
		return bytes.NewReader(data), nil
	}
	plain, err := decompressObsBody(data, crinexOrderOrDefault(cfg))
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(plain), nil
}

// CompressObs reads a plain RINEX observation stream and returns a reader
// over its Hatanaka-compressed (CRINEX) equivalent.
func CompressObs(r io.Reader, opts ...Option) (io.Reader, error) {
	cfg := resolveConfig(opts)
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	crx, err := compressObsBody(data, crinexOrderOrDefault(cfg))
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(crx), nil
}

// crinexOrderOrDefault returns cfg.CrinexOrder when the caller set it,
// falling back to the package default order otherwise.
func crinexOrderOrDefault(cfg Config) int {
	if cfg.CrinexOrder != 0 {
		return cfg.CrinexOrder
	}
	return crinexOrder
}

func looksHatanakaCompressed(data []byte) bool {
	nl := bytes.IndexByte(data, '\n')
	first := data
	if nl >= 0 {
		first = data[:nl]
	}
	return strings.Contains(string(first), "CRINEX VERS")
}

// formatObsField formats one observation as its field on a satellite's
// data line in the canonical (uncompressed) RINEX3 observation record,
// where the PRN is followed by one 16-column field (14-char value, 1-char
// LLI, 1-char SNR) per declared observation type for that satellite's
// system. A zero Obs becomes 16 spaces.
func formatObsField(o Obs) string {
	if o == (Obs{}) {
		return strings.Repeat(" ", 16)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%14.3f", o.Val)
	if o.LLI == 0 {
		b.WriteByte(' ')
	} else {
		b.WriteString(strconv.Itoa(int(o.LLI)))
	}
	if o.SNR == 0 {
		b.WriteByte(' ')
	} else {
		b.WriteString(strconv.Itoa(int(o.SNR)))
	}
	return b.String()
}

// decompressObsBody turns a CRINEX byte stream into plain RINEX3 text.
// Header lines (including the CRINEX sub-header) pass through unchanged;
// the epoch, clock and per-satellite data lines are reconstructed via a
// HatanakaEngine.
func decompressObsBody(data []byte, order int) ([]byte, error) {
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var out bytes.Buffer
	var hdr ObsHeader
	hdr.ObsTypes = map[gnss.System][]ObsCode{}
	rememberSys := gnss.System(0)

	lineNum := 0
	for sc.Scan() {
		line := sc.Text()
		lineNum++
		out.WriteString(line)
		out.WriteByte('\n')

		if len(line) < 60 {
			continue
		}
		val := line[:60]
		key := strings.TrimSpace(line[60:])

		switch key {
		case "RINEX VERSION / TYPE":
			if f64, err := strconv.ParseFloat(strings.TrimSpace(val[:20]), 32); err == nil {
				hdr.RINEXVersion = float32(f64)
			}
			if sys, ok := sysPerAbbr[strings.TrimSpace(val[40:41])]; ok {
				hdr.SatSystem = sys
			}
		case "SYS / # / OBS TYPES":
			var sys gnss.System
			if val[:1] == " " {
				sys = rememberSys
			} else {
				sys = sysPerAbbr[val[:1]]
				rememberSys = sys
			}
			hdr.ObsTypes[sys] = append(hdr.ObsTypes[sys], convStringsToObscodes(strings.Fields(val[7:]))...)
		case "END OF HEADER":
			goto body
		}
	}
body:
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if hdr.RINEXVersion == 0 {
		return nil, ErrNoHeader
	}

	engine, err := crinex.NewHatanakaEngine(order)
	if err != nil {
		return nil, err
	}

	for sc.Scan() {
		line := sc.Text()
		lineNum++
		if len(line) == 0 {
			continue
		}

		if strings.HasPrefix(line, "> ") {
			decoded, err := engine.DecompressEpoch(line)
			if err != nil {
				return nil, fmt.Errorf("crinex: decompress epoch at line %d: %w", lineNum, err)
			}

			if !sc.Scan() {
				return nil, fmt.Errorf("crinex: missing clock kernel line after epoch at line %d", lineNum)
			}
			lineNum++
			clockText, err := decompressClockField(engine, sc.Text())
			if err != nil {
				return nil, fmt.Errorf("crinex: decompress clock at line %d: %w", lineNum, err)
			}

			out.WriteString(formatEpochWithClock(decoded, clockText))
			out.WriteByte('\n')

			if len(decoded) >= 32 {
				if flag, ferr := strconv.Atoi(strings.TrimSpace(decoded[31:32])); ferr == nil && crinex.EpochFlagResets(flag) {
					engine.ResetAll()
				}
			}
			continue
		}

		if len(line) < 3 {
			continue
		}
		prn, err := gnss.NewPRN(line[0:3])
		if err != nil {
			return nil, fmt.Errorf("crinex: parse PRN at line %d: %q: %w", lineNum, line, err)
		}
		obsTypes := hdr.ObsTypes[prn.Sys]
		groups := splitDataGroups(line, len(obsTypes))

		var rec strings.Builder
		rec.WriteString(prn.String())
		for i, typ := range obsTypes {
			key := prn.String() + string(typ)
			kernel, lli, snr := "", " ", " "
			if i < len(groups) {
				kernel, lli, snr = groups[i].kernel, groups[i].lli, groups[i].snr
			}

			// A blank kernel means this satellite/observable had no value
			// this epoch, mirroring compressObsBody's skip below: the
			// per-slot LLI/SNR TextDiffs only advance when a value is
			// actually present, on both sides, so the two directions stay
			// in lockstep.
			var obs Obs
			if strings.TrimSpace(kernel) != "" {
				v, err := engine.DecompressValue(key, kernel)
				if err != nil {
					return nil, fmt.Errorf("crinex: decompress %s for %s at line %d: %w", typ, prn, lineNum, err)
				}
				gotLLI, gotSNR, err := engine.DecompressFlags(key, lli, snr)
				if err != nil {
					return nil, fmt.Errorf("crinex: decompress flags %s for %s at line %d: %w", typ, prn, lineNum, err)
				}
				obs, err = valueToObs(v, gotLLI, gotSNR)
				if err != nil {
					return nil, err
				}
			}
			rec.WriteString(formatObsField(obs))
		}
		out.WriteString(rec.String())
		out.WriteByte('\n')
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	return out.Bytes(), nil
}

// compressObsBody is the inverse of decompressObsBody: it reads plain
// RINEX3 text and emits the Hatanaka-compressed equivalent.
func compressObsBody(data []byte, order int) ([]byte, error) {
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var out bytes.Buffer
	var hdr ObsHeader
	hdr.ObsTypes = map[gnss.System][]ObsCode{}
	rememberSys := gnss.System(0)

	for sc.Scan() {
		line := sc.Text()
		if len(line) < 60 {
			out.WriteString(line)
			out.WriteByte('\n')
			continue
		}
		val := line[:60]
		key := strings.TrimSpace(line[60:])

		switch key {
		case "RINEX VERSION / TYPE":
			if f64, err := strconv.ParseFloat(strings.TrimSpace(val[:20]), 32); err == nil {
				hdr.RINEXVersion = float32(f64)
			}
			if sys, ok := sysPerAbbr[strings.TrimSpace(val[40:41])]; ok {
				hdr.SatSystem = sys
			}
			out.WriteString(fmt.Sprintf("%-60sCRINEX VERS   / TYPE\n", "3.0"))
			out.WriteString(fmt.Sprintf("%-60sCRINEX PROG / DATE\n", "rnxgo"))
			out.WriteString(line)
			out.WriteByte('\n')
			continue
		case "SYS / # / OBS TYPES":
			var sys gnss.System
			if val[:1] == " " {
				sys = rememberSys
			} else {
				sys = sysPerAbbr[val[:1]]
				rememberSys = sys
			}
			hdr.ObsTypes[sys] = append(hdr.ObsTypes[sys], convStringsToObscodes(strings.Fields(val[7:]))...)
		}

		out.WriteString(line)
		out.WriteByte('\n')
		if key == "END OF HEADER" {
			break
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	engine, err := crinex.NewHatanakaEngine(order)
	if err != nil {
		return nil, err
	}

	var pendingFlagReset bool
	for sc.Scan() {
		line := sc.Text()
		if len(line) < 1 {
			continue
		}

		if strings.HasPrefix(line, "> ") {
			fixedPart := line
			if len(fixedPart) > epochFixedWidth {
				fixedPart = fixedPart[:epochFixedWidth]
			}
			out.WriteString(engine.CompressEpoch(fixedPart))
			out.WriteByte('\n')

			clockField := ""
			if len(line) > epochClockCol {
				clockField = strings.TrimSpace(line[epochClockCol:])
			}
			clockKernel, err := compressClockField(engine, clockField)
			if err != nil {
				return nil, err
			}
			out.WriteString(clockKernel)
			out.WriteByte('\n')

			if len(line) >= 32 {
				if flag, ferr := strconv.Atoi(strings.TrimSpace(line[31:32])); ferr == nil && crinex.EpochFlagResets(flag) {
					pendingFlagReset = true
				}
			}
			continue
		}

		if pendingFlagReset {
			engine.ResetAll()
			pendingFlagReset = false
		}

		if len(line) < 3 {
			continue
		}
		prn, err := gnss.NewPRN(line[0:3])
		if err != nil {
			return nil, fmt.Errorf("crinex: parse PRN: %q: %w", line, err)
		}
		obsTypes := hdr.ObsTypes[prn.Sys]

		linelen := len(line)
		kernels := make([]string, len(obsTypes))
		flags := make([]byte, 2*len(obsTypes))
		for i := range flags {
			flags[i] = ' '
		}
		for i, typ := range obsTypes {
			pos := 3 + 16*i
			if pos >= linelen {
				continue
			}
			end := pos + 16
			if end > linelen {
				end = linelen
			}
			if strings.TrimSpace(line[pos:end]) == "" {
				continue
			}
			obs, err := decodeObs(line[pos:end], 0)
			if err != nil {
				return nil, fmt.Errorf("crinex: parse %s for %s: %w", typ, prn, err)
			}

			key := prn.String() + string(typ)
			q, err := crinex.Quantize(obs.Val)
			if err != nil {
				return nil, err
			}
			kernel, err := engine.CompressValue(key, q, false)
			if err != nil {
				return nil, err
			}
			kernels[i] = kernel

			lli, snr := engine.CompressFlags(key, flagChar(obs.LLI), flagChar(obs.SNR))
			flags[2*i] = lli[0]
			flags[2*i+1] = snr[0]
		}

		var rec strings.Builder
		rec.WriteString(prn.String())
		rec.WriteByte(' ')
		rec.WriteString(strings.Join(kernels, " "))
		rec.WriteByte(' ')
		rec.Write(flags)
		out.WriteString(rec.String())
		out.WriteByte('\n')
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	return out.Bytes(), nil
}

// dataGroup holds one satellite/observable's compressed value kernel and
// its two flag characters, as positionally parsed off a data line by
// splitDataGroups.
type dataGroup struct {
	kernel, lli, snr string
}

// splitDataGroups parses a compressed per-satellite data line of the form
// "PRN kernel_1 kernel_2 ... kernel_K flags", where flags is a single
// trailing block of 2*K characters (LLI/SNR pairs, in observable order),
// and k is the observable count declared for this satellite's system in
// the header. It splits with strings.SplitN rather than strings.Fields: a
// kernel that is itself blank (no observation this epoch) leaves behind a
// run of adjacent spaces that Fields would collapse and drop, silently
// desyncing every later observable's index; SplitN preserves it as an
// empty field instead.
func splitDataGroups(line string, k int) []dataGroup {
	groups := make([]dataGroup, k)
	if k == 0 {
		return groups
	}

	fields := strings.SplitN(line, " ", k+2)
	var flagsBlock string
	for i := 0; i < k; i++ {
		if i+1 < len(fields) {
			groups[i].kernel = fields[i+1]
		}
	}
	if k+1 < len(fields) {
		flagsBlock = fields[k+1]
	}
	if len(flagsBlock) < 2*k {
		flagsBlock += strings.Repeat(" ", 2*k-len(flagsBlock))
	}
	for i := 0; i < k; i++ {
		groups[i].lli = string(flagsBlock[2*i])
		groups[i].snr = string(flagsBlock[2*i+1])
	}
	return groups
}

// compressClockField compresses a plain decimal-seconds receiver clock
// offset field (or "" when the field is absent this epoch) into the kernel
// line that follows an epoch's kernel, using HatanakaEngine.CompressClock.
func compressClockField(engine *crinex.HatanakaEngine, field string) (string, error) {
	if field == "" {
		return engine.CompressClock("", false)
	}
	f, err := strconv.ParseFloat(field, 64)
	if err != nil {
		return "", fmt.Errorf("crinex: parse clock offset: %q: %w", field, err)
	}
	v := int64(math.Round(f * clockScale))
	return engine.CompressClock(strconv.FormatInt(v, 10), false)
}

// decompressClockField is the inverse of compressClockField.
func decompressClockField(engine *crinex.HatanakaEngine, kernel string) (string, error) {
	v, err := engine.DecompressClock(kernel)
	if err != nil {
		return "", err
	}
	if v == "" {
		return "", nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return "", fmt.Errorf("crinex: parse clock value: %q: %w", v, err)
	}
	return fmt.Sprintf("%15.12f", float64(n)/clockScale), nil
}

// formatEpochWithClock appends a reconstructed clock field to a decoded
// epoch line at its canonical column, padding the line out if it was
// compressed without one.
func formatEpochWithClock(decoded, clockText string) string {
	if clockText == "" {
		return decoded
	}
	base := decoded
	if len(base) < epochClockCol {
		base += strings.Repeat(" ", epochClockCol-len(base))
	} else {
		base = base[:epochClockCol]
	}
	return base + clockText
}

func flagChar(v int8) string {
	if v == 0 {
		return " "
	}
	return strconv.Itoa(int(v))
}

func valueToObs(v int64, lli, snr string) (Obs, error) {
	o := Obs{Val: crinex.Dequantize(v)}
	if strings.TrimSpace(lli) != "" {
		n, err := strconv.Atoi(strings.TrimSpace(lli))
		if err != nil {
			return o, fmt.Errorf("crinex: parse LLI: %q: %w", lli, err)
		}
		o.LLI = int8(n)
	}
	if strings.TrimSpace(snr) != "" {
		n, err := strconv.Atoi(strings.TrimSpace(snr))
		if err != nil {
			return o, fmt.Errorf("crinex: parse SNR: %q: %w", snr, err)
		}
		o.SNR = int8(n)
	}
	return o, nil
}
