package gnss

// ObsCode is a RINEX observation code, e.g. "C1C" (pseudorange, band 1,
// attribute C) or the two-character RINEX-2 form "P1". It is kept as a
// plain string rather than decomposed eagerly, since most callers only
// need it as a map key or column label; Kind/Band/Attr decompose it on
// demand.
type ObsCode string

// Kind returns the observable kind: 'C' pseudorange code, 'L' carrier phase,
// 'D' Doppler, 'S' signal strength (SNR), or one of the meteo/DORIS letters
// ('P','T','H','R','W','F' ...) for non-satellite observables.
func (c ObsCode) Kind() byte {
	if len(c) == 0 {
		return 0
	}
	return c[0]
}

// Band returns the carrier-band digit portion of the code, e.g. "1", "2", "5".
// Empty for codes that carry no band (most meteo observables).
func (c ObsCode) Band() string {
	if len(c) < 2 {
		return ""
	}
	return string(c[1])
}

// Attr returns the tracking-mode/channel attribute letter, e.g. "C", "W", "Q".
// Empty for two-character RINEX-2 style codes that carry no attribute.
func (c ObsCode) Attr() string {
	if len(c) < 3 {
		return ""
	}
	return string(c[2])
}

// IsPseudorange, IsPhase, IsDoppler and IsSNR classify a satellite observable by its Kind.
func (c ObsCode) IsPseudorange() bool { return c.Kind() == 'C' || c.Kind() == 'P' }
func (c ObsCode) IsPhase() bool       { return c.Kind() == 'L' }
func (c ObsCode) IsDoppler() bool     { return c.Kind() == 'D' }
func (c ObsCode) IsSNR() bool         { return c.Kind() == 'S' }

// convStringsToObscodes converts a slice of RINEX observation-code tokens,
// as parsed from a "SYS / # / OBS TYPES" header field, to ObsCode values.
func convStringsToObscodes(fields []string) []ObsCode {
	codes := make([]ObsCode, 0, len(fields))
	for _, f := range fields {
		codes = append(codes, ObsCode(f))
	}
	return codes
}

// ConvStringsToObscodes is the exported form of convStringsToObscodes, for
// callers outside this module's own RINEX decoders (e.g. tooling built on
// top of this package that must parse a raw "SYS / # / OBS TYPES" line).
func ConvStringsToObscodes(fields []string) []ObsCode {
	return convStringsToObscodes(fields)
}

// carrierFrequencyHz is a process-wide, read-only lookup table of nominal
// carrier frequencies in Hz, keyed by system and band digit. It mirrors the
// published ICD/IS frequency plans; values are compile-time constants, not
// reconstructed per lookup.
var carrierFrequencyHz = map[System]map[string]float64{
	SysGPS: {
		"1": 1575.42e6,
		"2": 1227.60e6,
		"5": 1176.45e6,
	},
	SysGLO: {
		"1": 1602.0e6, // nominal; actual channel depends on the FDMA slot/frequency number
		"2": 1246.0e6,
		"3": 1202.025e6,
	},
	SysGAL: {
		"1": 1575.42e6,
		"5": 1176.45e6,
		"6": 1278.75e6,
		"7": 1207.14e6,
		"8": 1191.795e6,
	},
	SysBDS: {
		"1": 1575.42e6,
		"2": 1561.098e6,
		"5": 1176.45e6,
		"6": 1268.52e6,
		"7": 1207.14e6,
		"8": 1191.795e6,
	},
	SysQZSS: {
		"1": 1575.42e6,
		"2": 1227.60e6,
		"5": 1176.45e6,
		"6": 1278.75e6,
	},
	SysIRNSS: {
		"5": 1176.45e6,
		"9": 2492.028e6,
	},
	SysSBAS: {
		"1": 1575.42e6,
		"5": 1176.45e6,
	},
}

// FrequencyHz returns the nominal carrier frequency in Hz for a satellite
// system and RINEX band digit, and whether the combination is known.
func FrequencyHz(sys System, band string) (float64, bool) {
	bySys, ok := carrierFrequencyHz[sys]
	if !ok {
		return 0, false
	}
	f, ok := bySys[band]
	return f, ok
}
