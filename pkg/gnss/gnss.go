// Package gnss contains common constants and type definitions shared by the
// RINEX, Hatanaka and BINEX codecs: satellite systems, satellite
// identifiers, time scales and observation codes.
package gnss

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// System is a satellite system (constellation).
type System int

// Available satellite systems.
const (
	SysGPS System = iota + 1
	SysGLO
	SysGAL
	SysQZSS
	SysBDS
	SysIRNSS
	SysSBAS
	SysMIXED
)

func (sys System) String() string {
	return [...]string{"", "GPS", "GLO", "GAL", "QZSS", "BDS", "IRNSS", "SBAS", "MIXED"}[sys]
}

// Abbr returns the system's one-letter abbreviation used in RINEX, e.g. "G" for GPS.
func (sys System) Abbr() string {
	return [...]string{"", "G", "R", "E", "J", "C", "I", "S", "M"}[sys]
}

// MarshalJSON marshals a system using its RINEX abbreviation.
func (sys System) MarshalJSON() ([]byte, error) {
	return json.Marshal(sys.Abbr())
}

// SysPerAbbr maps a RINEX one-letter satellite-system abbreviation to a System.
var SysPerAbbr = map[string]System{
	"G": SysGPS,
	"R": SysGLO,
	"E": SysGAL,
	"J": SysQZSS,
	"C": SysBDS,
	"I": SysIRNSS,
	"S": SysSBAS,
	"M": SysMIXED,
}

// Systems specifies a list of satellite systems.
type Systems []System

// String returns the contained systems in sitelog manner GPS+GLO+...
func (syss Systems) String() string {
	str := make([]string, 0, len(syss))
	for _, sys := range syss {
		str = append(str, sys.String())
	}
	return strings.Join(str, "+")
}

// MarshalJSON marshals the systems as a list of RINEX abbreviations.
func (syss Systems) MarshalJSON() ([]byte, error) {
	abbrs := make([]string, 0, len(syss))
	for _, sys := range syss {
		abbrs = append(abbrs, sys.Abbr())
	}
	return json.Marshal(abbrs)
}

var sysPerName = map[string]System{
	"GPS": SysGPS, "GLO": SysGLO, "GAL": SysGAL, "QZSS": SysQZSS,
	"BDS": SysBDS, "IRNSS": SysIRNSS, "NAVIC": SysIRNSS, "SBAS": SysSBAS, "MIXED": SysMIXED,
}

// ParseSatSystems parses a "GPS+GLO+GAL+..." style satellite-system list as used in sitelogs.
func ParseSatSystems(s string) (Systems, error) {
	parts := strings.Split(s, "+")
	syss := make(Systems, 0, len(parts))
	for _, p := range parts {
		sys, ok := sysPerName[strings.ToUpper(strings.TrimSpace(p))]
		if !ok {
			return nil, fmt.Errorf("gnss: invalid satellite system: %q", p)
		}
		syss = append(syss, sys)
	}
	return syss, nil
}

// PRN identifies a single GNSS satellite: its constellation and its
// pseudo-random-noise number within that constellation.
type PRN struct {
	Sys System
	Num uint8 // 1..=255, constellation-relative
}

// NewPRN parses a PRN from its RINEX textual form, e.g. "G12", "R01", " 3" (GPS assumed for a blank system letter).
func NewPRN(s string) (PRN, error) {
	if len(s) < 2 {
		return PRN{}, fmt.Errorf("gnss: invalid PRN: %q", s)
	}

	sysStr := s[:1]
	if sysStr == " " {
		sysStr = "G"
	}
	sys, ok := SysPerAbbr[sysStr]
	if !ok {
		return PRN{}, fmt.Errorf("gnss: invalid satellite system: %q", s)
	}

	num, err := strconv.Atoi(strings.TrimSpace(s[1:]))
	if err != nil {
		return PRN{}, fmt.Errorf("gnss: parse satellite number: %q: %v", s, err)
	}
	if num < 1 || num > 255 {
		return PRN{}, fmt.Errorf("gnss: satellite number out of range: %q", s)
	}

	return PRN{Sys: sys, Num: uint8(num)}, nil
}

// String formats the PRN in RINEX notation, e.g. "G12".
func (prn PRN) String() string {
	return fmt.Sprintf("%s%02d", prn.Sys.Abbr(), prn.Num)
}

// MarshalJSON marshals a PRN using its RINEX textual form.
func (prn PRN) MarshalJSON() ([]byte, error) {
	return json.Marshal(prn.String())
}

// ByPRN implements sort.Interface, ordering PRNs by ascending constellation letter then satellite number.
type ByPRN []PRN

func (p ByPRN) Len() int      { return len(p) }
func (p ByPRN) Swap(i, j int) { p[i], p[j] = p[j], p[i] }
func (p ByPRN) Less(i, j int) bool {
	if p[i].Sys != p[j].Sys {
		return p[i].Sys.Abbr() < p[j].Sys.Abbr()
	}
	return p[i].Num < p[j].Num
}
