package rinex

import (
	"strconv"
	"strings"
	"time"
)

// StationID identifies a DORIS ground beacon by its two-digit RINEX
// station number, e.g. "D01". Unlike PRN, a station carries no
// constellation tag; ground beacons are not GNSS satellites.
type StationID string

// NewStationID parses a DORIS station identifier from its RINEX textual
// form, e.g. "D01" or " 1" (leading "D" assumed if absent).
func NewStationID(s string) (StationID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", &FormatError{Reason: "doris: empty station id"}
	}
	if !strings.HasPrefix(s, "D") {
		n, err := strconv.Atoi(s)
		if err != nil {
			return "", &FormatError{Reason: "doris: invalid station id: " + s}
		}
		return StationID("D" + padStation(n)), nil
	}
	return StationID(s), nil
}

func padStation(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}

// DorisBeacon describes one DORIS ground beacon declared in a "STATION
// REFERENCE" header block: its station number, DOMES site number,
// beacon generation, and frequency shift factor (k).
type DorisBeacon struct {
	ID         StationID
	Name       string
	DOMES      string
	BeaconType string // beacon generation, e.g. "DORIS" or "STAREC"
	K          int    // frequency shift factor
}

// DorisHeader provides the RINEX DORIS header information: format version,
// declared observables (from the DORIS set L/C/W/F/P/T/H), the ground
// station table, and the usual provenance/time-span fields shared with
// observation headers.
type DorisHeader struct {
	RINEXVersion float32
	RINEXType    string // file type letter of RINEX VERSION / TYPE ("O" in files DorisEncoder writes); the "D" system letter is not stored

	Pgm   string
	RunBy string
	Date  string

	Comments []string

	MarkerName, MarkerNumber string

	ObsTypes []ObsCode // declared DORIS observable columns, in header declaration order

	SignalStrengthUnit string
	TimeOfFirstObs     time.Time
	TimeOfLastObs      time.Time

	L2L1DateOffset float64 // seconds, DORIS-specific time-tag offset between L2 and L1 phase centers

	Stations []DorisBeacon

	Labels []string
}

// DorisSatObs mirrors SatObs but is keyed by ground StationID instead of
// a satellite PRN.
type DorisSatObs struct {
	Station StationID
	Obss    map[ObsCode]Obs
}

// DorisEpoch contains one DORIS data epoch: the epoch time/flag plus one
// DorisSatObs block per ground station that reported in this epoch, in
// roster order.
type DorisEpoch struct {
	Time    time.Time
	Flag    int8
	NumSta  uint8
	ObsList []DorisSatObs
}

// ByStationID implements sort.Interface, ordering stations by ascending
// RINEX station number.
type ByStationID []DorisSatObs

func (b ByStationID) Len() int      { return len(b) }
func (b ByStationID) Swap(i, j int) { b[i], b[j] = b[j], b[i] }
func (b ByStationID) Less(i, j int) bool {
	return string(b[i].Station) < string(b[j].Station)
}
