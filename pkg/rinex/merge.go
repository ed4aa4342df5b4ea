package rinex

import (
	"reflect"
	"sort"
	"time"

	"github.com/de-bkg/gognss/pkg/gnss"
)

// MergeEpochs merges two observation epoch lists into one, sorted by epoch
// time with a stable tie-break on PRN then observation code, per spec
// section 8's "merging two streams" law. Observations are deduplicated by
// (epoch, sv, observable); two inputs that disagree on the value for the
// same key are rejected with a MergeError rather than silently picking one.
//
// Both inputs must already be well-formed (epochs strictly increasing,
// roster order honoured); this is a pure function, it does not mutate
// either argument.
func MergeEpochs(a, b []Epoch) ([]Epoch, error) {
	byTime := map[time.Time]*Epoch{}
	order := make([]time.Time, 0, len(a)+len(b))

	add := func(epochs []Epoch) error {
		for i := range epochs {
			src := &epochs[i]
			dst, ok := byTime[src.Time]
			if !ok {
				merged := Epoch{Time: src.Time, Flag: src.Flag}
				byTime[src.Time] = &merged
				order = append(order, src.Time)
				dst = &merged
			}
			if err := mergeSatObsInto(dst, src.ObsList); err != nil {
				return err
			}
		}
		return nil
	}

	if err := add(a); err != nil {
		return nil, err
	}
	if err := add(b); err != nil {
		return nil, err
	}

	sort.Slice(order, func(i, j int) bool { return order[i].Before(order[j]) })

	merged := make([]Epoch, 0, len(order))
	for _, t := range order {
		epo := byTime[t]
		sort.Slice(epo.ObsList, func(i, j int) bool {
			return lessPRN(epo.ObsList[i].Prn, epo.ObsList[j].Prn)
		})
		epo.NumSat = uint8(len(epo.ObsList))
		merged = append(merged, *epo)
	}
	return merged, nil
}

func lessPRN(a, b PRN) bool {
	if a.Sys != b.Sys {
		return a.Sys.Abbr() < b.Sys.Abbr()
	}
	return a.Num < b.Num
}

// mergeSatObsInto merges a slice of per-satellite observations into an
// epoch's existing observation list, by PRN, combining observable maps.
// A value collision for the same (PRN, observable) key is a MergeError.
func mergeSatObsInto(dst *Epoch, src []SatObs) error {
	byPRN := map[PRN]*SatObs{}
	for i := range dst.ObsList {
		byPRN[dst.ObsList[i].Prn] = &dst.ObsList[i]
	}

	for _, sat := range src {
		existing, ok := byPRN[sat.Prn]
		if !ok {
			dst.ObsList = append(dst.ObsList, SatObs{Prn: sat.Prn, Obss: cloneObss(sat.Obss)})
			byPRN[sat.Prn] = &dst.ObsList[len(dst.ObsList)-1]
			continue
		}
		for code, obs := range sat.Obss {
			if have, ok := existing.Obss[code]; ok {
				if have != obs {
					return &MergeError{Kind: "kind-mismatch", Reason: "conflicting value for " + existing.Prn.String() + " " + string(code)}
				}
				continue
			}
			if existing.Obss == nil {
				existing.Obss = map[ObsCode]Obs{}
			}
			existing.Obss[code] = obs
		}
	}
	return nil
}

func cloneObss(src map[ObsCode]Obs) map[ObsCode]Obs {
	dst := make(map[ObsCode]Obs, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

// MergeEphemerides merges two navigation ephemeris maps keyed by (time, sv,
// message type). Conflicting ephemerides for the same key fail with a
// MergeError, matching the observation merge's dedup-by-key behaviour.
func MergeEphemerides(a, b map[NavKey]Eph) (map[NavKey]Eph, error) {
	out := make(map[NavKey]Eph, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		if existing, ok := out[k]; ok {
			if !reflect.DeepEqual(existing, v) {
				return nil, &MergeError{Kind: "kind-mismatch", Reason: "conflicting ephemeris for " + k.String()}
			}
			continue
		}
		out[k] = v
	}
	return out, nil
}

// NavKey identifies a single navigation-message record: epoch, satellite
// and message type, mirroring spec.md section 3's
// "(Epoch, SV, message-type) -> NavFrame" keying.
type NavKey struct {
	Time    time.Time
	Sv      gnss.PRN
	MsgType string
}

func (k NavKey) String() string {
	return k.Sv.String() + " " + k.MsgType + " " + k.Time.Format(time.RFC3339)
}
