package rinex

import (
	"time"

	"github.com/de-bkg/gognss/pkg/gnss"
)

// ObsFilterSpec selects a subset of an observation epoch list. A zero value
// (no systems, no PRNs, no codes, zero-value time bounds) matches
// everything.
type ObsFilterSpec struct {
	Systems []gnss.System
	Prns    []PRN
	Codes   []ObsCode
	From    time.Time
	To      time.Time
}

func (s ObsFilterSpec) matchesSys(sys gnss.System) bool {
	if len(s.Systems) == 0 {
		return true
	}
	for _, want := range s.Systems {
		if want == sys {
			return true
		}
	}
	return false
}

func (s ObsFilterSpec) matchesPrn(prn PRN) bool {
	if len(s.Prns) == 0 {
		return true
	}
	for _, want := range s.Prns {
		if want == prn {
			return true
		}
	}
	return false
}

func (s ObsFilterSpec) matchesCode(code ObsCode) bool {
	if len(s.Codes) == 0 {
		return true
	}
	for _, want := range s.Codes {
		if want == code {
			return true
		}
	}
	return false
}

// FilterEpochs returns a new epoch list keeping only the satellites,
// observation codes and time range named by spec. It is pure: the input
// slice and its SatObs/Obss maps are not mutated. Epochs left with no
// satellites after filtering are dropped, not emitted with NumSat == 0,
// since an empty result here means "excluded", not "a legitimately empty
// epoch" (spec.md section 8's zero-satellite boundary case refers to an
// epoch the source stream itself declared empty).
func FilterEpochs(epochs []Epoch, spec ObsFilterSpec) []Epoch {
	out := make([]Epoch, 0, len(epochs))
	for _, epo := range epochs {
		if !spec.From.IsZero() && epo.Time.Before(spec.From) {
			continue
		}
		if !spec.To.IsZero() && epo.Time.After(spec.To) {
			continue
		}

		kept := make([]SatObs, 0, len(epo.ObsList))
		for _, sat := range epo.ObsList {
			if !spec.matchesSys(sat.Prn.Sys) || !spec.matchesPrn(sat.Prn) {
				continue
			}
			obss := map[ObsCode]Obs{}
			for code, obs := range sat.Obss {
				if spec.matchesCode(code) {
					obss[code] = obs
				}
			}
			if len(obss) == 0 {
				continue
			}
			kept = append(kept, SatObs{Prn: sat.Prn, Obss: obss})
		}
		if len(kept) == 0 {
			continue
		}
		out = append(out, Epoch{Time: epo.Time, Flag: epo.Flag, NumSat: uint8(len(kept)), ObsList: kept})
	}
	return out
}
