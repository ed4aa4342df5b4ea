package rinex

// RepairEpochs fixes up epoch bookkeeping that can drift out of sync with
// the actual satellite list after hand-built test fixtures or partial
// decoding: it recomputes NumSat from len(ObsList) and re-sorts the
// satellite roster into the canonical order (ascending constellation letter
// then PRN) that spec.md section 3 requires. It is pure; the input slice's
// backing array is copied, not mutated in place.
func RepairEpochs(epochs []Epoch) []Epoch {
	out := make([]Epoch, len(epochs))
	for i, epo := range epochs {
		obsList := make([]SatObs, len(epo.ObsList))
		copy(obsList, epo.ObsList)
		insertionSortByPRN(obsList)
		out[i] = Epoch{Time: epo.Time, Flag: epo.Flag, NumSat: uint8(len(obsList)), ObsList: obsList}
	}
	return out
}

func insertionSortByPRN(obs []SatObs) {
	for i := 1; i < len(obs); i++ {
		j := i
		for j > 0 && lessPRN(obs[j].Prn, obs[j-1].Prn) {
			obs[j], obs[j-1] = obs[j-1], obs[j]
			j--
		}
	}
}
