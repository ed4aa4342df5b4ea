package rinex

import "time"

// DecimateEpochs keeps only the epochs aligned to the given interval,
// measured from the first epoch in the list, matching the way a receiver's
// own sampling decimation works (keep every Nth sample, not a resampling
// interpolation). A non-positive interval, or one that is not a multiple of
// the list's own detected sampling interval, is a DecimationError: this
// mirrors spec.md section 7's DecimationError{bad-spec} and avoids silently
// producing a result whose nominal interval does not evenly divide into the
// source.
func DecimateEpochs(epochs []Epoch, interval time.Duration) ([]Epoch, error) {
	if interval <= 0 {
		return nil, &DecimationError{Reason: "interval must be positive"}
	}
	if len(epochs) < 2 {
		return epochs, nil
	}

	sampling := epochs[1].Time.Sub(epochs[0].Time)
	if sampling <= 0 {
		return nil, &DecimationError{Reason: "source epochs are not strictly increasing"}
	}
	if interval%sampling != 0 {
		return nil, &DecimationError{Reason: "decimation interval is not a multiple of the source sampling interval"}
	}

	out := make([]Epoch, 0, len(epochs))
	t0 := epochs[0].Time
	for _, epo := range epochs {
		if epo.Time.Sub(t0)%interval == 0 {
			out = append(out, epo)
		}
	}
	return out, nil
}
