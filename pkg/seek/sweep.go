package seek

import "github.com/jpnorenam/fmio/pkg/types"

const (
	// SweepThreshold is the summed signal at which a sweep stops looking
	SweepThreshold = 10
	sweepStep      = 10
)

// SweepForSignal tunes down the band from its top in 100 kHz steps, summing
// signal samples, and reports whether anything was received. It stops once
// the sum reaches SweepThreshold. step, if set, is called after every tune.
func SweepForSignal(t Tuner, step func()) (bool, error) {
	res := -1
	for f := types.MaxFrequency; f > types.MinFrequency && res < SweepThreshold; f -= sweepStep {
		err := t.SetFrequency(f)
		if err != nil {
			return false, err
		}
		s, err := sample(t, 1)
		if err != nil {
			return false, err
		}
		res += s
		if step != nil {
			step()
		}
	}
	return res >= 0, nil
}
