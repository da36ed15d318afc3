package seek

import (
	"fmt"

	"github.com/jpnorenam/fmio/pkg/types"
)

// Step is the signal sum collected at one frequency of a scan
type Step struct {
	Frequency types.Frequency `json:"frequency" yaml:"frequency"`
	Signal    int             `json:"signal" yaml:"signal"`
}

func (s Step) String() string {
	return fmt.Sprintf("%.2f => %d", s.Frequency.MHz(), s.Signal)
}

// NormalizeRange clamps both ends into the band and orders them. A range ending
// at the band minimum is extended to the band maximum, so giving only a start
// sweeps the rest of the band.
func NormalizeRange(lo, hi types.Frequency) (types.Frequency, types.Frequency) {
	lo, hi = clamp(lo), clamp(hi)
	if hi < lo {
		lo, hi = hi, lo
	}
	if hi == types.MinFrequency {
		hi = types.MaxFrequency
	}
	return lo, hi
}

// Scan tunes every step of [lo, hi) in turn, sums cycles state samples and
// passes the result to emit. Cycles below 1 are treated as 1.
func Scan(t Tuner, lo, hi types.Frequency, cycles int, emit func(Step)) error {
	if cycles <= 0 {
		cycles = 1
	}

	lo, hi = NormalizeRange(lo, hi)

	for f := lo; f < hi; f++ {
		err := t.SetFrequency(f)
		if err != nil {
			return fmt.Errorf("error tuning to %s: %w", f, err)
		}

		signal, err := sample(t, cycles)
		if err != nil {
			return fmt.Errorf("error sampling signal at %s: %w", f, err)
		}

		emit(Step{Frequency: f, Signal: signal})
	}

	return nil
}
