package seek

import (
	"fmt"

	"github.com/jpnorenam/fmio/pkg/types"
)

const (
	// ProbeCount is the number of samples summed at every step
	ProbeCount = 15
	// PlateauThreshold is the run of equal maxima that marks a station
	PlateauThreshold = 19
)

// Search sweeps from start towards the band edge in dir, looking for a plateau of
// maximal signal longer than PlateauThreshold steps. The card is left tuned to
// the returned frequency. When no station is found the card is tuned back to
// start, and start is returned.
func Search(t Tuner, dir types.Direction, start types.Frequency) (types.Frequency, error) {
	start = clamp(start)

	step := 1
	if dir == types.Down {
		step = -1
	}

	var (
		best      int
		plateau   bool
		runLength int
		landing   int
		found     bool
	)

	f := int(start)
	for !atEdge(f, dir) {
		f += step

		err := t.SetFrequency(types.Frequency(f))
		if err != nil {
			return 0, fmt.Errorf("error tuning to %s: %w", types.Frequency(f), err)
		}
		s, err := sample(t, ProbeCount)
		if err != nil {
			return 0, fmt.Errorf("error sampling signal at %s: %w", types.Frequency(f), err)
		}

		if s > best {
			best = s
			plateau = true
			runLength = 0
		} else if s == best {
			if plateau {
				runLength++
			}
		} else {
			if plateau {
				if runLength > PlateauThreshold {
					if dir == types.Down {
						landing = f + runLength/3
					} else {
						landing = f - 2*runLength/3
					}
					found = true
					break
				}
			} else {
				best = s
				runLength = 0
			}
		}
	}

	result := start
	if found && inBandInterior(landing) {
		result = types.Frequency(landing)
	}

	err := t.SetFrequency(result)
	if err != nil {
		return 0, fmt.Errorf("error tuning to %s: %w", result, err)
	}

	return result, nil
}

func atEdge(f int, dir types.Direction) bool {
	if dir == types.Down {
		return f <= int(types.MinFrequency)
	}
	return f >= int(types.MaxFrequency)
}

// inBandInterior excludes the edges themselves, reaching an edge means nothing was found
func inBandInterior(f int) bool {
	return f > int(types.MinFrequency) && f < int(types.MaxFrequency)
}

func clamp(f types.Frequency) types.Frequency {
	if f < types.MinFrequency {
		return types.MinFrequency
	}
	if f > types.MaxFrequency {
		return types.MaxFrequency
	}
	return f
}
