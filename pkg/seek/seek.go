// Package seek implements station search and band scanning in software, for
// cards that can be tuned and report a signal sample but cannot search by themselves.
package seek

import (
	"errors"

	"github.com/jpnorenam/fmio/pkg/drivers"
)

var (
	ErrSearchUnsupported = errors.New("driver does not support search")
	ErrScanUnsupported   = errors.New("driver does not detect signal state")
)

// Tuner is the part of a card that search and scan drive
type Tuner interface {
	drivers.FrequencySetter
	drivers.StateReader
}

type tuner struct {
	drivers.FrequencySetter
	drivers.StateReader
}

// TunerFor returns the descriptor's set-frequency and get-state operations as a
// Tuner, if it has both
func TunerFor(d *drivers.Descriptor) (Tuner, bool) {
	setter, ok := d.FrequencySetter()
	if !ok {
		return nil, false
	}
	reader, ok := d.StateReader()
	if !ok {
		return nil, false
	}
	return tuner{FrequencySetter: setter, StateReader: reader}, true
}

// sample sums n consecutive state readings
func sample(t drivers.StateReader, n int) (int, error) {
	sum := 0
	for range n {
		s, err := t.State()
		if err != nil {
			return 0, err
		}
		sum += int(s)
	}
	return sum, nil
}
