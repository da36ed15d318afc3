package common

import (
	"fmt"

	"github.com/jpnorenam/fmio/pkg/types"
	"github.com/spf13/pflag"
)

// ParseFrequency parses a frequency in MHz and checks it is in the FM band
func ParseFrequency(s string) (types.Frequency, error) {
	f, err := types.ParseMHz(s)
	if err != nil {
		return 0, err
	}
	if !f.InBand() {
		return 0, fmt.Errorf("frequency %s outside the FM band (%s - %s)", f, types.MinFrequency, types.MaxFrequency)
	}
	return f, nil
}

// FrequencyValue is a flag holding a frequency given in MHz
type FrequencyValue struct {
	Frequency types.Frequency
}

var _ pflag.Value = (*FrequencyValue)(nil)

func (v *FrequencyValue) String() string {
	if v.Frequency == 0 {
		return ""
	}
	return fmt.Sprintf("%.2f", v.Frequency.MHz())
}

func (v *FrequencyValue) Set(s string) error {
	f, err := ParseFrequency(s)
	if err != nil {
		return err
	}
	v.Frequency = f
	return nil
}

func (v *FrequencyValue) Type() string {
	return "MHz"
}
