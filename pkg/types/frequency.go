package types

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Frequency is an FM frequency in hundredths of a MHz: 98.50 MHz is 9850.
type Frequency uint16

const (
	MinFrequency Frequency = 8750
	MaxFrequency Frequency = 10800
)

// MHz returns the frequency as a decimal MHz value
func (f Frequency) MHz() float64 {
	return float64(f) / 100
}

func (f Frequency) String() string {
	return fmt.Sprintf("%.2f MHz", f.MHz())
}

// InBand reports whether f lies within [MinFrequency, MaxFrequency]
func (f Frequency) InBand() bool {
	return f >= MinFrequency && f <= MaxFrequency
}

// ParseMHz parses a decimal MHz string such as "98.5" or "101". The value is rounded
// to the nearest hundredth instead of truncated, so "98.3" is 9830 and not 9829.
// A leading minus sign is rejected; callers handling signed input strip it first.
func ParseMHz(s string) (Frequency, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(strings.TrimSuffix(s, "MHz"), "mhz")
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty frequency")
	}

	mhz, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid frequency %q", s)
	}
	if mhz < 0 {
		return 0, fmt.Errorf("negative frequency %q", s)
	}

	hundredths := math.Round(mhz * 100)
	if hundredths > math.MaxUint16 {
		return 0, fmt.Errorf("frequency %q out of range", s)
	}

	return Frequency(hundredths), nil
}

// Direction is the sweep direction of a search
type Direction int

const (
	Down Direction = iota
	Up
)

func (d Direction) String() string {
	if d == Up {
		return "up"
	}
	return "down"
}
