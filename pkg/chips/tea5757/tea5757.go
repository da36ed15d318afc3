// Package tea5757 drives the Philips TEA5757 tuner through its 25-bit shift register
package tea5757

import (
	"time"

	"github.com/jpnorenam/fmio/pkg/types"
)

// Shift register layout
const (
	FreqMask    = 0x0007fff
	SearchStart = 1 << 24
	SearchUp    = 1 << 23
	Mono        = 1 << 22

	// Search stop sensitivity
	S005 = 0 << 16
	S010 = 2 << 16
	S030 = 1 << 16
	S150 = 3 << 16
)

const (
	AcquisitionDelay = 100 * time.Millisecond
	WaitDelay        = time.Millisecond
	searchPolls      = 200
	frequencyOffset  = 1070
)

// Bus shifts the register into and out of the chip
type Bus interface {
	Write(reg uint32) error
	Read() (uint32, error)
}

type Chip struct {
	bus         Bus
	sleep       func(time.Duration)
	sensitivity uint32
	mono        bool
	frequency   types.Frequency
}

func New(bus Bus, sleep func(time.Duration)) *Chip {
	if sleep == nil {
		sleep = time.Sleep
	}
	return &Chip{
		bus:         bus,
		sleep:       sleep,
		sensitivity: S030,
	}
}

// Encode returns the register frequency word, (f + 10.7 MHz IF) / 12.5 kHz
func Encode(f types.Frequency) uint32 {
	return (uint32(f) + frequencyOffset) * 4 / 5
}

// Decode returns the frequency held in a register value
func Decode(reg uint32) types.Frequency {
	v := (reg & FreqMask) * 5 / 4
	if v < frequencyOffset {
		return 0
	}
	return types.Frequency(v - frequencyOffset)
}

// register builds the register value for a tune to f, or for a search when f is 0
func (c *Chip) register(f types.Frequency, search uint32) uint32 {
	var reg uint32
	if f != 0 {
		reg = Encode(f)
	} else {
		reg = SearchStart | search
	}
	if c.mono {
		reg |= Mono
	}
	return reg | c.sensitivity
}

func searchBit(dir types.Direction) uint32 {
	if dir == types.Up {
		return SearchUp
	}
	return 0
}

func (c *Chip) SetFrequency(f types.Frequency) error {
	c.frequency = f
	return c.bus.Write(c.register(f, 0))
}

// SetMono takes effect with the next register write
func (c *Chip) SetMono() error {
	c.mono = true
	return nil
}

// StartSearch starts a hardware search without waiting for it to finish
func (c *Chip) StartSearch(dir types.Direction) error {
	return c.bus.Write(c.register(0, searchBit(dir)))
}

// Frequency reads the tuned frequency back after the PLL has settled
func (c *Chip) Frequency() (types.Frequency, error) {
	c.sleep(AcquisitionDelay)
	reg, err := c.bus.Read()
	if err != nil {
		return 0, err
	}
	return Decode(reg), nil
}

// Search tunes to from, starts a search in dir and polls until the chip locks
// on a station. If it never locks the chip is tuned back to from.
func (c *Chip) Search(dir types.Direction, from types.Frequency) (types.Frequency, error) {
	if from != 0 {
		err := c.SetFrequency(from)
		if err != nil {
			return 0, err
		}
		c.sleep(AcquisitionDelay)
	}

	err := c.StartSearch(dir)
	if err != nil {
		return 0, err
	}

	for range searchPolls {
		c.sleep(WaitDelay)
		reg, err := c.bus.Read()
		if err != nil {
			return 0, err
		}
		if reg&FreqMask != 0 {
			c.frequency = Decode(reg)
			return c.frequency, nil
		}
	}

	if from == 0 {
		return 0, nil
	}
	return from, c.SetFrequency(from)
}
