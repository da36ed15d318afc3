// Package fake provides in-memory tuners for testing code that drives cards
package fake

import (
	"fmt"

	"github.com/jpnorenam/fmio/pkg/drivers"
	"github.com/jpnorenam/fmio/pkg/types"
)

// Tuner is a fully featured card with a programmable reception model.
// Every hardware call is appended to Calls.
type Tuner struct {
	// SignalFunc returns the state sampled at a frequency. Nil means no reception anywhere.
	SignalFunc func(f types.Frequency) drivers.State

	// Err, when set, is returned by every operation after Open
	Err error

	Port    uint32
	Opened  bool
	Current types.Frequency
	Vol     int
	Mono    bool
	Samples int
	Calls   []string
}

func (t *Tuner) record(format string, args ...any) {
	t.Calls = append(t.Calls, fmt.Sprintf(format, args...))
}

func (t *Tuner) Open(port uint32) error {
	t.record("open 0x%x", port)
	t.Port = port
	t.Opened = true
	return nil
}

func (t *Tuner) Close() error {
	t.record("close")
	t.Opened = false
	return nil
}

func (t *Tuner) Address() uint32 {
	return t.Port
}

func (t *Tuner) SetFrequency(f types.Frequency) error {
	t.record("set-frequency %d", f)
	if t.Err != nil {
		return t.Err
	}
	t.Current = f
	return nil
}

func (t *Tuner) Frequency() (types.Frequency, error) {
	return t.Current, t.Err
}

func (t *Tuner) SetVolume(volume int) error {
	t.record("set-volume %d", volume)
	if t.Err != nil {
		return t.Err
	}
	t.Vol = volume
	return nil
}

func (t *Tuner) Volume() (int, error) {
	return t.Vol, t.Err
}

func (t *Tuner) SetMono() error {
	t.record("set-mono")
	t.Mono = true
	return t.Err
}

func (t *Tuner) State() (drivers.State, error) {
	if t.Err != nil {
		return 0, t.Err
	}
	t.Samples++
	if t.SignalFunc == nil {
		return 0, nil
	}
	return t.SignalFunc(t.Current), nil
}

// SetFrequencyCalls returns the frequencies set so far, in order
func (t *Tuner) SetFrequencyCalls() []types.Frequency {
	var out []types.Frequency
	for _, c := range t.Calls {
		var f types.Frequency
		if _, err := fmt.Sscanf(c, "set-frequency %d", &f); err == nil {
			out = append(out, f)
		}
	}
	return out
}

// Searcher adds a hardware search that lands on Result
type Searcher struct {
	*Tuner
	Result types.Frequency
}

func (s *Searcher) Search(dir types.Direction, from types.Frequency) (types.Frequency, error) {
	s.record("search %s %d", dir, from)
	if s.Err != nil {
		return 0, s.Err
	}
	if s.Result != 0 {
		s.Current = s.Result
	}
	return s.Result, nil
}

// Prober adds a presence probe answering Present
type Prober struct {
	*Tuner
	Present bool
}

func (p *Prober) Probe() (bool, error) {
	p.record("probe")
	return p.Present, p.Err
}

// Blind can be opened and tuned but reports nothing back
type Blind struct {
	tuner *Tuner
}

func NewBlind(t *Tuner) *Blind {
	return &Blind{tuner: t}
}

func (b *Blind) Open(port uint32) error {
	return b.tuner.Open(port)
}

func (b *Blind) Close() error {
	return b.tuner.Close()
}

func (b *Blind) SetFrequency(f types.Frequency) error {
	return b.tuner.SetFrequency(f)
}
