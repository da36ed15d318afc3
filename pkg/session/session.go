// Package session owns the single opened card and guards every call into it
// with a capability check and, where the card needs it, elevated privileges.
package session

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/jpnorenam/fmio/pkg/drivers"
	"github.com/jpnorenam/fmio/pkg/seek"
	"github.com/jpnorenam/fmio/pkg/types"
)

var (
	ErrSessionOpen = errors.New("a tuner session is already open")
	ErrClosed      = errors.New("tuner session is closed")
	ErrOutOfBand   = errors.New("frequency out of band")
)

// Privileges switches the effective user around privileged hardware access
type Privileges interface {
	Elevate() error
	Drop() error
}

// Slot holds at most one open session
type Slot struct {
	privileges Privileges

	mu      sync.Mutex
	current *Session
}

func NewSlot(privileges Privileges) *Slot {
	return &Slot{privileges: privileges}
}

// Open opens the selected card. It fails with ErrSessionOpen while another
// session from the same slot is still open.
func (s *Slot) Open(selection drivers.Selection) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil {
		return nil, ErrSessionOpen
	}

	d := selection.Descriptor
	if d == nil {
		return nil, fmt.Errorf("%w: no driver selected", drivers.ErrInvalidDriver)
	}
	if selection.Variant < 0 || selection.Variant >= d.Variants() {
		return nil, fmt.Errorf("%w: %s has no variant %d", drivers.ErrInvalidDriver, d.Code, selection.Variant+1)
	}

	session := &Session{
		slot:       s,
		descriptor: d,
		variant:    selection.Variant,
	}

	if opener, ok := d.Opener(); ok {
		err := session.privileged(func() error {
			return opener.Open(selection.Port())
		})
		if err != nil {
			return nil, fmt.Errorf("error opening %s: %w", d.Name, err)
		}
	}

	s.current = session
	return session, nil
}

// Current returns the open session, or nil
func (s *Slot) Current() *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// CloseCurrent closes the open session, if there is one
func (s *Slot) CloseCurrent() error {
	current := s.Current()
	if current == nil {
		return nil
	}
	return current.Close()
}

func (s *Slot) release(session *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == session {
		s.current = nil
	}
}

// Session is an opened card
type Session struct {
	slot       *Slot
	descriptor *drivers.Descriptor
	variant    int

	// mu is held around every call into the card, and by Close
	mu        sync.Mutex
	closeOnce sync.Once
	closed    atomic.Bool
	closeErr  error
}

func (s *Session) Descriptor() *drivers.Descriptor {
	return s.descriptor
}

func (s *Session) Variant() int {
	return s.variant
}

// Name returns the driver-selection token of the session, e.g. rtii2
func (s *Session) Name() string {
	return s.descriptor.SelectionName(s.variant)
}

func (s *Session) Caps() drivers.Capabilities {
	return s.descriptor.Caps
}

func (s *Session) Policy() Policy {
	return PolicyFor(s.descriptor.Caps)
}

// Port returns the configured port of the selected variant
func (s *Session) Port() uint32 {
	return s.descriptor.Port(s.variant)
}

// Address returns the base address the card reports, or the configured port
func (s *Session) Address() uint32 {
	if reporter, ok := s.descriptor.AddressReporter(); ok {
		return reporter.Address()
	}
	return s.Port()
}

// Close releases the card. It is safe to call more than once, and from
// another goroutine: a call in progress completes first, later calls fail with
// ErrClosed.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		s.closed.Store(true)
		if closer, ok := s.descriptor.Closer(); ok {
			s.closeErr = s.privileged(closer.Close)
		}
		s.slot.release(s)
	})
	return s.closeErr
}

// privileged runs fn with elevated privileges when the card needs them.
// Privileges are dropped on every return path.
func (s *Session) privileged(fn func() error) (err error) {
	if !s.descriptor.Caps.NeedsPrivilege() {
		return fn()
	}

	err = s.slot.privileges.Elevate()
	if err != nil {
		return fmt.Errorf("error elevating privileges: %w", err)
	}
	defer func() {
		dropErr := s.slot.privileges.Drop()
		if dropErr != nil {
			err = errors.Join(err, fmt.Errorf("error dropping privileges: %w", dropErr))
		}
	}()

	return fn()
}

// locked runs one call into the card unless the session is closed
func (s *Session) locked(fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed.Load() {
		return ErrClosed
	}
	return fn()
}

// hardware is privileged and locked for an open session
func (s *Session) hardware(fn func() error) error {
	if s.closed.Load() {
		return ErrClosed
	}
	return s.privileged(func() error {
		return s.locked(fn)
	})
}

// sweep runs a search or scan loop with privileges held for the whole loop.
// Each step takes the lock on its own so that Close can stop the loop.
func (s *Session) sweep(t seek.Tuner, fn func(seek.Tuner) error) error {
	if s.closed.Load() {
		return ErrClosed
	}
	return s.privileged(func() error {
		return fn(guardedTuner{s: s, t: t})
	})
}

type guardedTuner struct {
	s *Session
	t seek.Tuner
}

func (g guardedTuner) SetFrequency(f types.Frequency) error {
	return g.s.locked(func() error {
		return g.t.SetFrequency(f)
	})
}

func (g guardedTuner) State() (drivers.State, error) {
	var state drivers.State
	err := g.s.locked(func() error {
		var err error
		state, err = g.t.State()
		return err
	})
	return state, err
}

// Probe reports whether the card answers at the opened port.
// Cards without a presence probe are assumed present.
func (s *Session) Probe() (bool, error) {
	prober, ok := s.descriptor.PresenceProber()
	if !ok {
		return true, nil
	}

	var present bool
	err := s.hardware(func() error {
		var err error
		present, err = prober.Probe()
		return err
	})
	return present, err
}

func (s *Session) SetFrequency(f types.Frequency) error {
	if !f.InBand() {
		return fmt.Errorf("%w: %s", ErrOutOfBand, f)
	}
	setter, ok := s.descriptor.FrequencySetter()
	if !ok {
		return fmt.Errorf("set frequency: %w", drivers.ErrUnsupported)
	}
	return s.hardware(func() error {
		return setter.SetFrequency(f)
	})
}

// Frequency returns the tuned frequency, or 0 if the card cannot report it
func (s *Session) Frequency() (types.Frequency, error) {
	getter, ok := s.descriptor.FrequencyGetter()
	if !ok {
		return 0, nil
	}
	var f types.Frequency
	err := s.hardware(func() error {
		var err error
		f, err = getter.Frequency()
		return err
	})
	return f, err
}

func (s *Session) SetVolume(volume int) error {
	if volume < 0 {
		return fmt.Errorf("invalid volume %d", volume)
	}
	setter, ok := s.descriptor.VolumeSetter()
	if !ok {
		return fmt.Errorf("set volume: %w", drivers.ErrUnsupported)
	}
	return s.hardware(func() error {
		return setter.SetVolume(volume)
	})
}

// Volume returns the volume, or 0 if the card cannot report it
func (s *Session) Volume() (int, error) {
	getter, ok := s.descriptor.VolumeGetter()
	if !ok {
		return 0, nil
	}
	var v int
	err := s.hardware(func() error {
		var err error
		v, err = getter.Volume()
		return err
	})
	return v, err
}

func (s *Session) SetMono() error {
	setter, ok := s.descriptor.MonoSetter()
	if !ok {
		return fmt.Errorf("set mono: %w", drivers.ErrUnsupported)
	}
	return s.hardware(setter.SetMono)
}

// Tune sets the frequency and applies the volume policy of the card.
// volume is the requested volume, nil if none was given.
func (s *Session) Tune(f types.Frequency, volume *int) error {
	if !f.InBand() {
		return fmt.Errorf("%w: %s", ErrOutOfBand, f)
	}

	_, canSetVolume := s.descriptor.VolumeSetter()
	if pre, ok := s.Policy().PreTuneVolume(volume); ok && canSetVolume {
		err := s.SetVolume(pre)
		if err != nil {
			return fmt.Errorf("error setting volume: %w", err)
		}
	}

	err := s.SetFrequency(f)
	if err != nil {
		return fmt.Errorf("error setting frequency: %w", err)
	}

	if volume != nil {
		err = s.SetVolume(*volume)
		if err != nil {
			return fmt.Errorf("error setting volume: %w", err)
		}
	}

	return nil
}

func (s *Session) state(declared bool, bit drivers.State) (*bool, error) {
	reader, ok := s.descriptor.StateReader()
	if !declared || !ok {
		return nil, nil
	}

	var state drivers.State
	err := s.hardware(func() error {
		var err error
		state, err = reader.State()
		return err
	})
	if err != nil {
		return nil, err
	}

	on := state&bit != 0
	return &on, nil
}

// Signal reports whether a signal is received, nil when the card cannot tell
func (s *Session) Signal() (*bool, error) {
	return s.state(s.descriptor.Caps.DetectsSignal, drivers.Signal)
}

// Stereo reports whether a stereo signal is received, nil when the card cannot tell
func (s *Session) Stereo() (*bool, error) {
	return s.state(s.descriptor.Caps.DetectsStereo, drivers.Stereo)
}

// Search looks for the next station from a frequency, using the card's own
// search when it has one. A zero result means the card found something but
// cannot say where.
func (s *Session) Search(dir types.Direction, from types.Frequency) (types.Frequency, error) {
	var result types.Frequency

	if searcher, ok := s.descriptor.HardwareSearcher(); ok {
		err := s.hardware(func() error {
			var err error
			result, err = searcher.Search(dir, from)
			return err
		})
		return result, err
	}

	tuner, ok := seek.TunerFor(s.descriptor)
	if !ok {
		return 0, seek.ErrSearchUnsupported
	}

	err := s.sweep(tuner, func(t seek.Tuner) error {
		var err error
		result, err = seek.Search(t, dir, from)
		return err
	})
	return result, err
}

// Scan sweeps [lo, hi) reporting the signal at every step
func (s *Session) Scan(lo, hi types.Frequency, cycles int, emit func(seek.Step)) error {
	if !s.descriptor.Caps.DetectsState() {
		return seek.ErrScanUnsupported
	}
	tuner, ok := seek.TunerFor(s.descriptor)
	if !ok {
		return seek.ErrScanUnsupported
	}

	return s.sweep(tuner, func(t seek.Tuner) error {
		return seek.Scan(t, lo, hi, cycles, emit)
	})
}

// Info collects everything the card can report about itself
func (s *Session) Info() (*types.TunerInfo, error) {
	info := types.TunerInfo{
		Driver: s.descriptor.Name,
		Port:   types.HexInt(s.Address()),
	}

	f, err := s.Frequency()
	if err != nil {
		return nil, fmt.Errorf("error getting frequency: %v", err)
	}
	if f != 0 {
		info.Frequency = &f
	}

	v, err := s.Volume()
	if err != nil {
		return nil, fmt.Errorf("error getting volume: %v", err)
	}
	if v != 0 {
		info.Volume = &v
	}

	info.Signal, err = s.Signal()
	if err != nil {
		return nil, fmt.Errorf("error getting signal: %v", err)
	}

	info.Stereo, err = s.Stereo()
	if err != nil {
		return nil, fmt.Errorf("error getting stereo: %v", err)
	}

	return &info, nil
}

// SweepForSignal reports whether the card receives anything across the band.
// See seek.SweepForSignal.
func (s *Session) SweepForSignal(step func()) (bool, error) {
	if !s.descriptor.Caps.DetectsState() {
		return false, seek.ErrScanUnsupported
	}
	tuner, ok := seek.TunerFor(s.descriptor)
	if !ok {
		return false, seek.ErrScanUnsupported
	}

	var present bool
	err := s.sweep(tuner, func(t seek.Tuner) error {
		var err error
		present, err = seek.SweepForSignal(t, step)
		return err
	})
	return present, err
}
