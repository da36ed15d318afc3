package drivers

import (
	"errors"
	"fmt"

	"github.com/jpnorenam/fmio/pkg/types"
)

var ErrUnsupported = errors.New("operation not supported by this driver")

// Descriptor is the static definition of one card model.
// Device implements any subset of the operation interfaces below; an operation is
// available exactly when Device implements the matching interface.
type Descriptor struct {
	Name  string
	Code  string
	Ports []uint32
	Caps  Capabilities

	Device any
}

// Variants returns the number of selectable port variants, at least 1
func (d *Descriptor) Variants() int {
	if len(d.Ports) == 0 {
		return 1
	}
	return len(d.Ports)
}

// Port returns the port address of a variant, 0 for cards without ports
func (d *Descriptor) Port(variant int) uint32 {
	if len(d.Ports) == 0 || variant < 0 || variant >= len(d.Ports) {
		return 0
	}
	return d.Ports[variant]
}

// SelectionName returns the driver-selection token of a variant, e.g. rtii2
func (d *Descriptor) SelectionName(variant int) string {
	if len(d.Ports) > 1 {
		return fmt.Sprintf("%s%d", d.Code, variant+1)
	}
	return d.Code
}

// Opener acquires access to the card at a port. Port is 0 for cards without ports.
type Opener interface {
	Open(port uint32) error
}

type Closer interface {
	Close() error
}

// AddressReporter reports the base address in use, which may differ from the
// requested port for cards that locate themselves on a bus
type AddressReporter interface {
	Address() uint32
}

// PresenceProber checks whether the card responds at the opened port
type PresenceProber interface {
	Probe() (bool, error)
}

type FrequencySetter interface {
	SetFrequency(f types.Frequency) error
}

type FrequencyGetter interface {
	Frequency() (types.Frequency, error)
}

// HardwareSearcher seeks the next station on the card itself.
// A zero frequency means the card cannot report where it stopped.
type HardwareSearcher interface {
	Search(dir types.Direction, from types.Frequency) (types.Frequency, error)
}

type VolumeSetter interface {
	SetVolume(volume int) error
}

type VolumeGetter interface {
	Volume() (int, error)
}

type MonoSetter interface {
	SetMono() error
}

type StateReader interface {
	State() (State, error)
}

// State is a signal sample. The low bits flag signal and stereo reception.
type State int

const (
	Signal State = 1 << iota
	Stereo
)

func (s State) HasSignal() bool { return s&Signal != 0 }
func (s State) HasStereo() bool { return s&Stereo != 0 }

func (d *Descriptor) Opener() (Opener, bool) {
	o, ok := d.Device.(Opener)
	return o, ok
}

func (d *Descriptor) Closer() (Closer, bool) {
	c, ok := d.Device.(Closer)
	return c, ok
}

func (d *Descriptor) AddressReporter() (AddressReporter, bool) {
	a, ok := d.Device.(AddressReporter)
	return a, ok
}

func (d *Descriptor) PresenceProber() (PresenceProber, bool) {
	p, ok := d.Device.(PresenceProber)
	return p, ok
}

func (d *Descriptor) FrequencySetter() (FrequencySetter, bool) {
	f, ok := d.Device.(FrequencySetter)
	return f, ok
}

func (d *Descriptor) FrequencyGetter() (FrequencyGetter, bool) {
	f, ok := d.Device.(FrequencyGetter)
	return f, ok
}

func (d *Descriptor) HardwareSearcher() (HardwareSearcher, bool) {
	s, ok := d.Device.(HardwareSearcher)
	return s, ok
}

func (d *Descriptor) VolumeSetter() (VolumeSetter, bool) {
	v, ok := d.Device.(VolumeSetter)
	return v, ok
}

func (d *Descriptor) VolumeGetter() (VolumeGetter, bool) {
	v, ok := d.Device.(VolumeGetter)
	return v, ok
}

func (d *Descriptor) MonoSetter() (MonoSetter, bool) {
	m, ok := d.Device.(MonoSetter)
	return m, ok
}

func (d *Descriptor) StateReader() (StateReader, bool) {
	s, ok := d.Device.(StateReader)
	return s, ok
}

// Operation names one entry of the operation table
type Operation string

const (
	OpOpen         Operation = "open"
	OpClose        Operation = "close"
	OpAddress      Operation = "address"
	OpProbe        Operation = "probe"
	OpSetFrequency Operation = "set-frequency"
	OpGetFrequency Operation = "get-frequency"
	OpSearch       Operation = "search"
	OpSetVolume    Operation = "set-volume"
	OpGetVolume    Operation = "get-volume"
	OpSetMono      Operation = "set-mono"
	OpGetState     Operation = "get-state"
)

var allOperations = []Operation{
	OpOpen, OpClose, OpAddress, OpProbe,
	OpSetFrequency, OpGetFrequency, OpSearch,
	OpSetVolume, OpGetVolume, OpSetMono, OpGetState,
}

// Has reports whether the descriptor provides an operation
func (d *Descriptor) Has(op Operation) bool {
	var ok bool
	switch op {
	case OpOpen:
		_, ok = d.Opener()
	case OpClose:
		_, ok = d.Closer()
	case OpAddress:
		_, ok = d.AddressReporter()
	case OpProbe:
		_, ok = d.PresenceProber()
	case OpSetFrequency:
		_, ok = d.FrequencySetter()
	case OpGetFrequency:
		_, ok = d.FrequencyGetter()
	case OpSearch:
		_, ok = d.HardwareSearcher()
	case OpSetVolume:
		_, ok = d.VolumeSetter()
	case OpGetVolume:
		_, ok = d.VolumeGetter()
	case OpSetMono:
		_, ok = d.MonoSetter()
	case OpGetState:
		_, ok = d.StateReader()
	}
	return ok
}

// Operations lists the operations the descriptor provides, in table order
func (d *Descriptor) Operations() []Operation {
	var ops []Operation
	for _, op := range allOperations {
		if d.Has(op) {
			ops = append(ops, op)
		}
	}
	return ops
}
