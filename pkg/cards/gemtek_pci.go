package cards

import (
	"fmt"

	"github.com/jpnorenam/fmio/pkg/chips/tea5757"
	"github.com/jpnorenam/fmio/pkg/drivers"
	"github.com/jpnorenam/fmio/pkg/pci"
	"github.com/jpnorenam/fmio/pkg/types"
)

const (
	gemtekVendorID = 0x5046
	gemtekPR103ID  = 0x1001
)

// Control register bits
const (
	gtpWrite = 1 << 2
	gtpData  = 1 << 1
	gtpClock = 1 << 0

	gtpIdle    = 0x10
	gtpMute    = 0x1f
	gtpStart   = 0x06
	gtpSenseOn = 1 << 3
)

func gemtekPCIDescriptor(hw Hardware, name, code string) *drivers.Descriptor {
	g := &gemtekPCI{hw: hw}
	g.chip = tea5757.New(gemtekBus{g}, hw.sleep)

	return &drivers.Descriptor{
		Name: name,
		Code: code,
		Caps: drivers.Capabilities{
			MaxVolume:      1,
			NeedsRoot:      true,
			HardwareSearch: true,
			MonoStereo:     true,
			DetectsSignal:  true,
			DetectsStereo:  true,
		},
		Device: g,
	}
}

// gemtekPCI is a TEA5757 behind a PCI bridge. The shift register can only
// be written, so the card cannot report its frequency.
type gemtekPCI struct {
	hw   Hardware
	chip *tea5757.Chip
	port uint16
}

// Open raises the I/O privilege level, which configuration space access needs too
func (g *gemtekPCI) Open(uint32) error {
	return g.hw.Perm.AcquireAll()
}

func (g *gemtekPCI) Close() error {
	return g.hw.Perm.ReleaseAll()
}

func (g *gemtekPCI) Address() uint32 {
	return uint32(g.port)
}

// Probe looks the card up on the PCI bus
func (g *gemtekPCI) Probe() (bool, error) {
	base, err := pci.Locate(g.hw.Config, pci.DeviceMatch(gemtekVendorID, gemtekPR103ID))
	if err != nil {
		return false, fmt.Errorf("error scanning PCI bus: %v", err)
	}
	g.port = base
	return base != 0, nil
}

func (g *gemtekPCI) located() error {
	if g.port == 0 {
		return ErrCardNotFound
	}
	return nil
}

func (g *gemtekPCI) SetFrequency(f types.Frequency) error {
	if err := g.located(); err != nil {
		return err
	}
	return g.chip.SetFrequency(f)
}

// Search starts the hardware search. The card cannot tell where it stopped.
func (g *gemtekPCI) Search(dir types.Direction, _ types.Frequency) (types.Frequency, error) {
	if err := g.located(); err != nil {
		return 0, err
	}
	return 0, g.chip.StartSearch(dir)
}

// SetVolume can only mute. Setting a frequency unmutes the card.
func (g *gemtekPCI) SetVolume(volume int) error {
	if err := g.located(); err != nil {
		return err
	}
	if volume == 0 {
		return g.hw.IO.Outw(g.port, gtpMute)
	}
	return nil
}

func (g *gemtekPCI) SetMono() error {
	return g.chip.SetMono()
}

func (g *gemtekPCI) State() (drivers.State, error) {
	if err := g.located(); err != nil {
		return 0, err
	}

	var state drivers.State

	err := g.hw.IO.Outw(g.port, gtpData)
	if err != nil {
		return 0, err
	}
	v, err := g.hw.IO.Inw(g.port)
	if err != nil {
		return 0, err
	}
	if v&gtpSenseOn != 0 {
		state |= drivers.Stereo
	}

	err = g.hw.IO.Outw(g.port, gtpData|gtpClock)
	if err != nil {
		return 0, err
	}
	v, err = g.hw.IO.Inw(g.port)
	if err != nil {
		return 0, err
	}
	if v&gtpSenseOn != 0 {
		state |= drivers.Signal
	}

	return state, g.hw.IO.Outw(g.port, gtpIdle)
}

type gemtekBus struct {
	g *gemtekPCI
}

func (b gemtekBus) Write(reg uint32) error {
	io, port := b.g.hw.IO, b.g.port

	err := io.Outw(port, gtpStart)
	if err != nil {
		return err
	}

	for bit := 24; bit >= 0; bit-- {
		var data uint16
		if reg&(1<<bit) != 0 {
			data = gtpData
		}
		for _, clock := range []uint16{0, gtpClock, 0} {
			err = io.Outw(port, gtpWrite|data|clock)
			if err != nil {
				return err
			}
		}
	}

	return io.Outw(port, gtpIdle)
}

func (gemtekBus) Read() (uint32, error) {
	return 0, nil
}
