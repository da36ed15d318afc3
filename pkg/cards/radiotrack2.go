package cards

import (
	"github.com/jpnorenam/fmio/pkg/chips/tea5757"
	"github.com/jpnorenam/fmio/pkg/drivers"
	"github.com/jpnorenam/fmio/pkg/types"
)

const (
	rtiiSignalStereo = 0xfd
	rtiiNoSignal     = 0xff
)

func radiotrackIIDescriptor(hw Hardware) *drivers.Descriptor {
	r := &radiotrackII{hw: hw}
	r.chip = tea5757.New(radiotrackIIBus{r}, hw.sleep)

	return &drivers.Descriptor{
		Name:  "AIMS Lab Radiotrack II",
		Code:  "rtii",
		Ports: []uint32{0x20c, 0x30c},
		Caps: drivers.Capabilities{
			MaxVolume:         1,
			NeedsRoot:         true,
			HardwareSearch:    true,
			KnowsFrequency:    true,
			MonoStereo:        true,
			DetectsSignal:     true,
			DetectsStereo:     true,
			VolumeIndependent: true,
		},
		Device: r,
	}
}

// radiotrackII is a TEA5757 on a single ISA port
type radiotrackII struct {
	hw   Hardware
	chip *tea5757.Chip
	port uint16
}

func (r *radiotrackII) Open(port uint32) error {
	r.port = uint16(port)
	return r.hw.Perm.Acquire(r.port, 1)
}

func (r *radiotrackII) Close() error {
	return r.hw.Perm.Release(r.port, 1)
}

func (r *radiotrackII) Address() uint32 {
	return uint32(r.port)
}

func (r *radiotrackII) SetFrequency(f types.Frequency) error {
	return r.chip.SetFrequency(f)
}

func (r *radiotrackII) Frequency() (types.Frequency, error) {
	return r.chip.Frequency()
}

func (r *radiotrackII) Search(dir types.Direction, from types.Frequency) (types.Frequency, error) {
	return r.chip.Search(dir, from)
}

// SetVolume switches the audio on or off
func (r *radiotrackII) SetVolume(volume int) error {
	if volume == 0 {
		return r.hw.IO.Outb(r.port, 0x01)
	}
	return r.hw.IO.Outb(r.port, 0x00)
}

func (r *radiotrackII) SetMono() error {
	return r.chip.SetMono()
}

func (r *radiotrackII) State() (drivers.State, error) {
	v, err := r.hw.IO.Inb(r.port)
	if err != nil {
		return 0, err
	}

	switch v {
	case rtiiSignalStereo:
		return drivers.Signal | drivers.Stereo, nil
	case rtiiNoSignal:
		return 0, nil
	default:
		return drivers.Signal, nil
	}
}

type radiotrackIIBus struct {
	r *radiotrackII
}

func (b radiotrackIIBus) Write(reg uint32) error {
	io, port := b.r.hw.IO, b.r.port

	for _, v := range []uint8{0xc8, 0xc9, 0xc9} {
		if err := io.Outb(port, v); err != nil {
			return err
		}
	}

	for bit := 24; bit >= 0; bit-- {
		seq := []uint8{0x01, 0x03, 0x01}
		if reg&(1<<bit) != 0 {
			seq = []uint8{0x05, 0x07, 0x05}
		}
		for _, v := range seq {
			if err := io.Outb(port, v); err != nil {
				return err
			}
		}
	}

	return io.Outb(port, 0xc8)
}

func (b radiotrackIIBus) Read() (uint32, error) {
	io, port := b.r.hw.IO, b.r.port

	err := io.Outb(port, 0x06)
	if err != nil {
		return 0, err
	}

	var reg uint32
	for range 25 {
		if err := io.Outb(port, 0x04); err != nil {
			return 0, err
		}
		if err := io.Outb(port, 0x06); err != nil {
			return 0, err
		}
		v, err := io.Inb(port)
		if err != nil {
			return 0, err
		}
		reg <<= 1
		if v&0x04 != 0 {
			reg |= 1
		}
	}

	return reg, nil
}
