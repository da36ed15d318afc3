package cards

import (
	"time"

	"github.com/jpnorenam/fmio/pkg/drivers"
	"github.com/jpnorenam/fmio/pkg/types"
)

const (
	zoltrixMaxVolume = 16
	zoltrixBits      = 45
	zoltrixBitmask   = 0xc480402c10080000
	zoltrixTopBit    = 1 << 63
)

func zoltrixDescriptor(hw Hardware) *drivers.Descriptor {
	return &drivers.Descriptor{
		Name:  "Zoltrix RadioPlus",
		Code:  "zx",
		Ports: []uint32{0x20c, 0x30c},
		Caps: drivers.Capabilities{
			MaxVolume:           zoltrixMaxVolume,
			NeedsRoot:           true,
			NeedsScan:           true,
			MonoStereo:          true,
			DetectsSignal:       true,
			DetectsStereo:       true,
			MaximizeVolumeFirst: true,
		},
		Device: &zoltrix{hw: hw},
	}
}

// zoltrix cannot be probed, detection has to scan for a signal
type zoltrix struct {
	hw     Hardware
	port   uint16
	mono   bool
	volume uint8
}

func (z *zoltrix) Open(port uint32) error {
	z.port = uint16(port)
	return z.hw.Perm.Acquire(z.port, 4)
}

func (z *zoltrix) Close() error {
	return z.hw.Perm.Release(z.port, 4)
}

func (z *zoltrix) Address() uint32 {
	return uint32(z.port)
}

// frequencyBitmask builds the 45 bits sent for a tune, most significant first.
// One step of the frequency word is 5 kHz.
func (z *zoltrix) frequencyBitmask(f types.Frequency) uint64 {
	word := uint64((int(f)-8800)*2 + 0x4d1c)

	bitmask := uint64(zoltrixBitmask) ^ (word&0xff)<<47 ^ (word&0xff00)<<30
	if z.mono {
		bitmask ^= 1 << 31
	}
	return bitmask
}

func (z *zoltrix) out(values ...uint8) error {
	for _, v := range values {
		if err := z.hw.IO.Outb(z.port, v); err != nil {
			return err
		}
	}
	return nil
}

func (z *zoltrix) SetFrequency(f types.Frequency) error {
	bitmask := z.frequencyBitmask(f)

	err := z.out(0x00, 0x00)
	if err != nil {
		return err
	}
	if _, err := z.hw.IO.Inb(z.port + 3); err != nil {
		return err
	}

	err = z.out(0x40, 0xc0)
	if err != nil {
		return err
	}
	for range zoltrixBits {
		if bitmask&zoltrixTopBit != 0 {
			err = z.out(0x80, 0x00, 0x80)
		} else {
			err = z.out(0xc0, 0x40, 0xc0)
		}
		if err != nil {
			return err
		}
		bitmask <<= 1
	}

	// termination
	err = z.out(0x80, 0xc0, 0x40)
	if err != nil {
		return err
	}
	z.hw.sleep(20 * time.Millisecond)
	if z.volume != 0 {
		if err := z.out(z.volume); err != nil {
			return err
		}
	}
	z.hw.sleep(10 * time.Millisecond)

	_, err = z.hw.IO.Inb(z.port + 2)
	return err
}

// SetVolume clamps the volume to 0-16
func (z *zoltrix) SetVolume(volume int) error {
	z.volume = uint8(min(max(volume, 0), zoltrixMaxVolume))

	err := z.out(z.volume)
	if err != nil {
		return err
	}
	z.hw.sleep(10 * time.Millisecond)
	err = z.out(z.volume)
	if err != nil {
		return err
	}

	latch := z.port + 2
	if z.volume == 0 {
		latch = z.port + 3
	}
	_, err = z.hw.IO.Inb(latch)
	return err
}

// SetMono takes effect with the next tune
func (z *zoltrix) SetMono() error {
	z.mono = true
	return nil
}

// State reads the status twice and trusts it only if both readings agree
func (z *zoltrix) State() (drivers.State, error) {
	err := z.out(0x00, z.volume)
	if err != nil {
		return 0, err
	}
	z.hw.sleep(10 * time.Millisecond)

	a, err := z.hw.IO.Inb(z.port)
	if err != nil {
		return 0, err
	}
	z.hw.sleep(time.Millisecond)
	b, err := z.hw.IO.Inb(z.port)
	if err != nil {
		return 0, err
	}

	if a != b {
		return 0, nil
	}
	switch a {
	case 0xcf:
		return drivers.Signal | drivers.Stereo, nil
	case 0xdf:
		return drivers.Stereo, nil
	case 0xef:
		return drivers.Signal, nil
	default:
		return 0, nil
	}
}
