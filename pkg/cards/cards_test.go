package cards

import (
	"errors"
	"testing"
	"time"

	"github.com/go-test/deep"
	"github.com/jpnorenam/fmio/pkg/chips/tea5757"
	"github.com/jpnorenam/fmio/pkg/drivers"
	"github.com/jpnorenam/fmio/pkg/pci"
	"github.com/jpnorenam/fmio/pkg/portio"
	"github.com/jpnorenam/fmio/pkg/portio/fakeport"
	"github.com/jpnorenam/fmio/pkg/types"
)

func testHardware() (Hardware, *fakeport.Space, *fakeport.Permissions) {
	space := &fakeport.Space{}
	perm := &fakeport.Permissions{}
	return Hardware{
		IO:    space,
		Perm:  perm,
		Sleep: func(time.Duration) {},
	}, space, perm
}

// busBits decodes the register shifted in by a sequence of three writes per bit
func busBits(writes []uint32, one uint32) uint32 {
	var reg uint32
	for i := 0; i+2 < len(writes); i += 3 {
		reg <<= 1
		if writes[i] == one {
			reg |= 1
		}
	}
	return reg
}

func TestRegistry(t *testing.T) {
	hw, _, _ := testHardware()

	registry, err := Registry(hw)
	if err != nil {
		t.Fatal(err)
	}

	var codes []string
	for _, d := range registry.Descriptors() {
		codes = append(codes, d.Code)
	}
	if diff := deep.Equal(codes, []string{"gtp", "mr", "rtii", "zx"}); diff != nil {
		t.Error(diff)
	}

	selection, err := registry.Resolve("rtii2")
	if err != nil {
		t.Fatal(err)
	}
	if selection.Port() != 0x30c {
		t.Errorf("expected port 0x30c, got 0x%x", selection.Port())
	}
}

func TestDescriptorsAreIndependent(t *testing.T) {
	hw, _, _ := testHardware()

	a, b := Descriptors(hw), Descriptors(hw)
	if a[0].Device == b[0].Device {
		t.Fatal("expected a fresh device per call")
	}
	if a[0].Device == a[1].Device {
		t.Fatal("gtp and mr share a device")
	}
}

func TestRadiotrackIISetFrequency(t *testing.T) {
	hw, space, perm := testHardware()
	d := radiotrackIIDescriptor(hw)
	r := d.Device.(*radiotrackII)

	err := r.Open(0x20c)
	if err != nil {
		t.Fatal(err)
	}
	if perm.Ranges[0x20c] != 1 {
		t.Fatalf("expected one port acquired, got %v", perm.Ranges)
	}

	err = r.SetFrequency(9850)
	if err != nil {
		t.Fatal(err)
	}

	writes := space.Writes(0x20c)
	if len(writes) != 3+25*3+1 {
		t.Fatalf("expected 79 writes, got %d", len(writes))
	}
	if diff := deep.Equal(writes[:3], []uint32{0xc8, 0xc9, 0xc9}); diff != nil {
		t.Error(diff)
	}
	if writes[len(writes)-1] != 0xc8 {
		t.Errorf("expected trailing 0xc8, got 0x%x", writes[len(writes)-1])
	}

	reg := busBits(writes[3:len(writes)-1], 0x05)
	if reg != tea5757.Encode(9850)|tea5757.S030 {
		t.Errorf("expected register %d, got %d", tea5757.Encode(9850)|tea5757.S030, reg)
	}

	err = r.Close()
	if err != nil {
		t.Fatal(err)
	}
	if perm.Held() {
		t.Fatal("permissions still held after close")
	}
}

func TestRadiotrackIIFrequency(t *testing.T) {
	hw, space, _ := testHardware()
	r := radiotrackIIDescriptor(hw).Device.(*radiotrackII)
	r.port = 0x30c

	reg := tea5757.Encode(10110) | tea5757.S030
	bit := 24
	space.ReadFunc = func(uint16, int) uint32 {
		var v uint32
		if reg&(1<<bit) != 0 {
			v = 0x04
		}
		bit--
		return v
	}

	f, err := r.Frequency()
	if err != nil {
		t.Fatal(err)
	}
	if f != 10110 {
		t.Errorf("expected 10110, got %d", f)
	}
}

func TestRadiotrackIIState(t *testing.T) {
	cases := []struct {
		name  string
		value uint32
		state drivers.State
	}{
		{"stereo", 0xfd, drivers.Signal | drivers.Stereo},
		{"mono", 0xfb, drivers.Signal},
		{"nothing", 0xff, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			hw, space, _ := testHardware()
			r := radiotrackIIDescriptor(hw).Device.(*radiotrackII)
			r.port = 0x20c
			space.Values = map[uint16]uint32{0x20c: tc.value}

			state, err := r.State()
			if err != nil {
				t.Fatal(err)
			}
			if state != tc.state {
				t.Errorf("expected state %d, got %d", tc.state, state)
			}
		})
	}
}

func TestRadiotrackIIMute(t *testing.T) {
	hw, space, _ := testHardware()
	r := radiotrackIIDescriptor(hw).Device.(*radiotrackII)
	r.port = 0x20c

	for _, v := range []int{0, 1} {
		if err := r.SetVolume(v); err != nil {
			t.Fatal(err)
		}
	}
	if diff := deep.Equal(space.Writes(0x20c), []uint32{0x01, 0x00}); diff != nil {
		t.Error(diff)
	}
}

// configSpace holds a single Gemtek PCI function
type configSpace struct {
	addr pci.Address
	bar  uint32
}

func (c configSpace) ReadConfig(addr pci.Address, reg uint8) (uint32, error) {
	if addr != c.addr {
		return 0xffffffff, nil
	}
	switch reg {
	case pci.RegID:
		return gemtekPR103ID<<16 | gemtekVendorID, nil
	case pci.RegClass:
		return pci.ClassMultimedia<<24 | 0x80<<16, nil
	case pci.RegSubsystem:
		return 0, nil
	case pci.RegBAR0:
		return c.bar, nil
	}
	return 0xffffffff, nil
}

func TestGemtekPCIProbe(t *testing.T) {
	hw, _, perm := testHardware()
	hw.Config = configSpace{addr: pci.Address{Bus: 2, Device: 5}, bar: 0xe001}
	g := gemtekPCIDescriptor(hw, "Gemtek PCI", "gtp").Device.(*gemtekPCI)

	err := g.Open(0)
	if err != nil {
		t.Fatal(err)
	}
	if !perm.All {
		t.Fatal("expected full I/O privilege")
	}

	present, err := g.Probe()
	if err != nil {
		t.Fatal(err)
	}
	if !present {
		t.Fatal("card not found")
	}
	if g.Address() != 0xe000 {
		t.Errorf("expected address 0xe000, got 0x%x", g.Address())
	}
}

func TestGemtekPCINotFound(t *testing.T) {
	hw, space, _ := testHardware()
	hw.Config = configSpace{addr: pci.Address{Bus: 2, Device: 5}, bar: 0xe0000000}
	g := gemtekPCIDescriptor(hw, "Gemtek PCI", "gtp").Device.(*gemtekPCI)

	present, err := g.Probe()
	if err != nil {
		t.Fatal(err)
	}
	if present {
		t.Fatal("memory mapped card reported present")
	}

	err = g.SetFrequency(9850)
	if !errors.Is(err, ErrCardNotFound) {
		t.Fatalf("expected ErrCardNotFound, got %v", err)
	}
	t.Log(err)
	if len(space.Log) != 0 {
		t.Errorf("expected no port access, got %v", space.Log)
	}
}

func TestGemtekPCISetFrequency(t *testing.T) {
	hw, space, _ := testHardware()
	g := gemtekPCIDescriptor(hw, "Guillemot MaxiRadio FM2000", "mr").Device.(*gemtekPCI)
	g.port = 0xe000

	err := g.SetFrequency(8750)
	if err != nil {
		t.Fatal(err)
	}

	writes := space.Writes(0xe000)
	if len(writes) != 1+25*3+1 {
		t.Fatalf("expected 77 writes, got %d", len(writes))
	}
	if writes[0] != gtpStart || writes[len(writes)-1] != gtpIdle {
		t.Errorf("unexpected framing 0x%x 0x%x", writes[0], writes[len(writes)-1])
	}
	if diff := deep.Equal(writes[1:4], []uint32{0x04, 0x05, 0x04}); diff != nil {
		t.Error(diff)
	}

	reg := busBits(writes[1:len(writes)-1], 0x06)
	if reg != tea5757.Encode(8750)|tea5757.S030 {
		t.Errorf("expected register %d, got %d", tea5757.Encode(8750)|tea5757.S030, reg)
	}
}

func TestGemtekPCIWordAccess(t *testing.T) {
	hw, space, _ := testHardware()
	g := gemtekPCIDescriptor(hw, "Gemtek PCI", "gtp").Device.(*gemtekPCI)
	g.port = 0xe000

	err := g.SetFrequency(9850)
	if err != nil {
		t.Fatal(err)
	}
	_, err = g.State()
	if err != nil {
		t.Fatal(err)
	}

	for _, a := range space.Log {
		if a.Width != 16 || a.Port != 0xe000 {
			t.Fatalf("expected 16 bit accesses to 0xe000 only, got %s", a)
		}
	}
}

func TestGemtekPCIByteOnlySpace(t *testing.T) {
	hw, space, _ := testHardware()
	space.ByteOnly = true
	g := gemtekPCIDescriptor(hw, "Gemtek PCI", "gtp").Device.(*gemtekPCI)
	g.port = 0xe000

	err := g.SetFrequency(9850)
	if !errors.Is(err, portio.ErrWideAccess) {
		t.Fatalf("expected %v, got %v", portio.ErrWideAccess, err)
	}
	t.Log(err)
	if len(space.Log) != 0 {
		t.Errorf("expected no port access, got %v", space.Log)
	}
}

func TestGemtekPCIState(t *testing.T) {
	cases := []struct {
		name   string
		stereo bool
		signal bool
		state  drivers.State
	}{
		{"both", true, true, drivers.Signal | drivers.Stereo},
		{"signal", false, true, drivers.Signal},
		{"stereo", true, false, drivers.Stereo},
		{"nothing", false, false, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			hw, space, _ := testHardware()
			g := gemtekPCIDescriptor(hw, "Gemtek PCI", "gtp").Device.(*gemtekPCI)
			g.port = 0xe000

			space.ReadFunc = func(port uint16, _ int) uint32 {
				writes := space.Writes(port)
				sense := tc.stereo
				if writes[len(writes)-1] == gtpData|gtpClock {
					sense = tc.signal
				}
				if sense {
					return gtpSenseOn
				}
				return 0
			}

			state, err := g.State()
			if err != nil {
				t.Fatal(err)
			}
			if state != tc.state {
				t.Errorf("expected state %d, got %d", tc.state, state)
			}
			if diff := deep.Equal(space.Writes(0xe000), []uint32{0x02, 0x03, 0x10}); diff != nil {
				t.Error(diff)
			}
		})
	}
}

func TestZoltrixFrequencyBitmask(t *testing.T) {
	cases := []struct {
		name      string
		frequency types.Frequency
		mono      bool
		bitmask   uint64
	}{
		{"88.00", 8800, false, 0xc48e536c10080000},
		{"98.50", 9850, false, 0xc4a8556c10080000},
		{"98.50 mono", 9850, true, 0xc4a8556c10080000 ^ 1<<31},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			z := &zoltrix{mono: tc.mono}
			if got := z.frequencyBitmask(tc.frequency); got != tc.bitmask {
				t.Errorf("expected 0x%x, got 0x%x", tc.bitmask, got)
			}
		})
	}
}

func TestZoltrixSetFrequency(t *testing.T) {
	hw, space, perm := testHardware()
	z := zoltrixDescriptor(hw).Device.(*zoltrix)

	err := z.Open(0x20c)
	if err != nil {
		t.Fatal(err)
	}
	if perm.Ranges[0x20c] != 4 {
		t.Fatalf("expected four ports acquired, got %v", perm.Ranges)
	}

	err = z.SetVolume(20)
	if err != nil {
		t.Fatal(err)
	}
	if z.volume != zoltrixMaxVolume {
		t.Fatalf("expected volume clamped to 16, got %d", z.volume)
	}
	space.Reset()

	err = z.SetFrequency(8800)
	if err != nil {
		t.Fatal(err)
	}

	writes := space.Writes(0x20c)
	// 2 + 2 + 45*3 + 3 + volume
	if len(writes) != 143 {
		t.Fatalf("expected 143 writes, got %d", len(writes))
	}
	if writes[len(writes)-1] != zoltrixMaxVolume {
		t.Errorf("expected volume restored, got 0x%x", writes[len(writes)-1])
	}
	if diff := deep.Equal(writes[4:7], []uint32{0x80, 0x00, 0x80}); diff != nil {
		t.Error(diff)
	}

	last := space.Log[len(space.Log)-1]
	if last.Write || last.Port != 0x20e {
		t.Errorf("expected a read of 0x20e, got %v", last)
	}
}

func TestZoltrixSetVolume(t *testing.T) {
	cases := []struct {
		name   string
		volume int
		value  uint32
		latch  uint16
	}{
		{"mute", 0, 0, 0x20f},
		{"negative", -3, 0, 0x20f},
		{"half", 8, 8, 0x20e},
		{"too loud", 99, 16, 0x20e},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			hw, space, _ := testHardware()
			z := zoltrixDescriptor(hw).Device.(*zoltrix)
			z.port = 0x20c

			err := z.SetVolume(tc.volume)
			if err != nil {
				t.Fatal(err)
			}
			if diff := deep.Equal(space.Writes(0x20c), []uint32{tc.value, tc.value}); diff != nil {
				t.Error(diff)
			}
			if latch := space.Log[len(space.Log)-1].Port; latch != tc.latch {
				t.Errorf("expected latch read at 0x%x, got 0x%x", tc.latch, latch)
			}
		})
	}
}

func TestZoltrixState(t *testing.T) {
	cases := []struct {
		name     string
		readings []uint32
		state    drivers.State
	}{
		{"both", []uint32{0xcf, 0xcf}, drivers.Signal | drivers.Stereo},
		{"stereo", []uint32{0xdf, 0xdf}, drivers.Stereo},
		{"signal", []uint32{0xef, 0xef}, drivers.Signal},
		{"unknown", []uint32{0xff, 0xff}, 0},
		{"unstable", []uint32{0xcf, 0xef}, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			hw, space, _ := testHardware()
			z := zoltrixDescriptor(hw).Device.(*zoltrix)
			z.port = 0x20c

			readings := tc.readings
			space.ReadFunc = func(uint16, int) uint32 {
				v := readings[0]
				readings = readings[1:]
				return v
			}

			state, err := z.State()
			if err != nil {
				t.Fatal(err)
			}
			if state != tc.state {
				t.Errorf("expected state %d, got %d", tc.state, state)
			}
		})
	}
}

func TestPortError(t *testing.T) {
	hw, space, _ := testHardware()
	space.Err = errors.New("bus error")
	z := zoltrixDescriptor(hw).Device.(*zoltrix)

	_, err := z.State()
	if err == nil {
		t.Fatal("expected error")
	}
	t.Log(err)
}
