package pci

import "github.com/jpnorenam/fmio/pkg/types"

const ClassMultimedia = 0x04

// Wildcards for the optional fields of a Match
const (
	AnySubsystemID uint16 = 0xffff
	AnySubclass    uint8  = 0xff
	AnyRevision    uint8  = 0xff
)

// Match identifies a multimedia card. Vendor and device ids must match exactly,
// the other fields may be wildcards.
type Match struct {
	VendorID    uint16
	DeviceID    uint16
	SubvendorID uint16
	SubdeviceID uint16
	Subclass    uint8
	Revision    uint8
}

// DeviceMatch matches any multimedia function with the vendor and device id
func DeviceMatch(vendor, device uint16) Match {
	return Match{
		VendorID:    vendor,
		DeviceID:    device,
		SubvendorID: AnySubsystemID,
		SubdeviceID: AnySubsystemID,
		Subclass:    AnySubclass,
		Revision:    AnyRevision,
	}
}

// Bounds are the highest bus, device and function numbers probed
type Bounds struct {
	MaxBus      uint8
	MaxDevice   uint8
	MaxFunction uint8
}

// DefaultBounds covers buses 0 to 15 only. Probing all 256 buses through port
// I/O takes too long, and add-on cards sit on the first few buses.
var DefaultBounds = Bounds{MaxBus: 0x0f, MaxDevice: 0x1f, MaxFunction: 0x07}

// Matches compares the function at addr against m
func Matches(cs ConfigSpace, addr Address, m Match) (bool, error) {
	id, err := readConfig(cs, addr, RegID)
	if err != nil {
		return false, err
	}
	if productOf(id) != m.DeviceID || vendorOf(id) != m.VendorID {
		return false, nil
	}

	class, err := readConfig(cs, addr, RegClass)
	if err != nil {
		return false, err
	}
	if classOf(class) != ClassMultimedia {
		return false, nil
	}
	if m.Subclass != AnySubclass && m.Subclass != subclassOf(class) {
		return false, nil
	}
	if m.Revision != AnyRevision && m.Revision != revisionOf(class) {
		return false, nil
	}

	subsystem, err := readConfig(cs, addr, RegSubsystem)
	if err != nil {
		return false, err
	}
	if m.SubvendorID != AnySubsystemID && m.SubvendorID != vendorOf(subsystem) {
		return false, nil
	}
	if m.SubdeviceID != AnySubsystemID && m.SubdeviceID != productOf(subsystem) {
		return false, nil
	}

	return true, nil
}

// Locate returns the I/O base address of the first matching function within
// DefaultBounds. Matches with a memory-mapped BAR0 are skipped. The result is 0
// when nothing is found.
func Locate(cs ConfigSpace, m Match) (uint16, error) {
	return LocateWithin(cs, m, DefaultBounds)
}

func LocateWithin(cs ConfigSpace, m Match, b Bounds) (uint16, error) {
	var found uint16

	err := walk(b, func(addr Address) (bool, error) {
		ok, err := Matches(cs, addr, m)
		if err != nil || !ok {
			return false, err
		}

		bar, err := readConfig(cs, addr, RegBAR0)
		if err != nil {
			return false, err
		}
		if base, isIO := ioBase(bar); isIO {
			found = base
			return true, nil
		}
		return false, nil
	})

	return found, err
}

// Enumerate lists every present function within the bounds
func Enumerate(cs ConfigSpace, b Bounds) ([]types.PciDevice, error) {
	var devices []types.PciDevice

	err := walk(b, func(addr Address) (bool, error) {
		id, err := readConfig(cs, addr, RegID)
		if err != nil {
			return false, err
		}
		if vendorOf(id) == 0xffff || vendorOf(id) == 0 {
			return false, nil
		}

		class, err := readConfig(cs, addr, RegClass)
		if err != nil {
			return false, err
		}
		subsystem, err := readConfig(cs, addr, RegSubsystem)
		if err != nil {
			return false, err
		}
		bar, err := readConfig(cs, addr, RegBAR0)
		if err != nil {
			return false, err
		}

		device := types.PciDevice{
			Slot:        addr.String(),
			BusNumber:   addr.Bus,
			Device:      addr.Device,
			Function:    addr.Function,
			DeviceClass: types.HexInt(uint32(classOf(class))<<16 | uint32(subclassOf(class))<<8 | uint32(interfaceOf(class))),
			Revision:    types.HexInt(revisionOf(class)),
			VendorId:    types.HexInt(vendorOf(id)),
			DeviceId:    types.HexInt(productOf(id)),
		}
		if subsystem != 0 && subsystem != 0xffffffff {
			subvendor := types.HexInt(vendorOf(subsystem))
			subdevice := types.HexInt(productOf(subsystem))
			device.SubvendorId = &subvendor
			device.SubdeviceId = &subdevice
		}
		if base, isIO := ioBase(bar); isIO {
			portBase := types.HexInt(base)
			device.IoBase = &portBase
		}

		devices = append(devices, device)
		return false, nil
	})

	return devices, err
}

// walk visits every address within the bounds until fn returns true or an error
func walk(b Bounds, fn func(Address) (bool, error)) error {
	for bus := 0; bus <= int(b.MaxBus); bus++ {
		for dev := 0; dev <= int(b.MaxDevice); dev++ {
			for fun := 0; fun <= int(b.MaxFunction); fun++ {
				done, err := fn(Address{Bus: uint8(bus), Device: uint8(dev), Function: uint8(fun)})
				if err != nil || done {
					return err
				}
			}
		}
	}
	return nil
}
