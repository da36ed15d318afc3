package pci

import "github.com/jpnorenam/fmio/pkg/portio"

const (
	configAddressPort = 0x0cf8
	configDataPort    = 0x0cfc
	cycleEnable       = 1 << 31
)

// Mechanism1 reads configuration space through the address and data ports of
// configuration mechanism #1. Old chipsets that only implement mechanism #2
// are not supported. The address must reach port 0xcf8 as one 32 bit write:
// on a byte-only space every read fails before anything is written.
type Mechanism1 struct {
	io portio.Space
}

func NewMechanism1(io portio.Space) *Mechanism1 {
	return &Mechanism1{io: io}
}

// configAddress encodes the value written to the address port
func configAddress(addr Address, reg uint8) uint32 {
	return cycleEnable |
		uint32(addr.Bus)<<16 |
		uint32(addr.Device&0x1f)<<11 |
		uint32(addr.Function&0x07)<<8 |
		uint32(reg&0xfc)
}

func (m *Mechanism1) ReadConfig(addr Address, reg uint8) (uint32, error) {
	err := m.io.Outl(configAddressPort, configAddress(addr, reg))
	if err != nil {
		return 0, err
	}
	return m.io.Inl(configDataPort)
}
