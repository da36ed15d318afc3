//go:build !linux

package portio

// DevPort is only available on Linux
type DevPort struct{}

func NewDevPort() *DevPort {
	return &DevPort{}
}

func (p *DevPort) Close() error { return nil }

func (p *DevPort) Inb(uint16) (uint8, error)  { return 0, ErrUnsupportedPlatform }
func (p *DevPort) Inw(uint16) (uint16, error) { return 0, ErrUnsupportedPlatform }
func (p *DevPort) Inl(uint16) (uint32, error) { return 0, ErrUnsupportedPlatform }
func (p *DevPort) Outb(uint16, uint8) error   { return ErrUnsupportedPlatform }
func (p *DevPort) Outw(uint16, uint16) error  { return ErrUnsupportedPlatform }
func (p *DevPort) Outl(uint16, uint32) error  { return ErrUnsupportedPlatform }
