package portio

import (
	"fmt"

	"golang.org/x/sys/unix"
)

const devPortPath = "/dev/port"

// DevPort accesses ports through /dev/port. The device is opened on first use.
// The kernel transfers one byte per port: a 16 or 32 bit transfer would reach
// the hardware as byte accesses to port, port+1 and so on, so wide accesses
// fail with ErrWideAccess and touch nothing.
type DevPort struct {
	path string
	fd   int
}

func NewDevPort() *DevPort {
	return &DevPort{path: devPortPath, fd: -1}
}

func (p *DevPort) open() error {
	if p.fd >= 0 {
		return nil
	}
	fd, err := unix.Open(p.path, unix.O_RDWR|unix.O_CLOEXEC, 0)
	if err != nil {
		return fmt.Errorf("error opening %s: %w", p.path, err)
	}
	p.fd = fd
	return nil
}

// Close closes the device if it was opened
func (p *DevPort) Close() error {
	if p.fd < 0 {
		return nil
	}
	err := unix.Close(p.fd)
	p.fd = -1
	return err
}

func (p *DevPort) read(port uint16, buf []byte) error {
	if err := p.open(); err != nil {
		return err
	}
	n, err := unix.Pread(p.fd, buf, int64(port))
	if err != nil {
		return fmt.Errorf("error reading port 0x%x: %w", port, err)
	}
	if n != len(buf) {
		return fmt.Errorf("short read from port 0x%x", port)
	}
	return nil
}

func (p *DevPort) write(port uint16, buf []byte) error {
	if err := p.open(); err != nil {
		return err
	}
	n, err := unix.Pwrite(p.fd, buf, int64(port))
	if err != nil {
		return fmt.Errorf("error writing port 0x%x: %w", port, err)
	}
	if n != len(buf) {
		return fmt.Errorf("short write to port 0x%x", port)
	}
	return nil
}

func (p *DevPort) Inb(port uint16) (uint8, error) {
	var buf [1]byte
	err := p.read(port, buf[:])
	return buf[0], err
}

func (p *DevPort) Outb(port uint16, value uint8) error {
	return p.write(port, []byte{value})
}

func (p *DevPort) Inw(port uint16) (uint16, error) {
	return 0, fmt.Errorf("%w: 16 bit read from port 0x%x", ErrWideAccess, port)
}

func (p *DevPort) Inl(port uint16) (uint32, error) {
	return 0, fmt.Errorf("%w: 32 bit read from port 0x%x", ErrWideAccess, port)
}

func (p *DevPort) Outw(port uint16, _ uint16) error {
	return fmt.Errorf("%w: 16 bit write to port 0x%x", ErrWideAccess, port)
}

func (p *DevPort) Outl(port uint16, _ uint32) error {
	return fmt.Errorf("%w: 32 bit write to port 0x%x", ErrWideAccess, port)
}
