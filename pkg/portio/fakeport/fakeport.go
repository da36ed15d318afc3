// Package fakeport provides a recording port space and permission set for tests
package fakeport

import (
	"fmt"

	"github.com/jpnorenam/fmio/pkg/portio"
)

// Access is one recorded port access
type Access struct {
	Write bool
	Width int
	Port  uint16
	Value uint32
}

func (a Access) String() string {
	dir := "in"
	if a.Write {
		dir = "out"
	}
	return fmt.Sprintf("%s%d 0x%x 0x%x", dir, a.Width, a.Port, a.Value)
}

// Space records every access. Reads are answered by ReadFunc, or by Values,
// or with all bits set, as an empty bus would. A ByteOnly space rejects 16 and
// 32 bit accesses the way /dev/port does.
type Space struct {
	Log      []Access
	Values   map[uint16]uint32
	ReadFunc func(port uint16, width int) uint32
	Err      error
	ByteOnly bool
}

func (s *Space) check(port uint16, width int) error {
	if s.Err != nil {
		return s.Err
	}
	if s.ByteOnly && width > 8 {
		return fmt.Errorf("%w: %d bit access to port 0x%x", portio.ErrWideAccess, width, port)
	}
	return nil
}

func (s *Space) read(port uint16, width int) (uint32, error) {
	if err := s.check(port, width); err != nil {
		return 0, err
	}

	var v uint32
	switch {
	case s.ReadFunc != nil:
		v = s.ReadFunc(port, width)
	default:
		var found bool
		v, found = s.Values[port]
		if !found {
			v = 0xffffffff
		}
	}
	v &= uint32(1)<<width - 1

	s.Log = append(s.Log, Access{Width: width, Port: port, Value: v})
	return v, nil
}

func (s *Space) write(port uint16, width int, value uint32) error {
	if err := s.check(port, width); err != nil {
		return err
	}
	s.Log = append(s.Log, Access{Write: true, Width: width, Port: port, Value: value})
	return nil
}

func (s *Space) Inb(port uint16) (uint8, error) {
	v, err := s.read(port, 8)
	return uint8(v), err
}

func (s *Space) Inw(port uint16) (uint16, error) {
	v, err := s.read(port, 16)
	return uint16(v), err
}

func (s *Space) Inl(port uint16) (uint32, error) {
	v, err := s.read(port, 32)
	return v, err
}

func (s *Space) Outb(port uint16, value uint8) error {
	return s.write(port, 8, uint32(value))
}

func (s *Space) Outw(port uint16, value uint16) error {
	return s.write(port, 16, uint32(value))
}

func (s *Space) Outl(port uint16, value uint32) error {
	return s.write(port, 32, value)
}

// Writes returns the values written to a port, in order
func (s *Space) Writes(port uint16) []uint32 {
	var out []uint32
	for _, a := range s.Log {
		if a.Write && a.Port == port {
			out = append(out, a.Value)
		}
	}
	return out
}

// Reset clears the log
func (s *Space) Reset() {
	s.Log = nil
}

// Permissions records acquired ranges
type Permissions struct {
	Ranges map[uint16]int
	All    bool
	Err    error
	Calls  []string
}

func (p *Permissions) Acquire(port uint16, n int) error {
	p.Calls = append(p.Calls, fmt.Sprintf("acquire 0x%x %d", port, n))
	if p.Err != nil {
		return p.Err
	}
	if p.Ranges == nil {
		p.Ranges = make(map[uint16]int)
	}
	p.Ranges[port] = n
	return nil
}

func (p *Permissions) Release(port uint16, n int) error {
	p.Calls = append(p.Calls, fmt.Sprintf("release 0x%x %d", port, n))
	delete(p.Ranges, port)
	return nil
}

func (p *Permissions) AcquireAll() error {
	p.Calls = append(p.Calls, "acquire-all")
	if p.Err != nil {
		return p.Err
	}
	p.All = true
	return nil
}

func (p *Permissions) ReleaseAll() error {
	p.Calls = append(p.Calls, "release-all")
	p.All = false
	return nil
}

// Held reports whether any permission is still held
func (p *Permissions) Held() bool {
	return p.All || len(p.Ranges) > 0
}
