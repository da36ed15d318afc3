package pci

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

const sysfsDevicesDir = "/sys/bus/pci/devices"

// Sysfs reads configuration space from the kernel's per-device config files in
// PCI domain 0. It needs no port access, but unprivileged reads only see the
// first 64 bytes of each header.
type Sysfs struct {
	Root string
}

func NewSysfs() *Sysfs {
	return &Sysfs{Root: sysfsDevicesDir}
}

func (s *Sysfs) ReadConfig(addr Address, reg uint8) (uint32, error) {
	path := filepath.Join(s.Root, "0000:"+addr.String(), "config")

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0xffffffff, nil
		}
		return 0, fmt.Errorf("error opening %s: %v", path, err)
	}
	defer f.Close()

	var buf [4]byte
	_, err = f.ReadAt(buf[:], int64(reg&0xfc))
	if err != nil {
		if errors.Is(err, io.EOF) {
			return 0xffffffff, nil
		}
		return 0, fmt.Errorf("error reading %s: %v", path, err)
	}

	return binary.LittleEndian.Uint32(buf[:]), nil
}
