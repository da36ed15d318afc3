//go:build !(linux && (amd64 || 386))

package portio

// SystemPermissions is only available on x86 Linux
type SystemPermissions struct{}

func (SystemPermissions) Acquire(uint16, int) error { return ErrUnsupportedPlatform }
func (SystemPermissions) Release(uint16, int) error { return ErrUnsupportedPlatform }
func (SystemPermissions) AcquireAll() error         { return ErrUnsupportedPlatform }
func (SystemPermissions) ReleaseAll() error         { return ErrUnsupportedPlatform }
