//go:build !(linux && amd64)

package portio

// NewSpace returns the port space of the host. Without the in and out
// instructions only single byte transfers through /dev/port are available.
func NewSpace() Port {
	return NewDevPort()
}
