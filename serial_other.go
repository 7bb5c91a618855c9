//go:build !linux

package serial

import (
	"fmt"
	"runtime"
)

// Port is only implemented on Linux; use OpenPortable elsewhere.
type Port = PortablePort

// Open is only implemented on Linux; use OpenPortable elsewhere.
func Open(cfg Config) (*Port, error) {
	return nil, fmt.Errorf("termios driver is not available on %s, use the portable driver", runtime.GOOS)
}
