package serial

import (
	"errors"
	"fmt"
	"io"
)

// ErrClosed is returned by Read and Write after Close.
var ErrClosed = errors.New("serial: port closed")

// Driver names accepted by OpenDriver.
const (
	DriverTermios  = "termios"
	DriverPortable = "portable"
)

// Conn is what both drivers provide: a byte stream with a bounded Read
// (returning (0, nil) on timeout) plus the four modem status lines.
type Conn interface {
	io.ReadWriteCloser
	ClearToSend() (bool, error)
	CarrierDetect() (bool, error)
	RingIndicator() (bool, error)
	DataSetReady() (bool, error)
}

// OpenDriver opens cfg.Device with the named driver.
func OpenDriver(driver string, cfg Config) (Conn, error) {
	switch driver {
	case DriverTermios, "":
		port, err := Open(cfg)
		if err != nil {
			return nil, err
		}
		return port, nil
	case DriverPortable:
		port, err := OpenPortable(cfg)
		if err != nil {
			return nil, err
		}
		return port, nil
	default:
		return nil, fmt.Errorf("unknown serial driver %q (want %s or %s)", driver, DriverTermios, DriverPortable)
	}
}
