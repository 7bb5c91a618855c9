package console

import (
	"errors"

	"github.com/luhtfiimanal/go-serial-console/internal/terminal"
)

var (
	// ErrNotATTY is returned before anything touches the terminal when the
	// output is not interactive.
	ErrNotATTY = terminal.ErrNotATTY

	// ErrChannelClosed means the event channel closed while the control
	// loop was still running: every producer has exited.
	ErrChannelClosed = errors.New("event channel closed")
)

// DeviceError is a serial open, read or write failure.
type DeviceError struct {
	Op  string
	Err error
}

func (e *DeviceError) Error() string { return "serial " + e.Op + ": " + e.Err.Error() }

func (e *DeviceError) Unwrap() error { return e.Err }

// TerminalError is a failure to control or read the terminal.
type TerminalError struct {
	Op  string
	Err error
}

func (e *TerminalError) Error() string { return "terminal " + e.Op + ": " + e.Err.Error() }

func (e *TerminalError) Unwrap() error { return e.Err }
