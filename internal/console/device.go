package console

import (
	"io"
	"sync"

	"github.com/luhtfiimanal/go-serial-console/internal/telemetry"
)

// Device is the serial endpoint the workers talk to. Read must return
// within a bounded time and report a timeout as (0, nil).
type Device interface {
	io.ReadWriter
	telemetry.Lines
}

// SharedDevice is the one resource the reader and writer workers share.
// Access is only possible through With, which holds the lock for the
// duration of the callback and releases it on every return path.
type SharedDevice struct {
	mu     sync.Mutex
	device Device
}

// NewSharedDevice wraps device. Nothing else should use device afterwards.
func NewSharedDevice(device Device) *SharedDevice {
	return &SharedDevice{device: device}
}

// With runs fn with exclusive access to the device.
func (s *SharedDevice) With(fn func(Device) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.device)
}
