package serial

import (
	"errors"
	"fmt"
	"sync"

	bugst "go.bug.st/serial"
)

// PortablePort is a Conn backed by go.bug.st/serial. It works on every
// platform that library supports but cannot configure flow control.
type PortablePort struct {
	port      bugst.Port
	name      string
	closeOnce sync.Once
	closeErr  error
}

// OpenPortable opens cfg.Device through go.bug.st/serial.
func OpenPortable(cfg Config) (*PortablePort, error) {
	if err := cfg.Settings.Validate(); err != nil {
		return nil, err
	}
	if cfg.FlowControl != FlowNone {
		return nil, fmt.Errorf("flow control %s is not supported by the %s driver", cfg.FlowControl, DriverPortable)
	}

	mode := &bugst.Mode{
		BaudRate: cfg.BaudRate,
		DataBits: cfg.DataBits,
		Parity:   bugst.NoParity,
		StopBits: bugst.OneStopBit,
	}
	switch cfg.Parity {
	case ParityOdd:
		mode.Parity = bugst.OddParity
	case ParityEven:
		mode.Parity = bugst.EvenParity
	}
	if cfg.StopBits == StopBitsTwo {
		mode.StopBits = bugst.TwoStopBits
	}

	port, err := bugst.Open(cfg.Device, mode)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Device, err)
	}
	if err := port.SetReadTimeout(cfg.ReadTimeout); err != nil {
		port.Close()
		return nil, fmt.Errorf("set read timeout: %w", err)
	}
	return &PortablePort{port: port, name: cfg.Device}, nil
}

// Name returns the device path the port was opened with.
func (p *PortablePort) Name() string { return p.name }

// Read returns (0, nil) when the read timeout expires.
func (p *PortablePort) Read(b []byte) (int, error) {
	n, err := p.port.Read(b)
	if err != nil && isPortClosed(err) {
		return n, ErrClosed
	}
	return n, err
}

// isPortClosed matches PortError values and pointers; the library returns both.
func isPortClosed(err error) bool {
	var portErr bugst.PortError
	if errors.As(err, &portErr) {
		return portErr.Code() == bugst.PortClosed
	}
	var portErrPtr *bugst.PortError
	if errors.As(err, &portErrPtr) {
		return portErrPtr.Code() == bugst.PortClosed
	}
	return false
}

func (p *PortablePort) Write(b []byte) (int, error) {
	return p.port.Write(b)
}

func (p *PortablePort) ClearToSend() (bool, error) {
	bits, err := p.port.GetModemStatusBits()
	if err != nil {
		return false, err
	}
	return bits.CTS, nil
}

func (p *PortablePort) CarrierDetect() (bool, error) {
	bits, err := p.port.GetModemStatusBits()
	if err != nil {
		return false, err
	}
	return bits.DCD, nil
}

func (p *PortablePort) RingIndicator() (bool, error) {
	bits, err := p.port.GetModemStatusBits()
	if err != nil {
		return false, err
	}
	return bits.RI, nil
}

func (p *PortablePort) DataSetReady() (bool, error) {
	bits, err := p.port.GetModemStatusBits()
	if err != nil {
		return false, err
	}
	return bits.DSR, nil
}

// Close is safe to call multiple times.
func (p *PortablePort) Close() error {
	p.closeOnce.Do(func() {
		p.closeErr = p.port.Close()
	})
	return p.closeErr
}
