package console

import (
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/luhtfiimanal/go-serial-console/internal/telemetry"
)

const (
	// DefaultReadBufferSize bounds a single SerialDataReceived payload.
	DefaultReadBufferSize = 256

	// DefaultYieldInterval is how long the reader sleeps with the device
	// unlocked after each iteration so the writer can take the lock.
	DefaultYieldInterval = 2 * time.Millisecond
)

// Reader reads the device and publishes data and telemetry events.
type Reader struct {
	Device *SharedDevice
	Events chan<- Event
	Done   <-chan struct{}
	Logger *slog.Logger

	BufferSize    int
	YieldInterval time.Duration
}

// Run loops until the device fails or Done is closed. Every iteration
// performs one bounded read and one telemetry sample under the device
// lock, then publishes the data (if any) followed by the telemetry.
func (r *Reader) Run() error {
	size := r.BufferSize
	if size <= 0 {
		size = DefaultReadBufferSize
	}
	yield := r.YieldInterval
	if yield <= 0 {
		yield = DefaultYieldInterval
	}
	buf := make([]byte, size)

	for {
		select {
		case <-r.Done:
			return nil
		default:
		}

		var data []byte
		var snapshot telemetry.Snapshot
		var readErr error
		r.Device.With(func(device Device) error {
			n, err := device.Read(buf)
			if n > 0 {
				data = append([]byte(nil), buf[:n]...)
			}
			if err != nil && !isTimeout(err) {
				readErr = err
				return err
			}
			snapshot = telemetry.Sample(device)
			return nil
		})

		if data != nil && !r.send(SerialDataReceived{Data: data}) {
			return nil
		}
		if readErr != nil {
			select {
			case <-r.Done:
				// The session closes the device once it is shutting down.
				return nil
			default:
			}
			r.Logger.Error("serial reader stopped", "error", readErr)
			return &DeviceError{Op: "read", Err: readErr}
		}
		if !r.send(SerialTelemetryUpdated{Snapshot: snapshot}) {
			return nil
		}

		select {
		case <-r.Done:
			return nil
		case <-time.After(yield):
		}
	}
}

func (r *Reader) send(e Event) bool {
	select {
	case r.Events <- e:
		return true
	case <-r.Done:
		return false
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var timeout interface{ Timeout() bool }
	return errors.As(err, &timeout) && timeout.Timeout()
}
