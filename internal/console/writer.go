package console

import (
	"io"
	"log/slog"
)

// Writer transmits outbound byte sequences in the order they were queued.
type Writer struct {
	Device   *SharedDevice
	Outbound <-chan []byte
	Logger   *slog.Logger
}

// Run transmits until Outbound is closed or a write fails. Empty payloads
// are skipped.
func (w *Writer) Run() error {
	for payload := range w.Outbound {
		if len(payload) == 0 {
			continue
		}
		err := w.Device.With(func(device Device) error {
			return writeFull(device, payload)
		})
		if err != nil {
			w.Logger.Error("serial writer stopped", "error", err, "pending", len(payload))
			return &DeviceError{Op: "write", Err: err}
		}
	}
	return nil
}

func writeFull(w io.Writer, p []byte) error {
	for len(p) > 0 {
		n, err := w.Write(p)
		if err != nil {
			return err
		}
		if n == 0 {
			return io.ErrShortWrite
		}
		p = p[n:]
	}
	return nil
}
