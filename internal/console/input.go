package console

import (
	"log/slog"
	"time"

	"github.com/luhtfiimanal/go-serial-console/internal/keys"
	"github.com/luhtfiimanal/go-serial-console/internal/terminal"
)

// DefaultTickInterval is the input poll timeout, and so the rate of Tick
// events while the user is idle.
const DefaultTickInterval = 100 * time.Millisecond

// DefaultEscapeTimeout is how long a partial key sequence waits for the
// rest of its bytes before it is decoded as it stands.
const DefaultEscapeTimeout = 25 * time.Millisecond

// InputSource is a terminal input that can be polled with a timeout.
type InputSource interface {
	Poll(timeout time.Duration) (bool, error)
	Read(p []byte) (int, error)
}

// InputWorker turns terminal input into events.
type InputWorker struct {
	Source InputSource
	Events chan<- Event
	Done   <-chan struct{}
	Logger *slog.Logger

	// Resize is signalled when the terminal may have changed size; Size
	// then reports the new size. Both may be nil.
	Resize <-chan struct{}
	Size   func() (cols, rows int, err error)

	TickInterval  time.Duration
	EscapeTimeout time.Duration
}

// Run loops until input fails or Done is closed. It publishes a Tick for
// every poll interval without input. A key sequence split across reads is
// joined; one left incomplete for EscapeTimeout is decoded as it stands,
// so a lone ESC becomes the Escape key.
func (w *InputWorker) Run() error {
	tick := w.TickInterval
	if tick <= 0 {
		tick = DefaultTickInterval
	}
	escape := w.EscapeTimeout
	if escape <= 0 {
		escape = DefaultEscapeTimeout
	}
	decoder := terminal.NewDecoder()
	buf := make([]byte, 256)

	for {
		select {
		case <-w.Done:
			return nil
		case <-w.Resize:
			if !w.sendResize() {
				return nil
			}
			continue
		default:
		}

		timeout := tick
		if decoder.Pending() {
			timeout = escape
		}
		ready, err := w.Source.Poll(timeout)
		if err != nil {
			w.Logger.Error("terminal input stopped", "error", err)
			return &TerminalError{Op: "poll", Err: err}
		}
		if !ready {
			if decoder.Pending() {
				if !w.publish(decoder.Flush()) {
					return nil
				}
				continue
			}
			if !w.send(Tick{}) {
				return nil
			}
			continue
		}

		n, err := w.Source.Read(buf)
		if err != nil {
			w.Logger.Error("terminal input stopped", "error", err)
			return &TerminalError{Op: "read", Err: err}
		}
		if !w.publish(decoder.Feed(buf[:n])) {
			return nil
		}
	}
}

// publish sends one KeyInput per key, or a Ping when the input held only
// unknown sequences.
func (w *InputWorker) publish(pressed []keys.Event, unknown int) bool {
	for _, key := range pressed {
		if !w.send(KeyInput{Key: key}) {
			return false
		}
	}
	if len(pressed) == 0 && unknown > 0 {
		return w.send(Ping{})
	}
	return true
}

func (w *InputWorker) sendResize() bool {
	if w.Size == nil {
		return true
	}
	cols, rows, err := w.Size()
	if err != nil {
		w.Logger.Warn("terminal size unavailable", "error", err)
		return true
	}
	return w.send(TerminalResized{Cols: cols, Rows: rows})
}

func (w *InputWorker) send(e Event) bool {
	select {
	case w.Events <- e:
		return true
	case <-w.Done:
		return false
	}
}
