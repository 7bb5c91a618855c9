package console

import (
	"bufio"
	"io"
	"log/slog"

	"github.com/mattn/go-runewidth"
	"github.com/muesli/termenv"

	"github.com/luhtfiimanal/go-serial-console/internal/keys"
	"github.com/luhtfiimanal/go-serial-console/internal/telemetry"
)

// EscapeChord returns from Input or HexInput to Menu. Ctrl-] is the byte
// 0x1d, which a terminal also sends for Ctrl-5.
var EscapeChord = keys.Char(']', keys.ModControl)

// menuBarColor is the ANSI foreground color of the status line.
const menuBarColor = "3"

// Loop is the display and control loop: the only consumer of Events and
// the only producer of Outbound.
type Loop struct {
	Events   <-chan Event
	Outbound chan<- []byte
	Output   io.Writer
	Logger   *slog.Logger

	// Done is closed when Run returns, telling the producers to stop.
	Done chan<- struct{}

	// WriterDone is closed if the writer exits early; outbound bytes are
	// dropped from then on instead of blocking the loop. May be nil.
	WriterDone <-chan struct{}
}

// Run processes events until the user exits or the event channel closes.
// It takes ownership of state and returns its final value. Outbound and
// Done are closed on return.
func (l *Loop) Run(state State) (State, error) {
	defer close(l.Outbound)
	if l.Done != nil {
		defer close(l.Done)
	}

	buffered := bufio.NewWriter(l.Output)
	c := &controller{
		state:      &state,
		out:        buffered,
		term:       termenv.NewOutput(buffered, termenv.WithProfile(termenv.ANSI)),
		outbound:   l.Outbound,
		writerDone: l.WriterDone,
		logger:     l.Logger,
	}

	c.drawMenuBar()
	if err := buffered.Flush(); err != nil {
		return state, &TerminalError{Op: "write", Err: err}
	}

	for {
		event, ok := <-l.Events
		if !ok {
			return state, ErrChannelClosed
		}

		c.clearMenuBar()
		Dispatch(event, c)
		c.drawMenuBar()
		if err := buffered.Flush(); err != nil {
			return state, &TerminalError{Op: "write", Err: err}
		}

		if state.ExitRequested {
			l.Logger.Debug("exit requested")
			return state, nil
		}
	}
}

// controller is the EventHandler for one Run. It mutates the state Run
// owns.
type controller struct {
	state      *State
	out        *bufio.Writer
	term       *termenv.Output
	outbound   chan<- []byte
	writerDone <-chan struct{}
	logger     *slog.Logger
}

func (c *controller) OnKeyInput(key keys.Event) {
	switch c.state.Mode {
	case ModeMenu:
		c.menuKey(key)
	case ModeInput:
		if key == EscapeChord {
			c.setMode(ModeMenu)
			return
		}
		c.transmit(keys.Encode(key))
	case ModeHexInput:
		c.hexKey(key)
	}
}

func (c *controller) menuKey(key keys.Event) {
	if key.Code != keys.CodeRune || key.Mods != keys.ModNone {
		return
	}
	switch key.Rune {
	case 'i':
		c.setMode(ModeInput)
	case 'h':
		c.setMode(ModeHexInput)
	case 'q':
		c.state.ExitRequested = true
	case 'm':
		c.state.MenuBar = c.state.MenuBar.Next()
	}
}

// hexKey pairs hex digits into single bytes. Backspace takes back a
// half-typed digit. Any other key drops a half-typed digit and is sent
// the same way Input mode sends it.
func (c *controller) hexKey(key keys.Event) {
	if key == EscapeChord {
		c.setMode(ModeMenu)
		return
	}
	if key.Code == keys.CodeRune && key.Mods == keys.ModNone {
		if digit, ok := hexValue(key.Rune); ok {
			if b, complete := c.state.hex.feed(digit); complete {
				c.transmit([]byte{b})
			}
			return
		}
	}
	if key.Code == keys.Backspace && c.state.hex.reset() {
		return
	}
	if c.state.hex.reset() {
		c.logger.Debug("dropped half-typed hex byte", "key", key.String())
	}
	c.transmit(keys.Encode(key))
}

func (c *controller) setMode(mode Mode) {
	if c.state.hex.reset() {
		c.logger.Debug("dropped half-typed hex byte on mode change")
	}
	c.logger.Debug("mode changed", "from", c.state.Mode.String(), "to", mode.String())
	c.state.Mode = mode
}

// transmit hands payload to the writer. Empty payloads are never sent.
func (c *controller) transmit(payload []byte) {
	if len(payload) == 0 {
		return
	}
	select {
	case c.outbound <- payload:
	case <-c.writerDone:
		c.logger.Warn("serial writer is gone, dropping input", "bytes", len(payload))
	}
}

func (c *controller) OnSerialDataReceived(data []byte) {
	c.out.Write(data)
}

func (c *controller) OnSerialTelemetryUpdated(snapshot telemetry.Snapshot) {
	c.state.Telemetry = snapshot
}

func (c *controller) OnTerminalResized(cols, rows int) {
	c.state.Cols = cols
	c.state.Rows = rows
}

func (c *controller) OnTick() {}

func (c *controller) OnPing() {}

// clearMenuBar blanks the last row, leaving the cursor where it was.
func (c *controller) clearMenuBar() {
	if c.state.Rows <= 0 {
		return
	}
	c.term.SaveCursorPosition()
	c.term.MoveCursor(c.state.Rows, 1)
	c.term.ClearLine()
	c.term.RestoreCursorPosition()
}

// drawMenuBar writes the status line on the last row, leaving the cursor
// where it was.
func (c *controller) drawMenuBar() {
	text := c.state.MenuBarText()
	if text == "" || c.state.Rows <= 0 {
		return
	}
	if c.state.Cols > 0 {
		text = runewidth.Truncate(text, c.state.Cols, "")
	}
	styled := c.term.String(text).Foreground(c.term.Color(menuBarColor))

	c.term.SaveCursorPosition()
	c.term.MoveCursor(c.state.Rows, 1)
	c.term.ClearLine()
	c.out.WriteString(styled.String())
	c.term.RestoreCursorPosition()
}
