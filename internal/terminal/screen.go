// Package terminal wraps the interactive terminal a console runs on: raw
// mode, the alternate screen, size queries, bounded input polling and
// decoding of key presses.
package terminal

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// ErrNotATTY is returned by NewScreen when the output is not a terminal.
var ErrNotATTY = errors.New("terminal is not TTY compatible")

// Screen owns the terminal for the duration of a session.
type Screen struct {
	*Input

	in     *os.File
	out    *os.File
	output *termenv.Output

	mu       sync.Mutex
	oldState *term.State
	entered  bool
	restored bool
}

// NewScreen checks that out is a terminal. It changes nothing; call Enter
// to switch modes.
func NewScreen(in, out *os.File) (*Screen, error) {
	if !term.IsTerminal(int(out.Fd())) {
		return nil, ErrNotATTY
	}
	return &Screen{
		Input:  NewInput(in),
		in:     in,
		out:    out,
		output: termenv.NewOutput(out, termenv.WithProfile(termenv.ANSI)),
	}, nil
}

// Enter puts the input into raw mode, switches to the alternate screen and
// clears it with the cursor at the top-left corner.
func (s *Screen) Enter() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.entered {
		return nil
	}

	oldState, err := term.MakeRaw(int(s.in.Fd()))
	if err != nil {
		return fmt.Errorf("enable raw mode: %w", err)
	}
	s.oldState = oldState
	s.entered = true

	s.output.AltScreen()
	s.output.ClearScreen()
	s.output.MoveCursor(1, 1)
	return nil
}

// Restore leaves the alternate screen and restores the original terminal
// mode. Only the first call after Enter has any effect; it is safe to call
// from a signal handler goroutine concurrently with the session.
func (s *Screen) Restore() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.entered || s.restored {
		return nil
	}
	s.restored = true

	s.output.Reset()
	s.output.ExitAltScreen()
	if err := term.Restore(int(s.in.Fd()), s.oldState); err != nil {
		return fmt.Errorf("disable raw mode: %w", err)
	}
	return nil
}

// Size returns the terminal width and height in cells.
func (s *Screen) Size() (cols, rows int, err error) {
	cols, rows, err = term.GetSize(int(s.out.Fd()))
	if err != nil {
		return 0, 0, fmt.Errorf("get terminal size: %w", err)
	}
	return cols, rows, nil
}

// Write passes p to the terminal output unchanged.
func (s *Screen) Write(p []byte) (int, error) {
	return s.out.Write(p)
}
