package terminal

import (
	"io"
	"os"
	"testing"
	"time"

	"github.com/creack/pty"
	"github.com/stretchr/testify/require"
	"golang.org/x/term"
)

func TestNewScreen_NotATTY(t *testing.T) {
	r, w, err := os.Pipe()
	require.NoError(t, err)
	t.Cleanup(func() { r.Close(); w.Close() })

	_, err = NewScreen(r, w)
	require.ErrorIs(t, err, ErrNotATTY)
}

func TestScreen_EnterRestore(t *testing.T) {
	master, slave, err := pty.Open()
	require.NoError(t, err)
	t.Cleanup(func() { master.Close(); slave.Close() })
	require.NoError(t, pty.Setsize(master, &pty.Winsize{Rows: 30, Cols: 100}))

	// Drain whatever the screen writes so the pty never fills up.
	go io.Copy(io.Discard, master)

	screen, err := NewScreen(slave, slave)
	require.NoError(t, err)

	before, err := term.GetState(int(slave.Fd()))
	require.NoError(t, err)

	require.NoError(t, screen.Enter())
	require.NoError(t, screen.Enter())

	cols, rows, err := screen.Size()
	require.NoError(t, err)
	require.Equal(t, 100, cols)
	require.Equal(t, 30, rows)

	require.NoError(t, screen.Restore())
	require.NoError(t, screen.Restore())

	after, err := term.GetState(int(slave.Fd()))
	require.NoError(t, err)
	require.Equal(t, before, after)
}

func TestScreen_RestoreWithoutEnterIsNoop(t *testing.T) {
	master, slave, err := pty.Open()
	require.NoError(t, err)
	t.Cleanup(func() { master.Close(); slave.Close() })

	screen, err := NewScreen(slave, slave)
	require.NoError(t, err)
	require.NoError(t, screen.Restore())
}

func TestInput_PollAndRead(t *testing.T) {
	r, w, err := os.Pipe()
	require.NoError(t, err)
	t.Cleanup(func() { r.Close(); w.Close() })

	in := NewInput(r)

	ready, err := in.Poll(10 * time.Millisecond)
	require.NoError(t, err)
	require.False(t, ready)

	_, err = w.Write([]byte("\x1b[Aq"))
	require.NoError(t, err)

	ready, err = in.Poll(time.Second)
	require.NoError(t, err)
	require.True(t, ready)

	buf := make([]byte, 16)
	n, err := in.Read(buf)
	require.NoError(t, err)
	require.Equal(t, "\x1b[Aq", string(buf[:n]))

	require.NoError(t, w.Close())
	ready, err = in.Poll(time.Second)
	require.NoError(t, err)
	require.True(t, ready)
	_, err = in.Read(buf)
	require.ErrorIs(t, err, io.EOF)
}
