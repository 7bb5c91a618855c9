package keys

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncode_PrintableASCII(t *testing.T) {
	for c := rune(0x20); c < 0x7f; c++ {
		require.Equal(t, []byte{byte(c)}, Encode(Char(c, ModNone)), "char %q", c)
	}
}

func TestEncode_ControlLetters(t *testing.T) {
	for c := 'a'; c <= 'z'; c++ {
		require.Equal(t, []byte{byte(c-'a') + 1}, Encode(Char(c, ModControl)), "ctrl+%c", c)
	}
	require.Equal(t, []byte{0x01}, Encode(Char('a', ModControl)))
	require.Equal(t, []byte{0x03}, Encode(Char('c', ModControl)))
	require.Equal(t, []byte{0x1a}, Encode(Char('z', ModControl)))
}

func TestEncode_ControlPolicy(t *testing.T) {
	cases := []struct {
		r    rune
		want []byte
	}{
		{'A', []byte{0x01}},
		{'Z', []byte{0x1a}},
		{'@', []byte{0x00}},
		{' ', []byte{0x00}},
		{'[', []byte{0x1b}},
		{'\\', []byte{0x1c}},
		{']', []byte{0x1d}},
		{'^', []byte{0x1e}},
		{'_', []byte{0x1f}},
		{'?', []byte{0x7f}},
		{'2', []byte{0x00}},
		{'8', []byte{0x7f}},
		{'1', nil},
		{'9', nil},
		{'=', nil},
		{'é', nil},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, Encode(Char(tc.r, ModControl)), "ctrl+%q", tc.r)
	}
}

func TestEncode_RuneModifiers(t *testing.T) {
	require.Equal(t, []byte("A"), Encode(Char('A', ModShift)))
	require.Equal(t, []byte("é"), Encode(Char('é', ModNone)))
	require.Empty(t, Encode(Char('x', ModAlt)))
	require.Empty(t, Encode(Char('x', ModControl|ModAlt)))
	require.Empty(t, Encode(Char('\x07', ModNone)))
}

func TestEncode_SimpleKeys(t *testing.T) {
	require.Equal(t, []byte{0x7f}, Encode(Key(Backspace, ModNone)))
	require.Equal(t, []byte{0x0a}, Encode(Key(Enter, ModNone)))
	require.Empty(t, Encode(Key(Backspace, ModAlt)))
	require.Empty(t, Encode(Key(Backspace, ModControl)))
	require.Empty(t, Encode(Key(Enter, ModAlt)))
	require.Empty(t, Encode(Key(Enter, ModShift)))
	require.Equal(t, []byte{0x09}, Encode(Key(Tab, ModNone)))
	require.Equal(t, []byte("\x1b[Z"), Encode(Key(Tab, ModShift)))
	require.Empty(t, Encode(Key(Tab, ModControl)))
	require.Empty(t, Encode(Key(Tab, ModAlt)))
	require.Equal(t, []byte("\x1b[Z"), Encode(Key(BackTab, ModShift)))
	require.Empty(t, Encode(Key(BackTab, ModControl)))
	require.Equal(t, []byte{0x1b}, Encode(Key(Escape, ModNone)))
	require.Empty(t, Encode(Key(Escape, ModAlt)))
	require.Equal(t, []byte{0x00}, Encode(Key(Null, ModNone)))
}

func TestEncode_NamedKeys(t *testing.T) {
	cases := []struct {
		event Event
		want  string
	}{
		{Key(Up, ModNone), "\x1b[A"},
		{Key(Down, ModNone), "\x1b[B"},
		{Key(Right, ModNone), "\x1b[C"},
		{Key(Left, ModNone), "\x1b[D"},
		{Key(Left, ModShift), "\x1b[1;2D"},
		{Key(Left, ModAlt), "\x1b[1;3D"},
		{Key(Left, ModControl), "\x1b[1;5D"},
		{Key(Up, ModControl), "\x1b[1;5A"},
		{Key(Home, ModNone), "\x1b[1~"},
		{Key(Home, ModShift), "\x1b[1;2H"},
		{Key(End, ModNone), "\x1b[4~"},
		{Key(End, ModControl), "\x1b[1;5F"},
		{Key(PageUp, ModNone), "\x1b[5~"},
		{Key(PageUp, ModControl), "\x1b[5;5~"},
		{Key(PageDown, ModAlt), "\x1b[6;3~"},
		{Key(Delete, ModNone), "\x1b[3~"},
		{Key(Insert, ModControl), "\x1b[2;5~"},
		{Key(F1, ModNone), "\x1bOP"},
		{Key(F4, ModNone), "\x1bOS"},
		{Key(F1, ModShift), "\x1b[1;2P"},
		{Key(F5, ModNone), "\x1b[15~"},
		{Key(F6, ModNone), "\x1b[17~"},
		{Key(F10, ModNone), "\x1b[21~"},
		{Key(F11, ModNone), "\x1b[23~"},
		{Key(F12, ModNone), "\x1b[24~"},
		{Key(F12, ModControl), "\x1b[24;5~"},
	}
	for _, tc := range cases {
		require.Equal(t, []byte(tc.want), Encode(tc.event), tc.event.String())
	}
}

func TestEncode_UnsupportedCombinationsAreEmpty(t *testing.T) {
	for _, e := range []Event{
		Key(PageUp, ModShift),
		Key(PageDown, ModShift),
		Key(Delete, ModShift),
		Key(Insert, ModShift),
		Key(Up, ModShift|ModControl),
		Key(Home, ModAlt|ModControl),
		Key(F3, ModShift|ModAlt),
		Key(Null, ModControl),
		Key(Code(999), ModNone),
	} {
		require.Empty(t, Encode(e), e.String())
	}
}

func TestEncode_ReturnsFreshSlices(t *testing.T) {
	first := Encode(Key(Up, ModNone))
	first[0] = 'X'
	require.Equal(t, []byte("\x1b[A"), Encode(Key(Up, ModNone)))
}

func TestFunction(t *testing.T) {
	require.Equal(t, F1, Function(1))
	require.Equal(t, F12, Function(12))
	require.Equal(t, CodeRune, Function(13))
	require.Equal(t, "F7", Function(7).String())
}

func TestEvent_String(t *testing.T) {
	require.Equal(t, "'q'", Char('q', ModNone).String())
	require.Equal(t, "Ctrl+']'", Char(']', ModControl).String())
	require.Equal(t, "Ctrl+Alt+Left", Key(Left, ModControl|ModAlt).String())
}
