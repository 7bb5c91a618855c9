package keys

import (
	"strconv"
	"unicode"
	"unicode/utf8"
)

// sequences holds the bytes sent for a named key under each supported
// modifier. An empty string means the combination is not sent.
type sequences struct {
	plain, shift, alt, control string
}

func (s sequences) lookup(mods Modifier) string {
	switch mods {
	case ModNone:
		return s.plain
	case ModShift:
		return s.shift
	case ModAlt:
		return s.alt
	case ModControl:
		return s.control
	default:
		return ""
	}
}

// xterm modifier parameters: 1 + (shift=1, alt=2, control=4).
const (
	paramShift   = "2"
	paramAlt     = "3"
	paramControl = "5"
)

// cursor keys: CSI final, modified as CSI 1;m final.
func cursor(final string) sequences {
	return sequences{
		plain:   "\x1b[" + final,
		shift:   "\x1b[1;" + paramShift + final,
		alt:     "\x1b[1;" + paramAlt + final,
		control: "\x1b[1;" + paramControl + final,
	}
}

// editing keys: CSI n ~, modified as CSI n;m ~. The terminal never
// reports shifted paging and editing keys, so shift is not encoded.
func editing(n int) sequences {
	num := strconv.Itoa(n)
	return sequences{
		plain:   "\x1b[" + num + "~",
		alt:     "\x1b[" + num + ";" + paramAlt + "~",
		control: "\x1b[" + num + ";" + paramControl + "~",
	}
}

// F1-F4 are SS3 P..S unmodified and CSI 1;m P..S modified.
func ss3(final string) sequences {
	return sequences{
		plain:   "\x1bO" + final,
		shift:   "\x1b[1;" + paramShift + final,
		alt:     "\x1b[1;" + paramAlt + final,
		control: "\x1b[1;" + paramControl + final,
	}
}

// F5-F12 are CSI n ~ with all three single modifiers.
func function(n int) sequences {
	s := editing(n)
	s.shift = "\x1b[" + strconv.Itoa(n) + ";" + paramShift + "~"
	return s
}

var table = map[Code]sequences{
	Up:    cursor("A"),
	Down:  cursor("B"),
	Right: cursor("C"),
	Left:  cursor("D"),
	Home: {
		plain:   "\x1b[1~",
		shift:   "\x1b[1;" + paramShift + "H",
		alt:     "\x1b[1;" + paramAlt + "H",
		control: "\x1b[1;" + paramControl + "H",
	},
	End: {
		plain:   "\x1b[4~",
		shift:   "\x1b[1;" + paramShift + "F",
		alt:     "\x1b[1;" + paramAlt + "F",
		control: "\x1b[1;" + paramControl + "F",
	},
	Insert:    editing(2),
	Delete:    editing(3),
	PageUp:    editing(5),
	PageDown:  editing(6),
	Tab:       {plain: "\t", shift: "\x1b[Z"},
	BackTab:   {plain: "\x1b[Z", shift: "\x1b[Z"},
	Backspace: {plain: "\x7f"},
	Enter:     {plain: "\n"},
	Escape:    {plain: "\x1b"},
	Null:      {plain: "\x00"},
	F1:        ss3("P"),
	F2:        ss3("Q"),
	F3:        ss3("R"),
	F4:        ss3("S"),
	F5:        function(15),
	F6:        function(17),
	F7:        function(18),
	F8:        function(19),
	F9:        function(20),
	F10:       function(21),
	F11:       function(23),
	F12:       function(24),
}

// Encode returns the bytes to transmit for e. The result is empty when the
// key/modifier combination has no encoding; callers must not transmit an
// empty result. Each call returns a fresh slice.
func Encode(e Event) []byte {
	switch e.Code {
	case CodeRune:
		return encodeRune(e.Rune, e.Mods)
	}
	seq, ok := table[e.Code]
	if !ok {
		return nil
	}
	out := seq.lookup(e.Mods)
	if out == "" {
		return nil
	}
	return []byte(out)
}

// encodeRune handles character keys. Shift is already folded into the
// rune by the terminal, so it is accepted and ignored. Control maps
// through ControlByte. Every other modifier combination is not sent.
func encodeRune(r rune, mods Modifier) []byte {
	switch mods {
	case ModNone, ModShift:
		if !isPrintable(r) {
			return nil
		}
		return utf8.AppendRune(nil, r)
	case ModControl:
		b, ok := ControlByte(r)
		if !ok {
			return nil
		}
		return []byte{b}
	default:
		return nil
	}
}

// ControlByte returns the caret-notation control byte for r. Letters map
// case-insensitively to 0x01..0x1A; @ [ \ ] ^ _ ? and space map to their
// C0/DEL values, as do the digits 2..8 the way xterm sends them.
// Anything else has no control form.
func ControlByte(r rune) (byte, bool) {
	switch {
	case r >= 'a' && r <= 'z':
		return byte(r-'a') + 1, true
	case r >= 'A' && r <= 'Z':
		return byte(r-'A') + 1, true
	}
	switch r {
	case '@', ' ', '2':
		return 0x00, true
	case '[', '3':
		return 0x1b, true
	case '\\', '4':
		return 0x1c, true
	case ']', '5':
		return 0x1d, true
	case '^', '6':
		return 0x1e, true
	case '_', '/', '7':
		return 0x1f, true
	case '?', '8':
		return 0x7f, true
	}
	return 0, false
}

func isPrintable(r rune) bool {
	return r != utf8.RuneError && unicode.IsPrint(r)
}
