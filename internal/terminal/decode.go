package terminal

import (
	"bytes"
	"unicode/utf8"

	"github.com/charmbracelet/x/ansi"

	"github.com/luhtfiimanal/go-serial-console/internal/keys"
)

const (
	// maxParams bounds the CSI parameters collected per sequence. Longer
	// parameter lists are skipped without being parsed.
	maxParams = 16

	// maxPending bounds the bytes held back waiting for the rest of a
	// sequence. Past it the held bytes are decoded as they are.
	maxPending = 64
)

type step int

const (
	stepKeys step = iota
	stepUnknown
	stepIncomplete
)

// Decoder turns terminal input into key presses. A sequence or UTF-8
// character cut off at the end of one Feed is held back and completed by
// the next. Bytes that do not form a known key (mouse reports, focus
// events, bracketed paste markers, invalid UTF-8) are skipped and counted
// as unknown.
//
// A Decoder is not safe for concurrent use.
type Decoder struct {
	parser  *ansi.Parser
	pending []byte
}

// NewDecoder returns a Decoder with nothing pending.
func NewDecoder() *Decoder {
	parser := new(ansi.Parser)
	parser.SetParamsSize(maxParams)
	return &Decoder{parser: parser}
}

// Feed decodes b after any bytes held back by the previous call.
func (d *Decoder) Feed(b []byte) (events []keys.Event, unknown int) {
	buf := make([]byte, 0, len(d.pending)+len(b))
	buf = append(append(buf, d.pending...), b...)
	d.pending = nil
	events, unknown = d.decode(buf, false)
	if len(d.pending) > maxPending {
		more, skipped := d.Flush()
		events, unknown = append(events, more...), unknown+skipped
	}
	return events, unknown
}

// Flush decodes the held-back bytes as they are: a lone ESC becomes the
// Escape key.
func (d *Decoder) Flush() (events []keys.Event, unknown int) {
	buf := d.pending
	d.pending = nil
	return d.decode(buf, true)
}

// Pending reports whether bytes are held back.
func (d *Decoder) Pending() bool { return len(d.pending) > 0 }

// Decode parses every key press in b, treating b as complete input.
func Decode(b []byte) (events []keys.Event, unknown int) {
	return NewDecoder().decode(b, true)
}

func (d *Decoder) decode(b []byte, final bool) (events []keys.Event, unknown int) {
	for len(b) > 0 {
		decoded, size, st := d.next(b, final)
		switch st {
		case stepIncomplete:
			d.pending = append([]byte(nil), b...)
			return events, unknown
		case stepUnknown:
			unknown++
		default:
			events = append(events, decoded...)
		}
		if size <= 0 {
			size = 1
		}
		b = b[size:]
	}
	return events, unknown
}

func (d *Decoder) next(b []byte, final bool) ([]keys.Event, int, step) {
	if b[0] == ansi.ESC {
		return d.escape(b, final)
	}
	return text(b, final)
}

// text decodes control bytes singly and printable input a grapheme
// cluster at a time.
func text(b []byte, final bool) ([]keys.Event, int, step) {
	c := b[0]
	if c <= ansi.US || c == ansi.DEL {
		return []keys.Event{decodeControl(c)}, 1, stepKeys
	}
	if c >= 0x80 && c < 0xc0 {
		return nil, 1, stepUnknown
	}
	if !utf8.FullRune(b) {
		if !final {
			return nil, 0, stepIncomplete
		}
		return nil, 1, stepUnknown
	}

	seq, _, n, _ := ansi.DecodeSequence(b, ansi.NormalState, nil)
	if n == 0 || !utf8.Valid(seq) {
		// Keep the leading rune when the cluster runs into bad bytes.
		r, size := utf8.DecodeRune(b)
		if r == utf8.RuneError && size <= 1 {
			return nil, 1, stepUnknown
		}
		return []keys.Event{keys.Char(r, keys.ModNone)}, size, stepKeys
	}
	events := make([]keys.Event, 0, utf8.RuneCount(seq))
	for _, r := range string(seq) {
		events = append(events, keys.Char(r, keys.ModNone))
	}
	return events, n, stepKeys
}

func decodeControl(c byte) keys.Event {
	switch c {
	case 0x00:
		return keys.Key(keys.Null, keys.ModNone)
	case '\t':
		return keys.Key(keys.Tab, keys.ModNone)
	case '\r', '\n':
		return keys.Key(keys.Enter, keys.ModNone)
	case ansi.DEL:
		return keys.Key(keys.Backspace, keys.ModNone)
	case 0x1c:
		return keys.Char('\\', keys.ModControl)
	case 0x1d:
		return keys.Char(']', keys.ModControl)
	case 0x1e:
		return keys.Char('^', keys.ModControl)
	case 0x1f:
		return keys.Char('_', keys.ModControl)
	}
	// 0x01..0x1a, including 0x08 which some terminals send for Backspace;
	// keeping it as Ctrl-H preserves the byte on the wire.
	return keys.Char(rune('a'+c-1), keys.ModControl)
}

func (d *Decoder) escape(b []byte, final bool) ([]keys.Event, int, step) {
	escape := []keys.Event{keys.Key(keys.Escape, keys.ModNone)}
	if len(b) == 1 {
		if !final {
			return nil, 0, stepIncomplete
		}
		return escape, 1, stepKeys
	}
	switch c := b[1]; {
	case c == '[':
		return d.csi(b, final)
	case c == 'O':
		if len(b) < 3 {
			if !final {
				return nil, 0, stepIncomplete
			}
			return []keys.Event{keys.Char('O', keys.ModAlt)}, 2, stepKeys
		}
		event, ok := ss3Key(b[2], keys.ModNone)
		if !ok {
			return nil, 3, stepUnknown
		}
		return []keys.Event{event}, 3, stepKeys
	case c <= ansi.US || c == ansi.DEL:
		return escape, 1, stepKeys
	}

	// ESC prefix: Alt held with the following key.
	events, size, st := text(b[1:], final)
	switch st {
	case stepIncomplete:
		return nil, 0, stepIncomplete
	case stepUnknown:
		return nil, 1 + size, stepUnknown
	}
	for i := range events {
		events[i].Mods |= keys.ModAlt
	}
	return events, 1 + size, stepKeys
}

// csi decodes ESC [ params final. Sequences with a private prefix or an
// intermediate byte are consumed and reported unknown.
func (d *Decoder) csi(b []byte, final bool) ([]keys.Event, int, step) {
	seq, _, n, state := ansi.DecodeSequence(b, ansi.NormalState, nil)
	if state != ansi.NormalState {
		switch {
		case !final:
			return nil, 0, stepIncomplete
		case len(b) == 2:
			return []keys.Event{keys.Char('[', keys.ModAlt)}, 2, stepKeys
		}
		return nil, len(b), stepUnknown
	}
	if bytes.Count(seq, []byte{';'})+bytes.Count(seq, []byte{':'}) >= maxParams-1 {
		return nil, n, stepUnknown
	}

	ansi.DecodeSequence(seq, ansi.NormalState, d.parser)
	cmd := ansi.Cmd(d.parser.Command())
	if cmd.Final() == 0 || cmd.Prefix() != 0 || cmd.Intermediate() != 0 {
		return nil, n, stepUnknown
	}
	first, _ := d.parser.Param(0, 1)
	modifier, _ := d.parser.Param(1, 1)
	mods := modifierParam(modifier)

	var event keys.Event
	var ok bool
	switch cmd.Final() {
	case '~':
		event, ok = tildeKey(first, mods)
	case 'Z':
		event, ok = keys.Key(keys.BackTab, keys.ModShift), true
	default:
		event, ok = ss3Key(cmd.Final(), mods)
	}
	if !ok {
		return nil, n, stepUnknown
	}
	return []keys.Event{event}, n, stepKeys
}

func ss3Key(final byte, mods keys.Modifier) (keys.Event, bool) {
	switch final {
	case 'A':
		return keys.Key(keys.Up, mods), true
	case 'B':
		return keys.Key(keys.Down, mods), true
	case 'C':
		return keys.Key(keys.Right, mods), true
	case 'D':
		return keys.Key(keys.Left, mods), true
	case 'H':
		return keys.Key(keys.Home, mods), true
	case 'F':
		return keys.Key(keys.End, mods), true
	case 'P':
		return keys.Key(keys.F1, mods), true
	case 'Q':
		return keys.Key(keys.F2, mods), true
	case 'R':
		return keys.Key(keys.F3, mods), true
	case 'S':
		return keys.Key(keys.F4, mods), true
	}
	return keys.Event{}, false
}

func modifierParam(m int) keys.Modifier {
	bits := m - 1
	if bits <= 0 {
		return keys.ModNone
	}
	var mods keys.Modifier
	if bits&1 != 0 {
		mods |= keys.ModShift
	}
	if bits&2 != 0 {
		mods |= keys.ModAlt
	}
	if bits&4 != 0 {
		mods |= keys.ModControl
	}
	return mods
}

func tildeKey(n int, mods keys.Modifier) (keys.Event, bool) {
	switch n {
	case 1, 7:
		return keys.Key(keys.Home, mods), true
	case 2:
		return keys.Key(keys.Insert, mods), true
	case 3:
		return keys.Key(keys.Delete, mods), true
	case 4, 8:
		return keys.Key(keys.End, mods), true
	case 5:
		return keys.Key(keys.PageUp, mods), true
	case 6:
		return keys.Key(keys.PageDown, mods), true
	case 11, 12, 13, 14, 15:
		return keys.Key(keys.Function(n-10), mods), true
	case 17, 18, 19, 20, 21:
		return keys.Key(keys.Function(n-11), mods), true
	case 23, 24:
		return keys.Key(keys.Function(n-12), mods), true
	}
	return keys.Event{}, false
}
