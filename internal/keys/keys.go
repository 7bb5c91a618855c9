// Package keys models terminal key events and encodes them into the bytes
// a remote serial endpoint expects.
package keys

import (
	"fmt"
	"strings"
)

// Code identifies a key. CodeRune means the key is a character held in
// Event.Rune; every other code is a named key.
type Code int

const (
	CodeRune Code = iota
	Backspace
	Enter
	Tab
	BackTab
	Escape
	Null
	Up
	Down
	Left
	Right
	Home
	End
	PageUp
	PageDown
	Insert
	Delete
	F1
	F2
	F3
	F4
	F5
	F6
	F7
	F8
	F9
	F10
	F11
	F12
)

var codeNames = map[Code]string{
	Backspace: "Backspace",
	Enter:     "Enter",
	Tab:       "Tab",
	BackTab:   "BackTab",
	Escape:    "Esc",
	Null:      "Null",
	Up:        "Up",
	Down:      "Down",
	Left:      "Left",
	Right:     "Right",
	Home:      "Home",
	End:       "End",
	PageUp:    "PageUp",
	PageDown:  "PageDown",
	Insert:    "Insert",
	Delete:    "Delete",
}

func (c Code) String() string {
	if c >= F1 && c <= F12 {
		return fmt.Sprintf("F%d", int(c-F1)+1)
	}
	if name, ok := codeNames[c]; ok {
		return name
	}
	if c == CodeRune {
		return "Rune"
	}
	return fmt.Sprintf("Code(%d)", int(c))
}

// Function returns the code for function key Fn, n in 1..12.
func Function(n int) Code {
	if n < 1 || n > 12 {
		return CodeRune
	}
	return F1 + Code(n-1)
}

// Modifier is a set of modifier keys held during a key press.
type Modifier uint8

const (
	ModNone    Modifier = 0
	ModShift   Modifier = 1 << 0
	ModAlt     Modifier = 1 << 1
	ModControl Modifier = 1 << 2
)

func (m Modifier) String() string {
	if m == ModNone {
		return "None"
	}
	var parts []string
	if m&ModControl != 0 {
		parts = append(parts, "Ctrl")
	}
	if m&ModAlt != 0 {
		parts = append(parts, "Alt")
	}
	if m&ModShift != 0 {
		parts = append(parts, "Shift")
	}
	return strings.Join(parts, "+")
}

// Event is one key press.
type Event struct {
	Code Code
	Rune rune // valid when Code == CodeRune
	Mods Modifier
}

// Char returns the event for character r with the given modifiers.
func Char(r rune, mods Modifier) Event {
	return Event{Code: CodeRune, Rune: r, Mods: mods}
}

// Key returns the event for a named key with the given modifiers.
func Key(code Code, mods Modifier) Event {
	return Event{Code: code, Mods: mods}
}

// Is reports whether e is character r pressed with exactly mods.
func (e Event) Is(r rune, mods Modifier) bool {
	return e.Code == CodeRune && e.Rune == r && e.Mods == mods
}

func (e Event) String() string {
	name := e.Code.String()
	if e.Code == CodeRune {
		name = fmt.Sprintf("%q", e.Rune)
	}
	if e.Mods == ModNone {
		return name
	}
	return e.Mods.String() + "+" + name
}
