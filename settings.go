package serial

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Parity selects the parity bit sent with every character.
type Parity int

const (
	ParityNone Parity = iota
	ParityOdd
	ParityEven
)

func (p Parity) String() string {
	switch p {
	case ParityNone:
		return "none"
	case ParityOdd:
		return "odd"
	case ParityEven:
		return "even"
	default:
		return fmt.Sprintf("Parity(%d)", int(p))
	}
}

// letter returns the single-letter form used in frame descriptions such as 8N1.
func (p Parity) letter() string {
	switch p {
	case ParityOdd:
		return "O"
	case ParityEven:
		return "E"
	default:
		return "N"
	}
}

// ParseParity accepts none/odd/even and their first letters, case-insensitively.
func ParseParity(s string) (Parity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "n", "none":
		return ParityNone, nil
	case "o", "odd":
		return ParityOdd, nil
	case "e", "even":
		return ParityEven, nil
	default:
		return ParityNone, fmt.Errorf("invalid parity %q (want none, odd or even)", s)
	}
}

// StopBits is the number of stop bits per character.
type StopBits int

const (
	StopBitsOne StopBits = 1
	StopBitsTwo StopBits = 2
)

// ParseStopBits accepts "1" or "2".
func ParseStopBits(s string) (StopBits, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid stop bits %q: %w", s, err)
	}
	switch StopBits(n) {
	case StopBitsOne, StopBitsTwo:
		return StopBits(n), nil
	default:
		return 0, fmt.Errorf("invalid stop bits %d (want 1 or 2)", n)
	}
}

// FlowControl selects how the line is throttled.
type FlowControl int

const (
	FlowNone FlowControl = iota
	FlowSoftware
	FlowHardware
)

func (f FlowControl) String() string {
	switch f {
	case FlowNone:
		return "none"
	case FlowSoftware:
		return "software"
	case FlowHardware:
		return "hardware"
	default:
		return fmt.Sprintf("FlowControl(%d)", int(f))
	}
}

// ParseFlowControl accepts none/software/hardware and their first letters.
func ParseFlowControl(s string) (FlowControl, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "n", "none":
		return FlowNone, nil
	case "s", "software":
		return FlowSoftware, nil
	case "h", "hardware":
		return FlowHardware, nil
	default:
		return FlowNone, fmt.Errorf("invalid flow control %q (want none, software or hardware)", s)
	}
}

// Settings is the line configuration applied when a port is opened.
// It is never changed afterwards.
type Settings struct {
	BaudRate    int
	DataBits    int // 5, 6, 7 or 8
	Parity      Parity
	StopBits    StopBits
	FlowControl FlowControl
	ReadTimeout time.Duration // upper bound on a single Read
}

// DefaultSettings returns 8N1 with no flow control and a 10ms read timeout.
func DefaultSettings(baud int) Settings {
	return Settings{
		BaudRate:    baud,
		DataBits:    8,
		Parity:      ParityNone,
		StopBits:    StopBitsOne,
		FlowControl: FlowNone,
		ReadTimeout: 10 * time.Millisecond,
	}
}

// Validate reports the first invalid field.
func (s Settings) Validate() error {
	if s.BaudRate <= 0 {
		return fmt.Errorf("invalid baud rate %d", s.BaudRate)
	}
	switch s.DataBits {
	case 5, 6, 7, 8:
	default:
		return fmt.Errorf("invalid data bits %d (want 5, 6, 7 or 8)", s.DataBits)
	}
	switch s.Parity {
	case ParityNone, ParityOdd, ParityEven:
	default:
		return fmt.Errorf("invalid parity %v", s.Parity)
	}
	switch s.StopBits {
	case StopBitsOne, StopBitsTwo:
	default:
		return fmt.Errorf("invalid stop bits %d", s.StopBits)
	}
	switch s.FlowControl {
	case FlowNone, FlowSoftware, FlowHardware:
	default:
		return fmt.Errorf("invalid flow control %v", s.FlowControl)
	}
	if s.ReadTimeout <= 0 {
		return errors.New("read timeout must be positive")
	}
	return nil
}

// String describes the frame, e.g. "115200 8N1" or "9600 7E2 hardware".
func (s Settings) String() string {
	frame := fmt.Sprintf("%d %d%s%d", s.BaudRate, s.DataBits, s.Parity.letter(), int(s.StopBits))
	if s.FlowControl != FlowNone {
		frame += " " + s.FlowControl.String()
	}
	return frame
}

// Config holds configuration parameters for opening a serial port.
type Config struct {
	Device string
	Settings
}
