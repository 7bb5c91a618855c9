package console

import (
	"fmt"
	"strconv"

	serial "github.com/luhtfiimanal/go-serial-console"
	"github.com/luhtfiimanal/go-serial-console/internal/telemetry"
)

// Mode governs how key presses are interpreted.
type Mode int

const (
	ModeMenu Mode = iota
	ModeInput
	ModeHexInput
)

func (m Mode) String() string {
	switch m {
	case ModeMenu:
		return "Menu"
	case ModeInput:
		return "Input"
	case ModeHexInput:
		return "HexInput"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// MenuBar selects what the status line on the last row shows.
type MenuBar int

const (
	MenuBarHidden MenuBar = iota
	MenuBarSerialSettings
	MenuBarSerialTelemetry
)

// Next cycles Hidden -> SerialSettings -> SerialTelemetry -> Hidden.
func (v MenuBar) Next() MenuBar {
	switch v {
	case MenuBarHidden:
		return MenuBarSerialSettings
	case MenuBarSerialSettings:
		return MenuBarSerialTelemetry
	default:
		return MenuBarHidden
	}
}

func (v MenuBar) String() string {
	switch v {
	case MenuBarHidden:
		return "Hidden"
	case MenuBarSerialSettings:
		return "ShowSerialSettings"
	case MenuBarSerialTelemetry:
		return "ShowSerialTelemetry"
	default:
		return fmt.Sprintf("MenuBar(%d)", int(v))
	}
}

// State is the application state. It belongs to the control loop alone
// and is never shared with the workers.
type State struct {
	Mode          Mode
	MenuBar       MenuBar
	Telemetry     telemetry.Snapshot
	Device        string
	Settings      serial.Settings
	ExitRequested bool

	// Terminal size; the menu bar lives on row Rows.
	Cols, Rows int

	hex hexAccumulator
}

// NewState returns the startup state: Menu mode showing telemetry.
func NewState(device string, settings serial.Settings) State {
	return State{
		Mode:     ModeMenu,
		MenuBar:  MenuBarSerialTelemetry,
		Device:   device,
		Settings: settings,
	}
}

// MenuBarText is the status line for the current state, unstyled and
// untruncated. It is empty when the menu bar is hidden.
func (s *State) MenuBarText() string {
	switch s.MenuBar {
	case MenuBarSerialSettings:
		return s.Mode.String() + ": " + s.Device + " " + strconv.Itoa(s.Settings.BaudRate)
	case MenuBarSerialTelemetry:
		return s.Mode.String() + ": " + s.Telemetry.String()
	default:
		return ""
	}
}
