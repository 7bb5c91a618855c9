package console

import (
	"github.com/luhtfiimanal/go-serial-console/internal/keys"
	"github.com/luhtfiimanal/go-serial-console/internal/telemetry"
)

// Event is a message from a worker to the control loop. The set of
// events is closed: every event type implements dispatch by calling the
// matching EventHandler method, so adding an event type fails to compile
// until every handler handles it.
type Event interface {
	dispatch(h EventHandler)
}

// EventHandler has one method per event type.
type EventHandler interface {
	OnKeyInput(key keys.Event)
	OnSerialDataReceived(data []byte)
	OnSerialTelemetryUpdated(snapshot telemetry.Snapshot)
	OnTerminalResized(cols, rows int)
	OnTick()
	OnPing()
}

// Dispatch calls the handler method for e.
func Dispatch(e Event, h EventHandler) { e.dispatch(h) }

// KeyInput is a key press from the terminal.
type KeyInput struct{ Key keys.Event }

// SerialDataReceived carries bytes read from the device. The slice is
// owned by the receiver.
type SerialDataReceived struct{ Data []byte }

// SerialTelemetryUpdated carries a fresh modem line sample.
type SerialTelemetryUpdated struct{ Snapshot telemetry.Snapshot }

// TerminalResized reports the new terminal size in cells.
type TerminalResized struct{ Cols, Rows int }

// Tick is sent when no terminal input arrived within the poll interval.
type Tick struct{}

// Ping is sent for terminal input that is not a key press.
type Ping struct{}

func (e KeyInput) dispatch(h EventHandler)               { h.OnKeyInput(e.Key) }
func (e SerialDataReceived) dispatch(h EventHandler)     { h.OnSerialDataReceived(e.Data) }
func (e SerialTelemetryUpdated) dispatch(h EventHandler) { h.OnSerialTelemetryUpdated(e.Snapshot) }
func (e TerminalResized) dispatch(h EventHandler)        { h.OnTerminalResized(e.Cols, e.Rows) }
func (Tick) dispatch(h EventHandler)                     { h.OnTick() }
func (Ping) dispatch(h EventHandler)                     { h.OnPing() }
