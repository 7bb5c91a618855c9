// Package console runs an interactive serial console session: three
// workers and a single-threaded control loop connected by channels.
//
// The terminal input worker and the serial reader publish onto one event
// channel consumed only by the control loop. The control loop publishes
// onto an outbound byte channel consumed only by the serial writer. The
// device is the only resource the workers share, behind SharedDevice.
//
// Shutdown is driven by channel closure. When the control loop returns it
// closes the outbound channel, which ends the writer, and the done
// channel, which ends the producers at their next send or poll. The event
// channel itself is closed once both producers have exited; if that
// happens while the loop is still running, the loop fails with
// ErrChannelClosed. Reads are bounded by the device read timeout and polls
// by the input tick, so the producers notice shutdown. A device write has
// no such bound; closing the device ends it.
package console

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	serial "github.com/luhtfiimanal/go-serial-console"
)

// Terminal is the interactive terminal a session runs on.
type Terminal interface {
	InputSource
	io.Writer
	Enter() error
	Restore() error
	Size() (cols, rows int, err error)
}

// Session wires a device and a terminal together.
type Session struct {
	Terminal Terminal
	Device   Device
	Name     string
	Settings serial.Settings
	Logger   *slog.Logger

	// Resize is signalled on terminal size changes (SIGWINCH). May be nil.
	Resize <-chan struct{}

	TickInterval  time.Duration
	YieldInterval time.Duration
}

const eventBuffer = 64

// Run enters the terminal, runs the workers and the control loop until the
// user exits, and restores the terminal before returning on every path.
// Worker failures are logged and stop only that worker; Run fails when the
// loop cannot continue. When the loop ends, Run closes Device if it is an
// io.Closer before waiting for the workers.
func (s *Session) Run() (err error) {
	logger := s.Logger.With("device", s.Name)

	if err := s.Terminal.Enter(); err != nil {
		return &TerminalError{Op: "enter", Err: err}
	}
	defer func() {
		if restoreErr := s.Terminal.Restore(); restoreErr != nil && err == nil {
			err = &TerminalError{Op: "restore", Err: restoreErr}
		}
	}()

	state := NewState(s.Name, s.Settings)
	cols, rows, sizeErr := s.Terminal.Size()
	if sizeErr != nil {
		logger.Warn("terminal size unavailable, menu bar disabled until resize", "error", sizeErr)
	}
	state.Cols, state.Rows = cols, rows

	events := make(chan Event, eventBuffer)
	outbound := make(chan []byte, eventBuffer)
	done := make(chan struct{})
	writerDone := make(chan struct{})
	device := NewSharedDevice(s.Device)

	reader := &Reader{
		Device:        device,
		Events:        events,
		Done:          done,
		Logger:        logger.With("worker", "reader"),
		YieldInterval: s.YieldInterval,
	}
	input := &InputWorker{
		Source:       s.Terminal,
		Events:       events,
		Done:         done,
		Logger:       logger.With("worker", "input"),
		Resize:       s.Resize,
		Size:         s.Terminal.Size,
		TickInterval: s.TickInterval,
	}
	writer := &Writer{
		Device:   device,
		Outbound: outbound,
		Logger:   logger.With("worker", "writer"),
	}

	var producers errgroup.Group
	producers.Go(reader.Run)
	producers.Go(input.Run)

	var workers errgroup.Group
	workers.Go(func() error {
		err := producers.Wait()
		close(events)
		return err
	})
	workers.Go(func() error {
		defer close(writerDone)
		return writer.Run()
	})

	logger.Info("session started", "settings", s.Settings.String())
	loop := &Loop{
		Events:     events,
		Outbound:   outbound,
		Output:     s.Terminal,
		Logger:     logger.With("worker", "control"),
		Done:       done,
		WriterDone: writerDone,
	}
	_, loopErr := loop.Run(state)

	if closer, ok := s.Device.(io.Closer); ok {
		if closeErr := closer.Close(); closeErr != nil {
			logger.Warn("closing device", "error", closeErr)
		}
	}
	workerErr := workers.Wait()
	if workerErr != nil {
		logger.Debug("worker stopped with error", "error", workerErr)
	}
	if loopErr != nil {
		if errors.Is(loopErr, ErrChannelClosed) && workerErr != nil {
			return fmt.Errorf("%w: %w", loopErr, workerErr)
		}
		return loopErr
	}
	logger.Info("session ended")
	return nil
}
