// Command sercon is an interactive serial console.
//
//	sercon [flags] <device> <baud>
//
// The session starts in Menu mode: i enters Input mode, h enters HexInput
// mode, m cycles the status line and q quits. Ctrl-] returns to Menu mode.
package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	serial "github.com/luhtfiimanal/go-serial-console"
	"github.com/luhtfiimanal/go-serial-console/internal/config"
	"github.com/luhtfiimanal/go-serial-console/internal/console"
	"github.com/luhtfiimanal/go-serial-console/internal/logging"
	"github.com/luhtfiimanal/go-serial-console/internal/terminal"
)

var version = "0.1.0"

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		if coder, ok := err.(interface{ ExitCode() int }); ok {
			os.Exit(coder.ExitCode())
		}
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var flags config.Flags
	cmd := &cobra.Command{
		Use:   "sercon [flags] <device> <baud>",
		Short: "Interactive serial console",
		Long: `sercon attaches the terminal to a serial device.

Keys in Menu mode:
  i   Input mode: keys are sent to the device
  h   HexInput mode: pairs of hex digits are sent as single bytes
  m   cycle the status line (hidden, settings, modem lines)
  q   quit

Ctrl-] returns to Menu mode from Input and HexInput.

Examples:
  sercon /dev/ttyUSB0 115200
  sercon -d 7 -p even -s 2 /dev/ttyS0 9600
  sercon --profile modem.yaml /dev/ttyACM0 57600`,
		Version:       version,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Resolve(cmd.Flags(), &flags, args[0], args[1])
			if err != nil {
				return err
			}
			return run(cfg)
		},
	}
	flags.Register(cmd.Flags())
	return cmd
}

func run(cfg config.Config) error {
	screen, err := terminal.NewScreen(os.Stdin, os.Stdout)
	if err != nil {
		return err
	}

	capture := logging.NewCapture(logging.DefaultCaptureSize)
	logger := logging.New(capture, cfg.Verbose)
	// Records are replayed after the screen is restored, on every path
	// that returns.
	defer replay(capture, os.Stderr)

	device, err := serial.OpenDriver(cfg.Driver, cfg.Serial())
	if err != nil {
		return &console.DeviceError{Op: "open", Err: err}
	}
	defer func() {
		if closeErr := device.Close(); closeErr != nil {
			logger.Warn("closing device", "error", closeErr)
		}
	}()
	logger.Debug("device opened", "device", cfg.Device, "driver", cfg.Driver, "settings", cfg.Settings.String())

	resize := make(chan struct{}, 1)
	winch := make(chan os.Signal, 1)
	signal.Notify(winch, syscall.SIGWINCH)
	defer signal.Stop(winch)
	go func() {
		for range winch {
			select {
			case resize <- struct{}{}:
			default:
			}
		}
	}()

	// SIGINT never arrives in raw mode; these come from outside.
	terminate := make(chan os.Signal, 1)
	signal.Notify(terminate, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(terminate)
	go func() {
		received := <-terminate
		screen.Restore()
		logger.Warn("terminated by signal", "signal", received.String())
		replay(capture, os.Stderr)
		os.Exit(1)
	}()

	session := &console.Session{
		Terminal: screen,
		Device:   device,
		Name:     cfg.Device,
		Settings: cfg.Settings,
		Logger:   logger,
		Resize:   resize,
	}
	return session.Run()
}

func replay(capture *logging.Capture, w io.Writer) {
	if dropped := capture.Dropped(); dropped > 0 {
		fmt.Fprintf(w, "(%d bytes of earlier log output dropped)\n", dropped)
	}
	capture.WriteTo(w)
}
