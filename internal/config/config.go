// Package config turns command-line flags and an optional YAML profile
// into a validated console configuration.
//
// Precedence is flag, then profile, then built-in default: a profile
// value applies only when the matching flag was not given.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	serial "github.com/luhtfiimanal/go-serial-console"
)

// Config is everything needed to start a console session.
type Config struct {
	Device   string
	Settings serial.Settings
	Driver   string
	Verbose  bool
}

// Serial returns the configuration for opening the device.
func (c Config) Serial() serial.Config {
	return serial.Config{Device: c.Device, Settings: c.Settings}
}

// ConfigurationError is an invalid command line or profile. The command
// exits with status 2 when it sees one.
type ConfigurationError struct {
	Field string
	Err   error
}

func (e *ConfigurationError) Error() string {
	return "invalid " + e.Field + ": " + e.Err.Error()
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// ExitCode implements the exit code convention used by cmd/sercon.
func (e *ConfigurationError) ExitCode() int { return 2 }

// Flag names.
const (
	FlagDataBits    = "data-bits"
	FlagFlowControl = "flow-control"
	FlagParity      = "parity"
	FlagStopBits    = "stop-bits"
	FlagTimeoutMS   = "timeout-ms"
	FlagDriver      = "driver"
	FlagVerbose     = "verbose"
	FlagProfile     = "profile"
)

// Flags holds the raw flag values before validation.
type Flags struct {
	DataBits    int
	FlowControl string
	Parity      string
	StopBits    int
	TimeoutMS   int
	Driver      string
	Verbose     bool
	Profile     string
}

// Register binds the flags on fs with their defaults.
func (f *Flags) Register(fs *pflag.FlagSet) {
	fs.IntVarP(&f.DataBits, FlagDataBits, "d", 8, "data bits per character (5, 6, 7 or 8)")
	fs.StringVarP(&f.FlowControl, FlagFlowControl, "f", "none", "flow control (none, software or hardware)")
	fs.StringVarP(&f.Parity, FlagParity, "p", "none", "parity (none, odd or even)")
	fs.IntVarP(&f.StopBits, FlagStopBits, "s", 1, "stop bits (1 or 2)")
	fs.IntVarP(&f.TimeoutMS, FlagTimeoutMS, "t", 10, "serial read timeout in milliseconds")
	fs.StringVar(&f.Driver, FlagDriver, serial.DriverTermios, "serial driver (termios or portable)")
	fs.BoolVarP(&f.Verbose, FlagVerbose, "v", false, "log debug records")
	fs.StringVar(&f.Profile, FlagProfile, "", "YAML file with default flag values")
}

// Profile is the YAML form of Flags. Absent keys leave the flag default
// in place.
type Profile struct {
	DataBits    *int    `yaml:"data_bits"`
	FlowControl *string `yaml:"flow_control"`
	Parity      *string `yaml:"parity"`
	StopBits    *int    `yaml:"stop_bits"`
	TimeoutMS   *int    `yaml:"timeout_ms"`
	Driver      *string `yaml:"driver"`
	Verbose     *bool   `yaml:"verbose"`
}

// LoadProfile reads a profile. Unknown keys are rejected so a typo does
// not silently fall back to a default.
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigurationError{Field: "profile", Err: err}
	}
	profile, err := ParseProfile(data)
	if err != nil {
		return nil, &ConfigurationError{Field: "profile", Err: fmt.Errorf("%s: %w", path, err)}
	}
	return profile, nil
}

// ParseProfile decodes a YAML profile document. An empty document is an
// empty profile.
func ParseProfile(data []byte) (*Profile, error) {
	var profile Profile
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&profile); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return &profile, nil
}

// apply copies profile values onto f for every flag not set on fs.
func (p *Profile) apply(fs *pflag.FlagSet, f *Flags) {
	setInt := func(name string, dst *int, v *int) {
		if v != nil && !fs.Changed(name) {
			*dst = *v
		}
	}
	setString := func(name string, dst *string, v *string) {
		if v != nil && !fs.Changed(name) {
			*dst = *v
		}
	}
	setInt(FlagDataBits, &f.DataBits, p.DataBits)
	setString(FlagFlowControl, &f.FlowControl, p.FlowControl)
	setString(FlagParity, &f.Parity, p.Parity)
	setInt(FlagStopBits, &f.StopBits, p.StopBits)
	setInt(FlagTimeoutMS, &f.TimeoutMS, p.TimeoutMS)
	setString(FlagDriver, &f.Driver, p.Driver)
	if p.Verbose != nil && !fs.Changed(FlagVerbose) {
		f.Verbose = *p.Verbose
	}
}

// Resolve builds a Config from the positional device path and baud rate,
// the parsed flags in fs, and the profile named by --profile if any.
func Resolve(fs *pflag.FlagSet, f *Flags, device, baud string) (Config, error) {
	if f.Profile != "" {
		profile, err := LoadProfile(f.Profile)
		if err != nil {
			return Config{}, err
		}
		profile.apply(fs, f)
	}
	return f.Config(device, baud)
}

// Config validates the flag values.
func (f *Flags) Config(device, baud string) (Config, error) {
	if strings.TrimSpace(device) == "" {
		return Config{}, &ConfigurationError{Field: "device", Err: errors.New("device path is empty")}
	}

	rate, err := strconv.Atoi(strings.TrimSpace(baud))
	if err != nil {
		return Config{}, &ConfigurationError{Field: "baud rate", Err: fmt.Errorf("%q is not a number", baud)}
	}
	if rate <= 0 {
		return Config{}, &ConfigurationError{Field: "baud rate", Err: fmt.Errorf("%d is not positive", rate)}
	}

	settings := serial.DefaultSettings(rate)
	settings.DataBits = f.DataBits

	if settings.Parity, err = serial.ParseParity(f.Parity); err != nil {
		return Config{}, &ConfigurationError{Field: FlagParity, Err: err}
	}
	if settings.FlowControl, err = serial.ParseFlowControl(f.FlowControl); err != nil {
		return Config{}, &ConfigurationError{Field: FlagFlowControl, Err: err}
	}
	if settings.StopBits, err = serial.ParseStopBits(strconv.Itoa(f.StopBits)); err != nil {
		return Config{}, &ConfigurationError{Field: FlagStopBits, Err: err}
	}
	if f.TimeoutMS <= 0 {
		return Config{}, &ConfigurationError{Field: FlagTimeoutMS, Err: fmt.Errorf("%d is not positive", f.TimeoutMS)}
	}
	settings.ReadTimeout = time.Duration(f.TimeoutMS) * time.Millisecond

	if err := settings.Validate(); err != nil {
		return Config{}, &ConfigurationError{Field: "serial settings", Err: err}
	}

	driver := strings.ToLower(strings.TrimSpace(f.Driver))
	switch driver {
	case serial.DriverTermios, serial.DriverPortable:
	default:
		return Config{}, &ConfigurationError{
			Field: FlagDriver,
			Err:   fmt.Errorf("%q (want %s or %s)", f.Driver, serial.DriverTermios, serial.DriverPortable),
		}
	}
	if driver == serial.DriverPortable && settings.FlowControl != serial.FlowNone {
		return Config{}, &ConfigurationError{
			Field: FlagFlowControl,
			Err:   fmt.Errorf("%s is not supported by the %s driver", settings.FlowControl, driver),
		}
	}

	return Config{
		Device:   device,
		Settings: settings,
		Driver:   driver,
		Verbose:  f.Verbose,
	}, nil
}
