package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	serial "github.com/luhtfiimanal/go-serial-console"
)

func parse(t *testing.T, args ...string) (*pflag.FlagSet, *Flags) {
	t.Helper()
	fs := pflag.NewFlagSet("sercon", pflag.ContinueOnError)
	var f Flags
	f.Register(fs)
	require.NoError(t, fs.Parse(args))
	return fs, &f
}

func TestResolve_Defaults(t *testing.T) {
	fs, f := parse(t)
	cfg, err := Resolve(fs, f, "/dev/ttyUSB0", "115200")
	require.NoError(t, err)

	require.Equal(t, "/dev/ttyUSB0", cfg.Device)
	require.Equal(t, serial.DefaultSettings(115200), cfg.Settings)
	require.Equal(t, serial.DriverTermios, cfg.Driver)
	require.False(t, cfg.Verbose)
	require.Equal(t, serial.Config{Device: "/dev/ttyUSB0", Settings: serial.DefaultSettings(115200)}, cfg.Serial())
}

func TestResolve_Flags(t *testing.T) {
	fs, f := parse(t,
		"--data-bits", "7",
		"--parity", "e",
		"--stop-bits", "2",
		"--flow-control", "hardware",
		"--timeout-ms", "50",
		"-v",
	)
	cfg, err := Resolve(fs, f, "/dev/ttyS0", "9600")
	require.NoError(t, err)
	require.Equal(t, serial.Settings{
		BaudRate:    9600,
		DataBits:    7,
		Parity:      serial.ParityEven,
		StopBits:    serial.StopBitsTwo,
		FlowControl: serial.FlowHardware,
		ReadTimeout: 50 * time.Millisecond,
	}, cfg.Settings)
	require.True(t, cfg.Verbose)
	require.Equal(t, "9600 7E2 hardware", cfg.Settings.String())
}

func TestResolve_Invalid(t *testing.T) {
	cases := []struct {
		name   string
		args   []string
		device string
		baud   string
		field  string
	}{
		{"empty device", nil, "", "9600", "device"},
		{"baud not a number", nil, "/dev/ttyS0", "fast", "baud rate"},
		{"zero baud", nil, "/dev/ttyS0", "0", "baud rate"},
		{"negative baud", nil, "/dev/ttyS0", "-9600", "baud rate"},
		{"data bits", []string{"--data-bits", "9"}, "/dev/ttyS0", "9600", "serial settings"},
		{"parity", []string{"--parity", "mark"}, "/dev/ttyS0", "9600", FlagParity},
		{"stop bits", []string{"--stop-bits", "3"}, "/dev/ttyS0", "9600", FlagStopBits},
		{"flow control", []string{"--flow-control", "xon"}, "/dev/ttyS0", "9600", FlagFlowControl},
		{"timeout", []string{"--timeout-ms", "0"}, "/dev/ttyS0", "9600", FlagTimeoutMS},
		{"driver", []string{"--driver", "usb"}, "/dev/ttyS0", "9600", FlagDriver},
		{"portable with flow control", []string{"--driver", "portable", "--flow-control", "s"}, "/dev/ttyS0", "9600", FlagFlowControl},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fs, f := parse(t, tc.args...)
			_, err := Resolve(fs, f, tc.device, tc.baud)
			var cfgErr *ConfigurationError
			require.ErrorAs(t, err, &cfgErr)
			require.Equal(t, tc.field, cfgErr.Field)
			require.Equal(t, 2, cfgErr.ExitCode())
		})
	}
}

func writeProfile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "profile.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestResolve_ProfileSuppliesDefaults(t *testing.T) {
	path := writeProfile(t, `
data_bits: 7
parity: odd
stop_bits: 2
timeout_ms: 25
driver: portable
verbose: true
`)
	fs, f := parse(t, "--profile", path, "--data-bits", "8")
	cfg, err := Resolve(fs, f, "/dev/ttyACM0", "57600")
	require.NoError(t, err)

	require.Equal(t, 8, cfg.Settings.DataBits, "flag wins over profile")
	require.Equal(t, serial.ParityOdd, cfg.Settings.Parity)
	require.Equal(t, serial.StopBitsTwo, cfg.Settings.StopBits)
	require.Equal(t, 25*time.Millisecond, cfg.Settings.ReadTimeout)
	require.Equal(t, serial.DriverPortable, cfg.Driver)
	require.True(t, cfg.Verbose)
}

func TestResolve_ProfileErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		fs, f := parse(t, "--profile", filepath.Join(t.TempDir(), "absent.yaml"))
		_, err := Resolve(fs, f, "/dev/ttyS0", "9600")
		var cfgErr *ConfigurationError
		require.ErrorAs(t, err, &cfgErr)
		require.Equal(t, "profile", cfgErr.Field)
		require.ErrorIs(t, err, os.ErrNotExist)
	})
	t.Run("unknown key", func(t *testing.T) {
		fs, f := parse(t, "--profile", writeProfile(t, "databits: 7\n"))
		_, err := Resolve(fs, f, "/dev/ttyS0", "9600")
		var cfgErr *ConfigurationError
		require.ErrorAs(t, err, &cfgErr)
		require.Equal(t, "profile", cfgErr.Field)
	})
	t.Run("invalid value", func(t *testing.T) {
		fs, f := parse(t, "--profile", writeProfile(t, "parity: space\n"))
		_, err := Resolve(fs, f, "/dev/ttyS0", "9600")
		var cfgErr *ConfigurationError
		require.ErrorAs(t, err, &cfgErr)
		require.Equal(t, FlagParity, cfgErr.Field)
	})
}

func TestParseProfile_Empty(t *testing.T) {
	profile, err := ParseProfile(nil)
	require.NoError(t, err)
	require.Equal(t, &Profile{}, profile)
}
