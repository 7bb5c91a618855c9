package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luhtfiimanal/go-serial-console/internal/config"
)

func execute(args ...string) error {
	cmd := newRootCommand()
	cmd.SetArgs(args)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	return cmd.Execute()
}

func TestRootCommand_RequiresDeviceAndBaud(t *testing.T) {
	require.Error(t, execute())
	require.Error(t, execute("/dev/ttyUSB0"))
	require.Error(t, execute("/dev/ttyUSB0", "9600", "extra"))
}

func TestRootCommand_ConfigurationErrorsExitTwo(t *testing.T) {
	for _, args := range [][]string{
		{"/dev/ttyUSB0", "fast"},
		{"--parity", "mark", "/dev/ttyUSB0", "9600"},
		{"--data-bits", "4", "/dev/ttyUSB0", "9600"},
		{"--driver", "usb", "/dev/ttyUSB0", "9600"},
	} {
		err := execute(args...)
		var cfgErr *config.ConfigurationError
		require.ErrorAs(t, err, &cfgErr, "%v", args)

		coder, ok := err.(interface{ ExitCode() int })
		require.True(t, ok)
		require.Equal(t, 2, coder.ExitCode())
	}
}
