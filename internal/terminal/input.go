package terminal

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"golang.org/x/sys/unix"
)

// Input reads raw bytes from a terminal file descriptor with a poll that
// is bounded by a timeout, so the reading goroutine always gets a chance
// to notice shutdown.
type Input struct {
	fd int
}

// NewInput wraps f. f is switched to blocking mode by taking its Fd.
func NewInput(f *os.File) *Input {
	return &Input{fd: int(f.Fd())}
}

// Poll waits up to timeout for input. It reports false when nothing
// arrived. A hangup counts as ready so the following Read reports EOF.
func (in *Input) Poll(timeout time.Duration) (bool, error) {
	pfd := []unix.PollFd{{Fd: int32(in.fd), Events: unix.POLLIN}}
	n, err := unix.Poll(pfd, int(timeout/time.Millisecond))
	if err != nil {
		if errors.Is(err, unix.EINTR) {
			return false, nil
		}
		return false, fmt.Errorf("poll: %w", err)
	}
	if n == 0 {
		return false, nil
	}
	if pfd[0].Revents&unix.POLLNVAL != 0 {
		return false, fmt.Errorf("poll: invalid descriptor %d", in.fd)
	}
	return true, nil
}

// Read reads what is available. A zero-length read is reported as io.EOF.
func (in *Input) Read(p []byte) (int, error) {
	n, err := unix.Read(in.fd, p)
	if err != nil {
		if errors.Is(err, unix.EINTR) || errors.Is(err, unix.EAGAIN) {
			return 0, nil
		}
		return 0, err
	}
	if n == 0 {
		return 0, io.EOF
	}
	return n, nil
}
