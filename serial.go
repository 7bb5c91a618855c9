//go:build linux

package serial

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// Port provides low-latency, killable, byte-oriented access to a Linux serial port.
// Read and Write may be called from different goroutines; callers that need
// them serialized must do so themselves. Both wait in poll together with a
// self-pipe, so Close unblocks either one.
type Port struct {
	fd        int
	done      chan struct{}
	closeOnce sync.Once
	config    Config
	pipeR     int // self-pipe read fd
	pipeW     int // self-pipe write fd
}

// Open opens a serial port using the provided Config and returns a Port.
// The port is configured for raw, non-buffered operation with the requested
// frame format and flow control.
func Open(cfg Config) (*Port, error) {
	if err := cfg.Settings.Validate(); err != nil {
		return nil, err
	}
	baud, err := baudToUnix(cfg.BaudRate)
	if err != nil {
		return nil, err
	}

	fd, err := syscall.Open(cfg.Device, syscall.O_RDWR|syscall.O_NOCTTY|syscall.O_NONBLOCK, 0666)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Device, err)
	}

	termios, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		syscall.Close(fd)
		return nil, fmt.Errorf("get termios: %w", err)
	}

	applySettings(termios, cfg.Settings, baud)

	if err := unix.IoctlSetTermios(fd, unix.TCSETS, termios); err != nil {
		syscall.Close(fd)
		return nil, fmt.Errorf("set termios: %w", err)
	}

	// The fd stays non-blocking; Read and Write wait in poll instead.
	// Create self-pipe for killability
	pipeFds := make([]int, 2)
	if err := unix.Pipe(pipeFds); err != nil {
		syscall.Close(fd)
		return nil, fmt.Errorf("pipe: %w", err)
	}

	return &Port{
		fd:     fd,
		done:   make(chan struct{}),
		config: cfg,
		pipeR:  pipeFds[0],
		pipeW:  pipeFds[1],
	}, nil
}

func applySettings(termios *unix.Termios, s Settings, baud uint32) {
	// Raw mode
	termios.Iflag &^= unix.IGNBRK | unix.BRKINT | unix.PARMRK | unix.ISTRIP | unix.INLCR | unix.IGNCR | unix.ICRNL | unix.IXON | unix.IXOFF | unix.IXANY | unix.INPCK
	termios.Oflag &^= unix.OPOST
	termios.Lflag &^= unix.ECHO | unix.ECHONL | unix.ICANON | unix.ISIG | unix.IEXTEN
	termios.Cflag &^= unix.CSIZE | unix.PARENB | unix.PARODD | unix.CSTOPB | unix.CRTSCTS
	termios.Cflag |= unix.CREAD | unix.CLOCAL

	switch s.DataBits {
	case 5:
		termios.Cflag |= unix.CS5
	case 6:
		termios.Cflag |= unix.CS6
	case 7:
		termios.Cflag |= unix.CS7
	default:
		termios.Cflag |= unix.CS8
	}

	switch s.Parity {
	case ParityOdd:
		termios.Cflag |= unix.PARENB | unix.PARODD
		termios.Iflag |= unix.INPCK
	case ParityEven:
		termios.Cflag |= unix.PARENB
		termios.Iflag |= unix.INPCK
	}

	if s.StopBits == StopBitsTwo {
		termios.Cflag |= unix.CSTOPB
	}

	switch s.FlowControl {
	case FlowHardware:
		termios.Cflag |= unix.CRTSCTS
	case FlowSoftware:
		termios.Iflag |= unix.IXON | unix.IXOFF
	}

	// Baud rate
	termios.Cflag &^= unix.CBAUD
	termios.Cflag |= baud
	termios.Ispeed = baud
	termios.Ospeed = baud

	// VMIN=1, VTIME=0: a read returns as soon as one byte is there. The
	// read timeout is enforced by poll in Read.
	termios.Cc[unix.VMIN] = 1
	termios.Cc[unix.VTIME] = 0
}

// Name returns the device path the port was opened with.
func (s *Port) Name() string {
	return s.config.Device
}

// Read waits up to the configured read timeout for data. It returns (0, nil)
// when the timeout expires with nothing to read, and ErrClosed once Close has
// been called.
func (s *Port) Read(p []byte) (int, error) {
	pfd := []unix.PollFd{
		{Fd: int32(s.fd), Events: unix.POLLIN},
		{Fd: int32(s.pipeR), Events: unix.POLLIN},
	}
	ready, err := unix.Poll(pfd, timeoutMillis(s.config.ReadTimeout))
	if err != nil {
		if errors.Is(err, unix.EINTR) {
			return 0, nil
		}
		return 0, fmt.Errorf("poll: %w", err)
	}
	// Check killability
	select {
	case <-s.done:
		return 0, ErrClosed
	default:
	}
	if ready == 0 {
		return 0, nil
	}
	if pfd[1].Revents&unix.POLLIN != 0 {
		return 0, ErrClosed
	}
	if pfd[0].Revents&(unix.POLLHUP|unix.POLLERR|unix.POLLNVAL) != 0 && pfd[0].Revents&unix.POLLIN == 0 {
		return 0, fmt.Errorf("read %s: device hung up", s.config.Device)
	}
	n, err := unix.Read(s.fd, p)
	switch {
	case errors.Is(err, unix.EAGAIN), errors.Is(err, unix.EINTR):
		return 0, nil
	case err != nil:
		return 0, fmt.Errorf("read %s: %w", s.config.Device, err)
	case n == 0 && len(p) > 0:
		return 0, io.EOF
	}
	return n, nil
}

// Write writes all of p. Output held back by flow control waits in poll,
// and Close ends the wait with ErrClosed and the count written so far.
func (s *Port) Write(p []byte) (int, error) {
	written := 0
	for written < len(p) {
		select {
		case <-s.done:
			return written, ErrClosed
		default:
		}
		pfd := []unix.PollFd{
			{Fd: int32(s.fd), Events: unix.POLLOUT},
			{Fd: int32(s.pipeR), Events: unix.POLLIN},
		}
		if _, err := unix.Poll(pfd, -1); err != nil {
			if errors.Is(err, unix.EINTR) {
				continue
			}
			return written, fmt.Errorf("poll: %w", err)
		}
		select {
		case <-s.done:
			return written, ErrClosed
		default:
		}
		if pfd[1].Revents&unix.POLLIN != 0 {
			return written, ErrClosed
		}
		if pfd[0].Revents&(unix.POLLHUP|unix.POLLERR|unix.POLLNVAL) != 0 && pfd[0].Revents&unix.POLLOUT == 0 {
			return written, fmt.Errorf("write %s: device hung up", s.config.Device)
		}

		n, err := unix.Write(s.fd, p[written:])
		if n > 0 {
			written += n
		}
		if err != nil && !errors.Is(err, unix.EAGAIN) && !errors.Is(err, unix.EINTR) {
			return written, fmt.Errorf("write %s: %w", s.config.Device, err)
		}
	}
	return written, nil
}

// ClearToSend reports the CTS modem line.
func (s *Port) ClearToSend() (bool, error) { return s.modemLine(unix.TIOCM_CTS) }

// CarrierDetect reports the DCD modem line.
func (s *Port) CarrierDetect() (bool, error) { return s.modemLine(unix.TIOCM_CAR) }

// RingIndicator reports the RI modem line.
func (s *Port) RingIndicator() (bool, error) { return s.modemLine(unix.TIOCM_RNG) }

// DataSetReady reports the DSR modem line.
func (s *Port) DataSetReady() (bool, error) { return s.modemLine(unix.TIOCM_DSR) }

func (s *Port) modemLine(bit int) (bool, error) {
	bits, err := unix.IoctlGetInt(s.fd, unix.TIOCMGET)
	if err != nil {
		return false, fmt.Errorf("TIOCMGET: %w", err)
	}
	return bits&bit != 0, nil
}

// Close closes the serial port and unblocks any pending Read.
// Safe to call multiple times; subsequent calls are no-ops.
func (s *Port) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		// Wake up poll using self-pipe
		unix.Write(s.pipeW, []byte{1})
		err = unix.Close(s.fd)
		unix.Close(s.pipeR)
		unix.Close(s.pipeW)
	})
	return err
}

func timeoutMillis(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	ms := int(d / time.Millisecond)
	if ms == 0 {
		ms = 1
	}
	return ms
}

func baudToUnix(baud int) (uint32, error) {
	switch baud {
	case 1200:
		return unix.B1200, nil
	case 2400:
		return unix.B2400, nil
	case 4800:
		return unix.B4800, nil
	case 9600:
		return unix.B9600, nil
	case 19200:
		return unix.B19200, nil
	case 38400:
		return unix.B38400, nil
	case 57600:
		return unix.B57600, nil
	case 115200:
		return unix.B115200, nil
	case 230400:
		return unix.B230400, nil
	case 460800:
		return unix.B460800, nil
	case 500000:
		return unix.B500000, nil
	case 576000:
		return unix.B576000, nil
	case 921600:
		return unix.B921600, nil
	case 1000000:
		return unix.B1000000, nil
	case 1500000:
		return unix.B1500000, nil
	case 2000000:
		return unix.B2000000, nil
	case 3000000:
		return unix.B3000000, nil
	case 4000000:
		return unix.B4000000, nil
	default:
		return 0, fmt.Errorf("unsupported baud rate %d", baud)
	}
}
