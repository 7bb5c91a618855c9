package console

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeDevice serves reads from a channel of chunks, timing out after
// readTimeout when nothing is queued.
type fakeDevice struct {
	chunks      chan []byte
	readErr     chan error
	readTimeout time.Duration

	mu        sync.Mutex
	written   bytes.Buffer
	writes    int
	writeErr  error
	maxChunk  int // >0 forces short writes
	cts, dsr  bool
	linesFail bool
}

func newFakeDevice() *fakeDevice {
	return &fakeDevice{
		chunks:      make(chan []byte, 16),
		readErr:     make(chan error, 1),
		readTimeout: time.Millisecond,
	}
}

func (d *fakeDevice) Read(p []byte) (int, error) {
	select {
	case chunk := <-d.chunks:
		return copy(p, chunk), nil
	case err := <-d.readErr:
		return 0, err
	case <-time.After(d.readTimeout):
		return 0, nil
	}
}

func (d *fakeDevice) Write(p []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.writeErr != nil {
		return 0, d.writeErr
	}
	d.writes++
	if d.maxChunk > 0 && len(p) > d.maxChunk {
		p = p[:d.maxChunk]
	}
	return d.written.Write(p)
}

func (d *fakeDevice) Written() (string, int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.written.String(), d.writes
}

var errLine = errors.New("line unavailable")

func (d *fakeDevice) line(v *bool) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.linesFail {
		return false, errLine
	}
	return v != nil && *v, nil
}

func (d *fakeDevice) ClearToSend() (bool, error)   { return d.line(&d.cts) }
func (d *fakeDevice) CarrierDetect() (bool, error) { return d.line(nil) }
func (d *fakeDevice) RingIndicator() (bool, error) { return d.line(nil) }
func (d *fakeDevice) DataSetReady() (bool, error)  { return d.line(&d.dsr) }

// fakeTerminal feeds input from a channel; closing it reads as EOF.
type fakeTerminal struct {
	input chan []byte

	mu       sync.Mutex
	pending  []byte
	eof      bool
	output   bytes.Buffer
	enters   int
	restores int
	enterErr error
	cols     int
	rows     int
}

func newFakeTerminal() *fakeTerminal {
	return &fakeTerminal{input: make(chan []byte, 16), cols: 80, rows: 24}
}

func (f *fakeTerminal) Poll(timeout time.Duration) (bool, error) {
	f.mu.Lock()
	unread := len(f.pending) > 0
	f.mu.Unlock()
	if unread {
		return true, nil
	}
	select {
	case data, ok := <-f.input:
		f.mu.Lock()
		defer f.mu.Unlock()
		if !ok {
			f.eof = true
		}
		f.pending = append(f.pending, data...)
		return true, nil
	case <-time.After(timeout):
		return false, nil
	}
}

func (f *fakeTerminal) Read(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.pending) == 0 && f.eof {
		return 0, io.EOF
	}
	n := copy(p, f.pending)
	f.pending = f.pending[n:]
	return n, nil
}

func (f *fakeTerminal) Write(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.output.Write(p)
}

func (f *fakeTerminal) Output() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.output.String()
}

func (f *fakeTerminal) Enter() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.enters++
	return f.enterErr
}

func (f *fakeTerminal) Restore() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.restores++
	return nil
}

func (f *fakeTerminal) Size() (int, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cols, f.rows, nil
}

func (f *fakeTerminal) Counts() (enters, restores int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.enters, f.restores
}

var errDeviceClosed = errors.New("device closed")

// stalledDevice accepts no output: every Write blocks until Close.
type stalledDevice struct {
	*fakeDevice
	closed    chan struct{}
	closeOnce sync.Once
}

func newStalledDevice() *stalledDevice {
	return &stalledDevice{fakeDevice: newFakeDevice(), closed: make(chan struct{})}
}

func (d *stalledDevice) Write(p []byte) (int, error) {
	<-d.closed
	return 0, errDeviceClosed
}

func (d *stalledDevice) Close() error {
	d.closeOnce.Do(func() { close(d.closed) })
	return nil
}
