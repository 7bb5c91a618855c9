package logging

import (
	"io"
	"sync"
)

// DefaultCaptureSize holds a few thousand log records, far more than a
// session produces when nothing goes wrong.
const DefaultCaptureSize = 256 * 1024

// Capture is a fixed-size circular byte buffer used as a log sink while
// the terminal is owned by the console. When full, the oldest bytes are
// overwritten.
//
// All methods are safe for concurrent use.
type Capture struct {
	mutex    sync.Mutex
	data     []byte
	capacity int
	// writePosition is the next position to write (0 to capacity-1).
	writePosition int
	// totalWritten counts every byte ever written, including overwritten ones.
	totalWritten uint64
}

// NewCapture creates a capture buffer with the given capacity in bytes.
func NewCapture(capacity int) *Capture {
	return &Capture{
		data:     make([]byte, capacity),
		capacity: capacity,
	}
}

// Write stores p, overwriting the oldest data if needed. It never fails.
func (capture *Capture) Write(p []byte) (int, error) {
	capture.mutex.Lock()
	defer capture.mutex.Unlock()

	data := p
	// Only the tail of an oversized write can survive.
	if len(data) > capture.capacity {
		data = data[len(data)-capture.capacity:]
		capture.writePosition = 0
		capture.totalWritten += uint64(len(p) - len(data))
	}
	for offset := 0; offset < len(data); {
		available := capture.capacity - capture.writePosition
		copyLength := len(data) - offset
		if copyLength > available {
			copyLength = available
		}
		copy(capture.data[capture.writePosition:capture.writePosition+copyLength], data[offset:offset+copyLength])
		capture.writePosition = (capture.writePosition + copyLength) % capture.capacity
		offset += copyLength
	}
	capture.totalWritten += uint64(len(data))
	return len(p), nil
}

// Bytes returns a copy of the retained data, oldest first.
func (capture *Capture) Bytes() []byte {
	capture.mutex.Lock()
	defer capture.mutex.Unlock()

	stored := capture.stored()
	result := make([]byte, stored)
	readPosition := (capture.writePosition - stored + capture.capacity) % capture.capacity
	for copied := 0; copied < stored; {
		available := capture.capacity - readPosition
		copyLength := stored - copied
		if copyLength > available {
			copyLength = available
		}
		copy(result[copied:copied+copyLength], capture.data[readPosition:readPosition+copyLength])
		readPosition = (readPosition + copyLength) % capture.capacity
		copied += copyLength
	}
	return result
}

// Dropped returns how many bytes were overwritten before being read.
func (capture *Capture) Dropped() uint64 {
	capture.mutex.Lock()
	defer capture.mutex.Unlock()
	return capture.totalWritten - uint64(capture.stored())
}

// WriteTo writes the retained data to w.
func (capture *Capture) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(capture.Bytes())
	return int64(n), err
}

func (capture *Capture) stored() int {
	if capture.totalWritten > uint64(capture.capacity) {
		return capture.capacity
	}
	return int(capture.totalWritten)
}
