// Package telemetry samples the modem control lines of a serial device.
package telemetry

import "fmt"

// Lines reads individual modem status lines. Each read may fail on its own.
type Lines interface {
	ClearToSend() (bool, error)
	CarrierDetect() (bool, error)
	RingIndicator() (bool, error)
	DataSetReady() (bool, error)
}

// Snapshot is the state of the four status lines at one instant. It is
// replaced as a whole on every sample.
type Snapshot struct {
	ClearToSend   bool
	CarrierDetect bool
	RingIndicator bool
	DataSetReady  bool
}

func (s Snapshot) String() string {
	return fmt.Sprintf("CTS: %t CD: %t RI: %t DSR: %t",
		s.ClearToSend, s.CarrierDetect, s.RingIndicator, s.DataSetReady)
}

// Sample reads each line independently. A line whose read fails is
// reported as false; Sample itself never fails and never writes to the
// device.
func Sample(lines Lines) Snapshot {
	return Snapshot{
		ClearToSend:   orFalse(lines.ClearToSend()),
		CarrierDetect: orFalse(lines.CarrierDetect()),
		RingIndicator: orFalse(lines.RingIndicator()),
		DataSetReady:  orFalse(lines.DataSetReady()),
	}
}

func orFalse(v bool, err error) bool {
	if err != nil {
		return false
	}
	return v
}
