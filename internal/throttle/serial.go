package throttle

import (
	"context"
	"fmt"

	"go.bug.st/serial"
)

// DefaultBaud matches the firmware's serial setup.
const DefaultBaud = 9600

func ListPorts() ([]string, error) {
	return serial.GetPortsList()
}

func OpenPort(name string, baud int) (serial.Port, error) {
	if baud <= 0 {
		baud = DefaultBaud
	}
	mode := &serial.Mode{BaudRate: baud}
	port, err := serial.Open(name, mode)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	return port, nil
}

// MonitorPort opens name and follows its calibration output until ctx is
// done. The port is closed on return.
func MonitorPort(ctx context.Context, name string, baud int, fn func(Calibration) error) (MonitorStats, error) {
	port, err := OpenPort(name, baud)
	if err != nil {
		return MonitorStats{}, err
	}
	defer port.Close()

	// a blocked Read only returns once the port is closed
	stop := context.AfterFunc(ctx, func() { port.Close() })
	defer stop()

	return Monitor(ctx, port, fn)
}
