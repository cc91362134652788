package display

import (
	"fmt"
	"io"
	"time"

	"go.bug.st/serial"
)

// Port is an open connection to the display boards
type Port interface {
	io.WriteCloser
}

// Opener finds and opens serial ports
type Opener interface {
	List() ([]string, error)
	Open(name string, baudRate int) (Port, error)
}

// SerialOpener opens real serial devices
type SerialOpener struct{}

// List returns the names of the serial ports present on this machine
func (SerialOpener) List() ([]string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}
	if ports == nil {
		ports = []string{}
	}
	return ports, nil
}

// Open opens name as 8N1 at the given baud rate
func (SerialOpener) Open(name string, baudRate int) (Port, error) {
	port, err := serial.Open(name, &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", name, err)
	}
	if err := port.SetReadTimeout(100 * time.Millisecond); err != nil {
		port.Close()
		return nil, fmt.Errorf("failed to configure serial port %s: %w", name, err)
	}
	return port, nil
}
