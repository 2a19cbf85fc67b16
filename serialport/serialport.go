/*
	arduino-hosttest
	Copyright (c) 2023 Arduino LLC.  All right reserved.

	This program is free software: you can redistribute it and/or modify
	it under the terms of the GNU Affero General Public License as published
	by the Free Software Foundation, either version 3 of the License, or
	(at your option) any later version.

	This program is distributed in the hope that it will be useful,
	but WITHOUT ANY WARRANTY; without even the implied warranty of
	MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
	GNU Affero General Public License for more details.

	You should have received a copy of the GNU Affero General Public License
	along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

// Package serialport is the transport used to talk with the board under test:
// a duplex byte stream that can be flushed and can assert a break condition.
package serialport

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"go.bug.st/serial"
)

// DefaultBaudRate is used when no baud rate is requested.
const DefaultBaudRate = 9600

// BreakDuration is how long the break condition is held on the line.
const BreakDuration = 250 * time.Millisecond

// ErrBreakUnsupported is returned by transports that cannot assert a break.
var ErrBreakUnsupported = errors.New("break signal not supported by this transport")

// Port is the subset of a serial port used by the harness.
type Port interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	SetReadTimeout(t time.Duration) error
	ResetInputBuffer() error
	ResetOutputBuffer() error
	// Break asserts the break condition for d and then releases the line.
	Break(d time.Duration) error
	// ClearBreak de-asserts the break condition.
	ClearBreak() error
	Close() error
}

// Opener opens a Port by name.
type Opener interface {
	Open(name string, baudRate int, readTimeout time.Duration) (Port, error)
}

// OpenError is returned when a transport could not be opened.
type OpenError struct {
	Name string
	Err  error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("opening port %s: %s", e.Name, e.Err)
}

func (e *OpenError) Unwrap() error {
	return e.Err
}

// SystemOpener opens ports on the host. Names in the form tcp://host:port are
// dialed as serial-over-TCP servers, anything else is a local serial device.
type SystemOpener struct{}

// Open implements Opener.
func (SystemOpener) Open(name string, baudRate int, readTimeout time.Duration) (Port, error) {
	if baudRate == 0 {
		baudRate = DefaultBaudRate
	}
	var (
		port Port
		err  error
	)
	if addr, ok := strings.CutPrefix(name, "tcp://"); ok {
		port, err = openTCP(addr)
	} else {
		port, err = openSerial(name, baudRate)
	}
	if err != nil {
		return nil, &OpenError{Name: name, Err: err}
	}
	if err := port.SetReadTimeout(readTimeout); err != nil {
		port.Close()
		return nil, &OpenError{Name: name, Err: fmt.Errorf("could not set timeout on serial port: %w", err)}
	}
	return port, nil
}

// bugstPort adds ClearBreak to a go.bug.st serial port. The driver has no
// call that only de-asserts the break, so the line is released through ctl,
// a second handle on the same device. ctl is nil when the platform has none.
type bugstPort struct {
	serial.Port
	ctl *ttyControl
}

// ClearBreak de-asserts the break condition without asserting it first.
func (p *bugstPort) ClearBreak() error {
	if p.ctl == nil {
		return ErrBreakUnsupported
	}
	return p.ctl.clearBreak()
}

func (p *bugstPort) Close() error {
	err := p.Port.Close()
	if p.ctl != nil {
		err = errors.Join(err, p.ctl.close())
	}
	return err
}

func openSerial(name string, baudRate int) (Port, error) {
	mode := &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	// The driver takes exclusive access of the device once open, so the
	// control handle must be opened first.
	ctl, err := openTTYControl(name)
	if err != nil {
		logrus.WithError(err).Debugf("Break line control not available on %s", name)
		ctl = nil
	}
	port, err := serial.Open(name, mode)
	if err != nil {
		if ctl != nil {
			ctl.close()
		}
		return nil, err
	}
	logrus.Infof("Opened port %s at %d", name, baudRate)
	return &bugstPort{Port: port, ctl: ctl}, nil
}
