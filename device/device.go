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

// Package device drives the board under test through its serial port(s).
package device

import (
	"errors"
	"time"

	"code.cloudfoundry.org/clock"
	"github.com/arduino/arduino-hosttest/serialport"
	"github.com/sirupsen/logrus"
)

// ReadTimeout bounds every read on the ports opened by the Controller.
const ReadTimeout = time.Second

// ResetSettleTime is the time given to the board to load its image after a reset.
const ResetSettleTime = 2 * time.Second

// ErrNotOpen is returned by operations issued before Open.
var ErrNotOpen = errors.New("serial port not open")

// Controller owns the serial port of the board under test and, optionally, an
// extra port used by some tests to exchange auxiliary signals.
type Controller struct {
	opener    serialport.Opener
	clock     clock.Clock
	portName  string
	extraName string
	timeout   time.Duration

	port  serialport.Port
	extra serialport.Port
}

// Option configures a Controller.
type Option func(*Controller)

// WithClock replaces the clock used to wait for the board after a reset.
func WithClock(clk clock.Clock) Option {
	return func(c *Controller) {
		c.clock = clk
	}
}

// New creates a Controller for the given ports. extra may be empty.
func New(opener serialport.Opener, port, extra string, timeout time.Duration, opts ...Option) *Controller {
	c := &Controller{
		opener:    opener,
		clock:     clock.NewClock(),
		portName:  port,
		extraName: extra,
		timeout:   timeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Open opens the main port at baud and, if configured, the extra port at
// extraBaud. Pending data on the ports is discarded. A zero baud rate selects
// serialport.DefaultBaudRate.
func (c *Controller) Open(baud, extraBaud int) error {
	if baud == 0 {
		baud = serialport.DefaultBaudRate
	}
	if extraBaud == 0 {
		extraBaud = serialport.DefaultBaudRate
	}

	port, err := c.opener.Open(c.portName, baud, ReadTimeout)
	if err != nil {
		return err
	}
	c.port = port
	logrus.Debugf("Opened main port %s at %d", c.portName, baud)

	if c.extraName != "" {
		extra, err := c.opener.Open(c.extraName, extraBaud, ReadTimeout)
		if err != nil {
			c.port.Close()
			c.port = nil
			return err
		}
		c.extra = extra
		logrus.Debugf("Opened extra port %s at %d", c.extraName, extraBaud)
	}
	return c.Flush()
}

// Reset sends a break on the main port to reset the board, then waits for the
// board to boot. It never fails: if the break cannot be sent the line is
// explicitly released and the run goes on. The returned value reports whether
// the line ended up released without errors.
func (c *Controller) Reset() bool {
	released := c.sendBreak()
	c.clock.Sleep(ResetSettleTime)
	return released
}

func (c *Controller) sendBreak() bool {
	if c.port == nil {
		return false
	}
	if err := c.port.Break(serialport.BreakDuration); err == nil {
		return true
	}
	// Some serial back-ends fail while asserting or releasing the break
	// (EPIPE from tcsendbreak on Linux): the line must be released anyway
	// or the board stays in reset.
	return c.port.ClearBreak() == nil
}

// Flush discards the input and output buffers of all the open ports.
func (c *Controller) Flush() error {
	if c.port == nil {
		return ErrNotOpen
	}
	if err := flush(c.port); err != nil {
		return err
	}
	if c.extra != nil {
		return flush(c.extra)
	}
	return nil
}

func flush(port serialport.Port) error {
	if err := port.ResetInputBuffer(); err != nil {
		return err
	}
	return port.ResetOutputBuffer()
}

// Read reads from the main port. It returns 0 bytes and no error when the
// read timeout expires.
func (c *Controller) Read(p []byte) (int, error) {
	if c.port == nil {
		return 0, ErrNotOpen
	}
	return c.port.Read(p)
}

// Write writes to the main port.
func (c *Controller) Write(p []byte) (int, error) {
	if c.port == nil {
		return 0, ErrNotOpen
	}
	return c.port.Write(p)
}

// Extra returns the extra port, or nil if none was configured.
func (c *Controller) Extra() serialport.Port {
	return c.extra
}

// Timeout returns the test timeout.
func (c *Controller) Timeout() time.Duration {
	return c.timeout
}

// Clock returns the clock used by the Controller.
func (c *Controller) Clock() clock.Clock {
	return c.clock
}

// Close closes all the open ports. It is safe to call it more than once.
func (c *Controller) Close() error {
	var errs []error
	if c.port != nil {
		errs = append(errs, c.port.Close())
		c.port = nil
	}
	if c.extra != nil {
		errs = append(errs, c.extra.Close())
		c.extra = nil
	}
	return errors.Join(errs...)
}
