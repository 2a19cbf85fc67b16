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

package hosttest

import (
	"time"

	"github.com/arduino/arduino-hosttest/serialport"
)

// DefaultTimeout is the test timeout used when none is given.
const DefaultTimeout = 10 * time.Second

// Params are the connection parameters of a run.
type Params struct {
	// Micro is the target microcontroller, e.g. LPC1768.
	Micro string
	// Port is the serial port of the board, e.g. COM3 or /dev/ttyACM0.
	Port string
	// Disk is the mass storage path of the board, if any.
	Disk string
	// Extra is a second serial port used by some tests.
	Extra     string
	Timeout   time.Duration
	Baud      int
	ExtraBaud int
}

func (p Params) withDefaults() Params {
	if p.Timeout == 0 {
		p.Timeout = DefaultTimeout
	}
	if p.Baud == 0 {
		p.Baud = serialport.DefaultBaudRate
	}
	if p.ExtraBaud == 0 {
		p.ExtraBaud = serialport.DefaultBaudRate
	}
	return p
}
