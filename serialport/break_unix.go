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

//go:build linux || darwin || freebsd || openbsd

package serialport

import "golang.org/x/sys/unix"

// ttyControl is a handle on a tty used only to drive its line state.
type ttyControl struct {
	fd int
}

var ioctl = func(fd int, req uint) error {
	return unix.IoctlSetInt(fd, req, 0)
}

func openTTYControl(name string) (*ttyControl, error) {
	fd, err := unix.Open(name, unix.O_RDWR|unix.O_NOCTTY|unix.O_NONBLOCK, 0)
	if err != nil {
		return nil, err
	}
	return &ttyControl{fd: fd}, nil
}

func (c *ttyControl) clearBreak() error {
	return ioctl(c.fd, unix.TIOCCBRK)
}

func (c *ttyControl) close() error {
	return unix.Close(c.fd)
}
