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

package serialport

import (
	"errors"
	"net"
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

const tcpDialTimeout = 2 * time.Second

// tcpPort is a serial line exported over a raw TCP socket (ser2net and alike).
type tcpPort struct {
	conn        net.Conn
	readTimeout time.Duration
}

func openTCP(address string) (Port, error) {
	conn, err := net.DialTimeout("tcp", address, tcpDialTimeout)
	if err != nil {
		return nil, err
	}
	logrus.Infof("Connected to %s (TCP)", address)
	return &tcpPort{conn: conn, readTimeout: time.Second}, nil
}

func (t *tcpPort) Read(p []byte) (int, error) {
	if err := t.conn.SetReadDeadline(time.Now().Add(t.readTimeout)); err != nil {
		return 0, err
	}
	n, err := t.conn.Read(p)
	if errors.Is(err, os.ErrDeadlineExceeded) {
		// a timeout is an empty read, like on a real serial port
		return n, nil
	}
	return n, err
}

func (t *tcpPort) Write(p []byte) (int, error) {
	return t.conn.Write(p)
}

func (t *tcpPort) SetReadTimeout(d time.Duration) error {
	t.readTimeout = d
	return nil
}

func (t *tcpPort) ResetInputBuffer() error {
	buf := make([]byte, 1024)
	for {
		if err := t.conn.SetReadDeadline(time.Now().Add(10 * time.Millisecond)); err != nil {
			return err
		}
		n, err := t.conn.Read(buf)
		if n == 0 || err != nil {
			return nil
		}
	}
}

// ResetOutputBuffer is a no-op: written bytes are already handed to the kernel.
func (t *tcpPort) ResetOutputBuffer() error {
	return nil
}

func (t *tcpPort) Break(time.Duration) error {
	return ErrBreakUnsupported
}

func (t *tcpPort) ClearBreak() error {
	return ErrBreakUnsupported
}

func (t *tcpPort) Close() error {
	return t.conn.Close()
}
