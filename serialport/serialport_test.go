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
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestOpenMissingDevice(t *testing.T) {
	_, err := SystemOpener{}.Open("/dev/arduino-hosttest-missing", 9600, time.Second)
	require.Error(t, err)
	var openErr *OpenError
	require.ErrorAs(t, err, &openErr)
	require.Equal(t, "/dev/arduino-hosttest-missing", openErr.Name)
}

func TestClearBreakWithoutControl(t *testing.T) {
	p := &bugstPort{}
	require.ErrorIs(t, p.ClearBreak(), ErrBreakUnsupported)
}

func TestTCPPort(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	accepted := make(chan net.Conn, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			close(accepted)
			return
		}
		accepted <- conn
	}()

	port, err := SystemOpener{}.Open("tcp://"+ln.Addr().String(), 115200, 50*time.Millisecond)
	require.NoError(t, err)
	defer port.Close()

	device := <-accepted
	require.NotNil(t, device)
	defer device.Close()

	// nothing sent yet: a timed out read is empty, not an error
	buf := make([]byte, 512)
	n, err := port.Read(buf)
	require.NoError(t, err)
	require.Zero(t, n)

	_, err = device.Write([]byte("boot noise"))
	require.NoError(t, err)
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, port.ResetInputBuffer())
	require.NoError(t, port.ResetOutputBuffer())

	_, err = device.Write([]byte("Hello World\n"))
	require.NoError(t, err)
	require.NoError(t, port.SetReadTimeout(time.Second))
	n, err = port.Read(buf)
	require.NoError(t, err)
	require.Equal(t, "Hello World\n", string(buf[:n]))

	_, err = port.Write([]byte("ping"))
	require.NoError(t, err)
	require.NoError(t, device.SetReadDeadline(time.Now().Add(time.Second)))
	n, err = device.Read(buf)
	require.NoError(t, err)
	require.Equal(t, "ping", string(buf[:n]))

	require.ErrorIs(t, port.Break(BreakDuration), ErrBreakUnsupported)
	require.ErrorIs(t, port.ClearBreak(), ErrBreakUnsupported)
}

func TestTCPDialFailure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	ln.Close()

	_, err = SystemOpener{}.Open("tcp://"+addr, 0, time.Second)
	var openErr *OpenError
	require.ErrorAs(t, err, &openErr)
	require.Equal(t, "tcp://"+addr, openErr.Name)
}

func TestMockPortScript(t *testing.T) {
	drained := 0
	port := NewMockPort([]byte("abc"), nil, []byte("defgh"))
	port.OnDrained = func() { drained++ }

	buf := make([]byte, 3)
	var got []byte
	for i := 0; i < 5; i++ {
		n, err := port.Read(buf)
		require.NoError(t, err)
		got = append(got, buf[:n]...)
	}
	require.Equal(t, "abcdefgh", string(got))
	require.Equal(t, 1, drained)

	port.ReadErr = errors.New("unplugged")
	_, err := port.Read(buf)
	require.EqualError(t, err, "unplugged")

	require.NoError(t, port.Close())
	require.True(t, port.Closed())
	require.Error(t, port.Close())
}

func TestMockOpener(t *testing.T) {
	opener := &MockOpener{
		Ports: map[string]*MockPort{"COM3": NewMockPort()},
		Errs:  map[string]error{"COM4": errors.New("busy")},
	}
	port, err := opener.Open("COM3", 9600, time.Second)
	require.NoError(t, err)
	require.Equal(t, time.Second, port.(*MockPort).ReadTimeout)

	_, err = opener.Open("COM4", 9600, time.Second)
	var openErr *OpenError
	require.ErrorAs(t, err, &openErr)
	require.EqualError(t, err, "opening port COM4: busy")

	_, err = opener.Open("COM5", 9600, time.Second)
	require.Error(t, err)
	require.Equal(t, []MockOpen{
		{Name: "COM3", BaudRate: 9600, ReadTimeout: time.Second},
		{Name: "COM4", BaudRate: 9600, ReadTimeout: time.Second},
		{Name: "COM5", BaudRate: 9600, ReadTimeout: time.Second},
	}, opener.Opened)
}
