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
	"bytes"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"
)

// MockPort is a scripted Port. Each entry passed to NewMockPort is returned by
// one Read call; a nil entry stands for a read that timed out.
// Counters must be read once the port is no longer in use.
type MockPort struct {
	mu     sync.Mutex
	reads  [][]byte
	closed bool

	// Written collects everything written to the port.
	Written bytes.Buffer
	// ReadTimeout is the last timeout set on the port.
	ReadTimeout time.Duration

	InputFlushes  int
	OutputFlushes int
	Breaks        int
	ClearBreaks   int

	// BreakErr and ClearBreakErr are returned by Break and ClearBreak.
	BreakErr      error
	ClearBreakErr error
	// ReadErr, if set, is returned once the script is exhausted.
	ReadErr error
	// OnDrained is called every time a Read finds the script exhausted.
	OnDrained func()
	// OnWrite, if set, is called with every chunk written to the port and may
	// queue the device reply with Push.
	OnWrite func(m *MockPort, p []byte)
}

var _ Port = (*MockPort)(nil)

// NewMockPort creates a MockPort that will return reads in order.
func NewMockPort(reads ...[]byte) *MockPort {
	return &MockPort{reads: reads}
}

// Push queues more data to be read.
func (m *MockPort) Push(reads ...[]byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reads = append(m.reads, reads...)
}

func (m *MockPort) Read(p []byte) (int, error) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return 0, io.EOF
	}
	if len(m.reads) == 0 {
		onDrained, err := m.OnDrained, m.ReadErr
		m.mu.Unlock()
		if onDrained != nil {
			onDrained()
		}
		return 0, err
	}
	chunk := m.reads[0]
	n := copy(p, chunk)
	if n < len(chunk) {
		m.reads[0] = chunk[n:]
	} else {
		m.reads = m.reads[1:]
	}
	m.mu.Unlock()
	return n, nil
}

func (m *MockPort) Write(p []byte) (int, error) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return 0, io.ErrClosedPipe
	}
	m.Written.Write(p)
	onWrite := m.OnWrite
	m.mu.Unlock()
	if onWrite != nil {
		onWrite(m, p)
	}
	return len(p), nil
}

func (m *MockPort) SetReadTimeout(t time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ReadTimeout = t
	return nil
}

func (m *MockPort) ResetInputBuffer() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.InputFlushes++
	return nil
}

func (m *MockPort) ResetOutputBuffer() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.OutputFlushes++
	return nil
}

func (m *MockPort) Break(time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Breaks++
	return m.BreakErr
}

func (m *MockPort) ClearBreak() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ClearBreaks++
	return m.ClearBreakErr
}

func (m *MockPort) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return errors.New("port already closed")
	}
	m.closed = true
	return nil
}

// Closed reports whether Close has been called.
func (m *MockPort) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// MockOpener hands out MockPorts by name.
type MockOpener struct {
	Ports map[string]*MockPort
	// Errs makes Open fail for the given names.
	Errs map[string]error
	// Opened records every Open call, in order.
	Opened []MockOpen
}

// MockOpen is a recorded MockOpener.Open call.
type MockOpen struct {
	Name        string
	BaudRate    int
	ReadTimeout time.Duration
}

var _ Opener = (*MockOpener)(nil)

// Open implements Opener.
func (o *MockOpener) Open(name string, baudRate int, readTimeout time.Duration) (Port, error) {
	o.Opened = append(o.Opened, MockOpen{Name: name, BaudRate: baudRate, ReadTimeout: readTimeout})
	if err, ok := o.Errs[name]; ok {
		return nil, &OpenError{Name: name, Err: err}
	}
	port, ok := o.Ports[name]
	if !ok {
		return nil, &OpenError{Name: name, Err: fmt.Errorf("no such port")}
	}
	if err := port.SetReadTimeout(readTimeout); err != nil {
		return nil, &OpenError{Name: name, Err: err}
	}
	return port, nil
}
