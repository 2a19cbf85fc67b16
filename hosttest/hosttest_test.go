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
	"bytes"
	"context"
	"errors"
	"strings"
	"syscall"
	"testing"
	"time"

	"code.cloudfoundry.org/clock/fakeclock"
	"github.com/arduino/arduino-hosttest/device"
	"github.com/arduino/arduino-hosttest/serialport"
	"github.com/arduino/go-paths-helper"
	"github.com/google/go-cmp/cmp"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

type harness struct {
	out    *bytes.Buffer
	opener *serialport.MockOpener
	clock  *fakeclock.FakeClock
}

func newHarness(names ...string) *harness {
	h := &harness{
		out:    new(bytes.Buffer),
		opener: &serialport.MockOpener{Ports: map[string]*serialport.MockPort{}},
		clock:  fakeclock.NewFakeClock(time.Unix(0, 0)),
	}
	for _, name := range names {
		h.opener.Ports[name] = serialport.NewMockPort()
	}
	return h
}

func (h *harness) new(t *testing.T, params Params) *Runner {
	r, err := New(params, WithOutput(h.out), WithOpener(h.opener), WithClock(h.clock))
	require.NoError(t, err)
	return r
}

// setup runs r.Setup advancing the fake clock past the reset settle time.
func (h *harness) setup(t *testing.T, r *Runner) {
	done := make(chan error, 1)
	go func() { done <- r.Setup() }()
	h.clock.WaitForWatcherAndIncrement(device.ResetSettleTime)
	require.NoError(t, <-done)
}

func TestNewRequiresPort(t *testing.T) {
	h := newHarness("COM3")
	r, err := New(Params{Micro: "LPC1768"}, WithOutput(h.out), WithOpener(h.opener))
	require.ErrorIs(t, err, ErrNoPort)
	require.Nil(t, r)
	require.Empty(t, h.opener.Opened)
	require.Empty(t, h.out.String())
}

func TestNewDefaults(t *testing.T) {
	h := newHarness()
	r := h.new(t, Params{Port: "COM3"})
	require.Equal(t, Ready, r.State())
	require.Equal(t, DefaultTimeout, r.Params().Timeout)
	require.Equal(t, 9600, r.Params().Baud)
	require.Equal(t, 9600, r.Params().ExtraBaud)
	require.Equal(t, DefaultTimeout, r.Device().Timeout())
	require.Empty(t, h.opener.Opened, "construction opens nothing")
}

func TestStartupLineWithDisk(t *testing.T) {
	h := newHarness()
	disk := t.TempDir()
	h.new(t, Params{Port: "/dev/ttyACM0", Disk: disk, Timeout: 5 * time.Second})
	require.Equal(t, `Mbed: "/dev/ttyACM0" "`+disk+`"`+"\n", h.out.String())
}

func TestRunSuccessScenario(t *testing.T) {
	h := newHarness("COM3")
	r := h.new(t, Params{Port: "COM3"})
	defer r.Close()
	h.setup(t, r)
	require.Equal(t, Initialized, r.State())

	res := r.Run(context.Background(), BodyFunc(func(context.Context, *Runner) (bool, error) {
		return true, nil
	}))
	require.Equal(t, Result{Outcome: Success}, res)
	require.Equal(t, Reported, r.State())

	expected := "Mbed: \"COM3\" \"None\"\n" +
		"\n" +
		"{success}\n" +
		"{end}\n"
	if diff := cmp.Diff(expected, h.out.String()); diff != "" {
		t.Errorf("unexpected output (-want +got):\n%s", diff)
	}

	port := h.opener.Ports["COM3"]
	require.Equal(t, 1, port.Breaks)
	require.Equal(t, 1, port.InputFlushes)
	require.Equal(t, 1, port.OutputFlushes)
}

func TestRunOutcomes(t *testing.T) {
	testcases := []struct {
		name     string
		body     BodyFunc
		expected Result
		record   string
	}{
		{
			name:     "Pass",
			body:     func(context.Context, *Runner) (bool, error) { return true, nil },
			expected: Result{Outcome: Success},
			record:   "\n{success}\n{end}\n",
		},
		{
			name:     "Fail",
			body:     func(context.Context, *Runner) (bool, error) { return false, nil },
			expected: Result{Outcome: Failure},
			record:   "\n{failure}\n{end}\n",
		},
		{
			name:     "Error",
			body:     func(context.Context, *Runner) (bool, error) { return true, errors.New("board not responding") },
			expected: Result{Outcome: Error, Message: "board not responding"},
			record:   "board not responding\n\n{error}\n{end}\n",
		},
		{
			name:     "Panic",
			body:     func(context.Context, *Runner) (bool, error) { panic("index out of range") },
			expected: Result{Outcome: Error, Message: "index out of range"},
			record:   "index out of range\n\n{error}\n{end}\n",
		},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness("COM3")
			r := h.new(t, Params{Port: "COM3"})
			defer r.Close()
			h.out.Reset()

			res := r.Run(context.Background(), tc.body)
			require.Equal(t, tc.expected, res)
			require.Equal(t, tc.record, h.out.String())
			require.Equal(t, 1, strings.Count(h.out.String(), "{end}"))
		})
	}
}

func TestRunReportsOnce(t *testing.T) {
	h := newHarness("COM3")
	r := h.new(t, Params{Port: "COM3"})
	calls := 0
	body := BodyFunc(func(context.Context, *Runner) (bool, error) {
		calls++
		return false, nil
	})
	r.Run(context.Background(), body)
	out := h.out.String()

	res := r.Run(context.Background(), body)
	require.Equal(t, Error, res.Outcome)
	require.Equal(t, ErrAlreadyReported.Error(), res.Message)
	require.Equal(t, 1, calls)
	require.Equal(t, out, h.out.String())
}

func TestBodyTalksToBoard(t *testing.T) {
	h := newHarness("COM3")
	port := h.opener.Ports["COM3"]
	port.OnWrite = func(m *serialport.MockPort, p []byte) { m.Push(bytes.ToUpper(p)) }
	r := h.new(t, Params{Port: "COM3"})
	defer r.Close()
	h.setup(t, r)

	res := r.Run(context.Background(), BodyFunc(func(ctx context.Context, r *Runner) (bool, error) {
		r.Notify("sending ping")
		if _, err := r.Device().Write([]byte("ping")); err != nil {
			return false, err
		}
		buf := make([]byte, 16)
		n, err := r.Device().Read(buf)
		if err != nil {
			return false, err
		}
		return string(buf[:n]) == "PING", nil
	}))
	require.Equal(t, Success, res.Outcome)
	require.Contains(t, h.out.String(), "sending ping\n")
}

func TestSetupOpenFailure(t *testing.T) {
	h := newHarness()
	h.opener.Errs = map[string]error{"COM3": errors.New("no such file or directory")}
	r := h.new(t, Params{Port: "COM3"})

	err := r.Setup()
	var openErr *serialport.OpenError
	require.ErrorAs(t, err, &openErr)
	require.Equal(t, Ready, r.State())
	require.NotContains(t, h.out.String(), "{end}")
}

func TestSetupFlushesExtraPort(t *testing.T) {
	h := newHarness("COM3", "COM4")
	r := h.new(t, Params{Port: "COM3", Extra: "COM4", ExtraBaud: 115200})
	defer r.Close()
	h.setup(t, r)

	require.Equal(t, 1, h.opener.Ports["COM4"].InputFlushes)
	require.Equal(t, 1, h.opener.Ports["COM4"].OutputFlushes)
	require.Zero(t, h.opener.Ports["COM4"].Breaks, "only the main port is reset")
	require.Equal(t, 115200, h.opener.Opened[1].BaudRate)
}

func TestSetupSurvivesBreakFault(t *testing.T) {
	h := newHarness("COM3")
	port := h.opener.Ports["COM3"]
	port.BreakErr = errors.New("broken pipe")
	port.ClearBreakErr = errors.New("broken pipe")
	r := h.new(t, Params{Port: "COM3"})
	defer r.Close()
	h.setup(t, r)

	res := r.Run(context.Background(), BodyFunc(func(context.Context, *Runner) (bool, error) {
		return true, nil
	}))
	require.Equal(t, Success, res.Outcome)
}

func TestCloseReleasesPorts(t *testing.T) {
	h := newHarness("COM3", "COM4")
	r := h.new(t, Params{Port: "COM3", Extra: "COM4"})
	h.setup(t, r)
	require.NoError(t, r.Close())
	require.True(t, h.opener.Ports["COM3"].Closed())
	require.True(t, h.opener.Ports["COM4"].Closed())
}

// captureLogs records the entries of the standard logger until the end of the test.
func captureLogs(t *testing.T) *logtest.Hook {
	hook := logtest.NewGlobal()
	t.Cleanup(func() { logrus.StandardLogger().ReplaceHooks(make(logrus.LevelHooks)) })
	return hook
}

func TestFailFileOnDisk(t *testing.T) {
	logs := captureLogs(t)
	disk := paths.New(t.TempDir())
	require.NoError(t, disk.Join(failFile).WriteFile([]byte("SWD ERROR\n")))

	h := newHarness("COM3")
	r := h.new(t, Params{Port: "COM3", Disk: disk.String()})
	h.out.Reset()
	res := r.Run(context.Background(), BodyFunc(func(context.Context, *Runner) (bool, error) {
		return false, nil
	}))
	require.Equal(t, Failure, res.Outcome)
	require.Equal(t, "\n{failure}\n{end}\n", h.out.String(), "FAIL.TXT is only logged")

	entry := logs.LastEntry()
	require.NotNil(t, entry)
	require.Equal(t, logrus.WarnLevel, entry.Level)
	require.Contains(t, entry.Message, "SWD ERROR")
	require.Equal(t, disk.Join(failFile).String(), entry.Data["file"])
}

func TestFailFileIgnoredOnSuccess(t *testing.T) {
	logs := captureLogs(t)
	disk := paths.New(t.TempDir())
	require.NoError(t, disk.Join(failFile).WriteFile([]byte("SWD ERROR\n")))

	h := newHarness("COM3")
	r := h.new(t, Params{Port: "COM3", Disk: disk.String()})
	r.Run(context.Background(), BodyFunc(func(context.Context, *Runner) (bool, error) {
		return true, nil
	}))
	for _, entry := range logs.AllEntries() {
		require.NotContains(t, entry.Message, "SWD ERROR")
	}
}

// syncWriter is an unbuffered output, like an *os.File.
type syncWriter struct {
	bytes.Buffer
	err   error
	syncs int
}

func (w *syncWriter) Sync() error {
	w.syncs++
	return w.err
}

func TestFlushSyncErrors(t *testing.T) {
	testcases := []struct {
		name   string
		err    error
		logged bool
	}{
		{"Synced", nil, false},
		{"Pipe", syscall.EINVAL, false},
		{"Terminal", syscall.ENOTSUP, false},
		{"DiskFull", syscall.ENOSPC, true},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			logs := captureLogs(t)
			out := &syncWriter{err: tc.err}
			r, err := New(Params{Port: "COM3"}, WithOutput(out), WithOpener(&serialport.MockOpener{}))
			require.NoError(t, err)
			logs.Reset()

			r.Notify("hello")
			require.Equal(t, 2, out.syncs)
			require.Contains(t, out.String(), "hello\n")
			if !tc.logged {
				require.Empty(t, logs.AllEntries())
				return
			}
			require.Len(t, logs.AllEntries(), 1)
			require.Equal(t, logrus.ErrorLevel, logs.LastEntry().Level)
			require.Contains(t, logs.LastEntry().Message, tc.err.Error())
		})
	}
}
