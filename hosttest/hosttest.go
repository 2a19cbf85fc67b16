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

// Package hosttest runs host driven tests against a board attached to a
// serial port and reports the verdict in a format that test orchestrators
// can pick out of the serial output.
//
// A run goes through the following states:
//
//	Constructed -> Ready -> Initialized -> Running -> Reported
//
// New validates the parameters (Ready), Setup opens and resets the board
// (Initialized) and Run executes a Body and reports its Result exactly once.
package hosttest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"syscall"

	"code.cloudfoundry.org/clock"
	"github.com/arduino/arduino-hosttest/device"
	"github.com/arduino/arduino-hosttest/serialport"
	"github.com/sirupsen/logrus"
)

var (
	// ErrNoPort is returned by New when no serial port is given.
	ErrNoPort = errors.New("the serial port of the target board has to be provided")
	// ErrAlreadyReported is returned by a second Run on the same Runner.
	ErrAlreadyReported = errors.New("result already reported")
)

// State is the lifecycle state of a Runner.
type State int

const (
	Constructed State = iota
	Ready
	Initialized
	Running
	Reported
)

func (s State) String() string {
	switch s {
	case Constructed:
		return "constructed"
	case Ready:
		return "ready"
	case Initialized:
		return "initialized"
	case Running:
		return "running"
	case Reported:
		return "reported"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Body is the scripted part of a test. It returns true if the test passed,
// false if it failed and an error if it could not be carried out.
type Body interface {
	Test(ctx context.Context, r *Runner) (bool, error)
}

// BodyFunc adapts a function to Body.
type BodyFunc func(ctx context.Context, r *Runner) (bool, error)

// Test implements Body.
func (f BodyFunc) Test(ctx context.Context, r *Runner) (bool, error) {
	return f(ctx, r)
}

// Runner runs a single test against a board.
type Runner struct {
	params Params
	out    io.Writer
	opener serialport.Opener
	clock  clock.Clock
	dev    *device.Controller
	state  State
}

// Option configures a Runner.
type Option func(*Runner)

// WithOutput sets where the run is reported. Defaults to os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(r *Runner) {
		r.out = w
	}
}

// WithOpener sets how serial ports are opened.
func WithOpener(o serialport.Opener) Option {
	return func(r *Runner) {
		r.opener = o
	}
}

// WithClock sets the clock used while waiting for the board.
func WithClock(clk clock.Clock) Option {
	return func(r *Runner) {
		r.clock = clk
	}
}

// New validates params and prepares a run. No port is opened until Setup.
func New(params Params, opts ...Option) (*Runner, error) {
	r := &Runner{
		out:    os.Stdout,
		opener: serialport.SystemOpener{},
		clock:  clock.NewClock(),
		state:  Constructed,
	}
	for _, opt := range opts {
		opt(r)
	}
	if params.Port == "" {
		return nil, ErrNoPort
	}
	r.params = params.withDefaults()
	r.dev = device.New(r.opener, r.params.Port, r.params.Extra, r.params.Timeout, device.WithClock(r.clock))
	r.state = Ready

	disk := r.params.Disk
	if disk == "" {
		disk = "None"
	}
	r.Notify(fmt.Sprintf(`Mbed: "%s" "%s"`, r.params.Port, disk))
	checkDisk(r.params.Disk)
	return r, nil
}

// Setup opens the serial ports and resets the board.
func (r *Runner) Setup() error {
	if err := r.dev.Open(r.params.Baud, r.params.ExtraBaud); err != nil {
		return err
	}
	r.dev.Reset()
	r.state = Initialized
	logrus.Debugf("Board on %s initialized", r.params.Port)
	return nil
}

// Run executes body and reports its Result. The result is written only once:
// further calls return an error Result without writing anything.
func (r *Runner) Run(ctx context.Context, body Body) Result {
	if r.state == Reported {
		return Result{Outcome: Error, Message: ErrAlreadyReported.Error()}
	}
	r.state = Running
	res := r.execute(ctx, body)
	r.report(res)
	return res
}

func (r *Runner) execute(ctx context.Context, body Body) (res Result) {
	defer func() {
		if p := recover(); p != nil {
			res = Result{Outcome: Error, Message: fmt.Sprint(p)}
		}
	}()
	passed, err := body.Test(ctx, r)
	switch {
	case err != nil:
		return Result{Outcome: Error, Message: err.Error()}
	case passed:
		return Result{Outcome: Success}
	default:
		return Result{Outcome: Failure}
	}
}

func (r *Runner) report(res Result) {
	logrus.WithField("outcome", res.Outcome).Info("Test completed")
	if err := res.writeTo(r.out); err != nil {
		logrus.Errorf("Writing test result: %s", err)
	}
	r.flush()
	r.state = Reported
	if res.Outcome != Success {
		logDiskFailure(r.params.Disk)
	}
}

// Notify prints a line on the output and flushes it.
func (r *Runner) Notify(msg string) {
	fmt.Fprintln(r.out, msg)
	r.flush()
}

func (r *Runner) flush() {
	var err error
	switch w := r.out.(type) {
	case interface{ Flush() error }:
		err = w.Flush()
	case interface{ Sync() error }:
		err = w.Sync()
		// pipes and terminals can't be synced, and don't need it
		if errors.Is(err, syscall.EINVAL) || errors.Is(err, syscall.ENOTSUP) {
			err = nil
		}
	}
	if err != nil {
		logrus.Errorf("Flushing output: %s", err)
	}
}

// Device returns the controller of the board under test.
func (r *Runner) Device() *device.Controller {
	return r.dev
}

// Params returns the connection parameters, defaults included.
func (r *Runner) Params() Params {
	return r.params
}

// State returns the current state of the run.
func (r *Runner) State() State {
	return r.state
}

// Close releases the serial ports.
func (r *Runner) Close() error {
	return r.dev.Close()
}
