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

package common

import (
	"bufio"
	"errors"
	"os"

	"github.com/arduino/arduino-hosttest/cli/feedback"
	"github.com/arduino/arduino-hosttest/cli/globals"
	"github.com/arduino/arduino-hosttest/config"
	"github.com/arduino/arduino-hosttest/hosttest"
	"github.com/arduino/arduino-hosttest/serialport"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// NewRunner builds the runner for the board given on the command line,
// exits if the connection flags are not valid
func NewRunner(cmd *cobra.Command) *hosttest.Runner {
	params, err := globals.Connection.Params(cmd)
	if err != nil {
		feedback.FatalError(err, argumentsExitCode(err))
	}
	logrus.Debugf("micro: %s, port: %s, disk: %s, extra: %s, timeout: %s", params.Micro, params.Port, params.Disk, params.Extra, params.Timeout)

	r, err := hosttest.New(params, hosttest.WithOutput(bufio.NewWriter(os.Stdout)))
	if err != nil {
		feedback.FatalError(err, feedback.ErrBadArgument)
	}
	return r
}

// Setup opens the serial port and resets the board, exits if the serial
// port can't be opened
func Setup(r *hosttest.Runner) {
	if err := r.Setup(); err != nil {
		feedback.FatalError(err, setupExitCode(err))
	}
}

func argumentsExitCode(err error) feedback.ExitCode {
	var notFound *config.NotFoundError
	var invalid *config.InvalidError
	if errors.As(err, &notFound) || errors.As(err, &invalid) {
		return feedback.ErrNoConfigFile
	}
	return feedback.ErrBadArgument
}

func setupExitCode(err error) feedback.ExitCode {
	var openErr *serialport.OpenError
	if errors.As(err, &openErr) {
		return feedback.ErrTransport
	}
	return feedback.ErrTestError
}

// ExitCode returns the exit code reporting res
func ExitCode(res hosttest.Result) feedback.ExitCode {
	switch res.Outcome {
	case hosttest.Success:
		return feedback.Success
	case hosttest.Failure:
		return feedback.ErrTestFailure
	default:
		return feedback.ErrTestError
	}
}
