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

package stream

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/arduino/arduino-hosttest/cli/common"
	"github.com/arduino/arduino-hosttest/cli/feedback"
	"github.com/spf13/cobra"
)

// NewCommand created a new `stream` command
func NewCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "stream",
		Short:   "Prints the board output.",
		Long:    "Resets the board and prints everything it sends on the serial port until interrupted with CTRL+c.",
		Example: "  " + os.Args[0] + " stream --port COM3 --baud 115200",
		Args:    cobra.NoArgs,
		Run:     Run,
	}
}

// Run streams the board output, it is also the default action of the root command
func Run(cmd *cobra.Command, args []string) {
	r := common.NewRunner(cmd)
	defer r.Close()
	common.Setup(r)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := r.Stream(ctx); err != nil {
		r.Close()
		feedback.FatalError(err, feedback.ErrTestError)
	}
}
