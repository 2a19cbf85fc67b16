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

package run

import (
	"fmt"
	"os"
	"strings"

	"github.com/arduino/arduino-hosttest/cli/common"
	"github.com/arduino/arduino-hosttest/cli/feedback"
	"github.com/arduino/arduino-hosttest/testcases"
	"github.com/spf13/cobra"
)

var opts testcases.Options

// NewCommand created a new `run` command
func NewCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "run <test>",
		Short: "Runs a host test against the board.",
		Long: "Resets the board, runs the given host test and prints its result as {success}, {failure} or {error}.\n" +
			"Available tests: " + strings.Join(testcases.Names(), ", "),
		Example: "" +
			"  " + os.Args[0] + " run hello --port COM3\n" +
			"  " + os.Args[0] + " run expect -p /dev/ttyACM0 -t 30 --pattern 'TEST (PASSED|OK)'\n",
		Args:      cobra.ExactArgs(1),
		ValidArgs: testcases.Names(),
		Run:       runTest,
	}
	command.Flags().StringVar(&opts.Pattern, "pattern", "", "Regular expression the board output must match (expect test)")
	command.Flags().IntVar(&opts.Rounds, "rounds", 0, "Number of lines sent to the board (echo test)")
	return command
}

func runTest(cmd *cobra.Command, args []string) {
	tc, ok := testcases.Get(args[0])
	if !ok {
		feedback.Fatal(fmt.Sprintf("Unknown test %s, available tests: %s", args[0], strings.Join(testcases.Names(), ", ")), feedback.ErrBadArgument)
	}
	body, err := tc.Body(opts)
	if err != nil {
		feedback.Fatal(fmt.Sprintf("Invalid options for test %s: %s", tc.Name, err), feedback.ErrBadArgument)
	}

	r := common.NewRunner(cmd)
	common.Setup(r)
	res := r.Run(cmd.Context(), body)
	r.Close()
	os.Exit(int(common.ExitCode(res)))
}
