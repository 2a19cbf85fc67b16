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

package list

import (
	"os"

	"github.com/arduino/arduino-cli/table"
	"github.com/arduino/arduino-hosttest/cli/feedback"
	"github.com/arduino/arduino-hosttest/testcases"
	"github.com/spf13/cobra"
)

// NewCommand created a new `list` command
func NewCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Short:   "List available host tests",
		Long:    "Displays the host tests that can be passed to the run command.",
		Example: "  " + os.Args[0] + " list --format json",
		Args:    cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			feedback.PrintResult(TestCaseListResult(testcases.All()))
		},
	}
}

// TestCaseListResult is the list of available host tests
type TestCaseListResult []*testcases.TestCase

// Data implements feedback.Result interface
func (l TestCaseListResult) Data() interface{} {
	return l
}

func (l TestCaseListResult) String() string {
	if len(l) == 0 {
		return "No host tests available."
	}
	t := table.New()
	t.SetHeader("Name", "Description")
	for _, tc := range l {
		t.AddRow(tc.Name, tc.Description)
	}
	return t.Render()
}
