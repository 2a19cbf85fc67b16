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

package main

import (
	"context"
	"os"

	"github.com/arduino/arduino-hosttest/cli"
	"github.com/arduino/arduino-hosttest/cli/feedback"
)

func main() {
	hostTestCli := cli.NewCommand()
	if err := hostTestCli.ExecuteContext(context.Background()); err != nil {
		os.Exit(int(feedback.ErrBadArgument))
	}
}
