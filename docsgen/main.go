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

// Package main generates Markdown documentation for the arduino-hosttest CLI.
package main

import (
	"fmt"
	"os"

	"github.com/arduino/arduino-hosttest/cli"
	"github.com/spf13/cobra/doc"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "error: Please provide the output folder argument")
		os.Exit(1)
	}

	if err := os.MkdirAll(os.Args[1], 0755); err != nil {
		fmt.Fprintf(os.Stderr, "error: creating %s: %s\n", os.Args[1], err)
		os.Exit(1)
	}

	hostTestCli := cli.NewCommand()
	hostTestCli.DisableAutoGenTag = true // Disable addition of auto-generated date stamp
	if err := doc.GenMarkdownTree(hostTestCli, os.Args[1]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(1)
	}
}
