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

package cli

import (
	"io"
	"os"
	"strings"

	"github.com/arduino/arduino-hosttest/cli/feedback"
	"github.com/arduino/arduino-hosttest/cli/globals"
	"github.com/arduino/arduino-hosttest/cli/list"
	"github.com/arduino/arduino-hosttest/cli/run"
	"github.com/arduino/arduino-hosttest/cli/stream"
	"github.com/arduino/arduino-hosttest/cli/version"
	v "github.com/arduino/arduino-hosttest/version"
	"github.com/mattn/go-colorable"
	"github.com/rifflock/lfshook"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	outputFormat string
	logFile      string
	logFormat    string
)

// NewCommand creates the root command. Run without a subcommand it streams
// the output of the board.
func NewCommand() *cobra.Command {
	hostTestCli := &cobra.Command{
		Use:   "arduino-hosttest",
		Short: "Host driven tests for boards attached to a serial port.",
		Long: "arduino-hosttest resets a board through its serial port, then streams its output\n" +
			"or runs a host test and reports {success}, {failure} or {error}.",
		Example:          "  " + os.Args[0] + " <command> [flags...]",
		Args:             cobra.NoArgs,
		Run:              stream.Run,
		PersistentPreRun: preRun,
	}

	hostTestCli.AddCommand(version.NewCommand())
	hostTestCli.AddCommand(run.NewCommand())
	hostTestCli.AddCommand(stream.NewCommand())
	hostTestCli.AddCommand(list.NewCommand())

	globals.Connection.AddToCommand(hostTestCli)

	hostTestCli.PersistentFlags().StringVar(&outputFormat, "format", "text", "The output format, can be {text|json}.")

	hostTestCli.PersistentFlags().StringVar(&logFile, "log-file", "", "Path to the file where logs will be written")
	hostTestCli.PersistentFlags().StringVar(&logFormat, "log-format", "", "The output format for the logs, can be {text|json}.")
	hostTestCli.PersistentFlags().StringVar(&globals.LogLevel, "log-level", "info", "Messages with this level and above will be logged. Valid levels are: trace, debug, info, warn, error, fatal, panic")
	hostTestCli.PersistentFlags().BoolVarP(&globals.Verbose, "verbose", "v", false, "Print the logs on the standard error.")

	return hostTestCli
}

// Convert the string passed to the `--log-level` option to the corresponding
// logrus formal level.
func toLogLevel(s string) (t logrus.Level, found bool) {
	t, found = map[string]logrus.Level{
		"trace": logrus.TraceLevel,
		"debug": logrus.DebugLevel,
		"info":  logrus.InfoLevel,
		"warn":  logrus.WarnLevel,
		"error": logrus.ErrorLevel,
		"fatal": logrus.FatalLevel,
		"panic": logrus.PanicLevel,
	}[s]

	return
}

func preRun(cmd *cobra.Command, args []string) {
	// Prepare logging, stdout is reserved to the board output
	if globals.Verbose {
		logrus.SetOutput(colorable.NewColorableStderr())
		logrus.SetFormatter(&logrus.TextFormatter{
			ForceColors: term.IsTerminal(int(os.Stderr.Fd())),
		})
	} else {
		logrus.SetOutput(io.Discard)
	}

	// Normalize the format strings
	logFormat = strings.ToLower(logFormat)
	if logFormat == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}

	if logFile != "" {
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			feedback.Fatal("Unable to open file for logging: "+logFile, feedback.ErrBadArgument)
		}

		// Use a hook so we don't get color codes in the log file
		if logFormat == "json" {
			logrus.AddHook(lfshook.NewHook(file, &logrus.JSONFormatter{}))
		} else {
			logrus.AddHook(lfshook.NewHook(file, &logrus.TextFormatter{}))
		}
	}

	// Configure logging filter
	if lvl, found := toLogLevel(globals.LogLevel); !found {
		feedback.Fatal("Invalid option for --log-level: "+globals.LogLevel, feedback.ErrBadArgument)
	} else {
		logrus.SetLevel(lvl)
	}

	//
	// Prepare the Feedback system
	//

	// normalize the format strings
	outputFormat = strings.ToLower(outputFormat)
	// check the right output format was passed
	format, found := feedback.ParseOutputFormat(outputFormat)
	if !found {
		feedback.Fatal("Invalid output format: "+outputFormat, feedback.ErrBadArgument)
	}

	// use the output format to configure the Feedback
	feedback.SetFormat(format)

	logrus.Info(v.VersionInfo)
}
