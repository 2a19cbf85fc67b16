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

package arguments

import (
	"fmt"
	"time"

	"github.com/arduino/arduino-hosttest/config"
	"github.com/arduino/arduino-hosttest/hosttest"
	"github.com/arduino/go-paths-helper"
	"github.com/spf13/cobra"
)

// Flags contains the connection flags of the board under test.
// This is useful so all flags used by commands that need
// this information are consistent with each other.
type Flags struct {
	Micro      string
	Port       string
	Disk       string
	Extra      string
	Timeout    int
	Baud       int
	ExtraBaud  int
	ConfigFile string
}

// AddToCommand adds the connection flags as persistent flags of the specified Command
func (f *Flags) AddToCommand(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVarP(&f.Micro, "micro", "m", "", "The target microcontroller, e.g.: LPC1768")
	cmd.PersistentFlags().StringVarP(&f.Port, "port", "p", "", "The serial port of the target board, e.g.: COM3, /dev/ttyACM0, tcp://localhost:3333")
	cmd.PersistentFlags().StringVarP(&f.Disk, "disk", "d", "", "The target disk path")
	cmd.PersistentFlags().IntVarP(&f.Timeout, "timeout", "t", 10, "Test timeout in seconds")
	cmd.PersistentFlags().StringVarP(&f.Extra, "extra", "e", "", "Extra serial port (used by some tests)")
	cmd.PersistentFlags().IntVar(&f.Baud, "baud", 9600, "Baud rate of the serial port")
	cmd.PersistentFlags().IntVar(&f.ExtraBaud, "extra-baud", 9600, "Baud rate of the extra serial port")
	cmd.PersistentFlags().StringVar(&f.ConfigFile, "config", "", "YAML file with the default connection parameters")
}

// Params returns the connection parameters. Values read from the
// configuration file are used for the flags not given on the command line.
func (f *Flags) Params(cmd *cobra.Command) (hosttest.Params, error) {
	cfg := &config.Config{}
	if f.ConfigFile != "" {
		var err error
		if cfg, err = config.Load(paths.New(f.ConfigFile)); err != nil {
			return hosttest.Params{}, err
		}
	}

	changed := func(name string) bool {
		return cmd.Flags().Changed(name)
	}
	pickString := func(name, flag, file string) string {
		if changed(name) || file == "" {
			return flag
		}
		return file
	}
	pickInt := func(name string, flag, file int) int {
		if changed(name) || file == 0 {
			return flag
		}
		return file
	}

	params := hosttest.Params{
		Micro:     pickString("micro", f.Micro, cfg.Micro),
		Port:      pickString("port", f.Port, cfg.Port),
		Disk:      pickString("disk", f.Disk, cfg.Disk),
		Extra:     pickString("extra", f.Extra, cfg.Extra),
		Timeout:   time.Duration(pickInt("timeout", f.Timeout, cfg.Timeout)) * time.Second,
		Baud:      pickInt("baud", f.Baud, cfg.Baud),
		ExtraBaud: pickInt("extra-baud", f.ExtraBaud, cfg.ExtraBaud),
	}
	if params.Timeout <= 0 {
		return hosttest.Params{}, fmt.Errorf("invalid timeout: %s", params.Timeout)
	}
	if params.Baud <= 0 || params.ExtraBaud <= 0 {
		return hosttest.Params{}, fmt.Errorf("invalid baud rate")
	}
	return params, nil
}
