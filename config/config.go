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

// Package config loads the default connection parameters of a test station
// from a YAML file, so that they don't have to be repeated on every run.
//
// Example:
//
//	micro: LPC1768
//	port: /dev/ttyACM0
//	disk: /media/MBED
//	timeout: 20
//	baud: 115200
package config

import (
	"fmt"

	"github.com/arduino/go-paths-helper"
	"gopkg.in/yaml.v3"
)

// NotFoundError is returned when the configuration file does not exist.
type NotFoundError struct {
	Path *paths.Path
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("configuration file %s not found", e.Path)
}

// InvalidError is returned when the configuration file can't be parsed or
// holds invalid values.
type InvalidError struct {
	Path *paths.Path
	Err  error
}

func (e *InvalidError) Error() string {
	return fmt.Sprintf("invalid configuration file %s: %s", e.Path, e.Err)
}

func (e *InvalidError) Unwrap() error {
	return e.Err
}

// Config holds the values read from the configuration file.
type Config struct {
	Micro string `yaml:"micro"`
	Port  string `yaml:"port"`
	Disk  string `yaml:"disk"`
	Extra string `yaml:"extra"`
	// Timeout is in seconds.
	Timeout   int `yaml:"timeout"`
	Baud      int `yaml:"baud"`
	ExtraBaud int `yaml:"extra_baud"`
}

// Load reads the configuration file at path.
func Load(path *paths.Path) (*Config, error) {
	if !path.Exist() {
		return nil, &NotFoundError{Path: path}
	}
	data, err := path.ReadFile()
	if err != nil {
		return nil, fmt.Errorf("reading configuration file: %w", err)
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, &InvalidError{Path: path, Err: err}
	}
	if cfg.Timeout < 0 {
		return nil, &InvalidError{Path: path, Err: fmt.Errorf("invalid timeout: %d", cfg.Timeout)}
	}
	return cfg, nil
}
