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

// Package testcases contains the host tests that can be run from the command line.
package testcases

import (
	"fmt"

	"github.com/arduino/arduino-hosttest/hosttest"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Options are the command line options available to test cases.
type Options struct {
	// Pattern is the regular expression matched by the expect test.
	Pattern string
	// Rounds is the number of exchanges made by the echo test.
	Rounds int
}

// TestCase is a named host test.
type TestCase struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	build       func(opts Options) (hosttest.Body, error)
}

// Body builds the test body with the given options.
func (tc *TestCase) Body(opts Options) (hosttest.Body, error) {
	return tc.build(opts)
}

var registry = map[string]*TestCase{}

func register(tc *TestCase) {
	if _, ok := registry[tc.Name]; ok {
		panic(fmt.Sprintf("test case %s registered twice", tc.Name))
	}
	registry[tc.Name] = tc
}

// Get returns the test case with the given name.
func Get(name string) (*TestCase, bool) {
	tc, ok := registry[name]
	return tc, ok
}

// Names returns the names of all the test cases, sorted.
func Names() []string {
	names := maps.Keys(registry)
	slices.Sort(names)
	return names
}

// All returns all the test cases sorted by name.
func All() []*TestCase {
	res := []*TestCase{}
	for _, name := range Names() {
		res = append(res, registry[name])
	}
	return res
}
