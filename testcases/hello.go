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

package testcases

import (
	"context"
	"regexp"

	"github.com/arduino/arduino-hosttest/hosttest"
)

var helloWorld = regexp.MustCompile(`(?m)^Hello World\r?\n`)

func init() {
	register(&TestCase{
		Name:        "hello",
		Description: "Passes when the board prints a \"Hello World\" line.",
		build: func(Options) (hosttest.Body, error) {
			return hosttest.BodyFunc(hello), nil
		},
	})
}

func hello(ctx context.Context, r *hosttest.Runner) (bool, error) {
	out, found, err := expectOutput(ctx, r.Device(), helloWorld)
	if err != nil {
		return false, err
	}
	if !found {
		r.Notify("Expected \"Hello World\", got: " + string(out))
	}
	return found, nil
}
