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
	"fmt"
	"regexp"

	"github.com/arduino/arduino-hosttest/device"
	"github.com/arduino/arduino-hosttest/hosttest"
)

func init() {
	register(&TestCase{
		Name:        "expect",
		Description: "Passes when the board output matches --pattern before the timeout.",
		build: func(opts Options) (hosttest.Body, error) {
			if opts.Pattern == "" {
				return nil, fmt.Errorf("the expect test needs a pattern")
			}
			return Expect(opts.Pattern)
		},
	})
}

// Expect returns a body that passes when the board output matches pattern
// within the test timeout.
func Expect(pattern string) (hosttest.Body, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern: %w", err)
	}
	return hosttest.BodyFunc(func(ctx context.Context, r *hosttest.Runner) (bool, error) {
		_, found, err := expectOutput(ctx, r.Device(), re)
		return found, err
	}), nil
}

// expectOutput reads the board output until it matches re or the test
// timeout expires. It returns everything read so far.
func expectOutput(ctx context.Context, dev *device.Controller, re *regexp.Regexp) ([]byte, bool, error) {
	clk := dev.Clock()
	start := clk.Now()
	var res []byte
	buf := make([]byte, hosttest.StreamChunkSize)
	for clk.Since(start) < dev.Timeout() {
		if err := ctx.Err(); err != nil {
			return res, false, err
		}
		n, err := dev.Read(buf)
		res = append(res, buf[:n]...)
		if err != nil {
			return res, false, err
		}
		if re.Match(res) {
			return res, true, nil
		}
	}
	return res, false, nil
}
