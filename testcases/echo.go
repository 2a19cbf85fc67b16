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
	"math/rand"
	"regexp"

	"github.com/arduino/arduino-hosttest/hosttest"
)

const (
	defaultEchoRounds = 5
	echoTokenLength   = 16
	echoAlphabet      = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

func init() {
	register(&TestCase{
		Name:        "echo",
		Description: "Sends random lines to the board and expects them echoed back.",
		build: func(opts Options) (hosttest.Body, error) {
			rounds := opts.Rounds
			if rounds <= 0 {
				rounds = defaultEchoRounds
			}
			return &echo{rounds: rounds, rand: rand.New(rand.NewSource(rand.Int63()))}, nil
		},
	})
}

type echo struct {
	rounds int
	rand   *rand.Rand
}

func (e *echo) token() string {
	b := make([]byte, echoTokenLength)
	for i := range b {
		b[i] = echoAlphabet[e.rand.Intn(len(echoAlphabet))]
	}
	return string(b)
}

func (e *echo) Test(ctx context.Context, r *hosttest.Runner) (bool, error) {
	dev := r.Device()
	for i := 0; i < e.rounds; i++ {
		token := e.token()
		if _, err := dev.Write([]byte(token + "\n")); err != nil {
			return false, fmt.Errorf("sending %s: %w", token, err)
		}
		out, found, err := expectOutput(ctx, dev, regexp.MustCompile(regexp.QuoteMeta(token)))
		if err != nil {
			return false, err
		}
		if !found {
			r.Notify(fmt.Sprintf("Expected %s, got %s", token, out))
			return false, nil
		}
	}
	return true, nil
}
