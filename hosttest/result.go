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

package hosttest

import (
	"fmt"
	"io"
)

// Outcome is the verdict of a single-shot run.
type Outcome string

const (
	Success Outcome = "success"
	Failure Outcome = "failure"
	Error   Outcome = "error"
)

// Result is the record reported at the end of a run. Message is only set
// for the Error outcome.
type Result struct {
	Outcome Outcome `json:"outcome"`
	Message string  `json:"message,omitempty"`
}

func (r Result) String() string {
	if r.Message == "" {
		return string(r.Outcome)
	}
	return fmt.Sprintf("%s: %s", r.Outcome, r.Message)
}

// writeTo writes the record in the format expected by the test orchestrator:
// the error message on its own line, then the outcome token and {end}.
func (r Result) writeTo(w io.Writer) error {
	if r.Outcome == Error {
		if _, err := fmt.Fprintln(w, r.Message); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "\n{%s}\n{end}\n", r.Outcome)
	return err
}
