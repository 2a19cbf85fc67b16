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
	"context"
	"fmt"
)

// StreamChunkSize is the size of each read while streaming.
const StreamChunkSize = 512

// Stream relays the raw output of the board until ctx is done. It does not
// report a Result. The board must have been set up already.
func (r *Runner) Stream(ctx context.Context) error {
	buf := make([]byte, StreamChunkSize)
	for {
		select {
		case <-ctx.Done():
			r.Notify("\n[CTRL+c] exit")
			return nil
		default:
		}

		n, err := r.dev.Read(buf)
		if n > 0 || err == nil {
			if _, werr := r.out.Write(buf[:n]); werr != nil {
				return fmt.Errorf("writing board output: %w", werr)
			}
			r.flush()
		}
		if err != nil {
			return fmt.Errorf("reading from %s: %w", r.params.Port, err)
		}
	}
}
