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
	"strings"

	"github.com/arduino/go-paths-helper"
	"github.com/sirupsen/logrus"
)

// failFile is written by the interface firmware of the board on its mass
// storage when something went wrong while loading the image.
const failFile = "FAIL.TXT"

// checkDisk warns if the disk of the board is not mounted. The disk is not
// used by the harness yet, so this is not fatal.
func checkDisk(disk string) {
	if disk == "" {
		return
	}
	if isDir, err := paths.New(disk).IsDirCheck(); err != nil {
		logrus.Warnf("Board disk %s not available: %s", disk, err)
	} else if !isDir {
		logrus.Warnf("Board disk %s is not a directory", disk)
	}
}

// logDiskFailure reports the content of FAIL.TXT, if the board left one.
func logDiskFailure(disk string) {
	if disk == "" {
		return
	}
	fail := paths.New(disk).Join(failFile)
	if !fail.Exist() {
		return
	}
	data, err := fail.ReadFile()
	if err != nil {
		logrus.Warnf("Reading %s: %s", fail, err)
		return
	}
	logrus.WithField("file", fail.String()).Warnf("Board reported: %s", strings.TrimSpace(string(data)))
}
