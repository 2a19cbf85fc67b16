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

package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

const application = "arduino-hosttest"

var (
	defaultVersionString = "0.0.0-git"
	// set with -ldflags "-X github.com/arduino/arduino-hosttest/version.versionString=..."
	versionString = ""
	commit        = ""
	date          = ""
	// VersionInfo contains info regarding the version
	VersionInfo *info
)

type info struct {
	Application   string `json:"Application"`
	VersionString string `json:"VersionString"`
	Commit        string `json:"Commit"`
	Date          string `json:"Date"`
	GoVersion     string `json:"GoVersion"`
}

func newInfo(application string) *info {
	i := &info{
		Application:   application,
		VersionString: versionString,
		Commit:        commit,
		Date:          date,
		GoVersion:     runtime.Version(),
	}
	if i.VersionString == "" {
		i.VersionString = defaultVersionString
	}
	// development builds: take commit and date from the VCS stamp
	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, s := range bi.Settings {
			switch {
			case s.Key == "vcs.revision" && i.Commit == "":
				i.Commit = s.Value
			case s.Key == "vcs.time" && i.Date == "":
				i.Date = s.Value
			}
		}
	}
	return i
}

func (i *info) String() string {
	return fmt.Sprintf("%s Version: %s Commit: %s Date: %s", i.Application, i.VersionString, i.Commit, i.Date)
}

// Data implements feedback.Result interface
func (i *info) Data() interface{} {
	return i
}

func init() {
	VersionInfo = newInfo(application)
}
