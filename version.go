/*
Copyright © 2026 the buoyingest authors.
This file is part of buoyingest.

buoyingest is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

buoyingest is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with buoyingest.  If not, see <http://www.gnu.org/licenses/>.
*/

package buoyingest

import (
	"os"
	"os/exec"
	"strings"
	"sync"
)

// Version is the buoyingest release version.
const Version = "0.1.0"

var (
	codeVersionOnce sync.Once
	codeVersion     string
)

// CodeVersion resolves the version of the processing code that is recorded
// in the code_version attribute of every output dataset. The CODE_VERSION
// environment variable takes precedence; otherwise the version is read from
// the source-control tags of the working directory, and if neither is
// available the compiled-in release version is used. The value is resolved
// once per process.
func CodeVersion() string {
	codeVersionOnce.Do(func() {
		if v := os.Getenv("CODE_VERSION"); v != "" {
			codeVersion = v
			return
		}
		out, err := exec.Command("git", "describe", "--tags").Output()
		if err == nil {
			if v := strings.TrimSpace(string(out)); v != "" {
				codeVersion = v
				return
			}
		}
		codeVersion = "v" + Version
	})
	return codeVersion
}
