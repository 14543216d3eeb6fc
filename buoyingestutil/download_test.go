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

package buoyingestutil

import (
	"fmt"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"testing"
)

func helperLog(t *testing.T) chan string {
	outChan := make(chan string)
	go func() {
		for msg := range outChan {
			t.Log(msg)
		}
	}()
	return outChan
}

func TestMaybeDownloadLocal(t *testing.T) {
	if k := maybeDownload("/dev/null", helperLog(t)); k != "/dev/null" {
		t.Error("Expected /dev/null, got ", k)
	}
}

func TestMaybeDownloadNonexistent(t *testing.T) {
	if k := maybeDownload("/blah/test.csv", helperLog(t)); k != "/blah/test.csv" {
		t.Error("Expected /blah/test.csv, got ", k)
	}
}

func TestMaybeDownloadRemote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "Time (UTC),Surface Temperature (C)\n2020-01-01 00:00:00,14.2\n")
	}))
	defer srv.Close()

	local := maybeDownload(srv.URL+"/buoy.z05.surfacetemp.csv", helperLog(t))
	if local == srv.URL+"/buoy.z05.surfacetemp.csv" {
		t.Fatal("the remote file should have been downloaded to a local path")
	}
	b, err := ioutil.ReadFile(local)
	if err != nil {
		t.Fatal(err)
	}
	if len(b) == 0 {
		t.Error("the downloaded file should not be empty")
	}
}
