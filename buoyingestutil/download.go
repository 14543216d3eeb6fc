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
	"io"
	"io/ioutil"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cenkalti/backoff"
)

// maybeDownload checks if the input is an existing file locally. If not, it
// checks if it is an http(s) URL, and if so downloads it with retries and
// returns the path to the downloaded file. Anything else is returned
// unchanged so the file handler can report the missing file itself.
// c, if not nil, is a channel across which error and logging messages will
// be sent.
func maybeDownload(path string, c chan string) string {
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return path
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return downloadHTTP(path, c)
	}
	return path
}

// downloadHTTP downloads a file from the specified URL and returns the path
// to the downloaded file. Transient failures are retried with exponential
// backoff.
func downloadHTTP(path string, c chan string) string {
	dir, err := ioutil.TempDir("", "buoyingest")
	if err != nil {
		panic(fmt.Errorf("buoyingestutil: failed creating temporary download directory: %v", err))
	}
	out := filepath.Join(dir, filepath.Base(path))

	get := func() error {
		resp, err := http.Get(path)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("downloading %s: %s", path, resp.Status)
		}
		w, err := os.Create(out)
		if err != nil {
			return err
		}
		if _, err := io.Copy(w, resp.Body); err != nil {
			w.Close()
			return err
		}
		return w.Close()
	}
	err = backoff.RetryNotify(get, backoff.NewExponentialBackOff(),
		func(err error, d time.Duration) {
			if c != nil {
				c <- fmt.Sprintf("retrying download of %s in %s: %v", path, d, err)
			}
		})
	if err != nil {
		if c != nil {
			c <- err.Error()
		}
		return path
	}
	return out
}
