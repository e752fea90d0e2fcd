/*
Copyright © 2026 the WV-LUT authors.
This file is part of WV-LUT.

WV-LUT is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

WV-LUT is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with WV-LUT.  If not, see <http://www.gnu.org/licenses/>.
*/

package wvlututil

import (
	"io/ioutil"
	"os"
	"testing"

	"github.com/sirupsen/logrus"
)

// ioutilTempDir creates a temporary directory that is removed when the
// test finishes.
func ioutilTempDir(t *testing.T) (string, error) {
	dir, err := ioutil.TempDir("", "wvlututil_test")
	if err != nil {
		return "", err
	}
	t.Cleanup(func() { os.RemoveAll(dir) })
	return dir, nil
}

type testWriter struct{ t *testing.T }

func (w testWriter) Write(b []byte) (int, error) {
	w.t.Log(string(b))
	return len(b), nil
}

// helperLog returns a logger that writes to the test log.
func helperLog(t *testing.T) logrus.FieldLogger {
	l := newLogger(testWriter{t: t})
	l.SetLevel(logrus.DebugLevel)
	return l
}
