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
	"bytes"
	"encoding/json"
	"html/template"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
)

func TestConfigHandler(t *testing.T) {
	dir, err := ioutilTempDir(t)
	if err != nil {
		t.Fatal(err)
	}
	cfgFile := filepath.Join(dir, "wvlut.toml")
	if err := ioutil.WriteFile(cfgFile, []byte("[Quicklook]\nTitle = \"from file\"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	defer Root.PersistentFlags().Set("config", "")

	srv := httptest.NewServer(http.HandlerFunc(configHandler))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/setConfig?config=" + url.QueryEscape(cfgFile))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %s", resp.Status)
	}
	var config map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&config); err != nil {
		t.Fatal(err)
	}
	if title := config["Quicklook.Title"]; title != "from file" {
		t.Errorf("Quicklook.Title = %v", title)
	}
	if _, ok := config["Generate.Axes"]; !ok {
		t.Error("all options should be returned")
	}
}

func TestConfigHandlerMissingFile(t *testing.T) {
	defer Root.PersistentFlags().Set("config", "")
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/setConfig?config="+url.QueryEscape("/does/not/exist.toml"), nil)
	configHandler(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Errorf("status %d", rec.Code)
	}
}

func TestGUITemplate(t *testing.T) {
	tmpl := template.Must(template.New("").Parse(guiTemplate))
	b := bytes.NewBuffer(nil)
	if err := tmpl.Execute(b, template.HTML(`<div data-name="config"><input></div>`)); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{`data-name="config"`, "/setConfig?config="} {
		if !strings.Contains(b.String(), want) {
			t.Errorf("page should contain %q", want)
		}
	}
}
