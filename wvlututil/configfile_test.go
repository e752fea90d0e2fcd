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
	"reflect"
	"testing"

	"github.com/kr/pretty"
	"github.com/lnashier/viper"
)

func TestWriteConfig(t *testing.T) {
	Cfg.Set("Generate.Expressions", []string{"x+y", "x*z"})
	Cfg.Set("Jacobian.XIdx", "[2,0]")
	Cfg.Set("Jacobian.Steps", `{"1":"0.05"}`)
	Cfg.Set("Quicklook.Samples", 25)
	defer func() {
		Cfg.Set("Jacobian.XIdx", "[]")
		Cfg.Set("Jacobian.Steps", "{}")
	}()

	b := bytes.NewBuffer(nil)
	if err := WriteConfig(b, Cfg); err != nil {
		t.Fatal(err)
	}

	cfg := viper.New()
	cfg.SetConfigType("toml")
	if err := cfg.ReadConfig(bytes.NewReader(b.Bytes())); err != nil {
		t.Fatalf("%v\n%s", err, b)
	}
	if got, want := cfg.GetStringSlice("Generate.Expressions"), []string{"x+y", "x*z"}; !reflect.DeepEqual(got, want) {
		t.Errorf("expressions: %v", pretty.Diff(got, want))
	}
	xidx, err := toIntSliceE(cfg.Get("Jacobian.XIdx"))
	if err != nil {
		t.Fatal(err)
	}
	if want := []int{2, 0}; !reflect.DeepEqual(xidx, want) {
		t.Errorf("xidx: %v != %v", xidx, want)
	}
	steps, err := parseSteps(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if want := map[int]float64{1: 0.05}; !reflect.DeepEqual(steps, want) {
		t.Errorf("steps: %v", pretty.Diff(steps, want))
	}
	if s := cfg.GetInt("Quicklook.Samples"); s != 25 {
		t.Errorf("samples: %d != 25", s)
	}
	if cfg.IsSet("config") {
		t.Error("the config option should not be written")
	}
}
