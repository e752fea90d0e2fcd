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
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/kr/pretty"
	"github.com/lnashier/viper"
)

func TestParseAxis(t *testing.T) {
	tests := []struct {
		in      string
		want    []float64
		wantErr bool
	}{
		{in: "1 2 4", want: []float64{1, 2, 4}},
		{in: " 0:1:5 ", want: []float64{0, 0.25, 0.5, 0.75, 1}},
		{in: "3:1:3", want: []float64{3, 2, 1}},
		{in: "0:1", wantErr: true},
		{in: "0:1:1", wantErr: true},
		{in: "a:1:3", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, test := range tests {
		t.Run(test.in, func(t *testing.T) {
			got, err := parseAxis(test.in)
			if (err != nil) != test.wantErr {
				t.Fatalf("error: %v, wantErr: %v", err, test.wantErr)
			}
			if !reflect.DeepEqual(got, test.want) {
				t.Errorf("%v != %v", got, test.want)
			}
		})
	}
}

func TestParseFloats(t *testing.T) {
	got, err := parseFloats("1.5  -2 3e2")
	if err != nil {
		t.Fatal(err)
	}
	if want := []float64{1.5, -2, 300}; !reflect.DeepEqual(got, want) {
		t.Errorf("%v != %v", got, want)
	}
	if _, err := parseFloats("1 x"); err == nil {
		t.Error("expected an error for a non-numeric value")
	}
}

func TestToIntSliceE(t *testing.T) {
	tests := []struct {
		in   interface{}
		want []int
	}{
		{in: nil, want: nil},
		{in: "", want: nil},
		{in: "[]", want: nil},
		{in: "[2,0]", want: []int{2, 0}},
		{in: "1,2", want: []int{1, 2}},
		{in: []int{3}, want: []int{3}},
		{in: []interface{}{1, 2}, want: []int{1, 2}},
	}
	for i, test := range tests {
		got, err := toIntSliceE(test.in)
		if err != nil {
			t.Errorf("%d: %v", i, err)
			continue
		}
		if !reflect.DeepEqual(got, test.want) {
			t.Errorf("%d: %v != %v", i, got, test.want)
		}
	}
	if _, err := toIntSliceE("[a]"); err == nil {
		t.Error("expected an error")
	}
}

func TestParseSteps(t *testing.T) {
	cfg := viper.New()
	cfg.Set("Jacobian.Steps", `{"0":"0.01","2":"1e-3"}`)
	got, err := parseSteps(cfg)
	if err != nil {
		t.Fatal(err)
	}
	want := map[int]float64{0: 0.01, 2: 0.001}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("%v", pretty.Diff(got, want))
	}

	cfg.Set("Jacobian.Steps", map[string]interface{}{"1": 0.5})
	if got, err = parseSteps(cfg); err != nil {
		t.Fatal(err)
	}
	if want := map[int]float64{1: 0.5}; !reflect.DeepEqual(got, want) {
		t.Errorf("%v", pretty.Diff(got, want))
	}

	cfg.Set("Jacobian.Steps", `{"x":"1"}`)
	if _, err = parseSteps(cfg); err == nil {
		t.Error("expected an error for a non-integer axis")
	}
}

func TestCheckOutputFile(t *testing.T) {
	dir, err := ioutilTempDir(t)
	if err != nil {
		t.Fatal(err)
	}
	os.Setenv("WVLUT_TEST_DIR", dir)
	defer os.Unsetenv("WVLUT_TEST_DIR")

	f, err := checkOutputFile("${WVLUT_TEST_DIR}/a/b/out.nc")
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(dir, "a", "b", "out.nc"); f != want {
		t.Errorf("%s != %s", f, want)
	}
	if _, err := os.Stat(filepath.Join(dir, "a", "b")); err != nil {
		t.Errorf("output directory was not created: %v", err)
	}
	if f, err = checkOutputFile("gs://bucket/out.nc"); err != nil || f != "gs://bucket/out.nc" {
		t.Errorf("blob path: %s, %v", f, err)
	}
	if _, err = checkOutputFile(""); err == nil {
		t.Error("expected an error for an empty path")
	}
}

func TestGenerateConfigFromViper(t *testing.T) {
	dir, err := ioutilTempDir(t)
	if err != nil {
		t.Fatal(err)
	}
	cfg := viper.New()
	cfg.Set("Generate.AxisNames", []string{"a", "b"})
	cfg.Set("Generate.Axes", []string{"0:1:3", "5 4"})
	cfg.Set("Generate.Expressions", []string{"a+b"})
	cfg.Set("LUTFile", filepath.Join(dir, "lut.nc"))
	c, err := GenerateConfigFromViper(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if len(c.Axes) != 2 || c.Axes[0].Len() != 3 || !c.Axes[1].Decreasing() {
		t.Errorf("unexpected axes: %# v", pretty.Formatter(c.Axes))
	}

	cfg.Set("Generate.Axes", []string{"0:1:3"})
	if _, err := GenerateConfigFromViper(cfg); err == nil {
		t.Error("expected an error for mismatched axis names")
	}
}

func TestQuicklookConfigFromViper(t *testing.T) {
	dir, err := ioutilTempDir(t)
	if err != nil {
		t.Fatal(err)
	}
	cfg := viper.New()
	cfg.Set("LUTFile", "lut.nc")
	cfg.Set("Quicklook.Output", filepath.Join(dir, "ql.png"))
	c, err := QuicklookConfigFromViper(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if c.Options.Point != nil {
		t.Errorf("point should be empty: %v", c.Options.Point)
	}
	cfg.Set("Quicklook.Output", filepath.Join(dir, "ql.jpg"))
	if _, err := QuicklookConfigFromViper(cfg); err == nil {
		t.Error("expected an error for a non-png output")
	}
}
