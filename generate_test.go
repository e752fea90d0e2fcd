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

package wvlut

import (
	"fmt"
	"math"
	"testing"

	"github.com/Knetic/govaluate"
	"gonum.org/v1/gonum/floats"
)

func TestGenerate(t *testing.T) {
	axes, err := NewAxes([]float64{0, 0.5, 1, 1.5, 2, 2.5, 3}, []float64{0, 1, 2})
	if err != nil {
		t.Fatal(err)
	}
	ip, err := Generate(axes, []string{"x", "y"}, []string{"x * x + y", "3 * y", "pow(x, 2) + exp(0)"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if ip.Channels() != 3 {
		t.Fatalf("channels = %d; want 3", ip.Channels())
	}
	// Same table as quadInterpolator, plus a third channel.
	want := quadInterpolator(t)
	for i := 0; i < 7; i++ {
		for j := 0; j < 3; j++ {
			for c := 0; c < 2; c++ {
				g, w := ip.Table().Get(i, j, c), want.Table().Get(i, j, c)
				if !floats.EqualWithinAbsOrRel(g, w, 1e-12, 1e-12) {
					t.Errorf("(%d,%d) channel %d: got %g, want %g", i, j, c, g, w)
				}
			}
			x := axes[0].Value(i)
			if g := ip.Table().Get(i, j, 2); different(g, x*x+1, 1e-12) {
				t.Errorf("(%d,%d) channel 2: got %g, want %g", i, j, g, x*x+1)
			}
		}
	}
}

func TestGenerateCustomFunction(t *testing.T) {
	axes, err := NewAxes([]float64{1, 2, 4})
	if err != nil {
		t.Fatal(err)
	}
	funcs := map[string]govaluate.ExpressionFunction{
		"cube": func(arg ...interface{}) (interface{}, error) {
			if len(arg) != 1 {
				return nil, fmt.Errorf("cube needs 1 argument")
			}
			return math.Pow(arg[0].(float64), 3), nil
		},
	}
	ip, err := Generate(axes, []string{"wvc"}, []string{"cube(wvc)"}, funcs)
	if err != nil {
		t.Fatal(err)
	}
	got := ip.Table().Elements
	want := []float64{1, 8, 64}
	if !floats.EqualApprox(got, want, 1e-12) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestGenerateErrors(t *testing.T) {
	axes, err := NewAxes([]float64{1, 2}, []float64{3, 4})
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name  string
		names []string
		exprs []string
	}{
		{name: "name count", names: []string{"x"}, exprs: []string{"x"}},
		{name: "repeated name", names: []string{"x", "x"}, exprs: []string{"x"}},
		{name: "no expressions", names: []string{"x", "y"}},
		{name: "undefined variable", names: []string{"x", "y"}, exprs: []string{"x + z"}},
		{name: "parse error", names: []string{"x", "y"}, exprs: []string{"x + (y"}},
		{name: "not a number", names: []string{"x", "y"}, exprs: []string{"x > y"}},
		{name: "wrong argument count", names: []string{"x", "y"}, exprs: []string{"exp(x, y)"}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if _, err := Generate(axes, test.names, test.exprs, nil); err == nil {
				t.Error("expected an error")
			}
		})
	}
}
