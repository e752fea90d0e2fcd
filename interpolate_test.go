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
	"math"
	"reflect"
	"testing"

	"github.com/ctessum/sparse"
)

const testTolerance = 1.e-10

func different(a, b, tolerance float64) bool {
	if a == b {
		return false
	}
	if 2*math.Abs(a-b)/math.Abs(a+b) > tolerance || math.IsNaN(a) || math.IsNaN(b) {
		return true
	}
	return false
}

// arange returns a dense array of the given shape filled with 0, 1, 2, ...
func arange(shape ...int) *sparse.DenseArray {
	a := sparse.ZerosDense(shape...)
	for i := range a.Elements {
		a.Elements[i] = float64(i)
	}
	return a
}

// scenarioInterpolator is the 3x4 table with one increasing and one
// decreasing axis.
func scenarioInterpolator(t *testing.T) *Interpolator {
	axes, err := NewAxes([]float64{3, 4, 6}, []float64{15, 10, 5, 1})
	if err != nil {
		t.Fatal(err)
	}
	ip, err := NewInterpolator(arange(3, 4), axes...)
	if err != nil {
		t.Fatal(err)
	}
	return ip
}

func TestRecallScenario(t *testing.T) {
	ip := scenarioInterpolator(t)
	got, err := ip.Recall([][]float64{{4.5, 1.5}}, false)
	if err != nil {
		t.Fatal(err)
	}
	// x index 1.25, y index 2.875; the table value is 4*i + j.
	const want = 7.875
	if len(got) != 1 || len(got[0]) != 1 {
		t.Fatalf("result shape %v", got)
	}
	if different(got[0][0], want, testTolerance) {
		t.Errorf("got %g, want %g", got[0][0], want)
	}
}

func TestRecallGridPoints(t *testing.T) {
	axes, err := NewAxes([]float64{0, 1, 4}, []float64{30, 20, 5, 0}, []float64{-2, 7})
	if err != nil {
		t.Fatal(err)
	}
	lut := sparse.ZerosDense(3, 4, 2, 3)
	for i := range lut.Elements {
		lut.Elements[i] = math.Sin(float64(i)) * 100
	}
	ip, err := NewInterpolator(lut, axes...)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		for j := 0; j < 4; j++ {
			for k := 0; k < 2; k++ {
				x := []float64{axes[0].Value(i), axes[1].Value(j), axes[2].Value(k)}
				got, err := ip.At(x)
				if err != nil {
					t.Fatal(err)
				}
				for c := 0; c < 3; c++ {
					want := lut.Get(i, j, k, c)
					if got[c] != want {
						t.Errorf("(%d,%d,%d) channel %d: got %g, want %g", i, j, k, c, got[c], want)
					}
				}
			}
		}
	}
}

func TestRecallIdempotent(t *testing.T) {
	ip := scenarioInterpolator(t)
	points := [][]float64{{4.5, 1.5}, {3.2, 14}, {10, -3}}
	for _, clip := range []bool{true, false} {
		a, err := ip.Recall(points, clip)
		if err != nil {
			t.Fatal(err)
		}
		b, err := ip.Recall(points, clip)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(a, b) {
			t.Errorf("clip=%v: %v != %v", clip, a, b)
		}
	}
}

func TestRecallClip(t *testing.T) {
	ip := scenarioInterpolator(t)
	tests := []struct {
		outside, edge []float64
	}{
		{outside: []float64{1, 12}, edge: []float64{3, 12}},
		{outside: []float64{9, 12}, edge: []float64{6, 12}},
		{outside: []float64{4.5, 40}, edge: []float64{4.5, 15}},
		{outside: []float64{4.5, -8}, edge: []float64{4.5, 1}},
		{outside: []float64{-100, 100}, edge: []float64{3, 15}},
	}
	for _, test := range tests {
		got, err := ip.Recall([][]float64{test.outside}, true)
		if err != nil {
			t.Fatal(err)
		}
		want, err := ip.Recall([][]float64{test.edge}, false)
		if err != nil {
			t.Fatal(err)
		}
		if different(got[0][0], want[0][0], testTolerance) {
			t.Errorf("%v: got %g, want edge value %g", test.outside, got[0][0], want[0][0])
		}
	}
}

func TestRecallExtrapolate(t *testing.T) {
	// A table sampled from a linear function is extrapolated exactly.
	axes, err := NewAxes([]float64{0, 1, 3}, []float64{10, 5, 0})
	if err != nil {
		t.Fatal(err)
	}
	f := func(x, y float64) float64 { return 2*x - 0.5*y + 1 }
	lut := sparse.ZerosDense(3, 3)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			lut.Set(f(axes[0].Value(i), axes[1].Value(j)), i, j)
		}
	}
	ip, err := NewInterpolator(lut, axes...)
	if err != nil {
		t.Fatal(err)
	}
	for _, p := range [][]float64{{-2, 4}, {5, 12}, {4, -3}, {-1, -1}} {
		got, err := ip.At(p)
		if err != nil {
			t.Fatal(err)
		}
		if want := f(p[0], p[1]); different(got[0], want, 1e-9) {
			t.Errorf("%v: got %g, want %g", p, got[0], want)
		}
	}
}

func TestRecallIndex(t *testing.T) {
	ip := scenarioInterpolator(t)
	tests := []struct {
		idx  []float64
		clip bool
		want float64
	}{
		{idx: []float64{1.25, 2.875}, want: 7.875},
		{idx: []float64{0, 0}, want: 0},
		{idx: []float64{2, 3}, want: 11},
		{idx: []float64{3, 3}, want: 15},
		{idx: []float64{3, 3}, clip: true, want: 11},
		{idx: []float64{-1, 0.5}, clip: true, want: 0.5},
	}
	for _, test := range tests {
		got, err := ip.RecallIndex([][]float64{test.idx}, test.clip)
		if err != nil {
			t.Fatal(err)
		}
		if math.Abs(got[0][0]-test.want) > testTolerance {
			t.Errorf("%v clip=%v: got %g, want %g", test.idx, test.clip, got[0][0], test.want)
		}
	}
}

func TestRecallShapeError(t *testing.T) {
	ip := scenarioInterpolator(t)
	_, err := ip.Recall([][]float64{{1, 2}, {1, 2, 3}}, false)
	se, ok := err.(*ShapeError)
	if !ok {
		t.Fatalf("error %v has type %T; want *ShapeError", err, err)
	}
	if se.Want != 2 || se.Got != 3 {
		t.Errorf("want, got = %d, %d; should be 2, 3", se.Want, se.Got)
	}
	if _, err := ip.RecallIndex([][]float64{{1}}, true); err == nil {
		t.Error("expected an error for a short index point")
	}
	got, err := ip.Recall(nil, false)
	if err != nil || len(got) != 0 {
		t.Errorf("empty batch: got %v, %v", got, err)
	}
}

func TestNewInterpolatorErrors(t *testing.T) {
	a, _ := NewAxis([]float64{1, 2, 3})
	b, _ := NewAxis([]float64{1, 2})
	tests := []struct {
		name string
		lut  *sparse.DenseArray
		axes []*Axis
	}{
		{name: "no axes", lut: arange(3)},
		{name: "too few dimensions", lut: arange(3), axes: []*Axis{a, b}},
		{name: "too many dimensions", lut: arange(3, 2, 2, 2), axes: []*Axis{a, b}},
		{name: "length mismatch", lut: arange(2, 3), axes: []*Axis{a, b}},
		{name: "nil axis", lut: arange(3, 2), axes: []*Axis{a, nil}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if _, err := NewInterpolator(test.lut, test.axes...); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestNewInterpolatorChannels(t *testing.T) {
	axes, err := NewAxes([]float64{3, 4, 6}, []float64{15, 10, 5, 1})
	if err != nil {
		t.Fatal(err)
	}
	c0 := arange(3, 4)
	c1 := arange(3, 4)
	c1.Scale(-2)
	if _, err := NewInterpolatorChannels(axes, c0, nil); err == nil {
		t.Error("expected an error for a nil channel")
	} else if _, ok := err.(*ShapeError); !ok {
		t.Errorf("nil channel error has type %T; want *ShapeError", err)
	}
	ip, err := NewInterpolatorChannels(axes, c0, c1)
	if err != nil {
		t.Fatal(err)
	}
	if ip.Channels() != 2 {
		t.Fatalf("channels = %d; want 2", ip.Channels())
	}
	got, err := ip.At([]float64{4.5, 1.5})
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{7.875, -15.75}
	for i := range want {
		if different(got[i], want[i], testTolerance) {
			t.Errorf("channel %d: got %g, want %g", i, got[i], want[i])
		}
	}

	if _, err := NewInterpolatorChannels(axes, c0, arange(4, 3)); err == nil {
		t.Error("expected an error for mismatched channel shape")
	}
}
