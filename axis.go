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
	"sort"

	"gonum.org/v1/gonum/floats"
)

// Axis holds the sample coordinates of one lookup table dimension.
// The coordinates are either strictly increasing or strictly decreasing.
type Axis struct {
	values []float64

	// keys are the values negated when the axis is decreasing, so that
	// they are always increasing and can be binary-searched.
	keys       []float64
	decreasing bool
}

// NewAxis creates an axis from the given sample coordinates. An error
// of type *AxisError is returned if there are fewer than two values,
// any value is not finite, or the values are neither strictly increasing
// nor strictly decreasing. The values are copied.
func NewAxis(values []float64) (*Axis, error) {
	if len(values) < 2 {
		return nil, &AxisError{Axis: -1, Reason: "an axis needs at least two points"}
	}
	if floats.HasNaN(values) {
		return nil, &AxisError{Axis: -1, Reason: "axis contains NaN"}
	}
	for _, v := range values {
		if math.IsInf(v, 0) {
			return nil, &AxisError{Axis: -1, Reason: "axis contains an infinite value"}
		}
	}
	a := &Axis{
		values:     append([]float64(nil), values...),
		keys:       append([]float64(nil), values...),
		decreasing: values[1] < values[0],
	}
	if a.decreasing {
		floats.Scale(-1, a.keys)
	}
	for i := 1; i < len(a.keys); i++ {
		if !(a.keys[i] > a.keys[i-1]) {
			return nil, &AxisError{Axis: -1, Reason: "axis is neither strictly increasing nor strictly decreasing"}
		}
	}
	return a, nil
}

// NewAxes creates one axis for each of the given coordinate slices. Any
// error is an *AxisError identifying the position of the bad axis.
func NewAxes(values ...[]float64) ([]*Axis, error) {
	axes := make([]*Axis, len(values))
	for i, v := range values {
		a, err := NewAxis(v)
		if err != nil {
			err.(*AxisError).Axis = i
			return nil, err
		}
		axes[i] = a
	}
	return axes, nil
}

// Len returns the number of sample points.
func (a *Axis) Len() int { return len(a.values) }

// Value returns sample point i.
func (a *Axis) Value(i int) float64 { return a.values[i] }

// Values returns a copy of the sample points in their original order.
func (a *Axis) Values() []float64 { return append([]float64(nil), a.values...) }

// Decreasing returns whether the sample points decrease with index.
func (a *Axis) Decreasing() bool { return a.decreasing }

// Min returns the smallest sample point, which is the last one for a
// decreasing axis.
func (a *Axis) Min() float64 {
	if a.decreasing {
		return a.values[len(a.values)-1]
	}
	return a.values[0]
}

// Max returns the largest sample point, which is the first one for a
// decreasing axis.
func (a *Axis) Max() float64 {
	if a.decreasing {
		return a.values[0]
	}
	return a.values[len(a.values)-1]
}

// Clamp limits v to the range [Min, Max].
func (a *Axis) Clamp(v float64) float64 {
	return math.Max(a.Min(), math.Min(a.Max(), v))
}

// Index returns the fractional index of coordinate v by piecewise-linear
// inverse interpolation between the sample points. If clip is true, v is
// first clamped to [Min, Max]; otherwise coordinates outside the axis are
// extrapolated from the outermost segment, and the returned index can lie
// outside [0, Len()-1].
func (a *Axis) Index(v float64, clip bool) float64 {
	if clip {
		v = a.Clamp(v)
	}
	if a.decreasing {
		v = -v
	}
	// i is the lower point of the segment used for interpolation.
	i := sort.SearchFloat64s(a.keys, v) - 1
	if i < 0 {
		i = 0
	} else if i > len(a.keys)-2 {
		i = len(a.keys) - 2
	}
	return float64(i) + (v-a.keys[i])/(a.keys[i+1]-a.keys[i])
}

// Indices returns the fractional indices of each coordinate in vs.
// See Index for the meaning of clip.
func (a *Axis) Indices(vs []float64, clip bool) []float64 {
	o := make([]float64, len(vs))
	for i, v := range vs {
		o[i] = a.Index(v, clip)
	}
	return o
}

// Step returns the finite-difference half width for sample point i:
// half of the distance to the nearer neighbouring sample, or half of the
// distance to the only neighbour for the first and last points.
func (a *Axis) Step(i int) float64 {
	n := len(a.keys)
	switch {
	case i == 0:
		return (a.keys[1] - a.keys[0]) / 2
	case i == n-1:
		return (a.keys[n-1] - a.keys[n-2]) / 2
	default:
		return math.Min(a.keys[i]-a.keys[i-1], a.keys[i+1]-a.keys[i]) / 2
	}
}
