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

	"github.com/ctessum/sparse"
)

// Interpolator performs multilinear interpolation on a lookup table with
// one axis per table dimension and an optional trailing dimension of
// output channels. An Interpolator is not modified after creation and can
// be used concurrently.
type Interpolator struct {
	axes []*Axis
	lut  *sparse.DenseArray

	shape   []int // axis lengths
	strides []int // grid point strides for each axis
	nch     int   // number of output channels
}

// NewInterpolator creates an interpolator for lut. lut must either have one
// dimension per axis, in which case the table has a single output channel,
// or one extra trailing dimension holding the output channels. The length
// of each axis must match the corresponding dimension of lut. lut is
// not copied and should not be changed afterwards.
func NewInterpolator(lut *sparse.DenseArray, axes ...*Axis) (*Interpolator, error) {
	if len(axes) == 0 {
		return nil, &AxisError{Axis: -1, Reason: "a lookup table needs at least one axis"}
	}
	if lut == nil {
		return nil, fmt.Errorf("wvlut: lookup table is nil")
	}
	ip := &Interpolator{axes: axes, lut: lut}
	switch len(lut.Shape) {
	case len(axes):
		ip.nch = 1
	case len(axes) + 1:
		ip.nch = lut.Shape[len(axes)]
	default:
		return nil, &ShapeError{What: "lookup table dimensions", Want: len(axes), Got: len(lut.Shape)}
	}
	if ip.nch < 1 {
		return nil, &ShapeError{What: "lookup table channel dimension", Want: 1, Got: ip.nch}
	}
	ip.shape = make([]int, len(axes))
	for i, a := range axes {
		if a == nil {
			return nil, &AxisError{Axis: i, Reason: "axis is nil"}
		}
		if a.Len() != lut.Shape[i] {
			return nil, &ShapeError{What: fmt.Sprintf("axis %d", i), Want: lut.Shape[i], Got: a.Len()}
		}
		ip.shape[i] = a.Len()
	}
	ip.strides = make([]int, len(axes))
	n := 1
	for i := len(axes) - 1; i >= 0; i-- {
		ip.strides[i] = n
		n *= ip.shape[i]
	}
	if len(lut.Elements) != n*ip.nch {
		return nil, &ShapeError{What: "lookup table data", Want: n * ip.nch, Got: len(lut.Elements)}
	}
	return ip, nil
}

// NewInterpolatorChannels creates an interpolator from one array per output
// channel. Each array must have one dimension per axis. The channels
// are copied into a single table with a trailing channel dimension.
func NewInterpolatorChannels(axes []*Axis, channels ...*sparse.DenseArray) (*Interpolator, error) {
	if len(channels) == 0 {
		return nil, &ShapeError{What: "channel list", Want: 1, Got: 0}
	}
	shape := make([]int, len(axes)+1)
	for i, a := range axes {
		if a == nil {
			return nil, &AxisError{Axis: i, Reason: "axis is nil"}
		}
		shape[i] = a.Len()
	}
	shape[len(axes)] = len(channels)
	lut := sparse.ZerosDense(shape...)
	nch := len(channels)
	for c, ch := range channels {
		if ch == nil {
			return nil, &ShapeError{What: fmt.Sprintf("channel %d dimensions", c), Want: len(axes), Got: 0}
		}
		if len(ch.Shape) != len(axes) {
			return nil, &ShapeError{What: fmt.Sprintf("channel %d dimensions", c), Want: len(axes), Got: len(ch.Shape)}
		}
		for i, n := range ch.Shape {
			if n != shape[i] {
				return nil, &ShapeError{What: fmt.Sprintf("channel %d dimension %d", c, i), Want: shape[i], Got: n}
			}
		}
		if len(ch.Elements)*nch != len(lut.Elements) {
			return nil, &ShapeError{What: fmt.Sprintf("channel %d data", c), Want: len(lut.Elements) / nch, Got: len(ch.Elements)}
		}
		for i, v := range ch.Elements {
			lut.Elements[i*nch+c] = v
		}
	}
	return NewInterpolator(lut, axes...)
}

// Axes returns the table axes.
func (ip *Interpolator) Axes() []*Axis { return ip.axes }

// Channels returns the number of output channels.
func (ip *Interpolator) Channels() int { return ip.nch }

// Points returns the number of grid points, not counting channels.
func (ip *Interpolator) Points() int {
	n := 1
	for _, s := range ip.shape {
		n *= s
	}
	return n
}

// Table returns the underlying table. It should not be modified.
func (ip *Interpolator) Table() *sparse.DenseArray { return ip.lut }

// Recall interpolates the table at each of the given coordinate points,
// returning one row of channel values per point. Each point must have one
// coordinate per axis, otherwise a *ShapeError is returned.
//
// If clip is true, each coordinate is clamped into the range of its axis
// before being mapped to an index, so points outside the table take the
// value at the table edge. Otherwise values are extrapolated linearly from
// the outermost grid cell.
func (ip *Interpolator) Recall(points [][]float64, clip bool) ([][]float64, error) {
	if err := ip.checkPoints(points); err != nil {
		return nil, err
	}
	o := make([][]float64, len(points))
	idx := make([]float64, len(ip.axes))
	for p, x := range points {
		for i, a := range ip.axes {
			idx[i] = a.Index(x[i], clip)
		}
		o[p] = make([]float64, ip.nch)
		ip.interpolate(idx, o[p])
	}
	return o, nil
}

// RecallIndex is like Recall, but the points are given as fractional grid
// indices rather than coordinates. If clip is true, each index is clamped
// into [0, n-1], where n is the length of its axis.
func (ip *Interpolator) RecallIndex(points [][]float64, clip bool) ([][]float64, error) {
	if err := ip.checkPoints(points); err != nil {
		return nil, err
	}
	o := make([][]float64, len(points))
	idx := make([]float64, len(ip.axes))
	for p, x := range points {
		copy(idx, x)
		if clip {
			for i, n := range ip.shape {
				idx[i] = math.Max(0, math.Min(float64(n-1), idx[i]))
			}
		}
		o[p] = make([]float64, ip.nch)
		ip.interpolate(idx, o[p])
	}
	return o, nil
}

// At returns the channel values at a single coordinate point without
// clipping.
func (ip *Interpolator) At(x []float64) ([]float64, error) {
	o, err := ip.Recall([][]float64{x}, false)
	if err != nil {
		return nil, err
	}
	return o[0], nil
}

func (ip *Interpolator) checkPoints(points [][]float64) error {
	for p, x := range points {
		if len(x) != len(ip.axes) {
			return &ShapeError{What: fmt.Sprintf("point %d", p), Want: len(ip.axes), Got: len(x)}
		}
	}
	return nil
}

// interpolate sums the weighted values of the 2^N grid cell corners
// surrounding the fractional index idx into out. Indices outside the grid
// use the outermost cell, which extrapolates linearly.
func (ip *Interpolator) interpolate(idx, out []float64) {
	n := len(ip.shape)
	lo := make([]int, n)
	t := make([]float64, n)
	for i, x := range idx {
		l := int(math.Floor(x))
		if l < 0 {
			l = 0
		} else if l > ip.shape[i]-2 {
			l = ip.shape[i] - 2
		}
		lo[i] = l
		t[i] = x - float64(l)
	}
	for c := range out {
		out[c] = 0
	}
	for corner := 0; corner < 1<<uint(n); corner++ {
		w := 1.
		offset := 0
		for i := 0; i < n; i++ {
			if corner&(1<<uint(i)) != 0 {
				w *= t[i]
				offset += (lo[i] + 1) * ip.strides[i]
			} else {
				w *= 1 - t[i]
				offset += lo[i] * ip.strides[i]
			}
		}
		if w == 0 {
			continue
		}
		vals := ip.lut.Elements[offset*ip.nch : (offset+1)*ip.nch]
		for c, v := range vals {
			out[c] += w * v
		}
	}
}
