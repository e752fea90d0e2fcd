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
	"runtime"
	"sync"

	"github.com/ctessum/sparse"
	"gonum.org/v1/gonum/mat"
)

// JacobianLUT holds the partial derivatives of every output channel of a
// lookup table with respect to a subset of its axes, at every grid point
// of the table.
type JacobianLUT struct {
	// Axes are the axes of the source table.
	Axes []*Axis

	// XIdx are the indices of the differentiated axes, in output order.
	// It is nil when all axes were differentiated.
	XIdx []int

	// NY is the number of output channels and NX the number of
	// differentiated axes.
	NY, NX int

	// Data has the shape of the source grid plus a trailing dimension of
	// length NY*NX. Entry iy*NX+ix of the trailing dimension is the
	// derivative of channel iy with respect to axis XIdx[ix].
	Data *sparse.DenseArray
}

// Indices returns the indices of the differentiated axes.
func (j *JacobianLUT) Indices() []int {
	if j.XIdx != nil {
		return j.XIdx
	}
	return allAxes(len(j.Axes))
}

// At returns the stored Jacobian at the grid point with the given per-axis
// indices as an NY x NX matrix. It panics if the number of indices does
// not match the number of axes or an index is out of range.
func (j *JacobianLUT) At(index ...int) *mat.Dense {
	if len(index) != len(j.Axes) {
		panic(fmt.Errorf("wvlut: JacobianLUT.At got %d indices for %d axes", len(index), len(j.Axes)))
	}
	for i, ix := range index {
		if ix < 0 || ix >= j.Axes[i].Len() {
			panic(fmt.Errorf("wvlut: JacobianLUT.At index %d out of range [0, %d) on axis %d", ix, j.Axes[i].Len(), i))
		}
	}
	n := j.NY * j.NX
	offset := 0
	stride := n
	for i := len(j.Axes) - 1; i >= 0; i-- {
		offset += index[i] * stride
		stride *= j.Axes[i].Len()
	}
	return mat.NewDense(j.NY, j.NX, append([]float64(nil), j.Data.Elements[offset:offset+n]...))
}

func allAxes(n int) []int {
	o := make([]int, n)
	for i := range o {
		o[i] = i
	}
	return o
}

// JacobianOption configures BuildJacobian.
type JacobianOption func(*jacobianConfig)

type jacobianConfig struct {
	progress func(done, total int)
	workers  int
	steps    map[int]float64
}

// WithProgress sets a function that is called after each grid point is
// finished with the number of finished points and the total number of
// points. Calls are not concurrent.
func WithProgress(f func(done, total int)) JacobianOption {
	return func(c *jacobianConfig) { c.progress = f }
}

// WithWorkers sets the number of goroutines used to build the Jacobian.
// The default is runtime.GOMAXPROCS(0).
func WithWorkers(n int) JacobianOption {
	return func(c *jacobianConfig) { c.workers = n }
}

// WithStep overrides the finite-difference half width for the given axis,
// which is otherwise half of the spacing to the nearer neighbouring sample.
func WithStep(axis int, dx float64) JacobianOption {
	return func(c *jacobianConfig) { c.steps[axis] = dx }
}

// BuildJacobian computes the Jacobian of the table in ip with respect to
// the axes listed in xidx, or all axes if xidx is empty.
//
// At each grid point x and for each selected axis, the table is evaluated
// at x-dx and x+dx along that axis, each clamped to the axis range, and
// the derivative is the central difference of the two. If clamping leaves
// no distance between the two points, the derivative is zero.
//
// Grid points are split among worker goroutines; each writes only its
// own points of the output.
func BuildJacobian(ip *Interpolator, xidx []int, opts ...JacobianOption) (*JacobianLUT, error) {
	c := &jacobianConfig{
		workers: runtime.GOMAXPROCS(0),
		steps:   make(map[int]float64),
	}
	for _, o := range opts {
		o(c)
	}
	if c.workers < 1 {
		c.workers = 1
	}

	nAxes := len(ip.axes)
	var stored []int
	if len(xidx) > 0 {
		seen := make(map[int]bool)
		for _, x := range xidx {
			if x < 0 || x >= nAxes {
				return nil, &AxisError{Axis: x, Reason: fmt.Sprintf("differentiation axis out of range [0, %d)", nAxes)}
			}
			if seen[x] {
				return nil, &AxisError{Axis: x, Reason: "differentiation axis repeated"}
			}
			seen[x] = true
		}
		stored = append([]int(nil), xidx...)
	}
	for axis, dx := range c.steps {
		if axis < 0 || axis >= nAxes {
			return nil, &AxisError{Axis: axis, Reason: "step override for a nonexistent axis"}
		}
		if !(dx > 0) {
			return nil, &AxisError{Axis: axis, Reason: fmt.Sprintf("step override %g should be > 0", dx)}
		}
	}

	j := &JacobianLUT{
		Axes: ip.axes,
		XIdx: stored,
		NY:   ip.nch,
	}
	axes := j.Indices()
	j.NX = len(axes)
	shape := append(append([]int(nil), ip.shape...), j.NY*j.NX)
	j.Data = sparse.ZerosDense(shape...)

	total := ip.Points()
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		done    int
		errs    = make([]error, c.workers)
		nprocs  = c.workers
		perCell = j.NY * j.NX
	)
	wg.Add(nprocs)
	for pp := 0; pp < nprocs; pp++ {
		go func(pp int) {
			defer wg.Done()
			index := make([]int, nAxes)
			x := make([]float64, nAxes)
			xm := make([]float64, nAxes)
			xp := make([]float64, nAxes)
			for ii := pp; ii < total; ii += nprocs {
				unravel(ii, ip.shape, index)
				for i, a := range ip.axes {
					x[i] = a.Value(index[i])
				}
				out := j.Data.Elements[ii*perCell : (ii+1)*perCell]
				for k, ax := range axes {
					a := ip.axes[ax]
					dx, ok := c.steps[ax]
					if !ok {
						dx = a.Step(index[ax])
					}
					copy(xm, x)
					copy(xp, x)
					xm[ax] = a.Clamp(x[ax] - dx)
					xp[ax] = a.Clamp(x[ax] + dx)
					width := xp[ax] - xm[ax]
					if width == 0 {
						for iy := 0; iy < j.NY; iy++ {
							out[iy*j.NX+k] = 0
						}
						continue
					}
					fm, err := ip.At(xm)
					if err != nil {
						errs[pp] = err
						return
					}
					fp, err := ip.At(xp)
					if err != nil {
						errs[pp] = err
						return
					}
					for iy := 0; iy < j.NY; iy++ {
						out[iy*j.NX+k] = (fp[iy] - fm[iy]) / width
					}
				}
				if c.progress != nil {
					mu.Lock()
					done++
					c.progress(done, total)
					mu.Unlock()
				}
			}
		}(pp)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("wvlut: building Jacobian: %v", err)
		}
	}
	return j, nil
}

// unravel converts the flat row-major index i into per-axis indices for
// the given shape, storing them in index.
func unravel(i int, shape, index []int) {
	for d := len(shape) - 1; d >= 0; d-- {
		index[d] = i % shape[d]
		i /= shape[d]
	}
}
