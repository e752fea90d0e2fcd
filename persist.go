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
	"io"
	"strconv"
	"strings"

	"github.com/ctessum/cdf"
	"github.com/ctessum/sparse"
	"gonum.org/v1/gonum/mat"
)

// noXIdx is stored in place of the differentiated axis list when all
// axes were differentiated.
const noXIdx = "None"

// JacobianFunc returns the NY x NX Jacobian at coordinate point x.
type JacobianFunc func(x []float64) (*mat.Dense, error)

// Func returns a function that interpolates the stored Jacobian to any
// coordinate point. At grid points it returns the stored values. Points
// outside the axes are extrapolated linearly.
func (j *JacobianLUT) Func() (JacobianFunc, error) {
	ip, err := NewInterpolator(j.Data, j.Axes...)
	if err != nil {
		return nil, err
	}
	if ip.Channels() != j.NY*j.NX {
		return nil, &ShapeError{What: "Jacobian trailing dimension", Want: j.NY * j.NX, Got: ip.Channels()}
	}
	return func(x []float64) (*mat.Dense, error) {
		v, err := ip.At(x)
		if err != nil {
			return nil, err
		}
		return mat.NewDense(j.NY, j.NX, v), nil
	}, nil
}

func axisDims(axes []*Axis) ([]string, []int) {
	dims := make([]string, len(axes))
	lens := make([]int, len(axes))
	for i, a := range axes {
		dims[i] = fmt.Sprintf("axis_%d", i)
		lens[i] = a.Len()
	}
	return dims, lens
}

func addAxisVars(h *cdf.Header, dims []string) {
	for i, d := range dims {
		v := fmt.Sprintf("axes_%d", i)
		h.AddVariable(v, []string{d}, []float64{0})
		h.AddAttribute(v, "description", fmt.Sprintf("sample coordinates of table dimension %d", i))
	}
}

func createFile(w cdf.ReaderWriterAt, h *cdf.Header, comment string) (*cdf.File, error) {
	h.AddAttribute("", "comment", comment)
	h.AddAttribute("", "file_version", FileVersion)
	h.Define()
	for _, err := range h.Check() {
		return nil, err
	}
	return cdf.Create(w, h)
}

func writeVar(f *cdf.File, name string, data interface{}) error {
	// The writer reports io.EOF once the whole variable is written.
	if _, err := f.Writer(name, nil, nil).Write(data); err != nil && err != io.EOF {
		return fmt.Errorf("writing variable %s: %v", name, err)
	}
	return nil
}

func writeAxes(f *cdf.File, axes []*Axis) error {
	for i, a := range axes {
		if err := writeVar(f, fmt.Sprintf("axes_%d", i), a.Values()); err != nil {
			return err
		}
	}
	return nil
}

// WriteJacobian writes j to w as a NetCDF file with one variable per axis
// (axes_0, axes_1, ...), the Jacobian grid (jlut), the pair (NY, NX)
// (ny_nx) and the list of differentiated axes as the global attribute
// xidx.
func WriteJacobian(w cdf.ReaderWriterAt, j *JacobianLUT) error {
	if len(j.Data.Elements) != j.size() {
		return &ShapeError{What: "Jacobian data", Want: j.size(), Got: len(j.Data.Elements)}
	}
	dims, lens := axisDims(j.Axes)
	h := cdf.NewHeader(append(dims, "nynx", "pair"), append(lens, j.NY*j.NX, 2))
	addAxisVars(h, dims)
	h.AddVariable("jlut", append(append([]string{}, dims...), "nynx"), []float64{0})
	h.AddAttribute("jlut", "description", "partial derivative of output channel iy with respect to axis xidx[ix], stored at iy*nx+ix")
	h.AddVariable("ny_nx", []string{"pair"}, []int32{0})
	h.AddAttribute("ny_nx", "description", "number of output channels and number of differentiated axes")
	h.AddAttribute("", "xidx", formatXIdx(j.XIdx))
	f, err := createFile(w, h, "WV-LUT Jacobian lookup table")
	if err != nil {
		return fmt.Errorf("wvlut: creating Jacobian file: %v", err)
	}
	if err := writeAxes(f, j.Axes); err != nil {
		return fmt.Errorf("wvlut: %v", err)
	}
	if err := writeVar(f, "jlut", j.Data.Elements); err != nil {
		return fmt.Errorf("wvlut: %v", err)
	}
	if err := writeVar(f, "ny_nx", []int32{int32(j.NY), int32(j.NX)}); err != nil {
		return fmt.Errorf("wvlut: %v", err)
	}
	return nil
}

func (j *JacobianLUT) size() int {
	n := j.NY * j.NX
	for _, a := range j.Axes {
		n *= a.Len()
	}
	return n
}

// ReadJacobian reads a Jacobian lookup table written by WriteJacobian.
func ReadJacobian(r cdf.ReaderWriterAt) (*JacobianLUT, error) {
	f, err := cdf.Open(r)
	if err != nil {
		return nil, fmt.Errorf("wvlut: opening Jacobian file: %v", err)
	}
	axes, err := readAxes(f)
	if err != nil {
		return nil, err
	}
	pair, err := readInts(f, "ny_nx")
	if err != nil {
		return nil, err
	}
	if len(pair) != 2 {
		return nil, &ShapeError{What: "ny_nx", Want: 2, Got: len(pair)}
	}
	j := &JacobianLUT{Axes: axes, NY: int(pair[0]), NX: int(pair[1])}

	xidx, ok := f.Header.GetAttribute("", "xidx").(string)
	if !ok {
		return nil, fmt.Errorf("wvlut: Jacobian file is missing the xidx attribute")
	}
	if j.XIdx, err = parseXIdx(xidx, len(axes)); err != nil {
		return nil, err
	}
	if len(j.Indices()) != j.NX {
		return nil, &ShapeError{What: "xidx", Want: j.NX, Got: len(j.Indices())}
	}

	data, err := readFloats(f, "jlut")
	if err != nil {
		return nil, err
	}
	shape := f.Header.Lengths("jlut")
	if len(shape) != len(axes)+1 {
		return nil, &ShapeError{What: "jlut dimensions", Want: len(axes) + 1, Got: len(shape)}
	}
	if len(data) != j.size() {
		return nil, &ShapeError{What: "jlut", Want: j.size(), Got: len(data)}
	}
	j.Data = sparse.ZerosDense(shape...)
	j.Data.Elements = data
	return j, nil
}

// WriteLUT writes the table held by ip to w, with one variable per axis
// (axes_0, axes_1, ...) and the table itself as variable lut with a
// trailing channel dimension.
func WriteLUT(w cdf.ReaderWriterAt, ip *Interpolator) error {
	dims, lens := axisDims(ip.axes)
	h := cdf.NewHeader(append(dims, "channel"), append(lens, ip.nch))
	addAxisVars(h, dims)
	h.AddVariable("lut", append(append([]string{}, dims...), "channel"), []float64{0})
	h.AddAttribute("lut", "description", "lookup table values")
	h.AddAttribute("", "nchannels", []int32{int32(ip.nch)})
	f, err := createFile(w, h, "WV-LUT lookup table")
	if err != nil {
		return fmt.Errorf("wvlut: creating lookup table file: %v", err)
	}
	if err := writeAxes(f, ip.axes); err != nil {
		return fmt.Errorf("wvlut: %v", err)
	}
	if err := writeVar(f, "lut", ip.lut.Elements); err != nil {
		return fmt.Errorf("wvlut: %v", err)
	}
	return nil
}

// ReadLUT reads a lookup table written by WriteLUT and returns an
// interpolator for it.
func ReadLUT(r cdf.ReaderWriterAt) (*Interpolator, error) {
	f, err := cdf.Open(r)
	if err != nil {
		return nil, fmt.Errorf("wvlut: opening lookup table file: %v", err)
	}
	axes, err := readAxes(f)
	if err != nil {
		return nil, err
	}
	data, err := readFloats(f, "lut")
	if err != nil {
		return nil, err
	}
	lut := sparse.ZerosDense(f.Header.Lengths("lut")...)
	if len(lut.Elements) != len(data) {
		return nil, &ShapeError{What: "lut", Want: len(lut.Elements), Got: len(data)}
	}
	lut.Elements = data
	return NewInterpolator(lut, axes...)
}

func readAxes(f *cdf.File) ([]*Axis, error) {
	var values [][]float64
	for i := 0; ; i++ {
		name := fmt.Sprintf("axes_%d", i)
		if f.Header.Lengths(name) == nil {
			break
		}
		v, err := readFloats(f, name)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("wvlut: file contains no axes")
	}
	return NewAxes(values...)
}

func readFloats(f *cdf.File, name string) ([]float64, error) {
	if f.Header.Lengths(name) == nil {
		return nil, fmt.Errorf("wvlut: file is missing variable %s", name)
	}
	r := f.Reader(name, nil, nil)
	buf := r.Zero(-1)
	if _, err := r.Read(buf); err != nil {
		return nil, fmt.Errorf("wvlut: reading variable %s: %v", name, err)
	}
	v, ok := buf.([]float64)
	if !ok {
		return nil, fmt.Errorf("wvlut: variable %s has type %T; want []float64", name, buf)
	}
	return v, nil
}

func readInts(f *cdf.File, name string) ([]int32, error) {
	if f.Header.Lengths(name) == nil {
		return nil, fmt.Errorf("wvlut: file is missing variable %s", name)
	}
	r := f.Reader(name, nil, nil)
	buf := r.Zero(-1)
	if _, err := r.Read(buf); err != nil {
		return nil, fmt.Errorf("wvlut: reading variable %s: %v", name, err)
	}
	v, ok := buf.([]int32)
	if !ok {
		return nil, fmt.Errorf("wvlut: variable %s has type %T; want []int32", name, buf)
	}
	return v, nil
}

func formatXIdx(xidx []int) string {
	if len(xidx) == 0 {
		return noXIdx
	}
	s := make([]string, len(xidx))
	for i, x := range xidx {
		s[i] = strconv.Itoa(x)
	}
	return strings.Join(s, ",")
}

// parseXIdx parses the stored list of differentiated axes. It returns
// nil for the "None" marker.
func parseXIdx(s string, nAxes int) ([]int, error) {
	s = strings.TrimSpace(s)
	if s == noXIdx || s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	o := make([]int, len(parts))
	for i, p := range parts {
		x, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("wvlut: parsing xidx %q: %v", s, err)
		}
		if x < 0 || x >= nAxes {
			return nil, &AxisError{Axis: x, Reason: fmt.Sprintf("stored xidx entry out of range [0, %d)", nAxes)}
		}
		o[i] = x
	}
	return o, nil
}
