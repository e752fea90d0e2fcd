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

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// QuicklookOptions specifies the profile drawn by Quicklook.
type QuicklookOptions struct {
	// Axis is the index of the axis along which the profile is drawn.
	Axis int

	// Channel is the output channel to plot.
	Channel int

	// Point holds the coordinates along all other axes. The entry for
	// Axis is ignored.
	Point []float64

	// Samples is the number of interpolated points between the ends of
	// the axis. If it is less than 2, only the grid points are drawn.
	Samples int

	// Title and the axis labels are filled in if Title or XLabel is empty.
	Title, XLabel, YLabel string

	// Width and Height are the image size. They default to 4 x 3 inches.
	Width, Height vg.Length
}

// Quicklook writes a PNG line plot to w showing how one output channel of
// the table in ip varies along one axis, with the other coordinates held
// fixed.
func Quicklook(w io.Writer, ip *Interpolator, o QuicklookOptions) error {
	if o.Axis < 0 || o.Axis >= len(ip.axes) {
		return &AxisError{Axis: o.Axis, Reason: "quicklook axis out of range"}
	}
	if o.Channel < 0 || o.Channel >= ip.nch {
		return fmt.Errorf("wvlut: quicklook channel %d out of range [0, %d)", o.Channel, ip.nch)
	}
	if len(o.Point) != len(ip.axes) {
		return &ShapeError{What: "quicklook point", Want: len(ip.axes), Got: len(o.Point)}
	}
	a := ip.axes[o.Axis]

	profile := func(coords []float64) (plotter.XYs, error) {
		points := make([][]float64, len(coords))
		for i, c := range coords {
			points[i] = append([]float64(nil), o.Point...)
			points[i][o.Axis] = c
		}
		vals, err := ip.Recall(points, true)
		if err != nil {
			return nil, err
		}
		xy := make(plotter.XYs, len(coords))
		for i, c := range coords {
			xy[i].X = c
			xy[i].Y = vals[i][o.Channel]
		}
		return xy, nil
	}

	p, err := plot.New()
	if err != nil {
		return fmt.Errorf("wvlut: creating quicklook: %v", err)
	}
	p.Title.Text = o.Title
	if p.Title.Text == "" {
		p.Title.Text = fmt.Sprintf("channel %d along axis %d", o.Channel, o.Axis)
	}
	p.X.Label.Text = o.XLabel
	if p.X.Label.Text == "" {
		p.X.Label.Text = fmt.Sprintf("axis %d", o.Axis)
	}
	p.Y.Label.Text = o.YLabel

	grid, err := profile(a.Values())
	if err != nil {
		return err
	}
	var lines []interface{}
	if o.Samples >= 2 {
		coords := make([]float64, o.Samples)
		floats.Span(coords, a.Min(), a.Max())
		interp, err := profile(coords)
		if err != nil {
			return err
		}
		lines = append(lines, "interpolated", interp)
	}
	lines = append(lines, "grid", grid)
	if err = plotutil.AddLinePoints(p, lines...); err != nil {
		return fmt.Errorf("wvlut: creating quicklook: %v", err)
	}

	ww, hh := o.Width, o.Height
	if ww == 0 {
		ww = 4 * vg.Inch
	}
	if hh == 0 {
		hh = 3 * vg.Inch
	}
	wt, err := p.WriterTo(ww, hh, "png")
	if err != nil {
		return fmt.Errorf("wvlut: rendering quicklook: %v", err)
	}
	if _, err = wt.WriteTo(w); err != nil {
		return fmt.Errorf("wvlut: writing quicklook: %v", err)
	}
	return nil
}
