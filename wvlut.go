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

// Package wvlut holds the lookup-table (LUT) machinery used by the WV-CCI
// water vapour retrieval tooling: mapping physical coordinates onto
// fractional grid indices, multilinear interpolation over N-dimensional
// grids with any number of output channels, numerical Jacobians of
// those grids, and NetCDF persistence of the results.
package wvlut

import "fmt"

// Version gives the version number.
const Version = "1.0.0"

// FileVersion is the version of the LUT and Jacobian file layout. Files
// written with a different major layout cannot be read.
const FileVersion = "1"

// AxisError is returned when an axis cannot be used to build a lookup
// table, for example because it is empty or not strictly monotonic.
type AxisError struct {
	// Axis is the position of the offending axis, or -1 if the axis was
	// not yet attached to a table.
	Axis   int
	Reason string
}

func (e *AxisError) Error() string {
	if e.Axis < 0 {
		return fmt.Sprintf("wvlut: invalid axis: %s", e.Reason)
	}
	return fmt.Sprintf("wvlut: invalid axis %d: %s", e.Axis, e.Reason)
}

// ShapeError is returned when an array or query point does not have the
// number of elements the table requires.
type ShapeError struct {
	What      string
	Want, Got int
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("wvlut: %s has length %d but should be %d", e.What, e.Got, e.Want)
}
