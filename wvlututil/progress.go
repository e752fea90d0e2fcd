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
	"io"

	"github.com/cheggaaa/pb"
)

// progressBar returns a function suitable for wvlut.WithProgress that
// draws a progress bar to w. The bar is started on the first call.
func progressBar(w io.Writer, status string) func(done, total int) {
	var bar *pb.ProgressBar
	current := 0
	finished := false
	return func(done, total int) {
		if bar == nil {
			bar = pb.New(total)
			bar.Output = w
			bar.ShowPercent = true
			bar.ShowBar = true
			bar.ShowCounters = true
			bar.ShowTimeLeft = true
			bar.Prefix(status + " ")
			bar.Start()
		}
		for ; current < done && current < total; current++ {
			bar.Increment()
		}
		if current == total && !finished {
			finished = true
			bar.FinishPrint(status + " finished")
		}
	}
}
