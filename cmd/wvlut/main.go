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

// Command wvlut builds, checks and evaluates water vapour retrieval
// lookup tables and their Jacobians.
package main

import (
	"fmt"
	"os"

	"github.com/wvcci/wvlut/wvlututil"
)

func main() {
	var commands int
	for _, arg := range os.Args { // Count the number of supplied commands.
		if arg != "" && arg[0] != '-' {
			commands++
		}
	}
	if commands == 1 { // If no subcommand was supplied, start the GUI server.
		wvlututil.StartWebServer()
		return
	}

	if err := wvlututil.Root.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(-1)
	}
}
