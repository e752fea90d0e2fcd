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
	"fmt"
	"io"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/lnashier/viper"
)

// WriteConfig writes the current value of every option in cfg to w in
// TOML format. The result can be passed back in with --config. Options
// with dotted names, such as "Generate.Axes", are grouped into tables.
func WriteConfig(w io.Writer, cfg *viper.Viper) error {
	out := make(map[string]interface{})
	for _, option := range options {
		if option.name == "config" {
			continue
		}
		var v interface{}
		var err error
		switch option.defaultVal.(type) {
		case string:
			v = cfg.GetString(option.name)
		case []string:
			v = cfg.GetStringSlice(option.name)
		case bool:
			v = cfg.GetBool(option.name)
		case int:
			v = cfg.GetInt(option.name)
		case []int:
			var s []int
			if s, err = toIntSliceE(cfg.Get(option.name)); s == nil {
				s = []int{}
			}
			v = s
		case map[string]string:
			v, err = getStringMapString(option.name, cfg)
		}
		if err != nil {
			return fmt.Errorf("wvlututil: writing configuration: %v", err)
		}
		table := out
		parts := strings.Split(option.name, ".")
		for _, p := range parts[:len(parts)-1] {
			t, ok := table[p].(map[string]interface{})
			if !ok {
				t = make(map[string]interface{})
				table[p] = t
			}
			table = t
		}
		table[parts[len(parts)-1]] = v
	}
	if err := toml.NewEncoder(w).Encode(out); err != nil {
		return fmt.Errorf("wvlututil: writing configuration: %v", err)
	}
	return nil
}
