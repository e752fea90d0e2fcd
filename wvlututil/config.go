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
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lnashier/viper"
	"github.com/spf13/cast"
	"github.com/wvcci/wvlut"
	"gonum.org/v1/gonum/floats"
)

// GenerateConfig holds the information needed to create a lookup table
// from expressions.
type GenerateConfig struct {
	AxisNames   []string
	Axes        []*wvlut.Axis
	Expressions []string
	Output      string
}

// JacobianConfig holds the information needed to build a Jacobian lookup
// table.
type JacobianConfig struct {
	Input   string
	Output  string
	XIdx    []int
	Workers int
	Steps   map[int]float64

	// Progress specifies whether to show a progress bar.
	Progress bool
}

// RecallConfig holds the information needed to evaluate a lookup table
// at a set of positions.
type RecallConfig struct {
	Input  string
	Points [][]float64
	Index  bool
	Clip   bool
	Output string
}

// QuicklookConfig holds the information needed to plot a lookup table
// profile.
type QuicklookConfig struct {
	Input   string
	Output  string
	Options wvlut.QuicklookOptions
}

// GenerateConfigFromViper reads a GenerateConfig from cfg.
func GenerateConfigFromViper(cfg *viper.Viper) (*GenerateConfig, error) {
	c, err := generateConfig(cfg)
	if err != nil {
		return nil, err
	}
	if c.Output, err = checkOutputFile(cfg.GetString("LUTFile")); err != nil {
		return nil, err
	}
	return c, nil
}

// SelfTestConfig holds the configuration of the self test.
type SelfTestConfig struct {
	// Generate describes the table under test. Its Output is not used.
	Generate *GenerateConfig

	// Point is where the stored and direct Jacobians are compared.
	Point []float64

	// Dir is where the test files are written. A temporary
	// directory is used if it is empty.
	Dir string
}

// SelfTestConfigFromViper reads a SelfTestConfig from cfg.
func SelfTestConfigFromViper(cfg *viper.Viper) (*SelfTestConfig, error) {
	g, err := generateConfig(cfg)
	if err != nil {
		return nil, err
	}
	c := &SelfTestConfig{
		Generate: g,
		Dir:      os.ExpandEnv(cfg.GetString("SelfTest.Dir")),
	}
	if c.Point, err = parseFloats(cfg.GetString("SelfTest.Point")); err != nil {
		return nil, fmt.Errorf("wvlututil: SelfTest.Point: %v", err)
	}
	if c.Dir != "" {
		if err := os.MkdirAll(c.Dir, os.ModePerm); err != nil {
			return nil, fmt.Errorf("wvlututil: problem creating self test directory: %v", err)
		}
	}
	return c, nil
}

func generateConfig(cfg *viper.Viper) (*GenerateConfig, error) {
	c := &GenerateConfig{
		AxisNames:   cfg.GetStringSlice("Generate.AxisNames"),
		Expressions: cfg.GetStringSlice("Generate.Expressions"),
	}
	axes := cfg.GetStringSlice("Generate.Axes")
	if len(axes) != len(c.AxisNames) {
		return nil, fmt.Errorf("wvlututil: %d axes are specified but %d axis names", len(axes), len(c.AxisNames))
	}
	values := make([][]float64, len(axes))
	for i, a := range axes {
		v, err := parseAxis(a)
		if err != nil {
			return nil, fmt.Errorf("wvlututil: Generate.Axes[%d]: %v", i, err)
		}
		values[i] = v
	}
	var err error
	if c.Axes, err = wvlut.NewAxes(values...); err != nil {
		return nil, err
	}
	if len(c.Expressions) == 0 {
		return nil, fmt.Errorf("wvlututil: Generate.Expressions must be specified")
	}
	return c, nil
}

// JacobianConfigFromViper reads a JacobianConfig from cfg.
func JacobianConfigFromViper(cfg *viper.Viper) (*JacobianConfig, error) {
	c := &JacobianConfig{
		Input:    os.ExpandEnv(cfg.GetString("LUTFile")),
		Workers:  cfg.GetInt("Jacobian.Workers"),
		Progress: cfg.GetBool("progress"),
	}
	if c.Input == "" {
		return nil, fmt.Errorf("wvlututil: LUTFile must be specified")
	}
	var err error
	if c.XIdx, err = toIntSliceE(cfg.Get("Jacobian.XIdx")); err != nil {
		return nil, fmt.Errorf("wvlututil: reading Jacobian.XIdx: %v", err)
	}
	if c.Steps, err = parseSteps(cfg); err != nil {
		return nil, err
	}
	if c.Output, err = checkOutputFile(cfg.GetString("JacobianFile")); err != nil {
		return nil, err
	}
	return c, nil
}

// RecallConfigFromViper reads a RecallConfig from cfg. The input is the
// file named by inputKey, which is either "LUTFile" or "JacobianFile".
func RecallConfigFromViper(cfg *viper.Viper, inputKey string) (*RecallConfig, error) {
	c := &RecallConfig{
		Input: os.ExpandEnv(cfg.GetString(inputKey)),
		Index: cfg.GetBool("Recall.Index"),
		Clip:  cfg.GetBool("Recall.Clip"),
	}
	if c.Input == "" {
		return nil, fmt.Errorf("wvlututil: %s must be specified", inputKey)
	}
	if out := cfg.GetString("Recall.Output"); out != "" {
		var err error
		if c.Output, err = checkOutputFile(out); err != nil {
			return nil, err
		}
	}
	points := cfg.GetStringSlice("Recall.Points")
	if len(points) == 0 {
		return nil, fmt.Errorf("wvlututil: Recall.Points must be specified")
	}
	c.Points = make([][]float64, len(points))
	for i, p := range points {
		v, err := parseFloats(p)
		if err != nil {
			return nil, fmt.Errorf("wvlututil: Recall.Points[%d]: %v", i, err)
		}
		c.Points[i] = v
	}
	return c, nil
}

// QuicklookConfigFromViper reads a QuicklookConfig from cfg.
func QuicklookConfigFromViper(cfg *viper.Viper) (*QuicklookConfig, error) {
	c := &QuicklookConfig{
		Input: os.ExpandEnv(cfg.GetString("LUTFile")),
		Options: wvlut.QuicklookOptions{
			Axis:    cfg.GetInt("Quicklook.Axis"),
			Channel: cfg.GetInt("Quicklook.Channel"),
			Samples: cfg.GetInt("Quicklook.Samples"),
			Title:   cfg.GetString("Quicklook.Title"),
			YLabel:  cfg.GetString("Quicklook.YLabel"),
		},
	}
	if c.Input == "" {
		return nil, fmt.Errorf("wvlututil: LUTFile must be specified")
	}
	var err error
	if p := cfg.GetString("Quicklook.Point"); strings.TrimSpace(p) != "" {
		if c.Options.Point, err = parseFloats(p); err != nil {
			return nil, fmt.Errorf("wvlututil: Quicklook.Point: %v", err)
		}
	}
	if c.Output, err = checkOutputFile(cfg.GetString("Quicklook.Output")); err != nil {
		return nil, err
	}
	if ext := strings.ToLower(filepath.Ext(c.Output)); ext != ".png" {
		return nil, fmt.Errorf("wvlututil: quicklook output file must have a .png extension, not '%s'", ext)
	}
	return c, nil
}

// checkOutputFile expands environment variables in f and makes sure that
// the directory it is in exists. Blob storage paths are not checked.
func checkOutputFile(f string) (string, error) {
	f = os.ExpandEnv(f)
	if f == "" {
		return "", fmt.Errorf("wvlututil: output file is not specified")
	}
	if IsBlob(f) {
		return f, nil
	}
	dir := filepath.Dir(f)
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return "", fmt.Errorf("wvlututil: problem creating output directory: %v", err)
	}
	return f, nil
}

// parseAxis parses an axis specification, which is either a list of
// values separated by spaces or the form "start:end:n" for n evenly
// spaced values from start to end inclusive.
func parseAxis(s string) ([]float64, error) {
	s = strings.TrimSpace(s)
	if !strings.Contains(s, ":") {
		return parseFloats(s)
	}
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return nil, fmt.Errorf("axis specification '%s' should have the form start:end:n", s)
	}
	start, err := cast.ToFloat64E(strings.TrimSpace(parts[0]))
	if err != nil {
		return nil, fmt.Errorf("parsing axis start: %v", err)
	}
	end, err := cast.ToFloat64E(strings.TrimSpace(parts[1]))
	if err != nil {
		return nil, fmt.Errorf("parsing axis end: %v", err)
	}
	n, err := cast.ToIntE(strings.TrimSpace(parts[2]))
	if err != nil {
		return nil, fmt.Errorf("parsing axis length: %v", err)
	}
	if n < 2 {
		return nil, fmt.Errorf("axis length %d should be at least 2", n)
	}
	o := make([]float64, n)
	floats.Span(o, start, end)
	return o, nil
}

// parseFloats parses a list of numbers separated by spaces.
func parseFloats(s string) ([]float64, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return nil, fmt.Errorf("no values in '%s'", s)
	}
	o := make([]float64, len(fields))
	for i, f := range fields {
		v, err := cast.ToFloat64E(f)
		if err != nil {
			return nil, err
		}
		o[i] = v
	}
	return o, nil
}

// getStringMapString returns a map[string]string from a viper configuration,
// accounting for the fact that it might be a json object if it was set
// from a command line argument.
func getStringMapString(varName string, cfg *viper.Viper) (map[string]string, error) {
	i := cfg.Get(varName)
	switch v := i.(type) {
	case nil:
		return make(map[string]string), nil
	case map[string]string:
		return v, nil
	case map[string]interface{}:
		return cast.ToStringMapStringE(v)
	case string:
		o := make(map[string]string)
		if strings.TrimSpace(v) == "" {
			return o, nil
		}
		d := json.NewDecoder(bytes.NewBufferString(v))
		if err := d.Decode(&o); err != nil {
			return nil, fmt.Errorf("wvlututil: reading %s: %v", varName, err)
		}
		return o, nil
	default:
		return nil, fmt.Errorf("wvlututil: invalid type for variable %s: %#v", varName, i)
	}
}

// toIntSliceE converts a configuration value to a list of integers. Lists
// set from the command line arrive as strings such as "[0,2]".
func toIntSliceE(s interface{}) ([]int, error) {
	switch v := s.(type) {
	case nil:
		return nil, nil
	case []int:
		return v, nil
	case string:
		v = strings.TrimSpace(v)
		if v == "" || v == "[]" {
			return nil, nil
		}
		if !strings.HasPrefix(v, "[") {
			v = "[" + v + "]"
		}
		var o []int
		if err := json.Unmarshal([]byte(v), &o); err != nil {
			return nil, err
		}
		return o, nil
	default:
		return cast.ToIntSliceE(s)
	}
}

// parseSteps reads the map from axis index to finite-difference half
// width from the configuration.
func parseSteps(cfg *viper.Viper) (map[int]float64, error) {
	m, err := getStringMapString("Jacobian.Steps", cfg)
	if err != nil {
		return nil, err
	}
	o := make(map[int]float64, len(m))
	for k, val := range m {
		axis, err := cast.ToIntE(k)
		if err != nil {
			return nil, fmt.Errorf("wvlututil: Jacobian.Steps axis '%s': %v", k, err)
		}
		dx, err := cast.ToFloat64E(val)
		if err != nil {
			return nil, fmt.Errorf("wvlututil: Jacobian.Steps value for axis %d: %v", axis, err)
		}
		o[axis] = dx
	}
	return o, nil
}
