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

// Package wvlututil holds the command-line interface and file handling
// for building, inspecting and checking water vapour lookup tables.
package wvlututil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/lnashier/viper"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/wvcci/wvlut"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	// Options are the configuration options available to wvlut.
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "LogLevel",
			usage: `
              LogLevel is the minimum severity of log messages to print,
              one of "debug", "info", "warn" or "error".`,
			defaultVal: "info",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "progress",
			usage: `
              progress specifies whether to draw a progress bar while
              the Jacobian is built.`,
			shorthand:  "p",
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{jacobianCmd.Flags()},
		},
		{
			name: "LUTFile",
			usage: `
              LUTFile is the path to the lookup table file. It is written by
              the generate command and read by the others. It can include
              environment variables and can be a blob storage location
              such as "gs://bucket/lut.nc", "s3://bucket/lut.nc" or
              "file:///tmp/lut.nc". HTTP(S) URLs can also be read.`,
			defaultVal: "lut.nc",
			flagsets:   []*pflag.FlagSet{generateCmd.Flags(), jacobianCmd.Flags(), recallCmd.Flags(), quicklookCmd.Flags()},
		},
		{
			name: "JacobianFile",
			usage: `
              JacobianFile is the path to the Jacobian lookup table file. It
              is written by the jacobian command and read by jrecall. It
              accepts the same locations as LUTFile.`,
			defaultVal: "jacobian.nc",
			flagsets:   []*pflag.FlagSet{jacobianCmd.Flags(), jrecallCmd.Flags()},
		},
		{
			name: "Generate.AxisNames",
			usage: `
              Generate.AxisNames are the names by which the expressions refer
              to the coordinates along each axis.`,
			defaultVal: []string{"x", "y", "z"},
			flagsets:   []*pflag.FlagSet{generateCmd.Flags(), selftestCmd.Flags()},
		},
		{
			name: "Generate.Axes",
			usage: `
              Generate.Axes specifies the grid values along each axis, in the
              same order as Generate.AxisNames. Each entry is either a list of
              values separated by spaces or the form "start:end:n" for n
              evenly spaced values. Axes may be increasing or decreasing.`,
			defaultVal: []string{"1:2:11", "3:1:11", "0:1:6"},
			flagsets:   []*pflag.FlagSet{generateCmd.Flags(), selftestCmd.Flags()},
		},
		{
			name: "Generate.Expressions",
			usage: `
              Generate.Expressions holds one expression per output channel in
              terms of the axis names. The functions exp, log, sqrt, sin, cos,
              tan, abs and pow are available.`,
			defaultVal: []string{"x*y", "sin(0.5*x)+z", "y*y*z", "exp(0.5*x)-y*z"},
			flagsets:   []*pflag.FlagSet{generateCmd.Flags(), selftestCmd.Flags()},
		},
		{
			name: "Jacobian.XIdx",
			usage: `
              Jacobian.XIdx lists the axes to differentiate with respect to,
              in the order they should appear in each Jacobian matrix. An
              empty list means all axes in their natural order.`,
			defaultVal: []int{},
			flagsets:   []*pflag.FlagSet{jacobianCmd.Flags()},
		},
		{
			name: "Jacobian.Workers",
			usage: `
              Jacobian.Workers is the number of goroutines used to build the
              Jacobian. Zero means one per processor.`,
			defaultVal: 0,
			flagsets:   []*pflag.FlagSet{jacobianCmd.Flags()},
		},
		{
			name: "Jacobian.Steps",
			usage: `
              Jacobian.Steps overrides the finite-difference half width used
              along given axes, as a map from axis index to width, e.g.
              {"0":"0.01"}. By default it is half the local grid spacing.`,
			defaultVal: map[string]string{},
			flagsets:   []*pflag.FlagSet{jacobianCmd.Flags()},
		},
		{
			name: "Recall.Points",
			usage: `
              Recall.Points are the points at which to evaluate the table,
              each given as values separated by spaces, one per axis.`,
			defaultVal: []string{},
			flagsets:   []*pflag.FlagSet{recallCmd.Flags(), jrecallCmd.Flags()},
		},
		{
			name: "Recall.Index",
			usage: `
              Recall.Index specifies that Recall.Points are fractional grid
              indices rather than coordinates.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{recallCmd.Flags()},
		},
		{
			name: "Recall.Clip",
			usage: `
              Recall.Clip specifies whether points outside of the grid are
              moved to its edge. Otherwise values are extrapolated linearly.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{recallCmd.Flags(), jrecallCmd.Flags()},
		},
		{
			name: "Recall.Output",
			usage: `
              Recall.Output is an optional CSV file to write the recalled
              values to. They are printed if it is empty.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{recallCmd.Flags()},
		},
		{
			name: "Quicklook.Axis",
			usage: `
              Quicklook.Axis is the axis along which the profile is drawn.`,
			defaultVal: 0,
			flagsets:   []*pflag.FlagSet{quicklookCmd.Flags()},
		},
		{
			name: "Quicklook.Channel",
			usage: `
              Quicklook.Channel is the output channel to draw.`,
			defaultVal: 0,
			flagsets:   []*pflag.FlagSet{quicklookCmd.Flags()},
		},
		{
			name: "Quicklook.Point",
			usage: `
              Quicklook.Point holds the coordinates, separated by spaces, at
              which the other axes are held. The middle of each axis is
              used if it is empty.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{quicklookCmd.Flags()},
		},
		{
			name: "Quicklook.Samples",
			usage: `
              Quicklook.Samples is the number of interpolated values drawn
              along the axis in addition to the grid values.`,
			defaultVal: 50,
			flagsets:   []*pflag.FlagSet{quicklookCmd.Flags()},
		},
		{
			name: "Quicklook.Title",
			usage: `
              Quicklook.Title is the plot title.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{quicklookCmd.Flags()},
		},
		{
			name: "Quicklook.YLabel",
			usage: `
              Quicklook.YLabel is the label of the vertical axis.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{quicklookCmd.Flags()},
		},
		{
			name: "Quicklook.Output",
			usage: `
              Quicklook.Output is the PNG file to write the plot to.`,
			defaultVal: "quicklook.png",
			flagsets:   []*pflag.FlagSet{quicklookCmd.Flags()},
		},
		{
			name: "SelfTest.Point",
			usage: `
              SelfTest.Point is the point, with values separated by spaces,
              at which the stored Jacobian is checked.`,
			defaultVal: "1.53 2.17 0.42",
			flagsets:   []*pflag.FlagSet{selftestCmd.Flags()},
		},
		{
			name: "SelfTest.Dir",
			usage: `
              SelfTest.Dir is the directory the self test files are written
              to. A temporary directory is used if it is empty.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{selftestCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("WVLUT")

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch v := option.defaultVal.(type) {
			case string:
				set.StringP(option.name, option.shorthand, v, option.usage)
			case []string:
				set.StringSliceP(option.name, option.shorthand, v, option.usage)
			case bool:
				set.BoolP(option.name, option.shorthand, v, option.usage)
			case int:
				set.IntP(option.name, option.shorthand, v, option.usage)
			case []int:
				set.IntSliceP(option.name, option.shorthand, v, option.usage)
			case map[string]string:
				b := bytes.NewBuffer(nil)
				json.NewEncoder(b).Encode(v)
				set.StringP(option.name, option.shorthand, b.String(), option.usage)
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(generateCmd)
	Root.AddCommand(jacobianCmd)
	Root.AddCommand(recallCmd)
	Root.AddCommand(jrecallCmd)
	Root.AddCommand(quicklookCmd)
	Root.AddCommand(selftestCmd)
	Root.AddCommand(configCmd)
	Root.AddCommand(guiCmd)
}

// setConfig finds and reads in the configuration file, if there is one.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(cfgpath)
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("wvlututil: problem reading configuration file: %v", err)
		}
	}
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "wvlut",
	Short: "Build and use water vapour retrieval lookup tables.",
	Long: `wvlut builds gridded lookup tables of forward-model outputs, computes
their Jacobians by central differences and evaluates both by multilinear
interpolation. Use the subcommands specified below to access this functionality.

Refer to the subcommand documentation for configuration options and default settings.
Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'WVLUT_var' where 'var' is the
name of the variable to be set. File paths are additionally
allowed to contain environment variables within them.
Refer to https://github.com/spf13/viper for additional configuration information.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error {
		if err := setConfig(); err != nil {
			return err
		}
		return setLogLevel(Cfg.GetString("LogLevel"))
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of wvlut.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("wvlut v%s (file format %s)\n", wvlut.Version, wvlut.FileVersion)
	},
	DisableAutoGenTag: true,
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Create a lookup table from expressions",
	Long: `generate evaluates one expression per output channel at every point of
a grid and saves the result in LUTFile.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := GenerateConfigFromViper(Cfg)
		if err != nil {
			return err
		}
		return Generate(context.Background(), c, Log)
	},
	DisableAutoGenTag: true,
}

var jacobianCmd = &cobra.Command{
	Use:   "jacobian",
	Short: "Compute the Jacobian of a lookup table",
	Long: `jacobian reads the lookup table in LUTFile, computes the derivatives of
every output channel with respect to the axes in Jacobian.XIdx at every grid
point and saves the result in JacobianFile.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := JacobianConfigFromViper(Cfg)
		if err != nil {
			return err
		}
		return Jacobian(context.Background(), c, Log)
	},
	DisableAutoGenTag: true,
}

var recallCmd = &cobra.Command{
	Use:   "recall",
	Short: "Evaluate a lookup table",
	Long: `recall interpolates the lookup table in LUTFile at Recall.Points and
writes the values of every channel as CSV.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := RecallConfigFromViper(Cfg, "LUTFile")
		if err != nil {
			return err
		}
		return Recall(context.Background(), c, cmd.OutOrStdout(), Log)
	},
	DisableAutoGenTag: true,
}

var jrecallCmd = &cobra.Command{
	Use:   "jrecall",
	Short: "Evaluate a Jacobian lookup table",
	Long: `jrecall interpolates the Jacobian lookup table in JacobianFile at
Recall.Points and prints one matrix per point.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := RecallConfigFromViper(Cfg, "JacobianFile")
		if err != nil {
			return err
		}
		return JRecall(context.Background(), c, cmd.OutOrStdout(), Log)
	},
	DisableAutoGenTag: true,
}

var quicklookCmd = &cobra.Command{
	Use:   "quicklook",
	Short: "Plot a lookup table profile",
	Long: `quicklook draws one output channel of the lookup table in LUTFile along
one axis, with the other coordinates held fixed, and saves it as a PNG image.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := QuicklookConfigFromViper(Cfg)
		if err != nil {
			return err
		}
		return Quicklook(context.Background(), c, Log)
	},
	DisableAutoGenTag: true,
}

var selftestCmd = &cobra.Command{
	Use:   "selftest",
	Short: "Check the Jacobian of a generated table",
	Long: `selftest generates a lookup table from Generate.Expressions, computes and
saves its Jacobian, reads it back and checks it at SelfTest.Point against
derivatives of the expressions themselves.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := SelfTestConfigFromViper(Cfg)
		if err != nil {
			return err
		}
		return SelfTest(context.Background(), c, Log)
	},
	DisableAutoGenTag: true,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the configuration",
	Long: `config prints the value of every option in TOML format, after applying
the configuration file, environment variables and defaults. The output can be
saved and used as a configuration file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return WriteConfig(cmd.OutOrStdout(), Cfg)
	},
	DisableAutoGenTag: true,
}

var guiCmd = &cobra.Command{
	Use:   "gui",
	Short: "Start the browser interface",
	Long: `gui starts a local web server that allows the other commands to be
configured and run from a web browser.`,
	Run: func(cmd *cobra.Command, args []string) {
		StartWebServer()
	},
	DisableAutoGenTag: true,
}
