/*
Copyright © 2026 the Lesbound authors.
This file is part of Lesbound.

Lesbound is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

Lesbound is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with Lesbound.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package lesboundutil holds the command-line interface for creating
// large-eddy simulation boundary conditions from reanalysis data.
package lesboundutil

import (
	"fmt"
	"os"

	"github.com/lnashier/viper"
	"github.com/spatialmodel/lesbound"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	// Options are the configuration options available to Lesbound.
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
			name: "ERA5.File",
			usage: `
              ERA5.File is the path to the netcdf file holding the ERA5
              model-level data interpolated to geometric height, with
              dimensions (time, level, lat, lon) for every variable.`,
			defaultVal: "era5_input.nc",
			flagsets:   []*pflag.FlagSet{preprocCmd.Flags()},
		},
		{
			name: "ERA5.HeightVar",
			usage: `
              ERA5.HeightVar is the name of the variable in ERA5.File that
              holds the geometric height of the model levels.`,
			defaultVal: "z",
			flagsets:   []*pflag.FlagSet{preprocCmd.Flags()},
		},
		{
			name: "ERA5.Fields",
			usage: `
              ERA5.Fields lists the variables to process. The names u, v and
              w are treated as the staggered momentum components; all other
              names are cell-centered scalars.`,
			defaultVal: []string{"u", "v", "w", "thl", "qt"},
			flagsets:   []*pflag.FlagSet{preprocCmd.Flags()},
		},
		{
			name: "Domain.Proj4",
			usage: `
              Domain.Proj4 gives the spatial projection of the LES domain
              in Proj4 format.`,
			defaultVal: "+proj=utm +zone=31 +datum=WGS84 +units=m +no_defs",
			flagsets:   []*pflag.FlagSet{preprocCmd.Flags()},
		},
		{
			name: "Domain.X0",
			usage: `
              Domain.X0 is the X coordinate of the lower-left corner of the
              LES domain in the units of the spatial projection.`,
			defaultVal: 0.0,
			flagsets:   []*pflag.FlagSet{preprocCmd.Flags()},
		},
		{
			name: "Domain.Y0",
			usage: `
              Domain.Y0 is the Y coordinate of the lower-left corner of the
              LES domain in the units of the spatial projection.`,
			defaultVal: 0.0,
			flagsets:   []*pflag.FlagSet{preprocCmd.Flags()},
		},
		{
			name: "Domain.XSize",
			usage: `
              Domain.XSize is the domain extent in the X direction [m].`,
			defaultVal: 51200.0,
			flagsets:   []*pflag.FlagSet{preprocCmd.Flags()},
		},
		{
			name: "Domain.YSize",
			usage: `
              Domain.YSize is the domain extent in the Y direction [m].`,
			defaultVal: 51200.0,
			flagsets:   []*pflag.FlagSet{preprocCmd.Flags()},
		},
		{
			name: "Domain.Itot",
			usage: `
              Domain.Itot is the number of grid cells in the X direction.`,
			defaultVal: 256,
			flagsets:   []*pflag.FlagSet{preprocCmd.Flags()},
		},
		{
			name: "Domain.Jtot",
			usage: `
              Domain.Jtot is the number of grid cells in the Y direction.`,
			defaultVal: 256,
			flagsets:   []*pflag.FlagSet{preprocCmd.Flags()},
		},
		{
			name: "Domain.NGhost",
			usage: `
              Domain.NGhost is the number of ghost cells outside the lateral
              boundaries required by the advection scheme of the model.`,
			defaultVal: 3,
			flagsets:   []*pflag.FlagSet{preprocCmd.Flags()},
		},
		{
			name: "Domain.NSponge",
			usage: `
              Domain.NSponge is the width of the lateral sponge layer in
              grid cells.`,
			defaultVal: 5,
			flagsets:   []*pflag.FlagSet{preprocCmd.Flags()},
		},
		{
			name: "VGrid.ZFile",
			usage: `
              VGrid.ZFile is the path to a text file listing the full-level
              heights of the LES vertical grid, one per line.`,
			defaultVal: "grid.txt",
			flagsets:   []*pflag.FlagSet{preprocCmd.Flags()},
		},
		{
			name: "VGrid.ZSize",
			usage: `
              VGrid.ZSize is the domain top height [m].`,
			defaultVal: 4000.0,
			flagsets:   []*pflag.FlagSet{preprocCmd.Flags()},
		},
		{
			name: "BaseState.RhoFile",
			usage: `
              BaseState.RhoFile is the path to a text file listing the
              base-state density at the full levels, one per line. If empty,
              a Boussinesq base state with unit density is used.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{preprocCmd.Flags()},
		},
		{
			name: "Preproc.SigmaH",
			usage: `
              Preproc.SigmaH is the standard deviation of the horizontal
              Gaussian filter applied to the interpolated fields [m]. Zero
              disables the filter.`,
			defaultVal: 0.0,
			flagsets:   []*pflag.FlagSet{preprocCmd.Flags()},
		},
		{
			name: "Preproc.FilterDivisor",
			usage: `
              Preproc.FilterDivisor divides SigmaH when converting the
              filter width to grid cells.`,
			defaultVal: 1.0,
			flagsets:   []*pflag.FlagSet{preprocCmd.Flags()},
		},
		{
			name: "Preproc.BlendHeight",
			usage: `
              Preproc.BlendHeight is the height [m] below which the vertical
              velocity is linearly blended to zero at the surface.`,
			defaultVal: 500.0,
			flagsets:   []*pflag.FlagSet{preprocCmd.Flags()},
		},
		{
			name: "Preproc.USplit",
			usage: `
              Preproc.USplit is the fraction of the domain-mean divergence
              correction assigned to u; the remainder goes to v.`,
			defaultVal: 0.5,
			flagsets:   []*pflag.FlagSet{preprocCmd.Flags()},
		},
		{
			name: "Preproc.NTasks",
			usage: `
              Preproc.NTasks is the number of timestep tasks to process in
              parallel.`,
			defaultVal: 8,
			flagsets:   []*pflag.FlagSet{preprocCmd.Flags()},
		},
		{
			name: "Preproc.OutputDir",
			usage: `
              Preproc.OutputDir is the directory the initial field files are
              written to.`,
			defaultVal: ".",
			flagsets:   []*pflag.FlagSet{preprocCmd.Flags()},
		},
		{
			name: "Preproc.NameSuffix",
			usage: `
              Preproc.NameSuffix is an optional suffix appended to the
              initial field file names.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{preprocCmd.Flags()},
		},
		{
			name: "Preproc.SinglePrecision",
			usage: `
              Preproc.SinglePrecision writes the output as float32 instead
              of float64.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{preprocCmd.Flags()},
		},
		{
			name: "Preproc.LBCFile",
			usage: `
              Preproc.LBCFile is the path of the netcdf lateral boundary
              condition file to create.`,
			defaultVal: "lbc_input.nc",
			flagsets:   []*pflag.FlagSet{preprocCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("LESBOUND")

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch option.defaultVal.(type) {
			case string:
				if option.shorthand == "" {
					set.String(option.name, option.defaultVal.(string), option.usage)
				} else {
					set.StringP(option.name, option.shorthand, option.defaultVal.(string), option.usage)
				}
			case []string:
				if option.shorthand == "" {
					set.StringSlice(option.name, option.defaultVal.([]string), option.usage)
				} else {
					set.StringSliceP(option.name, option.shorthand, option.defaultVal.([]string), option.usage)
				}
			case bool:
				if option.shorthand == "" {
					set.Bool(option.name, option.defaultVal.(bool), option.usage)
				} else {
					set.BoolP(option.name, option.shorthand, option.defaultVal.(bool), option.usage)
				}
			case int:
				if option.shorthand == "" {
					set.Int(option.name, option.defaultVal.(int), option.usage)
				} else {
					set.IntP(option.name, option.shorthand, option.defaultVal.(int), option.usage)
				}
			case float64:
				if option.shorthand == "" {
					set.Float64(option.name, option.defaultVal.(float64), option.usage)
				} else {
					set.Float64P(option.name, option.shorthand, option.defaultVal.(float64), option.usage)
				}
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
	Root.AddCommand(preprocCmd)
}

// setConfig finds and reads in the configuration file, if there is one.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(cfgpath)
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("lesbound: problem reading configuration file: %v", err)
		}
	}
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "lesbound",
	Short: "A boundary-condition generator for large-eddy simulation.",
	Long: `Lesbound creates initial fields and lateral boundary conditions for
open-boundary large-eddy simulations from ERA5 reanalysis data.
Use the subcommands specified below to access the functionality.

Refer to the subcommand documentation for configuration options and default
settings. Configuration can be changed by using a configuration file (and
providing the path to the file using the --config flag), by using
command-line arguments, or by setting environment variables in the format
'LESBOUND_var' where 'var' is the name of the variable to be set.
Refer to https://github.com/spf13/viper for additional configuration information.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of Lesbound.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("Lesbound v%s\n", lesbound.Version)
	},
	DisableAutoGenTag: true,
}

var preprocCmd = &cobra.Command{
	Use:   "preproc",
	Short: "Create LES input from ERA5 data",
	Long: `preproc interpolates ERA5 reanalysis data to the LES grid and writes
the initial fields and the lateral boundary condition file as specified by
information in the configuration file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return Preproc(
			os.ExpandEnv(Cfg.GetString("ERA5.File")),
			os.ExpandEnv(Cfg.GetString("ERA5.HeightVar")),
			Cfg.GetStringSlice("ERA5.Fields"),
			Cfg.GetString("Domain.Proj4"),
			Cfg.GetFloat64("Domain.X0"),
			Cfg.GetFloat64("Domain.Y0"),
			Cfg.GetFloat64("Domain.XSize"),
			Cfg.GetFloat64("Domain.YSize"),
			Cfg.GetInt("Domain.Itot"),
			Cfg.GetInt("Domain.Jtot"),
			Cfg.GetInt("Domain.NGhost"),
			Cfg.GetInt("Domain.NSponge"),
			os.ExpandEnv(Cfg.GetString("VGrid.ZFile")),
			Cfg.GetFloat64("VGrid.ZSize"),
			os.ExpandEnv(Cfg.GetString("BaseState.RhoFile")),
			Cfg.GetFloat64("Preproc.SigmaH"),
			Cfg.GetFloat64("Preproc.FilterDivisor"),
			Cfg.GetFloat64("Preproc.BlendHeight"),
			Cfg.GetFloat64("Preproc.USplit"),
			Cfg.GetInt("Preproc.NTasks"),
			os.ExpandEnv(Cfg.GetString("Preproc.OutputDir")),
			Cfg.GetString("Preproc.NameSuffix"),
			Cfg.GetBool("Preproc.SinglePrecision"),
			os.ExpandEnv(Cfg.GetString("Preproc.LBCFile")),
		)
	},
	DisableAutoGenTag: true,
}
