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

// Package lesbound generates initial fields and lateral boundary conditions
// (LBCs) for a large-eddy simulation model from ERA5 reanalysis data.
//
// Reanalysis fields are interpolated onto the curvilinear LES grid,
// optionally smoothed with a Gaussian filter, and, for the momentum fields,
// corrected so that the three-dimensional wind field is divergence free on
// the staggered (Arakawa C) LES grid while the domain-mean vertical velocity
// matches the subsidence implied by the reanalysis.
package lesbound

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Version gives the version number of this version of Lesbound.
const Version = "0.1.0"

// Stagger identifies the horizontal staggered-grid location of a variable
// on the Arakawa C grid. Scalars and w share the cell-center horizontal
// location; u and v are shifted half a cell in x and y respectively.
type Stagger int

const (
	StaggerScalar Stagger = iota
	StaggerU
	StaggerV
	StaggerW
)

// staggerFor returns the staggered location associated with a variable
// name. Only the three momentum components have non-scalar locations.
func staggerFor(name string) Stagger {
	switch name {
	case "u":
		return StaggerU
	case "v":
		return StaggerV
	case "w":
		return StaggerW
	default:
		return StaggerScalar
	}
}

// Config holds the settings for one input-generation run. All state is
// scoped to the run; there are no package-level globals.
type Config struct {
	// Domain describes the padded curvilinear LES domain.
	Domain *Domain

	// VGrid is the LES vertical grid. It must match the vertical grid of
	// the consuming model exactly, otherwise the divergence-free guarantee
	// does not hold downstream.
	VGrid *VerticalGrid

	// Rho and Rhoh are base-state density profiles at the full and half
	// levels. len(Rho) must equal VGrid.Ktot and len(Rhoh) VGrid.Ktot+1.
	Rho, Rhoh []float64

	// SigmaH is the Gaussian filter length scale in the same units as the
	// horizontal grid spacing. Zero disables filtering.
	SigmaH float64

	// FilterDivisor converts SigmaH to a kernel width in grid cells as
	// ceil(SigmaH / (FilterDivisor * dx)).
	FilterDivisor float64

	// BlendHeight is the depth over which the interpolated vertical
	// velocity is ramped to zero at the surface [m].
	BlendHeight float64

	// USplit is the fraction of the domain-mean divergence correction
	// assigned to u; the remainder goes to v.
	USplit float64

	// NameSuffix is appended to initial-field file names.
	NameSuffix string

	// OutputDir is the directory initial fields are written to.
	OutputDir string

	// NTasks is the number of parallel workers.
	NTasks int

	// SinglePrecision selects float32 output; the default is float64.
	SinglePrecision bool

	// Log receives progress and diagnostic messages.
	Log logrus.FieldLogger
}

// DefaultConfig returns a Config with the default processing settings.
// Domain, VGrid and the density profiles must still be supplied.
func DefaultConfig() *Config {
	return &Config{
		FilterDivisor: 1,
		BlendHeight:   500,
		USplit:        0.5,
		OutputDir:     ".",
		NTasks:        8,
		Log:           logrus.StandardLogger(),
	}
}

// check validates the configuration against the vertical grid and fills
// zero-valued fields that have non-zero defaults.
func (cfg *Config) check() error {
	if cfg.Domain == nil || cfg.VGrid == nil {
		return fmt.Errorf("lesbound: configuration is missing the domain or vertical grid")
	}
	if len(cfg.Rho) != cfg.VGrid.Ktot || len(cfg.Rhoh) != cfg.VGrid.Ktot+1 {
		return fmt.Errorf("lesbound: density profiles have lengths (%d, %d); want (%d, %d)",
			len(cfg.Rho), len(cfg.Rhoh), cfg.VGrid.Ktot, cfg.VGrid.Ktot+1)
	}
	if cfg.USplit < 0 || cfg.USplit > 1 {
		return fmt.Errorf("lesbound: USplit %g is outside [0, 1]", cfg.USplit)
	}
	if cfg.FilterDivisor <= 0 {
		cfg.FilterDivisor = 1
	}
	if cfg.BlendHeight <= 0 {
		cfg.BlendHeight = 500
	}
	if cfg.NTasks <= 0 {
		cfg.NTasks = 8
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "."
	}
	if cfg.Log == nil {
		cfg.Log = logrus.StandardLogger()
	}
	return nil
}
