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

package lesboundutil

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/lesbound"
	"github.com/spf13/cast"
)

// Preproc reads the ERA5 input, creates the LES initial fields and lateral
// boundary conditions, and writes the boundary conditions to lbcFile.
//
// era5File, heightVar and fields select the reanalysis input as described
// in the configuration documentation. proj4, x0, y0, xsize, ysize, itot,
// jtot, nGhost and nSponge define the horizontal domain; zFile and zsize
// the vertical grid; rhoFile the base-state density. sigmaH, filterDivisor,
// blendHeight, uSplit, nTasks, outputDir, nameSuffix and singlePrecision
// control the processing.
func Preproc(era5File, heightVar string, fields []string,
	proj4 string, x0, y0, xsize, ysize float64, itot, jtot, nGhost, nSponge int,
	zFile string, zsize float64, rhoFile string,
	sigmaH, filterDivisor, blendHeight, uSplit float64, nTasks int,
	outputDir, nameSuffix string, singlePrecision bool, lbcFile string) error {

	log := logrus.StandardLogger()

	domain, err := lesbound.NewDomain(proj4, x0, y0, xsize, ysize, itot, jtot, nGhost, nSponge)
	if err != nil {
		return err
	}

	z, err := readLevels(zFile)
	if err != nil {
		return err
	}
	vgrid, err := lesbound.NewVerticalGrid(z, zsize)
	if err != nil {
		return err
	}

	rho, err := readRho(rhoFile, vgrid.Ktot)
	if err != nil {
		return err
	}

	rho, rhoh, err := lesbound.BaseStateFromRho(rho, vgrid)
	if err != nil {
		return err
	}

	cfg := lesbound.DefaultConfig()
	cfg.Domain = domain
	cfg.VGrid = vgrid
	cfg.Rho = rho
	cfg.Rhoh = rhoh
	cfg.SigmaH = sigmaH
	cfg.FilterDivisor = filterDivisor
	cfg.BlendHeight = blendHeight
	cfg.USplit = uSplit
	cfg.NTasks = nTasks
	cfg.OutputDir = outputDir
	cfg.NameSuffix = nameSuffix
	cfg.SinglePrecision = singlePrecision
	cfg.Log = log

	frc, err := lesbound.ReadERA5(era5File, heightVar, fields)
	if err != nil {
		return err
	}

	lbc, err := lesbound.CreateInput(cfg, frc)
	if err != nil {
		return err
	}

	f, err := os.Create(lbcFile)
	if err != nil {
		return fmt.Errorf("lesbound: creating LBC file: %v", err)
	}
	defer f.Close()
	if err := lbc.Write(f, singlePrecision); err != nil {
		return err
	}
	log.Infof("lesbound: wrote lateral boundary conditions to %s", lbcFile)
	return nil
}

// readLevels reads a list of heights from a text file, one value per line.
// Blank lines and lines starting with # are skipped.
func readLevels(path string) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("lesbound: opening vertical grid file: %v", err)
	}
	defer f.Close()

	var vals []float64
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		v, err := cast.ToFloat64E(strings.Fields(line)[0])
		if err != nil {
			return nil, fmt.Errorf("lesbound: parsing %s: %v", path, err)
		}
		vals = append(vals, v)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("lesbound: reading %s: %v", path, err)
	}
	return vals, nil
}

// readRho reads the base-state density profile. An empty path selects a
// Boussinesq base state with unit density.
func readRho(path string, ktot int) ([]float64, error) {
	if path == "" {
		rho := make([]float64, ktot)
		for k := range rho {
			rho[k] = 1
		}
		return rho, nil
	}
	rho, err := readLevels(path)
	if err != nil {
		return nil, err
	}
	if len(rho) != ktot {
		return nil, fmt.Errorf("lesbound: density file %s has %d levels; vertical grid has %d",
			path, len(rho), ktot)
	}
	return rho, nil
}
