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

package lesbound

import (
	"fmt"
	"sort"
	"time"

	"github.com/ctessum/sparse"
)

// divWarnThreshold is the residual divergence above which the diagnostic
// is logged as a warning instead of a debug message. Some residual is
// expected from floating-point accumulation and boundary truncation.
const divWarnThreshold = 1e-5

// CreateInput generates all LES input from the reanalysis forcing: the
// initial fields for the first timestep and lateral boundary conditions
// for every timestep. Scalars are processed one (variable, timestep) task
// at a time; the momentum components are processed jointly per timestep
// because the divergence correction couples them. Any task failure aborts
// the whole run, since a partially populated LBC container is not usable.
func CreateInput(cfg *Config, frc *Forcing) (*LBCData, error) {
	if err := cfg.check(); err != nil {
		return nil, err
	}
	d, vg := cfg.Domain, cfg.VGrid
	log := cfg.Log
	log.Infof("lesbound: creating LES input from ERA5 data in %s", cfg.OutputDir)

	sigmaN := FilterCells(cfg.SigmaH, d.Dx, cfg.FilterDivisor)
	if sigmaN > 0 {
		log.Infof("lesbound: using Gaussian filter with sigma = %d grid cells", sigmaN)
	}

	lonU, latU := d.lonlat(StaggerU)
	lonV, latV := d.lonlat(StaggerV)
	lonS, latS := d.lonlat(StaggerScalar)
	ipU, err := NewInterpFactors(frc.Lon, frc.Lat, lonU, latU)
	if err != nil {
		return nil, err
	}
	ipV, err := NewInterpFactors(frc.Lon, frc.Lat, lonV, latV)
	if err != nil {
		return nil, err
	}
	ipS, err := NewInterpFactors(frc.Lon, frc.Lat, lonS, latS)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(frc.Fields))
	for name := range frc.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	lbc := NewLBCData(names, frc.Time, frc.TimeUnits, d, vg)
	slices := lbcSlices(d, vg.Ktot)

	// Scalars: one task per (variable, timestep).
	type scalarJob struct {
		name string
		t    int
	}
	var jobs []scalarJob
	for _, name := range names {
		if staggerFor(name) == StaggerScalar {
			for t := 0; t < frc.NumSteps(); t++ {
				jobs = append(jobs, scalarJob{name, t})
			}
		}
	}
	tick := time.Now()
	err = runTasks(cfg.NTasks, len(jobs), func(n int) error {
		job := jobs[n]
		return parseScalar(cfg, lbc, slices, ipS, sigmaN, job.name, job.t,
			timeSlice(frc.Fields[job.name], job.t), timeSlice(frc.Z, job.t))
	})
	if err != nil {
		return nil, err
	}
	log.Infof("lesbound: created scalar input from ERA5 in %v", time.Since(tick))

	// Momentum: one task per timestep, u/v/w jointly.
	if !frc.HasMomentum() {
		log.Warn("lesbound: one or more momentum fields missing; skipping momentum")
		return lbc, nil
	}
	tick = time.Now()
	err = runTasks(cfg.NTasks, frc.NumSteps(), func(t int) error {
		return parseMomentum(cfg, lbc, slices, ipU, ipV, ipS, sigmaN, t,
			timeSlice(frc.Fields["u"], t),
			timeSlice(frc.Fields["v"], t),
			timeSlice(frc.Fields["w"], t),
			timeSlice(frc.Z, t))
	})
	if err != nil {
		return nil, err
	}
	log.Infof("lesbound: created momentum input from ERA5 in %v", time.Since(tick))
	return lbc, nil
}

// runTasks runs m tasks on a pool of n workers and returns the first
// error, after all tasks have finished. There is no cancellation: a failed
// task fails the run as a whole once the pool drains.
func runTasks(n, m int, f func(int) error) error {
	sem := make(chan struct{}, n)
	errChan := make(chan error, m)
	for idx := 0; idx < m; idx++ {
		sem <- struct{}{}
		go func(idx int) {
			defer func() { <-sem }()
			errChan <- f(idx)
		}(idx)
	}
	var firstErr error
	for idx := 0; idx < m; idx++ {
		if err := <-errChan; err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// parseScalar processes one scalar variable for one timestep: interpolate,
// filter, write the initial snapshot at the reference time, and store the
// four boundary bands. The field buffer is owned by this task alone.
func parseScalar(cfg *Config, lbc *LBCData, slices map[string]lbcSlice, ip *InterpFactors,
	sigmaN int, name string, t int, fldEra, zEra *sparse.DenseArray) error {
	cfg.Log.Debugf("lesbound: processing field %s at t=%d", name, t)
	d, vg := cfg.Domain, cfg.VGrid

	fld := sparse.ZerosDense(vg.Ktot, d.JtotPad, d.ItotPad)
	if err := InterpolateRectToCurv(fld, fldEra, vg.Z, zEra, ip); err != nil {
		return fmt.Errorf("lesbound: interpolating %s at t=%d: %v", name, t, err)
	}
	GaussianFilter(fld, sigmaN)

	if t == 0 {
		if err := SaveField(fld, vg.Ktot, name, cfg.NameSuffix, cfg.OutputDir, d.NPad, cfg.SinglePrecision); err != nil {
			return err
		}
	}
	for _, side := range lbcSides {
		lbc.set(name, side, t, fld, slices[sliceKey(name, side)])
	}
	return nil
}

// parseMomentum processes the coupled momentum group for one timestep:
//
//  1. Interpolate u, v and w at their staggered locations.
//  2. Blend w to zero at the surface over the blend height.
//  3. Correct the domain-mean horizontal divergence of u and v so the
//     implied subsidence matches the blended w.
//  4. Recompute w from continuity so the field is divergence free at
//     every grid point, and report the residual.
func parseMomentum(cfg *Config, lbc *LBCData, slices map[string]lbcSlice, ipU, ipV, ipS *InterpFactors,
	sigmaN, t int, uEra, vEra, wEra, zEra *sparse.DenseArray) error {
	cfg.Log.Debugf("lesbound: processing momentum at t=%d", t)
	d, vg := cfg.Domain, cfg.VGrid

	u := sparse.ZerosDense(vg.Ktot, d.JtotPad, d.ItotPad)
	v := sparse.ZerosDense(vg.Ktot, d.JtotPad, d.ItotPad)
	w := sparse.ZerosDense(vg.Ktot+1, d.JtotPad, d.ItotPad)

	if err := InterpolateRectToCurv(u, uEra, vg.Z, zEra, ipU); err != nil {
		return fmt.Errorf("lesbound: interpolating u at t=%d: %v", t, err)
	}
	if err := InterpolateRectToCurv(v, vEra, vg.Z, zEra, ipV); err != nil {
		return fmt.Errorf("lesbound: interpolating v at t=%d: %v", t, err)
	}
	if err := InterpolateRectToCurv(w, wEra, vg.Zh, zEra, ipS); err != nil {
		return fmt.Errorf("lesbound: interpolating w at t=%d: %v", t, err)
	}
	GaussianFilter(u, sigmaN)
	GaussianFilter(v, sigmaN)
	GaussianFilter(w, sigmaN)

	BlendWToSurface(w, vg.Zh, cfg.BlendHeight)
	CorrectDivUV(u, v, w, cfg.Rho, cfg.Rhoh, vg.Dzi, cfg.USplit, d)
	CalcWFromUV(w, u, v, cfg.Rho, cfg.Rhoh, vg.Dz, d)

	divMax, k, j, i := CheckDivergence(u, v, w, cfg.Rho, cfg.Rhoh, vg.Dzi, d)
	if divMax > divWarnThreshold {
		cfg.Log.Warnf("lesbound: maximum divergence in LES domain at t=%d: %.3e at i=%d, j=%d, k=%d", t, divMax, i, j, k)
	} else {
		cfg.Log.Debugf("lesbound: maximum divergence in LES domain at t=%d: %.3e at i=%d, j=%d, k=%d", t, divMax, i, j, k)
	}

	if t == 0 {
		if err := SaveField(u, vg.Ktot, "u", cfg.NameSuffix, cfg.OutputDir, d.NPad, cfg.SinglePrecision); err != nil {
			return err
		}
		if err := SaveField(v, vg.Ktot, "v", cfg.NameSuffix, cfg.OutputDir, d.NPad, cfg.SinglePrecision); err != nil {
			return err
		}
		// The top half level is dropped so the snapshot matches the
		// extent of the model's prognostic w array.
		if err := SaveField(w, vg.Ktot, "w", cfg.NameSuffix, cfg.OutputDir, d.NPad, cfg.SinglePrecision); err != nil {
			return err
		}
	}
	for _, side := range lbcSides {
		lbc.set("u", side, t, u, slices[sliceKey("u", side)])
		lbc.set("v", side, t, v, slices[sliceKey("v", side)])
		lbc.set("w", side, t, w, slices[sliceKey("w", side)])
	}
	return nil
}
