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
	"errors"
	"math"
	"os"
	"sync/atomic"
	"testing"

	"github.com/ctessum/sparse"
	"github.com/sirupsen/logrus"
)

// pipelineTestConfig builds a complete configuration around a small padded
// domain whose curvilinear coordinates are filled analytically rather than
// through a map projection, so the tests do not depend on projection data.
func pipelineTestConfig(t *testing.T) *Config {
	t.Helper()
	d, err := newDomainGrid(0, 0, 400, 400, 4, 4, 1, 0)
	if err != nil {
		t.Fatal(err)
	}
	for j := 0; j < d.JtotPad; j++ {
		for i := 0; i < d.ItotPad; i++ {
			d.Lon.Set(float64(i), j, i)
			d.Lat.Set(float64(j), j, i)
			d.LonU.Set(float64(i)-0.5, j, i)
			d.LatU.Set(float64(j), j, i)
			d.LonV.Set(float64(i), j, i)
			d.LatV.Set(float64(j)-0.5, j, i)
		}
	}

	vg, err := NewVerticalGrid([]float64{50, 150, 250}, 300)
	if err != nil {
		t.Fatal(err)
	}

	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)

	cfg := DefaultConfig()
	cfg.Domain = d
	cfg.VGrid = vg
	cfg.Rho = []float64{1, 1, 1}
	cfg.Rhoh = []float64{1, 1, 1, 1}
	cfg.OutputDir = t.TempDir()
	cfg.Log = log
	return cfg
}

// pipelineTestForcing builds a forcing whose rectilinear grid covers the
// padded test domain, with constant fields.
func pipelineTestForcing(names []string, vals map[string]float64) *Forcing {
	lon := make([]float64, 10)
	lat := make([]float64, 10)
	for n := range lon {
		lon[n] = float64(n) - 1
		lat[n] = float64(n) - 1
	}
	frc := &Forcing{
		Lon:       lon,
		Lat:       lat,
		Time:      []float64{0, 3600},
		TimeUnits: "seconds since 2020-01-01",
		Fields:    make(map[string]*sparse.DenseArray),
		Z:         sparse.ZerosDense(2, 3, 10, 10),
	}
	zLev := []float64{100, 500, 2000}
	for ts := 0; ts < 2; ts++ {
		for k := 0; k < 3; k++ {
			for j := 0; j < 10; j++ {
				for i := 0; i < 10; i++ {
					frc.Z.Set(zLev[k], ts, k, j, i)
				}
			}
		}
	}
	for _, name := range names {
		fld := sparse.ZerosDense(2, 3, 10, 10)
		for n := range fld.Elements {
			fld.Elements[n] = vals[name]
		}
		frc.Fields[name] = fld
	}
	return frc
}

func TestCreateInputScalarsOnly(t *testing.T) {
	cfg := pipelineTestConfig(t)
	frc := pipelineTestForcing([]string{"thl", "qt"}, map[string]float64{"thl": 300, "qt": 0.008})

	lbc, err := CreateInput(cfg, frc)
	if err != nil {
		t.Fatal(err)
	}

	// Initial snapshots exist for the reference timestep only.
	for _, name := range []string{"thl", "qt"} {
		if _, err := os.Stat(snapshotPath(cfg.OutputDir, name, "")); err != nil {
			t.Errorf("missing snapshot for %s: %v", name, err)
		}
	}
	if _, err := os.Stat(snapshotPath(cfg.OutputDir, "u", "")); err == nil {
		t.Error("momentum snapshot written without momentum input")
	}

	// All four boundary bands hold the constant input at both timesteps.
	for _, side := range lbcSides {
		v, ok := lbc.Data["thl_"+side]
		if !ok {
			t.Fatalf("missing LBC record thl_%s", side)
		}
		for n, e := range v.Data.Elements {
			if math.Abs(e-300) > 1e-12 {
				t.Fatalf("thl_%s element %d = %g; want 300", side, n, e)
			}
		}
	}
}

func TestCreateInputMomentum(t *testing.T) {
	cfg := pipelineTestConfig(t)
	frc := pipelineTestForcing([]string{"u", "v", "w", "thl"},
		map[string]float64{"u": 5, "v": -2, "w": 0, "thl": 300})

	lbc, err := CreateInput(cfg, frc)
	if err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{"u", "v", "w", "thl"} {
		if _, err := os.Stat(snapshotPath(cfg.OutputDir, name, "")); err != nil {
			t.Errorf("missing snapshot for %s: %v", name, err)
		}
	}

	// A uniform wind passes through the divergence correction unchanged.
	for _, side := range lbcSides {
		u := lbc.Data["u_"+side]
		for n, e := range u.Data.Elements {
			if math.Abs(e-5) > 1e-10 {
				t.Fatalf("u_%s element %d = %g; want 5", side, n, e)
			}
		}
		w := lbc.Data["w_"+side]
		for n, e := range w.Data.Elements {
			if math.Abs(e) > 1e-10 {
				t.Fatalf("w_%s element %d = %g; want 0", side, n, e)
			}
		}
	}

	// The u snapshot has the full-level interior extent.
	fi, err := os.Stat(snapshotPath(cfg.OutputDir, "u", ""))
	if err != nil {
		t.Fatal(err)
	}
	if want := int64(3 * 4 * 4 * 8); fi.Size() != want {
		t.Errorf("u snapshot size = %d; want %d", fi.Size(), want)
	}
	// The w snapshot drops the top half level, so it has the same size.
	fi, err = os.Stat(snapshotPath(cfg.OutputDir, "w", ""))
	if err != nil {
		t.Fatal(err)
	}
	if want := int64(3 * 4 * 4 * 8); fi.Size() != want {
		t.Errorf("w snapshot size = %d; want %d", fi.Size(), want)
	}
}

func TestCreateInputChecksConfig(t *testing.T) {
	cfg := pipelineTestConfig(t)
	cfg.Rho = []float64{1}
	frc := pipelineTestForcing([]string{"thl"}, map[string]float64{"thl": 300})
	if _, err := CreateInput(cfg, frc); err == nil {
		t.Error("no error for a bad density profile")
	}

	cfg = pipelineTestConfig(t)
	cfg.USplit = 1.5
	if _, err := CreateInput(cfg, frc); err == nil {
		t.Error("no error for an out-of-range USplit")
	}
}

func TestRunTasks(t *testing.T) {
	var count int64
	err := runTasks(4, 100, func(n int) error {
		atomic.AddInt64(&count, 1)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if count != 100 {
		t.Errorf("ran %d tasks; want 100", count)
	}

	wantErr := errors.New("task 17 failed")
	err = runTasks(4, 100, func(n int) error {
		if n == 17 {
			return wantErr
		}
		return nil
	})
	if !errors.Is(err, wantErr) {
		t.Errorf("err = %v; want %v", err, wantErr)
	}
}
