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
	"os"
	"sort"

	"github.com/ctessum/cdf"
	"github.com/ctessum/sparse"
)

// lbcSides are the four lateral boundaries, in output order.
var lbcSides = []string{"west", "east", "south", "north"}

// lbcSlice is one entry of the boundary slice map: the half-open index
// ranges into a padded 3-D field that extract the ghost+sponge band of one
// boundary side.
type lbcSlice struct {
	k0, k1, j0, j1, i0, i1 int
}

// lbcSlices computes the boundary slice map for all staggered locations.
// It is computed once per run and shared read-only between workers. The
// bands exclude the outermost ring of the padded grid, which only exists
// to close the divergence stencils.
func lbcSlices(d *Domain, ktot int) map[string]lbcSlice {
	n := d.NPad
	it, jt := d.ItotPad, d.JtotPad
	s := map[string]lbcSlice{
		"s_west":  {0, ktot, 1, jt - 1, 1, n},
		"s_east":  {0, ktot, 1, jt - 1, it - n, it - 1},
		"s_south": {0, ktot, 1, n, 1, it - 1},
		"s_north": {0, ktot, jt - n, jt - 1, 1, it - 1},
	}
	// u carries one extra west column and v one extra south row: the
	// face on the interior boundary itself belongs to the band.
	s["u_west"] = lbcSlice{0, ktot, 1, jt - 1, 1, n + 1}
	s["u_east"] = s["s_east"]
	s["u_south"] = s["s_south"]
	s["u_north"] = s["s_north"]
	s["v_west"] = s["s_west"]
	s["v_east"] = s["s_east"]
	s["v_south"] = lbcSlice{0, ktot, 1, n + 1, 1, it - 1}
	s["v_north"] = s["s_north"]
	// w is stored on half levels with the top level dropped, so the
	// level count matches the full levels.
	s["w_west"] = s["s_west"]
	s["w_east"] = s["s_east"]
	s["w_south"] = s["s_south"]
	s["w_north"] = s["s_north"]
	return s
}

// sliceKey returns the slice-map key for a variable at the given side.
func sliceKey(name, side string) string {
	switch staggerFor(name) {
	case StaggerU:
		return "u_" + side
	case StaggerV:
		return "v_" + side
	case StaggerW:
		return "w_" + side
	default:
		return "s_" + side
	}
}

// LBCVar is the time series of one (variable, boundary side) pair.
type LBCVar struct {
	Dims        []string           // netcdf dimensions for this variable
	Description string             // variable description
	Units       string             // variable units
	Data        *sparse.DenseArray // (time, level, j, i)
}

// LBCData is the lateral boundary condition container: one record per
// (variable, side, time). It is created empty with its final shape before
// interpolation begins and filled in place by the pipeline workers, each
// writing a disjoint (variable, side, time) region, so no locking is used.
type LBCData struct {
	Time      []float64
	TimeUnits string
	Z, Zh     []float64

	// Axes holds the x and y coordinate values of each band dimension,
	// keyed by dimension name.
	Axes map[string][]float64

	Data map[string]*LBCVar
}

// NewLBCData allocates the LBC container for the given variables and
// times. w gets half-level bands with the top level dropped; all other
// variables get full-level bands.
func NewLBCData(names []string, time []float64, timeUnits string, d *Domain, vg *VerticalGrid) *LBCData {
	l := &LBCData{
		Time:      append([]float64(nil), time...),
		TimeUnits: timeUnits,
		Z:         append([]float64(nil), vg.Z...),
		Zh:        vg.Zh[:vg.Ktot],
		Axes:      make(map[string][]float64),
		Data:      make(map[string]*LBCVar),
	}
	slices := lbcSlices(d, vg.Ktot)
	for _, name := range names {
		zdim := "z"
		if staggerFor(name) == StaggerW {
			zdim = "zh"
		}
		x, y := d.XPad, d.YPad
		switch staggerFor(name) {
		case StaggerU:
			x = d.XhPad
		case StaggerV:
			y = d.YhPad
		}
		for _, side := range lbcSides {
			key := sliceKey(name, side)
			s := slices[key]
			l.Axes["x_"+key] = x[s.i0:s.i1]
			l.Axes["y_"+key] = y[s.j0:s.j1]
			l.Data[name+"_"+side] = &LBCVar{
				Dims: []string{"time", zdim, "y_" + key, "x_" + key},
				Description: fmt.Sprintf("lateral boundary condition for %s at the %s edge",
					name, side),
				Data: sparse.ZerosDense(len(time), s.k1-s.k0, s.j1-s.j0, s.i1-s.i0),
			}
		}
	}
	return l
}

// set copies the band s of fld into the record for (name, side) at
// timestep t.
func (l *LBCData) set(name, side string, t int, fld *sparse.DenseArray, s lbcSlice) {
	v := l.Data[name+"_"+side]
	for k := s.k0; k < s.k1; k++ {
		for j := s.j0; j < s.j1; j++ {
			for i := s.i0; i < s.i1; i++ {
				v.Data.Set(fld.Get(k, j, i), t, k-s.k0, j-s.j0, i-s.i0)
			}
		}
	}
}

// Write writes the container to the netcdf file w. When single is true the
// boundary fields are written as float32; the coordinate variables are
// always float64.
func (l *LBCData) Write(w *os.File, single bool) error {
	// Sort the names so they write in the same order every time.
	names := make([]string, 0, len(l.Data))
	for n := range l.Data {
		names = append(names, n)
	}
	sort.Strings(names)

	dimName := []string{"time", "z", "zh"}
	dimLen := []int{len(l.Time), len(l.Z), len(l.Zh)}
	seen := map[string]bool{"time": true, "z": true, "zh": true}
	for _, name := range names {
		v := l.Data[name]
		for n, dim := range v.Dims {
			if !seen[dim] {
				seen[dim] = true
				dimName = append(dimName, dim)
				dimLen = append(dimLen, v.Data.Shape[n])
			}
		}
	}

	h := cdf.NewHeader(dimName, dimLen)
	h.AddAttribute("", "comment", "Lesbound lateral boundary condition file")
	h.AddAttribute("", "data_version", Version)

	h.AddVariable("time", []string{"time"}, []float64{0})
	if l.TimeUnits != "" {
		h.AddAttribute("time", "units", l.TimeUnits)
	}
	h.AddVariable("z", []string{"z"}, []float64{0})
	h.AddAttribute("z", "units", "m")
	h.AddVariable("zh", []string{"zh"}, []float64{0})
	h.AddAttribute("zh", "units", "m")
	for _, dim := range dimName[3:] {
		h.AddVariable(dim, []string{dim}, []float64{0})
		h.AddAttribute(dim, "units", "m")
	}

	for _, name := range names {
		v := l.Data[name]
		if single {
			h.AddVariable(name, v.Dims, []float32{0})
		} else {
			h.AddVariable(name, v.Dims, []float64{0})
		}
		h.AddAttribute(name, "description", v.Description)
		if v.Units != "" {
			h.AddAttribute(name, "units", v.Units)
		}
	}
	h.Define()

	f, err := cdf.Create(w, h)
	if err != nil {
		return fmt.Errorf("lesbound: creating LBC file: %v", err)
	}
	if err := writeAxis(f, "time", l.Time); err != nil {
		return err
	}
	if err := writeAxis(f, "z", l.Z); err != nil {
		return err
	}
	if err := writeAxis(f, "zh", l.Zh); err != nil {
		return err
	}
	for _, dim := range dimName[3:] {
		if err := writeAxis(f, dim, l.Axes[dim]); err != nil {
			return err
		}
	}
	for _, name := range names {
		if err := writeNCF(f, name, l.Data[name].Data, single); err != nil {
			return fmt.Errorf("lesbound: writing variable %s to LBC file: %v", name, err)
		}
	}
	return cdf.UpdateNumRecs(w)
}

// writeAxis writes a 1-d float64 coordinate variable.
func writeAxis(f *cdf.File, name string, vals []float64) error {
	end := f.Header.Lengths(name)
	start := make([]int, len(end))
	r := f.Writer(name, start, end)
	if _, err := r.Write(vals); err != nil {
		return fmt.Errorf("lesbound: writing axis %s: %v", name, err)
	}
	return nil
}

// writeNCF writes a dense array to variable Var of netcdf file f.
func writeNCF(f *cdf.File, Var string, data *sparse.DenseArray, single bool) error {
	// Check that data matches dimensions.
	n := 1
	for _, v := range data.Shape {
		n *= v
	}
	if len(data.Elements) != n {
		return fmt.Errorf("dims are %d but array length is %d", n, len(data.Elements))
	}
	end := f.Header.Lengths(Var)
	start := make([]int, len(end))
	w := f.Writer(Var, start, end)
	if single {
		data32 := make([]float32, len(data.Elements))
		for i, e := range data.Elements {
			data32[i] = float32(e)
		}
		_, err := w.Write(data32)
		return err
	}
	_, err := w.Write(data.Elements)
	return err
}
