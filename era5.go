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

	"github.com/ctessum/cdf"
	"github.com/ctessum/sparse"
)

// Forcing holds one run's reanalysis input: the rectilinear source axes,
// the time axis, one 4-d array (time, level, lat, lon) per variable, and
// the model-level heights with the same shape. The axes and the level
// direction are normalized so that longitude, latitude and heights all
// increase with index.
type Forcing struct {
	Lon, Lat  []float64
	Time      []float64
	TimeUnits string

	Fields map[string]*sparse.DenseArray
	Z      *sparse.DenseArray
}

// HasMomentum reports whether all three momentum components are present.
func (frc *Forcing) HasMomentum() bool {
	for _, name := range []string{"u", "v", "w"} {
		if _, ok := frc.Fields[name]; !ok {
			return false
		}
	}
	return true
}

// NumSteps returns the number of timesteps.
func (frc *Forcing) NumSteps() int { return len(frc.Time) }

// timeSlice returns the (level, lat, lon) slice of a at timestep t. The
// returned array shares storage with a and must be treated as read-only.
func timeSlice(a *sparse.DenseArray, t int) *sparse.DenseArray {
	out := sparse.ZerosDense(a.Shape[1:]...)
	n := len(out.Elements)
	out.Elements = a.Elements[t*n : (t+1)*n]
	return out
}

// ReadERA5 reads the given variables plus the model-level height variable
// from an ERA5 netcdf file. Every requested variable must be 4-d
// (time, level, lat, lon). ERA5 stores latitude north-to-south and model
// levels top-down; both axes are flipped here so they increase.
func ReadERA5(path, heightVar string, fields []string) (*Forcing, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("lesbound: opening ERA5 file: %v", err)
	}
	defer f.Close()
	ff, err := cdf.Open(f)
	if err != nil {
		return nil, fmt.Errorf("lesbound: reading ERA5 file %s: %v", path, err)
	}

	frc := &Forcing{Fields: make(map[string]*sparse.DenseArray)}
	if frc.Lon, _, err = readAxis(ff, "longitude", "lon"); err != nil {
		return nil, err
	}
	if frc.Lat, _, err = readAxis(ff, "latitude", "lat"); err != nil {
		return nil, err
	}
	var timeName string
	if frc.Time, timeName, err = readAxis(ff, "time", "valid_time"); err != nil {
		return nil, err
	}
	if units, ok := ff.Header.GetAttribute(timeName, "units").(string); ok {
		frc.TimeUnits = units
	}

	if frc.Z, err = readVar4d(ff, heightVar); err != nil {
		return nil, err
	}
	if frc.Z.Shape[0] != len(frc.Time) {
		return nil, fmt.Errorf("lesbound: height variable %s has %d timesteps; time axis has %d",
			heightVar, frc.Z.Shape[0], len(frc.Time))
	}
	for _, name := range fields {
		fld, err := readVar4d(ff, name)
		if err != nil {
			return nil, err
		}
		for n, want := range frc.Z.Shape {
			if fld.Shape[n] != want {
				return nil, fmt.Errorf("lesbound: variable %s shape %v does not match heights %v",
					name, fld.Shape, frc.Z.Shape)
			}
		}
		frc.Fields[name] = fld
	}

	frc.normalize()
	return frc, nil
}

// normalize flips the latitude and level axes where needed so that both
// increase with index.
func (frc *Forcing) normalize() {
	nlat := len(frc.Lat)
	if nlat > 1 && frc.Lat[0] > frc.Lat[nlat-1] {
		for n := 0; n < nlat/2; n++ {
			frc.Lat[n], frc.Lat[nlat-1-n] = frc.Lat[nlat-1-n], frc.Lat[n]
		}
		frc.Z = flipAxis(frc.Z, 2)
		for name, fld := range frc.Fields {
			frc.Fields[name] = flipAxis(fld, 2)
		}
	}
	nlev := frc.Z.Shape[1]
	if nlev > 1 && frc.Z.Get(0, 0, 0, 0) > frc.Z.Get(0, nlev-1, 0, 0) {
		frc.Z = flipAxis(frc.Z, 1)
		for name, fld := range frc.Fields {
			frc.Fields[name] = flipAxis(fld, 1)
		}
	}
}

// flipAxis returns a copy of the 4-d array a with the given axis reversed.
func flipAxis(a *sparse.DenseArray, axis int) *sparse.DenseArray {
	out := sparse.ZerosDense(a.Shape...)
	n := a.Shape[axis]
	idx := make([]int, 4)
	for t := 0; t < a.Shape[0]; t++ {
		for k := 0; k < a.Shape[1]; k++ {
			for j := 0; j < a.Shape[2]; j++ {
				for i := 0; i < a.Shape[3]; i++ {
					idx[0], idx[1], idx[2], idx[3] = t, k, j, i
					idx[axis] = n - 1 - idx[axis]
					out.Set(a.Get(t, k, j, i), idx...)
				}
			}
		}
	}
	return out
}

// readAxis reads a 1-d coordinate variable, trying name then alt, and
// returns the values together with the name that resolved.
func readAxis(ff *cdf.File, name, alt string) ([]float64, string, error) {
	if len(ff.Header.Lengths(name)) == 0 {
		if len(ff.Header.Lengths(alt)) == 0 {
			return nil, "", fmt.Errorf("lesbound: ERA5 file has neither %s nor %s", name, alt)
		}
		name = alt
	}
	dims := ff.Header.Lengths(name)
	if len(dims) != 1 {
		return nil, "", fmt.Errorf("lesbound: ERA5 axis %s is not 1-d", name)
	}
	r := ff.Reader(name, nil, nil)
	buf := r.Zero(dims[0])
	if _, err := r.Read(buf); err != nil {
		return nil, "", fmt.Errorf("lesbound: reading ERA5 axis %s: %v", name, err)
	}
	vals, err := toFloat64(buf)
	return vals, name, err
}

// readVar4d reads a full 4-d variable into a dense array.
func readVar4d(ff *cdf.File, name string) (*sparse.DenseArray, error) {
	dims := ff.Header.Lengths(name)
	if len(dims) == 0 {
		return nil, fmt.Errorf("lesbound: variable %s not in ERA5 file", name)
	}
	if len(dims) != 4 {
		return nil, fmt.Errorf("lesbound: ERA5 variable %s is %d-d; want (time, level, lat, lon)", name, len(dims))
	}
	n := 1
	for _, d := range dims {
		n *= d
	}
	r := ff.Reader(name, nil, nil)
	buf := r.Zero(n)
	if _, err := r.Read(buf); err != nil {
		return nil, fmt.Errorf("lesbound: reading ERA5 variable %s: %v", name, err)
	}
	vals, err := toFloat64(buf)
	if err != nil {
		return nil, fmt.Errorf("lesbound: ERA5 variable %s: %v", name, err)
	}
	data := sparse.ZerosDense(dims...)
	copy(data.Elements, vals)
	return data, nil
}

// toFloat64 widens a netcdf read buffer to float64.
func toFloat64(buf interface{}) ([]float64, error) {
	switch b := buf.(type) {
	case []float64:
		return b, nil
	case []float32:
		out := make([]float64, len(b))
		for i, v := range b {
			out[i] = float64(v)
		}
		return out, nil
	case []int32:
		out := make([]float64, len(b))
		for i, v := range b {
			out[i] = float64(v)
		}
		return out, nil
	case []int64:
		out := make([]float64, len(b))
		for i, v := range b {
			out[i] = float64(v)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported netcdf data type %T", buf)
	}
}
