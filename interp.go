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

	"github.com/ctessum/sparse"
)

// InterpFactors holds the reusable horizontal interpolation tables mapping
// one staggered location of the curvilinear LES grid onto a rectilinear
// source grid. Il and Jl are the lower-left source cell indices along the
// longitude and latitude axes; Fx and Fy the fractional positions within
// that cell, in [0, 1]. The tables are immutable once built and safe for
// concurrent use.
type InterpFactors struct {
	Il, Jl *sparse.DenseArrayInt
	Fx, Fy *sparse.DenseArray
}

// locate finds the interval of the strictly increasing axis that contains
// v, returning the lower index and the fractional position. Points outside
// the axis range are a configuration error; extrapolation is never
// silently permitted.
func locate(axis []float64, v float64) (int, float64, error) {
	n := len(axis)
	idx := sort.SearchFloat64s(axis, v)
	switch {
	case idx == 0:
		if v != axis[0] {
			return 0, 0, fmt.Errorf("coordinate %g is below the source range [%g, %g]", v, axis[0], axis[n-1])
		}
		return 0, 0, nil
	case idx == n:
		return 0, 0, fmt.Errorf("coordinate %g is above the source range [%g, %g]", v, axis[0], axis[n-1])
	}
	il := idx - 1
	return il, (v - axis[il]) / (axis[il+1] - axis[il]), nil
}

// NewInterpFactors computes bilinear interpolation factors from the
// rectilinear source axes lon and lat (strictly increasing) to the
// curvilinear target coordinates lonT and latT, which must both have shape
// (jtot, itot). Every target point must lie inside the source envelope.
func NewInterpFactors(lon, lat []float64, lonT, latT *sparse.DenseArray) (*InterpFactors, error) {
	if len(lon) < 2 || len(lat) < 2 {
		return nil, fmt.Errorf("lesbound: source axes need at least 2 points; got (%d, %d)", len(lon), len(lat))
	}
	for i := 1; i < len(lon); i++ {
		if lon[i] <= lon[i-1] {
			return nil, fmt.Errorf("lesbound: source longitude axis is not strictly increasing at index %d", i)
		}
	}
	for j := 1; j < len(lat); j++ {
		if lat[j] <= lat[j-1] {
			return nil, fmt.Errorf("lesbound: source latitude axis is not strictly increasing at index %d", j)
		}
	}
	if len(lonT.Shape) != 2 || len(latT.Shape) != 2 ||
		lonT.Shape[0] != latT.Shape[0] || lonT.Shape[1] != latT.Shape[1] {
		return nil, fmt.Errorf("lesbound: target coordinate arrays have mismatched shapes")
	}

	jtot, itot := lonT.Shape[0], lonT.Shape[1]
	f := &InterpFactors{
		Il: sparse.ZerosDenseInt(jtot, itot),
		Jl: sparse.ZerosDenseInt(jtot, itot),
		Fx: sparse.ZerosDense(jtot, itot),
		Fy: sparse.ZerosDense(jtot, itot),
	}
	for j := 0; j < jtot; j++ {
		for i := 0; i < itot; i++ {
			il, fx, err := locate(lon, lonT.Get(j, i))
			if err != nil {
				return nil, fmt.Errorf("lesbound: target point (%d, %d): %v", j, i, err)
			}
			jl, fy, err := locate(lat, latT.Get(j, i))
			if err != nil {
				return nil, fmt.Errorf("lesbound: target point (%d, %d): %v", j, i, err)
			}
			f.Il.Set(il, j, i)
			f.Jl.Set(jl, j, i)
			f.Fx.Set(fx, j, i)
			f.Fy.Set(fy, j, i)
		}
	}
	return f, nil
}

// InterpolateRectToCurv fills dst with the tri-linear interpolation of the
// source field src (level, lat, lon) onto the curvilinear grid described by
// the factor tables f. zDst gives the target heights of each output level
// (strictly increasing) and zSrc the source model-level heights, which must
// have the same shape as src and increase with the level index. Vertical
// extrapolation beyond the source column is clamped to the nearest source
// level. dst is fully overwritten.
func InterpolateRectToCurv(dst, src *sparse.DenseArray, zDst []float64, zSrc *sparse.DenseArray, f *InterpFactors) error {
	if len(dst.Shape) != 3 || len(src.Shape) != 3 {
		return fmt.Errorf("lesbound: interpolation fields must be 3-d")
	}
	jtot, itot := dst.Shape[1], dst.Shape[2]
	if dst.Shape[0] != len(zDst) {
		return fmt.Errorf("lesbound: output field has %d levels; target heights have %d", dst.Shape[0], len(zDst))
	}
	if jtot != f.Il.Shape[0] || itot != f.Il.Shape[1] {
		return fmt.Errorf("lesbound: output shape (%d, %d) does not match factor tables (%d, %d)",
			jtot, itot, f.Il.Shape[0], f.Il.Shape[1])
	}
	for n := 0; n < 3; n++ {
		if src.Shape[n] != zSrc.Shape[n] {
			return fmt.Errorf("lesbound: source field and source heights have mismatched shapes")
		}
	}

	ktotSrc := src.Shape[0]
	zc := make([]float64, ktotSrc)
	vc := make([]float64, ktotSrc)

	for j := 0; j < jtot; j++ {
		for i := 0; i < itot; i++ {
			il := f.Il.Get(j, i)
			jl := f.Jl.Get(j, i)
			fx := f.Fx.Get(j, i)
			fy := f.Fy.Get(j, i)

			w00 := (1 - fy) * (1 - fx)
			w01 := (1 - fy) * fx
			w10 := fy * (1 - fx)
			w11 := fy * fx

			// Interpolate the source column (heights and values) to
			// the target horizontal location.
			for ks := 0; ks < ktotSrc; ks++ {
				zc[ks] = w00*zSrc.Get(ks, jl, il) + w01*zSrc.Get(ks, jl, il+1) +
					w10*zSrc.Get(ks, jl+1, il) + w11*zSrc.Get(ks, jl+1, il+1)
				vc[ks] = w00*src.Get(ks, jl, il) + w01*src.Get(ks, jl, il+1) +
					w10*src.Get(ks, jl+1, il) + w11*src.Get(ks, jl+1, il+1)
			}

			kl := 0
			for k, zt := range zDst {
				var val float64
				switch {
				case zt <= zc[0]:
					val = vc[0]
				case zt >= zc[ktotSrc-1]:
					val = vc[ktotSrc-1]
				default:
					for zc[kl+1] < zt {
						kl++
					}
					fk := (zt - zc[kl]) / (zc[kl+1] - zc[kl])
					val = vc[kl] + fk*(vc[kl+1]-vc[kl])
				}
				dst.Set(val, k, j, i)
			}
		}
	}
	return nil
}
