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
	"math"

	"github.com/ctessum/sparse"
)

// BlendWToSurface linearly ramps the half-level vertical velocity w to
// zero between zmax and the surface, where zh gives the half-level
// heights. The surface half level becomes exactly zero; levels at or above
// zmax are unmodified. Reanalysis subsidence profiles are noisy near the
// surface and must vanish there by the no-flux condition.
func BlendWToSurface(w *sparse.DenseArray, zh []float64, zmax float64) {
	jtot, itot := w.Shape[1], w.Shape[2]
	for k := 0; k < w.Shape[0]; k++ {
		if zh[k] >= zmax {
			break
		}
		fac := zh[k] / zmax
		plane := w.Elements[k*jtot*itot : (k+1)*jtot*itot]
		for n := range plane {
			plane[n] *= fac
		}
	}
}

// meanDivergence returns the domain-mean horizontal divergence of (u, v)
// at level k over the stencil region of d.
func meanDivergence(u, v *sparse.DenseArray, k int, d *Domain) float64 {
	var sum float64
	for j := d.JStart; j < d.JEnd; j++ {
		for i := d.IStart; i < d.IEnd; i++ {
			sum += (u.Get(k, j, i+1)-u.Get(k, j, i))*d.Dxi +
				(v.Get(k, j+1, i)-v.Get(k, j, i))*d.Dyi
		}
	}
	return sum / float64((d.JEnd-d.JStart)*(d.IEnd-d.IStart))
}

// planeMean returns the mean of level k of fld over the stencil region.
func planeMean(fld *sparse.DenseArray, k int, d *Domain) float64 {
	var sum float64
	for j := d.JStart; j < d.JEnd; j++ {
		for i := d.IStart; i < d.IEnd; i++ {
			sum += fld.Get(k, j, i)
		}
	}
	return sum / float64((d.JEnd-d.JStart)*(d.IEnd-d.IStart))
}

// CorrectDivUV adjusts the domain-mean horizontal divergence of u and v at
// every full level so that the density-weighted vertical mass flux implied
// by continuity matches the domain mean of the (already blended) target
// vertical velocity w. The correction is a per-level linear ramp in the
// face coordinates, which adds a spatially uniform amount to du/dx and
// dv/dy; uSplit gives the fraction assigned to u, the remainder to v.
//
// Only the domain mean is closed here; CalcWFromUV makes the field
// divergence free point by point afterwards.
func CorrectDivUV(u, v, w *sparse.DenseArray, rho, rhoh, dzi []float64, uSplit float64, d *Domain) {
	ktot := u.Shape[0]
	jtot, itot := u.Shape[1], u.Shape[2]
	for k := 0; k < ktot; k++ {
		wkMean := planeMean(w, k, d)
		wk1Mean := planeMean(w, k+1, d)
		divTarget := -(rhoh[k+1]*wk1Mean - rhoh[k]*wkMean) * dzi[k] / rho[k]
		delta := divTarget - meanDivergence(u, v, k, d)

		du := uSplit * delta
		dv := (1 - uSplit) * delta
		for j := 0; j < jtot; j++ {
			for i := 0; i < itot; i++ {
				u.AddVal(du*d.XhPad[i], k, j, i)
				v.AddVal(dv*d.YhPad[j], k, j, i)
			}
		}
	}
}

// CalcWFromUV recomputes the vertical velocity from the continuity
// equation in density-weighted flux form, integrating upward from w = 0 at
// the surface half level. After this the wind field is divergence free at
// every grid point of the stencil region, not only in the domain mean. The
// top half level is whatever the integration produces; any residual there
// is reported by CheckDivergence rather than corrected.
func CalcWFromUV(w, u, v *sparse.DenseArray, rho, rhoh, dz []float64, d *Domain) {
	ktot := u.Shape[0]
	for j := d.JStart; j < d.JEnd; j++ {
		for i := d.IStart; i < d.IEnd; i++ {
			w.Set(0, 0, j, i)
		}
	}
	for k := 0; k < ktot; k++ {
		for j := d.JStart; j < d.JEnd; j++ {
			for i := d.IStart; i < d.IEnd; i++ {
				div := (u.Get(k, j, i+1)-u.Get(k, j, i))*d.Dxi +
					(v.Get(k, j+1, i)-v.Get(k, j, i))*d.Dyi
				w.Set((rhoh[k]*w.Get(k, j, i)-rho[k]*dz[k]*div)/rhoh[k+1], k+1, j, i)
			}
		}
	}
}

// CheckDivergence scans the stencil region and returns the maximum
// absolute density-weighted continuity residual together with its grid
// location. It never mutates its inputs; the caller decides whether the
// residual warrants a warning.
func CheckDivergence(u, v, w *sparse.DenseArray, rho, rhoh, dzi []float64, d *Domain) (divMax float64, kMax, jMax, iMax int) {
	ktot := u.Shape[0]
	for k := 0; k < ktot; k++ {
		for j := d.JStart; j < d.JEnd; j++ {
			for i := d.IStart; i < d.IEnd; i++ {
				div := rho[k]*((u.Get(k, j, i+1)-u.Get(k, j, i))*d.Dxi+
					(v.Get(k, j+1, i)-v.Get(k, j, i))*d.Dyi) +
					(rhoh[k+1]*w.Get(k+1, j, i)-rhoh[k]*w.Get(k, j, i))*dzi[k]
				if math.Abs(div) > divMax {
					divMax = math.Abs(div)
					kMax, jMax, iMax = k, j, i
				}
			}
		}
	}
	return divMax, kMax, jMax, iMax
}
