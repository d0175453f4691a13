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

import "fmt"

// VerticalGrid holds the LES vertical discretization with second-order
// half levels: Zh[0] is the surface and Zh[Ktot] the domain top, with each
// interior half level midway between the neighboring full levels.
type VerticalGrid struct {
	// Ktot is the number of full levels.
	Ktot int

	// Z are full-level heights (len Ktot) and Zh half-level heights
	// (len Ktot+1), both strictly increasing.
	Z, Zh []float64

	// Dz are the full-level grid spacings Zh[k+1]-Zh[k] and Dzi their
	// inverses.
	Dz, Dzi []float64

	// ZSize is the domain top height.
	ZSize float64
}

// NewVerticalGrid constructs a VerticalGrid from full-level heights z and
// the domain top zsize. The heights must be strictly increasing, positive,
// and below zsize.
func NewVerticalGrid(z []float64, zsize float64) (*VerticalGrid, error) {
	ktot := len(z)
	if ktot < 2 {
		return nil, fmt.Errorf("lesbound: vertical grid needs at least 2 levels; got %d", ktot)
	}
	if z[0] <= 0 {
		return nil, fmt.Errorf("lesbound: lowest full level %g is not above the surface", z[0])
	}
	if z[ktot-1] >= zsize {
		return nil, fmt.Errorf("lesbound: highest full level %g is not below the domain top %g", z[ktot-1], zsize)
	}
	for k := 1; k < ktot; k++ {
		if z[k] <= z[k-1] {
			return nil, fmt.Errorf("lesbound: full-level heights are not strictly increasing at level %d", k)
		}
	}

	vg := &VerticalGrid{
		Ktot:  ktot,
		Z:     append([]float64(nil), z...),
		Zh:    make([]float64, ktot+1),
		Dz:    make([]float64, ktot),
		Dzi:   make([]float64, ktot),
		ZSize: zsize,
	}
	vg.Zh[0] = 0
	for k := 1; k < ktot; k++ {
		vg.Zh[k] = 0.5 * (z[k-1] + z[k])
	}
	vg.Zh[ktot] = zsize
	for k := 0; k < ktot; k++ {
		vg.Dz[k] = vg.Zh[k+1] - vg.Zh[k]
		vg.Dzi[k] = 1 / vg.Dz[k]
	}
	return vg, nil
}

// BaseStateFromRho interpolates a full-level density profile onto the half
// levels, extrapolating linearly at the surface and domain top. It is a
// convenience for callers that only have the full-level base state; rho is
// returned unchanged.
func BaseStateFromRho(rho []float64, vg *VerticalGrid) (rhoOut, rhoh []float64, err error) {
	if len(rho) != vg.Ktot {
		return nil, nil, fmt.Errorf("lesbound: density profile has %d levels; want %d", len(rho), vg.Ktot)
	}
	rhoh = make([]float64, vg.Ktot+1)
	for k := 1; k < vg.Ktot; k++ {
		fk := (vg.Zh[k] - vg.Z[k-1]) / (vg.Z[k] - vg.Z[k-1])
		rhoh[k] = rho[k-1] + fk*(rho[k]-rho[k-1])
	}
	rhoh[0] = rho[0] + (vg.Zh[0]-vg.Z[0])*(rho[1]-rho[0])/(vg.Z[1]-vg.Z[0])
	n := vg.Ktot
	rhoh[n] = rho[n-1] + (vg.Zh[n]-vg.Z[n-1])*(rho[n-1]-rho[n-2])/(vg.Z[n-1]-vg.Z[n-2])
	return rho, rhoh, nil
}
