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

	"github.com/ctessum/geom/proj"
	"github.com/ctessum/sparse"
)

// Domain describes the horizontal extent of the LES domain, including the
// halo padding the divergence stencils need at the eventual interior
// boundary. All padded arrays are laid out (j, i).
type Domain struct {
	// Itot and Jtot are the number of grid cells of the physical domain.
	Itot, Jtot int

	// NGhost and NSponge are the ghost- and sponge-layer widths used by
	// the lateral boundary conditions.
	NGhost, NSponge int

	// NPad is the halo width of the padded grid: NGhost + NSponge + 1.
	// The extra cell keeps the divergence stencil defined on the
	// outermost ghost cell.
	NPad int

	// ItotPad and JtotPad are the padded extents: Itot + 2*NPad etc.
	ItotPad, JtotPad int

	// Grid spacings and their inverses.
	Dx, Dy, Dxi, Dyi float64

	// XSize and YSize are the physical domain sizes.
	XSize, YSize float64

	// Cell-center and face coordinates of the padded grid, relative to
	// the domain origin. XhPad holds u locations, YhPad v locations.
	XPad, YPad, XhPad, YhPad []float64

	// Padded curvilinear coordinates at the scalar, u and v staggered
	// locations. Shape (JtotPad, ItotPad).
	Lon, Lat, LonU, LatU, LonV, LatV *sparse.DenseArray

	// Index bounds on the padded grid inside which the divergence
	// stencils are applied: everything but the outermost ring.
	IStart, IEnd, JStart, JEnd int
}

// NewDomain creates a Domain for a grid of itot x jtot cells of size
// xsize x ysize whose lower-left corner sits at (x0, y0) in the projected
// coordinate system given by the proj4 string. The curvilinear lon/lat
// coordinates at each staggered location are derived by transforming the
// padded grid to WGS84.
func NewDomain(proj4 string, x0, y0, xsize, ysize float64, itot, jtot, nGhost, nSponge int) (*Domain, error) {
	d, err := newDomainGrid(x0, y0, xsize, ysize, itot, jtot, nGhost, nSponge)
	if err != nil {
		return nil, err
	}

	sr, err := proj.Parse(proj4)
	if err != nil {
		return nil, fmt.Errorf("lesbound: parsing domain projection: %v", err)
	}
	wgs84, err := proj.Parse("WGS84")
	if err != nil {
		return nil, err
	}
	trans, err := sr.NewTransform(wgs84)
	if err != nil {
		return nil, fmt.Errorf("lesbound: creating domain transform: %v", err)
	}

	fill := func(lon, lat *sparse.DenseArray, x, y []float64) error {
		for j := 0; j < d.JtotPad; j++ {
			for i := 0; i < d.ItotPad; i++ {
				lo, la, err := trans(x0+x[i], y0+y[j])
				if err != nil {
					return fmt.Errorf("lesbound: transforming grid point (%d, %d): %v", j, i, err)
				}
				lon.Set(lo, j, i)
				lat.Set(la, j, i)
			}
		}
		return nil
	}
	if err := fill(d.Lon, d.Lat, d.XPad, d.YPad); err != nil {
		return nil, err
	}
	if err := fill(d.LonU, d.LatU, d.XhPad, d.YPad); err != nil {
		return nil, err
	}
	if err := fill(d.LonV, d.LatV, d.XPad, d.YhPad); err != nil {
		return nil, err
	}
	return d, nil
}

// newDomainGrid builds the index and coordinate bookkeeping of a Domain,
// leaving the curvilinear coordinate arrays zeroed.
func newDomainGrid(x0, y0, xsize, ysize float64, itot, jtot, nGhost, nSponge int) (*Domain, error) {
	if itot < 1 || jtot < 1 {
		return nil, fmt.Errorf("lesbound: invalid domain extents (%d, %d)", itot, jtot)
	}
	if xsize <= 0 || ysize <= 0 {
		return nil, fmt.Errorf("lesbound: invalid domain sizes (%g, %g)", xsize, ysize)
	}
	if nGhost < 1 || nSponge < 0 {
		return nil, fmt.Errorf("lesbound: invalid ghost/sponge widths (%d, %d)", nGhost, nSponge)
	}
	d := &Domain{
		Itot:    itot,
		Jtot:    jtot,
		NGhost:  nGhost,
		NSponge: nSponge,
		NPad:    nGhost + nSponge + 1,
		Dx:      xsize / float64(itot),
		Dy:      ysize / float64(jtot),
		XSize:   xsize,
		YSize:   ysize,
	}
	d.Dxi = 1 / d.Dx
	d.Dyi = 1 / d.Dy
	d.ItotPad = itot + 2*d.NPad
	d.JtotPad = jtot + 2*d.NPad

	d.XPad = make([]float64, d.ItotPad)
	d.XhPad = make([]float64, d.ItotPad)
	for i := range d.XPad {
		d.XhPad[i] = float64(i-d.NPad) * d.Dx
		d.XPad[i] = d.XhPad[i] + 0.5*d.Dx
	}
	d.YPad = make([]float64, d.JtotPad)
	d.YhPad = make([]float64, d.JtotPad)
	for j := range d.YPad {
		d.YhPad[j] = float64(j-d.NPad) * d.Dy
		d.YPad[j] = d.YhPad[j] + 0.5*d.Dy
	}

	d.IStart, d.IEnd = 1, d.ItotPad-1
	d.JStart, d.JEnd = 1, d.JtotPad-1

	d.Lon = sparse.ZerosDense(d.JtotPad, d.ItotPad)
	d.Lat = sparse.ZerosDense(d.JtotPad, d.ItotPad)
	d.LonU = sparse.ZerosDense(d.JtotPad, d.ItotPad)
	d.LatU = sparse.ZerosDense(d.JtotPad, d.ItotPad)
	d.LonV = sparse.ZerosDense(d.JtotPad, d.ItotPad)
	d.LatV = sparse.ZerosDense(d.JtotPad, d.ItotPad)
	return d, nil
}

// lonlat returns the curvilinear coordinates for the given staggered
// location. The w location coincides horizontally with the scalars.
func (d *Domain) lonlat(s Stagger) (lon, lat *sparse.DenseArray) {
	switch s {
	case StaggerU:
		return d.LonU, d.LatU
	case StaggerV:
		return d.LonV, d.LatV
	default:
		return d.Lon, d.Lat
	}
}
