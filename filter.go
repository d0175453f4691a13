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
	"gonum.org/v1/gonum/floats"
)

// FilterCells converts the Gaussian filter length scale sigmaH to a kernel
// standard deviation in grid cells: ceil(sigmaH / (divisor * dx)). The
// divisor is explicit because different consumers of the filtered fields
// use different conventions for it.
func FilterCells(sigmaH, dx, divisor float64) int {
	if sigmaH <= 0 {
		return 0
	}
	return int(math.Ceil(sigmaH / (divisor * dx)))
}

// gaussKernel returns normalized Gaussian weights for standard deviation
// sigma grid cells, truncated at 4 sigma.
func gaussKernel(sigma int) []float64 {
	r := 4 * sigma
	k := make([]float64, 2*r+1)
	s := float64(sigma)
	for t := -r; t <= r; t++ {
		k[t+r] = math.Exp(-0.5 * float64(t*t) / (s * s))
	}
	floats.Scale(1/floats.Sum(k), k)
	return k
}

// reflectIndex maps an out-of-range line index back into [0, n) by
// mirroring about the array edges.
func reflectIndex(i, n int) int {
	for i < 0 || i >= n {
		if i < 0 {
			i = -i - 1
		}
		if i >= n {
			i = 2*n - i - 1
		}
	}
	return i
}

// GaussianFilter smooths fld in place with a separable Gaussian kernel of
// standard deviation sigmaN grid cells along both horizontal axes; each
// vertical level is filtered independently. Edges are handled by
// reflection, so interior values are unaffected by edge artifacts as long
// as the halo is at least as wide as the kernel support. A non-positive
// sigmaN is a no-op.
func GaussianFilter(fld *sparse.DenseArray, sigmaN int) {
	if sigmaN <= 0 {
		return
	}
	kern := gaussKernel(sigmaN)
	r := len(kern) / 2

	ktot, jtot, itot := fld.Shape[0], fld.Shape[1], fld.Shape[2]
	line := make([]float64, max(jtot, itot))

	for k := 0; k < ktot; k++ {
		plane := fld.Elements[k*jtot*itot : (k+1)*jtot*itot]

		// x direction.
		for j := 0; j < jtot; j++ {
			row := plane[j*itot : (j+1)*itot]
			copy(line, row)
			for i := 0; i < itot; i++ {
				var acc float64
				for t := -r; t <= r; t++ {
					acc += kern[t+r] * line[reflectIndex(i+t, itot)]
				}
				row[i] = acc
			}
		}

		// y direction.
		for i := 0; i < itot; i++ {
			for j := 0; j < jtot; j++ {
				line[j] = plane[j*itot+i]
			}
			for j := 0; j < jtot; j++ {
				var acc float64
				for t := -r; t <= r; t++ {
					acc += kern[t+r] * line[reflectIndex(j+t, jtot)]
				}
				plane[j*itot+i] = acc
			}
		}
	}
}
