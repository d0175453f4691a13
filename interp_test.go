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
	"testing"

	"github.com/ctessum/sparse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocate(t *testing.T) {
	axis := []float64{0, 1, 3}

	il, f, err := locate(axis, 0.5)
	require.NoError(t, err)
	assert.Equal(t, 0, il)
	assert.InDelta(t, 0.5, f, 1e-15)

	il, f, err = locate(axis, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, il)
	assert.InDelta(t, 0.5, f, 1e-15)

	il, f, err = locate(axis, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, il)
	assert.Equal(t, 0.0, f)

	_, _, err = locate(axis, -0.1)
	assert.Error(t, err)
	_, _, err = locate(axis, 3.1)
	assert.Error(t, err)
}

func TestNewInterpFactors(t *testing.T) {
	lon := []float64{0, 1, 2, 3}
	lat := []float64{10, 11, 12}

	lonT := sparse.ZerosDense(2, 2)
	latT := sparse.ZerosDense(2, 2)
	lonT.Set(0.25, 0, 0)
	latT.Set(10.5, 0, 0)
	lonT.Set(2.75, 0, 1)
	latT.Set(11.25, 0, 1)
	lonT.Set(1, 1, 0)
	latT.Set(11, 1, 0)
	lonT.Set(3, 1, 1)
	latT.Set(12, 1, 1)

	f, err := NewInterpFactors(lon, lat, lonT, latT)
	require.NoError(t, err)
	assert.Equal(t, 0, f.Il.Get(0, 0))
	assert.InDelta(t, 0.25, f.Fx.Get(0, 0), 1e-15)
	assert.Equal(t, 2, f.Il.Get(0, 1))
	assert.InDelta(t, 0.75, f.Fx.Get(0, 1), 1e-15)
	assert.Equal(t, 0, f.Jl.Get(0, 0))
	assert.InDelta(t, 0.5, f.Fy.Get(0, 0), 1e-15)

	// A point outside the source envelope is an error, not extrapolated.
	lonT.Set(3.5, 1, 1)
	_, err = NewInterpFactors(lon, lat, lonT, latT)
	assert.Error(t, err)

	// Non-monotonic source axes are rejected.
	_, err = NewInterpFactors([]float64{0, 2, 1}, lat, lonT, latT)
	assert.Error(t, err)
}

// interpTestGrid builds a rectilinear source grid and a coincident
// curvilinear target so interpolation of any linear function is exact.
func interpTestGrid() (lon, lat []float64, lonT, latT *sparse.DenseArray) {
	lon = []float64{0, 1, 2, 3, 4}
	lat = []float64{0, 1, 2, 3}
	lonT = sparse.ZerosDense(3, 4)
	latT = sparse.ZerosDense(3, 4)
	for j := 0; j < 3; j++ {
		for i := 0; i < 4; i++ {
			lonT.Set(0.3+0.8*float64(i), j, i)
			latT.Set(0.2+0.9*float64(j), j, i)
		}
	}
	return lon, lat, lonT, latT
}

func TestInterpolateRectToCurv(t *testing.T) {
	lon, lat, lonT, latT := interpTestGrid()
	f, err := NewInterpFactors(lon, lat, lonT, latT)
	require.NoError(t, err)

	// Source field linear in lon, lat and height; source heights vary
	// horizontally so the terrain-following lookup is exercised.
	src := sparse.ZerosDense(3, len(lat), len(lon))
	zSrc := sparse.ZerosDense(3, len(lat), len(lon))
	zLev := []float64{100, 500, 2000}
	for k := 0; k < 3; k++ {
		for j := range lat {
			for i := range lon {
				z := zLev[k] + 10*lon[i]
				zSrc.Set(z, k, j, i)
				src.Set(2*lon[i]-3*lat[j]+0.001*z, k, j, i)
			}
		}
	}

	zDst := []float64{200, 1000}
	dst := sparse.ZerosDense(2, 3, 4)
	require.NoError(t, InterpolateRectToCurv(dst, src, zDst, zSrc, f))

	for k, zt := range zDst {
		for j := 0; j < 3; j++ {
			for i := 0; i < 4; i++ {
				want := 2*lonT.Get(j, i) - 3*latT.Get(j, i) + 0.001*zt
				assert.InDelta(t, want, dst.Get(k, j, i), 1e-12,
					"level %d point (%d, %d)", k, j, i)
			}
		}
	}
}

func TestInterpolateRectToCurvClamp(t *testing.T) {
	lon, lat, lonT, latT := interpTestGrid()
	f, err := NewInterpFactors(lon, lat, lonT, latT)
	require.NoError(t, err)

	src := sparse.ZerosDense(2, len(lat), len(lon))
	zSrc := sparse.ZerosDense(2, len(lat), len(lon))
	for j := range lat {
		for i := range lon {
			zSrc.Set(100, 0, j, i)
			zSrc.Set(200, 1, j, i)
			src.Set(5, 0, j, i)
			src.Set(7, 1, j, i)
		}
	}

	// Targets below and above the source column clamp to the end values.
	dst := sparse.ZerosDense(3, 3, 4)
	require.NoError(t, InterpolateRectToCurv(dst, src, []float64{50, 150, 400}, zSrc, f))
	assert.InDelta(t, 5.0, dst.Get(0, 1, 1), 1e-15)
	assert.InDelta(t, 6.0, dst.Get(1, 1, 1), 1e-15)
	assert.InDelta(t, 7.0, dst.Get(2, 1, 1), 1e-15)
}
