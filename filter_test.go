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
	"testing"

	"github.com/ctessum/sparse"
)

func TestFilterCells(t *testing.T) {
	cases := []struct {
		sigmaH, dx, divisor float64
		want                int
	}{
		{0, 100, 1, 0},
		{-5, 100, 1, 0},
		{100, 100, 1, 1},
		{250, 100, 1, 3},
		{600, 100, 6, 1},
		{601, 100, 6, 2},
	}
	for _, c := range cases {
		if got := FilterCells(c.sigmaH, c.dx, c.divisor); got != c.want {
			t.Errorf("FilterCells(%g, %g, %g) = %d; want %d",
				c.sigmaH, c.dx, c.divisor, got, c.want)
		}
	}
}

func TestGaussKernel(t *testing.T) {
	k := gaussKernel(2)
	if len(k) != 17 {
		t.Fatalf("kernel length = %d; want 17", len(k))
	}
	var sum float64
	for _, v := range k {
		sum += v
	}
	if math.Abs(sum-1) > 1e-12 {
		t.Errorf("kernel sum = %g; want 1", sum)
	}
	for i := range k {
		if k[i] != k[len(k)-1-i] {
			t.Errorf("kernel is not symmetric at %d", i)
		}
	}
}

func TestReflectIndex(t *testing.T) {
	cases := []struct{ i, n, want int }{
		{0, 5, 0},
		{4, 5, 4},
		{-1, 5, 0},
		{-2, 5, 1},
		{5, 5, 4},
		{6, 5, 3},
	}
	for _, c := range cases {
		if got := reflectIndex(c.i, c.n); got != c.want {
			t.Errorf("reflectIndex(%d, %d) = %d; want %d", c.i, c.n, got, c.want)
		}
	}
}

func TestGaussianFilter(t *testing.T) {
	// A constant field is invariant under the normalized kernel, including
	// at the reflected edges.
	fld := sparse.ZerosDense(2, 10, 12)
	for n := range fld.Elements {
		fld.Elements[n] = 3.5
	}
	GaussianFilter(fld, 2)
	for n, v := range fld.Elements {
		if math.Abs(v-3.5) > 1e-12 {
			t.Fatalf("element %d = %g after filtering a constant field", n, v)
		}
	}

	// A point impulse spreads but conserves its total.
	fld = sparse.ZerosDense(1, 21, 21)
	fld.Set(1, 0, 10, 10)
	GaussianFilter(fld, 1)
	var sum float64
	for _, v := range fld.Elements {
		sum += v
	}
	if math.Abs(sum-1) > 1e-12 {
		t.Errorf("impulse sum = %g after filtering; want 1", sum)
	}
	if fld.Get(0, 10, 10) >= 1 {
		t.Error("impulse center did not spread")
	}
	if fld.Get(0, 10, 10) <= fld.Get(0, 10, 11) {
		t.Error("center is not the maximum after filtering")
	}

	// Zero width leaves the field untouched.
	fld2 := sparse.ZerosDense(1, 4, 4)
	fld2.Set(2, 0, 1, 2)
	GaussianFilter(fld2, 0)
	if fld2.Get(0, 1, 2) != 2 {
		t.Error("sigma 0 modified the field")
	}
}
