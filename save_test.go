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
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/ctessum/sparse"
)

func TestSnapshotPath(t *testing.T) {
	if got := snapshotPath("out", "thl", ""); got != filepath.Join("out", "thl.0000000") {
		t.Errorf("snapshotPath = %q", got)
	}
	if got := snapshotPath("out", "u", "nested"); got != filepath.Join("out", "u_nested.0000000") {
		t.Errorf("snapshotPath with suffix = %q", got)
	}
}

func TestSaveField(t *testing.T) {
	// 2 x 2 interior with a halo of 1; values mark their position so the
	// halo stripping is visible in the output.
	fld := sparse.ZerosDense(3, 4, 4)
	for k := 0; k < 3; k++ {
		for j := 0; j < 4; j++ {
			for i := 0; i < 4; i++ {
				fld.Set(float64(100*k+10*j+i), k, j, i)
			}
		}
	}

	dir := t.TempDir()
	if err := SaveField(fld, 2, "w", "", dir, 1, false); err != nil {
		t.Fatal(err)
	}

	b, err := os.ReadFile(filepath.Join(dir, "w.0000000"))
	if err != nil {
		t.Fatal(err)
	}
	// Two levels of 2 x 2 interior values, float64.
	if len(b) != 2*2*2*8 {
		t.Fatalf("file length = %d; want %d", len(b), 2*2*2*8)
	}
	vals := make([]float64, 8)
	for n := range vals {
		vals[n] = float64frombytes(b[8*n : 8*n+8])
	}
	want := []float64{11, 12, 21, 22, 111, 112, 121, 122}
	for n := range want {
		if vals[n] != want[n] {
			t.Errorf("value %d = %g; want %g", n, vals[n], want[n])
		}
	}

	// Single precision halves the file.
	if err := SaveField(fld, 3, "thl", "test", dir, 1, true); err != nil {
		t.Fatal(err)
	}
	b, err = os.ReadFile(filepath.Join(dir, "thl_test.0000000"))
	if err != nil {
		t.Fatal(err)
	}
	if len(b) != 3*2*2*4 {
		t.Fatalf("single-precision file length = %d; want %d", len(b), 3*2*2*4)
	}
}

func float64frombytes(b []byte) float64 {
	return math.Float64frombits(binary.LittleEndian.Uint64(b))
}
