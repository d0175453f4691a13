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
	"bufio"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ctessum/sparse"
)

// snapshotPath returns the initial-field file name for a variable:
// <name>.0000000, or <name>_<suffix>.0000000 when a suffix is configured.
// The zero-padded counter is the model time of the snapshot.
func snapshotPath(dir, name, suffix string) string {
	if suffix == "" {
		return filepath.Join(dir, fmt.Sprintf("%s.0000000", name))
	}
	return filepath.Join(dir, fmt.Sprintf("%s_%s.0000000", name, suffix))
}

// SaveField writes the lowest ktot levels of the halo-stripped interior of
// fld as a flat little-endian binary file in level-major, then row-major
// order, the layout the LES model reads its restart files in. Pass
// ktot < fld.Shape[0] to drop the top half level of w.
func SaveField(fld *sparse.DenseArray, ktot int, name, suffix, dir string, nPad int, single bool) error {
	f, err := os.Create(snapshotPath(dir, name, suffix))
	if err != nil {
		return fmt.Errorf("lesbound: creating initial field file: %v", err)
	}
	defer f.Close()
	w := bufio.NewWriter(f)

	jtot, itot := fld.Shape[1], fld.Shape[2]
	row64 := make([]float64, itot-2*nPad)
	row32 := make([]float32, itot-2*nPad)
	for k := 0; k < ktot; k++ {
		for j := nPad; j < jtot-nPad; j++ {
			for i := nPad; i < itot-nPad; i++ {
				row64[i-nPad] = fld.Get(k, j, i)
			}
			if single {
				for n, v := range row64 {
					row32[n] = float32(v)
				}
				err = binary.Write(w, binary.LittleEndian, row32)
			} else {
				err = binary.Write(w, binary.LittleEndian, row64)
			}
			if err != nil {
				return fmt.Errorf("lesbound: writing initial field %s: %v", name, err)
			}
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("lesbound: writing initial field %s: %v", name, err)
	}
	return nil
}
