/*
 * universe_test.go, part of mdsynth.
 *
 * Copyright 2026 The mdsynth developers
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 */

package mdsynth

import (
	"math"
	"strings"
	"testing"

	chem "github.com/rmera/gochem"
	v3 "github.com/rmera/gochem/v3"
)

// countFrames drains a trajectory, failing the test on anything but a
// normal last-frame termination.
func countFrames(Te *testing.T, traj chem.Traj) int {
	frame := v3.Zeros(traj.Len())
	n := 0
	for {
		err := traj.Next(frame)
		if err != nil {
			if _, ok := err.(chem.LastFrameError); ok {
				return n
			}
			Te.Fatalf("frame %d: %v", n, err)
		}
		n++
	}
}

func TestNewUniverse(Te *testing.T) {
	u, err := NewUniverse("test/ref.pdb", "test/traj.xyz")
	if err != nil {
		Te.Fatal(err)
	}
	if u.Mol().Len() != 6 {
		Te.Errorf("expected 6 atoms, got %d", u.Mol().Len())
	}
	if n := countFrames(Te, u.Frames()); n != 3 {
		Te.Errorf("expected 3 frames, got %d", n)
	}
}

func TestNewUniverseMissingPieces(Te *testing.T) {
	if _, err := NewUniverse("", "test/traj.xyz"); err == nil {
		Te.Error("empty topology must be rejected")
	}
	if _, err := NewUniverse("test/ref.pdb"); err == nil {
		Te.Error("a universe without trajectories must be rejected")
	}
	if _, err := NewUniverse("test/absent.pdb", "test/traj.xyz"); err == nil {
		Te.Error("a missing topology file must be rejected")
	}
	if _, err := NewUniverse("test/ref.mol2", "test/traj.xyz"); err == nil {
		Te.Error("an unsupported topology format must be rejected")
	}
}

func TestGzippedTopology(Te *testing.T) {
	u, err := NewUniverse("test/ref.pdb.gz", "test/traj.xyz")
	if err != nil {
		Te.Fatal(err)
	}
	if u.Mol().Len() != 6 {
		Te.Errorf("expected 6 atoms from gzipped pdb, got %d", u.Mol().Len())
	}
}

func TestCIFTopology(Te *testing.T) {
	u, err := NewUniverse("test/ref.cif", "test/traj.xyz")
	if err != nil {
		Te.Fatal(err)
	}
	if u.Mol().Len() != 6 {
		Te.Errorf("expected 6 atoms from mmCIF, got %d", u.Mol().Len())
	}
	g, err := u.Select("protein and name CA")
	if err != nil {
		Te.Fatal(err)
	}
	if g.Len() != 1 {
		Te.Fatalf("expected one CA, got %d atoms", g.Len())
	}
	if x := u.Mol().Coords[0].At(g.Indices()[0], 0); math.Abs(x-1.458) > 1e-6 {
		Te.Errorf("CA x coordinate: expected 1.458, got %g", x)
	}
	if het, err := u.Select("hetero"); err != nil || het.Len() != 1 {
		Te.Errorf("expected one hetero atom, got %v (err %v)", het, err)
	}
}

func TestUniverseSelect(Te *testing.T) {
	u, err := NewUniverse("test/ref.pdb", "test/traj.xyz")
	if err != nil {
		Te.Fatal(err)
	}
	g, err := u.Select("name CA")
	if err != nil {
		Te.Fatal(err)
	}
	if g.Len() != 1 {
		Te.Errorf("expected one CA, got %d atoms", g.Len())
	}
	if _, err := u.Select("frobnicate"); err == nil {
		Te.Error("a malformed query must be rejected")
	}
}

func TestChainConcatenates(Te *testing.T) {
	u, err := NewUniverse("test/ref.pdb", "test/traj.xyz", "test/traj.xyz")
	if err != nil {
		Te.Fatal(err)
	}
	if n := countFrames(Te, u.Frames()); n != 6 {
		Te.Errorf("two copies of a 3-frame file should yield 6 frames, got %d", n)
	}
}

func TestChainRestarts(Te *testing.T) {
	u, err := NewUniverse("test/ref.pdb", "test/traj.xyz")
	if err != nil {
		Te.Fatal(err)
	}
	first := countFrames(Te, u.Frames())
	second := countFrames(Te, u.Frames())
	if first != second {
		Te.Errorf("frame sequence is not restartable: %d then %d", first, second)
	}
}

func TestChainFrameContents(Te *testing.T) {
	u, err := NewUniverse("test/ref.pdb", "test/traj.xyz")
	if err != nil {
		Te.Fatal(err)
	}
	traj := u.Frames()
	frame := v3.Zeros(traj.Len())
	//frame 1 of the fixture matches the topology reference exactly
	if err := traj.Next(frame); err != nil {
		Te.Fatal(err)
	}
	if math.Abs(frame.At(1, 0)-1.458) > 1e-4 {
		Te.Errorf("frame 1 CA x: got %v, want 1.458", frame.At(1, 0))
	}
	//frame 2 is shifted by +1 along x
	if err := traj.Next(frame); err != nil {
		Te.Fatal(err)
	}
	if math.Abs(frame.At(1, 0)-2.458) > 1e-4 {
		Te.Errorf("frame 2 CA x: got %v, want 2.458", frame.At(1, 0))
	}
}

func TestChainAtomCountMismatch(Te *testing.T) {
	u, err := NewUniverse("test/ref.pdb", "test/small.xyz")
	if err != nil {
		Te.Fatal(err)
	}
	traj := u.Frames()
	frame := v3.Zeros(traj.Len())
	err = traj.Next(frame)
	if err == nil {
		Te.Fatal("a trajectory spanning the wrong atom count must be rejected")
	}
	if _, ok := err.(chem.LastFrameError); ok {
		Te.Fatal("the mismatch must not look like a normal termination")
	}
	if !strings.Contains(err.Error(), "atoms") {
		Te.Errorf("error should mention the atom counts: %v", err)
	}
}

func TestChainLastFrameErrorShape(Te *testing.T) {
	u, err := NewUniverse("test/ref.pdb", "test/traj.xyz")
	if err != nil {
		Te.Fatal(err)
	}
	traj := u.Frames()
	frame := v3.Zeros(traj.Len())
	var last error
	for {
		if last = traj.Next(frame); last != nil {
			break
		}
	}
	lf, ok := last.(chem.LastFrameError)
	if !ok {
		Te.Fatalf("expected a LastFrameError, got %T: %v", last, last)
	}
	if lf.Critical() {
		Te.Error("running out of frames is not critical")
	}
	if lf.FileName() != "test/traj.xyz" {
		Te.Errorf("LastFrameError should carry the last file, got %q", lf.FileName())
	}
}
