/*
 * group_test.go, part of mdsynth.
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

package sel

import (
	"math"
	"reflect"
	"testing"
)

func TestNewGroup(Te *testing.T) {
	mol := refMol(Te)
	g, err := NewGroup(mol, []int{4, 1, 1, 0})
	if err != nil {
		Te.Fatal(err)
	}
	if !reflect.DeepEqual(g.Indices(), []int{0, 1, 4}) {
		Te.Errorf("expected sorted deduplicated indexes, got %v", g.Indices())
	}
	if _, err := NewGroup(mol, []int{6}); err == nil {
		Te.Error("out-of-range index must be rejected")
	}
	if _, err := NewGroup(mol, []int{-1}); err == nil {
		Te.Error("negative index must be rejected")
	}
}

func TestGroupAccessors(Te *testing.T) {
	mol := refMol(Te)
	q := MustCompile("backbone")
	g, err := q.Eval(mol)
	if err != nil {
		Te.Fatal(err)
	}
	if g.Len() != 4 {
		Te.Fatalf("backbone of one alanine should have 4 atoms, got %d", g.Len())
	}
	names := g.Names()
	if !reflect.DeepEqual(names, []string{"N", "CA", "C", "O"}) {
		Te.Errorf("unexpected names %v", names)
	}
	if g.Atom(1).Name != "CA" {
		Te.Errorf("Atom(1) should be the CA, got %s", g.Atom(1).Name)
	}
}

func TestGroupCoordsAndCOM(Te *testing.T) {
	mol := refMol(Te)
	g, err := MustCompile("name N CA").Eval(mol)
	if err != nil {
		Te.Fatal(err)
	}
	sub, err := g.Coords(mol.Coords[0])
	if err != nil {
		Te.Fatal(err)
	}
	if sub.NVecs() != 2 {
		Te.Fatalf("expected 2 gathered rows, got %d", sub.NVecs())
	}
	if sub.At(0, 0) != 0.0 || math.Abs(sub.At(1, 0)-1.458) > 1e-6 {
		Te.Errorf("gathered coordinates are wrong: %v %v", sub.At(0, 0), sub.At(1, 0))
	}
	com, err := g.COM(mol.Coords[0])
	if err != nil {
		Te.Fatal(err)
	}
	//N at x=0 (mass 14.01), CA at x=1.458 (mass 12.01): com_x = 1.458*12.01/26.02
	wantx := 1.458 * 12.01 / (14.01 + 12.01)
	if math.Abs(com.At(0, 0)-wantx) > 1e-3 {
		Te.Errorf("COM x: got %v, want about %v", com.At(0, 0), wantx)
	}
	if math.Abs(com.At(0, 1)) > 1e-6 || math.Abs(com.At(0, 2)) > 1e-6 {
		Te.Errorf("COM y,z should be zero, got %v %v", com.At(0, 1), com.At(0, 2))
	}
}

func TestGroupSetOps(Te *testing.T) {
	mol := refMol(Te)
	bb, err := MustCompile("backbone").Eval(mol)
	if err != nil {
		Te.Fatal(err)
	}
	ca, err := MustCompile("name CA CB").Eval(mol)
	if err != nil {
		Te.Fatal(err)
	}
	union, err := bb.Union(ca)
	if err != nil {
		Te.Fatal(err)
	}
	if !reflect.DeepEqual(union.Indices(), []int{0, 1, 2, 3, 4}) {
		Te.Errorf("union: got %v", union.Indices())
	}
	inter, err := bb.Intersect(ca)
	if err != nil {
		Te.Fatal(err)
	}
	if !reflect.DeepEqual(inter.Indices(), []int{1}) {
		Te.Errorf("intersection: got %v", inter.Indices())
	}
	diff, err := bb.Diff(ca)
	if err != nil {
		Te.Fatal(err)
	}
	if !reflect.DeepEqual(diff.Indices(), []int{0, 2, 3}) {
		Te.Errorf("difference: got %v", diff.Indices())
	}

	other := refMol(Te)
	foreign, err := MustCompile("all").Eval(other)
	if err != nil {
		Te.Fatal(err)
	}
	if _, err := bb.Union(foreign); err == nil {
		Te.Error("set operations across topologies must be rejected")
	}
}
