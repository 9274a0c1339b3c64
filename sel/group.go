/*
 * group.go, part of mdsynth.
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
	"fmt"
	"sort"

	chem "github.com/rmera/gochem"
	v3 "github.com/rmera/gochem/v3"
)

// Group is a set of atoms within one topology, kept as sorted 0-based
// indexes. Groups are immutable: set operations return new Groups.
type Group struct {
	mol     chem.Atomer
	indexes []int
}

// NewGroup builds a Group over mol from the given atom indexes.
// Duplicates are collapsed and the indexes sorted; an out-of-range index
// is an error.
func NewGroup(mol chem.Atomer, indexes []int) (*Group, error) {
	if mol == nil {
		return nil, fmt.Errorf("sel: NewGroup: nil topology")
	}
	seen := make(map[int]bool, len(indexes))
	clean := make([]int, 0, len(indexes))
	for _, ix := range indexes {
		if ix < 0 || ix >= mol.Len() {
			return nil, fmt.Errorf("sel: NewGroup: index %d out of range (%d atoms)", ix, mol.Len())
		}
		if !seen[ix] {
			seen[ix] = true
			clean = append(clean, ix)
		}
	}
	sort.Ints(clean)
	return &Group{mol: mol, indexes: clean}, nil
}

// Len returns the number of atoms in the group.
func (G *Group) Len() int { return len(G.indexes) }

// Indices returns a copy of the member atom indexes, sorted.
func (G *Group) Indices() []int {
	out := make([]int, len(G.indexes))
	copy(out, G.indexes)
	return out
}

// Atom returns the ith atom of the group, in index order.
func (G *Group) Atom(i int) *chem.Atom {
	return G.mol.Atom(G.indexes[i])
}

// Names returns the atom names of the group, in index order.
func (G *Group) Names() []string {
	names := make([]string, len(G.indexes))
	for i, ix := range G.indexes {
		names[i] = G.mol.Atom(ix).Name
	}
	return names
}

// Masses returns the member masses, in index order. Atoms without an
// assigned mass make the whole call fail.
func (G *Group) Masses() ([]float64, error) {
	masses := make([]float64, len(G.indexes))
	for i, ix := range G.indexes {
		m := G.mol.Atom(ix).Mass
		if m <= 0 {
			return nil, fmt.Errorf("sel: Masses: atom %d (%s) has no mass assigned",
				ix, G.mol.Atom(ix).Name)
		}
		masses[i] = m
	}
	return masses, nil
}

// Coords gathers the rows of frame belonging to the group into a new
// matrix, in index order. frame must span the full topology.
func (G *Group) Coords(frame *v3.Matrix) (*v3.Matrix, error) {
	if frame == nil {
		return nil, fmt.Errorf("sel: Coords: nil frame")
	}
	if frame.NVecs() != G.mol.Len() {
		return nil, fmt.Errorf("sel: Coords: frame has %d rows, topology %d atoms",
			frame.NVecs(), G.mol.Len())
	}
	if len(G.indexes) == 0 {
		return nil, fmt.Errorf("sel: Coords: empty group")
	}
	sub := v3.Zeros(len(G.indexes))
	sub.SomeVecs(frame, G.indexes)
	return sub, nil
}

// COM returns the center of mass of the group in frame, as a 1x3 matrix.
func (G *Group) COM(frame *v3.Matrix) (*v3.Matrix, error) {
	masses, err := G.Masses()
	if err != nil {
		return nil, err
	}
	sub, err := G.Coords(frame)
	if err != nil {
		return nil, err
	}
	com := v3.Zeros(1)
	var total float64
	for i, m := range masses {
		total += m
		for k := 0; k < 3; k++ {
			com.Set(0, k, com.At(0, k)+m*sub.At(i, k))
		}
	}
	for k := 0; k < 3; k++ {
		com.Set(0, k, com.At(0, k)/total)
	}
	return com, nil
}

// Union returns the atoms in either group. Both must be over the same
// topology.
func (G *Group) Union(o *Group) (*Group, error) {
	if err := G.sameMol(o); err != nil {
		return nil, err
	}
	return NewGroup(G.mol, append(G.Indices(), o.indexes...))
}

// Intersect returns the atoms common to both groups.
func (G *Group) Intersect(o *Group) (*Group, error) {
	if err := G.sameMol(o); err != nil {
		return nil, err
	}
	in := make(map[int]bool, len(o.indexes))
	for _, ix := range o.indexes {
		in[ix] = true
	}
	var common []int
	for _, ix := range G.indexes {
		if in[ix] {
			common = append(common, ix)
		}
	}
	return NewGroup(G.mol, common)
}

// Diff returns the atoms of G not in o.
func (G *Group) Diff(o *Group) (*Group, error) {
	if err := G.sameMol(o); err != nil {
		return nil, err
	}
	in := make(map[int]bool, len(o.indexes))
	for _, ix := range o.indexes {
		in[ix] = true
	}
	var left []int
	for _, ix := range G.indexes {
		if !in[ix] {
			left = append(left, ix)
		}
	}
	return NewGroup(G.mol, left)
}

func (G *Group) sameMol(o *Group) error {
	if o == nil {
		return fmt.Errorf("sel: nil group")
	}
	if G.mol != o.mol {
		return fmt.Errorf("sel: groups belong to different topologies")
	}
	return nil
}

func (G *Group) String() string {
	return fmt.Sprintf("Group of %d atoms", len(G.indexes))
}
