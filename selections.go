/*
 * selections.go, part of mdsynth.
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
	"fmt"

	"github.com/treantlab/mdsynth/sel"
)

// Selections is the limb through which a Sim stores named selection
// definitions and resolves them against its Universe. The limb caches
// nothing: every Get re-resolves the stored queries, so a re-registered
// topology or trajectory takes effect on the next lookup.
type Selections struct {
	sim *Sim
}

// Add stores one or more selection query strings under name, in the
// given order. Each query must compile; resolution is deferred to Get.
// An existing definition with the same name is silently replaced.
func (L *Selections) Add(name string, queries ...string) error {
	if name == "" {
		return fmt.Errorf("mdsynth: selection name cannot be empty")
	}
	if len(queries) == 0 {
		return fmt.Errorf("mdsynth: selection %q needs at least one query", name)
	}
	for _, q := range queries {
		if _, err := sel.Compile(q); err != nil {
			return err
		}
	}
	def := selectionDef{Name: name, Queries: append([]string(nil), queries...)}
	st := &L.sim.state
	prev := st.Selections
	next := make([]selectionDef, len(prev))
	copy(next, prev)
	replaced := false
	for i := range next {
		if next[i].Name == name {
			next[i] = def
			replaced = true
			break
		}
	}
	if !replaced {
		next = append(next, def)
	}
	st.Selections = next
	if err := L.sim.persist(); err != nil {
		st.Selections = prev
		return err
	}
	return nil
}

// Get resolves the definition stored under name against the Sim's
// current Universe and returns one Group per stored query, mirroring the
// order they were given to Add. An absent name fails with
// *SelectionNotFoundError.
func (L *Selections) Get(name string) ([]*sel.Group, error) {
	def, ok := L.lookup(name)
	if !ok {
		return nil, &SelectionNotFoundError{Sim: L.sim.Name(), Name: name}
	}
	u, err := L.sim.Universe()
	if err != nil {
		return nil, err
	}
	groups := make([]*sel.Group, 0, len(def.Queries))
	for _, q := range def.Queries {
		g, err := u.Select(q)
		if err != nil {
			return nil, fmt.Errorf("mdsynth: selection %q: %w", name, err)
		}
		groups = append(groups, g)
	}
	return groups, nil
}

// GetOne resolves a single-query definition to its Group. Definitions
// holding more than one query must go through Get.
func (L *Selections) GetOne(name string) (*sel.Group, error) {
	def, ok := L.lookup(name)
	if !ok {
		return nil, &SelectionNotFoundError{Sim: L.sim.Name(), Name: name}
	}
	if len(def.Queries) != 1 {
		return nil, fmt.Errorf("mdsynth: selection %q holds %d queries, use Get",
			name, len(def.Queries))
	}
	u, err := L.sim.Universe()
	if err != nil {
		return nil, err
	}
	g, err := u.Select(def.Queries[0])
	if err != nil {
		return nil, fmt.Errorf("mdsynth: selection %q: %w", name, err)
	}
	return g, nil
}

// Define returns the stored query strings for name without resolving
// them.
func (L *Selections) Define(name string) ([]string, error) {
	def, ok := L.lookup(name)
	if !ok {
		return nil, &SelectionNotFoundError{Sim: L.sim.Name(), Name: name}
	}
	return append([]string(nil), def.Queries...), nil
}

// Remove deletes the definition stored under name. Removing a name that
// was never stored fails with *SelectionNotFoundError.
func (L *Selections) Remove(name string) error {
	st := &L.sim.state
	prev := st.Selections
	for i := range prev {
		if prev[i].Name != name {
			continue
		}
		next := make([]selectionDef, 0, len(prev)-1)
		next = append(next, prev[:i]...)
		next = append(next, prev[i+1:]...)
		st.Selections = next
		if err := L.sim.persist(); err != nil {
			st.Selections = prev
			return err
		}
		return nil
	}
	return &SelectionNotFoundError{Sim: L.sim.Name(), Name: name}
}

// Keys returns the stored selection names in insertion order. The slice
// is a fresh copy on every call.
func (L *Selections) Keys() []string {
	defs := L.sim.state.Selections
	keys := make([]string, len(defs))
	for i, def := range defs {
		keys[i] = def.Name
	}
	return keys
}

func (L *Selections) lookup(name string) (selectionDef, bool) {
	for _, def := range L.sim.state.Selections {
		if def.Name == name {
			return def, true
		}
	}
	return selectionDef{}, false
}
