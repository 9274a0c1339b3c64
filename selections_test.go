/*
 * selections_test.go, part of mdsynth.
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
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/treantlab/mdsynth/treant"
)

// loadedSim returns a Sim with the reference fixture registered.
func loadedSim(t *testing.T) *Sim {
	t.Helper()
	sim, err := NewSim(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, sim.SetTopology(fixture(t, "ref.pdb")))
	require.NoError(t, sim.AddTrajectories(fixture(t, "traj.xyz")))
	return sim
}

func TestSelectionsAddGet(t *testing.T) {
	sim := loadedSim(t)
	sels := sim.Selections()

	require.NoError(t, sels.Add("calpha", "name CA"))
	groups, err := sels.Get("calpha")
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, []int{1}, groups[0].Indices())

	g, err := sels.GetOne("calpha")
	require.NoError(t, err)
	assert.Equal(t, []int{1}, g.Indices())
}

func TestSelectionsMultiQueryOrder(t *testing.T) {
	sim := loadedSim(t)
	sels := sim.Selections()

	require.NoError(t, sels.Add("parts", "backbone", "water"))
	groups, err := sels.Get("parts")
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, []int{0, 1, 2, 3}, groups[0].Indices(), "first group resolves the first query")
	assert.Equal(t, []int{5}, groups[1].Indices(), "second group resolves the second query")

	_, err = sels.GetOne("parts")
	assert.Error(t, err, "GetOne refuses multi-query definitions")
}

func TestSelectionsOverwrite(t *testing.T) {
	sim := loadedSim(t)
	sels := sim.Selections()

	require.NoError(t, sels.Add("picked", "name CA"))
	require.NoError(t, sels.Add("picked", "name CB"))
	groups, err := sels.Get("picked")
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, []int{4}, groups[0].Indices(), "the second Add replaces the first")
	assert.Equal(t, []string{"picked"}, sels.Keys(), "overwriting must not duplicate the name")
}

func TestSelectionsValidation(t *testing.T) {
	sim := loadedSim(t)
	sels := sim.Selections()

	assert.Error(t, sels.Add("", "name CA"))
	assert.Error(t, sels.Add("empty"))
	assert.Error(t, sels.Add("bad", "frobnicate the atoms"), "queries are compiled at Add time")
}

func TestSelectionsMissingName(t *testing.T) {
	sim := loadedSim(t)
	sels := sim.Selections()

	_, err := sels.Get("never stored")
	var notfound *SelectionNotFoundError
	require.ErrorAs(t, err, &notfound)
	assert.Equal(t, "never stored", notfound.Name)

	_, err = sels.Define("never stored")
	assert.ErrorAs(t, err, &notfound)

	err = sels.Remove("never stored")
	assert.ErrorAs(t, err, &notfound, "removing an absent selection is an error, not a no-op")
}

func TestSelectionsKeysOrderAndRestart(t *testing.T) {
	sim := loadedSim(t)
	sels := sim.Selections()
	require.NoError(t, sels.Add("a", "name CA"))
	require.NoError(t, sels.Add("b", "name CB"))
	require.NoError(t, sels.Add("c", "water"))

	want := []string{"a", "b", "c"}
	assert.Equal(t, want, sels.Keys())
	assert.Equal(t, want, sels.Keys(), "iterating twice yields the same sequence")

	require.NoError(t, sels.Remove("b"))
	assert.Equal(t, []string{"a", "c"}, sels.Keys())
}

func TestSelectionsDefine(t *testing.T) {
	sim := loadedSim(t)
	sels := sim.Selections()
	require.NoError(t, sels.Add("site", "resid 1", "water"))

	queries, err := sels.Define("site")
	require.NoError(t, err)
	assert.Equal(t, []string{"resid 1", "water"}, queries)
}

func TestSelectionsSurviveReopen(t *testing.T) {
	dir := t.TempDir()
	sim, err := NewSim(dir)
	require.NoError(t, err)
	require.NoError(t, sim.SetTopology(fixture(t, "ref.pdb")))
	require.NoError(t, sim.AddTrajectories(fixture(t, "traj.xyz")))
	require.NoError(t, sim.Selections().Add("calpha", "name CA"))
	require.NoError(t, sim.Selections().Add("solvent", "water"))

	again, err := NewSim(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"calpha", "solvent"}, again.Selections().Keys())
	groups, err := again.Selections().Get("calpha")
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, []int{1}, groups[0].Indices())
}

func TestSelectionsNeedAUniverse(t *testing.T) {
	sim, err := NewSim(t.TempDir())
	require.NoError(t, err)
	sels := sim.Selections()
	require.NoError(t, sels.Add("calpha", "name CA"), "definitions can be stored before any files are registered")

	_, err = sels.Get("calpha")
	var mtop *MissingTopologyError
	assert.ErrorAs(t, err, &mtop, "resolution needs the universe")
}

func TestSelectionsResolveAgainstCurrentUniverse(t *testing.T) {
	sim := loadedSim(t)
	sels := sim.Selections()
	require.NoError(t, sels.Add("everything", "all"))

	groups, err := sels.Get("everything")
	require.NoError(t, err)
	assert.Equal(t, 6, groups[0].Len())

	//re-registering a smaller system changes the next resolution
	require.NoError(t, sim.SetTopology(fixture(t, "small.xyz")))
	require.NoError(t, sim.ClearTrajectories())
	require.NoError(t, sim.AddTrajectories(fixture(t, "small.xyz")))
	groups, err = sels.Get("everything")
	require.NoError(t, err)
	assert.Equal(t, 2, groups[0].Len())
}

// brokenStore fails blob writes on demand, passing everything else
// through to the real engine.
type brokenStore struct {
	treant.Store
	failWrites bool
}

func (b *brokenStore) SetBlob(key string, data []byte) error {
	if b.failWrites {
		return errors.New("disk full")
	}
	return b.Store.SetBlob(key, data)
}

func TestSelectionsWriteFailureLeavesStateAlone(t *testing.T) {
	tr, err := treant.New(t.TempDir(), treant.WithKind(treant.KindSim))
	require.NoError(t, err)
	store := &brokenStore{Store: tr}
	sim, err := FromStore(store, nil)
	require.NoError(t, err)
	require.NoError(t, sim.SetTopology(fixture(t, "ref.pdb")))
	require.NoError(t, sim.AddTrajectories(fixture(t, "traj.xyz")))
	sels := sim.Selections()
	require.NoError(t, sels.Add("prot", "protein"))

	store.failWrites = true
	require.Error(t, sels.Add("water", "water"))
	assert.Equal(t, []string{"prot"}, sels.Keys(), "a failed write must not register the selection")

	require.Error(t, sels.Add("prot", "backbone"))
	def, err := sels.Define("prot")
	require.NoError(t, err)
	assert.Equal(t, []string{"protein"}, def, "a failed overwrite must keep the old definition")

	require.Error(t, sels.Remove("prot"))
	assert.Equal(t, []string{"prot"}, sels.Keys(), "a failed write must not drop the selection")

	store.failWrites = false
	require.NoError(t, sels.Remove("prot"))
	assert.Empty(t, sels.Keys())
}
