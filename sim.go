/*
 * sim.go, part of mdsynth.
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
	"fmt"
	"io"
	"log/slog"

	"gopkg.in/yaml.v3"

	"github.com/treantlab/mdsynth/treant"
)

// simBlobKey is the blob under which a Sim keeps its own state, next to
// the generic treant metadata.
const simBlobKey = "Sim"

// simState is the persisted part of a Sim beyond treant identity: the
// registered files and the stored selections, the latter as a slice so
// insertion order survives serialization.
type simState struct {
	Topology     string         `yaml:"topology,omitempty"`
	Trajectories []string       `yaml:"trajectories,omitempty"`
	Selections   []selectionDef `yaml:"selections,omitempty"`
}

type selectionDef struct {
	Name    string   `yaml:"name"`
	Queries []string `yaml:"queries"`
}

// Sim marks one directory as holding one simulation. It persists
// identity, tags and categories through the treant engine, registered
// topology/trajectory paths and named selections through its own blob,
// and lazily exposes the loaded system as a Universe.
//
// A Sim assumes cooperative access: state writes are advisory-locked on
// disk, but the in-process caches are not synchronized.
type Sim struct {
	store treant.Store
	log   *slog.Logger
	state simState
	uni   *Universe
	dirty bool //set on registration changes; forces a Universe rebuild
	sels  *Selections
}

// Option configures a Sim at open time.
type Option func(*simConfig)

type simConfig struct {
	name string
	log  *slog.Logger
}

// WithName names a newly created Sim. Ignored when attaching.
func WithName(name string) Option {
	return func(c *simConfig) { c.name = name }
}

// WithLogger attaches a logger to the Sim and its storage engine.
func WithLogger(l *slog.Logger) Option {
	return func(c *simConfig) { c.log = l }
}

// NewSim attaches to the Sim at dir, creating it first if the directory
// holds no marker. A directory holding an incompatible or corrupt marker
// fails with *NotATreantError.
func NewSim(dir string, opts ...Option) (*Sim, error) {
	cfg := simConfig{log: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, o := range opts {
		o(&cfg)
	}
	topts := []treant.Option{treant.WithKind(treant.KindSim), treant.WithLogger(cfg.log)}
	if cfg.name != "" {
		topts = append(topts, treant.WithName(cfg.name))
	}
	tr, err := treant.New(dir, topts...)
	if err != nil {
		if errors.Is(err, treant.ErrNotATreant) {
			return nil, &NotATreantError{Path: dir, Err: err}
		}
		return nil, err
	}
	return FromStore(tr, cfg.log)
}

// FromStore builds a Sim over an already-open storage engine. This is
// the seam the rest of the package uses: a Sim touches disk only through
// the Store capability set.
func FromStore(store treant.Store, log *slog.Logger) (*Sim, error) {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	S := &Sim{store: store, log: log}
	S.sels = &Selections{sim: S}
	if err := S.Refresh(); err != nil {
		return nil, err
	}
	return S, nil
}

// Refresh rereads the Sim's persisted state from storage, dropping the
// cached Universe. Useful after another process touched the directory.
func (S *Sim) Refresh() error {
	raw, err := S.store.GetBlob(simBlobKey)
	if err != nil {
		return fmt.Errorf("mdsynth: reading sim state: %w", err)
	}
	S.state = simState{}
	if raw != nil {
		if err := yaml.Unmarshal(raw, &S.state); err != nil {
			return fmt.Errorf("mdsynth: corrupt sim state for %s: %w", S.store.Path(), err)
		}
	}
	S.uni = nil
	S.dirty = false
	return nil
}

func (S *Sim) persist() error {
	raw, err := yaml.Marshal(&S.state)
	if err != nil {
		return fmt.Errorf("mdsynth: marshaling sim state: %w", err)
	}
	return S.store.SetBlob(simBlobKey, raw)
}

// Path returns the backing directory.
func (S *Sim) Path() string { return S.store.Path() }

// Name returns the Sim's user-facing name.
func (S *Sim) Name() string { return S.store.Name() }

// UUID returns the Sim's unique id.
func (S *Sim) UUID() string { return S.store.UUID() }

// Store exposes the underlying metadata engine, for tag and category
// traffic. The Sim adds no invariants of its own on top of it.
func (S *Sim) Store() treant.Store { return S.store }

// Tags is a passthrough to the storage engine.
func (S *Sim) Tags() ([]string, error) { return S.store.Tags() }

// AddTags is a passthrough to the storage engine.
func (S *Sim) AddTags(tags ...string) error { return S.store.AddTags(tags...) }

// Categories is a passthrough to the storage engine.
func (S *Sim) Categories() (map[string]string, error) { return S.store.Categories() }

// SetCategory is a passthrough to the storage engine.
func (S *Sim) SetCategory(key, value string) error { return S.store.SetCategory(key, value) }

// Selections returns the Sim's stored-selections limb.
func (S *Sim) Selections() *Selections { return S.sels }

// Topology returns the registered topology path, empty if none.
func (S *Sim) Topology() string { return S.state.Topology }

// SetTopology registers the topology file. The path is persisted as
// given and not validated here; a bad path surfaces when the Universe is
// built. Any cached Universe is invalidated.
func (S *Sim) SetTopology(path string) error {
	S.state.Topology = path
	S.dirty = true
	S.log.Debug("topology registered", "sim", S.Name(), "path", path)
	return S.persist()
}

// Trajectories returns a copy of the registered trajectory paths, in
// registration order.
func (S *Sim) Trajectories() []string {
	return append([]string(nil), S.state.Trajectories...)
}

// AddTrajectories appends trajectory files to the registered sequence.
// Any cached Universe is invalidated.
func (S *Sim) AddTrajectories(paths ...string) error {
	if len(paths) == 0 {
		return nil
	}
	S.state.Trajectories = append(S.state.Trajectories, paths...)
	S.dirty = true
	S.log.Debug("trajectories registered", "sim", S.Name(), "count", len(paths))
	return S.persist()
}

// ClearTrajectories drops every registered trajectory path.
func (S *Sim) ClearTrajectories() error {
	S.state.Trajectories = nil
	S.dirty = true
	return S.persist()
}

// Universe returns the loaded system for this Sim, building it on first
// access and after any registration change, and the cached one
// otherwise. It fails with *MissingTopologyError or
// *MissingTrajectoryError when the needed paths are not registered.
func (S *Sim) Universe() (*Universe, error) {
	if S.uni != nil && !S.dirty {
		return S.uni, nil
	}
	if S.state.Topology == "" {
		return nil, &MissingTopologyError{Sim: S.Name()}
	}
	if len(S.state.Trajectories) == 0 {
		return nil, &MissingTrajectoryError{Sim: S.Name()}
	}
	u, err := NewUniverse(S.state.Topology, S.state.Trajectories...)
	if err != nil {
		return nil, err
	}
	S.uni = u
	S.dirty = false
	S.log.Debug("universe built", "sim", S.Name(), "atoms", u.Mol().Len(),
		"trajectories", len(S.state.Trajectories))
	return u, nil
}
