/*
 * treant.go, part of mdsynth.
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

//Package treant marks directories with persisted identity and metadata.
//A marked directory (a "treant") carries a hidden state directory with a
//YAML state file holding a unique id, a name, free-form tags and string
//key/value categories, plus opaque per-limb blobs. All reads take a shared
//advisory lock and all writes an exclusive one, so several cooperating
//processes can point at the same directory without shredding the state
//file. The package makes no attempt at stronger coordination than that.
package treant

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/google/uuid"
)

// Names of the on-disk pieces of a marked directory.
const (
	StateDirName  = ".treant"
	StateFileName = "treant.yaml"
	lockFileName  = "lock"
)

// Known kinds of treants. A plain Treant is just a marked directory;
// specializations (like a Sim) record their kind so that discovery can
// tell them apart without loading them.
const (
	KindTreant = "Treant"
	KindSim    = "Sim"
)

// ErrNotATreant signals that a directory exists but does not hold, or
// cannot hold, a compatible state file.
var ErrNotATreant = fmt.Errorf("not a treant")

// Store is the capability set a limb needs from the persistence engine.
// Consumers of a Store hold no knowledge of the on-disk format.
type Store interface {
	//Path returns the backing directory.
	Path() string

	//UUID returns the immutable unique id assigned at creation.
	UUID() string

	//Name returns the user-facing name.
	Name() string

	Tags() ([]string, error)
	AddTags(tags ...string) error
	DelTags(tags ...string) error

	Categories() (map[string]string, error)
	Category(key string) (string, bool, error)
	SetCategory(key, value string) error
	DelCategory(key string) error

	//GetBlob returns the opaque payload stored under key, or nil if
	//nothing was ever stored there.
	GetBlob(key string) ([]byte, error)
	SetBlob(key string, data []byte) error
}

// Treant is a marker bound to one directory. The zero value is not
// usable; obtain one with New.
type Treant struct {
	dir   string
	kind  string
	uuid  string
	name  string
	state *stateFile
	log   *slog.Logger
}

// Option configures a Treant at open time.
type Option func(*Treant)

// WithKind sets the kind recorded for a newly created treant, and
// required of an existing one being attached to.
func WithKind(kind string) Option {
	return func(T *Treant) { T.kind = kind }
}

// WithName sets the name of a newly created treant. Ignored when
// attaching: the persisted name wins.
func WithName(name string) Option {
	return func(T *Treant) { T.name = name }
}

// WithLogger attaches a logger. By default nothing is logged.
func WithLogger(l *slog.Logger) Option {
	return func(T *Treant) { T.log = l }
}

// New attaches to the treant at dir, creating it first if dir holds no
// state file. The directory itself is created if missing. If dir holds a
// state file that cannot be parsed, or one whose kind differs from the
// requested kind, New fails with an error wrapping ErrNotATreant.
func New(dir string, opts ...Option) (*Treant, error) {
	T := &Treant{
		dir:  dir,
		kind: KindTreant,
		log:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, o := range opts {
		o(T)
	}
	if err := os.MkdirAll(filepath.Join(dir, StateDirName), 0o755); err != nil {
		return nil, fmt.Errorf("treant.New: %w", err)
	}
	T.state = newStateFile(dir)
	st, err := T.state.read()
	switch {
	case err == nil:
		if st.Kind != T.kind {
			return nil, fmt.Errorf("%w: %s holds a %q, wanted a %q",
				ErrNotATreant, dir, st.Kind, T.kind)
		}
		T.uuid = st.UUID
		T.name = st.Name
		T.log.Debug("attached", "dir", dir, "kind", st.Kind, "uuid", st.UUID)
	case os.IsNotExist(err):
		if T.name == "" {
			T.name = filepath.Base(filepath.Clean(dir))
		}
		T.uuid = uuid.New().String()
		st := &state{
			Version: stateVersion,
			Kind:    T.kind,
			UUID:    T.uuid,
			Name:    T.name,
		}
		if err := T.state.write(st); err != nil {
			return nil, fmt.Errorf("treant.New: %w", err)
		}
		T.log.Debug("created", "dir", dir, "kind", T.kind, "uuid", T.uuid)
	default:
		if errors.Is(err, ErrNotATreant) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrNotATreant, dir, err)
	}
	return T, nil
}

// IsTreant reports whether dir holds a readable state file of any kind.
func IsTreant(dir string) bool {
	_, err := Kind(dir)
	return err == nil
}

// IsSim reports whether dir holds a state file of kind Sim.
func IsSim(dir string) bool {
	k, err := Kind(dir)
	return err == nil && k == KindSim
}

// Kind returns the kind persisted at dir without attaching to it.
func Kind(dir string) (string, error) {
	st, err := newStateFile(dir).read()
	if err != nil {
		return "", err
	}
	return st.Kind, nil
}

func (T *Treant) Path() string { return T.dir }

func (T *Treant) UUID() string { return T.uuid }

func (T *Treant) Name() string { return T.name }

// Kind returns the kind this treant was opened as.
func (T *Treant) Kind() string { return T.kind }

// SetName renames the treant and persists the new name.
func (T *Treant) SetName(name string) error {
	err := T.state.update(func(st *state) error {
		st.Name = name
		return nil
	})
	if err != nil {
		return err
	}
	T.name = name
	return nil
}

// Tags returns the current tags, sorted.
func (T *Treant) Tags() ([]string, error) {
	st, err := T.state.read()
	if err != nil {
		return nil, err
	}
	tags := append([]string(nil), st.Tags...)
	sort.Strings(tags)
	return tags, nil
}

// AddTags adds the given tags, ignoring ones already present.
func (T *Treant) AddTags(tags ...string) error {
	return T.state.update(func(st *state) error {
		for _, tag := range tags {
			if !isIn(tag, st.Tags) {
				st.Tags = append(st.Tags, tag)
			}
		}
		return nil
	})
}

// DelTags removes the given tags. Absent tags are ignored.
func (T *Treant) DelTags(tags ...string) error {
	return T.state.update(func(st *state) error {
		kept := st.Tags[:0]
		for _, have := range st.Tags {
			if !isIn(have, tags) {
				kept = append(kept, have)
			}
		}
		st.Tags = kept
		return nil
	})
}

// HasTags reports whether every one of the given tags is present.
func (T *Treant) HasTags(tags ...string) (bool, error) {
	have, err := T.Tags()
	if err != nil {
		return false, err
	}
	for _, tag := range tags {
		if !isIn(tag, have) {
			return false, nil
		}
	}
	return true, nil
}

// Categories returns a copy of the current key/value categories.
func (T *Treant) Categories() (map[string]string, error) {
	st, err := T.state.read()
	if err != nil {
		return nil, err
	}
	cats := make(map[string]string, len(st.Categories))
	for k, v := range st.Categories {
		cats[k] = v
	}
	return cats, nil
}

// Category returns the value stored under key and whether it was present.
func (T *Treant) Category(key string) (string, bool, error) {
	st, err := T.state.read()
	if err != nil {
		return "", false, err
	}
	v, ok := st.Categories[key]
	return v, ok, nil
}

// SetCategory stores value under key, replacing any previous value.
func (T *Treant) SetCategory(key, value string) error {
	return T.state.update(func(st *state) error {
		if st.Categories == nil {
			st.Categories = make(map[string]string)
		}
		st.Categories[key] = value
		return nil
	})
}

// DelCategory removes key. Absent keys are ignored.
func (T *Treant) DelCategory(key string) error {
	return T.state.update(func(st *state) error {
		delete(st.Categories, key)
		return nil
	})
}

// GetBlob returns the payload stored under key, or nil if none exists.
func (T *Treant) GetBlob(key string) ([]byte, error) {
	return T.state.readBlob(key)
}

// SetBlob stores data under key, replacing any previous payload.
func (T *Treant) SetBlob(key string, data []byte) error {
	T.log.Debug("blob write", "dir", T.dir, "key", key, "bytes", len(data))
	return T.state.writeBlob(key, data)
}

func isIn(s string, set []string) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}
