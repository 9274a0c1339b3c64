/*
 * statefile.go, part of mdsynth.
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

package treant

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
	"gopkg.in/yaml.v3"
)

const stateVersion = 1

// state is the persisted form of a treant. Blobs are kept out of it, as
// sibling files, so limbs with large payloads do not force a rewrite of
// the identity record.
type state struct {
	Version    int               `yaml:"version"`
	Kind       string            `yaml:"kind"`
	UUID       string            `yaml:"uuid"`
	Name       string            `yaml:"name"`
	Tags       []string          `yaml:"tags,omitempty"`
	Categories map[string]string `yaml:"categories,omitempty"`
}

// stateFile handles all disk traffic for one treant. Reads take a shared
// advisory lock and writes an exclusive one, on a dedicated lock file so
// that the state file itself can be replaced atomically by rename.
type stateFile struct {
	dir  string //the state directory, <treant>/.treant
	path string //the state file inside it
	lock *flock.Flock
}

func newStateFile(dir string) *stateFile {
	sdir := filepath.Join(dir, StateDirName)
	return &stateFile{
		dir:  sdir,
		path: filepath.Join(sdir, StateFileName),
		lock: flock.New(filepath.Join(sdir, lockFileName)),
	}
}

// read returns the persisted state. A missing state file surfaces as the
// raw fs error (so callers can distinguish "nothing here yet"); anything
// unparseable surfaces as an error wrapping ErrNotATreant.
func (S *stateFile) read() (*state, error) {
	if err := S.lock.RLock(); err != nil {
		return nil, fmt.Errorf("statefile: shared lock: %w", err)
	}
	defer S.lock.Unlock()
	raw, err := os.ReadFile(S.path)
	if err != nil {
		return nil, err
	}
	st := new(state)
	if err := yaml.Unmarshal(raw, st); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrNotATreant, S.path, err)
	}
	if st.Version != stateVersion || st.UUID == "" {
		return nil, fmt.Errorf("%w: %s: unrecognized state (version %d)",
			ErrNotATreant, S.path, st.Version)
	}
	return st, nil
}

// write replaces the persisted state under an exclusive lock.
func (S *stateFile) write(st *state) error {
	if err := S.lock.Lock(); err != nil {
		return fmt.Errorf("statefile: exclusive lock: %w", err)
	}
	defer S.lock.Unlock()
	return S.writeLocked(st)
}

// update applies fn to the persisted state and writes the result back,
// all under one exclusive lock, so concurrent updaters cannot interleave
// read-modify-write cycles.
func (S *stateFile) update(fn func(*state) error) error {
	if err := S.lock.Lock(); err != nil {
		return fmt.Errorf("statefile: exclusive lock: %w", err)
	}
	defer S.lock.Unlock()
	raw, err := os.ReadFile(S.path)
	if err != nil {
		return err
	}
	st := new(state)
	if err := yaml.Unmarshal(raw, st); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrNotATreant, S.path, err)
	}
	if err := fn(st); err != nil {
		return err
	}
	return S.writeLocked(st)
}

func (S *stateFile) writeLocked(st *state) error {
	raw, err := yaml.Marshal(st)
	if err != nil {
		return fmt.Errorf("statefile: marshal: %w", err)
	}
	return replaceFile(S.path, raw)
}

// readBlob returns the payload under key, nil if none was ever stored.
func (S *stateFile) readBlob(key string) ([]byte, error) {
	path, err := S.blobPath(key)
	if err != nil {
		return nil, err
	}
	if err := S.lock.RLock(); err != nil {
		return nil, fmt.Errorf("statefile: shared lock: %w", err)
	}
	defer S.lock.Unlock()
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	return raw, err
}

func (S *stateFile) writeBlob(key string, data []byte) error {
	path, err := S.blobPath(key)
	if err != nil {
		return err
	}
	if err := S.lock.Lock(); err != nil {
		return fmt.Errorf("statefile: exclusive lock: %w", err)
	}
	defer S.lock.Unlock()
	return replaceFile(path, data)
}

func (S *stateFile) blobPath(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, "/\\") || strings.HasPrefix(key, ".") {
		return "", fmt.Errorf("statefile: invalid blob key %q", key)
	}
	if key+".yaml" == StateFileName || key == lockFileName {
		return "", fmt.Errorf("statefile: reserved blob key %q", key)
	}
	return filepath.Join(S.dir, key+".yaml"), nil
}

// replaceFile writes data next to path and renames it into place, so a
// reader never sees a half-written file.
func replaceFile(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	name := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(name)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return err
	}
	if err := os.Rename(name, path); err != nil {
		os.Remove(name)
		return err
	}
	return nil
}
