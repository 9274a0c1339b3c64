/*
 * bundle.go, part of mdsynth.
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
	"io/fs"
	"path/filepath"

	"github.com/treantlab/mdsynth/treant"
)

// Bundle is an ordered collection of Sims, as produced by Discover.
type Bundle struct {
	sims []*Sim
}

// Discover walks the tree rooted at dir and attaches to every Sim
// directory found, in lexical walk order. Directories marked as plain
// treants, or not marked at all, are walked through but not collected.
func Discover(dir string, opts ...Option) (*Bundle, error) {
	B := &Bundle{}
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if d.Name() == treant.StateDirName {
			return filepath.SkipDir
		}
		if !treant.IsSim(path) {
			return nil
		}
		sim, err := NewSim(path, opts...)
		if err != nil {
			return err
		}
		B.sims = append(B.sims, sim)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return B, nil
}

// Len returns the number of Sims in the bundle.
func (B *Bundle) Len() int { return len(B.sims) }

// Sims returns a copy of the member slice, in discovery order.
func (B *Bundle) Sims() []*Sim {
	return append([]*Sim(nil), B.sims...)
}

// Names returns the member names, in discovery order.
func (B *Bundle) Names() []string {
	names := make([]string, len(B.sims))
	for i, s := range B.sims {
		names[i] = s.Name()
	}
	return names
}

// Paths returns the member backing directories, in discovery order.
func (B *Bundle) Paths() []string {
	paths := make([]string, len(B.sims))
	for i, s := range B.sims {
		paths[i] = s.Path()
	}
	return paths
}

// Tagged returns the members carrying every one of the given tags.
func (B *Bundle) Tagged(tags ...string) (*Bundle, error) {
	out := &Bundle{}
	for _, s := range B.sims {
		have, err := s.Tags()
		if err != nil {
			return nil, err
		}
		all := true
		for _, tag := range tags {
			if !isIn(tag, have) {
				all = false
				break
			}
		}
		if all {
			out.sims = append(out.sims, s)
		}
	}
	return out, nil
}

func isIn(s string, set []string) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}
