/*
 * universe.go, part of mdsynth.
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
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	chem "github.com/rmera/gochem"

	"github.com/treantlab/mdsynth/sel"
)

// Universe is a loaded topology together with the ordered trajectory
// files registered for it. The topology is read once at construction;
// frames are streamed on demand through Frames.
type Universe struct {
	topology     string
	trajectories []string
	mol          *chem.Molecule
}

// NewUniverse reads the topology at the given path and binds the given
// trajectory files to it, in order. The trajectory files are not opened
// here; a bad trajectory path surfaces when its frames are first read.
// Supported topology formats, by extension: pdb, cif, gro, xyz, each
// optionally gzip-compressed (.pdb.gz and so on).
func NewUniverse(topology string, trajectories ...string) (*Universe, error) {
	if topology == "" {
		return nil, &MissingTopologyError{}
	}
	if len(trajectories) == 0 {
		return nil, &MissingTrajectoryError{}
	}
	mol, err := readTopology(topology)
	if err != nil {
		return nil, fmt.Errorf("mdsynth: topology %s: %w", topology, err)
	}
	return &Universe{
		topology:     topology,
		trajectories: append([]string(nil), trajectories...),
		mol:          mol,
	}, nil
}

// Mol returns the loaded topology (with its reference coordinates).
func (U *Universe) Mol() *chem.Molecule { return U.mol }

// Topology returns the path the topology was read from.
func (U *Universe) Topology() string { return U.topology }

// Trajectories returns a copy of the bound trajectory paths, in order.
func (U *Universe) Trajectories() []string {
	return append([]string(nil), U.trajectories...)
}

// Select evaluates a selection query string against the topology. This
// is a convenience over sel.Compile + Eval; compile the query yourself
// if you evaluate it often.
func (U *Universe) Select(query string) (*sel.Group, error) {
	q, err := sel.Compile(query)
	if err != nil {
		return nil, err
	}
	return q.Eval(U.mol)
}

// Frames returns a fresh reader over every frame of every bound
// trajectory file, in registration order. Each call starts over from the
// first frame, so the sequence is restartable.
func (U *Universe) Frames() chem.Traj {
	return newChain(U.mol.Len(), U.trajectories)
}

// readTopology dispatches on the file extension, decompressing first
// when the file is gzipped.
func readTopology(path string) (*chem.Molecule, error) {
	name := path
	format := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	if format == "gz" {
		plain, err := gunzipToTemp(name)
		if err != nil {
			return nil, err
		}
		defer os.Remove(plain)
		name = plain
		format = strings.ToLower(strings.TrimPrefix(filepath.Ext(strings.TrimSuffix(path, ".gz")), "."))
	}
	switch format {
	case "pdb", "ent":
		return chem.PDBFileRead(name, false)
	case "cif":
		return chem.PDBxFileRead(name)
	case "gro":
		return chem.GroFileRead(name)
	case "xyz":
		return chem.XYZFileRead(name)
	}
	return nil, fmt.Errorf("unsupported topology format %q", format)
}

// gunzipToTemp decompresses path into a temporary file carrying the
// inner extension, so the format dispatch above still works on it. The
// caller removes the file.
func gunzipToTemp(path string) (string, error) {
	in, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer in.Close()
	zr, err := gzip.NewReader(in)
	if err != nil {
		return "", err
	}
	defer zr.Close()
	inner := filepath.Ext(strings.TrimSuffix(path, ".gz"))
	out, err := os.CreateTemp("", "mdsynth-*"+inner)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(out, zr); err != nil {
		out.Close()
		os.Remove(out.Name())
		return "", err
	}
	if err := out.Close(); err != nil {
		os.Remove(out.Name())
		return "", err
	}
	return out.Name(), nil
}
