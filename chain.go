/*
 * chain.go, part of mdsynth.
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
	"strings"

	chem "github.com/rmera/gochem"
	"github.com/rmera/gochem/traj/amberold"
	"github.com/rmera/gochem/traj/dcd"
	"github.com/rmera/gochem/traj/stf"
	"github.com/rmera/gochem/traj/xtc"
	v3 "github.com/rmera/gochem/v3"
)

// chain presents an ordered list of trajectory files as one continuous
// trajectory. Files are opened lazily, one at a time; when one runs out
// of frames the next is opened, and only after the last file does Next
// return a LastFrameError. Every file must span the same number of atoms
// as the topology.
type chain struct {
	natoms int
	files  []string
	cur    chem.Traj
	pos    int //index into files of the next file to open
}

func newChain(natoms int, files []string) *chain {
	return &chain{natoms: natoms, files: append([]string(nil), files...)}
}

func (C *chain) Readable() bool {
	return C.cur != nil || C.pos < len(C.files)
}

// Len returns the number of atoms per frame.
func (C *chain) Len() int { return C.natoms }

func (C *chain) Next(output *v3.Matrix, box ...[]float64) error {
	for {
		if C.cur == nil {
			if C.pos >= len(C.files) {
				return newLastFrameError(C.lastFile())
			}
			t, err := openTraj(C.files[C.pos], C.natoms)
			if err != nil {
				return fmt.Errorf("mdsynth: trajectory %s: %w", C.files[C.pos], err)
			}
			if t.Len() != C.natoms {
				name := C.files[C.pos]
				C.closeCurrent(t)
				return fmt.Errorf("mdsynth: trajectory %s spans %d atoms, topology %d",
					name, t.Len(), C.natoms)
			}
			C.cur = t
			C.pos++
		}
		err := C.cur.Next(output, box...)
		if err == nil {
			return nil
		}
		if _, ok := err.(chem.LastFrameError); !ok {
			return err
		}
		C.closeCurrent(C.cur)
		C.cur = nil
	}
}

func (C *chain) closeCurrent(t chem.Traj) {
	if closer, ok := t.(io.Closer); ok {
		closer.Close()
	}
}

func (C *chain) lastFile() string {
	if len(C.files) == 0 {
		return ""
	}
	return C.files[len(C.files)-1]
}

// openTraj opens one trajectory file, dispatching on its extension the
// way the analysis library itself does. The stf reader handles its own
// compression, so stf.gz dispatches as stf.
func openTraj(name string, natoms int) (chem.Traj, error) {
	parts := strings.Split(name, ".")
	format := strings.ToLower(parts[len(parts)-1])
	if format == "gz" && len(parts) > 1 {
		format = strings.ToLower(parts[len(parts)-2])
	}
	switch format {
	case "dcd":
		t, err := dcd.New(name)
		return t, err
	case "xtc":
		t, err := xtc.New(name)
		return t, err
	case "stf":
		t, _, err := stf.New(name)
		return t, err
	case "crd":
		t, err := amberold.New(name, natoms, false)
		return t, err
	case "xyz":
		//a multi-frame xyz read as a Molecule is itself a Traj over
		//every frame in the file
		m, err := chem.XYZFileRead(name)
		return m, err
	}
	return nil, fmt.Errorf("unsupported trajectory format %q", format)
}

// lastFrameError satisfies chem.LastFrameError so that callers looping
// over a chain can terminate it the same way they terminate any goChem
// trajectory.
type lastFrameError struct {
	fileName string
	deco     []string
}

func newLastFrameError(fileName string) *lastFrameError {
	return &lastFrameError{fileName: fileName}
}

func (e *lastFrameError) Error() string {
	return fmt.Sprintf("EOF: no more frames after %s", e.fileName)
}

func (e *lastFrameError) Decorate(deco string) []string {
	if deco != "" {
		e.deco = append(e.deco, deco)
	}
	return e.deco
}

func (e *lastFrameError) FileName() string { return e.fileName }

func (e *lastFrameError) Format() string { return "chain" }

func (e *lastFrameError) Critical() bool { return false }

func (e *lastFrameError) NormalLastFrameTermination() {}
