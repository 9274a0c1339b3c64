/*
 * analyze.go, part of mdsynth.
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

//Package analyze computes per-selection observables over the
//trajectories of a Sim. Every function here takes a stored selection by
//name, so results always reflect the currently registered files.
//
//Selections holding several queries are resolved to the union of their
//groups.
package analyze

import (
	"fmt"
	"math"

	chem "github.com/rmera/gochem"
	v3 "github.com/rmera/gochem/v3"
	"gonum.org/v1/gonum/floats"

	mdsynth "github.com/treantlab/mdsynth"
	"github.com/treantlab/mdsynth/sel"
)

// RMSD returns, frame by frame, the root-mean-square deviation of the
// stored selection from the topology's reference coordinates. No
// superposition is performed: the deviation is measured in the frame of
// the trajectory as written.
func RMSD(sim *mdsynth.Sim, selname string) ([]float64, error) {
	group, u, err := resolve(sim, selname)
	if err != nil {
		return nil, err
	}
	ref, err := group.Coords(u.Mol().Coords[0])
	if err != nil {
		return nil, err
	}
	var out []float64
	err = eachFrame(u, func(frame *v3.Matrix) error {
		sub, err := group.Coords(frame)
		if err != nil {
			return err
		}
		out = append(out, rmsd(sub, ref))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// RMSF returns, atom by atom (in group index order), the root-mean-
// square fluctuation of the stored selection about its trajectory mean
// position. The whole selection's coordinates are held in memory for the
// two passes, so very long trajectories are better decimated first.
func RMSF(sim *mdsynth.Sim, selname string) ([]float64, error) {
	group, u, err := resolve(sim, selname)
	if err != nil {
		return nil, err
	}
	var frames []*v3.Matrix
	err = eachFrame(u, func(frame *v3.Matrix) error {
		sub, err := group.Coords(frame)
		if err != nil {
			return err
		}
		cp := v3.Zeros(group.Len())
		cp.Copy(sub)
		frames = append(frames, cp)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(frames) == 0 {
		return nil, fmt.Errorf("analyze: RMSF: no frames read")
	}
	n := group.Len()
	nf := float64(len(frames))
	mean := make([]float64, 3*n)
	for _, f := range frames {
		for i := 0; i < n; i++ {
			for k := 0; k < 3; k++ {
				mean[3*i+k] += f.At(i, k)
			}
		}
	}
	floats.Scale(1/nf, mean)
	out := make([]float64, n)
	for _, f := range frames {
		for i := 0; i < n; i++ {
			for k := 0; k < 3; k++ {
				d := f.At(i, k) - mean[3*i+k]
				out[i] += d * d
			}
		}
	}
	for i := range out {
		out[i] = math.Sqrt(out[i] / nf)
	}
	return out, nil
}

// resolve looks up the stored selection and unions its groups.
func resolve(sim *mdsynth.Sim, selname string) (*sel.Group, *mdsynth.Universe, error) {
	groups, err := sim.Selections().Get(selname)
	if err != nil {
		return nil, nil, err
	}
	group := groups[0]
	for _, g := range groups[1:] {
		group, err = group.Union(g)
		if err != nil {
			return nil, nil, err
		}
	}
	if group.Len() == 0 {
		return nil, nil, fmt.Errorf("analyze: selection %q matches no atoms", selname)
	}
	u, err := sim.Universe()
	if err != nil {
		return nil, nil, err
	}
	return group, u, nil
}

// eachFrame streams every frame of the Universe through fn.
func eachFrame(u *mdsynth.Universe, fn func(*v3.Matrix) error) error {
	traj := u.Frames()
	frame := v3.Zeros(traj.Len())
	for {
		err := traj.Next(frame)
		if err != nil {
			if _, ok := err.(chem.LastFrameError); ok {
				return nil
			}
			return err
		}
		if err := fn(frame); err != nil {
			return err
		}
	}
}

// rmsd of two equally-sized coordinate sets, no fitting.
func rmsd(a, b *v3.Matrix) float64 {
	n := a.NVecs()
	var sum float64
	for i := 0; i < n; i++ {
		for k := 0; k < 3; k++ {
			d := a.At(i, k) - b.At(i, k)
			sum += d * d
		}
	}
	return math.Sqrt(sum / float64(n))
}
