/*
 * errors.go, part of mdsynth.
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

import "fmt"

// NotATreantError reports a directory that exists but holds no
// compatible persisted marker, or a corrupt one.
type NotATreantError struct {
	Path string
	Err  error
}

func (e *NotATreantError) Error() string {
	return fmt.Sprintf("mdsynth: %s does not hold a compatible marker: %v", e.Path, e.Err)
}

func (e *NotATreantError) Unwrap() error { return e.Err }

// MissingTopologyError reports an attempt to build a Universe for a Sim
// with no topology registered.
type MissingTopologyError struct {
	Sim string
}

func (e *MissingTopologyError) Error() string {
	return fmt.Sprintf("mdsynth: sim %q has no topology registered", e.Sim)
}

// MissingTrajectoryError reports an attempt to build a Universe for a
// Sim with no trajectories registered.
type MissingTrajectoryError struct {
	Sim string
}

func (e *MissingTrajectoryError) Error() string {
	return fmt.Sprintf("mdsynth: sim %q has no trajectories registered", e.Sim)
}

// SelectionNotFoundError reports a lookup of a selection name that was
// never stored (or was removed).
type SelectionNotFoundError struct {
	Sim  string
	Name string
}

func (e *SelectionNotFoundError) Error() string {
	return fmt.Sprintf("mdsynth: sim %q has no selection named %q", e.Sim, e.Name)
}
