/*
 * doc.go, part of mdsynth.
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

/*Package mdsynth marks molecular-dynamics simulation directories with
persisted identity and metadata, and resolves selections stored with a
simulation into live atom groups.

A Sim is a directory carrying a persistent marker: a unique id, a name,
free-form tags, string key/value categories, a registered topology file
and an ordered sequence of registered trajectory files. Attaching to a
directory either reads an existing marker or creates a fresh one:

	sim, err := mdsynth.NewSim("/data/adk/equilibrium")
	if err != nil {
		...
	}
	sim.SetTopology("adk.pdb")
	sim.AddTrajectories("eq1.dcd", "eq2.dcd")

The loaded system, topology plus chained trajectories, is built lazily
by Universe() through the goChem library and cached until the registered
files change.

Selections stored with a Sim survive the process. They are persisted as
query strings and re-resolved against the current Universe on every
lookup, so a changed trajectory or topology takes effect on the next
Get:

	sels := sim.Selections()
	sels.Add("binding site", "resid 12:25 and not backbone")
	groups, err := sels.Get("binding site")

Query syntax is documented in the sel package. Trees holding many
simulations can be gathered with Discover, which returns a Bundle of
every marked simulation directory under a root.
*/
package mdsynth
