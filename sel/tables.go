/*
 * tables.go, part of mdsynth.
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

package sel

//The 20 standard aminoacidic residues plus selenocysteine, the set the
//"protein" bareword matches against.
var proteinResidues = map[string]bool{
	"ALA": true,
	"ARG": true,
	"ASN": true,
	"ASP": true,
	"CYS": true,
	"GLN": true,
	"GLU": true,
	"GLY": true,
	"HIS": true,
	"ILE": true,
	"LEU": true,
	"LYS": true,
	"MET": true,
	"PHE": true,
	"PRO": true,
	"SEC": true, //Selenocysteine!
	"SER": true,
	"THR": true,
	"TRP": true,
	"TYR": true,
	"VAL": true,
}

//Atom names forming the peptide backbone.
var backboneNames = map[string]bool{
	"N":  true,
	"CA": true,
	"C":  true,
	"O":  true,
}

//Common residue names for water, matched by the "water" bareword.
var waterResidues = map[string]bool{
	"HOH": true,
	"H2O": true,
	"SOL": true,
	"TIP": true,
	"WAT": true,
}
