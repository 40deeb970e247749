/*
 * atomicdata.go, part of mrchem.
 *
 * Copyright 2012 Raul Mera <rmera{at}chemDOThelsinkiDOTfi>
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
 *
 */
/***Dedicated to the long life of the Ven. Khenpo Phuntzok Tenzin Rinpoche***/

package chem

import "strings"

//A map for assigning covalent radii to elements
//Values from Cordero et al., 2008 (DOI:10.1039/B801115J)
//Note that just common "bio-elements" and the paramagnetic ions
//used in NMR are present
var symbolCovrad = map[string]float64{
	"H":  0.4, // 0.31 altered. Since H always has only one bond, a longer radius doesn't hurt.
	"C":  0.76, //the sp3 radius
	"O":  0.66,
	"N":  0.71,
	"P":  1.07,
	"S":  1.05,
	"Se": 1.2,
	"K":  2.03,
	"Ca": 1.76,
	"Mg": 1.41,
	"Cl": 1.02,
	"Na": 1.66,
	"Cu": 1.32,
	"Zn": 1.22,
	"Co": 1.5,  // hs
	"Fe": 1.52, //hs
	"Mn": 1.61, //hs
	"Ni": 1.24,
	"Cr": 1.39,
	"Si": 1.11,
	"Be": 0.96,
	"F":  0.57,
	"Br": 1.2,
	"I":  1.39,
	"La": 2.07,
	"Ce": 2.04,
	"Pr": 2.03,
	"Nd": 2.01,
	"Pm": 1.99,
	"Sm": 1.98,
	"Eu": 1.98,
	"Gd": 1.96,
	"Tb": 1.94,
	"Dy": 1.92,
	"Ho": 1.92,
	"Er": 1.89,
	"Tm": 1.90,
	"Yb": 1.87,
	"Lu": 1.87,
}

// LanthanoidElements are the lanthanide element symbols, upper case, as they
// appear as atom or residue names.
var LanthanoidElements = []string{"LA", "CE", "PR", "ND", "PM", "SM", "EU", "GD", "TB", "DY", "HO", "ER", "TM", "YB", "LU"}

// ParamagneticElements are the metal ions, besides the lanthanides, usually
// responsible for PRE and PCS.
var ParamagneticElements = []string{"CU", "MN", "FE", "CO", "NI", "CR", "V"}

// FerromagneticElements are never treated as spin labels.
var FerromagneticElements = []string{"FE", "CO", "NI"}

// IsLanthanoid reports whether the (case insensitive) name is a lanthanide.
func IsLanthanoid(name string) bool {
	return isInString(LanthanoidElements, strings.ToUpper(name))
}

// IsParamagnetic reports whether the (case insensitive) name is a paramagnetic
// element, including the lanthanides.
func IsParamagnetic(name string) bool {
	n := strings.ToUpper(name)
	return isInString(ParamagneticElements, n) || isInString(LanthanoidElements, n)
}

// CovalentRadius returns the covalent radius of an element, 0 if unknown.
func CovalentRadius(symbol string) float64 {
	if len(symbol) > 1 {
		symbol = symbol[:1] + strings.ToLower(symbol[1:])
	}
	return symbolCovrad[symbol]
}

// three2OneLetter maps standard residue names to one letter codes.
var three2OneLetter = map[string]string{
	"ALA": "A", "ARG": "R", "ASN": "N", "ASP": "D", "CYS": "C",
	"GLN": "Q", "GLU": "E", "GLY": "G", "HIS": "H", "ILE": "I",
	"LEU": "L", "LYS": "K", "MET": "M", "PHE": "F", "PRO": "P",
	"SER": "S", "THR": "T", "TRP": "W", "TYR": "Y", "VAL": "V",
	"DA": "A", "DC": "C", "DG": "G", "DT": "T",
	"A": "A", "C": "C", "G": "G", "U": "U",
}

// OneLetter returns the one letter code of a residue, or "X".
func OneLetter(comp string) string {
	if s, ok := three2OneLetter[comp]; ok {
		return s
	}
	return "X"
}

func isInString(container []string, test string) bool {
	for _, i := range container {
		if test == i {
			return true
		}
	}
	return false
}
