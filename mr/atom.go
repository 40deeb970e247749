/*
 * atom.go, part of mrchem.
 *
 * Copyright 2026 The mrchem Authors
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

package mr

import (
	"fmt"
	"slices"

	chem "github.com/rmera/mrchem"
	"github.com/rmera/mrchem/chemstat"
)

// Atom is an atom of a resolved selection. ChainID and SeqID are in the
// author scheme of the model.
type Atom struct {
	ChainID                 string `json:"chain_id"`
	SeqID                   int    `json:"seq_id"`
	CompID                  string `json:"comp_id"`
	AtomID                  string `json:"atom_id"`
	IsPoly                  bool   `json:"is_poly"`
	SegmentID               string `json:"segment_id,omitempty"`
	AuthAtomID              string `json:"auth_atom_id,omitempty"`
	HydrogenNotInstantiated bool   `json:"hydrogen_not_instantiated,omitempty"`

	clone int //copy of the restraint on an identical chain, from 1
}

func (A Atom) String() string {
	return fmt.Sprintf("%s:%d:%s:%s", A.ChainID, A.SeqID, A.CompID, A.AtomID)
}

// Key returns the model key of the atom.
func (A Atom) Key() chem.AtomKey {
	return chem.AtomKey{Chain: A.ChainID, Seq: A.SeqID, Atom: A.AtomID}
}

// Res returns the residue key of the atom.
func (A Atom) Res() chem.ResKey {
	return chem.ResKey{Chain: A.ChainID, Seq: A.SeqID}
}

func (A Atom) site() chemstat.Site {
	return chemstat.Site{Chain: A.ChainID, Seq: A.SeqID, CompID: A.CompID, AtomID: A.AtomID}
}

func lessAtom(a, b Atom) int {
	switch {
	case chem.LessAtomKey(a.Key(), b.Key()):
		return -1
	case chem.LessAtomKey(b.Key(), a.Key()):
		return 1
	}
	return 0
}

func cloned(atoms []Atom, clone int) []Atom {
	for i := range atoms {
		atoms[i].clone = clone
	}
	return atoms
}

// sameClone reports whether the atoms can be in one row: they belong to
// the same copy of the restraint, or to none.
func sameClone(atoms ...Atom) bool {
	c := 0
	for _, a := range atoms {
		switch {
		case a.clone == 0:
		case c == 0:
			c = a.clone
		case a.clone != c:
			return false
		}
	}
	return true
}

// normalize removes repeated atoms, keeping the first, and sorts by chain,
// sequence number and atom name.
func normalize(atoms []Atom) []Atom {
	seen := make(map[chem.AtomKey]bool, len(atoms))
	ret := make([]Atom, 0, len(atoms))
	for _, a := range atoms {
		if seen[a.Key()] {
			continue
		}
		seen[a.Key()] = true
		ret = append(ret, a)
	}
	slices.SortStableFunc(ret, lessAtom)
	return ret
}

func sites(atoms []Atom) []chemstat.Site {
	ret := make([]chemstat.Site, len(atoms))
	for i, a := range atoms {
		ret[i] = a.site()
	}
	return ret
}
