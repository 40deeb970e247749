/*
 * bonds.go, part of mrchem.
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

//constants from DOI:10.1186/1758-2946-3-33
const (
	tooclose = 0.63
	bondtol  = 0.45
)

// CovalentlyBonded reports whether two atoms are close enough in the representative
// model to be covalently bonded, using a simple distance criterium similar to that
// described in DOI:10.1186/1758-2946-3-33. The boolean is false if the
// question can't be answered (missing coordinates or unknown elements).
func (M *Model) CovalentlyBonded(a, b AtomKey) (bonded bool, known bool) {
	d, ok := M.DistanceOf(a, b)
	if !ok {
		return false, false
	}
	sa, sb := M.symbolOf(a), M.symbolOf(b)
	cov1, cov2 := CovalentRadius(sa), CovalentRadius(sb)
	if cov1 == 0 || cov2 == 0 {
		return false, false
	}
	return d < cov1+cov2+bondtol && d > tooclose, true
}

func (M *Model) symbolOf(a AtomKey) string {
	s, ok := M.Sites[a.Res()]
	if !ok {
		return ""
	}
	return s.Symbol(a.Atom)
}

// linked reports whether struct_conn lists a covalent link between the two residues.
func (M *Model) linked(r1, r2 ResKey) bool {
	for _, l := range M.Links {
		if l.Type != "covale" && l.Type != "disulf" {
			continue
		}
		a, b := l.A.Res(), l.B.Res()
		if a == r1 && b == r2 || a == r2 && b == r1 {
			return true
		}
	}
	return false
}

// IsCyclic reports whether the first and last residues of a polymer are
// covalently connected, either by a struct_conn link or, failing that,
// by the coordinates of the backbone atoms (C to N for peptides, O3' to P
// for nucleic acids).
func (M *Model) IsCyclic(c *Chain) bool {
	if c.Kind != Polymer || c.Len() < 3 {
		return false
	}
	first, last := BrokenSeqID, BrokenSeqID
	for _, s := range c.AuthSeqIDs {
		if s == BrokenSeqID {
			continue
		}
		if first == BrokenSeqID {
			first = s
		}
		last = s
	}
	if first == BrokenSeqID || first == last {
		return false
	}
	r1, r2 := ResKey{c.AuthChainID, first}, ResKey{c.AuthChainID, last}
	if M.linked(r1, r2) {
		return true
	}
	for _, pair := range [][2]string{{"C", "N"}, {"O3'", "P"}} {
		if b, ok := M.CovalentlyBonded(AtomKey{r2.Chain, r2.Seq, pair[0]}, AtomKey{r1.Chain, r1.Seq, pair[1]}); ok {
			return b
		}
	}
	return false
}
