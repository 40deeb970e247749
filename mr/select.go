/*
 * select.go, part of mrchem.
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
	"slices"

	chem "github.com/rmera/mrchem"
)

// Sel is a selection expression. Evaluating it gives either a set of atoms
// or the universe, every atom of the model, which is kept symbolic so that
// intersections with it cost nothing.
type Sel interface {
	eval(C *Context) (atoms []Atom, universe bool)
}

// Atoms selects the atoms of a factor.
type Atoms struct {
	F *Factor
}

// Not selects every atom of the model not in S.
type Not struct {
	S Sel
}

// And selects the atoms in both operands.
type And struct {
	L, R Sel
}

// Or selects the atoms in either operand.
type Or struct {
	L, R Sel
}

func (A Atoms) eval(C *Context) ([]Atom, bool) {
	if A.F == nil {
		return nil, false
	}
	if A.F.Universe {
		return nil, true
	}
	C.Resolve(A.F)
	return A.F.Atoms, false
}

func (N Not) eval(C *Context) ([]Atom, bool) {
	atoms, univ := N.S.eval(C)
	if univ {
		return nil, false
	}
	out := make(map[chem.AtomKey]bool, len(atoms))
	for _, a := range atoms {
		out[a.Key()] = true
	}
	var ret []Atom
	for _, k := range C.model.Universe() {
		if out[k] {
			continue
		}
		comp, _ := C.model.CompOf(k.Res())
		ret = append(ret, Atom{ChainID: k.Chain, SeqID: k.Seq, CompID: comp, AtomID: k.Atom, IsPoly: C.model.IsPolymerResidue(k.Res())})
	}
	return ret, false
}

func (A And) eval(C *Context) ([]Atom, bool) {
	l, lu := A.L.eval(C)
	r, ru := A.R.eval(C)
	switch {
	case lu && ru:
		return nil, true
	case lu:
		return r, false
	case ru:
		return l, false
	}
	return intersect(l, r), false
}

func (O Or) eval(C *Context) ([]Atom, bool) {
	l, lu := O.L.eval(C)
	r, ru := O.R.eval(C)
	switch {
	case lu && ru:
		return nil, true
	case lu:
		return r, false
	case ru:
		return l, false
	}
	return normalize(append(slices.Clone(l), r...)), false
}

// intersect keeps the atoms of l found in r. Hydrogens that are not in the
// coordinates match at the residue level, since the other operand cannot
// name them.
func intersect(l, r []Atom) []Atom {
	keys := make(map[chem.AtomKey]bool, len(r))
	res := make(map[chem.ResKey]bool, len(r))
	for _, a := range r {
		keys[a.Key()] = true
		res[a.Res()] = true
	}
	var ret []Atom
	for _, a := range l {
		if keys[a.Key()] || (a.HydrogenNotInstantiated && res[a.Res()]) {
			ret = append(ret, a)
		}
	}
	lk := make(map[chem.AtomKey]bool, len(ret))
	for _, a := range ret {
		lk[a.Key()] = true
	}
	ls := make(map[chem.ResKey]bool, len(l))
	for _, a := range l {
		ls[a.Res()] = true
	}
	for _, a := range r {
		if a.HydrogenNotInstantiated && ls[a.Res()] && !lk[a.Key()] {
			ret = append(ret, a)
		}
	}
	return normalize(ret)
}

// Select evaluates a selection. The universe is expanded to every atom of
// the model.
func (C *Context) Select(s Sel) []Atom {
	atoms, univ := s.eval(C)
	if univ {
		atoms, _ = Not{Atoms{AtomsFactor(nil)}}.eval(C)
	}
	return normalize(atoms)
}

// Resolved evaluates a selection into a resolved factor, keeping the
// paramagnetic flags of the factors involved.
func (C *Context) Resolved(s Sel) *Factor {
	atoms, univ := s.eval(C)
	if univ {
		return UniverseFactor()
	}
	F := AtomsFactor(normalize(atoms))
	F.Failed = len(F.Atoms) == 0
	walk(s, func(f *Factor) {
		F.HasNitroxide = F.HasNitroxide || f.HasNitroxide
		F.HasGd3 = F.HasGd3 || f.HasGd3
		F.HasLanthanide = F.HasLanthanide || f.HasLanthanide
	})
	return F
}

func walk(s Sel, f func(*Factor)) {
	switch v := s.(type) {
	case Atoms:
		if v.F != nil {
			f(v.F)
		}
	case Not:
		walk(v.S, f)
	case And:
		walk(v.L, f)
		walk(v.R, f)
	case Or:
		walk(v.L, f)
		walk(v.R, f)
	}
}
