/*
 * restraints.go, part of mrchem.
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
	"strings"

	"go.uber.org/zap"

	chem "github.com/rmera/mrchem"
	"github.com/rmera/mrchem/star"
)

// sides evaluates the selections of the current restraint. ok is false,
// after a diagnostic, if some side selects nothing or the whole model.
func (C *Context) sides(sels ...Sel) (atoms [][]Atom, factors []*Factor, ok bool) {
	ok = true
	for i, s := range sels {
		F := C.Resolved(s)
		factors = append(factors, F)
		atoms = append(atoms, F.Atoms)
		switch {
		case F.Universe:
			C.fatal(InsufficientSel, "The %s atom selection covers the whole model.", ordinal(i+1))
			ok = false
		case len(F.Atoms) == 0:
			if !C.rejected() {
				C.fatal(InsufficientSel, "The %s atom selection is empty.", ordinal(i+1))
			}
			ok = false
		}
	}
	return atoms, factors, ok && !C.rejected()
}

// Distance interprets a distance restraint between two selections. ctype is
// the kind of distance list, such as "NOE" or "hydrogen bond", or "". A
// distance from a paramagnetic center is a PRE. It returns the number of
// rows emitted.
func (C *Context) Distance(line int, s1, s2 Sel, b Bounds, ctype string) int {
	C.Enter(Dist, line)
	atoms, fs, ok := C.sides(s1, s2)
	if !ok {
		return C.Exit()
	}
	switch {
	case fs[0].Paramagnetic():
		C.Retype(PRE)
		return C.paramagneticRows(atoms[1], b)
	case fs[1].Paramagnetic():
		C.Retype(PRE)
		return C.paramagneticRows(atoms[0], b)
	}
	a, o := atoms[0], atoms[1]
	if len(a) == 1 && len(o) == 1 && a[0].Key() == o[0].Key() {
		var ext []string
		if C.reasons != nil {
			ext = C.reasons.ModelChainIDExt[a[0].ChainID]
		}
		moved := false
		for _, ch := range ext {
			k := o[0].Key()
			k.Chain = ch
			if site, ok := C.model.Site(k.Res()); ok && site.Has(k.Atom) {
				o = []Atom{o[0]}
				o[0].ChainID = ch
				moved = true
				break
			}
		}
		if !moved {
			C.ev.SameAtom[a[0].ChainID]++
			C.fatal(InvalidData, "The distance restraint is between the same atom %s.", a[0])
			return C.Exit()
		}
	}
	D := C.Validate(b)
	if D == nil {
		return C.Exit()
	}
	dt := C.DistType(ctype, a, o, D.vals.Upper)
	if ctype != "" {
		C.list(Dist).ConstraintType = ctype
	}
	C.write(C.members([][]Atom{a, o}, D))
	C.record(dt, "")
	return C.Exit()
}

// HBond interprets a hydrogen bond between a donor, its hydrogen and an
// acceptor. Every donor, hydrogen and acceptor combination is checked and
// the atoms left out of all good ones are reported. When no combination has
// the right chemistry, the restraint is kept as donor-acceptor and
// hydrogen-acceptor distances that must hold together.
func (C *Context) HBond(line int, donor, hydrogen, acceptor Sel, b Bounds) int {
	C.Enter(HBond, line)
	atoms, _, ok := C.sides(donor, hydrogen, acceptor)
	if !ok {
		return C.Exit()
	}
	var triples [][]Atom
	var problem string
	used := make(map[chem.AtomKey]bool)
	for _, t := range product(atoms) {
		if !sameClone(t...) {
			continue
		}
		if msg := C.hbondProblem(t[0], t[1], t[2]); msg != "" {
			if problem == "" {
				problem = msg
			}
			continue
		}
		triples = append(triples, t)
		for _, a := range t {
			used[a.Key()] = true
		}
	}
	if len(triples) == 0 {
		//not a hydrogen bond: donor-acceptor and hydrogen-acceptor distances
		C.fatal(UnmatchedAtomType, "%s", problem)
		C.Retype(Dist)
		D := C.Validate(b)
		if D == nil {
			return C.Exit()
		}
		var ms []member
		ncl := max(1, len(clonesIn(atoms)))
		for k, sides := range [][][]Atom{{atoms[0], atoms[2]}, {atoms[1], atoms[2]}} {
			for _, m := range C.members(sides, D) {
				m.combination = k*ncl + max(m.combination, 1)
				if m.logic == "" {
					m.logic = "AND"
				}
				ms = append(ms, m)
			}
		}
		C.write(ms)
		C.record(AmbiDist, "")
		return C.Exit()
	}
	var left []string
	for i, side := range atoms {
		for _, a := range side {
			if !used[a.Key()] {
				left = append(left, fmt.Sprintf("%s %s", []string{"donor", "hydrogen", "acceptor"}[i], a))
			}
		}
	}
	if len(left) > 0 {
		C.fatal(UnmatchedAtomType, "The atoms %s do not form a hydrogen bond with the rest of the selection.", strings.Join(left, ", "))
	}
	D := C.Validate(b)
	if D == nil {
		return C.Exit()
	}
	var hs, as []Atom
	for _, t := range triples {
		C.hbondGeometry(t[0], t[1], t[2])
		hs = append(hs, t[1])
		as = append(as, t[2])
	}
	C.write(C.members([][]Atom{normalize(hs), normalize(as)}, D))
	C.record(HBondDist, "")
	return C.Exit()
}

// Dihedral interprets a torsion angle restraint. With multiplicity n above
// one, the restraint is repeated every 360/n degrees as combinations.
func (C *Context) Dihedral(line int, sels [4]Sel, b Bounds, multiplicity int) int {
	C.Enter(Dihed, line)
	atoms, _, ok := C.sides(sels[:]...)
	if !ok {
		return C.Exit()
	}
	D := C.Validate(b)
	if D == nil {
		return C.Exit()
	}
	multiplicity = max(multiplicity, 1)
	var ms []member
	var name string
	tuples := C.members(atoms, D)
	ncl := max(1, len(clonesIn(atoms)))
	for k := range multiplicity {
		dk := D
		if k > 0 {
			dk = turned(D, float64(k)*360/float64(multiplicity))
		}
		for _, t := range tuples {
			var four [4]Atom
			copy(four[:], t.atoms)
			dd := *dk
			name = C.classifyDihedral(&four, &dd)
			t.atoms = four[:]
			t.dst = &dd
			if multiplicity > 1 {
				t.combination = k*ncl + max(t.combination, 1)
			}
			ms = append(ms, t)
		}
	}
	C.write(ms)
	C.record("", name)
	return C.Exit()
}

// turned returns the restraint rotated by deg degrees.
func turned(D *DstFunc, deg float64) *DstFunc {
	b := D.vals
	vals := []*Val{&b.Target, &b.Lower, &b.Upper, &b.LowerLinear, &b.UpperLinear}
	all := true
	for _, v := range vals {
		if v.Set {
			v.V += deg
			all = all && v.V > 180
		}
	}
	if all {
		for _, v := range vals {
			v.V -= 360
		}
	}
	ret := *D
	ret.vals = b
	set := func(dst *string, v Val) {
		if v.Set {
			*dst = fnum(v.V)
		}
	}
	set(&ret.Target, b.Target)
	set(&ret.Lower, b.Lower)
	set(&ret.Upper, b.Upper)
	set(&ret.LowerLinear, b.LowerLinear)
	set(&ret.UpperLinear, b.UpperLinear)
	return &ret
}

// Angle interprets a bond angle restraint over three selections.
func (C *Context) Angle(line int, sels [3]Sel, b Bounds) int {
	C.Enter(Ang, line)
	atoms, _, ok := C.sides(sels[:]...)
	if !ok {
		return C.Exit()
	}
	D := C.Validate(b)
	if D == nil {
		return C.Exit()
	}
	C.write(C.members(atoms, D))
	C.record("", "")
	return C.Exit()
}

// RDC interprets a residual dipolar coupling between two selections.
func (C *Context) RDC(line int, s1, s2 Sel, b Bounds) int {
	C.Enter(RDC, line)
	atoms, _, ok := C.sides(s1, s2)
	if !ok {
		return C.Exit()
	}
	D := C.Validate(b)
	if D == nil {
		return C.Exit()
	}
	C.write(C.members(atoms, D))
	C.record("", "")
	return C.Exit()
}

// PRE interprets a paramagnetic relaxation enhancement. With two selections
// the first is the paramagnetic center; with one, the last center seen is
// used.
func (C *Context) PRE(line int, sels []Sel, b Bounds) int {
	return C.paramagnetic1(PRE, line, sels, b)
}

// PCS interprets a pseudocontact shift, with the selections as in PRE.
func (C *Context) PCS(line int, sels []Sel, b Bounds) int {
	return C.paramagnetic1(PCS, line, sels, b)
}

func (C *Context) paramagnetic1(sub string, line int, sels []Sel, b Bounds) int {
	C.Enter(sub, line)
	if len(sels) == 0 || len(sels) > 2 {
		C.fatal(InvalidData, "%d atom selections given, 1 or 2 expected.", len(sels))
		return C.Exit()
	}
	atoms, fs, ok := C.sides(sels...)
	if !ok {
		return C.Exit()
	}
	if len(sels) == 2 && !fs[0].Paramagnetic() {
		C.paramag = slices.Clone(atoms[0])
	}
	if len(C.paramag) == 0 {
		C.soft(MissingData, "No paramagnetic center was defined before this restraint.")
	}
	return C.paramagneticRows(atoms[len(atoms)-1], b)
}

// paramagneticRows emits the rows of a PRE or PCS restraint on the nucleus.
func (C *Context) paramagneticRows(nucleus []Atom, b Bounds) int {
	D := C.Validate(b)
	if D == nil {
		return C.Exit()
	}
	if len(C.paramag) > 0 {
		C.log.Debug("paramagnetic center", zap.Stringer("atom", C.paramag[0]))
	}
	C.write(C.members([][]Atom{nucleus}, D))
	C.record("", "")
	return C.Exit()
}

// Generic interprets a restraint of the subtypes without a dedicated entry
// point (csa, ccr, t1t2, cs): one selection per atom column.
func (C *Context) Generic(subtype string, line int, sels []Sel, b Bounds) int {
	C.Enter(subtype, line)
	if n := len(sels); n == 0 || n != star.NumAtoms(subtype) {
		C.fatal(InvalidData, "%d atom selections given, %d expected.", n, star.NumAtoms(subtype))
		return C.Exit()
	}
	atoms, _, ok := C.sides(sels...)
	if !ok {
		return C.Exit()
	}
	D := C.Validate(b)
	if D == nil {
		return C.Exit()
	}
	C.write(C.members(atoms, D))
	C.record("", "")
	return C.Exit()
}
