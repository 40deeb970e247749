/*
 * classify.go, part of mrchem.
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

	"go.uber.org/zap"

	chem "github.com/rmera/mrchem"
	"github.com/rmera/mrchem/chemstat"
)

// torsion is a dihedral template. Each position takes any of the names
// given, in the residue at offs from the residue of the second atom.
type torsion struct {
	name  string
	comps []string //nil for every residue of the class
	atoms [4][]string
	offs  [4]int
}

func one(names ...string) []string { return names }

var peptideTorsions = []torsion{
	{"PHI", nil, [4][]string{one("C"), one("N"), one("CA"), one("C")}, [4]int{-1, 0, 0, 0}},
	{"PSI", nil, [4][]string{one("N"), one("CA"), one("C"), one("N")}, [4]int{0, 0, 0, 1}},
	{"OMEGA", nil, [4][]string{one("CA"), one("C"), one("N"), one("CA")}, [4]int{0, 0, 1, 1}},
	{"CHI1", nil, [4][]string{one("N"), one("CA"), one("CB"), one("CG", "OG", "SG", "CG1", "OG1")}, [4]int{}},
	{"CHI21", []string{"ILE"}, [4][]string{one("CA"), one("CB"), one("CG1"), one("CD1")}, [4]int{}},
	{"CHI22", []string{"LEU"}, [4][]string{one("CA"), one("CB"), one("CG"), one("CD2")}, [4]int{}},
	{"CHI2", []string{"PHE", "TYR", "HIS", "TRP"}, [4][]string{one("CA"), one("CB"), one("CG"), one("CD2")}, [4]int{}},
	{"CHI2", nil, [4][]string{one("CA"), one("CB"), one("CG"), one("CD", "CD1", "OD1", "ND1", "SD")}, [4]int{}},
	{"CHI31", []string{"GLU", "GLN"}, [4][]string{one("CB"), one("CG"), one("CD"), one("OE1")}, [4]int{}},
	{"CHI32", []string{"GLU", "GLN"}, [4][]string{one("CB"), one("CG"), one("CD"), one("OE2", "NE2")}, [4]int{}},
	{"CHI3", nil, [4][]string{one("CB"), one("CG"), one("CD", "SD"), one("NE", "CE")}, [4]int{}},
	{"CHI4", nil, [4][]string{one("CG"), one("CD"), one("NE", "CE"), one("CZ", "NZ")}, [4]int{}},
	{"CHI5", []string{"ARG"}, [4][]string{one("CD"), one("NE"), one("CZ"), one("NH1")}, [4]int{}},
	{"CHI42", []string{"ARG"}, [4][]string{one("CD"), one("NE"), one("CZ"), one("NH2")}, [4]int{}},
}

var nucleotideTorsions = []torsion{
	{"ALPHA", nil, [4][]string{one("O3'"), one("P"), one("O5'"), one("C5'")}, [4]int{-1, 0, 0, 0}},
	{"BETA", nil, [4][]string{one("P"), one("O5'"), one("C5'"), one("C4'")}, [4]int{}},
	{"GAMMA", nil, [4][]string{one("O5'"), one("C5'"), one("C4'"), one("C3'")}, [4]int{}},
	{"DELTA", nil, [4][]string{one("C5'"), one("C4'"), one("C3'"), one("O3'")}, [4]int{}},
	{"EPSILON", nil, [4][]string{one("C4'"), one("C3'"), one("O3'"), one("P")}, [4]int{0, 0, 0, 1}},
	{"ZETA", nil, [4][]string{one("C3'"), one("O3'"), one("P"), one("O5'")}, [4]int{0, 0, 1, 1}},
	{"CHIN", []string{"A", "G", "DA", "DG"}, [4][]string{one("O4'"), one("C1'"), one("N9"), one("C4")}, [4]int{}},
	{"CHIN", []string{"C", "U", "DC", "DT"}, [4][]string{one("O4'"), one("C1'"), one("N1"), one("C2")}, [4]int{}},
	{"NU0", nil, [4][]string{one("C4'"), one("O4'"), one("C1'"), one("C2'")}, [4]int{}},
	{"NU1", nil, [4][]string{one("O4'"), one("C1'"), one("C2'"), one("C3'")}, [4]int{}},
	{"NU2", nil, [4][]string{one("C1'"), one("C2'"), one("C3'"), one("C4'")}, [4]int{}},
	{"NU3", nil, [4][]string{one("C2'"), one("C3'"), one("C4'"), one("O4'")}, [4]int{}},
	{"NU4", nil, [4][]string{one("C3'"), one("C4'"), one("O4'"), one("C1'")}, [4]int{}},
	{"ETA", nil, [4][]string{one("C4'"), one("P"), one("C4'"), one("P")}, [4]int{-1, 0, 0, 1}},
	{"THETA", nil, [4][]string{one("P"), one("C4'"), one("P"), one("C4'")}, [4]int{0, 0, 1, 1}},
	{"ETA'", nil, [4][]string{one("C1'"), one("P"), one("C1'"), one("P")}, [4]int{-1, 0, 0, 1}},
	{"THETA'", nil, [4][]string{one("P"), one("C1'"), one("P"), one("C1'")}, [4]int{0, 0, 1, 1}},
}

var carbohydrateTorsions = []torsion{
	{"TAU0", nil, [4][]string{one("O5"), one("C1"), one("C2"), one("C3")}, [4]int{}},
	{"TAU1", nil, [4][]string{one("C1"), one("C2"), one("C3"), one("C4")}, [4]int{}},
	{"TAU2", nil, [4][]string{one("C2"), one("C3"), one("C4"), one("C5")}, [4]int{}},
	{"TAU3", nil, [4][]string{one("C3"), one("C4"), one("C5"), one("O5")}, [4]int{}},
	{"TAU4", nil, [4][]string{one("C4"), one("C5"), one("O5"), one("C1")}, [4]int{}},
}

// match reports whether the atoms, at the given residue offsets relative to
// the second atom, fit the template.
func (T *torsion) match(names [4]string, comps [4]string, offs [4]int) bool {
	for i := range 4 {
		if offs[i] != T.offs[i]-T.offs[1] || !slices.Contains(T.atoms[i], names[i]) {
			return false
		}
		if T.comps != nil && T.offs[i] == T.offs[1] && !slices.Contains(T.comps, comps[i]) {
			return false
		}
	}
	return true
}

// labelSeq returns the label sequence number of the residue of a, or its
// author number when it has none.
func (C *Context) labelSeq(a Atom) int {
	if l, ok := C.model.Seq.AuthToLabel[a.Res()]; ok {
		return l.Seq
	}
	return a.SeqID
}

// TorsionName returns the name of the dihedral defined by the four atoms,
// "pseudo-" and the name if it fits only after swapping the middle atoms, or
// "." if it is not a known torsion.
func (C *Context) TorsionName(atoms [4]Atom, planeLike bool) string {
	for i := 1; i < 4; i++ {
		if atoms[i].ChainID != atoms[0].ChainID {
			return "."
		}
	}
	var templates []torsion
	switch C.stat.TypeOfResidue(C.dict.RealCompID(atoms[1].CompID, true)) {
	case chemstat.Peptide:
		templates = peptideTorsions
	case chemstat.DNA, chemstat.RNA:
		templates = nucleotideTorsions
	case chemstat.Carbohydrate:
		templates = carbohydrateTorsions
	default:
		return "."
	}
	try := func(a [4]Atom) string {
		var names, comps [4]string
		var offs [4]int
		ref := C.labelSeq(a[1])
		for i := range 4 {
			names[i] = a[i].AtomID
			comps[i] = C.dict.RealCompID(a[i].CompID, true)
			offs[i] = C.labelSeq(a[i]) - ref
		}
		for i := range templates {
			if templates[i].match(names, comps, offs) {
				return templates[i].name
			}
		}
		return ""
	}
	reversed := [4]Atom{atoms[3], atoms[2], atoms[1], atoms[0]}
	for _, a := range [][4]Atom{atoms, reversed} {
		if n := try(a); n != "" {
			return n
		}
	}
	for _, a := range [][4]Atom{atoms, reversed} {
		a[1], a[2] = a[2], a[1]
		if n := try(a); n != "" {
			return "pseudo-" + n
		}
	}
	if planeLike && peptidePlane(atoms) {
		return "PPA"
	}
	return "."
}

// peptidePlane reports torsions over a peptide bond made of backbone atoms
// other than the ones of OMEGA, such as O-C-N-H.
func peptidePlane(a [4]Atom) bool {
	side := func(x Atom) bool { return slices.Contains([]string{"O", "CA", "C"}, x.AtomID) }
	other := func(x Atom) bool { return slices.Contains([]string{"H", "CA", "N"}, x.AtomID) }
	return a[1].AtomID == "C" && a[2].AtomID == "N" && side(a[0]) && other(a[3]) && a[3].SeqID != a[0].SeqID ||
		a[1].AtomID == "N" && a[2].AtomID == "C" && other(a[0]) && side(a[3]) && a[3].SeqID != a[0].SeqID
}

// classifyDihedral names the torsion of a dihedral restraint, repairing
// atoms given in the wrong middle order.
func (C *Context) classifyDihedral(atoms *[4]Atom, D *DstFunc) string {
	name := C.TorsionName(*atoms, D.PlaneLike)
	if len(name) > 7 && name[:7] == "pseudo-" {
		atoms[1], atoms[2] = atoms[2], atoms[1]
		name = name[7:]
		C.fatal(UnmatchedAtomType, "The atoms %s, %s were swapped to define the %s torsion angle.", atoms[2], atoms[1], name)
	}
	if name == "CHI2" {
		C.chi2Realism(atoms, D)
	}
	D.Name = name
	return name
}

// angleError measures how far an observed angle is from a restraint.
func angleError(b Bounds, obs float64) float64 {
	if b.Target.Set {
		return chem.AngleDiff(b.Target.V, obs)
	}
	if b.Lower.Set && b.Upper.Set {
		if chem.AngleDiff(obs, (b.Lower.V+b.Upper.V)/2) <= (b.Upper.V-b.Lower.V)/2 {
			return 0
		}
		return min(chem.AngleDiff(b.Lower.V, obs), chem.AngleDiff(b.Upper.V, obs))
	}
	return 0
}

// chi2Realism expresses CHI2 of rings with equivalent CD atoms on CD1. If
// the restraint fits the structure better as a torsion to CD2, it is turned
// by 180 degrees.
func (C *Context) chi2Realism(atoms *[4]Atom, D *DstFunc) {
	comp := C.dict.RealCompID(atoms[3].CompID, true)
	if comp != "PHE" && comp != "TYR" {
		return
	}
	if a := atoms[3].AtomID; a != "CD1" && a != "CD2" {
		return
	}
	var cd1, cd2 [4]chem.AtomKey
	for i, a := range atoms {
		cd1[i] = a.Key()
	}
	cd2 = cd1
	cd1[3].Atom, cd2[3].Atom = "CD1", "CD2"
	o1, ok1 := C.model.DihedralOf(cd1)
	o2, ok2 := C.model.DihedralOf(cd2)
	if !ok1 || !ok2 {
		return
	}
	b := D.vals
	atoms[3].AtomID = "CD1"
	if angleError(b, o2) >= angleError(b, o1) {
		return
	}
	vals := []*Val{&b.Target, &b.Lower, &b.Upper, &b.LowerLinear, &b.UpperLinear}
	all := true
	for _, v := range vals {
		if v.Set {
			v.V += 180
			all = all && v.V > 180
		}
	}
	if all {
		for _, v := range vals {
			v.V -= 360
		}
	}
	D.vals = b
	set := func(dst *string, v Val) {
		if v.Set {
			*dst = fnum(v.V)
		}
	}
	set(&D.Target, b.Target)
	set(&D.Lower, b.Lower)
	set(&D.Upper, b.Upper)
	set(&D.LowerLinear, b.LowerLinear)
	set(&D.UpperLinear, b.UpperLinear)
	C.log.Debug("chi2 turned by 180", zap.String("atom", atoms[3].String()))
}

// Distance restraint kinds.
const (
	SimpleDist = "simple"
	AmbiDist   = "ambi"
	HBondDist  = "hbond"
)

func polar(sym string) bool {
	return sym == "N" || sym == "O" || sym == "F"
}

func (C *Context) atomSymbol(a Atom) string {
	site, _ := C.model.Site(a.Res())
	return C.symbolOf(site, a.CompID, a.AtomID)
}

// DistType classifies a distance restraint between the two sides.
func (C *Context) DistType(ctype string, a, b []Atom, upper Val) string {
	if ctype == "hydrogen bond" {
		return HBondDist
	}
	if len(a) == 1 && len(b) == 1 && a[0].Res() != b[0].Res() &&
		polar(C.atomSymbol(a[0])) && polar(C.atomSymbol(b[0])) && upper.Set && upper.V <= HBondDAMax {
		return HBondDist
	}
	if C.stat.IsAmbiguous(sites(a)) || C.stat.IsAmbiguous(sites(b)) {
		return AmbiDist
	}
	return SimpleDist
}

// hbondProblem checks the chemistry of a hydrogen bond triple. It returns
// the reason the triple is not a hydrogen bond, or "".
func (C *Context) hbondProblem(d, h, a Atom) string {
	switch {
	case !polar(C.atomSymbol(d)):
		return fmt.Sprintf("The donor atom %s is not a nitrogen, oxygen or fluorine atom.", d)
	case !polar(C.atomSymbol(a)):
		return fmt.Sprintf("The acceptor atom %s is not a nitrogen, oxygen or fluorine atom.", a)
	case C.atomSymbol(h) != "H":
		return fmt.Sprintf("The atom %s is not a proton.", h)
	case d.Res() != h.Res():
		return fmt.Sprintf("The donor %s and the hydrogen %s are in different residues.", d, h)
	case !C.dict.HasBond(C.dict.RealCompID(d.CompID, false), d.AtomID, h.AtomID):
		return fmt.Sprintf("The donor %s and the hydrogen %s are not covalently bonded.", d, h)
	}
	return ""
}

// hbondGeometry warns when the coordinates do not look like a hydrogen bond.
func (C *Context) hbondGeometry(d, h, a Atom) {
	if dist, ok := C.model.DistanceOf(h.Key(), a.Key()); ok && dist > HBondHAMax {
		C.fatal(RangeWarning, "The distance %s-%s is %.3f in the coordinates, longer than %s.", h, a, dist, fnum(HBondHAMax))
	}
	if dist, ok := C.model.DistanceOf(d.Key(), a.Key()); ok && dist > HBondDAMax {
		C.fatal(RangeWarning, "The distance %s-%s is %.3f in the coordinates, longer than %s.", d, a, dist, fnum(HBondDAMax))
	}
}
