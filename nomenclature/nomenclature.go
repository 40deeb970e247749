/*
 * nomenclature.go, part of mrchem.
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

// Package nomenclature translates the atom names found in restraint files
// (XPLOR/CNS pseudo atoms and wildcards, IUPAC and old PDB conventions) to the
// atom names of the chemical component dictionary.
package nomenclature

import (
	"regexp"
	"slices"
	"strings"
	"unicode"

	"github.com/rmera/mrchem/ccd"
)

// Ambiguity codes, as in NMR-STAR.
const (
	Unknown      = 0
	Unique       = 1
	Geminal      = 2
	AromaticRing = 3
	IntraResidue = 4
)

// Translator is safe for concurrent use if the dictionary is.
type Translator struct {
	dict *ccd.Dict
}

// New returns a translator over the given dictionary.
func New(d *ccd.Dict) *Translator {
	return &Translator{dict: d}
}

// Dict returns the underlying dictionary.
func (T *Translator) Dict() *ccd.Dict {
	return T.dict
}

// ValidStarAtom returns the dictionary atom names of compID that atomID
// stands for. If nothing matches and leaveUnmatched is true, the upper-cased
// input is returned; otherwise the result is empty.
func (T *Translator) ValidStarAtom(compID, atomID string, leaveUnmatched bool) []string {
	ret, _, _ := T.ValidStarAtomXplor(compID, atomID, leaveUnmatched)
	return ret
}

// ValidStarAtomXplor is ValidStarAtom tolerant to XPLOR/CNS conventions. It also
// returns the ambiguity code of the set and, when the name was translated, a
// human readable note of the translation.
func (T *Translator) ValidStarAtomXplor(compID, atomID string, leaveUnmatched bool) ([]string, int, string) {
	atom := strings.ToUpper(strings.TrimSpace(atomID))
	comp, err := T.dict.Comp(compID)
	if err != nil || atom == "" {
		if leaveUnmatched && atom != "" {
			return []string{atom}, Unknown, "unknown component " + compID
		}
		return nil, Unknown, ""
	}
	if comp.Has(atom) {
		return []string{atom}, ambiguity(comp, []string{atom}), ""
	}
	if a, ok := alias(comp, atom); ok {
		return []string{a}, ambiguity(comp, []string{a}), atom + " -> " + a
	}
	if ret := pseudo(comp, atom); len(ret) > 0 {
		return ret, ambiguity(comp, ret), atom + " -> " + strings.Join(ret, ",")
	}
	if ret := wildcard(comp, atom); len(ret) > 0 {
		return ret, ambiguity(comp, ret), atom + " -> " + strings.Join(ret, ",")
	}
	if leaveUnmatched {
		return []string{atom}, Unknown, "unmatched " + atom
	}
	return nil, Unknown, ""
}

var fixedAliases = map[string]string{
	"HN": "H", "OT1": "O", "OT2": "OXT", "O1": "O", "O2": "OXT", "HT1": "H", "HT2": "H2",
}

var nucleotideAliases = map[string]string{
	"H5'1": "H5'", "H5'2": "H5''", "H2'1": "H2'", "H2'2": "H2''", "HO'2": "HO2'", "HO'3": "HO3'",
	"H3T": "HO3'", "H5T": "HO5'", "O1P": "OP1", "O2P": "OP2", "O3P": "OP3",
	"C5M": "C7", "H51": "H71", "H52": "H72", "H53": "H73", "C5A": "C7",
}

// alias handles renamed atoms, primes written as '*' and PDB version 2 names
// with a leading digit.
func alias(comp *ccd.Comp, atom string) (string, bool) {
	if comp.IsNucleotide() {
		if a, ok := nucleotideAliases[atom]; ok && comp.Has(a) {
			return a, true
		}
		if strings.Contains(atom, "*") && !strings.Contains(atom, "'") {
			primed := strings.ReplaceAll(atom, "*", "'")
			if comp.Has(primed) {
				return primed, true
			}
		}
	}
	if a, ok := fixedAliases[atom]; ok && comp.Has(a) && comp.IsPeptide() {
		return a, true
	}
	if len(atom) > 1 && unicode.IsDigit(rune(atom[0])) {
		v2 := atom[1:] + atom[:1]
		if comp.Has(v2) {
			return v2, true
		}
	}
	//XPLOR numbers methylene protons 1,2 where the dictionary uses 2,3
	if n := len(atom); n > 1 && atom[n-1] == '1' && atom[0] == 'H' {
		base := atom[:n-1]
		if comp.Has(base+"2") && comp.Has(base+"3") && !comp.Has(base+"1") {
			return base + "3", true
		}
	}
	return "", false
}

func protonsWithPrefix(comp *ccd.Comp, prefix string) []string {
	var ret []string
	for _, a := range comp.Atoms {
		if a.TypeSymbol == "H" && strings.HasPrefix(a.ID, prefix) {
			ret = append(ret, a.ID)
		}
	}
	return ret
}

// ringProtons are the protons named by the QR pseudo atom.
func ringProtons(comp *ccd.Comp) []string {
	var ret []string
	for _, a := range comp.Atoms {
		if a.TypeSymbol != "H" {
			continue
		}
		for _, heavy := range comp.BondedAtoms(a.ID) {
			if slices.Contains([]string{"CD1", "CD2", "CE1", "CE2", "CZ"}, heavy) {
				ret = append(ret, a.ID)
			}
		}
	}
	return ret
}

// pseudo expands Q (any equivalent protons), QQ (two groups) and M (methyl)
// pseudo atoms, and methylene protons named without their number.
func pseudo(comp *ccd.Comp, atom string) []string {
	switch {
	case strings.HasPrefix(atom, "H") && comp.Has(atom+"2") && comp.Has(atom+"3") && !comp.Has(atom+"1"):
		return []string{atom + "2", atom + "3"}
	case atom == "QR" && (comp.ID == "PHE" || comp.ID == "TYR"):
		return ringProtons(comp)
	case strings.HasPrefix(atom, "QQ") && len(atom) > 2:
		return protonsWithPrefix(comp, "H"+atom[2:])
	case strings.HasPrefix(atom, "Q") && len(atom) > 1:
		return protonsWithPrefix(comp, "H"+atom[1:])
	case strings.HasPrefix(atom, "M") && len(atom) > 1:
		cands := protonsWithPrefix(comp, "H"+atom[1:])
		groups := make(map[string][]string)
		var order []string
		for _, h := range cands {
			b := comp.BondedAtoms(h)
			if len(b) != 1 || comp.Symbol(b[0]) != "C" {
				continue
			}
			if _, ok := groups[b[0]]; !ok {
				order = append(order, b[0])
			}
			groups[b[0]] = append(groups[b[0]], h)
		}
		var methyls [][]string
		for _, c := range order {
			if len(groups[c]) == 3 {
				methyls = append(methyls, groups[c])
			}
		}
		if len(methyls) == 1 {
			return methyls[0]
		}
	}
	return nil
}

// wildcard expands XPLOR wildcards: '*' and '%' for any characters, '#' for
// digits and '+' for one digit. For nucleotides a candidate is accepted only if
// its prime state agrees with the pattern, unless no candidate agrees.
func wildcard(comp *ccd.Comp, atom string) []string {
	if !strings.ContainsAny(atom, "*%#+") {
		return nil
	}
	var sb strings.Builder
	sb.WriteString("^")
	for _, r := range atom {
		switch r {
		case '*', '%':
			sb.WriteString(".*")
		case '#':
			sb.WriteString("[0-9]*")
		case '+':
			sb.WriteString("[0-9]")
		default:
			sb.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	sb.WriteString("$")
	re, err := regexp.Compile(sb.String())
	if err != nil {
		return nil
	}
	var all, agree []string
	primed := strings.Contains(atom, "'")
	for _, a := range comp.AtomIDs() {
		if !re.MatchString(a) {
			continue
		}
		all = append(all, a)
		if strings.Contains(a, "'") == primed {
			agree = append(agree, a)
		}
	}
	if comp.IsNucleotide() && len(agree) > 0 {
		return agree
	}
	return all
}

// ambiguity returns the NMR-STAR ambiguity code for a set of atoms of one residue.
func ambiguity(comp *ccd.Comp, atoms []string) int {
	if len(atoms) == 1 {
		return Unique
	}
	var parents []string
	for _, a := range atoms {
		p := a
		if b := comp.BondedAtoms(a); comp.Symbol(a) == "H" && len(b) == 1 {
			p = b[0]
		}
		if !slices.Contains(parents, p) {
			parents = append(parents, p)
		}
	}
	if len(parents) == 1 {
		return Geminal
	}
	if comp.ID == "PHE" || comp.ID == "TYR" {
		ring := ringProtons(comp)
		if !slices.ContainsFunc(atoms, func(a string) bool { return !slices.Contains(ring, a) }) {
			return AromaticRing
		}
	}
	//isopropyl methyls (LEU CD1/CD2, VAL CG1/CG2)
	if len(parents) == 2 && comp.Symbol(parents[0]) == "C" && len(comp.Protons(parents[0])) == len(comp.Protons(parents[1])) {
		n0, n1 := comp.BondedAtoms(parents[0]), comp.BondedAtoms(parents[1])
		for _, n := range n0 {
			if comp.Symbol(n) == "C" && slices.Contains(n1, n) {
				return Geminal
			}
		}
	}
	return IntraResidue
}
