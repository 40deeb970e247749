// Package chemstat answers topological questions about residues: their type,
// which atoms belong to the backbone, side chain or methyl groups, and whether
// a set of atoms is ambiguous.
package chemstat

import (
	"slices"
	"strings"

	"github.com/rmera/mrchem/ccd"
)

// ResidueType is the kind of polymer a residue belongs to.
type ResidueType int

const (
	Other ResidueType = iota
	Peptide
	DNA
	RNA
	Carbohydrate
)

func (R ResidueType) String() string {
	return [...]string{"other", "peptide", "dna", "rna", "carbohydrate"}[R]
}

// Stat is the statistics provider. It only reads the dictionary.
type Stat struct {
	dict *ccd.Dict
}

// New returns a Stat over the given dictionary.
func New(d *ccd.Dict) *Stat {
	return &Stat{dict: d}
}

// TypeOfResidue returns the polymer type of a component.
func (S *Stat) TypeOfResidue(compID string) ResidueType {
	c, err := S.dict.Comp(compID)
	if err != nil {
		return Other
	}
	switch {
	case c.IsPeptide():
		return Peptide
	case strings.Contains(c.Type, "DNA"):
		return DNA
	case strings.Contains(c.Type, "RNA"):
		return RNA
	case c.IsCarbohydrate():
		return Carbohydrate
	}
	return Other
}

var peptideBackbone = []string{"N", "CA", "C", "O", "OXT", "H", "H2", "H3", "HXT", "HA", "HA2", "HA3"}

var nucleotideBackbone = []string{"P", "OP1", "OP2", "OP3", "O5'", "C5'", "C4'", "O4'", "C3'", "O3'", "C2'", "O2'", "C1'",
	"H5'", "H5''", "H4'", "H3'", "H2'", "H2''", "HO2'", "H1'", "HO3'", "HO5'", "HOP2", "HOP3"}

// BackboneAtoms returns the backbone atoms of a component, in dictionary order.
func (S *Stat) BackboneAtoms(compID string) []string {
	c, err := S.dict.Comp(compID)
	if err != nil {
		return nil
	}
	var bb []string
	switch S.TypeOfResidue(compID) {
	case Peptide:
		bb = peptideBackbone
	case DNA, RNA:
		bb = nucleotideBackbone
	default:
		return nil
	}
	var ret []string
	for _, a := range c.AtomIDs() {
		if slices.Contains(bb, a) {
			ret = append(ret, a)
		}
	}
	return ret
}

// SideChainAtoms returns the atoms of a component not in its backbone.
// Leaving atoms are excluded.
func (S *Stat) SideChainAtoms(compID string) []string {
	c, err := S.dict.Comp(compID)
	if err != nil {
		return nil
	}
	bb := S.BackboneAtoms(compID)
	var ret []string
	for _, a := range c.Atoms {
		if a.Leaving || slices.Contains(bb, a.ID) {
			continue
		}
		ret = append(ret, a.ID)
	}
	return ret
}

// MethylAtoms returns the carbon of each methyl group of a component
// and its three protons, in dictionary order.
func (S *Stat) MethylAtoms(compID string) map[string][]string {
	c, err := S.dict.Comp(compID)
	if err != nil {
		return nil
	}
	ret := make(map[string][]string)
	for _, a := range c.Atoms {
		if a.TypeSymbol != "C" {
			continue
		}
		if hs := c.Protons(a.ID); len(hs) == 3 {
			ret[a.ID] = hs
		}
	}
	return ret
}

// CentroidAtoms returns the heavy atoms whose centroid represents the side
// chain: the ring for aromatic residues, otherwise all side chain heavy atoms.
func (S *Stat) CentroidAtoms(compID string) []string {
	c, err := S.dict.Comp(compID)
	if err != nil {
		return nil
	}
	var ring []string
	switch c.ID {
	case "PHE", "TYR":
		ring = []string{"CG", "CD1", "CD2", "CE1", "CE2", "CZ"}
	case "TRP":
		ring = []string{"CG", "CD1", "CD2", "NE1", "CE2", "CE3", "CZ2", "CZ3", "CH2"}
	case "HIS":
		ring = []string{"CG", "ND1", "CD2", "CE1", "NE2"}
	}
	if ring != nil {
		return ring
	}
	var ret []string
	for _, a := range S.SideChainAtoms(compID) {
		if c.Symbol(a) != "H" {
			ret = append(ret, a)
		}
	}
	return ret
}

// Group returns the name of the equivalence group of an atom: the heavy atom
// for protons of methyl or amino (NH3) groups, the atom itself otherwise.
func (S *Stat) Group(compID, atom string) string {
	c, err := S.dict.Comp(compID)
	if err != nil || c.Symbol(atom) != "H" {
		return atom
	}
	b := c.BondedAtoms(atom)
	if len(b) != 1 {
		return atom
	}
	if len(c.Protons(b[0])) == 3 {
		return b[0]
	}
	return atom
}

// Site is an atom of a residue in a model.
type Site struct {
	Chain  string
	Seq    int
	CompID string
	AtomID string
}

// IsAmbiguous reports whether a set of atoms stands for more than one
// distinguishable atom: it spans several residues, or its atoms belong to
// more than one equivalence group.
func (S *Stat) IsAmbiguous(sites []Site) bool {
	if len(sites) < 2 {
		return false
	}
	first := sites[0]
	group := S.Group(first.CompID, first.AtomID)
	for _, s := range sites[1:] {
		if s.Chain != first.Chain || s.Seq != first.Seq {
			return true
		}
		if S.Group(s.CompID, s.AtomID) != group {
			return true
		}
	}
	return false
}
