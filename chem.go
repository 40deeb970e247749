/*
 * chem.go, part of mrchem.
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

import (
	"fmt"
	"slices"
	"sort"
	"sync"

	"gonum.org/v1/gonum/spatial/r3"

	v3 "github.com/rmera/mrchem/v3"
)

// BrokenSeqID marks a residue with no author sequence number.
const BrokenSeqID = -9999

// ResKey identifies a residue by chain and sequence number. Unless otherwise
// stated, both are in the author (auth) scheme.
type ResKey struct {
	Chain string
	Seq   int
}

func (K ResKey) String() string {
	return fmt.Sprintf("%s:%d", K.Chain, K.Seq)
}

// AtomKey identifies an atom by chain, sequence number and atom name.
type AtomKey struct {
	Chain string
	Seq   int
	Atom  string
}

func (K AtomKey) String() string {
	return fmt.Sprintf("%s:%d:%s", K.Chain, K.Seq, K.Atom)
}

// Res returns the residue key of the atom.
func (K AtomKey) Res() ResKey {
	return ResKey{K.Chain, K.Seq}
}

// ChainKind tells apart polymers, non-polymers and branched entities.
type ChainKind int

const (
	Polymer ChainKind = iota
	NonPolymer
	Branched
)

func (k ChainKind) String() string {
	switch k {
	case Polymer:
		return "polymer"
	case NonPolymer:
		return "non-polymer"
	case Branched:
		return "branched"
	}
	return "unknown"
}

// Chain is a polymer chain, a non-polymer molecule or a branched entity.
// All the slices with a per-residue meaning have the same length.
// AuthSeqIDs may contain BrokenSeqID for residues without author numbering.
type Chain struct {
	Kind              ChainKind
	AuthChainID       string
	LabelAsymID       string
	EntityID          int
	EntityType        string //e.g. polypeptide(L), polyribonucleotide
	AuthSeqIDs        []int
	SeqIDs            []int
	CompIDs           []string
	AuthCompIDs       []string
	AltCompIDs        []string //optional
	InsCodes          []string //optional
	AltAuthSeqIDs     []int    //optional, non-polymers
	GapInAuthSeq      bool
	IdenticalChainIDs []string
	Cyclic            bool
}

// Len returns the number of residues in the chain.
func (C *Chain) Len() int {
	return len(C.SeqIDs)
}

// IndexOfAuth returns the index of the residue with the given author number, or -1.
func (C *Chain) IndexOfAuth(seq int) int {
	return slices.Index(C.AuthSeqIDs, seq)
}

// IndexOfLabel returns the index of the residue with the given label number, or -1.
func (C *Chain) IndexOfLabel(seq int) int {
	return slices.Index(C.SeqIDs, seq)
}

// AuthRange returns the smallest and largest author sequence numbers.
func (C *Chain) AuthRange() (int, int) {
	first, last := BrokenSeqID, BrokenSeqID
	for _, s := range C.AuthSeqIDs {
		if s == BrokenSeqID {
			continue
		}
		if first == BrokenSeqID || s < first {
			first = s
		}
		if last == BrokenSeqID || s > last {
			last = s
		}
	}
	return first, last
}

func (C *Chain) check() error {
	n := len(C.SeqIDs)
	if len(C.AuthSeqIDs) != n || len(C.CompIDs) != n || len(C.AuthCompIDs) != n {
		return NewError(fmt.Sprintf("chain %s: parallel lists of different length", C.AuthChainID), "check")
	}
	if (C.AltCompIDs != nil && len(C.AltCompIDs) != n) || (C.InsCodes != nil && len(C.InsCodes) != n) {
		return NewError(fmt.Sprintf("chain %s: optional lists of different length", C.AuthChainID), "check")
	}
	return nil
}

// AtomSite holds the atoms of one residue as found in the coordinates of the
// representative model. Parallel slices share indexes.
type AtomSite struct {
	CompID      string
	AtomIDs     []string
	TypeSymbols []string
	AltAtomIDs  []string //optional, auth_atom_id where it differs
	AltCompIDs  []string //optional
	rows        []int    //rows in Model.Coords
}

// Has reports whether the site contains the atom.
func (A *AtomSite) Has(atom string) bool {
	return slices.Contains(A.AtomIDs, atom)
}

// Symbol returns the element of the atom, or "" if absent.
func (A *AtomSite) Symbol(atom string) string {
	i := slices.Index(A.AtomIDs, atom)
	if i < 0 {
		return ""
	}
	return A.TypeSymbols[i]
}

// UnobsAtoms are the atoms of a residue listed as unobserved.
type UnobsAtoms struct {
	CompID  string
	AtomIDs []string
}

// StarSeq is the NMR-STAR numbering of a residue.
type StarSeq struct {
	EntityAssemblyID int
	SeqID            int
	EntityID         int
	IsPoly           bool
}

// OrigSeq is the numbering of a residue in the original (pdb_*) scheme.
type OrigSeq struct {
	Chain  string
	Seq    int
	CompID string
}

// SeqMaps maps residues among numbering schemes. Label keys use the author
// chain id and the label seq_id.
type SeqMaps struct {
	AuthToLabel   map[ResKey]ResKey
	LabelToAuth   map[ResKey]ResKey
	AuthToStar    map[ResKey]StarSeq
	AuthToOrig    map[ResKey]OrigSeq
	AuthToInsCode map[ResKey]string
}

func newSeqMaps() SeqMaps {
	return SeqMaps{
		AuthToLabel:   make(map[ResKey]ResKey),
		LabelToAuth:   make(map[ResKey]ResKey),
		AuthToStar:    make(map[ResKey]StarSeq),
		AuthToOrig:    make(map[ResKey]OrigSeq),
		AuthToInsCode: make(map[ResKey]string),
	}
}

// Link is a covalent connection between two atoms from struct_conn.
type Link struct {
	A, B AtomKey
	Type string
}

// Model is the read-only residue and atom index of a coordinate file, for
// the representative model and alternate location.
type Model struct {
	Polymers              []*Chain
	NonPolymers           []*Chain
	Branched              []*Chain
	Sites                 map[ResKey]*AtomSite
	UnobsRes              map[ResKey]bool
	UnobsAtoms            map[ResKey]UnobsAtoms
	Seq                   SeqMaps
	Links                 []Link
	Coords                *v3.Matrix
	RepresentativeModelID int
	RepresentativeAltID   string
	universe              []AtomKey
	universeOnce          sync.Once
}

// NewModel returns an empty model.
func NewModel() *Model {
	return &Model{
		Sites:      make(map[ResKey]*AtomSite),
		UnobsRes:   make(map[ResKey]bool),
		UnobsAtoms: make(map[ResKey]UnobsAtoms),
		Seq:        newSeqMaps(),
	}
}

// PolymerChain returns the polymer with the given author chain id, or nil.
func (M *Model) PolymerChain(id string) *Chain {
	for _, c := range M.Polymers {
		if c.AuthChainID == id {
			return c
		}
	}
	return nil
}

// NonPolymersOf returns the non-polymer molecules in the given author chain.
func (M *Model) NonPolymersOf(id string) []*Chain {
	var ret []*Chain
	for _, c := range M.NonPolymers {
		if c.AuthChainID == id {
			ret = append(ret, c)
		}
	}
	return ret
}

// BranchedOf returns the branched entities in the given author chain.
func (M *Model) BranchedOf(id string) []*Chain {
	var ret []*Chain
	for _, c := range M.Branched {
		if c.AuthChainID == id {
			ret = append(ret, c)
		}
	}
	return ret
}

// ChainIDs returns the author chain ids, polymers first, without repetitions.
func (M *Model) ChainIDs() []string {
	var ret []string
	for _, set := range [][]*Chain{M.Polymers, M.Branched, M.NonPolymers} {
		for _, c := range set {
			if !slices.Contains(ret, c.AuthChainID) {
				ret = append(ret, c.AuthChainID)
			}
		}
	}
	return ret
}

// HasChain reports whether the author chain id exists in the model.
func (M *Model) HasChain(id string) bool {
	return slices.Contains(M.ChainIDs(), id)
}

// NumChains returns the number of distinct author chain ids.
func (M *Model) NumChains() int {
	return len(M.ChainIDs())
}

// Site returns the atom site of a residue.
func (M *Model) Site(k ResKey) (*AtomSite, bool) {
	s, ok := M.Sites[k]
	return s, ok
}

// CompOf returns the residue name at k, looking first at the atom sites and
// then at the sequences. The boolean is false if the residue is unknown.
func (M *Model) CompOf(k ResKey) (string, bool) {
	if s, ok := M.Sites[k]; ok {
		return s.CompID, true
	}
	for _, set := range [][]*Chain{M.Polymers, M.Branched, M.NonPolymers} {
		for _, c := range set {
			if c.AuthChainID != k.Chain {
				continue
			}
			if i := c.IndexOfAuth(k.Seq); i >= 0 {
				return c.CompIDs[i], true
			}
		}
	}
	return "", false
}

// IsPolymerResidue reports whether k belongs to a polymer chain.
func (M *Model) IsPolymerResidue(k ResKey) bool {
	c := M.PolymerChain(k.Chain)
	return c != nil && c.IndexOfAuth(k.Seq) >= 0
}

// Coord returns the position of an atom of the representative model.
func (M *Model) Coord(k AtomKey) (r3.Vec, bool) {
	s, ok := M.Sites[k.Res()]
	if !ok || M.Coords == nil {
		return r3.Vec{}, false
	}
	i := slices.Index(s.AtomIDs, k.Atom)
	if i < 0 || i >= len(s.rows) || s.rows[i] < 0 {
		return r3.Vec{}, false
	}
	return M.Coords.Vec(s.rows[i]), true
}

// Universe returns every atom of the representative model, sorted by
// chain, sequence number and atom name. The slice must not be modified.
func (M *Model) Universe() []AtomKey {
	M.universeOnce.Do(func() {
		ret := make([]AtomKey, 0, len(M.Sites)*10)
		for k, s := range M.Sites {
			for _, a := range s.AtomIDs {
				ret = append(ret, AtomKey{k.Chain, k.Seq, a})
			}
		}
		sort.Slice(ret, func(i, j int) bool { return LessAtomKey(ret[i], ret[j]) })
		M.universe = ret
	})
	return M.universe
}

// LessAtomKey orders atoms by chain, sequence number and atom name.
func LessAtomKey(a, b AtomKey) bool {
	if a.Chain != b.Chain {
		return a.Chain < b.Chain
	}
	if a.Seq != b.Seq {
		return a.Seq < b.Seq
	}
	return a.Atom < b.Atom
}
