/*
 * ccd.go, part of mrchem.
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

// Package ccd is a chemical component dictionary: the atoms and bonds of each
// residue type. The standard amino acids and nucleotides are built in, along
// with water, N-acetylglucosamine and the common metal ions. Other
// components are read from CCD mmCIF files.
package ccd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	chem "github.com/rmera/mrchem"
	"github.com/rmera/mrchem/chemgraph"
)

const (
	peptideLinking = "L-PEPTIDE LINKING"
	dnaLinking     = "DNA LINKING"
	rnaLinking     = "RNA LINKING"
	nonPolymer     = "NON-POLYMER"
)

// ErrUnknownComp is returned (wrapped) for components absent from the dictionary.
var ErrUnknownComp = errors.New("unknown chemical component")

// Atom is one atom of a chemical component.
type Atom struct {
	ID         string
	TypeSymbol string
	Leaving    bool
	Aromatic   bool
}

// Comp is a chemical component.
type Comp struct {
	ID        string
	Name      string
	Type      string
	OneLetter string
	Parent    string //standard parent of a modified residue, if any
	Atoms     []Atom
	Bonds     [][2]string
	once      sync.Once
	graph     *chemgraph.Topology
}

// AtomIDs returns the atom names of the component.
func (C *Comp) AtomIDs() []string {
	ret := make([]string, len(C.Atoms))
	for i, a := range C.Atoms {
		ret[i] = a.ID
	}
	return ret
}

// Has reports whether the component contains the atom.
func (C *Comp) Has(atom string) bool {
	return slices.ContainsFunc(C.Atoms, func(a Atom) bool { return a.ID == atom })
}

// Symbol returns the element of an atom, or "".
func (C *Comp) Symbol(atom string) string {
	for _, a := range C.Atoms {
		if a.ID == atom {
			return a.TypeSymbol
		}
	}
	return ""
}

// Graph returns the bond graph of the component.
func (C *Comp) Graph() *chemgraph.Topology {
	C.once.Do(func() {
		syms := make([]string, len(C.Atoms))
		for i, a := range C.Atoms {
			syms[i] = a.TypeSymbol
		}
		g, err := chemgraph.NewTopology(C.AtomIDs(), syms, C.Bonds)
		if err != nil {
			//a component with broken bonds gets a graph without bonds.
			g, _ = chemgraph.NewTopology(C.AtomIDs(), syms, nil)
		}
		C.graph = g
	})
	return C.graph
}

// HasBond reports whether atoms a and b are bonded.
func (C *Comp) HasBond(a, b string) bool {
	return C.Graph().HasBond(a, b)
}

// BondedAtoms returns the atoms bonded to a.
func (C *Comp) BondedAtoms(a string) []string {
	return C.Graph().Bonded(a)
}

// Protons returns the hydrogens bonded to the heavy atom a.
func (C *Comp) Protons(a string) []string {
	return C.Graph().BondedOfSymbol(a, "H")
}

// IsPeptide reports whether the component is an amino acid.
func (C *Comp) IsPeptide() bool {
	return strings.Contains(C.Type, "PEPTIDE")
}

// IsNucleotide reports whether the component is a DNA or RNA nucleotide.
func (C *Comp) IsNucleotide() bool {
	return strings.Contains(C.Type, "DNA") || strings.Contains(C.Type, "RNA")
}

// IsCarbohydrate reports whether the component is a sugar.
func (C *Comp) IsCarbohydrate() bool {
	return strings.Contains(C.Type, "SACCHARIDE")
}

// Dict is the dictionary. It is safe for concurrent use, so several
// interpretation contexts can share one.
type Dict struct {
	mu      sync.RWMutex
	comps   map[string]*Comp
	missing map[string]bool
	paths   []string
}

// New returns a dictionary that, besides the built-in components, looks for
// <ID>.cif, <ID>.cif.gz or <ID>.cif.zst files in the given directories.
func New(paths ...string) *Dict {
	return &Dict{comps: make(map[string]*Comp), missing: make(map[string]bool), paths: paths}
}

// Add puts a component in the dictionary, replacing any previous one with the same ID.
func (D *Dict) Add(c *Comp) {
	D.mu.Lock()
	defer D.mu.Unlock()
	D.comps[c.ID] = c
	delete(D.missing, c.ID)
}

// Comp returns the component with the given ID, loading it if needed.
func (D *Dict) Comp(id string) (*Comp, error) {
	id = strings.ToUpper(strings.TrimSpace(id))
	D.mu.RLock()
	c, ok := D.comps[id]
	miss := D.missing[id]
	D.mu.RUnlock()
	if ok {
		return c, nil
	}
	if miss {
		return nil, fmt.Errorf("ccd: %s: %w", id, ErrUnknownComp)
	}
	c, err := D.load(id)
	D.mu.Lock()
	defer D.mu.Unlock()
	if err != nil {
		D.missing[id] = true
		return nil, err
	}
	if prev, ok := D.comps[id]; ok {
		return prev, nil
	}
	D.comps[id] = c
	return c, nil
}

func (D *Dict) load(id string) (*Comp, error) {
	if c, ok := builtinComp(id); ok {
		return c, nil
	}
	for _, dir := range D.paths {
		for _, ext := range []string{".cif", ".cif.gz", ".cif.zst"} {
			name := filepath.Join(dir, id+ext)
			if _, err := os.Stat(name); err != nil {
				continue
			}
			c, err := ReadFile(name)
			if err != nil {
				return nil, fmt.Errorf("ccd: loading %s: %w", id, err)
			}
			return c, nil
		}
	}
	return nil, fmt.Errorf("ccd: %s: %w", id, ErrUnknownComp)
}

// Known reports whether the component can be found.
func (D *Dict) Known(id string) bool {
	_, err := D.Comp(id)
	return err == nil
}

// AtomIDs returns the atom names of a component, nil if unknown.
func (D *Dict) AtomIDs(id string) []string {
	c, err := D.Comp(id)
	if err != nil {
		return nil
	}
	return c.AtomIDs()
}

// HasBond reports whether atoms a and b of the component are bonded.
func (D *Dict) HasBond(id, a, b string) bool {
	c, err := D.Comp(id)
	if err != nil {
		return false
	}
	return c.HasBond(a, b)
}

// BondedAtoms returns the atoms bonded to a in the component.
func (D *Dict) BondedAtoms(id, a string) []string {
	c, err := D.Comp(id)
	if err != nil {
		return nil
	}
	return c.BondedAtoms(a)
}

// Symbol returns the element of an atom of a component, or "".
func (D *Dict) Symbol(id, atom string) string {
	c, err := D.Comp(id)
	if err != nil {
		return ""
	}
	return c.Symbol(atom)
}

// aliases are residue names used by force fields and NMR programs for
// protonation states or old nucleotide names.
var aliases = map[string]string{
	"HSD": "HIS", "HSE": "HIS", "HSP": "HIS", "HID": "HIS", "HIE": "HIS", "HIP": "HIS", "HISH": "HIS", "HISD": "HIS", "HISE": "HIS",
	"CYX": "CYS", "CYM": "CYS", "CYSS": "CYS", "ASH": "ASP", "GLH": "GLU", "LYN": "LYS", "LYP": "LYS",
	"ADE": "DA", "CYT": "DC", "GUA": "DG", "THY": "DT",
	"RADE": "A", "RCYT": "C", "RGUA": "G", "URA": "U", "URI": "U",
	"WAT": "HOH", "TIP3": "HOH", "H2O": "HOH",
}

// RealCompID translates a residue name to the standard one. Modified
// residues are translated to their parent only if parent is true.
func (D *Dict) RealCompID(id string, parent bool) string {
	id = strings.ToUpper(strings.TrimSpace(id))
	if a, ok := aliases[id]; ok {
		return a
	}
	if parent {
		if c, err := D.Comp(id); err == nil && c.Parent != "" {
			return c.Parent
		}
	}
	return id
}

// ReadFile reads a component from a CCD mmCIF file (first data block).
func ReadFile(name string) (*Comp, error) {
	s, err := chem.PDBxFileRead(name)
	if err != nil {
		return nil, err
	}
	return FromStore(s)
}

// FromStore builds a component from the chem_comp, chem_comp_atom and
// chem_comp_bond categories.
func FromStore(r chem.CoordReader) (*Comp, error) {
	cc, err := r.GetDictList("chem_comp")
	if err != nil || len(cc) == 0 {
		return nil, fmt.Errorf("ccd: no chem_comp: %w", err)
	}
	c := &Comp{ID: strings.ToUpper(cc[0]["id"]), Name: cc[0]["name"], Type: strings.ToUpper(cc[0]["type"])}
	if p := cc[0]["mon_nstd_parent_comp_id"]; !chem.IsNull(p) {
		c.Parent = strings.ToUpper(strings.Split(p, ",")[0])
	}
	if o := cc[0]["one_letter_code"]; !chem.IsNull(o) {
		c.OneLetter = o
	}
	atoms, err := r.GetDictList("chem_comp_atom")
	if err != nil {
		return nil, fmt.Errorf("ccd: %s: %w", c.ID, err)
	}
	for _, a := range atoms {
		c.Atoms = append(c.Atoms, Atom{
			ID:         a["atom_id"],
			TypeSymbol: normSymbol(a["type_symbol"]),
			Leaving:    a["pdbx_leaving_atom_flag"] == "Y",
			Aromatic:   a["pdbx_aromatic_flag"] == "Y",
		})
	}
	if r.HasCategory("chem_comp_bond") {
		bonds, err := r.GetDictList("chem_comp_bond")
		if err != nil {
			return nil, fmt.Errorf("ccd: %s: %w", c.ID, err)
		}
		for _, b := range bonds {
			c.Bonds = append(c.Bonds, [2]string{b["atom_id_1"], b["atom_id_2"]})
		}
	}
	return c, nil
}

func normSymbol(s string) string {
	if len(s) < 2 {
		return strings.ToUpper(s)
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}
