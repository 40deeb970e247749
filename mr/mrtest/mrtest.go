// Package mrtest builds small coordinate models for the tests of the
// restraint packages.
package mrtest

import (
	"math"
	"slices"
	"strconv"
	"testing"

	chem "github.com/rmera/mrchem"
	"github.com/rmera/mrchem/ccd"
)

// Chain describes one molecule of a test model. Residues are numbered from
// 1 in the label scheme and from AuthStart in the author scheme.
type Chain struct {
	ID         string //author chain id
	Asym       string //label asym id
	Entity     int
	Comps      []string
	AuthStart  int
	NonPoly    bool
	NoH        bool //leave the hydrogens out of the coordinates
	EntityType string
	Branched   bool
	Cyclic     bool             //link the last residue to the first
	Missing    []int            //label numbers of residues without coordinates
	Unobserved map[int][]string //atoms without coordinates, per label number
}

var one2three = map[rune]string{
	'A': "ALA", 'R': "ARG", 'N': "ASN", 'D': "ASP", 'C': "CYS", 'Q': "GLN", 'E': "GLU", 'G': "GLY", 'H': "HIS", 'I': "ILE",
	'L': "LEU", 'K': "LYS", 'M': "MET", 'F': "PHE", 'P': "PRO", 'S': "SER", 'T': "THR", 'W': "TRP", 'Y': "TYR", 'V': "VAL",
}

// Three returns the residue names of a one-letter protein sequence.
func Three(s string) []string {
	ret := make([]string, 0, len(s))
	for _, r := range s {
		ret = append(ret, one2three[r])
	}
	return ret
}

// Protein returns a protein chain.
func Protein(id, asym string, entity, authStart int, seq string) Chain {
	return Chain{ID: id, Asym: asym, Entity: entity, Comps: Three(seq), AuthStart: authStart, EntityType: "polypeptide(L)"}
}

// Ion returns a single ion bound to the chain id.
func Ion(id, asym string, entity, auth int, comp string) Chain {
	return Chain{ID: id, Asym: asym, Entity: entity, Comps: []string{comp}, AuthStart: auth, NonPoly: true}
}

// Sugar returns a branched entity of NAG residues.
func Sugar(id, asym string, entity, authStart, n int) Chain {
	c := Chain{ID: id, Asym: asym, Entity: entity, AuthStart: authStart, Branched: true}
	for range n {
		c.Comps = append(c.Comps, "NAG")
	}
	return c
}

// SeqA is the sequence of chain A of the default model: GLY 5, SER 10,
// THR 14, PHE 4 and CYS 20.
const SeqA = "MQIFGKTLTSKTITLEVEPCDT"

// SeqB is the sequence of chain B of the default model, ASP 8.
const SeqB = "MKTAYIAD"

// Default returns the chains of the model used by most tests: two proteins
// numbered as in the label scheme and a zinc ion.
func Default() []Chain {
	return []Chain{
		Protein("A", "A", 1, 1, SeqA),
		Protein("B", "B", 2, 1, SeqB),
		Ion("A", "C", 3, 101, "ZN"),
	}
}

// Store returns an mmCIF store with the entity, scheme and atom_site
// categories of the chains. Every atom of the dictionary is present,
// except the leaving atoms and the ones declared missing or unobserved.
func Store(D *ccd.Dict, chains ...Chain) (*chem.Store, error) {
	if D == nil {
		D = ccd.New()
	}
	S := chem.NewStore()
	var entities, poly, nonpoly, branch, sites, unobsRes, unobsAtoms, conn [][]string
	entityRow := make(map[int]int)
	for ci, c := range chains {
		polymer := !c.NonPoly && !c.Branched
		if i, ok := entityRow[c.Entity]; ok && polymer {
			entities[i][2] += "," + c.ID
		} else if polymer {
			entityRow[c.Entity] = len(entities)
			entities = append(entities, []string{strconv.Itoa(c.Entity), c.EntityType, c.ID})
		}
		if c.Cyclic && len(c.Comps) > 2 {
			first, last := strconv.Itoa(c.AuthStart), strconv.Itoa(c.AuthStart+len(c.Comps)-1)
			conn = append(conn, []string{"covale", c.ID, last, "C", c.ID, first, "N"})
		}
		for i, comp := range c.Comps {
			label := strconv.Itoa(i + 1)
			auth := strconv.Itoa(c.AuthStart + i)
			ent := strconv.Itoa(c.Entity)
			switch {
			case c.NonPoly:
				nonpoly = append(nonpoly, []string{c.Asym, ent, comp, c.ID, auth, auth, comp})
				label = "."
			case c.Branched:
				branch = append(branch, []string{c.Asym, ent, label, comp, c.ID, auth, auth})
				label = "."
			default:
				poly = append(poly, []string{c.Asym, ent, label, comp, c.ID, auth, auth, comp})
			}
			if slices.Contains(c.Missing, i+1) {
				unobsRes = append(unobsRes, []string{c.ID, auth, comp, "1"})
				continue
			}
			dc, err := D.Comp(comp)
			if err != nil {
				return nil, err
			}
			for j, a := range dc.Atoms {
				if a.Leaving || (c.NoH && a.TypeSymbol == "H") {
					continue
				}
				if slices.Contains(c.Unobserved[i+1], a.ID) {
					unobsAtoms = append(unobsAtoms, []string{c.ID, auth, comp, "1", a.ID})
					continue
				}
				x, y, z := position(ci, i, j)
				sites = append(sites, []string{"1", ".", c.ID, auth, label, a.ID, a.ID, comp, comp, a.TypeSymbol,
					fcoord(x), fcoord(y), fcoord(z), ent, c.Asym})
			}
		}
	}
	add := func(cat string, items []string, rows [][]string) error {
		if len(rows) == 0 {
			return nil
		}
		return S.AddCategory(cat, items, rows)
	}
	if err := add("entity_poly", []string{"entity_id", "type", "pdbx_strand_id"}, entities); err != nil {
		return nil, err
	}
	if err := add("pdbx_poly_seq_scheme", []string{"asym_id", "entity_id", "seq_id", "mon_id", "pdb_strand_id", "auth_seq_num", "pdb_seq_num", "pdb_mon_id"}, poly); err != nil {
		return nil, err
	}
	if err := add("pdbx_nonpoly_scheme", []string{"asym_id", "entity_id", "mon_id", "pdb_strand_id", "auth_seq_num", "pdb_seq_num", "pdb_mon_id"}, nonpoly); err != nil {
		return nil, err
	}
	if err := add("pdbx_branch_scheme", []string{"asym_id", "entity_id", "num", "mon_id", "pdb_asym_id", "auth_seq_num", "pdb_seq_num"}, branch); err != nil {
		return nil, err
	}
	unobs := []string{"auth_asym_id", "auth_seq_id", "auth_comp_id", "PDB_model_num"}
	if err := add("pdbx_unobs_or_zero_occ_residues", unobs, unobsRes); err != nil {
		return nil, err
	}
	if err := add("pdbx_unobs_or_zero_occ_atoms", append(unobs, "auth_atom_id"), unobsAtoms); err != nil {
		return nil, err
	}
	if err := add("struct_conn", []string{"conn_type_id", "ptnr1_auth_asym_id", "ptnr1_auth_seq_id", "ptnr1_label_atom_id",
		"ptnr2_auth_asym_id", "ptnr2_auth_seq_id", "ptnr2_label_atom_id"}, conn); err != nil {
		return nil, err
	}
	err := add("atom_site", []string{"pdbx_PDB_model_num", "label_alt_id", "auth_asym_id", "auth_seq_id", "label_seq_id",
		"label_atom_id", "auth_atom_id", "label_comp_id", "auth_comp_id", "type_symbol", "Cartn_x", "Cartn_y", "Cartn_z",
		"label_entity_id", "label_asym_id"}, sites)
	return S, err
}

// position places residue i of chain ci on a helix, with its atoms on a
// small spiral around the residue center.
func position(ci, i, j int) (float64, float64, float64) {
	t := float64(i) * 100 * math.Pi / 180
	cx, cy, cz := 2.3*math.Cos(t)+20*float64(ci), 2.3*math.Sin(t), 1.5*float64(i)
	u := float64(j) * 1.1
	r := 0.6 + 0.15*float64(j%5)
	return cx + r*math.Cos(u), cy + r*math.Sin(u), cz + 0.2*float64(j%4)
}

func fcoord(f float64) string {
	return strconv.FormatFloat(f, 'f', 3, 64)
}

// Model builds the model of the chains, failing the test on errors.
func Model(tb testing.TB, chains ...Chain) *chem.Model {
	tb.Helper()
	if len(chains) == 0 {
		chains = Default()
	}
	S, err := Store(nil, chains...)
	if err != nil {
		tb.Fatalf("building the store: %v", err)
	}
	M, err := chem.BuildModel(S, chem.ModelOptions{})
	if err != nil {
		tb.Fatalf("building the model: %v", err)
	}
	return M
}
