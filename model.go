/*
 * model.go, part of mrchem.
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
/***Dedicated to the long life of the Ven. Khenpo Phuntzok Tenzin Rinpoche***/

package chem

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	v3 "github.com/rmera/mrchem/v3"
)

// ModelOptions selects the coordinates used to build a Model.
// A zero RepresentativeModelID means the lowest model number in the file.
type ModelOptions struct {
	RepresentativeModelID int
	RepresentativeAltID   string
}

func atoi(v string) (int, bool) {
	if IsNull(v) {
		return 0, false
	}
	i, err := strconv.Atoi(v)
	return i, err == nil
}

func firstNonNull(vals ...string) string {
	for _, v := range vals {
		if !IsNull(v) {
			return v
		}
	}
	return ""
}

// optional reads a category that may be missing.
func optional(r CoordReader, cat string) ([]Record, error) {
	if !r.HasCategory(cat) {
		return nil, nil
	}
	recs, err := r.GetDictList(cat)
	if errors.Is(err, ErrNoCategory) {
		return nil, nil
	}
	return recs, err
}

// BuildModel precomputes the residue tables, sequence maps and coordinates
// of the representative model from the mmCIF categories in r.
// atom_site is required, the scheme and unobserved categories are used
// when present.
func BuildModel(r CoordReader, o ModelOptions) (*Model, error) {
	if o.RepresentativeAltID == "" {
		o.RepresentativeAltID = "A"
	}
	M := NewModel()
	sites, err := r.GetDictList("atom_site")
	if err != nil {
		return nil, errDecorate(err, "BuildModel")
	}
	if len(sites) == 0 {
		return nil, NewError("no atoms in atom_site", "BuildModel")
	}
	if o.RepresentativeModelID == 0 {
		o.RepresentativeModelID = lowestModel(sites)
	}
	M.RepresentativeModelID = o.RepresentativeModelID
	M.RepresentativeAltID = o.RepresentativeAltID

	entities, err := readEntities(r)
	if err != nil {
		return nil, errDecorate(err, "BuildModel")
	}
	poly, err := optional(r, "pdbx_poly_seq_scheme")
	if err != nil {
		return nil, errDecorate(err, "BuildModel")
	}
	if poly != nil {
		M.Polymers = chainsFromScheme(poly, Polymer, "seq_id", "pdb_strand_id", "auth_seq_num", "pdb_seq_num")
	}
	nonpoly, err := optional(r, "pdbx_nonpoly_scheme")
	if err != nil {
		return nil, errDecorate(err, "BuildModel")
	}
	if nonpoly != nil {
		M.NonPolymers = chainsFromScheme(nonpoly, NonPolymer, "", "pdb_strand_id", "auth_seq_num", "pdb_seq_num")
	}
	branch, err := optional(r, "pdbx_branch_scheme")
	if err != nil {
		return nil, errDecorate(err, "BuildModel")
	}
	if branch != nil {
		M.Branched = chainsFromScheme(branch, Branched, "num", "pdb_asym_id", "auth_seq_num", "pdb_seq_num")
	}
	if err := M.fillSites(sites); err != nil {
		return nil, errDecorate(err, "BuildModel")
	}
	if poly == nil && nonpoly == nil {
		M.chainsFromSites(sites)
	}
	for _, set := range [][]*Chain{M.Polymers, M.NonPolymers, M.Branched} {
		for _, c := range set {
			if e, ok := entities[c.EntityID]; ok {
				c.EntityType = e.kind
				for _, s := range e.strands {
					if s != c.AuthChainID && c.Kind == Polymer {
						c.IdenticalChainIDs = append(c.IdenticalChainIDs, s)
					}
				}
			}
			if err := c.check(); err != nil {
				return nil, errDecorate(err, "BuildModel")
			}
		}
	}
	M.fillSeqMaps()
	if err := M.fillUnobserved(r); err != nil {
		return nil, errDecorate(err, "BuildModel")
	}
	if err := M.fillLinks(r); err != nil {
		return nil, errDecorate(err, "BuildModel")
	}
	for _, c := range M.Polymers {
		c.GapInAuthSeq = gapInAuthSeq(c)
		c.Cyclic = M.IsCyclic(c)
	}
	M.Universe()
	return M, nil
}

func lowestModel(sites []Record) int {
	low := 0
	for _, s := range sites {
		if m, ok := atoi(s["pdbx_PDB_model_num"]); ok && (low == 0 || m < low) {
			low = m
		}
	}
	if low == 0 {
		return 1
	}
	return low
}

type entity struct {
	kind    string
	strands []string
}

func readEntities(r CoordReader) (map[int]entity, error) {
	ret := make(map[int]entity)
	recs, err := optional(r, "entity_poly")
	if err != nil {
		return nil, err
	}
	for _, e := range recs {
		id, ok := atoi(e["entity_id"])
		if !ok {
			continue
		}
		var strands []string
		for _, s := range strings.Split(e["pdbx_strand_id"], ",") {
			if s = strings.TrimSpace(s); !IsNull(s) {
				strands = append(strands, s)
			}
		}
		ret[id] = entity{kind: e["type"], strands: strands}
	}
	return ret, nil
}

// chainsFromScheme groups the rows of a pdbx_*_scheme category by asym_id.
// seqItem is the label numbering item; for non-polymers, where there is none,
// the position in the molecule is used.
func chainsFromScheme(recs []Record, kind ChainKind, seqItem, strandItem, authItem, pdbItem string) []*Chain {
	var ret []*Chain
	byAsym := make(map[string]*Chain)
	for _, rec := range recs {
		asym := rec["asym_id"]
		c, ok := byAsym[asym]
		if !ok {
			c = &Chain{Kind: kind, LabelAsymID: asym, AuthChainID: firstNonNull(rec[strandItem], rec["pdb_strand_id"], asym)}
			c.EntityID, _ = atoi(rec["entity_id"])
			byAsym[asym] = c
			ret = append(ret, c)
		}
		seq, ok := atoi(rec[seqItem])
		if !ok {
			seq = c.Len() + 1
		}
		auth := BrokenSeqID
		if a, ok := atoi(rec[pdbItem]); ok {
			auth = a
		} else if a, ok := atoi(rec[authItem]); ok {
			auth = a
		}
		comp := rec["mon_id"]
		c.SeqIDs = append(c.SeqIDs, seq)
		c.AuthSeqIDs = append(c.AuthSeqIDs, auth)
		c.CompIDs = append(c.CompIDs, comp)
		c.AuthCompIDs = append(c.AuthCompIDs, firstNonNull(rec["auth_mon_id"], rec["pdb_mon_id"], comp))
		if ins := rec["pdb_ins_code"]; !IsNull(ins) {
			if c.InsCodes == nil {
				c.InsCodes = make([]string, c.Len()-1, c.Len())
			}
			c.InsCodes = append(c.InsCodes, ins)
		} else if c.InsCodes != nil {
			c.InsCodes = append(c.InsCodes, "")
		}
		if kind == NonPolymer {
			alt, ok := atoi(rec[authItem])
			if ok && alt != auth {
				if c.AltAuthSeqIDs == nil {
					c.AltAuthSeqIDs = make([]int, c.Len()-1, c.Len())
					for i := range c.AltAuthSeqIDs {
						c.AltAuthSeqIDs[i] = c.AuthSeqIDs[i]
					}
				}
				c.AltAuthSeqIDs = append(c.AltAuthSeqIDs, alt)
			} else if c.AltAuthSeqIDs != nil {
				c.AltAuthSeqIDs = append(c.AltAuthSeqIDs, auth)
			}
		}
	}
	return ret
}

// fillSites reads the atoms of the representative model and alternate location.
func (M *Model) fillSites(sites []Record) error {
	data := make([]float64, 0, 3*len(sites))
	row := 0
	for _, s := range sites {
		if m, ok := atoi(s["pdbx_PDB_model_num"]); ok && m != M.RepresentativeModelID {
			continue
		}
		if alt := s["label_alt_id"]; !IsNull(alt) && alt != M.RepresentativeAltID {
			continue
		}
		chain := firstNonNull(s["auth_asym_id"], s["label_asym_id"])
		seq, ok := atoi(s["auth_seq_id"])
		if !ok {
			if seq, ok = atoi(s["label_seq_id"]); !ok {
				return NewError(fmt.Sprintf("atom %s of %s has no sequence number", s["label_atom_id"], chain), "fillSites")
			}
		}
		atom := firstNonNull(s["label_atom_id"], s["auth_atom_id"])
		comp := firstNonNull(s["label_comp_id"], s["auth_comp_id"])
		k := ResKey{chain, seq}
		site, ok := M.Sites[k]
		if !ok {
			site = &AtomSite{CompID: comp}
			M.Sites[k] = site
		}
		if site.Has(atom) {
			continue
		}
		sym := s["type_symbol"]
		if IsNull(sym) {
			sym, _ = symbolFromName(atom)
		}
		site.AtomIDs = append(site.AtomIDs, atom)
		site.TypeSymbols = append(site.TypeSymbols, sym)
		if auth := s["auth_atom_id"]; !IsNull(auth) && auth != atom {
			if site.AltAtomIDs == nil {
				site.AltAtomIDs = slices.Clone(site.AtomIDs[:len(site.AtomIDs)-1])
			}
			site.AltAtomIDs = append(site.AltAtomIDs, auth)
		} else if site.AltAtomIDs != nil {
			site.AltAtomIDs = append(site.AltAtomIDs, atom)
		}
		if ac := s["auth_comp_id"]; !IsNull(ac) && ac != comp {
			if site.AltCompIDs == nil {
				site.AltCompIDs = make([]string, len(site.AtomIDs)-1)
				for i := range site.AltCompIDs {
					site.AltCompIDs[i] = comp
				}
			}
			site.AltCompIDs = append(site.AltCompIDs, ac)
		} else if site.AltCompIDs != nil {
			site.AltCompIDs = append(site.AltCompIDs, comp)
		}
		x, errx := strconv.ParseFloat(s["Cartn_x"], 64)
		y, erry := strconv.ParseFloat(s["Cartn_y"], 64)
		z, errz := strconv.ParseFloat(s["Cartn_z"], 64)
		if errx != nil || erry != nil || errz != nil {
			site.rows = append(site.rows, -1)
			continue
		}
		data = append(data, x, y, z)
		site.rows = append(site.rows, row)
		row++
	}
	if len(M.Sites) == 0 {
		return NewError(fmt.Sprintf("no atoms for model %d", M.RepresentativeModelID), "fillSites")
	}
	if row > 0 {
		var err error
		M.Coords, err = v3.NewMatrix(data)
		if err != nil {
			return err
		}
	}
	return nil
}

// chainsFromSites builds the chains from atom_site alone, for files without
// the pdbx scheme categories.
func (M *Model) chainsFromSites(sites []Record) {
	type res struct {
		chain, asym, comp string
		seq, label        int
		entity            int
	}
	var order []res
	seen := make(map[ResKey]bool)
	for _, s := range sites {
		if m, ok := atoi(s["pdbx_PDB_model_num"]); ok && m != M.RepresentativeModelID {
			continue
		}
		chain := firstNonNull(s["auth_asym_id"], s["label_asym_id"])
		seq, ok := atoi(s["auth_seq_id"])
		if !ok {
			seq, _ = atoi(s["label_seq_id"])
		}
		k := ResKey{chain, seq}
		if seen[k] {
			continue
		}
		seen[k] = true
		label, ok := atoi(s["label_seq_id"])
		if !ok {
			label = 0
		}
		ent, _ := atoi(s["label_entity_id"])
		order = append(order, res{chain, firstNonNull(s["label_asym_id"], chain), firstNonNull(s["label_comp_id"], s["auth_comp_id"]), seq, label, ent})
	}
	chains := make(map[string]*Chain)
	for _, r := range order {
		kind := Polymer
		if r.label == 0 {
			kind = NonPolymer
		}
		key := r.asym + kind.String()
		c, ok := chains[key]
		if !ok || kind == NonPolymer {
			c = &Chain{Kind: kind, AuthChainID: r.chain, LabelAsymID: r.asym, EntityID: r.entity}
			chains[key] = c
			if kind == Polymer {
				M.Polymers = append(M.Polymers, c)
			} else {
				M.NonPolymers = append(M.NonPolymers, c)
			}
		}
		label := r.label
		if kind == NonPolymer {
			label = 1
		}
		c.SeqIDs = append(c.SeqIDs, label)
		c.AuthSeqIDs = append(c.AuthSeqIDs, r.seq)
		c.CompIDs = append(c.CompIDs, r.comp)
		c.AuthCompIDs = append(c.AuthCompIDs, r.comp)
	}
}

func (M *Model) fillSeqMaps() {
	assembly := 0
	for _, set := range [][]*Chain{M.Polymers, M.Branched, M.NonPolymers} {
		for _, c := range set {
			assembly++
			for i, auth := range c.AuthSeqIDs {
				if auth == BrokenSeqID {
					continue
				}
				k := ResKey{c.AuthChainID, auth}
				label := ResKey{c.AuthChainID, c.SeqIDs[i]}
				if c.Kind == Polymer {
					M.Seq.AuthToLabel[k] = label
					M.Seq.LabelToAuth[label] = k
				}
				M.Seq.AuthToStar[k] = StarSeq{EntityAssemblyID: assembly, SeqID: c.SeqIDs[i], EntityID: c.EntityID, IsPoly: c.Kind == Polymer}
				orig := OrigSeq{Chain: c.AuthChainID, Seq: auth, CompID: c.AuthCompIDs[i]}
				if c.AltAuthSeqIDs != nil {
					orig.Seq = c.AltAuthSeqIDs[i]
				}
				M.Seq.AuthToOrig[k] = orig
				if c.InsCodes != nil && c.InsCodes[i] != "" {
					M.Seq.AuthToInsCode[k] = c.InsCodes[i]
				}
			}
		}
	}
}

func (M *Model) fillUnobserved(r CoordReader) error {
	items := []Item{{Name: "auth_asym_id"}, {Name: "auth_seq_id", Type: Int}, {Name: "auth_comp_id"}, {Name: "PDB_model_num"}}
	if r.HasCategory("pdbx_unobs_or_zero_occ_residues") {
		recs, err := r.GetDictListWithFilter("pdbx_unobs_or_zero_occ_residues", items, nil)
		if err != nil {
			return err
		}
		for _, rec := range recs {
			if m, ok := atoi(rec["PDB_model_num"]); ok && m != M.RepresentativeModelID {
				continue
			}
			seq, _ := atoi(rec["auth_seq_id"])
			M.UnobsRes[ResKey{rec["auth_asym_id"], seq}] = true
		}
	}
	if r.HasCategory("pdbx_unobs_or_zero_occ_atoms") {
		recs, err := r.GetDictListWithFilter("pdbx_unobs_or_zero_occ_atoms", append(items, Item{Name: "auth_atom_id"}), nil)
		if err != nil {
			return err
		}
		for _, rec := range recs {
			if m, ok := atoi(rec["PDB_model_num"]); ok && m != M.RepresentativeModelID {
				continue
			}
			seq, _ := atoi(rec["auth_seq_id"])
			k := ResKey{rec["auth_asym_id"], seq}
			u := M.UnobsAtoms[k]
			u.CompID = rec["auth_comp_id"]
			u.AtomIDs = append(u.AtomIDs, rec["auth_atom_id"])
			M.UnobsAtoms[k] = u
		}
	}
	//polymer residues with no coordinates are unobserved too.
	for _, c := range M.Polymers {
		for _, auth := range c.AuthSeqIDs {
			k := ResKey{c.AuthChainID, auth}
			if _, ok := M.Sites[k]; !ok && auth != BrokenSeqID {
				M.UnobsRes[k] = true
			}
		}
	}
	return nil
}

func (M *Model) fillLinks(r CoordReader) error {
	if !r.HasCategory("struct_conn") {
		return nil
	}
	items := []Item{{Name: "conn_type_id"},
		{Name: "ptnr1_auth_asym_id"}, {Name: "ptnr1_auth_seq_id", Type: Int}, {Name: "ptnr1_label_atom_id"},
		{Name: "ptnr2_auth_asym_id"}, {Name: "ptnr2_auth_seq_id", Type: Int}, {Name: "ptnr2_label_atom_id"}}
	recs, err := r.GetDictListWithFilter("struct_conn", items, nil)
	if err != nil {
		return err
	}
	for _, rec := range recs {
		s1, _ := atoi(rec["ptnr1_auth_seq_id"])
		s2, _ := atoi(rec["ptnr2_auth_seq_id"])
		M.Links = append(M.Links, Link{
			A:    AtomKey{rec["ptnr1_auth_asym_id"], s1, rec["ptnr1_label_atom_id"]},
			B:    AtomKey{rec["ptnr2_auth_asym_id"], s2, rec["ptnr2_label_atom_id"]},
			Type: rec["conn_type_id"],
		})
	}
	return nil
}

// gapInAuthSeq reports whether the author numbering jumps where the label
// numbering is consecutive.
func gapInAuthSeq(c *Chain) bool {
	for i := 1; i < c.Len(); i++ {
		a, b := c.AuthSeqIDs[i-1], c.AuthSeqIDs[i]
		if a == BrokenSeqID || b == BrokenSeqID {
			continue
		}
		if c.SeqIDs[i]-c.SeqIDs[i-1] == 1 && b-a > 1 {
			return true
		}
	}
	return false
}
