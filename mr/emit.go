/*
 * emit.go, part of mrchem.
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
	"strconv"

	chem "github.com/rmera/mrchem"
	"github.com/rmera/mrchem/star"
)

// member is one row of a restraint before it is written.
type member struct {
	atoms       []Atom
	combination int //0 is not applicable
	id          int //0 is not applicable
	logic       string
	dst         *DstFunc
}

func counter(n int) string {
	if n <= 0 {
		return star.Null
	}
	return strconv.Itoa(n)
}

// product returns every combination of one atom per side.
func product(sides [][]Atom) [][]Atom {
	ret := [][]Atom{nil}
	for _, s := range sides {
		var next [][]Atom
		for _, prefix := range ret {
			for _, a := range s {
				t := make([]Atom, len(prefix), len(prefix)+1)
				copy(t, prefix)
				next = append(next, append(t, a))
			}
		}
		ret = next
	}
	return ret
}

// members builds the rows of a restraint over the sides given. Member ids
// count the rows when there is more than one and some side is ambiguous.
// Atoms of different clones of a chain never share a row; each clone is a
// combination of its own.
func (C *Context) members(sides [][]Atom, dst *DstFunc) []member {
	cl := clonesIn(sides)
	if len(cl) == 0 {
		return C.memberSet(sides, dst, 0)
	}
	var ret []member
	for _, c := range cl {
		sub := make([][]Atom, len(sides))
		for i, s := range sides {
			sub[i] = slices.DeleteFunc(slices.Clone(s), func(a Atom) bool { return !sameClone(a, Atom{clone: c}) })
		}
		ret = append(ret, C.memberSet(sub, dst, c)...)
	}
	return ret
}

func (C *Context) memberSet(sides [][]Atom, dst *DstFunc, combination int) []member {
	tuples := product(sides)
	ambiguous := false
	for _, s := range sides {
		if C.stat.IsAmbiguous(sites(s)) {
			ambiguous = true
			break
		}
	}
	ret := make([]member, 0, len(tuples))
	for i, t := range tuples {
		m := member{atoms: t, dst: dst, combination: combination}
		if len(tuples) > 1 && ambiguous {
			m.id = i + 1
			m.logic = "OR"
		}
		ret = append(ret, m)
	}
	return ret
}

// clonesIn returns the clones present in the sides, in order.
func clonesIn(sides [][]Atom) []int {
	var ret []int
	for _, s := range sides {
		for _, a := range s {
			if a.clone > 0 && !slices.Contains(ret, a.clone) {
				ret = append(ret, a.clone)
			}
		}
	}
	slices.Sort(ret)
	return ret
}

// resetCounters sets to not applicable the counters that never went
// beyond 1.
func resetCounters(ms []member) {
	maxComb, maxID := 0, 0
	for _, m := range ms {
		maxComb = max(maxComb, m.combination)
		maxID = max(maxID, m.id)
	}
	for i := range ms {
		if maxComb <= 1 {
			ms[i].combination = 0
		}
		if maxID <= 1 {
			ms[i].id = 0
			if ms[i].logic == "OR" {
				ms[i].logic = ""
			}
		}
	}
}

// setAtom fills the columns of the nth atom of a row.
func (C *Context) setAtom(r *star.Row, n int, a Atom) {
	k := a.Res()
	col := func(name string) string { return star.AtomColumn(name, n) }
	if s, ok := C.model.Seq.AuthToStar[k]; ok {
		r.Set(col("Entity_assembly_ID"), strconv.Itoa(s.EntityAssemblyID))
		r.Set(col("Entity_ID"), strconv.Itoa(s.EntityID))
		r.Set(col("Comp_index_ID"), strconv.Itoa(s.SeqID))
		r.Set(col("Seq_ID"), strconv.Itoa(s.SeqID))
	} else {
		r.Set(col("Comp_index_ID"), strconv.Itoa(a.SeqID))
		r.Set(col("Seq_ID"), strconv.Itoa(a.SeqID))
	}
	r.Set(col("Comp_ID"), a.CompID)
	r.Set(col("Atom_ID"), a.AtomID)
	orig := chem.OrigSeq{Chain: a.ChainID, Seq: a.SeqID, CompID: a.CompID}
	if o, ok := C.model.Seq.AuthToOrig[k]; ok {
		orig = o
	}
	r.Set(col("Auth_asym_ID"), orig.Chain)
	r.Set(col("Auth_seq_ID"), strconv.Itoa(orig.Seq))
	r.Set(col("Auth_comp_ID"), orig.CompID)
	auth := a.AuthAtomID
	if auth == "" {
		auth = a.AtomID
	}
	r.Set(col("Auth_atom_ID"), auth)
}

// write appends the members to the list of the current subtype.
func (C *Context) write(ms []member) int {
	if len(ms) == 0 {
		return 0
	}
	resetCounters(ms)
	sub := C.Subtype()
	l := C.list(sub)
	cols := star.Values(sub)
	for _, m := range ms {
		r := star.NewRow(sub)
		r.Set("ID", strconv.Itoa(C.cur.id))
		r.Set("Combination_ID", counter(m.combination))
		r.Set("Member_ID", counter(m.id))
		r.Set("Member_logic_code", m.logic)
		for i, a := range m.atoms {
			C.setAtom(r, i+1, a)
		}
		d := m.dst
		set := func(col, v string) {
			if col != "" {
				r.Set(col, v)
			}
		}
		set(cols.Name, d.Name)
		set(cols.Target, d.Target)
		set(cols.TargetErr, d.TargetErr)
		set(cols.Lower, d.Lower)
		set(cols.Upper, d.Upper)
		set(cols.LowerLinear, d.LowerLinear)
		set(cols.UpperLinear, d.UpperLinear)
		set(cols.Weight, d.Weight)
		r.Set(star.ListIDColumn(sub), strconv.Itoa(l.ID))
		r.Set("Entry_ID", C.opts.EntryID)
		l.Rows = append(l.Rows, r)
	}
	C.cur.rows += len(ms)
	return len(ms)
}

// record keeps the summary of the current restraint once it has rows.
func (C *Context) record(distType, name string) {
	if C.cur == nil || C.cur.rows == 0 {
		return
	}
	C.emitted = append(C.emitted, &Emitted{Subtype: C.cur.subtype, ID: C.cur.id, Line: C.cur.line,
		DistType: distType, Name: name, Rows: C.cur.rows})
}
