/*
 * reconcile.go, part of mrchem.
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
	"maps"
	"slices"
	"strings"

	"go.uber.org/zap"

	chem "github.com/rmera/mrchem"
	"github.com/rmera/mrchem/align"
	"github.com/rmera/mrchem/histo"
)

// Evidence is what a pass observed while resolving factors. It is turned
// into hypotheses by Arbitrate.
type Evidence struct {
	AuthHits        map[string]int           //subtype -> residues found in the author scheme
	LabelHits       map[string]int           //subtype -> residues found only in the label scheme
	LabelChains     map[string]int           //chain -> residues found only in the label scheme
	LabelRestraints map[string][]int         //subtype -> restraints with label-only residues
	Offsets         map[string][]int         //chain -> offsets consistent with every miss
	Votes           map[string]*histo.Ballot //chain -> every offset proposed
	Misses          map[string]int           //chain -> misses that proposed offsets
	LabelOffsets    map[string][]int         //as Offsets, on the label numbering
	LabelVotes      map[string]*histo.Ballot
	LabelMisses     map[string]int
	NpSeqIDRemap    map[string]map[int]int
	NonPolyRemap    map[string]map[int]SeqRef
	NpAtomIDRemap   map[string]SeqRef
	BranchedRemap   map[int]SeqRef
	SeqIDRemap      map[string]map[int]int
	ExtendSeq       map[string]map[int]string
	SegStats        map[string]map[string]int
	ChainMiss       map[string]int
	FileSeqs        map[string]map[int]string //chain -> file residue numbers and names
	SameAtom        map[string]int            //chain -> distance restraints from an atom to itself
	Identical       map[string][]string       //model chain -> chains with the same sequence
}

func newEvidence() *Evidence {
	return &Evidence{
		AuthHits:        make(map[string]int),
		LabelHits:       make(map[string]int),
		LabelChains:     make(map[string]int),
		LabelRestraints: make(map[string][]int),
		Offsets:         make(map[string][]int),
		Votes:           make(map[string]*histo.Ballot),
		Misses:          make(map[string]int),
		LabelOffsets:    make(map[string][]int),
		LabelVotes:      make(map[string]*histo.Ballot),
		LabelMisses:     make(map[string]int),
		NpSeqIDRemap:    make(map[string]map[int]int),
		NonPolyRemap:    make(map[string]map[int]SeqRef),
		NpAtomIDRemap:   make(map[string]SeqRef),
		BranchedRemap:   make(map[int]SeqRef),
		SeqIDRemap:      make(map[string]map[int]int),
		ExtendSeq:       make(map[string]map[int]string),
		SegStats:        make(map[string]map[string]int),
		ChainMiss:       make(map[string]int),
		FileSeqs:        make(map[string]map[int]string),
		SameAtom:        make(map[string]int),
		Identical:       make(map[string][]string),
	}
}

func (E *Evidence) fileSeq(chain string, seq int, comp string) {
	m := E.FileSeqs[chain]
	if m == nil {
		m = make(map[int]string)
		E.FileSeqs[chain] = m
	}
	if _, ok := m[seq]; !ok {
		m[seq] = comp
	}
}

func (E *Evidence) labelHit(subtype, chain string, id int) {
	E.LabelHits[subtype]++
	E.LabelChains[chain]++
	if !slices.Contains(E.LabelRestraints[subtype], id) {
		E.LabelRestraints[subtype] = append(E.LabelRestraints[subtype], id)
	}
}

// vote records the offsets proposed by one miss.
func (E *Evidence) vote(chain string, cands []int) {
	vote(E.Offsets, E.Votes, E.Misses, chain, cands)
}

// labelVote records the label numbering offsets proposed by one miss of a
// restraint read in the label scheme.
func (E *Evidence) labelVote(chain string, cands []int) {
	vote(E.LabelOffsets, E.LabelVotes, E.LabelMisses, chain, cands)
}

func vote(offsets map[string][]int, votes map[string]*histo.Ballot, misses map[string]int, chain string, cands []int) {
	cands = slices.Compact(slices.Sorted(slices.Values(cands)))
	if misses[chain] == 0 {
		offsets[chain] = cands
	} else {
		offsets[chain] = slices.DeleteFunc(offsets[chain], func(o int) bool { return !slices.Contains(cands, o) })
	}
	misses[chain]++
	b := votes[chain]
	if b == nil {
		b = new(histo.Ballot)
		votes[chain] = b
	}
	b.Add(cands...)
}

func (E *Evidence) addNpSeq(chain string, from, to int) {
	if E.NpSeqIDRemap[chain] == nil {
		E.NpSeqIDRemap[chain] = make(map[int]int)
	}
	E.NpSeqIDRemap[chain][from] = to
}

func (E *Evidence) addNonPoly(comp string, from int, to SeqRef) {
	if E.NonPolyRemap[comp] == nil {
		E.NonPolyRemap[comp] = make(map[int]SeqRef)
	}
	E.NonPolyRemap[comp][from] = to
}

func (E *Evidence) addSeqRemap(chain string, from, to int) {
	if E.SeqIDRemap[chain] == nil {
		E.SeqIDRemap[chain] = make(map[int]int)
	}
	E.SeqIDRemap[chain][from] = to
}

func (E *Evidence) addExtend(chain string, seq int, comp string) {
	if E.ExtendSeq[chain] == nil {
		E.ExtendSeq[chain] = make(map[int]string)
	}
	E.ExtendSeq[chain][seq] = comp
}

// maxAltOffsets is the largest set of equally good offsets published as
// alternatives.
const maxAltOffsets = 3

// offsetOf elects the offset of a chain. single is true when every miss
// agrees on it alone.
func (E *Evidence) offsetOf(chain string) (off int, single, ok bool) {
	return elect(E.Offsets[chain], E.Votes[chain], E.Misses[chain])
}

// labelOffsetOf elects the label numbering offset of a chain.
func (E *Evidence) labelOffsetOf(chain string) (off int, single, ok bool) {
	return elect(E.LabelOffsets[chain], E.LabelVotes[chain], E.LabelMisses[chain])
}

func elect(set []int, b *histo.Ballot, misses int) (off int, single, ok bool) {
	if len(set) == 1 {
		return set[0], true, true
	}
	if b == nil {
		return 0, false, false
	}
	v, n, ok := b.Winner()
	if !ok || n < max(2, misses/2) {
		return 0, false, false
	}
	return v, false, true
}

// Arbitrate turns the evidence of a pass into hypotheses for the next one.
// asg and failed are the chain assignments of the file sequences onto the
// model. in are the hypotheses the pass received, or nil. Arbitrate does not
// modify its arguments.
func Arbitrate(ev *Evidence, asg []*align.Assignment, failed []string, in *Reasons) *Reasons {
	out := in.Clone()
	if out == nil {
		out = new(Reasons)
	}
	explained := make(map[string]int) //chain -> misses explained by the offset

	for _, chain := range sortedKeys(ev.Misses) {
		off, single, ok := ev.offsetOf(chain)
		set := ev.Offsets[chain]
		if !single && len(set) > 1 && len(set) <= maxAltOffsets {
			setMap(&out.AltGlobalSequenceOffset, chain, slices.Clone(set))
		}
		if !ok || off == 0 {
			continue
		}
		explained[chain] = ev.Votes[chain].Count(off)
		setMap(&out.GlobalAuthSequenceOffset, chain, Offset{Scalar: off})
	}

	for _, sub := range sortedKeys(ev.LabelHits) {
		lh, ah := ev.LabelHits[sub], ev.AuthHits[sub]
		ids := ev.LabelRestraints[sub]
		switch {
		case ah > lh && len(ids) == 1:
			setMap(&out.LocalSeqScheme, localKey(sub, ids[0]), true)
		case ah > lh:
			setMap(&out.InhibitLabelSeqScheme, sub, true)
			setMap(&out.InhibitLabelSeqSchemeStats, sub, map[string]int{"auth": ah, "label": lh})
		default:
			off := 0
			for _, v := range explained {
				off += v
			}
			if lh >= off {
				setMap(&out.LabelSeqScheme, sub, true)
			}
		}
	}
	for _, chain := range sortedKeys(ev.LabelMisses) {
		if off, _, ok := ev.labelOffsetOf(chain); ok && off != 0 {
			setMap(&out.LabelSeqOffset, chain, off)
		}
	}
	if len(out.LabelSeqScheme) > 0 {
		//the label scheme explains these chains better than a shift.
		for chain, n := range ev.LabelChains {
			if n >= explained[chain] {
				delete(out.GlobalAuthSequenceOffset, chain)
			}
		}
	}

	for _, a := range asg {
		if _, missing := ev.ChainMiss[a.TestChain]; missing {
			continue
		}
		if a.TestChain != a.RefChain || ev.Misses[a.TestChain] == 0 {
			continue
		}
		if _, ok := out.GlobalAuthSequenceOffset[a.TestChain]; ok {
			continue
		}
		if ev.LabelChains[a.TestChain] > 0 && len(out.LabelSeqScheme) > 0 {
			continue
		}
		off, ok, perRes := a.Offset()
		switch {
		case ok && off != 0:
			setMap(&out.GlobalSequenceOffset, a.TestChain, Offset{Scalar: off})
		case !ok && len(perRes) > 0:
			setMap(&out.GlobalSequenceOffset, a.TestChain, Offset{PerRes: perRes})
		}
	}

	for _, chain := range sortedKeys(ev.ChainMiss) {
		i := slices.IndexFunc(asg, func(a *align.Assignment) bool { return a.TestChain == chain })
		if i < 0 {
			setMap(&out.UninterpretableChainID, chain, true)
			continue
		}
		a := asg[i]
		for _, s := range sortedKeys(a.SeqID) {
			if _, ok := out.ChainIDRemap[s]; !ok {
				setMap(&out.ChainIDRemap, s, SeqRef{a.RefChain, a.SeqID[s]})
			}
		}
		if len(a.Ambiguous) > 0 {
			setMap(&out.ChainIDClone, chain, append([]string{a.RefChain}, a.Ambiguous...))
		}
	}
	for _, chain := range failed {
		if ev.ChainMiss[chain] > 0 {
			setMap(&out.UninterpretableChainID, chain, true)
		}
	}

	for _, chain := range sortedKeys(ev.SameAtom) {
		if ids := ev.Identical[chain]; len(ids) > 0 {
			setMap(&out.ModelChainIDExt, chain, slices.Clone(ids))
		}
	}

	arbitrateSegments(ev, out)

	for chain, m := range ev.NpSeqIDRemap {
		for k, v := range m {
			setMap2(&out.NpSeqIDRemap, chain, k, v)
		}
	}
	for comp, m := range ev.NonPolyRemap {
		for k, v := range m {
			setMap2(&out.NonPolyRemap, comp, k, v)
		}
	}
	for atom, ref := range ev.NpAtomIDRemap {
		setMap(&out.NpAtomIDRemap, atom, ref)
	}
	for k, ref := range ev.BranchedRemap {
		setMap(&out.BranchedRemap, k, ref)
	}
	for chain, m := range ev.SeqIDRemap {
		for k, v := range m {
			setMap2(&out.SeqIDRemap, chain, k, v)
		}
	}
	for chain, m := range ev.ExtendSeq {
		if _, ok := out.GlobalAuthSequenceOffset[chain]; ok {
			continue
		}
		if _, ok := out.GlobalSequenceOffset[chain]; ok {
			continue
		}
		for k, v := range m {
			setMap2(&out.ExtendSeqScheme, chain, k, v)
		}
	}

	if len(out.NonPolyRemap) > 0 || len(out.BranchedRemap) > 0 || len(out.NpSeqIDRemap) > 0 {
		out.LocalSeqScheme = nil
	}
	//a chain that is renumbered as a whole needs no per-residue wrapping.
	for chain := range out.SeqIDRemap {
		if _, ok := out.GlobalAuthSequenceOffset[chain]; ok {
			delete(out.SeqIDRemap, chain)
		}
	}

	if in != nil {
		for sub := range in.LabelSeqScheme {
			if ev.AuthHits[sub] > 0 && ev.LabelHits[sub] == 0 {
				setMap(&out.AssertLabelSeqScheme, sub, true)
			}
		}
		keys := append(in.Keys(), terminal...)
		if len(in.LabelSeqScheme) > 0 || len(in.LocalSeqScheme) > 0 {
			//the shift of the label numbering can only be seen once it is in use
			keys = append(keys, "label_seq_offset")
		}
		out.restrict(keys)
	}
	return out
}

// arbitrateSegments maps segment ids onto chains greedily, most populated
// pairs first, so each chain takes at most one segment.
func arbitrateSegments(ev *Evidence, out *Reasons) {
	type pair struct {
		seg, chain string
		n          int
	}
	var pairs []pair
	for seg, st := range ev.SegStats {
		for chain, n := range st {
			pairs = append(pairs, pair{seg, chain, n})
		}
	}
	slices.SortFunc(pairs, func(a, b pair) int {
		if a.n != b.n {
			return b.n - a.n
		}
		if c := strings.Compare(a.seg, b.seg); c != 0 {
			return c
		}
		return strings.Compare(a.chain, b.chain)
	})
	segDone := make(map[string]bool)
	chainDone := make(map[string]bool)
	mismatch := make(map[string]string)
	uniq := true
	for _, p := range pairs {
		if segDone[p.seg] {
			continue
		}
		if chainDone[p.chain] {
			uniq = false
			continue
		}
		segDone[p.seg], chainDone[p.chain] = true, true
		if p.seg != p.chain {
			mismatch[p.seg] = p.chain
		}
	}
	if len(mismatch) == 0 {
		return
	}
	for seg, chain := range mismatch {
		setMap(&out.SegmentIDMismatch, seg, chain)
	}
	for seg, st := range ev.SegStats {
		setMap(&out.SegmentIDMatchStats, seg, maps.Clone(st))
	}
	out.AssertUniqSegmentID = uniq && len(segDone) == len(ev.SegStats)
}

func setMap[K comparable, V any](m *map[K]V, k K, v V) {
	if *m == nil {
		*m = make(map[K]V)
	}
	(*m)[k] = v
}

func setMap2[K1, K2 comparable, V any](m *map[K1]map[K2]V, k1 K1, k2 K2, v V) {
	if *m == nil {
		*m = make(map[K1]map[K2]V)
	}
	if (*m)[k1] == nil {
		(*m)[k1] = make(map[K2]V)
	}
	(*m)[k1][k2] = v
}

// modelSeqs returns the polymer sequences of the model in the author scheme.
func modelSeqs(M *chem.Model) []align.Seq {
	var ret []align.Seq
	for _, c := range M.Polymers {
		s := align.Seq{ChainID: c.AuthChainID}
		for i, a := range c.AuthSeqIDs {
			if a == chem.BrokenSeqID {
				continue
			}
			s.SeqIDs = append(s.SeqIDs, a)
			s.CompIDs = append(s.CompIDs, c.CompIDs[i])
		}
		if len(s.SeqIDs) > 0 {
			ret = append(ret, s)
		}
	}
	return ret
}

func fileSeqs(ev *Evidence) []align.Seq {
	var ret []align.Seq
	for _, chain := range sortedKeys(ev.FileSeqs) {
		m := ev.FileSeqs[chain]
		s := align.Seq{ChainID: chain}
		for _, k := range sortedKeys(m) {
			s.SeqIDs = append(s.SeqIDs, k)
			s.CompIDs = append(s.CompIDs, m[k])
		}
		ret = append(ret, s)
	}
	return ret
}

// Finish closes the pass and returns its result. The context must not be
// used afterwards.
func (C *Context) Finish() *Result {
	if C.cur != nil {
		C.Exit()
	}
	for _, c := range C.model.Polymers {
		if len(c.IdenticalChainIDs) > 0 {
			C.ev.Identical[c.AuthChainID] = c.IdenticalChainIDs
		}
	}
	var asg []*align.Assignment
	var failed []string
	if fs := fileSeqs(C.ev); len(fs) > 0 && (len(C.ev.Misses) > 0 || len(C.ev.ChainMiss) > 0) {
		asg, failed = align.AssignChains(modelSeqs(C.model), fs, nil)
		for _, a := range asg {
			C.log.Debug("chain assignment", zap.Stringer("assignment", a))
		}
	}
	reasons := Arbitrate(C.ev, asg, failed, C.reasons)
	res := &Result{
		Warnings:  C.Warnings(),
		Reasons:   reasons,
		RunID:     C.runID,
		Counts:    make(map[string]int),
		Restraint: C.emitted,
	}
	for _, chain := range sortedKeys(C.ev.Votes) {
		h := C.ev.Votes[chain].Histogram()
		if h == nil {
			continue
		}
		setMap(&res.OffsetVotes, chain, h)
		C.log.Debug("offset votes", zap.String("chain", chain), zap.Stringer("histogram", h))
	}
	for _, sub := range C.order {
		l := C.lists[sub]
		if len(l.Rows) == 0 {
			continue
		}
		res.Lists = append(res.Lists, l)
		res.Counts[sub] = C.counts[sub]
	}
	C.log.Info("pass finished",
		zap.Int("lists", len(res.Lists)),
		zap.Int("warnings", len(res.Warnings)),
		zap.Strings("reasons", reasons.Keys()))
	clear(C.cache)
	return res
}
