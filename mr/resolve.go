/*
 * resolve.go, part of mrchem.
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
	"strconv"
	"strings"

	chem "github.com/rmera/mrchem"
)

// target is a residue a factor points to, before and after renumbering.
type target struct {
	fileChain string
	fileSeq   int
	chain     string
	seq       int
	explicit  bool //named by number, so a miss is an error
	clone     int  //position, from 1, of chain in the clones of fileChain
}

func (C *Context) key(F *Factor) string {
	sub := C.Subtype()
	if C.cur != nil && C.reasons != nil && C.reasons.LocalSeqScheme[localKey(sub, C.cur.id)] {
		sub += "#local"
	}
	return sub + "|" + F.Pred.key()
}

func localKey(subtype string, id int) string {
	return subtype + ":" + strconv.Itoa(id)
}

// rdiag is fatal for diagnostics produced while resolving a factor, so they
// can be replayed when the factor comes from the cache.
func (C *Context) rdiag(kind, format string, args ...any) {
	if C.quiet {
		return
	}
	C.fatal(kind, format, args...)
	C.pending = append(C.pending, [2]string{kind, fmt.Sprintf(format, args...)})
}

// Resolve solves the factor against the model, unless it is already resolved.
// A factor that cannot be solved ends Resolved and Failed, with no atoms, and
// the reason is in the diagnostics.
func (C *Context) Resolve(F *Factor) *Factor {
	if F.Resolved {
		return F
	}
	k := C.key(F)
	if c, ok := C.cache[k]; ok {
		*F = c.f
		F.Atoms = slices.Clone(c.f.Atoms)
		for _, d := range c.diags {
			C.fatal(d[0], "%s", d[1])
		}
		C.notice(F)
		return F
	}
	C.pending = nil
	C.evidenceTouched = false
	atoms := C.resolve(F)
	F.Atoms = normalize(atoms)
	F.Resolved = true
	F.Failed = len(F.Atoms) == 0
	if !F.Failed && !C.evidenceTouched {
		c := &cached{f: *F, diags: C.pending}
		c.f.Atoms = slices.Clone(F.Atoms)
		C.cache[k] = c
	}
	C.notice(F)
	return F
}

// notice keeps track of paramagnetic centers and segment statistics.
func (C *Context) notice(F *Factor) {
	if F.Paramagnetic() && len(F.Atoms) > 0 {
		C.paramag = slices.Clone(F.Atoms)
	}
	if seg := F.Pred.SegmentID; seg != "" && len(F.Atoms) > 0 {
		st := C.ev.SegStats[seg]
		if st == nil {
			st = make(map[string]int)
			C.ev.SegStats[seg] = st
		}
		seen := make(map[chem.ResKey]bool)
		for _, a := range F.Atoms {
			if !seen[a.Res()] {
				seen[a.Res()] = true
				st[a.ChainID]++
			}
		}
	}
}

func (C *Context) chainsFor(p *Predicates) []string {
	if p.AltChainID {
		if C.large && len(C.model.Polymers) > 0 {
			return []string{C.model.Polymers[0].AuthChainID}
		}
		return C.model.ChainIDs()
	}
	if len(p.ChainIDs) == 0 && p.SegmentID != "" {
		if C.reasons != nil {
			if dst, ok := C.reasons.SegmentIDMismatch[p.SegmentID]; ok {
				return []string{dst}
			}
		}
		if C.model.HasChain(p.SegmentID) {
			return []string{p.SegmentID}
		}
	}
	if len(p.ChainIDs) == 0 {
		return C.model.ChainIDs()
	}
	return p.ChainIDs
}

// residue is a residue of the model in one of its chains.
type residue struct {
	auth  int
	label int
	comp  string
	kind  chem.ChainKind
}

func (C *Context) residuesOf(chain string) []residue {
	var ret []residue
	for _, set := range [][]*chem.Chain{C.model.Polymers, C.model.Branched, C.model.NonPolymers} {
		for _, c := range set {
			if c.AuthChainID != chain {
				continue
			}
			for i, a := range c.AuthSeqIDs {
				if a == chem.BrokenSeqID {
					continue
				}
				ret = append(ret, residue{auth: a, label: c.SeqIDs[i], comp: c.CompIDs[i], kind: c.Kind})
			}
		}
	}
	return ret
}

func (C *Context) labelScheme() bool {
	if C.reasons == nil || C.cur == nil {
		return false
	}
	return C.reasons.LabelSeqScheme[C.cur.subtype] || C.reasons.LocalSeqScheme[localKey(C.cur.subtype, C.cur.id)]
}

// renumber applies the numbering hypotheses of the previous pass to a residue
// of the file.
func (C *Context) renumber(chain string, s int, comp string) (string, int) {
	R := C.reasons
	if R == nil {
		return chain, s
	}
	if m, ok := R.SeqIDRemap[chain][s]; ok {
		s = m
	}
	switch {
	case C.labelScheme():
		if a, ok := C.model.Seq.LabelToAuth[chem.ResKey{Chain: chain, Seq: s + R.LabelSeqOffset[chain]}]; ok {
			s = a.Seq
		}
	default:
		if off, ok := R.offsetOf(chain, s); ok {
			s += off
		}
	}
	if mc, ok := C.model.CompOf(chem.ResKey{Chain: chain, Seq: s}); ok && (comp == "" || C.sameComp(mc, comp)) {
		return chain, s
	}
	if m, ok := R.NpSeqIDRemap[chain][s]; ok {
		return chain, m
	}
	if comp != "" {
		if ref, ok := R.NonPolyRemap[comp][s]; ok {
			return ref.ChainID, ref.SeqID
		}
	}
	if ref, ok := R.BranchedRemap[s]; ok {
		return ref.ChainID, ref.SeqID
	}
	if ref, ok := R.ChainIDRemap[s]; ok && !C.model.HasChain(chain) {
		return ref.ChainID, ref.SeqID
	}
	return chain, s
}

func (C *Context) targets(p *Predicates, chain string) []target {
	if cl := C.clones(chain); len(cl) > 0 {
		return C.cloneTargets(p, chain, cl)
	}
	comp := ""
	if len(p.CompIDs) == 1 {
		comp = C.dict.RealCompID(p.CompIDs[0], false)
	}
	var ret []target
	switch {
	case len(p.SeqIDs) > 0:
		for _, s := range p.SeqIDs {
			c2, s2 := C.renumber(chain, s, comp)
			ret = append(ret, target{fileChain: chain, fileSeq: s, chain: c2, seq: s2, explicit: true})
		}
	case p.SeqPattern.IsSet():
		res := C.residuesOf(chain)
		for _, r := range res {
			if p.SeqPattern.MatchInt(r.auth) {
				ret = append(ret, target{fileChain: chain, fileSeq: r.auth, chain: chain, seq: r.auth})
			}
		}
		if len(ret) == 0 {
			for _, r := range res {
				if r.kind == chem.Polymer && p.SeqPattern.MatchInt(r.label) {
					ret = append(ret, target{fileChain: chain, fileSeq: r.label, chain: chain, seq: r.auth})
				}
			}
		}
	default:
		for _, r := range C.residuesOf(chain) {
			ret = append(ret, target{fileChain: chain, fileSeq: r.auth, chain: chain, seq: r.auth, explicit: false})
		}
	}
	return ret
}

// clones returns the identical model chains a file chain stands for.
func (C *Context) clones(chain string) []string {
	if C.reasons == nil {
		return nil
	}
	return C.reasons.ChainIDClone[chain]
}

// cloneTargets reads the residues of a file chain on each of its clones,
// numbered as the chain it was aligned to.
func (C *Context) cloneTargets(p *Predicates, chain string, clones []string) []target {
	q := *p
	if len(p.SeqIDs) > 0 {
		q.SeqIDs = make([]int, len(p.SeqIDs))
		for i, s := range p.SeqIDs {
			q.SeqIDs[i] = s
			if ref, ok := C.reasons.ChainIDRemap[s]; ok {
				q.SeqIDs[i] = ref.SeqID
			}
		}
	}
	var ret []target
	for n, c := range clones {
		for i, t := range C.targets(&q, c) {
			t.fileChain, t.clone = chain, n+1
			if len(p.SeqIDs) > 0 {
				t.fileSeq = p.SeqIDs[i]
			}
			ret = append(ret, t)
		}
	}
	return ret
}

func (C *Context) sameComp(a, b string) bool {
	return a == b || C.dict.RealCompID(a, true) == C.dict.RealCompID(b, true)
}

// compMatch checks a residue name against the residue predicates.
func (C *Context) compMatch(p *Predicates, comp string) bool {
	real := C.dict.RealCompID(comp, true)
	if len(p.CompIDs) > 0 {
		ok := false
		for _, c := range p.CompIDs {
			c = C.dict.RealCompID(c, false)
			if c == comp || C.dict.RealCompID(c, true) == real {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	if p.CompPattern.IsSet() && !p.CompPattern.Match(comp) && !p.CompPattern.Match(real) {
		return false
	}
	if len(p.AltCompIDs) > 0 && !slices.Contains(p.AltCompIDs, comp) {
		return false
	}
	return true
}

func (C *Context) resolve(F *Factor) []Atom {
	p := &F.Pred
	chains := C.chainsFor(p)
	var atoms []Atom
	var misses []target
	hit := false
	diagnosed := len(C.pending)
	for _, ch := range chains {
		for _, t := range C.targets(p, ch) {
			k := chem.ResKey{Chain: t.chain, Seq: t.seq}
			comp, ok := C.model.CompOf(k)
			if t.explicit && len(p.CompIDs) == 1 && C.cur != nil {
				C.ev.fileSeq(t.fileChain, t.fileSeq, C.dict.RealCompID(p.CompIDs[0], false))
			}
			if !ok || !C.compMatch(p, comp) {
				if t.explicit {
					misses = append(misses, t)
				}
				continue
			}
			hit = true
			//residues reached by a pattern or by no number at all may lack the atom
			C.quiet = !t.explicit
			as := C.atomsIn(F, k, comp)
			C.quiet = false
			if len(as) > 0 && C.cur != nil {
				C.ev.AuthHits[C.cur.subtype]++
			}
			atoms = append(atoms, cloned(as, t.clone)...)
		}
	}
	if !hit && len(misses) > 0 {
		if len(chains) == 1 || len(p.ChainIDs) > 0 {
			for _, m := range misses {
				atoms = append(atoms, cloned(C.miss(F, m), m.clone)...)
			}
		} else {
			C.rdiag(AtomNotFound, "%s is not present in the coordinates.", describe(p))
		}
	}
	if len(atoms) == 0 && len(C.pending) == diagnosed && len(misses) == 0 {
		C.rdiag(InsufficientSel, "The atom selection %s is empty.", describe(p))
	}
	return atoms
}

// describe renders the predicates of a factor for the diagnostics.
func describe(p *Predicates) string {
	var parts []string
	if len(p.ChainIDs) > 0 {
		parts = append(parts, "chain "+strings.Join(p.ChainIDs, ","))
	}
	if p.SegmentID != "" {
		parts = append(parts, "segment "+p.SegmentID)
	}
	if len(p.SeqIDs) > 0 {
		s := make([]string, len(p.SeqIDs))
		for i, v := range p.SeqIDs {
			s[i] = strconv.Itoa(v)
		}
		parts = append(parts, "residue "+strings.Join(s, ","))
	} else if p.SeqPattern.IsSet() {
		parts = append(parts, "residue "+p.SeqPattern.String())
	}
	if len(p.CompIDs) > 0 {
		parts = append(parts, "name "+strings.Join(p.CompIDs, ","))
	} else if p.CompPattern.IsSet() {
		parts = append(parts, "name "+p.CompPattern.String())
	}
	if len(p.AtomIDs) > 0 {
		parts = append(parts, "atom "+strings.Join(p.AtomIDs, ","))
	} else if p.AtomPattern.IsSet() {
		parts = append(parts, "atom "+p.AtomPattern.String())
	}
	if len(parts) == 0 {
		return "(all)"
	}
	return "(" + strings.Join(parts, " ") + ")"
}

// atomsIn returns the atoms of residue k selected by the factor.
func (C *Context) atomsIn(F *Factor, k chem.ResKey, comp string) []Atom {
	p := &F.Pred
	site, hasSite := C.model.Site(k)
	if !hasSite && C.model.UnobsRes[k] {
		C.rdiag(CoordinateIssue, "%s:%d:%s is not present in the coordinates.", k.Chain, k.Seq, comp)
		return nil
	}
	isPoly := C.model.IsPolymerResidue(k)
	var ret []Atom
	switch {
	case len(p.AtomIDs) > 0:
		for _, raw := range p.AtomIDs {
			ret = append(ret, C.atomsNamed(F, k, comp, site, raw, isPoly)...)
		}
	case p.AtomPattern.Kind == Literal:
		ret = C.atomsNamed(F, k, comp, site, p.AtomPattern.Expr, isPoly)
	case p.AtomPattern.IsSet() && hasSite:
		ret = C.atomsMatching(F, k, comp, site, isPoly)
	case hasSite && p.AltAtomID != "":
		if i := slices.Index(site.AltAtomIDs, p.AltAtomID); i >= 0 {
			ret = append(ret, Atom{ChainID: k.Chain, SeqID: k.Seq, CompID: comp, AtomID: site.AtomIDs[i], IsPoly: isPoly, SegmentID: p.SegmentID, AuthAtomID: p.AltAtomID})
		}
	case hasSite:
		for _, a := range site.AtomIDs {
			ret = append(ret, Atom{ChainID: k.Chain, SeqID: k.Seq, CompID: comp, AtomID: a, IsPoly: isPoly, SegmentID: p.SegmentID})
		}
	}
	if len(p.TypeSymbols) > 0 || p.TypeSymbolPattern.IsSet() {
		ret = slices.DeleteFunc(ret, func(a Atom) bool {
			sym := C.symbolOf(site, comp, a.AtomID)
			if len(p.TypeSymbols) > 0 && !slices.ContainsFunc(p.TypeSymbols, func(s string) bool { return strings.EqualFold(s, sym) }) {
				return true
			}
			return p.TypeSymbolPattern.IsSet() && !p.TypeSymbolPattern.Match(strings.ToUpper(sym))
		})
	}
	return ret
}

// atomsMatching returns the atoms of residue k whose names match the atom
// pattern, including the hydrogens of the residue that are not in the
// coordinates.
func (C *Context) atomsMatching(F *Factor, k chem.ResKey, comp string, site *chem.AtomSite, isPoly bool) []Atom {
	p := &F.Pred
	var ret []Atom
	for _, a := range site.AtomIDs {
		if p.AtomPattern.Match(a) {
			ret = append(ret, Atom{ChainID: k.Chain, SeqID: k.Seq, CompID: comp, AtomID: a, IsPoly: isPoly, SegmentID: p.SegmentID})
		}
	}
	dc, err := C.dict.Comp(C.dict.RealCompID(comp, false))
	if err != nil {
		return ret
	}
	for _, a := range dc.Atoms {
		if a.TypeSymbol != "H" || a.Leaving || site.Has(a.ID) || !p.AtomPattern.Match(a.ID) {
			continue
		}
		if slices.Contains(C.model.UnobsAtoms[k].AtomIDs, a.ID) {
			continue
		}
		ret = append(ret, Atom{ChainID: k.Chain, SeqID: k.Seq, CompID: comp, AtomID: a.ID, IsPoly: isPoly, SegmentID: p.SegmentID,
			HydrogenNotInstantiated: true})
		C.rdiag(HydrogenNotInst, "%s:%d:%s:%s is not instantiated in the coordinates.", k.Chain, k.Seq, comp, a.ID)
	}
	return ret
}

func (C *Context) symbolOf(site *chem.AtomSite, comp, atom string) string {
	if site != nil {
		if s := site.Symbol(atom); s != "" {
			return s
		}
	}
	if s := C.dict.Symbol(comp, atom); s != "" {
		return s
	}
	return chem.SymbolFromName(atom)
}

// atomsNamed returns the atoms of residue k that the file atom name raw stands
// for.
func (C *Context) atomsNamed(F *Factor, k chem.ResKey, comp string, site *chem.AtomSite, raw string, isPoly bool) []Atom {
	up := strings.ToUpper(strings.TrimSpace(raw))
	mk := func(name string, hni bool) Atom {
		return Atom{ChainID: k.Chain, SeqID: k.Seq, CompID: comp, AtomID: name, IsPoly: isPoly,
			SegmentID: F.Pred.SegmentID, AuthAtomID: raw, HydrogenNotInstantiated: hni}
	}
	inSite := site != nil && site.Has(up)
	if !inSite && !slices.Contains(C.dict.AtomIDs(comp), up) {
		if a, ok := C.paramagnetic(F, k, comp, site, up); ok {
			return []Atom{mk(a, false)}
		}
	}
	names := C.xlate.ValidStarAtom(C.dict.RealCompID(comp, false), up, false)
	if len(names) == 0 && site != nil {
		switch {
		case inSite:
			names = []string{up}
		case slices.Contains(site.AltAtomIDs, up):
			names = []string{site.AtomIDs[slices.Index(site.AltAtomIDs, up)]}
		}
	}
	var ret []Atom
	unobs := false
	for _, n := range names {
		switch {
		case site != nil && site.Has(n):
			ret = append(ret, mk(n, false))
		case slices.Contains(C.model.UnobsAtoms[k].AtomIDs, n):
			unobs = true
		case C.dict.Symbol(comp, n) == "H":
			ret = append(ret, mk(n, true))
			C.rdiag(HydrogenNotInst, "%s:%d:%s:%s is not instantiated in the coordinates.", k.Chain, k.Seq, comp, n)
		}
	}
	if len(ret) > 0 {
		return ret
	}
	if unobs {
		C.rdiag(CoordinateIssue, "%s:%d:%s:%s is not present in the coordinates (unobserved atom).", k.Chain, k.Seq, comp, raw)
		return nil
	}
	if a, ok := C.npAtomRemap(F, up); ok {
		return []Atom{a}
	}
	C.rdiag(AtomNotFound, "%s:%d:%s:%s is not present in the coordinates.", k.Chain, k.Seq, comp, raw)
	return nil
}

// paramagnetic redirects a spin label or lanthanide atom name to the atom of
// the residue carrying it.
func (C *Context) paramagnetic(F *Factor, k chem.ResKey, comp string, site *chem.AtomSite, atom string) (string, bool) {
	nitroxide := slices.Contains(nitroxideNames, atom)
	lanthanide := chem.IsLanthanoid(atom)
	if !nitroxide && !lanthanide {
		return "", false
	}
	anchor, ok := paramagneticAnchors[C.dict.RealCompID(comp, true)]
	if !ok || (site != nil && !site.Has(anchor)) {
		return "", false
	}
	switch {
	case nitroxide:
		F.HasNitroxide = true
	case strings.EqualFold(atom, "GD"):
		F.HasGd3 = true
		F.HasLanthanide = true
	default:
		F.HasLanthanide = true
	}
	return anchor, true
}

// npAtomRemap finds an atom name that is the element of a single ion of the
// model, named in the wrong residue.
func (C *Context) npAtomRemap(F *Factor, atom string) (Atom, bool) {
	if C.reasons != nil {
		if ref, ok := C.reasons.NpAtomIDRemap[atom]; ok {
			if comp, ok := C.model.CompOf(chem.ResKey{Chain: ref.ChainID, Seq: ref.SeqID}); ok {
				return Atom{ChainID: ref.ChainID, SeqID: ref.SeqID, CompID: comp, AtomID: atom, AuthAtomID: atom, SegmentID: F.Pred.SegmentID}, true
			}
		}
	}
	var found []SeqRef
	var comp string
	for _, c := range C.model.NonPolymers {
		for i, a := range c.AuthSeqIDs {
			if c.CompIDs[i] == atom && a != chem.BrokenSeqID {
				found = append(found, SeqRef{c.AuthChainID, a})
				comp = c.CompIDs[i]
			}
		}
	}
	if len(found) != 1 {
		return Atom{}, false
	}
	C.ev.NpAtomIDRemap[atom] = found[0]
	C.evidenceTouched = true
	C.rdiag(SequenceMismatchW, "%s is interpreted as the %s ion %s:%d.", atom, comp, found[0].ChainID, found[0].SeqID)
	return Atom{ChainID: found[0].ChainID, SeqID: found[0].SeqID, CompID: comp, AtomID: atom, AuthAtomID: atom, SegmentID: F.Pred.SegmentID}, true
}

// miss handles a residue named by number that is not in the model: it tries
// the non-polymer and branched fallbacks, tries the label numbering, wraps
// around cyclic chains, votes for offsets and extends the sequence. What
// cannot be explained is an [Atom not found].
func (C *Context) miss(F *Factor, t target) []Atom {
	p := &F.Pred
	C.evidenceTouched = true
	comp := ""
	if len(p.CompIDs) == 1 {
		comp = C.dict.RealCompID(p.CompIDs[0], false)
	}
	if !C.model.HasChain(t.chain) {
		C.ev.ChainMiss[t.chain]++
	}
	if as, ok := C.nonPolyFallback(F, t, comp); ok {
		return as
	}
	if C.labelHit(F, t, comp) {
		return nil
	}
	if as, ok := C.cyclicWrap(F, t, comp); ok {
		return as
	}
	C.voteOffsets(F, t, comp)
	if as, ok := C.extend(F, t, comp); ok {
		return as
	}
	if comp == "" {
		comp = "?"
	}
	atom := "?"
	if len(p.AtomIDs) > 0 {
		atom = strings.Join(p.AtomIDs, ",")
	}
	C.rdiag(AtomNotFound, "%s:%d:%s:%s is not present in the coordinates.", t.fileChain, t.fileSeq, comp, atom)
	return nil
}

func (C *Context) nonPolyFallback(F *Factor, t target, comp string) ([]Atom, bool) {
	p := &F.Pred
	accepts := func(c string) bool {
		if comp != "" {
			return c == comp
		}
		for _, a := range p.AtomIDs {
			if strings.EqualFold(a, c) || C.dict.Symbol(c, strings.ToUpper(a)) != "" {
				return true
			}
		}
		return false
	}
	var cands []SeqRef
	var comps []string
	for _, c := range C.model.NonPolymersOf(t.chain) {
		for i, a := range c.AuthSeqIDs {
			if a != chem.BrokenSeqID && accepts(c.CompIDs[i]) {
				cands = append(cands, SeqRef{c.AuthChainID, a})
				comps = append(comps, c.CompIDs[i])
			}
		}
	}
	if len(cands) == 1 {
		k := chem.ResKey{Chain: cands[0].ChainID, Seq: cands[0].SeqID}
		as := C.atomsIn(F, k, comps[0])
		if len(as) > 0 {
			C.ev.addNpSeq(t.chain, t.fileSeq, cands[0].SeqID)
			return as, true
		}
	}
	if comp == "" || len(cands) > 0 {
		return nil, false
	}
	//the residue may belong to another chain.
	var others []SeqRef
	kind := chem.NonPolymer
	for _, set := range [][]*chem.Chain{C.model.NonPolymers, C.model.Branched} {
		for _, c := range set {
			for i, a := range c.AuthSeqIDs {
				if c.CompIDs[i] == comp && a != chem.BrokenSeqID {
					others = append(others, SeqRef{c.AuthChainID, a})
					kind = c.Kind
				}
			}
		}
	}
	if len(others) != 1 {
		return nil, false
	}
	k := chem.ResKey{Chain: others[0].ChainID, Seq: others[0].SeqID}
	as := C.atomsIn(F, k, comp)
	if len(as) == 0 {
		return nil, false
	}
	if kind == chem.Branched {
		C.ev.BranchedRemap[t.fileSeq] = others[0]
	} else {
		C.ev.addNonPoly(comp, t.fileSeq, others[0])
	}
	return as, true
}

// labelHit checks whether the residue exists under the label numbering,
// with the same residue name. A hit is evidence for the label scheme, and
// the factor fails for this pass.
func (C *Context) labelHit(F *Factor, t target, comp string) bool {
	if comp == "" || C.cur == nil || C.labelScheme() {
		return false
	}
	auth, ok := C.model.Seq.LabelToAuth[chem.ResKey{Chain: t.fileChain, Seq: t.fileSeq}]
	if !ok {
		return false
	}
	mcomp, ok := C.model.CompOf(auth)
	if !ok || !C.compMatch(&F.Pred, mcomp) {
		return false
	}
	site, ok := C.model.Site(auth)
	if !ok {
		return false
	}
	for _, a := range F.Pred.AtomIDs {
		if len(C.xlate.ValidStarAtom(mcomp, a, false)) == 0 && !site.Has(strings.ToUpper(a)) {
			return false
		}
	}
	C.ev.labelHit(C.cur.subtype, t.fileChain, C.cur.id)
	C.rdiag(AnomalousData, "%s:%d:%s exists only under the label numbering (%s:%d in the author numbering).",
		t.fileChain, t.fileSeq, comp, auth.Chain, auth.Seq)
	return true
}

// voteOffsets records the shifts that would place the residue on a polymer
// residue it could be. Under the label scheme the shifts are on the label
// numbering.
func (C *Context) voteOffsets(F *Factor, t target, comp string) {
	label := C.labelScheme()
	var cands []int
	for _, r := range C.residuesOf(t.fileChain) {
		if r.kind != chem.Polymer || !C.couldBe(F, r, comp) {
			continue
		}
		if label {
			cands = append(cands, r.label-t.fileSeq)
		} else {
			cands = append(cands, r.auth-t.fileSeq)
		}
	}
	switch {
	case len(cands) == 0:
	case label:
		C.ev.labelVote(t.fileChain, cands)
	default:
		C.ev.vote(t.fileChain, cands)
	}
}

// couldBe reports whether a file residue named comp could be r. Without a
// name, every atom named must exist in r.
func (C *Context) couldBe(F *Factor, r residue, comp string) bool {
	if comp != "" {
		return C.sameComp(r.comp, comp)
	}
	if len(F.Pred.AtomIDs) == 0 {
		return false
	}
	for _, a := range F.Pred.AtomIDs {
		if len(C.xlate.ValidStarAtom(r.comp, a, false)) == 0 {
			return false
		}
	}
	return true
}

func (C *Context) cyclicWrap(F *Factor, t target, comp string) ([]Atom, bool) {
	c := C.model.PolymerChain(t.chain)
	if c == nil || !c.Cyclic {
		return nil, false
	}
	first, last := c.AuthRange()
	n := last - first + 1
	if n <= 0 || (t.seq >= first && t.seq <= last) {
		return nil, false
	}
	w := first + ((t.seq-first)%n+n)%n
	k := chem.ResKey{Chain: t.chain, Seq: w}
	mcomp, ok := C.model.CompOf(k)
	if !ok || (comp != "" && !C.compMatch(&F.Pred, mcomp)) {
		return nil, false
	}
	as := C.atomsIn(F, k, mcomp)
	if len(as) == 0 {
		return nil, false
	}
	C.ev.addSeqRemap(t.chain, t.fileSeq, w)
	return as, true
}

// extend accepts residues just past the ends of a polymer chain, which are
// missing from the deposited sequence.
func (C *Context) extend(F *Factor, t target, comp string) ([]Atom, bool) {
	p := &F.Pred
	c := C.model.PolymerChain(t.chain)
	if c == nil || comp == "" || len(p.AtomIDs) == 0 {
		return nil, false
	}
	mk := func() []Atom {
		var ret []Atom
		for _, raw := range p.AtomIDs {
			for _, n := range C.xlate.ValidStarAtom(comp, raw, true) {
				ret = append(ret, Atom{ChainID: t.chain, SeqID: t.seq, CompID: comp, AtomID: n, IsPoly: true, SegmentID: p.SegmentID, AuthAtomID: raw})
			}
		}
		return ret
	}
	if C.reasons != nil {
		if ec, ok := C.reasons.ExtendSeqScheme[t.chain][t.seq]; ok && ec == comp {
			return mk(), true
		}
	}
	first, last := c.AuthRange()
	if first == chem.BrokenSeqID {
		return nil, false
	}
	var dist int
	switch {
	case t.seq < first:
		dist = first - t.seq
	case t.seq > last:
		dist = t.seq - last
	default:
		return nil, false
	}
	if dist >= C.opts.MinExtSeq {
		return nil, false
	}
	C.ev.addExtend(t.chain, t.seq, comp)
	C.rdiag(SequenceMismatchW, "%s:%d:%s is not present in the polymer sequence of chain %s; the sequence is extended.", t.chain, t.seq, comp, t.chain)
	return mk(), true
}
