/*
 * factor.go, part of mrchem.
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
	"regexp"
	"strconv"
	"strings"
)

// PatternKind tells how a Pattern matches.
type PatternKind int

const (
	NoPattern PatternKind = iota
	Literal
	Regex
	Range
	IntRanges
)

// Pattern matches residue names, sequence numbers or atom names.
// A Range is inclusive: alphabetical for names, numerical for sequence numbers.
// IntRanges matches sequence numbers in any of its spans.
type Pattern struct {
	Kind  PatternKind
	Expr  string //literal or regular expression
	Lo    string
	Hi    string
	Spans [][2]int
	re    *regexp.Regexp
}

// LiteralPattern matches exactly s.
func LiteralPattern(s string) Pattern {
	return Pattern{Kind: Literal, Expr: s}
}

// RegexPattern matches the whole string against expr.
func RegexPattern(expr string) (Pattern, error) {
	re, err := regexp.Compile("^(?:" + expr + ")$")
	if err != nil {
		return Pattern{}, fmt.Errorf("mr: bad pattern %q: %w", expr, err)
	}
	return Pattern{Kind: Regex, Expr: expr, re: re}, nil
}

// RangePattern matches from lo to hi, both included.
func RangePattern(lo, hi string) Pattern {
	return Pattern{Kind: Range, Lo: lo, Hi: hi}
}

// IntRangePattern matches sequence numbers from lo to hi.
func IntRangePattern(lo, hi int) Pattern {
	return IntRangesPattern([2]int{lo, hi})
}

// IntRangesPattern matches sequence numbers within any of the inclusive
// spans.
func IntRangesPattern(spans ...[2]int) Pattern {
	return Pattern{Kind: IntRanges, Spans: spans}
}

// PatternFromList follows the convention of selection factors: a list with
// one entry is a regular expression, with two an inclusive range.
func PatternFromList(l []string) (Pattern, error) {
	switch len(l) {
	case 0:
		return Pattern{}, nil
	case 1:
		return RegexPattern(l[0])
	case 2:
		return RangePattern(l[0], l[1]), nil
	}
	return Pattern{}, fmt.Errorf("mr: pattern lists take one or two entries, got %d", len(l))
}

// IsSet reports whether the pattern is in use.
func (P Pattern) IsSet() bool {
	return P.Kind != NoPattern
}

// Match reports whether s matches the pattern.
func (P *Pattern) Match(s string) bool {
	switch P.Kind {
	case Literal:
		return s == P.Expr
	case Regex:
		if P.re == nil {
			p, err := RegexPattern(P.Expr)
			if err != nil {
				return false
			}
			P.re = p.re
		}
		return P.re.MatchString(s)
	case Range:
		return s >= P.Lo && s <= P.Hi
	case IntRanges:
		n, err := strconv.Atoi(s)
		return err == nil && P.MatchInt(n)
	}
	return true
}

// MatchInt reports whether the sequence number n matches. Ranges compare
// numerically.
func (P *Pattern) MatchInt(n int) bool {
	if P.Kind == IntRanges {
		for _, s := range P.Spans {
			if n >= s[0] && n <= s[1] {
				return true
			}
		}
		return false
	}
	if P.Kind != Range {
		return P.Match(strconv.Itoa(n))
	}
	lo, err1 := strconv.Atoi(P.Lo)
	hi, err2 := strconv.Atoi(P.Hi)
	if err1 != nil || err2 != nil {
		return P.Match(strconv.Itoa(n))
	}
	return n >= lo && n <= hi
}

func (P Pattern) String() string {
	switch P.Kind {
	case Literal, Regex:
		return P.Expr
	case Range:
		return P.Lo + "-" + P.Hi
	case IntRanges:
		parts := make([]string, len(P.Spans))
		for i, s := range P.Spans {
			parts[i] = strconv.Itoa(s[0])
			if s[1] != s[0] {
				parts[i] += "-" + strconv.Itoa(s[1])
			}
		}
		return strings.Join(parts, ",")
	}
	return ""
}

// Predicates are the constraints of an unresolved factor. Empty fields do
// not constrain.
type Predicates struct {
	ChainIDs          []string
	AltChainID        bool //the chain was given with an alternative (segment-like) name
	SeqIDs            []int
	SeqPattern        Pattern
	CompIDs           []string
	CompPattern       Pattern
	AtomIDs           []string
	AtomPattern       Pattern
	TypeSymbols       []string
	TypeSymbolPattern Pattern
	SegmentID         string
	AltCompIDs        []string
	AltAtomID         string
	AtomNotSpecified  bool
	SeqNotSpecified   bool
}

func (P *Predicates) key() string {
	var b strings.Builder
	fmt.Fprintf(&b, "c%v%t s%v%s r%v%s a%v%s t%v%s g%s x%v%s %t%t",
		P.ChainIDs, P.AltChainID, P.SeqIDs, P.SeqPattern, P.CompIDs, P.CompPattern, P.AtomIDs, P.AtomPattern,
		P.TypeSymbols, P.TypeSymbolPattern, P.SegmentID, P.AltCompIDs, P.AltAtomID, P.AtomNotSpecified, P.SeqNotSpecified)
	return b.String()
}

// Factor is a selection factor: either a set of predicates to be solved
// against the model or, once resolved, a set of atoms. A resolved factor with
// Failed set could not be resolved at all.
type Factor struct {
	Pred          Predicates
	Resolved      bool
	Atoms         []Atom
	Universe      bool //every atom of the model
	Failed        bool
	HasNitroxide  bool
	HasGd3        bool
	HasLanthanide bool
}

// NewFactor returns an unresolved factor.
func NewFactor(p Predicates) *Factor {
	return &Factor{Pred: p}
}

// AtomsFactor returns a factor already resolved to the given atoms.
func AtomsFactor(atoms []Atom) *Factor {
	return &Factor{Resolved: true, Atoms: atoms}
}

// UniverseFactor returns the factor standing for every atom.
func UniverseFactor() *Factor {
	return &Factor{Resolved: true, Universe: true}
}

// Paramagnetic reports whether the factor was redirected to a paramagnetic
// center.
func (F *Factor) Paramagnetic() bool {
	return F.HasNitroxide || F.HasGd3 || F.HasLanthanide
}

func (F *Factor) String() string {
	if F.Universe {
		return "*"
	}
	if F.Resolved {
		s := make([]string, len(F.Atoms))
		for i, a := range F.Atoms {
			s[i] = a.String()
		}
		return "[" + strings.Join(s, ", ") + "]"
	}
	return F.Pred.key()
}
