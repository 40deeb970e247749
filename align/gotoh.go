/*
 * gotoh.go, part of mrchem.
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

// Package align aligns residue sequences with affine gap penalties
// (Gotoh's algorithm) and assigns the chains referenced by a restraint file to
// the polymer chains of a model.
package align

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Wildcard is a residue that aligns with anything at no cost. It fills the
// holes of sequences built from the residues a restraint file mentions.
const Wildcard = "."

// Pair is a column of an alignment. A and B are indexes on each sequence, -1
// for a gap.
type Pair struct {
	A, B int
}

// Result is a pairwise alignment.
type Result struct {
	Pairs     []Pair
	Score     float64
	Matched   int //identical, non-wildcard residues aligned to each other.
	Conflicts int //different, non-wildcard residues aligned to each other.
	Unmapped  int //non-wildcard residues of B aligned to a gap.
}

// states of the traceback
const (
	inM int8 = iota
	inX      //a residue of A against a gap
	inY      //a residue of B against a gap
)

func (O *Options) score(a, b string) float64 {
	if a == Wildcard || b == Wildcard {
		return 0
	}
	if a == b {
		return O.match
	}
	return O.mismatch
}

// Align performs a semi-global alignment of a and b: gaps at the ends of either
// sequence are free. If o is nil, DefaultOptions are used.
func Align(a, b []string, o *Options) *Result {
	if o == nil {
		o = DefaultOptions()
	}
	n, m := len(a), len(b)
	if n == 0 || m == 0 {
		return gapsOnly(a, b)
	}
	inf := math.Inf(-1)
	M := mat.NewDense(n+1, m+1, nil)
	X := mat.NewDense(n+1, m+1, nil)
	Y := mat.NewDense(n+1, m+1, nil)
	tb := [3][]int8{make([]int8, (n+1)*(m+1)), make([]int8, (n+1)*(m+1)), make([]int8, (n+1)*(m+1))}
	at := func(i, j int) int { return i*(m+1) + j }
	for i := 1; i <= n; i++ {
		M.Set(i, 0, inf)
		Y.Set(i, 0, inf)
	}
	for j := 1; j <= m; j++ {
		M.Set(0, j, inf)
		X.Set(0, j, inf)
	}
	X.Set(0, 0, inf)
	Y.Set(0, 0, inf)
	cand := make([]float64, 3)
	for i := 1; i <= n; i++ {
		for j := 1; j <= m; j++ {
			cand[inM], cand[inX], cand[inY] = M.At(i-1, j-1), X.At(i-1, j-1), Y.At(i-1, j-1)
			k := floats.MaxIdx(cand)
			M.Set(i, j, cand[k]+o.score(a[i-1], b[j-1]))
			tb[inM][at(i, j)] = int8(k)

			cand[inM], cand[inX], cand[inY] = M.At(i-1, j)+o.gapOpen, X.At(i-1, j)+o.gapExt, Y.At(i-1, j)+o.gapOpen
			k = floats.MaxIdx(cand)
			X.Set(i, j, cand[k])
			tb[inX][at(i, j)] = int8(k)

			cand[inM], cand[inX], cand[inY] = M.At(i, j-1)+o.gapOpen, X.At(i, j-1)+o.gapOpen, Y.At(i, j-1)+o.gapExt
			k = floats.MaxIdx(cand)
			Y.Set(i, j, cand[k])
			tb[inY][at(i, j)] = int8(k)
		}
	}
	//free trailing gaps: the best cell of the last row or column.
	best, bi, bj, bs := inf, n, m, inM
	mats := [3]*mat.Dense{M, X, Y}
	consider := func(i, j int) {
		for s, D := range mats {
			if v := D.At(i, j); v > best {
				best, bi, bj, bs = v, i, j, int8(s)
			}
		}
	}
	for j := 1; j <= m; j++ {
		consider(n, j)
	}
	for i := 1; i < n; i++ {
		consider(i, m)
	}
	var rev []Pair
	for k := m; k > bj; k-- {
		rev = append(rev, Pair{-1, k - 1})
	}
	for k := n; k > bi; k-- {
		rev = append(rev, Pair{k - 1, -1})
	}
	i, j, s := bi, bj, bs
	for i > 0 && j > 0 {
		prev := tb[s][at(i, j)]
		switch s {
		case inM:
			rev = append(rev, Pair{i - 1, j - 1})
			i--
			j--
		case inX:
			rev = append(rev, Pair{i - 1, -1})
			i--
		case inY:
			rev = append(rev, Pair{-1, j - 1})
			j--
		}
		s = prev
	}
	for ; i > 0; i-- {
		rev = append(rev, Pair{i - 1, -1})
	}
	for ; j > 0; j-- {
		rev = append(rev, Pair{-1, j - 1})
	}
	ret := &Result{Score: best, Pairs: make([]Pair, 0, len(rev))}
	for k := len(rev) - 1; k >= 0; k-- {
		ret.Pairs = append(ret.Pairs, rev[k])
	}
	ret.count(a, b)
	return ret
}

func gapsOnly(a, b []string) *Result {
	ret := new(Result)
	for i := range a {
		ret.Pairs = append(ret.Pairs, Pair{i, -1})
	}
	for j := range b {
		ret.Pairs = append(ret.Pairs, Pair{-1, j})
	}
	ret.count(a, b)
	return ret
}

func (R *Result) count(a, b []string) {
	for _, p := range R.Pairs {
		switch {
		case p.B < 0:
		case b[p.B] == Wildcard:
		case p.A < 0:
			R.Unmapped++
		case a[p.A] == Wildcard:
		case a[p.A] == b[p.B]:
			R.Matched++
		default:
			R.Conflicts++
		}
	}
}

// MapBtoA returns, for each index of B aligned to a residue of A, that index of A.
func (R *Result) MapBtoA() map[int]int {
	ret := make(map[int]int)
	for _, p := range R.Pairs {
		if p.A >= 0 && p.B >= 0 {
			ret[p.B] = p.A
		}
	}
	return ret
}
