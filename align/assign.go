package align

import (
	"fmt"
	"slices"
	"sort"
)

// Seq is the residue sequence of one chain. SeqIDs and CompIDs are parallel.
type Seq struct {
	ChainID string
	SeqIDs  []int
	CompIDs []string
}

// filled returns the sequence from the first to the last sequence number,
// with wildcards for the numbers absent in S, and the number of each position.
func (S Seq) filled() ([]string, []int) {
	if len(S.SeqIDs) == 0 {
		return nil, nil
	}
	lo, hi := slices.Min(S.SeqIDs), slices.Max(S.SeqIDs)
	comps := make([]string, hi-lo+1)
	nums := make([]int, hi-lo+1)
	for i := range comps {
		comps[i] = Wildcard
		nums[i] = lo + i
	}
	for i, s := range S.SeqIDs {
		comps[s-lo] = S.CompIDs[i]
	}
	return comps, nums
}

// Assignment maps a chain of a restraint file (Test) onto a chain of the
// model (Ref).
type Assignment struct {
	RefChain  string
	TestChain string
	Matched   int
	Conflicts int
	Unmapped  int
	Length    int //non-wildcard residues of the test chain
	//test sequence number -> model sequence number, for aligned residues.
	SeqID map[int]int
	//other model chains that align equally well (identical chains).
	Ambiguous []string
}

// Identity is the fraction of the residues in the test chain matched.
func (A *Assignment) Identity() float64 {
	if A.Length == 0 {
		return 0
	}
	return float64(A.Matched) / float64(A.Length)
}

// Offset returns the constant shift model = test + offset, if all aligned
// residues share it. Otherwise ok is false and the per-residue offsets are
// returned.
func (A *Assignment) Offset() (offset int, ok bool, perRes map[int]int) {
	perRes = make(map[int]int, len(A.SeqID))
	first := true
	ok = true
	for t, r := range A.SeqID {
		perRes[t] = r - t
		if first {
			offset = r - t
			first = false
		} else if r-t != offset {
			ok = false
		}
	}
	if first {
		return 0, false, perRes
	}
	return offset, ok, perRes
}

func (A *Assignment) String() string {
	return fmt.Sprintf("%s->%s matched %d/%d conflicts %d unmapped %d", A.TestChain, A.RefChain, A.Matched, A.Length, A.Conflicts, A.Unmapped)
}

// AssignChains aligns each test chain against every reference chain and keeps
// the best one. Returned are the valid assignments (identity at least
// o.MinIdentity()) and the test chains that could not be assigned, both in
// test order. If o is nil, DefaultOptions are used.
func AssignChains(ref, test []Seq, o *Options) ([]*Assignment, []string) {
	if o == nil {
		o = DefaultOptions()
	}
	var valid []*Assignment
	var failed []string
	for _, t := range test {
		tc, tn := t.filled()
		var best *Assignment
		var bestScore float64
		for _, r := range ref {
			res := Align(r.CompIDs, tc, o)
			a := &Assignment{RefChain: r.ChainID, TestChain: t.ChainID, Matched: res.Matched, Conflicts: res.Conflicts, Unmapped: res.Unmapped, Length: len(t.SeqIDs), SeqID: make(map[int]int)}
			for tb, ra := range res.MapBtoA() {
				if tc[tb] != Wildcard {
					a.SeqID[tn[tb]] = r.SeqIDs[ra]
				}
			}
			switch {
			case best == nil || res.Score > bestScore:
				best, bestScore = a, res.Score
			case res.Score == bestScore:
				best.Ambiguous = append(best.Ambiguous, r.ChainID)
			}
		}
		if best == nil || best.Identity() < o.MinIdentity() {
			failed = append(failed, t.ChainID)
			continue
		}
		sort.Strings(best.Ambiguous)
		valid = append(valid, best)
	}
	return valid, failed
}
