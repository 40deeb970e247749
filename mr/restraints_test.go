package mr

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	chem "github.com/rmera/mrchem"
	"github.com/rmera/mrchem/ccd"
	"github.com/rmera/mrchem/mr/mrtest"
	"github.com/rmera/mrchem/star"
)

var dict = ccd.New()

func newContext(Te *testing.T, reasons *Reasons, chains ...mrtest.Chain) *Context {
	Te.Helper()
	return NewContext(mrtest.Model(Te, chains...), dict, DefaultOptions(), reasons)
}

// sel selects atoms of one residue. comp may be empty.
func sel(chain string, seq int, comp string, atoms ...string) Sel {
	p := Predicates{ChainIDs: []string{chain}, SeqIDs: []int{seq}, AtomIDs: atoms}
	if comp != "" {
		p.CompIDs = []string{comp}
	}
	return Atoms{NewFactor(p)}
}

func kinds(msgs []string) []string {
	var ret []string
	for _, m := range msgs {
		ret = append(ret, Kind(m))
	}
	return ret
}

func col(r *star.Row, name string, n int) string {
	return r.Get(star.AtomColumn(name, n))
}

func TestDistanceOrMembers(Te *testing.T) {
	C := newContext(Te, nil)
	n := C.Distance(1, sel("A", 10, "", "HB%"), sel("A", 14, "", "H"), Bounds{Weight: V(1), Lower: V(2), Upper: V(5)}, "")
	require.Equal(Te, 2, n)
	res := C.Finish()
	require.Len(Te, res.Lists, 1)
	assert.Empty(Te, res.Warnings)
	L := res.Lists[0]
	assert.Equal(Te, Dist, L.Subtype)
	assert.Equal(Te, "NOE", L.ConstraintType)
	for i, r := range L.Rows {
		assert.Equal(Te, "1", r.Get("ID"))
		assert.Equal(Te, []string{"1", "2"}[i], r.Get("Member_ID"))
		assert.Equal(Te, "OR", r.Get("Member_logic_code"))
		assert.Equal(Te, star.Null, r.Get("Combination_ID"))
		assert.Equal(Te, "2.000", r.Get("Distance_lower_bound_val"))
		assert.Equal(Te, "5.000", r.Get("Distance_upper_bound_val"))
		assert.Equal(Te, "1", r.Get("Weight"))
		assert.Equal(Te, "SER", col(r, "Comp_ID", 1))
		assert.Equal(Te, "H", col(r, "Atom_ID", 2))
		assert.Equal(Te, "14", col(r, "Seq_ID", 2))
		assert.Equal(Te, "1", col(r, "Entity_assembly_ID", 1))
	}
	assert.Equal(Te, "HB2", col(L.Rows[0], "Atom_ID", 1))
	assert.Equal(Te, "HB3", col(L.Rows[1], "Atom_ID", 1))
	assert.Equal(Te, "HB%", col(L.Rows[0], "Auth_atom_ID", 1))
	require.Len(Te, res.Restraint, 1)
	assert.Equal(Te, AmbiDist, res.Restraint[0].DistType)
	assert.Equal(Te, 1, res.Counts[Dist])
	assert.True(Te, res.Reasons.Empty())
}

func TestDistanceDstFunc(Te *testing.T) {
	C := newContext(Te, nil)
	C.Enter(Dist, 1)
	D := C.Validate(Bounds{Weight: V(1), Lower: V(2), Upper: V(5)})
	require.NotNil(Te, D)
	assert.Equal(Te, map[string]string{"lower_limit": "2.000", "upper_limit": "5.000", "weight": "1",
		"potential": "square", "average": "r-6"}, D.Map())
}

func TestDihedralPhi(Te *testing.T) {
	C := newContext(Te, nil)
	sels := [4]Sel{sel("A", 10, "", "C"), sel("A", 11, "", "N"), sel("A", 11, "", "CA"), sel("A", 11, "", "C")}
	n := C.Dihedral(2, sels, Bounds{Weight: V(1), Target: V(180), Lower: V(180), Upper: V(180)}, 1)
	require.Equal(Te, 1, n)
	res := C.Finish()
	require.Len(Te, res.Lists, 1)
	r := res.Lists[0].Rows[0]
	assert.Equal(Te, "PHI", r.Get("Torsion_angle_name"))
	assert.Equal(Te, star.Null, r.Get("Combination_ID"))
	assert.Equal(Te, star.Null, r.Get("Member_ID"))
	assert.Equal(Te, "180", r.Get("Angle_target_val"))
	assert.Equal(Te, "PHI", res.Restraint[0].Name)
	assert.Empty(Te, res.Warnings)
}

func TestDihedralMultiplicity(Te *testing.T) {
	C := newContext(Te, nil)
	sels := [4]Sel{sel("A", 14, "", "N"), sel("A", 14, "", "CA"), sel("A", 14, "", "CB"), sel("A", 14, "", "OG1")}
	n := C.Dihedral(1, sels, Bounds{Target: V(60), Lower: V(50), Upper: V(70)}, 2)
	require.Equal(Te, 2, n)
	rows := C.Finish().Lists[0].Rows
	assert.Equal(Te, "1", rows[0].Get("Combination_ID"))
	assert.Equal(Te, "2", rows[1].Get("Combination_ID"))
	assert.Equal(Te, "60", rows[0].Get("Angle_target_val"))
	assert.Equal(Te, "-120", rows[1].Get("Angle_target_val"))
	assert.Equal(Te, "-130", rows[1].Get("Angle_lower_bound_val"))
	assert.Equal(Te, "-110", rows[1].Get("Angle_upper_bound_val"))
	for _, r := range rows {
		assert.Equal(Te, "CHI1", r.Get("Torsion_angle_name"))
		assert.Equal(Te, star.Null, r.Get("Member_ID"))
	}
}

func TestDihedralPseudo(Te *testing.T) {
	C := newContext(Te, nil)
	//PSI with the middle atoms in the wrong order
	sels := [4]Sel{sel("A", 12, "", "N"), sel("A", 12, "", "C"), sel("A", 12, "", "CA"), sel("A", 13, "", "N")}
	require.Equal(Te, 1, C.Dihedral(1, sels, Bounds{Lower: V(-60), Upper: V(-20)}, 1))
	res := C.Finish()
	r := res.Lists[0].Rows[0]
	assert.Equal(Te, "PSI", r.Get("Torsion_angle_name"))
	assert.Equal(Te, "CA", col(r, "Atom_ID", 2))
	assert.Equal(Te, "C", col(r, "Atom_ID", 3))
	assert.Equal(Te, []string{UnmatchedAtomType}, kinds(res.Warnings))
}

func TestBadHBond(Te *testing.T) {
	C := newContext(Te, nil)
	n := C.HBond(3, sel("A", 5, "GLY", "CA"), sel("A", 5, "GLY", "HA"), sel("B", 8, "ASP", "OD1"), Bounds{Lower: V(1.8), Upper: V(3)})
	require.Equal(Te, 3, n)
	res := C.Finish()
	assert.Equal(Te, []string{UnmatchedAtomType}, kinds(res.Warnings))
	assert.Contains(Te, res.Warnings[0], "hydrogen bond restraints, line 3")
	require.Len(Te, res.Lists, 1)
	L := res.Lists[0]
	assert.Equal(Te, Dist, L.Subtype)
	require.Len(Te, L.Rows, 3)
	for _, r := range L.Rows {
		assert.Equal(Te, "OD1", col(r, "Atom_ID", 2))
		assert.Equal(Te, "B", col(r, "Auth_asym_ID", 2))
	}
	//the donor-acceptor distance, then either geminal proton to the acceptor
	type row struct{ comb, member, logic, atom string }
	want := []row{{"1", star.Null, "AND", "CA"}, {"2", "1", "OR", "HA2"}, {"2", "2", "OR", "HA3"}}
	for i, r := range L.Rows {
		assert.Equal(Te, want[i], row{r.Get("Combination_ID"), r.Get("Member_ID"), r.Get("Member_logic_code"), col(r, "Atom_ID", 1)})
	}
	assert.Equal(Te, 0, res.Counts[HBond])
	assert.Equal(Te, 1, res.Counts[Dist])
}

func TestHBondEveryTriple(Te *testing.T) {
	C := newContext(Te, nil)
	n := C.HBond(1, sel("A", 6, "", "NZ", "CE"), sel("A", 6, "", "HZ%"), sel("B", 8, "", "OD1"), Bounds{Lower: V(1.8), Upper: V(2.5)})
	require.Equal(Te, 3, n)
	res := C.Finish()
	require.Len(Te, res.Lists, 1)
	L := res.Lists[0]
	assert.Equal(Te, HBond, L.Subtype)
	var hs []string
	for _, r := range L.Rows {
		hs = append(hs, col(r, "Atom_ID", 1))
		assert.Equal(Te, "OD1", col(r, "Atom_ID", 2))
		//the ammonium protons are one group
		assert.Equal(Te, star.Null, r.Get("Member_ID"))
	}
	assert.Equal(Te, []string{"HZ1", "HZ2", "HZ3"}, hs)
	var left []string
	for _, w := range res.Warnings {
		if Kind(w) == UnmatchedAtomType {
			left = append(left, w)
		}
	}
	require.Len(Te, left, 1)
	assert.Contains(Te, left[0], "donor A:6:LYS:CE")
	assert.NotContains(Te, left[0], "NZ")
	assert.Equal(Te, 1, res.Counts[HBond])
	assert.Equal(Te, HBondDist, res.Restraint[0].DistType)
}

func TestGoodHBond(Te *testing.T) {
	C := newContext(Te, nil)
	n := C.HBond(1, sel("A", 14, "", "N"), sel("A", 14, "", "H"), sel("B", 8, "", "OD1"), Bounds{Lower: V(1.8), Upper: V(2.5)})
	require.Equal(Te, 1, n)
	res := C.Finish()
	L := res.Lists[0]
	assert.Equal(Te, HBond, L.Subtype)
	assert.Equal(Te, "hydrogen bond", L.ConstraintType)
	assert.Equal(Te, "H", col(L.Rows[0], "Atom_ID", 1))
	assert.Equal(Te, HBondDist, res.Restraint[0].DistType)
	//the chains are 20 A apart in the fixture
	for _, k := range kinds(res.Warnings) {
		assert.Equal(Te, RangeWarning, k)
	}
}

func TestNitroxide(Te *testing.T) {
	C := newContext(Te, nil)
	C.Enter(PRE, 1)
	F := NewFactor(Predicates{ChainIDs: []string{"A"}, SeqIDs: []int{20}, CompIDs: []string{"CYS"}, AtomIDs: []string{"O1"}})
	C.Resolve(F)
	require.Len(Te, F.Atoms, 1)
	assert.Equal(Te, "SG", F.Atoms[0].AtomID)
	assert.True(Te, F.HasNitroxide)
	assert.True(Te, F.Paramagnetic())
	assert.Equal(Te, F.Atoms, C.ParamagneticCenter())
	C.Exit()

	//the center is kept for the restraints that follow
	center := sel("A", 20, "CYS", "O1")
	require.Equal(Te, 1, C.PRE(2, []Sel{center, sel("A", 14, "", "H")}, Bounds{Target: V(20), TargetErr: V(2)}))
	require.Equal(Te, 1, C.PRE(3, []Sel{sel("A", 10, "", "H")}, Bounds{Target: V(12)}))
	assert.Equal(Te, "SG", C.ParamagneticCenter()[0].AtomID)
	//a distance from the spin label is a PRE
	require.Equal(Te, 1, C.Distance(4, sel("A", 20, "CYS", "O1"), sel("A", 11, "", "H"), Bounds{Upper: V(15)}, ""))
	res := C.Finish()
	assert.Empty(Te, res.Warnings)
	require.Len(Te, res.Lists, 1)
	assert.Equal(Te, PRE, res.Lists[0].Subtype)
	assert.Len(Te, res.Lists[0].Rows, 3)
	assert.Equal(Te, "3", res.Lists[0].Rows[2].Get("ID"))
}

func TestPCSWithoutCenter(Te *testing.T) {
	C := newContext(Te, nil)
	n := C.PCS(1, []Sel{sel("A", 14, "", "H")}, Bounds{Target: V(0.5)})
	//the row is kept, the soft diagnostic is dropped
	assert.Equal(Te, 1, n)
	assert.Empty(Te, C.Warnings())
	n = C.PCS(2, []Sel{sel("A", 14, "", "H"), sel("A", 15, "", "H"), sel("A", 16, "", "H")}, Bounds{Target: V(0.5)})
	assert.Zero(Te, n)
	assert.Equal(Te, []string{InvalidData}, kinds(C.Warnings()))
}

func shifted() []mrtest.Chain {
	return []mrtest.Chain{mrtest.Protein("A", "A", 1, 61, mrtest.SeqA)}
}

//restraints numbered 50 less than the author numbering of shifted().
func offsetRestraints(C *Context) {
	pairs := [][2]int{{23, 24}, {25, 26}, {27, 28}, {30, 31}}
	seq := mrtest.Three(mrtest.SeqA)
	for i, p := range pairs {
		s1 := sel("A", p[0], seq[p[0]-11], "HA")
		s2 := sel("A", p[1], seq[p[1]-11], "H")
		C.Distance(i+1, s1, s2, Bounds{Upper: V(5)}, "")
	}
}

func TestSequenceOffset(Te *testing.T) {
	C := newContext(Te, nil, shifted()...)
	offsetRestraints(C)
	first := C.Finish()
	assert.Contains(Te, kinds(first.Warnings), AtomNotFound)
	assert.Empty(Te, first.Lists)
	assert.Equal(Te, map[string]Offset{"A": {Scalar: 50}}, first.Reasons.GlobalAuthSequenceOffset)
	assert.Equal(Te, []string{"global_auth_sequence_offset"}, first.Reasons.Keys())

	C = newContext(Te, first.Reasons, shifted()...)
	offsetRestraints(C)
	second := C.Finish()
	assert.NotContains(Te, kinds(second.Warnings), AtomNotFound)
	require.Len(Te, second.Lists, 1)
	rows := second.Lists[0].Rows
	require.Len(Te, rows, 4)
	assert.Equal(Te, "73", col(rows[0], "Auth_seq_ID", 1))
	assert.Equal(Te, "13", col(rows[0], "Seq_ID", 1))
	//the published hypotheses do not grow
	for _, k := range second.Reasons.Keys() {
		assert.True(Te, first.Reasons.Has(k) || isTerminal(k), k)
	}
}

func isTerminal(k string) bool {
	for _, t := range terminal {
		if t == k {
			return true
		}
	}
	return false
}

func TestCircularShift(Te *testing.T) {
	C := newContext(Te, nil)
	sels := [4]Sel{sel("A", 10, "", "C"), sel("A", 11, "", "N"), sel("A", 11, "", "CA"), sel("A", 11, "", "C")}
	require.Equal(Te, 1, C.Dihedral(1, sels, Bounds{Target: V(540), Lower: V(530), Upper: V(550)}, 1))
	res := C.Finish()
	r := res.Lists[0].Rows[0]
	assert.Equal(Te, "180", r.Get("Angle_target_val"))
	assert.Equal(Te, "170", r.Get("Angle_lower_bound_val"))
	assert.Equal(Te, "190", r.Get("Angle_upper_bound_val"))
	require.Len(Te, res.Warnings, 1)
	assert.Equal(Te, RangeWarning, Kind(res.Warnings[0]))
	assert.Contains(Te, res.Warnings[0], "shifted by -360 degrees")
}

func TestMethylNotAmbiguous(Te *testing.T) {
	C := newContext(Te, nil)
	require.Equal(Te, 3, C.Distance(1, sel("A", 14, "", "HG2%"), sel("A", 10, "", "HA"), Bounds{Upper: V(6)}, ""))
	for _, r := range C.Finish().Lists[0].Rows {
		assert.Equal(Te, star.Null, r.Get("Member_ID"))
		assert.Equal(Te, star.Null, r.Get("Member_logic_code"))
	}
}

func TestRejected(Te *testing.T) {
	C := newContext(Te, nil)
	//an atom that does not exist
	assert.Zero(Te, C.Distance(1, sel("A", 10, "", "XX"), sel("A", 14, "", "H"), Bounds{Upper: V(5)}, ""))
	//a bad upper limit
	assert.Zero(Te, C.Distance(2, sel("A", 10, "", "HA"), sel("A", 14, "", "H"), Bounds{Lower: V(6), Upper: V(5)}, ""))
	//the same atom on both sides
	assert.Zero(Te, C.Distance(3, sel("A", 10, "", "HA"), sel("A", 10, "", "HA"), Bounds{Upper: V(5)}, ""))
	require.Equal(Te, 1, C.Distance(4, sel("A", 10, "", "HA"), sel("A", 14, "", "H"), Bounds{Upper: V(5)}, ""))
	res := C.Finish()
	assert.Equal(Te, []string{AtomNotFound, RangeError, InvalidData}, kinds(res.Warnings))
	//rejected restraints release their number
	assert.Equal(Te, "1", res.Lists[0].Rows[0].Get("ID"))
	assert.Equal(Te, 4, res.Restraint[0].Line)
	assert.True(Te, strings.HasPrefix(res.Warnings[0], AtomNotFound+" [Check the 1st row of distance restraints, line 1]"))
}

func TestWarningsUnique(Te *testing.T) {
	C := newContext(Te, nil)
	C.Enter(Dist, 1)
	C.fatal(RangeWarning, "same")
	C.fatal(UnmatchedAtomType, "other")
	C.fatal(RangeWarning, "same")
	C.Exit()
	W := C.Warnings()
	assert.Len(Te, W, 2)
	assert.Equal(Te, RangeWarning, Kind(W[0]))
	assert.Equal(Te, UnmatchedAtomType, Kind(W[1]))
}

func TestGeneric(Te *testing.T) {
	C := newContext(Te, nil)
	assert.Equal(Te, 1, C.Generic(CS, 1, []Sel{sel("A", 14, "", "H")}, Bounds{Target: V(8.2)}))
	assert.Zero(Te, C.Generic(CCR, 2, []Sel{sel("A", 14, "", "H")}, Bounds{Target: V(1)}))
	assert.Equal(Te, 1, C.RDC(3, sel("A", 14, "", "N"), sel("A", 14, "", "H"), Bounds{Target: V(-12.5), TargetErr: V(1)}))
	res := C.Finish()
	assert.Equal(Te, []string{InvalidData}, kinds(res.Warnings))
	require.Len(Te, res.Lists, 2)
	assert.Equal(Te, "8.2", res.Lists[0].Rows[0].Get("Val"))
	assert.Equal(Te, "-12.5", res.Lists[1].Rows[0].Get("RDC_val"))
	assert.Equal(Te, 2, res.Lists[1].ID)
}

func TestChi2Realism(Te *testing.T) {
	C := newContext(Te, nil)
	key := func(cd string) [4]chem.AtomKey {
		var k [4]chem.AtomKey
		for i, a := range []string{"CA", "CB", "CG", cd} {
			k[i] = chem.AtomKey{Chain: "A", Seq: 4, Atom: a}
		}
		return k
	}
	o1, ok1 := C.model.DihedralOf(key("CD1"))
	o2, ok2 := C.model.DihedralOf(key("CD2"))
	require.True(Te, ok1 && ok2)
	require.Greater(Te, chem.AngleDiff(o1, o2), 5.0)
	cases := []struct {
		atom string
		obs  float64
		turn bool
	}{
		{"CD1", o1, false},
		{"CD2", o1, false},
		{"CD1", o2, true},
		{"CD2", o2, true},
	}
	var want []string
	for i, c := range cases {
		b := Bounds{Target: V(math.Round(c.obs))}
		sels := [4]Sel{sel("A", 4, "", "CA"), sel("A", 4, "", "CB"), sel("A", 4, "", "CG"), sel("A", 4, "", c.atom)}
		require.Equal(Te, 1, C.Dihedral(i+1, sels, b, 1), c)
		ref := newContext(Te, nil)
		ref.Enter(Dihed, 1)
		D := ref.Validate(b)
		require.NotNil(Te, D)
		if c.turn {
			D = turned(D, 180)
		}
		want = append(want, D.Target)
	}
	res := C.Finish()
	require.Len(Te, res.Lists, 1)
	require.Len(Te, res.Lists[0].Rows, len(cases))
	for i, r := range res.Lists[0].Rows {
		assert.Equal(Te, "CHI2", r.Get("Torsion_angle_name"), cases[i])
		//the ring is always expressed on CD1
		assert.Equal(Te, "CD1", col(r, "Atom_ID", 4), cases[i])
		assert.Equal(Te, want[i], r.Get("Angle_target_val"), cases[i])
	}
}

func TestPlaneLikeTorsion(Te *testing.T) {
	C := newContext(Te, nil)
	cases := []struct {
		atoms  [4]string
		lo, hi float64
		name   string
	}{
		{[4]string{"O", "C", "N", "H"}, -10, 10, "PPA"},
		{[4]string{"H", "N", "C", "O"}, 170, 190, "PPA"},
		{[4]string{"O", "C", "N", "H"}, 50, 70, "."},
		{[4]string{"CA", "C", "N", "CA"}, -10, 10, "OMEGA"},
	}
	for i, c := range cases {
		seqs := [4]int{10, 10, 11, 11}
		if c.atoms[0] == "H" {
			seqs = [4]int{11, 11, 10, 10}
		}
		var sels [4]Sel
		for j := range sels {
			sels[j] = sel("A", seqs[j], "", c.atoms[j])
		}
		require.Equal(Te, 1, C.Dihedral(i+1, sels, Bounds{Lower: V(c.lo), Upper: V(c.hi)}, 1), c)
	}
	res := C.Finish()
	require.Len(Te, res.Restraint, len(cases))
	for i, c := range cases {
		assert.Equal(Te, c.name, res.Restraint[i].Name, c)
	}
}
