package schrodinger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmera/mrchem/ccd"
	"github.com/rmera/mrchem/mr"
	"github.com/rmera/mrchem/mr/mrtest"
)

func newListener(Te *testing.T) *Listener {
	Te.Helper()
	C := mr.NewContext(mrtest.Model(Te), ccd.New(), mr.DefaultOptions(), nil)
	return NewListener(C, nil)
}

func atom(chain, res, name string) *Selection {
	return &Selection{Attrs: map[string]string{"chain.name": chain, "res.num": res, "atom.ptype": name}}
}

func kinds(msgs []string) []string {
	var ret []string
	for _, m := range msgs {
		ret = append(ret, mr.Kind(m))
	}
	return ret
}

func TestPredicates(Te *testing.T) {
	p, err := Predicates(map[string]string{"chain.name": "A, B", "res.num": "10-12", "atom.ptype": "hb%"})
	require.NoError(Te, err)
	assert.Equal(Te, []string{"A", "B"}, p.ChainIDs)
	assert.Equal(Te, mr.IntRangePattern(10, 12), p.SeqPattern)
	assert.Empty(Te, p.SeqIDs)
	assert.Equal(Te, []string{"HB%"}, p.AtomIDs)
	assert.False(Te, p.SeqNotSpecified)
	assert.False(Te, p.AtomNotSpecified)

	p, err = Predicates(map[string]string{"res.num": "1,3-4, 7", "res.ptype": "AL*", "atom.name": "'H?'"})
	require.NoError(Te, err)
	assert.Empty(Te, p.SeqIDs)
	assert.Equal(Te, mr.IntRangesPattern([2]int{1, 1}, [2]int{3, 4}, [2]int{7, 7}), p.SeqPattern)
	assert.Equal(Te, "1,3-4,7", p.SeqPattern.String())
	for n, want := range map[int]bool{1: true, 2: false, 4: true, 7: true, 8: false} {
		assert.Equal(Te, want, p.SeqPattern.MatchInt(n), n)
	}
	assert.Equal(Te, mr.Regex, p.CompPattern.Kind)
	assert.True(Te, p.CompPattern.Match("ALA"))
	assert.False(Te, p.CompPattern.Match("GLY"))
	assert.True(Te, p.AtomPattern.Match("HA"))
	assert.False(Te, p.AtomPattern.Match("HB2"))
	assert.Empty(Te, p.AtomIDs)

	p, err = Predicates(map[string]string{"res.num": "1, 7"})
	require.NoError(Te, err)
	assert.Equal(Te, []int{1, 7}, p.SeqIDs)
	assert.False(Te, p.SeqPattern.IsSet())

	p, err = Predicates(map[string]string{"atom.ele": "n", "mol.num": "2"})
	require.NoError(Te, err)
	assert.Equal(Te, []string{"N"}, p.TypeSymbols)
	assert.Equal(Te, "2", p.SegmentID)
	assert.True(Te, p.SeqNotSpecified)
	assert.False(Te, p.AtomNotSpecified)

	p, err = Predicates(map[string]string{"res.pdbnam": "GLY"})
	require.NoError(Te, err)
	assert.Equal(Te, []string{"GLY"}, p.CompIDs)
	assert.True(Te, p.AtomNotSpecified)

	for _, bad := range []map[string]string{
		{"res.sec": "helix"},
		{"chain.name": " "},
		{"res.num": "12-10"},
		{"res.num": "1-20000"},
		{"res.num": "5, 1-20000"},
		{"res.num": "x"},
	} {
		_, err = Predicates(bad)
		assert.Error(Te, err, bad)
	}
}

func TestSelectionTree(Te *testing.T) {
	S := &Selection{And: []*Selection{
		atom("A", "10", "CA"),
		{Not: &Selection{Or: []*Selection{atom("A", "11", "CA"), {All: true}}}},
	}}
	s, err := S.Sel()
	require.NoError(Te, err)
	and, ok := s.(mr.And)
	require.True(Te, ok)
	assert.IsType(Te, mr.Atoms{}, and.L)
	not, ok := and.R.(mr.Not)
	require.True(Te, ok)
	or, ok := not.S.(mr.Or)
	require.True(Te, ok)
	assert.True(Te, or.R.(mr.Atoms).F.Universe)

	//one operand needs no operator
	s, err = (&Selection{Or: []*Selection{atom("A", "10", "CA")}}).Sel()
	require.NoError(Te, err)
	assert.IsType(Te, mr.Atoms{}, s)

	_, err = (&Selection{}).Sel()
	assert.Error(Te, err)
	_, err = (&Selection{And: []*Selection{atom("A", "10", "CA"), {}}}).Sel()
	assert.Error(Te, err)
}

func TestDistance(Te *testing.T) {
	L := newListener(Te)
	n, err := L.Enter(&Entity{Kind: FXDI, Line: 3, Numbers: []float64{1, 2, 5},
		Selections: []*Selection{atom("A", "10", "HB%"), atom("A", "14", "H")}})
	require.NoError(Te, err)
	assert.Equal(Te, 2, n)
	res := L.C.Finish()
	assert.Empty(Te, res.Warnings)
	require.Len(Te, res.Lists, 1)
	r := res.Lists[0].Rows[0]
	assert.Equal(Te, "2.000", r.Get("Distance_lower_bound_val"))
	assert.Equal(Te, "5.000", r.Get("Distance_upper_bound_val"))
	assert.Equal(Te, "1", r.Get("Weight"))
	assert.Equal(Te, 3, res.Restraint[0].Line)
}

func TestTorsion(Te *testing.T) {
	L := newListener(Te)
	phi := []*Selection{atom("A", "10", "C"), atom("A", "11", "N"), atom("A", "11", "CA"), atom("A", "11", "C")}
	n, err := L.Enter(&Entity{Kind: FXTA, Line: 1, Numbers: []float64{1, -60, 20}, Selections: phi})
	require.NoError(Te, err)
	require.Equal(Te, 1, n)

	chi1 := []*Selection{atom("A", "14", "N"), atom("A", "14", "CA"), atom("A", "14", "CB"), atom("A", "14", "OG1")}
	n, err = L.Enter(&Entity{Kind: FXTA, Line: 2, Numbers: []float64{1, 60, 10, 2}, Selections: chi1})
	require.NoError(Te, err)
	assert.Equal(Te, 2, n)

	n, err = L.Enter(&Entity{Kind: FXTA, Line: 3, Numbers: []float64{1, 60, 10, 2.5}, Selections: chi1})
	require.NoError(Te, err)
	assert.Zero(Te, n)

	angle := []*Selection{atom("A", "11", "N"), atom("A", "11", "CA"), atom("A", "11", "C")}
	n, err = L.Enter(&Entity{Kind: FXBA, Line: 4, Numbers: []float64{1, 110, 5}, Selections: angle})
	require.NoError(Te, err)
	assert.Equal(Te, 1, n)

	res := L.C.Finish()
	assert.Contains(Te, kinds(res.Warnings), mr.InvalidData)
	require.Len(Te, res.Lists, 2)
	rows := res.Lists[0].Rows
	require.Len(Te, rows, 3)
	assert.Equal(Te, "PHI", rows[0].Get("Torsion_angle_name"))
	assert.Equal(Te, "-60", rows[0].Get("Angle_target_val"))
	assert.Equal(Te, "-80", rows[0].Get("Angle_lower_bound_val"))
	assert.Equal(Te, "-40", rows[0].Get("Angle_upper_bound_val"))
	assert.Equal(Te, "CHI1", rows[2].Get("Torsion_angle_name"))
	assert.Equal(Te, mr.Ang, res.Lists[1].Subtype)
}

func TestHBond(Te *testing.T) {
	L := newListener(Te)
	n, err := L.Enter(&Entity{Kind: FXHB, Line: 1, Numbers: []float64{1, 1.8, 2.5},
		Selections: []*Selection{atom("A", "14", "N"), atom("A", "14", "H"), atom("B", "8", "OD1")}})
	require.NoError(Te, err)
	assert.Equal(Te, 1, n)
	res := L.C.Finish()
	assert.Equal(Te, mr.HBond, res.Lists[0].Subtype)
}

func TestParamagnetic(Te *testing.T) {
	L := newListener(Te)
	gd := &Selection{Attrs: map[string]string{"chain.name": "B", "res.num": "8", "atom.name": "GD"}}
	n, err := L.Enter(&Entity{Kind: FXPCS, Line: 1, Numbers: []float64{0.5, 0.05}, Selections: []*Selection{gd, atom("A", "14", "H")}})
	require.NoError(Te, err)
	assert.Equal(Te, 1, n)
	require.NotEmpty(Te, L.C.ParamagneticCenter())
	assert.Equal(Te, "OD1", L.C.ParamagneticCenter()[0].AtomID)

	n, err = L.Enter(&Entity{Kind: FXPCS, Line: 2, Numbers: []float64{-0.3}, Selections: []*Selection{atom("A", "15", "H")}})
	require.NoError(Te, err)
	assert.Equal(Te, 1, n)

	n, err = L.Enter(&Entity{Kind: FXRDC, Line: 3, Numbers: []float64{-12.5},
		Selections: []*Selection{atom("A", "14", "N"), atom("A", "14", "H")}})
	require.NoError(Te, err)
	assert.Equal(Te, 1, n)

	res := L.C.Finish()
	assert.Empty(Te, res.Warnings)
	require.Len(Te, res.Lists, 2)
	assert.Equal(Te, mr.PCS, res.Lists[0].Subtype)
	assert.Len(Te, res.Lists[0].Rows, 2)
}

func TestMalformed(Te *testing.T) {
	L := newListener(Te)
	two := []*Selection{atom("A", "10", "HA"), atom("A", "14", "H")}
	cases := []struct {
		e    *Entity
		kind string
	}{
		{&Entity{Kind: FXDI, Numbers: []float64{1, 2, 5}, Selections: two[:1]}, mr.InvalidData},
		{&Entity{Kind: FXDI, Numbers: []float64{1, 2}, Selections: two}, mr.MissingData},
		{&Entity{Kind: FXBA, Numbers: []float64{1, 110, 5, 1}, Selections: two}, mr.InvalidData},
		{&Entity{Kind: FXDI, Numbers: []float64{1, 2, 5}, Selections: []*Selection{two[0], {Attrs: map[string]string{"res.sec": "helix"}}}}, mr.UnsupportedData},
	}
	for i, c := range cases {
		c.e.Line = i + 1
		n, err := L.Enter(c.e)
		require.NoError(Te, err)
		assert.Zero(Te, n, c.e)
	}
	want := make([]string, len(cases))
	for i, c := range cases {
		want[i] = c.kind
	}
	assert.Equal(Te, want, kinds(L.C.Warnings()))
}

func TestRun(Te *testing.T) {
	L := newListener(Te)
	ents := []*Entity{
		{Kind: "FXXX", Line: 1},
		{Kind: FXDI, Line: 2, Numbers: []float64{1, 2, 5}, Selections: []*Selection{atom("A", "10", "HA"), atom("A", "14", "H")}},
	}
	res, err := L.Run(ents)
	require.Error(Te, err)
	assert.True(Te, errors.Is(err, ErrUnknownKind))
	require.NotNil(Te, res)
	require.Len(Te, res.Lists, 1)
	assert.Len(Te, res.Lists[0].Rows, 1)
	assert.Equal(Te, 1, res.Counts[mr.Dist])
}
