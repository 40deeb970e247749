package mr

import (
	"encoding/json"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmera/mrchem/align"
)

func TestArbitrateOffsets(Te *testing.T) {
	ev := newEvidence()
	ev.vote("A", []int{40, 50})
	ev.vote("A", []int{50, 43, 50})
	R := Arbitrate(ev, nil, nil, nil)
	assert.Equal(Te, map[string]Offset{"A": {Scalar: 50}}, R.GlobalAuthSequenceOffset)
	assert.Nil(Te, R.AltGlobalSequenceOffset)

	//two offsets explain every miss equally well
	ev = newEvidence()
	ev.vote("A", []int{10, 20})
	ev.vote("A", []int{20, 10})
	R = Arbitrate(ev, nil, nil, nil)
	assert.Nil(Te, R.GlobalAuthSequenceOffset)
	assert.Equal(Te, map[string][]int{"A": {10, 20}}, R.AltGlobalSequenceOffset)

	//no offset fits every miss, the most voted one wins
	ev = newEvidence()
	for _, c := range [][]int{{5}, {5, 9}, {5}, {7}} {
		ev.vote("B", c)
	}
	assert.Empty(Te, ev.Offsets["B"])
	R = Arbitrate(ev, nil, nil, nil)
	assert.Equal(Te, map[string]Offset{"B": {Scalar: 5}}, R.GlobalAuthSequenceOffset)

	//a single stray vote is not enough
	ev = newEvidence()
	ev.vote("B", []int{5})
	ev.vote("B", []int{7})
	ev.vote("B", []int{9})
	R = Arbitrate(ev, nil, nil, nil)
	assert.True(Te, R.Empty())
}

func TestArbitrateLabelScheme(Te *testing.T) {
	cases := []struct {
		label, auth int
		ids         []int
		want        []string
	}{
		{1, 5, []int{3}, []string{"local_seq_scheme"}},
		{2, 5, []int{1, 2}, []string{"inhibit_label_seq_scheme", "inhibit_label_seq_scheme_stats"}},
		{3, 0, []int{1, 2, 3}, []string{"label_seq_scheme"}},
		{3, 3, []int{1, 2}, []string{"label_seq_scheme"}},
	}
	for _, c := range cases {
		ev := newEvidence()
		ev.LabelHits[Dist], ev.AuthHits[Dist] = c.label, c.auth
		ev.LabelRestraints[Dist] = c.ids
		R := Arbitrate(ev, nil, nil, nil)
		assert.Equal(Te, c.want, R.Keys(), c)
	}
	ev := newEvidence()
	ev.LabelHits[Dist], ev.AuthHits[Dist] = 1, 5
	ev.LabelRestraints[Dist] = []int{3}
	assert.Equal(Te, map[string]bool{"dist:3": true}, Arbitrate(ev, nil, nil, nil).LocalSeqScheme)
	ev.LabelRestraints[Dist] = []int{3, 4}
	ev.LabelHits[Dist] = 2
	assert.Equal(Te, map[string]map[string]int{Dist: {"auth": 5, "label": 2}}, Arbitrate(ev, nil, nil, nil).InhibitLabelSeqSchemeStats)
}

func TestArbitrateChains(Te *testing.T) {
	ev := newEvidence()
	ev.ChainMiss["X"] = 2
	R := Arbitrate(ev, nil, nil, nil)
	assert.Equal(Te, map[string]bool{"X": true}, R.UninterpretableChainID)

	asg := []*align.Assignment{{RefChain: "A", TestChain: "X", SeqID: map[int]int{1: 1, 2: 2}, Ambiguous: []string{"B"}}}
	R = Arbitrate(ev, asg, nil, nil)
	assert.Nil(Te, R.UninterpretableChainID)
	assert.Equal(Te, map[int]SeqRef{1: {"A", 1}, 2: {"A", 2}}, R.ChainIDRemap)
	assert.Equal(Te, map[string][]string{"X": {"A", "B"}}, R.ChainIDClone)

	R = Arbitrate(ev, nil, []string{"X"}, nil)
	assert.Equal(Te, map[string]bool{"X": true}, R.UninterpretableChainID)
}

func TestArbitrateAlignment(Te *testing.T) {
	ev := newEvidence()
	ev.vote("A", nil)
	asg := []*align.Assignment{{RefChain: "A", TestChain: "A", SeqID: map[int]int{1: 11, 2: 12, 3: 13}}}
	R := Arbitrate(ev, asg, nil, nil)
	assert.Equal(Te, map[string]Offset{"A": {Scalar: 10}}, R.GlobalSequenceOffset)

	asg[0].SeqID = map[int]int{1: 11, 5: 20}
	R = Arbitrate(ev, asg, nil, nil)
	assert.Equal(Te, map[string]Offset{"A": {PerRes: map[int]int{1: 10, 5: 15}}}, R.GlobalSequenceOffset)
	off, ok := R.offsetOf("A", 5)
	assert.True(Te, ok)
	assert.Equal(Te, 15, off)
	_, ok = R.offsetOf("A", 2)
	assert.False(Te, ok)

	//the offset of the chain leaves nothing to extend
	ev.addExtend("A", 30, "ALA")
	R = Arbitrate(ev, asg, nil, nil)
	assert.Nil(Te, R.ExtendSeqScheme)
}

func TestArbitrateSegments(Te *testing.T) {
	ev := newEvidence()
	ev.SegStats = map[string]map[string]int{"S1": {"A": 3, "B": 1}, "S2": {"B": 2}}
	R := Arbitrate(ev, nil, nil, nil)
	assert.Equal(Te, map[string]string{"S1": "A", "S2": "B"}, R.SegmentIDMismatch)
	assert.True(Te, R.AssertUniqSegmentID)

	//two segments on one chain
	ev.SegStats = map[string]map[string]int{"S1": {"A": 3}, "S2": {"A": 2}}
	R = Arbitrate(ev, nil, nil, nil)
	assert.Equal(Te, map[string]string{"S1": "A"}, R.SegmentIDMismatch)
	assert.False(Te, R.AssertUniqSegmentID)

	//segments named as the chains need nothing
	ev.SegStats = map[string]map[string]int{"A": {"A": 3}}
	assert.True(Te, Arbitrate(ev, nil, nil, nil).Empty())
}

func TestArbitrateNonPolymers(Te *testing.T) {
	ev := newEvidence()
	ev.addNpSeq("A", 1, 101)
	ev.addNonPoly("ZN", 5, SeqRef{"A", 101})
	in := &Reasons{LocalSeqScheme: map[string]bool{"dist:3": true}, NpSeqIDRemap: map[string]map[int]int{"A": {1: 101}}}
	R := Arbitrate(ev, nil, nil, in)
	assert.Nil(Te, R.LocalSeqScheme)
	assert.Equal(Te, map[string]map[int]int{"A": {1: 101}}, R.NpSeqIDRemap)
	//only what the pass received survives
	assert.Nil(Te, R.NonPolyRemap)
	assert.NotNil(Te, in.LocalSeqScheme)
}

func TestArbitrateRestrict(Te *testing.T) {
	in := &Reasons{LabelSeqScheme: map[string]bool{Dist: true}}
	ev := newEvidence()
	ev.AuthHits[Dist] = 3
	ev.vote("A", []int{5})
	ev.vote("A", []int{5})
	R := Arbitrate(ev, nil, nil, in)
	assert.Equal(Te, []string{"label_seq_scheme", "assert_label_seq_scheme"}, R.Keys())
	assert.Nil(Te, in.AssertLabelSeqScheme)

	//nothing new is learned from a quiet pass
	first := &Reasons{
		GlobalAuthSequenceOffset: map[string]Offset{"A": {Scalar: 50}},
		SegmentIDMismatch:        map[string]string{"S1": "A"},
	}
	R = Arbitrate(newEvidence(), nil, nil, first)
	allowed := append(first.Keys(), terminal...)
	for _, k := range R.Keys() {
		assert.True(Te, slices.Contains(allowed, k), k)
	}
	if diff := cmp.Diff(first, R); diff != "" {
		Te.Errorf("reasons changed by an empty pass (-want +got):\n%s", diff)
	}
}

func TestOffsetJSON(Te *testing.T) {
	b, err := json.Marshal(map[string]Offset{"A": {Scalar: 50}, "B": {PerRes: map[int]int{3: -2}}})
	require.NoError(Te, err)
	assert.JSONEq(Te, `{"A": 50, "B": {"3": -2}}`, string(b))

	var m map[string]Offset
	require.NoError(Te, json.Unmarshal(b, &m))
	assert.Equal(Te, Offset{Scalar: 50}, m["A"])
	v, ok := m["B"].Of(3)
	assert.True(Te, ok)
	assert.Equal(Te, -2, v)

	var O Offset
	assert.Error(Te, json.Unmarshal([]byte(`"x"`), &O))
	assert.Error(Te, json.Unmarshal([]byte(`{"x": 1}`), &O))
}

func TestReasonsClone(Te *testing.T) {
	var R *Reasons
	assert.Nil(Te, R.Keys())
	assert.True(Te, R.Empty())
	assert.Nil(Te, R.Clone())

	R = &Reasons{
		SeqIDRemap:          map[string]map[int]int{"A": {1: 2}},
		AssertUniqSegmentID: true,
	}
	C := R.Clone()
	C.SeqIDRemap["A"][1] = 3
	assert.Equal(Te, 2, R.SeqIDRemap["A"][1])
	assert.True(Te, C.Has("assert_uniq_segment_id"))
	assert.Equal(Te, []string{"seq_id_remap", "assert_uniq_segment_id"}, C.Keys())
}
