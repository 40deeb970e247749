/*
 * reasons.go, part of mrchem.
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
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strconv"
)

// Offset is a sequence shift, model = file + offset. It is either one value
// for the whole chain or one per residue when gaps split the chain.
type Offset struct {
	Scalar int
	PerRes map[int]int
}

// Of returns the offset for the file sequence number s.
func (O Offset) Of(s int) (int, bool) {
	if O.PerRes == nil {
		return O.Scalar, true
	}
	v, ok := O.PerRes[s]
	return v, ok
}

func (O Offset) MarshalJSON() ([]byte, error) {
	if O.PerRes == nil {
		return json.Marshal(O.Scalar)
	}
	m := make(map[string]int, len(O.PerRes))
	for k, v := range O.PerRes {
		m[strconv.Itoa(k)] = v
	}
	return json.Marshal(m)
}

func (O *Offset) UnmarshalJSON(b []byte) error {
	var s int
	if err := json.Unmarshal(b, &s); err == nil {
		O.Scalar, O.PerRes = s, nil
		return nil
	}
	var m map[string]int
	if err := json.Unmarshal(b, &m); err != nil {
		return fmt.Errorf("mr: offset must be a number or an object: %w", err)
	}
	O.PerRes = make(map[int]int, len(m))
	for k, v := range m {
		i, err := strconv.Atoi(k)
		if err != nil {
			return fmt.Errorf("mr: offset key %q: %w", k, err)
		}
		O.PerRes[i] = v
	}
	return nil
}

// SeqRef is a residue of the model.
type SeqRef struct {
	ChainID string `json:"chain_id"`
	SeqID   int    `json:"seq_id"`
}

// Reasons are the hypotheses for re-parsing a restraint file. Each field is
// one hypothesis; nil or false fields are absent.
type Reasons struct {
	LabelSeqScheme             map[string]bool           `json:"label_seq_scheme,omitempty"`
	LocalSeqScheme             map[string]bool           `json:"local_seq_scheme,omitempty"`
	LabelSeqOffset             map[string]int            `json:"label_seq_offset,omitempty"`
	GlobalSequenceOffset       map[string]Offset         `json:"global_sequence_offset,omitempty"`
	GlobalAuthSequenceOffset   map[string]Offset         `json:"global_auth_sequence_offset,omitempty"`
	SegmentIDMismatch          map[string]string         `json:"segment_id_mismatch,omitempty"`
	SegmentIDMatchStats        map[string]map[string]int `json:"segment_id_match_stats,omitempty"`
	ChainIDRemap               map[int]SeqRef            `json:"chain_id_remap,omitempty"`
	NonPolyRemap               map[string]map[int]SeqRef `json:"non_poly_remap,omitempty"`
	NpSeqIDRemap               map[string]map[int]int    `json:"np_seq_id_remap,omitempty"`
	NpAtomIDRemap              map[string]SeqRef         `json:"np_atom_id_remap,omitempty"`
	ChainIDClone               map[string][]string       `json:"chain_id_clone,omitempty"`
	ModelChainIDExt            map[string][]string       `json:"model_chain_id_ext,omitempty"`
	SeqIDRemap                 map[string]map[int]int    `json:"seq_id_remap,omitempty"`
	ExtendSeqScheme            map[string]map[int]string `json:"extend_seq_scheme,omitempty"`
	BranchedRemap              map[int]SeqRef            `json:"branched_remap,omitempty"`
	AssertLabelSeqScheme       map[string]bool           `json:"assert_label_seq_scheme,omitempty"`
	AssertUniqSegmentID        bool                      `json:"assert_uniq_segment_id,omitempty"`
	InhibitLabelSeqScheme      map[string]bool           `json:"inhibit_label_seq_scheme,omitempty"`
	InhibitLabelSeqSchemeStats map[string]map[string]int `json:"inhibit_label_seq_scheme_stats,omitempty"`
	AltGlobalSequenceOffset    map[string][]int          `json:"alt_global_sequence_offset,omitempty"`
	UninterpretableChainID     map[string]bool           `json:"uninterpretable_chain_id,omitempty"`
}

// terminal hypotheses may be published by a pass that received reasons.
var terminal = []string{"assert_label_seq_scheme", "assert_uniq_segment_id", "inhibit_label_seq_scheme",
	"inhibit_label_seq_scheme_stats", "uninterpretable_chain_id", "segment_id_match_stats"}

// Keys returns the names of the hypotheses present, in declaration order.
func (R *Reasons) Keys() []string {
	if R == nil {
		return nil
	}
	var ret []string
	add := func(name string, present bool) {
		if present {
			ret = append(ret, name)
		}
	}
	add("label_seq_scheme", len(R.LabelSeqScheme) > 0)
	add("local_seq_scheme", len(R.LocalSeqScheme) > 0)
	add("label_seq_offset", len(R.LabelSeqOffset) > 0)
	add("global_sequence_offset", len(R.GlobalSequenceOffset) > 0)
	add("global_auth_sequence_offset", len(R.GlobalAuthSequenceOffset) > 0)
	add("segment_id_mismatch", len(R.SegmentIDMismatch) > 0)
	add("segment_id_match_stats", len(R.SegmentIDMatchStats) > 0)
	add("chain_id_remap", len(R.ChainIDRemap) > 0)
	add("non_poly_remap", len(R.NonPolyRemap) > 0)
	add("np_seq_id_remap", len(R.NpSeqIDRemap) > 0)
	add("np_atom_id_remap", len(R.NpAtomIDRemap) > 0)
	add("chain_id_clone", len(R.ChainIDClone) > 0)
	add("model_chain_id_ext", len(R.ModelChainIDExt) > 0)
	add("seq_id_remap", len(R.SeqIDRemap) > 0)
	add("extend_seq_scheme", len(R.ExtendSeqScheme) > 0)
	add("branched_remap", len(R.BranchedRemap) > 0)
	add("assert_label_seq_scheme", len(R.AssertLabelSeqScheme) > 0)
	add("assert_uniq_segment_id", R.AssertUniqSegmentID)
	add("inhibit_label_seq_scheme", len(R.InhibitLabelSeqScheme) > 0)
	add("inhibit_label_seq_scheme_stats", len(R.InhibitLabelSeqSchemeStats) > 0)
	add("alt_global_sequence_offset", len(R.AltGlobalSequenceOffset) > 0)
	add("uninterpretable_chain_id", len(R.UninterpretableChainID) > 0)
	return ret
}

// Empty reports whether there is no hypothesis.
func (R *Reasons) Empty() bool {
	return len(R.Keys()) == 0
}

// Has reports whether the named hypothesis is present.
func (R *Reasons) Has(key string) bool {
	return slices.Contains(R.Keys(), key)
}

// restrict removes every hypothesis not named in keys.
func (R *Reasons) restrict(keys []string) {
	keep := func(k string) bool { return slices.Contains(keys, k) }
	if !keep("label_seq_scheme") {
		R.LabelSeqScheme = nil
	}
	if !keep("local_seq_scheme") {
		R.LocalSeqScheme = nil
	}
	if !keep("label_seq_offset") {
		R.LabelSeqOffset = nil
	}
	if !keep("global_sequence_offset") {
		R.GlobalSequenceOffset = nil
	}
	if !keep("global_auth_sequence_offset") {
		R.GlobalAuthSequenceOffset = nil
	}
	if !keep("segment_id_mismatch") {
		R.SegmentIDMismatch = nil
	}
	if !keep("segment_id_match_stats") {
		R.SegmentIDMatchStats = nil
	}
	if !keep("chain_id_remap") {
		R.ChainIDRemap = nil
	}
	if !keep("non_poly_remap") {
		R.NonPolyRemap = nil
	}
	if !keep("np_seq_id_remap") {
		R.NpSeqIDRemap = nil
	}
	if !keep("np_atom_id_remap") {
		R.NpAtomIDRemap = nil
	}
	if !keep("chain_id_clone") {
		R.ChainIDClone = nil
	}
	if !keep("model_chain_id_ext") {
		R.ModelChainIDExt = nil
	}
	if !keep("seq_id_remap") {
		R.SeqIDRemap = nil
	}
	if !keep("extend_seq_scheme") {
		R.ExtendSeqScheme = nil
	}
	if !keep("branched_remap") {
		R.BranchedRemap = nil
	}
	if !keep("assert_label_seq_scheme") {
		R.AssertLabelSeqScheme = nil
	}
	if !keep("assert_uniq_segment_id") {
		R.AssertUniqSegmentID = false
	}
	if !keep("inhibit_label_seq_scheme") {
		R.InhibitLabelSeqScheme = nil
	}
	if !keep("inhibit_label_seq_scheme_stats") {
		R.InhibitLabelSeqSchemeStats = nil
	}
	if !keep("alt_global_sequence_offset") {
		R.AltGlobalSequenceOffset = nil
	}
	if !keep("uninterpretable_chain_id") {
		R.UninterpretableChainID = nil
	}
}

// Clone returns a deep copy of the reasons.
func (R *Reasons) Clone() *Reasons {
	if R == nil {
		return nil
	}
	b, err := json.Marshal(R)
	if err != nil {
		panic(PanicMsg("cloning reasons: " + err.Error()))
	}
	ret := new(Reasons)
	if err := json.Unmarshal(b, ret); err != nil {
		panic(PanicMsg("cloning reasons: " + err.Error()))
	}
	return ret
}

// offsetOf returns the offset for the file residue s of chain, first from
// global_auth_sequence_offset, then from global_sequence_offset.
func (R *Reasons) offsetOf(chain string, s int) (int, bool) {
	if R == nil {
		return 0, false
	}
	if o, ok := R.GlobalAuthSequenceOffset[chain]; ok {
		if v, ok := o.Of(s); ok {
			return v, true
		}
	}
	if o, ok := R.GlobalSequenceOffset[chain]; ok {
		return o.Of(s)
	}
	return 0, false
}

func sortedKeys[K string | int, V any](m map[K]V) []K {
	return slices.Sorted(maps.Keys(m))
}

// PanicMsg is the type of the panics of this package, for programmer errors.
type PanicMsg string

func (v PanicMsg) Error() string { return string(v) }
