package chemjson

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmera/mrchem/ccd"
	"github.com/rmera/mrchem/mr"
	"github.com/rmera/mrchem/mr/mrtest"
	"github.com/rmera/mrchem/schrodinger"
	"github.com/rmera/mrchem/star"
)

func run(Te *testing.T, ents []*schrodinger.Entity) *mr.Result {
	Te.Helper()
	C := mr.NewContext(mrtest.Model(Te), ccd.New(), mr.DefaultOptions(), nil)
	res, err := schrodinger.NewListener(C, nil).Run(ents)
	require.NoError(Te, err)
	return res
}

func TestReadEntities(Te *testing.T) {
	ents, err := ReadEntities("testdata/restraints.jsonl")
	require.NoError(Te, err)
	require.Len(Te, ents, 3)
	lines := make([]int, len(ents))
	for i, e := range ents {
		lines[i] = e.Line
	}
	assert.Equal(Te, []int{2, 3, 7}, lines)
	assert.Equal(Te, schrodinger.FXTA, ents[2].Kind)
	assert.Len(Te, ents[1].Selections[1].And, 2)

	res := run(Te, ents)
	for _, w := range res.Warnings {
		assert.NotEqual(Te, mr.AtomNotFound, mr.Kind(w), w)
	}
	require.Len(Te, res.Lists, 2)
	assert.Equal(Te, mr.Dist, res.Lists[0].Subtype)
	//HB2 and HB3 of SER 10, then HA of SER 10 to H of LYS 11 and THR 12
	assert.Len(Te, res.Lists[0].Rows, 4)
	assert.Len(Te, res.Lists[1].Rows, 1)
}

func TestReadEntitiesYAML(Te *testing.T) {
	ents, err := ReadEntities("testdata/restraints.yaml")
	require.NoError(Te, err)
	require.Len(Te, ents, 2)
	assert.Equal(Te, schrodinger.FXHB, ents[0].Kind)
	assert.Equal(Te, "14", ents[0].Selections[0].Attrs["res.num"])
	require.NotNil(Te, ents[1].Selections[0].Not)
	assert.True(Te, ents[1].Selections[0].Not.All)

	res := run(Te, ents)
	require.Len(Te, res.Lists, 1)
	assert.Equal(Te, mr.HBond, res.Lists[0].Subtype)
	//nothing is selected by the negation of everything
	var kinds []string
	for _, w := range res.Warnings {
		kinds = append(kinds, mr.Kind(w))
	}
	assert.Contains(Te, kinds, mr.InsufficientSel)
	assert.Equal(Te, 1, res.Counts[mr.HBond])
}

func TestReadCompressed(Te *testing.T) {
	raw, err := os.ReadFile("testdata/restraints.jsonl")
	require.NoError(Te, err)
	var buf bytes.Buffer
	w, err := zstd.NewWriter(&buf)
	require.NoError(Te, err)
	_, err = w.Write(raw)
	require.NoError(Te, err)
	require.NoError(Te, w.Close())
	name := filepath.Join(Te.TempDir(), "restraints.jsonl.zst")
	require.NoError(Te, os.WriteFile(name, buf.Bytes(), 0o644))

	ents, err := ReadEntities(name)
	require.NoError(Te, err)
	assert.Len(Te, ents, 3)

	_, err = ReadEntities(filepath.Join(Te.TempDir(), "missing.jsonl"))
	assert.Error(Te, err)
}

func TestDecodeEntitiesError(Te *testing.T) {
	in := "{\"kind\": \"FXDI\"}\n\n{\"kind\": 3}\n"
	ents, jerr := DecodeEntities(bufio.NewReader(strings.NewReader(in)))
	require.NotNil(Te, jerr)
	assert.Len(Te, ents, 1)
	assert.Equal(Te, 3, jerr.Line)
	assert.True(Te, jerr.InEntities)
	var syn *json.UnmarshalTypeError
	assert.True(Te, errors.As(jerr, &syn))

	//no trailing newline
	ents, jerr = DecodeEntities(bufio.NewReader(strings.NewReader(`{"kind": "FXBA"}`)))
	require.Nil(Te, jerr)
	require.Len(Te, ents, 1)
	assert.Equal(Te, 1, ents[0].Line)

	_, jerr = DecodeEntitiesYAML(strings.NewReader("- kind: FXDI\n-\n"))
	assert.NotNil(Te, jerr)
}

func TestReasonsRoundTrip(Te *testing.T) {
	R := &mr.Reasons{
		GlobalAuthSequenceOffset: map[string]mr.Offset{"A": {Scalar: 50}},
		LabelSeqScheme:           map[string]bool{mr.Dist: true},
	}
	var buf bytes.Buffer
	require.Nil(Te, EncodeReasons(R, &buf))
	got, jerr := DecodeReasons(&buf)
	require.Nil(Te, jerr)
	assert.Equal(Te, R, got)

	buf.Reset()
	require.Nil(Te, EncodeReasons(nil, &buf))
	got, jerr = DecodeReasons(&buf)
	require.Nil(Te, jerr)
	assert.True(Te, got.Empty())

	_, jerr = DecodeReasons(strings.NewReader(`{"no_such_reason": true}`))
	require.NotNil(Te, jerr)
	assert.True(Te, jerr.InOptions)
}

func TestReport(Te *testing.T) {
	ents, err := ReadEntities("testdata/restraints.jsonl")
	require.NoError(Te, err)
	res := run(Te, ents)
	J := NewReport("restraints.jsonl", 1, res)
	assert.Equal(Te, res.RunID, J.RunID)
	assert.Nil(Te, J.Reasons)
	require.Len(Te, J.Lists, 2)
	l := J.Lists[0]
	assert.Equal(Te, star.Category(mr.Dist), l.Category)
	assert.Equal(Te, star.Columns(mr.Dist), l.Columns)
	for _, r := range l.Rows {
		assert.Len(Te, r, len(l.Columns))
	}

	var buf bytes.Buffer
	require.Nil(Te, J.Send(&buf))
	var back Report
	require.NoError(Te, json.Unmarshal(buf.Bytes(), &back))
	assert.Equal(Te, J.Lists[1].Rows, back.Lists[1].Rows)
	assert.Equal(Te, 1, back.Pass)
}

func TestError(Te *testing.T) {
	base := errors.New("boom")
	jerr := NewError("", "Somewhere", base)
	assert.True(Te, jerr.InProcess)
	assert.ErrorIs(Te, jerr, base)
	assert.Equal(Te, []string{"a"}, jerr.Decorate("a"))
	assert.Equal(Te, []string{"a"}, jerr.Decorate(""))

	var back Error
	require.NoError(Te, json.Unmarshal(jerr.Marshal(), &back))
	assert.Equal(Te, "boom", back.Message)
	assert.Equal(Te, "Somewhere", back.Function)
}

func TestReportOffsetVotes(Te *testing.T) {
	//the residues of chain A named 50 below the model numbering
	C := mr.NewContext(mrtest.Model(Te, mrtest.Protein("A", "A", 1, 61, mrtest.SeqA)), ccd.New(), mr.DefaultOptions(), nil)
	sel := func(seq int, atom string) mr.Sel {
		return mr.Atoms{F: mr.NewFactor(mr.Predicates{ChainIDs: []string{"A"}, SeqIDs: []int{seq}, AtomIDs: []string{atom}})}
	}
	C.Distance(1, sel(24, "OG1"), sel(30, "SG"), mr.Bounds{Upper: mr.V(5)}, "")
	res := C.Finish()
	require.Contains(Te, res.OffsetVotes, "A")

	J := NewReport("", 1, res)
	var buf bytes.Buffer
	require.Nil(Te, J.Send(&buf))
	var back Report
	require.NoError(Te, json.Unmarshal(buf.Bytes(), &back))
	require.Contains(Te, back.OffsetVotes, "A")
	h := back.OffsetVotes["A"]
	assert.Equal(Te, res.OffsetVotes["A"].View(), h.View())
	assert.Equal(Te, res.OffsetVotes["A"].Total(), h.Total())
	//the offset that fits both residues got both votes
	best := 0
	for i, v := range h.View() {
		if v > h.View()[best] {
			best = i
		}
	}
	assert.Equal(Te, 2.0, h.View()[best])
	assert.Equal(Te, 50.0, h.Center(best))
}
