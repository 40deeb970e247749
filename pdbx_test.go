/*
 * pdbx_test.go, part of mrchem.
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

package chem

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tiny = "testdata/tiny.cif"

func TestPDBxRead(Te *testing.T) {
	S, err := PDBxFileRead(tiny)
	require.NoError(Te, err)
	assert.Equal(Te, "TINY", S.Block)
	assert.Equal(Te, []string{"entry", "struct", "entity_poly", "pdbx_poly_seq_scheme", "pdbx_nonpoly_scheme",
		"pdbx_unobs_or_zero_occ_residues", "atom_site"}, S.Categories())

	t, ok := S.Table("_Struct")
	require.True(Te, ok)
	assert.Equal(Te, []string{"title"}, t.Names)
	assert.Equal(Te, "A three residue peptide\nwith a zinc ion", t.Rows[0][0])

	recs, err := S.GetDictList("entity_poly")
	require.NoError(Te, err)
	require.Len(Te, recs, 1)
	assert.Equal(Te, "polypeptide(L)", recs[0]["type"])

	sites, err := S.GetDictList("atom_site")
	require.NoError(Te, err)
	assert.Len(Te, sites, 14)
	assert.Equal(Te, "10.000", sites[12]["Cartn_x"])

	_, err = S.GetDictList("struct_conn")
	assert.True(Te, errors.Is(err, ErrNoCategory))
	assert.False(Te, S.HasCategory("struct_conn"))
}

func TestGetDictListWithFilter(Te *testing.T) {
	S, err := PDBxFileRead(tiny)
	require.NoError(Te, err)
	items := []Item{{Name: "label_atom_id", Alt: "atom"}, {Name: "label_seq_id", Type: Int}, {Name: "no_such_item"}}
	recs, err := S.GetDictListWithFilter("atom_site", items, []Filter{{Name: "pdbx_PDB_model_num", Value: "1"}, {Name: "auth_seq_id", Value: "11"}})
	require.NoError(Te, err)
	require.Len(Te, recs, 4)
	assert.Equal(Te, Record{"atom": "N", "label_seq_id": "2", "no_such_item": "?"}, recs[0])

	//the zinc has no label_seq_id and is dropped by the Int check
	recs, err = S.GetDictListWithFilter("atom_site", items, []Filter{{Name: "label_asym_id", Value: "B"}})
	require.NoError(Te, err)
	assert.Empty(Te, recs)

	_, err = S.GetDictListWithFilter("atom_site", items, []Filter{{Name: "bogus", Value: "1"}})
	assert.Error(Te, err)
}

func TestPDBxErrors(Te *testing.T) {
	for name, in := range map[string]string{
		"unterminated text":  "data_X\n_a.b\n;text\n",
		"unterminated quote": "data_X\n_a.b 'oops\n",
		"short loop":         "data_X\nloop_\n_a.b\n_a.c\n1 2 3\n",
		"mixed loop":         "data_X\nloop_\n_a.b\n_c.d\n1 2\n",
		"no value":           "data_X\n_a.b\n_a.c 1\n",
		"bad tag":            "data_X\n_ab 1\n",
	} {
		_, err := PDBxRead(strings.NewReader(in))
		assert.Error(Te, err, name)
	}

	//only the first block is read, quotes may hold quote characters
	S, err := PDBxRead(strings.NewReader("data_X\n_a.b 'it's'\ndata_Y\n_c.d 1\n"))
	require.NoError(Te, err)
	assert.Equal(Te, "X", S.Block)
	t, _ := S.Table("a")
	assert.Equal(Te, "it's", t.Rows[0][0])
	assert.False(Te, S.HasCategory("c"))

	require.Error(Te, S.AddCategory("e", []string{"x", "y"}, [][]string{{"1"}}))
}

func TestOpenMaybeCompressed(Te *testing.T) {
	raw, err := os.ReadFile(tiny)
	require.NoError(Te, err)
	dir := Te.TempDir()

	var gz bytes.Buffer
	w := gzip.NewWriter(&gz)
	_, err = w.Write(raw)
	require.NoError(Te, err)
	require.NoError(Te, w.Close())
	require.NoError(Te, os.WriteFile(filepath.Join(dir, "tiny.cif.gz"), gz.Bytes(), 0o644))

	var zs bytes.Buffer
	z, err := zstd.NewWriter(&zs)
	require.NoError(Te, err)
	_, err = z.Write(raw)
	require.NoError(Te, err)
	require.NoError(Te, z.Close())
	//the name does not matter, the magic number does
	require.NoError(Te, os.WriteFile(filepath.Join(dir, "tiny.bin"), zs.Bytes(), 0o644))
	require.NoError(Te, os.WriteFile(filepath.Join(dir, "empty.cif"), nil, 0o644))

	for _, name := range []string{tiny, filepath.Join(dir, "tiny.cif.gz"), filepath.Join(dir, "tiny.bin")} {
		S, err := PDBxFileRead(name)
		require.NoError(Te, err, name)
		assert.Equal(Te, "TINY", S.Block, name)
	}
	S, err := PDBxFileRead(filepath.Join(dir, "empty.cif"))
	require.NoError(Te, err)
	assert.Empty(Te, S.Categories())

	_, err = PDBxFileRead(filepath.Join(dir, "missing.cif"))
	require.Error(Te, err)
	var cerr Error
	require.True(Te, errors.As(err, &cerr))
	assert.Contains(Te, cerr.Decorate(""), "PDBxFileRead")
	assert.True(Te, errors.Is(err, os.ErrNotExist))
}
