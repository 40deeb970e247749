/*
 * model_test.go, part of mrchem.
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
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func tinyModel(Te *testing.T, o ModelOptions) *Model {
	Te.Helper()
	S, err := PDBxFileRead(tiny)
	require.NoError(Te, err)
	M, err := BuildModel(S, o)
	require.NoError(Te, err)
	return M
}

func TestBuildModel(Te *testing.T) {
	M := tinyModel(Te, ModelOptions{})
	assert.Equal(Te, 1, M.RepresentativeModelID)
	assert.Equal(Te, []string{"A"}, M.ChainIDs())
	assert.Equal(Te, 1, M.NumChains())
	assert.True(Te, M.HasChain("A"))
	assert.False(Te, M.HasChain("C"))

	A := M.PolymerChain("A")
	require.NotNil(Te, A)
	assert.Equal(Te, "polypeptide(L)", A.EntityType)
	assert.Equal(Te, []string{"C"}, A.IdenticalChainIDs)
	assert.Equal(Te, []int{10, 11, 13, 14}, A.AuthSeqIDs)
	assert.Equal(Te, []string{"GLY", "ALA", "SER", "GLU"}, A.AuthCompIDs)
	assert.True(Te, A.GapInAuthSeq)
	first, last := A.AuthRange()
	assert.Equal(Te, 10, first)
	assert.Equal(Te, 14, last)
	assert.Equal(Te, 2, A.IndexOfLabel(3))
	assert.Equal(Te, -1, A.IndexOfAuth(12))

	zn := M.NonPolymersOf("A")
	require.Len(Te, zn, 1)
	assert.Equal(Te, []int{101}, zn[0].AuthSeqIDs)
	assert.Empty(Te, M.BranchedOf("A"))

	assert.Equal(Te, ResKey{"A", 3}, M.Seq.AuthToLabel[ResKey{"A", 13}])
	assert.Equal(Te, ResKey{"A", 13}, M.Seq.LabelToAuth[ResKey{"A", 3}])
	star := M.Seq.AuthToStar[ResKey{"A", 101}]
	assert.Equal(Te, StarSeq{EntityAssemblyID: 2, SeqID: 1, EntityID: 2}, star)
	_, ok := M.Seq.AuthToLabel[ResKey{"A", 101}]
	assert.False(Te, ok)

	assert.True(Te, M.UnobsRes[ResKey{"A", 14}])
	comp, ok := M.CompOf(ResKey{"A", 14})
	assert.True(Te, ok)
	assert.Equal(Te, "GLU", comp)
	_, ok = M.CompOf(ResKey{"A", 12})
	assert.False(Te, ok)
	assert.True(Te, M.IsPolymerResidue(ResKey{"A", 11}))
	assert.False(Te, M.IsPolymerResidue(ResKey{"A", 101}))

	site, ok := M.Site(ResKey{"A", 101})
	require.True(Te, ok)
	assert.Equal(Te, "ZN", site.Symbol("ZN"))
	assert.Equal(Te, "", site.Symbol("OG"))

	//N, CA, C of GLY; N, CA, C, CB of ALA; N, CA, C, OG of SER and the zinc
	u := M.Universe()
	assert.Len(Te, u, 12)
	assert.Equal(Te, AtomKey{"A", 10, "C"}, u[0])
	assert.Equal(Te, AtomKey{"A", 101, "ZN"}, u[len(u)-1])
}

func TestAltAndModel(Te *testing.T) {
	M := tinyModel(Te, ModelOptions{})
	og, ok := M.Coord(AtomKey{"A", 13, "OG"})
	require.True(Te, ok)
	assert.Equal(Te, r3.Vec{X: 8, Y: 5, Z: 0}, og)

	M = tinyModel(Te, ModelOptions{RepresentativeAltID: "B"})
	og, ok = M.Coord(AtomKey{"A", 13, "OG"})
	require.True(Te, ok)
	assert.Equal(Te, r3.Vec{X: 8.5, Y: 5, Z: 0.5}, og)

	M = tinyModel(Te, ModelOptions{RepresentativeModelID: 2})
	assert.Len(Te, M.Universe(), 1)
	_, ok = M.Coord(AtomKey{"A", 11, "CA"})
	assert.False(Te, ok)
	assert.True(Te, M.UnobsRes[ResKey{"A", 11}])

	S := NewStore()
	require.NoError(Te, S.AddCategory("atom_site", []string{"label_atom_id"}, nil))
	_, err := BuildModel(S, ModelOptions{})
	assert.Error(Te, err)
	_, err = BuildModel(NewStore(), ModelOptions{})
	assert.ErrorIs(Te, err, ErrNoCategory)
}

func TestChainsFromSites(Te *testing.T) {
	S := NewStore()
	require.NoError(Te, S.AddCategory("atom_site",
		[]string{"label_atom_id", "label_comp_id", "label_asym_id", "label_seq_id", "auth_seq_id", "auth_asym_id", "Cartn_x", "Cartn_y", "Cartn_z"},
		[][]string{
			{"CA", "ALA", "A", "1", "5", "A", "0", "0", "0"},
			{"CA", "GLY", "A", "2", "6", "A", "3.8", "0", "0"},
			{"MG", "MG", "B", ".", "201", "A", "9", "9", "9"},
		}))
	M, err := BuildModel(S, ModelOptions{})
	require.NoError(Te, err)
	A := M.PolymerChain("A")
	require.NotNil(Te, A)
	assert.Equal(Te, []int{1, 2}, A.SeqIDs)
	assert.Equal(Te, []int{5, 6}, A.AuthSeqIDs)
	require.Len(Te, M.NonPolymers, 1)
	assert.Equal(Te, "MG", M.NonPolymers[0].CompIDs[0])
	site, _ := M.Site(ResKey{"A", 201})
	//the element is guessed from the name
	assert.Equal(Te, "Mg", site.Symbol("MG"))
}

func TestGeometry(Te *testing.T) {
	a, b, c, d := r3.Vec{X: 1}, r3.Vec{}, r3.Vec{Y: 1}, r3.Vec{Y: 1, Z: 1}
	assert.InDelta(Te, math.Sqrt2, Distance(a, c), 1e-9)
	assert.InDelta(Te, 90, Angle(a, b, c), 1e-9)
	assert.Zero(Te, Angle(a, b, b))
	assert.InDelta(Te, -90, Dihedral(a, b, c, d), 1e-9)

	M := tinyModel(Te, ModelOptions{})
	dist, ok := M.DistanceOf(AtomKey{"A", 10, "N"}, AtomKey{"A", 10, "CA"})
	require.True(Te, ok)
	assert.InDelta(Te, 1.458, dist, 1e-9)
	_, ok = M.DistanceOf(AtomKey{"A", 10, "N"}, AtomKey{"A", 14, "N"})
	assert.False(Te, ok)
	_, ok = M.DihedralOf([4]AtomKey{{"A", 10, "N"}, {"A", 10, "CA"}, {"A", 10, "C"}, {"A", 11, "N"}})
	assert.True(Te, ok)
}

func TestBonds(Te *testing.T) {
	M := tinyModel(Te, ModelOptions{})
	bonded, known := M.CovalentlyBonded(AtomKey{"A", 10, "N"}, AtomKey{"A", 10, "CA"})
	assert.True(Te, known)
	assert.True(Te, bonded)
	bonded, known = M.CovalentlyBonded(AtomKey{"A", 10, "N"}, AtomKey{"A", 101, "ZN"})
	assert.True(Te, known)
	assert.False(Te, bonded)
	_, known = M.CovalentlyBonded(AtomKey{"A", 10, "N"}, AtomKey{"A", 14, "N"})
	assert.False(Te, known)

	//the C of SER 13 sits next to the N of GLY 10, but GLU 14 closes the chain
	A := M.PolymerChain("A")
	assert.False(Te, A.Cyclic)
	bonded, known = M.CovalentlyBonded(AtomKey{"A", 13, "C"}, AtomKey{"A", 10, "N"})
	assert.True(Te, known)
	assert.True(Te, bonded)

	M.Links = []Link{{A: AtomKey{"A", 14, "C"}, B: AtomKey{"A", 10, "N"}, Type: "covale"}}
	assert.True(Te, M.IsCyclic(A))
	M.Links[0].Type = "hydrog"
	assert.False(Te, M.IsCyclic(A))
	assert.False(Te, M.IsCyclic(M.NonPolymers[0]))
}

func TestHandy(Te *testing.T) {
	assert.InDelta(Te, -170, NormAngle(190), 1e-9)
	assert.InDelta(Te, 180, NormAngle(-180), 1e-9)
	assert.InDelta(Te, 20, AngleDiff(170, -170), 1e-9)
	assert.InDelta(Te, math.Pi, Deg2Rad(180), 1e-12)
	assert.InDelta(Te, 90, Rad2Deg(math.Pi/2), 1e-12)
	for name, want := range map[string]string{"CA": "C", "ZN": "Zn", "1HB": "H", "OG1": "O", "GD": "Gd", "": "", "XX": ""} {
		assert.Equal(Te, want, SymbolFromName(name), name)
	}
	assert.Equal(Te, 1.22, CovalentRadius("ZN"))
	assert.True(Te, IsLanthanoid("gd"))
	assert.True(Te, IsParamagnetic("Fe"))
	assert.False(Te, IsParamagnetic("ZN"))
	assert.Equal(Te, "S", OneLetter("SER"))
	assert.Equal(Te, "X", OneLetter("ZN"))
}
