/*
 * geometric.go, part of mrchem.
 *
 * Copyright 2012 Raul Mera <rmera{at}chemDOThelsinkiDOTfi>
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
/***Dedicated to the long life of the Ven. Khenpo Phuntzok Tenzin Rinpoche***/

package chem

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Distance returns the distance between a and b.
func Distance(a, b r3.Vec) float64 {
	return r3.Norm(r3.Sub(b, a))
}

// Angle returns the angle abc, in degrees.
func Angle(a, b, c r3.Vec) float64 {
	v1 := r3.Sub(a, b)
	v2 := r3.Sub(c, b)
	n := r3.Norm(v1) * r3.Norm(v2)
	if n == 0 {
		return 0
	}
	cos := r3.Dot(v1, v2) / n
	//floating point can take us slightly out of [-1,1]
	cos = math.Max(-1, math.Min(1, cos))
	return Rad2Deg(math.Acos(cos))
}

// Dihedral calculate the dihedral between the points a, b, c, d, where the first plane
// is defined by abc and the second by bcd. The result is in degrees, in (-180,180].
func Dihedral(a, b, c, d r3.Vec) float64 {
	//bma=b minus a
	bma := r3.Sub(b, a)
	cmb := r3.Sub(c, b)
	dmc := r3.Sub(d, c)
	bmascaled := r3.Scale(r3.Norm(cmb), bma)
	first := r3.Dot(bmascaled, r3.Cross(cmb, dmc))
	v1 := r3.Cross(bma, cmb)
	v2 := r3.Cross(cmb, dmc)
	second := r3.Dot(v1, v2)
	return Rad2Deg(math.Atan2(first, second))
}

// DistanceOf returns the distance between two atoms of the model. The
// boolean is false if either atom has no coordinates.
func (M *Model) DistanceOf(a, b AtomKey) (float64, bool) {
	va, ok1 := M.Coord(a)
	vb, ok2 := M.Coord(b)
	if !ok1 || !ok2 {
		return 0, false
	}
	return Distance(va, vb), true
}

// DihedralOf returns the dihedral, in degrees, defined by four atoms of the model.
func (M *Model) DihedralOf(k [4]AtomKey) (float64, bool) {
	var v [4]r3.Vec
	for i, a := range k {
		var ok bool
		if v[i], ok = M.Coord(a); !ok {
			return 0, false
		}
	}
	return Dihedral(v[0], v[1], v[2], v[3]), true
}
