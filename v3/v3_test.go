/*
 * v3_test.go, part of mrchem.
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

package v3

import (
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestNewMatrix(Te *testing.T) {
	a := []float64{1.0, 2.0, 3, 4, 5, 6, 7, 8, 9}
	A, err := NewMatrix(a)
	if err != nil {
		Te.Fatal(err)
	}
	if A.NVecs() != 3 {
		Te.Errorf("expected 3 vectors, got %d", A.NVecs())
	}
	if v := A.Vec(1); v != (r3.Vec{X: 4, Y: 5, Z: 6}) {
		Te.Errorf("wrong vector %v", v)
	}
	_, err = NewMatrix([]float64{1, 2})
	if err == nil {
		Te.Fatal("a slice of 2 elements should not give a matrix")
	}
	e := err.(Error)
	if d := e.Decorate("BuildModel"); len(d) != 2 || d[1] != "BuildModel" || !e.Critical() {
		Te.Errorf("wrong decoration %v", d)
	}
}

func TestVecOutOfRange(Te *testing.T) {
	defer func() {
		if r := recover(); r != ErrIndexOutOfRange {
			Te.Errorf("expected %v, got %v", ErrIndexOutOfRange, r)
		}
	}()
	A, err := NewMatrix([]float64{0, 0, 0})
	if err != nil {
		Te.Fatal(err)
	}
	A.Vec(3)
}
