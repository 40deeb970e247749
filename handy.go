/*
 * handy.go, part of mrchem.
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
	"strings"
)

// Deg2Rad converts degrees to radians.
func Deg2Rad(f float64) float64 {
	return f * math.Pi / 180
}

// Rad2Deg converts radians to degrees.
func Rad2Deg(f float64) float64 {
	return f * 180 / math.Pi
}

// NormAngle brings an angle in degrees to (-180,180].
func NormAngle(f float64) float64 {
	f = math.Mod(f, 360)
	if f > 180 {
		f -= 360
	} else if f <= -180 {
		f += 360
	}
	return f
}

// AngleDiff returns the smallest absolute difference between two angles, in degrees.
func AngleDiff(a, b float64) float64 {
	return math.Abs(NormAngle(a - b))
}

// symbolFromName guesses the element of an atom from its name, the way PDB
// files are usually written (the first one or two letters, without digits).
func symbolFromName(name string) (string, error) {
	name = strings.TrimLeft(name, "0123456789")
	if name == "" {
		return "", NewError("empty atom name", "symbolFromName")
	}
	if len(name) >= 2 {
		two := strings.ToUpper(name[:1]) + strings.ToLower(name[1:2])
		if _, ok := symbolCovrad[two]; ok && !isOrganic(name[:1]) {
			return two, nil
		}
	}
	one := strings.ToUpper(name[:1])
	if _, ok := symbolCovrad[one]; ok {
		return one, nil
	}
	return "", NewError("unknown element for atom "+name, "symbolFromName")
}

// SymbolFromName is the exported version of symbolFromName. It returns "" when
// no element can be guessed.
func SymbolFromName(name string) string {
	s, _ := symbolFromName(name)
	return s
}

// organic elements take precedence in atom names: CA is a carbon, not calcium.
func isOrganic(first string) bool {
	switch strings.ToUpper(first) {
	case "C", "H", "N", "O", "S", "P":
		return true
	}
	return false
}
