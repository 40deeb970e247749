/*
 * consts.go, part of mrchem.
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

// Envelope holds the error bounds (exclusive) and the warning range
// (inclusive) of a restraint kind.
type Envelope struct {
	Name     string
	ErrorMin float64
	ErrorMax float64
	WarnMin  float64
	WarnMax  float64
}

// Error reports whether v is outside the error bounds.
func (E Envelope) Error(v float64) bool {
	return v <= E.ErrorMin || v >= E.ErrorMax
}

// Warn reports whether v is outside the warning range.
func (E Envelope) Warn(v float64) bool {
	return v < E.WarnMin || v > E.WarnMax
}

var (
	DistRange  = Envelope{"distance", 0, 150, 0, 101}
	AngleRange = Envelope{"angle", -360, 360, -330, 330}
	RDCRange   = Envelope{"RDC", -250, 250, -200, 200}
	CSARange   = Envelope{"CSA", -999, 999, -300, 300}
	PCSRange   = Envelope{"PCS", -40, 40, -20, 20}
	PRERange   = Envelope{"PRE", 0, 150, 0, 100}
	CCRRange   = Envelope{"CCR", -20, 20, -10, 10}
	CSRange    = Envelope{"chemical shift", -300, 300, -250, 250}
	T1T2Range  = Envelope{"T1/T2", 0, 100, 0.5, 20}
)

const (
	DistAmbigLow    = 1.0
	DistAmbigMed    = 6.0
	DistAmbigUp     = 12.0
	DistAmbigUncert = 0.1

	ThresholdForCircularShift = 340.0

	HBondHAMax = 2.5
	HBondDAMax = 3.5

	MinExtSeqForAtomSelErr = 8
	LargeModelChains       = 26
)

// Subtypes.
const (
	Dist  = "dist"
	HBond = "hbond"
	Dihed = "dihed"
	Ang   = "ang"
	RDC   = "rdc"
	PCS   = "pcs"
	PRE   = "pre"
	CSA   = "csa"
	CCR   = "ccr"
	T1T2  = "t1t2"
	CS    = "cs"
)

var subtypeNames = map[string]string{
	Dist: "distance", HBond: "hydrogen bond", Dihed: "torsional angle", Ang: "angle", RDC: "RDC",
	PCS: "PCS", PRE: "PRE", CSA: "CSA", CCR: "CCR", T1T2: "T1/T2", CS: "chemical shift",
}

var envelopes = map[string]Envelope{
	Dist: DistRange, HBond: DistRange, Dihed: AngleRange, Ang: AngleRange, RDC: RDCRange,
	PCS: PCSRange, PRE: PRERange, CSA: CSARange, CCR: CCRRange, T1T2: T1T2Range, CS: CSRange,
}

// nitroxideNames are atom names used for the unpaired electron of spin labels.
var nitroxideNames = []string{"O1", "N1", "ON", "NO", "OX", "NX", "OE", "SL"}

// paramagneticAnchors are the atoms that carry a spin label or a lanthanide
// tag in each residue type.
var paramagneticAnchors = map[string]string{
	"CYS": "SG", "SER": "OG", "LYS": "NZ", "THR": "OG1", "HIS": "NE2",
	"ASP": "OD1", "GLU": "OE1", "GLN": "NE2", "ASN": "ND2", "TYR": "OH", "MET": "SD",
}
