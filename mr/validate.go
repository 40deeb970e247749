/*
 * validate.go, part of mrchem.
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
	"fmt"
	"math"
	"strconv"

	chem "github.com/rmera/mrchem"
)

// Val is an optional number.
type Val struct {
	V   float64
	Set bool
}

// V returns a set Val.
func V(f float64) Val {
	return Val{V: f, Set: true}
}

// Bounds are the numbers of a restraint, as read from the file.
type Bounds struct {
	Weight      Val
	Target      Val
	TargetErr   Val
	Lower       Val
	Upper       Val
	LowerLinear Val
	UpperLinear Val
}

// DstFunc is a validated restraint function. Numbers are already formatted;
// empty fields are absent.
type DstFunc struct {
	Weight      string
	Target      string
	TargetErr   string
	Lower       string
	Upper       string
	LowerLinear string
	UpperLinear string
	Potential   string
	Average     string
	Name        string //torsion angle name
	PlaneLike   bool

	vals Bounds //the numbers that survived, unformatted
}

// Map returns the fields present, keyed as in the dstFunc of the output.
func (D *DstFunc) Map() map[string]string {
	ret := make(map[string]string)
	add := func(k, v string) {
		if v != "" {
			ret[k] = v
		}
	}
	add("weight", D.Weight)
	add("target_value", D.Target)
	add("target_value_uncertainty", D.TargetErr)
	add("lower_limit", D.Lower)
	add("upper_limit", D.Upper)
	add("lower_linear_limit", D.LowerLinear)
	add("upper_linear_limit", D.UpperLinear)
	add("potential", D.Potential)
	add("average", D.Average)
	add("name", D.Name)
	return ret
}

// Values returns the surviving numbers.
func (D *DstFunc) Values() Bounds {
	return D.vals
}

// bound is one number of a restraint under validation.
type bound struct {
	name  string
	v     *Val
	lower bool //lower-class bounds accept the error minimum itself
}

func (b bound) outside(E Envelope) bool {
	if b.lower {
		return b.v.V < E.ErrorMin || b.v.V >= E.ErrorMax
	}
	return E.Error(b.v.V)
}

func angular(subtype string) bool {
	return subtype == Dihed || subtype == Ang
}

func distance(subtype string) bool {
	return subtype == Dist || subtype == HBond
}

// Validate checks the numbers of the current restraint against the envelope
// of its subtype. It returns nil, after a rejecting diagnostic, if the
// restraint cannot be kept.
func (C *Context) Validate(b Bounds) *DstFunc {
	sub := C.Subtype()
	E, ok := envelopes[sub]
	if !ok {
		panic(PanicMsg("mr: no envelope for subtype " + sub))
	}
	if b.Weight.Set && b.Weight.V < 0 {
		C.fatal(InvalidData, "The weight value '%s' must not be a negative value.", fnum(b.Weight.V))
		return nil
	}
	if !b.Target.Set && !b.Lower.Set && !b.Upper.Set && !b.LowerLinear.Set && !b.UpperLinear.Set {
		C.fatal(MissingData, "Neither target value nor limit values are given.")
		return nil
	}
	if sub == Dist || sub == HBond {
		compress(&b)
	}
	if angular(sub) {
		C.circularShift(&b)
	}
	bounds := []bound{
		{"target value", &b.Target, false},
		{"lower limit value", &b.Lower, true},
		{"upper limit value", &b.Upper, false},
		{"lower linear limit value", &b.LowerLinear, true},
		{"upper linear limit value", &b.UpperLinear, false},
	}
	for _, x := range bounds {
		if !x.v.Set || !x.outside(E) {
			continue
		}
		if x.v == &b.Upper && x.v.V == 0 && C.opts.AllowZeroUpperLimit && distance(sub) {
			continue
		}
		if distance(sub) && C.opts.OmitDistLimitOutlier && x.v != &b.Target {
			C.fatal(RangeWarning, "The %s='%s' is omitted because it is not within range %s.", x.name, fnum(x.v.V), errorRange(E))
			x.v.Set = false
			continue
		}
		C.fatal(RangeError, "The %s='%s' must be within range %s.", x.name, fnum(x.v.V), errorRange(E))
		return nil
	}
	if angular(sub) && b.Lower.Set && b.Upper.Set && b.Lower.V > b.Upper.V && b.Upper.V+360 < E.ErrorMax {
		//the range crosses 180
		b.Upper.V += 360
		if b.Target.Set && b.Target.V < b.Lower.V {
			b.Target.V += 360
		}
	}
	if !C.ordered(b) {
		return nil
	}
	if !b.Target.Set && !b.Lower.Set && !b.Upper.Set && !b.LowerLinear.Set && !b.UpperLinear.Set {
		C.fatal(MissingData, "No limit value survived the range checks.")
		return nil
	}
	for _, x := range bounds {
		if x.v.Set && E.Warn(x.v.V) {
			C.fatal(RangeWarning, "The %s='%s' should be within range %s.", x.name, fnum(x.v.V), warnRange(E))
		}
	}
	format := fnum
	if distance(sub) {
		format = func(f float64) string { return fmt.Sprintf("%.3f", f) }
	}
	D := &DstFunc{Potential: C.opts.Potential[sub], Average: C.opts.Average[sub], vals: b}
	set := func(dst *string, v Val, f func(float64) string) {
		if v.Set {
			*dst = f(v.V)
		}
	}
	set(&D.Weight, b.Weight, fnum)
	set(&D.Target, b.Target, format)
	set(&D.TargetErr, b.TargetErr, format)
	set(&D.Lower, b.Lower, format)
	set(&D.Upper, b.Upper, format)
	set(&D.LowerLinear, b.LowerLinear, format)
	set(&D.UpperLinear, b.UpperLinear, format)
	if sub == Dihed {
		D.PlaneLike = planeLike(b)
	}
	return D
}

// ordered checks that the target lies within the limits and that linear
// limits bracket the hard ones.
func (C *Context) ordered(b Bounds) bool {
	t, l, u, ll, ul := b.Target, b.Lower, b.Upper, b.LowerLinear, b.UpperLinear
	switch {
	case t.Set && l.Set && l.V > t.V:
		C.fatal(RangeError, "The lower limit value='%s' must be less than the target value '%s'.", fnum(l.V), fnum(t.V))
	case t.Set && u.Set && u.V < t.V:
		C.fatal(RangeError, "The upper limit value='%s' must be greater than the target value '%s'.", fnum(u.V), fnum(t.V))
	case l.Set && u.Set && l.V > u.V:
		C.fatal(RangeError, "The lower limit value='%s' must be less than the upper limit value '%s'.", fnum(l.V), fnum(u.V))
	case ll.Set && l.Set && ll.V > l.V:
		C.fatal(RangeError, "The lower linear limit value='%s' must be less than the lower limit value '%s'.", fnum(ll.V), fnum(l.V))
	case ul.Set && u.Set && ul.V < u.V:
		C.fatal(RangeError, "The upper linear limit value='%s' must be greater than the upper limit value '%s'.", fnum(ul.V), fnum(u.V))
	case ll.Set && ul.Set && ll.V > ul.V:
		C.fatal(RangeError, "The lower linear limit value='%s' must be less than the upper linear limit value '%s'.", fnum(ll.V), fnum(ul.V))
	default:
		return true
	}
	return false
}

// compress turns a target with limits closer than the uncertainty into a
// one sided restraint: long distances become upper limits and very short
// ones lower limits.
func compress(b *Bounds) {
	if !b.Target.Set || !b.Lower.Set || !b.Upper.Set {
		return
	}
	t := b.Target.V
	if math.Abs(t-b.Lower.V) > DistAmbigUncert || math.Abs(t-b.Upper.V) > DistAmbigUncert {
		return
	}
	switch {
	case t >= DistAmbigMed:
		b.Target, b.Lower = Val{}, Val{}
	case t <= DistAmbigLow:
		b.Target, b.Upper = Val{}, Val{}
	}
}

// circularShift brings angles written beyond ±340 degrees back by whole
// turns, as long as all of them are beyond the threshold.
func (C *Context) circularShift(b *Bounds) {
	vals := []*Val{&b.Target, &b.Lower, &b.Upper, &b.LowerLinear, &b.UpperLinear}
	all := func(f func(float64) bool) bool {
		n := 0
		for _, v := range vals {
			if !v.Set {
				continue
			}
			if !f(v.V) {
				return false
			}
			n++
		}
		return n > 0
	}
	shift := 0.0
	for all(func(v float64) bool { return v >= ThresholdForCircularShift }) {
		for _, v := range vals {
			v.V -= 360
		}
		shift -= 360
	}
	for all(func(v float64) bool { return v <= -ThresholdForCircularShift }) {
		for _, v := range vals {
			v.V += 360
		}
		shift += 360
	}
	if shift != 0 {
		C.fatal(RangeWarning, "The angle values were shifted by %s degrees to be within range %s.", fnum(shift), errorRange(AngleRange))
	}
}

// planeLike reports restraints that hold a torsion around 0 or 180 degrees
// in a narrow band.
func planeLike(b Bounds) bool {
	if !b.Lower.Set || !b.Upper.Set {
		return false
	}
	width := b.Upper.V - b.Lower.V
	if width > 60 {
		return false
	}
	mid := chem.NormAngle(b.Lower.V + width/2)
	return math.Abs(mid) <= 30 || 180-math.Abs(mid) <= 30
}

func fnum(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func errorRange(E Envelope) string {
	return fmt.Sprintf("(%s, %s)", fnum(E.ErrorMin), fnum(E.ErrorMax))
}

func warnRange(E Envelope) string {
	return fmt.Sprintf("[%s, %s]", fnum(E.WarnMin), fnum(E.WarnMax))
}
