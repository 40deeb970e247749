/*
 * doc.go, part of mrchem.
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

/*
Package mr interprets NMR restraints against a coordinate model.

A Context processes the restraints of one file, in order. Each restraint
kind has an entry point (Distance, HBond, Dihedral, Angle, RDC, PRE, PCS and
Generic) that takes the atom selections of the restraint, as Sel trees of
Factors, and its numbers. The entry point resolves every factor against the
model, validates the numbers against the envelope of the kind, classifies
the restraint and appends rows to the list of its subtype. Problems are
reported as diagnostics, strings with one of a closed set of prefixes, such
as "[Atom not found]". Some diagnostics reject the restraint.

Selections are resolved under the author numbering of the model. Residues
that cannot be found are tested under the label numbering and against
offsets, non-polymer and sequence extension fallbacks. What a pass learns is
published by Finish as Reasons, the hypotheses to apply in a second pass
over the same file:

	C := mr.NewContext(model, dict, mr.DefaultOptions(), nil)
	//... entry points ...
	first := C.Finish()
	C = mr.NewContext(model, dict, mr.DefaultOptions(), first.Reasons)
	//... the same entry points again ...
	second := C.Finish()

A Context is not safe for concurrent use. Different contexts share nothing
mutable and can run in parallel over the same model and dictionary.
*/
package mr
