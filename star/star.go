/*
 * star.go, part of mrchem.
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

// Package star holds the NMR-STAR loop schemas for the restraint subtypes and
// writes rows as NMR-STAR loops and saveframes.
package star

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Null is the value of absent columns.
const Null = "."

// ValueColumns names the columns that receive the validated values of a
// restraint. Empty names are not used by the subtype.
type ValueColumns struct {
	Target      string
	TargetErr   string
	Lower       string
	Upper       string
	LowerLinear string
	UpperLinear string
	Weight      string
	Name        string //torsion angle name, dihedrals only
}

type schema struct {
	category string
	atoms    int
	values   ValueColumns
}

var schemas = map[string]schema{
	"dist": {"_Gen_dist_constraint", 2, ValueColumns{Target: "Target_val", TargetErr: "Target_val_uncertainty",
		Lower: "Distance_lower_bound_val", Upper: "Distance_upper_bound_val", LowerLinear: "Lower_linear_limit",
		UpperLinear: "Upper_linear_limit", Weight: "Weight"}},
	"dihed": {"_Torsion_angle_constraint", 4, ValueColumns{Name: "Torsion_angle_name", Target: "Angle_target_val",
		TargetErr: "Angle_target_val_err", Lower: "Angle_lower_bound_val", Upper: "Angle_upper_bound_val",
		LowerLinear: "Angle_lower_linear_limit", UpperLinear: "Angle_upper_linear_limit", Weight: "Weight"}},
	"ang": {"_Angle_constraint", 3, ValueColumns{Target: "Angle_target_val", TargetErr: "Angle_target_val_err",
		Lower: "Angle_lower_bound_val", Upper: "Angle_upper_bound_val", LowerLinear: "Angle_lower_linear_limit",
		UpperLinear: "Angle_upper_linear_limit", Weight: "Weight"}},
	"rdc": {"_RDC_constraint", 2, ValueColumns{Target: "RDC_val", TargetErr: "RDC_val_err", Lower: "RDC_lower_bound",
		Upper: "RDC_upper_bound", LowerLinear: "RDC_lower_linear_limit", UpperLinear: "RDC_upper_linear_limit", Weight: "Weight"}},
	"pcs":  {"_PCS", 1, ValueColumns{Target: "Val", TargetErr: "Val_err", Lower: "Val_min", Upper: "Val_max", Weight: "Weight"}},
	"pre":  {"_PRE", 1, ValueColumns{Target: "Val", TargetErr: "Val_err", Lower: "Val_min", Upper: "Val_max", Weight: "Weight"}},
	"csa":  {"_CSA", 1, ValueColumns{Target: "Val", TargetErr: "Val_err", Weight: "Weight"}},
	"ccr":  {"_CCR_constraint", 4, ValueColumns{Target: "CCR_val", TargetErr: "CCR_val_err", Weight: "Weight"}},
	"t1t2": {"_Auto_relaxation", 1, ValueColumns{Target: "Val", TargetErr: "Val_err", Lower: "Val_min", Upper: "Val_max"}},
	"cs":   {"_Chem_shift", 1, ValueColumns{Target: "Val", TargetErr: "Val_err"}},
}

func init() {
	schemas["hbond"] = schemas["dist"]
}

// Subtypes returns the known subtypes.
func Subtypes() []string {
	return []string{"dist", "hbond", "dihed", "ang", "rdc", "pcs", "pre", "csa", "ccr", "t1t2", "cs"}
}

// Category returns the loop category of a subtype, with the leading
// underscore, or "" for unknown subtypes.
func Category(subtype string) string {
	return schemas[subtype].category
}

// NumAtoms is the number of atoms per row of a subtype.
func NumAtoms(subtype string) int {
	return schemas[subtype].atoms
}

// Values returns the value columns of a subtype.
func Values(subtype string) ValueColumns {
	return schemas[subtype].values
}

var atomColumns = []string{"Entity_assembly_ID", "Entity_ID", "Comp_index_ID", "Seq_ID", "Comp_ID", "Atom_ID",
	"Auth_asym_ID", "Auth_seq_ID", "Auth_comp_ID", "Auth_atom_ID"}

// AtomColumn returns the name of an atom column for the nth atom (1-based)
// of a row.
func AtomColumn(name string, n int) string {
	return name + "_" + strconv.Itoa(n)
}

// ListIDColumn is the column holding the list ID of a subtype.
func ListIDColumn(subtype string) string {
	return strings.TrimPrefix(Category(subtype), "_") + "_list_ID"
}

// Columns returns the columns of a subtype in loop order.
func Columns(subtype string) []string {
	s, ok := schemas[subtype]
	if !ok {
		return nil
	}
	ret := []string{"ID", "Combination_ID", "Member_ID", "Member_logic_code"}
	for n := 1; n <= s.atoms; n++ {
		for _, c := range atomColumns {
			ret = append(ret, AtomColumn(c, n))
		}
	}
	v := s.values
	for _, c := range []string{v.Name, v.Target, v.TargetErr, v.Lower, v.Upper, v.LowerLinear, v.UpperLinear, v.Weight} {
		if c != "" {
			ret = append(ret, c)
		}
	}
	return append(ret, ListIDColumn(subtype), "Entry_ID")
}

// Row is one loop row. Columns not set are Null.
type Row struct {
	Subtype string
	vals    map[string]string
}

// NewRow returns an empty row of the subtype.
func NewRow(subtype string) *Row {
	return &Row{Subtype: subtype, vals: make(map[string]string)}
}

// Set sets a column. Empty values are stored as Null.
func (R *Row) Set(col, val string) {
	if val == "" {
		val = Null
	}
	R.vals[col] = val
}

// Get returns the value of a column, Null if unset.
func (R *Row) Get(col string) string {
	if v, ok := R.vals[col]; ok {
		return v
	}
	return Null
}

// Values returns the row in column order.
func (R *Row) Values() []string {
	cols := Columns(R.Subtype)
	ret := make([]string, len(cols))
	for i, c := range cols {
		ret[i] = R.Get(c)
	}
	return ret
}

// Map returns the set columns of the row.
func (R *Row) Map() map[string]string {
	ret := make(map[string]string, len(R.vals))
	for k, v := range R.vals {
		ret[k] = v
	}
	return ret
}

// quote returns v as an NMR-STAR value.
func quote(v string) string {
	switch {
	case v == "":
		return Null
	case strings.ContainsAny(v, "\n"):
		return "\n;" + v + "\n;\n"
	case !strings.ContainsAny(v, " \t'\"") && !strings.HasPrefix(v, "_") && !strings.HasPrefix(v, "#"):
		return v
	case !strings.Contains(v, "'"):
		return "'" + v + "'"
	default:
		return "\"" + v + "\""
	}
}

// WriteLoop writes the rows of one subtype as a loop.
func WriteLoop(w io.Writer, subtype string, rows []*Row) error {
	cat := Category(subtype)
	if cat == "" {
		return fmt.Errorf("star: unknown subtype %q", subtype)
	}
	b := bufio.NewWriter(w)
	fmt.Fprintln(b, "   loop_")
	for _, c := range Columns(subtype) {
		fmt.Fprintf(b, "      %s.%s\n", cat, c)
	}
	fmt.Fprintln(b)
	for _, r := range rows {
		vals := r.Values()
		for i := range vals {
			vals[i] = quote(vals[i])
		}
		fmt.Fprintf(b, "      %s\n", strings.Join(vals, " "))
	}
	fmt.Fprintln(b, "   stop_")
	return b.Flush()
}

// Saveframe is a restraint list.
type Saveframe struct {
	Name           string
	Subtype        string
	ListID         int
	EntryID        string
	ConstraintType string //NOE, hydrogen bond, ... for distance lists.
	Rows           []*Row
}

// Write writes the saveframe with its loop.
func (S *Saveframe) Write(w io.Writer) error {
	cat := Category(S.Subtype)
	if cat == "" {
		return fmt.Errorf("star: unknown subtype %q", S.Subtype)
	}
	list := cat + "_list"
	name := strings.ReplaceAll(S.Name, " ", "_")
	if _, err := fmt.Fprintf(w, "save_%s\n   %s.Sf_category %s\n   %s.ID %d\n   %s.Entry_ID %s\n",
		name, list, strings.TrimPrefix(list, "_")+"s", list, S.ListID, list, quote(S.EntryID)); err != nil {
		return err
	}
	if S.ConstraintType != "" {
		if _, err := fmt.Fprintf(w, "   %s.Constraint_type %s\n", list, quote(S.ConstraintType)); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}
	if err := WriteLoop(w, S.Subtype, S.Rows); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, "save_")
	return err
}
