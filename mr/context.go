/*
 * context.go, part of mrchem.
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

	"github.com/google/uuid"
	"go.uber.org/zap"

	chem "github.com/rmera/mrchem"
	"github.com/rmera/mrchem/ccd"
	"github.com/rmera/mrchem/chemstat"
	"github.com/rmera/mrchem/histo"
	"github.com/rmera/mrchem/nomenclature"
	"github.com/rmera/mrchem/star"
)

// Options tune the interpretation.
type Options struct {
	OmitDistLimitOutlier bool
	AllowZeroUpperLimit  bool
	LargeModelChains     int
	MinExtSeq            int
	FileType             string
	EntryID              string
	Potential            map[string]string //per subtype, default "square"
	Average              map[string]string //per subtype, default "r-6" for distances
	Logger               *zap.Logger
	RunID                string
}

// DefaultOptions returns the options used for XPLOR-family files.
func DefaultOptions() Options {
	return Options{
		OmitDistLimitOutlier: true,
		LargeModelChains:     LargeModelChains,
		MinExtSeq:            MinExtSeqForAtomSelErr,
		FileType:             "nm-res-sch",
		EntryID:              ".",
		Potential:            map[string]string{Dist: "square", HBond: "square", Dihed: "square", Ang: "square", RDC: "square"},
		Average:              map[string]string{Dist: "r-6", HBond: "r-6"},
	}
}

// restraint is the scratch of the restraint being processed.
type restraint struct {
	subtype string
	id      int
	line    int
	kinds   []string //kinds of the f diagnostics emitted
	g       []string
	rows    int
}

type cached struct {
	f     Factor
	diags [][2]string //kind, message without location
}

// Context interprets the restraints of one file. It is not safe for
// concurrent use; use one context per file.
type Context struct {
	model   *chem.Model
	dict    *ccd.Dict
	xlate   *nomenclature.Translator
	stat    *chemstat.Stat
	opts    Options
	log     *zap.Logger
	runID   string
	reasons *Reasons //input, nil in the first pass

	counts  map[string]int
	lists   map[string]*List
	order   []string
	cur     *restraint
	f       []string
	cache   map[string]*cached
	ev      *Evidence
	paramag []Atom //current paramagnetic center
	large   bool
	emitted []*Emitted

	pending         [][2]string //diagnostics of the factor being resolved
	evidenceTouched bool
	quiet           bool //drop the diagnostics of the residue being searched
}

// NewContext returns a context for one pass over a file. reasons are the
// hypotheses published by a previous pass, or nil.
func NewContext(model *chem.Model, dict *ccd.Dict, opts Options, reasons *Reasons) *Context {
	if model == nil {
		panic(PanicMsg("mr: nil model"))
	}
	if dict == nil {
		dict = ccd.New()
	}
	def := DefaultOptions()
	if opts.LargeModelChains <= 0 {
		opts.LargeModelChains = def.LargeModelChains
	}
	if opts.MinExtSeq <= 0 {
		opts.MinExtSeq = def.MinExtSeq
	}
	if opts.Potential == nil {
		opts.Potential = def.Potential
	}
	if opts.Average == nil {
		opts.Average = def.Average
	}
	if opts.EntryID == "" {
		opts.EntryID = def.EntryID
	}
	if opts.RunID == "" {
		opts.RunID = uuid.NewString()
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	C := &Context{
		model:   model,
		dict:    dict,
		xlate:   nomenclature.New(dict),
		stat:    chemstat.New(dict),
		opts:    opts,
		runID:   opts.RunID,
		log:     log.With(zap.String("run_id", opts.RunID)),
		reasons: reasons.Clone(),
		counts:  make(map[string]int),
		lists:   make(map[string]*List),
		cache:   make(map[string]*cached),
		ev:      newEvidence(),
		large:   model.NumChains() >= opts.LargeModelChains,
	}
	return C
}

// Model returns the model the context resolves against.
func (C *Context) Model() *chem.Model {
	return C.model
}

// RunID identifies the pass in logs.
func (C *Context) RunID() string {
	return C.runID
}

// Enter starts a restraint of the given subtype, found at line of the file.
func (C *Context) Enter(subtype string, line int) {
	if C.cur != nil {
		C.Exit()
	}
	C.counts[subtype]++
	C.cur = &restraint{subtype: subtype, id: C.counts[subtype], line: line}
}

// Retype changes the subtype of the current restraint, moving it to the
// counter of the new subtype.
func (C *Context) Retype(subtype string) {
	if C.cur == nil || C.cur.subtype == subtype {
		return
	}
	C.counts[C.cur.subtype]--
	C.counts[subtype]++
	C.cur.subtype = subtype
	C.cur.id = C.counts[subtype]
}

// Exit finishes the current restraint. It returns the number of rows it
// emitted. A restraint without rows releases its number and its soft
// diagnostics are promoted.
func (C *Context) Exit() int {
	r := C.cur
	if r == nil {
		return 0
	}
	if r.rows == 0 {
		C.f = append(C.f, r.g...)
		C.counts[r.subtype]--
	}
	C.cur = nil
	return r.rows
}

// Subtype returns the subtype of the current restraint.
func (C *Context) Subtype() string {
	if C.cur == nil {
		return ""
	}
	return C.cur.subtype
}

// ParamagneticCenter returns the atoms of the last paramagnetic center seen.
func (C *Context) ParamagneticCenter() []Atom {
	return C.paramag
}

// List is the rows of one subtype.
type List struct {
	Subtype        string
	ID             int
	ConstraintType string
	Rows           []*star.Row
}

// Saveframe returns the list as an NMR-STAR saveframe.
func (L *List) Saveframe(entryID string) *star.Saveframe {
	return &star.Saveframe{
		Name:           fmt.Sprintf("%s_%d", star.ListIDColumn(L.Subtype), L.ID),
		Subtype:        L.Subtype,
		ListID:         L.ID,
		EntryID:        entryID,
		ConstraintType: L.ConstraintType,
		Rows:           L.Rows,
	}
}

// Emitted records one restraint that produced rows.
type Emitted struct {
	Subtype  string
	ID       int
	Line     int
	DistType string //simple, ambi or hbond, distances only
	Name     string //torsion angle name, dihedrals only
	Rows     int
}

// Result is the outcome of a pass.
type Result struct {
	Lists       []*List
	Warnings    []string
	Reasons     *Reasons
	RunID       string
	Counts      map[string]int
	Restraint   []*Emitted
	OffsetVotes map[string]*histo.Data //chain -> offsets proposed by the residues not found
}

// Warnings returns the diagnostics so far, without repetitions.
func (C *Context) Warnings() []string {
	return unique(C.f)
}

func (C *Context) list(subtype string) *List {
	if l, ok := C.lists[subtype]; ok {
		return l
	}
	l := &List{Subtype: subtype, ID: len(C.order) + 1}
	switch subtype {
	case Dist:
		l.ConstraintType = "NOE"
	case HBond:
		l.ConstraintType = "hydrogen bond"
	}
	C.lists[subtype] = l
	C.order = append(C.order, subtype)
	return l
}
