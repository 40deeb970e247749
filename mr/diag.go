/*
 * diag.go, part of mrchem.
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
	"strings"

	"go.uber.org/zap"
)

// Diagnostic prefixes. The set is closed.
const (
	RangeError        = "[Range value error]"
	RangeWarning      = "[Range value warning]"
	InvalidData       = "[Invalid data]"
	AtomNotFound      = "[Atom not found]"
	AnomalousData     = "[Anomalous data]"
	HydrogenNotInst   = "[Hydrogen not instantiated]"
	CoordinateIssue   = "[Coordinate issue]"
	SequenceMismatch  = "[Sequence mismatch]"
	SequenceMismatchW = "[Sequence mismatch warning]"
	InsufficientSel   = "[Insufficient atom selection]"
	UnsupportedData   = "[Unsupported data]"
	UnmatchedAtomType = "[Unmatched atom type]"
	MissingData       = "[Missing data]"
)

// rejecting diagnostics make the current restraint produce no rows.
var rejecting = []string{RangeError, InvalidData, AtomNotFound, AnomalousData, InsufficientSel, SequenceMismatch, MissingData}

// Kind returns the prefix of a diagnostic message.
func Kind(msg string) string {
	if i := strings.Index(msg, "]"); strings.HasPrefix(msg, "[") && i > 0 {
		return msg[:i+1]
	}
	return ""
}

func ordinal(n int) string {
	suffix := "th"
	switch {
	case n%100 >= 11 && n%100 <= 13:
	case n%10 == 1:
		suffix = "st"
	case n%10 == 2:
		suffix = "nd"
	case n%10 == 3:
		suffix = "rd"
	}
	return fmt.Sprintf("%d%s", n, suffix)
}

// current returns the location prefix of the restraint being processed.
func (C *Context) current() string {
	if C.cur == nil {
		return ""
	}
	return fmt.Sprintf("[Check the %s row of %s restraints, line %d] ", ordinal(C.cur.id), subtypeNames[C.cur.subtype], C.cur.line)
}

// fatal appends to the f channel.
func (C *Context) fatal(kind, format string, args ...any) {
	msg := kind + " " + C.current() + fmt.Sprintf(format, args...)
	C.f = append(C.f, msg)
	if C.cur != nil {
		C.cur.kinds = append(C.cur.kinds, kind)
	}
	C.log.Debug("diagnostic", zap.String("channel", "f"), zap.String("msg", msg))
}

// soft appends to the g channel, which reaches the user only if the restraint
// emits nothing.
func (C *Context) soft(kind, format string, args ...any) {
	msg := kind + " " + C.current() + fmt.Sprintf(format, args...)
	if C.cur != nil {
		C.cur.g = append(C.cur.g, msg)
	}
	C.log.Debug("diagnostic", zap.String("channel", "g"), zap.String("msg", msg))
}

// rejected reports whether the current restraint got a rejecting diagnostic.
func (C *Context) rejected() bool {
	if C.cur == nil {
		return false
	}
	for _, k := range C.cur.kinds {
		for _, r := range rejecting {
			if k == r {
				return true
			}
		}
	}
	return false
}

// unique returns the messages without repetitions, in order of first occurrence.
func unique(msgs []string) []string {
	seen := make(map[string]bool, len(msgs))
	ret := make([]string, 0, len(msgs))
	for _, m := range msgs {
		if seen[m] {
			continue
		}
		seen[m] = true
		ret = append(ret, m)
	}
	return ret
}

// Reject records a restraint of the given subtype that cannot reach its
// entry point, such as one with the wrong number of selections. It always
// returns 0.
func (C *Context) Reject(subtype string, line int, kind, format string, args ...any) int {
	C.Enter(subtype, line)
	C.fatal(kind, format, args...)
	return C.Exit()
}
