/*
 * interfaces.go, part of mrchem.
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
	"errors"
	"fmt"
)

// Record is one row of an mmCIF category, keyed by item name (or by the
// alternative name requested in an Item).
type Record map[string]string

// ItemType tells the store how a requested item should be checked.
type ItemType int

const (
	Str ItemType = iota
	Int
	Float
)

// Item names one column to retrieve from a category. If Alt is not empty,
// the value is stored under Alt in the returned Record.
type Item struct {
	Name string
	Type ItemType
	Alt  string
}

// Filter keeps only the rows where the item Name equals Value.
type Filter struct {
	Name  string
	Value string
}

// CoordReader gives read access to the categories of an mmCIF-like
// coordinate store. Implementations are treated as read-only indices
// and can be shared among interpretation contexts.
type CoordReader interface {
	//GetDictList returns every row of the category.
	GetDictList(category string) ([]Record, error)

	//GetDictListWithFilter returns the requested items for the rows that
	//pass all the filters. Rows where a requested Int or Float item can't be
	//parsed are skipped.
	GetDictListWithFilter(category string, items []Item, filters []Filter) ([]Record, error)

	//HasCategory reports whether the category is present in the store.
	HasCategory(category string) bool
}

// ErrNoCategory is returned (wrapped) when a requested category is absent.
var ErrNoCategory = errors.New("category not found")

//Errors

//This error predates the "wrapping" error system of Go (i.e. the "%w" directive and the errors package).
//CError wraps its cause, so errors.Is and errors.As work through it.

// Error is the interface for errors that all packages in this library implement. The Decorate method allows to add and retrieve info from the
// error, without changing it's type or wrapping it around something else.
type Error interface {
	Error() string
	Decorate(string) []string //Each call returns the "decoration" slice resulting from the current call. If passed an empty string, it just returns the current value.
}

// CError (Concrete Error) is the concrete error type
// for the chem package, that implements chem.Error
type CError struct {
	msg   string
	deco  []string
	cause error
}

// NewError returns a CError with the given message, decorated with the
// name of the function where it was created.
func NewError(msg, caller string) *CError {
	return &CError{msg: msg, deco: []string{caller}}
}

// WrapError is NewError with a wrapped cause.
func WrapError(cause error, caller, format string, args ...any) *CError {
	return &CError{msg: fmt.Sprintf(format, args...), deco: []string{caller}, cause: cause}
}

func (err *CError) Error() string {
	if err.cause != nil {
		return err.msg + ": " + err.cause.Error()
	}
	return err.msg
}

// Unwrap returns the wrapped cause, if any.
func (err *CError) Unwrap() error { return err.cause }

// Decorate will add the dec string to the decoration slice of strings of the error,
// and return the resulting slice.
func (err *CError) Decorate(dec string) []string {
	if dec == "" {
		return err.deco
	}
	err.deco = append(err.deco, dec)
	return err.deco
}

// errDecorate is a helper function that decorates the error with the caller's
// name if it implements chem.Error. Other errors are wrapped in a CError.
// A nil error gives a nil error.
func errDecorate(err error, caller string) error {
	if err == nil {
		return nil
	}
	var err2 Error
	if errors.As(err, &err2) {
		err2.Decorate(caller)
		return err
	}
	return &CError{msg: caller, deco: []string{caller}, cause: err}
}

// PanicMsg is a message used for panics, even though it does satisfy the error interface.
// for errors use Error.
type PanicMsg string

func (v PanicMsg) Error() string { return string(v) }

const (
	ErrNilModel     = PanicMsg("mrchem: nil model")
	ErrIndexOfRange = PanicMsg("mrchem: index out of range")
)
