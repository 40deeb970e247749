/*
 * pdbx.go, part of mrchem.
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
	"bufio"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
)

var tl func(string) string = strings.ToLower

// Table holds the items and rows of one mmCIF category.
type Table struct {
	Names []string
	Rows  [][]string
}

func (T *Table) column(name string) int {
	name = tl(name)
	for i, v := range T.Names {
		if tl(v) == name {
			return i
		}
	}
	return -1
}

// Store is an in-memory mmCIF data block. It implements CoordReader.
type Store struct {
	Block  string
	tables map[string]*Table
	order  []string
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{tables: make(map[string]*Table)}
}

func normCategory(cat string) string {
	return tl(strings.TrimPrefix(cat, "_"))
}

// AddCategory adds (or replaces) a category with the given items and rows.
// Every row must have one value per item.
func (S *Store) AddCategory(category string, items []string, rows [][]string) error {
	for i, r := range rows {
		if len(r) != len(items) {
			return NewError(fmt.Sprintf("row %d of %s has %d values for %d items", i, category, len(r), len(items)), "AddCategory")
		}
	}
	cat := normCategory(category)
	if _, ok := S.tables[cat]; !ok {
		S.order = append(S.order, cat)
	}
	S.tables[cat] = &Table{Names: slices.Clone(items), Rows: rows}
	return nil
}

// Categories returns the category names in the order they were added.
func (S *Store) Categories() []string {
	return slices.Clone(S.order)
}

// Table returns the table for a category, if present.
func (S *Store) Table(category string) (*Table, bool) {
	t, ok := S.tables[normCategory(category)]
	return t, ok
}

// HasCategory reports whether the category is present.
func (S *Store) HasCategory(category string) bool {
	_, ok := S.tables[normCategory(category)]
	return ok
}

// GetDictList returns all the rows of a category as Records.
func (S *Store) GetDictList(category string) ([]Record, error) {
	t, ok := S.Table(category)
	if !ok {
		return nil, WrapError(ErrNoCategory, "GetDictList", "%s", category)
	}
	ret := make([]Record, 0, len(t.Rows))
	for _, row := range t.Rows {
		r := make(Record, len(t.Names))
		for i, n := range t.Names {
			r[n] = row[i]
		}
		ret = append(ret, r)
	}
	return ret, nil
}

// GetDictListWithFilter returns the requested items of the rows that pass
// all filters. Missing items are returned as "?". Rows where an Int or Float
// item does not parse are skipped.
func (S *Store) GetDictListWithFilter(category string, items []Item, filters []Filter) ([]Record, error) {
	t, ok := S.Table(category)
	if !ok {
		return nil, WrapError(ErrNoCategory, "GetDictListWithFilter", "%s", category)
	}
	cols := make([]int, len(items))
	for i, it := range items {
		cols[i] = t.column(it.Name)
	}
	fcols := make([]int, len(filters))
	for i, f := range filters {
		fcols[i] = t.column(f.Name)
		if fcols[i] < 0 {
			return nil, NewError(fmt.Sprintf("filter item %s not in %s", f.Name, category), "GetDictListWithFilter")
		}
	}
	ret := make([]Record, 0, len(t.Rows))
rows:
	for _, row := range t.Rows {
		for i, f := range filters {
			if row[fcols[i]] != f.Value {
				continue rows
			}
		}
		r := make(Record, len(items))
		for i, it := range items {
			v := "?"
			if cols[i] >= 0 {
				v = row[cols[i]]
			}
			switch it.Type {
			case Int:
				if _, err := strconv.Atoi(v); err != nil {
					continue rows
				}
			case Float:
				if _, err := strconv.ParseFloat(v, 64); err != nil {
					continue rows
				}
			}
			key := it.Name
			if it.Alt != "" {
				key = it.Alt
			}
			r[key] = v
		}
		ret = append(ret, r)
	}
	return ret, nil
}

// IsNull reports whether an mmCIF value is one of the null markers.
func IsNull(v string) bool {
	return v == "" || v == "." || v == "?"
}

// PDBxRead reads the first data block of an mmCIF stream into a Store.
func PDBxRead(in io.Reader) (*Store, error) {
	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	toks, err := cifTokens(sc)
	if err != nil {
		return nil, errDecorate(err, "PDBxRead")
	}
	S := NewStore()
	if err := S.fill(toks); err != nil {
		return nil, errDecorate(err, "PDBxRead")
	}
	return S, nil
}

// PDBxFileRead reads an mmCIF file, plain or compressed, into a Store.
func PDBxFileRead(name string) (*Store, error) {
	f, err := OpenMaybeCompressed(name)
	if err != nil {
		return nil, errDecorate(err, "PDBxFileRead")
	}
	defer f.Close()
	S, err := PDBxRead(f)
	return S, errDecorate(err, "PDBxFileRead")
}

type cifToken struct {
	val    string
	quoted bool
	line   int
}

// fill builds the tables from the token stream.
func (S *Store) fill(toks []cifToken) error {
	i := 0
	for i < len(toks) {
		t := toks[i]
		low := tl(t.val)
		switch {
		case !t.quoted && strings.HasPrefix(low, "data_"):
			if S.Block != "" {
				return nil //only the first block is read.
			}
			S.Block = t.val[5:]
			i++
		case !t.quoted && low == "loop_":
			i++
			var names []string
			cat := ""
			for i < len(toks) && !toks[i].quoted && strings.HasPrefix(toks[i].val, "_") {
				c, item, err := splitTag(toks[i])
				if err != nil {
					return err
				}
				if cat != "" && c != cat {
					return NewError(fmt.Sprintf("line %d: mixed categories in loop", toks[i].line), "fill")
				}
				cat = c
				names = append(names, item)
				i++
			}
			if len(names) == 0 {
				return NewError(fmt.Sprintf("line %d: empty loop", t.line), "fill")
			}
			var vals []string
			for i < len(toks) && !isKeyword(toks[i]) {
				vals = append(vals, toks[i].val)
				i++
			}
			if len(vals)%len(names) != 0 {
				return NewError(fmt.Sprintf("line %d: loop %s has %d values for %d items", t.line, cat, len(vals), len(names)), "fill")
			}
			rows := make([][]string, 0, len(vals)/len(names))
			for j := 0; j < len(vals); j += len(names) {
				rows = append(rows, vals[j:j+len(names)])
			}
			S.AddCategory(cat, names, rows)
		case !t.quoted && strings.HasPrefix(t.val, "_"):
			cat, item, err := splitTag(t)
			if err != nil {
				return err
			}
			if i+1 >= len(toks) || isKeyword(toks[i+1]) {
				return NewError(fmt.Sprintf("line %d: no value for %s", t.line, t.val), "fill")
			}
			S.addPair(cat, item, toks[i+1].val)
			i += 2
		default:
			//save frames and stray values are not used.
			i++
		}
	}
	return nil
}

func (S *Store) addPair(cat, item, val string) {
	t, ok := S.tables[normCategory(cat)]
	if !ok {
		S.AddCategory(cat, []string{item}, [][]string{{val}})
		return
	}
	if len(t.Rows) != 1 {
		return
	}
	t.Names = append(t.Names, item)
	t.Rows[0] = append(t.Rows[0], val)
}

func isKeyword(t cifToken) bool {
	if t.quoted {
		return false
	}
	l := tl(t.val)
	return strings.HasPrefix(t.val, "_") || l == "loop_" || strings.HasPrefix(l, "data_") || strings.HasPrefix(l, "save_")
}

func splitTag(t cifToken) (string, string, error) {
	cat, item, ok := strings.Cut(t.val[1:], ".")
	if !ok {
		return "", "", NewError(fmt.Sprintf("line %d: bad tag %s", t.line, t.val), "splitTag")
	}
	return cat, item, nil
}

// cifTokens splits the stream into values. Multi-line text fields, delimited by
// lines starting with ';', become a single quoted token.
func cifTokens(sc *bufio.Scanner) ([]cifToken, error) {
	var toks []cifToken
	var text []string
	intext := false
	textline := 0
	n := 0
	for sc.Scan() {
		n++
		line := sc.Text()
		if intext {
			if strings.HasPrefix(line, ";") {
				toks = append(toks, cifToken{val: strings.Join(text, "\n"), quoted: true, line: textline})
				intext = false
				text = text[:0]
				line = line[1:]
			} else {
				text = append(text, line)
				continue
			}
		} else if strings.HasPrefix(line, ";") {
			intext = true
			textline = n
			text = append(text[:0], strings.TrimRight(line[1:], " \t\r"))
			continue
		}
		var err error
		toks, err = splitCifLine(line, n, toks)
		if err != nil {
			return nil, err
		}
	}
	if err := sc.Err(); err != nil {
		return nil, WrapError(err, "cifTokens", "reading line %d", n)
	}
	if intext {
		return nil, NewError(fmt.Sprintf("unterminated text field starting at line %d", textline), "cifTokens")
	}
	return toks, nil
}

// splitCifLine appends the words of a line to toks. A quote only closes a
// quoted value when followed by white space or the end of the line.
func splitCifLine(line string, n int, toks []cifToken) ([]cifToken, error) {
	i := 0
	for i < len(line) {
		c := line[i]
		switch {
		case c == ' ' || c == '\t' || c == '\r':
			i++
		case c == '#':
			return toks, nil
		case c == '\'' || c == '"':
			j := i + 1
			for {
				if j >= len(line) {
					return nil, NewError(fmt.Sprintf("line %d: unterminated quote", n), "splitCifLine")
				}
				if line[j] == c && (j+1 == len(line) || line[j+1] == ' ' || line[j+1] == '\t' || line[j+1] == '\r') {
					break
				}
				j++
			}
			toks = append(toks, cifToken{val: line[i+1 : j], quoted: true, line: n})
			i = j + 1
		default:
			j := i
			for j < len(line) && line[j] != ' ' && line[j] != '\t' && line[j] != '\r' {
				j++
			}
			toks = append(toks, cifToken{val: line[i:j], line: n})
			i = j
		}
	}
	return toks, nil
}
