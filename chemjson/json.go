/*
 * json.go, part of mrchem.
 *
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
 *
 * mrchem is developed at the laboratory for instruction in Swedish, Department of Chemistry,
 * University of Helsinki, Finland.
 *
 *
 */
/***Dedicated to the long life of the Ven. Khenpo Phuntzok Tenzin Rinpoche***/

package chemjson

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	chem "github.com/rmera/mrchem"
	"github.com/rmera/mrchem/histo"
	"github.com/rmera/mrchem/mr"
	"github.com/rmera/mrchem/schrodinger"
	"github.com/rmera/mrchem/star"
)

// An easily JSON-serializable error type,
type Error struct {
	deco          []string
	IsError       bool //If this is false (no error) all the other fields will be at their zero-values.
	InOptions     bool //If error, was it in parsing the options?
	InEntities    bool //Was it in reading the restraint entities?
	InProcess     bool
	InPostProcess bool   //was it in preparing the output?
	Line          int    //line of the stream, if known
	Function      string //which go function gave the error
	Message       string //the error itself
	err           error
}

// Error implements the error interface
func (J *Error) Error() string {
	return J.Message
}

// Unwrap returns the error that caused this one.
func (J *Error) Unwrap() error {
	return J.err
}

// Decorate will add the dec string to the decoration slice of strings of the error,
// and return the resulting slice.
func (J *Error) Decorate(dec string) []string {
	if dec == "" {
		return J.deco
	}
	J.deco = append(J.deco, dec)
	return J.deco
}

// Serializes the error. Panics on failure.
func (J *Error) Marshal() []byte {
	ret, err2 := json.Marshal(J)
	if err2 != nil {
		panic(strings.Join([]string{J.Error(), err2.Error()}, " - ")) // Yo, dawg, I heard you like errors, so I got an error while serializing your error so you can... you know the drill.
	}
	return ret
}

// Takes an error and some additional info to create a json-marshal-ble error
func NewError(where, function string, err error) *Error {
	jerr := new(Error)
	jerr.IsError = true
	switch where {
	case "options":
		jerr.InOptions = true
	case "entities":
		jerr.InEntities = true
	case "postprocess":
		jerr.InPostProcess = true
	default:
		jerr.InProcess = true
	}
	jerr.Function = function
	jerr.Message = err.Error()
	jerr.err = err
	return jerr
}

// DecodeEntities reads restraint entities from a stream with one JSON
// object per line. Blank lines and lines starting with '#' are skipped.
// Entities without a line number get the one of the stream.
func DecodeEntities(stream *bufio.Reader) ([]*schrodinger.Entity, *Error) {
	const funcname = "DecodeEntities"
	var ret []*schrodinger.Entity
	for n := 1; ; n++ {
		line, err := stream.ReadBytes('\n')
		if len(bytes.TrimSpace(line)) > 0 && !bytes.HasPrefix(bytes.TrimSpace(line), []byte("#")) {
			e := new(schrodinger.Entity)
			if err2 := json.Unmarshal(line, e); err2 != nil {
				jerr := NewError("entities", funcname, err2)
				jerr.Line = n
				return ret, jerr
			}
			if e.Line == 0 {
				e.Line = n
			}
			ret = append(ret, e)
		}
		if errors.Is(err, io.EOF) {
			return ret, nil
		}
		if err != nil {
			jerr := NewError("entities", funcname, err)
			jerr.Line = n
			return ret, jerr
		}
	}
}

// DecodeEntitiesYAML reads restraint entities from a YAML sequence.
func DecodeEntitiesYAML(in io.Reader) ([]*schrodinger.Entity, *Error) {
	var ret []*schrodinger.Entity
	if err := yaml.NewDecoder(in).Decode(&ret); err != nil && !errors.Is(err, io.EOF) {
		return nil, NewError("entities", "DecodeEntitiesYAML", err)
	}
	for i, e := range ret {
		if e == nil {
			return nil, NewError("entities", "DecodeEntitiesYAML", fmt.Errorf("empty entity at position %d", i+1))
		}
	}
	return ret, nil
}

// ReadEntities reads the entities of a file, which may be compressed. Files
// named .yaml or .yml (before the compression suffix) are YAML, everything
// else is JSON lines.
func ReadEntities(name string) ([]*schrodinger.Entity, error) {
	f, err := chem.OpenMaybeCompressed(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	base := strings.TrimSuffix(strings.TrimSuffix(strings.ToLower(name), ".gz"), ".zst")
	var ents []*schrodinger.Entity
	var jerr *Error
	switch filepath.Ext(base) {
	case ".yaml", ".yml":
		ents, jerr = DecodeEntitiesYAML(f)
	default:
		ents, jerr = DecodeEntities(bufio.NewReader(f))
	}
	if jerr != nil {
		jerr.Decorate(name)
		return nil, jerr
	}
	return ents, nil
}

// EncodeReasons writes the hypotheses of a pass as one JSON object.
func EncodeReasons(R *mr.Reasons, out io.Writer) *Error {
	if R == nil {
		R = new(mr.Reasons)
	}
	if err := json.NewEncoder(out).Encode(R); err != nil {
		return NewError("postprocess", "EncodeReasons", err)
	}
	return nil
}

// DecodeReasons reads hypotheses written by EncodeReasons.
func DecodeReasons(in io.Reader) (*mr.Reasons, *Error) {
	R := new(mr.Reasons)
	dec := json.NewDecoder(in)
	dec.DisallowUnknownFields()
	if err := dec.Decode(R); err != nil {
		return nil, NewError("options", "DecodeReasons", err)
	}
	return R, nil
}

// List is a ready-to-serialize restraint list.
type List struct {
	Subtype        string
	Category       string
	ListID         int
	ConstraintType string
	Columns        []string
	Rows           [][]string
}

// Report is the outcome of a pass, to be passed back to the calling program.
type Report struct {
	File     string `json:",omitempty"`
	RunID    string
	Pass     int
	Counts   map[string]int
	Warnings []string
	Reasons  *mr.Reasons `json:",omitempty"`
	Lists    []*List
	//histograms of the sequence offsets voted, by chain
	OffsetVotes map[string]*histo.Data `json:",omitempty"`
}

// NewReport collects the result of a pass.
func NewReport(file string, pass int, res *mr.Result) *Report {
	J := &Report{File: file, RunID: res.RunID, Pass: pass, Counts: res.Counts, Warnings: res.Warnings, OffsetVotes: res.OffsetVotes}
	if !res.Reasons.Empty() {
		J.Reasons = res.Reasons
	}
	for _, l := range res.Lists {
		jl := &List{
			Subtype:        l.Subtype,
			Category:       star.Category(l.Subtype),
			ListID:         l.ID,
			ConstraintType: l.ConstraintType,
			Columns:        star.Columns(l.Subtype),
		}
		for _, r := range l.Rows {
			jl.Rows = append(jl.Rows, r.Values())
		}
		J.Lists = append(J.Lists, jl)
	}
	return J
}

// Send Marshals the report and writes to out, returns an error or nil
func (J *Report) Send(out io.Writer) *Error {
	enc := json.NewEncoder(out)
	if err := enc.Encode(J); err != nil {
		return NewError("postprocess", "Report.Send", err)
	}
	return nil
}
