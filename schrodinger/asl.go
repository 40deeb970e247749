package schrodinger

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"unicode"

	"github.com/rmera/mrchem/mr"
)

// Selection is an ASL expression. Exactly one of the operators or Attrs is
// set. Attrs holds the attribute tests of one factor, such as
// {"chain.name": "A", "res.num": "10-12", "atom.ptype": "CA"}, all of which
// must hold.
type Selection struct {
	And   []*Selection      `json:"and,omitempty" yaml:"and,omitempty"`
	Or    []*Selection      `json:"or,omitempty" yaml:"or,omitempty"`
	Not   *Selection        `json:"not,omitempty" yaml:"not,omitempty"`
	All   bool              `json:"all,omitempty" yaml:"all,omitempty"`
	Attrs map[string]string `json:"attrs,omitempty" yaml:"attrs,omitempty"`
}

// maxRange is the widest residue range accepted.
const maxRange = 10000

var intRange = regexp.MustCompile(`^(-?\d+)-(-?\d+)$`)

// Sel builds the selection tree for the interpretation engine.
func (S *Selection) Sel() (mr.Sel, error) {
	if S == nil {
		return nil, fmt.Errorf("schrodinger: empty selection")
	}
	fold := func(args []*Selection, op func(l, r mr.Sel) mr.Sel) (mr.Sel, error) {
		var ret mr.Sel
		for _, a := range args {
			s, err := a.Sel()
			if err != nil {
				return nil, err
			}
			if ret == nil {
				ret = s
				continue
			}
			ret = op(ret, s)
		}
		return ret, nil
	}
	switch {
	case S.All:
		return mr.Atoms{F: mr.UniverseFactor()}, nil
	case S.Not != nil:
		s, err := S.Not.Sel()
		if err != nil {
			return nil, err
		}
		return mr.Not{S: s}, nil
	case len(S.And) > 0:
		return fold(S.And, func(l, r mr.Sel) mr.Sel { return mr.And{L: l, R: r} })
	case len(S.Or) > 0:
		return fold(S.Or, func(l, r mr.Sel) mr.Sel { return mr.Or{L: l, R: r} })
	case len(S.Attrs) > 0:
		p, err := Predicates(S.Attrs)
		if err != nil {
			return nil, err
		}
		return mr.Atoms{F: mr.NewFactor(p)}, nil
	}
	return nil, fmt.Errorf("schrodinger: empty selection")
}

func values(v string) []string {
	f := strings.FieldsFunc(v, func(r rune) bool { return r == ',' || unicode.IsSpace(r) })
	ret := f[:0]
	for _, s := range f {
		s = strings.Trim(s, `"'`)
		if s != "" {
			ret = append(ret, s)
		}
	}
	return ret
}

// glob turns ASL wildcards into a regular expression, '*' for any run of
// characters and '?' for one.
func glob(vals []string) string {
	alt := make([]string, len(vals))
	for i, v := range vals {
		q := regexp.QuoteMeta(v)
		q = strings.ReplaceAll(q, `\*`, ".*")
		q = strings.ReplaceAll(q, `\?`, ".")
		alt[i] = q
	}
	return strings.Join(alt, "|")
}

func hasAny(vals []string, chars string) bool {
	return slices.ContainsFunc(vals, func(v string) bool { return strings.ContainsAny(v, chars) })
}

// names fills the ids of a name attribute, or its pattern when the values
// carry the wildcards in wild. Other wildcards stay in the ids.
func names(ids *[]string, pat *mr.Pattern, vals []string, wild string) error {
	if !hasAny(vals, wild) {
		for _, v := range vals {
			*ids = append(*ids, strings.ToUpper(v))
		}
		return nil
	}
	up := make([]string, len(vals))
	for i, v := range vals {
		up[i] = strings.ToUpper(v)
	}
	p, err := mr.RegexPattern(glob(up))
	if err != nil {
		return err
	}
	*pat = p
	return nil
}

// seqs reads residue numbers. Plain numbers are explicit. A list with any
// range becomes a sequence pattern, so residues missing from the model are
// skipped instead of reported.
func seqs(p *mr.Predicates, vals []string) error {
	var spans [][2]int
	ranged := false
	for _, v := range vals {
		if m := intRange.FindStringSubmatch(v); m != nil {
			lo, _ := strconv.Atoi(m[1])
			hi, _ := strconv.Atoi(m[2])
			if lo > hi || hi-lo > maxRange {
				return fmt.Errorf("schrodinger: bad residue range %q", v)
			}
			spans = append(spans, [2]int{lo, hi})
			ranged = true
			continue
		}
		s, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("schrodinger: bad residue number %q: %w", v, err)
		}
		spans = append(spans, [2]int{s, s})
	}
	if ranged {
		p.SeqPattern = mr.IntRangesPattern(spans...)
		return nil
	}
	for _, s := range spans {
		p.SeqIDs = append(p.SeqIDs, s[0])
	}
	return nil
}

// Predicates maps the ASL attributes of a factor onto the predicates of the
// engine.
func Predicates(attrs map[string]string) (mr.Predicates, error) {
	var p mr.Predicates
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	seq, atom := false, false
	for _, k := range keys {
		vals := values(attrs[k])
		if len(vals) == 0 {
			return p, fmt.Errorf("schrodinger: attribute %s without value", k)
		}
		var err error
		switch strings.ToLower(k) {
		case "chain.name":
			p.ChainIDs = append(p.ChainIDs, vals...)
		case "res.num":
			seq = true
			err = seqs(&p, vals)
		case "res.ptype", "res.pdbnam":
			err = names(&p.CompIDs, &p.CompPattern, vals, "*?")
		case "atom.ptype", "atom.name":
			atom = true
			err = names(&p.AtomIDs, &p.AtomPattern, vals, "?")
		case "atom.ele":
			atom = true
			err = names(&p.TypeSymbols, &p.TypeSymbolPattern, vals, "*?")
		case "mol.num", "res.segid":
			p.SegmentID = vals[0]
		default:
			err = fmt.Errorf("schrodinger: unsupported attribute %s", k)
		}
		if err != nil {
			return p, err
		}
	}
	p.SeqNotSpecified = !seq
	p.AtomNotSpecified = !atom
	return p, nil
}
