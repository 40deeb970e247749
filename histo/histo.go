// Package histo builds histograms of real values and tallies of integer
// votes, such as the sequence offsets proposed by residues that could not be
// found in a model.
package histo

import (
	"encoding/json"
	"fmt"
	"slices"
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/stat"
)

// Data is a histogram. The bin i goes from dividers[i], included, to
// dividers[i+1], excluded.
type Data struct {
	total    int
	dividers []float64
	histo    []float64
}

type jsonData struct {
	Total    int       `json:"total"`
	Dividers []float64 `json:"dividers"`
	Histo    []float64 `json:"histo"`
}

func (D *Data) MarshalJSON() ([]byte, error) {
	return json.Marshal(jsonData{Total: D.total, Dividers: D.dividers, Histo: D.histo})
}

func (D *Data) UnmarshalJSON(b []byte) error {
	var a jsonData
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	if len(a.Dividers) != len(a.Histo)+1 {
		return fmt.Errorf("histo: %d dividers for %d bins", len(a.Dividers), len(a.Histo))
	}
	D.total = a.Total
	D.dividers = a.Dividers
	D.histo = a.Histo
	return nil
}

//String prints the bins in one line and the counts in the next.
func (D *Data) String() string {
	d := make([]string, 0, len(D.histo))
	h := make([]string, 0, len(D.histo))
	for i, v := range D.histo {
		d = append(d, fmt.Sprintf("%4.2f-%4.2f", D.dividers[i], D.dividers[i+1]))
		h = append(h, fmt.Sprintf("%9.3f", v))
	}
	return fmt.Sprintf("TotalData: %d\n%s\n%s", D.total, strings.Join(d, " "), strings.Join(h, " "))
}

// NewData returns a histogram with the given dividers, filled with rawdata,
// which can be nil. Values outside the dividers are omitted.
func NewData(dividers []float64, rawdata []float64) *Data {
	rawdata = slices.Clone(rawdata)
	sort.Float64s(rawdata)
	//stat.Histogram panics on values off limits.
	maxi := sort.SearchFloat64s(rawdata, dividers[len(dividers)-1])
	mini := sort.SearchFloat64s(rawdata, dividers[0])
	rawdata = rawdata[mini:maxi]
	d := &Data{dividers: slices.Clone(dividers), total: len(rawdata)}
	d.histo = stat.Histogram(nil, d.dividers, rawdata, nil)
	return d
}

// Total returns the number of data points within the dividers.
func (D *Data) Total() int {
	return D.total
}

// View returns the bins. The slice must not be modified.
func (D *Data) View() []float64 {
	return D.histo
}

// Center returns the middle of bin i.
func (D *Data) Center(i int) float64 {
	return (D.dividers[i] + D.dividers[i+1]) / 2
}

// Ballot tallies integer votes.
type Ballot struct {
	votes []float64
	count map[int]int //cache of counts, nil after a vote
}

// Add casts the votes.
func (B *Ballot) Add(v ...int) {
	for _, i := range v {
		B.votes = append(B.votes, float64(i))
	}
	B.count = nil
}

// Histogram returns the votes in unit bins from the smallest to the largest
// value, or nil if there are no votes.
func (B *Ballot) Histogram() *Data {
	if len(B.votes) == 0 {
		return nil
	}
	lo, hi := floats.Min(B.votes), floats.Max(B.votes)
	div := make([]float64, 0, int(hi-lo)+2)
	for v := lo - 0.5; v <= hi+0.5; v++ {
		div = append(div, v)
	}
	return NewData(div, B.votes)
}

// Ranked returns the values voted, most voted first. Ties go to the value of
// smaller magnitude, then to the smaller value.
func (B *Ballot) Ranked() []int {
	count := B.counts()
	ret := make([]int, 0, len(count))
	for v := range count {
		ret = append(ret, v)
	}
	sort.Slice(ret, func(i, j int) bool {
		a, b := ret[i], ret[j]
		if count[a] != count[b] {
			return count[a] > count[b]
		}
		if abs(a) != abs(b) {
			return abs(a) < abs(b)
		}
		return a < b
	})
	return ret
}

// Count returns the votes for v.
func (B *Ballot) Count(v int) int {
	return B.counts()[v]
}

// Winner returns the most voted value and its votes. ok is false if there
// are no votes or the first place is tied.
func (B *Ballot) Winner() (v, n int, ok bool) {
	r := B.Ranked()
	if len(r) == 0 {
		return 0, 0, false
	}
	count := B.counts()
	if len(r) > 1 && count[r[0]] == count[r[1]] {
		return r[0], count[r[0]], false
	}
	return r[0], count[r[0]], true
}

func (B *Ballot) counts() map[int]int {
	if B.count != nil {
		return B.count
	}
	B.count = make(map[int]int)
	h := B.Histogram()
	if h == nil {
		return B.count
	}
	for i, c := range h.View() {
		if c > 0 {
			B.count[int(scalar.Round(h.Center(i), 0))] = int(c)
		}
	}
	return B.count
}

func abs(i int) int {
	if i < 0 {
		return -i
	}
	return i
}
