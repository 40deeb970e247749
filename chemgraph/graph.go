// Package chemgraph represents the bonds of a chemical component as a gonum
// undirected graph, so connectivity questions (is there a bond, what is bonded
// to what, how many bonds apart are two atoms) become graph queries.
package chemgraph

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"
)

// Atom is a node of the graph.
type Atom struct {
	id     int64
	Name   string
	Symbol string
}

func (A *Atom) ID() int64 {
	return A.id
}

func (A *Atom) String() string {
	return A.Name
}

// Topology implements gonum's graph.Undirected over the atoms of one
// component. It is read-only once built.
type Topology struct {
	*simple.UndirectedGraph
	byName map[string]*Atom
	atoms  []*Atom
}

// NewTopology builds the graph from atom names, their element symbols
// (parallel to names, may be nil) and bonds given as pairs of names.
func NewTopology(names, symbols []string, bonds [][2]string) (*Topology, error) {
	T := &Topology{UndirectedGraph: simple.NewUndirectedGraph(), byName: make(map[string]*Atom, len(names))}
	for i, n := range names {
		if _, ok := T.byName[n]; ok {
			return nil, fmt.Errorf("chemgraph: atom %s given twice", n)
		}
		a := &Atom{id: int64(i), Name: n}
		if i < len(symbols) {
			a.Symbol = symbols[i]
		}
		T.byName[n] = a
		T.atoms = append(T.atoms, a)
		T.AddNode(a)
	}
	for i, b := range bonds {
		a1, ok1 := T.byName[b[0]]
		a2, ok2 := T.byName[b[1]]
		if !ok1 || !ok2 {
			return nil, fmt.Errorf("chemgraph: bond %d (%s-%s) has at least one non-existent atom", i, b[0], b[1])
		}
		if a1 == a2 {
			return nil, fmt.Errorf("chemgraph: bond %d joins %s with itself", i, b[0])
		}
		T.SetEdge(T.NewEdge(a1, a2))
	}
	return T, nil
}

// Atom returns the node with the given name.
func (T *Topology) Atom(name string) (*Atom, bool) {
	a, ok := T.byName[name]
	return a, ok
}

// Names returns the atom names in their original order.
func (T *Topology) Names() []string {
	ret := make([]string, len(T.atoms))
	for i, a := range T.atoms {
		ret[i] = a.Name
	}
	return ret
}

// HasBond reports whether atoms a and b are bonded.
func (T *Topology) HasBond(a, b string) bool {
	a1, ok1 := T.byName[a]
	a2, ok2 := T.byName[b]
	if !ok1 || !ok2 {
		return false
	}
	return T.HasEdgeBetween(a1.ID(), a2.ID())
}

// Bonded returns the names of the atoms bonded to a, sorted.
func (T *Topology) Bonded(a string) []string {
	at, ok := T.byName[a]
	if !ok {
		return nil
	}
	var ret []string
	nodes := T.From(at.ID())
	for nodes.Next() {
		ret = append(ret, nodes.Node().(*Atom).Name)
	}
	sort.Strings(ret)
	return ret
}

// BondedOfSymbol returns the atoms bonded to a whose element is symbol.
func (T *Topology) BondedOfSymbol(a, symbol string) []string {
	var ret []string
	for _, n := range T.Bonded(a) {
		if T.byName[n].Symbol == symbol {
			ret = append(ret, n)
		}
	}
	return ret
}

// PathLen returns the number of bonds in the shortest path between a and b,
// or -1 if they are not connected.
func (T *Topology) PathLen(a, b string) int {
	a1, ok1 := T.byName[a]
	a2, ok2 := T.byName[b]
	if !ok1 || !ok2 {
		return -1
	}
	if a1 == a2 {
		return 0
	}
	sh := path.DijkstraFrom(a1, T)
	p, _ := sh.To(a2.ID())
	if len(p) == 0 {
		return -1
	}
	return len(p) - 1
}

// IsChain reports whether the atoms form a bonded chain in the given order.
func (T *Topology) IsChain(names ...string) bool {
	for i := 1; i < len(names); i++ {
		if !T.HasBond(names[i-1], names[i]) {
			return false
		}
	}
	return true
}

var _ graph.Undirected = (*Topology)(nil)
