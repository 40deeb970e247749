package schrodinger

import (
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/rmera/mrchem/mr"
)

// Restraint kinds.
const (
	FXDI  = "FXDI"  //distance
	FXTA  = "FXTA"  //torsion angle
	FXBA  = "FXBA"  //bond angle
	FXHB  = "FXHB"  //hydrogen bond
	FXPRE = "FXPRE" //paramagnetic relaxation enhancement
	FXPCS = "FXPCS" //pseudocontact shift
	FXRDC = "FXRDC" //residual dipolar coupling
)

// ErrUnknownKind is returned for entities of a kind the listener does not
// know.
var ErrUnknownKind = errors.New("schrodinger: unknown restraint kind")

// Entity is one restraint as extracted from a file.
type Entity struct {
	Kind       string       `json:"kind" yaml:"kind"`
	Selections []*Selection `json:"selections" yaml:"selections"`
	Numbers    []float64    `json:"numbers" yaml:"numbers"`
	Line       int          `json:"line" yaml:"line"`
}

// shape is the number of selections and numbers a kind takes.
type shape struct {
	subtype          string
	minSel, maxSel   int
	minNums, maxNums int
}

var shapes = map[string]shape{
	FXDI:  {mr.Dist, 2, 2, 3, 4},
	FXTA:  {mr.Dihed, 4, 4, 3, 4},
	FXBA:  {mr.Ang, 3, 3, 3, 3},
	FXHB:  {mr.HBond, 3, 3, 3, 3},
	FXPRE: {mr.PRE, 1, 2, 1, 2},
	FXPCS: {mr.PCS, 1, 2, 1, 2},
	FXRDC: {mr.RDC, 2, 2, 1, 2},
}

// Listener feeds the entities of one file to an interpretation context.
type Listener struct {
	C   *mr.Context
	log *zap.Logger
}

// NewListener returns a listener over C. log may be nil.
func NewListener(C *mr.Context, log *zap.Logger) *Listener {
	if log == nil {
		log = zap.NewNop()
	}
	return &Listener{C: C, log: log.With(zap.String("run_id", C.RunID()))}
}

// Enter interprets one entity and returns the number of rows it emitted.
// Problems with the restraint become diagnostics of the context; only an
// unknown kind is an error.
func (L *Listener) Enter(e *Entity) (int, error) {
	sh, ok := shapes[e.Kind]
	if !ok {
		return 0, fmt.Errorf("%w %q at line %d", ErrUnknownKind, e.Kind, e.Line)
	}
	if n := len(e.Selections); n < sh.minSel || n > sh.maxSel {
		return L.C.Reject(sh.subtype, e.Line, mr.InvalidData, "%d atom selections given, %s expected.", n, span(sh.minSel, sh.maxSel)), nil
	}
	if n := len(e.Numbers); n < sh.minNums || n > sh.maxNums {
		return L.C.Reject(sh.subtype, e.Line, mr.MissingData, "%d values given, %s expected.", n, span(sh.minNums, sh.maxNums)), nil
	}
	for _, v := range e.Numbers {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return L.C.Reject(sh.subtype, e.Line, mr.InvalidData, "The value %v is not a number.", v), nil
		}
	}
	sels := make([]mr.Sel, len(e.Selections))
	for i, s := range e.Selections {
		var err error
		if sels[i], err = s.Sel(); err != nil {
			return L.C.Reject(sh.subtype, e.Line, mr.UnsupportedData, "%s", err), nil
		}
	}
	n := e.Numbers
	opt := func(i int) mr.Val {
		if i < len(n) {
			return mr.V(n[i])
		}
		return mr.Val{}
	}
	var rows int
	switch e.Kind {
	case FXDI:
		rows = L.C.Distance(e.Line, sels[0], sels[1], mr.Bounds{Weight: mr.V(n[0]), Lower: mr.V(n[1]), Upper: mr.V(n[2]), Target: opt(3)}, "")
	case FXHB:
		rows = L.C.HBond(e.Line, sels[0], sels[1], sels[2], mr.Bounds{Weight: mr.V(n[0]), Lower: mr.V(n[1]), Upper: mr.V(n[2])})
	case FXTA:
		mult := 1
		if len(n) > 3 {
			if n[3] < 1 || n[3] != math.Trunc(n[3]) {
				return L.C.Reject(mr.Dihed, e.Line, mr.InvalidData, "The multiplicity %v is not a positive integer.", n[3]), nil
			}
			mult = int(n[3])
		}
		rows = L.C.Dihedral(e.Line, [4]mr.Sel{sels[0], sels[1], sels[2], sels[3]}, torsion(n), mult)
	case FXBA:
		rows = L.C.Angle(e.Line, [3]mr.Sel{sels[0], sels[1], sels[2]}, torsion(n))
	case FXPRE:
		rows = L.C.PRE(e.Line, sels, mr.Bounds{Target: mr.V(n[0]), TargetErr: opt(1)})
	case FXPCS:
		rows = L.C.PCS(e.Line, sels, mr.Bounds{Target: mr.V(n[0]), TargetErr: opt(1)})
	case FXRDC:
		rows = L.C.RDC(e.Line, sels[0], sels[1], mr.Bounds{Target: mr.V(n[0]), TargetErr: opt(1)})
	}
	L.log.Debug("restraint", zap.String("kind", e.Kind), zap.Int("line", e.Line), zap.Int("rows", rows))
	return rows, nil
}

// torsion reads force constant, target and half width.
func torsion(n []float64) mr.Bounds {
	return mr.Bounds{Weight: mr.V(n[0]), Target: mr.V(n[1]), Lower: mr.V(n[1] - n[2]), Upper: mr.V(n[1] + n[2])}
}

func span(lo, hi int) string {
	if lo == hi {
		return fmt.Sprint(lo)
	}
	return fmt.Sprintf("%d to %d", lo, hi)
}

// Run interprets the entities in order and finishes the pass. Entities of
// unknown kinds are skipped; their errors are joined in the returned error,
// which does not invalidate the result.
func (L *Listener) Run(ents []*Entity) (*mr.Result, error) {
	var errs []error
	for _, e := range ents {
		if _, err := L.Enter(e); err != nil {
			L.log.Warn("skipping entity", zap.Error(err))
			errs = append(errs, err)
		}
	}
	return L.C.Finish(), errors.Join(errs...)
}
