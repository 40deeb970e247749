package align

// Options contains the scoring parameters for Align and AssignChains.
type Options struct {
	match    float64
	mismatch float64
	gapOpen  float64
	gapExt   float64
	//fraction of the residues of a test chain that must be matched for an
	//assignment to be valid.
	minIdentity float64
}

// DefaultOptions returns reasonable options for aligning residue sequences
// from restraint files against the polymer sequences of a model.
func DefaultOptions() *Options {
	r := new(Options)
	r.match = 10
	r.mismatch = -6
	r.gapOpen = -12
	r.gapExt = -1
	r.minIdentity = 0.5
	return r
}

// Match returns the score of a pair of identical residues,
// and sets it to a new value, if given.
func (O *Options) Match(s ...float64) float64 {
	if len(s) > 0 && s[0] > 0 {
		O.match = s[0]
	}
	return O.match
}

// Mismatch returns the score of a pair of different residues,
// and sets it to a new value, if given.
func (O *Options) Mismatch(s ...float64) float64 {
	if len(s) > 0 && s[0] <= 0 {
		O.mismatch = s[0]
	}
	return O.mismatch
}

// GapOpen returns the penalty (a negative number) for opening a gap,
// and sets it to a new value, if given.
func (O *Options) GapOpen(s ...float64) float64 {
	if len(s) > 0 && s[0] <= 0 {
		O.gapOpen = s[0]
	}
	return O.gapOpen
}

// GapExt returns the penalty for extending a gap,
// and sets it to a new value, if given.
func (O *Options) GapExt(s ...float64) float64 {
	if len(s) > 0 && s[0] <= 0 {
		O.gapExt = s[0]
	}
	return O.gapExt
}

// MinIdentity returns the smallest fraction of matched residues
// for a chain assignment to be considered valid, and sets it to a
// new value, if given.
func (O *Options) MinIdentity(f ...float64) float64 {
	if len(f) > 0 && f[0] >= 0 && f[0] <= 1 {
		O.minIdentity = f[0]
	}
	return O.minIdentity
}
