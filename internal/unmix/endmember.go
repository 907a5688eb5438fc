package unmix

// EndmemberSet is the 3x2 matrix of reference signatures. Row k is the
// pure spectral signature of class k; the two columns are the derived
// feature dimensions (NDVI, SWIR32).
type EndmemberSet [3][2]float64

// Terms carries the algebra derived from one EndmemberSet that every
// pixel evaluation reuses: the 2x2 design matrix A with columns e0-e2
// and e1-e2, the e1 and e2 vectors, the edge vector C = e0-e1 with its
// squared length, and the Gram entries of A for the closed-form solver.
// Built once per set by PrecomputeTerms and never mutated afterwards, so
// it is safe to share across workers by value.
type Terms struct {
	a11, a12 float64
	a21, a22 float64

	e1x, e1y float64
	e2x, e2y float64

	cx, cy float64
	cSq    float64

	g11, g12, g22 float64
	det           float64
}

// PrecomputeTerms derives the per-set solver terms from e.
func PrecomputeTerms(e EndmemberSet) Terms {
	t := Terms{
		a11: e[0][0] - e[2][0],
		a12: e[1][0] - e[2][0],
		a21: e[0][1] - e[2][1],
		a22: e[1][1] - e[2][1],
		e1x: e[1][0],
		e1y: e[1][1],
		e2x: e[2][0],
		e2y: e[2][1],
		cx:  e[0][0] - e[1][0],
		cy:  e[0][1] - e[1][1],
	}
	t.cSq = t.cx*t.cx + t.cy*t.cy

	t.g11 = t.a11*t.a11 + t.a21*t.a21
	t.g12 = t.a11*t.a12 + t.a21*t.a22
	t.g22 = t.a12*t.a12 + t.a22*t.a22
	t.det = t.g11*t.g22 - t.g12*t.g12

	return t
}

// ClassPredicate decides whether a land-cover code selects the first
// ("forest") endmember set. Implementations must be safe for concurrent
// use; ClassSet satisfies this by being immutable during a run.
type ClassPredicate func(code int32) bool

// ClassSet is an explicit set of land-cover codes.
type ClassSet map[int32]struct{}

// NewClassSet builds a ClassSet from the given codes.
func NewClassSet(codes ...int32) ClassSet {
	s := make(ClassSet, len(codes))
	for _, c := range codes {
		s[c] = struct{}{}
	}
	return s
}

// Contains reports membership of code in the set.
func (s ClassSet) Contains(code int32) bool {
	_, ok := s[code]
	return ok
}

// Predicate returns the membership test as a ClassPredicate.
func (s ClassSet) Predicate() ClassPredicate {
	return s.Contains
}
