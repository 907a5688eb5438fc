package unmix

import "math"

const (
	// degenerateCSq is the threshold below which the e0-e1 edge is
	// considered collinear and the edge projection denominator unusable.
	degenerateCSq = 1e-10

	// interiorSlack absorbs float noise at the simplex edge: an f3 no
	// more negative than this still takes the interior branch, clamped
	// to zero.
	interiorSlack = 1e-9

	// singularDet guards the normal-equation solve against a rank
	// deficient design matrix.
	singularDet = 1e-12
)

// Fractions holds one pixel's abundance estimate, band order
// class0/class1/class2, each component rounded to 3 decimals.
type Fractions [3]float32

// UnmixPixel decomposes one spectral sample (m1, m2) into fractional
// abundances of the three endmembers described by t. It solves the
// 2-variable non-negative least-squares problem closed-form; when the
// solution leaves the abundance simplex (x+y > 1) the sample is
// projected onto the edge between e0 and e1 instead. Pure function,
// safe for unsynchronized concurrent calls.
func UnmixPixel(m1, m2 float64, t Terms) Fractions {
	b1 := m1 - t.e2x
	b2 := m2 - t.e2y

	x, y := t.solveNonNegative(b1, b2)

	if f3 := 1 - x - y; f3 >= -interiorSlack {
		if f3 < 0 {
			f3 = 0
		}
		return Fractions{round3(x), round3(y), round3(f3)}
	}

	// Infeasible on the simplex: project onto the e0-e1 edge. A near
	// zero edge length would blow up the division, so fall back to the
	// midpoint in that case.
	xc := 0.5
	if t.cSq >= degenerateCSq {
		d1 := t.e1x - m1
		d2 := t.e1y - m2
		xc = clamp01(-(t.cx*d1 + t.cy*d2) / t.cSq)
	}
	return Fractions{round3(xc), round3(1 - xc), 0}
}

// solveNonNegative minimizes ||A*[x y] - b||^2 subject to x >= 0,
// y >= 0. With only two unknowns the active-set method enumerates the
// four candidate supports directly: the unconstrained interior solution
// of the normal equations, each single-variable edge, and the origin.
func (t Terms) solveNonNegative(b1, b2 float64) (float64, float64) {
	q1 := t.a11*b1 + t.a21*b2
	q2 := t.a12*b1 + t.a22*b2

	if math.Abs(t.det) > singularDet {
		x := (t.g22*q1 - t.g12*q2) / t.det
		y := (t.g11*q2 - t.g12*q1) / t.det
		if x >= 0 && y >= 0 {
			return x, y
		}
	}

	bestX, bestY := 0.0, 0.0
	best := t.residual(0, 0, b1, b2)

	if t.g11 > 0 {
		if x := q1 / t.g11; x > 0 {
			if r := t.residual(x, 0, b1, b2); r < best {
				best, bestX, bestY = r, x, 0
			}
		}
	}
	if t.g22 > 0 {
		if y := q2 / t.g22; y > 0 {
			if r := t.residual(0, y, b1, b2); r < best {
				bestX, bestY = 0, y
			}
		}
	}
	return bestX, bestY
}

// residual is the squared norm of A*[x y] - b.
func (t Terms) residual(x, y, b1, b2 float64) float64 {
	r1 := t.a11*x + t.a12*y - b1
	r2 := t.a21*x + t.a22*y - b2
	return r1*r1 + r2*r2
}

func round3(v float64) float32 {
	return float32(math.Round(v*1000) / 1000)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
