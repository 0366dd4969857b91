package element

import "errors"

// NewtonParams bounds the iterative local-coordinate solves. Tol is the
// convergence target on the local-coordinate update; MaxIter caps the
// iteration count so a query never loops unbounded.
type NewtonParams struct {
	MaxIter int
	Tol     float64
}

// DefaultNewtonParams matches the precision needed for field interpolation:
// local coordinates resolved to 1e-5 in at most ten Newton steps.
func DefaultNewtonParams() NewtonParams {
	return NewtonParams{MaxIter: 10, Tol: 1e-5}
}

// ErrNotConverged is returned when an iterative solve exhausts its
// iteration budget. The accompanying local coordinates are the best
// estimate and remain usable; callers decide whether to warn.
var ErrNotConverged = errors.New("local-coordinate solve did not converge")

// ErrDegenerate is returned when a shape mapping has a Jacobian
// determinant within numeric tolerance of zero. The element cannot claim
// the point; callers treat this as "not found", never as fatal.
var ErrDegenerate = errors.New("degenerate shape mapping")

// InsideTol is the slack applied to local-coordinate validity ranges so
// that points on shared faces are not lost to floating-point error.
const InsideTol = 1e-4

// SeedTol is the looser slack applied to the linear seed of an iterative
// solve before Newton refinement is attempted.
const SeedTol = 0.1
