package element

import "math"

// Node ordering for serendipity quadrilaterals: corners 0-3 sit at local
// (-1,-1), (1,-1), (1,1), (-1,1); mid-edge nodes 4-7 on edges (0,1),
// (1,2), (2,3), (3,0).

// quad8Local holds the reference coordinates of the eight nodes.
var quad8Local = [8][2]float64{
	{-1, -1}, {1, -1}, {1, 1}, {-1, 1},
	{0, -1}, {1, 0}, {0, 1}, {-1, 0},
}

// SolveQuad4 inverts the bilinear mapping of the corner quadrilateral in
// closed form. Substituting one local coordinate into the other reduces
// the inversion to a quadratic equation; the root inside (or nearest to)
// the reference square is taken. ErrDegenerate is returned when the
// mapping has no usable determinant.
func SolveQuad4(x, y float64, xn, yn []float64) (u, v float64, err error) {
	a0 := 0.25 * (xn[0] + xn[1] + xn[2] + xn[3])
	a1 := 0.25 * (-xn[0] + xn[1] + xn[2] - xn[3])
	a2 := 0.25 * (-xn[0] - xn[1] + xn[2] + xn[3])
	a3 := 0.25 * (xn[0] - xn[1] + xn[2] - xn[3])
	b0 := 0.25 * (yn[0] + yn[1] + yn[2] + yn[3])
	b1 := 0.25 * (-yn[0] + yn[1] + yn[2] - yn[3])
	b2 := 0.25 * (-yn[0] - yn[1] + yn[2] + yn[3])
	b3 := 0.25 * (yn[0] - yn[1] + yn[2] - yn[3])
	xr := x - a0
	yr := y - b0

	scale := math.Max(math.Abs(a1)+math.Abs(a2), math.Abs(b1)+math.Abs(b2))
	if scale == 0 {
		return 0, 0, ErrDegenerate
	}
	eps := 1e-12 * scale * scale

	// Quadratic in v: qa v^2 + qb v + qc = 0.
	qa := a3*b2 - a2*b3
	qb := (xr*b3 - yr*a3) + (a1*b2 - a2*b1)
	qc := xr*b1 - yr*a1
	// Recover u for a given v root, falling back to the y equation when
	// the x equation is ill-conditioned at this v.
	uFor := func(v float64) (float64, bool) {
		if den := a1 + a3*v; math.Abs(den) >= eps/scale {
			return (xr - a2*v) / den, true
		}
		if den := b1 + b3*v; math.Abs(den) >= eps/scale {
			return (yr - b2*v) / den, true
		}
		return 0, false
	}
	if math.Abs(qa) < eps {
		if math.Abs(qb) < eps {
			return 0, 0, ErrDegenerate
		}
		v = -qc / qb
		var ok bool
		if u, ok = uFor(v); !ok {
			return 0, 0, ErrDegenerate
		}
	} else {
		disc := qb*qb - 4*qa*qc
		if disc < 0 {
			return 0, 0, ErrDegenerate
		}
		s := math.Sqrt(disc)
		v1 := (-qb + s) / (2 * qa)
		v2 := (-qb - s) / (2 * qa)
		u1, ok1 := uFor(v1)
		u2, ok2 := uFor(v2)
		switch {
		case ok1 && ok2:
			// Prefer the root closest to the reference square.
			if math.Max(math.Abs(u1), math.Abs(v1)) <= math.Max(math.Abs(u2), math.Abs(v2)) {
				u, v = u1, v1
			} else {
				u, v = u2, v2
			}
		case ok1:
			u, v = u1, v1
		case ok2:
			u, v = u2, v2
		default:
			return 0, 0, ErrDegenerate
		}
	}
	// Jacobian determinant at the solution decides degeneracy.
	det := (a1+a3*v)*(b2+b3*u) - (a2+a3*u)*(b1+b3*v)
	if math.Abs(det) < eps {
		return u, v, ErrDegenerate
	}
	return u, v, nil
}

// quad8Shape evaluates the eight serendipity shape functions at (u, v).
func quad8Shape(u, v float64) (phi [8]float64) {
	for i := 0; i < 4; i++ {
		ui, vi := quad8Local[i][0], quad8Local[i][1]
		phi[i] = 0.25 * (1 + u*ui) * (1 + v*vi) * (u*ui + v*vi - 1)
	}
	phi[4] = 0.5 * (1 - u*u) * (1 - v)
	phi[5] = 0.5 * (1 + u) * (1 - v*v)
	phi[6] = 0.5 * (1 - u*u) * (1 + v)
	phi[7] = 0.5 * (1 - u) * (1 - v*v)
	return phi
}

// quad8Deriv returns d(phi)/du and d(phi)/dv for all eight nodes.
func quad8Deriv(u, v float64) (du, dv [8]float64) {
	for i := 0; i < 4; i++ {
		ui, vi := quad8Local[i][0], quad8Local[i][1]
		du[i] = 0.25 * ui * (1 + v*vi) * (2*u*ui + v*vi)
		dv[i] = 0.25 * vi * (1 + u*ui) * (2*v*vi + u*ui)
	}
	du[4] = -u * (1 - v)
	dv[4] = -0.5 * (1 - u*u)
	du[5] = 0.5 * (1 - v*v)
	dv[5] = -v * (1 + u)
	du[6] = -u * (1 + v)
	dv[6] = 0.5 * (1 - u*u)
	du[7] = -0.5 * (1 - v*v)
	dv[7] = -v * (1 - u)
	return du, dv
}

// MapQuad8 evaluates the isoparametric mapping at local (u, v).
func MapQuad8(xn, yn []float64, u, v float64) (x, y float64) {
	phi := quad8Shape(u, v)
	for i := 0; i < 8; i++ {
		x += xn[i] * phi[i]
		y += yn[i] * phi[i]
	}
	return x, y
}

// SolveQuad8 inverts the curved quadrilateral mapping by Newton
// refinement from the bilinear corner seed.
func SolveQuad8(x, y float64, xn, yn []float64, prm NewtonParams) (u, v float64, err error) {
	u, v, err = SolveQuad4(x, y, xn, yn)
	if err != nil {
		return u, v, err
	}
	for iter := 0; iter < prm.MaxIter; iter++ {
		xm, ym := MapQuad8(xn, yn, u, v)
		du, dv := quad8Deriv(u, v)
		var j00, j01, j10, j11 float64
		for i := 0; i < 8; i++ {
			j00 += xn[i] * du[i]
			j01 += xn[i] * dv[i]
			j10 += yn[i] * du[i]
			j11 += yn[i] * dv[i]
		}
		det := j00*j11 - j01*j10
		if math.Abs(det) < 1e-300 {
			return u, v, ErrDegenerate
		}
		rx := x - xm
		ry := y - ym
		su := (j11*rx - j01*ry) / det
		sv := (j00*ry - j10*rx) / det
		u += su
		v += sv
		if math.Max(math.Abs(su), math.Abs(sv)) < prm.Tol {
			return u, v, nil
		}
	}
	return u, v, ErrNotConverged
}

// InsideQuad reports whether local coordinates lie in the reference
// square within tol.
func InsideQuad(u, v, tol float64) bool {
	return u >= -1-tol && u <= 1+tol && v >= -1-tol && v <= 1+tol
}

// PotentialQuad8 interpolates nodal values with the serendipity basis.
func PotentialQuad8(v []float64, lu, lv float64) float64 {
	phi := quad8Shape(lu, lv)
	var sum float64
	for i := 0; i < 8; i++ {
		sum += v[i] * phi[i]
	}
	return sum
}

// FieldQuad8 returns the in-plane negative gradient of the serendipity
// interpolant; the out-of-plane component is identically zero.
func FieldQuad8(v, xn, yn []float64, lu, lv float64) (ex, ey float64, err error) {
	du, dv := quad8Deriv(lu, lv)
	var j00, j01, j10, j11, gu, gv float64
	for i := 0; i < 8; i++ {
		j00 += xn[i] * du[i]
		j01 += xn[i] * dv[i]
		j10 += yn[i] * du[i]
		j11 += yn[i] * dv[i]
		gu += v[i] * du[i]
		gv += v[i] * dv[i]
	}
	det := j00*j11 - j01*j10
	if math.Abs(det) < 1e-300 {
		return 0, 0, ErrDegenerate
	}
	// Inverse Jacobian: d(u,v)/d(x,y).
	iux := j11 / det
	iuy := -j01 / det
	ivx := -j10 / det
	ivy := j00 / det
	ex = -(gu*iux + gv*ivx)
	ey = -(gu*iuy + gv*ivy)
	return ex, ey, nil
}
