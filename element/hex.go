package element

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Node ordering for trilinear hexahedra: the bottom face (-1,-1,-1),
// (1,-1,-1), (1,1,-1), (-1,1,-1) followed by the top face at zeta = +1 in
// the same winding.

var hex8Local = [8][3]float64{
	{-1, -1, -1}, {1, -1, -1}, {1, 1, -1}, {-1, 1, -1},
	{-1, -1, 1}, {1, -1, 1}, {1, 1, 1}, {-1, 1, 1},
}

func hex8Shape(u, v, w float64) (phi [8]float64) {
	for i := 0; i < 8; i++ {
		l := hex8Local[i]
		phi[i] = 0.125 * (1 + u*l[0]) * (1 + v*l[1]) * (1 + w*l[2])
	}
	return phi
}

func hex8Deriv(u, v, w float64) (du, dv, dw [8]float64) {
	for i := 0; i < 8; i++ {
		l := hex8Local[i]
		du[i] = 0.125 * l[0] * (1 + v*l[1]) * (1 + w*l[2])
		dv[i] = 0.125 * l[1] * (1 + u*l[0]) * (1 + w*l[2])
		dw[i] = 0.125 * l[2] * (1 + u*l[0]) * (1 + v*l[1])
	}
	return du, dv, dw
}

// MapHex8 evaluates the trilinear mapping at local (u, v, w).
func MapHex8(xn, yn, zn []float64, u, v, w float64) (x, y, z float64) {
	phi := hex8Shape(u, v, w)
	for i := 0; i < 8; i++ {
		x += xn[i] * phi[i]
		y += yn[i] * phi[i]
		z += zn[i] * phi[i]
	}
	return x, y, z
}

func jacobianHex8(xn, yn, zn []float64, u, v, w float64) *mat.Dense {
	du, dv, dw := hex8Deriv(u, v, w)
	jac := mat.NewDense(3, 3, nil)
	for i := 0; i < 8; i++ {
		jac.Set(0, 0, jac.At(0, 0)+xn[i]*du[i])
		jac.Set(0, 1, jac.At(0, 1)+xn[i]*dv[i])
		jac.Set(0, 2, jac.At(0, 2)+xn[i]*dw[i])
		jac.Set(1, 0, jac.At(1, 0)+yn[i]*du[i])
		jac.Set(1, 1, jac.At(1, 1)+yn[i]*dv[i])
		jac.Set(1, 2, jac.At(1, 2)+yn[i]*dw[i])
		jac.Set(2, 0, jac.At(2, 0)+zn[i]*du[i])
		jac.Set(2, 1, jac.At(2, 1)+zn[i]*dv[i])
		jac.Set(2, 2, jac.At(2, 2)+zn[i]*dw[i])
	}
	return jac
}

// SolveHex8 inverts the trilinear mapping by Newton iteration from the
// cell centre. One step suffices for axis-aligned bricks; curved cells
// use the full budget.
func SolveHex8(x, y, z float64, xn, yn, zn []float64, prm NewtonParams) (u, v, w float64, err error) {
	var rhs, delta mat.VecDense
	rhs.ReuseAsVec(3)
	for iter := 0; iter < prm.MaxIter; iter++ {
		xm, ym, zm := MapHex8(xn, yn, zn, u, v, w)
		rhs.SetVec(0, x-xm)
		rhs.SetVec(1, y-ym)
		rhs.SetVec(2, z-zm)
		jac := jacobianHex8(xn, yn, zn, u, v, w)
		if err := delta.SolveVec(jac, &rhs); err != nil {
			return u, v, w, ErrDegenerate
		}
		su, sv, sw := delta.AtVec(0), delta.AtVec(1), delta.AtVec(2)
		u += su
		v += sv
		w += sw
		if math.Max(math.Abs(su), math.Max(math.Abs(sv), math.Abs(sw))) < prm.Tol {
			return u, v, w, nil
		}
	}
	return u, v, w, ErrNotConverged
}

// InsideHex reports whether local coordinates lie in the reference cube
// within tol.
func InsideHex(u, v, w, tol float64) bool {
	return u >= -1-tol && u <= 1+tol &&
		v >= -1-tol && v <= 1+tol &&
		w >= -1-tol && w <= 1+tol
}

// PotentialHex8 interpolates nodal values with the trilinear basis.
func PotentialHex8(v []float64, lu, lv, lw float64) float64 {
	phi := hex8Shape(lu, lv, lw)
	var sum float64
	for i := 0; i < 8; i++ {
		sum += v[i] * phi[i]
	}
	return sum
}

// FieldHex8 returns the negative gradient of the trilinear interpolant in
// the global frame.
func FieldHex8(v, xn, yn, zn []float64, lu, lv, lw float64) (ex, ey, ez float64, err error) {
	jac := jacobianHex8(xn, yn, zn, lu, lv, lw)
	var jinv mat.Dense
	if err := jinv.Inverse(jac); err != nil {
		return 0, 0, 0, ErrDegenerate
	}
	du, dv, dw := hex8Deriv(lu, lv, lw)
	var gu, gv, gw float64
	for i := 0; i < 8; i++ {
		gu += v[i] * du[i]
		gv += v[i] * dv[i]
		gw += v[i] * dw[i]
	}
	// Rows of the inverse Jacobian are the gradients of the local
	// coordinates.
	ex = -(gu*jinv.At(0, 0) + gv*jinv.At(1, 0) + gw*jinv.At(2, 0))
	ey = -(gu*jinv.At(0, 1) + gv*jinv.At(1, 1) + gw*jinv.At(2, 1))
	ez = -(gu*jinv.At(0, 2) + gv*jinv.At(1, 2) + gw*jinv.At(2, 2))
	return ex, ey, ez, nil
}
