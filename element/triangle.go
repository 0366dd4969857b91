package element

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Node ordering for quadratic triangles: slots 0-2 are the corners,
// slots 3-5 the mid-edge nodes on edges (0,1), (0,2), (1,2). All
// coordinates are planar; z is carried unchanged by the caller.

// SolveTri3 returns the area (barycentric) coordinates of (x, y) with
// respect to the corner triangle. Closed form; ok is false for a
// collapsed triangle.
func SolveTri3(x, y float64, xn, yn []float64) (t [3]float64, ok bool) {
	det := (yn[1]-yn[2])*(xn[0]-xn[2]) + (xn[2]-xn[1])*(yn[0]-yn[2])
	if math.Abs(det) < 1e-300 {
		return t, false
	}
	t[0] = ((yn[1]-yn[2])*(x-xn[2]) + (xn[2]-xn[1])*(y-yn[2])) / det
	t[1] = ((yn[2]-yn[0])*(x-xn[2]) + (xn[0]-xn[2])*(y-yn[2])) / det
	t[2] = 1 - t[0] - t[1]
	return t, true
}

func tri6Shape(t [3]float64) [6]float64 {
	return [6]float64{
		t[0] * (2*t[0] - 1),
		t[1] * (2*t[1] - 1),
		t[2] * (2*t[2] - 1),
		4 * t[0] * t[1],
		4 * t[0] * t[2],
		4 * t[1] * t[2],
	}
}

func tri6Grad(v []float64, t [3]float64) [3]float64 {
	return [3]float64{
		v[0]*(4*t[0]-1) + 4*(v[3]*t[1] + v[4]*t[2]),
		v[1]*(4*t[1]-1) + 4*(v[3]*t[0] + v[5]*t[2]),
		v[2]*(4*t[2]-1) + 4*(v[4]*t[0] + v[5]*t[1]),
	}
}

func jacobianTri6(xn, yn []float64, t [3]float64) *mat.Dense {
	jac := mat.NewDense(3, 3, nil)
	gx := tri6Grad(xn, t)
	gy := tri6Grad(yn, t)
	for j := 0; j < 3; j++ {
		jac.Set(0, j, 1)
		jac.Set(1, j, gx[j])
		jac.Set(2, j, gy[j])
	}
	return jac
}

// MapTri6 evaluates the isoparametric mapping at area coordinates t.
func MapTri6(xn, yn []float64, t [3]float64) (x, y float64) {
	phi := tri6Shape(t)
	for i := 0; i < 6; i++ {
		x += xn[i] * phi[i]
		y += yn[i] * phi[i]
	}
	return x, y
}

// SolveTri6 inverts the curved triangle mapping by Newton refinement from
// the linear area-coordinate seed.
func SolveTri6(x, y float64, xn, yn []float64, prm NewtonParams) ([3]float64, error) {
	t, ok := SolveTri3(x, y, xn, yn)
	if !ok {
		return t, ErrDegenerate
	}
	var rhs, delta mat.VecDense
	rhs.ReuseAsVec(3)
	for iter := 0; iter < prm.MaxIter; iter++ {
		xm, ym := MapTri6(xn, yn, t)
		rhs.SetVec(0, 1-(t[0]+t[1]+t[2]))
		rhs.SetVec(1, x-xm)
		rhs.SetVec(2, y-ym)
		jac := jacobianTri6(xn, yn, t)
		if err := delta.SolveVec(jac, &rhs); err != nil {
			return t, ErrDegenerate
		}
		step := 0.0
		for j := 0; j < 3; j++ {
			d := delta.AtVec(j)
			t[j] += d
			step = math.Max(step, math.Abs(d))
		}
		if step < prm.Tol {
			return t, nil
		}
	}
	return t, ErrNotConverged
}

// InsideTri reports whether area coordinates lie in the unit triangle
// within tol.
func InsideTri(t [3]float64, tol float64) bool {
	for _, ti := range t {
		if ti < -tol || ti > 1+tol {
			return false
		}
	}
	return true
}

// PotentialTri6 interpolates nodal values with the quadratic basis.
func PotentialTri6(v []float64, t [3]float64) float64 {
	phi := tri6Shape(t)
	var sum float64
	for i := 0; i < 6; i++ {
		sum += v[i] * phi[i]
	}
	return sum
}

// FieldTri6 returns the in-plane negative gradient of the quadratic
// interpolant; the out-of-plane component is identically zero.
func FieldTri6(v, xn, yn []float64, t [3]float64) (ex, ey float64, err error) {
	jac := jacobianTri6(xn, yn, t)
	var jinv mat.Dense
	if err := jinv.Inverse(jac); err != nil {
		return 0, 0, ErrDegenerate
	}
	g := tri6Grad(v, t)
	for j := 0; j < 3; j++ {
		ex -= g[j] * jinv.At(j, 1)
		ey -= g[j] * jinv.At(j, 2)
	}
	return ex, ey, nil
}
