package element

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Node ordering for tetrahedra follows the usual quadratic convention:
// slots 0-3 are the corners, slots 4-9 the mid-edge nodes on edges
// (0,1), (0,2), (0,3), (1,2), (1,3), (2,3).

// TetWeights caches, per element, the four gradient vectors of the linear
// barycentric coordinates. Row i is the constant global gradient of t_i,
// so the closed-form solve is four dot products. Computed once at mesh
// preparation, read many.
type TetWeights [4][3]float64

// NewTetWeights derives the barycentric gradients from the corner
// coordinates. ok is false when the corners are (near) coplanar.
func NewTetWeights(xn, yn, zn []float64) (w TetWeights, ok bool) {
	for i := 0; i < 4; i++ {
		// The three corners other than i, with b as the reference.
		b := (i + 1) % 4
		c := (i + 2) % 4
		d := (i + 3) % 4
		e1 := [3]float64{xn[c] - xn[b], yn[c] - yn[b], zn[c] - zn[b]}
		e2 := [3]float64{xn[d] - xn[b], yn[d] - yn[b], zn[d] - zn[b]}
		n := [3]float64{
			e1[1]*e2[2] - e1[2]*e2[1],
			e1[2]*e2[0] - e1[0]*e2[2],
			e1[0]*e2[1] - e1[1]*e2[0],
		}
		// Normalise so that t_i is one at corner i and zero on the
		// opposite face.
		denom := n[0]*(xn[i]-xn[b]) + n[1]*(yn[i]-yn[b]) + n[2]*(zn[i]-zn[b])
		if math.Abs(denom) < 1e-300 {
			return w, false
		}
		scale := scaleOf(xn, yn, zn)
		if math.Abs(denom) < 1e-12*scale*scale*scale {
			return w, false
		}
		w[i] = [3]float64{n[0] / denom, n[1] / denom, n[2] / denom}
	}
	return w, true
}

func scaleOf(xn, yn, zn []float64) float64 {
	s := 0.0
	for i := 1; i < 4; i++ {
		s = math.Max(s, math.Abs(xn[i]-xn[0]))
		s = math.Max(s, math.Abs(yn[i]-yn[0]))
		s = math.Max(s, math.Abs(zn[i]-zn[0]))
	}
	if s == 0 {
		return 1
	}
	return s
}

// SolveTet4 returns the barycentric coordinates of (x, y, z) with respect
// to the corner tetrahedron. Closed form, exact for linear mappings; also
// the Newton seed for the curved solve.
func SolveTet4(x, y, z float64, xn, yn, zn []float64, w TetWeights) (t [4]float64) {
	for i := 0; i < 4; i++ {
		b := (i + 1) % 4
		t[i] = (x-xn[b])*w[i][0] + (y-yn[b])*w[i][1] + (z-zn[b])*w[i][2]
	}
	return t
}

// tet10Shape evaluates the ten quadratic shape functions at barycentric t.
func tet10Shape(t [4]float64) [10]float64 {
	return [10]float64{
		t[0] * (2*t[0] - 1),
		t[1] * (2*t[1] - 1),
		t[2] * (2*t[2] - 1),
		t[3] * (2*t[3] - 1),
		4 * t[0] * t[1],
		4 * t[0] * t[2],
		4 * t[0] * t[3],
		4 * t[1] * t[2],
		4 * t[1] * t[3],
		4 * t[2] * t[3],
	}
}

// tet10Grad returns, for nodal values v, the four derivatives of the
// interpolant with respect to the barycentric coordinates.
func tet10Grad(v []float64, t [4]float64) [4]float64 {
	return [4]float64{
		v[0]*(4*t[0]-1) + 4*(v[4]*t[1] + v[5]*t[2] + v[6]*t[3]),
		v[1]*(4*t[1]-1) + 4*(v[4]*t[0] + v[7]*t[2] + v[8]*t[3]),
		v[2]*(4*t[2]-1) + 4*(v[5]*t[0] + v[7]*t[1] + v[9]*t[3]),
		v[3]*(4*t[3]-1) + 4*(v[6]*t[0] + v[8]*t[1] + v[9]*t[2]),
	}
}

// jacobianTet10 builds the 4x4 Jacobian of the augmented mapping
// (t -> sum t, x, y, z). The leading constraint row keeps the system
// square despite the barycentric redundancy.
func jacobianTet10(xn, yn, zn []float64, t [4]float64) *mat.Dense {
	jac := mat.NewDense(4, 4, nil)
	gx := tet10Grad(xn, t)
	gy := tet10Grad(yn, t)
	gz := tet10Grad(zn, t)
	for j := 0; j < 4; j++ {
		jac.Set(0, j, 1)
		jac.Set(1, j, gx[j])
		jac.Set(2, j, gy[j])
		jac.Set(3, j, gz[j])
	}
	return jac
}

// MapTet10 evaluates the isoparametric mapping at barycentric t.
func MapTet10(xn, yn, zn []float64, t [4]float64) (x, y, z float64) {
	phi := tet10Shape(t)
	for i := 0; i < 10; i++ {
		x += xn[i] * phi[i]
		y += yn[i] * phi[i]
		z += zn[i] * phi[i]
	}
	return x, y, z
}

// SolveTet10 inverts the curved quadratic mapping by Newton refinement
// from the linear barycentric seed. A singular Jacobian yields
// ErrDegenerate; exhausting the iteration budget yields ErrNotConverged
// together with the best estimate.
func SolveTet10(x, y, z float64, xn, yn, zn []float64, w TetWeights, prm NewtonParams) ([4]float64, error) {
	t := SolveTet4(x, y, z, xn, yn, zn, w)
	var rhs mat.VecDense
	var delta mat.VecDense
	rhs.ReuseAsVec(4)
	for iter := 0; iter < prm.MaxIter; iter++ {
		xm, ym, zm := MapTet10(xn, yn, zn, t)
		rhs.SetVec(0, 1-(t[0]+t[1]+t[2]+t[3]))
		rhs.SetVec(1, x-xm)
		rhs.SetVec(2, y-ym)
		rhs.SetVec(3, z-zm)
		jac := jacobianTet10(xn, yn, zn, t)
		if err := delta.SolveVec(jac, &rhs); err != nil {
			return t, ErrDegenerate
		}
		step := 0.0
		for j := 0; j < 4; j++ {
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

// InsideTet reports whether barycentric coordinates lie in the unit
// simplex within tol.
func InsideTet(t [4]float64, tol float64) bool {
	for _, ti := range t {
		if ti < -tol || ti > 1+tol {
			return false
		}
	}
	return true
}

// PotentialTet4 interpolates nodal values linearly at barycentric t.
func PotentialTet4(v []float64, t [4]float64) float64 {
	return v[0]*t[0] + v[1]*t[1] + v[2]*t[2] + v[3]*t[3]
}

// FieldTet4 returns the (constant) negative gradient of the linear
// interpolant. The barycentric gradient cache already holds the global
// gradients of the coordinates, so no Jacobian solve is needed.
func FieldTet4(v []float64, w TetWeights) (ex, ey, ez float64) {
	for i := 0; i < 4; i++ {
		ex -= v[i] * w[i][0]
		ey -= v[i] * w[i][1]
		ez -= v[i] * w[i][2]
	}
	return ex, ey, ez
}

// PotentialTet10 interpolates nodal values with the quadratic basis.
func PotentialTet10(v []float64, t [4]float64) float64 {
	phi := tet10Shape(t)
	var sum float64
	for i := 0; i < 10; i++ {
		sum += v[i] * phi[i]
	}
	return sum
}

// FieldTet10 returns the negative gradient of the quadratic interpolant
// in the global frame. The barycentric gradient is pushed through the
// inverse of the augmented Jacobian; columns 1-3 of the inverse are the
// derivatives of the local coordinates with respect to x, y, z.
func FieldTet10(v, xn, yn, zn []float64, t [4]float64) (ex, ey, ez float64, err error) {
	jac := jacobianTet10(xn, yn, zn, t)
	var jinv mat.Dense
	if err := jinv.Inverse(jac); err != nil {
		return 0, 0, 0, ErrDegenerate
	}
	g := tet10Grad(v, t)
	for j := 0; j < 4; j++ {
		ex -= g[j] * jinv.At(j, 1)
		ey -= g[j] * jinv.At(j, 2)
		ez -= g[j] * jinv.At(j, 3)
	}
	return ex, ey, ez, nil
}
