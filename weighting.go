package fieldmap

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
)

func cos(a float64) float64 { return math.Cos(a) }
func sin(a float64) float64 { return math.Sin(a) }

// weightingCopy aliases an existing weighting potential under a new
// electrode label with a rigid transform. No nodal data is duplicated:
// the query point is moved into the source's frame and the resulting
// field vector is rotated back.
type weightingCopy struct {
	source string
	rot    *mat.Dense
	trans  [3]float64
}

// rotationMatrix composes rotations by alpha, beta, gamma around the x,
// y and z axes, applied in that order.
func rotationMatrix(alpha, beta, gamma float64) *mat.Dense {
	rx := mat.NewDense(3, 3, []float64{
		1, 0, 0,
		0, cos(alpha), -sin(alpha),
		0, sin(alpha), cos(alpha),
	})
	ry := mat.NewDense(3, 3, []float64{
		cos(beta), 0, sin(beta),
		0, 1, 0,
		-sin(beta), 0, cos(beta),
	})
	rz := mat.NewDense(3, 3, []float64{
		cos(gamma), -sin(gamma), 0,
		sin(gamma), cos(gamma), 0,
		0, 0, 1,
	})
	r := mat.NewDense(3, 3, nil)
	r.Mul(ry, rx)
	r.Mul(rz, r)
	return r
}

// CopyWeightingPotential registers label as a rigid-transform alias of
// an existing weighting potential: the new electrode is the source
// translated by (dx, dy, dz) and rotated by alpha, beta, gamma around
// the x, y, z axes. Fails if the source does not exist or the label is
// already taken.
func (f *FieldMap) CopyWeightingPotential(label, source string, dx, dy, dz, alpha, beta, gamma float64) error {
	if label == "" {
		return fmt.Errorf("weighting potential label must not be empty")
	}
	// The source may carry static nodal values, delayed time slices, or
	// both.
	_, hasStatic := f.msh.WeightingPotential(source)
	_, hasDelayed := f.msh.DelayedWeightingPotential(source)
	if !hasStatic && !hasDelayed {
		return fmt.Errorf("weighting potential %q does not exist", source)
	}
	if _, ok := f.msh.WeightingPotential(label); ok {
		return fmt.Errorf("weighting potential %q already exists", label)
	}
	if _, ok := f.msh.DelayedWeightingPotential(label); ok {
		return fmt.Errorf("delayed weighting potential %q already exists", label)
	}
	if _, ok := f.wcopies[label]; ok {
		return fmt.Errorf("weighting potential copy %q already exists", label)
	}
	f.wcopies[label] = weightingCopy{
		source: source,
		rot:    rotationMatrix(alpha, beta, gamma),
		trans:  [3]float64{dx, dy, dz},
	}
	return nil
}

// RemoveWeightingPotentialCopy deletes a copy registration. Removing an
// unknown label is a no-op.
func (f *FieldMap) RemoveWeightingPotentialCopy(label string) {
	delete(f.wcopies, label)
}

// resolveWeighting maps a queried label to the label carrying nodal
// data, transforming the query point into the source frame when the
// label is a copy.
func (f *FieldMap) resolveWeighting(label string, x, y, z float64) (src string, cp *weightingCopy, xs, ys, zs float64) {
	if c, ok := f.wcopies[label]; ok {
		// p' = R^T (p - T); the rotation is orthogonal.
		px := x - c.trans[0]
		py := y - c.trans[1]
		pz := z - c.trans[2]
		xs = c.rot.At(0, 0)*px + c.rot.At(1, 0)*py + c.rot.At(2, 0)*pz
		ys = c.rot.At(0, 1)*px + c.rot.At(1, 1)*py + c.rot.At(2, 1)*pz
		zs = c.rot.At(0, 2)*px + c.rot.At(1, 2)*py + c.rot.At(2, 2)*pz
		return c.source, &c, xs, ys, zs
	}
	return label, nil, x, y, z
}

// WeightingField evaluates the weighting field of the named electrode.
// Unknown labels yield a zero field.
func (f *FieldMap) WeightingField(x, y, z float64, label string) (wx, wy, wz float64) {
	f.cfg.Collector.ObserveQuery("weighting_field")
	if !f.msh.Ready() {
		return 0, 0, 0
	}
	src, cp, xs, ys, zs := f.resolveWeighting(label, x, y, z)
	values, ok := f.msh.WeightingPotential(src)
	if !ok {
		return 0, 0, 0
	}
	xm, ym, zm, fl := f.sym.mapCoordinates(xs, ys, zs, f.msh)
	loc, found, _ := f.locate(xm, ym, zm)
	if !found {
		f.cfg.Collector.ObserveMiss()
		return 0, 0, 0
	}
	wx, wy, wz, err := f.fieldAt(loc, values)
	if err != nil {
		return 0, 0, 0
	}
	wx, wy, wz = f.sym.unmapFields(wx, wy, wz, fl)
	if cp != nil {
		// Rotate the field vector back into the copy's frame.
		rx := cp.rot.At(0, 0)*wx + cp.rot.At(0, 1)*wy + cp.rot.At(0, 2)*wz
		ry := cp.rot.At(1, 0)*wx + cp.rot.At(1, 1)*wy + cp.rot.At(1, 2)*wz
		rz := cp.rot.At(2, 0)*wx + cp.rot.At(2, 1)*wy + cp.rot.At(2, 2)*wz
		wx, wy, wz = rx, ry, rz
	}
	return wx, wy, wz
}

// WeightingPotential evaluates the weighting potential of the named
// electrode; zero outside the mesh or for unknown labels.
func (f *FieldMap) WeightingPotential(x, y, z float64, label string) float64 {
	f.cfg.Collector.ObserveQuery("weighting_potential")
	if !f.msh.Ready() {
		return 0
	}
	src, _, xs, ys, zs := f.resolveWeighting(label, x, y, z)
	values, ok := f.msh.WeightingPotential(src)
	if !ok {
		return 0
	}
	v, _ := f.scalarAt(xs, ys, zs, values)
	return v
}

// DelayedWeightingPotential evaluates a time-dependent weighting
// potential at time t by linear interpolation between the two adjacent
// stored time slices. Times outside the stored range clamp to the first
// or last slice.
func (f *FieldMap) DelayedWeightingPotential(x, y, z, t float64, label string) float64 {
	f.cfg.Collector.ObserveQuery("delayed_weighting_potential")
	if !f.msh.Ready() {
		return 0
	}
	src, _, xs, ys, zs := f.resolveWeighting(label, x, y, z)
	d, ok := f.msh.DelayedWeightingPotential(src)
	if !ok {
		return 0
	}
	i0, i1, f0, f1 := timeInterpolation(d.Times, t)

	xm, ym, zm, _ := f.sym.mapCoordinates(xs, ys, zs, f.msh)
	loc, found, _ := f.locate(xm, ym, zm)
	if !found {
		f.cfg.Collector.ObserveMiss()
		return 0
	}
	v := f0 * f.potentialAt(loc, d.Slices[i0])
	if f1 > 0 {
		v += f1 * f.potentialAt(loc, d.Slices[i1])
	}
	return v
}

// timeInterpolation locates the bracketing time slices for t and the
// linear blend weights. f0 + f1 is always one.
func timeInterpolation(times []float64, t float64) (i0, i1 int, f0, f1 float64) {
	n := len(times)
	if t <= times[0] {
		return 0, 0, 1, 0
	}
	if t >= times[n-1] {
		return n - 1, n - 1, 1, 0
	}
	i1 = sort.SearchFloat64s(times, t)
	if times[i1] == t {
		return i1, i1, 1, 0
	}
	i0 = i1 - 1
	f1 = (t - times[i0]) / (times[i1] - times[i0])
	return i0, i1, 1 - f1, f1
}
