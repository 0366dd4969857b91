package fieldmap

import (
	"errors"

	"github.com/driftworks/fieldmap/element"
	"github.com/driftworks/fieldmap/logging"
)

// location is a validated point-location result: the containing element
// and its local coordinates. t holds barycentric coordinates for
// simplices and reference-cube coordinates for quadrilaterals and
// hexahedra; unused slots are zero.
type location struct {
	elem int
	t    [4]float64
}

// locate finds the element containing the (already folded) point. The
// first candidate that passes the containment test wins; with
// CheckMultipleElement enabled, the full candidate set is scanned and
// multiple containment logged, without changing which element is used.
func (f *FieldMap) locate(x, y, z float64) (loc location, found, sawDegenerate bool) {
	if !f.msh.InBoundingBox(x, y, z) {
		return loc, false, false
	}
	var candidates []int
	if f.cfg.UseOctree {
		p := [3]float64{x, y, z}
		if !f.msh.Is3D() {
			// Planar maps are extruded along z; index on the plane.
			p[2] = 0
		}
		candidates = f.ensureTree().BlockElements(p)
	} else {
		candidates = make([]int, f.msh.NumElements())
		for i := range candidates {
			candidates[i] = i
		}
	}
	f.cfg.Collector.ObserveCandidates(len(candidates))

	nFound := 0
	for _, i := range candidates {
		el := &f.msh.Elements[i]
		if el.Degenerate {
			if f.msh.InElementBox(i, x, y, z) {
				sawDegenerate = true
				f.cfg.Collector.ObserveDegenerateSkip()
			}
			continue
		}
		if f.cfg.PruneBackgroundElements {
			mat := &f.msh.Materials[el.Material]
			if !mat.DriftMedium && mat.Medium == nil {
				continue
			}
		}
		if !f.msh.InElementBox(i, x, y, z) {
			continue
		}
		t, inside := f.solve(i, x, y, z)
		if !inside {
			continue
		}
		nFound++
		if nFound == 1 {
			loc = location{elem: i, t: t}
			if !f.cfg.CheckMultipleElement {
				return loc, true, sawDegenerate
			}
		}
	}
	if nFound > 1 {
		if logging.Occasional("multiple containing elements") {
			logging.Warnf("point (%g, %g, %g) contained by %d elements, using element %d",
				x, y, z, nFound, loc.elem)
		}
	}
	return loc, nFound > 0, sawDegenerate
}

// solve inverts the isoparametric mapping of element i at the point and
// tests containment.
func (f *FieldMap) solve(i int, x, y, z float64) (t [4]float64, inside bool) {
	el := &f.msh.Elements[i]
	xn, yn, zn := f.msh.ElementNodes(i)
	prm := f.cfg.newtonParams()

	switch el.Shape {
	case element.Tet4:
		tb := element.SolveTet4(x, y, z, xn[:4], yn[:4], zn[:4], f.msh.TetWeights(i))
		if !element.InsideTet(tb, element.InsideTol) {
			return t, false
		}
		copy(t[:], tb[:])
		return t, true

	case element.Tet10:
		// Cheap rejection on the linear seed before Newton refinement.
		seed := element.SolveTet4(x, y, z, xn[:10], yn[:10], zn[:10], f.msh.TetWeights(i))
		if !element.InsideTet(seed, element.SeedTol) {
			return t, false
		}
		tb, err := element.SolveTet10(x, y, z, xn[:10], yn[:10], zn[:10], f.msh.TetWeights(i), prm)
		if !f.acceptSolve(err) {
			return t, false
		}
		if !element.InsideTet(tb, element.InsideTol) {
			return t, false
		}
		copy(t[:], tb[:])
		return t, true

	case element.Triangle6:
		ta, err := element.SolveTri6(x, y, xn[:6], yn[:6], prm)
		if !f.acceptSolve(err) {
			return t, false
		}
		if !element.InsideTri(ta, element.InsideTol) {
			return t, false
		}
		copy(t[:3], ta[:])
		return t, true

	case element.Quad8:
		u, v, err := element.SolveQuad8(x, y, xn[:8], yn[:8], prm)
		if !f.acceptSolve(err) {
			return t, false
		}
		if !element.InsideQuad(u, v, element.InsideTol) {
			return t, false
		}
		t[0], t[1] = u, v
		return t, true

	case element.Hex8:
		u, v, w, err := element.SolveHex8(x, y, z, xn[:8], yn[:8], zn[:8], prm)
		if !f.acceptSolve(err) {
			return t, false
		}
		if !element.InsideHex(u, v, w, element.InsideTol) {
			return t, false
		}
		t[0], t[1], t[2] = u, v, w
		return t, true
	}
	return t, false
}

// acceptSolve applies the non-convergence policy: degenerate mappings
// disqualify the element, an exhausted iteration budget is advisory and
// the best estimate stays in play.
func (f *FieldMap) acceptSolve(err error) bool {
	switch {
	case err == nil:
		return true
	case errors.Is(err, element.ErrNotConverged):
		f.cfg.Collector.ObserveNonConverged()
		if f.cfg.ConvergenceWarnings && logging.Occasional("local-coordinate convergence") {
			logging.Warnf("local-coordinate solve exhausted its iteration budget, using best estimate")
		}
		return true
	default:
		return false
	}
}

// potentialAt interpolates one nodal array at a validated location.
func (f *FieldMap) potentialAt(loc location, values []float64) float64 {
	el := &f.msh.Elements[loc.elem]
	v := f.msh.ElementValues(loc.elem, values)
	switch el.Shape {
	case element.Tet4:
		return element.PotentialTet4(v[:4], [4]float64{loc.t[0], loc.t[1], loc.t[2], loc.t[3]})
	case element.Tet10:
		return element.PotentialTet10(v[:10], loc.t)
	case element.Triangle6:
		return element.PotentialTri6(v[:6], [3]float64{loc.t[0], loc.t[1], loc.t[2]})
	case element.Quad8:
		return element.PotentialQuad8(v[:8], loc.t[0], loc.t[1])
	case element.Hex8:
		return element.PotentialHex8(v[:8], loc.t[0], loc.t[1], loc.t[2])
	}
	return 0
}

// fieldAt evaluates the negative gradient of one nodal array at a
// validated location, in the folded global frame.
func (f *FieldMap) fieldAt(loc location, values []float64) (ex, ey, ez float64, err error) {
	el := &f.msh.Elements[loc.elem]
	v := f.msh.ElementValues(loc.elem, values)
	xn, yn, zn := f.msh.ElementNodes(loc.elem)
	switch el.Shape {
	case element.Tet4:
		ex, ey, ez = element.FieldTet4(v[:4], f.msh.TetWeights(loc.elem))
		return ex, ey, ez, nil
	case element.Tet10:
		return element.FieldTet10(v[:10], xn[:10], yn[:10], zn[:10], loc.t)
	case element.Triangle6:
		ex, ey, err = element.FieldTri6(v[:6], xn[:6], yn[:6], [3]float64{loc.t[0], loc.t[1], loc.t[2]})
		return ex, ey, 0, err
	case element.Quad8:
		ex, ey, err = element.FieldQuad8(v[:8], xn[:8], yn[:8], loc.t[0], loc.t[1])
		return ex, ey, 0, err
	case element.Hex8:
		return element.FieldHex8(v[:8], xn[:8], yn[:8], zn[:8], loc.t[0], loc.t[1], loc.t[2])
	}
	return 0, 0, 0, nil
}
