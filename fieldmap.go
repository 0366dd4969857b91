// Package fieldmap evaluates electrostatic and weighting fields from a
// finite-element field map: it locates the element containing a query
// point, inverts the isoparametric mapping to local coordinates, and
// interpolates nodal potentials and their gradients. After setup all
// query methods are read-only and safe for concurrent use; mutating
// calls (symmetry setters, weighting copies, option toggles) must be
// serialized by the caller before queries begin.
package fieldmap

import (
	"fmt"
	"math"
	"sync"

	"github.com/driftworks/fieldmap/mesh"
	"github.com/driftworks/fieldmap/octree"
)

// FieldMap is the interpolation engine over one prepared mesh.
type FieldMap struct {
	msh *mesh.Mesh
	cfg Config

	sym symmetry

	wcopies map[string]weightingCopy

	treeOnce sync.Once
	tree     *octree.Tree
}

// New wraps a prepared mesh. The spatial index is built lazily on first
// query; Reset invalidates it after a mesh change.
func New(msh *mesh.Mesh, cfg Config) (*FieldMap, error) {
	if msh == nil {
		return nil, fmt.Errorf("nil mesh")
	}
	if !msh.Ready() {
		return nil, fmt.Errorf("mesh is not prepared")
	}
	return &FieldMap{
		msh:     msh,
		cfg:     cfg,
		sym:     newSymmetry(),
		wcopies: make(map[string]weightingCopy),
	}, nil
}

// Mesh returns the underlying mesh store.
func (f *FieldMap) Mesh() *mesh.Mesh { return f.msh }

// Reset discards the spatial index so it is rebuilt on the next query.
// Call after re-preparing the mesh. Not safe against concurrent queries.
func (f *FieldMap) Reset() {
	f.treeOnce = sync.Once{}
	f.tree = nil
}

// EnableCheckMapIndices toggles the multiple-containment diagnostic
// scan.
func (f *FieldMap) EnableCheckMapIndices(on bool) { f.cfg.CheckMultipleElement = on }

// EnableBackgroundElementPruning toggles skipping of elements that can
// never yield a usable result.
func (f *FieldMap) EnableBackgroundElementPruning(on bool) { f.cfg.PruneBackgroundElements = on }

// EnableOctreeSearch toggles the spatial index; disabled, queries scan
// all elements linearly with identical results.
func (f *FieldMap) EnableOctreeSearch(on bool) { f.cfg.UseOctree = on }

// EnableConvergenceWarnings toggles the non-convergence diagnostics.
func (f *FieldMap) EnableConvergenceWarnings(on bool) { f.cfg.ConvergenceWarnings = on }

func (f *FieldMap) ensureTree() *octree.Tree {
	f.treeOnce.Do(func() {
		bbMin, bbMax := f.msh.BoundingBox()
		var origin, half [3]float64
		for k := 0; k < 3; k++ {
			origin[k] = 0.5 * (bbMin[k] + bbMax[k])
			half[k] = 0.5 * (bbMax[k] - bbMin[k])
			// Keep flat meshes indexable.
			if half[k] <= 0 {
				half[k] = 1
			}
		}
		// Planar meshes are indexed on the z = 0 plane no matter where
		// their nodes sit; queries are projected the same way.
		flat := !f.msh.Is3D()
		if flat {
			origin[2], half[2] = 0, 1
		}
		t := octree.New(origin, half, f.cfg.OctreeBlockCapacity, f.cfg.OctreeMaxDepth)
		for i := range f.msh.Elements {
			el := &f.msh.Elements[i]
			bmin, bmax := el.BBMin, el.BBMax
			if flat {
				bmin[2], bmax[2] = 0, 0
			}
			t.Insert(i, bmin, bmax)
		}
		f.tree = t
	})
	return f.tree
}

// BoundingBox returns the coordinate range reachable by queries:
// the mesh range, opened to infinity along periodic axes.
func (f *FieldMap) BoundingBox() (bbMin, bbMax [3]float64) {
	bbMin, bbMax = f.msh.BoundingBox()
	for k := 0; k < 3; k++ {
		if f.sym.periodic[k] || f.sym.mirror[k] {
			bbMin[k] = math.Inf(-1)
			bbMax[k] = math.Inf(1)
		}
	}
	if a := f.sym.axialAxis(); a >= 0 {
		u, v := transverse(a)
		d := math.Max(math.Max(math.Abs(bbMin[u]), math.Abs(bbMax[u])),
			math.Max(math.Abs(bbMin[v]), math.Abs(bbMax[v])))
		bbMin[u], bbMax[u] = -d, d
		bbMin[v], bbMax[v] = -d, d
	}
	return bbMin, bbMax
}

// ElementaryCell returns the canonical cell the mesh actually covers,
// before any symmetry unfolds it.
func (f *FieldMap) ElementaryCell() (bbMin, bbMax [3]float64) {
	return f.msh.BoundingBox()
}

// VoltageRange returns the range of the primary potential.
func (f *FieldMap) VoltageRange() (vmin, vmax float64) {
	return f.msh.VoltageRange()
}

// ElectricField evaluates the electrostatic field at (x, y, z). The
// returned medium is the one associated with the containing element's
// material, nil when the point is outside or in an unassociated
// material.
func (f *FieldMap) ElectricField(x, y, z float64) (ex, ey, ez float64, med mesh.Medium, status Status) {
	ex, ey, ez, _, med, status = f.electricField(x, y, z)
	return ex, ey, ez, med, status
}

// ElectricFieldWithPotential is ElectricField plus the interpolated
// potential.
func (f *FieldMap) ElectricFieldWithPotential(x, y, z float64) (ex, ey, ez, v float64, med mesh.Medium, status Status) {
	return f.electricField(x, y, z)
}

func (f *FieldMap) electricField(x, y, z float64) (ex, ey, ez, v float64, med mesh.Medium, status Status) {
	f.cfg.Collector.ObserveQuery("electric")
	if !f.msh.Ready() || !f.msh.HasPotentials() {
		return 0, 0, 0, 0, nil, StatusNotReady
	}
	xm, ym, zm, fl := f.sym.mapCoordinates(x, y, z, f.msh)
	loc, found, sawDegenerate := f.locate(xm, ym, zm)
	if !found {
		f.cfg.Collector.ObserveMiss()
		if sawDegenerate {
			return 0, 0, 0, 0, nil, StatusDegenerate
		}
		return 0, 0, 0, 0, nil, StatusOutside
	}
	pot := f.msh.Potentials()
	v = f.potentialAt(loc, pot)
	ex, ey, ez, err := f.fieldAt(loc, pot)
	if err != nil {
		f.cfg.Collector.ObserveMiss()
		return 0, 0, 0, 0, nil, StatusDegenerate
	}
	ex, ey, ez = f.sym.unmapFields(ex, ey, ez, fl)

	mat := &f.msh.Materials[f.msh.Elements[loc.elem].Material]
	med = mat.Medium
	status = StatusOK
	if !mat.DriftMedium || med == nil {
		status = StatusNotDriftable
	}
	return ex, ey, ez, v, med, status
}

// Potential evaluates the electrostatic potential at (x, y, z); ok is
// false outside the mesh.
func (f *FieldMap) Potential(x, y, z float64) (v float64, ok bool) {
	f.cfg.Collector.ObserveQuery("potential")
	if !f.msh.Ready() || !f.msh.HasPotentials() {
		return 0, false
	}
	return f.scalarAt(x, y, z, f.msh.Potentials())
}

// GetMedium returns the medium occupying (x, y, z), or nil when the
// point is outside the mesh or in a material without an associated
// medium.
func (f *FieldMap) GetMedium(x, y, z float64) mesh.Medium {
	f.cfg.Collector.ObserveQuery("medium")
	if !f.msh.Ready() {
		return nil
	}
	xm, ym, zm, _ := f.sym.mapCoordinates(x, y, z, f.msh)
	loc, found, _ := f.locate(xm, ym, zm)
	if !found {
		f.cfg.Collector.ObserveMiss()
		return nil
	}
	return f.msh.Materials[f.msh.Elements[loc.elem].Material].Medium
}

// scalarAt folds the point and interpolates one nodal array there.
func (f *FieldMap) scalarAt(x, y, z float64, values []float64) (float64, bool) {
	xm, ym, zm, _ := f.sym.mapCoordinates(x, y, z, f.msh)
	loc, found, _ := f.locate(xm, ym, zm)
	if !found {
		f.cfg.Collector.ObserveMiss()
		return 0, false
	}
	return f.potentialAt(loc, values), true
}
