// Package mesh owns the finite-element mesh data: node coordinates,
// element connectivity, materials, and the nodal potential sets the
// interpolation engine reads. All derived caches (element bounding
// boxes, barycentric weight coefficients, coordinate ranges) are
// populated by Prepare and treated as immutable afterwards.
package mesh

import (
	"fmt"
	"math"

	"github.com/driftworks/fieldmap/element"
)

// Node is a mesh vertex in the global frame. Immutable after load.
type Node struct {
	X, Y, Z float64
}

// UnusedNode marks element node slots beyond the shape's node count.
const UnusedNode = -1

// Element is one mesh cell: up to ten node indices, a material index,
// and the shape tag that selects solver and basis. Degenerate marks
// collapsed connectivity (duplicate corner nodes); such elements are
// skipped during point location. The bounding box is filled by Prepare.
type Element struct {
	Nodes      [10]int
	Material   int
	Shape      element.Shape
	Degenerate bool
	BBMin      [3]float64
	BBMax      [3]float64
}

// Medium is an externally owned handle associated with a material. The
// mesh stores and returns the association but never interprets or frees
// it.
type Medium interface {
	Label() string
}

// Material describes one field-map material. Medium is a non-owning
// reference; nil is a valid state.
type Material struct {
	Eps         float64
	Ohm         float64
	DriftMedium bool
	Medium      Medium
}

// DelayedPotential is one named time-dependent weighting potential:
// slices of per-node values at strictly increasing timestamps.
type DelayedPotential struct {
	Times  []float64
	Slices [][]float64
}

// Mesh is the store for one field map. Populate it once, call Prepare,
// then treat it as read-only; concurrent queries are safe as long as no
// mutation is in flight.
type Mesh struct {
	Nodes     []Node
	Elements  []Element
	Materials []Material

	pot   []float64
	wpot  map[string][]float64
	dwpot map[string]*DelayedPotential

	tetWeights []element.TetWeights

	bbMin, bbMax [3]float64
	vmin, vmax   float64
	hasPot       bool
	is3D         bool
	nDegenerate  int
	ready        bool
}

// NewMesh validates connectivity-independent invariants and returns an
// unprepared mesh. Node indices are checked by Prepare, which owns the
// derived caches.
func NewMesh(nodes []Node, elements []Element, materials []Material) (*Mesh, error) {
	if len(nodes) == 0 {
		return nil, fmt.Errorf("mesh has no nodes")
	}
	if len(elements) == 0 {
		return nil, fmt.Errorf("mesh has no elements")
	}
	var n2d, n3d int
	for i := range elements {
		el := &elements[i]
		if el.Shape.NumNodes() == 0 {
			return nil, fmt.Errorf("element %d has unknown shape tag %d", i, el.Shape)
		}
		if el.Material < 0 || el.Material >= len(materials) {
			return nil, fmt.Errorf("element %d references material %d, have %d materials",
				i, el.Material, len(materials))
		}
		if el.Shape.Dimensions() == element.D3 {
			n3d++
		} else {
			n2d++
		}
	}
	if n2d > 0 && n3d > 0 {
		return nil, fmt.Errorf("mesh mixes planar and volume elements (%d planar, %d volume)", n2d, n3d)
	}
	return &Mesh{
		Nodes:     nodes,
		Elements:  elements,
		Materials: materials,
		wpot:      make(map[string][]float64),
		dwpot:     make(map[string]*DelayedPotential),
		is3D:      n3d > 0,
	}, nil
}

// Ready reports whether Prepare has completed successfully.
func (m *Mesh) Ready() bool { return m.ready }

// Is3D reports whether the mesh consists of volume elements. Planar
// meshes are treated as extruded along z: the z coordinate is ignored
// during point location and the field has no z component.
func (m *Mesh) Is3D() bool { return m.is3D }

// NumNodes returns the node count.
func (m *Mesh) NumNodes() int { return len(m.Nodes) }

// NumElements returns the element count.
func (m *Mesh) NumElements() int { return len(m.Elements) }

// NodeAt returns node i.
func (m *Mesh) NodeAt(i int) Node { return m.Nodes[i] }

// ElementAt returns element i.
func (m *Mesh) ElementAt(i int) Element { return m.Elements[i] }

// PotentialAt returns the primary potential at node i, zero when no
// potentials are loaded.
func (m *Mesh) PotentialAt(i int) float64 {
	if !m.hasPot {
		return 0
	}
	return m.pot[i]
}

// NumDegenerate returns the number of elements flagged degenerate by
// Prepare.
func (m *Mesh) NumDegenerate() int { return m.nDegenerate }

// BoundingBox returns the global coordinate range of the mesh.
func (m *Mesh) BoundingBox() (bbMin, bbMax [3]float64) {
	return m.bbMin, m.bbMax
}

// VoltageRange returns the range of the primary potential, valid once
// potentials are set.
func (m *Mesh) VoltageRange() (vmin, vmax float64) { return m.vmin, m.vmax }

// TetWeights returns the cached barycentric gradient coefficients for
// element i. Only meaningful for tetrahedral elements after Prepare.
func (m *Mesh) TetWeights(i int) element.TetWeights { return m.tetWeights[i] }

// ElementNodes gathers the coordinates of element i's nodes. The
// returned arrays are valid up to the shape's node count.
func (m *Mesh) ElementNodes(i int) (xn, yn, zn [10]float64) {
	el := &m.Elements[i]
	for j := 0; j < el.Shape.NumNodes(); j++ {
		nd := m.Nodes[el.Nodes[j]]
		xn[j], yn[j], zn[j] = nd.X, nd.Y, nd.Z
	}
	return xn, yn, zn
}

// ElementValues gathers per-node values of the given nodal array for
// element i.
func (m *Mesh) ElementValues(i int, values []float64) (v [10]float64) {
	el := &m.Elements[i]
	for j := 0; j < el.Shape.NumNodes(); j++ {
		v[j] = values[el.Nodes[j]]
	}
	return v
}

// ElementVolume returns the volume (or area, for planar shapes) of the
// corner geometry of element i.
func (m *Mesh) ElementVolume(i int) float64 {
	el := &m.Elements[i]
	xn, yn, zn := m.ElementNodes(i)
	switch el.Shape {
	case element.Tet4, element.Tet10:
		return math.Abs(tripleProduct(
			xn[1]-xn[0], yn[1]-yn[0], zn[1]-zn[0],
			xn[2]-xn[0], yn[2]-yn[0], zn[2]-zn[0],
			xn[3]-xn[0], yn[3]-yn[0], zn[3]-zn[0])) / 6
	case element.Triangle6:
		return 0.5 * math.Abs((xn[1]-xn[0])*(yn[2]-yn[0])-(xn[2]-xn[0])*(yn[1]-yn[0]))
	case element.Quad8:
		// Shoelace over the corners.
		a := xn[0]*yn[1] - xn[1]*yn[0] + xn[1]*yn[2] - xn[2]*yn[1] +
			xn[2]*yn[3] - xn[3]*yn[2] + xn[3]*yn[0] - xn[0]*yn[3]
		return 0.5 * math.Abs(a)
	case element.Hex8:
		// Split into five tetrahedra.
		var vol float64
		for _, c := range hexTets {
			vol += math.Abs(tripleProduct(
				xn[c[1]]-xn[c[0]], yn[c[1]]-yn[c[0]], zn[c[1]]-zn[c[0]],
				xn[c[2]]-xn[c[0]], yn[c[2]]-yn[c[0]], zn[c[2]]-zn[c[0]],
				xn[c[3]]-xn[c[0]], yn[c[3]]-yn[c[0]], zn[c[3]]-zn[c[0]])) / 6
		}
		return vol
	}
	return 0
}

var hexTets = [5][4]int{
	{0, 1, 3, 4}, {1, 2, 3, 6}, {1, 4, 5, 6}, {3, 4, 6, 7}, {1, 3, 4, 6},
}

// AspectRatio returns the shortest and longest corner-to-corner edge of
// element i.
func (m *Mesh) AspectRatio(i int) (dmin, dmax float64) {
	el := &m.Elements[i]
	nc := el.Shape.NumCorners()
	xn, yn, zn := m.ElementNodes(i)
	dmin = math.Inf(1)
	for a := 0; a < nc; a++ {
		for b := a + 1; b < nc; b++ {
			d := math.Sqrt((xn[a]-xn[b])*(xn[a]-xn[b]) +
				(yn[a]-yn[b])*(yn[a]-yn[b]) +
				(zn[a]-zn[b])*(zn[a]-zn[b]))
			if d < dmin {
				dmin = d
			}
			if d > dmax {
				dmax = d
			}
		}
	}
	return dmin, dmax
}

// Check scans all elements for vanishing volume or extreme aspect
// ratios and reports the number of suspicious ones.
func (m *Mesh) Check() int {
	const maxAspect = 100.
	var bad int
	for i := range m.Elements {
		if m.Elements[i].Degenerate {
			bad++
			continue
		}
		dmin, dmax := m.AspectRatio(i)
		if dmin <= 0 || dmax/dmin > maxAspect || m.ElementVolume(i) <= 0 {
			bad++
		}
	}
	return bad
}

func tripleProduct(ax, ay, az, bx, by, bz, cx, cy, cz float64) float64 {
	return ax*(by*cz-bz*cy) - ay*(bx*cz-bz*cx) + az*(bx*cy-by*cx)
}
