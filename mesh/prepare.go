package mesh

import (
	"fmt"
	"math"

	"github.com/driftworks/fieldmap/element"
)

// curvatureMargin pads the bounding boxes of curved (quadratic) shapes:
// a curved edge can overshoot the hull of its own nodes slightly, so the
// box is grown by this fraction of its extent per axis.
const curvatureMargin = 0.1

// Prepare validates node indices and populates every derived cache: the
// per-element bounding boxes, the barycentric weight coefficients for
// tetrahedra, degeneracy flags, and the global coordinate range.
// Idempotent; re-run it if node data changed. Queries must not run
// before Prepare succeeds.
func (m *Mesh) Prepare() error {
	m.ready = false
	m.nDegenerate = 0
	m.tetWeights = make([]element.TetWeights, len(m.Elements))

	for i := range m.Elements {
		el := &m.Elements[i]
		n := el.Shape.NumNodes()
		for j := 0; j < n; j++ {
			if el.Nodes[j] < 0 || el.Nodes[j] >= len(m.Nodes) {
				return fmt.Errorf("element %d node slot %d references node %d, have %d nodes",
					i, j, el.Nodes[j], len(m.Nodes))
			}
		}
		m.computeBoundingBox(i)
		el.Degenerate = m.hasDuplicateCorners(i)
		switch el.Shape {
		case element.Tet4, element.Tet10:
			if !el.Degenerate {
				xn, yn, zn := m.ElementNodes(i)
				w, ok := element.NewTetWeights(xn[:], yn[:], zn[:])
				if !ok {
					el.Degenerate = true
				}
				m.tetWeights[i] = w
			}
		}
		if el.Degenerate {
			m.nDegenerate++
		}
	}

	m.computeRange()
	m.ready = true
	return nil
}

func (m *Mesh) computeBoundingBox(i int) {
	el := &m.Elements[i]
	n := el.Shape.NumNodes()
	for k := 0; k < 3; k++ {
		el.BBMin[k] = math.Inf(1)
		el.BBMax[k] = math.Inf(-1)
	}
	for j := 0; j < n; j++ {
		nd := m.Nodes[el.Nodes[j]]
		c := [3]float64{nd.X, nd.Y, nd.Z}
		for k := 0; k < 3; k++ {
			el.BBMin[k] = math.Min(el.BBMin[k], c[k])
			el.BBMax[k] = math.Max(el.BBMax[k], c[k])
		}
	}
	if el.Shape == element.Triangle6 || el.Shape == element.Quad8 || el.Shape == element.Tet10 {
		for k := 0; k < 3; k++ {
			pad := curvatureMargin * (el.BBMax[k] - el.BBMin[k])
			el.BBMin[k] -= pad
			el.BBMax[k] += pad
		}
	}
}

// hasDuplicateCorners reports collapsed connectivity: two corner slots
// referencing the same node.
func (m *Mesh) hasDuplicateCorners(i int) bool {
	el := &m.Elements[i]
	nc := el.Shape.NumCorners()
	for a := 0; a < nc; a++ {
		for b := a + 1; b < nc; b++ {
			if el.Nodes[a] == el.Nodes[b] {
				return true
			}
		}
	}
	return false
}

func (m *Mesh) computeRange() {
	for k := 0; k < 3; k++ {
		m.bbMin[k] = math.Inf(1)
		m.bbMax[k] = math.Inf(-1)
	}
	for _, nd := range m.Nodes {
		c := [3]float64{nd.X, nd.Y, nd.Z}
		for k := 0; k < 3; k++ {
			m.bbMin[k] = math.Min(m.bbMin[k], c[k])
			m.bbMax[k] = math.Max(m.bbMax[k], c[k])
		}
	}
}

// InBoundingBox is the strict per-axis containment test against the
// global mesh range. All three axes are compared against their own
// bounds independently.
func (m *Mesh) InBoundingBox(x, y, z float64) bool {
	if !m.is3D {
		return x >= m.bbMin[0] && x <= m.bbMax[0] &&
			y >= m.bbMin[1] && y <= m.bbMax[1]
	}
	return x >= m.bbMin[0] && x <= m.bbMax[0] &&
		y >= m.bbMin[1] && y <= m.bbMax[1] &&
		z >= m.bbMin[2] && z <= m.bbMax[2]
}

// InElementBox is the strict per-axis containment test against element
// i's cached box.
func (m *Mesh) InElementBox(i int, x, y, z float64) bool {
	el := &m.Elements[i]
	if x < el.BBMin[0] || x > el.BBMax[0] || y < el.BBMin[1] || y > el.BBMax[1] {
		return false
	}
	if m.is3D && (z < el.BBMin[2] || z > el.BBMax[2]) {
		return false
	}
	return true
}
