package mesh

import (
	"fmt"
	"strings"

	"github.com/driftworks/fieldmap/element"
)

// String returns a summary of the mesh contents and cached ranges.
func (m *Mesh) String() string {
	var sb strings.Builder

	sb.WriteString("=== Field Map Mesh Summary ===\n")
	sb.WriteString(fmt.Sprintf("  Nodes: %d\n", len(m.Nodes)))
	sb.WriteString(fmt.Sprintf("  Elements: %d (%d degenerate)\n", len(m.Elements), m.nDegenerate))

	counts := make(map[element.Shape]int)
	for i := range m.Elements {
		counts[m.Elements[i].Shape]++
	}
	for _, s := range []element.Shape{element.Triangle6, element.Quad8, element.Tet4, element.Tet10, element.Hex8} {
		if counts[s] > 0 {
			sb.WriteString(fmt.Sprintf("    %s: %d\n", s, counts[s]))
		}
	}

	sb.WriteString(fmt.Sprintf("  Materials: %d\n", len(m.Materials)))
	for i, mat := range m.Materials {
		med := "none"
		if mat.Medium != nil {
			med = mat.Medium.Label()
		}
		sb.WriteString(fmt.Sprintf("    %d: eps=%g ohm=%g drift=%v medium=%s\n",
			i, mat.Eps, mat.Ohm, mat.DriftMedium, med))
	}

	if m.ready {
		sb.WriteString(fmt.Sprintf("  X range: [%g, %g]\n", m.bbMin[0], m.bbMax[0]))
		sb.WriteString(fmt.Sprintf("  Y range: [%g, %g]\n", m.bbMin[1], m.bbMax[1]))
		if m.is3D {
			sb.WriteString(fmt.Sprintf("  Z range: [%g, %g]\n", m.bbMin[2], m.bbMax[2]))
		}
	}
	if m.hasPot {
		sb.WriteString(fmt.Sprintf("  Voltage range: [%g, %g]\n", m.vmin, m.vmax))
	}
	if len(m.wpot) > 0 {
		sb.WriteString(fmt.Sprintf("  Weighting potentials: %s\n", strings.Join(m.WeightingPotentialLabels(), ", ")))
	}
	for label, d := range m.dwpot {
		sb.WriteString(fmt.Sprintf("  Delayed weighting potential %q: %d time slices\n", label, len(d.Times)))
	}

	return sb.String()
}
