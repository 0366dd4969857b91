package mesh

import (
	"fmt"
	"math"
	"sort"
)

// SetPotentials stores the primary (electrostatic) nodal potentials and
// updates the voltage range.
func (m *Mesh) SetPotentials(v []float64) error {
	if len(v) != len(m.Nodes) {
		return fmt.Errorf("potential array has %d entries, mesh has %d nodes", len(v), len(m.Nodes))
	}
	m.pot = v
	m.vmin, m.vmax = math.Inf(1), math.Inf(-1)
	for _, p := range v {
		m.vmin = math.Min(m.vmin, p)
		m.vmax = math.Max(m.vmax, p)
	}
	m.hasPot = true
	return nil
}

// Potentials returns the primary nodal potentials, or nil when unset.
func (m *Mesh) Potentials() []float64 { return m.pot }

// HasPotentials reports whether primary potentials are loaded.
func (m *Mesh) HasPotentials() bool { return m.hasPot }

// SetWeightingPotential stores a named weighting potential.
func (m *Mesh) SetWeightingPotential(label string, v []float64) error {
	if label == "" {
		return fmt.Errorf("weighting potential label must not be empty")
	}
	if len(v) != len(m.Nodes) {
		return fmt.Errorf("weighting potential %q has %d entries, mesh has %d nodes",
			label, len(v), len(m.Nodes))
	}
	m.wpot[label] = v
	return nil
}

// WeightingPotential returns the nodal values for a named weighting
// potential.
func (m *Mesh) WeightingPotential(label string) ([]float64, bool) {
	v, ok := m.wpot[label]
	return v, ok
}

// WeightingPotentialLabels returns all registered weighting potential
// labels in sorted order.
func (m *Mesh) WeightingPotentialLabels() []string {
	labels := make([]string, 0, len(m.wpot))
	for l := range m.wpot {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	return labels
}

// SetDelayedWeightingPotential stores a named time-dependent weighting
// potential. Timestamps must strictly increase and every slice must hold
// one value per node.
func (m *Mesh) SetDelayedWeightingPotential(label string, times []float64, slices [][]float64) error {
	if label == "" {
		return fmt.Errorf("delayed weighting potential label must not be empty")
	}
	if len(times) == 0 || len(times) != len(slices) {
		return fmt.Errorf("delayed weighting potential %q: %d timestamps for %d slices",
			label, len(times), len(slices))
	}
	for i, tv := range times {
		if i > 0 && tv <= times[i-1] {
			return fmt.Errorf("delayed weighting potential %q: timestamps not strictly increasing at index %d", label, i)
		}
		if len(slices[i]) != len(m.Nodes) {
			return fmt.Errorf("delayed weighting potential %q slice %d has %d entries, mesh has %d nodes",
				label, i, len(slices[i]), len(m.Nodes))
		}
	}
	m.dwpot[label] = &DelayedPotential{Times: times, Slices: slices}
	return nil
}

// DelayedWeightingPotential returns a named delayed weighting potential.
func (m *Mesh) DelayedWeightingPotential(label string) (*DelayedPotential, bool) {
	d, ok := m.dwpot[label]
	return d, ok
}
