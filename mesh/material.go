package mesh

import "fmt"

// DriftMedium flags material i as a drift medium.
func (m *Mesh) DriftMedium(i int) error {
	if i < 0 || i >= len(m.Materials) {
		return fmt.Errorf("material index %d out of range [0, %d)", i, len(m.Materials))
	}
	m.Materials[i].DriftMedium = true
	return nil
}

// NotDriftMedium flags material i as a non-drift medium.
func (m *Mesh) NotDriftMedium(i int) error {
	if i < 0 || i >= len(m.Materials) {
		return fmt.Errorf("material index %d out of range [0, %d)", i, len(m.Materials))
	}
	m.Materials[i].DriftMedium = false
	return nil
}

// SetMedium associates material i with an externally owned medium.
func (m *Mesh) SetMedium(i int, med Medium) error {
	if i < 0 || i >= len(m.Materials) {
		return fmt.Errorf("material index %d out of range [0, %d)", i, len(m.Materials))
	}
	m.Materials[i].Medium = med
	return nil
}

// MediumAt returns the medium associated with material i, or nil.
func (m *Mesh) MediumAt(i int) Medium {
	if i < 0 || i >= len(m.Materials) {
		return nil
	}
	return m.Materials[i].Medium
}

// Permittivity returns the relative permittivity of material i.
func (m *Mesh) Permittivity(i int) (float64, error) {
	if i < 0 || i >= len(m.Materials) {
		return 0, fmt.Errorf("material index %d out of range [0, %d)", i, len(m.Materials))
	}
	return m.Materials[i].Eps, nil
}

// Conductivity returns the conductivity of material i, derived from its
// resistivity; zero resistivity yields zero conductivity.
func (m *Mesh) Conductivity(i int) (float64, error) {
	if i < 0 || i >= len(m.Materials) {
		return 0, fmt.Errorf("material index %d out of range [0, %d)", i, len(m.Materials))
	}
	if m.Materials[i].Ohm <= 0 {
		return 0, nil
	}
	return 1 / m.Materials[i].Ohm, nil
}

// SetDefaultDriftMedium flags every material with the lowest
// permittivity as a drift medium, the usual convention when the map
// itself carries no medium information. Fails if any permittivity is
// non-positive.
func (m *Mesh) SetDefaultDriftMedium() error {
	if len(m.Materials) == 0 {
		return fmt.Errorf("mesh has no materials")
	}
	epsMin := m.Materials[0].Eps
	for i := range m.Materials {
		if m.Materials[i].Eps <= 0 {
			return fmt.Errorf("material %d has non-positive permittivity %g", i, m.Materials[i].Eps)
		}
		if m.Materials[i].Eps < epsMin {
			epsMin = m.Materials[i].Eps
		}
	}
	// Ties all qualify, so at least one drift medium always exists.
	for i := range m.Materials {
		m.Materials[i].DriftMedium = m.Materials[i].Eps == epsMin
	}
	return nil
}
