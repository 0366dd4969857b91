package fieldmap

import (
	"fmt"
	"math"

	"github.com/driftworks/fieldmap/mesh"
)

// Axis selects a coordinate axis for the symmetry setters.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

// symmetry is the coordinate transform layer: it folds query points
// lying outside the stored cell into the canonical domain and unfolds
// the resulting field vectors back into the caller's frame.
type symmetry struct {
	periodic [3]bool
	mirror   [3]bool
	axial    [3]bool
	sectors  [3]int
}

// fold records how a point was mapped so the field can be mapped back:
// which axes ended up reflected and which rotation was applied around
// the axially periodic axis.
type fold struct {
	mirrored [3]bool
	axis     int // axially periodic axis, -1 when none
	rot      float64
}

func newSymmetry() symmetry { return symmetry{} }

func (s *symmetry) axialAxis() int {
	for k := 0; k < 3; k++ {
		if s.axial[k] {
			return k
		}
	}
	return -1
}

// transverse returns the two axes orthogonal to a, in right-handed
// order.
func transverse(a int) (int, int) {
	switch a {
	case 0:
		return 1, 2
	case 1:
		return 2, 0
	}
	return 0, 1
}

// EnablePeriodicity declares the map translationally periodic along the
// axis, with the mesh extent as the period. Replaces any mirror
// periodicity on that axis.
func (f *FieldMap) EnablePeriodicity(axis Axis) {
	f.sym.periodic[axis] = true
	f.sym.mirror[axis] = false
}

// EnableMirrorPeriodicity declares the map mirror periodic along the
// axis: successive cells alternate between the stored map and its
// reflection. Replaces plain periodicity on that axis.
func (f *FieldMap) EnableMirrorPeriodicity(axis Axis) {
	f.sym.mirror[axis] = true
	f.sym.periodic[axis] = false
}

// DisablePeriodicity removes translational and mirror periodicity on
// the axis.
func (f *FieldMap) DisablePeriodicity(axis Axis) {
	f.sym.periodic[axis] = false
	f.sym.mirror[axis] = false
}

// EnableAxialPeriodicity declares the map rotationally periodic around
// the axis with the given number of sectors; the stored wedge is
// assumed centred on the zero-angle half-plane. Only one axis may be
// axially periodic at a time.
func (f *FieldMap) EnableAxialPeriodicity(axis Axis, sectors int) error {
	if sectors < 2 {
		return fmt.Errorf("axial periodicity needs at least 2 sectors, got %d", sectors)
	}
	if a := f.sym.axialAxis(); a >= 0 && a != int(axis) {
		return fmt.Errorf("axial periodicity already enabled around axis %d", a)
	}
	f.sym.axial[axis] = true
	f.sym.sectors[axis] = sectors
	return nil
}

// DisableAxialPeriodicity removes rotational periodicity on the axis.
func (f *FieldMap) DisableAxialPeriodicity(axis Axis) {
	f.sym.axial[axis] = false
}

// mapCoordinates folds (x, y, z) into the mesh's canonical cell,
// recording reflections and the rotation applied.
func (s *symmetry) mapCoordinates(x, y, z float64, m *mesh.Mesh) (xm, ym, zm float64, fl fold) {
	bbMin, bbMax := m.BoundingBox()
	p := [3]float64{x, y, z}
	fl.axis = -1
	for k := 0; k < 3; k++ {
		span := bbMax[k] - bbMin[k]
		if span <= 0 {
			continue
		}
		if s.periodic[k] {
			p[k] = bbMin[k] + math.Mod(p[k]-bbMin[k], span)
			if p[k] < bbMin[k] {
				p[k] += span
			}
		} else if s.mirror[k] {
			cell := math.Floor((p[k] - bbMin[k]) / span)
			folded := bbMin[k] + math.Mod(p[k]-bbMin[k], span)
			if folded < bbMin[k] {
				folded += span
			}
			// Odd cells are reflections of the stored map.
			if mod2(int(cell)) != 0 {
				folded = bbMin[k] + bbMax[k] - folded
				fl.mirrored[k] = true
			}
			p[k] = folded
		}
	}
	if a := s.axialAxis(); a >= 0 {
		u, v := transverse(a)
		r := math.Hypot(p[u], p[v])
		phi := math.Atan2(p[v], p[u])
		sector := 2 * math.Pi / float64(s.sectors[a])
		folded := phi - sector*math.Round(phi/sector)
		if rot := folded - phi; rot != 0 {
			p[u] = r * math.Cos(folded)
			p[v] = r * math.Sin(folded)
			fl.axis = a
			fl.rot = rot
		}
	}
	return p[0], p[1], p[2], fl
}

func mod2(n int) int {
	m := n % 2
	if m < 0 {
		m += 2
	}
	return m
}

// unmapFields transforms a field vector computed in the folded frame
// back to the caller's frame: the inverse rotation first, then the sign
// flip of each reflected axis. Structurally its own inverse against
// mapCoordinates.
func (s *symmetry) unmapFields(ex, ey, ez float64, fl fold) (float64, float64, float64) {
	e := [3]float64{ex, ey, ez}
	if fl.axis >= 0 {
		u, v := transverse(fl.axis)
		c, sn := math.Cos(-fl.rot), math.Sin(-fl.rot)
		eu := c*e[u] - sn*e[v]
		ev := sn*e[u] + c*e[v]
		e[u], e[v] = eu, ev
	}
	for k := 0; k < 3; k++ {
		if fl.mirrored[k] {
			e[k] = -e[k]
		}
	}
	return e[0], e[1], e[2]
}
