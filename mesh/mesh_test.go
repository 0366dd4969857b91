package mesh

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driftworks/fieldmap/element"
)

func el(shape element.Shape, mat int, nodes ...int) Element {
	e := Element{Shape: shape, Material: mat}
	for i := range e.Nodes {
		e.Nodes[i] = UnusedNode
	}
	copy(e.Nodes[:], nodes)
	return e
}

// unitCubeTets splits the unit cube into five linear tetrahedra.
func unitCubeTets() (*Mesh, error) {
	nodes := []Node{
		{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0},
		{0, 0, 1}, {1, 0, 1}, {1, 1, 1}, {0, 1, 1},
	}
	conn := [5][4]int{
		{0, 1, 3, 4}, {1, 2, 3, 6}, {1, 4, 5, 6}, {3, 4, 6, 7}, {1, 3, 4, 6},
	}
	elems := make([]Element, 0, 5)
	for _, c := range conn {
		elems = append(elems, el(element.Tet4, 0, c[:]...))
	}
	return NewMesh(nodes, elems, []Material{{Eps: 1, DriftMedium: true}})
}

func TestNewMeshValidation(t *testing.T) {
	nodes := []Node{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
	mats := []Material{{Eps: 1}}

	_, err := NewMesh(nil, []Element{el(element.Tet4, 0, 0, 1, 2, 3)}, mats)
	assert.Error(t, err)

	_, err = NewMesh(nodes, nil, mats)
	assert.Error(t, err)

	_, err = NewMesh(nodes, []Element{el(element.Shape(99), 0, 0, 1, 2, 3)}, mats)
	assert.Error(t, err)

	_, err = NewMesh(nodes, []Element{el(element.Tet4, 3, 0, 1, 2, 3)}, mats)
	assert.Error(t, err)

	// Planar and volume elements must not mix.
	_, err = NewMesh(nodes, []Element{
		el(element.Tet4, 0, 0, 1, 2, 3),
		el(element.Triangle6, 0, 0, 1, 2, 0, 1, 2),
	}, mats)
	assert.Error(t, err)
}

func TestPrepareCube(t *testing.T) {
	m, err := unitCubeTets()
	require.NoError(t, err)
	assert.False(t, m.Ready())
	require.NoError(t, m.Prepare())
	assert.True(t, m.Ready())
	assert.True(t, m.Is3D())
	assert.Equal(t, 0, m.NumDegenerate())

	bbMin, bbMax := m.BoundingBox()
	assert.Equal(t, [3]float64{0, 0, 0}, bbMin)
	assert.Equal(t, [3]float64{1, 1, 1}, bbMax)

	var vol float64
	for i := 0; i < m.NumElements(); i++ {
		vol += m.ElementVolume(i)
	}
	assert.InDelta(t, 1, vol, 1e-12)

	assert.Equal(t, 0, m.Check())
}

func TestPrepareBadNodeIndex(t *testing.T) {
	nodes := []Node{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
	m, err := NewMesh(nodes, []Element{el(element.Tet4, 0, 0, 1, 2, 9)}, []Material{{Eps: 1}})
	require.NoError(t, err)
	assert.Error(t, m.Prepare())
	assert.False(t, m.Ready())
}

func TestPrepareDegenerateTet(t *testing.T) {
	nodes := []Node{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
	elems := []Element{
		el(element.Tet4, 0, 0, 1, 2, 3),
		el(element.Tet4, 0, 0, 1, 2, 2),
	}
	m, err := NewMesh(nodes, elems, []Material{{Eps: 1}})
	require.NoError(t, err)
	require.NoError(t, m.Prepare())
	assert.False(t, m.Elements[0].Degenerate)
	assert.True(t, m.Elements[1].Degenerate)
	assert.Equal(t, 1, m.NumDegenerate())
	assert.Equal(t, 1, m.Check())
}

func TestPrepareCoplanarTet(t *testing.T) {
	// Distinct corner indices, but all four in one plane.
	nodes := []Node{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {1, 1, 0}}
	m, err := NewMesh(nodes, []Element{el(element.Tet4, 0, 0, 1, 2, 3)}, []Material{{Eps: 1}})
	require.NoError(t, err)
	require.NoError(t, m.Prepare())
	assert.True(t, m.Elements[0].Degenerate)
}

func TestCurvatureMargin(t *testing.T) {
	// The box of a quadratic triangle is padded, a linear tet's is not.
	nodes := []Node{
		{0, 0, 0}, {1, 0, 0}, {0, 1, 0},
		{0.5, 0, 0}, {0, 0.5, 0}, {0.5, 0.5, 0},
	}
	m, err := NewMesh(nodes, []Element{el(element.Triangle6, 0, 0, 1, 2, 3, 4, 5)},
		[]Material{{Eps: 1}})
	require.NoError(t, err)
	require.NoError(t, m.Prepare())
	e := m.Elements[0]
	assert.InDelta(t, -0.1, e.BBMin[0], 1e-12)
	assert.InDelta(t, 1.1, e.BBMax[0], 1e-12)

	cube, err := unitCubeTets()
	require.NoError(t, err)
	require.NoError(t, cube.Prepare())
	assert.Equal(t, 0., cube.Elements[0].BBMin[0])
}

func TestInBoundingBox(t *testing.T) {
	m, err := unitCubeTets()
	require.NoError(t, err)
	require.NoError(t, m.Prepare())
	assert.True(t, m.InBoundingBox(0.5, 0.5, 0.5))
	assert.True(t, m.InBoundingBox(0, 1, 1))
	assert.False(t, m.InBoundingBox(1.01, 0.5, 0.5))
	assert.False(t, m.InBoundingBox(0.5, -0.01, 0.5))
	assert.False(t, m.InBoundingBox(0.5, 0.5, 1.01))
}

func TestInBoundingBox2D(t *testing.T) {
	nodes := []Node{
		{0, 0, 0}, {1, 0, 0}, {0, 1, 0},
		{0.5, 0, 0}, {0, 0.5, 0}, {0.5, 0.5, 0},
	}
	m, err := NewMesh(nodes, []Element{el(element.Triangle6, 0, 0, 1, 2, 3, 4, 5)},
		[]Material{{Eps: 1}})
	require.NoError(t, err)
	require.NoError(t, m.Prepare())
	assert.False(t, m.Is3D())
	// z is ignored for planar meshes.
	assert.True(t, m.InBoundingBox(0.2, 0.2, 57))
	assert.False(t, m.InBoundingBox(1.5, 0.2, 0))
}

func TestSetPotentials(t *testing.T) {
	m, err := unitCubeTets()
	require.NoError(t, err)
	require.NoError(t, m.Prepare())

	assert.Error(t, m.SetPotentials([]float64{1, 2}))
	assert.False(t, m.HasPotentials())

	v := make([]float64, m.NumNodes())
	for i := range v {
		v[i] = 100 * m.Nodes[i].Z
	}
	require.NoError(t, m.SetPotentials(v))
	assert.True(t, m.HasPotentials())
	vmin, vmax := m.VoltageRange()
	assert.Equal(t, 0., vmin)
	assert.Equal(t, 100., vmax)
	assert.Equal(t, 100., m.PotentialAt(4))
	assert.Equal(t, Node{X: 1, Y: 0, Z: 0}, m.NodeAt(1))
	assert.Equal(t, element.Tet4, m.ElementAt(0).Shape)
}

func TestWeightingPotentials(t *testing.T) {
	m, err := unitCubeTets()
	require.NoError(t, err)
	require.NoError(t, m.Prepare())

	assert.Error(t, m.SetWeightingPotential("", make([]float64, m.NumNodes())))
	assert.Error(t, m.SetWeightingPotential("anode", []float64{1}))

	require.NoError(t, m.SetWeightingPotential("cathode", make([]float64, m.NumNodes())))
	require.NoError(t, m.SetWeightingPotential("anode", make([]float64, m.NumNodes())))
	assert.Equal(t, []string{"anode", "cathode"}, m.WeightingPotentialLabels())

	_, ok := m.WeightingPotential("anode")
	assert.True(t, ok)
	_, ok = m.WeightingPotential("grid")
	assert.False(t, ok)
}

func TestDelayedWeightingPotentialValidation(t *testing.T) {
	m, err := unitCubeTets()
	require.NoError(t, err)
	require.NoError(t, m.Prepare())
	slice := make([]float64, m.NumNodes())

	assert.Error(t, m.SetDelayedWeightingPotential("", []float64{0}, [][]float64{slice}))
	assert.Error(t, m.SetDelayedWeightingPotential("a", nil, nil))
	assert.Error(t, m.SetDelayedWeightingPotential("a", []float64{0, 1}, [][]float64{slice}))
	assert.Error(t, m.SetDelayedWeightingPotential("a", []float64{1, 1}, [][]float64{slice, slice}))
	assert.Error(t, m.SetDelayedWeightingPotential("a", []float64{0, 1}, [][]float64{slice, {1}}))

	require.NoError(t, m.SetDelayedWeightingPotential("a", []float64{0, 1}, [][]float64{slice, slice}))
	d, ok := m.DelayedWeightingPotential("a")
	require.True(t, ok)
	assert.Len(t, d.Times, 2)
}

func TestMaterials(t *testing.T) {
	m, err := unitCubeTets()
	require.NoError(t, err)
	m.Materials = []Material{{Eps: 4, Ohm: 2}, {Eps: 1}, {Eps: 1}}

	require.NoError(t, m.SetDefaultDriftMedium())
	assert.False(t, m.Materials[0].DriftMedium)
	assert.True(t, m.Materials[1].DriftMedium)
	assert.True(t, m.Materials[2].DriftMedium)

	require.NoError(t, m.NotDriftMedium(1))
	assert.False(t, m.Materials[1].DriftMedium)
	require.NoError(t, m.DriftMedium(1))
	assert.True(t, m.Materials[1].DriftMedium)
	assert.Error(t, m.DriftMedium(7))

	eps, err := m.Permittivity(0)
	require.NoError(t, err)
	assert.Equal(t, 4., eps)
	sig, err := m.Conductivity(0)
	require.NoError(t, err)
	assert.Equal(t, 0.5, sig)
	sig, err = m.Conductivity(1)
	require.NoError(t, err)
	assert.Equal(t, 0., sig)

	m.Materials[2].Eps = -1
	assert.Error(t, m.SetDefaultDriftMedium())
}

func TestAspectRatio(t *testing.T) {
	m, err := unitCubeTets()
	require.NoError(t, err)
	require.NoError(t, m.Prepare())
	dmin, dmax := m.AspectRatio(0)
	assert.InDelta(t, 1, dmin, 1e-12)
	assert.Greater(t, dmax, dmin)
}

func TestSummaryString(t *testing.T) {
	m, err := unitCubeTets()
	require.NoError(t, err)
	require.NoError(t, m.Prepare())
	s := m.String()
	assert.Contains(t, s, "Nodes: 8")
	assert.Contains(t, s, "Elements: 5")
}
