package fieldmap

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// anodeMap is a unit cube centred on origin with a weighting potential
// linear in x, labelled "anode".
func anodeMap(t *testing.T) *FieldMap {
	t.Helper()
	m := cubeMesh(t, [3]float64{-0.5, -0.5, -0.5})
	w := make([]float64, m.NumNodes())
	for i, nd := range m.Nodes {
		w[i] = nd.X
	}
	require.NoError(t, m.SetWeightingPotential("anode", w))
	f, err := New(m, DefaultConfig())
	require.NoError(t, err)
	return f
}

func TestWeightingFieldAndPotential(t *testing.T) {
	f := anodeMap(t)
	assert.InDelta(t, 0.2, f.WeightingPotential(0.2, 0.3, 0.1, "anode"), 1e-9)
	wx, wy, wz := f.WeightingField(0.2, 0.3, 0.1, "anode")
	assert.InDelta(t, -1, wx, 1e-9)
	assert.InDelta(t, 0, wy, 1e-9)
	assert.InDelta(t, 0, wz, 1e-9)

	// Unknown labels and points outside the mesh read as zero.
	assert.Equal(t, 0., f.WeightingPotential(0.2, 0.3, 0.1, "grid"))
	wx, wy, wz = f.WeightingField(3, 0, 0, "anode")
	assert.Equal(t, [3]float64{0, 0, 0}, [3]float64{wx, wy, wz})
}

func TestCopyWeightingPotentialValidation(t *testing.T) {
	f := anodeMap(t)
	assert.Error(t, f.CopyWeightingPotential("", "anode", 0, 0, 0, 0, 0, 0))
	assert.Error(t, f.CopyWeightingPotential("pad", "grid", 0, 0, 0, 0, 0, 0))
	assert.Error(t, f.CopyWeightingPotential("anode", "anode", 0, 0, 0, 0, 0, 0))
	require.NoError(t, f.CopyWeightingPotential("pad", "anode", 0, 0, 0, 0, 0, 0))
	assert.Error(t, f.CopyWeightingPotential("pad", "anode", 1, 0, 0, 0, 0, 0))
}

func TestCopyWeightingPotentialIdentity(t *testing.T) {
	f := anodeMap(t)
	require.NoError(t, f.CopyWeightingPotential("pad", "anode", 0, 0, 0, 0, 0, 0))
	assert.InDelta(t,
		f.WeightingPotential(0.1, -0.2, 0.3, "anode"),
		f.WeightingPotential(0.1, -0.2, 0.3, "pad"), 1e-12)
	ax, ay, az := f.WeightingField(0.1, -0.2, 0.3, "anode")
	px, py, pz := f.WeightingField(0.1, -0.2, 0.3, "pad")
	assert.InDelta(t, ax, px, 1e-12)
	assert.InDelta(t, ay, py, 1e-12)
	assert.InDelta(t, az, pz, 1e-12)
}

func TestCopyWeightingPotentialTranslated(t *testing.T) {
	f := anodeMap(t)
	// The copy electrode sits one unit along x: its weighting potential
	// at p is the source's at p - (1, 0, 0).
	require.NoError(t, f.CopyWeightingPotential("pad", "anode", 1, 0, 0, 0, 0, 0))
	assert.InDelta(t, 0.2, f.WeightingPotential(1.2, 0, 0, "pad"), 1e-9)
	wx, wy, wz := f.WeightingField(1.2, 0, 0, "pad")
	assert.InDelta(t, -1, wx, 1e-9)
	assert.InDelta(t, 0, wy, 1e-9)
	assert.InDelta(t, 0, wz, 1e-9)
	// The original cell no longer maps into the source mesh.
	assert.Equal(t, 0., f.WeightingPotential(-0.4, 0, 0, "pad"))
}

func TestCopyWeightingPotentialRotated(t *testing.T) {
	f := anodeMap(t)
	// Quarter turn around z: the copy electrode's sensitive direction is
	// +y instead of +x.
	require.NoError(t, f.CopyWeightingPotential("pad", "anode", 0, 0, 0, 0, 0, math.Pi/2))
	assert.InDelta(t, 0.3, f.WeightingPotential(0.2, 0.3, 0.1, "pad"), 1e-9)
	wx, wy, wz := f.WeightingField(0.2, 0.3, 0.1, "pad")
	assert.InDelta(t, 0, wx, 1e-9)
	assert.InDelta(t, -1, wy, 1e-9)
	assert.InDelta(t, 0, wz, 1e-9)
}

func TestRemoveWeightingPotentialCopy(t *testing.T) {
	f := anodeMap(t)
	require.NoError(t, f.CopyWeightingPotential("pad", "anode", 0, 0, 0, 0, 0, 0))
	f.RemoveWeightingPotentialCopy("pad")
	assert.Equal(t, 0., f.WeightingPotential(0.1, 0.1, 0.1, "pad"))
	// Removing twice is a no-op.
	f.RemoveWeightingPotentialCopy("pad")
}

func TestDelayedWeightingPotential(t *testing.T) {
	m := cubeMesh(t, [3]float64{-0.5, -0.5, -0.5})
	n := m.NumNodes()
	s0 := make([]float64, n)
	s1 := make([]float64, n)
	for i := range s0 {
		s0[i] = 10
		s1[i] = 20
	}
	require.NoError(t, m.SetDelayedWeightingPotential("anode", []float64{0, 2}, [][]float64{s0, s1}))
	f, err := New(m, DefaultConfig())
	require.NoError(t, err)

	// Clamped below, interpolated inside, clamped above.
	assert.InDelta(t, 10, f.DelayedWeightingPotential(0, 0, 0, -1, "anode"), 1e-9)
	assert.InDelta(t, 10, f.DelayedWeightingPotential(0, 0, 0, 0, "anode"), 1e-9)
	assert.InDelta(t, 15, f.DelayedWeightingPotential(0, 0, 0, 1, "anode"), 1e-9)
	assert.InDelta(t, 20, f.DelayedWeightingPotential(0, 0, 0, 2, "anode"), 1e-9)
	assert.InDelta(t, 20, f.DelayedWeightingPotential(0, 0, 0, 5, "anode"), 1e-9)

	assert.Equal(t, 0., f.DelayedWeightingPotential(0, 0, 0, 1, "grid"))
	assert.Equal(t, 0., f.DelayedWeightingPotential(4, 0, 0, 1, "anode"))
}

func TestCopyOfDelayedWeightingPotential(t *testing.T) {
	// An electrode may carry only time slices; copies must still
	// resolve through the same transform path.
	m := cubeMesh(t, [3]float64{-0.5, -0.5, -0.5})
	n := m.NumNodes()
	s0 := make([]float64, n)
	s1 := make([]float64, n)
	for i := range s0 {
		s0[i] = 10
		s1[i] = 20
	}
	require.NoError(t, m.SetDelayedWeightingPotential("anode", []float64{0, 2}, [][]float64{s0, s1}))
	f, err := New(m, DefaultConfig())
	require.NoError(t, err)

	require.NoError(t, f.CopyWeightingPotential("pad", "anode", 1, 0, 0, 0, 0, 0))
	assert.Error(t, f.CopyWeightingPotential("anode", "anode", 0, 0, 0, 0, 0, 0))

	// The copy electrode sits one unit along x.
	assert.InDelta(t, 15, f.DelayedWeightingPotential(1.2, 0, 0, 1, "pad"), 1e-9)
	assert.Equal(t, 0., f.DelayedWeightingPotential(-0.4, 0, 0, 1, "pad"))
}

func TestTimeInterpolation(t *testing.T) {
	times := []float64{0, 1, 4}

	i0, i1, f0, f1 := timeInterpolation(times, -2)
	assert.Equal(t, 0, i0)
	assert.Equal(t, 0, i1)
	assert.Equal(t, 1., f0)
	assert.Equal(t, 0., f1)

	i0, i1, f0, f1 = timeInterpolation(times, 1)
	assert.Equal(t, i0, i1)
	assert.Equal(t, 1, i1)
	assert.Equal(t, 1., f0)

	i0, i1, f0, f1 = timeInterpolation(times, 2.5)
	assert.Equal(t, 1, i0)
	assert.Equal(t, 2, i1)
	assert.InDelta(t, 0.5, f0, 1e-12)
	assert.InDelta(t, 0.5, f1, 1e-12)

	i0, i1, f0, f1 = timeInterpolation(times, 9)
	assert.Equal(t, 2, i0)
	assert.Equal(t, 2, i1)
	assert.Equal(t, 1., f0)
	assert.Equal(t, 0., f1)
}

func TestRotationMatrixOrthogonal(t *testing.T) {
	r := rotationMatrix(0.3, -1.1, 2.2)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			var dot float64
			for k := 0; k < 3; k++ {
				dot += r.At(k, i) * r.At(k, j)
			}
			want := 0.
			if i == j {
				want = 1
			}
			assert.InDelta(t, want, dot, 1e-12)
		}
	}
}
