package octree

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContains(t *testing.T) {
	tr := New([3]float64{0, 0, 0}, [3]float64{1, 1, 1}, 0, 0)
	assert.True(t, tr.Contains([3]float64{0, 0, 0}))
	assert.True(t, tr.Contains([3]float64{1, -1, 1}))
	assert.False(t, tr.Contains([3]float64{1.001, 0, 0}))
	assert.False(t, tr.Contains([3]float64{0, 0, -1.001}))
}

func TestBlockElementsOutside(t *testing.T) {
	tr := New([3]float64{0, 0, 0}, [3]float64{1, 1, 1}, 0, 0)
	tr.Insert(0, [3]float64{-1, -1, -1}, [3]float64{1, 1, 1})
	assert.Nil(t, tr.BlockElements([3]float64{2, 0, 0}))
}

func TestInsertAndQuerySingle(t *testing.T) {
	tr := New([3]float64{0.5, 0.5, 0.5}, [3]float64{0.5, 0.5, 0.5}, 4, 4)
	tr.Insert(7, [3]float64{0.2, 0.2, 0.2}, [3]float64{0.4, 0.4, 0.4})
	got := tr.BlockElements([3]float64{0.3, 0.3, 0.3})
	assert.Equal(t, []int{7}, got)
	// Inside the tree but outside the element box.
	assert.Empty(t, tr.BlockElements([3]float64{0.9, 0.9, 0.9}))
}

func TestSplitPreservesEntries(t *testing.T) {
	// Force splits with many small boxes and check every one is still
	// found from its own centre.
	tr := New([3]float64{0, 0, 0}, [3]float64{1, 1, 1}, 2, 6)
	rng := rand.New(rand.NewSource(42))
	type box struct{ min, max, mid [3]float64 }
	boxes := make([]box, 50)
	for i := range boxes {
		var b box
		for k := 0; k < 3; k++ {
			c := -0.9 + 1.8*rng.Float64()
			b.min[k] = c - 0.05
			b.max[k] = c + 0.05
			b.mid[k] = c
		}
		boxes[i] = b
		tr.Insert(i, b.min, b.max)
	}
	for i, b := range boxes {
		got := tr.BlockElements(b.mid)
		assert.Contains(t, got, i, "element %d lost after splitting", i)
	}
}

// bruteCandidates is the reference answer: every box containing p.
func bruteCandidates(boxes [][2][3]float64, p [3]float64) []int {
	var out []int
	for i, b := range boxes {
		in := true
		for k := 0; k < 3; k++ {
			if p[k] < b[0][k] || p[k] > b[1][k] {
				in = false
				break
			}
		}
		if in {
			out = append(out, i)
		}
	}
	return out
}

func TestCandidatesMatchLinearScan(t *testing.T) {
	tr := New([3]float64{0, 0, 0}, [3]float64{1, 1, 1}, 3, 5)
	rng := rand.New(rand.NewSource(7))
	boxes := make([][2][3]float64, 80)
	for i := range boxes {
		for k := 0; k < 3; k++ {
			lo := -1 + 2*rng.Float64()
			hi := lo + 0.3*rng.Float64()
			boxes[i][0][k] = lo
			boxes[i][1][k] = hi
		}
		tr.Insert(i, boxes[i][0], boxes[i][1])
	}
	for q := 0; q < 200; q++ {
		var p [3]float64
		for k := 0; k < 3; k++ {
			p[k] = -1 + 2*rng.Float64()
		}
		want := bruteCandidates(boxes, p)
		got := tr.BlockElements(p)
		require.ElementsMatch(t, want, got, "query %v", p)
	}
}

func TestDefaults(t *testing.T) {
	tr := New([3]float64{0, 0, 0}, [3]float64{1, 1, 1}, -1, -1)
	assert.Equal(t, DefaultBlockCapacity, tr.capacity)
	assert.Equal(t, DefaultMaxDepth, tr.maxDepth)
}
