// Package octree provides the spatial index used to narrow point
// location to a small candidate set. The mesh bounding volume is
// subdivided recursively with a fixed branching factor of eight; each
// leaf block holds the indices of the elements whose bounding box
// overlaps it. The tree is built once after mesh preparation and is
// read-only during queries.
package octree

// Defaults chosen so that leaf blocks stay small without the tree
// outgrowing the mesh it indexes.
const (
	DefaultBlockCapacity = 10
	DefaultMaxDepth      = 10
)

type entry struct {
	index    int
	min, max [3]float64
}

// Tree is one block of the hierarchy: either a leaf holding element
// entries or an interior block with eight children.
type Tree struct {
	origin   [3]float64
	halfDim  [3]float64
	depth    int
	capacity int
	maxDepth int

	children *[8]*Tree
	entries  []entry
}

// New creates the root block covering origin +/- halfDim. Non-positive
// capacity or depth fall back to the defaults.
func New(origin, halfDim [3]float64, blockCapacity, maxDepth int) *Tree {
	if blockCapacity <= 0 {
		blockCapacity = DefaultBlockCapacity
	}
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return &Tree{
		origin:   origin,
		halfDim:  halfDim,
		capacity: blockCapacity,
		maxDepth: maxDepth,
	}
}

// Contains reports whether p lies inside this block.
func (t *Tree) Contains(p [3]float64) bool {
	for k := 0; k < 3; k++ {
		if p[k] < t.origin[k]-t.halfDim[k] || p[k] > t.origin[k]+t.halfDim[k] {
			return false
		}
	}
	return true
}

func (t *Tree) overlaps(min, max [3]float64) bool {
	for k := 0; k < 3; k++ {
		if max[k] < t.origin[k]-t.halfDim[k] || min[k] > t.origin[k]+t.halfDim[k] {
			return false
		}
	}
	return true
}

// Insert registers element index with bounding box [min, max]. The
// element is stored in every leaf block its box overlaps; leaves split
// when they exceed capacity, up to the depth limit.
func (t *Tree) Insert(index int, min, max [3]float64) {
	t.insert(entry{index: index, min: min, max: max})
}

func (t *Tree) insert(e entry) {
	if !t.overlaps(e.min, e.max) {
		return
	}
	if t.children == nil {
		if len(t.entries) < t.capacity || t.depth >= t.maxDepth {
			t.entries = append(t.entries, e)
			return
		}
		t.split()
	}
	for _, c := range t.children {
		c.insert(e)
	}
}

func (t *Tree) split() {
	var children [8]*Tree
	for i := 0; i < 8; i++ {
		var o [3]float64
		for k := 0; k < 3; k++ {
			off := -0.5 * t.halfDim[k]
			if i&(1<<k) != 0 {
				off = 0.5 * t.halfDim[k]
			}
			o[k] = t.origin[k] + off
		}
		children[i] = &Tree{
			origin:   o,
			halfDim:  [3]float64{0.5 * t.halfDim[0], 0.5 * t.halfDim[1], 0.5 * t.halfDim[2]},
			depth:    t.depth + 1,
			capacity: t.capacity,
			maxDepth: t.maxDepth,
		}
	}
	t.children = &children
	entries := t.entries
	t.entries = nil
	for _, e := range entries {
		for _, c := range t.children {
			c.insert(e)
		}
	}
}

// BlockElements returns the candidate element indices for point p: the
// contents of the leaf block containing p, filtered by the per-element
// bounding boxes. Each call is independent; the tree holds no query
// state.
func (t *Tree) BlockElements(p [3]float64) []int {
	if !t.Contains(p) {
		return nil
	}
	n := t
	for n.children != nil {
		idx := 0
		for k := 0; k < 3; k++ {
			if p[k] >= n.origin[k] {
				idx |= 1 << k
			}
		}
		n = n.children[idx]
	}
	out := make([]int, 0, len(n.entries))
	for _, e := range n.entries {
		if p[0] >= e.min[0] && p[0] <= e.max[0] &&
			p[1] >= e.min[1] && p[1] <= e.max[1] &&
			p[2] >= e.min[2] && p[2] <= e.max[2] {
			out = append(out, e.index)
		}
	}
	return out
}
