package element

// Dimensionality of an element's reference domain.
type Dimensionality uint8

const (
	D2 Dimensionality = iota
	D3
)

// Shape identifies an element family. The mesh stores up to ten node
// indices per element; how many are used, and which solver and shape
// function basis apply, is decided by this tag.
type Shape uint8

const (
	Triangle6 Shape = iota // quadratic triangle, 3 corners + 3 mid-edge nodes
	Quad8                  // serendipity quadrilateral, 4 corners + 4 mid-edge nodes
	Tet4                   // linear tetrahedron
	Tet10                  // curved quadratic tetrahedron, 4 corners + 6 mid-edge nodes
	Hex8                   // trilinear hexahedron
)

// NumNodes returns the number of node slots an element of this shape uses.
func (s Shape) NumNodes() int {
	switch s {
	case Triangle6:
		return 6
	case Quad8:
		return 8
	case Tet4:
		return 4
	case Tet10:
		return 10
	case Hex8:
		return 8
	}
	return 0
}

// NumCorners returns the number of corner (vertex) nodes of this shape.
func (s Shape) NumCorners() int {
	switch s {
	case Triangle6:
		return 3
	case Quad8, Tet4, Tet10:
		return 4
	case Hex8:
		return 8
	}
	return 0
}

// Dimensions reports whether the reference domain is two- or
// three-dimensional. Triangle and quadrilateral maps describe planar
// geometries extruded along z.
func (s Shape) Dimensions() Dimensionality {
	switch s {
	case Triangle6, Quad8:
		return D2
	}
	return D3
}

func (s Shape) String() string {
	switch s {
	case Triangle6:
		return "Triangle6"
	case Quad8:
		return "Quad8"
	case Tet4:
		return "Tet4"
	case Tet10:
		return "Tet10"
	case Hex8:
		return "Hex8"
	}
	return "Unknown"
}
