package fieldmap

// Status qualifies the outcome of a field query. Values follow the sign
// convention transport code expects: zero for a usable drift-medium
// point, negative otherwise. Out-of-domain outcomes are ordinary
// statuses, never errors; escaping particles are expected.
type Status int

const (
	// StatusOK: inside the mesh, in a drift medium with an associated
	// medium handle.
	StatusOK Status = 0
	// StatusNotDriftable: inside the mesh, but the material is not a
	// drift medium (insulator or conductor region).
	StatusNotDriftable Status = -5
	// StatusOutside: outside the mesh bounding box, or inside the box
	// but in a gap not covered by any element.
	StatusOutside Status = -6
	// StatusNotReady: the mesh has not been prepared or carries no
	// potentials.
	StatusNotReady Status = -10
	// StatusDegenerate: the point was claimed only by degenerate or
	// numerically unusable elements.
	StatusDegenerate Status = -11
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusNotDriftable:
		return "not driftable"
	case StatusOutside:
		return "outside"
	case StatusNotReady:
		return "not ready"
	case StatusDegenerate:
		return "degenerate"
	}
	return "unknown"
}
