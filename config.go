package fieldmap

import (
	"github.com/driftworks/fieldmap/element"
	"github.com/driftworks/fieldmap/observability"
)

// Config collects the engine switches and numeric knobs. Every switch
// affects which code path a query takes, not what a successful query
// returns.
type Config struct {
	// UseOctree enables the spatial index; disabled, every query falls
	// back to a linear scan over all elements with identical results.
	UseOctree bool
	// CheckMultipleElement scans all candidates instead of stopping at
	// the first containing element and logs multiple containment, a
	// mesh-quality diagnostic. The first match is still the one used.
	CheckMultipleElement bool
	// PruneBackgroundElements skips elements whose material is neither
	// a drift medium nor associated with a medium handle; such elements
	// can never yield a usable query result.
	PruneBackgroundElements bool
	// ConvergenceWarnings controls the rate-limited diagnostics emitted
	// when an iterative local-coordinate solve exhausts its budget.
	ConvergenceWarnings bool

	// MaxNewtonIterations and NewtonTolerance bound the iterative
	// solves for curved shapes.
	MaxNewtonIterations int
	NewtonTolerance     float64

	// Octree shape parameters.
	OctreeBlockCapacity int
	OctreeMaxDepth      int

	// Collector receives query metrics; nil disables instrumentation.
	Collector *observability.Collector
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	prm := element.DefaultNewtonParams()
	return Config{
		UseOctree:               true,
		PruneBackgroundElements: true,
		ConvergenceWarnings:     true,
		MaxNewtonIterations:     prm.MaxIter,
		NewtonTolerance:         prm.Tol,
	}
}

func (c Config) newtonParams() element.NewtonParams {
	prm := element.DefaultNewtonParams()
	if c.MaxNewtonIterations > 0 {
		prm.MaxIter = c.MaxNewtonIterations
	}
	if c.NewtonTolerance > 0 {
		prm.Tol = c.NewtonTolerance
	}
	return prm
}
