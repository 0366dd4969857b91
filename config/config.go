// Package config loads engine settings from TOML. The zero-value-free
// defaults match fieldmap.DefaultConfig, so a partial file only
// overrides what it names.
package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/driftworks/fieldmap"
)

// Settings mirrors the engine switches plus the log level.
type Settings struct {
	UseOctree               bool    `toml:"use_octree"`
	CheckMultipleElement    bool    `toml:"check_multiple_element"`
	PruneBackgroundElements bool    `toml:"prune_background_elements"`
	ConvergenceWarnings     bool    `toml:"convergence_warnings"`
	MaxNewtonIterations     int     `toml:"max_newton_iterations"`
	NewtonTolerance         float64 `toml:"newton_tolerance"`
	OctreeBlockCapacity     int     `toml:"octree_block_capacity"`
	OctreeMaxDepth          int     `toml:"octree_max_depth"`
	LogLevel                string  `toml:"log_level"`
}

// Default returns the production defaults.
func Default() Settings {
	c := fieldmap.DefaultConfig()
	return Settings{
		UseOctree:               c.UseOctree,
		CheckMultipleElement:    c.CheckMultipleElement,
		PruneBackgroundElements: c.PruneBackgroundElements,
		ConvergenceWarnings:     c.ConvergenceWarnings,
		MaxNewtonIterations:     c.MaxNewtonIterations,
		NewtonTolerance:         c.NewtonTolerance,
		LogLevel:                "info",
	}
}

// Load reads a TOML settings file over the defaults and validates it.
func Load(path string) (Settings, error) {
	s := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return s, fmt.Errorf("reading settings: %w", err)
	}
	if err := toml.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("parsing settings %s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return s, err
	}
	return s, nil
}

// Validate checks the numeric knobs.
func (s Settings) Validate() error {
	if s.MaxNewtonIterations < 1 {
		return fmt.Errorf("max_newton_iterations must be at least 1, got %d", s.MaxNewtonIterations)
	}
	if s.NewtonTolerance <= 0 {
		return fmt.Errorf("newton_tolerance must be positive, got %g", s.NewtonTolerance)
	}
	if s.OctreeBlockCapacity < 0 || s.OctreeMaxDepth < 0 {
		return fmt.Errorf("octree parameters must not be negative")
	}
	return nil
}

// FieldMapConfig converts the settings into an engine configuration.
func (s Settings) FieldMapConfig() fieldmap.Config {
	return fieldmap.Config{
		UseOctree:               s.UseOctree,
		CheckMultipleElement:    s.CheckMultipleElement,
		PruneBackgroundElements: s.PruneBackgroundElements,
		ConvergenceWarnings:     s.ConvergenceWarnings,
		MaxNewtonIterations:     s.MaxNewtonIterations,
		NewtonTolerance:         s.NewtonTolerance,
		OctreeBlockCapacity:     s.OctreeBlockCapacity,
		OctreeMaxDepth:          s.OctreeMaxDepth,
	}
}
