// Package config defines engine configuration with validation and a YAML
// file loader. Capacity limits are fixed at construction: exceeding them
// at runtime is a fatal configuration error, not a recoverable one.
package config

import (
	"fmt"

	"github.com/c360/semkernel/errors"
)

// Defaults applied by DefaultConfig and by Validate for zero-value fields
// that have a sensible fallback.
const (
	DefaultMaxSubjects   = 1 << 20
	DefaultMaxPredicates = 1 << 16
	DefaultMaxObjects    = 1 << 20
	DefaultMaxClasses    = 1 << 14

	DefaultInternerCapacity = 1 << 16
	DefaultMaxLoadFactor    = 0.70
	DefaultMaxProbes        = 64

	DefaultMaxIterations = 32
)

// CapacityConfig bounds the identifier spaces of the triple store and the
// closure bit-vectors. Bit-vector width is derived from these limits, so
// they are construction-time constants.
type CapacityConfig struct {
	MaxSubjects   uint32 `json:"max_subjects" yaml:"max_subjects"`
	MaxPredicates uint32 `json:"max_predicates" yaml:"max_predicates"`
	MaxObjects    uint32 `json:"max_objects" yaml:"max_objects"`
	MaxClasses    uint32 `json:"max_classes" yaml:"max_classes"`
}

// InternerConfig tunes the string interner's open-addressing table.
//
// MaxLoadFactor is the occupancy threshold that triggers a doubling
// resize. MaxProbes bounds the linear probe sequence; with resizing at
// MaxLoadFactor the bound is effectively unreachable, so hitting it is
// treated as index corruption rather than a recoverable miss.
type InternerConfig struct {
	InitialCapacity int     `json:"initial_capacity" yaml:"initial_capacity"`
	MaxEntries      uint32  `json:"max_entries" yaml:"max_entries"`
	MaxLoadFactor   float64 `json:"max_load_factor" yaml:"max_load_factor"`
	MaxProbes       int     `json:"max_probes" yaml:"max_probes"`
}

// ReasonerConfig tunes the OWL closure computation.
//
// MaxIterations caps fixpoint passes so cyclic subclass graphs terminate;
// results past the cap are best-effort and flagged. AutoRecompute makes
// reasoning queries recompute stale closures instead of returning
// ErrStaleClosure.
type ReasonerConfig struct {
	MaxIterations int  `json:"max_iterations" yaml:"max_iterations"`
	AutoRecompute bool `json:"auto_recompute" yaml:"auto_recompute"`
}

// Config is the complete engine configuration.
type Config struct {
	Capacity CapacityConfig `json:"capacity" yaml:"capacity"`
	Interner InternerConfig `json:"interner" yaml:"interner"`
	Reasoner ReasonerConfig `json:"reasoner" yaml:"reasoner"`
}

// DefaultConfig returns a configuration suitable for tests and small to
// medium datasets (~1M subjects).
func DefaultConfig() *Config {
	return &Config{
		Capacity: CapacityConfig{
			MaxSubjects:   DefaultMaxSubjects,
			MaxPredicates: DefaultMaxPredicates,
			MaxObjects:    DefaultMaxObjects,
			MaxClasses:    DefaultMaxClasses,
		},
		Interner: InternerConfig{
			InitialCapacity: DefaultInternerCapacity,
			MaxEntries:      DefaultMaxSubjects,
			MaxLoadFactor:   DefaultMaxLoadFactor,
			MaxProbes:       DefaultMaxProbes,
		},
		Reasoner: ReasonerConfig{
			MaxIterations: DefaultMaxIterations,
		},
	}
}

// Validate checks the configuration, applying defaults for zero-value
// tunables and rejecting impossible capacity combinations.
func (c *Config) Validate() error {
	if c == nil {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "config", "Validate", "nil config")
	}

	if c.Capacity.MaxSubjects == 0 {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "config", "Validate", "max_subjects must be > 0")
	}
	if c.Capacity.MaxPredicates == 0 {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "config", "Validate", "max_predicates must be > 0")
	}
	if c.Capacity.MaxObjects == 0 {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "config", "Validate", "max_objects must be > 0")
	}
	if c.Capacity.MaxClasses == 0 {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "config", "Validate", "max_classes must be > 0")
	}
	if c.Capacity.MaxClasses > c.Capacity.MaxSubjects {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "config", "Validate",
			fmt.Sprintf("max_classes (%d) cannot exceed max_subjects (%d)",
				c.Capacity.MaxClasses, c.Capacity.MaxSubjects))
	}

	if c.Interner.InitialCapacity == 0 {
		c.Interner.InitialCapacity = DefaultInternerCapacity
	}
	if c.Interner.InitialCapacity < 16 || c.Interner.InitialCapacity&(c.Interner.InitialCapacity-1) != 0 {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "config", "Validate",
			fmt.Sprintf("interner initial_capacity must be a power of two >= 16, got %d",
				c.Interner.InitialCapacity))
	}
	if c.Interner.MaxEntries == 0 {
		c.Interner.MaxEntries = maxCapacity(c.Capacity)
	}
	if c.Interner.MaxLoadFactor == 0 {
		c.Interner.MaxLoadFactor = DefaultMaxLoadFactor
	}
	if c.Interner.MaxLoadFactor <= 0 || c.Interner.MaxLoadFactor >= 1 {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "config", "Validate",
			fmt.Sprintf("interner max_load_factor must be in (0, 1), got %v", c.Interner.MaxLoadFactor))
	}
	if c.Interner.MaxProbes == 0 {
		c.Interner.MaxProbes = DefaultMaxProbes
	}
	if c.Interner.MaxProbes < 1 {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "config", "Validate",
			"interner max_probes must be >= 1")
	}

	if c.Reasoner.MaxIterations == 0 {
		c.Reasoner.MaxIterations = DefaultMaxIterations
	}
	if c.Reasoner.MaxIterations < 1 {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "config", "Validate",
			"reasoner max_iterations must be >= 1")
	}

	return nil
}

// maxCapacity returns the largest identifier space any role can occupy.
// The interner issues from a single dense space shared by subjects,
// predicates, and objects, so its ceiling is the largest of the three.
func maxCapacity(cap CapacityConfig) uint32 {
	max := cap.MaxSubjects
	if cap.MaxPredicates > max {
		max = cap.MaxPredicates
	}
	if cap.MaxObjects > max {
		max = cap.MaxObjects
	}
	return max
}
