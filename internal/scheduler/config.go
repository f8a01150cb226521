package scheduler

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is wrapped by every ConfigError.
var ErrInvalidConfig = errors.New("invalid scheduler configuration")

// ConfigError reports an unusable genetic tuning parameter.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("scheduler: %s: %s", e.Field, e.Reason)
}

func (e *ConfigError) Unwrap() error { return ErrInvalidConfig }

// Config tunes the genetic search.
type Config struct {
	PopulationSize int
	MaxGenerations int
	// MaxStagnantGenerations stops the search after that many consecutive
	// generations without improvement. Zero disables the early stop.
	MaxStagnantGenerations int
	MutationRate           float64
	// Seed makes the search reproducible. Zero picks a random seed.
	Seed uint64
	// Workers bounds concurrent fitness evaluations. Zero uses GOMAXPROCS.
	Workers int
}

// DefaultConfig returns the tuning used when a run configures none.
func DefaultConfig() Config {
	return Config{
		PopulationSize:         20,
		MaxGenerations:         1000,
		MaxStagnantGenerations: 200,
		MutationRate:           0.1,
	}
}

// Validate checks every field.
func (c Config) Validate() error {
	switch {
	case c.PopulationSize < 2:
		return &ConfigError{Field: "population_size", Reason: fmt.Sprintf("must be at least 2, got %d", c.PopulationSize)}
	case c.MaxGenerations < 0:
		return &ConfigError{Field: "max_generations", Reason: fmt.Sprintf("must not be negative, got %d", c.MaxGenerations)}
	case c.MaxStagnantGenerations < 0:
		return &ConfigError{Field: "max_stagnant_generations", Reason: fmt.Sprintf("must not be negative, got %d", c.MaxStagnantGenerations)}
	case c.MutationRate < 0 || c.MutationRate > 1:
		return &ConfigError{Field: "mutation_rate", Reason: fmt.Sprintf("must be within [0, 1], got %g", c.MutationRate)}
	case c.Workers < 0:
		return &ConfigError{Field: "workers", Reason: fmt.Sprintf("must not be negative, got %d", c.Workers)}
	}
	return nil
}
