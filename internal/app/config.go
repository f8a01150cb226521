package app

import (
	"errors"
	"fmt"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	ConfigPath string // hcl file or directory

	LogFormat       string
	LogLevel        string
	HealthcheckPort int

	// Workers overrides genetic.workers when positive.
	Workers int
	// Seed overrides genetic.seed when non-nil.
	Seed *uint64

	// ScheduleIn replays a saved schedule instead of searching.
	ScheduleIn string
	// ScheduleOut saves the chosen schedule.
	ScheduleOut string
	// ReportPath writes the run report.
	ReportPath string
	// ScheduleOnly stops after scheduling.
	ScheduleOnly bool
}

func NewConfig(cfg Config) (*Config, error) {
	if cfg.ConfigPath == "" {
		return nil, errors.New("ConfigPath is a required configuration field and cannot be empty")
	}
	if cfg.Workers < 0 {
		return nil, fmt.Errorf("workers must not be negative, got %d", cfg.Workers)
	}
	if cfg.ScheduleIn != "" && cfg.ScheduleIn == cfg.ScheduleOut {
		return nil, errors.New("schedule-in and schedule-out must name different files")
	}
	return &cfg, nil
}
