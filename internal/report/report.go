// Package report reads and writes the YAML files of a run: the schedule
// file, the run report and the per-trajectory result files.
package report

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/specialistvlad/fieldgridgo/internal/executor"
	"github.com/specialistvlad/fieldgridgo/internal/profiler"
	"gopkg.in/yaml.v3"
)

// Schedule is the on-disk form of a chosen module order.
type Schedule struct {
	RunID        string   `yaml:"run_id,omitempty"`
	CachedPolicy string   `yaml:"cached_policy,omitempty"`
	Peak         int64    `yaml:"peak"`
	Modules      []string `yaml:"modules"`
}

// SaveSchedule writes s to path, creating parent directories.
func SaveSchedule(path string, s *Schedule) error {
	return writeYAML(path, s)
}

// LoadSchedule reads a schedule file.
func LoadSchedule(path string) (*Schedule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("report: read %s: %w", path, err)
	}
	var s Schedule
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("report: parse %s: %w", path, err)
	}
	if len(s.Modules) == 0 {
		return nil, errors.New("report: schedule file " + path + " lists no modules")
	}
	return &s, nil
}

// Run is the report written at the end of a run.
type Run struct {
	RunID        string                      `yaml:"run_id"`
	CachedPolicy string                      `yaml:"cached_policy"`
	Schedule     []string                    `yaml:"schedule"`
	Peak         int64                       `yaml:"peak"`
	Area         int64                       `yaml:"area"`
	Cached       int64                       `yaml:"cached"`
	Generations  int                         `yaml:"generations"`
	History      []int64                     `yaml:"history,flow"`
	Timeline     []profiler.Sample           `yaml:"timeline"`
	Trajectories []executor.TrajectoryReport `yaml:"trajectories"`
}

// WriteRun writes r to path, creating parent directories.
func WriteRun(path string, r *Run) error {
	return writeYAML(path, r)
}

func writeYAML(path string, v any) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("report: ensure dir: %w", err)
		}
	}
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("report: encode %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("report: write %s: %w", path, err)
	}
	return nil
}
