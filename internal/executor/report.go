package executor

// Status is the outcome of one trajectory.
type Status string

const (
	StatusCompleted Status = "completed"
	// StatusFailed means a module failed to execute.
	StatusFailed Status = "failed"
	// StatusSkipped means a module failed setup, so nothing executed.
	StatusSkipped Status = "skipped"
)

// TrajectoryReport records what happened in one trajectory.
type TrajectoryReport struct {
	Trajectory int    `yaml:"trajectory"`
	Status     Status `yaml:"status"`
	// Executed counts the modules whose execute phase succeeded.
	Executed int `yaml:"executed"`
	// Peak is the largest resident byte total the store reached.
	Peak   int64  `yaml:"peak"`
	Module string `yaml:"module,omitempty"`
	Error  string `yaml:"error,omitempty"`
	Err    error  `yaml:"-"`
}

// Report is the outcome of the trajectory loop.
type Report struct {
	Trajectories []TrajectoryReport `yaml:"trajectories"`
}

// Failed returns the trajectories that did not complete.
func (r *Report) Failed() []TrajectoryReport {
	var out []TrajectoryReport
	for _, tr := range r.Trajectories {
		if tr.Status != StatusCompleted {
			out = append(out, tr)
		}
	}
	return out
}
