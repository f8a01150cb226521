package app

import (
	"context"
	"fmt"

	"github.com/specialistvlad/fieldgridgo/internal/ctxlog"
	"github.com/specialistvlad/fieldgridgo/internal/executor"
	"github.com/specialistvlad/fieldgridgo/internal/profiler"
	"github.com/specialistvlad/fieldgridgo/internal/report"
	"github.com/specialistvlad/fieldgridgo/internal/scheduler"
	"github.com/specialistvlad/fieldgridgo/internal/session"
)

// Run executes the whole run: build the modules, choose a schedule, run the
// trajectory loop and write the requested files. Failed trajectories are
// reported as an error wrapping executor.ErrTrajectoriesFailed once the loop
// has finished.
func (app *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, app.logger)
	logger := app.logger
	logger.Debug("App.Run method started.")

	app.healthCheckServer()
	defer app.closeHealthCheckServer()

	spec, err := app.sessionSpec(ctx)
	if err != nil {
		return err
	}
	sess, err := app.factory.NewSession(ctx, spec)
	if err != nil {
		return fmt.Errorf("failed to build run: %w", err)
	}
	defer sess.Close(ctx)
	app.setSession(sess)
	logger.Debug("Session created.", "modules", sess.Graph().Len(), "results", sess.Graph().Results())

	plan, err := sess.Schedule(ctx)
	if err != nil {
		return err
	}
	names := sess.Graph().Names(plan.Schedule)
	logger.Info("📋 Schedule chosen.",
		"modules", names,
		"peak", plan.Profile.Peak,
		"cached", plan.Profile.Cached,
		"generations", plan.Generations)

	if app.config.ScheduleOut != "" {
		if err := report.SaveSchedule(app.config.ScheduleOut, &report.Schedule{
			RunID:        app.RunID(),
			CachedPolicy: spec.Policy.String(),
			Peak:         plan.Profile.Peak,
			Modules:      names,
		}); err != nil {
			return err
		}
		logger.Info("💾 Schedule saved.", "path", app.config.ScheduleOut)
	}

	run := &report.Run{
		RunID:        app.RunID(),
		CachedPolicy: spec.Policy.String(),
		Schedule:     names,
		Peak:         plan.Profile.Peak,
		Area:         plan.Profile.Area,
		Cached:       plan.Profile.Cached,
		Generations:  plan.Generations,
		History:      plan.History,
		Timeline:     plan.Profile.Timeline,
	}

	if app.config.ScheduleOnly {
		logger.Info("Schedule-only run, skipping execution.")
		return app.writeReport(ctx, run)
	}

	exec, err := sess.GetExecutor(plan)
	if err != nil {
		return err
	}
	logger.Info("🚀 Starting trajectory loop...", "trajectories", len(spec.Trajectories.Indices()))
	rep, execErr := exec.Execute(ctx)
	if rep != nil {
		run.Trajectories = rep.Trajectories
	}
	if err := app.writeReport(ctx, run); err != nil {
		logger.Error("Failed to write run report.", "error", err)
		if execErr == nil {
			return err
		}
	}
	if execErr != nil {
		return fmt.Errorf("execution failed: %w", execErr)
	}

	if failed := rep.Failed(); len(failed) > 0 {
		return fmt.Errorf("%w: %d of %d", executor.ErrTrajectoriesFailed, len(failed), len(rep.Trajectories))
	}
	logger.Info("🏁 Run finished.", "trajectories", len(rep.Trajectories))
	logger.Debug("App.Run method finished.")
	return nil
}

// sessionSpec translates the configuration model into a session spec.
func (app *App) sessionSpec(ctx context.Context) (session.Spec, error) {
	g := app.model.Global

	mods, err := app.registry.Build(ctx, app.model, app.converter)
	if err != nil {
		return session.Spec{}, fmt.Errorf("failed to build modules: %w", err)
	}
	policy, err := profiler.ParsePolicy(g.CachedPolicy)
	if err != nil {
		return session.Spec{}, err
	}

	spec := session.Spec{
		Modules:      mods,
		External:     g.External,
		Results:      g.Results,
		Trajectories: executor.Range{Start: g.Trajectory.Start, End: g.Trajectory.End, Step: g.Trajectory.Step},
		Policy:       policy,
		Scheduler:    app.schedulerConfig(),
	}

	if app.config.ScheduleIn != "" {
		saved, err := report.LoadSchedule(app.config.ScheduleIn)
		if err != nil {
			return session.Spec{}, err
		}
		ctxlog.FromContext(ctx).Info("Replaying saved schedule.", "path", app.config.ScheduleIn, "modules", len(saved.Modules))
		spec.Replay = saved.Modules
	}
	if g.ResultsDir != "" {
		spec.Sink = report.NewSink(g.ResultsDir)
	}
	return spec, nil
}

// schedulerConfig layers the configured tuning and the CLI overrides over the
// defaults.
func (app *App) schedulerConfig() scheduler.Config {
	cfg := scheduler.DefaultConfig()
	gen := app.model.Global.Genetic
	if gen.PopulationSize != nil {
		cfg.PopulationSize = *gen.PopulationSize
	}
	if gen.MaxGenerations != nil {
		cfg.MaxGenerations = *gen.MaxGenerations
	}
	if gen.MaxStagnantGenerations != nil {
		cfg.MaxStagnantGenerations = *gen.MaxStagnantGenerations
	}
	if gen.MutationRate != nil {
		cfg.MutationRate = *gen.MutationRate
	}
	if gen.Seed != nil {
		cfg.Seed = *gen.Seed
	}
	if gen.Workers != nil {
		cfg.Workers = *gen.Workers
	}
	if app.config.Workers > 0 {
		cfg.Workers = app.config.Workers
	}
	if app.config.Seed != nil {
		cfg.Seed = *app.config.Seed
	}
	return cfg
}

func (app *App) writeReport(ctx context.Context, run *report.Run) error {
	if app.config.ReportPath == "" {
		return nil
	}
	if err := report.WriteRun(app.config.ReportPath, run); err != nil {
		return err
	}
	ctxlog.FromContext(ctx).Info("💾 Run report written.", "path", app.config.ReportPath)
	return nil
}
