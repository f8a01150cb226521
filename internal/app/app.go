package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/specialistvlad/fieldgridgo/internal/config"
	"github.com/specialistvlad/fieldgridgo/internal/ctxlog"
	"github.com/specialistvlad/fieldgridgo/internal/localsession"
	"github.com/specialistvlad/fieldgridgo/internal/registry"
	"github.com/specialistvlad/fieldgridgo/internal/session"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW      io.Writer
	ctx       context.Context
	logger    *slog.Logger
	config    *Config
	registry  *registry.Registry
	model     *config.Model
	converter config.Converter
	factory   session.SessionFactory

	httpServer *http.Server

	mu      sync.Mutex
	session session.Session
}

// NewApp is the constructor for the main application. It loads and validates
// the run configuration and returns an App with its own isolated logger and
// registry. Registering a module type twice panics.
func NewApp(outW io.Writer, cfg *Config, loader config.Loader, modules ...registry.Module) (*App, error) {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	model, converter, err := loader.Load(ctx, cfg.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := model.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	logger.Debug("Configuration loaded and translated into unified model.", "modules", len(model.Modules))

	if model.Global.RunID == "" {
		model.Global.RunID = uuid.NewString()
		logger.Debug("Generated run id.", "run_id", model.Global.RunID)
	}
	ctx, logger = ctxlog.With(ctx, "run_id", model.Global.RunID)

	reg := registry.New()
	if len(modules) == 0 {
		modules = coreModules
	}
	for _, mod := range modules {
		mod.Register(reg)
	}
	logger.Debug("All Go modules registered.", "count", len(modules), "types", reg.Types())

	return &App{
		outW:      outW,
		ctx:       ctx,
		logger:    logger,
		config:    cfg,
		registry:  reg,
		model:     model,
		converter: converter,
		factory:   &localsession.SessionFactory{},
	}, nil
}

// Registry returns the application's registry. This is primarily for testing.
func (app *App) Registry() *registry.Registry {
	return app.registry
}

// RunID returns the identifier of the run.
func (app *App) RunID() string {
	return app.model.Global.RunID
}

func (app *App) setSession(s session.Session) {
	app.mu.Lock()
	defer app.mu.Unlock()
	app.session = s
}

func (app *App) currentSession() session.Session {
	app.mu.Lock()
	defer app.mu.Unlock()
	return app.session
}
