package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/fieldgridgo/internal/config"
	"github.com/specialistvlad/fieldgridgo/internal/ctxlog"
	"github.com/specialistvlad/fieldgridgo/internal/module"
)

// ErrUnknownType is returned for a module block whose type has no factory.
var ErrUnknownType = errors.New("unknown module type")

// Module is the interface that all module packages implement to be registered.
type Module interface {
	Register(r *Registry)
}

// Request carries everything a factory needs to build one instance.
type Request struct {
	Name   string
	Global *config.Global
	// Decode decodes the instance's parameter body into a struct with `hcl` tags.
	Decode func(target any) error
}

// Factory builds a module instance from its configuration.
type Factory func(ctx context.Context, req Request) (module.Module, error)

// Registry holds the factories of a single application instance.
type Registry struct {
	factories map[string]Factory
}

// New creates and initializes a new Registry instance.
func New() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds the factory for a module type. Registering a type twice is a
// programmer error and panics.
func (r *Registry) Register(typ string, f Factory) {
	if _, exists := r.factories[typ]; exists {
		panic(fmt.Sprintf("module factory with type '%s' already registered", typ))
	}
	slog.Debug("Registering module factory.", "type", typ)
	r.factories[typ] = f
}

// Types returns the registered type tags, sorted.
func (r *Registry) Types() []string {
	types := make([]string, 0, len(r.factories))
	for t := range r.factories {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Build instantiates every configured module, in configuration order.
func (r *Registry) Build(ctx context.Context, model *config.Model, conv config.Converter) ([]module.Module, error) {
	logger := ctxlog.FromContext(ctx)
	mods := make([]module.Module, 0, len(model.Modules))

	for _, inst := range model.Modules {
		f, ok := r.factories[inst.Type]
		if !ok {
			return nil, fmt.Errorf("%s: module %q: %w %q", inst.DeclRange, inst.Name, ErrUnknownType, inst.Type)
		}
		body := inst.Body
		if body == nil {
			body = hcl.EmptyBody()
		}
		req := Request{
			Name:   inst.Name,
			Global: model.Global,
			Decode: func(target any) error {
				return conv.DecodeBody(ctx, body, target)
			},
		}
		m, err := f(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("%s: module %q (%s): %w", inst.DeclRange, inst.Name, inst.Type, err)
		}
		logger.Debug("Module instance created.", "module", inst.Name, "type", inst.Type,
			"inputs", m.Inputs(), "outputs", m.Outputs())
		mods = append(mods, m)
	}
	return mods, nil
}
