package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/specialistvlad/fieldgridgo/internal/module"
	"github.com/specialistvlad/fieldgridgo/internal/objectstore"
)

// Object is a named, sized object declared by a FakeModule.
type Object struct {
	Name string
	Size int64
}

// Calls records module lifecycle calls in order. It is safe for concurrent use.
type Calls struct {
	mu  sync.Mutex
	log []string
}

// Add appends one entry.
func (c *Calls) Add(entry string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.log = append(c.log, entry)
}

// List returns a copy of the entries.
func (c *Calls) List() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.log...)
}

// Count returns how many entries equal entry.
func (c *Calls) Count(entry string) int {
	n := 0
	for _, e := range c.List() {
		if e == entry {
			n++
		}
	}
	return n
}

// FakeModule is a configurable module.Module for tests. It declares its
// objects with the sizes it estimates and records "setup:<name>" and
// "execute:<name>" entries.
type FakeModule struct {
	module.Base
	In     []string
	Out    []Object
	Temps  []Object
	Cached []Object

	// SetupErr fails setup when non-nil.
	SetupErr error
	// ExecuteErr is called with the 1-based execution count and fails
	// execute when it returns non-nil.
	ExecuteErr func(call int) error
	// SetupSize overrides the declared size of outputs, to exercise
	// estimate discrepancies.
	SetupSize map[string]int64

	Calls *Calls

	mu        sync.Mutex
	execCount int
}

// NewFake builds a FakeModule whose outputs all have the given size.
func NewFake(name string, inputs []string, size int64, outputs ...string) *FakeModule {
	m := &FakeModule{Base: module.NewBase(name, "fake"), In: inputs}
	for _, out := range outputs {
		m.Out = append(m.Out, Object{Name: out, Size: size})
	}
	return m
}

var _ module.Module = (*FakeModule)(nil)

func (m *FakeModule) Inputs() []string { return m.In }

func (m *FakeModule) Outputs() []string {
	out := make([]string, 0, len(m.Out)+len(m.Cached))
	for _, o := range m.Out {
		out = append(out, o.Name)
	}
	for _, o := range m.Cached {
		out = append(out, o.Name)
	}
	return out
}

func (m *FakeModule) Estimates() []module.Estimate {
	var est []module.Estimate
	for _, o := range m.Out {
		est = append(est, module.Estimate{Name: o.Name, Size: o.Size, Class: objectstore.Owned})
	}
	for _, o := range m.Cached {
		est = append(est, module.Estimate{Name: o.Name, Size: o.Size, Class: objectstore.Cached})
	}
	for _, o := range m.Temps {
		est = append(est, module.Estimate{Name: o.Name, Size: o.Size, Class: objectstore.Temporary})
	}
	return est
}

func (m *FakeModule) Setup(ctx context.Context, env *objectstore.Env) error {
	m.record("setup")
	if m.SetupErr != nil {
		return m.SetupErr
	}
	for _, o := range m.Out {
		size := o.Size
		if s, ok := m.SetupSize[o.Name]; ok {
			size = s
		}
		if err := env.Create(ctx, o.Name, "fake", size, 1, newPayload(o.Name)); err != nil {
			return err
		}
	}
	for _, o := range m.Cached {
		if err := env.Cache(ctx, o.Name, "fake", o.Size, 1, newPayload(o.Name)); err != nil {
			return err
		}
	}
	for _, o := range m.Temps {
		if err := env.Tmp(ctx, o.Name, "fake", o.Size, 1, nil); err != nil {
			return err
		}
	}
	return nil
}

func (m *FakeModule) Execute(ctx context.Context, env *objectstore.Env) error {
	m.record("execute")
	for _, in := range m.In {
		if _, err := env.Get(ctx, in); err != nil {
			return err
		}
	}
	m.mu.Lock()
	m.execCount++
	n := m.execCount
	m.mu.Unlock()
	if m.ExecuteErr != nil {
		if err := m.ExecuteErr(n); err != nil {
			return err
		}
	}
	for _, o := range m.Out {
		v, err := objectstore.As[*Payload](ctx, env, o.Name)
		if err != nil {
			return err
		}
		v.Writes++
	}
	return nil
}

func (m *FakeModule) record(phase string) {
	if m.Calls != nil {
		m.Calls.Add(fmt.Sprintf("%s:%s", phase, m.Name()))
	}
}

// Payload is the value FakeModule stores in its outputs.
type Payload struct {
	Name   string
	Writes int
}

func newPayload(name string) func() any {
	return func() any { return &Payload{Name: name} }
}
