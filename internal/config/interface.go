package config

import (
	"context"

	"github.com/hashicorp/hcl/v2"
)

// Loader is the interface for a format-specific configuration loader.
type Loader interface {
	// Load reads configuration from the given paths, translates it into the
	// format-agnostic model, and returns a matching Converter.
	Load(ctx context.Context, paths ...string) (*Model, Converter, error)
}

// Converter decodes raw module parameter bodies into Go structs. Parameter
// expressions may reference the global block as `global`.
type Converter interface {
	DecodeBody(ctx context.Context, body hcl.Body, target any) error
}
