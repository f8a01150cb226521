// Package config defines the format-agnostic configuration model of a run,
// along with the interfaces (Loader, Converter) for loading and interpreting
// configuration from various sources.
//
// The `config.Model` is the single source of truth for the session that wires
// a run. Concrete implementations of the interfaces, such as for HCL, are
// provided in separate packages. Module parameters stay raw in the model and
// are decoded by each module factory through a Converter.
package config
