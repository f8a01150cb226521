// Package hcl provides the concrete HCL implementation for the configuration
// loading and data conversion interfaces defined in the `config` package.
// It is responsible for file discovery, parsing, translation of the global
// block into the agnostic model, and decoding of module parameter bodies.
package hcl
