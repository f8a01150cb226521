// Package registry provides the central "glue" for the module system.
//
// The Registry maps the type tags used in configuration (e.g. "fermion.prop")
// to the compiled Go factories that build module instances. Every built-in
// module package registers its factories at application startup; configured
// module blocks are then turned into module.Module values in configuration
// order.
package registry
