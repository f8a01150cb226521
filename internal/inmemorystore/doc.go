// Package inmemorystore provides a thread-safe, in-memory implementation
// of the objectstore.Store interface. Byte sizes are accounted from the
// declared metadata; payloads live on the Go heap.
package inmemorystore
