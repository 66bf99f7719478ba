/*
Package observability turns assistant lifecycle events into Prometheus metrics.

Metrics registers its collectors on a caller-supplied registry so tests and
embedders never touch the global default registry. Hooks returns a
domain.LifecycleHooks value that can be merged with any other hooks (for
example structured logging) and passed to hsn.WithLifecycleHooks.
*/
package observability
