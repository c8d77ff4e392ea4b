// Package driving provides interfaces for the primary/inbound ports
// consumed by the CLI and HTTP adapters.
package driving
