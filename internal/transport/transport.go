// SPDX-License-Identifier: MIT
package transport

// Transport defines a generic interface for delivering pitch reports to an
// external consumer. Implementations must be thread-safe and must never
// block the caller for long: the engine treats a slow consumer as one that
// misses reports, not one that stalls analysis.
type Transport interface {
	Send(data any) error
	Close() error
}
