// Package reactor provides a minimal readiness-based event loop.
//
// File descriptors are registered for read/write readiness and receive
// callbacks from a single dispatch goroutine. No two callbacks ever run
// concurrently, so handlers may own shared state without locking.
//
// Always call Deregister before closing a file descriptor to prevent
// stale event delivery due to fd recycling.
package reactor

// Event is a set of readiness conditions.
type Event uint32

// Callback handles a readiness event for a registered fd.
type Callback func(events Event)
