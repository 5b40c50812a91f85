// Package feeder replenishes the kernel entropy pool.
//
// The engine is strictly event-driven: it waits for the kernel pool
// descriptor to signal low entropy (write-readiness on /dev/random),
// gathers one fixed-size sample from the jitter collector and, if
// configured, one sample from an auxiliary device, and injects each
// with a conservative entropy estimate via the RNDADDENTROPY control
// call. Raw entropy material is zero-wiped on every exit path.
//
// All engine state is confined to the reactor goroutine; no two
// trigger callbacks ever run concurrently.
package feeder
