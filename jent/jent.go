// Package jent collects entropy from CPU timing jitter.
//
// The collector repeatedly times small, varying amounts of work with
// the highest-resolution clock available and folds the measured deltas
// through SHA-256. The raw timing deltas are heavily oversampled, so
// callers must apply their own conservative entropy estimate to the
// returned bytes - the collector makes no quality claims per byte.
//
// A Collector is not safe for concurrent use.
package jent

import (
	"crypto/sha256"
	"errors"
	"runtime"
	"time"
)

// Tunables for the timing measurement loop.
const (
	initTestRounds = 1024
	foldRounds     = 256
	memBlockSize   = 64
	memBlockCount  = 32
)

// Errors returned by the collector.
var (
	ErrNoJitter      = errors.New("jent: timer has no measurable jitter")
	ErrCoarseTimer   = errors.New("jent: timer resolution too coarse")
	ErrCollectorFree = errors.New("jent: collector already freed")
)

// Init checks whether the runtime environment can deliver timing
// jitter. It must be called once before allocating a collector.
func Init() error {
	var (
		prev    int64
		varied  int
		nonzero int
	)

	for i := range initTestRounds {
		start := time.Now()
		stir(i)
		delta := time.Since(start).Nanoseconds()

		if delta > 0 {
			nonzero++
		}
		if delta != prev {
			varied++
		}
		prev = delta
	}

	// The clock must tick between measurements and the deltas must
	// actually vary, otherwise there is nothing to harvest.
	if nonzero < initTestRounds/10 {
		return ErrCoarseTimer
	}
	if varied < initTestRounds/10 {
		return ErrNoJitter
	}
	return nil
}

// Collector holds the jitter sampling state. The timing history is
// chained into every output block, so state must not be shared.
type Collector struct {
	pool  [sha256.Size]byte
	mem   []byte
	freed bool
}

// NewCollector allocates a new entropy collector.
// Flags are accepted for interface compatibility and currently unused.
func NewCollector(flags uint) (*Collector, error) {
	c := &Collector{
		mem: make([]byte, memBlockSize*memBlockCount),
	}

	// Prime the pool with a first round of measurements.
	c.fold()
	return c, nil
}

// Read fills buf with entropy and returns the number of bytes
// produced. It always fills the whole buffer or fails.
func (c *Collector) Read(buf []byte) (int, error) {
	if c.freed {
		return -1, ErrCollectorFree
	}

	filled := 0
	for filled < len(buf) {
		c.fold()
		filled += copy(buf[filled:], c.pool[:])
	}
	return len(buf), nil
}

// Free wipes and releases the collector state. It is idempotent.
func (c *Collector) Free() {
	if c.freed {
		return
	}
	for i := range c.pool {
		c.pool[i] = 0
	}
	for i := range c.mem {
		c.mem[i] = 0
	}
	c.freed = true
	runtime.KeepAlive(c.pool[:])
}

// fold runs one round of timing measurements and chains the deltas
// into the pool.
func (c *Collector) fold() {
	h := sha256.New()
	h.Write(c.pool[:])

	var delta [8]byte
	for i := range foldRounds {
		start := time.Now()
		stir(i)
		c.memAccess(i)
		d := time.Since(start).Nanoseconds()

		delta[0] = byte(d)
		delta[1] = byte(d >> 8)
		delta[2] = byte(d >> 16)
		delta[3] = byte(d >> 24)
		delta[4] = byte(d >> 32)
		delta[5] = byte(d >> 40)
		delta[6] = byte(d >> 48)
		delta[7] = byte(d >> 56)
		h.Write(delta[:])
	}

	copy(c.pool[:], h.Sum(nil))
}

// memAccess walks the scratch memory in a pattern derived from the
// pool, adding cache and TLB noise to the measured interval.
func (c *Collector) memAccess(round int) {
	idx := (int(c.pool[round%len(c.pool)]) * memBlockSize) % len(c.mem)
	for i := 0; i < memBlockCount; i++ {
		c.mem[(idx+i*memBlockSize)%len(c.mem)]++
	}
}

// stir performs a small, varying amount of busy work between clock
// reads so the measured interval depends on the CPU execution state.
func stir(round int) {
	spin := 100 + round%17
	x := round
	for i := 0; i < spin; i++ {
		x = x*31 + i
	}
	sink = x
}

// sink defeats dead code elimination of the stir loop.
var sink int
