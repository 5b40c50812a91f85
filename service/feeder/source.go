package feeder

const (
	// EntropyBytes is the base amount of entropy gathered per jitter
	// sample, before oversampling.
	EntropyBytes = 32

	// OversamplingFactor compensates for the conservative entropy
	// estimate: the collector is asked for this multiple of
	// EntropyBytes, while only EntropyBytes worth of entropy is
	// credited to the pool.
	OversamplingFactor = 2

	// auxChunkSize bounds a single read from the auxiliary source.
	auxChunkSize = 1024
)

// Sample is an ephemeral portion of raw entropy, paired with a
// conservative estimate of how many bits of entropy it contains.
// A sample is consumed by exactly one inject call and wiped before
// the gather/inject cycle returns. It is never logged.
type Sample struct {
	Data []byte
	Bits int
}

// Wipe zeroes the sample's entropy material.
func (s *Sample) Wipe() {
	Wipe(s.Data)
}

// Source is a tagged entropy source capability. Gather returns false
// when the source currently has nothing to offer; that is not an
// error, the engine simply tries again on the next trigger.
type Source interface {
	Name() string
	Gather() (sample *Sample, ok bool)
}

// Collector is the external jitter entropy collector boundary.
// Read fills the buffer completely or returns a negative count with
// an error. Free releases the collector state and is idempotent.
type Collector interface {
	Read(buf []byte) (int, error)
	Free()
}

// Sink accepts entropy samples for injection into the kernel pool.
// Inject returns the number of bytes accepted; on failure it returns
// zero and the engine waits for the next readiness signal.
type Sink interface {
	Inject(sample *Sample) (int, error)
	Close() error
}
