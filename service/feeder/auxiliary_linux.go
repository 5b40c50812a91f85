package feeder

import (
	"errors"

	"golang.org/x/sys/unix"

	"github.com/urngd/urngd/service/mgr"
)

// AuxiliarySource reads entropy from an optional file or device. The
// descriptor is opened non-blocking; an empty read is not an error but
// a signal to wait for the readiness watch to fire.
//
// The watch is demand-driven: it is armed only when a low-entropy
// trigger finds no data and no pending watch, and consumed by the
// readable callback. It is never armed twice without being consumed
// in between. All bookkeeping happens on the reactor goroutine.
type AuxiliarySource struct {
	mgr         *mgr.Manager
	fd          int
	bitsPerByte int

	// arm re-enables the readiness watch. Stays nil when the
	// descriptor type does not support readiness polling; the source
	// then attempts a read on every trigger.
	arm     func() error
	watched bool
}

// NewAuxiliarySource returns an auxiliary entropy source reading from
// the given non-blocking descriptor. bitsPerByte is the entropy
// credited per byte read; trusting the device with the full 8 is a
// configuration decision, not a property of this code.
func NewAuxiliarySource(m *mgr.Manager, fd int, bitsPerByte int) *AuxiliarySource {
	return &AuxiliarySource{
		mgr:         m,
		fd:          fd,
		bitsPerByte: bitsPerByte,
	}
}

// Name returns the source name.
func (s *AuxiliarySource) Name() string {
	return "auxiliary"
}

// EnableWatch attaches the readiness watch re-arm operation. The
// initial registration counts as armed.
func (s *AuxiliarySource) EnableWatch(arm func() error) {
	s.arm = arm
	s.watched = true
}

// ConsumeWatch acknowledges a fired readiness watch. The actual read
// happens lazily on the next low-entropy trigger.
func (s *AuxiliarySource) ConsumeWatch() {
	s.watched = false
}

// Watched returns whether a readiness watch is currently pending.
func (s *AuxiliarySource) Watched() bool {
	return s.watched
}

// Rearm arms the readiness watch unless one is already pending or
// readiness polling is unsupported.
func (s *AuxiliarySource) Rearm() {
	if s.arm == nil || s.watched {
		return
	}
	if err := s.arm(); err != nil {
		s.mgr.Error("cannot re-arm auxiliary readiness watch", "err", err)
		return
	}
	s.watched = true
}

// Gather attempts one bounded non-blocking read. It only reads when no
// readiness watch is pending, meaning either none was ever armed or a
// previous watch fired and was consumed.
func (s *AuxiliarySource) Gather() (*Sample, bool) {
	if s.watched {
		return nil, false
	}

	buf := make([]byte, auxChunkSize)
	n, err := unix.Read(s.fd, buf)
	if n <= 0 {
		Wipe(buf)
		if err != nil && !errors.Is(err, unix.EAGAIN) {
			s.mgr.Error("cannot read from auxiliary source", "err", err)
		} else {
			s.mgr.Debug("auxiliary source has no data")
		}
		s.Rearm()
		return nil, false
	}

	return &Sample{
		Data: buf[:n],
		Bits: n * s.bitsPerByte,
	}, true
}
