package feeder

import (
	"errors"
	"testing"

	"github.com/urngd/urngd/service/mgr"
)

type fakeCollector struct {
	fail      bool
	shortRead bool
	freed     int
}

func (c *fakeCollector) Read(buf []byte) (int, error) {
	if c.fail {
		return -1, errors.New("collector broken")
	}
	for i := range buf {
		buf[i] = byte(i + 1)
	}
	if c.shortRead {
		return len(buf) - 1, nil
	}
	return len(buf), nil
}

func (c *fakeCollector) Free() {
	c.freed++
}

func TestJitterSourceGather(t *testing.T) { //nolint:paralleltest
	src := NewJitterSource(mgr.New("test"), &fakeCollector{})

	sample, ok := src.Gather()
	if !ok {
		t.Fatal("gather failed")
	}
	defer sample.Wipe()

	// Sample length is always the fixed oversampled length.
	if len(sample.Data) != EntropyBytes*OversamplingFactor {
		t.Errorf("expected %d bytes, got %d", EntropyBytes*OversamplingFactor, len(sample.Data))
	}
	// The estimate is the fixed conservative constant, derived from
	// the base byte count, not from the sampled length.
	if sample.Bits != EntropyBytes*8 {
		t.Errorf("expected %d bits, got %d", EntropyBytes*8, sample.Bits)
	}
	if sample.Bits > len(sample.Data)*8 {
		t.Error("entropy estimate exceeds sample length")
	}
}

func TestJitterSourceCollectorFailure(t *testing.T) { //nolint:paralleltest
	src := NewJitterSource(mgr.New("test"), &fakeCollector{fail: true})

	if _, ok := src.Gather(); ok {
		t.Error("gather should be unavailable when the collector fails")
	}
}

func TestJitterSourceShortRead(t *testing.T) { //nolint:paralleltest
	src := NewJitterSource(mgr.New("test"), &fakeCollector{shortRead: true})

	if _, ok := src.Gather(); ok {
		t.Error("gather should be unavailable on a short collector read")
	}
}
