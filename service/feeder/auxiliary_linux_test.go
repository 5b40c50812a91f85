package feeder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/urngd/urngd/service/mgr"
)

func newTestPipe(t *testing.T) (r, w int) {
	t.Helper()

	var pipeFds [2]int
	require.NoError(t, unix.Pipe2(pipeFds[:], unix.O_NONBLOCK|unix.O_CLOEXEC))
	t.Cleanup(func() {
		_ = unix.Close(pipeFds[0])
		_ = unix.Close(pipeFds[1])
	})
	return pipeFds[0], pipeFds[1]
}

func TestAuxiliaryGather(t *testing.T) { //nolint:paralleltest
	r, w := newTestPipe(t)
	src := NewAuxiliarySource(mgr.New("test"), r, 8)

	payload := make([]byte, 200)
	for i := range payload {
		payload[i] = byte(i)
	}
	_, err := unix.Write(w, payload)
	require.NoError(t, err)

	sample, ok := src.Gather()
	require.True(t, ok)
	defer sample.Wipe()

	assert.Len(t, sample.Data, 200)
	assert.Equal(t, 1600, sample.Bits)
}

func TestAuxiliaryGatherDiscountedEstimate(t *testing.T) { //nolint:paralleltest
	r, w := newTestPipe(t)
	src := NewAuxiliarySource(mgr.New("test"), r, 4)

	_, err := unix.Write(w, make([]byte, 100))
	require.NoError(t, err)

	sample, ok := src.Gather()
	require.True(t, ok)
	defer sample.Wipe()

	assert.Equal(t, 400, sample.Bits)
	assert.LessOrEqual(t, sample.Bits, len(sample.Data)*8)
}

func TestAuxiliaryGatherBoundedChunk(t *testing.T) { //nolint:paralleltest
	r, w := newTestPipe(t)
	src := NewAuxiliarySource(mgr.New("test"), r, 8)

	_, err := unix.Write(w, make([]byte, auxChunkSize+512))
	require.NoError(t, err)

	sample, ok := src.Gather()
	require.True(t, ok)
	defer sample.Wipe()

	assert.LessOrEqual(t, len(sample.Data), auxChunkSize)
}

func TestAuxiliaryEmptyReadArmsWatch(t *testing.T) { //nolint:paralleltest
	r, _ := newTestPipe(t)
	src := NewAuxiliarySource(mgr.New("test"), r, 8)

	armCalls := 0
	src.EnableWatch(func() error {
		armCalls++
		return nil
	})
	// The initial registration counts as armed.
	require.True(t, src.Watched())

	// While the watch is pending, no read is attempted.
	_, ok := src.Gather()
	assert.False(t, ok)
	assert.Zero(t, armCalls)

	// After the watch fired, an empty read re-arms it.
	src.ConsumeWatch()
	_, ok = src.Gather()
	assert.False(t, ok)
	assert.Equal(t, 1, armCalls)
	assert.True(t, src.Watched())

	// Re-arming again without a consumed event is a no-op: between two
	// arm operations there is exactly one consumed event.
	src.Rearm()
	assert.Equal(t, 1, armCalls)

	src.ConsumeWatch()
	src.Rearm()
	assert.Equal(t, 2, armCalls)
}

func TestAuxiliaryWithoutWatchSupport(t *testing.T) { //nolint:paralleltest
	r, w := newTestPipe(t)
	src := NewAuxiliarySource(mgr.New("test"), r, 8)

	// No EnableWatch call: readiness polling unsupported, the source
	// attempts a read on every trigger.
	_, ok := src.Gather()
	assert.False(t, ok)
	assert.False(t, src.Watched())

	_, err := unix.Write(w, []byte("entropy"))
	require.NoError(t, err)

	sample, ok := src.Gather()
	require.True(t, ok)
	sample.Wipe()
}
