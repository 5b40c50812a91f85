package feeder

import (
	"encoding/binary"
	"errors"
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/urngd/urngd/service/mgr"
)

// DefaultDevice is the kernel pool control device.
const DefaultDevice = "/dev/random"

// ErrEntropyOverstated is returned when a sample claims more entropy
// bits than its length can hold.
var ErrEntropyOverstated = errors.New("entropy estimate exceeds sample length")

// buildPoolRequest lays out a rand_pool_info record: entropy_count in
// bits, buf_size in bytes, followed by the raw bytes, in native byte
// order. It rejects estimates above 8 bits per byte.
func buildPoolRequest(data []byte, bits int) ([]byte, error) {
	if len(data) == 0 {
		return nil, errors.New("empty sample")
	}
	if bits < 0 || bits > len(data)*8 {
		return nil, fmt.Errorf("%w: %d bits for %d bytes", ErrEntropyOverstated, bits, len(data))
	}

	req := make([]byte, 8+len(data))
	binary.NativeEndian.PutUint32(req[0:4], uint32(bits))
	binary.NativeEndian.PutUint32(req[4:8], uint32(len(data)))
	copy(req[8:], data)
	return req, nil
}

// PoolSink owns the single write-only descriptor to the kernel pool
// control device. It is never read from.
type PoolSink struct {
	mgr    *mgr.Manager
	device string
	fd     int
}

// OpenPool opens the kernel pool control device for injection.
func OpenPool(m *mgr.Manager, device string) (*PoolSink, error) {
	fd, err := unix.Open(device, unix.O_WRONLY|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", device, err)
	}
	return &PoolSink{
		mgr:    m,
		device: device,
		fd:     fd,
	}, nil
}

// Fd returns the pool descriptor for readiness registration.
func (p *PoolSink) Fd() int {
	return p.fd
}

// Inject submits the sample to the kernel pool via the RNDADDENTROPY
// control call and returns the number of bytes accepted. The request
// buffer is wiped before returning. Never retries.
func (p *PoolSink) Inject(sample *Sample) (int, error) {
	req, err := buildPoolRequest(sample.Data, sample.Bits)
	if err != nil {
		return 0, err
	}
	defer Wipe(req)

	_, _, errno := unix.Syscall(
		unix.SYS_IOCTL,
		uintptr(p.fd),
		uintptr(unix.RNDADDENTROPY),
		uintptr(unsafe.Pointer(&req[0])),
	)
	if errno != 0 {
		return 0, fmt.Errorf("ioctl RNDADDENTROPY on %s: %w", p.device, errno)
	}
	return len(sample.Data), nil
}

// Close closes the pool descriptor. It is idempotent.
func (p *PoolSink) Close() error {
	if p.fd < 0 {
		return nil
	}
	err := unix.Close(p.fd)
	p.fd = -1
	return err
}
