package reactor

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sys/unix"
)

// Readiness conditions, mapped to their epoll counterparts.
const (
	Readable Event = unix.EPOLLIN
	Writable Event = unix.EPOLLOUT

	// OneShot disables the registration after one delivered event.
	// Re-enable with Modify.
	OneShot Event = unix.EPOLLONESHOT
)

// ErrNotSupported is returned when a descriptor type cannot be polled
// for readiness, e.g. regular files.
var ErrNotSupported = errors.New("fd does not support readiness polling")

// Reactor is an epoll-backed event loop. Events are level-triggered.
type Reactor struct {
	epfd  int
	wakeR int
	wakeW int

	lock     sync.Mutex
	handlers map[int]Callback
	closed   bool
}

// New returns a new reactor.
func New() (*Reactor, error) {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("epoll_create1: %w", err)
	}

	// Self-pipe to interrupt the wait call on shutdown.
	var pipeFds [2]int
	if err := unix.Pipe2(pipeFds[:], unix.O_NONBLOCK|unix.O_CLOEXEC); err != nil {
		_ = unix.Close(epfd)
		return nil, fmt.Errorf("pipe2: %w", err)
	}

	r := &Reactor{
		epfd:     epfd,
		wakeR:    pipeFds[0],
		wakeW:    pipeFds[1],
		handlers: make(map[int]Callback),
	}

	event := unix.EpollEvent{Events: uint32(Readable), Fd: int32(r.wakeR)}
	if err := unix.EpollCtl(epfd, unix.EPOLL_CTL_ADD, r.wakeR, &event); err != nil {
		r.closeFds()
		return nil, fmt.Errorf("register wake pipe: %w", err)
	}

	return r, nil
}

// Register adds the fd to the event loop with the given readiness mask.
// Returns ErrNotSupported for descriptor types epoll cannot handle.
func (r *Reactor) Register(fd int, events Event, cb Callback) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	event := unix.EpollEvent{Events: uint32(events), Fd: int32(fd)}
	if err := unix.EpollCtl(r.epfd, unix.EPOLL_CTL_ADD, fd, &event); err != nil {
		if errors.Is(err, unix.EPERM) {
			return ErrNotSupported
		}
		return fmt.Errorf("epoll_ctl add fd %d: %w", fd, err)
	}

	r.handlers[fd] = cb
	return nil
}

// Modify updates the readiness mask of a registered fd. It also
// re-enables registrations disabled by OneShot.
func (r *Reactor) Modify(fd int, events Event) error {
	event := unix.EpollEvent{Events: uint32(events), Fd: int32(fd)}
	if err := unix.EpollCtl(r.epfd, unix.EPOLL_CTL_MOD, fd, &event); err != nil {
		return fmt.Errorf("epoll_ctl mod fd %d: %w", fd, err)
	}
	return nil
}

// Deregister removes the fd from the event loop.
func (r *Reactor) Deregister(fd int) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	delete(r.handlers, fd)
	if err := unix.EpollCtl(r.epfd, unix.EPOLL_CTL_DEL, fd, nil); err != nil {
		return fmt.Errorf("epoll_ctl del fd %d: %w", fd, err)
	}
	return nil
}

// Run dispatches events until the given context is canceled. All
// callbacks are invoked from this goroutine.
func (r *Reactor) Run(ctx context.Context) error {
	// Interrupt the wait call when the context is canceled.
	go func() {
		<-ctx.Done()
		r.wake()
	}()

	events := make([]unix.EpollEvent, 8)
	for {
		n, err := unix.EpollWait(r.epfd, events, -1)
		if err != nil {
			if errors.Is(err, unix.EINTR) {
				continue
			}
			return fmt.Errorf("epoll_wait: %w", err)
		}

		for i := range n {
			ev := events[i]
			fd := int(ev.Fd)

			if fd == r.wakeR {
				r.drainWakePipe()
				continue
			}

			r.lock.Lock()
			cb := r.handlers[fd]
			r.lock.Unlock()
			if cb != nil {
				cb(Event(ev.Events))
			}
		}

		if ctx.Err() != nil {
			return nil
		}
	}
}

// Close releases the reactor resources. It is idempotent.
func (r *Reactor) Close() {
	r.lock.Lock()
	defer r.lock.Unlock()

	if r.closed {
		return
	}
	r.closed = true
	r.closeFds()
}

func (r *Reactor) closeFds() {
	_ = unix.Close(r.epfd)
	_ = unix.Close(r.wakeR)
	_ = unix.Close(r.wakeW)
}

func (r *Reactor) wake() {
	_, _ = unix.Write(r.wakeW, []byte{0})
}

func (r *Reactor) drainWakePipe() {
	buf := make([]byte, 16)
	for {
		n, err := unix.Read(r.wakeR, buf)
		if n <= 0 || err != nil {
			return
		}
	}
}
