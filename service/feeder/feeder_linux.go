package feeder

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/tevino/abool"
	"golang.org/x/sys/unix"

	"github.com/urngd/urngd/base/metrics"
	"github.com/urngd/urngd/jent"
	"github.com/urngd/urngd/service/mgr"
	"github.com/urngd/urngd/service/reactor"
)

// Config holds the feeder configuration.
type Config struct {
	// Device is the kernel pool control device. Defaults to /dev/random.
	Device string

	// AuxSourcePath optionally names a readable file or device that is
	// blended in as a second entropy source.
	AuxSourcePath string

	// AuxBitsPerByte is the entropy credited per auxiliary byte, 1 to
	// 8. The default of 8 fully trusts the auxiliary device.
	AuxBitsPerByte int
}

// Feeder is the entropy engine module.
type Feeder struct {
	mgr      *mgr.Manager
	instance instance

	cfg Config

	reactor   *reactor.Reactor
	collector Collector
	jitter    *JitterSource
	aux       *AuxiliarySource
	auxFd     int
	sink      Sink

	primed *abool.AtomicBool
}

// New returns a new feeder module.
func New(instance instance, cfg Config) (*Feeder, error) {
	if !shimLoaded.CompareAndSwap(false, true) {
		return nil, errors.New("only one instance allowed")
	}

	if cfg.Device == "" {
		cfg.Device = DefaultDevice
	}
	if cfg.AuxBitsPerByte <= 0 || cfg.AuxBitsPerByte > 8 {
		cfg.AuxBitsPerByte = 8
	}

	module = &Feeder{
		instance: instance,
		cfg:      cfg,
		auxFd:    -1,
		primed:   abool.New(),
	}
	return module, nil
}

// Start initializes the collector, opens the pool and auxiliary
// descriptors, primes the pool with one jitter injection and enters
// the reactor. Any failure here is fatal: without collector or pool
// the engine cannot perform its core duty.
func (f *Feeder) Start(m *mgr.Manager) error {
	f.mgr = m

	if err := f.setup(); err != nil {
		_ = f.shutdown()
		return err
	}

	// Prime the pool before any readiness signal arrives.
	f.injectFrom(f.jitter)
	f.primed.Set()

	m.Go("entropy reactor", f.run)
	return nil
}

// Stop stops the reactor and releases all resources. Each release is
// idempotent and a no-op for resources that were never acquired.
func (f *Feeder) Stop(m *mgr.Manager) error {
	m.Cancel()
	m.WaitForWorkers(5 * time.Second)
	return f.shutdown()
}

// Primed returns whether the initial jitter injection was performed.
func (f *Feeder) Primed() bool {
	return f.primed.IsSet()
}

func (f *Feeder) setup() error {
	// Jitter collector.
	if err := jent.Init(); err != nil {
		return fmt.Errorf("jitter entropy init failed: %w", err)
	}
	collector, err := jent.NewCollector(0)
	if err != nil {
		return fmt.Errorf("jitter entropy collector alloc failed: %w", err)
	}
	f.collector = collector
	f.jitter = NewJitterSource(f.mgr, collector)

	// Kernel pool.
	sink, err := OpenPool(f.mgr, f.cfg.Device)
	if err != nil {
		return err
	}
	f.sink = sink

	// Reactor with the pool's low-entropy trigger.
	f.reactor, err = reactor.New()
	if err != nil {
		return err
	}
	if err := f.reactor.Register(sink.Fd(), reactor.Writable, f.poolWritable); err != nil {
		return fmt.Errorf("register %s for write-readiness: %w", f.cfg.Device, err)
	}

	// Optional auxiliary source.
	if f.cfg.AuxSourcePath != "" {
		if err := f.setupAuxiliary(); err != nil {
			return err
		}
	}

	return nil
}

func (f *Feeder) setupAuxiliary() error {
	fd, err := unix.Open(f.cfg.AuxSourcePath, unix.O_RDONLY|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
	if err != nil {
		return fmt.Errorf("open auxiliary source %s: %w", f.cfg.AuxSourcePath, err)
	}
	f.auxFd = fd
	f.aux = NewAuxiliarySource(f.mgr, fd, f.cfg.AuxBitsPerByte)

	err = f.reactor.Register(fd, reactor.Readable|reactor.OneShot, f.auxReadable)
	switch {
	case err == nil:
		f.aux.EnableWatch(func() error {
			return f.reactor.Modify(fd, reactor.Readable|reactor.OneShot)
		})
	case errors.Is(err, reactor.ErrNotSupported):
		// Some device types cannot be polled for readiness. Fall back
		// to attempting a read on every low-entropy trigger.
		f.mgr.Info(
			"auxiliary source does not support readiness polling, reading on every trigger",
			"path", f.cfg.AuxSourcePath,
		)
	default:
		return fmt.Errorf("register auxiliary source for read-readiness: %w", err)
	}

	f.mgr.Info(
		"auxiliary entropy source configured",
		"path", f.cfg.AuxSourcePath,
		"bitsPerByte", f.cfg.AuxBitsPerByte,
	)
	return nil
}

func (f *Feeder) run(w *mgr.WorkerCtx) error {
	return f.reactor.Run(w.Ctx())
}

// poolWritable handles the kernel's low-entropy signal. The signal is
// level-triggered: if this trigger produces no progress, the kernel
// simply re-notifies.
func (f *Feeder) poolWritable(_ reactor.Event) {
	f.mgr.Debug("kernel signals low entropy", "device", f.cfg.Device)
	f.feedPool()
}

// auxReadable acknowledges the one-shot readiness watch. The actual
// read happens lazily on the next low-entropy trigger.
func (f *Feeder) auxReadable(_ reactor.Event) {
	f.mgr.Debug("auxiliary source signals available data")
	f.aux.ConsumeWatch()
}

// feedPool gathers and injects on one low-entropy trigger. Jitter
// injection always precedes auxiliary injection.
func (f *Feeder) feedPool() {
	f.injectFrom(f.jitter)

	if f.aux != nil {
		f.injectFrom(f.aux)
		f.aux.Rearm()
	}
}

// injectFrom performs one gather+inject cycle from the given source.
// The sample is wiped on every path after the gather, and failures
// never propagate beyond this trigger.
func (f *Feeder) injectFrom(src Source) {
	sample, ok := src.Gather()
	if !ok {
		return
	}
	defer sample.Wipe()

	n, err := f.sink.Inject(sample)
	if err != nil {
		f.mgr.Error("error injecting entropy", "source", src.Name(), "err", err)
		metrics.NewCounter(fmt.Sprintf(`urngd_inject_failed_total{source=%q}`, src.Name())).Inc()
		return
	}

	f.mgr.Debug("injected entropy", "source", src.Name(), "bytes", n, "bits", sample.Bits)
	metrics.NewCounter(fmt.Sprintf(`urngd_injected_bytes_total{source=%q}`, src.Name())).Add(n)
	metrics.NewCounter(fmt.Sprintf(`urngd_injected_samples_total{source=%q}`, src.Name())).Inc()
}

func (f *Feeder) shutdown() error {
	var errs *multierror.Error

	if f.reactor != nil {
		f.reactor.Close()
		f.reactor = nil
	}
	if f.collector != nil {
		f.collector.Free()
		f.collector = nil
	}
	if f.sink != nil {
		errs = multierror.Append(errs, f.sink.Close())
		f.sink = nil
	}
	if f.auxFd >= 0 {
		errs = multierror.Append(errs, unix.Close(f.auxFd))
		f.auxFd = -1
	}

	return errs.ErrorOrNil()
}

var (
	module     *Feeder
	shimLoaded atomic.Bool
)

type instance interface{}
