// Package service ties the daemon's modules together.
package service

import (
	"fmt"

	"github.com/urngd/urngd/base/metrics"
	"github.com/urngd/urngd/service/feeder"
	"github.com/urngd/urngd/service/mgr"
)

// Config holds the daemon configuration, populated from the command
// line. There is no global mutable configuration state.
type Config struct {
	// LogLevel is a level name or numeric verbosity.
	LogLevel string

	// LogToStdout logs to stdout instead of the kernel log.
	LogToStdout bool

	// Device is the kernel pool control device. Defaults to /dev/random.
	Device string

	// AuxSourcePath optionally names a second entropy source.
	AuxSourcePath string

	// AuxBitsPerByte is the entropy credited per auxiliary byte (1-8).
	AuxBitsPerByte int

	// MetricsAddr optionally enables the prometheus endpoint.
	MetricsAddr string
}

// Instance is an instance of the urngd daemon.
type Instance struct {
	*mgr.Group

	feeder  *feeder.Feeder
	metrics *metrics.Metrics
}

// New returns a new daemon instance.
func New(cfg *Config) (*Instance, error) {
	// Create instance to pass it to modules.
	instance := &Instance{}

	var err error
	instance.feeder, err = feeder.New(instance, feeder.Config{
		Device:         cfg.Device,
		AuxSourcePath:  cfg.AuxSourcePath,
		AuxBitsPerByte: cfg.AuxBitsPerByte,
	})
	if err != nil {
		return nil, fmt.Errorf("create feeder module: %w", err)
	}
	instance.metrics = metrics.New(cfg.MetricsAddr)

	// Add all modules to instance group.
	instance.Group = mgr.NewGroup(
		instance.metrics,
		instance.feeder,
	)

	return instance, nil
}

// Feeder returns the feeder module.
func (i *Instance) Feeder() *feeder.Feeder {
	return i.feeder
}

// Metrics returns the metrics module.
func (i *Instance) Metrics() *metrics.Metrics {
	return i.metrics
}
