// Command urngd feeds the kernel entropy pool from CPU timing jitter.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/urngd/urngd/base/info"
	"github.com/urngd/urngd/base/log"
	"github.com/urngd/urngd/service"
)

var (
	cfg = &service.Config{}

	rootCmd = &cobra.Command{
		Use:           "urngd",
		Short:         "non-physical true random number generator daemon",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE:          run,
	}
)

func init() {
	flags := rootCmd.Flags()
	flags.StringVarP(&cfg.LogLevel, "debug", "d", "", "log level (name or numeric verbosity)")
	flags.StringVarP(&cfg.AuxSourcePath, "entropy-source", "f", "", "auxiliary entropy source file or device")
	flags.BoolVarP(&cfg.LogToStdout, "stdout", "S", false, "print messages to stdout instead of the kernel log")
	flags.IntVar(&cfg.AuxBitsPerByte, "aux-bits-per-byte", 8, "entropy bits credited per auxiliary byte (1-8)")
	flags.StringVar(&cfg.MetricsAddr, "metrics-addr", "", "serve prometheus metrics on this address")

	rootCmd.Version = info.Version()
	rootCmd.SetVersionTemplate(info.FullVersion())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	// Start logging first, so that the modules inherit the handler.
	level := log.InfoLevel
	if cfg.LogLevel != "" {
		level = log.ParseLevel(cfg.LogLevel)
		if level == 0 {
			return fmt.Errorf("invalid log level: %s", cfg.LogLevel)
		}
	}
	if err := log.Start(level, cfg.LogToStdout); err != nil {
		return err
	}

	// Create and start instance.
	instance, err := service.New(cfg)
	if err != nil {
		return err
	}
	if err := instance.Start(); err != nil {
		return err
	}
	slog.Info("started", "version", info.Version())

	// Wait for shutdown signal.
	signalCh := make(chan os.Signal, 1)
	signal.Notify(
		signalCh,
		os.Interrupt,
		syscall.SIGHUP,
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT,
	)

	select {
	case sig := <-signalCh:
		slog.Warn("received stop signal", "signal", sig)
	case <-instance.Done():
	}

	if !instance.Stop() {
		return fmt.Errorf("shutdown failed")
	}
	return nil
}
