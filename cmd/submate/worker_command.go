package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"submate/internal/dispatch"
	"submate/internal/preflight"
)

func newWorkerCommand(ctx *commandContext) *cobra.Command {
	var skipPreflight bool

	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Process queued jobs until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			// One worker process per queue database. WhisperX loads the
			// model into device memory, so a second process would double
			// that and fight over the GPU.
			lock := flock.New(cfg.WorkerLockPath())
			locked, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire worker lock: %w", err)
			}
			if !locked {
				return fmt.Errorf("another worker already holds %s", cfg.WorkerLockPath())
			}
			defer lock.Unlock() //nolint:errcheck

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if !skipPreflight {
				if err := requirePreflight(runCtx, ctx); err != nil {
					return err
				}
			}

			return ctx.withApp(func(a *app) error {
				a.logger.Info("worker starting",
					slog.Int("workers", a.cfg.Queue.Workers),
					slog.String("queue_db", a.cfg.QueueDBPath()))
				worker := dispatch.NewWorker(a.store, a.registry, a.cfg.Queue, a.logger)
				err := worker.Run(runCtx)
				a.logger.Info("worker stopped")
				if err != nil && runCtx.Err() != nil {
					// Normal shutdown via signal.
					return nil
				}
				return err
			})
		},
	}

	cmd.Flags().BoolVar(&skipPreflight, "skip-preflight", false, "Start even when environment checks fail")
	return cmd
}

func requirePreflight(runCtx context.Context, ctx *commandContext) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	var failed []string
	for _, result := range preflight.RunAll(runCtx, cfg) {
		if !result.Passed {
			failed = append(failed, fmt.Sprintf("%s: %s", result.Name, result.Detail))
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("preflight failed:\n  %s", strings.Join(failed, "\n  "))
	}
	return nil
}
