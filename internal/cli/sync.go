package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

// NewSyncCommand creates the sync command: a single reconciler pass.
func NewSyncCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "sync",
		Short:         "Run one sync pass against the server",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			buf, closeFn, err := rootOpts.openBuffer()
			if err != nil {
				return err
			}
			defer closeFn()

			ctx := cmd.Context()
			before := buf.QueueCount(ctx)
			rootOpts.newReconciler(buf).SyncWithServer(ctx)
			after := buf.QueueCount(ctx)

			return rootOpts.formatter(cmd).Success(
				map[string]int{"synced": before - after, "remaining": after},
				fmt.Sprintf("synced %d, %d remaining", before-after, after),
			)
		},
	}
}

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Interval time.Duration
}

// NewRunCommand creates the run command: sync now, then on every interval
// until interrupted.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "run",
		Short:         "Keep syncing the offline queue until interrupted",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runLoop(ctx, opts)
		},
	}

	cmd.Flags().DurationVar(&opts.Interval, "interval", 0, "sync period (overrides SYNC_INTERVAL)")

	return cmd
}

func runLoop(ctx context.Context, opts *RunOptions) error {
	buf, closeFn, err := opts.openBuffer()
	if err != nil {
		return err
	}
	defer closeFn()

	interval := opts.cfg.SyncInterval
	if opts.Interval > 0 {
		interval = opts.Interval
	}
	opts.newReconciler(buf).Run(ctx, interval)
	return nil
}
