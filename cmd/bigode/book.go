package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/bigode/bigode-booking/internal/flow"
)

func newBookCommand(o *rootOptions) *cobra.Command {
	var pollInterval time.Duration

	cmd := &cobra.Command{
		Use:   "book <token>",
		Short: "Open a booking link and walk through the booking wizard",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			w := newWizard(o.client(), cmd.InOrStdin(), cmd.OutOrStdout(), o.cfg.Flow.Location(),
				flow.WithPollInterval(pollInterval))
			return w.run(ctx, args[0])
		},
	}

	cmd.Flags().DurationVar(&pollInterval, "poll-interval", o.cfg.Flow.PollInterval, "how often to refresh the queue position")

	return cmd
}
