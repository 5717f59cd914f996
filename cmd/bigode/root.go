package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/bigode/bigode-booking/internal/client"
	"github.com/bigode/bigode-booking/internal/session"
	"github.com/bigode/bigode-booking/pkg/config"
	"github.com/bigode/bigode-booking/pkg/logger"
)

type rootOptions struct {
	cfg      *config.Config
	apiURL   string
	logLevel string
	timeout  time.Duration
}

func (o *rootOptions) client(opts ...client.Option) *client.Client {
	opts = append([]client.Option{client.WithTimeout(o.timeout)}, opts...)
	return client.New(o.apiURL, opts...)
}

func (o *rootOptions) store() *session.Store {
	return session.NewStore(o.cfg.Session.Path)
}

func newRootCommand() *cobra.Command {
	o := &rootOptions{cfg: config.Load()}

	cmd := &cobra.Command{
		Use:           "bigode",
		Short:         "Barbearia do Bigode booking and admin client",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.Configure(os.Stderr, o.logLevel)
		},
	}

	cmd.PersistentFlags().StringVar(&o.apiURL, "api-url", o.cfg.API.BaseURL, "Bigode API base URL")
	cmd.PersistentFlags().StringVar(&o.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	cmd.PersistentFlags().DurationVar(&o.timeout, "timeout", o.cfg.API.Timeout, "HTTP timeout per request")

	cmd.AddCommand(newBookCommand(o))
	cmd.AddCommand(newAdminCommand(o))

	return cmd
}
