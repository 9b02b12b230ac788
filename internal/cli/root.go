package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ansindait/aci-system-sub001/internal/config"
	"github.com/ansindait/aci-system-sub001/internal/db"
	"github.com/ansindait/aci-system-sub001/internal/service"
)

var ValidOutputs = []string{"json", "yaml"}

// Backend is what the commands read from.
type Backend interface {
	service.Source
	service.ActivitySource
	Close()
}

// Opener connects to the backend named by a database URL.
type Opener func(ctx context.Context, databaseURL string) (Backend, error)

type RootOptions struct {
	Output      string
	DatabaseURL string
	Timezone    string
	Verbose     bool

	Open   Opener
	Config config.Config
}

func openStore(ctx context.Context, databaseURL string) (Backend, error) {
	store, err := db.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	return store, nil
}

// NewRootCommand builds progressctl. A nil opener connects to Postgres.
func NewRootCommand(cfg config.Config, open Opener) *cobra.Command {
	if open == nil {
		open = openStore
	}
	opts := &RootOptions{Open: open, Config: cfg}

	cmd := &cobra.Command{
		Use:           "progressctl",
		Short:         "Inspect site upload progress",
		Long:          "Computes per-division upload progress, site status and last activity from the task and BOQ store.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidOutputs, opts.Output) {
				return fmt.Errorf("invalid output %q: must be one of %v", opts.Output, ValidOutputs)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.Output, "output", "o", "json", "output format (json|yaml)")
	cmd.PersistentFlags().StringVar(&opts.DatabaseURL, "database-url", cfg.DatabaseURL, "Postgres connection string")
	cmd.PersistentFlags().StringVar(&opts.Timezone, "timezone", cfg.Timezone, "timezone for activity timestamps")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "log swallowed lookup errors to stderr")

	cmd.AddCommand(newProgressCommand(opts))
	cmd.AddCommand(newStatusCommand(opts))
	cmd.AddCommand(newLastActivityCommand(opts))
	cmd.AddCommand(newChecklistCommand(opts))
	return cmd
}

func (o *RootOptions) logger(errOut io.Writer) zerolog.Logger {
	if !o.Verbose {
		return zerolog.Nop()
	}
	return zerolog.New(errOut).With().Timestamp().Logger()
}

func (o *RootOptions) queryTimeout() time.Duration {
	if o.Config.QueryTimeout > 0 {
		return o.Config.QueryTimeout
	}
	return 5 * time.Second
}

func (o *RootOptions) location() (*time.Location, error) {
	cfg := o.Config
	cfg.Timezone = o.Timezone
	return cfg.Location()
}

func (o *RootOptions) connect(ctx context.Context) (Backend, error) {
	if o.DatabaseURL == "" {
		return nil, fmt.Errorf("database url required (--database-url or DATABASE_URL)")
	}
	backend, err := o.Open(ctx, o.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect store: %w", err)
	}
	return backend, nil
}

// Execute runs progressctl against the environment's configuration.
func Execute() int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "load config:", err)
		return 2
	}
	if err := NewRootCommand(cfg, nil).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}
	return 0
}
