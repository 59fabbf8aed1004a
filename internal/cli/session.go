package cli

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/signoff/internal/config"
	"github.com/roach88/signoff/internal/export"
	"github.com/roach88/signoff/internal/register"
	"github.com/roach88/signoff/internal/roster"
	"github.com/roach88/signoff/internal/store"
	"github.com/roach88/signoff/internal/view"
)

// Session bundles the collaborators one command invocation works with:
// the resolved config, the open store, the loaded roster, and the
// register assembled on top of them.
type Session struct {
	Config   *config.Config
	Store    *store.Store
	Roster   *roster.Roster
	Views    *view.Collation
	Register *register.Register
}

// Close releases the session's database handle.
func (s *Session) Close() {
	if err := s.Store.Close(); err != nil {
		slog.Error("error closing database", "error", err)
	}
}

// sessionOverrides are the per-command --db/--roster flag values that
// take precedence over the resolved config.
type sessionOverrides struct {
	Database string
	Roster   string
}

// addSessionFlags registers the store override flags on a command.
func addSessionFlags(cmd *cobra.Command, o *sessionOverrides) {
	cmd.Flags().StringVar(&o.Database, "db", "", "path to SQLite database (overrides config)")
	cmd.Flags().StringVar(&o.Roster, "roster", "", "path to roster CUE file (overrides config)")
}

// openSession resolves configuration, loads the roster, opens the
// database, and assembles the register. Failures here mean the
// environment is broken rather than the request being refused, so they
// all carry ExitCommandError.
func openSession(ctx context.Context, opts *RootOptions, overrides sessionOverrides) (*Session, error) {
	configureLogging(opts.Verbose)

	cfg, err := config.Resolve(opts.ConfigPath)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}
	if overrides.Database != "" {
		cfg.Database = overrides.Database
	}
	if overrides.Roster != "" {
		cfg.Roster = overrides.Roster
	}
	if err := cfg.Validate(); err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid config", err)
	}
	if err := cfg.EnsureDirs(); err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to prepare directories", err)
	}

	slog.Debug("loading roster", "path", cfg.Roster)
	ros, err := roster.Load(cfg.Roster)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load roster", err)
	}

	slog.Debug("opening database", "path", cfg.Database)
	st, err := store.Open(cfg.Database)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}

	// The register and the display layer share one collation so listings
	// and receipts order names identically.
	views := view.NewCollation(cfg.Locale)
	reg := register.New(ctx, st, ros,
		register.WithCollation(views),
		register.WithExporter(export.New()),
		register.WithTitle(cfg.Title),
	)

	return &Session{Config: cfg, Store: st, Roster: ros, Views: views, Register: reg}, nil
}

// configureLogging routes structured logs to stderr so stdout stays
// machine-readable.
func configureLogging(verbose bool) {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}

// commandContext returns the command's context, falling back to
// Background when cobra was driven without one.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// outputRegisterError prints a refused request through the formatter and
// converts it to the user-facing exit code. Anything that is not a
// register error is a command error.
func outputRegisterError(formatter *OutputFormatter, err error) error {
	var regErr *register.Error
	if errors.As(err, &regErr) {
		_ = formatter.Error(string(regErr.Code), regErr.Message, nil)
		return NewExitError(ExitFailure, regErr.Error())
	}
	_ = formatter.Error("INTERNAL", err.Error(), nil)
	return WrapExitError(ExitCommandError, "command failed", err)
}
