package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/signoff/internal/config"
	"github.com/roach88/signoff/internal/roster"
)

// RosterOptions holds flags for the roster command.
type RosterOptions struct {
	*RootOptions
	Roster string
}

// DriverRow is one roster entry in listing output.
type DriverRow struct {
	StaffNumber string `json:"staffNumber"`
	Name        string `json:"name"`
}

// RosterResult is the JSON payload for a validated roster.
type RosterResult struct {
	Valid   bool        `json:"valid"`
	Path    string      `json:"path"`
	Drivers []DriverRow `json:"drivers,omitempty"`
}

// NewRosterCommand creates the roster command.
func NewRosterCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RosterOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "roster",
		Short: "Validate the driver roster and list its entries",
		Long: `Validate the CUE driver roster and list the eligible signers.

The roster is checked against its schema: staff numbers and names must
be non-blank and staff numbers unique. Checking never touches the
database.

Example:
  signoff roster
  signoff roster --roster ./roster.cue`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRoster(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Roster, "roster", "", "path to roster CUE file (overrides config)")

	return cmd
}

func runRoster(opts *RosterOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	configureLogging(opts.Verbose)

	cfg, err := config.Resolve(opts.ConfigPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}
	path := opts.Roster
	if path == "" {
		path = cfg.Roster
	}

	formatter.VerboseLog("Checking roster %s", path)

	ros, err := roster.Load(path)
	if err != nil {
		var loadErr *roster.LoadError
		if errors.As(err, &loadErr) {
			return outputRosterError(formatter, loadErr)
		}
		return WrapExitError(ExitCommandError, "failed to load roster", err)
	}

	result := RosterResult{
		Valid:   true,
		Path:    path,
		Drivers: make([]DriverRow, 0, ros.Len()),
	}
	for _, d := range ros.Drivers() {
		result.Drivers = append(result.Drivers, DriverRow{StaffNumber: d.StaffNumber, Name: d.Name})
	}
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "✓ Roster valid (%d driver(s))\n\n", ros.Len())
	for _, d := range ros.Drivers() {
		fmt.Fprintf(formatter.Writer, "  %-12s %s\n", d.StaffNumber, d.Name)
	}
	return nil
}

// outputRosterError distinguishes an unreadable roster file from invalid
// roster content: the former is a command error, the latter a validation
// verdict.
func outputRosterError(formatter *OutputFormatter, loadErr *roster.LoadError) error {
	var details interface{}
	if loadErr.Pos.IsValid() {
		details = fmt.Sprintf("%s:%d:%d", loadErr.Pos.Filename(), loadErr.Pos.Line(), loadErr.Pos.Column())
	}
	_ = formatter.Error(loadErr.Code, loadErr.Message, details)

	if loadErr.Code == roster.ErrCodeRead {
		return NewExitError(ExitCommandError, loadErr.Error())
	}
	return NewExitError(ExitFailure, loadErr.Error())
}
