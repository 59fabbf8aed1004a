package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// CreateOptions holds flags for the create command.
type CreateOptions struct {
	*RootOptions
	sessionOverrides
	Date string
}

// CreateResult is the JSON payload for a created or loaded record.
type CreateResult struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Date       string `json:"date"`
	CreatedAt  string `json:"createdAt"`
	Created    bool   `json:"created"`
	Signatures int    `json:"signatures"`
}

// NewCreateCommand creates the create command.
func NewCreateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CreateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "create <document-name>",
		Short: "Create a sign-off record, or load the existing one",
		Long: `Create a sign-off record for a document on a date.

A record is identified by its date and document name together. If a
record already exists for that pair it is loaded as-is, signatures
intact, and nothing is written. The date defaults to today.

Example:
  signoff create "Forklift Daily Checks"
  signoff create "Hi-Vis Vest Policy" --date 2024-03-01`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreate(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Date, "date", "", "record date as YYYY-MM-DD (default today)")
	addSessionFlags(cmd, &opts.sessionOverrides)

	return cmd
}

func runCreate(opts *CreateOptions, name string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	ctx := commandContext(cmd)
	sess, err := openSession(ctx, opts.RootOptions, opts.sessionOverrides)
	if err != nil {
		return err
	}
	defer sess.Close()

	rec, created, err := sess.Register.CreateOrLoad(ctx, name, opts.Date)
	if err != nil {
		return outputRegisterError(formatter, err)
	}

	result := CreateResult{
		ID:         rec.ID,
		Name:       rec.Name,
		Date:       rec.Date,
		CreatedAt:  rec.CreatedAt,
		Created:    created,
		Signatures: len(rec.Signatures),
	}
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	if created {
		fmt.Fprintf(formatter.Writer, "✓ Created record %q for %s\n", rec.Name, rec.Date)
	} else {
		fmt.Fprintf(formatter.Writer, "Loaded record %q for %s (%d signature(s))\n", rec.Name, rec.Date, len(rec.Signatures))
	}
	return nil
}
