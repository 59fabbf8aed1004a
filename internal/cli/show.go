package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// ShowOptions holds flags for the show command.
type ShowOptions struct {
	*RootOptions
	sessionOverrides
}

// SignatureRow is one signature in show output.
type SignatureRow struct {
	StaffNumber string `json:"staffNumber"`
	Name        string `json:"name"`
	Timestamp   string `json:"timestamp"`
}

// ShowResult is the JSON payload for a single record.
type ShowResult struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Date       string         `json:"date"`
	CreatedAt  string         `json:"createdAt"`
	Signatures []SignatureRow `json:"signatures"`
}

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ShowOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "show <record-id>",
		Short: "Show one record with its signatures",
		Long: `Show a single sign-off record and its signatures.

Record ids have the form <date>|<name>, exactly as the record was
created. Signatures are listed in name order.

Example:
  signoff show "2024-03-01|Forklift Daily Checks"`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(opts, args[0], cmd)
		},
	}

	addSessionFlags(cmd, &opts.sessionOverrides)

	return cmd
}

func runShow(opts *ShowOptions, id string, cmd *cobra.Command) error {
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

	rec, err := sess.Register.Select(id)
	if err != nil {
		return outputRegisterError(formatter, err)
	}

	ordered := sess.Views.Signatures(*rec)
	result := ShowResult{
		ID:         rec.ID,
		Name:       rec.Name,
		Date:       rec.Date,
		CreatedAt:  rec.CreatedAt,
		Signatures: make([]SignatureRow, 0, len(ordered)),
	}
	for _, sig := range ordered {
		result.Signatures = append(result.Signatures, SignatureRow{
			StaffNumber: sig.StaffNumber,
			Name:        sig.Name,
			Timestamp:   sig.Timestamp,
		})
	}
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "%s (%s)\n", rec.Name, rec.Date)
	fmt.Fprintf(formatter.Writer, "created %s\n\n", rec.CreatedAt)
	if len(ordered) == 0 {
		fmt.Fprintln(formatter.Writer, "No signatures.")
		return nil
	}
	for _, sig := range ordered {
		fmt.Fprintf(formatter.Writer, "  %-12s %-30s %s\n", sig.StaffNumber, sig.Name, sig.Timestamp)
	}
	fmt.Fprintf(formatter.Writer, "\n%d signature(s)\n", len(ordered))
	return nil
}
