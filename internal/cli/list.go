package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// ListOptions holds flags for the list command.
type ListOptions struct {
	*RootOptions
	sessionOverrides
}

// RecordSummary is one listing line.
type RecordSummary struct {
	ID         string `json:"id"`
	Date       string `json:"date"`
	Name       string `json:"name"`
	Signatures int    `json:"signatures"`
}

// ListResult is the JSON payload for the record listing.
type ListResult struct {
	Count   int             `json:"count"`
	Records []RecordSummary `json:"records"`
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ListOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List sign-off records, newest date first",
		Long: `List all sign-off records.

Records are ordered newest date first, then by document name. Record
ids have the form <date>|<name> and are what show, sign and export
take.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(opts, cmd)
		},
	}

	addSessionFlags(cmd, &opts.sessionOverrides)

	return cmd
}

func runList(opts *ListOptions, cmd *cobra.Command) error {
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

	records := sess.Register.List()

	result := ListResult{
		Count:   len(records),
		Records: make([]RecordSummary, 0, len(records)),
	}
	for _, rec := range records {
		result.Records = append(result.Records, RecordSummary{
			ID:         rec.ID,
			Date:       rec.Date,
			Name:       rec.Name,
			Signatures: len(rec.Signatures),
		})
	}
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	if len(records) == 0 {
		fmt.Fprintln(formatter.Writer, "No records.")
		return nil
	}
	for _, rec := range records {
		fmt.Fprintf(formatter.Writer, "%s  %-40s  %d signature(s)\n", rec.Date, rec.Name, len(rec.Signatures))
	}
	fmt.Fprintf(formatter.Writer, "\n%d record(s)\n", len(records))
	return nil
}
