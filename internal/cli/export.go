package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

// ExportOptions holds flags for the export command.
type ExportOptions struct {
	*RootOptions
	sessionOverrides
	Record string
	Out    string
}

// ExportResult is the JSON payload for a completed export.
type ExportResult struct {
	Record string `json:"record"`
	File   string `json:"file"`
	Rows   int    `json:"rows"`
	Pages  int    `json:"pages"`
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export --record <record-id>",
		Short: "Export a record as a spreadsheet receipt",
		Long: `Export a record's receipt as an .xlsx workbook.

The receipt carries the record header and one row per signature, in
the same name order the listing uses, paginated for printing. The
file name is derived from the record's date and document name and the
file is written into --out (default: the configured export directory).

Records with no signatures are refused.

Example:
  signoff export --record "2024-03-01|Forklift Daily Checks" --out ./receipts`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Record, "record", "", "record id to export")
	cmd.Flags().StringVar(&opts.Out, "out", "", "directory to write the receipt into (overrides config)")
	addSessionFlags(cmd, &opts.sessionOverrides)

	return cmd
}

func runExport(opts *ExportOptions, cmd *cobra.Command) error {
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

	// Render into memory first: the file name comes back with the
	// receipt, so the file cannot be opened up front.
	var buf bytes.Buffer
	receipt, err := sess.Register.Export(opts.Record, &buf)
	if err != nil {
		return outputRegisterError(formatter, err)
	}

	outDir := opts.Out
	if outDir == "" {
		outDir = sess.Config.ExportDir
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return WrapExitError(ExitCommandError, "failed to prepare output directory", err)
	}
	path := filepath.Join(outDir, receipt.Filename)
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return WrapExitError(ExitCommandError, "failed to write receipt", err)
	}

	recordID := opts.Record
	if rec, ok := sess.Register.Active(); ok && recordID == "" {
		recordID = rec.ID
	}
	result := ExportResult{
		Record: recordID,
		File:   path,
		Rows:   receipt.Rows,
		Pages:  receipt.Pages,
	}
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "✓ Exported %d signature(s) to %s (%d page(s))\n", receipt.Rows, path, receipt.Pages)
	return nil
}
