package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/signoff/internal/register"
)

// SignOptions holds flags for the sign command.
type SignOptions struct {
	*RootOptions
	sessionOverrides
	Record string
}

// SignOutcome reports one staff number's result.
type SignOutcome struct {
	StaffNumber string `json:"staffNumber"`
	Name        string `json:"name,omitempty"`
	Timestamp   string `json:"timestamp,omitempty"`
	Updated     bool   `json:"updated,omitempty"`
	Error       string `json:"error,omitempty"`
}

// SignResult is the JSON payload for a sign run.
type SignResult struct {
	Record   string        `json:"record"`
	Signed   int           `json:"signed"`
	Refused  int           `json:"refused"`
	Outcomes []SignOutcome `json:"outcomes"`
}

// NewSignCommand creates the sign command.
func NewSignCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SignOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "sign --record <record-id> <staff-number> [<staff-number>...]",
		Short: "Record signatures against a record",
		Long: `Record that staff members have received a document.

Each staff number is checked against the roster; unknown numbers are
refused individually and the rest are still processed. Signing twice
keeps the signature in place and refreshes its time.

Example:
  signoff sign --record "2024-03-01|Forklift Daily Checks" D-100 D-205`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSign(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Record, "record", "", "record id to sign against")
	addSessionFlags(cmd, &opts.sessionOverrides)

	return cmd
}

func runSign(opts *SignOptions, staffNumbers []string, cmd *cobra.Command) error {
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

	if opts.Record != "" {
		if _, err := sess.Register.Select(opts.Record); err != nil {
			return outputRegisterError(formatter, err)
		}
	}

	result := SignResult{Outcomes: make([]SignOutcome, 0, len(staffNumbers))}
	for _, staffNumber := range staffNumbers {
		sig, wasNew, err := sess.Register.MarkReceived(ctx, staffNumber)
		if err != nil {
			var regErr *register.Error
			if errors.As(err, &regErr) && regErr.Code == register.ErrCodeDriverNotFound {
				result.Refused++
				result.Outcomes = append(result.Outcomes, SignOutcome{
					StaffNumber: staffNumber,
					Error:       regErr.Message,
				})
				continue
			}
			// No active record fails every number the same way.
			return outputRegisterError(formatter, err)
		}
		result.Signed++
		result.Outcomes = append(result.Outcomes, SignOutcome{
			StaffNumber: sig.StaffNumber,
			Name:        sig.Name,
			Timestamp:   sig.Timestamp,
			Updated:     !wasNew,
		})
	}
	if rec, ok := sess.Register.Active(); ok {
		result.Record = rec.ID
	}

	if result.Refused > 0 {
		return outputSignRefusals(formatter, result)
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	printSignOutcomes(formatter, result)
	return nil
}

// outputSignRefusals reports a partially-refused run: the full outcome
// set is still emitted, and the command exits with a failure code.
func outputSignRefusals(formatter *OutputFormatter, result SignResult) error {
	message := fmt.Sprintf("%d of %d staff number(s) refused", result.Refused, len(result.Outcomes))

	if formatter.Format == "json" {
		response := CLIResponse{
			Status: "error",
			Data:   result,
			Error: &CLIError{
				Code:    string(register.ErrCodeDriverNotFound),
				Message: message,
			},
		}
		if err := json.NewEncoder(formatter.Writer).Encode(response); err != nil {
			return err
		}
		return NewExitError(ExitFailure, message)
	}

	printSignOutcomes(formatter, result)
	return NewExitError(ExitFailure, message)
}

func printSignOutcomes(formatter *OutputFormatter, result SignResult) {
	for _, outcome := range result.Outcomes {
		switch {
		case outcome.Error != "":
			fmt.Fprintf(formatter.Writer, "✗ %s: %s\n", outcome.StaffNumber, outcome.Error)
		case outcome.Updated:
			fmt.Fprintf(formatter.Writer, "✓ %s %s (time updated)\n", outcome.StaffNumber, outcome.Name)
		default:
			fmt.Fprintf(formatter.Writer, "✓ %s %s\n", outcome.StaffNumber, outcome.Name)
		}
	}
	fmt.Fprintf(formatter.Writer, "\n%d signed, %d refused\n", result.Signed, result.Refused)
}
