package harness

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/signoff/internal/register"
	"github.com/roach88/signoff/internal/store"
	"github.com/roach88/signoff/internal/view"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nFull trace:\n")
	for _, event := range e.Trace {
		fmt.Fprintf(&buf, "  [%d] %s -> %s\n", event.Seq, event.Op, event.Outcome)
	}

	return buf.String()
}

// AssertionContext provides the collaborators assertions evaluate
// against: the register for session state, the store for reading the
// persisted blob back, and the collation for display ordering.
type AssertionContext struct {
	Ctx      context.Context
	Store    *store.Store
	Register *register.Register
	Views    *view.Collation
}

// assertRecordCount checks the register holds exactly the expected
// number of records.
func assertRecordCount(actx *AssertionContext, assertion Assertion, trace []TraceEvent) error {
	actual := actx.Register.Len()
	if actual != assertion.Count {
		return &AssertionError{
			Type:     AssertRecordCount,
			Expected: fmt.Sprintf("%d record(s)", assertion.Count),
			Actual:   fmt.Sprintf("%d record(s)", actual),
			Trace:    trace,
		}
	}
	return nil
}

// assertSignatureCount checks a record holds exactly the expected number
// of signatures.
func assertSignatureCount(actx *AssertionContext, assertion Assertion, trace []TraceEvent) error {
	rec, ok := findRecord(actx.Register, assertion.Record)
	if !ok {
		return &AssertionError{
			Type:     AssertSignatureCount,
			Expected: fmt.Sprintf("record %q present", assertion.Record),
			Actual:   "record not found",
			Trace:    trace,
		}
	}
	if len(rec.Signatures) != assertion.Count {
		return &AssertionError{
			Type:     AssertSignatureCount,
			Expected: fmt.Sprintf("%d signature(s) on %q", assertion.Count, assertion.Record),
			Actual:   fmt.Sprintf("%d signature(s)", len(rec.Signatures)),
			Trace:    trace,
		}
	}
	return nil
}

// assertRecordOrder checks the listing order of record ids. The match is
// exact: every record, in display order.
func assertRecordOrder(actx *AssertionContext, assertion Assertion, trace []TraceEvent) error {
	records := actx.Register.List()
	actual := make([]string, 0, len(records))
	for _, rec := range records {
		actual = append(actual, rec.ID)
	}
	if !slices.Equal(actual, assertion.Records) {
		return &AssertionError{
			Type:     AssertRecordOrder,
			Expected: fmt.Sprintf("listing order %v", assertion.Records),
			Actual:   fmt.Sprintf("listing order %v", actual),
			Trace:    trace,
		}
	}
	return nil
}

// assertSignatureOrder checks a record's display order of staff numbers.
// Ordering goes through the same collation as the on-screen listing and
// the exported sheet.
func assertSignatureOrder(actx *AssertionContext, assertion Assertion, trace []TraceEvent) error {
	rec, ok := findRecord(actx.Register, assertion.Record)
	if !ok {
		return &AssertionError{
			Type:     AssertSignatureOrder,
			Expected: fmt.Sprintf("record %q present", assertion.Record),
			Actual:   "record not found",
			Trace:    trace,
		}
	}
	ordered := actx.Views.Signatures(rec)
	actual := make([]string, 0, len(ordered))
	for _, sig := range ordered {
		actual = append(actual, sig.StaffNumber)
	}
	if !slices.Equal(actual, assertion.Staff) {
		return &AssertionError{
			Type:     AssertSignatureOrder,
			Expected: fmt.Sprintf("display order %v on %q", assertion.Staff, assertion.Record),
			Actual:   fmt.Sprintf("display order %v", actual),
			Trace:    trace,
		}
	}
	return nil
}

// assertRecordPersisted checks the record survived a round-trip through
// the saved blob. The mapping is read back from the database, not
// session memory, so this catches save paths that silently dropped a
// write: the persisted copy must exist and carry the same signatures as
// the session's copy.
func assertRecordPersisted(actx *AssertionContext, assertion Assertion, trace []TraceEvent) error {
	persisted := actx.Store.LoadRecords(actx.Ctx)
	saved, ok := persisted[assertion.Record]
	if !ok {
		return &AssertionError{
			Type:     AssertRecordPersisted,
			Expected: fmt.Sprintf("record %q in the persisted mapping", assertion.Record),
			Actual:   fmt.Sprintf("persisted mapping holds %d record(s), %q absent", len(persisted), assertion.Record),
			Trace:    trace,
		}
	}
	live, ok := findRecord(actx.Register, assertion.Record)
	if !ok {
		return &AssertionError{
			Type:     AssertRecordPersisted,
			Expected: fmt.Sprintf("record %q in the session register", assertion.Record),
			Actual:   "record only exists in the saved blob",
			Trace:    trace,
		}
	}
	if len(saved.Signatures) != len(live.Signatures) {
		return &AssertionError{
			Type:     AssertRecordPersisted,
			Expected: fmt.Sprintf("%d signature(s) persisted for %q", len(live.Signatures), assertion.Record),
			Actual:   fmt.Sprintf("%d signature(s) in the saved blob", len(saved.Signatures)),
			Trace:    trace,
		}
	}
	return nil
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
// The actx parameter provides register and store access.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertRecordCount:
			err = assertRecordCount(actx, assertion, result.Trace)
		case AssertSignatureCount:
			err = assertSignatureCount(actx, assertion, result.Trace)
		case AssertRecordOrder:
			err = assertRecordOrder(actx, assertion, result.Trace)
		case AssertSignatureOrder:
			err = assertSignatureOrder(actx, assertion, result.Trace)
		case AssertRecordPersisted:
			err = assertRecordPersisted(actx, assertion, result.Trace)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}
