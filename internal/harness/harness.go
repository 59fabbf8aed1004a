package harness

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/roach88/signoff/internal/export"
	"github.com/roach88/signoff/internal/record"
	"github.com/roach88/signoff/internal/register"
	"github.com/roach88/signoff/internal/roster"
	"github.com/roach88/signoff/internal/store"
	"github.com/roach88/signoff/internal/testutil"
	"github.com/roach88/signoff/internal/view"
)

// scenarioEpoch is the instant every scenario clock starts at. A shared
// epoch keeps timestamps in golden traces identical across scenarios.
var scenarioEpoch = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

// scenarioTick is how far the clock advances per reading.
const scenarioTick = time.Minute

// Harness executes one scenario against a real register over a fresh
// in-memory database. Nothing is stubbed: steps drive the production
// register, so expect clauses and assertions check genuine behavior.
type Harness struct {
	store    *store.Store
	register *register.Register
	views    *view.Collation
	clock    *testutil.Clock
	tokens   *testutil.Tokens
	logger   *slog.Logger
}

// Run executes a scenario and returns the result.
//
// Each scenario runs with a deterministic clock and op token sequence,
// so the same scenario always produces a byte-identical trace.
//
// Execution flow:
// 1. Open a fresh in-memory database
// 2. Build the roster from the scenario's inline CUE source
// 3. Execute the steps, validating expect clauses
// 4. Evaluate assertions against the final register and store state
//
// A non-nil error means the harness itself could not run (bad roster,
// broken store); scenario verdicts live in Result.Pass and
// Result.Errors.
func Run(scenario *Scenario) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory store: %w", err)
	}
	defer st.Close()

	ros, err := roster.Parse(scenario.Name+".cue", []byte(scenario.Roster))
	if err != nil {
		return nil, fmt.Errorf("failed to build scenario roster: %w", err)
	}

	ctx := context.Background()
	views := view.NewCollation("")
	h := &Harness{
		store:  st,
		views:  views,
		clock:  testutil.NewClock(scenarioEpoch, scenarioTick),
		tokens: testutil.NewTokens(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)), // Suppress harness logs in tests
	}
	h.register = register.New(ctx, st, ros,
		register.WithClock(h.clock),
		register.WithTokens(h.tokens),
		register.WithCollation(views),
		register.WithExporter(export.New()),
	)

	result := NewResult()
	if err := h.executeSteps(ctx, scenario.Steps, result); err != nil {
		return nil, fmt.Errorf("failed to execute steps: %w", err)
	}

	actx := &AssertionContext{
		Ctx:      ctx,
		Store:    st,
		Register: h.register,
		Views:    views,
	}
	for _, msg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(msg)
	}

	return result, nil
}

// stepOutcome is what one executed step reports into the trace and to
// expect validation.
type stepOutcome struct {
	// name is the trace outcome: a success verb or a register error code.
	name string

	// detail carries the outcome-specific trace fields.
	detail map[string]any

	// refused is true when the register rejected the step.
	refused bool

	// message is the refusal message, for expect mismatch reporting.
	message string

	// created reports a create step's verdict.
	created bool

	// wasNew reports a sign step's verdict.
	wasNew bool
}

// executeSteps runs all steps in order, appending one trace event per
// step and checking each step's expect clause against the real outcome.
// An error here is an infrastructure failure, not a scenario verdict.
func (h *Harness) executeSteps(ctx context.Context, steps []Step, result *Result) error {
	for i, step := range steps {
		seq := i + 1
		outcome, err := h.executeStep(ctx, step)
		if err != nil {
			return fmt.Errorf("step %d (%s): %w", seq, step.Op, err)
		}

		result.AddStepTrace(seq, step.Op, outcome.name, outcome.detail)
		h.checkExpect(seq, step, outcome, result)
		h.logger.Info("step executed", "seq", seq, "op", step.Op, "outcome", outcome.name)
	}
	return nil
}

// executeStep dispatches one step to the register and folds the outcome
// into trace form.
func (h *Harness) executeStep(ctx context.Context, step Step) (stepOutcome, error) {
	switch step.Op {
	case OpCreate:
		rec, created, err := h.register.CreateOrLoad(ctx, step.Name, step.Date)
		if err != nil {
			return refusalOutcome(err)
		}
		name := "loaded"
		if created {
			name = "created"
		}
		return stepOutcome{
			name:    name,
			created: created,
			detail: map[string]any{
				"record":     rec.ID,
				"createdAt":  rec.CreatedAt,
				"signatures": len(rec.Signatures),
			},
		}, nil

	case OpSelect:
		rec, err := h.register.Select(step.Record)
		if err != nil {
			return refusalOutcome(err)
		}
		return stepOutcome{
			name: "selected",
			detail: map[string]any{
				"record":     rec.ID,
				"signatures": len(rec.Signatures),
			},
		}, nil

	case OpSign:
		sig, wasNew, err := h.register.MarkReceived(ctx, step.Staff)
		if err != nil {
			return refusalOutcome(err)
		}
		name := "updated"
		if wasNew {
			name = "signed"
		}
		return stepOutcome{
			name:   name,
			wasNew: wasNew,
			detail: map[string]any{
				"staff":     sig.StaffNumber,
				"name":      sig.Name,
				"timestamp": sig.Timestamp,
			},
		}, nil

	case OpList:
		records := h.register.List()
		order := make([]string, 0, len(records))
		for _, rec := range records {
			order = append(order, rec.ID)
		}
		return stepOutcome{
			name: "listed",
			detail: map[string]any{
				"count": len(records),
				"order": order,
			},
		}, nil

	case OpExport:
		// The workbook bytes are discarded: zip archives carry
		// nondeterministic metadata, so the receipt is the traced
		// surface.
		var buf bytes.Buffer
		receipt, err := h.register.Export(step.Record, &buf)
		if err != nil {
			return refusalOutcome(err)
		}
		return stepOutcome{
			name: "exported",
			detail: map[string]any{
				"filename": receipt.Filename,
				"rows":     receipt.Rows,
				"pages":    receipt.Pages,
				"token":    receipt.Token,
			},
		}, nil

	default:
		return stepOutcome{}, fmt.Errorf("unknown op %q", step.Op)
	}
}

// refusalOutcome folds a register refusal into a trace outcome. Anything
// that is not a register error is an infrastructure failure and aborts
// the run.
func refusalOutcome(err error) (stepOutcome, error) {
	var regErr *register.Error
	if !errors.As(err, &regErr) {
		return stepOutcome{}, err
	}
	return stepOutcome{
		name:    string(regErr.Code),
		refused: true,
		message: regErr.Message,
		detail:  map[string]any{"message": regErr.Message},
	}, nil
}

// checkExpect validates a step's expect clause against the real outcome.
// Steps without an expect clause are required to succeed.
func (h *Harness) checkExpect(seq int, step Step, outcome stepOutcome, result *Result) {
	expect := step.Expect
	if expect != nil && expect.Error != "" {
		if !outcome.refused || outcome.name != expect.Error {
			result.AddError(fmt.Sprintf("step %d (%s): expected refusal %q, got %q", seq, step.Op, expect.Error, outcome.name))
		}
		return
	}

	if outcome.refused {
		result.AddError(fmt.Sprintf("step %d (%s): unexpected refusal %s: %s", seq, step.Op, outcome.name, outcome.message))
		return
	}
	if expect == nil {
		return
	}

	if expect.Created != nil && *expect.Created != outcome.created {
		result.AddError(fmt.Sprintf("step %d (%s): expected created=%v, got created=%v", seq, step.Op, *expect.Created, outcome.created))
	}
	if expect.WasNew != nil && *expect.WasNew != outcome.wasNew {
		result.AddError(fmt.Sprintf("step %d (%s): expected wasNew=%v, got wasNew=%v", seq, step.Op, *expect.WasNew, outcome.wasNew))
	}
}

// findRecord looks a record up by id in the register's listing.
func findRecord(reg *register.Register, id string) (record.Record, bool) {
	for _, rec := range reg.List() {
		if rec.ID == id {
			return rec, true
		}
	}
	return record.Record{}, false
}
