package harness

// TraceEvent records one executed step: what ran and how it came out.
// The trace is the deterministic surface golden files compare against.
type TraceEvent struct {
	// Seq is the 1-based step position.
	Seq int `json:"seq"`

	// Op is the step operation (create, select, sign, list, export).
	Op string `json:"op"`

	// Outcome names what happened: created, loaded, selected, signed,
	// updated, listed, exported, or the register error code the step
	// was refused with.
	Outcome string `json:"outcome"`

	// Detail carries outcome-specific fields (record id, timestamps,
	// listing order, receipt metadata, refusal message).
	Detail map[string]any `json:"detail,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall scenario success.
	// True if every expect clause and assertion held.
	Pass bool `json:"pass"`

	// Trace contains one event per executed step, in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains expect and assertion failure messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
// Used as the starting point for scenario execution.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddStepTrace appends one step's event to the trace.
func (r *Result) AddStepTrace(seq int, op, outcome string, detail map[string]any) {
	r.Trace = append(r.Trace, TraceEvent{
		Seq:     seq,
		Op:      op,
		Outcome: outcome,
		Detail:  detail,
	})
}
