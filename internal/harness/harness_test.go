package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testRoster = `drivers: [
	{staff_number: "D-100", name: "Alice Crane"},
	{staff_number: "D-200", name: "Bob Stone"},
]
`

func boolPtr(b bool) *bool {
	return &b
}

func TestRun_FirstSignature(t *testing.T) {
	scenario := &Scenario{
		Name:        "run_first_signature",
		Description: "Create, sign, list",
		Roster:      testRoster,
		Steps: []Step{
			{Op: OpCreate, Name: "Forklift Daily Checks", Date: "2024-03-01", Expect: &ExpectClause{Created: boolPtr(true)}},
			{Op: OpSign, Staff: "D-100", Expect: &ExpectClause{WasNew: boolPtr(true)}},
			{Op: OpList},
		},
		Assertions: []Assertion{
			{Type: AssertRecordCount, Count: 1},
			{Type: AssertSignatureCount, Record: "2024-03-01|Forklift Daily Checks", Count: 1},
			{Type: AssertRecordPersisted, Record: "2024-03-01|Forklift Daily Checks"},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	require.True(t, result.Pass, "errors: %v", result.Errors)
	require.Len(t, result.Trace, 3)

	create := result.Trace[0]
	assert.Equal(t, 1, create.Seq)
	assert.Equal(t, "created", create.Outcome)
	assert.Equal(t, "2024-03-01|Forklift Daily Checks", create.Detail["record"])
	assert.Equal(t, "2024-03-01T09:00:00Z", create.Detail["createdAt"])

	sign := result.Trace[1]
	assert.Equal(t, "signed", sign.Outcome)
	assert.Equal(t, "D-100", sign.Detail["staff"])
	assert.Equal(t, "Alice Crane", sign.Detail["name"])
	assert.Equal(t, "2024-03-01T09:01:00Z", sign.Detail["timestamp"])

	list := result.Trace[2]
	assert.Equal(t, "listed", list.Outcome)
	assert.Equal(t, 1, list.Detail["count"])
}

func TestRun_ExpectedRefusalPasses(t *testing.T) {
	scenario := &Scenario{
		Name:        "run_expected_refusal",
		Description: "Unknown signer is refused",
		Roster:      testRoster,
		Steps: []Step{
			{Op: OpCreate, Name: "Hi-Vis Vest Policy", Date: "2024-03-01"},
			{Op: OpSign, Staff: "D-999", Expect: &ExpectClause{Error: "DRIVER_NOT_FOUND"}},
		},
		Assertions: []Assertion{
			{Type: AssertSignatureCount, Record: "2024-03-01|Hi-Vis Vest Policy", Count: 0},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	require.True(t, result.Pass, "errors: %v", result.Errors)

	refusal := result.Trace[1]
	assert.Equal(t, "DRIVER_NOT_FOUND", refusal.Outcome)
	assert.Equal(t, "staff number is not in the driver directory", refusal.Detail["message"])
}

func TestRun_UnexpectedRefusalFails(t *testing.T) {
	scenario := &Scenario{
		Name:        "run_unexpected_refusal",
		Description: "Refusal without an expect clause fails the scenario",
		Roster:      testRoster,
		Steps: []Step{
			{Op: OpCreate, Name: "Hi-Vis Vest Policy", Date: "2024-03-01"},
			{Op: OpSign, Staff: "D-999"},
		},
		Assertions: []Assertion{
			{Type: AssertRecordCount, Count: 1},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "step 2 (sign): unexpected refusal DRIVER_NOT_FOUND")
}

func TestRun_WrongRefusalCodeFails(t *testing.T) {
	scenario := &Scenario{
		Name:        "run_wrong_refusal",
		Description: "Refusal with the wrong code fails the scenario",
		Roster:      testRoster,
		Steps: []Step{
			{Op: OpCreate, Name: "Hi-Vis Vest Policy", Date: "2024-03-01"},
			{Op: OpSign, Staff: "D-999", Expect: &ExpectClause{Error: "VALIDATION"}},
		},
		Assertions: []Assertion{
			{Type: AssertRecordCount, Count: 1},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], `expected refusal "VALIDATION", got "DRIVER_NOT_FOUND"`)
}

func TestRun_ExpectVerdictMismatchFails(t *testing.T) {
	scenario := &Scenario{
		Name:        "run_verdict_mismatch",
		Description: "A fresh create pinned as a load fails the scenario",
		Roster:      testRoster,
		Steps: []Step{
			{Op: OpCreate, Name: "Hi-Vis Vest Policy", Date: "2024-03-01", Expect: &ExpectClause{Created: boolPtr(false)}},
		},
		Assertions: []Assertion{
			{Type: AssertRecordCount, Count: 1},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "expected created=false, got created=true")
}

func TestRun_ReSignReportsUpdated(t *testing.T) {
	scenario := &Scenario{
		Name:        "run_resign",
		Description: "Second signature from the same driver updates in place",
		Roster:      testRoster,
		Steps: []Step{
			{Op: OpCreate, Name: "Hi-Vis Vest Policy", Date: "2024-03-01"},
			{Op: OpSign, Staff: "D-100", Expect: &ExpectClause{WasNew: boolPtr(true)}},
			{Op: OpSign, Staff: "D-100", Expect: &ExpectClause{WasNew: boolPtr(false)}},
		},
		Assertions: []Assertion{
			{Type: AssertSignatureCount, Record: "2024-03-01|Hi-Vis Vest Policy", Count: 1},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	require.True(t, result.Pass, "errors: %v", result.Errors)

	assert.Equal(t, "signed", result.Trace[1].Outcome)
	assert.Equal(t, "updated", result.Trace[2].Outcome)
	assert.Equal(t, "2024-03-01T09:02:00Z", result.Trace[2].Detail["timestamp"])
}

func TestRun_SelectSwitchesActiveRecord(t *testing.T) {
	scenario := &Scenario{
		Name:        "run_select",
		Description: "Selecting an older record routes signatures to it",
		Roster:      testRoster,
		Steps: []Step{
			{Op: OpCreate, Name: "Hi-Vis Vest Policy", Date: "2024-02-29"},
			{Op: OpCreate, Name: "Forklift Daily Checks", Date: "2024-03-01"},
			{Op: OpSelect, Record: "2024-02-29|Hi-Vis Vest Policy"},
			{Op: OpSign, Staff: "D-200", Expect: &ExpectClause{WasNew: boolPtr(true)}},
		},
		Assertions: []Assertion{
			{Type: AssertSignatureCount, Record: "2024-02-29|Hi-Vis Vest Policy", Count: 1},
			{Type: AssertSignatureCount, Record: "2024-03-01|Forklift Daily Checks", Count: 0},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	require.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Equal(t, "selected", result.Trace[2].Outcome)
}

func TestRun_ExportTracesReceipt(t *testing.T) {
	scenario := &Scenario{
		Name:        "run_export",
		Description: "Export traces the receipt metadata",
		Roster:      testRoster,
		Steps: []Step{
			{Op: OpCreate, Name: "Forklift Daily Checks", Date: "2024-03-01"},
			{Op: OpSign, Staff: "D-100"},
			{Op: OpSign, Staff: "D-200"},
			{Op: OpExport},
		},
		Assertions: []Assertion{
			{Type: AssertSignatureCount, Record: "2024-03-01|Forklift Daily Checks", Count: 2},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	require.True(t, result.Pass, "errors: %v", result.Errors)

	exported := result.Trace[3]
	assert.Equal(t, "exported", exported.Outcome)
	assert.Equal(t, "safety-2024-03-01-Forklift-Daily-Checks.xlsx", exported.Detail["filename"])
	assert.Equal(t, 2, exported.Detail["rows"])
	assert.Equal(t, 1, exported.Detail["pages"])
	assert.Equal(t, "op-004", exported.Detail["token"])
}

// Two runs of the same scenario must produce identical traces. The
// golden files depend on this.
func TestRun_Deterministic(t *testing.T) {
	scenario := &Scenario{
		Name:        "run_deterministic",
		Description: "Traces are reproducible",
		Roster:      testRoster,
		Steps: []Step{
			{Op: OpCreate, Name: "Forklift Daily Checks", Date: "2024-03-01"},
			{Op: OpSign, Staff: "D-100"},
			{Op: OpExport},
		},
		Assertions: []Assertion{
			{Type: AssertRecordCount, Count: 1},
		},
	}

	first, err := Run(scenario)
	require.NoError(t, err)
	second, err := Run(scenario)
	require.NoError(t, err)

	assert.Equal(t, first.Trace, second.Trace)
}

func TestRun_BadRosterAborts(t *testing.T) {
	scenario := &Scenario{
		Name:        "run_bad_roster",
		Description: "An empty roster is an infrastructure failure, not a verdict",
		Roster:      "drivers: []",
		Steps: []Step{
			{Op: OpList},
		},
		Assertions: []Assertion{
			{Type: AssertRecordCount, Count: 0},
		},
	}

	_, err := Run(scenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to build scenario roster")
}

func TestRun_UnknownOpAborts(t *testing.T) {
	scenario := &Scenario{
		Name:        "run_unknown_op",
		Description: "Ops the register has no dispatch for abort the run",
		Roster:      testRoster,
		Steps: []Step{
			{Op: "frobnicate"},
		},
		Assertions: []Assertion{
			{Type: AssertRecordCount, Count: 0},
		},
	}

	_, err := Run(scenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown op "frobnicate"`)
}
