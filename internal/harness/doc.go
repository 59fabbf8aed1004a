// Package harness provides scenario-based conformance testing for the
// sign-off register.
//
// The harness loads scenarios from YAML, executes their steps against a
// real register over a fresh in-memory database, and validates expect
// clauses and assertions against the genuine outcomes.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	roster: |
//	  drivers: [
//	    {staff_number: "D-100", name: "Alice Crane"},
//	  ]
//	steps:
//	  - op: create
//	    name: "Forklift Daily Checks"
//	    date: "2024-03-01"
//	    expect:
//	      created: true
//	  - op: sign
//	    staff: "D-100"
//	    expect:
//	      wasNew: true
//	assertions:
//	  - type: record_count
//	    count: 1
//	  - type: signature_count
//	    record: "2024-03-01|Forklift Daily Checks"
//	    count: 1
//
// # Step Operations
//
// The following operations are supported:
//
//   - create: Create or load the record for a document name and date
//   - select: Make an existing record the active one
//   - sign: Mark a staff number as having received the active document
//   - list: List all records in display order
//   - export: Render the receipt workbook for a record
//
// A step's expect clause validates the real outcome: error names the
// register error code the step must be refused with, created/wasNew pin
// the create and sign verdicts. A step without an expect clause must
// simply succeed.
//
// # Assertion Types
//
// The following assertion types are supported:
//
//   - record_count: Verifies the register holds exactly N records
//   - signature_count: Verifies a record holds exactly N signatures
//   - record_order: Verifies the listing order of record ids
//   - signature_order: Verifies a record's display order of staff numbers
//   - record_persisted: Verifies a record is present in the saved blob,
//     read back from the database rather than session memory
//
// # Deterministic Testing
//
// Every scenario executes with a deterministic clock and op token
// sequence to ensure reproducible traces and golden file comparison.
//
// The harness uses:
//   - A fixed clock epoch (2024-03-01T09:00:00Z, advancing one minute
//     per reading)
//   - Counted op tokens ("op-001", "op-002", ...)
//   - An in-memory SQLite database, isolated per scenario
//
// This ensures identical traces across runs for golden file comparison.
//
// # Usage
//
// Load and run a scenario:
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/first_signature.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(scenario)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if !result.Pass {
//	    for _, msg := range result.Errors {
//	        log.Println(msg)
//	    }
//	}
package harness
