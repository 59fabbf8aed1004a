package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario defines a conformance test scenario.
// Scenarios validate register behavior by executing a sequence of steps
// and asserting on the resulting trace and final state.
type Scenario struct {
	// Name uniquely identifies this scenario. It doubles as the golden
	// file name, so keep it filesystem-friendly.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Roster is the driver directory as inline CUE source. Every
	// scenario carries its own roster so the file is self-contained.
	Roster string `yaml:"roster"`

	// Steps contains the operations to execute, in order. Each step can
	// pin the expected outcome.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final register and store state.
	// Supported types: record_count, signature_count, record_order,
	// signature_order, record_persisted.
	Assertions []Assertion `yaml:"assertions"`
}

// Step represents a single register operation.
type Step struct {
	// Op is the operation to perform: create, select, sign, list,
	// or export.
	Op string `yaml:"op"`

	// Name is the document name (create only).
	Name string `yaml:"name,omitempty"`

	// Date is the sheet date in YYYY-MM-DD form (create only).
	Date string `yaml:"date,omitempty"`

	// Record is a record id (select, export). Export treats an empty
	// id as the active record.
	Record string `yaml:"record,omitempty"`

	// Staff is the staff number to sign with (sign only).
	Staff string `yaml:"staff,omitempty"`

	// Expect specifies the expected outcome. If nil, the step is
	// required to succeed.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// ExpectClause specifies the expected outcome of a step.
type ExpectClause struct {
	// Error is the register error code the step must be refused with
	// (e.g. "DRIVER_NOT_FOUND"). When set, the other fields are
	// ignored.
	Error string `yaml:"error,omitempty"`

	// Created pins whether a create step made a new record (true) or
	// loaded an existing one (false).
	Created *bool `yaml:"created,omitempty"`

	// WasNew pins whether a sign step added a signature (true) or
	// refreshed an existing one (false).
	WasNew *bool `yaml:"wasNew,omitempty"`
}

// Step operation constants.
const (
	OpCreate = "create"
	OpSelect = "select"
	OpSign   = "sign"
	OpList   = "list"
	OpExport = "export"
)

// Assertion validates final register or store state.
type Assertion struct {
	// Type specifies the assertion type:
	// - "record_count": Check the register holds exactly Count records
	// - "signature_count": Check Record holds exactly Count signatures
	// - "record_order": Check the listing order matches Records
	// - "signature_order": Check Record's display order matches Staff
	// - "record_persisted": Check Record is in the saved blob
	Type string `yaml:"type"`

	// Count is the expected number of records or signatures
	// (record_count, signature_count).
	Count int `yaml:"count,omitempty"`

	// Record is the record id under test (signature_count,
	// signature_order, record_persisted).
	Record string `yaml:"record,omitempty"`

	// Records is the expected listing order of record ids
	// (record_order).
	Records []string `yaml:"records,omitempty"`

	// Staff is the expected display order of staff numbers
	// (signature_order).
	Staff []string `yaml:"staff,omitempty"`
}

// Assertion type constants.
const (
	AssertRecordCount     = "record_count"
	AssertSignatureCount  = "signature_count"
	AssertRecordOrder     = "record_order"
	AssertSignatureOrder  = "signature_order"
	AssertRecordPersisted = "record_persisted"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML from memory. Inline scenarios in
// tests go through here; LoadScenario is the file-backed wrapper.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "assertion:" vs "assertions:".
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Roster == "" {
		return fmt.Errorf("roster is required")
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if err := validateStep(i, &step); err != nil {
			return err
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateStep validates a single step based on its operation.
func validateStep(index int, step *Step) error {
	if step.Op == "" {
		return fmt.Errorf("steps[%d]: op is required", index)
	}

	switch step.Op {
	case OpCreate:
		if step.Name == "" && expectsSuccess(step.Expect) {
			return fmt.Errorf("steps[%d]: name is required for create", index)
		}
	case OpSelect:
		if step.Record == "" {
			return fmt.Errorf("steps[%d]: record is required for select", index)
		}
	case OpSign:
		if step.Staff == "" {
			return fmt.Errorf("steps[%d]: staff is required for sign", index)
		}
	case OpList, OpExport:
		// list takes no fields; export's record is optional (empty
		// means the active record).
	default:
		return fmt.Errorf("steps[%d]: unknown op %q", index, step.Op)
	}

	if step.Expect != nil {
		if step.Expect.Created != nil && step.Op != OpCreate {
			return fmt.Errorf("steps[%d].expect: created is only valid for create", index)
		}
		if step.Expect.WasNew != nil && step.Op != OpSign {
			return fmt.Errorf("steps[%d].expect: wasNew is only valid for sign", index)
		}
	}

	return nil
}

// expectsSuccess reports whether a step's expect clause demands success.
// Steps expecting a refusal may deliberately omit otherwise-required
// fields (e.g. create with a blank name expecting VALIDATION).
func expectsSuccess(expect *ExpectClause) bool {
	return expect == nil || expect.Error == ""
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertRecordCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for record_count", index)
		}
	case AssertSignatureCount:
		if a.Record == "" {
			return fmt.Errorf("assertions[%d]: record is required for signature_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for signature_count", index)
		}
	case AssertRecordOrder:
		if len(a.Records) == 0 {
			return fmt.Errorf("assertions[%d]: records list is required for record_order", index)
		}
	case AssertSignatureOrder:
		if a.Record == "" {
			return fmt.Errorf("assertions[%d]: record is required for signature_order", index)
		}
		if len(a.Staff) == 0 {
			return fmt.Errorf("assertions[%d]: staff list is required for signature_order", index)
		}
	case AssertRecordPersisted:
		if a.Record == "" {
			return fmt.Errorf("assertions[%d]: record is required for record_persisted", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
