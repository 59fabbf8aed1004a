package roster

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/signoff/internal/record"
)

//go:embed schema.cue
var schemaCUE string

// Error code constants for roster loading.
const (
	ErrCodeRead   = "E001" // roster file unreadable
	ErrCodeSyntax = "E002" // CUE parse/compile failure
	ErrCodeSchema = "E003" // schema constraint violation
	ErrCodeDecode = "E004" // decode to Go types failed

	// Semantic validation errors (shape is fine, content is not)
	ErrCodeEmpty     = "E101" // no drivers defined
	ErrCodeBlank     = "E102" // blank staff number or name
	ErrCodeDuplicate = "E103" // duplicate staff number
)

// LoadError represents a roster loading or validation failure.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// fileDoc mirrors the roster file shape for decoding.
type fileDoc struct {
	Drivers []driverEntry `json:"drivers"`
}

type driverEntry struct {
	StaffNumber string `json:"staff_number"`
	Name        string `json:"name"`
}

// Load reads, validates, and decodes a roster file.
//
// Validation happens in two passes: the CUE schema rejects malformed shapes
// (wrong types, whitespace in staff numbers, empty names), then Go-side
// checks reject semantic problems (empty roster, duplicate staff numbers)
// with per-entry error messages.
func Load(path string) (*Roster, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeRead, Message: fmt.Sprintf("reading roster: %v", err)}
	}
	return Parse(path, data)
}

// Parse validates and decodes roster file contents. The path is used only
// for error positions.
func Parse(path string, data []byte) (*Roster, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		// The schema is embedded at build time; failing to compile it is a
		// programming error, not a user error.
		return nil, fmt.Errorf("compile embedded roster schema: %w", err)
	}

	val := ctx.CompileBytes(data, cue.Filename(path))
	if err := val.Err(); err != nil {
		return nil, formatCUEError(ErrCodeSyntax, err)
	}

	merged := schema.Unify(val)
	if err := merged.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(ErrCodeSchema, err)
	}

	var doc fileDoc
	if err := merged.Decode(&doc); err != nil {
		return nil, formatCUEError(ErrCodeDecode, err)
	}

	return build(doc.Drivers)
}

// build runs semantic validation and assembles the Roster.
func build(entries []driverEntry) (*Roster, error) {
	if len(entries) == 0 {
		return nil, &LoadError{Code: ErrCodeEmpty, Message: "roster defines no drivers"}
	}

	r := &Roster{
		drivers: make([]record.Driver, 0, len(entries)),
		byStaff: make(map[string]record.Driver, len(entries)),
	}

	for i, e := range entries {
		staff := strings.TrimSpace(e.StaffNumber)
		name := strings.TrimSpace(e.Name)
		if staff == "" || name == "" {
			return nil, &LoadError{
				Code:    ErrCodeBlank,
				Message: fmt.Sprintf("drivers[%d]: staff_number and name must be non-blank", i),
			}
		}
		if _, dup := r.byStaff[staff]; dup {
			return nil, &LoadError{
				Code:    ErrCodeDuplicate,
				Message: fmt.Sprintf("drivers[%d]: duplicate staff number %q", i, staff),
			}
		}
		d := record.Driver{StaffNumber: staff, Name: name}
		r.drivers = append(r.drivers, d)
		r.byStaff[staff] = d
	}

	return r, nil
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(code string, err error) error {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return &LoadError{Code: code, Message: err.Error()}
	}

	// Report the first error; CUE errors often cascade and the first is
	// the actionable one.
	firstErr := errs[0]
	le := &LoadError{Code: code, Message: firstErr.Error()}
	if positions := cueerrors.Positions(firstErr); len(positions) > 0 {
		le.Pos = positions[0]
	}
	return le
}
