// Package register implements the sign-off session: record identity and
// lifecycle, the signature ledger, and the export orchestration built on
// top of the record store, driver roster, and display views.
package register

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/roach88/signoff/internal/record"
	"github.com/roach88/signoff/internal/roster"
	"github.com/roach88/signoff/internal/store"
	"github.com/roach88/signoff/internal/view"
)

// TokenGenerator generates unique operation tokens for log correlation.
// Implemented by UUIDv7Generator (production) and testutil.Tokens (tests).
// See token.go for the production implementation.
type TokenGenerator interface {
	Generate() string
}

// DefaultTitle heads every exported receipt unless configured otherwise.
const DefaultTitle = "Safety / PPE Document Receipt"

// Register is the single-session sign-off controller.
//
// It owns the authoritative record mapping loaded from the store and the
// transient active-record pointer, and exposes the full user-facing
// surface: create-or-load, select, mark-received, list, export.
//
// CRITICAL: All operations are synchronous and single-threaded - each
// runs to completion before the next begins, so the mapping needs no
// locking. Register is NOT safe for concurrent use.
//
// Persistence policy: every mutation rewrites the full mapping through
// the store; write failures are swallowed there and the in-memory state
// stays authoritative for the session (availability over durability).
//
// INVARIANTS:
//   - record ids are date + "|" + name, computed exactly once at creation
//   - a record holds at most one signature per staff number
//   - createdAt never changes after creation; records are never deleted
//   - the active id always names a record in the mapping (or is empty)
type Register struct {
	store    *store.Store
	roster   *roster.Roster
	views    *view.Collation
	clock    Clock
	tokens   TokenGenerator
	exporter Exporter
	title    string

	records  map[string]record.Record
	activeID string
}

// Option allows configuration of register parameters.
type Option func(*Register)

// WithClock substitutes the wall clock. Tests pass a deterministic clock
// so timestamps are stable.
func WithClock(c Clock) Option {
	return func(r *Register) {
		r.clock = c
	}
}

// WithTokens substitutes the operation token generator.
func WithTokens(g TokenGenerator) Option {
	return func(r *Register) {
		r.tokens = g
	}
}

// WithExporter wires the export collaborator. Without one, Export
// reports ExportUnavailable.
func WithExporter(e Exporter) Option {
	return func(r *Register) {
		r.exporter = e
	}
}

// WithCollation substitutes the display collation (locale-specific
// name ordering).
func WithCollation(c *view.Collation) Option {
	return func(r *Register) {
		r.views = c
	}
}

// WithTitle sets the receipt title printed in the export header.
func WithTitle(title string) Option {
	return func(r *Register) {
		r.title = title
	}
}

// New creates a Register over the given store and roster and loads the
// record mapping. Loading never fails: missing or corrupt persisted data
// resolves to an empty mapping at the store boundary.
//
// Options configure the clock, token generator, exporter, collation, and
// receipt title; the defaults are production settings (system clock,
// UUIDv7 tokens, English collation, no exporter).
func New(ctx context.Context, s *store.Store, ros *roster.Roster, opts ...Option) *Register {
	r := &Register{
		store:  s,
		roster: ros,
		views:  view.NewCollation(""),
		clock:  SystemClock{},
		tokens: UUIDv7Generator{},
		title:  DefaultTitle,
	}

	for _, opt := range opts {
		opt(r)
	}

	r.records = s.LoadRecords(ctx)
	return r
}

// CreateOrLoad resolves the record for (name, date), creating it on first
// use. The returned bool is true when a new record was created.
//
// The name is trimmed of surrounding whitespace; an empty result is a
// validation error and nothing is touched. Case and interior whitespace
// are preserved - they are part of the identity. An empty date means the
// clock's current local day; a supplied date must be a calendar date in
// YYYY-MM-DD form.
//
// Loading an existing record performs zero writes. Creation performs
// exactly one persistence write. Either way the record becomes active.
func (r *Register) CreateOrLoad(ctx context.Context, name, date string) (*record.Record, bool, error) {
	token := r.tokens.Generate()

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, false, NewValidationError("document name is required")
	}

	// One clock reading serves both the defaulted date and createdAt.
	now := r.clock.Now()
	switch {
	case date == "":
		date = record.Date(now)
	case !record.ValidDate(date):
		return nil, false, NewValidationError(fmt.Sprintf("date %q is not a YYYY-MM-DD calendar date", date))
	}

	id := record.ID(date, name)
	if existing, ok := r.records[id]; ok {
		r.activeID = id
		clone := existing.Clone()
		slog.Info("record loaded", "op", token, "record", id, "signatures", len(clone.Signatures))
		return &clone, false, nil
	}

	rec := record.Record{
		ID:         id,
		Name:       name,
		Date:       date,
		CreatedAt:  record.Timestamp(now),
		Signatures: []record.Signature{},
	}
	r.records[id] = rec
	r.activeID = id
	saved := r.store.SaveRecords(ctx, r.records)

	slog.Info("record created", "op", token, "record", id, "saved", saved)
	clone := rec.Clone()
	return &clone, true, nil
}

// Select makes an existing record the active one. Selecting an unknown
// id is a not-found error and the previously active record, if any,
// stays selected.
func (r *Register) Select(id string) (*record.Record, error) {
	token := r.tokens.Generate()

	rec, ok := r.records[id]
	if !ok {
		return nil, NewNotFoundError(id)
	}

	r.activeID = id
	slog.Info("record selected", "op", token, "record", id, "signatures", len(rec.Signatures))
	clone := rec.Clone()
	return &clone, nil
}

// MarkReceived records that the staff member has signed the active
// record. The returned bool is true for a first signature, false when
// the staff number had already signed and only the timestamp moved.
//
// The signer must exist in the roster; the stored name always comes from
// the roster entry, never from user input. Re-signing overwrites the
// timestamp ONLY - the signature is updated in place, never duplicated,
// and its position in the sequence is kept.
//
// Both outcomes persist the full mapping (one write).
func (r *Register) MarkReceived(ctx context.Context, staffNumber string) (record.Signature, bool, error) {
	token := r.tokens.Generate()

	if r.activeID == "" {
		return record.Signature{}, false, NewNoActiveRecordError()
	}
	rec, ok := r.records[r.activeID]
	if !ok {
		// Unreachable while records are never deleted; fail like an
		// unloaded session rather than panic.
		return record.Signature{}, false, NewNoActiveRecordError()
	}

	driver, ok := r.roster.Lookup(staffNumber)
	if !ok {
		return record.Signature{}, false, NewDriverNotFoundError(staffNumber)
	}

	now := record.Timestamp(r.clock.Now())
	idx := rec.Find(driver.StaffNumber)
	wasNew := idx < 0

	var sig record.Signature
	if wasNew {
		sig = record.Signature{
			StaffNumber: driver.StaffNumber,
			Name:        driver.Name,
			Timestamp:   now,
		}
		rec.Signatures = append(rec.Signatures, sig)
	} else {
		rec.Signatures[idx].Timestamp = now
		sig = rec.Signatures[idx]
	}

	r.records[r.activeID] = rec
	saved := r.store.SaveRecords(ctx, r.records)

	slog.Info("signature recorded",
		"op", token,
		"record", r.activeID,
		"staff", driver.StaffNumber,
		"was_new", wasNew,
		"saved", saved)
	return sig, wasNew, nil
}

// List returns every record in display order: date descending, ties by
// document name ascending. The result is a projection - deep copies,
// recomputed on every call.
func (r *Register) List() []record.Record {
	return r.views.Records(r.records)
}

// Active returns a copy of the active record, or false when no record
// has been created or selected this session. The active pointer is
// transient and never persisted.
func (r *Register) Active() (*record.Record, bool) {
	if r.activeID == "" {
		return nil, false
	}
	rec, ok := r.records[r.activeID]
	if !ok {
		return nil, false
	}
	clone := rec.Clone()
	return &clone, true
}

// Len reports how many records the mapping holds.
func (r *Register) Len() int {
	return len(r.records)
}
