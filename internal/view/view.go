// Package view computes display orderings over the record mapping.
//
// Views are pure projections: recomputed from the authoritative map on
// every call, never cached, never mutating their inputs. The same
// collation drives on-screen listing and receipt export so the printed
// sheet always matches what the screen showed.
package view

import (
	"log/slog"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/roach88/signoff/internal/record"
)

// Collation bundles the locale-aware comparators used by every ordered
// view. Comparison is case-insensitive in the configured locale.
type Collation struct {
	collator *collate.Collator
	tag      language.Tag
}

// NewCollation builds a Collation for the given BCP 47 locale tag.
// An empty tag means English; an unparseable tag falls back to English
// with a warning rather than failing the session.
func NewCollation(locale string) *Collation {
	tag := language.English
	if locale != "" {
		parsed, err := language.Parse(locale)
		if err != nil {
			slog.Warn("unrecognized locale, using English collation", "locale", locale, "error", err)
		} else {
			tag = parsed
		}
	}
	return &Collation{
		collator: collate.New(tag, collate.IgnoreCase),
		tag:      tag,
	}
}

// Tag reports the locale tag actually in effect.
func (c *Collation) Tag() language.Tag {
	return c.tag
}

// CompareNames compares two display names case-insensitively in the
// collation's locale. Listing and export both route name ordering
// through here.
func (c *Collation) CompareNames(a, b string) int {
	return c.collator.CompareString(a, b)
}

// Records returns every record ordered for display: date descending
// (newest day first), ties broken by document name ascending. The
// returned records are deep copies; mutating them never touches the
// authoritative mapping.
func (c *Collation) Records(records map[string]record.Record) []record.Record {
	out := make([]record.Record, 0, len(records))
	for _, rec := range records {
		out = append(out, rec.Clone())
	}
	slices.SortStableFunc(out, c.compareRecords)
	return out
}

func (c *Collation) compareRecords(a, b record.Record) int {
	// YYYY-MM-DD sorts chronologically as a plain string; reversed for
	// newest-first display.
	if a.Date != b.Date {
		return strings.Compare(b.Date, a.Date)
	}
	return c.CompareNames(a.Name, b.Name)
}

// Signatures returns the record's signatures ordered by signer name
// ascending. Staff number is never a sort key; signers with identical
// names keep their sign-in order.
func (c *Collation) Signatures(rec record.Record) []record.Signature {
	out := make([]record.Signature, len(rec.Signatures))
	copy(out, rec.Signatures)
	slices.SortStableFunc(out, c.compareSignatures)
	return out
}

func (c *Collation) compareSignatures(a, b record.Signature) int {
	return c.CompareNames(a.Name, b.Name)
}
