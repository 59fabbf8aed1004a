package store

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/roach88/signoff/internal/record"
)

// Namespace is the fixed key under which the full record mapping is
// persisted. The version suffix belongs to the key, not the payload: the
// blob itself carries no version field, and an unrecognized payload is
// treated as absent data rather than migrated.
const Namespace = "signoff.records.v1"

// LoadRecords reads the full record mapping from the blob store.
//
// A missing blob and a malformed blob both resolve to an empty mapping:
// the caller always gets a usable map and never an error. Corruption is
// logged and the data is effectively discarded on the next save.
func (s *Store) LoadRecords(ctx context.Context) map[string]record.Record {
	body, ok, err := s.GetBlob(ctx, Namespace)
	if err != nil {
		slog.Warn("record blob unreadable, starting empty", "ns", Namespace, "error", err)
		return map[string]record.Record{}
	}
	if !ok {
		return map[string]record.Record{}
	}

	var records map[string]record.Record
	if err := json.Unmarshal(body, &records); err != nil {
		slog.Warn("record blob malformed, starting empty", "ns", Namespace, "error", err)
		return map[string]record.Record{}
	}
	if records == nil {
		// The blob held JSON null.
		records = map[string]record.Record{}
	}
	return records
}

// SaveRecords writes the full record mapping as one blob under Namespace.
//
// Persistence is best-effort: failures are swallowed (warn log) and the
// in-memory state stays authoritative for the session. The returned status
// reports whether the write landed so a stricter caller could surface it;
// the CLI deliberately does not.
func (s *Store) SaveRecords(ctx context.Context, records map[string]record.Record) bool {
	body, err := json.Marshal(records)
	if err != nil {
		slog.Warn("record blob marshal failed, keeping state in memory", "ns", Namespace, "error", err)
		return false
	}
	if err := s.PutBlob(ctx, Namespace, body); err != nil {
		slog.Warn("record blob write failed, keeping state in memory", "ns", Namespace, "error", err)
		return false
	}
	return true
}
