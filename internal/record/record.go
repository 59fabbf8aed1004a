package record

import "time"

// DateFormat is the layout for Record.Date values (YYYY-MM-DD).
const DateFormat = "2006-01-02"

// Driver is one eligible signer from the driver directory.
type Driver struct {
	StaffNumber string `json:"staffNumber"`
	Name        string `json:"name"`
}

// Signature is one driver's acknowledgment entry within a record.
// A record holds at most one signature per staff number; that invariant is
// enforced by the ledger operation, not by the storage shape.
type Signature struct {
	StaffNumber string `json:"staffNumber"`
	Name        string `json:"name"`
	Timestamp   string `json:"timestamp"` // ISO-8601, overwritten on re-sign
}

// Record is one sign-off sheet for a document/PPE item on a given date.
type Record struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"` // document/PPE label, free text
	Date       string      `json:"date"` // YYYY-MM-DD
	CreatedAt  string      `json:"createdAt"`
	Signatures []Signature `json:"signatures"`
}

// ID derives the deterministic record identity from date and document name.
// Two records with the same (date, name) pair are the same record. The name
// is used exactly as given: callers trim surrounding whitespace, but case
// and interior whitespace are significant, so "Hi-Vis Vest" and
// "hi-vis  vest" produce distinct records.
func ID(date, name string) string {
	return date + "|" + name
}

// Find returns the index of the signature for staffNumber, or -1 when the
// record has none. Linear scan: directories run tens to low hundreds of
// entries.
func (r *Record) Find(staffNumber string) int {
	for i := range r.Signatures {
		if r.Signatures[i].StaffNumber == staffNumber {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy of the record. A plain value copy would share
// the Signatures backing array with the store-owned record, so every
// projection handed to callers goes through Clone.
func (r *Record) Clone() Record {
	out := *r
	if r.Signatures != nil {
		out.Signatures = make([]Signature, len(r.Signatures))
		copy(out.Signatures, r.Signatures)
	}
	return out
}

// Timestamp formats t as the ISO-8601 string stored on records and
// signatures.
func Timestamp(t time.Time) string {
	return t.Format(time.RFC3339)
}

// Date formats t as the YYYY-MM-DD string stored on records. The caller's
// local zone decides which day it is.
func Date(t time.Time) string {
	return t.Format(DateFormat)
}

// ValidDate reports whether s is a canonical YYYY-MM-DD date. Round-trips
// through time.Parse so "2024-1-2" and impossible dates are both rejected.
func ValidDate(s string) bool {
	t, err := time.Parse(DateFormat, s)
	return err == nil && t.Format(DateFormat) == s
}
