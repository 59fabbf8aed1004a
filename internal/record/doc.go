// Package record provides the core data model for signoff sheets.
//
// This package contains type definitions and identity rules only. All other
// internal packages import record; record imports nothing internal. This
// keeps the data model the foundational layer with no circular dependencies.
//
// Key design constraints:
//   - JSON tags use camelCase (staffNumber, createdAt) because they define
//     the persisted blob schema, which carries no version field and must
//     stay byte-compatible across releases
//   - Timestamps are ISO-8601 strings (RFC 3339), dates are YYYY-MM-DD
//   - Record identity is date + "|" + name with no normalization: case and
//     interior whitespace are significant
package record
