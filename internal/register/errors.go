package register

import (
	"errors"
	"fmt"
)

// Error represents a user-facing failure of a register operation.
//
// Register errors include:
//   - Validation: record creation with a missing or malformed field
//   - Record not found: selecting or exporting an id absent from the store
//   - Driver not found: signing with a staff number outside the roster
//   - No active record: signing or exporting before any record is loaded
//   - Empty record: exporting a record nobody has signed
//   - Export unavailable: no export collaborator is configured
//
// All of them are recoverable and surfaced inline to the user; none are
// fatal to the process. Error includes structured fields so callers can
// report which record or staff number was involved.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// RecordID identifies the affected record (for not-found/empty errors).
	RecordID string

	// StaffNumber identifies the signer (for driver-not-found errors).
	StaffNumber string
}

// ErrorCode categorizes register errors.
type ErrorCode string

const (
	// ErrCodeValidation indicates rejected record-creation input.
	ErrCodeValidation ErrorCode = "VALIDATION"

	// ErrCodeRecordNotFound indicates the record id is absent from the store.
	ErrCodeRecordNotFound ErrorCode = "RECORD_NOT_FOUND"

	// ErrCodeDriverNotFound indicates the staff number is not in the roster.
	ErrCodeDriverNotFound ErrorCode = "DRIVER_NOT_FOUND"

	// ErrCodeNoActiveRecord indicates no record is loaded for the session.
	ErrCodeNoActiveRecord ErrorCode = "NO_ACTIVE_RECORD"

	// ErrCodeEmptyRecord indicates the record has zero signatures.
	ErrCodeEmptyRecord ErrorCode = "EMPTY_RECORD"

	// ErrCodeExportUnavailable indicates no export collaborator is configured.
	ErrCodeExportUnavailable ErrorCode = "EXPORT_UNAVAILABLE"
)

// Error implements the error interface.
func (e *Error) Error() string {
	if e.RecordID != "" {
		return fmt.Sprintf("%s: %s (record=%s)", e.Code, e.Message, e.RecordID)
	}
	if e.StaffNumber != "" {
		return fmt.Sprintf("%s: %s (staff=%s)", e.Code, e.Message, e.StaffNumber)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsValidation returns true if the error is a validation error.
// Uses errors.As to handle wrapped errors.
func IsValidation(err error) bool {
	return hasCode(err, ErrCodeValidation)
}

// IsNotFound returns true if the error is a record-not-found error.
func IsNotFound(err error) bool {
	return hasCode(err, ErrCodeRecordNotFound)
}

// IsDriverNotFound returns true if the error is a driver-not-found error.
func IsDriverNotFound(err error) bool {
	return hasCode(err, ErrCodeDriverNotFound)
}

// IsNoActiveRecord returns true if the error is a no-active-record error.
func IsNoActiveRecord(err error) bool {
	return hasCode(err, ErrCodeNoActiveRecord)
}

// IsEmptyRecord returns true if the error is an empty-record error.
func IsEmptyRecord(err error) bool {
	return hasCode(err, ErrCodeEmptyRecord)
}

// IsExportUnavailable returns true if the error is an export-unavailable error.
func IsExportUnavailable(err error) bool {
	return hasCode(err, ErrCodeExportUnavailable)
}

func hasCode(err error, code ErrorCode) bool {
	var re *Error
	if errors.As(err, &re) {
		return re.Code == code
	}
	return false
}

// NewValidationError creates an Error for rejected creation input.
func NewValidationError(message string) *Error {
	return &Error{
		Code:    ErrCodeValidation,
		Message: message,
	}
}

// NewNotFoundError creates an Error for an unknown record id.
func NewNotFoundError(recordID string) *Error {
	return &Error{
		Code:     ErrCodeRecordNotFound,
		Message:  "no record with this id",
		RecordID: recordID,
	}
}

// NewDriverNotFoundError creates an Error for an unregistered staff number.
func NewDriverNotFoundError(staffNumber string) *Error {
	return &Error{
		Code:        ErrCodeDriverNotFound,
		Message:     "staff number is not in the driver directory",
		StaffNumber: staffNumber,
	}
}

// NewNoActiveRecordError creates an Error for operations that need a
// loaded record when none is active.
func NewNoActiveRecordError() *Error {
	return &Error{
		Code:    ErrCodeNoActiveRecord,
		Message: "no record is loaded; create or select one first",
	}
}

// NewEmptyRecordError creates an Error for exporting an unsigned record.
func NewEmptyRecordError(recordID string) *Error {
	return &Error{
		Code:     ErrCodeEmptyRecord,
		Message:  "record has no signatures to export",
		RecordID: recordID,
	}
}

// NewExportUnavailableError creates an Error for a missing export collaborator.
func NewExportUnavailableError() *Error {
	return &Error{
		Code:    ErrCodeExportUnavailable,
		Message: "export is not available in this session",
	}
}
