package register

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/roach88/signoff/internal/record"
)

// receivedTimeLayout is the human-readable form of a signature timestamp
// printed on receipts.
const receivedTimeLayout = "02 Jan 2006 15:04"

// Sheet is the fully-resolved receipt content handed to the export
// collaborator: header metadata plus one row per signature, already in
// display order with display-ready times. The collaborator only lays it
// out; it never re-sorts or re-formats.
type Sheet struct {
	Title    string
	Document string
	Date     string
	Rows     []Row
}

// Row is one signature line on the receipt.
type Row struct {
	Name        string
	StaffNumber string
	Received    string
}

// Receipt describes a completed export.
type Receipt struct {
	Filename string
	Rows     int
	Pages    int
	Token    string
}

// Exporter is the external document-generation collaborator. Implemented
// by export.XLSX; nil means export is unavailable for the session.
//
// Exporter is never invoked for a sheet with zero rows - the register
// refuses empty records upstream.
type Exporter interface {
	// Filename derives the receipt's download name for a record's
	// date and document name.
	Filename(date, name string) string

	// Render lays the sheet out as a paginated document, returning the
	// document bytes and the page count.
	Render(sheet Sheet) (data []byte, pages int, err error)
}

// Export renders the record's receipt to w and reports what was written.
//
// An empty id means the active record (no active record is an error).
// Exporting an unknown id is a not-found error; a record with zero
// signatures is an empty-record error and the collaborator is never
// invoked; a nil collaborator is an export-unavailable error. None of
// these touch any state.
func (r *Register) Export(id string, w io.Writer) (Receipt, error) {
	token := r.tokens.Generate()

	if id == "" {
		if r.activeID == "" {
			return Receipt{}, NewNoActiveRecordError()
		}
		id = r.activeID
	}
	rec, ok := r.records[id]
	if !ok {
		return Receipt{}, NewNotFoundError(id)
	}
	if len(rec.Signatures) == 0 {
		return Receipt{}, NewEmptyRecordError(id)
	}
	if r.exporter == nil {
		return Receipt{}, NewExportUnavailableError()
	}

	sheet := r.buildSheet(rec)
	data, pages, err := r.exporter.Render(sheet)
	if err != nil {
		return Receipt{}, fmt.Errorf("render receipt for %s: %w", id, err)
	}
	if _, err := w.Write(data); err != nil {
		return Receipt{}, fmt.Errorf("write receipt for %s: %w", id, err)
	}

	receipt := Receipt{
		Filename: r.exporter.Filename(rec.Date, rec.Name),
		Rows:     len(sheet.Rows),
		Pages:    pages,
		Token:    token,
	}
	slog.Info("record exported",
		"op", token,
		"record", id,
		"file", receipt.Filename,
		"rows", receipt.Rows,
		"pages", receipt.Pages)
	return receipt, nil
}

// buildSheet projects the record into receipt content. Row order comes
// from the same collation as the on-screen signature listing, so the
// printed sheet always matches the display.
func (r *Register) buildSheet(rec record.Record) Sheet {
	sigs := r.views.Signatures(rec)
	rows := make([]Row, 0, len(sigs))
	for _, sig := range sigs {
		rows = append(rows, Row{
			Name:        sig.Name,
			StaffNumber: sig.StaffNumber,
			Received:    receivedTime(sig.Timestamp),
		})
	}
	return Sheet{
		Title:    r.title,
		Document: rec.Name,
		Date:     rec.Date,
		Rows:     rows,
	}
}

// receivedTime renders an RFC 3339 timestamp for humans. A stamp that
// does not parse is printed raw rather than dropped.
func receivedTime(timestamp string) string {
	t, err := time.Parse(time.RFC3339, timestamp)
	if err != nil {
		return timestamp
	}
	return t.Format(receivedTimeLayout)
}
