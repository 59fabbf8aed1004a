// Package export renders sign-off receipts as paginated XLSX workbooks.
// It is the document-generation collaborator behind register.Exporter:
// the register hands it fully-resolved sheet content and this package
// only lays it out.
package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/roach88/signoff/internal/register"
)

// SheetName is the single worksheet every receipt workbook carries.
const SheetName = "Receipt"

// Worksheet geometry. The header block occupies the first rows of page
// one; a page holds rowsPerPage printed rows before a break is inserted
// and the position resets.
const (
	titleRow     = 1
	documentRow  = 2
	dateRow      = 3
	columnsRow   = 5
	firstDataRow = 6

	headerRows  = columnsRow // rows consumed before data on page one
	rowsPerPage = 40
)

// XLSX renders register sheets as Excel workbooks. Stateless; one value
// can serve a whole session.
type XLSX struct{}

// New creates the XLSX exporter.
func New() *XLSX {
	return &XLSX{}
}

// Render lays the sheet out as a paginated workbook: a fixed header
// block (title, document name, date), a bold column-header row, then one
// row per signature. A page break is inserted whenever the printed row
// count passes the page height, and the count resets for the next page.
//
// Returns the workbook bytes and the page count. Rows are written in the
// order given; Render never re-sorts.
func (x *XLSX) Render(sheet register.Sheet) ([]byte, int, error) {
	if len(sheet.Rows) == 0 {
		return nil, 0, fmt.Errorf("receipt sheet has no rows")
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return nil, 0, fmt.Errorf("name worksheet: %w", err)
	}
	if err := x.writeHeader(f, sheet); err != nil {
		return nil, 0, err
	}

	pages, err := x.writeRows(f, sheet.Rows)
	if err != nil {
		return nil, 0, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("serialize workbook: %w", err)
	}
	return buf.Bytes(), pages, nil
}

func (x *XLSX) writeHeader(f *excelize.File, sheet register.Sheet) error {
	widths := []struct {
		col   string
		width float64
	}{
		{"A", 32}, // Name
		{"B", 16}, // Staff Number
		{"C", 22}, // Received
	}
	for _, w := range widths {
		if err := f.SetColWidth(SheetName, w.col, w.col, w.width); err != nil {
			return fmt.Errorf("set width of column %s: %w", w.col, err)
		}
	}

	titleStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}})
	if err != nil {
		return fmt.Errorf("create title style: %w", err)
	}
	boldStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	if err := f.MergeCell(SheetName, cell(1, titleRow), cell(3, titleRow)); err != nil {
		return fmt.Errorf("merge title row: %w", err)
	}

	header := []struct {
		cell  string
		value string
		style int
	}{
		{cell(1, titleRow), sheet.Title, titleStyle},
		{cell(1, documentRow), sheet.Document, 0},
		{cell(1, dateRow), sheet.Date, 0},
		{cell(1, columnsRow), "Name", boldStyle},
		{cell(2, columnsRow), "Staff Number", boldStyle},
		{cell(3, columnsRow), "Received", boldStyle},
	}
	for _, h := range header {
		if err := f.SetCellValue(SheetName, h.cell, h.value); err != nil {
			return fmt.Errorf("write header cell %s: %w", h.cell, err)
		}
		if h.style != 0 {
			if err := f.SetCellStyle(SheetName, h.cell, h.cell, h.style); err != nil {
				return fmt.Errorf("style header cell %s: %w", h.cell, err)
			}
		}
	}
	return nil
}

func (x *XLSX) writeRows(f *excelize.File, rows []register.Row) (int, error) {
	pages := 1
	onPage := headerRows
	at := firstDataRow

	for _, r := range rows {
		if onPage >= rowsPerPage {
			if err := f.InsertPageBreak(SheetName, cell(1, at)); err != nil {
				return 0, fmt.Errorf("insert page break at row %d: %w", at, err)
			}
			pages++
			onPage = 0
		}

		values := []string{r.Name, r.StaffNumber, r.Received}
		for col, v := range values {
			if err := f.SetCellValue(SheetName, cell(col+1, at), v); err != nil {
				return 0, fmt.Errorf("write row %d: %w", at, err)
			}
		}
		at++
		onPage++
	}
	return pages, nil
}

// cell resolves (column, row) coordinates to an A1-style reference.
// Coordinates here are always in range, so failure is a programming
// error.
func cell(col, row int) string {
	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		panic(fmt.Sprintf("cell coordinates (%d,%d): %v", col, row, err))
	}
	return name
}
