package export

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/roach88/signoff/internal/register"
)

var _ register.Exporter = (*XLSX)(nil)

func sampleSheet(rows int) register.Sheet {
	sheet := register.Sheet{
		Title:    "Safety / PPE Document Receipt",
		Document: "Forklift Safety",
		Date:     "2024-03-01",
	}
	for i := 0; i < rows; i++ {
		sheet.Rows = append(sheet.Rows, register.Row{
			Name:        fmt.Sprintf("Driver %03d", i),
			StaffNumber: fmt.Sprintf("D-%03d", i),
			Received:    "01 Mar 2024 09:00",
		})
	}
	return sheet
}

// readBack opens the rendered workbook and returns the Receipt sheet's
// rows as excelize reads them.
func readBack(t *testing.T, data []byte) [][]string {
	t.Helper()

	file, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer func() { _ = file.Close() }()

	rows, err := file.GetRows(SheetName)
	require.NoError(t, err)
	return rows
}

// gridText flattens an extracted worksheet into one line per row with
// cells joined by " | ". Workbook bytes are not stable across renders
// (zip metadata), but the cell grid is, so goldens pin the grid.
func gridText(rows [][]string) []byte {
	var b strings.Builder
	for _, row := range rows {
		b.WriteString(strings.Join(row, " | "))
		b.WriteByte('\n')
	}
	return []byte(b.String())
}

func TestRender_HeaderBlock(t *testing.T) {
	data, pages, err := New().Render(sampleSheet(2))
	require.NoError(t, err)
	assert.Equal(t, 1, pages)

	rows := readBack(t, data)
	require.GreaterOrEqual(t, len(rows), firstDataRow+1)

	assert.Equal(t, "Safety / PPE Document Receipt", rows[titleRow-1][0])
	assert.Equal(t, "Forklift Safety", rows[documentRow-1][0])
	assert.Equal(t, "2024-03-01", rows[dateRow-1][0])
	assert.Equal(t, []string{"Name", "Staff Number", "Received"}, rows[columnsRow-1])
}

func TestRender_SignatureRowsInGivenOrder(t *testing.T) {
	sheet := register.Sheet{
		Title:    "Safety / PPE Document Receipt",
		Document: "Forklift Safety",
		Date:     "2024-03-01",
		Rows: []register.Row{
			{Name: "Alice Crane", StaffNumber: "D-100", Received: "01 Mar 2024 09:02"},
			{Name: "bob stone", StaffNumber: "D-200", Received: "01 Mar 2024 09:01"},
		},
	}

	data, _, err := New().Render(sheet)
	require.NoError(t, err)

	rows := readBack(t, data)
	require.GreaterOrEqual(t, len(rows), firstDataRow+1)
	assert.Equal(t, []string{"Alice Crane", "D-100", "01 Mar 2024 09:02"}, rows[firstDataRow-1])
	assert.Equal(t, []string{"bob stone", "D-200", "01 Mar 2024 09:01"}, rows[firstDataRow])
}

func TestRender_GoldenGrid(t *testing.T) {
	sheet := register.Sheet{
		Title:    "Safety / PPE Document Receipt",
		Document: "Harness & Gloves (PPE)",
		Date:     "2024-03-01",
		Rows: []register.Row{
			{Name: "Alice Crane", StaffNumber: "D-100", Received: "01 Mar 2024 09:02"},
			{Name: "Bob Stone", StaffNumber: "D-200", Received: "01 Mar 2024 09:03"},
			{Name: "Dana Frost", StaffNumber: "D-400", Received: "01 Mar 2024 09:05"},
		},
	}

	data, pages, err := New().Render(sheet)
	require.NoError(t, err)
	require.Equal(t, 1, pages)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "receipt_grid", gridText(readBack(t, data)))
}

func TestRender_SingleWorksheet(t *testing.T) {
	data, _, err := New().Render(sampleSheet(1))
	require.NoError(t, err)

	file, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer func() { _ = file.Close() }()

	assert.Equal(t, []string{SheetName}, file.GetSheetList())
}

func TestRender_Pagination(t *testing.T) {
	// The first page holds the header block plus data; later pages hold
	// a full rowsPerPage of data each.
	firstPageData := rowsPerPage - headerRows

	cases := []struct {
		rows  int
		pages int
	}{
		{1, 1},
		{firstPageData, 1},
		{firstPageData + 1, 2},
		{firstPageData + rowsPerPage, 2},
		{firstPageData + rowsPerPage + 1, 3},
	}
	for _, tc := range cases {
		_, pages, err := New().Render(sampleSheet(tc.rows))
		require.NoError(t, err, "rows=%d", tc.rows)
		assert.Equal(t, tc.pages, pages, "rows=%d", tc.rows)
	}
}

func TestRender_AllRowsSurvivePagination(t *testing.T) {
	const n = 100
	data, pages, err := New().Render(sampleSheet(n))
	require.NoError(t, err)
	assert.Equal(t, 3, pages)

	rows := readBack(t, data)
	require.Len(t, rows, firstDataRow-1+n)
	assert.Equal(t, "Driver 000", rows[firstDataRow-1][0])
	assert.Equal(t, "Driver 099", rows[firstDataRow-2+n][0])
}

func TestRender_RefusesEmptySheet(t *testing.T) {
	_, _, err := New().Render(register.Sheet{Title: "T", Document: "D", Date: "2024-03-01"})
	assert.Error(t, err)
}

func TestFilename(t *testing.T) {
	cases := []struct {
		date, name string
		want       string
	}{
		{"2024-03-01", "Forklift Safety", "safety-2024-03-01-Forklift-Safety.xlsx"},
		{"2024-03-01", "High-Vis Policy", "safety-2024-03-01-High-Vis-Policy.xlsx"},
		{"2024-03-01", "Hand & Eye (PPE)!", "safety-2024-03-01-Hand-Eye-PPE-.xlsx"},
		{"2024-03-01", "under_score", "safety-2024-03-01-under_score.xlsx"},
		{"2024-12-31", "a  b", "safety-2024-12-31-a-b.xlsx"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Filename(tc.date, tc.name), "name %q", tc.name)
	}
}

func TestFilename_MethodMatchesPackageFunction(t *testing.T) {
	x := New()
	assert.Equal(t, Filename("2024-03-01", "Gloves"), x.Filename("2024-03-01", "Gloves"))
}
