// Package upload turns an uploaded spreadsheet into raw rows for the
// import pipeline. Parsing stops at cell extraction; field validation
// belongs to the pipeline.
package upload

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// RequiredColumns must all appear in the header row, matched by name in any
// order.
var RequiredColumns = []string{"firstName", "lastName", "email", "age", "password"}

var (
	// ErrNoSheet means the workbook contains no sheets.
	ErrNoSheet = errors.New("no sheet found")
	// ErrNoData means the sheet has no data rows under the header.
	ErrNoData = errors.New("no data rows found")
)

// MissingColumnsError lists required header columns absent from the file.
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("missing columns: %s", strings.Join(e.Columns, ", "))
}

// Row is one non-blank data row with untyped cell values. Number is the
// 1-based spreadsheet row (the header is row 1, so data starts at 2); it is
// used purely for error reporting.
type Row struct {
	FirstName string
	LastName  string
	Email     string
	Age       string
	Password  string
	Number    int
}

// Parse reads the first sheet of an .xlsx workbook. The header row is
// matched by column name, rows whose cells are all blank are skipped
// silently, and remaining rows keep their original spreadsheet numbering.
func Parse(r io.Reader) ([]Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoSheet
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, ErrNoData
	}

	columnIndex := make(map[string]int, len(rows[0]))
	for i, header := range rows[0] {
		columnIndex[strings.TrimSpace(header)] = i
	}

	var missing []string
	for _, column := range RequiredColumns {
		if _, ok := columnIndex[column]; !ok {
			missing = append(missing, column)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingColumnsError{Columns: missing}
	}

	var parsed []Row
	for i, cells := range rows[1:] {
		if isBlank(cells) {
			continue
		}
		parsed = append(parsed, Row{
			FirstName: cell(cells, columnIndex["firstName"]),
			LastName:  cell(cells, columnIndex["lastName"]),
			Email:     cell(cells, columnIndex["email"]),
			Age:       cell(cells, columnIndex["age"]),
			Password:  cell(cells, columnIndex["password"]),
			Number:    i + 2,
		})
	}
	if len(parsed) == 0 {
		return nil, ErrNoData
	}
	return parsed, nil
}

func isBlank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// cell reads a column by index; short rows yield empty strings, matching
// how spreadsheets omit trailing empty cells.
func cell(cells []string, idx int) string {
	if idx < 0 || idx >= len(cells) {
		return ""
	}
	return cells[idx]
}
