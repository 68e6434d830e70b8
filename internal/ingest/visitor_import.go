// Package ingest parses visitor lists uploaded as spreadsheets. The first
// column is the visitor's name; any remaining non-empty columns are joined
// into a single contact field.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"attendhq/internal/models"

	"github.com/xuri/excelize/v2"
)

const (
	// MaxRows caps how many visitor rows a single upload may contain.
	MaxRows = 5000

	contactSeparator = " | "
)

// ErrTooManyRows is returned when an upload exceeds MaxRows.
var ErrTooManyRows = fmt.Errorf("visitor import exceeds %d rows", MaxRows)

// FromXLSX reads visitor rows from the first sheet of an Excel workbook.
func FromXLSX(r io.Reader) ([]models.VisitorInput, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	return fromRows(rows)
}

// FromCSV reads visitor rows from CSV data.
func FromCSV(r io.Reader) ([]models.VisitorInput, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // ragged rows are fine

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv: %w", err)
	}
	return fromRows(rows)
}

func fromRows(rows [][]string) ([]models.VisitorInput, error) {
	if len(rows) > 0 && isHeaderRow(rows[0]) {
		rows = rows[1:]
	}
	if len(rows) > MaxRows {
		return nil, ErrTooManyRows
	}

	visitors := []models.VisitorInput{}
	for _, row := range rows {
		v, ok := parseRow(row)
		if !ok {
			continue
		}
		visitors = append(visitors, v)
	}
	return visitors, nil
}

// parseRow maps one spreadsheet row to a visitor. Column 1 is the name;
// columns 2..n are joined into the contact field.
func parseRow(row []string) (models.VisitorInput, bool) {
	if len(row) == 0 {
		return models.VisitorInput{}, false
	}

	name := strings.TrimSpace(row[0])
	contacts := []string{}
	for _, cell := range row[1:] {
		if c := strings.TrimSpace(cell); c != "" {
			contacts = append(contacts, c)
		}
	}
	contact := strings.Join(contacts, contactSeparator)

	if name == "" && contact == "" {
		return models.VisitorInput{}, false
	}
	return models.VisitorInput{Name: name, Contact: contact}, true
}

func isHeaderRow(row []string) bool {
	if len(row) == 0 {
		return false
	}
	first := strings.ToLower(strings.TrimSpace(row[0]))
	return first == "name" || first == "visitor" || first == "visitor name" || first == "full name"
}
