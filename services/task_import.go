package services

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ImportedTask is one row of a task import workbook. Expediente is used
// to match the row to an existing case; rows that match no case become
// dashboard tasks.
type ImportedTask struct {
	Expediente string
	Title      string
	Date       string
	Urgent     bool
}

// ImportErrors collects per-row problems without aborting the import
type ImportErrors struct {
	Rows []string
}

func (e *ImportErrors) add(row int, msg string) {
	e.Rows = append(e.Rows, fmt.Sprintf("fila %d: %s", row+1, msg))
}

// ParseTaskWorkbook reads tasks from the first sheet of an Excel
// workbook. Expected columns: expediente, titulo, fecha (YYYY-MM-DD),
// urgente (si/no). The first row is the header and is skipped.
func ParseTaskWorkbook(r io.Reader) ([]ImportedTask, *ImportErrors, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}

	tasks := []ImportedTask{}
	importErrs := &ImportErrors{}
	for i, row := range rows {
		if i == 0 {
			continue // header
		}
		if len(row) == 0 || strings.TrimSpace(cell(row, 0)+cell(row, 1)) == "" {
			continue
		}

		title := strings.TrimSpace(cell(row, 1))
		if title == "" {
			importErrs.add(i, "falta el título")
			continue
		}
		date := strings.TrimSpace(cell(row, 2))
		if date == "" {
			importErrs.add(i, "falta la fecha")
			continue
		}

		tasks = append(tasks, ImportedTask{
			Expediente: strings.TrimSpace(cell(row, 0)),
			Title:      title,
			Date:       date,
			Urgent:     parseUrgent(cell(row, 3)),
		})
	}

	return tasks, importErrs, nil
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

func parseUrgent(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "si", "sí", "urgente", "true", "1", "yes":
		return true
	}
	return false
}
