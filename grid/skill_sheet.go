package grid

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// SkillSheet implements tracker.SkillTable over the Skill Database sheet.
// Sheet row 1 holds the headers; data rows follow. The interface indices are
// 0-based into the data area, the 1-based conversion happens only here.
type SkillSheet struct {
	file  *excelize.File
	sheet string
}

// ReadAll returns the header row and every data row. excelize trims trailing
// blank cells per row; callers tolerate short rows.
func (s *SkillSheet) ReadAll() ([]string, [][]string, error) {
	rows, err := s.file.GetRows(s.sheet)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read skill table: %w", err)
	}
	if len(rows) == 0 {
		return []string{}, [][]string{}, nil
	}
	return rows[0], rows[1:], nil
}

// WriteCell sets one skill value for one student.
func (s *SkillSheet) WriteCell(rowIndex, colIndex int, value string) error {
	cell, err := excelize.CoordinatesToCellName(colIndex+1, rowIndex+2)
	if err != nil {
		return fmt.Errorf("invalid skill table cell (%d,%d): %w", rowIndex, colIndex, err)
	}
	if err := s.file.SetCellValue(s.sheet, cell, value); err != nil {
		return fmt.Errorf("failed to write skill table cell %s: %w", cell, err)
	}
	return nil
}

// WriteHeader sets the header name of the 0-based column colIndex.
func (s *SkillSheet) WriteHeader(colIndex int, name string) error {
	cell, err := excelize.CoordinatesToCellName(colIndex+1, 1)
	if err != nil {
		return fmt.Errorf("invalid skill table header column %d: %w", colIndex, err)
	}
	if err := s.file.SetCellValue(s.sheet, cell, name); err != nil {
		return fmt.Errorf("failed to write skill table header %s: %w", cell, err)
	}
	return nil
}

// AppendStudent adds a new canonical row with just the identity columns
// filled, returning its 0-based data row index.
func (s *SkillSheet) AppendStudent(firstName, lastName string) (int, error) {
	rows, err := s.file.GetRows(s.sheet)
	if err != nil {
		return 0, fmt.Errorf("failed to read skill table: %w", err)
	}
	next := len(rows) + 1 // 1-based sheet row after the last used one
	if next < 2 {
		next = 2
	}
	cell, err := excelize.CoordinatesToCellName(1, next)
	if err != nil {
		return 0, err
	}
	if err := s.file.SetCellValue(s.sheet, cell, firstName); err != nil {
		return 0, fmt.Errorf("failed to append student row: %w", err)
	}
	cell, err = excelize.CoordinatesToCellName(2, next)
	if err != nil {
		return 0, err
	}
	if err := s.file.SetCellValue(s.sheet, cell, lastName); err != nil {
		return 0, fmt.Errorf("failed to append student row: %w", err)
	}
	return next - 2, nil
}
