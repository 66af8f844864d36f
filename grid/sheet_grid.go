package grid

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"skilltrack-server-go/tracker"
)

// ColumnLabel converts a 1-based column index to its letter label ("AB").
func ColumnLabel(index int) (string, error) {
	return excelize.ColumnNumberToName(index)
}

// ColumnIndex converts a letter label to its 1-based column index.
func ColumnIndex(label string) (int, error) {
	return excelize.ColumnNameToNumber(label)
}

// SheetGrid implements tracker.Grid over one worksheet. It tracks the canvas
// width itself and persists it through the sheet dimension, because inserted
// columns hold no cells and would otherwise be invisible to a reader.
// Operations apply immediately to the in-memory workbook with no rollback.
type SheetGrid struct {
	file   *excelize.File
	sheet  string
	width  int
	styles map[tracker.CellTag]int
}

func newSheetGrid(f *excelize.File, sheet string) *SheetGrid {
	g := &SheetGrid{
		file:   f,
		sheet:  sheet,
		width:  tracker.BaseColumns,
		styles: make(map[tracker.CellTag]int),
	}
	if dim, err := f.GetSheetDimension(sheet); err == nil {
		if parts := strings.Split(dim, ":"); len(parts) == 2 {
			if col, _, err := excelize.CellNameToCoordinates(parts[1]); err == nil && col > 1 {
				g.width = col
			}
		}
	}
	return g
}

// Width returns the current canvas width in columns.
func (g *SheetGrid) Width() (int, error) {
	return g.width, nil
}

// ReadRegion reads the rectangle cell by cell. Blank cells come back as
// empty strings so callers can index the matrix uniformly.
func (g *SheetGrid) ReadRegion(top, left, bottom, right int) ([][]string, error) {
	matrix := make([][]string, 0, bottom-top+1)
	for row := top; row <= bottom; row++ {
		line := make([]string, 0, right-left+1)
		for col := left; col <= right; col++ {
			cell, err := excelize.CoordinatesToCellName(col, row)
			if err != nil {
				return nil, fmt.Errorf("invalid cell (%d,%d): %w", row, col, err)
			}
			value, err := g.file.GetCellValue(g.sheet, cell)
			if err != nil {
				return nil, fmt.Errorf("failed to read %s: %w", cell, err)
			}
			line = append(line, value)
		}
		matrix = append(matrix, line)
	}
	return matrix, nil
}

// WriteCell sets one cell value.
func (g *SheetGrid) WriteCell(row, col int, value string) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return fmt.Errorf("invalid cell (%d,%d): %w", row, col, err)
	}
	if err := g.file.SetCellValue(g.sheet, cell, value); err != nil {
		return fmt.Errorf("failed to write %s: %w", cell, err)
	}
	return nil
}

// InsertColumnsAfter inserts count blank columns to the right of col.
func (g *SheetGrid) InsertColumnsAfter(col, count int) error {
	label, err := ColumnLabel(col + 1)
	if err != nil {
		return fmt.Errorf("invalid column %d: %w", col+1, err)
	}
	if err := g.file.InsertCols(g.sheet, label, count); err != nil {
		return fmt.Errorf("failed to insert %d columns after %s: %w", count, label, err)
	}
	g.width += count
	return g.syncDimension()
}

// DeleteColumns removes count columns starting at start. RemoveCol shifts
// the remainder left, so the same label is removed count times.
func (g *SheetGrid) DeleteColumns(start, count int) error {
	label, err := ColumnLabel(start)
	if err != nil {
		return fmt.Errorf("invalid column %d: %w", start, err)
	}
	for i := 0; i < count; i++ {
		if err := g.file.RemoveCol(g.sheet, label); err != nil {
			return fmt.Errorf("failed to delete column %s (%d of %d): %w", label, i+1, count, err)
		}
	}
	g.width -= count
	return g.syncDimension()
}

// MergeRegion merges the rectangle into one cell.
func (g *SheetGrid) MergeRegion(top, left, bottom, right int) error {
	topLeft, err := excelize.CoordinatesToCellName(left, top)
	if err != nil {
		return fmt.Errorf("invalid cell (%d,%d): %w", top, left, err)
	}
	bottomRight, err := excelize.CoordinatesToCellName(right, bottom)
	if err != nil {
		return fmt.Errorf("invalid cell (%d,%d): %w", bottom, right, err)
	}
	if err := g.file.MergeCell(g.sheet, topLeft, bottomRight); err != nil {
		return fmt.Errorf("failed to merge %s:%s: %w", topLeft, bottomRight, err)
	}
	return nil
}

// ApplyTag styles one cell according to its tag. TagClear resets the cell to
// the default style.
func (g *SheetGrid) ApplyTag(row, col int, tag tracker.CellTag) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return fmt.Errorf("invalid cell (%d,%d): %w", row, col, err)
	}
	styleID, err := g.styleFor(tag)
	if err != nil {
		return err
	}
	if err := g.file.SetCellStyle(g.sheet, cell, cell, styleID); err != nil {
		return fmt.Errorf("failed to tag %s as %s: %w", cell, tag, err)
	}
	return nil
}

// styleFor lazily creates and caches the style behind each tag.
func (g *SheetGrid) styleFor(tag tracker.CellTag) (int, error) {
	if tag == tracker.TagClear {
		return 0, nil
	}
	if id, ok := g.styles[tag]; ok {
		return id, nil
	}

	var style excelize.Style
	switch tag {
	case tracker.TagPerformed:
		style.Fill = excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"C6EFCE"}}
	case tracker.TagTaught:
		style.Fill = excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"FFEB9C"}}
	case tracker.TagShade:
		style.Fill = excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"F2F2F2"}}
	case tracker.TagStudentHeader:
		style.Fill = excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"DDEBF7"}}
		style.Font = &excelize.Font{Bold: true}
		style.Alignment = &excelize.Alignment{Horizontal: "center"}
	default:
		return 0, fmt.Errorf("unknown cell tag %q", tag)
	}

	id, err := g.file.NewStyle(&style)
	if err != nil {
		return 0, fmt.Errorf("failed to create style for tag %s: %w", tag, err)
	}
	g.styles[tag] = id
	return id, nil
}

// syncDimension persists the tracked width into the sheet dimension.
func (g *SheetGrid) syncDimension() error {
	label, err := ColumnLabel(g.width)
	if err != nil {
		return fmt.Errorf("invalid width %d: %w", g.width, err)
	}
	ref := fmt.Sprintf("A1:%s%d", label, tracker.SecondaryBlockBottom)
	if err := g.file.SetSheetDimension(g.sheet, ref); err != nil {
		return fmt.Errorf("failed to set sheet dimension %s: %w", ref, err)
	}
	return nil
}
