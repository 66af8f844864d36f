// Package grid holds the excelize boundary adapters for the tracking
// workbook: the Grid implementation over the Tracker sheet and the canonical
// skill table over the Skill Database sheet. Letter-style column labels are
// confined to this package; everything above it works on integer indices.
package grid

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/xuri/excelize/v2"

	"skilltrack-server-go/tracker"
)

const (
	TrackerSheetName = "Tracker"
	SkillSheetName   = "Skill Database"
)

// Compile-time checks that the adapters satisfy the engine contracts.
var (
	_ tracker.Grid       = (*SheetGrid)(nil)
	_ tracker.SkillTable = (*SkillSheet)(nil)
)

// Workbook wraps one xlsx file holding both the tracking canvas and the
// canonical skill table. Mutations stay in memory until Save.
type Workbook struct {
	file    *excelize.File
	path    string
	tracker *SheetGrid
}

// OpenWorkbook opens the workbook at path, creating it with the default
// 12-slot tracker template and an empty skill table when the file does not
// exist yet.
func OpenWorkbook(path string) (*Workbook, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		log.Printf("Workbook %s not found. Creating it with the default template.", path)
		return createWorkbook(path)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	for _, sheet := range []string{TrackerSheetName, SkillSheetName} {
		if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
			return nil, fmt.Errorf("workbook %s is missing sheet %q", path, sheet)
		}
	}
	return &Workbook{file: f, path: path}, nil
}

// Tracker returns the Grid over the tracking canvas sheet.
func (w *Workbook) Tracker() *SheetGrid {
	if w.tracker == nil {
		w.tracker = newSheetGrid(w.file, TrackerSheetName)
	}
	return w.tracker
}

// SkillTable returns the canonical skill table adapter.
func (w *Workbook) SkillTable() *SkillSheet {
	return &SkillSheet{file: w.file, sheet: SkillSheetName}
}

// Save writes the workbook back to its path.
func (w *Workbook) Save() error {
	if err := w.file.SaveAs(w.path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", w.path, err)
	}
	return nil
}

// Close releases the underlying file.
func (w *Workbook) Close() error {
	return w.file.Close()
}

// createWorkbook builds a fresh workbook: the Tracker sheet at its default
// 25-column width with the merged title and info bands and the Beginning/End
// sub-headers of the 12 template slots, plus a Skill Database sheet with the
// identity headers.
func createWorkbook(path string) (*Workbook, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", TrackerSheetName); err != nil {
		return nil, fmt.Errorf("failed to create tracker sheet: %w", err)
	}
	if _, err := f.NewSheet(SkillSheetName); err != nil {
		return nil, fmt.Errorf("failed to create skill sheet: %w", err)
	}

	w := &Workbook{file: f, path: path}
	g := w.Tracker()
	g.width = tracker.BaseColumns

	if err := g.WriteCell(tracker.TitleRow, 1, "Class Skill Tracker"); err != nil {
		return nil, err
	}
	if err := g.MergeRegion(tracker.TitleRow, 1, tracker.TitleRow, tracker.BaseColumns); err != nil {
		return nil, err
	}
	if err := g.MergeRegion(tracker.ClassInfoRow, 1, tracker.ClassInfoRow, tracker.BaseColumns); err != nil {
		return nil, err
	}
	for i := 0; i < tracker.BaseSlots; i++ {
		begin := tracker.FirstSlotCol + 2*i
		if err := g.MergeRegion(tracker.NameRow, begin, tracker.NameRow, begin+1); err != nil {
			return nil, err
		}
		if err := g.WriteCell(tracker.PhaseRow, begin, "Beginning"); err != nil {
			return nil, err
		}
		if err := g.WriteCell(tracker.PhaseRow, begin+1, "End"); err != nil {
			return nil, err
		}
	}
	if err := g.syncDimension(); err != nil {
		return nil, err
	}

	if err := f.SetCellValue(SkillSheetName, "A1", "First Name"); err != nil {
		return nil, fmt.Errorf("failed to seed skill sheet headers: %w", err)
	}
	if err := f.SetCellValue(SkillSheetName, "B1", "Last Name"); err != nil {
		return nil, fmt.Errorf("failed to seed skill sheet headers: %w", err)
	}

	if err := w.Save(); err != nil {
		return nil, err
	}
	return w, nil
}
