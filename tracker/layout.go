package tracker

import (
	"fmt"

	"skilltrack-server-go/models"
)

// Fixed row map of the tracking canvas. Rows 3-11 hold attendance dates and
// are never touched by the sync engine.
const (
	TitleRow             = 1
	ClassInfoRow         = 2
	AttendanceTopRow     = 3
	AttendanceBottomRow  = 11
	NameRow              = 12 // Merged student name cell spans the begin/end pair
	PhaseRow             = 13 // "Beginning" / "End" sub-headers
	PrimaryBlockTop      = 14
	PrimaryBlockBottom   = 30 // 17 primary skill rows
	DividerRow           = 31
	SecondaryBlockTop    = 32
	SecondaryBlockBottom = 41 // 10 secondary skill rows
)

const (
	SkillNameCol = 1 // Column 1 carries the skill display names
	FirstSlotCol = 2 // Slot 0 begins here; slot i owns (2+2i, 3+2i)
	BaseColumns  = 25
	BaseSlots    = 12 // The default template fits 12 students
)

// RequiredColumns returns the canvas width needed for n enrolled students.
// The first 12 fit the default template; every student beyond that consumes
// one additional begin/end column pair.
func RequiredColumns(n int) int {
	if n <= BaseSlots {
		return BaseColumns
	}
	return BaseColumns + 2*(n-BaseSlots)
}

// SlotCapacity returns how many begin/end column pairs a canvas of the given
// width holds.
func SlotCapacity(width int) int {
	if width <= SkillNameCol {
		return 0
	}
	return (width - SkillNameCol) / 2
}

// BuildSlots allocates one GridStudentSlot per enrolled student, in roster
// order, capped at the capacity of the resized canvas. Slots start
// unresolved; the identity matcher fills CanonicalRow later.
func BuildSlots(students []models.StudentIdentity) []models.GridStudentSlot {
	capacity := SlotCapacity(RequiredColumns(len(students)))
	n := len(students)
	if n > capacity {
		n = capacity
	}
	slots := make([]models.GridStudentSlot, 0, n)
	for i := 0; i < n; i++ {
		begin := FirstSlotCol + 2*i
		slots = append(slots, models.GridStudentSlot{
			Index:        i,
			BeginningCol: begin,
			EndingCol:    begin + 1,
			Identity:     students[i],
			CanonicalRow: -1,
		})
	}
	return slots
}

// LayoutManager grows and shrinks the tracking canvas to fit enrollment and
// re-establishes the merged header bands that structural edits invalidate.
type LayoutManager struct {
	grid Grid
}

// NewLayoutManager creates a LayoutManager over the given canvas.
func NewLayoutManager(grid Grid) *LayoutManager {
	return &LayoutManager{grid: grid}
}

// Resize brings the canvas to the width required for n students. Zero
// enrollment leaves the default template untouched; n == BaseSlots needs
// neither expansion nor truncation. After any structural change the
// full-width title and class-info bands are re-merged.
func (m *LayoutManager) Resize(n int) error {
	if n == 0 {
		return nil
	}
	required := RequiredColumns(n)
	current, err := m.grid.Width()
	if err != nil {
		return fmt.Errorf("failed to read canvas width: %w", err)
	}

	switch {
	case current > required:
		if err := m.grid.DeleteColumns(required+1, current-required); err != nil {
			return fmt.Errorf("failed to truncate canvas to %d columns: %w", required, err)
		}
	case current < required:
		if err := m.grid.InsertColumnsAfter(current, required-current); err != nil {
			return fmt.Errorf("failed to expand canvas to %d columns: %w", required, err)
		}
		for i := SlotCapacity(current); i < SlotCapacity(required); i++ {
			if err := m.formatStudentBlock(i); err != nil {
				return err
			}
		}
	default:
		return nil
	}

	return m.remergeBands(required)
}

// formatStudentBlock formats the header block of a newly inserted slot: the
// merged name cell spanning the begin/end pair, the Beginning/End sub-header
// row, and alternating shading across the skill rows.
func (m *LayoutManager) formatStudentBlock(index int) error {
	begin := FirstSlotCol + 2*index
	end := begin + 1

	if err := m.grid.MergeRegion(NameRow, begin, NameRow, end); err != nil {
		return fmt.Errorf("failed to merge name cell for slot %d: %w", index, err)
	}
	if err := m.grid.ApplyTag(NameRow, begin, TagStudentHeader); err != nil {
		return fmt.Errorf("failed to tag name cell for slot %d: %w", index, err)
	}
	if err := m.grid.WriteCell(PhaseRow, begin, "Beginning"); err != nil {
		return fmt.Errorf("failed to write Beginning header for slot %d: %w", index, err)
	}
	if err := m.grid.WriteCell(PhaseRow, end, "End"); err != nil {
		return fmt.Errorf("failed to write End header for slot %d: %w", index, err)
	}

	for row := PrimaryBlockTop; row <= SecondaryBlockBottom; row++ {
		if row == DividerRow || (row-PrimaryBlockTop)%2 == 0 {
			continue
		}
		if err := m.grid.ApplyTag(row, begin, TagShade); err != nil {
			return fmt.Errorf("failed to shade row %d for slot %d: %w", row, index, err)
		}
		if err := m.grid.ApplyTag(row, end, TagShade); err != nil {
			return fmt.Errorf("failed to shade row %d for slot %d: %w", row, index, err)
		}
	}
	return nil
}

// remergeBands re-merges the title and class-info bands across the full
// canvas width. Inserting or deleting columns invalidates prior merges, so
// this runs after every resize.
func (m *LayoutManager) remergeBands(width int) error {
	if err := m.grid.MergeRegion(TitleRow, 1, TitleRow, width); err != nil {
		return fmt.Errorf("failed to re-merge title band: %w", err)
	}
	if err := m.grid.MergeRegion(ClassInfoRow, 1, ClassInfoRow, width); err != nil {
		return fmt.Errorf("failed to re-merge class info band: %w", err)
	}
	return nil
}
