package tracker

import (
	"fmt"
	"strings"

	"skilltrack-server-go/models"
)

// State is the engine's position in its synchronous state machine:
// Idle -> Resolving -> Pushing -> Pulling -> Idle, with Resolving -> Failed
// when a required collaborator is missing.
type State string

const (
	StateIdle      State = "idle"
	StateResolving State = "resolving"
	StatePushing   State = "pushing"
	StatePulling   State = "pulling"
	StateFailed    State = "failed"
)

// Engine orchestrates one full sync: catalog resolution, canvas layout,
// identity matching, then the push/pull merge. A single Engine is meant to
// be driven by one caller at a time; nothing here guards against two
// invocations interleaving writes on the same backing stores. That is a
// known open risk of the document model, not a designed-for case.
type Engine struct {
	roster RosterStore
	table  SkillTable
	grid   Grid
	layout *LayoutManager
	state  State
}

// NewEngine builds an Engine over its three collaborators. Any of them may
// be nil; RunSync then fails with the matching sentinel before writing
// anything.
func NewEngine(roster RosterStore, table SkillTable, grid Grid) *Engine {
	e := &Engine{roster: roster, table: table, grid: grid, state: StateIdle}
	if grid != nil {
		e.layout = NewLayoutManager(grid)
	}
	return e
}

// State reports where the engine currently is in its state machine.
func (e *Engine) State() State {
	return e.state
}

// RunSync performs one complete synchronization pass for the given class.
//
// Push runs before Pull on purpose: an instructor's freshly completed
// end-of-class marks land in the canonical table first, so the same pass
// refreshes the canvas's beginning reference columns from the now-updated
// canonical values.
//
// Only missing-collaborator conditions return an error. Unresolved
// students, per-cell write failures and an empty skill catalog are all
// accumulated into the returned summary so partial progress is never lost.
func (e *Engine) RunSync(key models.ClassKey) (*models.SyncSummary, error) {
	summary := &models.SyncSummary{
		Unresolved: []models.StudentIdentity{},
		Errors:     []string{},
	}

	e.state = StateResolving
	if e.roster == nil {
		e.state = StateFailed
		return nil, ErrRosterUnavailable
	}
	if e.table == nil {
		e.state = StateFailed
		return nil, ErrSkillTableUnavailable
	}
	if e.grid == nil {
		e.state = StateFailed
		return nil, ErrGridUnavailable
	}

	students, err := e.roster.GetEnrolledStudents(key)
	if err != nil {
		e.state = StateFailed
		return nil, fmt.Errorf("%w: %v", ErrRosterUnavailable, err)
	}
	headers, rows, err := e.table.ReadAll()
	if err != nil {
		e.state = StateFailed
		return nil, fmt.Errorf("%w: %v", ErrSkillTableUnavailable, err)
	}

	skills := ResolveCatalog(key.Program, headers)
	summary.SkillCount = len(skills)

	if err := e.layout.Resize(len(students)); err != nil {
		// Structural edits have no rollback; whatever landed stays in place
		// and the merge continues on the columns that exist.
		summary.Errors = append(summary.Errors, err.Error())
	}

	// The slot list and skill map are rebuilt from scratch on every run; no
	// incremental update against a previous class selection.
	slots := BuildSlots(students)
	summary.Students = len(slots)
	e.populate(key, slots, skills, summary)

	for i := range slots {
		row := MatchStudent(slots[i].Identity, rows)
		slots[i].CanonicalRow = row
		if row < 0 {
			summary.Unresolved = append(summary.Unresolved, slots[i].Identity)
		}
	}

	matrix, err := e.readSkillBlock(len(students))
	if err != nil {
		summary.Errors = append(summary.Errors, fmt.Sprintf("skipping push/pull, canvas read failed: %v", err))
		e.state = StateIdle
		return summary, nil
	}

	e.state = StatePushing
	e.push(slots, skills, rows, matrix, summary)

	e.state = StatePulling
	e.pull(slots, skills, rows, matrix, summary)

	e.state = StateIdle
	return summary, nil
}

// populate rewrites the transient canvas content for the selected class:
// the class info band, the skill display names in column 1, and each slot's
// name and Beginning/End sub-headers. Leftover names in unused template
// slots are cleared. Individual write failures are recorded and skipped.
func (e *Engine) populate(key models.ClassKey, slots []models.GridStudentSlot, skills []models.SkillDefinition, summary *models.SyncSummary) {
	if len(slots) == 0 {
		// Zero enrollment leaves the default template untouched.
		return
	}

	info := fmt.Sprintf("%s / %s %s / %s", key.Program, key.Day, key.Time, key.Site)
	if err := e.grid.WriteCell(ClassInfoRow, 1, info); err != nil {
		summary.Errors = append(summary.Errors, fmt.Sprintf("class info band: %v", err))
	}

	names := make(map[int]string, len(skills))
	for _, s := range skills {
		names[s.TrackerRow] = s.DisplayName
	}
	for row := PrimaryBlockTop; row <= SecondaryBlockBottom; row++ {
		if row == DividerRow {
			continue
		}
		if err := e.grid.WriteCell(row, SkillNameCol, names[row]); err != nil {
			summary.Errors = append(summary.Errors, fmt.Sprintf("skill label row %d: %v", row, err))
		}
	}

	for _, slot := range slots {
		if err := e.grid.WriteCell(NameRow, slot.BeginningCol, slot.Identity.FullName()); err != nil {
			summary.Errors = append(summary.Errors, fmt.Sprintf("name cell slot %d: %v", slot.Index, err))
		}
		if err := e.grid.WriteCell(PhaseRow, slot.BeginningCol, "Beginning"); err != nil {
			summary.Errors = append(summary.Errors, fmt.Sprintf("phase cell slot %d: %v", slot.Index, err))
		}
		if err := e.grid.WriteCell(PhaseRow, slot.EndingCol, "End"); err != nil {
			summary.Errors = append(summary.Errors, fmt.Sprintf("phase cell slot %d: %v", slot.Index, err))
		}
	}

	capacity := SlotCapacity(RequiredColumns(len(slots)))
	for i := len(slots); i < capacity; i++ {
		if err := e.grid.WriteCell(NameRow, FirstSlotCol+2*i, ""); err != nil {
			summary.Errors = append(summary.Errors, fmt.Sprintf("clearing slot %d: %v", i, err))
		}
	}
}

// readSkillBlock reads the whole skill area of the canvas in one region so
// push and pull work against a consistent snapshot of the grid values.
func (e *Engine) readSkillBlock(enrolled int) ([][]string, error) {
	width, err := e.grid.Width()
	if err != nil {
		width = RequiredColumns(enrolled)
	}
	return e.grid.ReadRegion(PrimaryBlockTop, 1, SecondaryBlockBottom, width)
}

// push writes every non-blank ending-column value into the matched canonical
// cell. The canonical cell is always overwritten; the previous value only
// decides whether the write counts as an insert (was blank) or an update.
// The local copy of the table rows is refreshed so the pull phase sees the
// pushed values.
func (e *Engine) push(slots []models.GridStudentSlot, skills []models.SkillDefinition, rows [][]string, matrix [][]string, summary *models.SyncSummary) {
	for _, slot := range slots {
		if !slot.Resolved() {
			continue
		}
		for _, skill := range skills {
			value := matrixAt(matrix, skill.TrackerRow, slot.EndingCol)
			if strings.TrimSpace(value) == "" {
				continue
			}
			prior := cellAt(rows[slot.CanonicalRow], skill.CanonicalCol)
			if err := e.table.WriteCell(slot.CanonicalRow, skill.CanonicalCol, value); err != nil {
				summary.Errors = append(summary.Errors,
					fmt.Sprintf("push %s / %s: %v", slot.Identity.FullName(), skill.DisplayName, err))
				continue
			}
			if strings.TrimSpace(prior) == "" {
				summary.Pushed.Inserted++
			} else {
				summary.Pushed.Updated++
			}
			rows[slot.CanonicalRow] = setCellAt(rows[slot.CanonicalRow], skill.CanonicalCol, value)
		}
	}
}

// pull refreshes each slot's beginning column from the canonical values,
// writing only when the cell would actually change, then applies the
// presentation tag for the closed value set: 'X' performed, '/' taught,
// anything else clears.
func (e *Engine) pull(slots []models.GridStudentSlot, skills []models.SkillDefinition, rows [][]string, matrix [][]string, summary *models.SyncSummary) {
	for _, slot := range slots {
		if !slot.Resolved() {
			continue
		}
		for _, skill := range skills {
			canonical := strings.TrimSpace(cellAt(rows[slot.CanonicalRow], skill.CanonicalCol))
			if canonical == "" {
				continue
			}
			current := strings.TrimSpace(matrixAt(matrix, skill.TrackerRow, slot.BeginningCol))
			if current == canonical {
				continue
			}
			if err := e.grid.WriteCell(skill.TrackerRow, slot.BeginningCol, canonical); err != nil {
				summary.Errors = append(summary.Errors,
					fmt.Sprintf("pull %s / %s: %v", slot.Identity.FullName(), skill.DisplayName, err))
				continue
			}
			summary.Pulled.Changed++

			tag := TagClear
			switch canonical {
			case "X":
				tag = TagPerformed
			case "/":
				tag = TagTaught
			}
			if err := e.grid.ApplyTag(skill.TrackerRow, slot.BeginningCol, tag); err != nil {
				summary.Errors = append(summary.Errors,
					fmt.Sprintf("tag %s / %s: %v", slot.Identity.FullName(), skill.DisplayName, err))
			}
		}
	}
}

// matrixAt indexes the skill-block snapshot by absolute canvas coordinates.
func matrixAt(matrix [][]string, row, col int) string {
	r := row - PrimaryBlockTop
	c := col - 1
	if r < 0 || r >= len(matrix) || c < 0 || c >= len(matrix[r]) {
		return ""
	}
	return matrix[r][c]
}

// cellAt tolerates rows shorter than the header width.
func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

// setCellAt grows the row as needed and returns the (possibly reallocated)
// slice.
func setCellAt(row []string, idx int, value string) []string {
	for len(row) <= idx {
		row = append(row, "")
	}
	row[idx] = value
	return row
}
