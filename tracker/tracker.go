// Package tracker implements the class tracking grid synchronization engine:
// canvas layout management, skill catalog resolution, roster identity
// matching, and the bidirectional push/pull merge between the per-class
// tracking canvas and the canonical skill table.
//
// The package only talks to its collaborators through the narrow interfaces
// below, so it never assumes Redis, Excel, or any UI. Adapters live in the
// grid and db packages.
package tracker

import (
	"errors"

	"skilltrack-server-go/models"
)

// CellTag is a presentation marker applied to a canvas cell. The backing
// store decides how a tag renders (fill color, font, ...).
type CellTag string

const (
	TagPerformed     CellTag = "performed"      // Skill value 'X'
	TagTaught        CellTag = "taught"         // Skill value '/'
	TagClear         CellTag = "clear"          // Remove any marker
	TagStudentHeader CellTag = "student-header" // Merged name cell above a slot
	TagShade         CellTag = "shade"          // Alternating skill-row shading
)

// Grid is the tracking canvas contract. All indices are 1-based integers;
// letter-style column labels never cross this boundary. Operations are
// immediate and synchronous with no rollback, so a failure mid-sequence
// leaves partial structural changes in place. None of them is idempotent by
// construction; the engine gets idempotence from value-equality checks
// before writing.
type Grid interface {
	ReadRegion(top, left, bottom, right int) ([][]string, error)
	WriteCell(row, col int, value string) error
	InsertColumnsAfter(col, count int) error
	DeleteColumns(start, count int) error
	MergeRegion(top, left, bottom, right int) error
	ApplyTag(row, col int, tag CellTag) error
	Width() (int, error)
}

// SkillTable is the canonical skill table contract: one row per student,
// identity columns first, one column per skill. Row and column indices are
// 0-based into the data area (headers excluded).
type SkillTable interface {
	ReadAll() (headers []string, rows [][]string, err error)
	WriteCell(rowIndex, colIndex int, value string) error
}

// RosterStore supplies the students enrolled in a class. Key concatenation
// and matching semantics are owned by the roster collaborator, not by the
// engine.
type RosterStore interface {
	GetEnrolledStudents(key models.ClassKey) ([]models.StudentIdentity, error)
}

// Missing-collaborator conditions are the only ones that abort a sync before
// any write. Everything else is accumulated into the SyncSummary.
var (
	ErrRosterUnavailable     = errors.New("roster store unavailable")
	ErrSkillTableUnavailable = errors.New("canonical skill table unavailable")
	ErrGridUnavailable       = errors.New("tracking canvas unavailable")
)

// Identity column positions in the canonical skill table.
const (
	canonicalFirstNameCol = 0
	canonicalLastNameCol  = 1
)
