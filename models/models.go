package models

import "strings"

// ClassKey identifies a class by the four fields the roster is filtered on.
// Its normalized concatenation is the storage key for the class.
type ClassKey struct {
	Program string `json:"program"` // e.g. "Stage 1"
	Day     string `json:"day"`     // e.g. "Monday"
	Time    string `json:"time"`    // e.g. "16:00"
	Site    string `json:"site"`    // e.g. "Main Pool"
}

// Key builds the normalized storage key, e.g. "stage 1|monday|16:00|main pool".
// Lookups against stored keys use this same normalization, so equality is
// trimmed and case-insensitive.
func (k ClassKey) Key() string {
	parts := []string{k.Program, k.Day, k.Time, k.Site}
	for i, p := range parts {
		parts[i] = strings.ToLower(strings.TrimSpace(p))
	}
	return strings.Join(parts, "|")
}

// Clazz represents a class
type Clazz struct {
	ClassKey
	Name       string `json:"name"`       // Display name
	Instructor string `json:"instructor"` // Assigned instructor
}

// Student is a persisted roster record.
type Student struct {
	ID        string `json:"id"`        // Unique student ID (e.g., student number)
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	ClassID   string `json:"classId"` // Key of the class the student belongs to
}

// Identity derives the ephemeral identity the sync engine works with.
func (s Student) Identity() StudentIdentity {
	return StudentIdentity{FirstName: s.FirstName, LastName: s.LastName}
}

// StudentIdentity is a student's name as the roster reports it. It is derived
// fresh on every sync and never persisted by the sync engine.
type StudentIdentity struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// FullName returns "First Last" with empty parts dropped.
func (s StudentIdentity) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(s.FirstName) + " " + strings.TrimSpace(s.LastName))
}

// GridStudentSlot is a student's position on the tracking canvas. Slots are
// always allocated in begin/end column pairs and are rebuilt from scratch on
// every class selection.
type GridStudentSlot struct {
	Index        int             `json:"index"`
	BeginningCol int             `json:"beginningCol"`
	EndingCol    int             `json:"endingCol"`
	Identity     StudentIdentity `json:"identity"`
	CanonicalRow int             `json:"canonicalRow"` // Row index into the skill table, -1 if unresolved
}

// Resolved reports whether the slot's identity matched a canonical row.
func (s GridStudentSlot) Resolved() bool {
	return s.CanonicalRow >= 0
}

// SkillDefinition maps an ordinal row in the tracker's skill block to a named
// column in the canonical skill table.
type SkillDefinition struct {
	TrackerRow   int    `json:"trackerRow"`
	CanonicalCol int    `json:"canonicalCol"`
	DisplayName  string `json:"displayName"`
}

// PushCounts classifies push-phase writes into the canonical table.
type PushCounts struct {
	Inserted int `json:"inserted"` // Canonical cell was blank before the write
	Updated  int `json:"updated"`  // Canonical cell held a previous value
}

// PullCounts records pull-phase writes into the canvas.
type PullCounts struct {
	Changed int `json:"changed"` // Beginning cells whose value actually changed
}

// SyncSummary is what RunSync returns. Callers render it however they choose;
// the engine assumes no UI.
type SyncSummary struct {
	Pushed     PushCounts        `json:"pushed"`
	Pulled     PullCounts        `json:"pulled"`
	Unresolved []StudentIdentity `json:"unresolved"`
	Errors     []string          `json:"errors"`
	SkillCount int               `json:"skillCount"` // 0 means no skills matched the program code
	Students   int               `json:"students"`   // Slots populated this run
}
