package tracker

import (
	"strings"

	"skilltrack-server-go/models"
)

// MatchStudent resolves a roster identity to a 0-based row index in the
// canonical skill table, or -1 if the student cannot be found.
//
// Strict priority order:
//  1. case-insensitive exact match on (firstName, lastName)
//  2. case-insensitive match on firstName alone
//
// Within a tier the first occurrence in table order wins, which makes the
// result deterministic for a fixed table even when duplicates exist. No
// edit-distance matching is used for identities.
func MatchStudent(identity models.StudentIdentity, rows [][]string) int {
	first := strings.ToLower(strings.TrimSpace(identity.FirstName))
	last := strings.ToLower(strings.TrimSpace(identity.LastName))
	if first == "" && last == "" {
		return -1
	}

	for i, row := range rows {
		if cellFold(row, canonicalFirstNameCol) == first && cellFold(row, canonicalLastNameCol) == last {
			return i
		}
	}
	for i, row := range rows {
		if first != "" && cellFold(row, canonicalFirstNameCol) == first {
			return i
		}
	}
	return -1
}

// cellFold returns the trimmed, lowercased cell at idx, tolerating short
// rows (the table adapter trims trailing blanks).
func cellFold(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(row[idx]))
}
