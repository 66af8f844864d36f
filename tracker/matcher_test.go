package tracker

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"skilltrack-server-go/models"
)

func TestMatchStudentExactTier(t *testing.T) {
	rows := [][]string{
		{"alex", "smith"},
		{"Jordan", "Lee"},
		{"Sam", "Okafor"},
	}

	assert.Equal(t, 0, MatchStudent(models.StudentIdentity{FirstName: "Alex", LastName: "Smith"}, rows))
	assert.Equal(t, 1, MatchStudent(models.StudentIdentity{FirstName: "JORDAN", LastName: "lee"}, rows))
	assert.Equal(t, 2, MatchStudent(models.StudentIdentity{FirstName: " Sam ", LastName: " Okafor "}, rows))
}

func TestMatchStudentFirstNameFallback(t *testing.T) {
	rows := [][]string{
		{"alex", "smith"},
		{"Jordan", "Lee"},
	}

	// Last name differs: fall back to first-name-only.
	assert.Equal(t, 1, MatchStudent(models.StudentIdentity{FirstName: "Jordan", LastName: "Li"}, rows))
	// Exact tier is exhausted across the whole table before falling back.
	assert.Equal(t, 0, MatchStudent(models.StudentIdentity{FirstName: "Alex", LastName: "Smith"}, rows))
}

func TestMatchStudentUnresolved(t *testing.T) {
	rows := [][]string{
		{"alex", "smith"},
	}

	assert.Equal(t, -1, MatchStudent(models.StudentIdentity{FirstName: "Nobody", LastName: "Known"}, rows))
	assert.Equal(t, -1, MatchStudent(models.StudentIdentity{}, rows))
	assert.Equal(t, -1, MatchStudent(models.StudentIdentity{FirstName: "Alex"}, nil))
}

func TestMatchStudentFirstOccurrenceWins(t *testing.T) {
	// Two canonical rows share the same name: first in table order wins.
	// That is the current contract, not a bug.
	rows := [][]string{
		{"Jamie", "Park"},
		{"Jamie", "Park"},
		{"Jamie", "Quinn"},
	}

	assert.Equal(t, 0, MatchStudent(models.StudentIdentity{FirstName: "Jamie", LastName: "Park"}, rows))
	// First-name tier also takes the first occurrence.
	assert.Equal(t, 0, MatchStudent(models.StudentIdentity{FirstName: "Jamie", LastName: "Nguyen"}, rows))
}

func TestMatchStudentDeterministic(t *testing.T) {
	rows := [][]string{
		{"alex", "smith"},
		{"Jordan", "Lee"},
		{"Sam", "Okafor"},
	}
	identity := models.StudentIdentity{FirstName: "Jordan", LastName: "Lee"}

	want := MatchStudent(identity, rows)
	for i := 0; i < 50; i++ {
		assert.Equal(t, want, MatchStudent(identity, rows))
	}
}

func TestMatchStudentToleratesShortRows(t *testing.T) {
	rows := [][]string{
		{"alex"}, // excelize trims trailing blanks
		{},
	}

	assert.Equal(t, 0, MatchStudent(models.StudentIdentity{FirstName: "Alex"}, rows))
	// Missing last-name cell reads as blank, so the exact tier misses but
	// the first-name tier still resolves.
	assert.Equal(t, 0, MatchStudent(models.StudentIdentity{FirstName: "Alex", LastName: "Smith"}, rows))
	assert.Equal(t, -1, MatchStudent(models.StudentIdentity{FirstName: "Zoe", LastName: "Smith"}, rows))
}
