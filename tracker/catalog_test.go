package tracker

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgramCode(t *testing.T) {
	tests := []struct {
		program string
		want    string
	}{
		{"Stage 1", "S1"},
		{"Stage 2", "S2"},
		{"Level 10", "L1"},
		{"Preschool", "P"},
		{"adults", "A"},
		{"  Stage   3  ", "S3"},
		{"", ""},
		{"   ", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ProgramCode(tt.program), "program=%q", tt.program)
	}
}

func TestFindSkillColumnTiers(t *testing.T) {
	headers := []string{"First Name", "Last Name", "S1 Front Float", "S1 Back Float"}

	// Tier 1: exact, case-insensitive.
	assert.Equal(t, 2, FindSkillColumn(headers, "s1 front float"))

	// Tier 2: header contains the target.
	assert.Equal(t, 3, FindSkillColumn(headers, "Back Float"))

	// Tier 3: target contains the header.
	assert.Equal(t, 2, FindSkillColumn(headers, "S1 Front Float (assisted)"))

	// Exact beats contains even when a contains-match comes earlier.
	assert.Equal(t, 3, FindSkillColumn([]string{"S1 Back Float Advanced", "S1 Front", "X", "S1 Back Float"}, "S1 Back Float"))

	assert.Equal(t, -1, FindSkillColumn(headers, "Butterfly"))
	assert.Equal(t, -1, FindSkillColumn(nil, "anything"))
}

func TestResolveCatalogBasic(t *testing.T) {
	headers := []string{"First Name", "Last Name", "S1 Front Float", "S2 Front Crawl", "S1 Back Float"}
	skills := ResolveCatalog("Stage 1", headers)

	require.Len(t, skills, 2)
	// Original table order is preserved.
	assert.Equal(t, PrimaryBlockTop, skills[0].TrackerRow)
	assert.Equal(t, 2, skills[0].CanonicalCol)
	assert.Equal(t, "Front Float", skills[0].DisplayName)
	assert.Equal(t, PrimaryBlockTop+1, skills[1].TrackerRow)
	assert.Equal(t, 4, skills[1].CanonicalCol)
	assert.Equal(t, "Back Float", skills[1].DisplayName)
}

func TestResolveCatalogNoMatches(t *testing.T) {
	headers := []string{"First Name", "Last Name", "S1 Front Float"}
	assert.Empty(t, ResolveCatalog("Zebra 9", headers))
	assert.Empty(t, ResolveCatalog("", headers))
	assert.Empty(t, ResolveCatalog("Stage 1", nil))
}

// catalogHeaders builds n distinct headers matching Stage 1 after the two
// identity columns.
func catalogHeaders(n int) []string {
	headers := []string{"First Name", "Last Name"}
	for i := 0; i < n; i++ {
		headers = append(headers, fmt.Sprintf("S1 Skill %02d", i+1))
	}
	return headers
}

func TestResolveCatalogSplitAtTwenty(t *testing.T) {
	skills := ResolveCatalog("Stage 1", catalogHeaders(20))
	require.Len(t, skills, 20)

	// First 17 fill the primary block rows 14..30.
	for i := 0; i < 17; i++ {
		assert.Equal(t, PrimaryBlockTop+i, skills[i].TrackerRow, "skill %d", i)
	}
	// Remaining 3 land on the secondary block rows 32..34.
	for i := 17; i < 20; i++ {
		assert.Equal(t, SecondaryBlockTop+(i-17), skills[i].TrackerRow, "skill %d", i)
	}
	assert.Equal(t, 34, skills[19].TrackerRow)
}

func TestResolveCatalogDropsBeyondTwentySeven(t *testing.T) {
	skills := ResolveCatalog("Stage 1", catalogHeaders(30))
	require.Len(t, skills, 27)
	assert.Equal(t, SecondaryBlockBottom, skills[26].TrackerRow)
	// The dropped three are the last in table order.
	assert.Equal(t, "Skill 27", skills[26].DisplayName)
}

func TestDisplayNameStripsPrefix(t *testing.T) {
	assert.Equal(t, "Front Float", displayName("S1 Front Float", "S1"))
	assert.Equal(t, "Front Float", displayName("S1-Front Float", "S1"))
	assert.Equal(t, "Front Float", displayName("S1: Front Float", "S1"))
	// A header that is nothing but the code keeps it.
	assert.Equal(t, "S1", displayName("S1", "S1"))
}
