package tracker

import (
	"strings"

	"skilltrack-server-go/models"
)

// The tracker fits 17 skill rows in the primary block and 10 in the
// secondary block. Catalog entries beyond 27 are silently dropped; that is a
// documented limitation of the canvas, not an error.
const (
	primaryBlockRows   = PrimaryBlockBottom - PrimaryBlockTop + 1
	secondaryBlockRows = SecondaryBlockBottom - SecondaryBlockTop + 1
	maxSkillRows       = primaryBlockRows + secondaryBlockRows
)

// ProgramCode derives the two-character catalog prefix from a program name:
// the uppercased first character of the first word plus the first character
// of the second word. Single-word names fall back to their first character
// alone. "Stage 1" -> "S1".
func ProgramCode(program string) string {
	words := strings.Fields(program)
	if len(words) == 0 {
		return ""
	}
	code := strings.ToUpper(string([]rune(words[0])[0]))
	if len(words) > 1 {
		code += string([]rune(words[1])[0])
	}
	return code
}

// headerMatchers are the skill-column name matching strategies, evaluated in
// fixed priority order: exact, header contains name, name contains header.
// All tiers are case-insensitive. Identity matching (matcher.go) is separate
// and never uses these.
var headerMatchers = []func(header, name string) bool{
	func(header, name string) bool {
		return strings.EqualFold(header, name)
	},
	func(header, name string) bool {
		return strings.Contains(strings.ToLower(header), strings.ToLower(name))
	},
	func(header, name string) bool {
		return strings.Contains(strings.ToLower(name), strings.ToLower(header))
	},
}

// FindSkillColumn locates the canonical column whose header matches the
// given skill name, trying each matcher tier in turn across all headers
// before falling to the next tier. Returns the 0-based column index, or -1.
func FindSkillColumn(headers []string, name string) int {
	name = strings.TrimSpace(name)
	for _, match := range headerMatchers {
		for i, header := range headers {
			if match(strings.TrimSpace(header), name) {
				return i
			}
		}
	}
	return -1
}

// ResolveCatalog selects the subset of the canonical skill catalog that
// applies to a program: headers starting with the program code, in their
// original table order. The first 17 candidates land on the primary block
// rows, up to 10 more on the secondary block rows; anything beyond 27 is
// dropped. Zero matches yield an empty catalog, which callers render as
// "no skills for this class" and carry on.
func ResolveCatalog(program string, headers []string) []models.SkillDefinition {
	code := ProgramCode(program)
	if code == "" {
		return nil
	}

	var skills []models.SkillDefinition
	placed := 0
	for _, header := range headers {
		trimmed := strings.TrimSpace(header)
		if !strings.HasPrefix(trimmed, code) {
			continue
		}
		if placed >= maxSkillRows {
			break
		}
		col := FindSkillColumn(headers, trimmed)
		if col < 0 {
			continue
		}
		skills = append(skills, models.SkillDefinition{
			TrackerRow:   trackerRowFor(placed),
			CanonicalCol: col,
			DisplayName:  displayName(trimmed, code),
		})
		placed++
	}
	return skills
}

// trackerRowFor maps the ordinal position of a catalog candidate to its
// canvas row: positions 0-16 fill the primary block, 17-26 the secondary.
func trackerRowFor(position int) int {
	if position < primaryBlockRows {
		return PrimaryBlockTop + position
	}
	return SecondaryBlockTop + (position - primaryBlockRows)
}

// displayName strips the program-code prefix and any separator from a
// header: "S1 Front Float" -> "Front Float". Headers that are nothing but
// the code keep it as the name.
func displayName(header, code string) string {
	name := strings.TrimLeft(strings.TrimPrefix(header, code), " -:")
	if name == "" {
		return header
	}
	return name
}
