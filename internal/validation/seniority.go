package validation

import (
	"math"
	"strings"
)

// titleScores maps title keywords to base seniority scores. Order matters:
// the first matching entry wins, so more specific phrases come first.
var titleScores = []struct {
	Keyword string
	Score   int
}{
	{"chief executive officer", 100},
	{"ceo", 100},
	{"chief financial officer", 95},
	{"cfo", 95},
	{"chief operating officer", 95},
	{"coo", 95},
	{"chief", 90},
	{"vice president", 80},
	{"vp", 80},
	{"president", 85},
	{"director", 70},
	{"head", 65},
	{"lead", 60},
	{"principal", 50},
	{"manager", 50},
	{"senior", 45},
	{"supervisor", 40},
	{"coordinator", 35},
	{"specialist", 30},
	{"analyst", 25},
}

const defaultTitleScore = 20

// SeniorityScore computes the deterministic 0-100 seniority signal from the
// candidate's title, years of experience, and the externally supplied
// authority signal (0..1). It doubles as the ranking fallback when the
// scoring model is unavailable.
func SeniorityScore(title string, yearsExperience int, authority float64) int {
	score := titleScore(title)

	switch {
	case yearsExperience >= 10:
		score += 15
	case yearsExperience >= 5:
		score += 10
	case yearsExperience >= 3:
		score += 5
	}

	if authority > 0 {
		score += int(math.Round(math.Min(authority, 1) * 15))
	}

	if score > 100 {
		score = 100
	}
	return score
}

func titleScore(title string) int {
	title = strings.ToLower(title)
	for _, entry := range titleScores {
		if containsToken(title, entry.Keyword) {
			return entry.Score
		}
	}
	return defaultTitleScore
}
