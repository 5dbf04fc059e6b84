package ranking

import "github.com/outreachkit/prospector/internal/prospect"

const (
	// DefaultMaxProspects caps the selected set.
	DefaultMaxProspects = 8
	// DefaultMinScore is the qualifying threshold applied after selection.
	DefaultMinScore = 65
)

// Selection is the final stage-3 split. AllRanked always contains every
// scored candidate; Qualified is the selected subset meeting the threshold.
type Selection struct {
	Qualified []*prospect.Prospect `json:"qualified"`
	AllRanked []*prospect.Prospect `json:"all_ranked"`
}

// Select walks the ranked list in score order, keeps the first candidate seen
// for each distinct role archetype up to maxProspects, and assigns rank
// positions 1..k over that selected set. The minimum score then splits
// Qualified from the diagnostics-only remainder. Candidates left unselected
// keep a zero rank.
func Select(ranked *prospect.List, maxProspects int, minScore float64) Selection {
	if maxProspects <= 0 {
		maxProspects = DefaultMaxProspects
	}

	selected := make([]*prospect.Prospect, 0, maxProspects)
	seen := make(map[string]bool)

	for _, p := range ranked.Items {
		if len(selected) == maxProspects {
			break
		}
		if p.Ranking == nil || seen[p.Role] {
			continue
		}
		seen[p.Role] = true
		selected = append(selected, p)
	}

	qualified := make([]*prospect.Prospect, 0, len(selected))
	for i, p := range selected {
		p.Ranking.Rank = i + 1
		if p.Ranking.Score >= minScore {
			qualified = append(qualified, p)
		}
	}

	return Selection{
		Qualified: qualified,
		AllRanked: ranked.Items,
	}
}
