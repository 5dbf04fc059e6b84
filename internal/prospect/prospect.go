package prospect

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/outreachkit/prospector/internal/linkedin"
)

// Company is the search and validation context for one pipeline invocation.
// It is created once and read-only thereafter.
type Company struct {
	Name    string  `json:"name"`
	Website string  `json:"website,omitempty"`
	City    string  `json:"city,omitempty"`
	State   string  `json:"state,omitempty"`
	// Authority is an externally supplied 0..1 signal folded into the
	// seniority score. Zero when the caller has no signal.
	Authority float64 `json:"authority,omitempty"`
}

// SearchHit is a raw, immutable search result. Hits are deduplicated by
// canonical URL across all query variants; the first-seen metadata wins.
type SearchHit struct {
	Title    string `json:"title"`
	Snippet  string `json:"snippet"`
	URL      string `json:"url"`
	Query    string `json:"query"`
	Role     string `json:"role"`
	Position int    `json:"position"`
}

// Prospect is the single aggregate that flows through all pipeline stages.
// Annotations only accumulate: a stage adds its own outcome and never touches
// another stage's.
type Prospect struct {
	URL  string `json:"url"`
	Name string `json:"name,omitempty"`
	// Role is the target-role archetype label carried from the originating
	// search query, used for the final best-per-archetype selection.
	Role string     `json:"role"`
	Hit  *SearchHit `json:"hit,omitempty"`

	Prefilter  *PrefilterOutcome  `json:"prefilter,omitempty"`
	Relevance  *RelevanceOutcome  `json:"relevance,omitempty"`
	Profile    *linkedin.Profile  `json:"profile,omitempty"`
	Validation *ValidationOutcome `json:"validation,omitempty"`
	Ranking    *RankingOutcome    `json:"ranking,omitempty"`
}

// PrefilterOutcome records the rule prefilter decision.
type PrefilterOutcome struct {
	Passed bool `json:"passed"`
	// Signals lists the matched inclusion or exclusion keywords.
	Signals []string `json:"signals,omitempty"`
	// LocationAffinity is advisory only: 100 on a state match in the hit
	// text, 50 when no target state was supplied, 25 otherwise.
	LocationAffinity int `json:"location_affinity"`
}

// RelevanceOutcome records the AI title-relevance classification.
type RelevanceOutcome struct {
	Score     float64 `json:"score"`
	Reasoning string  `json:"reasoning,omitempty"`
	Passed    bool    `json:"passed"`
	// KeptByDefault marks candidates kept because the provider call failed,
	// not because they scored above the threshold.
	KeptByDefault bool   `json:"kept_by_default,omitempty"`
	Error         string `json:"error,omitempty"`
}

// ValidationOutcome records the deterministic fit validation of stage 2.
type ValidationOutcome struct {
	Passed bool `json:"passed"`
	// Reason is a machine-readable rejection code, empty on pass.
	Reason string `json:"reason,omitempty"`
	Detail string `json:"detail,omitempty"`

	SeniorityScore int    `json:"seniority_score"`
	CompanyMatch   string `json:"company_match,omitempty"`
	LocationMatch  string `json:"location_match,omitempty"`
	Connections    int    `json:"connections,omitempty"`
}

// RankingOutcome records the final AI (or fallback) ranking of stage 3.
type RankingOutcome struct {
	Score     float64 `json:"score"`
	Reasoning string  `json:"reasoning,omitempty"`
	// Fallback marks scores derived from the seniority score because the
	// ranking model was unavailable.
	Fallback bool `json:"fallback,omitempty"`
	// Rank is the 1-based position within the selected set, zero before
	// selection and for unselected candidates.
	Rank int `json:"rank,omitempty"`
}

// List is an ordered working set of prospects.
type List struct {
	Items []*Prospect `json:"items"`
}

// FromHits builds the initial working list from deduplicated search hits.
func FromHits(hits []*SearchHit) *List {
	items := make([]*Prospect, 0, len(hits))
	for _, hit := range hits {
		items = append(items, &Prospect{
			URL:  hit.URL,
			Role: hit.Role,
			Hit:  hit,
		})
	}
	return &List{Items: items}
}

func (l *List) Len() int {
	if l == nil {
		return 0
	}
	return len(l.Items)
}

func (l *List) URLs() []string {
	urls := make([]string, 0, len(l.Items))
	for _, p := range l.Items {
		urls = append(urls, p.URL)
	}
	return urls
}

func (l *List) FindByURL(url string) *Prospect {
	for _, p := range l.Items {
		if p.URL == url {
			return p
		}
	}
	return nil
}

// Keep returns a new list holding only prospects the predicate accepts,
// preserving order. The receiver is not modified.
func (l *List) Keep(pred func(*Prospect) bool) *List {
	kept := make([]*Prospect, 0, len(l.Items))
	for _, p := range l.Items {
		if pred(p) {
			kept = append(kept, p)
		}
	}
	return &List{Items: kept}
}

// ReportByRole groups prospect summaries by role archetype for display.
func (l *List) ReportByRole() map[string][]map[string]string {
	report := make(map[string][]map[string]string)
	for _, p := range l.Items {
		entry := map[string]string{
			"url":  p.URL,
			"name": p.Name,
		}
		if p.Relevance != nil {
			entry["relevance_score"] = fmt.Sprintf("%.0f", p.Relevance.Score)
		}
		if p.Validation != nil {
			entry["seniority_score"] = fmt.Sprintf("%d", p.Validation.SeniorityScore)
		}
		if p.Ranking != nil {
			entry["ranking_score"] = fmt.Sprintf("%.0f", p.Ranking.Score)
			if p.Ranking.Rank > 0 {
				entry["rank"] = fmt.Sprintf("%d", p.Ranking.Rank)
			}
		}
		report[p.Role] = append(report[p.Role], entry)
	}
	return report
}

// DumpToTmpFile writes the list to a temporary JSON file for diagnostics.
func (l *List) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "prospects_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(l); err != nil {
		return "", err
	}
	return file.Name(), nil
}

// SaveFile persists the list as the state handed to the next stage.
func (l *List) SaveFile(path string) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	return enc.Encode(l)
}

// LoadFile restores a list persisted by a previous stage invocation.
func LoadFile(path string) (*List, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var list List
	if err := json.NewDecoder(file).Decode(&list); err != nil {
		return nil, fmt.Errorf("decoding prospects from %s: %w", path, err)
	}
	return &list, nil
}
