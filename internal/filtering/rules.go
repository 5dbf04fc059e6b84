package filtering

import (
	"context"
	"regexp"
	"strings"

	"github.com/outreachkit/prospector/internal/prospect"
	"github.com/outreachkit/prospector/internal/validation"
)

// exclusionPatterns reject hits that can never be outreach targets. The
// former-employee phrasing is handled separately because it depends on the
// organization name.
var exclusionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\bintern(ship)?\b`),
	regexp.MustCompile(`\bstudent\b`),
	regexp.MustCompile(`\bgraduate\b`),
	regexp.MustCompile(`\bentry[- ]level\b`),
}

var formerPattern = regexp.MustCompile(`\b(former|formerly|previously|ex)[\s-]`)

// seniorityKeywords accept a hit even without an organization mention.
var seniorityKeywords = []string{
	"director",
	"manager",
	"vp",
	"vice president",
	"cfo",
	"coo",
	"ceo",
	"chief",
	"head",
	"lead",
	"senior",
	"principal",
	"supervisor",
}

type rulesFilter struct {
	disabled bool
	reason   string
}

// NewRules creates the deterministic prefilter step. It cheaply removes
// obvious noise and leaves the real call to the relevance classifier.
func NewRules() Filter {
	return &rulesFilter{}
}

func (f *rulesFilter) Name() string { return "rules" }

func (f *rulesFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *rulesFilter) IsEnabled() bool { return !f.disabled }

func (f *rulesFilter) Apply(_ context.Context, deps Deps, list *prospect.List) (*prospect.List, Step, error) {
	initial := list.Len()

	for _, p := range list.Items {
		p.Prefilter = evaluateHit(p.Hit, deps.Company)
	}

	kept := list.Keep(func(p *prospect.Prospect) bool {
		return p.Prefilter != nil && p.Prefilter.Passed
	})

	return kept, Step{Initial: initial, Dropped: initial - kept.Len(), Left: kept.Len()}, nil
}

func (f *rulesFilter) Status() Status {
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason}
}

func evaluateHit(hit *prospect.SearchHit, company *prospect.Company) *prospect.PrefilterOutcome {
	outcome := &prospect.PrefilterOutcome{}
	if hit == nil {
		return outcome
	}

	text := strings.ToLower(strings.TrimSpace(hit.Title + " " + hit.Snippet))
	orgName := ""
	state := ""
	if company != nil {
		orgName = strings.ToLower(strings.TrimSpace(company.Name))
		state = company.State
	}

	outcome.LocationAffinity = locationAffinity(text, state)

	for _, pattern := range exclusionPatterns {
		if match := pattern.FindString(text); match != "" {
			outcome.Signals = append(outcome.Signals, "excluded:"+match)
			return outcome
		}
	}

	if formerPattern.MatchString(text) && mentionsOrganization(text, orgName) {
		outcome.Signals = append(outcome.Signals, "excluded:former employee")
		return outcome
	}

	for _, keyword := range seniorityKeywords {
		if containsWord(text, keyword) {
			outcome.Signals = append(outcome.Signals, "seniority:"+keyword)
		}
	}

	if mentionsOrganization(text, orgName) {
		outcome.Signals = append(outcome.Signals, "organization mention")
	}

	outcome.Passed = len(outcome.Signals) > 0
	return outcome
}

// mentionsOrganization reports whether the text contains the full
// organization name or any of its words longer than three characters.
func mentionsOrganization(text, orgName string) bool {
	if orgName == "" {
		return false
	}
	if strings.Contains(text, orgName) {
		return true
	}
	for _, word := range strings.Fields(orgName) {
		if len(word) > 3 && strings.Contains(text, word) {
			return true
		}
	}
	return false
}

// locationAffinity scores how strongly the hit text suggests the target
// state: 100 on a literal state name or abbreviation match, 50 when no state
// was supplied, 25 otherwise. Advisory metadata only.
func locationAffinity(text, state string) int {
	if strings.TrimSpace(state) == "" {
		return 50
	}
	for _, variant := range validation.StateVariants(state) {
		if containsWord(text, strings.ToLower(variant)) {
			return 100
		}
	}
	return 25
}

func containsWord(text, word string) bool {
	idx := 0
	for {
		rel := strings.Index(text[idx:], word)
		if rel < 0 {
			return false
		}
		start := idx + rel
		end := start + len(word)
		beforeOK := start == 0 || !isWordChar(text[start-1])
		afterOK := end == len(text) || !isWordChar(text[end])
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
	}
}

func isWordChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}
