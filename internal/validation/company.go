package validation

import "strings"

// Company match bases recorded on the validation outcome.
const (
	CompanyMatchExact      = "exact"
	CompanyMatchSuffix     = "suffix_stripped"
	CompanyMatchSharedWord = "shared_leading_word"
)

// organizationSuffixes are descriptive or legal endings stripped from both
// sides before comparing company names.
var organizationSuffixes = []string{
	"regional medical center",
	"medical center",
	"health system",
	"healthcare system",
	"healthcare",
	"health",
	"hospital",
	"clinic",
	"group",
	"inc",
	"llc",
	"corp",
	"corporation",
}

// MatchCompany reports whether the candidate's employer plausibly is the
// target organization, and on which basis. The shared-leading-word rule
// captures divisions and subsidiaries: a flagship hospital named after its
// parent health system still matches.
func MatchCompany(target, candidate string) (string, bool) {
	target = normalizeCompany(target)
	candidate = normalizeCompany(candidate)
	if target == "" || candidate == "" {
		return "", false
	}

	if target == candidate {
		return CompanyMatchExact, true
	}

	strippedTarget := stripSuffixes(target)
	strippedCandidate := stripSuffixes(candidate)
	if strippedTarget != "" && strippedTarget == strippedCandidate {
		return CompanyMatchSuffix, true
	}

	if leading := leadingWord(target); leading != "" && containsToken(candidate, leading) {
		return CompanyMatchSharedWord, true
	}

	return "", false
}

func normalizeCompany(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.Trim(name, ".,")
	return strings.Join(strings.Fields(name), " ")
}

func stripSuffixes(name string) string {
	for changed := true; changed; {
		changed = false
		for _, suffix := range organizationSuffixes {
			if strings.HasSuffix(name, " "+suffix) {
				name = strings.TrimSpace(strings.TrimSuffix(name, " "+suffix))
				changed = true
			}
		}
	}
	return name
}

// leadingWord returns the first word of the name when it is long enough to
// be a meaningful identifier.
func leadingWord(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return ""
	}
	if len(fields[0]) > 3 {
		return fields[0]
	}
	return ""
}

// containsToken reports whether word occurs in text on word boundaries.
func containsToken(text, word string) bool {
	idx := 0
	for {
		rel := strings.Index(text[idx:], word)
		if rel < 0 {
			return false
		}
		start := idx + rel
		end := start + len(word)
		beforeOK := start == 0 || !isTokenChar(text[start-1])
		afterOK := end == len(text) || !isTokenChar(text[end])
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
	}
}

func isTokenChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}
