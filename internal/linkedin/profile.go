package linkedin

import (
	"net/url"
	"strings"
)

// Profile is the structured record returned by the profile fetch provider.
// Connections is a pointer because providers omit the field for accounts
// that hide their network size; absent is not the same as zero.
type Profile struct {
	URL             string   `json:"url"`
	Name            string   `json:"name"`
	Title           string   `json:"title"`
	Company         string   `json:"company"`
	Location        string   `json:"location"`
	Connections     *int     `json:"connections,omitempty"`
	Skills          []string `json:"skills,omitempty"`
	YearsExperience int      `json:"years_experience"`
}

// IsProfileURL reports whether the raw URL points at a public member profile.
func IsProfileURL(raw string) bool {
	_, ok := CanonicalProfileURL(raw)
	return ok
}

// CanonicalProfileURL normalizes a member profile URL so the same profile
// always maps to the same key: https scheme, lowercase host without the
// country subdomain, no query, fragment or trailing slash. The second return
// is false for anything that is not a /in/ profile page.
func CanonicalProfileURL(raw string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", false
	}

	host := strings.ToLower(u.Hostname())
	if host != "linkedin.com" && !strings.HasSuffix(host, ".linkedin.com") {
		return "", false
	}

	path := strings.TrimSuffix(u.EscapedPath(), "/")
	if !strings.HasPrefix(path, "/in/") || path == "/in" {
		return "", false
	}

	// Profile slugs are case-insensitive on the provider side.
	return "https://www.linkedin.com" + strings.ToLower(path), true
}
