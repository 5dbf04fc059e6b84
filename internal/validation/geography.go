package validation

import "strings"

// stateAbbreviations maps lowercase full state names to their postal codes.
var stateAbbreviations = map[string]string{
	"alabama": "AL", "alaska": "AK", "arizona": "AZ", "arkansas": "AR",
	"california": "CA", "colorado": "CO", "connecticut": "CT", "delaware": "DE",
	"florida": "FL", "georgia": "GA", "hawaii": "HI", "idaho": "ID",
	"illinois": "IL", "indiana": "IN", "iowa": "IA", "kansas": "KS",
	"kentucky": "KY", "louisiana": "LA", "maine": "ME", "maryland": "MD",
	"massachusetts": "MA", "michigan": "MI", "minnesota": "MN", "mississippi": "MS",
	"missouri": "MO", "montana": "MT", "nebraska": "NE", "nevada": "NV",
	"new hampshire": "NH", "new jersey": "NJ", "new mexico": "NM", "new york": "NY",
	"north carolina": "NC", "north dakota": "ND", "ohio": "OH", "oklahoma": "OK",
	"oregon": "OR", "pennsylvania": "PA", "rhode island": "RI", "south carolina": "SC",
	"south dakota": "SD", "tennessee": "TN", "texas": "TX", "utah": "UT",
	"vermont": "VT", "virginia": "VA", "washington": "WA", "west virginia": "WV",
	"wisconsin": "WI", "wyoming": "WY", "district of columbia": "DC",
}

// adjacentStates maps a postal code to bordering states plus shared
// metro areas that commonly cross the line (e.g. NYC, DC, Kansas City).
var adjacentStates = map[string][]string{
	"AL": {"FL", "GA", "MS", "TN"},
	"AR": {"LA", "MO", "MS", "OK", "TN", "TX"},
	"AZ": {"CA", "CO", "NM", "NV", "UT"},
	"CA": {"AZ", "NV", "OR"},
	"CO": {"AZ", "KS", "NE", "NM", "OK", "UT", "WY"},
	"CT": {"MA", "NY", "RI"},
	"DC": {"MD", "VA"},
	"DE": {"MD", "NJ", "PA"},
	"FL": {"AL", "GA"},
	"GA": {"AL", "FL", "NC", "SC", "TN"},
	"IA": {"IL", "MN", "MO", "NE", "SD", "WI"},
	"ID": {"MT", "NV", "OR", "UT", "WA", "WY"},
	"IL": {"IA", "IN", "KY", "MO", "WI"},
	"IN": {"IL", "KY", "MI", "OH"},
	"KS": {"CO", "MO", "NE", "OK"},
	"KY": {"IL", "IN", "MO", "OH", "TN", "VA", "WV"},
	"LA": {"AR", "MS", "TX"},
	"MA": {"CT", "NH", "NY", "RI", "VT"},
	"MD": {"DC", "DE", "PA", "VA", "WV"},
	"ME": {"NH"},
	"MI": {"IN", "OH", "WI"},
	"MN": {"IA", "ND", "SD", "WI"},
	"MO": {"AR", "IA", "IL", "KS", "KY", "NE", "OK", "TN"},
	"MS": {"AL", "AR", "LA", "TN"},
	"MT": {"ID", "ND", "SD", "WY"},
	"NC": {"GA", "SC", "TN", "VA"},
	"ND": {"MN", "MT", "SD"},
	"NE": {"CO", "IA", "KS", "MO", "SD", "WY"},
	"NH": {"MA", "ME", "VT"},
	"NJ": {"DE", "NY", "PA"},
	"NM": {"AZ", "CO", "OK", "TX", "UT"},
	"NV": {"AZ", "CA", "ID", "OR", "UT"},
	"NY": {"CT", "MA", "NJ", "PA", "VT"},
	"OH": {"IN", "KY", "MI", "PA", "WV"},
	"OK": {"AR", "CO", "KS", "MO", "NM", "TX"},
	"OR": {"CA", "ID", "NV", "WA"},
	"PA": {"DE", "MD", "NJ", "NY", "OH", "WV"},
	"RI": {"CT", "MA"},
	"SC": {"GA", "NC"},
	"SD": {"IA", "MN", "MT", "ND", "NE", "WY"},
	"TN": {"AL", "AR", "GA", "KY", "MO", "MS", "NC", "VA"},
	"TX": {"AR", "LA", "NM", "OK"},
	"UT": {"AZ", "CO", "ID", "NM", "NV", "WY"},
	"VA": {"DC", "KY", "MD", "NC", "TN", "WV"},
	"VT": {"MA", "NH", "NY"},
	"WA": {"ID", "OR"},
	"WI": {"IA", "IL", "MI", "MN"},
	"WV": {"KY", "MD", "OH", "PA", "VA"},
	"WY": {"CO", "ID", "MT", "NE", "SD", "UT"},
}

// normalizeState returns the postal code for a state given either its full
// name or abbreviation, and whether it was recognized.
func normalizeState(state string) (string, bool) {
	state = strings.TrimSpace(state)
	if state == "" {
		return "", false
	}

	if len(state) == 2 {
		upper := strings.ToUpper(state)
		for _, abbrev := range stateAbbreviations {
			if abbrev == upper {
				return upper, true
			}
		}
		return "", false
	}

	if abbrev, ok := stateAbbreviations[strings.ToLower(state)]; ok {
		return abbrev, true
	}
	return "", false
}

// StateVariants returns every literal a text may use for the given state:
// the full name and the postal abbreviation. Unrecognized input is returned
// as-is so callers can still do a literal match.
func StateVariants(state string) []string {
	abbrev, ok := normalizeState(state)
	if !ok {
		trimmed := strings.TrimSpace(state)
		if trimmed == "" {
			return nil
		}
		return []string{trimmed}
	}

	variants := []string{abbrev}
	for name, code := range stateAbbreviations {
		if code == abbrev {
			variants = append(variants, name)
		}
	}
	return variants
}

// AdjacentStates returns the postal codes of states considered close enough
// for outreach targeting, per the adjacency table.
func AdjacentStates(state string) []string {
	abbrev, ok := normalizeState(state)
	if !ok {
		return nil
	}
	return adjacentStates[abbrev]
}
