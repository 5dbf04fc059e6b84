package validation

import (
	"testing"

	"github.com/outreachkit/prospector/internal/linkedin"
	"github.com/outreachkit/prospector/internal/prospect"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func intPtr(n int) *int { return &n }

func validProspect() *prospect.Prospect {
	return &prospect.Prospect{
		URL: "https://www.linkedin.com/in/jane-doe",
		Profile: &linkedin.Profile{
			Name:            "Jane Doe",
			Title:           "Director of Facilities",
			Company:         "Mayo Clinic",
			Location:        "Rochester, Minnesota",
			Connections:     intPtr(200),
			YearsExperience: 8,
		},
	}
}

func mayo() *prospect.Company {
	return &prospect.Company{Name: "Mayo Clinic", City: "Rochester", State: "Minnesota"}
}

func TestValidatePasses(t *testing.T) {
	v := New(Config{LocationFilter: true}, zap.NewNop())

	outcome := v.Validate(validProspect(), mayo())

	require.True(t, outcome.Passed)
	require.Empty(t, outcome.Reason)
	require.Equal(t, CompanyMatchExact, outcome.CompanyMatch)
	require.Equal(t, LocationMatchCity, outcome.LocationMatch)
	// director base 70 + 10 for >=5 years.
	require.Equal(t, 80, outcome.SeniorityScore)
}

func TestValidateConnectionsBoundary(t *testing.T) {
	v := New(Config{}, zap.NewNop())

	p := validProspect()
	p.Profile.Connections = intPtr(74)
	outcome := v.Validate(p, mayo())
	require.False(t, outcome.Passed)
	require.Equal(t, ReasonLowConnections, outcome.Reason)

	p = validProspect()
	p.Profile.Connections = intPtr(75)
	outcome = v.Validate(p, mayo())
	require.True(t, outcome.Passed)

	// Absent connections never reject on this check alone.
	p = validProspect()
	p.Profile.Connections = nil
	outcome = v.Validate(p, mayo())
	require.True(t, outcome.Passed)
}

func TestValidateRoleSanity(t *testing.T) {
	v := New(Config{}, zap.NewNop())

	p := validProspect()
	p.Profile.Title = "Facilities Intern"
	outcome := v.Validate(p, mayo())
	require.False(t, outcome.Passed)
	require.Equal(t, ReasonRoleMismatch, outcome.Reason)

	// "Internal" must not trip the intern check.
	p = validProspect()
	p.Profile.Title = "Director of Internal Audit"
	outcome = v.Validate(p, mayo())
	require.True(t, outcome.Passed)
}

func TestValidateCompanyMismatch(t *testing.T) {
	v := New(Config{}, zap.NewNop())

	p := validProspect()
	p.Profile.Company = "Cleveland Clinic"
	outcome := v.Validate(p, mayo())
	require.False(t, outcome.Passed)
	require.Equal(t, ReasonCompanyMismatch, outcome.Reason)
}

func TestValidateSubsidiaryCompanyMatches(t *testing.T) {
	v := New(Config{}, zap.NewNop())

	p := validProspect()
	p.Profile.Company = "Mayo Clinic Health System — Rochester"
	outcome := v.Validate(p, mayo())
	require.True(t, outcome.Passed)
	require.Equal(t, CompanyMatchSharedWord, outcome.CompanyMatch)
}

func TestValidateLocation(t *testing.T) {
	cases := []struct {
		name     string
		location string
		passes   bool
		basis    string
	}{
		{"city match", "Greater Rochester Area", true, LocationMatchCity},
		{"state full name", "Minneapolis, Minnesota", true, LocationMatchState},
		{"state abbreviation", "Duluth, MN", true, LocationMatchState},
		{"adjacent state", "Madison, Wisconsin", true, LocationMatchAdjacent},
		{"absent location passes", "", true, LocationMatchAbsent},
		{"far away", "Austin, Texas", false, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v := New(Config{LocationFilter: true}, zap.NewNop())

			p := validProspect()
			p.Profile.Location = tc.location
			outcome := v.Validate(p, mayo())

			require.Equal(t, tc.passes, outcome.Passed)
			if tc.passes {
				require.Equal(t, tc.basis, outcome.LocationMatch)
			} else {
				require.Equal(t, ReasonTooFar, outcome.Reason)
			}
		})
	}
}

func TestValidateLocationFilterDisabled(t *testing.T) {
	v := New(Config{LocationFilter: false}, zap.NewNop())

	p := validProspect()
	p.Profile.Location = "Austin, Texas"
	outcome := v.Validate(p, mayo())

	require.True(t, outcome.Passed)
	require.Equal(t, LocationMatchDisabled, outcome.LocationMatch)
}

func TestValidateNoTargetStateSkipsLocation(t *testing.T) {
	v := New(Config{LocationFilter: true}, zap.NewNop())

	p := validProspect()
	p.Profile.Location = "Austin, Texas"
	outcome := v.Validate(p, &prospect.Company{Name: "Mayo Clinic"})

	require.True(t, outcome.Passed)
}

func TestValidateChecksOrdered(t *testing.T) {
	v := New(Config{LocationFilter: true}, zap.NewNop())

	// Fails both connections and company; connections is reported because
	// it is checked first.
	p := validProspect()
	p.Profile.Connections = intPtr(10)
	p.Profile.Company = "Cleveland Clinic"
	outcome := v.Validate(p, mayo())
	require.Equal(t, ReasonLowConnections, outcome.Reason)
}

func TestMatchCompany(t *testing.T) {
	cases := []struct {
		target    string
		candidate string
		basis     string
		ok        bool
	}{
		{"Mayo Clinic", "Mayo Clinic", CompanyMatchExact, true},
		{"Mayo Clinic", "mayo clinic", CompanyMatchExact, true},
		{"Mercy Medical Center", "Mercy Hospital", CompanyMatchSuffix, true},
		{"Mayo Clinic", "Mayo Clinic Health System — Rochester", CompanyMatchSharedWord, true},
		{"Mayo Clinic", "Cleveland Clinic", "", false},
		{"Mayo Clinic", "", "", false},
		{"St. Luke's Hospital", "St. Luke's Health System", CompanyMatchSuffix, true},
	}

	for _, tc := range cases {
		basis, ok := MatchCompany(tc.target, tc.candidate)
		require.Equal(t, tc.ok, ok, "%s vs %s", tc.target, tc.candidate)
		require.Equal(t, tc.basis, basis, "%s vs %s", tc.target, tc.candidate)
	}
}

func TestSeniorityScore(t *testing.T) {
	cases := []struct {
		title     string
		years     int
		authority float64
		want      int
	}{
		{"Chief Executive Officer", 0, 0, 100},
		{"CFO", 0, 0, 95},
		{"Vice President of Operations", 0, 0, 80},
		{"President", 0, 0, 85},
		{"Director of Facilities", 0, 0, 70},
		{"Facilities Manager", 0, 0, 50},
		{"Senior Analyst", 0, 0, 45},
		{"Maintenance Coordinator", 0, 0, 35},
		{"Groundskeeper", 0, 0, 20},
		{"Director of Facilities", 10, 0, 85},
		{"Director of Facilities", 5, 0, 80},
		{"Director of Facilities", 3, 0, 75},
		{"Director of Facilities", 2, 0, 70},
		{"Director of Facilities", 0, 1.0, 85},
		{"Director of Facilities", 0, 0.5, 78},
		// Cap at 100.
		{"CEO", 10, 1.0, 100},
	}

	for _, tc := range cases {
		got := SeniorityScore(tc.title, tc.years, tc.authority)
		require.Equal(t, tc.want, got, "%s / %dy / %v", tc.title, tc.years, tc.authority)
	}
}

func TestSeniorityScoreDeterministic(t *testing.T) {
	first := SeniorityScore("VP of Engineering", 7, 0.3)
	for i := 0; i < 5; i++ {
		require.Equal(t, first, SeniorityScore("VP of Engineering", 7, 0.3))
	}
}

func TestStateVariants(t *testing.T) {
	variants := StateVariants("Minnesota")
	require.Contains(t, variants, "MN")
	require.Contains(t, variants, "minnesota")

	variants = StateVariants("mn")
	require.Contains(t, variants, "MN")

	require.Equal(t, []string{"Bavaria"}, StateVariants("Bavaria"))
	require.Nil(t, StateVariants("  "))
}

func TestAdjacentStates(t *testing.T) {
	require.Contains(t, AdjacentStates("Minnesota"), "WI")
	require.Contains(t, AdjacentStates("DC"), "MD")
	require.Nil(t, AdjacentStates("nowhere"))
}
