package validation

import (
	"strings"

	"github.com/outreachkit/prospector/internal/prospect"
	"go.uber.org/zap"
)

// Rejection reason codes. Rejections are expected outcomes, not errors; the
// codes make stage summaries diagnosable.
const (
	ReasonLowConnections  = "low_connections"
	ReasonRoleMismatch    = "role_mismatch"
	ReasonCompanyMismatch = "company_mismatch"
	ReasonTooFar          = "too_far"
)

// Location match bases recorded on the validation outcome.
const (
	LocationMatchCity     = "city"
	LocationMatchState    = "state"
	LocationMatchAdjacent = "adjacent_state"
	LocationMatchAbsent   = "no_location_data"
	LocationMatchDisabled = "disabled"
)

// MinConnections is the spam/low-signal account cutoff: profiles reporting
// fewer connections are rejected.
const MinConnections = 75

// Config controls the validator.
type Config struct {
	// MinConnections overrides the default cutoff when positive.
	MinConnections int
	// LocationFilter enables the geographic check. It is skipped entirely
	// when no target state is supplied.
	LocationFilter bool
}

// Validator applies the deterministic fit checks to fetched profiles.
type Validator struct {
	cfg    Config
	logger *zap.Logger
}

// New creates a Validator.
func New(cfg Config, logger *zap.Logger) *Validator {
	if cfg.MinConnections <= 0 {
		cfg.MinConnections = MinConnections
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Validator{cfg: cfg, logger: logger}
}

// Validate runs the ordered checks against a single prospect's profile and
// returns the outcome; it does not mutate the prospect. The first failing
// check wins. On pass the outcome carries the seniority score.
func (v *Validator) Validate(p *prospect.Prospect, company *prospect.Company) *prospect.ValidationOutcome {
	outcome := &prospect.ValidationOutcome{}
	profile := p.Profile
	if profile == nil {
		outcome.Reason = ReasonCompanyMismatch
		outcome.Detail = "no profile data"
		return outcome
	}

	if profile.Connections != nil {
		outcome.Connections = *profile.Connections
		if *profile.Connections < v.cfg.MinConnections {
			outcome.Reason = ReasonLowConnections
			outcome.Detail = "reported connections below cutoff"
			return outcome
		}
	}

	title := strings.ToLower(profile.Title)
	if containsToken(title, "intern") || containsToken(title, "student") {
		outcome.Reason = ReasonRoleMismatch
		outcome.Detail = "current title is intern or student"
		return outcome
	}

	basis, ok := MatchCompany(company.Name, profile.Company)
	if !ok {
		outcome.Reason = ReasonCompanyMismatch
		outcome.Detail = "employer " + profile.Company + " does not match " + company.Name
		return outcome
	}
	outcome.CompanyMatch = basis

	locBasis, ok := v.matchLocation(profile.Location, company)
	if !ok {
		outcome.Reason = ReasonTooFar
		outcome.Detail = "location " + profile.Location + " outside target area"
		return outcome
	}
	outcome.LocationMatch = locBasis

	outcome.Passed = true
	outcome.SeniorityScore = SeniorityScore(profile.Title, profile.YearsExperience, company.Authority)

	v.logger.Debug("prospect validated",
		zap.String("url", p.URL),
		zap.String("company_match", outcome.CompanyMatch),
		zap.String("location_match", outcome.LocationMatch),
		zap.Int("seniority_score", outcome.SeniorityScore),
	)

	return outcome
}

// matchLocation implements the geographic check. Absent location data passes:
// we give the candidate the benefit of the doubt rather than reject on a
// missing field.
func (v *Validator) matchLocation(location string, company *prospect.Company) (string, bool) {
	if !v.cfg.LocationFilter || strings.TrimSpace(company.State) == "" {
		return LocationMatchDisabled, true
	}

	location = strings.ToLower(strings.TrimSpace(location))
	if location == "" {
		return LocationMatchAbsent, true
	}

	if city := strings.ToLower(strings.TrimSpace(company.City)); city != "" && strings.Contains(location, city) {
		return LocationMatchCity, true
	}

	if stateInText(location, company.State) {
		return LocationMatchState, true
	}

	for _, adjacent := range AdjacentStates(company.State) {
		if stateInText(location, adjacent) {
			return LocationMatchAdjacent, true
		}
	}

	return "", false
}

func stateInText(text, state string) bool {
	for _, variant := range StateVariants(state) {
		if containsToken(text, strings.ToLower(variant)) {
			return true
		}
	}
	return false
}
