package pipeline

import "github.com/outreachkit/prospector/internal/prospect"

// Stage step tags for structured failures.
const (
	StepExpansion  = "expansion"
	StepSearch     = "search"
	StepPrefilter  = "prefilter"
	StepRelevance  = "relevance"
	StepFetch      = "fetch"
	StepValidation = "validation"
	StepRanking    = "ranking"
)

// StepCount reports candidate counts around one sub-step for observability.
type StepCount struct {
	Step   string `json:"step"`
	Before int    `json:"before"`
	After  int    `json:"after"`
}

// Result is the envelope shared by all stage outcomes. A stage never panics
// on an empty working set: exhaustion comes back as Success=false with the
// sub-step that emptied it.
type Result struct {
	Success bool        `json:"success"`
	Step    string      `json:"step,omitempty"`
	Error   string      `json:"error,omitempty"`
	Summary []StepCount `json:"summary"`
}

func failure(step, msg string, summary []StepCount) Result {
	return Result{Success: false, Step: step, Error: msg, Summary: summary}
}

// Stage1Result carries the relevance survivors into stage 2.
type Stage1Result struct {
	Result
	Prospects *prospect.List `json:"prospects,omitempty"`
}

// Stage2Result carries the validated candidates into stage 3 plus the
// per-candidate rejection reasons for diagnosability.
type Stage2Result struct {
	Result
	Prospects  *prospect.List    `json:"prospects,omitempty"`
	Rejections map[string]string `json:"rejections,omitempty"`
}

// Stage3Result is the final split: Qualified meets the minimum score,
// AllRanked holds every scored candidate for diagnostics.
type Stage3Result struct {
	Result
	Qualified []*prospect.Prospect `json:"qualified,omitempty"`
	AllRanked []*prospect.Prospect `json:"all_ranked,omitempty"`
}
