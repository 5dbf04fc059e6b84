package ranking

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"strings"

	_ "embed"

	"github.com/outreachkit/prospector/internal/ai"
	"github.com/outreachkit/prospector/internal/batch"
	"github.com/outreachkit/prospector/internal/prospect"
	"go.uber.org/zap"
)

//go:embed prompt.md
var rankingPromptTemplate string

// fallbackReasoning is attached to every outcome produced without a model.
const fallbackReasoning = "ranking model unavailable; seniority score used instead"

// ErrAllScoringFailed is returned when a model is configured but not a single
// candidate could be scored. It is distinct from a valid zero-qualify result.
var ErrAllScoringFailed = errors.New("ranking: every scoring call failed")

// Engine scores validated candidates against the outreach rubric. With no
// scorer configured it degrades to the deterministic seniority score, so two
// runs over the same candidates always order identically.
type Engine struct {
	scorer    ai.Scorer
	workers   int
	rateLimit float64
	logger    *zap.Logger
}

func NewEngine(scorer ai.Scorer, workers int, rateLimit float64, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		scorer:    scorer,
		workers:   workers,
		rateLimit: rateLimit,
		logger:    logger,
	}
}

// Rank attaches a RankingOutcome to each candidate and returns the scored
// candidates sorted by score descending, URL ascending on ties. A candidate
// whose scoring call fails is dropped: an absent score cannot be compared, so
// it gets no benefit of the doubt here. The error is non-nil only when a model
// is configured and every call failed.
func (e *Engine) Rank(ctx context.Context, company *prospect.Company, list *prospect.List) (*prospect.List, error) {
	if list.Len() == 0 {
		return &prospect.List{}, nil
	}

	if e.scorer == nil {
		e.logger.Info("no ranking model configured, falling back to seniority scores")
		for _, p := range list.Items {
			p.Ranking = &prospect.RankingOutcome{
				Score:     float64(seniorityOf(p)),
				Reasoning: fallbackReasoning,
				Fallback:  true,
			}
		}
		return sortByScore(list.Items), nil
	}

	results := batch.Run(ctx, list.Items, batch.Options{Workers: e.workers, RateLimit: e.rateLimit},
		func(taskCtx context.Context, p *prospect.Prospect) (*prospect.RankingOutcome, error) {
			assessment, err := e.scorer.Score(taskCtx, buildRankingPrompt(company, p))
			if err != nil {
				return nil, err
			}
			return &prospect.RankingOutcome{
				Score:     assessment.Score,
				Reasoning: assessment.Reasoning,
			}, nil
		})

	scored := make([]*prospect.Prospect, 0, len(results))
	for _, res := range results {
		p := list.Items[res.Index]
		if res.Err != nil {
			e.logger.Warn("ranking call failed, dropping candidate",
				zap.String("url", p.URL),
				zap.Error(res.Err),
			)
			continue
		}

		p.Ranking = res.Value
		e.logger.Debug("candidate ranked",
			zap.String("url", p.URL),
			zap.Float64("score", p.Ranking.Score),
		)
		scored = append(scored, p)
	}

	if len(scored) == 0 {
		return &prospect.List{}, ErrAllScoringFailed
	}

	return sortByScore(scored), nil
}

func seniorityOf(p *prospect.Prospect) int {
	if p.Validation == nil {
		return 0
	}
	return p.Validation.SeniorityScore
}

func sortByScore(items []*prospect.Prospect) *prospect.List {
	sorted := make([]*prospect.Prospect, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].Ranking.Score, sorted[j].Ranking.Score
		if a != b {
			return a > b
		}
		return sorted[i].URL < sorted[j].URL
	})
	return &prospect.List{Items: sorted}
}

func buildRankingPrompt(company *prospect.Company, p *prospect.Prospect) string {
	companyName := ""
	if company != nil {
		companyName = company.Name
	}

	name, title, profileCompany, location, years, skills := p.Name, "", "", "", 0, []string(nil)
	if p.Profile != nil {
		if p.Profile.Name != "" {
			name = p.Profile.Name
		}
		title = p.Profile.Title
		profileCompany = p.Profile.Company
		location = p.Profile.Location
		years = p.Profile.YearsExperience
		skills = p.Profile.Skills
	}

	prompt := strings.ReplaceAll(rankingPromptTemplate, "{{COMPANY_NAME}}", companyName)
	prompt = strings.ReplaceAll(prompt, "{{ROLE}}", p.Role)
	prompt = strings.ReplaceAll(prompt, "{{NAME}}", name)
	prompt = strings.ReplaceAll(prompt, "{{TITLE}}", title)
	prompt = strings.ReplaceAll(prompt, "{{PROFILE_COMPANY}}", profileCompany)
	prompt = strings.ReplaceAll(prompt, "{{LOCATION}}", location)
	prompt = strings.ReplaceAll(prompt, "{{YEARS}}", strconv.Itoa(years))
	prompt = strings.ReplaceAll(prompt, "{{SKILLS}}", strings.Join(skills, ", "))
	return prompt
}
