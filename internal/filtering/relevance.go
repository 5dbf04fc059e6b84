package filtering

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	_ "embed"

	"github.com/outreachkit/prospector/internal/batch"
	"github.com/outreachkit/prospector/internal/prospect"
	"go.uber.org/zap"
)

//go:embed relevance_prompt.md
var relevancePromptTemplate string

// DefaultRelevanceThreshold is the minimum title-relevance score to keep a
// candidate.
const DefaultRelevanceThreshold = 55

type relevanceFilter struct {
	disabled  bool
	reason    string
	threshold float64
	workers   int
	rateLimit float64
}

// NewRelevance creates the AI title-relevance step. Every candidate is
// scored concurrently; a failed call keeps its candidate rather than drop a
// possibly good contact on a transient provider error.
func NewRelevance(threshold float64, workers int, rateLimit float64) Filter {
	if threshold <= 0 {
		threshold = DefaultRelevanceThreshold
	}
	return &relevanceFilter{
		threshold: threshold,
		workers:   workers,
		rateLimit: rateLimit,
	}
}

func (f *relevanceFilter) Name() string { return "relevance" }

func (f *relevanceFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *relevanceFilter) IsEnabled() bool { return !f.disabled }

func (f *relevanceFilter) Apply(ctx context.Context, deps Deps, list *prospect.List) (*prospect.List, Step, error) {
	initial := list.Len()

	if deps.Scorer == nil {
		if deps.Logger != nil {
			deps.Logger.Info("scorer is not configured; skipping relevance filter")
		}
		return list, Step{Initial: initial, Dropped: 0, Left: initial}, nil
	}

	results := batch.Run(ctx, list.Items, batch.Options{Workers: f.workers, RateLimit: f.rateLimit},
		func(taskCtx context.Context, p *prospect.Prospect) (*prospect.RelevanceOutcome, error) {
			assessment, err := deps.Scorer.Score(taskCtx, buildRelevancePrompt(deps.Company, p))
			if err != nil {
				return nil, err
			}
			return &prospect.RelevanceOutcome{
				Score:     assessment.Score,
				Reasoning: assessment.Reasoning,
				Passed:    assessment.Score >= f.threshold,
			}, nil
		})

	for _, res := range results {
		p := list.Items[res.Index]
		if res.Err != nil {
			// Benefit of the doubt: a provider failure keeps the candidate.
			p.Relevance = &prospect.RelevanceOutcome{
				Passed:        true,
				KeptByDefault: true,
				Error:         res.Err.Error(),
			}
			if deps.Logger != nil {
				deps.Logger.Warn("relevance scoring failed, keeping candidate",
					zap.String("url", p.URL),
					zap.Error(res.Err),
				)
			}
			continue
		}

		p.Relevance = res.Value
		if deps.Logger != nil {
			deps.Logger.Debug("relevance scored",
				zap.String("url", p.URL),
				zap.Float64("score", p.Relevance.Score),
				zap.Bool("passed", p.Relevance.Passed),
			)
		}
	}

	kept := list.Keep(func(p *prospect.Prospect) bool {
		return p.Relevance != nil && p.Relevance.Passed
	})

	return kept, Step{Initial: initial, Dropped: initial - kept.Len(), Left: kept.Len()}, nil
}

func (f *relevanceFilter) Status() Status {
	return Status{
		Name:    f.Name(),
		Enabled: f.IsEnabled(),
		Reason:  f.reason,
		Details: map[string]string{
			"threshold": fmt.Sprintf("%.0f", f.threshold),
			"workers":   strconv.Itoa(f.workers),
		},
	}
}

func buildRelevancePrompt(company *prospect.Company, p *prospect.Prospect) string {
	title, snippet := "", ""
	if p.Hit != nil {
		title = p.Hit.Title
		snippet = p.Hit.Snippet
	}
	companyName := ""
	if company != nil {
		companyName = company.Name
	}

	prompt := strings.ReplaceAll(relevancePromptTemplate, "{{TARGET_ROLE}}", p.Role)
	prompt = strings.ReplaceAll(prompt, "{{COMPANY_NAME}}", companyName)
	prompt = strings.ReplaceAll(prompt, "{{HIT_TITLE}}", title)
	prompt = strings.ReplaceAll(prompt, "{{HIT_SNIPPET}}", snippet)
	return prompt
}
