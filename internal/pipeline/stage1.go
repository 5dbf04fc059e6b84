package pipeline

import (
	"context"
	"fmt"

	"github.com/outreachkit/prospector/internal/filtering"
	"github.com/outreachkit/prospector/internal/prospect"
	"go.uber.org/zap"
)

// SearchAndFilter is stage 1: expand the organization name, search for
// profile pages, and thin the hits with the rule prefilter and the relevance
// classifier. Each sub-step that empties the working set is a structured
// failure, never a panic.
func (p *Pipeline) SearchAndFilter(ctx context.Context, company *prospect.Company) *Stage1Result {
	cfg := p.Config.withDefaults()
	log := p.logger()

	variants := []string{company.Name}
	if p.Expander != nil {
		variants = p.Expander.Expand(ctx, company)
	}
	summary := []StepCount{{Step: StepExpansion, Before: 1, After: len(variants)}}
	log.Info("name variants prepared",
		zap.String("company", company.Name),
		zap.Strings("variants", variants),
	)

	hits, stats, err := p.Finder.FindProfiles(ctx, company, variants, cfg.TargetTitles)
	summary = append(summary, StepCount{Step: StepSearch, Before: stats.Queries, After: len(hits)})
	if err != nil {
		return &Stage1Result{Result: failure(StepSearch, err.Error(), summary)}
	}
	if len(hits) == 0 {
		return &Stage1Result{Result: failure(StepSearch, "no search results", summary)}
	}

	list := prospect.FromHits(hits)
	deps := filtering.Deps{Logger: log, Company: company, Scorer: p.Scorer}
	steps := []filtering.Filter{
		filtering.NewRules(),
		filtering.NewRelevance(cfg.RelevanceThreshold, cfg.Workers, cfg.RateLimit),
	}

	survivors, reports, err := filtering.Run(ctx, deps, steps, list)
	for _, report := range reports {
		summary = append(summary, StepCount{
			Step:   filterStepTag(report.Name),
			Before: report.Initial,
			After:  report.Left,
		})
	}
	if err != nil {
		return &Stage1Result{Result: failure(StepPrefilter, err.Error(), summary)}
	}

	if survivors.Len() == 0 {
		step := StepRelevance
		for _, report := range reports {
			if report.Left == 0 {
				step = filterStepTag(report.Name)
				break
			}
		}
		return &Stage1Result{Result: failure(step, fmt.Sprintf("no %s survivors", step), summary)}
	}

	return &Stage1Result{
		Result:    Result{Success: true, Summary: summary},
		Prospects: survivors,
	}
}

func filterStepTag(name string) string {
	if name == "rules" {
		return StepPrefilter
	}
	return name
}
