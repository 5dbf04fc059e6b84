package pipeline

import (
	"context"

	"github.com/outreachkit/prospector/internal/prospect"
	"github.com/outreachkit/prospector/internal/ranking"
	"go.uber.org/zap"
)

// RankAndSelect is stage 3: score the validated candidates, keep the best
// candidate per role archetype up to the cap, and split the selection by the
// minimum qualifying score. Zero qualified candidates is a valid success;
// only an engine-wide scoring failure fails the stage.
func (p *Pipeline) RankAndSelect(ctx context.Context, company *prospect.Company, list *prospect.List) *Stage3Result {
	cfg := p.Config.withDefaults()
	log := p.logger()

	if list.Len() == 0 {
		return &Stage3Result{Result: failure(StepRanking, "no candidates to rank", nil)}
	}

	ranked, err := p.Ranker.Rank(ctx, company, list)
	summary := []StepCount{{Step: StepRanking, Before: list.Len(), After: ranked.Len()}}
	if err != nil {
		return &Stage3Result{Result: failure(StepRanking, err.Error(), summary)}
	}

	selection := ranking.Select(ranked, cfg.MaxProspects, cfg.MinScore)
	summary = append(summary, StepCount{
		Step:   "selection",
		Before: ranked.Len(),
		After:  len(selection.Qualified),
	})

	log.Info("ranking completed",
		zap.Int("ranked", len(selection.AllRanked)),
		zap.Int("qualified", len(selection.Qualified)),
		zap.Float64("min_score", cfg.MinScore),
	)

	return &Stage3Result{
		Result:    Result{Success: true, Summary: summary},
		Qualified: selection.Qualified,
		AllRanked: selection.AllRanked,
	}
}

// Run executes all three stages sequentially, stopping at the first
// structured failure. Used by the in-process run command; the per-stage
// commands call the stages directly with persisted state in between.
func (p *Pipeline) Run(ctx context.Context, company *prospect.Company) (*Stage1Result, *Stage2Result, *Stage3Result) {
	stage1 := p.SearchAndFilter(ctx, company)
	if !stage1.Success {
		return stage1, nil, nil
	}

	stage2 := p.ScrapeAndValidate(ctx, company, stage1.Prospects)
	if !stage2.Success {
		return stage1, stage2, nil
	}

	stage3 := p.RankAndSelect(ctx, company, stage2.Prospects)
	return stage1, stage2, stage3
}
