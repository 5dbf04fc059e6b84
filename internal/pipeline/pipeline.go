package pipeline

import (
	"context"

	"github.com/outreachkit/prospector/internal/ai"
	"github.com/outreachkit/prospector/internal/filtering"
	"github.com/outreachkit/prospector/internal/linkedin"
	"github.com/outreachkit/prospector/internal/prospect"
	"github.com/outreachkit/prospector/internal/ranking"
	"github.com/outreachkit/prospector/internal/serp"
	"go.uber.org/zap"
)

// Expander produces organization name variants for the search loop.
type Expander interface {
	Expand(ctx context.Context, company *prospect.Company) []string
}

// Finder runs the profile search across name variants and target titles.
type Finder interface {
	FindProfiles(ctx context.Context, company *prospect.Company, variants, titles []string) ([]*prospect.SearchHit, serp.Stats, error)
}

// Validator applies the deterministic fit checks to a fetched profile.
type Validator interface {
	Validate(p *prospect.Prospect, company *prospect.Company) *prospect.ValidationOutcome
}

// Ranker scores validated candidates and orders them.
type Ranker interface {
	Rank(ctx context.Context, company *prospect.Company, list *prospect.List) (*prospect.List, error)
}

// Config carries the per-run tunables shared by the stages.
type Config struct {
	// TargetTitles overrides the default role archetypes when non-empty.
	TargetTitles []string
	// RelevanceThreshold is the minimum title-relevance score in stage 1.
	RelevanceThreshold float64
	// MinScore is the qualifying ranking score applied in stage 3.
	MinScore float64
	// MaxProspects caps the stage-3 selection.
	MaxProspects int
	// Workers bounds the concurrent AI fan-outs.
	Workers int
	// RateLimit is the shared requests-per-second limit for AI fan-outs.
	RateLimit float64
	// FetchConcurrency bounds parallel profile-fetch batches.
	FetchConcurrency int
}

func (c Config) withDefaults() Config {
	if c.RelevanceThreshold <= 0 {
		c.RelevanceThreshold = filtering.DefaultRelevanceThreshold
	}
	if c.MinScore <= 0 {
		c.MinScore = ranking.DefaultMinScore
	}
	if c.MaxProspects <= 0 {
		c.MaxProspects = ranking.DefaultMaxProspects
	}
	if c.Workers <= 0 {
		c.Workers = 4
	}
	return c
}

// Pipeline wires the stage collaborators. All dependencies are injected so
// each stage is a pure function of its input; the pipeline itself holds no
// state between invocations.
type Pipeline struct {
	Expander  Expander
	Finder    Finder
	Fetcher   linkedin.Fetcher
	Scorer    ai.Scorer
	Validator Validator
	Ranker    Ranker

	Config Config
	Logger *zap.Logger
}

func (p *Pipeline) logger() *zap.Logger {
	if p.Logger == nil {
		return zap.NewNop()
	}
	return p.Logger
}
