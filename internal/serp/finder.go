package serp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/outreachkit/prospector/internal/linkedin"
	"github.com/outreachkit/prospector/internal/prospect"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// DefaultTargetTitles is the role list used when the caller supplies none.
var DefaultTargetTitles = []string{
	"Director of Facilities",
	"Facilities Manager",
	"Director of Operations",
	"Chief Financial Officer",
	"VP of Operations",
	"Director of Engineering",
	"Plant Operations Manager",
}

// ErrAllQueriesFailed marks a total provider outage: every issued query
// errored. Distinct from a clean zero-hit outcome.
var ErrAllQueriesFailed = errors.New("all search queries failed")

const defaultPerQueryCap = 10

// Stats summarizes one FindProfiles run for stage observability.
type Stats struct {
	Queries     int `json:"queries"`
	Failed      int `json:"failed"`
	RawResults  int `json:"raw_results"`
	ProfileHits int `json:"profile_hits"`
	Deduped     int `json:"deduped"`
}

// Finder runs one query per (name variant, target title) pair against the
// search provider and collects profile-page hits.
type Finder struct {
	provider Provider
	limiter  *rate.Limiter
	logger   *zap.Logger

	// PerQueryCap limits accepted profile hits per individual query.
	PerQueryCap int
}

// NewFinder creates a Finder. queriesPerSecond paces sequential queries to
// stay inside provider rate limits; zero or negative disables pacing.
func NewFinder(provider Provider, queriesPerSecond float64, logger *zap.Logger) *Finder {
	var limiter *rate.Limiter
	if queriesPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(queriesPerSecond), 1)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Finder{
		provider:    provider,
		limiter:     limiter,
		logger:      logger,
		PerQueryCap: defaultPerQueryCap,
	}
}

// FindProfiles issues every (variant, title) query, filters to canonical
// profile URLs, caps per query and deduplicates across queries. A single
// failed query is logged and skipped; ErrAllQueriesFailed is returned only
// when no query succeeded.
func (f *Finder) FindProfiles(ctx context.Context, company *prospect.Company, variants, titles []string) ([]*prospect.SearchHit, Stats, error) {
	if len(titles) == 0 {
		titles = DefaultTargetTitles
	}
	if len(variants) == 0 {
		variants = []string{company.Name}
	}

	var stats Stats
	var hits []*prospect.SearchHit

	for _, variant := range variants {
		for _, title := range titles {
			query := buildQuery(variant, title, company.City, company.State)
			stats.Queries++

			if f.limiter != nil {
				if err := f.limiter.Wait(ctx); err != nil {
					return nil, stats, err
				}
			}

			results, err := f.provider.Search(ctx, query)
			if err != nil {
				stats.Failed++
				f.logger.Warn("search query failed, skipping",
					zap.String("query", query),
					zap.Error(err),
				)
				continue
			}

			stats.RawResults += len(results)
			accepted := 0
			for _, result := range results {
				if accepted >= f.PerQueryCap {
					break
				}
				canonical, ok := linkedin.CanonicalProfileURL(result.Link)
				if !ok {
					continue
				}
				accepted++
				hits = append(hits, &prospect.SearchHit{
					Title:    result.Title,
					Snippet:  result.Snippet,
					URL:      canonical,
					Query:    query,
					Role:     title,
					Position: result.Position,
				})
			}
			stats.ProfileHits += accepted
		}
	}

	if stats.Queries > 0 && stats.Failed == stats.Queries {
		return nil, stats, ErrAllQueriesFailed
	}

	deduped := prospect.DedupHits(hits)
	stats.Deduped = len(deduped)

	f.logger.Info("profile search completed",
		zap.Int("queries", stats.Queries),
		zap.Int("failed_queries", stats.Failed),
		zap.Int("profile_hits", stats.ProfileHits),
		zap.Int("unique_profiles", stats.Deduped),
	)

	return deduped, stats, nil
}

func buildQuery(variant, title, city, state string) string {
	parts := []string{
		"site:linkedin.com/in/",
		fmt.Sprintf("%q", title),
		fmt.Sprintf("%q", variant),
	}
	if location := strings.TrimSpace(strings.TrimSpace(city) + " " + strings.TrimSpace(state)); location != "" {
		parts = append(parts, location)
	}
	return strings.Join(parts, " ")
}
