package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/outreachkit/prospector/internal/ai"
	"github.com/outreachkit/prospector/internal/linkedin"
	"github.com/outreachkit/prospector/internal/prospect"
	"github.com/outreachkit/prospector/internal/ranking"
	"github.com/outreachkit/prospector/internal/serp"
	"github.com/outreachkit/prospector/internal/validation"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubExpander struct{ variants []string }

func (s *stubExpander) Expand(context.Context, *prospect.Company) []string { return s.variants }

type stubFinder struct {
	hits []*prospect.SearchHit
	err  error
}

func (s *stubFinder) FindProfiles(context.Context, *prospect.Company, []string, []string) ([]*prospect.SearchHit, serp.Stats, error) {
	return s.hits, serp.Stats{Queries: 7, Deduped: len(s.hits)}, s.err
}

type stubFetcher struct {
	profiles map[string]*linkedin.Profile
	err      error
	// failURL makes any batch containing it error.
	failURL string
}

func (s *stubFetcher) Fetch(_ context.Context, urls []string) (map[string]*linkedin.Profile, error) {
	if s.err != nil {
		return nil, s.err
	}
	for _, url := range urls {
		if s.failURL != "" && url == s.failURL {
			return nil, errors.New("transient provider error")
		}
	}
	out := make(map[string]*linkedin.Profile)
	for _, url := range urls {
		if profile, ok := s.profiles[url]; ok {
			out[url] = profile
		}
	}
	return out, nil
}

type stubScorer struct {
	scores map[string]float64
	err    error
}

func (s *stubScorer) Score(_ context.Context, prompt string) (*ai.Assessment, error) {
	if s.err != nil {
		return nil, s.err
	}
	for key, score := range s.scores {
		if strings.Contains(prompt, key) {
			return &ai.Assessment{Score: score, Reasoning: "stubbed"}, nil
		}
	}
	return &ai.Assessment{Score: 0, Reasoning: "unknown"}, nil
}

func intPtr(n int) *int { return &n }

func mayo() *prospect.Company {
	return &prospect.Company{Name: "Mayo Clinic", City: "Rochester", State: "Minnesota"}
}

func goodHit(name, path string) *prospect.SearchHit {
	return &prospect.SearchHit{
		Title:   name + " - Director of Facilities",
		Snippet: "Mayo Clinic",
		URL:     "https://www.linkedin.com/in/" + path,
		Role:    "Director of Facilities",
	}
}

func goodProfile(name string) *linkedin.Profile {
	return &linkedin.Profile{
		Name:            name,
		Title:           "Director of Facilities",
		Company:         "Mayo Clinic",
		Location:        "Rochester, Minnesota",
		Connections:     intPtr(200),
		YearsExperience: 8,
	}
}

func newPipeline() *Pipeline {
	return &Pipeline{
		Expander:  &stubExpander{variants: []string{"Mayo Clinic", "Mayo Clinic Health System"}},
		Finder:    &stubFinder{},
		Validator: validation.New(validation.Config{LocationFilter: true}, zap.NewNop()),
		Ranker:    ranking.NewEngine(nil, 2, 0, zap.NewNop()),
		Config:    Config{Workers: 2},
		Logger:    zap.NewNop(),
	}
}

func TestSearchAndFilterSuccess(t *testing.T) {
	p := newPipeline()
	p.Finder = &stubFinder{hits: []*prospect.SearchHit{
		goodHit("Alice", "alice"),
		{Title: "Random Person", Snippet: "nothing relevant", URL: "https://www.linkedin.com/in/noise"},
		goodHit("Bob", "bob"),
	}}
	p.Scorer = &stubScorer{scores: map[string]float64{"Alice": 90, "Bob": 30}}

	res := p.SearchAndFilter(context.Background(), mayo())

	require.True(t, res.Success)
	require.Equal(t, []string{"https://www.linkedin.com/in/alice"}, res.Prospects.URLs())

	steps := make([]string, 0, len(res.Summary))
	for _, count := range res.Summary {
		steps = append(steps, count.Step)
	}
	require.Equal(t, []string{StepExpansion, StepSearch, StepPrefilter, StepRelevance}, steps)
	require.Equal(t, 3, res.Summary[2].Before)
	require.Equal(t, 2, res.Summary[2].After)
	require.Equal(t, 1, res.Summary[3].After)
}

func TestSearchAndFilterNoResults(t *testing.T) {
	p := newPipeline()

	res := p.SearchAndFilter(context.Background(), mayo())

	require.False(t, res.Success)
	require.Equal(t, StepSearch, res.Step)
	require.Equal(t, "no search results", res.Error)
}

func TestSearchAndFilterProviderOutage(t *testing.T) {
	p := newPipeline()
	p.Finder = &stubFinder{err: serp.ErrAllQueriesFailed}

	res := p.SearchAndFilter(context.Background(), mayo())

	require.False(t, res.Success)
	require.Equal(t, StepSearch, res.Step)
	require.Contains(t, res.Error, "all search queries failed")
}

func TestSearchAndFilterNoPrefilterSurvivors(t *testing.T) {
	p := newPipeline()
	p.Finder = &stubFinder{hits: []*prospect.SearchHit{
		{Title: "Random Person", Snippet: "nothing relevant", URL: "https://www.linkedin.com/in/noise"},
	}}

	res := p.SearchAndFilter(context.Background(), mayo())

	require.False(t, res.Success)
	require.Equal(t, StepPrefilter, res.Step)
	require.Equal(t, "no prefilter survivors", res.Error)
}

func TestSearchAndFilterNoRelevanceSurvivors(t *testing.T) {
	p := newPipeline()
	p.Finder = &stubFinder{hits: []*prospect.SearchHit{goodHit("Alice", "alice")}}
	p.Scorer = &stubScorer{scores: map[string]float64{"Alice": 10}}

	res := p.SearchAndFilter(context.Background(), mayo())

	require.False(t, res.Success)
	require.Equal(t, StepRelevance, res.Step)
	require.Equal(t, "no relevance survivors", res.Error)
}

func TestScrapeAndValidateSuccess(t *testing.T) {
	p := newPipeline()
	p.Fetcher = &stubFetcher{profiles: map[string]*linkedin.Profile{
		"https://www.linkedin.com/in/alice": goodProfile("Alice"),
		"https://www.linkedin.com/in/carol": {
			Name:        "Carol",
			Title:       "Director of Facilities",
			Company:     "Cleveland Clinic",
			Connections: intPtr(300),
		},
	}}

	list := prospect.FromHits([]*prospect.SearchHit{
		goodHit("Alice", "alice"),
		goodHit("Bob", "bob"), // no profile comes back, dropped
		goodHit("Carol", "carol"),
	})

	res := p.ScrapeAndValidate(context.Background(), mayo(), list)

	require.True(t, res.Success)
	require.Equal(t, []string{"https://www.linkedin.com/in/alice"}, res.Prospects.URLs())
	require.Equal(t, "Alice", res.Prospects.Items[0].Name)
	require.Equal(t, validation.ReasonCompanyMismatch, res.Rejections["https://www.linkedin.com/in/carol"])

	require.Equal(t, StepFetch, res.Summary[0].Step)
	require.Equal(t, 3, res.Summary[0].Before)
	require.Equal(t, 2, res.Summary[0].After)
	require.Equal(t, StepValidation, res.Summary[1].Step)
	require.Equal(t, 1, res.Summary[1].After)
}

func TestScrapeAndValidateSurvivesPartialFetchFailure(t *testing.T) {
	hits := make([]*prospect.SearchHit, 0, 12)
	for i := 0; i < 12; i++ {
		hits = append(hits, goodHit(fmt.Sprintf("Person%02d", i), fmt.Sprintf("p%02d", i)))
	}
	list := prospect.FromHits(hits)

	// The first provider batch (10 urls) errors; the second one succeeds.
	p := newPipeline()
	p.Fetcher = &stubFetcher{
		failURL: "https://www.linkedin.com/in/p00",
		profiles: map[string]*linkedin.Profile{
			"https://www.linkedin.com/in/p10": goodProfile("Person10"),
			"https://www.linkedin.com/in/p11": goodProfile("Person11"),
		},
	}

	res := p.ScrapeAndValidate(context.Background(), mayo(), list)

	require.True(t, res.Success, "one failed batch must not fail the stage: %s", res.Error)
	require.Equal(t, []string{
		"https://www.linkedin.com/in/p10",
		"https://www.linkedin.com/in/p11",
	}, res.Prospects.URLs())

	require.Equal(t, StepFetch, res.Summary[0].Step)
	require.Equal(t, 12, res.Summary[0].Before)
	require.Equal(t, 2, res.Summary[0].After)
}

func TestScrapeAndValidateFetchReturnedNothing(t *testing.T) {
	p := newPipeline()
	p.Fetcher = &stubFetcher{}

	list := prospect.FromHits([]*prospect.SearchHit{goodHit("Alice", "alice")})
	res := p.ScrapeAndValidate(context.Background(), mayo(), list)

	require.False(t, res.Success)
	require.Equal(t, StepFetch, res.Step)
	require.Equal(t, "fetch returned nothing", res.Error)
}

func TestScrapeAndValidateFetchError(t *testing.T) {
	p := newPipeline()
	p.Fetcher = &stubFetcher{err: errors.New("provider down")}

	list := prospect.FromHits([]*prospect.SearchHit{goodHit("Alice", "alice")})
	res := p.ScrapeAndValidate(context.Background(), mayo(), list)

	require.False(t, res.Success)
	require.Equal(t, StepFetch, res.Step)
	require.Contains(t, res.Error, "provider down")
}

func TestScrapeAndValidateNoSurvivors(t *testing.T) {
	p := newPipeline()
	p.Fetcher = &stubFetcher{profiles: map[string]*linkedin.Profile{
		"https://www.linkedin.com/in/alice": {
			Name:        "Alice",
			Title:       "Director of Facilities",
			Company:     "Mayo Clinic",
			Connections: intPtr(10),
		},
	}}

	list := prospect.FromHits([]*prospect.SearchHit{goodHit("Alice", "alice")})
	res := p.ScrapeAndValidate(context.Background(), mayo(), list)

	require.False(t, res.Success)
	require.Equal(t, StepValidation, res.Step)
	require.Equal(t, "no validator survivors", res.Error)
	require.Equal(t, validation.ReasonLowConnections, res.Rejections["https://www.linkedin.com/in/alice"])
}

func validatedList() *prospect.List {
	alice := &prospect.Prospect{
		URL: "https://www.linkedin.com/in/alice", Name: "Alice", Role: "Director of Facilities",
		Profile:    goodProfile("Alice"),
		Validation: &prospect.ValidationOutcome{Passed: true, SeniorityScore: 80},
	}
	bob := &prospect.Prospect{
		URL: "https://www.linkedin.com/in/bob", Name: "Bob", Role: "VP of Operations",
		Profile:    goodProfile("Bob"),
		Validation: &prospect.ValidationOutcome{Passed: true, SeniorityScore: 60},
	}
	return &prospect.List{Items: []*prospect.Prospect{alice, bob}}
}

func TestRankAndSelectFallback(t *testing.T) {
	p := newPipeline()
	p.Config.MinScore = 70

	res := p.RankAndSelect(context.Background(), mayo(), validatedList())

	require.True(t, res.Success)
	require.Len(t, res.AllRanked, 2)
	require.Len(t, res.Qualified, 1)
	require.Equal(t, "https://www.linkedin.com/in/alice", res.Qualified[0].URL)
	require.True(t, res.Qualified[0].Ranking.Fallback)
	require.Equal(t, 1, res.Qualified[0].Ranking.Rank)
}

func TestRankAndSelectZeroQualifyIsSuccess(t *testing.T) {
	p := newPipeline()
	p.Config.MinScore = 99

	res := p.RankAndSelect(context.Background(), mayo(), validatedList())

	require.True(t, res.Success)
	require.Empty(t, res.Qualified)
	require.Len(t, res.AllRanked, 2)
}

func TestRankAndSelectEmptyInput(t *testing.T) {
	p := newPipeline()

	res := p.RankAndSelect(context.Background(), mayo(), &prospect.List{})

	require.False(t, res.Success)
	require.Equal(t, StepRanking, res.Step)
}

func TestRankAndSelectEngineFailure(t *testing.T) {
	p := newPipeline()
	p.Ranker = ranking.NewEngine(&stubScorer{err: errors.New("model down")}, 2, 0, zap.NewNop())

	res := p.RankAndSelect(context.Background(), mayo(), validatedList())

	require.False(t, res.Success)
	require.Equal(t, StepRanking, res.Step)
	require.Contains(t, res.Error, "every scoring call failed")
}

func TestRunHappyPath(t *testing.T) {
	p := newPipeline()
	p.Finder = &stubFinder{hits: []*prospect.SearchHit{
		goodHit("Alice", "alice"),
		goodHit("Bob", "bob"),
	}}
	p.Scorer = &stubScorer{scores: map[string]float64{"Alice": 90, "Bob": 85}}
	p.Fetcher = &stubFetcher{profiles: map[string]*linkedin.Profile{
		"https://www.linkedin.com/in/alice": goodProfile("Alice"),
		"https://www.linkedin.com/in/bob":   goodProfile("Bob"),
	}}
	p.Ranker = ranking.NewEngine(p.Scorer, 2, 0, zap.NewNop())
	p.Config.MinScore = 80

	stage1, stage2, stage3 := p.Run(context.Background(), mayo())

	require.True(t, stage1.Success)
	require.True(t, stage2.Success)
	require.True(t, stage3.Success)

	// Both share the archetype, so only the top-scored one is selected.
	require.Len(t, stage3.Qualified, 1)
	require.Equal(t, "https://www.linkedin.com/in/alice", stage3.Qualified[0].URL)
	require.Len(t, stage3.AllRanked, 2)
}

func TestRunStopsOnStageFailure(t *testing.T) {
	p := newPipeline()

	stage1, stage2, stage3 := p.Run(context.Background(), mayo())

	require.False(t, stage1.Success)
	require.Nil(t, stage2)
	require.Nil(t, stage3)
}
