package pipeline

import (
	"context"

	"github.com/outreachkit/prospector/internal/linkedin"
	"github.com/outreachkit/prospector/internal/prospect"
	"go.uber.org/zap"
)

// ScrapeAndValidate is stage 2: fetch full profiles for the surviving URLs
// and apply the deterministic fit checks. Candidates without a fetched record
// are dropped; every rejected candidate's reason is carried in the result.
func (p *Pipeline) ScrapeAndValidate(ctx context.Context, company *prospect.Company, list *prospect.List) *Stage2Result {
	cfg := p.Config.withDefaults()
	log := p.logger()

	urls := list.URLs()
	summary := []StepCount{}

	profiles, err := linkedin.FetchAll(ctx, p.Fetcher, urls, cfg.FetchConcurrency)
	if err != nil {
		summary = append(summary, StepCount{Step: StepFetch, Before: len(urls), After: 0})
		return &Stage2Result{Result: failure(StepFetch, err.Error(), summary)}
	}
	if len(profiles) == 0 {
		summary = append(summary, StepCount{Step: StepFetch, Before: len(urls), After: 0})
		return &Stage2Result{Result: failure(StepFetch, "fetch returned nothing", summary)}
	}

	fetched := list.Keep(func(pr *prospect.Prospect) bool {
		profile, ok := profiles[pr.URL]
		if !ok {
			log.Debug("no profile returned, dropping candidate", zap.String("url", pr.URL))
			return false
		}
		pr.Profile = profile
		if pr.Name == "" {
			pr.Name = profile.Name
		}
		return true
	})
	summary = append(summary, StepCount{Step: StepFetch, Before: len(urls), After: fetched.Len()})

	rejections := make(map[string]string)
	validated := fetched.Keep(func(pr *prospect.Prospect) bool {
		pr.Validation = p.Validator.Validate(pr, company)
		if !pr.Validation.Passed {
			rejections[pr.URL] = pr.Validation.Reason
			return false
		}
		return true
	})
	summary = append(summary, StepCount{Step: StepValidation, Before: fetched.Len(), After: validated.Len()})

	log.Info("validation completed",
		zap.Int("fetched", fetched.Len()),
		zap.Int("validated", validated.Len()),
		zap.Int("rejected", len(rejections)),
	)

	if validated.Len() == 0 {
		return &Stage2Result{
			Result:     failure(StepValidation, "no validator survivors", summary),
			Rejections: rejections,
		}
	}

	return &Stage2Result{
		Result:     Result{Success: true, Summary: summary},
		Prospects:  validated,
		Rejections: rejections,
	}
}
