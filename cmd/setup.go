package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/outreachkit/prospector/internal/ai/gemini"
	"github.com/outreachkit/prospector/internal/expansion"
	"github.com/outreachkit/prospector/internal/linkedin"
	"github.com/outreachkit/prospector/internal/pipeline"
	"github.com/outreachkit/prospector/internal/prospect"
	"github.com/outreachkit/prospector/internal/ranking"
	"github.com/outreachkit/prospector/internal/secrets"
	"github.com/outreachkit/prospector/internal/serp"
	"github.com/outreachkit/prospector/internal/validation"
	"go.uber.org/zap"
)

func companyFromConfig(config *Config) (*prospect.Company, error) {
	if config == nil || config.Company == nil || strings.TrimSpace(config.Company.Name) == "" {
		return nil, errors.New("company.name is required in the configuration file")
	}

	c := config.Company
	return &prospect.Company{
		Name:      c.Name,
		Website:   c.Website,
		City:      c.City,
		State:     c.State,
		Authority: c.Authority,
	}, nil
}

func pipelineConfig(config *Config) pipeline.Config {
	cfg := pipeline.Config{}
	if config.Search != nil {
		cfg.TargetTitles = config.Search.TargetTitles
	}
	if pc := config.Pipeline; pc != nil {
		cfg.RelevanceThreshold = pc.RelevanceThreshold
		cfg.MinScore = pc.MinScore
		cfg.MaxProspects = pc.MaxProspects
		cfg.Workers = pc.Workers
		cfg.RateLimit = pc.RateLimit
		cfg.FetchConcurrency = pc.FetchConcurrency
	}
	return cfg
}

// newGenerator builds the shared Gemini generator, or nil when AI is disabled.
func newGenerator(ctx context.Context, config *AIConfig, logger *zap.Logger) (*gemini.Generator, error) {
	if config == nil || !config.Enabled {
		return nil, nil
	}

	provider := strings.TrimSpace(strings.ToLower(config.Provider))
	if provider != "" && provider != "gemini" {
		return nil, fmt.Errorf("unsupported ai provider: %s", config.Provider)
	}
	if config.Gemini == nil {
		return nil, errors.New("gemini configuration is required when ai is enabled")
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: config.Gemini.APIKeyFile,
		Env:  "PROSPECTOR_GEMINI_API_KEY",
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set ai.gemini.api-key-file or PROSPECTOR_GEMINI_KEY_FILE)", err)
	}

	generator, err := gemini.NewGenerator(ctx, apiKey, config.Gemini.Model)
	if err != nil {
		return nil, err
	}

	logger.Info("ai scoring enabled",
		zap.String("provider", "gemini"),
		zap.String("model", generator.Model()),
	)
	return generator, nil
}

func newScorer(generator *gemini.Generator, config *AIConfig, logger *zap.Logger) *gemini.Scorer {
	if generator == nil {
		return nil
	}

	maxRetries, maxLogLength := 0, 0
	if config != nil && config.Gemini != nil {
		maxRetries = config.Gemini.MaxRetries
		maxLogLength = config.Gemini.MaxLogLength
	}

	scorerLogger := logger.With(
		zap.String("provider", "gemini"),
		zap.String("model", generator.Model()),
	)
	return gemini.NewScorer(generator, maxRetries, maxLogLength, scorerLogger)
}

func newExpander(generator *gemini.Generator, logger *zap.Logger) *expansion.Expander {
	if generator == nil {
		return expansion.New(nil, logger)
	}
	return expansion.New(generator, logger)
}

func newFinder(config *Config, logger *zap.Logger) (*serp.Finder, error) {
	keyFile := ""
	if config.Providers != nil && config.Providers.Serper != nil {
		keyFile = config.Providers.Serper.APIKeyFile
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "serper api key",
		File: keyFile,
		Env:  "PROSPECTOR_SERPER_API_KEY",
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set providers.serper.api-key-file or PROSPECTOR_SERPER_KEY_FILE)", err)
	}

	client, err := serp.NewClient(apiKey, logger)
	if err != nil {
		return nil, err
	}

	qps := 1.0
	if config.Search != nil && config.Search.QueriesPerSecond > 0 {
		qps = config.Search.QueriesPerSecond
	}

	finder := serp.NewFinder(client, qps, logger)
	if config.Search != nil && config.Search.PerQueryCap > 0 {
		finder.PerQueryCap = config.Search.PerQueryCap
	}
	return finder, nil
}

func newFetcher(config *Config, logger *zap.Logger) (*linkedin.Client, error) {
	keyFile := ""
	if config.Providers != nil && config.Providers.Profiles != nil {
		keyFile = config.Providers.Profiles.APIKeyFile
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "profile fetch api key",
		File: keyFile,
		Env:  "PROSPECTOR_PROFILES_API_KEY",
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set providers.profiles.api-key-file or PROSPECTOR_PROFILES_KEY_FILE)", err)
	}

	return linkedin.NewClient(apiKey, logger)
}

func newValidator(config *PipelineConfig, logger *zap.Logger) *validation.Validator {
	cfg := validation.Config{LocationFilter: true}
	if config != nil {
		if config.MinConnections > 0 {
			cfg.MinConnections = config.MinConnections
		}
		if config.LocationFilter != nil {
			cfg.LocationFilter = *config.LocationFilter
		}
	}
	return validation.New(cfg, logger)
}

func newRanker(scorer *gemini.Scorer, cfg pipeline.Config, logger *zap.Logger) *ranking.Engine {
	if scorer == nil {
		return ranking.NewEngine(nil, cfg.Workers, cfg.RateLimit, logger)
	}
	return ranking.NewEngine(scorer, cfg.Workers, cfg.RateLimit, logger)
}
