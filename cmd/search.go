package cmd

import (
	"context"
	"log"

	"github.com/outreachkit/prospector/internal/logger"
	"github.com/outreachkit/prospector/internal/pipeline"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Run stage 1: search for profile pages and filter them",
	Run: func(cmd *cobra.Command, _ []string) {
		search(cmd)
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().StringP("out", "o", "prospects.json", "file to write the surviving prospects to")
}

func search(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	company, err := companyFromConfig(config)
	if err != nil {
		logger.Fatal("reading company target", zap.Error(err))
	}

	generator, err := newGenerator(ctx, config.AI, logger)
	if err != nil {
		logger.Fatal("building the ai generator", zap.Error(err))
	}
	scorer := newScorer(generator, config.AI, logger)

	finder, err := newFinder(config, logger)
	if err != nil {
		logger.Fatal("building the search client", zap.Error(err))
	}

	p := &pipeline.Pipeline{
		Expander: newExpander(generator, logger),
		Finder:   finder,
		Config:   pipelineConfig(config),
		Logger:   logger,
	}
	if scorer != nil {
		p.Scorer = scorer
	}

	res := p.SearchAndFilter(ctx, company)
	logSummary(logger, "search and filter", &res.Result)
	if !res.Success {
		logger.Info("exiting", zap.String("step", res.Step), zap.String("reason", res.Error))
		return
	}

	out := cmd.Flag("out").Value.String()
	if err := res.Prospects.SaveFile(out); err != nil {
		logger.Fatal("saving prospects", zap.String("file", out), zap.Error(err))
	}

	logger.Info("prospects saved",
		zap.String("file", out),
		zap.Int("count", res.Prospects.Len()),
	)
}
