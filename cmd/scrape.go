package cmd

import (
	"context"
	"log"

	"github.com/outreachkit/prospector/internal/logger"
	"github.com/outreachkit/prospector/internal/pipeline"
	"github.com/outreachkit/prospector/internal/prospect"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Run stage 2: fetch full profiles and validate fit",
	Run: func(cmd *cobra.Command, _ []string) {
		scrape(cmd)
	},
}

func init() {
	rootCmd.AddCommand(scrapeCmd)

	scrapeCmd.Flags().StringP("in", "i", "prospects.json", "prospects file produced by the search command")
	scrapeCmd.Flags().StringP("out", "o", "validated.json", "file to write the validated prospects to")
}

func scrape(cmd *cobra.Command) {
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

	in := cmd.Flag("in").Value.String()
	list, err := prospect.LoadFile(in)
	if err != nil {
		logger.Fatal("loading prospects", zap.String("file", in), zap.Error(err))
	}
	logger.Info("prospects loaded", zap.String("file", in), zap.Int("count", list.Len()))

	fetcher, err := newFetcher(config, logger)
	if err != nil {
		logger.Fatal("building the profile fetch client", zap.Error(err))
	}

	p := &pipeline.Pipeline{
		Fetcher:   fetcher,
		Validator: newValidator(config.Pipeline, logger),
		Config:    pipelineConfig(config),
		Logger:    logger,
	}

	res := p.ScrapeAndValidate(ctx, company, list)
	logSummary(logger, "scrape and validate", &res.Result)
	logRejections(logger, res.Rejections)
	if !res.Success {
		logger.Info("exiting", zap.String("step", res.Step), zap.String("reason", res.Error))
		return
	}

	out := cmd.Flag("out").Value.String()
	if err := res.Prospects.SaveFile(out); err != nil {
		logger.Fatal("saving prospects", zap.String("file", out), zap.Error(err))
	}

	logger.Info("validated prospects saved",
		zap.String("file", out),
		zap.Int("count", res.Prospects.Len()),
	)
}
