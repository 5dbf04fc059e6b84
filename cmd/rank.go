package cmd

import (
	"context"
	"encoding/json"
	"log"
	"os"

	"github.com/outreachkit/prospector/internal/logger"
	"github.com/outreachkit/prospector/internal/pipeline"
	"github.com/outreachkit/prospector/internal/prospect"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Run stage 3: rank validated prospects and select the best per role",
	Run: func(cmd *cobra.Command, _ []string) {
		rank(cmd)
	},
}

func init() {
	rootCmd.AddCommand(rankCmd)

	rankCmd.Flags().StringP("in", "i", "validated.json", "prospects file produced by the scrape command")
	rankCmd.Flags().StringP("out", "o", "", "file to write the ranking result to (prints a report when unset)")
}

func rank(cmd *cobra.Command) {
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

	generator, err := newGenerator(ctx, config.AI, logger)
	if err != nil {
		logger.Fatal("building the ai generator", zap.Error(err))
	}
	scorer := newScorer(generator, config.AI, logger)

	cfg := pipelineConfig(config)
	p := &pipeline.Pipeline{
		Ranker: newRanker(scorer, cfg, logger),
		Config: cfg,
		Logger: logger,
	}

	res := p.RankAndSelect(ctx, company, list)
	logSummary(logger, "rank and select", &res.Result)
	if !res.Success {
		logger.Info("exiting", zap.String("step", res.Step), zap.String("reason", res.Error))
		return
	}

	out := cmd.Flag("out").Value.String()
	if out == "" {
		report, _ := json.MarshalIndent(res.Qualified, "", "  ")
		logger.Info(string(report),
			zap.Int("qualified", len(res.Qualified)),
			zap.Int("all_ranked", len(res.AllRanked)),
		)
		return
	}

	file, err := os.Create(out)
	if err != nil {
		logger.Fatal("creating result file", zap.String("file", out), zap.Error(err))
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		logger.Fatal("writing result file", zap.String("file", out), zap.Error(err))
	}

	logger.Info("ranking result saved",
		zap.String("file", out),
		zap.Int("qualified", len(res.Qualified)),
	)
}
