package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/outreachkit/prospector/internal/logger"
	"github.com/outreachkit/prospector/internal/pipeline"
	"github.com/outreachkit/prospector/internal/prospect"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	PromptYes          = "Yes"
	PromptNo           = "No"
	PromptReportByRole = "Report by role"
	PromptDumpToFile   = "Dump prospects to file"
)

var errExit = errors.New("exit requested")

var prompt = promptui.Select{
	Label: "Proceed?",
	Items: []string{PromptYes, PromptNo, PromptReportByRole, PromptDumpToFile},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run all three pipeline stages in-process",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolP("auto-approve", "y", false, "do not ask for confirmation between stages")
}

// run is the main command for the cli.
func run(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the prospector", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	company, err := companyFromConfig(config)
	if err != nil {
		logger.Fatal("reading company target", zap.Error(err))
	}

	p, err := buildPipeline(ctx, config, logger)
	if err != nil {
		logger.Fatal("building the pipeline", zap.Error(err))
	}

	autoApprove := cmd.Flag("auto-approve").Value.String() == "true"

	stage1 := p.SearchAndFilter(ctx, company)
	logSummary(logger, "search and filter", &stage1.Result)
	if !stage1.Success {
		logger.Info("exiting", zap.String("step", stage1.Step), zap.String("reason", stage1.Error))
		return
	}

	if err := confirm(autoApprove, logger, stage1.Prospects); err != nil {
		handleExit(logger, err)
		return
	}

	stage2 := p.ScrapeAndValidate(ctx, company, stage1.Prospects)
	logSummary(logger, "scrape and validate", &stage2.Result)
	if !stage2.Success {
		logRejections(logger, stage2.Rejections)
		logger.Info("exiting", zap.String("step", stage2.Step), zap.String("reason", stage2.Error))
		return
	}

	if err := confirm(autoApprove, logger, stage2.Prospects); err != nil {
		handleExit(logger, err)
		return
	}

	stage3 := p.RankAndSelect(ctx, company, stage2.Prospects)
	logSummary(logger, "rank and select", &stage3.Result)
	if !stage3.Success {
		logger.Info("exiting", zap.String("step", stage3.Step), zap.String("reason", stage3.Error))
		return
	}

	report, _ := json.MarshalIndent(stage3.Qualified, "", "  ")
	logger.Info(string(report),
		zap.Int("qualified", len(stage3.Qualified)),
		zap.Int("all_ranked", len(stage3.AllRanked)),
	)
}

func buildPipeline(ctx context.Context, config *Config, logger *zap.Logger) (*pipeline.Pipeline, error) {
	generator, err := newGenerator(ctx, config.AI, logger)
	if err != nil {
		return nil, err
	}
	scorer := newScorer(generator, config.AI, logger)

	finder, err := newFinder(config, logger)
	if err != nil {
		return nil, err
	}

	fetcher, err := newFetcher(config, logger)
	if err != nil {
		return nil, err
	}

	cfg := pipelineConfig(config)
	p := &pipeline.Pipeline{
		Expander:  newExpander(generator, logger),
		Finder:    finder,
		Fetcher:   fetcher,
		Validator: newValidator(config.Pipeline, logger),
		Ranker:    newRanker(scorer, cfg, logger),
		Config:    cfg,
		Logger:    logger,
	}
	if scorer != nil {
		p.Scorer = scorer
	}
	return p, nil
}

func confirm(autoApprove bool, logger *zap.Logger, list *prospect.List) error {
	if autoApprove {
		return nil
	}

	for {
		logger.Info("current list of prospects", zap.Int("count", list.Len()))

		_, action, err := prompt.Run()
		if err != nil {
			return err
		}

		switch action {
		case PromptYes:
			return nil
		case PromptNo:
			logger.Info("exiting", zap.String("reason", "got no from prompt"))
			return errExit
		case PromptReportByRole:
			pretty, _ := json.MarshalIndent(list.ReportByRole(), "", "  ")
			logger.Info(string(pretty), zap.Int("prospects count", list.Len()))
		case PromptDumpToFile:
			filename, err := list.DumpToTmpFile()
			if err != nil {
				return fmt.Errorf("dump prospects to file: %w", err)
			}
			logger.Info("dumping prospects to file", zap.String("filename", filename))
		default:
			return fmt.Errorf("invalid action: %s", action)
		}
	}
}

func handleExit(logger *zap.Logger, err error) {
	if errors.Is(err, errExit) {
		return
	}
	logger.Fatal("exiting", zap.Error(err))
}

func logSummary(logger *zap.Logger, stage string, result *pipeline.Result) {
	fields := []zap.Field{zap.Bool("success", result.Success)}
	for _, count := range result.Summary {
		fields = append(fields, zap.String(count.Step, fmt.Sprintf("%d -> %d", count.Before, count.After)))
	}
	logger.Info(stage+" completed", fields...)
}

func logRejections(logger *zap.Logger, rejections map[string]string) {
	for url, reason := range rejections {
		logger.Info("prospect rejected", zap.String("url", url), zap.String("reason", reason))
	}
}
