package cmd

import (
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "prospector"
)

type Config struct {
	Company  *CompanyConfig  `mapstructure:"company"`
	Search   *SearchConfig   `mapstructure:"search"`
	Pipeline *PipelineConfig `mapstructure:"pipeline"`
	AI       *AIConfig       `mapstructure:"ai"`

	Providers *ProvidersConfig `mapstructure:"providers"`
}

type CompanyConfig struct {
	Name    string  `mapstructure:"name"`
	Website string  `mapstructure:"website"`
	City    string  `mapstructure:"city"`
	State   string  `mapstructure:"state"`
	// Authority is an optional 0..1 signal folded into the seniority score.
	Authority float64 `mapstructure:"authority"`
}

type SearchConfig struct {
	TargetTitles     []string `mapstructure:"target-titles"`
	QueriesPerSecond float64  `mapstructure:"queries-per-second"`
	PerQueryCap      int      `mapstructure:"per-query-cap"`
}

type PipelineConfig struct {
	RelevanceThreshold float64 `mapstructure:"relevance-threshold"`
	MinScore           float64 `mapstructure:"min-score"`
	MaxProspects       int     `mapstructure:"max-prospects"`
	Workers            int     `mapstructure:"workers"`
	RateLimit          float64 `mapstructure:"rate-limit"`
	FetchConcurrency   int     `mapstructure:"fetch-concurrency"`
	MinConnections     int     `mapstructure:"min-connections"`
	// LocationFilter defaults to enabled; set to false to disable the
	// geographic validation check.
	LocationFilter *bool `mapstructure:"location-filter"`
}

type ProvidersConfig struct {
	Serper   *ProviderConfig `mapstructure:"serper"`
	Profiles *ProviderConfig `mapstructure:"profiles"`
}

type ProviderConfig struct {
	APIKeyFile string `mapstructure:"api-key-file"`
}

type AIConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Provider string        `mapstructure:"provider"`
	Gemini   *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxRetries   int    `mapstructure:"max-retries"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "prospector is a cli for discovering and ranking outreach contacts at a target organization",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	envBindings := map[string]string{
		"providers.serper.api-key-file":   "PROSPECTOR_SERPER_KEY_FILE",
		"providers.profiles.api-key-file": "PROSPECTOR_PROFILES_KEY_FILE",
		"ai.gemini.api-key-file":          "PROSPECTOR_GEMINI_KEY_FILE",
	}
	for key, env := range envBindings {
		if err := viper.BindEnv(key, env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is prospector.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	// The version command works without any configuration.
	if versionCmd.CalledAs() != "" {
		return
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app + ".yaml")
	}

	// We can't proceed if the config file parsed with error.
	if err := viper.ReadInConfig(); err != nil {
		log.Fatal(err)
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	return config, nil
}
