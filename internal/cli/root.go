package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/clauserisk/internal/embed"
	"github.com/ppiankov/clauserisk/internal/logging"
	"github.com/ppiankov/clauserisk/internal/metrics"
	"github.com/ppiankov/clauserisk/internal/model"
	"github.com/ppiankov/clauserisk/internal/pipeline"
	"github.com/ppiankov/clauserisk/internal/worker"
)

// Version is overridden at build time with -ldflags "-X .../internal/cli.Version=..."
var Version = "v0.1.0"

var (
	cfgFile     string
	verbose     bool
	catalogFile string
	noCache     bool
	noColor     bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "clauserisk",
	Short: "Clauserisk - clause importance and risk triage for legal documents",
	Long: `Clauserisk splits a legal document into clauses, ranks them by how central
they are to the document, and flags clauses that are semantically unusual
compared with the rest of the document. Each flagged clause is paired with
the closest entry from a catalog of known risk categories and a suggested
remediation.

High risk means "unusual for this document". It is statistical triage,
not legal advice.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// ExitCode maps an error to the process exit status
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, pipeline.ErrInput):
		return 2
	case errors.Is(err, pipeline.ErrModelUnavailable):
		return 3
	}
	return 1
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display the version number of Clauserisk.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "clauserisk %s\n", Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()

	// Global flags
	flags.StringVar(&cfgFile, "config", "", "config file (default: $HOME/.clauserisk/config.yaml)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	flags.StringVar(&catalogFile, "catalog", "", "risk catalog YAML file (entries: [{category, remediation}])")
	flags.BoolVar(&noCache, "no-cache", false, "do not persist catalog embeddings to disk")
	flags.BoolVar(&noColor, "no-color", false, "disable colored terminal output")

	// Embedding flags
	flags.String("provider", "", "embedding provider (ollama, openai, hash)")
	flags.String("model", "", "embedding model name")
	flags.String("base-url", "", "embedding API base URL")

	// Analysis flags
	flags.Int("top-n", 0, "number of key clauses to report")
	flags.Float64("contamination", 0, "expected fraction of unusual clauses, in (0, 0.5]")

	// Logging flags
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.String("log-format", "", "log format (console, json)")

	// Bind flags to viper
	for flag, key := range map[string]string{
		"verbose":       "output.verbose",
		"provider":      "embedding.provider",
		"model":         "embedding.model",
		"base-url":      "embedding.base_url",
		"top-n":         "analysis.top_n",
		"contamination": "analysis.contamination",
		"log-level":     "log.level",
		"log-format":    "log.format",
	} {
		_ = viper.BindPFlag(key, flags.Lookup(flag))
	}

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if err := setDefaults(model.DefaultConfig()); err != nil {
		fmt.Fprintf(os.Stderr, "Error setting config defaults: %v\n", err)
	}

	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		// Search for config in home directory
		viper.AddConfigPath(filepath.Join(home, ".clauserisk"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match CLAUSERISK_*, e.g. CLAUSERISK_ANALYSIS_TOP_N
	viper.SetEnvPrefix("CLAUSERISK")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// setDefaults registers every config key with viper so env vars can override keys absent from the file
func setDefaults(cfg *model.Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	var tree map[string]interface{}
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return err
	}
	setDefaultTree("", tree)

	// omitempty keys never appear in the marshaled tree
	for _, key := range []string{"embedding.api_key", "embedding.base_url", "embedding.http_proxy", "embedding.https_proxy"} {
		viper.SetDefault(key, "")
	}
	return nil
}

func setDefaultTree(prefix string, tree map[string]interface{}) {
	for k, v := range tree {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if sub, ok := v.(map[string]interface{}); ok {
			setDefaultTree(key, sub)
			continue
		}
		viper.SetDefault(key, v)
	}
}

// loadConfig resolves the effective configuration: flags > env > file > defaults
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if catalogFile != "" {
		catalog, err := model.LoadCatalog(catalogFile)
		if err != nil {
			return nil, err
		}
		cfg.Catalog = catalog
	}

	if noCache {
		cfg.Cache.Enabled = false
	}
	if noColor {
		cfg.Output.Color = false
	}

	// Conventional provider env vars fill gaps
	switch strings.ToLower(cfg.Embedding.Provider) {
	case "openai":
		if cfg.Embedding.APIKey == "" {
			cfg.Embedding.APIKey = os.Getenv("OPENAI_API_KEY")
		}
	case "ollama":
		if cfg.Embedding.BaseURL == "" {
			cfg.Embedding.BaseURL = os.Getenv("OLLAMA_BASE_URL")
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// newLogger builds the structured logger for cfg
func newLogger(cfg *model.Config) (*zap.Logger, error) {
	return logging.New(cfg.Log.Level, cfg.Log.Format)
}

// buildPipeline wires the provider, rate limiter, cache and metrics into a pipeline
func buildPipeline(cfg *model.Config, logger *zap.Logger, m *metrics.Metrics) (*pipeline.Pipeline, error) {
	var limiter embed.Waiter
	if cfg.RateLimiting.RequestsPerSecond > 0 {
		limiter = worker.NewLimiter(cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize)
	}

	provider, err := embed.NewProvider(embed.ConfigFromModel(cfg.Embedding), limiter)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", pipeline.ErrModelUnavailable, err)
	}

	return pipeline.New(cfg, provider,
		pipeline.WithLogger(logger),
		pipeline.WithMetrics(m),
	)
}
