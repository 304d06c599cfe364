package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/manifoldco/promptui"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/talentmatch/talentmatch/internal/ai"
	"github.com/talentmatch/talentmatch/internal/ai/gemini"
	"github.com/talentmatch/talentmatch/internal/logger"
	"github.com/talentmatch/talentmatch/internal/match"
	"github.com/talentmatch/talentmatch/internal/recruiting"
	"github.com/talentmatch/talentmatch/internal/secrets"
)

const (
	PromptSaveRegistry = "Save registry and exit"
	PromptReportByJob  = "Report by job"
	PromptDumpToFile   = "Dump matches to file"
	PromptQuit         = "Quit without saving"
)

var errExit = errors.New("exit requested")

var prompt = promptui.Select{
	Label: "Matches computed. What next?",
	Items: []string{PromptSaveRegistry, PromptReportByJob, PromptDumpToFile, PromptQuit},
}

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Score the candidate pool against job postings and update the match registry",
	Run: func(cmd *cobra.Command, _ []string) {
		runMatch(cmd)
	},
}

func init() {
	rootCmd.AddCommand(matchCmd)

	matchCmd.Flags().String("job", "", "compute matches only for the job with this id")
	matchCmd.Flags().BoolP("available-only", "a", false, "skip candidates not marked as available")
	matchCmd.Flags().BoolP("auto-approve", "y", false, "save the registry without asking for confirmation")
	matchCmd.Flags().StringP("registry-file", "r", "", "file holding the match registry. Default is taken from the config.")

	viper.BindPFlag("registry-file", matchCmd.Flags().Lookup("registry-file"))
	viper.BindPFlag("match.available-only", matchCmd.Flags().Lookup("available-only"))
}

// runMatch is the main command for the cli.
func runMatch(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting talentmatch", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	if config == nil {
		logger.Fatal("config is required")
	}
	if config.Match == nil {
		config.Match = &MatchConfig{}
	}

	jobs, err := recruiting.JobsFromFile(config.JobsFile)
	if err != nil {
		logger.Fatal("loading job postings", zap.Error(err))
	}
	logger.Info("loading job postings", zap.Int("count", jobs.Len()))

	candidates, err := recruiting.CandidatesFromFile(config.CandidatesFile)
	if err != nil {
		logger.Fatal("loading candidate profiles", zap.Error(err))
	}
	logger.Info("loading candidate profiles", zap.Int("count", candidates.Len()))

	registryFile := strings.TrimSpace(viper.GetString("registry-file"))
	registry, err := recruiting.RegistryFromFile(registryFile)
	if err != nil {
		logger.Fatal("loading match registry", zap.Error(err))
	}
	logger.Info("loading match registry", zap.Int("entries", registry.Len()))

	selected := jobs.Items
	if jobID := cmd.Flag("job").Value.String(); jobID != "" {
		job := jobs.FindByID(jobID)
		if job == nil {
			logger.Fatal("job with given id not found",
				zap.Strings("existing job ids", jobs.IDs()),
				zap.String("job id", jobID),
			)
		}
		selected = []*recruiting.JobPosting{job}
	}

	if len(selected) == 0 {
		logger.Info("exiting", zap.String("reason", "no job postings found"))
		return
	}

	provider := prepareProvider(ctx, config.AI, logger)
	cache := prepareCache(config.Cache, logger)

	engine := match.NewEngine(provider, cache, logger)
	ranker := match.NewRanker(engine, logger)

	opts := match.RankOptions{
		AvailableOnly: viper.GetBool("match.available-only"),
		MinScore:      config.Match.MinScore,
		Concurrency:   config.Match.Concurrency,
	}

	updated := 0
	computed := 0
	for _, job := range selected {
		results, err := ranker.ComputeForJob(ctx, job, candidates, opts)
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Fatal("computing matches", zap.String("job_id", job.ID), zap.Error(err))
		}

		computed += len(results)
		updated += registry.Merge(results)

		if err != nil {
			logger.Warn("matching interrupted, merging partial results",
				zap.String("job_id", job.ID),
				zap.Int("results", len(results)),
			)
			break
		}
	}

	logger.Info("matching finished",
		zap.Int("results", computed),
		zap.Int("registry_updates", updated),
		zap.Int("registry_entries", registry.Len()),
	)

	if computed == 0 {
		logger.Info("exiting", zap.String("reason", "no matches computed"))
		return
	}

	action := PromptSaveRegistry
	for {
		var err error
		if cmd.Flag("auto-approve").Value.String() == "false" {
			_, action, err = prompt.Run()
			if err != nil {
				logger.Fatal("exiting", zap.Error(err))
			}
		}

		if err := handleAction(action, logger, registry, registryFile); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

func handleAction(action string, logger *zap.Logger, registry *recruiting.Registry, registryFile string) error {
	switch action {
	case PromptSaveRegistry:
		if registryFile == "" {
			return errors.New("registry file is not configured, use --registry-file or the registry-file config key")
		}
		if err := registry.ToFile(registryFile); err != nil {
			return fmt.Errorf("save registry: %w", err)
		}
		logger.Info("registry saved", zap.String("filename", registryFile), zap.Int("entries", registry.Len()))
		return errExit
	case PromptReportByJob:
		pretty, _ := json.MarshalIndent(registry.ReportByJob(), "", "  ")
		logger.Info(string(pretty), zap.Int("entries", registry.Len()))
		return nil
	case PromptDumpToFile:
		filename, err := registry.DumpToTmpFile()
		if err != nil {
			return fmt.Errorf("dump matches to file: %w", err)
		}
		logger.Info("dumping matches to file", zap.String("filename", filename))
		return nil
	case PromptQuit:
		logger.Info("exiting", zap.String("reason", "quit without saving"))
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

// prepareProvider builds the semantic provider from the AI configuration. A
// missing or broken provider setup is not fatal: matching degrades to
// keyword-only scoring.
func prepareProvider(ctx context.Context, cfg *AIConfig, logger *zap.Logger) ai.Provider {
	if cfg == nil || !cfg.Enabled {
		logger.Info("semantic analysis disabled, using keyword matching only")
		return nil
	}

	provider, err := newGeminiProvider(ctx, cfg, logger)
	if err != nil {
		logger.Warn("skipping semantic analysis", zap.Error(err))
		return nil
	}

	return provider
}

func newGeminiProvider(ctx context.Context, cfg *AIConfig, log *zap.Logger) (ai.Provider, error) {
	name := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if name != "" && name != "gemini" {
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}

	if cfg.Gemini == nil {
		return nil, errors.New("gemini configuration is required when ai is enabled")
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: cfg.Gemini.APIKeyFile,
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY_FILE)", err)
	}

	clientLogger := logger.WithFields(
		logger.WithCommonFields(log, "gemini", cfg.Gemini.Model),
		zap.Int("ai_retry_attempts", cfg.Gemini.MaxRetries),
	)

	client, err := gemini.NewClient(ctx, apiKey, cfg.Gemini.Model, cfg.Gemini.EmbeddingModel, cfg.Gemini.MaxRetries, clientLogger)
	if err != nil {
		return nil, err
	}

	providerLogger := logger.WithCommonFields(log, "gemini", client.Model())

	return gemini.NewProvider(client, providerLogger, cfg.Gemini.MaxLogLength), nil
}

// prepareCache selects the analysis cache backend. Unknown backends fall
// back to the in-memory cache.
func prepareCache(cfg *CacheConfig, logger *zap.Logger) match.AnalysisCache {
	if cfg == nil || strings.EqualFold(cfg.Backend, "memory") || cfg.Backend == "" {
		return match.NewMemoryCache()
	}

	if !strings.EqualFold(cfg.Backend, "redis") {
		logger.Warn("unknown cache backend, using in-memory cache", zap.String("backend", cfg.Backend))
		return match.NewMemoryCache()
	}

	if cfg.Redis == nil || strings.TrimSpace(cfg.Redis.Address) == "" {
		logger.Warn("redis cache backend selected but no address configured, using in-memory cache")
		return match.NewMemoryCache()
	}

	ttl := cfg.Redis.TTL
	if ttl <= 0 {
		ttl = time.Hour
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	logger.Info("using redis analysis cache",
		zap.String("address", cfg.Redis.Address),
		zap.Duration("ttl", ttl),
	)

	return match.NewRedisCache(client, ttl, logger)
}
