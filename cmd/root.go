package cmd

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "talentmatch"
)

type Config struct {
	JobsFile       string `mapstructure:"jobs-file"`
	CandidatesFile string `mapstructure:"candidates-file"`
	RegistryFile   string `mapstructure:"registry-file"`

	Match *MatchConfig `mapstructure:"match"`
	AI    *AIConfig    `mapstructure:"ai"`
	Cache *CacheConfig `mapstructure:"cache"`
}

type MatchConfig struct {
	MinScore      int  `mapstructure:"min-score"`
	Concurrency   int  `mapstructure:"concurrency"`
	AvailableOnly bool `mapstructure:"available-only"`
}

type AIConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Provider string        `mapstructure:"provider"`
	Gemini   *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKeyFile     string `mapstructure:"api-key-file"`
	Model          string `mapstructure:"model"`
	EmbeddingModel string `mapstructure:"embedding-model"`
	MaxRetries     int    `mapstructure:"max-retries"`
	MaxLogLength   int    `mapstructure:"max-log-length"`
}

type CacheConfig struct {
	Backend string       `mapstructure:"backend"`
	Redis   *RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Address  string        `mapstructure:"address"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "talentmatch is a cli for scoring candidate CVs against job postings",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("ai.gemini.api-key-file", "GEMINI_API_KEY_FILE"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY_FILE environment variable: %v", err)
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is talentmatch.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))

	viper.SetDefault("match.min-score", 20)
	viper.SetDefault("match.concurrency", 4)
	viper.SetDefault("cache.backend", "memory")
	viper.SetDefault("cache.redis.ttl", time.Hour)
}

func initConfig() {
	// Config needed only for the match command. If there is no config, we can skip initialization
	if matchCmd.CalledAs() == "" {
		return
	}

	// optional .env with GEMINI_API_KEY_FILE and friends
	_ = godotenv.Load()

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
