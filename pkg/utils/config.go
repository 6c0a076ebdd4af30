package utils

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds every tunable of the planning pipeline. Retry counts,
// budgets and the exchange rate are deliberately configuration values
// rather than constants.
type Config struct {
	Port string `mapstructure:"PORT"`
	Env  string `mapstructure:"ENV"`

	GenerationProvider string `mapstructure:"GENERATION_PROVIDER"`
	GeminiAPIKey       string `mapstructure:"GEMINI_API_KEY"`
	GeminiModel        string `mapstructure:"GEMINI_MODEL"`
	OpenAIAPIKey       string `mapstructure:"OPENAI_API_KEY"`
	OpenAIModel        string `mapstructure:"OPENAI_MODEL"`

	GeocoderBaseURL string `mapstructure:"GEOCODER_BASE_URL"`
	SearchBaseURL   string `mapstructure:"SEARCH_BASE_URL"`

	GenerationTimeoutSeconds int `mapstructure:"GENERATION_TIMEOUT_SECONDS"`
	GenerationAttempts       int `mapstructure:"GENERATION_ATTEMPTS"`
	RepairAttempts           int `mapstructure:"REPAIR_ATTEMPTS"`

	SourceTimeoutSeconds  int `mapstructure:"SOURCE_TIMEOUT_SECONDS"`
	SearchResultsPerTopic int `mapstructure:"SEARCH_RESULTS_PER_TOPIC"`
	SnippetsPerTopic      int `mapstructure:"SNIPPETS_PER_TOPIC"`
	RetrievalParallelism  int `mapstructure:"RETRIEVAL_PARALLELISM"`
	PageCacheTTLHours     int `mapstructure:"PAGE_CACHE_TTL_HOURS"`

	ContextBudgetChars int `mapstructure:"CONTEXT_BUDGET_CHARS"`

	MaxTripDays            int     `mapstructure:"MAX_TRIP_DAYS"`
	SourceCurrency         string  `mapstructure:"SOURCE_CURRENCY"`
	DisplayCurrency        string  `mapstructure:"DISPLAY_CURRENCY"`
	ExchangeRate           float64 `mapstructure:"EXCHANGE_RATE"`
	TransitThresholdMinute int     `mapstructure:"TRANSIT_THRESHOLD_MINUTES"`
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}

func (c Config) GenerationTimeout() time.Duration {
	return time.Duration(c.GenerationTimeoutSeconds) * time.Second
}

func (c Config) SourceTimeout() time.Duration {
	return time.Duration(c.SourceTimeoutSeconds) * time.Second
}

func (c Config) PageCacheTTL() time.Duration {
	return time.Duration(c.PageCacheTTLHours) * time.Hour
}

// LoadConfig reads the local .env when present, then environment variables
// over the defaults below.
func LoadConfig() Config {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")

	v.SetDefault("GENERATION_PROVIDER", "gemini")
	v.SetDefault("GEMINI_MODEL", "gemini-1.5-flash")
	v.SetDefault("OPENAI_MODEL", "gpt-4o-mini")

	v.SetDefault("GEOCODER_BASE_URL", "https://nominatim.openstreetmap.org")
	v.SetDefault("SEARCH_BASE_URL", "https://html.duckduckgo.com")

	v.SetDefault("GENERATION_TIMEOUT_SECONDS", 60)
	v.SetDefault("GENERATION_ATTEMPTS", 3)
	v.SetDefault("REPAIR_ATTEMPTS", 2)

	v.SetDefault("SOURCE_TIMEOUT_SECONDS", 10)
	v.SetDefault("SEARCH_RESULTS_PER_TOPIC", 6)
	v.SetDefault("SNIPPETS_PER_TOPIC", 3)
	v.SetDefault("RETRIEVAL_PARALLELISM", 4)
	v.SetDefault("PAGE_CACHE_TTL_HOURS", 24)

	v.SetDefault("CONTEXT_BUDGET_CHARS", 12000)

	v.SetDefault("MAX_TRIP_DAYS", 60)
	v.SetDefault("SOURCE_CURRENCY", "INR")
	v.SetDefault("DISPLAY_CURRENCY", "USD")
	v.SetDefault("EXCHANGE_RATE", 83.0)
	v.SetDefault("TRANSIT_THRESHOLD_MINUTES", 360)

	// viper.Unmarshal does not see AutomaticEnv values unless the keys are
	// bound, so bind each known key explicitly.
	keys := []string{
		"PORT", "ENV",
		"GENERATION_PROVIDER", "GEMINI_API_KEY", "GEMINI_MODEL",
		"OPENAI_API_KEY", "OPENAI_MODEL",
		"GEOCODER_BASE_URL", "SEARCH_BASE_URL",
		"GENERATION_TIMEOUT_SECONDS", "GENERATION_ATTEMPTS", "REPAIR_ATTEMPTS",
		"SOURCE_TIMEOUT_SECONDS", "SEARCH_RESULTS_PER_TOPIC",
		"SNIPPETS_PER_TOPIC", "RETRIEVAL_PARALLELISM", "PAGE_CACHE_TTL_HOURS",
		"CONTEXT_BUDGET_CHARS",
		"MAX_TRIP_DAYS", "SOURCE_CURRENCY", "DISPLAY_CURRENCY",
		"EXCHANGE_RATE", "TRANSIT_THRESHOLD_MINUTES",
	}
	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}
