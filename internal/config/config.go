package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const defaultAssistantURL = "http://127.0.0.1:5000/get-message"

// Observability holds the logging and telemetry settings every binary shares.
type Observability struct {
	LogLevel     string
	LogFile      string
	TelemetryDir string
}

// WidgetConfig configures the chat widgets (web and terminal).
type WidgetConfig struct {
	Port string
	// AssistantURL is the full get-message endpoint. "stub" answers locally.
	AssistantURL string
	// Conversations unused for IdleTimeout are dropped, checked every SweepInterval.
	IdleTimeout   time.Duration
	SweepInterval time.Duration
	Observability
}

// AssistantConfig configures the assistant service.
type AssistantConfig struct {
	Port string

	// Storage
	DatabaseURL string
	RedisURL    string
	CacheTTL    time.Duration

	// LLM
	LLMProvider    string
	LLMTemperature float64
	GeminiAPIKey   string
	GeminiModel    string
	OpenAIAPIKey   string
	OpenAIBaseURL  string
	OpenAIModel    string

	Observability
}

// PopulatorConfig configures the product scraper that fills the document store.
type PopulatorConfig struct {
	// DatabaseURL writes documents straight to Postgres. Without it they are posted to DocumentsURL.
	DatabaseURL  string
	DocumentsURL string
	Categories   []string
	CrawlDepth   int
	CrawlDelay   time.Duration
	Observability
}

// LoadWidget reads the widget configuration from the environment and an optional .env file.
func LoadWidget() *WidgetConfig {
	// Load .env file if it exists
	godotenv.Load()

	return &WidgetConfig{
		Port:          getEnvOrDefault("PORT", "8080"),
		AssistantURL:  getEnvOrDefault("ASSISTANT_URL", defaultAssistantURL),
		IdleTimeout:   getEnvAsDurationOrDefault("CONVERSATION_IDLE_TIMEOUT", 30*time.Minute),
		SweepInterval: getEnvAsDurationOrDefault("CONVERSATION_SWEEP_INTERVAL", time.Minute),
		Observability: loadObservability(),
	}
}

// LoadAssistant reads the assistant service configuration.
func LoadAssistant() *AssistantConfig {
	godotenv.Load()

	cfg := &AssistantConfig{
		Port:           getEnvOrDefault("PORT", "5000"),
		DatabaseURL:    getEnvOrDefault("DATABASE_URL", ""),
		RedisURL:       getEnvOrDefault("REDIS_URL", ""),
		CacheTTL:       getEnvAsDurationOrDefault("CACHE_TTL", 10*time.Minute),
		LLMProvider:    getEnvOrDefault("LLM_PROVIDER", ""),
		LLMTemperature: getEnvAsFloatOrDefault("LLM_TEMPERATURE", 0.7),
		GeminiAPIKey:   getEnvOrDefault("GEMINI_API_KEY", ""),
		GeminiModel:    getEnvOrDefault("GEMINI_MODEL", "gemini-1.5-flash"),
		OpenAIAPIKey:   getEnvOrDefault("OPENAI_API_KEY", ""),
		OpenAIBaseURL:  getEnvOrDefault("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIModel:    getEnvOrDefault("OPENAI_MODEL", "gpt-3.5-turbo-16k"),
		Observability:  loadObservability(),
	}

	if cfg.LLMProvider == "" {
		cfg.LLMProvider = defaultProvider(cfg)
	}
	return cfg
}

// LoadPopulator reads the scraper configuration. CATEGORY_URLS is a comma separated list;
// when empty the caller's defaults apply.
func LoadPopulator() *PopulatorConfig {
	godotenv.Load()

	var categories []string
	for _, c := range strings.Split(getEnvOrDefault("CATEGORY_URLS", ""), ",") {
		if c = strings.TrimSpace(c); c != "" {
			categories = append(categories, c)
		}
	}

	return &PopulatorConfig{
		DatabaseURL:   getEnvOrDefault("DATABASE_URL", ""),
		DocumentsURL:  getEnvOrDefault("DOCUMENTS_URL", "http://127.0.0.1:5000/documents"),
		Categories:    categories,
		CrawlDepth:    getEnvAsIntOrDefault("CRAWL_DEPTH", 0),
		CrawlDelay:    getEnvAsDurationOrDefault("CRAWL_DELAY", 2*time.Second),
		Observability: loadObservability(),
	}
}

// defaultProvider picks the first provider that has a key, or the stub.
func defaultProvider(cfg *AssistantConfig) string {
	switch {
	case cfg.GeminiAPIKey != "":
		return "gemini"
	case cfg.OpenAIAPIKey != "":
		return "openai"
	default:
		return "stub"
	}
}

func loadObservability() Observability {
	return Observability{
		LogLevel:     getEnvOrDefault("LOG_LEVEL", "info"),
		LogFile:      getEnvOrDefault("LOG_FILE", ""),
		TelemetryDir: getEnvOrDefault("TELEMETRY_DIR", ""),
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}

func getEnvAsFloatOrDefault(key string, defaultVal float64) float64 {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return defaultVal
	}
	return f
}

// getEnvAsDurationOrDefault accepts Go durations ("90s") or whole seconds ("90").
func getEnvAsDurationOrDefault(key string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	if d, err := time.ParseDuration(val); err == nil {
		return d
	}
	if secs := getEnvAsIntOrDefault(key, -1); secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	return defaultVal
}
