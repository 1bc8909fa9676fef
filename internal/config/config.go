package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Config is the orchestrator's configuration surface, loaded from the
// environment (optionally seeded from a .env file).
type Config struct {
	User   string // Action-log user the decisions are recorded under
	DBPath string // SQLite file for the action log

	ResearchPrompt           string // Override for the default strategy prompt
	PortfolioUpdatePrompt    string // Override for the default update prompt
	StrategyUpdateFrequency  string // daily, weekly, monthly
	PortfolioUpdateFrequency string // hourly, daily, weekly

	MaxTakeProfitPct float64 // Upper clamp for LLM-proposed take-profit rules (fraction)
	MaxStopLossPct   float64 // Upper clamp for LLM-proposed stop-loss rules (fraction)
	MaxPortfolioSize int     // Advisory cap on desired position count
	TradeType        string  // paper or live; advisory at this layer

	LLMBackend    string // openai or console
	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string

	LogFile       string
	MaxLogSizeMB  int64
	MaxLogBackups int
}

var strategyFrequencies = map[string]bool{"daily": true, "weekly": true, "monthly": true}
var portfolioFrequencies = map[string]bool{"hourly": true, "daily": true, "weekly": true}

// Load reads the configuration. Missing broker credentials are fatal; an
// OpenAI key is only required when the openai backend is selected.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg := &Config{
		User:   getEnv("GIGA_USER", "default"),
		DBPath: getEnv("GIGA_DB_PATH", "data/actions.db"),

		ResearchPrompt:           os.Getenv("RESEARCH_PROMPT"),
		PortfolioUpdatePrompt:    os.Getenv("PORTFOLIO_UPDATE_PROMPT"),
		StrategyUpdateFrequency:  getEnv("STRATEGY_UPDATE_FREQUENCY", "weekly"),
		PortfolioUpdateFrequency: getEnv("PORTFOLIO_UPDATE_FREQUENCY", "weekly"),

		MaxTakeProfitPct: getEnvAsFloat64("MAX_TAKE_PROFIT_PCT", 0.25),
		MaxStopLossPct:   getEnvAsFloat64("MAX_STOP_LOSS_PCT", 0.10),
		MaxPortfolioSize: getEnvAsInt("MAX_PORTFOLIO_SIZE", 20),
		TradeType:        getEnv("TRADE_TYPE", "paper"),

		LLMBackend:    getEnv("LLM_BACKEND", "openai"),
		OpenAIAPIKey:  os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:   getEnv("OPENAI_MODEL", "gpt-4o"),
		OpenAIBaseURL: getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),

		LogFile:       getEnv("GIGA_LOG_FILE", "gigatrader.log"),
		MaxLogSizeMB:  int64(getEnvAsInt("GIGA_LOG_MAX_SIZE_MB", 10)),
		MaxLogBackups: getEnvAsInt("GIGA_LOG_MAX_BACKUPS", 3),
	}

	if !strategyFrequencies[cfg.StrategyUpdateFrequency] {
		log.Printf("Warning: invalid STRATEGY_UPDATE_FREQUENCY %q, using weekly", cfg.StrategyUpdateFrequency)
		cfg.StrategyUpdateFrequency = "weekly"
	}
	if !portfolioFrequencies[cfg.PortfolioUpdateFrequency] {
		log.Printf("Warning: invalid PORTFOLIO_UPDATE_FREQUENCY %q, using weekly", cfg.PortfolioUpdateFrequency)
		cfg.PortfolioUpdateFrequency = "weekly"
	}
	if cfg.TradeType != "paper" && cfg.TradeType != "live" {
		log.Printf("Warning: invalid TRADE_TYPE %q, using paper", cfg.TradeType)
		cfg.TradeType = "paper"
	}

	var missing []string
	for _, key := range []string{"APCA_API_KEY_ID", "APCA_API_SECRET_KEY"} {
		if os.Getenv(key) == "" {
			missing = append(missing, key)
		}
	}
	if cfg.LLMBackend == "openai" && cfg.OpenAIAPIKey == "" {
		missing = append(missing, "OPENAI_API_KEY")
	}
	if len(missing) > 0 {
		log.Fatalf("CRITICAL: Missing required environment variables: %v", missing)
	}

	return cfg
}
