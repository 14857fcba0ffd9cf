package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	pkgRetry "github.com/futig/survey-agent/internal/pkg/retry"
	"github.com/joho/godotenv"
)

type StoreKind string

const (
	StoreMemory   StoreKind = "memory"
	StorePostgres StoreKind = "postgres"
	StoreRedis    StoreKind = "redis"
	StoreMongo    StoreKind = "mongo"
)

type LLMProvider string

const (
	ProviderOpenAI  LLMProvider = "openai"
	ProviderService LLMProvider = "service"
	ProviderMock    LLMProvider = "mock"
)

// Config holds the application configuration
type Config struct {
	// Server configuration
	ServerAddr string `env:"SERVER_ADDR" envDefault:":8080"`

	// Session store configuration
	StoreCfg StoreConfig `envPrefix:"STORE_"`

	// Database configuration, used when STORE_KIND=postgres
	DatabaseURL         string        `env:"DATABASE_URL"`
	DBMaxConns          int           `env:"DB_MAX_CONNS" envDefault:"25"`
	DBMinConns          int           `env:"DB_MIN_CONNS" envDefault:"5"`
	DBMaxConnLifetime   time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"1h"`
	DBMaxConnIdleTime   time.Duration `env:"DB_MAX_CONN_IDLE_TIME" envDefault:"30m"`
	DBHealthCheckPeriod time.Duration `env:"DB_HEALTH_CHECK_PERIOD" envDefault:"1m"`
	DBMigrationsURL     string        `env:"DB_MIGRATIONS_URL"` // empty uses the embedded migrations

	RedisCfg RedisConfig `envPrefix:"REDIS_"`
	MongoCfg MongoConfig `envPrefix:"MONGO_"`

	// External service configurations
	LLMConnectorCfg      LLMConnectorConfig      `envPrefix:"LLM_"`
	CallbackConnectorCfg CallbackConnectorConfig `envPrefix:"CALLBACK_"`

	// Logging configuration
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Intake flow configuration
	IntakeCfg IntakeConfig `envPrefix:"INTAKE_"`

	// Intake questions (loaded from JSON file)
	IntakeQuestions []string

	// Mock configuration, forces the mock generator
	EnableMocks bool `env:"ENABLE_MOCKS" envDefault:"false"`

	// Telegram bot configuration (optional)
	TelegramCfg TelegramConfig `envPrefix:"TELEGRAM_"`

	// Environment (set from flag, not from env var)
	Environment string
}

type StoreConfig struct {
	Kind            StoreKind     `env:"KIND" envDefault:"memory"`
	TTL             time.Duration `env:"TTL" envDefault:"24h"`
	CleanupInterval time.Duration `env:"CLEANUP_INTERVAL" envDefault:"10m"`
}

type RedisConfig struct {
	Addr      string `env:"ADDR" envDefault:"localhost:6379"`
	Password  string `env:"PASSWORD"`
	DB        int    `env:"DB" envDefault:"0"`
	KeyPrefix string `env:"KEY_PREFIX" envDefault:"survey-session:"`
}

type MongoConfig struct {
	URI            string        `env:"URI" envDefault:"mongodb://localhost:27017"`
	Database       string        `env:"DATABASE" envDefault:"survey_agent"`
	Collection     string        `env:"COLLECTION" envDefault:"sessions"`
	ConnectTimeout time.Duration `env:"CONNECT_TIMEOUT" envDefault:"10s"`
}

// TelegramConfig holds Telegram bot configuration
type TelegramConfig struct {
	BotToken           string `env:"BOT_TOKEN"`
	UpdateTimeout      int    `env:"UPDATE_TIMEOUT" envDefault:"60"`
	RateLimitPerMinute int    `env:"RATE_LIMIT_PER_MINUTE" envDefault:"20"`
	RateLimitBurst     int    `env:"RATE_LIMIT_BURST" envDefault:"5"`
	ShutdownTimeout    int    `env:"SHUTDOWN_TIMEOUT" envDefault:"30"` // seconds
}

type IntakeConfig struct {
	FollowUpsEnabled   bool   `env:"FOLLOW_UPS_ENABLED" envDefault:"true"`
	MaxSurveyQuestions int    `env:"MAX_SURVEY_QUESTIONS" envDefault:"50"`
	MaxAnswerLength    int    `env:"MAX_ANSWER_LENGTH" envDefault:"4000"`
	QuestionsFile      string `env:"QUESTIONS_FILE" envDefault:"internal/config/intake_questions.json"`
}

type LLMConnectorConfig struct {
	Provider    LLMProvider   `env:"PROVIDER" envDefault:"openai"`
	Timeout     time.Duration `env:"GENERATION_TIMEOUT" envDefault:"30s"`
	Model       string        `env:"MODEL" envDefault:"gpt-4o-mini"`
	Temperature float64       `env:"TEMPERATURE" envDefault:"0.7"`
	APIKey      string        `env:"API_KEY"`
	BaseURL     string        `env:"BASE_URL"`

	// Text generation service, used when LLM_PROVIDER=service
	HTTPClientConfig
	GenerateEndpoint string `env:"GENERATE_ENDPOINT" envDefault:"/generate"`

	Retry pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

type CallbackConnectorConfig struct {
	HTTPClientConfig
	Retry pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

type HTTPClientConfig struct {
	RequestTimeout        time.Duration `env:"TIMEOUT" envDefault:"30s"`
	ConnTimeout           time.Duration `env:"CONN_TIMEOUT" envDefault:"10s"`
	KeepAlive             time.Duration `env:"KEEP_ALIVE" envDefault:"90s"`
	IdleConnTimeout       time.Duration `env:"IDLE_CONN_TIMEOUT" envDefault:"90s"`
	ResponseHeaderTimeout time.Duration `env:"RESPONSE_HEADER_TIMEOUT" envDefault:"30s"`
	Token                 string        `env:"TOKEN"`
	Url                   string        `env:"SERVICE_URL"`
}

// intakeQuestions represents the structure of intake_questions.json
type intakeQuestions struct {
	Questions []string `json:"questions"`
}

func LoadConfig() (*Config, error) {
	envFlag := flag.String("env", "local", "Environment to run (local, prod, or custom)")
	flag.Parse()

	return LoadConfigFor(*envFlag)
}

// LoadConfigFor loads configuration for the named environment without
// touching the global flag set
func LoadConfigFor(environment string) (*Config, error) {
	envFile := getEnvFile(environment)
	// Try to load env file, but don't fail if it's missing.
	// In containerized/prod environments variables are usually set externally.
	if err := godotenv.Load(envFile); err != nil {
		fmt.Printf("Warning: could not load %s file (this is ok if env vars are set externally): %v\n", envFile, err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	cfg.Environment = environment

	// Validate configuration
	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	// Load intake questions from JSON file
	if err := loadIntakeQuestions(cfg); err != nil {
		return nil, fmt.Errorf("load intake questions: %w", err)
	}

	return cfg, nil
}

// GeneratorProvider resolves the provider, honoring ENABLE_MOCKS
func (c *Config) GeneratorProvider() LLMProvider {
	if c.EnableMocks {
		return ProviderMock
	}
	return c.LLMConnectorCfg.Provider
}

func validateConfig(cfg *Config) error {
	var errors []string

	switch cfg.StoreCfg.Kind {
	case StoreMemory, StoreRedis, StoreMongo:
	case StorePostgres:
		if cfg.DatabaseURL == "" {
			errors = append(errors, "DATABASE_URL is required when STORE_KIND=postgres")
		}
		if cfg.DBMaxConns < 1 || cfg.DBMaxConns > 200 {
			errors = append(errors, fmt.Sprintf("DB_MAX_CONNS must be between 1 and 200, got %d", cfg.DBMaxConns))
		}
		if cfg.DBMinConns < 0 || cfg.DBMinConns > cfg.DBMaxConns {
			errors = append(errors, fmt.Sprintf("DB_MIN_CONNS must be between 0 and DB_MAX_CONNS(%d), got %d", cfg.DBMaxConns, cfg.DBMinConns))
		}
	default:
		errors = append(errors, fmt.Sprintf("STORE_KIND must be one of memory, postgres, redis, mongo, got %q", cfg.StoreCfg.Kind))
	}

	if cfg.StoreCfg.TTL < 0 {
		errors = append(errors, fmt.Sprintf("STORE_TTL must not be negative, got %s", cfg.StoreCfg.TTL))
	}

	if !cfg.EnableMocks {
		switch cfg.LLMConnectorCfg.Provider {
		case ProviderMock:
		case ProviderOpenAI:
			if cfg.LLMConnectorCfg.APIKey == "" {
				errors = append(errors, "LLM_API_KEY is required when LLM_PROVIDER=openai")
			}
		case ProviderService:
			if cfg.LLMConnectorCfg.Url == "" {
				errors = append(errors, "LLM_SERVICE_URL is required when LLM_PROVIDER=service")
			}
		default:
			errors = append(errors, fmt.Sprintf("LLM_PROVIDER must be one of openai, service, mock, got %q", cfg.LLMConnectorCfg.Provider))
		}
	}

	if cfg.LLMConnectorCfg.Timeout <= 0 {
		errors = append(errors, fmt.Sprintf("LLM_GENERATION_TIMEOUT must be positive, got %s", cfg.LLMConnectorCfg.Timeout))
	}

	if cfg.IntakeCfg.MaxSurveyQuestions < 1 || cfg.IntakeCfg.MaxSurveyQuestions > 200 {
		errors = append(errors, fmt.Sprintf("INTAKE_MAX_SURVEY_QUESTIONS must be between 1 and 200, got %d", cfg.IntakeCfg.MaxSurveyQuestions))
	}

	if cfg.IntakeCfg.MaxAnswerLength < 1 {
		errors = append(errors, fmt.Sprintf("INTAKE_MAX_ANSWER_LENGTH must be positive, got %d", cfg.IntakeCfg.MaxAnswerLength))
	}

	if cfg.TelegramCfg.RateLimitPerMinute < 1 || cfg.TelegramCfg.RateLimitPerMinute > 60 {
		errors = append(errors, fmt.Sprintf("TELEGRAM_RATE_LIMIT_PER_MINUTE must be between 1 and 60, got %d", cfg.TelegramCfg.RateLimitPerMinute))
	}

	if cfg.TelegramCfg.ShutdownTimeout < 1 || cfg.TelegramCfg.ShutdownTimeout > 300 {
		errors = append(errors, fmt.Sprintf("TELEGRAM_SHUTDOWN_TIMEOUT must be between 1 and 300 seconds, got %d", cfg.TelegramCfg.ShutdownTimeout))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation errors:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

var defaultIntakeQuestions = []string{
	"What is the primary purpose of your survey? (e.g., customer satisfaction, market research, employee feedback)",
	"Who is your target audience for this survey?",
	"How many questions would you like the survey to include?",
}

// DefaultIntakeQuestions returns a copy of the built-in intake questions
func DefaultIntakeQuestions() []string {
	return append([]string(nil), defaultIntakeQuestions...)
}

func loadIntakeQuestions(cfg *Config) error {
	path := filepath.Clean(cfg.IntakeCfg.QuestionsFile)

	// Check if file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		fmt.Printf("Warning: intake questions file not found at %s, using default questions\n", path)
		cfg.IntakeQuestions = DefaultIntakeQuestions()
		return nil
	}

	questions, err := ReadIntakeQuestions(path)
	if err != nil {
		return err
	}

	cfg.IntakeQuestions = questions

	fmt.Printf("Loaded %d intake questions from %s\n", len(cfg.IntakeQuestions), path)
	return nil
}

// ReadIntakeQuestions reads {"questions": [...]} from path
func ReadIntakeQuestions(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read intake questions file: %w", err)
	}

	if len(data) == 0 {
		return nil, fmt.Errorf("intake questions file is empty: %s", path)
	}

	var questionsData intakeQuestions
	if err := json.Unmarshal(data, &questionsData); err != nil {
		return nil, fmt.Errorf("parse intake questions JSON: %w", err)
	}

	questions := make([]string, 0, len(questionsData.Questions))
	for _, q := range questionsData.Questions {
		if q = strings.TrimSpace(q); q != "" {
			questions = append(questions, q)
		}
	}

	if len(questions) == 0 {
		return nil, fmt.Errorf("intake questions file contains no questions: %s", path)
	}

	return questions, nil
}

func getEnvFile(environment string) string {
	switch environment {
	case "prod", "production":
		return ".env.prod"
	case "local", "dev", "development":
		return ".env.local"
	default:
		return fmt.Sprintf(".env.%s", environment)
	}
}
