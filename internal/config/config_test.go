package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		StoreCfg: StoreConfig{Kind: StoreMemory, TTL: time.Hour},
		LLMConnectorCfg: LLMConnectorConfig{
			Provider: ProviderOpenAI,
			APIKey:   "sk-test",
			Timeout:  30 * time.Second,
		},
		IntakeCfg: IntakeConfig{MaxSurveyQuestions: 50, MaxAnswerLength: 4000},
		TelegramCfg: TelegramConfig{
			RateLimitPerMinute: 20,
			ShutdownTimeout:    30,
		},
	}
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "questions.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestReadIntakeQuestions(t *testing.T) {
	path := writeFile(t, `{"questions": [" What is the purpose? ", "", "Who answers?"]}`)

	questions, err := ReadIntakeQuestions(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"What is the purpose?", "Who answers?"}, questions)
}

func TestReadIntakeQuestions_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"empty file", ""},
		{"bad json", "{questions"},
		{"no questions", `{"questions": []}`},
		{"blank questions", `{"questions": ["  "]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadIntakeQuestions(writeFile(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestReadIntakeQuestions_BundledFile(t *testing.T) {
	questions, err := ReadIntakeQuestions("intake_questions.json")
	require.NoError(t, err)
	assert.Len(t, questions, 5)
	assert.Equal(t, defaultIntakeQuestions, questions[:3])
}

func TestLoadIntakeQuestions_MissingFileFallsBack(t *testing.T) {
	cfg := validConfig()
	cfg.IntakeCfg.QuestionsFile = filepath.Join(t.TempDir(), "absent.json")

	require.NoError(t, loadIntakeQuestions(cfg))
	assert.Equal(t, DefaultIntakeQuestions(), cfg.IntakeQuestions)
}

func TestDefaultIntakeQuestions_ReturnsCopy(t *testing.T) {
	q := DefaultIntakeQuestions()
	q[0] = "changed"
	assert.NotEqual(t, "changed", DefaultIntakeQuestions()[0])
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"unknown store", func(c *Config) { c.StoreCfg.Kind = "sqlite" }, "STORE_KIND"},
		{"postgres without url", func(c *Config) {
			c.StoreCfg.Kind = StorePostgres
			c.DBMaxConns = 10
		}, "DATABASE_URL"},
		{"openai without key", func(c *Config) { c.LLMConnectorCfg.APIKey = "" }, "LLM_API_KEY"},
		{"mocks skip key check", func(c *Config) {
			c.LLMConnectorCfg.APIKey = ""
			c.EnableMocks = true
		}, ""},
		{"service without url", func(c *Config) { c.LLMConnectorCfg.Provider = ProviderService }, "LLM_SERVICE_URL"},
		{"unknown provider", func(c *Config) { c.LLMConnectorCfg.Provider = "anthropic" }, "LLM_PROVIDER"},
		{"zero timeout", func(c *Config) { c.LLMConnectorCfg.Timeout = 0 }, "LLM_GENERATION_TIMEOUT"},
		{"too many questions", func(c *Config) { c.IntakeCfg.MaxSurveyQuestions = 500 }, "INTAKE_MAX_SURVEY_QUESTIONS"},
		{"zero answer length", func(c *Config) { c.IntakeCfg.MaxAnswerLength = 0 }, "INTAKE_MAX_ANSWER_LENGTH"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := validateConfig(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestGeneratorProvider(t *testing.T) {
	cfg := validConfig()
	assert.Equal(t, ProviderOpenAI, cfg.GeneratorProvider())

	cfg.EnableMocks = true
	assert.Equal(t, ProviderMock, cfg.GeneratorProvider())
}

func TestGetEnvFile(t *testing.T) {
	assert.Equal(t, ".env.local", getEnvFile("dev"))
	assert.Equal(t, ".env.prod", getEnvFile("production"))
	assert.Equal(t, ".env.staging", getEnvFile("staging"))
}
