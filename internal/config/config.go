package config

import (
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port  string `envconfig:"PORT" default:"8080"`
	Debug bool   `envconfig:"DEBUG" default:"false"`

	DatabaseURL string `envconfig:"DATABASE_URL"`

	// APIToken protects mutating and knowledge-base routes on the daemon.
	APIToken string `envconfig:"API_TOKEN"`

	GitHubToken  string `envconfig:"GITHUB_TOKEN"`
	GitHubAPIURL string `envconfig:"GITHUB_API_URL" default:"https://api.github.com"`

	// LLMProvider selects the chat backend: "openai" or "anthropic".
	LLMProvider     string `envconfig:"LLM_PROVIDER" default:"openai"`
	LLMModel        string `envconfig:"LLM_MODEL"`
	OpenAIAPIKey    string `envconfig:"OPENAI_API_KEY"`
	AnthropicAPIKey string `envconfig:"ANTHROPIC_API_KEY"`

	// Classification batching: fixed-size batches with a fixed pause
	// between them to stay under provider rate limits.
	ClassifyBatchSize     int `envconfig:"CLASSIFY_BATCH_SIZE" default:"5"`
	ClassifyBatchDelaySec int `envconfig:"CLASSIFY_BATCH_DELAY_SEC" default:"2"`

	// ClassifySchedule is an optional 5-field cron expression; when set,
	// the daemon re-classifies ClassifyRepository on that schedule.
	ClassifySchedule   string `envconfig:"CLASSIFY_SCHEDULE"`
	ClassifyRepository string `envconfig:"CLASSIFY_REPOSITORY"`

	S3Endpoint  string `envconfig:"S3_ENDPOINT"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY_ID"`
	S3SecretKey string `envconfig:"S3_SECRET_ACCESS_KEY"`
	S3Bucket    string `envconfig:"S3_BUCKET" default:"docsentry-snapshots"`
	S3Region    string `envconfig:"S3_REGION" default:"us-east-1"`

	SlackToken   string `envconfig:"SLACK_TOKEN"`
	SlackChannel string `envconfig:"SLACK_CHANNEL"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("DOCSENTRY", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

func (c *Config) HasDatabase() bool {
	return c.DatabaseURL != ""
}

func (c *Config) HasS3() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}

func (c *Config) HasGitHub() bool {
	return c.GitHubToken != ""
}

func (c *Config) HasSlack() bool {
	return c.SlackToken != "" && c.SlackChannel != ""
}

// HasLLM reports whether the configured chat provider has a key.
func (c *Config) HasLLM() bool {
	switch c.LLMProvider {
	case "anthropic":
		return c.AnthropicAPIKey != ""
	default:
		return c.OpenAIAPIKey != ""
	}
}

// HasEmbeddings reports whether entry embeddings can be generated.
// Embeddings always go through OpenAI regardless of the chat provider.
func (c *Config) HasEmbeddings() bool {
	return c.OpenAIAPIKey != ""
}
