// Package config defines the application configuration and loads it from
// defaults, an optional YAML file and SHAM_* environment variables.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// ErrConfiguration is wrapped by every error returned from LoadConfig.
var ErrConfiguration = errors.New("configuration error")

// Config holds all configuration sections of the application.
type Config struct {
	Logger    LoggerConfig    `mapstructure:"logger"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Personas  PersonasConfig  `mapstructure:"personas"`
	AI        AIConfig        `mapstructure:"ai"`
	Replies   RepliesConfig   `mapstructure:"replies"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

// LoggerConfig controls the slog handler.
type LoggerConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
}

// DatabaseConfig points at the sqlite database file.
type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// PersonasConfig locates the persona catalog. An empty path selects the
// built-in catalog.
type PersonasConfig struct {
	Path string `mapstructure:"path"`
}

// AIConfig selects and configures the text-transform provider.
type AIConfig struct {
	Provider string        `mapstructure:"provider" validate:"oneof=gemini openai template"`
	Timeout  time.Duration `mapstructure:"timeout"  validate:"min=1s,max=10m"`
	Breaker  BreakerConfig `mapstructure:"breaker"`
	Gemini   GeminiConfig  `mapstructure:"gemini"`
	OpenAI   OpenAIConfig  `mapstructure:"openai"`
}

// BreakerConfig controls the circuit breaker in front of AI providers.
// While it is open posts go straight to the template provider.
type BreakerConfig struct {
	MaxFailures int           `mapstructure:"max_failures" validate:"min=1,max=100"`
	Cooldown    time.Duration `mapstructure:"cooldown"     validate:"min=1s,max=1h"`
}

// GeminiConfig configures the Gemini provider.
type GeminiConfig struct {
	APIKey            string  `mapstructure:"api_key"`
	BaseURL           string  `mapstructure:"base_url"            validate:"omitempty,url"`
	ModelName         string  `mapstructure:"model_name"          validate:"required"`
	Temperature       float32 `mapstructure:"temperature"         validate:"min=0,max=2"`
	SystemInstruction string  `mapstructure:"system_instruction"`
	MaxRetries        int     `mapstructure:"max_retries"         validate:"min=0,max=10"`
	RetryDelaySeconds int     `mapstructure:"retry_delay_seconds" validate:"min=0,max=60"`
}

// OpenAIConfig configures the OpenAI-compatible provider.
type OpenAIConfig struct {
	APIKey            string  `mapstructure:"api_key"`
	BaseURL           string  `mapstructure:"base_url"           validate:"required,url"`
	Model             string  `mapstructure:"model"              validate:"required"`
	Temperature       float32 `mapstructure:"temperature"        validate:"min=0,max=2"`
	MaxTokens         int     `mapstructure:"max_tokens"         validate:"min=1,max=4096"`
	MaxRetries        int     `mapstructure:"max_retries"        validate:"min=0,max=10"`
	SystemInstruction string  `mapstructure:"system_instruction"`
}

// RepliesConfig holds the burst parameters for both kinds of trigger.
type RepliesConfig struct {
	Post    BurstConfig `mapstructure:"post"`
	Comment BurstConfig `mapstructure:"comment"`
}

// BurstConfig describes one burst of bot replies: how many personas react,
// the uniform delay range and the per-index stagger.
type BurstConfig struct {
	Count    int           `mapstructure:"count"     validate:"min=0,max=20"`
	MinDelay time.Duration `mapstructure:"min_delay" validate:"min=0s"`
	MaxDelay time.Duration `mapstructure:"max_delay" validate:"gtefield=MinDelay,max=1h"`
	Stagger  time.Duration `mapstructure:"stagger"   validate:"min=0s,max=1m"`
}

// SchedulerConfig lists the cron maintenance tasks.
type SchedulerConfig struct {
	Tasks map[string]TaskConfig `mapstructure:"tasks"`
}

// TaskConfig enables a cron task and sets its schedule (six-field cron).
type TaskConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr" validate:"required_if=Enabled true"`
}

// Validate checks struct tags and the rules that span sections.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}

	switch c.AI.Provider {
	case "gemini":
		if c.AI.Gemini.APIKey == "" {
			return fmt.Errorf("ai.gemini.api_key is required when ai.provider is gemini")
		}
	case "openai":
		if c.AI.OpenAI.APIKey == "" {
			return fmt.Errorf("ai.openai.api_key is required when ai.provider is openai")
		}
	}

	for name, task := range c.Scheduler.Tasks {
		if task.Enabled && task.Schedule == "" {
			return fmt.Errorf("scheduler task %q is enabled but has no schedule", name)
		}
	}

	return nil
}
