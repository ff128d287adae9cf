package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment overrides, e.g. SHAM_AI_PROVIDER.
const EnvPrefix = "SHAM"

// LoadConfig loads and validates configuration from:
// 1. Default values
// 2. the YAML file at path (optional, missing file is not an error)
// 3. SHAM_* environment variables
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("%w: failed to read config file %s: %v", ErrConfiguration, path, err)
			}
			slog.Info("Configuration file not found, using defaults", "path", path)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrConfiguration, err)
	}

	if cfg.Scheduler.Tasks == nil {
		cfg.Scheduler.Tasks = make(map[string]TaskConfig)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}

	return cfg, nil
}

// setDefaults registers every key with viper so that environment overrides
// are picked up by Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", DefaultLogLevel)
	v.SetDefault("logger.json", DefaultLogJSON)

	v.SetDefault("database.path", DefaultDBPath)

	v.SetDefault("personas.path", "")

	v.SetDefault("ai.provider", DefaultAIProvider)
	v.SetDefault("ai.timeout", DefaultAITimeout)
	v.SetDefault("ai.breaker.max_failures", DefaultBreakerMaxFailures)
	v.SetDefault("ai.breaker.cooldown", DefaultBreakerCooldown)

	v.SetDefault("ai.gemini.api_key", "")
	v.SetDefault("ai.gemini.base_url", "")
	v.SetDefault("ai.gemini.model_name", DefaultGeminiModel)
	v.SetDefault("ai.gemini.temperature", DefaultGeminiTemperature)
	v.SetDefault("ai.gemini.system_instruction", DefaultTransformInstruction)
	v.SetDefault("ai.gemini.max_retries", DefaultGeminiMaxRetries)
	v.SetDefault("ai.gemini.retry_delay_seconds", DefaultGeminiRetryDelay)

	v.SetDefault("ai.openai.api_key", "")
	v.SetDefault("ai.openai.base_url", DefaultOpenAIBaseURL)
	v.SetDefault("ai.openai.model", DefaultOpenAIModel)
	v.SetDefault("ai.openai.temperature", DefaultOpenAITemperature)
	v.SetDefault("ai.openai.max_tokens", DefaultOpenAIMaxTokens)
	v.SetDefault("ai.openai.max_retries", DefaultOpenAIMaxRetries)
	v.SetDefault("ai.openai.system_instruction", DefaultTransformInstruction)

	v.SetDefault("replies.post.count", DefaultPostReplyCount)
	v.SetDefault("replies.post.min_delay", DefaultPostReplyMinDelay)
	v.SetDefault("replies.post.max_delay", DefaultPostReplyMaxDelay)
	v.SetDefault("replies.post.stagger", DefaultPostReplyStagger)

	v.SetDefault("replies.comment.count", DefaultCommentReplyCount)
	v.SetDefault("replies.comment.min_delay", DefaultCommentReplyMinDelay)
	v.SetDefault("replies.comment.max_delay", DefaultCommentReplyMaxDelay)
	v.SetDefault("replies.comment.stagger", DefaultCommentReplyStagger)

	for name, task := range DefaultTasks {
		v.SetDefault("scheduler.tasks."+name+".enabled", task.Enabled)
		v.SetDefault("scheduler.tasks."+name+".schedule", task.Schedule)
	}

	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.addr", DefaultMetricsAddr)
}
