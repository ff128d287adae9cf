package config

import "time"

// Default values for configuration
const (
	DefaultLogLevel = "info"
	DefaultLogJSON  = false

	DefaultDBPath = "shamstagram.db"

	DefaultAIProvider = "template"
	DefaultAITimeout  = 30 * time.Second

	DefaultBreakerMaxFailures = 5
	DefaultBreakerCooldown    = time.Minute

	DefaultGeminiModel       = "gemini-2.0-flash"
	DefaultGeminiTemperature = 0.9
	DefaultGeminiMaxRetries  = 2
	DefaultGeminiRetryDelay  = 2

	DefaultOpenAIBaseURL     = "https://api.openai.com/v1"
	DefaultOpenAIModel       = "gpt-4o-mini"
	DefaultOpenAITemperature = 0.9
	DefaultOpenAIMaxTokens   = 300
	DefaultOpenAIMaxRetries  = 2

	// Post bursts: three personas, 3-10s, two seconds apart.
	DefaultPostReplyCount    = 3
	DefaultPostReplyMinDelay = 3 * time.Second
	DefaultPostReplyMaxDelay = 10 * time.Second
	DefaultPostReplyStagger  = 2 * time.Second

	// Comment bursts are smaller and quicker.
	DefaultCommentReplyCount    = 2
	DefaultCommentReplyMinDelay = 2 * time.Second
	DefaultCommentReplyMaxDelay = 6 * time.Second
	DefaultCommentReplyStagger  = 1500 * time.Millisecond

	DefaultMetricsAddr = ":6060"
)

// DefaultTransformInstruction is the system instruction given to AI providers.
const DefaultTransformInstruction = `You exaggerate ordinary everyday events into absurdly grandiose stories.
Keep the core of the original text, inflate every number, and describe mundane actions as heroic or historic.
Be funny and playful but never offensive. Answer with the story only, in the language of the original text.`

// DefaultTasks are the cron maintenance tasks enabled out of the box.
var DefaultTasks = map[string]TaskConfig{
	"sql_maintenance":     {Enabled: true, Schedule: "0 0 4 * * *"},
	"bot_activity_report": {Enabled: true, Schedule: "0 0 * * * *"},
	"persona_reload":      {Enabled: false, Schedule: "0 */5 * * * *"},
}
