package config

import (
	"os"

	"github.com/BurntSushi/toml"
)

const (
	DefaultConfigPath            = "config.toml"
	DefaultHTTPAddr              = ":8080"
	DefaultRequestTimeoutSeconds = 90
	DefaultTextModel             = "gpt-4o-mini"
	DefaultVisionModel           = "gpt-4o"
	DefaultMaxTokens             = 4096
	DefaultLLMTimeoutSeconds     = 60
	DefaultOpenAIBaseURL         = "https://api.openai.com/v1"
	DefaultAnthropicBaseURL      = "https://api.anthropic.com/v1"
	DefaultGoogleBaseURL         = "https://generativelanguage.googleapis.com/v1beta"
	DefaultMemoryBaseURL         = "https://api.mem0.ai"
	DefaultMemoryAgentID         = "slack-assistant"
	DefaultMemoryTimeoutSeconds  = 10
	DefaultMediaTimeoutSeconds   = 30
)

// DefaultSystemPrompt is the assistant persona used when no override is configured.
const DefaultSystemPrompt = "You are a helpful AI assistant integrated with Slack. " +
	"You have access to conversation history and can help users with questions and tasks. " +
	"Be friendly, helpful, and concise in your responses."

type Config struct {
	Log    LogConfig    `toml:"log"`
	Server ServerConfig `toml:"server"`
	LLM    LLMConfig    `toml:"llm"`
	Memory MemoryConfig `toml:"memory"`
	Media  MediaConfig  `toml:"media"`
	Slack  SlackConfig  `toml:"slack"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

type ServerConfig struct {
	Addr string `toml:"addr"`
	// RequestTimeoutSeconds bounds one full pipeline run, across all of its
	// sequential network calls.
	RequestTimeoutSeconds int `toml:"request_timeout_seconds"`
}

type LLMConfig struct {
	DefaultModel   string `toml:"default_model"`
	VisionModel    string `toml:"vision_model"`
	SystemPrompt   string `toml:"system_prompt"`
	MaxTokens      int    `toml:"max_tokens"`
	TimeoutSeconds int    `toml:"timeout_seconds"`

	OpenAI    EndpointConfig `toml:"openai"`
	Anthropic EndpointConfig `toml:"anthropic"`
	Google    EndpointConfig `toml:"google"`

	Gateway GatewayConfig `toml:"gateway"`

	// Families maps model identifiers to an explicit provider family
	// ("openai", "anthropic", "google"), overriding name-based detection.
	Families map[string]string `toml:"families"`
}

// EndpointConfig holds the base URL and credential for one provider family.
type EndpointConfig struct {
	BaseURL string `toml:"base_url"`
	APIKey  string `toml:"api_key"`
}

// GatewayConfig configures an optional metering forward proxy. When BaseURL is
// set, provider calls are routed through {base}/forward?u=<target> with the
// forward token as the bearer credential.
type GatewayConfig struct {
	BaseURL      string `toml:"base_url"`
	ForwardToken string `toml:"forward_token"`
}

type MemoryConfig struct {
	BaseURL        string `toml:"base_url"`
	APIKey         string `toml:"api_key"`
	AgentID        string `toml:"agent_id"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

type MediaConfig struct {
	TimeoutSeconds int `toml:"timeout_seconds"`
}

type SlackConfig struct {
	// BotToken is an optional fallback for fetching private attachment bytes
	// when the inbound request does not carry its own token.
	BotToken string `toml:"bot_token"`
}

func Load(path string) (Config, error) {
	cfg := Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Server: ServerConfig{
			Addr:                  DefaultHTTPAddr,
			RequestTimeoutSeconds: DefaultRequestTimeoutSeconds,
		},
		LLM: LLMConfig{
			DefaultModel:   DefaultTextModel,
			VisionModel:    DefaultVisionModel,
			MaxTokens:      DefaultMaxTokens,
			TimeoutSeconds: DefaultLLMTimeoutSeconds,
			OpenAI:         EndpointConfig{BaseURL: DefaultOpenAIBaseURL},
			Anthropic:      EndpointConfig{BaseURL: DefaultAnthropicBaseURL},
			Google:         EndpointConfig{BaseURL: DefaultGoogleBaseURL},
		},
		Memory: MemoryConfig{
			BaseURL:        DefaultMemoryBaseURL,
			AgentID:        DefaultMemoryAgentID,
			TimeoutSeconds: DefaultMemoryTimeoutSeconds,
		},
		Media: MediaConfig{
			TimeoutSeconds: DefaultMediaTimeoutSeconds,
		},
	}

	if path == "" {
		path = DefaultConfigPath
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}
