package config

import (
	"log/slog"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds runtime configuration. Provider credentials double as routing switches:
// an empty key means the provider is not configured.
type Config struct {
	// Server
	Port            int           `env:"PORT" envDefault:"5000"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat       string        `env:"LOG_FORMAT" envDefault:"json"` // "json" or "text"
	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT" envDefault:"60s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	MaxBodyBytes    int64         `env:"MAX_BODY_BYTES" envDefault:"1048576"` // 1MB
	AllowedOrigins  []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`

	// Chat completion providers, tried in this order
	PerplexityKey     string `env:"PERPLEXITY_API_KEY"`
	PerplexityModel   string `env:"PERPLEXITY_MODEL" envDefault:"sonar-small-chat"`
	PerplexityBaseURL string `env:"PERPLEXITY_BASE_URL" envDefault:"https://api.perplexity.ai/"`

	OpenAIKey     string `env:"OPENAI_API_KEY"`
	OpenAIModel   string `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`
	OpenAIBaseURL string `env:"OPENAI_BASE_URL" envDefault:"https://api.openai.com/v1/"`

	UpstreamTimeout time.Duration `env:"UPSTREAM_TIMEOUT" envDefault:"30s"`

	// Speech synthesis
	ElevenLabsKey     string  `env:"ELEVEN_API_KEY"`
	VoiceID           string  `env:"VOICE_ID"`
	ElevenLabsBaseURL string  `env:"ELEVEN_BASE_URL" envDefault:"https://api.elevenlabs.io"`
	TTSStability      float64 `env:"TTS_STABILITY" envDefault:"0.5"`
	TTSSimilarity     float64 `env:"TTS_SIMILARITY_BOOST" envDefault:"0.75"`
}

// SpeechEnabled reports whether both the TTS key and a voice are configured.
func (c Config) SpeechEnabled() bool {
	return c.ElevenLabsKey != "" && c.VoiceID != ""
}

// Load reads configuration from the process environment with defaults.
func Load() Config {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		slog.Warn("failed to parse env; using defaults where set", "err", err)
	}
	return cfg
}

// LoadFrom parses configuration from the given key/value set instead of the process environment.
func LoadFrom(vars map[string]string) (Config, error) {
	var cfg Config
	err := env.ParseWithOptions(&cfg, env.Options{Environment: vars})
	return cfg, err
}
