package app

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/joho/godotenv"

	"ask-relay/internal/answer"
	"ask-relay/internal/config"
	"ask-relay/internal/llm"
	"ask-relay/internal/logger"
	"ask-relay/internal/speech"
)

// Deps bundles the runtime dependencies of the relay.
type Deps struct {
	Config   config.Config
	Log      *slog.Logger
	Pipeline *answer.Pipeline
	Speech   speech.Synthesizer
}

// Build loads .env (if present), config, and shared components.
func Build() (Deps, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Deps{}, fmt.Errorf("failed to load environment variables: %w", err)
	}
	cfg := config.Load()
	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	return New(cfg, log)
}

// New wires components from an explicit config.
func New(cfg config.Config, log *slog.Logger) (Deps, error) {
	primary, fallback, err := buildCompleters(cfg, log)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize chat providers: %w", err)
	}
	synth, err := buildSpeech(cfg, log)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize speech: %w", err)
	}
	return Deps{
		Config: cfg,
		Log:    log,
		Pipeline: answer.NewPipeline(answer.Options{
			Primary:  primary,
			Fallback: fallback,
			Log:      log,
		}),
		Speech: synth,
	}, nil
}

// buildCompleters returns a nil interface for every provider whose key is unset,
// which is what the pipeline routes on.
func buildCompleters(cfg config.Config, log *slog.Logger) (primary, fallback llm.Completer, err error) {
	if cfg.PerplexityKey != "" {
		c, err := llm.NewPerplexityClient(llm.ChatOptions{
			APIKey:  cfg.PerplexityKey,
			Model:   cfg.PerplexityModel,
			BaseURL: cfg.PerplexityBaseURL,
			Timeout: cfg.UpstreamTimeout,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize Perplexity client: %w", err)
		}
		log.Info("using Perplexity chat client", "model", cfg.PerplexityModel)
		primary = c
	}
	if cfg.OpenAIKey != "" {
		c, err := llm.NewOpenAIClient(llm.ChatOptions{
			APIKey:  cfg.OpenAIKey,
			Model:   cfg.OpenAIModel,
			BaseURL: cfg.OpenAIBaseURL,
			Timeout: cfg.UpstreamTimeout,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize OpenAI client: %w", err)
		}
		if primary == nil {
			log.Info("using OpenAI chat client", "model", cfg.OpenAIModel)
		} else {
			log.Info("OpenAI chat client configured but shadowed by Perplexity", "model", cfg.OpenAIModel)
		}
		fallback = c
	}
	if primary == nil && fallback == nil {
		log.Warn("no chat provider configured; /api/ask will reject requests")
	}
	return primary, fallback, nil
}

func buildSpeech(cfg config.Config, log *slog.Logger) (speech.Synthesizer, error) {
	if !cfg.SpeechEnabled() {
		log.Warn("ELEVEN_API_KEY or VOICE_ID not set; /api/tts disabled")
		return speech.Disabled{}, nil
	}
	client, err := speech.NewElevenLabsClient(speech.ElevenLabsOptions{
		APIKey:     cfg.ElevenLabsKey,
		VoiceID:    cfg.VoiceID,
		BaseURL:    cfg.ElevenLabsBaseURL,
		Stability:  cfg.TTSStability,
		Similarity: cfg.TTSSimilarity,
		Timeout:    cfg.UpstreamTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize ElevenLabs client: %w", err)
	}
	log.Info("using ElevenLabs speech client", "voice_id", cfg.VoiceID)
	return client, nil
}
