package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	elevenLabsBaseURL = "https://api.elevenlabs.io"

	defaultTimeout = 30 * time.Second

	// upstream error bodies are only kept for logging
	maxErrorBody = 4 << 10
)

// ElevenLabsOptions configures an ElevenLabsClient.
// Stability and Similarity are sent as given; zero is a valid setting.
type ElevenLabsOptions struct {
	APIKey     string
	VoiceID    string
	BaseURL    string
	Stability  float64
	Similarity float64
	Timeout    time.Duration
}

// ElevenLabsClient calls the ElevenLabs text-to-speech endpoint.
type ElevenLabsClient struct {
	apiKey   string
	endpoint string
	settings voiceSettings
	http     *http.Client
}

type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

type synthesisRequest struct {
	Text          string        `json:"text"`
	VoiceSettings voiceSettings `json:"voice_settings"`
}

// NewElevenLabsClient validates options and fills in the base URL and timeout.
func NewElevenLabsClient(opts ElevenLabsOptions) (*ElevenLabsClient, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("elevenlabs: api key required")
	}
	if opts.VoiceID == "" {
		return nil, fmt.Errorf("elevenlabs: voice id required")
	}
	if opts.BaseURL == "" {
		opts.BaseURL = elevenLabsBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	return &ElevenLabsClient{
		apiKey:   opts.APIKey,
		endpoint: strings.TrimRight(opts.BaseURL, "/") + "/v1/text-to-speech/" + url.PathEscape(opts.VoiceID),
		settings: voiceSettings{Stability: opts.Stability, SimilarityBoost: opts.Similarity},
		http:     &http.Client{Timeout: opts.Timeout},
	}, nil
}

// Synthesize returns the audio for text, as encoded by the provider (MPEG by default).
func (c *ElevenLabsClient) Synthesize(ctx context.Context, text string) ([]byte, error) {
	body, err := json.Marshal(synthesisRequest{Text: text, VoiceSettings: c.settings})
	if err != nil {
		return nil, fmt.Errorf("elevenlabs: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("elevenlabs: create request: %w", err)
	}
	req.Header.Set("xi-api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("elevenlabs: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("elevenlabs: HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("elevenlabs: read audio: %w", err)
	}
	return audio, nil
}
