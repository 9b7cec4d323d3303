package app

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ask-relay/internal/answer"
	"ask-relay/internal/config"
	"ask-relay/internal/speech"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func loadConfig(t *testing.T, vars map[string]string) config.Config {
	t.Helper()
	cfg, err := config.LoadFrom(vars)
	require.NoError(t, err)
	return cfg
}

// fakeProvider answers chat completions with a fixed reply and counts calls.
func fakeProvider(t *testing.T, reply string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-test",
			"object":  "chat.completion",
			"created": 1700000000,
			"model":   "m",
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": reply},
			}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func TestNewRoutesByCredentials(t *testing.T) {
	tests := []struct {
		name string
		vars map[string]string
		want answer.Route
	}{
		{"no keys", map[string]string{}, answer.RouteNone},
		{"perplexity only", map[string]string{"PERPLEXITY_API_KEY": "p"}, answer.RoutePrimary},
		{"openai only", map[string]string{"OPENAI_API_KEY": "o"}, answer.RouteFallback},
		{"both", map[string]string{"PERPLEXITY_API_KEY": "p", "OPENAI_API_KEY": "o"}, answer.RoutePrimary},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deps, err := New(loadConfig(t, tt.vars), testLogger())
			require.NoError(t, err)
			assert.Equal(t, tt.want, deps.Pipeline.Route())
		})
	}
}

func TestNewPrefersPerplexityOverOpenAI(t *testing.T) {
	pplx, pplxHits := fakeProvider(t, "Summary: s\nAnswer: from perplexity")
	oai, oaiHits := fakeProvider(t, "Summary: s\nAnswer: from openai")

	deps, err := New(loadConfig(t, map[string]string{
		"PERPLEXITY_API_KEY":  "p",
		"PERPLEXITY_BASE_URL": pplx.URL + "/",
		"OPENAI_API_KEY":      "o",
		"OPENAI_BASE_URL":     oai.URL + "/",
	}), testLogger())
	require.NoError(t, err)

	got, err := deps.Pipeline.Ask(context.Background(), "question")
	require.NoError(t, err)
	assert.Equal(t, "from perplexity", got.Answer)
	assert.Equal(t, int32(1), pplxHits.Load())
	assert.Equal(t, int32(0), oaiHits.Load())
}

func TestNewFallsBackToOpenAI(t *testing.T) {
	oai, oaiHits := fakeProvider(t, "Summary: s\nAnswer: from openai")

	deps, err := New(loadConfig(t, map[string]string{
		"OPENAI_API_KEY":  "o",
		"OPENAI_BASE_URL": oai.URL + "/",
	}), testLogger())
	require.NoError(t, err)

	got, err := deps.Pipeline.Ask(context.Background(), "question")
	require.NoError(t, err)
	assert.Equal(t, answer.StructuredAnswer{Summary: "s", Answer: "from openai"}, got)
	assert.Equal(t, int32(1), oaiHits.Load())
}

func TestNewSpeech(t *testing.T) {
	deps, err := New(loadConfig(t, map[string]string{}), testLogger())
	require.NoError(t, err)
	_, err = deps.Speech.Synthesize(context.Background(), "hi")
	assert.True(t, errors.Is(err, speech.ErrNotConfigured))

	deps, err = New(loadConfig(t, map[string]string{"ELEVEN_API_KEY": "k", "VOICE_ID": "v"}), testLogger())
	require.NoError(t, err)
	assert.IsType(t, &speech.ElevenLabsClient{}, deps.Speech)
}

func TestNewSpeechVoiceSettings(t *testing.T) {
	tests := []struct {
		name string
		vars map[string]string
		want map[string]any
	}{
		{
			name: "defaults",
			vars: map[string]string{},
			want: map[string]any{"stability": 0.5, "similarity_boost": 0.75},
		},
		{
			name: "explicit zero",
			vars: map[string]string{"TTS_STABILITY": "0", "TTS_SIMILARITY_BOOST": "0"},
			want: map[string]any{"stability": 0.0, "similarity_boost": 0.0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body struct {
				VoiceSettings map[string]any `json:"voice_settings"`
			}
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
				_, _ = w.Write([]byte{0x00})
			}))
			defer srv.Close()

			vars := map[string]string{"ELEVEN_API_KEY": "k", "VOICE_ID": "v", "ELEVEN_BASE_URL": srv.URL}
			for k, v := range tt.vars {
				vars[k] = v
			}
			deps, err := New(loadConfig(t, vars), testLogger())
			require.NoError(t, err)

			_, err = deps.Speech.Synthesize(context.Background(), "hi")
			require.NoError(t, err)
			assert.Equal(t, tt.want, body.VoiceSettings)
		})
	}
}
