package speech

import (
	"context"
	"errors"
)

// ErrNotConfigured is returned when no speech credentials are set.
var ErrNotConfigured = errors.New("speech: synthesis not configured")

// Synthesizer turns text into encoded audio bytes.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// Disabled is the Synthesizer used when credentials are missing.
type Disabled struct{}

func (Disabled) Synthesize(context.Context, string) ([]byte, error) {
	return nil, ErrNotConfigured
}
