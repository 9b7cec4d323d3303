package llm

import (
	"context"
	"errors"
)

// ErrEmptyCompletion is returned when a provider answers without any text.
var ErrEmptyCompletion = errors.New("llm: empty completion")

// Completer sends one question to a chat-completion provider and returns the raw reply text.
type Completer interface {
	Complete(ctx context.Context, question string) (string, error)
	Name() string
}
