package answer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"ask-relay/internal/llm"
)

// NoProviderMessage is the client-facing text for ErrNoProvider.
const NoProviderMessage = "No API key found. Please provide PERPLEXITY_API_KEY or OPENAI_API_KEY in .env"

var (
	// ErrNoProvider means neither chat-completion credential is configured.
	ErrNoProvider = errors.New("no chat provider configured")
	// ErrUpstream wraps any failure of the selected provider.
	ErrUpstream = errors.New("upstream provider failed")
)

// Route is the provider chosen for a request.
type Route int

const (
	RouteNone Route = iota
	RoutePrimary
	RouteFallback
)

func (r Route) String() string {
	switch r {
	case RoutePrimary:
		return "primary"
	case RouteFallback:
		return "fallback"
	default:
		return "none"
	}
}

// StructuredAnswer is the normalized result returned to clients.
type StructuredAnswer struct {
	Summary string `json:"summary"`
	Answer  string `json:"answer"`
}

// Options configures a Pipeline. A nil completer means its credential is not configured.
type Options struct {
	Primary  llm.Completer
	Fallback llm.Completer
	Splitter Splitter
	Log      *slog.Logger
}

// Pipeline picks a provider, asks it, and shapes the reply into a StructuredAnswer.
// It holds no per-request state and is safe for concurrent use.
type Pipeline struct {
	primary  llm.Completer
	fallback llm.Completer
	splitter Splitter
	log      *slog.Logger
}

func NewPipeline(opts Options) *Pipeline {
	if opts.Splitter == nil {
		opts.Splitter = DelimiterSplitter{}
	}
	if opts.Log == nil {
		opts.Log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Pipeline{
		primary:  opts.Primary,
		fallback: opts.Fallback,
		splitter: opts.Splitter,
		log:      opts.Log,
	}
}

// Route reports which provider the next request goes to. Only credential presence
// matters; a failing primary does not divert traffic to the fallback.
func (p *Pipeline) Route() Route {
	switch {
	case p.primary != nil:
		return RoutePrimary
	case p.fallback != nil:
		return RouteFallback
	default:
		return RouteNone
	}
}

func (p *Pipeline) completer(route Route) llm.Completer {
	switch route {
	case RoutePrimary:
		return p.primary
	case RouteFallback:
		return p.fallback
	default:
		return nil
	}
}

// Ask sends question to the selected provider once and returns the shaped reply.
// Provider failures are logged here and returned wrapped in ErrUpstream.
func (p *Pipeline) Ask(ctx context.Context, question string) (StructuredAnswer, error) {
	route := p.Route()
	if route == RouteNone {
		return StructuredAnswer{}, ErrNoProvider
	}
	provider := p.completer(route)
	log := p.log.With(
		"call_id", uuid.NewString(),
		"request_id", middleware.GetReqID(ctx),
		"route", route.String(),
		"provider", provider.Name(),
	)

	start := time.Now()
	completion, err := provider.Complete(ctx, question)
	elapsed := time.Since(start).Milliseconds()
	if err != nil {
		log.Error("provider call failed", "err", err, "duration_ms", elapsed)
		return StructuredAnswer{}, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	log.Debug("provider call succeeded", "duration_ms", elapsed, "completion_len", len(completion))

	return Shape(p.splitter, completion), nil
}

// Shape splits a completion and normalizes both parts.
func Shape(s Splitter, completion string) StructuredAnswer {
	seg := s.Split(completion)
	out := StructuredAnswer{
		Summary: Normalize(seg.Summary),
		Answer:  Normalize(seg.Answer),
	}
	if out.Answer == "" {
		out.Answer = NoAnswer
	}
	return out
}
