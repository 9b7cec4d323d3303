package main

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"ask-relay/internal/answer"
	"ask-relay/internal/app"
	"ask-relay/internal/httputil"
)

const (
	askFailedMessage = "Failed to summarize/answer question"
	ttsFailedMessage = "Failed to convert text to speech"
)

type askRequest struct {
	Question string `json:"question" validate:"required,notblank,max=4000"`
}

type ttsRequest struct {
	Text string `json:"text" validate:"required,notblank,max=5000"`
}

type ttsResponse struct {
	Audio string `json:"audio"`
}

func main() {
	deps, err := app.Build()
	if err != nil {
		slog.Default().Error("failed to build dependencies", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := serve(ctx, deps); err != nil {
		deps.Log.Error("server failed", "err", err)
		os.Exit(1)
	}
}

func newRouter(deps app.Deps) *chi.Mux {
	r := httputil.NewRouter(deps)

	r.Post("/api/tts", ttsHandler(deps))
	r.Post("/api/ask", askHandler(deps))
	r.Get("/healthz", httputil.HealthHandler(deps))

	return r
}

// serve runs the HTTP server until ctx is cancelled, then drains in-flight requests.
func serve(ctx context.Context, deps app.Deps) error {
	addr := fmt.Sprintf(":%d", deps.Config.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           newRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		deps.Log.Info("relay listening", "addr", addr, "route", deps.Pipeline.Route().String())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), deps.Config.ShutdownTimeout)
		defer cancel()
		deps.Log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func askHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req askRequest
		if err := httputil.DecodeJSON(w, r, deps.Config.MaxBodyBytes, &req); err != nil {
			httputil.Fail(deps.Log, w, "invalid payload", err, http.StatusBadRequest)
			return
		}
		if err := httputil.Validator.Struct(&req); err != nil {
			httputil.ValidationError(deps.Log, w, err)
			return
		}

		result, err := deps.Pipeline.Ask(r.Context(), req.Question)
		switch {
		case errors.Is(err, answer.ErrNoProvider):
			httputil.Fail(deps.Log, w, answer.NoProviderMessage, err, http.StatusBadRequest)
			return
		case errors.Is(err, answer.ErrUpstream):
			httputil.WriteError(w, http.StatusInternalServerError, askFailedMessage)
			return
		case err != nil:
			httputil.Fail(deps.Log, w, askFailedMessage, err, http.StatusInternalServerError)
			return
		}

		httputil.WriteJSON(w, http.StatusOK, result)
	}
}

func ttsHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ttsRequest
		if err := httputil.DecodeJSON(w, r, deps.Config.MaxBodyBytes, &req); err != nil {
			httputil.Fail(deps.Log, w, "invalid payload", err, http.StatusBadRequest)
			return
		}
		if err := httputil.Validator.Struct(&req); err != nil {
			httputil.ValidationError(deps.Log, w, err)
			return
		}

		audio, err := deps.Speech.Synthesize(r.Context(), req.Text)
		if err != nil {
			httputil.Fail(deps.Log, w, ttsFailedMessage, err, http.StatusInternalServerError)
			return
		}

		httputil.WriteJSON(w, http.StatusOK, ttsResponse{Audio: base64.StdEncoding.EncodeToString(audio)})
	}
}
