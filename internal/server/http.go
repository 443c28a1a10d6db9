package server

import (
	"context"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/dsa-vault/internal/config"
	"github.com/gokatarajesh/dsa-vault/internal/logging"
	"github.com/gokatarajesh/dsa-vault/internal/metrics"
	"github.com/gokatarajesh/dsa-vault/internal/question"
	httperrors "github.com/gokatarajesh/dsa-vault/pkg/http/errors"
)

// WSUpgrader handles WebSocket upgrades for the snapshot stream.
var WSUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// TODO: restrict to configured origins once the web client has a fixed host
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// PingFunc checks the backing store; nil means there is nothing to ping.
type PingFunc func(ctx context.Context) error

// NewHTTPServer wires health, metrics, the question API and the snapshot stream.
func NewHTTPServer(cfg *config.App, logger zerolog.Logger, repo *question.Repository, stream *StreamHandler, collector *metrics.Collector, ping PingFunc) *http.Server {
	return &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: NewRouter(logger, repo, stream, collector, ping),
	}
}

// NewRouter builds the handler tree; split out so tests can mount it on httptest.
func NewRouter(logger zerolog.Logger, repo *question.Repository, stream *StreamHandler, collector *metrics.Collector, ping PingFunc) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /v1/ping", func(w http.ResponseWriter, r *http.Request) {
		if ping != nil {
			if err := ping(r.Context()); err != nil {
				logger.Error().Err(err).Msg("store ping failed")
				httperrors.RespondErrorWithDetails(w, http.StatusServiceUnavailable, httperrors.ErrCodeServiceUnavailable,
					"store unreachable", map[string]any{"reason": err.Error()})
				return
			}
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"pong":true}`))
	})

	questions := NewQuestionHandlers(repo, collector, logger)
	mux.HandleFunc("GET /v1/questions", questions.List)
	mux.HandleFunc("POST /v1/questions", questions.Create)
	mux.HandleFunc("GET /v1/questions/{id}", questions.Get)
	mux.HandleFunc("PUT /v1/questions/{id}", questions.Update)
	mux.HandleFunc("DELETE /v1/questions/{id}", questions.Delete)
	mux.HandleFunc("GET /v1/topics", questions.Topics)
	mux.HandleFunc("GET /v1/stats", questions.Stats)

	if stream != nil {
		mux.HandleFunc("GET /ws/questions", stream.HandleWebSocket)
	}

	return withLogger(mux, logger)
}

func withLogger(next http.Handler, logger zerolog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqLogger := logger.With().Str("method", r.Method).Str("path", r.URL.Path).Logger()
		next.ServeHTTP(w, r.WithContext(logging.IntoContext(r.Context(), reqLogger)))
	})
}
