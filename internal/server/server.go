// Package server exposes the compiler over HTTP.
//
//	POST /query    request JSON -> {"query", "variables", "ignored"}
//	GET  /healthz  liveness
//	GET  /metrics  Prometheus exposition
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/roach88/sparqlc/internal/compiler"
	"github.com/roach88/sparqlc/internal/metrics"
)

// MaxBodyBytes bounds the size of a request body.
const MaxBodyBytes = 1 << 20

// Config holds listener settings.
type Config struct {
	Addr            string
	ShutdownTimeout time.Duration
}

// NewRouter wires the routes and middleware. m may be nil, in which case
// /metrics is not served.
func NewRouter(svc *Service, m *metrics.Provider, log zerolog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(RequestID())
	r.Use(Logging(log))
	r.Use(Recover(log))
	r.Use(CORS())

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if m != nil {
		r.Method(http.MethodGet, "/metrics", m.Handler())
	}
	r.Post("/query", queryHandler(svc))
	return r
}

func queryHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				writeError(w, http.StatusRequestEntityTooLarge, "", "request body too large")
				return
			}
			writeError(w, http.StatusBadRequest, "", "failed to read request body")
			return
		}

		res, err := svc.Compile(r.Context(), body)
		if err != nil {
			writeError(w, statusFor(err), compiler.ErrorCode(err), err.Error())
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

// statusFor maps compilation errors to HTTP statuses: undecodable bodies
// are 400, requests that decode but cannot compile are 422.
func statusFor(err error) int {
	switch compiler.ErrorCode(err) {
	case compiler.ErrDecode:
		return http.StatusBadRequest
	case compiler.ErrMissingField, compiler.ErrInvalidExpression, compiler.ErrInvalidRequest:
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorBody{Error: msg, Code: code})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

// Run serves handler on cfg.Addr until ctx is cancelled, then shuts down
// gracefully.
func Run(ctx context.Context, cfg Config, handler http.Handler, log zerolog.Logger) error {
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Addr).Msg("http listen")
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		log.Info().Msg("http shutdown")
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
