package server

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/roach88/sparqlc/internal/compiler"
	"github.com/roach88/sparqlc/internal/logger"
	"github.com/roach88/sparqlc/internal/metrics"
	"github.com/roach88/sparqlc/internal/store"
)

// Service compiles request bodies through the optional cache, recording
// metrics and logging each outcome.
type Service struct {
	compiler *compiler.Compiler
	cache    *store.Store // nil disables caching
	metrics  *metrics.Provider
	log      zerolog.Logger
}

// NewService creates a Service. cache and m may be nil.
func NewService(c *compiler.Compiler, cache *store.Store, m *metrics.Provider, log zerolog.Logger) *Service {
	return &Service{compiler: c, cache: cache, metrics: m, log: log}
}

// Compile compiles body.
func (s *Service) Compile(ctx context.Context, body []byte) (*compiler.Result, error) {
	start := time.Now()
	l := logger.FromContext(ctx, &s.log)

	var (
		res *compiler.Result
		hit bool
		err error
	)
	if s.cache != nil {
		res, hit, err = s.cache.Compile(ctx, s.compiler, body)
	} else {
		res, err = s.compiler.CompileJSON(body)
	}
	elapsed := time.Since(start)

	switch {
	case err != nil && compiler.IsClientError(err):
		s.metrics.ObserveCompile(metrics.OutcomeClientError, elapsed)
		l.Info().Str("code", compiler.ErrorCode(err)).Err(err).Msg("request rejected")
		return nil, err
	case err != nil:
		s.metrics.ObserveCompile(metrics.OutcomeServerError, elapsed)
		l.Error().Err(err).Msg("compile failed")
		return nil, err
	case hit:
		s.metrics.ObserveCompile(metrics.OutcomeCacheHit, elapsed)
	default:
		s.metrics.ObserveCompile(metrics.OutcomeOK, elapsed)
	}

	for _, ig := range res.Ignored {
		s.metrics.ObserveIgnored(ig.Reason)
		l.Debug().Str("path", ig.Path).Str("kind", ig.Kind).Str("reason", ig.Reason).Msg("filter ignored")
	}
	l.Debug().Bool("cache_hit", hit).Dur("elapsed", elapsed).Int("variables", len(res.Variables)).Msg("compiled")
	return res, nil
}
