package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/sparqlc/internal/compiler"
	"github.com/roach88/sparqlc/internal/ir"
	"github.com/roach88/sparqlc/internal/logger"
)

// Entry is one cached compilation.
type Entry struct {
	RequestHash     string
	Request         string // canonical JSON
	Result          compiler.Result
	CompilerVersion string
	Seq             int64
	Hits            int64
}

// Key returns the cache key of a request body under a compiler
// configuration.
func Key(body []byte, c *compiler.Compiler) (string, error) {
	return ir.ScopedRequestHash(body, c.Config().Fingerprint())
}

// Get returns the cached result for hash and counts the hit.
// The second return value is false on a miss.
func (s *Store) Get(ctx context.Context, hash string) (*compiler.Result, bool, error) {
	var query, varsJSON, ignoredJSON string
	err := s.db.QueryRowContext(ctx, `
		SELECT query, variables, ignored
		FROM compiled_queries
		WHERE request_hash = ?
	`, hash).Scan(&query, &varsJSON, &ignoredJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get compiled query: %w", err)
	}

	vars, err := unmarshalVariables(varsJSON)
	if err != nil {
		return nil, false, fmt.Errorf("get compiled query: %w", err)
	}
	ignored, err := unmarshalIgnored(ignoredJSON)
	if err != nil {
		return nil, false, fmt.Errorf("get compiled query: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, `
		UPDATE compiled_queries SET hits = hits + 1 WHERE request_hash = ?
	`, hash); err != nil {
		return nil, false, fmt.Errorf("count cache hit: %w", err)
	}

	return &compiler.Result{Query: query, Variables: vars, Ignored: ignored}, true, nil
}

// Put stores a compiled result under hash. Writing an existing hash is a
// no-op.
func (s *Store) Put(ctx context.Context, hash string, body []byte, res *compiler.Result) error {
	if res == nil {
		return errors.New("put compiled query: nil result")
	}
	request, err := canonicalRequest(body)
	if err != nil {
		return fmt.Errorf("put compiled query: %w", err)
	}
	varsJSON, err := marshalVariables(res.Variables)
	if err != nil {
		return fmt.Errorf("put compiled query: %w", err)
	}
	ignoredJSON, err := marshalIgnored(res.Ignored)
	if err != nil {
		return fmt.Errorf("put compiled query: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO compiled_queries
		(request_hash, request, query, variables, ignored, compiler_version, seq)
		VALUES (?, ?, ?, ?, ?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM compiled_queries))
		ON CONFLICT(request_hash) DO NOTHING
	`,
		hash,
		request,
		res.Query,
		varsJSON,
		ignoredJSON,
		ir.CompilerVersion,
	)
	if err != nil {
		return fmt.Errorf("put compiled query: %w", err)
	}
	return nil
}

// Count returns the number of cached entries.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM compiled_queries`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count compiled queries: %w", err)
	}
	return n, nil
}

// Entries returns up to limit entries in insertion order. A limit of zero
// or less returns all entries.
func (s *Store) Entries(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT request_hash, request, query, variables, ignored, compiler_version, seq, hits
		FROM compiled_queries
		ORDER BY seq ASC, request_hash COLLATE BINARY ASC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query compiled queries: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var (
			e                     Entry
			varsJSON, ignoredJSON string
		)
		if err := rows.Scan(&e.RequestHash, &e.Request, &e.Result.Query, &varsJSON, &ignoredJSON,
			&e.CompilerVersion, &e.Seq, &e.Hits); err != nil {
			return nil, fmt.Errorf("scan compiled query: %w", err)
		}
		if e.Result.Variables, err = unmarshalVariables(varsJSON); err != nil {
			return nil, err
		}
		if e.Result.Ignored, err = unmarshalIgnored(ignoredJSON); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate compiled queries: %w", err)
	}
	return entries, nil
}

// Compile returns the cached result for body, compiling and storing it on
// a miss. hit reports whether the result came from the cache. Bodies that
// are not JSON skip the cache and fail in the compiler. Cache read and
// write faults are logged and the request is served by the compiler.
func (s *Store) Compile(ctx context.Context, c *compiler.Compiler, body []byte) (res *compiler.Result, hit bool, err error) {
	hash, err := Key(body, c)
	if err != nil {
		res, err = c.CompileJSON(body)
		return res, false, err
	}

	log := logger.FromContext(ctx, &s.log)
	res, hit, err = s.Get(ctx, hash)
	switch {
	case err != nil:
		log.Warn().Err(err).Str("request_hash", hash).Msg("cache read failed")
	case hit:
		return res, true, nil
	}

	res, err = c.CompileJSON(body)
	if err != nil {
		return nil, false, err
	}
	if err := s.Put(ctx, hash, body, res); err != nil {
		log.Warn().Err(err).Str("request_hash", hash).Msg("cache write failed")
	}
	return res, false, nil
}
