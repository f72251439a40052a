package harness

import (
	"fmt"
	"sync"

	"github.com/roach88/sparqlc/internal/compiler"
	"github.com/roach88/sparqlc/internal/config"
)

// Harness runs scenarios against one compiler. Scenarios that name their
// own config get a compiler built from it, cached by path.
type Harness struct {
	compiler *compiler.Compiler

	mu       sync.Mutex
	byConfig map[string]*compiler.Compiler
}

// New creates a Harness that compiles with c.
func New(c *compiler.Compiler) *Harness {
	return &Harness{compiler: c, byConfig: make(map[string]*compiler.Compiler)}
}

// Run executes a scenario with the default compiler config.
func Run(s *Scenario) (*Result, error) {
	return New(compiler.MustNew(config.Default())).Run(s)
}

// Run compiles the scenario's request and evaluates its expectations.
//
// A returned error means the scenario could not be executed (unreadable
// request file, bad config). Compilation errors are outcomes: they are
// recorded on the Result and checked against expect.error_code.
func (h *Harness) Run(s *Scenario) (*Result, error) {
	c, err := h.compilerFor(s)
	if err != nil {
		return nil, err
	}

	body, err := s.RequestBody()
	if err != nil {
		return nil, err
	}

	result := NewResult()
	res, err := c.CompileJSON(body)
	if err != nil {
		result.ErrorCode = compiler.ErrorCode(err)
		result.Err = err.Error()
	} else {
		result.Query = res.Query
		result.Variables = res.Variables
		result.Ignored = res.Ignored
	}

	for _, msg := range EvaluateExpect(result, s.Expect) {
		result.AddError(msg)
	}
	return result, nil
}

func (h *Harness) compilerFor(s *Scenario) (*compiler.Compiler, error) {
	if s.Config == "" {
		return h.compiler, nil
	}
	path := s.resolve(s.Config)

	h.mu.Lock()
	defer h.mu.Unlock()
	if c, ok := h.byConfig[path]; ok {
		return c, nil
	}
	cfg, err := config.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load scenario config: %w", err)
	}
	c, err := compiler.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load scenario config: %w", err)
	}
	h.byConfig[path] = c
	return c, nil
}
