package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/sparqlc/internal/compiler"
	"github.com/roach88/sparqlc/internal/config"
	"github.com/roach88/sparqlc/internal/store"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Config string // CUE compiler config
	Cache  string // sqlite cache path
	Output string // output file path
}

// CompileOutput is the JSON payload of a successful compile.
type CompileOutput struct {
	Query     string                   `json:"query"`
	Variables []string                 `json:"variables"`
	Ignored   []compiler.IgnoredFilter `json:"ignored,omitempty"`
	CacheHit  bool                     `json:"cache_hit,omitempty"`
	Output    string                   `json:"output,omitempty"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <request.json|->",
		Short: "Compile a JSON request to a SPARQL query",
		Long: `Compile a declarative JSON request into a SPARQL SELECT query.

The request is read from the named file, or from stdin when the argument
is "-". Filters the compiler cannot translate are reported on stderr and
left out of the query.

Exit codes:
  0 - Query compiled
  2 - Request rejected or command error

Examples:
  sparqlc compile request.json
  sparqlc compile - < request.json
  sparqlc compile request.json --config prefixes.cue --cache cache.db
  sparqlc compile request.json --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Config, "config", "", "CUE compiler config (defaults when empty)")
	cmd.Flags().StringVar(&opts.Cache, "cache", "", "sqlite compiled-query cache")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write the query to this file")

	return cmd
}

func runCompile(opts *CompileOptions, input string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	body, err := readInput(cmd, input)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return formatter.fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("request file not found: %s", input), nil)
		}
		return formatter.fail(ExitCommandError, ErrCodeReadFailed, fmt.Sprintf("reading request: %v", err), nil)
	}
	formatter.VerboseLog("Read %d byte(s) from %s", len(body), input)

	c, err := loadCompiler(opts.Config)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeConfig, err.Error(), nil)
	}

	var (
		res *compiler.Result
		hit bool
	)
	if opts.Cache != "" {
		st, err := store.Open(opts.Cache)
		if err != nil {
			return formatter.fail(ExitCommandError, ErrCodeCache, fmt.Sprintf("opening cache: %v", err), nil)
		}
		defer st.Close()
		res, hit, err = st.Compile(cmd.Context(), c, body)
		switch {
		case err != nil && compiler.ErrorCode(err) == "":
			return formatter.fail(ExitCommandError, ErrCodeCache, err.Error(), nil)
		case err != nil:
			return outputCompileError(formatter, err)
		}
		formatter.VerboseLog("Cache %s: %s", cacheState(hit), opts.Cache)
	} else {
		res, err = c.CompileJSON(body)
		if err != nil {
			return outputCompileError(formatter, err)
		}
	}

	w := formatter.GetErrWriter()
	for _, ig := range res.Ignored {
		fmt.Fprintf(w, "warning: %s: ignored %q filter: %s\n", ig.Path, ig.Kind, ig.Reason)
	}

	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, []byte(res.Query+"\n"), 0644); err != nil {
			return formatter.fail(ExitCommandError, ErrCodeWriteFailed, fmt.Sprintf("writing output file: %v", err), nil)
		}
	}

	if formatter.Format == "json" {
		return formatter.Success(CompileOutput{
			Query:     res.Query,
			Variables: res.Variables,
			Ignored:   res.Ignored,
			CacheHit:  hit,
			Output:    opts.Output,
		})
	}
	if opts.Output != "" {
		fmt.Fprintf(formatter.Writer, "Wrote query to %s\n", opts.Output)
		return nil
	}
	fmt.Fprintln(formatter.Writer, res.Query)
	return nil
}

// outputCompileError reports a rejected request. The compiler's code is
// passed through; the message carries the request path.
func outputCompileError(formatter *OutputFormatter, err error) error {
	code := compiler.ErrorCode(err)
	if code == "" {
		code = ErrCodeGeneric
	}
	return formatter.fail(ExitCommandError, code, err.Error(), errorPath(err))
}

// errorPath returns the request path of a compilation error, or nil.
func errorPath(err error) any {
	var (
		missing *compiler.MissingFieldError
		invalid *compiler.CompileError
		request *compiler.InvalidRequestError
	)
	switch {
	case errors.As(err, &missing):
		return map[string]string{"path": missing.Path}
	case errors.As(err, &invalid):
		return map[string]string{"path": invalid.Field}
	case errors.As(err, &request) && request.Path != "":
		return map[string]string{"path": request.Path}
	}
	return nil
}

func cacheState(hit bool) string {
	if hit {
		return "hit"
	}
	return "miss"
}

// readInput reads a file, or stdin for "-".
func readInput(cmd *cobra.Command, input string) ([]byte, error) {
	if input == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(input)
}

// loadCompiler builds a compiler from a CUE config file, or from the
// defaults when path is empty.
func loadCompiler(path string) (*compiler.Compiler, error) {
	cfg, err := config.LoadFile(path)
	if err != nil {
		return nil, err
	}
	return compiler.New(cfg)
}
