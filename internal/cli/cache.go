package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/sparqlc/internal/store"
)

// CacheOptions holds flags for the cache command.
type CacheOptions struct {
	*RootOptions
	Limit int
}

// CacheEntry summarises one cached compilation.
type CacheEntry struct {
	RequestHash     string `json:"request_hash"`
	CompilerVersion string `json:"compiler_version"`
	Seq             int64  `json:"seq"`
	Hits            int64  `json:"hits"`
	Variables       int    `json:"variables"`
	Ignored         int    `json:"ignored"`
}

// CacheListing is the output of the cache command.
type CacheListing struct {
	Count   int          `json:"count"`
	Entries []CacheEntry `json:"entries"`
}

// NewCacheCommand creates the cache command.
func NewCacheCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CacheOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "cache <db>",
		Short: "List compiled queries in a cache",
		Long: `List the compiled queries stored in a sqlite cache, oldest first.

Examples:
  sparqlc cache cache.db
  sparqlc cache cache.db --limit 10 --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCache(opts, args[0], cmd)
		},
	}

	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 0, "maximum entries to list (0 = all)")

	return cmd
}

func runCache(opts *CacheOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	// Opening creates the database; listing a missing one is a mistake.
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return formatter.fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("cache not found: %s", path), nil)
	}

	st, err := store.Open(path)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeCache, fmt.Sprintf("opening cache: %v", err), nil)
	}
	defer st.Close()

	ctx := cmd.Context()
	count, err := st.Count(ctx)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeCache, err.Error(), nil)
	}
	entries, err := st.Entries(ctx, opts.Limit)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeCache, err.Error(), nil)
	}

	listing := CacheListing{Count: count, Entries: make([]CacheEntry, 0, len(entries))}
	for _, e := range entries {
		listing.Entries = append(listing.Entries, CacheEntry{
			RequestHash:     e.RequestHash,
			CompilerVersion: e.CompilerVersion,
			Seq:             e.Seq,
			Hits:            e.Hits,
			Variables:       len(e.Result.Variables),
			Ignored:         len(e.Result.Ignored),
		})
	}

	if formatter.Format == "json" {
		return formatter.Success(listing)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "%d compiled quer%s\n", count, plural(count, "y", "ies"))
	for _, e := range listing.Entries {
		fmt.Fprintf(w, "  %4d  %s  hits=%d  vars=%d  ignored=%d  v%s\n",
			e.Seq, shortHash(e.RequestHash), e.Hits, e.Variables, e.Ignored, e.CompilerVersion)
	}
	return nil
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
