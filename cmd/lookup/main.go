package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"

	"github.com/tarkovlens/backend/internal/domain"
	"github.com/tarkovlens/backend/internal/infrastructure/tarkov"
	"github.com/tarkovlens/backend/internal/usecase"
)

// options holds command line flags, each with an environment fallback
type options struct {
	APIURL         string        `long:"api-url" env:"TARKOV_API_URL" default:"https://api.tarkov.dev/graphql" description:"tarkov.dev GraphQL endpoint"`
	Timeout        time.Duration `long:"timeout" env:"TARKOV_TIMEOUT" default:"30s" description:"Timeout for the whole lookup"`
	ExcludedVendor string        `long:"excluded-vendor" env:"TARKOV_EXCLUDED_VENDOR" default:"Flea Market" description:"Vendor ignored when picking the best sell offer"`
	Concurrency    int           `long:"concurrency" env:"TARKOV_CONCURRENCY" default:"4" description:"Parallel detail fetches when looking up several queries"`
	Debug          bool          `short:"d" long:"debug" env:"TARKOV_DEBUG" description:"Enable debug logging"`

	Args struct {
		Queries []string `positional-arg-name:"QUERY" required:"1"`
	} `positional-args:"yes" required:"yes"`
}

// errLookupFailed reports that at least one query could not be resolved
var errLookupFailed = errors.New("lookup failed")

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	// .env is optional
	_ = godotenv.Load()

	opts, err := parseOptions(os.Args[1:])
	if err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return
		}
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts, os.Stdout); err != nil {
		if !errors.Is(err, errLookupFailed) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		stop()
		os.Exit(1)
	}
}

// parseOptions parses args into options. go-flags prints usage and errors itself.
func parseOptions(args []string) (*options, error) {
	var opts options
	parser := flags.NewParser(&opts, flags.Default)
	parser.Usage = "[OPTIONS] QUERY..."
	if _, err := parser.ParseArgs(args); err != nil {
		return nil, err
	}
	return &opts, nil
}

// run resolves every query and prints one summary per query
func run(ctx context.Context, opts *options, out io.Writer) error {
	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	client := tarkov.NewClient(tarkov.ClientConfig{
		BaseURL: opts.APIURL,
		Timeout: opts.Timeout,
	})
	client.SetDebug(opts.Debug)

	service := usecase.NewItemLookupService(client, usecase.ItemLookupServiceConfig{
		ExcludedVendor:     opts.ExcludedVendor,
		MaxBatchSize:       len(opts.Args.Queries),
		Concurrency:        opts.Concurrency,
		EnableDebugLogging: opts.Debug,
	})

	queries := opts.Args.Queries
	if len(queries) == 1 {
		summary, err := service.Lookup(ctx, queries[0])
		if err != nil {
			return fmt.Errorf("%q: %w", queries[0], err)
		}
		printSummary(out, queries[0], summary)
		return nil
	}

	results, err := service.LookupBatch(ctx, queries)
	if err != nil {
		return err
	}

	failed := 0
	for i, result := range results {
		if i > 0 {
			fmt.Fprintln(out)
		}
		if result.Error != "" {
			failed++
			fmt.Fprintf(out, "%q: error: %s\n", result.Query, result.Error)
			continue
		}
		printSummary(out, result.Query, result.Summary)
	}

	if failed > 0 {
		return fmt.Errorf("%w: %d of %d queries", errLookupFailed, failed, len(results))
	}
	return nil
}

func printSummary(out io.Writer, query string, s *domain.ItemSummary) {
	fmt.Fprintf(out, "%q -> %s [%s]\n", query, s.Name, s.ID)
	fmt.Fprintf(out, "  Base price:    %d\n", s.BasePrice)
	fmt.Fprintf(out, "  Best vendor:   %s (%d RUB)\n", vendorOrDash(s.BestVendorName), s.BestVendorPrice)
	fmt.Fprintf(out, "  Flea low/avg:  %d / %d\n", s.RecentLowPrice, s.RecentAveragePrice)
	fmt.Fprintf(out, "  Link:          %s\n", s.Link)
}

func vendorOrDash(name string) string {
	if name == "" {
		return "-"
	}
	return name
}
