package usecase

import (
	"context"
	"fmt"
	"log"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/tarkovlens/backend/internal/domain"
)

// ItemLookupServiceConfig holds configuration for the item lookup service
type ItemLookupServiceConfig struct {
	ExcludedVendor     string
	MaxBatchSize       int
	Concurrency        int
	EnableDebugLogging bool
}

// ItemLookupService resolves free-text queries to item price summaries.
// Flow: fetch catalog -> match closest record -> fetch details -> aggregate
type ItemLookupService struct {
	client             domain.ItemCatalogClient
	matcher            *CatalogMatcher
	aggregator         *PriceAggregator
	maxBatchSize       int
	concurrency        int
	enableDebugLogging bool
}

// NewItemLookupService creates a new item lookup service with dependencies
func NewItemLookupService(client domain.ItemCatalogClient, config ItemLookupServiceConfig) *ItemLookupService {
	maxBatch := config.MaxBatchSize
	if maxBatch <= 0 {
		maxBatch = 20
	}

	concurrency := config.Concurrency
	if concurrency <= 0 {
		concurrency = 4
	}

	return &ItemLookupService{
		client:             client,
		matcher:            NewCatalogMatcher(config.EnableDebugLogging),
		aggregator:         NewPriceAggregator(config.ExcludedVendor),
		maxBatchSize:       maxBatch,
		concurrency:        concurrency,
		enableDebugLogging: config.EnableDebugLogging,
	}
}

// Lookup resolves a single query and returns the price summary of the closest
// catalog item. Any failure aborts the lookup; no partial summary is returned.
func (s *ItemLookupService) Lookup(ctx context.Context, query string) (*domain.ItemSummary, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.ErrInvalidRequest
	}

	catalog, err := s.client.ListItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch catalog: %w", err)
	}

	_, summary, err := s.resolve(ctx, query, catalog)
	if err != nil {
		return nil, err
	}

	return summary, nil
}

// LookupBatch resolves several queries against one catalog fetch. Results keep
// the order of queries. A failing query is reported in its own result and does
// not affect the others; a catalog failure or cancellation fails the batch.
func (s *ItemLookupService) LookupBatch(ctx context.Context, queries []string) ([]domain.LookupResult, error) {
	if len(queries) == 0 || len(queries) > s.maxBatchSize {
		return nil, fmt.Errorf("%w: batch must hold 1 to %d queries, got %d",
			domain.ErrInvalidRequest, s.maxBatchSize, len(queries))
	}

	cleaned := make([]string, len(queries))
	for i, q := range queries {
		cleaned[i] = strings.TrimSpace(q)
		if cleaned[i] == "" {
			return nil, fmt.Errorf("%w: query %d is empty", domain.ErrInvalidRequest, i)
		}
	}

	catalog, err := s.client.ListItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch catalog: %w", err)
	}
	if len(catalog) == 0 {
		return nil, domain.ErrEmptyCatalog
	}

	results := make([]domain.LookupResult, len(cleaned))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i, query := range cleaned {
		i, query := i, query
		g.Go(func() error {
			results[i].Query = query

			match, summary, err := s.resolve(gctx, query, catalog)
			if match != nil {
				results[i].MatchedID = match.ID
			}
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				log.Printf("[LOOKUP] Query %q failed: %v", query, err)
				results[i].Error = err.Error()
				return nil
			}

			results[i].Summary = summary
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

// resolve matches query against catalog and aggregates the matched item's details.
// The matched record is returned even when fetching or aggregating fails.
func (s *ItemLookupService) resolve(
	ctx context.Context,
	query string,
	catalog []domain.CatalogRecord,
) (*domain.CatalogRecord, *domain.ItemSummary, error) {
	match, err := s.matcher.Resolve(query, catalog)
	if err != nil {
		return nil, nil, err
	}

	details, err := s.client.GetItemDetails(ctx, match.ID)
	if err != nil {
		return match, nil, fmt.Errorf("fetch item %s: %w", match.ID, err)
	}

	summary, err := s.aggregator.Aggregate(details)
	if err != nil {
		return match, nil, err
	}

	if s.enableDebugLogging {
		log.Printf("[LOOKUP] %q resolved to %q (vendor: %s %d)",
			query, summary.Name, summary.BestVendorName, summary.BestVendorPrice)
	}

	return match, summary, nil
}
