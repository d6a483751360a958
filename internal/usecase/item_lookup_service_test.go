package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/tarkovlens/backend/internal/domain"
)

// MockCatalogClient is a mock implementation of domain.ItemCatalogClient
type MockCatalogClient struct {
	mu           sync.Mutex
	catalog      []domain.CatalogRecord
	listError    error
	details      map[string]*domain.ItemDetails
	detailErrors map[string]error
	listCalls    int
	detailCalls  []string
}

func NewMockCatalogClient() *MockCatalogClient {
	return &MockCatalogClient{
		details:      make(map[string]*domain.ItemDetails),
		detailErrors: make(map[string]error),
	}
}

func (m *MockCatalogClient) ListItems(ctx context.Context) ([]domain.CatalogRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listCalls++
	if m.listError != nil {
		return nil, m.listError
	}
	return m.catalog, nil
}

func (m *MockCatalogClient) GetItemDetails(ctx context.Context, id string) (*domain.ItemDetails, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.detailCalls = append(m.detailCalls, id)
	if err, ok := m.detailErrors[id]; ok {
		return nil, err
	}
	if item, ok := m.details[id]; ok {
		return item, nil
	}
	return nil, domain.ErrItemNotFound
}

func newPopulatedClient() *MockCatalogClient {
	client := NewMockCatalogClient()
	client.catalog = sampleCatalog()

	mayo := sampleItemDetails()
	mayo.ID = "1"
	client.details["1"] = mayo

	milk := sampleItemDetails()
	milk.ID = "2"
	milk.Name = strPtr("Can of condensed milk")
	milk.SellFor = []domain.SellOffer{offer("Jaeger", 7000), offer("Flea Market", 20000)}
	client.details["2"] = milk

	return client
}

func TestNewItemLookupService(t *testing.T) {
	client := NewMockCatalogClient()

	t.Run("creates service with default values", func(t *testing.T) {
		svc := NewItemLookupService(client, ItemLookupServiceConfig{})
		if svc == nil {
			t.Fatal("expected service to be created")
		}
		if svc.maxBatchSize != 20 {
			t.Errorf("maxBatchSize = %d, want 20", svc.maxBatchSize)
		}
		if svc.concurrency != 4 {
			t.Errorf("concurrency = %d, want 4", svc.concurrency)
		}
		if svc.aggregator.excludedVendor != domain.FleaMarketVendor {
			t.Errorf("excludedVendor = %q, want %q", svc.aggregator.excludedVendor, domain.FleaMarketVendor)
		}
	})

	t.Run("creates service with custom values", func(t *testing.T) {
		svc := NewItemLookupService(client, ItemLookupServiceConfig{
			ExcludedVendor: "Fence",
			MaxBatchSize:   5,
			Concurrency:    2,
		})
		if svc.maxBatchSize != 5 {
			t.Errorf("maxBatchSize = %d, want 5", svc.maxBatchSize)
		}
		if svc.concurrency != 2 {
			t.Errorf("concurrency = %d, want 2", svc.concurrency)
		}
		if svc.aggregator.excludedVendor != "Fence" {
			t.Errorf("excludedVendor = %q, want Fence", svc.aggregator.excludedVendor)
		}
	})
}

func TestLookup(t *testing.T) {
	ctx := context.Background()

	t.Run("returns error for blank query", func(t *testing.T) {
		client := newPopulatedClient()
		svc := NewItemLookupService(client, ItemLookupServiceConfig{})

		_, err := svc.Lookup(ctx, "   ")
		if !errors.Is(err, domain.ErrInvalidRequest) {
			t.Errorf("error = %v, want ErrInvalidRequest", err)
		}
		if client.listCalls != 0 {
			t.Errorf("listCalls = %d, want 0", client.listCalls)
		}
	})

	t.Run("resolves query and aggregates details", func(t *testing.T) {
		client := newPopulatedClient()
		svc := NewItemLookupService(client, ItemLookupServiceConfig{})

		summary, err := svc.Lookup(ctx, "mayo")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if summary.ID != "1" {
			t.Errorf("ID = %v, want 1", summary.ID)
		}
		if summary.BestVendorName != "Therapist" || summary.BestVendorPrice != 4100 {
			t.Errorf("best vendor = (%d, %q), want (4100, Therapist)", summary.BestVendorPrice, summary.BestVendorName)
		}
		if len(client.detailCalls) != 1 || client.detailCalls[0] != "1" {
			t.Errorf("detailCalls = %v, want [1]", client.detailCalls)
		}
	})

	t.Run("trims surrounding whitespace", func(t *testing.T) {
		client := newPopulatedClient()
		svc := NewItemLookupService(client, ItemLookupServiceConfig{})

		summary, err := svc.Lookup(ctx, "  milk\n")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if summary.ID != "2" {
			t.Errorf("ID = %v, want 2", summary.ID)
		}
	})

	t.Run("wraps catalog failures", func(t *testing.T) {
		client := newPopulatedClient()
		client.listError = domain.ErrUpstreamFailure
		svc := NewItemLookupService(client, ItemLookupServiceConfig{})

		_, err := svc.Lookup(ctx, "mayo")
		if !errors.Is(err, domain.ErrUpstreamFailure) {
			t.Errorf("error = %v, want ErrUpstreamFailure", err)
		}
	})

	t.Run("returns ErrEmptyCatalog without fetching details", func(t *testing.T) {
		client := NewMockCatalogClient()
		svc := NewItemLookupService(client, ItemLookupServiceConfig{})

		_, err := svc.Lookup(ctx, "mayo")
		if !errors.Is(err, domain.ErrEmptyCatalog) {
			t.Errorf("error = %v, want ErrEmptyCatalog", err)
		}
		if len(client.detailCalls) != 0 {
			t.Errorf("detailCalls = %v, want none", client.detailCalls)
		}
	})

	t.Run("returns detail fetch errors", func(t *testing.T) {
		client := newPopulatedClient()
		delete(client.details, "1")
		svc := NewItemLookupService(client, ItemLookupServiceConfig{})

		summary, err := svc.Lookup(ctx, "mayo")
		if !errors.Is(err, domain.ErrItemNotFound) {
			t.Errorf("error = %v, want ErrItemNotFound", err)
		}
		if summary != nil {
			t.Error("expected no summary on failure")
		}
	})

	t.Run("returns no partial summary for malformed detail", func(t *testing.T) {
		client := newPopulatedClient()
		client.details["1"].Link = nil
		svc := NewItemLookupService(client, ItemLookupServiceConfig{})

		summary, err := svc.Lookup(ctx, "mayo")
		if !errors.Is(err, domain.ErrMissingRequiredField) {
			t.Errorf("error = %v, want ErrMissingRequiredField", err)
		}
		if summary != nil {
			t.Error("expected no summary on failure")
		}
	})
}

func TestLookupBatch(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects empty and oversized batches", func(t *testing.T) {
		svc := NewItemLookupService(newPopulatedClient(), ItemLookupServiceConfig{MaxBatchSize: 2})

		if _, err := svc.LookupBatch(ctx, nil); !errors.Is(err, domain.ErrInvalidRequest) {
			t.Errorf("empty batch error = %v, want ErrInvalidRequest", err)
		}
		if _, err := svc.LookupBatch(ctx, []string{"a", "b", "c"}); !errors.Is(err, domain.ErrInvalidRequest) {
			t.Errorf("oversized batch error = %v, want ErrInvalidRequest", err)
		}
	})

	t.Run("rejects blank queries", func(t *testing.T) {
		svc := NewItemLookupService(newPopulatedClient(), ItemLookupServiceConfig{})

		_, err := svc.LookupBatch(ctx, []string{"mayo", " "})
		if !errors.Is(err, domain.ErrInvalidRequest) {
			t.Errorf("error = %v, want ErrInvalidRequest", err)
		}
	})

	t.Run("fetches catalog once and keeps query order", func(t *testing.T) {
		client := newPopulatedClient()
		svc := NewItemLookupService(client, ItemLookupServiceConfig{Concurrency: 2})

		queries := []string{"milk", "mayo", "condensed-milk", "Mayonnaise"}
		results, err := svc.LookupBatch(ctx, queries)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if client.listCalls != 1 {
			t.Errorf("listCalls = %d, want 1", client.listCalls)
		}
		if len(results) != len(queries) {
			t.Fatalf("len(results) = %d, want %d", len(results), len(queries))
		}

		wantIDs := []string{"2", "1", "2", "1"}
		for i, result := range results {
			if result.Query != queries[i] {
				t.Errorf("results[%d].Query = %q, want %q", i, result.Query, queries[i])
			}
			if result.MatchedID != wantIDs[i] {
				t.Errorf("results[%d].MatchedID = %q, want %q", i, result.MatchedID, wantIDs[i])
			}
			if result.Summary == nil || result.Error != "" {
				t.Errorf("results[%d] = %+v, want summary without error", i, result)
			}
		}
		if results[0].Summary.BestVendorName != "Jaeger" {
			t.Errorf("results[0] vendor = %q, want Jaeger", results[0].Summary.BestVendorName)
		}
	})

	t.Run("isolates per-query failures", func(t *testing.T) {
		client := newPopulatedClient()
		client.detailErrors["2"] = domain.ErrUpstreamFailure
		svc := NewItemLookupService(client, ItemLookupServiceConfig{})

		results, err := svc.LookupBatch(ctx, []string{"mayo", "milk"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if results[0].Summary == nil || results[0].Error != "" {
			t.Errorf("results[0] = %+v, want success", results[0])
		}
		if results[1].Summary != nil || results[1].Error == "" {
			t.Errorf("results[1] = %+v, want failure", results[1])
		}
		if results[1].MatchedID != "2" {
			t.Errorf("results[1].MatchedID = %q, want 2", results[1].MatchedID)
		}
	})

	t.Run("fails the batch when the catalog fails", func(t *testing.T) {
		client := newPopulatedClient()
		client.listError = domain.ErrUpstreamFailure
		svc := NewItemLookupService(client, ItemLookupServiceConfig{})

		_, err := svc.LookupBatch(ctx, []string{"mayo"})
		if !errors.Is(err, domain.ErrUpstreamFailure) {
			t.Errorf("error = %v, want ErrUpstreamFailure", err)
		}
	})

	t.Run("fails the batch on an empty catalog", func(t *testing.T) {
		svc := NewItemLookupService(NewMockCatalogClient(), ItemLookupServiceConfig{})

		_, err := svc.LookupBatch(ctx, []string{"mayo"})
		if !errors.Is(err, domain.ErrEmptyCatalog) {
			t.Errorf("error = %v, want ErrEmptyCatalog", err)
		}
	})

	t.Run("fails the batch when the context is cancelled", func(t *testing.T) {
		client := newPopulatedClient()
		client.detailErrors["1"] = context.Canceled
		svc := NewItemLookupService(client, ItemLookupServiceConfig{})

		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		_, err := svc.LookupBatch(cancelled, []string{"mayo"})
		if !errors.Is(err, context.Canceled) {
			t.Errorf("error = %v, want context.Canceled", err)
		}
	})
}
