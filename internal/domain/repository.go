package domain

import "context"

// ItemCatalogClient defines the interface for interacting with the tarkov.dev GraphQL API
type ItemCatalogClient interface {
	ListItems(ctx context.Context) ([]CatalogRecord, error)
	GetItemDetails(ctx context.Context, id string) (*ItemDetails, error)
}

// RateLimitStore decides whether a client identified by key may make another request
type RateLimitStore interface {
	Allow(ctx context.Context, key string) (bool, error)
}
