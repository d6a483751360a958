package domain

// FleaMarketVendor is the open marketplace channel. Its offers are reference
// prices and never count as a vendor price.
const FleaMarketVendor = "Flea Market"

// CatalogRecord is one entry of the tarkov.dev item catalog.
// Name fields are pointers so an absent upstream value stays distinguishable from "".
type CatalogRecord struct {
	ID             string  `json:"id"`
	Name           *string `json:"name"`
	ShortName      *string `json:"shortName"`
	NormalizedName *string `json:"normalizedName"`
}

// Vendor identifies a buyer or channel in a sell offer
type Vendor struct {
	Name           string `json:"name"`
	NormalizedName string `json:"normalizedName,omitempty"`
}

// SellOffer is one vendor's willingness to buy an item
type SellOffer struct {
	Vendor   Vendor `json:"vendor"`
	PriceRUB *int64 `json:"priceRUB"`
}

// ItemDetails is the detailed record returned by the per-id item query.
// A nil SellFor means the list was absent; an empty non-nil slice means zero offers.
type ItemDetails struct {
	ID           string      `json:"id"`
	Name         *string     `json:"name"`
	Link         *string     `json:"link"`
	IconLink     *string     `json:"iconLink"`
	BasePrice    *int64      `json:"basePrice"`
	LastLowPrice *int64      `json:"lastLowPrice"`
	Avg24hPrice  *int64      `json:"avg24hPrice"`
	SellFor      []SellOffer `json:"sellFor"`
}

// ItemSummary is the display-ready price summary for a resolved item
type ItemSummary struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	BasePrice          int64  `json:"basePrice"`
	RecentLowPrice     int64  `json:"recentLowPrice"`     // last flea low, 0 when unknown
	RecentAveragePrice int64  `json:"recentAveragePrice"` // 24h flea average, 0 when unknown
	Link               string `json:"link"`
	IconLink           string `json:"iconLink"`
	BestVendorPrice    int64  `json:"bestVendorPrice"`
	BestVendorName     string `json:"bestVendorName"`
}

// SearchRequest represents a single item price lookup
type SearchRequest struct {
	Query string `form:"q" json:"query" binding:"required"`
}

// BatchLookupRequest represents a lookup of several queries at once
type BatchLookupRequest struct {
	Queries []string `json:"queries" binding:"required"`
}

// LookupResult is the outcome of one query in a batch lookup
type LookupResult struct {
	Query     string       `json:"query"`
	MatchedID string       `json:"matchedId,omitempty"`
	Summary   *ItemSummary `json:"summary,omitempty"`
	Error     string       `json:"error,omitempty"`
}
