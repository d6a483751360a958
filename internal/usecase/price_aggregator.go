package usecase

import (
	"github.com/tarkovlens/backend/internal/domain"
)

// PriceAggregator condenses a detailed item record into a display-ready summary
type PriceAggregator struct {
	excludedVendor string
}

// NewPriceAggregator creates an aggregator that ignores offers from excludedVendor.
// An empty name falls back to the Flea Market.
func NewPriceAggregator(excludedVendor string) *PriceAggregator {
	if excludedVendor == "" {
		excludedVendor = domain.FleaMarketVendor
	}
	return &PriceAggregator{excludedVendor: excludedVendor}
}

// Aggregate builds the item summary, picking the highest offer from any vendor
// other than the excluded channel. The first of several equal offers wins.
// A vendor offer of 0 cannot be told apart from having no offer at all.
//
// Absent name, link, icon link, base price or sell-offer list fail the whole
// call with a *domain.MissingFieldError; absent recent prices default to 0.
func (a *PriceAggregator) Aggregate(item *domain.ItemDetails) (*domain.ItemSummary, error) {
	if item == nil {
		return nil, &domain.MissingFieldError{Field: "item"}
	}

	name, err := requireString(item.ID, "name", item.Name)
	if err != nil {
		return nil, err
	}
	link, err := requireString(item.ID, "link", item.Link)
	if err != nil {
		return nil, err
	}
	iconLink, err := requireString(item.ID, "iconLink", item.IconLink)
	if err != nil {
		return nil, err
	}
	if item.BasePrice == nil {
		return nil, &domain.MissingFieldError{Record: item.ID, Field: "basePrice"}
	}
	if item.SellFor == nil {
		return nil, &domain.MissingFieldError{Record: item.ID, Field: "sellFor"}
	}

	var bestPrice int64
	var bestVendor string
	for _, offer := range item.SellFor {
		if offer.Vendor.Name == a.excludedVendor || offer.PriceRUB == nil {
			continue
		}
		if *offer.PriceRUB > bestPrice {
			bestPrice = *offer.PriceRUB
			bestVendor = offer.Vendor.Name
		}
	}

	return &domain.ItemSummary{
		ID:                 item.ID,
		Name:               name,
		BasePrice:          *item.BasePrice,
		RecentLowPrice:     valueOrZero(item.LastLowPrice),
		RecentAveragePrice: valueOrZero(item.Avg24hPrice),
		Link:               link,
		IconLink:           iconLink,
		BestVendorPrice:    bestPrice,
		BestVendorName:     bestVendor,
	}, nil
}

func requireString(record, field string, value *string) (string, error) {
	if value == nil {
		return "", &domain.MissingFieldError{Record: record, Field: field}
	}
	return *value, nil
}

func valueOrZero(v *int64) int64 {
	if v == nil {
		return 0
	}
	return *v
}
