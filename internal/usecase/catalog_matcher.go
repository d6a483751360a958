package usecase

import (
	"log"
	"math"

	"github.com/tarkovlens/backend/internal/domain"
)

// absentFieldDistance is the distance charged for a name field missing upstream
const absentFieldDistance = math.MaxInt

// CatalogMatcher resolves a free-text query to the closest record of an item catalog.
// It keeps no state between calls and is safe for concurrent use.
type CatalogMatcher struct {
	enableDebugLogging bool
}

// NewCatalogMatcher creates a new catalog matcher
func NewCatalogMatcher(enableDebugLogging bool) *CatalogMatcher {
	return &CatalogMatcher{enableDebugLogging: enableDebugLogging}
}

// Resolve returns the catalog record whose id, name, short name or normalized
// name is closest to query by edit distance. Ties go to the record that comes
// first in the catalog. There is no relevance cutoff: any non-empty catalog
// yields a match. The returned pointer addresses an element of catalog.
func (m *CatalogMatcher) Resolve(query string, catalog []domain.CatalogRecord) (*domain.CatalogRecord, error) {
	if len(catalog) == 0 {
		return nil, domain.ErrEmptyCatalog
	}

	q := []rune(query)
	scratch := newEditScratch(len(q))

	best := -1
	bestScore := absentFieldDistance
	for i := range catalog {
		score := scoreRecord(q, &catalog[i], scratch)
		if best < 0 || score < bestScore {
			best = i
			bestScore = score
		}
		if bestScore == 0 {
			break
		}
	}

	if m.enableDebugLogging {
		log.Printf("[MATCH] %q -> %s (distance: %d, candidates: %d)",
			query, catalog[best].ID, bestScore, len(catalog))
	}

	return &catalog[best], nil
}

// scoreRecord returns the smallest edit distance between the query and any of
// the record's four identifying fields.
func scoreRecord(query []rune, record *domain.CatalogRecord, scratch *editScratch) int {
	score := scratch.distance(query, record.ID)

	fields := [...]*string{record.Name, record.ShortName, record.NormalizedName}
	for _, field := range fields {
		if score == 0 {
			break
		}
		if field == nil {
			continue
		}
		score = min(score, scratch.distance(query, *field))
	}

	return score
}
