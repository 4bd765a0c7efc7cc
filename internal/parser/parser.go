package parser

import (
	"github.com/partsbase/catalog-scraper/internal/models"
)

// Parser turns rendered catalog HTML into structured records. Implementations
// never fetch anything themselves; an empty or unparsable document simply
// yields empty results.
type Parser interface {
	ExtractSubcategories(html string, pageURL string) []models.Subcategory
	ExtractProducts(html string, category string, sourceURL string) []*models.Product
	ParseDetail(html string, partNumber string) *models.Product
}
