package scraper

import (
	"context"
	"errors"

	"github.com/partsbase/catalog-scraper/internal/models"
)

var (
	ErrNoSearchTerms = errors.New("no search terms configured")
)

// PageLoader renders a URL in the shared browser session and returns its
// HTML. An empty string means the page could not be loaded; callers treat it
// as "no data", never as a failure.
type PageLoader interface {
	Load(url string) string
}

// ProductStore is the persistence seam: record upserts keyed by part number
// and blob storage for downloaded drawings.
type ProductStore interface {
	UpsertProduct(ctx context.Context, p *models.Product) error
	StorePDF(ctx context.Context, blob *models.PDFBlob) (string, error)
}

// EventPublisher announces persisted products to downstream consumers.
type EventPublisher interface {
	PublishProductScraped(ctx context.Context, p *models.Product) error
}
