package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/partsbase/catalog-scraper/internal/models"
	"github.com/partsbase/catalog-scraper/internal/parser"
	"github.com/partsbase/catalog-scraper/internal/ratelimit"
)

const (
	// Only the first few subcategories of each search term are crawled;
	// deep categories run to hundreds of tiles.
	maxSubcategories = 5

	subcategoryDelay = 1 * time.Second
	searchTermDelay  = 2 * time.Second
)

// Options is the run configuration consumed by the orchestrator; it is
// assembled by the CLI layer.
type Options struct {
	BaseURL      string
	MaxProducts  int
	FetchDetails bool
	DownloadPDFs bool
}

// Orchestrator sequences the whole crawl: search term -> subcategories ->
// product lists -> optional detail visits -> persistence. Everything runs on
// the one shared browser page, strictly in order. Failures are contained at
// the smallest scope: one bad product or subcategory never stops its
// siblings.
type Orchestrator struct {
	nav     PageLoader
	parser  parser.Parser
	store   ProductStore
	events  EventPublisher
	details *DetailScraper
	logger  *slog.Logger
	opts    Options

	subcatLimiter ratelimit.Limiter
	termLimiter   ratelimit.Limiter

	stats models.RunStats
}

func NewOrchestrator(
	nav PageLoader,
	p parser.Parser,
	store ProductStore,
	events EventPublisher,
	details *DetailScraper,
	opts Options,
	logger *slog.Logger,
) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.MaxProducts <= 0 {
		opts.MaxProducts = 50
	}
	if details != nil {
		details.downloadPDFs = opts.DownloadPDFs
	}
	return &Orchestrator{
		nav:           nav,
		parser:        p,
		store:         store,
		events:        events,
		details:       details,
		logger:        logger.With("component", "orchestrator"),
		opts:          opts,
		subcatLimiter: ratelimit.NewFixedDelay(subcategoryDelay),
		termLimiter:   ratelimit.NewFixedDelay(searchTermDelay),
	}
}

// Crawl processes the search terms in order and returns run counters. The
// returned stats are valid even when an error cut the run short.
func (o *Orchestrator) Crawl(ctx context.Context, searchTerms []string) (models.RunStats, error) {
	if len(searchTerms) == 0 {
		return o.stats, ErrNoSearchTerms
	}

	for _, term := range searchTerms {
		if err := o.termLimiter.Wait(ctx); err != nil {
			return o.stats, err
		}

		o.logger.Info("crawling search term", "term", term)
		o.crawlSearchTerm(ctx, term)
	}

	return o.stats, nil
}

// Stats returns the counters accumulated so far.
func (o *Orchestrator) Stats() models.RunStats {
	return o.stats
}

func (o *Orchestrator) crawlSearchTerm(ctx context.Context, term string) {
	categoryURL := fmt.Sprintf("%s/%s", o.opts.BaseURL, term)
	html := o.nav.Load(categoryURL)

	// Relative tile hrefs resolve under the category path itself.
	subcategories := o.parser.ExtractSubcategories(html, categoryURL+"/")
	o.logger.Info("resolved subcategories", "term", term, "count", len(subcategories))

	if len(subcategories) == 0 {
		// The term may already be a product-list page; extract directly.
		o.processListing(ctx, term, models.Subcategory{Name: term, URL: categoryURL}, html)
		return
	}

	if len(subcategories) > maxSubcategories {
		subcategories = subcategories[:maxSubcategories]
	}

	for _, sub := range subcategories {
		if err := o.subcatLimiter.Wait(ctx); err != nil {
			return
		}
		html := o.nav.Load(sub.URL)
		o.processListing(ctx, term, sub, html)
	}
}

// processListing extracts products from one subcategory page and persists
// them, bounded to the first MaxProducts records.
func (o *Orchestrator) processListing(ctx context.Context, term string, sub models.Subcategory, html string) {
	products := o.parser.ExtractProducts(html, sub.Name, sub.URL)
	o.logger.Info("extracted products", "subcategory", sub.Name, "count", len(products))

	if len(products) > o.opts.MaxProducts {
		products = products[:o.opts.MaxProducts]
	}

	for i, p := range products {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if o.opts.FetchDetails && p.PartNumber != "" {
			o.logger.Info("fetching details",
				"part_number", p.PartNumber,
				"progress", fmt.Sprintf("%d/%d", i+1, len(products)))

			detail, pdfStored := o.details.Scrape(ctx, p.PartNumber)
			// Detail values win; the listing stub only fills what the
			// detail page lacked.
			detail.Merge(p)
			*p = *detail
			if pdfStored {
				o.stats.PDFsDownloaded++
			}
		}

		p.SearchTerm = term
		p.Subcategory = sub.Name
		o.save(ctx, p)
	}
}

// save persists one record; a store rejection is logged and the record is
// simply not counted.
func (o *Orchestrator) save(ctx context.Context, p *models.Product) {
	if p.PartNumber == "" {
		return
	}

	if err := o.store.UpsertProduct(ctx, p); err != nil {
		o.logger.Error("failed to save product", "part_number", p.PartNumber, "error", err)
		return
	}
	o.stats.ProductsScraped++

	if o.events != nil {
		if err := o.events.PublishProductScraped(ctx, p); err != nil {
			o.logger.Error("failed to publish event", "part_number", p.PartNumber, "error", err)
		}
	}
}
