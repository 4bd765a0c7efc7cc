package scraper

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/partsbase/catalog-scraper/internal/models"
	"github.com/partsbase/catalog-scraper/internal/parser"
	"github.com/partsbase/catalog-scraper/internal/pdf"
)

// DetailScraper visits one product page, extracts the full field set and
// optionally runs the interactive PDF download flow against the page while it
// is still loaded.
type DetailScraper struct {
	nav          PageLoader
	interactor   pdf.Interactor
	parser       parser.Parser
	store        ProductStore
	logger       *slog.Logger
	baseURL      string
	downloadPDFs bool
}

// NewDetailScraper builds a detail scraper with PDF downloads off; the
// orchestrator switches them on from its run options.
func NewDetailScraper(
	nav PageLoader,
	interactor pdf.Interactor,
	p parser.Parser,
	store ProductStore,
	baseURL string,
	logger *slog.Logger,
) *DetailScraper {
	if logger == nil {
		logger = slog.Default()
	}
	return &DetailScraper{
		nav:        nav,
		interactor: interactor,
		parser:     p,
		store:      store,
		logger:     logger.With("component", "detail_scraper"),
		baseURL:    baseURL,
	}
}

// Scrape loads the product page for a part number and returns the detail
// record plus whether a PDF was stored. It never fails: a page that could
// not be loaded yields a record carrying only the part number and URL.
func (d *DetailScraper) Scrape(ctx context.Context, partNumber string) (*models.Product, bool) {
	url := fmt.Sprintf("%s/%s", d.baseURL, partNumber)
	html := d.nav.Load(url)

	prod := d.parser.ParseDetail(html, partNumber)
	if prod.ProductURL == "" {
		prod.ProductURL = url
	}

	if html == "" || !d.downloadPDFs || d.store == nil || d.interactor == nil {
		return prod, false
	}

	d.logger.Info("attempting 2D PDF download", "part_number", partNumber)
	acq := pdf.NewAcquisition(d.interactor, d.logger)
	data, ok := acq.Run()
	if !ok {
		d.logger.Debug("no 2D PDF for product", "part_number", partNumber, "state", acq.State().String())
		return prod, false
	}

	blob := &models.PDFBlob{
		Data:       data,
		Filename:   fmt.Sprintf("%s_2d.pdf", partNumber),
		PartNumber: partNumber,
		TypeTag:    "2d",
	}

	id, err := d.store.StorePDF(ctx, blob)
	if err != nil {
		d.logger.Error("failed to store PDF", "part_number", partNumber, "error", err)
		return prod, false
	}

	prod.PDF2DFileID = id
	prod.Has2DPDF = true
	d.logger.Info("stored 2D PDF", "part_number", partNumber, "file_id", id, "bytes", len(data))
	return prod, true
}
