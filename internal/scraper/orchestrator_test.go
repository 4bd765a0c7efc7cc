package scraper

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/partsbase/catalog-scraper/internal/models"
	"github.com/partsbase/catalog-scraper/internal/parser"
	"github.com/partsbase/catalog-scraper/internal/pdf"
	"github.com/partsbase/catalog-scraper/internal/ratelimit"
)

const baseURL = "https://catalog.example.com"

type fakeNav struct {
	pages map[string]string
	loads []string
}

func (f *fakeNav) Load(url string) string {
	f.loads = append(f.loads, url)
	return f.pages[url]
}

type fakeStore struct {
	upserts  []*models.Product
	blobs    []*models.PDFBlob
	failFor  map[string]bool
	blobErr  error
	nextBlob string
}

func (f *fakeStore) UpsertProduct(_ context.Context, p *models.Product) error {
	if f.failFor[p.PartNumber] {
		return errors.New("store rejected write")
	}
	cp := *p
	f.upserts = append(f.upserts, &cp)
	return nil
}

func (f *fakeStore) StorePDF(_ context.Context, blob *models.PDFBlob) (string, error) {
	if f.blobErr != nil {
		return "", f.blobErr
	}
	f.blobs = append(f.blobs, blob)
	if f.nextBlob == "" {
		f.nextBlob = "blob-1"
	}
	return f.nextBlob, nil
}

type fakeEvents struct {
	published []string
}

func (f *fakeEvents) PublishProductScraped(_ context.Context, p *models.Product) error {
	f.published = append(f.published, p.PartNumber)
	return nil
}

// noCADPage is a product page without any CAD dropdown.
type noCADPage struct{}

func (noCADPage) ClickParameterContaining(string) (bool, error)        { return false, nil }
func (noCADPage) OpenCADDropdown() (bool, error)                       { return false, nil }
func (noCADPage) SelectListItem(string) (bool, error)                  { return false, nil }
func (noCADPage) TriggerDownload(time.Duration) (pdf.Download, error)  { return nil, nil }

type staticDownload []byte

func (d staticDownload) Bytes() ([]byte, error) { return d, nil }

// cadPage offers the full download flow.
type cadPage struct{}

func (cadPage) ClickParameterContaining(string) (bool, error) { return false, nil }
func (cadPage) OpenCADDropdown() (bool, error)                { return true, nil }
func (cadPage) SelectListItem(string) (bool, error)           { return true, nil }
func (cadPage) TriggerDownload(time.Duration) (pdf.Download, error) {
	return staticDownload("%PDF-1.4"), nil
}

func newTestOrchestrator(nav PageLoader, store ProductStore, events EventPublisher, interactor pdf.Interactor, opts Options) *Orchestrator {
	opts.BaseURL = baseURL
	p := parser.NewCatalogParser(nil)
	details := NewDetailScraper(nav, interactor, p, store, baseURL, nil)
	o := NewOrchestrator(nav, p, store, events, details, opts, nil)
	// No politeness pauses in tests.
	o.subcatLimiter = ratelimit.NewFixedDelay(0)
	o.termLimiter = ratelimit.NewFixedDelay(0)
	return o
}

func TestCrawlNoSearchTerms(t *testing.T) {
	o := newTestOrchestrator(&fakeNav{}, &fakeStore{}, nil, nil, Options{})

	_, err := o.Crawl(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoSearchTerms)
}

func TestCrawlSubcategoriesToProducts(t *testing.T) {
	nav := &fakeNav{pages: map[string]string{
		baseURL + "/screws": `
			<a href="socket-head~/"><div class="tileTitle">Socket Head Screws</div></a>`,
		baseURL + "/screws/socket-head~/": `
			<img src="/images/91251A144.png">
			<a href="/91251A144">Alloy Steel Socket Head Screw</a>
			<a href="/more~/">See 60205K53 too</a>`,
	}}
	store := &fakeStore{}
	events := &fakeEvents{}

	o := newTestOrchestrator(nav, store, events, nil, Options{MaxProducts: 10})
	stats, err := o.Crawl(context.Background(), []string{"screws"})

	require.NoError(t, err)
	assert.Equal(t, 2, stats.ProductsScraped)
	require.Len(t, store.upserts, 2)

	first := store.upserts[0]
	assert.Equal(t, "91251A144", first.PartNumber)
	assert.Equal(t, "screws", first.SearchTerm)
	assert.Equal(t, "Socket Head Screws", first.Subcategory)
	assert.NotEmpty(t, first.ImageURL)
	assert.NotEmpty(t, first.ProductURL)

	assert.Equal(t, []string{"91251A144", "60205K53"}, events.published)
}

func TestCrawlDirectListingWhenNoSubcategories(t *testing.T) {
	nav := &fakeNav{pages: map[string]string{
		baseURL + "/91251A144-page": `<a href="/91251A144">Part 91251A144</a>`,
	}}
	store := &fakeStore{}

	o := newTestOrchestrator(nav, store, nil, nil, Options{MaxProducts: 10})
	stats, err := o.Crawl(context.Background(), []string{"91251A144-page"})

	require.NoError(t, err)
	assert.Equal(t, 1, stats.ProductsScraped)
	assert.Equal(t, "91251A144-page", store.upserts[0].SearchTerm)
}

func TestCrawlSurvivesFailedSubcategory(t *testing.T) {
	// Subcategory 2 of 3 never loads; 1 and 3 must still be processed.
	nav := &fakeNav{pages: map[string]string{
		baseURL + "/nuts": `
			<a href="hex~/"><div class="tileTitle">Hex Nuts</div></a>
			<a href="lock~/"><div class="tileTitle">Lock Nuts</div></a>
			<a href="wing~/"><div class="tileTitle">Wing Nuts</div></a>`,
		baseURL + "/nuts/hex~/":  `<a href="/90592A016">Part 90592A016</a>`,
		baseURL + "/nuts/wing~/": `<a href="/90866A029">Part 90866A029</a>`,
	}}
	store := &fakeStore{}

	o := newTestOrchestrator(nav, store, nil, nil, Options{MaxProducts: 10})
	stats, err := o.Crawl(context.Background(), []string{"nuts"})

	require.NoError(t, err)
	assert.Equal(t, 2, stats.ProductsScraped)
	require.Len(t, store.upserts, 2)
	assert.Equal(t, "90592A016", store.upserts[0].PartNumber)
	assert.Equal(t, "Hex Nuts", store.upserts[0].Subcategory)
	assert.Equal(t, "90866A029", store.upserts[1].PartNumber)
	assert.Equal(t, "Wing Nuts", store.upserts[1].Subcategory)
}

func TestCrawlBoundsSubcategoriesAndProducts(t *testing.T) {
	category := ""
	for _, s := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		category += `<a href="` + s + `~/"><div class="tileTitle">Cat ` + s + `</div></a>`
	}
	listing := `
		<a href="/91251A101">one</a>
		<a href="/91251A102">two</a>
		<a href="/91251A103">three</a>`
	pages := map[string]string{baseURL + "/bolts": category}
	for _, s := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		pages[baseURL+"/bolts/"+s+"~/"] = listing
	}
	nav := &fakeNav{pages: pages}
	store := &fakeStore{}

	o := newTestOrchestrator(nav, store, nil, nil, Options{MaxProducts: 2})
	_, err := o.Crawl(context.Background(), []string{"bolts"})

	require.NoError(t, err)
	// 5 subcategories x 2 products; duplicates across subcategories are
	// separate upserts (the store merges them).
	assert.Len(t, store.upserts, 10)

	// Category page plus only the first five subcategory pages were loaded.
	assert.Len(t, nav.loads, 6)
}

func TestCrawlContinuesAfterPersistenceFailure(t *testing.T) {
	nav := &fakeNav{pages: map[string]string{
		baseURL + "/washers": `
			<a href="/91251A144">Part 91251A144</a>
			<a href="/60205K53">Part 60205K53</a>`,
	}}
	store := &fakeStore{failFor: map[string]bool{"91251A144": true}}

	o := newTestOrchestrator(nav, store, nil, nil, Options{MaxProducts: 10})
	stats, err := o.Crawl(context.Background(), []string{"washers"})

	require.NoError(t, err)
	assert.Equal(t, 1, stats.ProductsScraped)
	require.Len(t, store.upserts, 1)
	assert.Equal(t, "60205K53", store.upserts[0].PartNumber)
}

func TestCrawlFetchDetailsMergesDetailOverStub(t *testing.T) {
	nav := &fakeNav{pages: map[string]string{
		baseURL + "/screws": `<a href="/91251A144">listing name</a>`,
		baseURL + "/91251A144": `
			<h1>Alloy Steel Socket Head Screw</h1>
			<div class="price">$12.42</div>
			<table><tr><th>Thread Size</th><td>M6</td></tr></table>`,
	}}
	store := &fakeStore{}

	o := newTestOrchestrator(nav, store, nil, noCADPage{}, Options{
		MaxProducts:  10,
		FetchDetails: true,
	})
	stats, err := o.Crawl(context.Background(), []string{"screws"})

	require.NoError(t, err)
	assert.Equal(t, 1, stats.ProductsScraped)
	assert.Equal(t, 0, stats.PDFsDownloaded)

	saved := store.upserts[0]
	assert.Equal(t, "Alloy Steel Socket Head Screw", saved.Name)
	assert.Equal(t, "M6", saved.ThreadSize)
	require.NotNil(t, saved.Price)
	assert.InDelta(t, 12.42, *saved.Price, 0.001)
	assert.False(t, saved.Has2DPDF)
}

func TestCrawlSkipsPDFsWhenDisabled(t *testing.T) {
	nav := &fakeNav{pages: map[string]string{
		baseURL + "/screws":    `<a href="/91251A144">Part 91251A144</a>`,
		baseURL + "/91251A144": `<h1>Screw</h1>`,
	}}
	store := &fakeStore{}

	// The page offers the full download flow, but the run has it switched off.
	o := newTestOrchestrator(nav, store, nil, cadPage{}, Options{
		MaxProducts:  10,
		FetchDetails: true,
		DownloadPDFs: false,
	})
	stats, err := o.Crawl(context.Background(), []string{"screws"})

	require.NoError(t, err)
	assert.Equal(t, 0, stats.PDFsDownloaded)
	assert.Empty(t, store.blobs)
	assert.False(t, store.upserts[0].Has2DPDF)
}

func TestCrawlDownloadsAndCountsPDFs(t *testing.T) {
	nav := &fakeNav{pages: map[string]string{
		baseURL + "/screws":    `<a href="/91251A144">Part 91251A144</a>`,
		baseURL + "/91251A144": `<h1>Screw</h1>`,
	}}
	store := &fakeStore{}

	o := newTestOrchestrator(nav, store, nil, cadPage{}, Options{
		MaxProducts:  10,
		FetchDetails: true,
		DownloadPDFs: true,
	})
	stats, err := o.Crawl(context.Background(), []string{"screws"})

	require.NoError(t, err)
	assert.Equal(t, 1, stats.PDFsDownloaded)

	require.Len(t, store.blobs, 1)
	assert.Equal(t, "91251A144_2d.pdf", store.blobs[0].Filename)
	assert.Equal(t, "2d", store.blobs[0].TypeTag)

	saved := store.upserts[0]
	assert.True(t, saved.Has2DPDF)
	assert.Equal(t, "blob-1", saved.PDF2DFileID)
}
