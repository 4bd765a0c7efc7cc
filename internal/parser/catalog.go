package parser

import (
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/partsbase/catalog-scraper/internal/models"
)

const (
	subcategorySuffix = "~/"
	productPathPrefix = "/products/"

	maxTitleLen = 100
	maxNameLen  = 200
)

// partNumberPattern matches catalog part numbers: 4-6 digits, one uppercase
// letter, 2-4 digits (e.g. 91251A144, 60205K53).
var partNumberPattern = regexp.MustCompile(`\b(\d{4,6}[A-Z]\d{2,4})\b`)

// CatalogParser extracts subcategory tiles and product records from rendered
// catalog pages. The catalog DOM is generated, inconsistent and undocumented,
// so everything here is heuristic: substring class matches and a part-number
// pattern scanned across several independent sources.
type CatalogParser struct {
	normalizer *FieldNormalizer
	materials  []string
}

func NewCatalogParser(normalizer *FieldNormalizer) *CatalogParser {
	if normalizer == nil {
		normalizer = NewFieldNormalizer(nil)
	}
	return &CatalogParser{
		normalizer: normalizer,
		// Ordered: first keyword found in the page text wins.
		materials: []string{
			"stainless steel", "carbon steel", "alloy steel", "brass",
			"aluminum", "zinc", "nylon", "plastic", "titanium",
		},
	}
}

// ExtractSubcategories scans a category or search page for subcategory tiles.
// A candidate is any anchor whose href ends in the traversal suffix and is not
// a direct product URL. Results are deduplicated by URL, first occurrence
// wins, insertion order preserved.
func (p *CatalogParser) ExtractSubcategories(html string, pageURL string) []models.Subcategory {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	seen := make(map[string]bool)
	var subcategories []models.Subcategory

	doc.Find("a[href]").Each(func(_ int, link *goquery.Selection) {
		href, _ := link.Attr("href")
		if !strings.HasSuffix(href, subcategorySuffix) || strings.HasPrefix(href, productPathPrefix) {
			return
		}

		title := findTextByClassSubstring(link, "title")
		if title == "" {
			title = truncate(strings.TrimSpace(link.Text()), maxTitleLen)
		}
		if title == "" {
			return
		}

		fullURL := resolveURL(pageURL, href)
		if seen[fullURL] {
			return
		}
		seen[fullURL] = true

		subcategories = append(subcategories, models.Subcategory{
			Name:             title,
			URL:              fullURL,
			ProductCountHint: findTextByClassSubstring(link, "productCount"),
		})
	})

	return subcategories
}

// ExtractProducts runs three independent part-number passes over a subcategory
// page and merges the partial records by part number. Image sources are the
// most reliable carrier, hrefs add the product URL and a tentative name, and
// the full page text catches numbers present only as plain text.
func (p *CatalogParser) ExtractProducts(html string, category string, sourceURL string) []*models.Product {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	var candidates []*models.Product

	doc.Find("img[src]").Each(func(_ int, img *goquery.Selection) {
		src, _ := img.Attr("src")
		for _, pn := range partNumberPattern.FindAllString(src, -1) {
			prod := models.NewProduct(pn)
			prod.ImageURL = resolveURL(sourceURL, src)
			candidates = append(candidates, prod)
		}
	})

	doc.Find("a[href]").Each(func(_ int, link *goquery.Selection) {
		href, _ := link.Attr("href")
		for _, pn := range partNumberPattern.FindAllString(href, -1) {
			prod := models.NewProduct(pn)
			prod.ProductURL = resolveURL(sourceURL, href)
			prod.Name = truncate(strings.TrimSpace(link.Text()), maxNameLen)
			candidates = append(candidates, prod)
		}
	})

	// Lowest-precision pass: anything in the visible text that looks like a
	// part number, with no surrounding context to cross-check.
	for _, pn := range partNumberPattern.FindAllString(doc.Text(), -1) {
		candidates = append(candidates, models.NewProduct(pn))
	}

	merged := make(map[string]*models.Product)
	var order []string
	for _, c := range candidates {
		c.Category = category
		c.SourceURL = sourceURL
		if existing, ok := merged[c.PartNumber]; ok {
			existing.Merge(c)
			continue
		}
		merged[c.PartNumber] = c
		order = append(order, c.PartNumber)
	}

	products := make([]*models.Product, 0, len(order))
	for _, pn := range order {
		products = append(products, merged[pn])
	}
	return products
}

// findTextByClassSubstring returns the trimmed text of the first descendant
// whose class attribute contains the given substring, case-insensitively.
func findTextByClassSubstring(sel *goquery.Selection, substr string) string {
	substr = strings.ToLower(substr)
	var text string
	sel.Find("[class]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		class, _ := s.Attr("class")
		if strings.Contains(strings.ToLower(class), substr) {
			text = strings.TrimSpace(s.Text())
			return false
		}
		return true
	})
	return text
}

func resolveURL(base string, href string) string {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return baseURL.ResolveReference(ref).String()
}

// truncate cuts s to at most max bytes without splitting a multi-byte rune.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}
