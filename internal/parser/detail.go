package parser

import (
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/partsbase/catalog-scraper/internal/models"
)

var currencyPattern = regexp.MustCompile(`\$[0-9,]+\.?[0-9]*`)

const maxHeaderLen = 100

// ParseDetail extracts the full field set from a product page. Anything that
// cannot be found is simply left empty; a detail page with no recognizable
// structure still yields a valid record carrying only the part number.
func (p *CatalogParser) ParseDetail(html string, partNumber string) *models.Product {
	prod := models.NewProduct(partNumber)
	prod.DetailedAt = time.Now().UTC()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return prod
	}

	prod.Name = strings.TrimSpace(doc.Find("h1").First().Text())

	p.extractPrice(doc, prod)
	p.extractSpecTable(doc, prod)

	if prod.Material == "" {
		prod.Material = p.scanMaterial(doc.Text())
	}

	return prod
}

// extractPrice takes the first element whose class contains "price" and whose
// text matches a currency pattern.
func (p *CatalogParser) extractPrice(doc *goquery.Document, prod *models.Product) {
	doc.Find("[class]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		class, _ := s.Attr("class")
		if !strings.Contains(strings.ToLower(class), "price") {
			return true
		}
		m := currencyPattern.FindString(s.Text())
		if m == "" {
			return true
		}
		if price, ok := p.normalizer.ParsePrice(m); ok {
			prod.Price = &price
			return false
		}
		return true
	})
}

// extractSpecTable treats every two-cell table row as a header/value pair.
// Headers that normalize to a canonical field are stored there, with price and
// quantity sub-parsing for the monetary and count fields; everything else
// lands verbatim in the specifications map.
func (p *CatalogParser) extractSpecTable(doc *goquery.Document, prod *models.Product) {
	doc.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("th, td")
		if cells.Length() < 2 {
			return
		}

		header := strings.TrimSpace(cells.Eq(0).Text())
		value := strings.TrimSpace(cells.Eq(1).Text())
		if header == "" || value == "" || len(header) >= maxHeaderLen {
			return
		}

		field, ok := p.normalizer.NormalizeHeader(header)
		if !ok {
			if prod.Specifications == nil {
				prod.Specifications = make(map[string]string)
			}
			prod.Specifications[header] = value
			return
		}

		switch field {
		case "pkg_price":
			if price, ok := p.normalizer.ParsePrice(value); ok {
				prod.PkgPrice = &price
			}
		case "pkg_qty":
			if qty, ok := p.normalizer.ParseQuantity(value); ok {
				prod.PkgQty = &qty
			}
		case "size":
			fillIfEmpty(&prod.Size, value)
		case "diameter_width":
			fillIfEmpty(&prod.DiameterWidth, value)
		case "height":
			fillIfEmpty(&prod.Height, value)
		case "length":
			fillIfEmpty(&prod.Length, value)
		case "thread_size":
			fillIfEmpty(&prod.ThreadSize, value)
		case "material":
			fillIfEmpty(&prod.Material, value)
		}
	})
}

// scanMaterial looks for the first known material keyword in the page text.
func (p *CatalogParser) scanMaterial(text string) string {
	lower := strings.ToLower(text)
	for _, mat := range p.materials {
		if strings.Contains(lower, mat) {
			return titleCase(mat)
		}
	}
	return ""
}

func fillIfEmpty(dst *string, value string) {
	if *dst == "" {
		*dst = value
	}
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
