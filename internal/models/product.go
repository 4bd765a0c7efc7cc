package models

import (
	"time"
)

// Subcategory is a navigable tile on a category page leading to a narrower
// product listing.
type Subcategory struct {
	Name             string `json:"name"`
	URL              string `json:"url"`
	ProductCountHint string `json:"product_count,omitempty"`
}

// Product is a single catalog part, keyed by its part number. List extraction
// produces partial records (part number plus whatever a single pass could
// see); a detail visit fills in the remaining fields.
type Product struct {
	PartNumber  string `json:"part_number"`
	Name        string `json:"name,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
	ProductURL  string `json:"product_url,omitempty"`
	Category    string `json:"category,omitempty"`
	SearchTerm  string `json:"search_term,omitempty"`
	Subcategory string `json:"subcategory,omitempty"`
	SourceURL   string `json:"source_url,omitempty"`

	Price *float64 `json:"price,omitempty"`

	// Canonical fields mapped from table headers.
	Size          string   `json:"size,omitempty"`
	DiameterWidth string   `json:"diameter_width,omitempty"`
	Height        string   `json:"height,omitempty"`
	Length        string   `json:"length,omitempty"`
	ThreadSize    string   `json:"thread_size,omitempty"`
	Material      string   `json:"material,omitempty"`
	PkgQty        *int     `json:"pkg_qty,omitempty"`
	PkgPrice      *float64 `json:"pkg_price,omitempty"`

	// Headers that did not map to a canonical field, kept verbatim.
	Specifications map[string]string `json:"specifications,omitempty"`

	PDF2DFileID string `json:"pdf_2d_file_id,omitempty"`
	Has2DPDF    bool   `json:"has_2d_pdf,omitempty"`

	ScrapedAt  time.Time `json:"scraped_at"`
	DetailedAt time.Time `json:"detailed_at,omitempty"`
}

func NewProduct(partNumber string) *Product {
	return &Product{
		PartNumber: partNumber,
		ScrapedAt:  time.Now().UTC(),
	}
}

// Merge fills empty fields of p from other. Fields already set on p are never
// overwritten: the same part number always refers to the same physical item,
// so later sightings may only add information.
func (p *Product) Merge(other *Product) {
	if other == nil || other.PartNumber != p.PartNumber {
		return
	}

	fillString(&p.Name, other.Name)
	fillString(&p.ImageURL, other.ImageURL)
	fillString(&p.ProductURL, other.ProductURL)
	fillString(&p.Category, other.Category)
	fillString(&p.SearchTerm, other.SearchTerm)
	fillString(&p.Subcategory, other.Subcategory)
	fillString(&p.SourceURL, other.SourceURL)
	fillString(&p.Size, other.Size)
	fillString(&p.DiameterWidth, other.DiameterWidth)
	fillString(&p.Height, other.Height)
	fillString(&p.Length, other.Length)
	fillString(&p.ThreadSize, other.ThreadSize)
	fillString(&p.Material, other.Material)
	fillString(&p.PDF2DFileID, other.PDF2DFileID)

	if p.Price == nil {
		p.Price = other.Price
	}
	if p.PkgQty == nil {
		p.PkgQty = other.PkgQty
	}
	if p.PkgPrice == nil {
		p.PkgPrice = other.PkgPrice
	}
	if !p.Has2DPDF {
		p.Has2DPDF = other.Has2DPDF
	}
	if p.ScrapedAt.IsZero() {
		p.ScrapedAt = other.ScrapedAt
	}
	if p.DetailedAt.IsZero() {
		p.DetailedAt = other.DetailedAt
	}

	for k, v := range other.Specifications {
		if p.Specifications == nil {
			p.Specifications = make(map[string]string)
		}
		if _, ok := p.Specifications[k]; !ok {
			p.Specifications[k] = v
		}
	}
}

func fillString(dst *string, src string) {
	if *dst == "" && src != "" {
		*dst = src
	}
}

// PDFBlob is a downloaded drawing handed off to the blob store.
type PDFBlob struct {
	Data       []byte
	Filename   string
	PartNumber string
	TypeTag    string // "2d" or "3d"
}

// RunStats counts work done over a single crawl run.
type RunStats struct {
	ProductsScraped int `json:"products_scraped"`
	PDFsDownloaded  int `json:"pdfs_downloaded"`
}
