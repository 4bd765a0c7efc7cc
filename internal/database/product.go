package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/partsbase/catalog-scraper/internal/models"
)

// UpsertProduct inserts a product or merges it into the existing row for the
// same part number. Merge semantics mirror the in-memory rule: a column that
// already holds a value is never overwritten, repeated crawls only fill gaps.
func (db *DB) UpsertProduct(ctx context.Context, p *models.Product) error {
	if p.PartNumber == "" {
		return fmt.Errorf("product has no part number")
	}

	var specs []byte
	if len(p.Specifications) > 0 {
		var err error
		specs, err = json.Marshal(p.Specifications)
		if err != nil {
			return fmt.Errorf("failed to marshal specifications: %w", err)
		}
	}

	query := `
		INSERT INTO products (
			part_number, name, image_url, product_url, category, search_term,
			subcategory, source_url, price, size, diameter_width, height,
			length, thread_size, material, pkg_qty, pkg_price, specifications,
			pdf_2d_file_id, has_2d_pdf, scraped_at, detailed_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12,
			$13, $14, $15, $16, $17, $18, $19, $20, $21, $22
		)
		ON CONFLICT (part_number) DO UPDATE SET
			name           = COALESCE(products.name, EXCLUDED.name),
			image_url      = COALESCE(products.image_url, EXCLUDED.image_url),
			product_url    = COALESCE(products.product_url, EXCLUDED.product_url),
			category       = COALESCE(products.category, EXCLUDED.category),
			search_term    = COALESCE(products.search_term, EXCLUDED.search_term),
			subcategory    = COALESCE(products.subcategory, EXCLUDED.subcategory),
			source_url     = COALESCE(products.source_url, EXCLUDED.source_url),
			price          = COALESCE(products.price, EXCLUDED.price),
			size           = COALESCE(products.size, EXCLUDED.size),
			diameter_width = COALESCE(products.diameter_width, EXCLUDED.diameter_width),
			height         = COALESCE(products.height, EXCLUDED.height),
			length         = COALESCE(products.length, EXCLUDED.length),
			thread_size    = COALESCE(products.thread_size, EXCLUDED.thread_size),
			material       = COALESCE(products.material, EXCLUDED.material),
			pkg_qty        = COALESCE(products.pkg_qty, EXCLUDED.pkg_qty),
			pkg_price      = COALESCE(products.pkg_price, EXCLUDED.pkg_price),
			specifications = COALESCE(EXCLUDED.specifications, '{}'::jsonb)
			                 || COALESCE(products.specifications, '{}'::jsonb),
			pdf_2d_file_id = COALESCE(products.pdf_2d_file_id, EXCLUDED.pdf_2d_file_id),
			has_2d_pdf     = products.has_2d_pdf OR EXCLUDED.has_2d_pdf,
			scraped_at     = COALESCE(products.scraped_at, EXCLUDED.scraped_at),
			detailed_at    = COALESCE(products.detailed_at, EXCLUDED.detailed_at),
			updated_at     = CURRENT_TIMESTAMP`

	_, err := db.pool.Exec(ctx, query,
		p.PartNumber,
		nullString(p.Name),
		nullString(p.ImageURL),
		nullString(p.ProductURL),
		nullString(p.Category),
		nullString(p.SearchTerm),
		nullString(p.Subcategory),
		nullString(p.SourceURL),
		p.Price,
		nullString(p.Size),
		nullString(p.DiameterWidth),
		nullString(p.Height),
		nullString(p.Length),
		nullString(p.ThreadSize),
		nullString(p.Material),
		p.PkgQty,
		p.PkgPrice,
		specs,
		nullString(p.PDF2DFileID),
		p.Has2DPDF,
		nullTime(p.ScrapedAt),
		nullTime(p.DetailedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert product: %w", err)
	}
	return nil
}

// Stats is the end-of-run snapshot of the store.
type Stats struct {
	TotalProducts     int64 `json:"total_products"`
	ProductsWith2DPDF int64 `json:"products_with_2d_pdf"`
	ProductsWith3DPDF int64 `json:"products_with_3d_pdf"`
	PDFFilesStored    int64 `json:"pdf_files_stored"`
}

func (db *DB) GetStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}

	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE has_2d_pdf),
			COUNT(*) FILTER (WHERE has_3d_pdf)
		FROM products`

	if err := db.pool.QueryRow(ctx, query).Scan(
		&stats.TotalProducts, &stats.ProductsWith2DPDF, &stats.ProductsWith3DPDF,
	); err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	if err := db.pool.QueryRow(ctx, `SELECT COUNT(*) FROM pdf_files`).Scan(
		&stats.PDFFilesStored,
	); err != nil {
		return nil, fmt.Errorf("failed to count pdf files: %w", err)
	}

	return stats, nil
}

// Empty strings and zero times are "unknown" in the domain model; store them
// as NULL so COALESCE-based merging works.
func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
