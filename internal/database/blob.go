package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/partsbase/catalog-scraper/internal/models"
)

// StorePDF persists a downloaded drawing and returns its identifier. The id
// is recorded back onto the product row by the caller; blob rows themselves
// are append-only.
func (db *DB) StorePDF(ctx context.Context, blob *models.PDFBlob) (string, error) {
	if len(blob.Data) == 0 {
		return "", fmt.Errorf("blob is empty")
	}
	if blob.PartNumber == "" {
		return "", fmt.Errorf("blob has no part number")
	}

	id := uuid.New()

	query := `
		INSERT INTO pdf_files (id, part_number, filename, pdf_type, data)
		VALUES ($1, $2, $3, $4, $5)`

	if _, err := db.pool.Exec(ctx, query,
		id, blob.PartNumber, blob.Filename, blob.TypeTag, blob.Data,
	); err != nil {
		return "", fmt.Errorf("failed to store pdf blob: %w", err)
	}

	return id.String(), nil
}
