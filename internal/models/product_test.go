package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMergeFillsOnlyEmptyFields(t *testing.T) {
	price := 9.99
	existing := &Product{
		PartNumber: "91251A144",
		Name:       "Socket Head Screw",
		ImageURL:   "https://catalog.example.com/img/91251A144.png",
	}
	later := &Product{
		PartNumber: "91251A144",
		Name:       "A different name that must not win",
		ProductURL: "https://catalog.example.com/91251A144",
		Price:      &price,
	}

	existing.Merge(later)

	assert.Equal(t, "Socket Head Screw", existing.Name)
	assert.Equal(t, "https://catalog.example.com/img/91251A144.png", existing.ImageURL)
	assert.Equal(t, "https://catalog.example.com/91251A144", existing.ProductURL)
	assert.Equal(t, &price, existing.Price)
}

func TestMergeIsIdempotent(t *testing.T) {
	qty := 100
	a := &Product{PartNumber: "60205K53", Name: "Hex Nut", PkgQty: &qty}
	b := &Product{PartNumber: "60205K53", Name: "Hex Nut"}

	a.Merge(b)
	snapshot := *a
	a.Merge(b)

	assert.Equal(t, snapshot, *a)
}

func TestMergeIgnoresDifferentPartNumber(t *testing.T) {
	a := &Product{PartNumber: "60205K53"}
	b := &Product{PartNumber: "91251A144", Name: "Other part"}

	a.Merge(b)

	assert.Empty(t, a.Name)
}

func TestMergeSpecifications(t *testing.T) {
	a := &Product{
		PartNumber:     "60205K53",
		Specifications: map[string]string{"Finish": "Zinc Plated"},
	}
	b := &Product{
		PartNumber: "60205K53",
		Specifications: map[string]string{
			"Finish":   "must not overwrite",
			"Hardness": "Grade 8",
		},
	}

	a.Merge(b)

	assert.Equal(t, "Zinc Plated", a.Specifications["Finish"])
	assert.Equal(t, "Grade 8", a.Specifications["Hardness"])
}

func TestNewProductStampsScrapedAt(t *testing.T) {
	before := time.Now().UTC()
	p := NewProduct("91251A144")

	assert.Equal(t, "91251A144", p.PartNumber)
	assert.False(t, p.ScrapedAt.Before(before.Add(-time.Second)))
}
