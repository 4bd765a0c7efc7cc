package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeHeader(t *testing.T) {
	n := NewFieldNormalizer(nil)

	tests := []struct {
		name     string
		header   string
		expected string
		matched  bool
	}{
		{name: "exact size alias", header: "Size", expected: "size", matched: true},
		{name: "exact beats reverse containment", header: "size", expected: "size", matched: true},
		{name: "thread size wins over size", header: "Thread Size", expected: "thread_size", matched: true},
		{name: "bare thread", header: "Thread", expected: "thread_size", matched: true},
		{name: "thread size with suffix", header: "Thread Size, mm", expected: "thread_size", matched: true},
		{name: "package qty with punctuation", header: "Pkg Qty.", expected: "pkg_qty", matched: true},
		{name: "price per package", header: "Price per Package", expected: "pkg_price", matched: true},
		{name: "bare price", header: "Price", expected: "pkg_price", matched: true},
		{name: "diameter", header: "Diameter", expected: "diameter_width", matched: true},
		{name: "alias contains header", header: "Qty", expected: "pkg_qty", matched: true},
		{name: "unknown header", header: "Rockwell Hardness", matched: false},
		{name: "empty header", header: "", matched: false},
		{name: "whitespace only", header: "   ", matched: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			field, ok := n.NormalizeHeader(tt.header)
			assert.Equal(t, tt.matched, ok)
			if tt.matched {
				assert.Equal(t, tt.expected, field)
			}
		})
	}
}

func TestParsePrice(t *testing.T) {
	n := NewFieldNormalizer(nil)

	tests := []struct {
		name     string
		input    string
		expected float64
		ok       bool
	}{
		{name: "dollars and cents with separator", input: "$1,234.56", expected: 1234.56, ok: true},
		{name: "whole dollars", input: "$150", expected: 150.0, ok: true},
		{name: "no dollar sign", input: "12.50", expected: 12.5, ok: true},
		{name: "embedded in text", input: "Price: $9.99 per pack", expected: 9.99, ok: true},
		{name: "implausibly large", input: "$999999.00", ok: false},
		{name: "no digits", input: "call for quote", ok: false},
		{name: "empty", input: "", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			price, ok := n.ParsePrice(tt.input)
			require.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.InDelta(t, tt.expected, price, 0.001)
			}
		})
	}
}

func TestParseQuantity(t *testing.T) {
	n := NewFieldNormalizer(nil)

	tests := []struct {
		name     string
		input    string
		expected int
		ok       bool
	}{
		{name: "pack with thousands separator", input: "Pack of 1,000", expected: 1000, ok: true},
		{name: "plain number", input: "50", expected: 50, ok: true},
		{name: "trailing text", input: "25 per box", expected: 25, ok: true},
		{name: "no digits", input: "each", ok: false},
		{name: "empty", input: "", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			qty, ok := n.ParseQuantity(tt.input)
			require.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.expected, qty)
			}
		})
	}
}

func TestAliasOrderEncodesPrecedence(t *testing.T) {
	n := NewFieldNormalizer([]FieldAlias{
		{Canonical: "first", Aliases: []string{"width"}},
		{Canonical: "second", Aliases: []string{"width"}},
	})

	field, ok := n.NormalizeHeader("Width")
	require.True(t, ok)
	assert.Equal(t, "first", field)
}
