package parser

import (
	"regexp"
	"strconv"
	"strings"
)

// FieldAlias maps one canonical field name onto the header spellings the
// catalog uses for it. Order in the alias table encodes precedence: the first
// canonical field with a matching alias wins.
type FieldAlias struct {
	Canonical string
	Aliases   []string
}

// DefaultFieldAliases covers the spec-table headers seen across the catalog.
// More specific fields come first so that e.g. "Thread Size" is not swallowed
// by the plain "size" alias.
func DefaultFieldAliases() []FieldAlias {
	return []FieldAlias{
		{Canonical: "thread_size", Aliases: []string{"thread size", "thread"}},
		{Canonical: "pkg_price", Aliases: []string{"price per package", "pkg price", "price"}},
		{Canonical: "pkg_qty", Aliases: []string{"package qty", "pkg qty", "per package", "quantity"}},
		{Canonical: "diameter_width", Aliases: []string{"diameter", "width", "dia."}},
		{Canonical: "height", Aliases: []string{"height"}},
		{Canonical: "length", Aliases: []string{"length"}},
		{Canonical: "size", Aliases: []string{"size"}},
		{Canonical: "material", Aliases: []string{"material"}},
	}
}

var (
	pricePattern    = regexp.MustCompile(`\$?([0-9,]{1,6})\.?([0-9]{0,2})`)
	quantityPattern = regexp.MustCompile(`([0-9]+)`)
)

// FieldNormalizer maps raw table headers onto canonical field names and
// parses the catalog's price and quantity spellings.
type FieldNormalizer struct {
	aliases []FieldAlias
}

func NewFieldNormalizer(aliases []FieldAlias) *FieldNormalizer {
	if len(aliases) == 0 {
		aliases = DefaultFieldAliases()
	}
	return &FieldNormalizer{aliases: aliases}
}

// NormalizeHeader resolves a raw header to a canonical field name. A header
// exactly equal to an alias wins outright; only then does matching fall back
// to bidirectional substring containment on the lowercased, trimmed header,
// so "Pkg. Qty." headers and terse aliases find each other from either side.
// Without the exact pass a bare "Size" header would be captured by the
// "thread size" alias through reverse containment.
func (n *FieldNormalizer) NormalizeHeader(raw string) (string, bool) {
	header := strings.ToLower(strings.TrimSpace(raw))
	if header == "" {
		return "", false
	}

	for _, fa := range n.aliases {
		for _, alias := range fa.Aliases {
			if strings.ToLower(alias) == header {
				return fa.Canonical, true
			}
		}
	}

	for _, fa := range n.aliases {
		for _, alias := range fa.Aliases {
			alias = strings.ToLower(alias)
			if strings.Contains(header, alias) || strings.Contains(alias, header) {
				return fa.Canonical, true
			}
		}
	}
	return "", false
}

// ParsePrice extracts a dollar amount, tolerating thousands separators and
// missing cents. Amounts of $100,000 or more are treated as misparses and
// rejected.
func (n *FieldNormalizer) ParsePrice(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}

	m := pricePattern.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}

	dollars := strings.ReplaceAll(m[1], ",", "")
	cents := m[2]
	if cents == "" {
		cents = "00"
	}

	price, err := strconv.ParseFloat(dollars+"."+cents, 64)
	if err != nil || price >= 100000 {
		return 0, false
	}
	return price, true
}

// ParseQuantity extracts the first digit run, ignoring thousands separators.
func (n *FieldNormalizer) ParseQuantity(s string) (int, bool) {
	if s == "" {
		return 0, false
	}

	m := quantityPattern.FindStringSubmatch(strings.ReplaceAll(s, ",", ""))
	if m == nil {
		return 0, false
	}

	qty, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return qty, true
}
