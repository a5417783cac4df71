package cleanse

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/KOTHKAI7/25071715-fleximart-data-architecture/internal/logging"
	"github.com/KOTHKAI7/25071715-fleximart-data-architecture/internal/model"
	"github.com/KOTHKAI7/25071715-fleximart-data-architecture/internal/normalize"
	"github.com/KOTHKAI7/25071715-fleximart-data-architecture/internal/report"
)

var two = decimal.NewFromInt(2)

// Products cleans the product extract. Products are not deduplicated.
// A missing, unparseable or negative price becomes the median of known
// prices in the same (title-cased) category, falling back to the median of
// all known prices, then to zero.
func (c *Cleaner) Products(table *model.RawTable, sec *report.Section) []model.Product {
	sec.SetInt(report.RawRecords, table.Len())

	var (
		missingPrices     int
		invalidPrices     int
		missingStock      int
		invalidStock      int
		missingCategories int
		missingNames      int
	)

	out := make([]model.Product, 0, table.Len())
	priced := make([]bool, 0, table.Len())
	byCategory := make(map[string][]decimal.Decimal)
	var all []decimal.Decimal

	for _, row := range rowsOf(table) {
		id, _ := row.Get("product_id")

		name, ok := row.Get("product_name")
		if !ok {
			missingNames++
			name = id
		}

		category := UncategorizedCategory
		if raw, ok := row.Get("category"); ok {
			category = normalize.TitleCase(raw)
		} else {
			missingCategories++
		}

		p := model.Product{
			ExternalID: id,
			Name:       name,
			Category:   category,
		}

		hasPrice := false
		if raw, ok := row.Get("price"); !ok {
			missingPrices++
		} else if price, ok := parseAmount(raw); !ok {
			invalidPrices++
		} else {
			p.Price = price
			hasPrice = true
			byCategory[category] = append(byCategory[category], price)
			all = append(all, price)
		}

		if raw, ok := row.Get("stock_quantity"); !ok {
			missingStock++
		} else if stock, ok := parseCount(raw); !ok {
			invalidStock++
		} else {
			p.StockQuantity = stock
		}

		out = append(out, p)
		priced = append(priced, hasPrice)
	}

	overall, hasOverall := Median(all)
	medians := make(map[string]decimal.Decimal, len(byCategory))
	for cat, prices := range byCategory {
		medians[cat], _ = Median(prices)
	}

	for i := range out {
		if priced[i] {
			continue
		}
		if m, ok := medians[out[i].Category]; ok {
			out[i].Price = m
		} else if hasOverall {
			out[i].Price = overall
		} else {
			logging.Warn().
				Str("product_id", out[i].ExternalID).
				Msg("No known prices to impute from; using zero")
			out[i].Price = decimal.Zero
		}
	}

	sec.SetInt(MissingPrices, missingPrices)
	sec.SetInt(InvalidPrices, invalidPrices)
	sec.SetInt(MissingStock, missingStock)
	sec.SetInt(InvalidStock, invalidStock)
	sec.SetInt(MissingCategories, missingCategories)
	sec.SetInt(MissingNames, missingNames)
	sec.SetInt(report.CleanedRecords, len(out))

	return out
}

// Median returns the median of values, averaging the two middle values of
// an even-length set. ok is false for an empty set.
func Median(values []decimal.Decimal) (decimal.Decimal, bool) {
	if len(values) == 0 {
		return decimal.Zero, false
	}
	sorted := make([]decimal.Decimal, len(values))
	copy(sorted, values)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].LessThan(sorted[j])
	})

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid], true
	}
	return sorted[mid-1].Add(sorted[mid]).Div(two), true
}
