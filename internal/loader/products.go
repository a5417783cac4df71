package loader

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/KOTHKAI7/25071715-fleximart-data-architecture/internal/db"
	"github.com/KOTHKAI7/25071715-fleximart-data-architecture/internal/logging"
	"github.com/KOTHKAI7/25071715-fleximart-data-architecture/internal/model"
	"github.com/KOTHKAI7/25071715-fleximart-data-architecture/internal/report"
)

const insertProductSQL = `
INSERT INTO products (product_code, product_name, category, price, stock_quantity)
VALUES ($1, $2, $3, $4, $5)
RETURNING product_id`

// ProductKeys maps an external product code to products.product_id.
type ProductKeys map[string]int

// LoadProducts inserts products one at a time, commits once, and returns
// the external code to surrogate key map taken from the inserts. A code
// inserted twice maps to its last row.
func (l *Loader) LoadProducts(ctx context.Context, products []model.Product, sec *report.Section) (ProductKeys, error) {
	keys := make(ProductKeys, len(products))

	err := l.inTx(ctx, func(tx db.DB) error {
		for _, p := range products {
			var id int
			err := tx.QueryRow(ctx, insertProductSQL,
				p.ExternalID, p.Name, p.Category, p.Price, p.StockQuantity,
			).Scan(&id)
			if err != nil {
				return eris.Wrapf(err, "failed to insert product %s", p.ExternalID)
			}
			if _, dup := keys[p.ExternalID]; dup {
				logging.Debug().
					Str("external_id", p.ExternalID).
					Msg("Product code inserted more than once; keeping the last key")
			}
			keys[p.ExternalID] = id
		}
		return nil
	})
	if err != nil {
		return nil, eris.Wrap(err, "failed to load products")
	}

	sec.SetInt(report.Loaded, len(products))

	logging.Info().
		Int("loaded", len(products)).
		Msg("Products loaded")

	return keys, nil
}
