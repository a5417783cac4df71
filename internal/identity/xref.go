package identity

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/KOTHKAI7/25071715-fleximart-data-architecture/internal/db"
	"github.com/KOTHKAI7/25071715-fleximart-data-architecture/internal/logging"
	"github.com/KOTHKAI7/25071715-fleximart-data-architecture/internal/model"
)

// XrefResolver reads the customer_xref table the loader writes alongside
// each inserted customer. Customers whose insert was skipped have no row
// and stay unresolved.
type XrefResolver struct{}

// Name implements Resolver.
func (XrefResolver) Name() string { return StrategyXref }

// Resolve implements Resolver. Only codes present in customers are
// returned, so rows left by earlier runs do not leak in.
func (XrefResolver) Resolve(ctx context.Context, conn db.DB, customers []model.Customer) (Keys, error) {
	wanted := make(map[string]struct{}, len(customers))
	for _, c := range customers {
		wanted[c.ExternalID] = struct{}{}
	}

	rows, err := conn.Query(ctx, `SELECT external_id, customer_id FROM customer_xref`)
	if err != nil {
		return nil, eris.Wrap(err, "failed to query customer xref")
	}
	defer rows.Close()

	keys := make(Keys, len(wanted))
	for rows.Next() {
		var (
			ext string
			id  int
		)
		if err := rows.Scan(&ext, &id); err != nil {
			return nil, eris.Wrap(err, "failed to scan customer xref")
		}
		if _, ok := wanted[ext]; ok {
			keys[ext] = id
		}
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "failed to read customer xref")
	}

	logging.Debug().
		Int("external_ids", len(wanted)).
		Int("resolved", len(keys)).
		Msg("Resolved customers by xref")

	return keys, nil
}
