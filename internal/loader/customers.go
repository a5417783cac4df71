package loader

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"

	"github.com/KOTHKAI7/25071715-fleximart-data-architecture/internal/db"
	"github.com/KOTHKAI7/25071715-fleximart-data-architecture/internal/logging"
	"github.com/KOTHKAI7/25071715-fleximart-data-architecture/internal/model"
	"github.com/KOTHKAI7/25071715-fleximart-data-architecture/internal/report"
)

// An email conflict returns no row instead of raising, so the
// transaction stays usable.
const insertCustomerSQL = `
INSERT INTO customers (first_name, last_name, email, phone, city, registration_date)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (email) DO NOTHING
RETURNING customer_id`

const upsertXrefSQL = `
INSERT INTO customer_xref (external_id, customer_id)
VALUES ($1, $2)
ON CONFLICT (external_id) DO UPDATE
SET customer_id = EXCLUDED.customer_id, loaded_at = NOW()`

// LoadCustomers inserts customers one at a time and commits once. A
// customer whose email is already stored is skipped with a warning.
func (l *Loader) LoadCustomers(ctx context.Context, customers []model.Customer, sec *report.Section) error {
	var loaded, skipped int

	err := l.inTx(ctx, func(tx db.DB) error {
		for _, c := range customers {
			var id int
			err := tx.QueryRow(ctx, insertCustomerSQL,
				c.FirstName, c.LastName, c.Email, c.Phone, c.City, c.RegistrationDate,
			).Scan(&id)
			if errors.Is(err, pgx.ErrNoRows) {
				skipped++
				logging.Warn().
					Str("external_id", c.ExternalID).
					Str("email", c.Email).
					Msg("Skipping customer with duplicate email")
				continue
			}
			if err != nil {
				return eris.Wrapf(err, "failed to insert customer %s", c.ExternalID)
			}

			if l.opts.WriteXref {
				if _, err := tx.Exec(ctx, upsertXrefSQL, c.ExternalID, id); err != nil {
					return eris.Wrapf(err, "failed to record xref for customer %s", c.ExternalID)
				}
			}
			loaded++
		}
		return nil
	})
	if err != nil {
		return eris.Wrap(err, "failed to load customers")
	}

	sec.SetInt(SkippedDuplicateEmails, skipped)
	sec.SetInt(report.Loaded, loaded)

	logging.Info().
		Int("loaded", loaded).
		Int("skipped", skipped).
		Msg("Customers loaded")

	return nil
}
