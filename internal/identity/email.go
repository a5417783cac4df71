package identity

import (
	"context"
	"slices"

	"github.com/rotisserie/eris"

	"github.com/KOTHKAI7/25071715-fleximart-data-architecture/internal/db"
	"github.com/KOTHKAI7/25071715-fleximart-data-architecture/internal/logging"
	"github.com/KOTHKAI7/25071715-fleximart-data-architecture/internal/model"
)

// EmailResolver correlates through the persisted email address: external
// code to email from the cleaned set, then email to key from the store.
//
// Two external codes that end up with the same email collapse onto one
// surrogate key. Collisions reports them; nothing prevents them.
type EmailResolver struct{}

// Name implements Resolver.
func (EmailResolver) Name() string { return StrategyEmail }

// Resolve implements Resolver.
func (EmailResolver) Resolve(ctx context.Context, conn db.DB, customers []model.Customer) (Keys, error) {
	emails := ExternalEmails(customers)

	for email, ids := range Collisions(emails) {
		logging.Warn().
			Str("email", email).
			Strs("external_ids", ids).
			Msg("External customer ids share an email and will resolve to one customer")
	}

	byEmail, err := EmailKeys(ctx, conn)
	if err != nil {
		return nil, err
	}

	keys := Compose(emails, byEmail)
	logging.Debug().
		Int("external_ids", len(emails)).
		Int("resolved", len(keys)).
		Msg("Resolved customers by email")

	return keys, nil
}

// ExternalEmails maps each external customer code to its cleaned email. An
// external code seen with several emails keeps the last one.
func ExternalEmails(customers []model.Customer) map[string]string {
	out := make(map[string]string, len(customers))
	for _, c := range customers {
		if prev, ok := out[c.ExternalID]; ok && prev != c.Email {
			logging.Debug().
				Str("external_id", c.ExternalID).
				Str("previous_email", prev).
				Str("email", c.Email).
				Msg("External id carries several emails; keeping the last")
		}
		out[c.ExternalID] = c.Email
	}
	return out
}

// EmailKeys reads email to customer_id for every stored customer.
func EmailKeys(ctx context.Context, conn db.DB) (map[string]int, error) {
	rows, err := conn.Query(ctx, `SELECT customer_id, email FROM customers`)
	if err != nil {
		return nil, eris.Wrap(err, "failed to query customer emails")
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var (
			id    int
			email string
		)
		if err := rows.Scan(&id, &email); err != nil {
			return nil, eris.Wrap(err, "failed to scan customer email")
		}
		out[email] = id
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "failed to read customer emails")
	}
	return out, nil
}

// Compose joins external code to email with email to key. External codes
// whose email is not stored are left out.
func Compose(externalToEmail map[string]string, emailToKey map[string]int) Keys {
	out := make(Keys, len(externalToEmail))
	for ext, email := range externalToEmail {
		if key, ok := emailToKey[email]; ok {
			out[ext] = key
		}
	}
	return out
}

// Collisions returns, per email, the sorted external codes sharing it,
// for every email used by more than one code.
func Collisions(externalToEmail map[string]string) map[string][]string {
	byEmail := make(map[string][]string)
	for ext, email := range externalToEmail {
		byEmail[email] = append(byEmail[email], ext)
	}

	out := make(map[string][]string)
	for email, ids := range byEmail {
		if len(ids) > 1 {
			slices.Sort(ids)
			out[email] = ids
		}
	}
	return out
}
