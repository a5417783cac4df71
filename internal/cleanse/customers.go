package cleanse

import (
	"fmt"
	"strings"

	"github.com/KOTHKAI7/25071715-fleximart-data-architecture/internal/model"
	"github.com/KOTHKAI7/25071715-fleximart-data-architecture/internal/normalize"
	"github.com/KOTHKAI7/25071715-fleximart-data-architecture/internal/report"
)

type customerKey struct {
	id       string
	email    string
	hasEmail bool
}

// Customers cleans the customer extract. Rows sharing (customer_id, email)
// keep the first occurrence; two missing emails compare equal.
func (c *Cleaner) Customers(table *model.RawTable, sec *report.Section) []model.Customer {
	sec.SetInt(report.RawRecords, table.Len())

	var (
		duplicates    int
		invalidPhones int
		invalidDates  int
		missingEmails int
		missingNames  int
	)

	seen := make(map[customerKey]struct{}, table.Len())
	out := make([]model.Customer, 0, table.Len())

	for _, row := range rowsOf(table) {
		id, _ := row.Get("customer_id")
		email, hasEmail := row.Get("email")

		key := customerKey{id: id, email: email, hasEmail: hasEmail}
		if _, dup := seen[key]; dup {
			duplicates++
			continue
		}
		seen[key] = struct{}{}

		first, okFirst := row.Get("first_name")
		last, okLast := row.Get("last_name")
		if !okFirst || !okLast {
			missingNames++
		}

		cust := model.Customer{
			ExternalID: id,
			FirstName:  first,
			LastName:   last,
			Email:      email,
		}

		if raw, ok := row.Get("phone"); ok {
			if phone, ok := c.phones.Normalize(raw); ok {
				cust.Phone = &phone
			} else {
				invalidPhones++
			}
		}

		if raw, ok := row.Get("city"); ok {
			city := normalize.TitleCase(raw)
			cust.City = &city
		}

		if raw, ok := row.Get("registration_date"); ok {
			if d, ok := normalize.ParseDate(raw); ok {
				cust.RegistrationDate = &d
			} else {
				invalidDates++
			}
		}

		if !hasEmail {
			missingEmails++
			cust.Email = PlaceholderEmail(first, last, id)
		}

		out = append(out, cust)
	}

	sec.SetInt(report.DuplicatesRemoved, duplicates)
	sec.SetInt(InvalidPhones, invalidPhones)
	sec.SetInt(InvalidRegistrationDates, invalidDates)
	sec.SetInt(MissingEmails, missingEmails)
	sec.SetInt(MissingNames, missingNames)
	sec.SetInt(report.CleanedRecords, len(out))

	return out
}

// PlaceholderEmail builds the deterministic stand-in address
// firstname.lastname@externalid.local, lower-cased with whitespace removed.
// Two customers with the same names and id produce the same address.
func PlaceholderEmail(firstName, lastName, externalID string) string {
	return fmt.Sprintf("%s.%s@%s.local",
		emailPart(firstName), emailPart(lastName), emailPart(externalID))
}

func emailPart(s string) string {
	s = strings.ToLower(strings.Join(strings.Fields(s), ""))
	if s == "" {
		return "unknown"
	}
	return s
}

func rowsOf(table *model.RawTable) []model.RawRecord {
	if table == nil {
		return nil
	}
	return table.Rows
}
