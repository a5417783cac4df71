package datagen

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/KOTHKAI7/25071715-fleximart-data-architecture/internal/logging"
	"github.com/KOTHKAI7/25071715-fleximart-data-architecture/internal/source"
)

// Options configures extract generation.
type Options struct {
	Customers int
	Products  int
	Sales     int
	Seed      int64

	// DirtyRate scales the probability of every injected defect. 0
	// produces clean extracts.
	DirtyRate float64
}

// Extracts holds generated tables, header row first.
type Extracts struct {
	Customers [][]string
	Products  [][]string
	Sales     [][]string
}

var (
	registrationStart = time.Date(2022, time.January, 1, 0, 0, 0, 0, time.UTC)
	registrationEnd   = time.Date(2023, time.December, 31, 0, 0, 0, 0, time.UTC)
	salesStart        = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	salesEnd          = time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC)
)

// Layouts a source system might export dates in. Each one parses back to
// the same calendar date.
var messyDateLayouts = []string{"02/01/2006", "01-02-2006", "2006/01/02", "2006-1-2"}

// missingTokens are spellings of an absent value.
var missingTokens = []string{"", "NA", "NULL", "N/A", "null"}

var statuses = []string{"Completed", "Pending", "Cancelled"}

type generator struct {
	f    *Faker
	rate float64

	customerIDs []string
	productIDs  []string
	prices      []float64
}

// Generate produces the three extracts. The same Options always produce
// the same output.
func Generate(opts Options) *Extracts {
	g := &generator{
		f:    NewFakerWithSeed(uint64(opts.Seed)),
		rate: opts.DirtyRate,
	}
	return &Extracts{
		Customers: g.customers(opts.Customers),
		Products:  g.products(opts.Products),
		Sales:     g.sales(opts.Sales),
	}
}

func (g *generator) customers(n int) [][]string {
	rows := [][]string{slices.Clone(source.CustomerColumns)}
	progress := NewProgressReporter("customers", int64(n), progressInterval)

	for i := 1; i <= n; i++ {
		id := fmt.Sprintf("C%03d", i)
		first, last := g.f.FirstName(), g.f.LastName()

		email := g.f.Email(first, last)
		if g.f.Chance(g.rate / 2) {
			email = Choose(g.f, missingTokens)
		}

		row := []string{
			id,
			g.messyText(first),
			last,
			email,
			g.messyPhone(g.f.MobileNumber()),
			g.messyCase(g.f.City()),
			g.messyDate(g.f.Date(registrationStart, registrationEnd)),
		}
		rows = append(rows, row)
		if g.f.Chance(g.rate / 2) {
			rows = append(rows, slices.Clone(row))
		}

		g.customerIDs = append(g.customerIDs, id)
		progress.Update(1)
	}

	progress.Done()
	return rows
}

func (g *generator) products(n int) [][]string {
	rows := [][]string{slices.Clone(source.ProductColumns)}
	progress := NewProgressReporter("products", int64(n), progressInterval)

	for i := 1; i <= n; i++ {
		id := fmt.Sprintf("P%03d", i)
		price := g.f.Price(99, 90000)

		priceText := strconv.FormatFloat(price, 'f', 2, 64)
		if g.f.Chance(g.rate / 2) {
			priceText = Choose(g.f, missingTokens)
		}
		stock := strconv.Itoa(g.f.Int(0, 500))
		if g.f.Chance(g.rate / 3) {
			stock = Choose(g.f, missingTokens)
		}

		rows = append(rows, []string{
			id,
			g.messyText(g.f.ProductName()),
			g.messyCase(g.f.ProductCategory()),
			priceText,
			stock,
		})

		g.productIDs = append(g.productIDs, id)
		g.prices = append(g.prices, price)
		progress.Update(1)
	}

	progress.Done()
	return rows
}

func (g *generator) sales(n int) [][]string {
	header := append(slices.Clone(source.SalesColumns), "status")
	rows := [][]string{header}
	progress := NewProgressReporter("sales", int64(n), progressInterval)

	for i := 1; i <= n; i++ {
		customer := Choose(g.f, g.customerIDs)
		if g.f.Chance(g.rate / 4) {
			customer = Choose(g.f, missingTokens)
		}

		var product, unitPrice string
		if len(g.productIDs) > 0 {
			idx := g.f.Int(0, len(g.productIDs)-1)
			product = g.productIDs[idx]
			unitPrice = strconv.FormatFloat(g.prices[idx], 'f', 2, 64)
		}
		if g.f.Chance(g.rate / 4) {
			product = Choose(g.f, missingTokens)
		}
		if g.f.Chance(g.rate / 4) {
			unitPrice = Choose(g.f, missingTokens)
		}

		quantity := strconv.Itoa(g.f.Int(1, 5))
		if g.f.Chance(g.rate / 4) {
			quantity = Choose(g.f, missingTokens)
		}

		status := ChooseWeighted(g.f, statuses, []int{70, 20, 10})
		if g.f.Chance(g.rate / 3) {
			status = ""
		}

		row := []string{
			fmt.Sprintf("T%03d", i),
			customer,
			product,
			g.messyDate(g.f.Date(salesStart, salesEnd)),
			quantity,
			unitPrice,
			status,
		}
		rows = append(rows, row)
		if g.f.Chance(g.rate / 3) {
			rows = append(rows, slices.Clone(row))
		}
		progress.Update(1)
	}

	progress.Done()
	return rows
}

// messyPhone renders a national number in one of the formats seen in the
// wild, or drops it.
func (g *generator) messyPhone(p string) string {
	if !g.f.Chance(g.rate) {
		return p
	}
	return Choose(g.f, []string{
		"+91-" + p,
		"0" + p,
		"91" + p,
		"(" + p[:3] + ") " + p[3:6] + "-" + p[6:],
		p[:5] + " " + p[5:],
		"not available",
		Choose(g.f, missingTokens),
	})
}

func (g *generator) messyCase(s string) string {
	if !g.f.Chance(g.rate) {
		return s
	}
	return Choose(g.f, []string{strings.ToLower(s), strings.ToUpper(s), "  " + s + " "})
}

func (g *generator) messyText(s string) string {
	if !g.f.Chance(g.rate / 2) {
		return s
	}
	return " " + s + "  "
}

func (g *generator) messyDate(t time.Time) string {
	if !g.f.Chance(g.rate) {
		return t.Format(time.DateOnly)
	}
	if g.f.Chance(0.1) {
		return Choose(g.f, missingTokens)
	}
	return t.Format(Choose(g.f, messyDateLayouts))
}

// WriteDir writes the extracts into dir under the given file names.
func (e *Extracts) WriteDir(dir string, files source.Files, delimiter rune) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return eris.Wrapf(err, "failed to create output directory %s", dir)
	}

	for _, out := range []struct {
		name string
		rows [][]string
	}{
		{files.Customers, e.Customers},
		{files.Products, e.Products},
		{files.Sales, e.Sales},
	} {
		path := filepath.Join(dir, out.name)
		if err := writeCSV(path, out.rows, delimiter); err != nil {
			return err
		}
		logging.Info().
			Str("path", path).
			Int("rows", len(out.rows)-1).
			Msg("Wrote extract")
	}
	return nil
}

func writeCSV(path string, rows [][]string, delimiter rune) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "failed to create %s", path)
	}

	w := csv.NewWriter(f)
	if delimiter != 0 {
		w.Comma = delimiter
	}
	if err := w.WriteAll(rows); err != nil {
		f.Close()
		return eris.Wrapf(err, "failed to write %s", path)
	}
	if err := f.Close(); err != nil {
		return eris.Wrapf(err, "failed to close %s", path)
	}
	return nil
}
