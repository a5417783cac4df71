//-------------------------------------------------------------------------
//
// FlexiMart Data Pipeline
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package pipeline sequences the ETL stages: read and clean the raw
// extracts, load the normalized schema, derive the warehouse, and publish
// the data-quality report.
package pipeline

import (
	"context"
	"time"

	"github.com/KOTHKAI7/25071715-fleximart-data-architecture/internal/cleanse"
	"github.com/KOTHKAI7/25071715-fleximart-data-architecture/internal/db"
	"github.com/KOTHKAI7/25071715-fleximart-data-architecture/internal/identity"
	"github.com/KOTHKAI7/25071715-fleximart-data-architecture/internal/loader"
	"github.com/KOTHKAI7/25071715-fleximart-data-architecture/internal/logging"
	"github.com/KOTHKAI7/25071715-fleximart-data-architecture/internal/metrics"
	"github.com/KOTHKAI7/25071715-fleximart-data-architecture/internal/model"
	"github.com/KOTHKAI7/25071715-fleximart-data-architecture/internal/report"
	"github.com/KOTHKAI7/25071715-fleximart-data-architecture/internal/source"
	"github.com/KOTHKAI7/25071715-fleximart-data-architecture/internal/warehouse"
)

// Stage names used in metadata and metrics.
const (
	StageClean     = "clean"
	StageLoad      = "load"
	StageWarehouse = warehouse.Stage
)

// Options configures a Pipeline.
type Options struct {
	// InputDir holds the three raw extract files.
	InputDir string

	// Files names the extract files inside InputDir.
	Files source.Files

	// Source configures delimited-file parsing.
	Source source.Options

	// Cleanse configures the entity cleaner.
	Cleanse cleanse.Options

	// Strategy selects the identity resolver (xref or email).
	Strategy string

	// Force allows a repeated warehouse load.
	Force bool

	// ReportPath is where the text report is written; empty skips it.
	ReportPath string

	// MetricsPath is where the Prometheus textfile is written; empty
	// skips it.
	MetricsPath string

	// Now supplies the fallback order date. Defaults to time.Now.
	Now func() time.Time
}

// Pipeline runs the stages and accumulates one report across them.
type Pipeline struct {
	opts    Options
	report  *report.Report
	metrics *metrics.Registry
	cleaned *model.Cleaned
}

// New creates a Pipeline.
func New(opts Options) *Pipeline {
	if opts.Files == (source.Files{}) {
		opts.Files = source.DefaultFiles()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Pipeline{
		opts:    opts,
		report:  report.New(),
		metrics: metrics.NewRegistry(),
	}
}

// Report returns the accumulated data-quality report.
func (p *Pipeline) Report() *report.Report {
	return p.report
}

// Clean reads and cleans the raw extracts. The result is kept so later
// stages of the same run reuse it.
func (p *Pipeline) Clean() (*model.Cleaned, error) {
	if p.cleaned != nil {
		return p.cleaned, nil
	}

	start := time.Now()
	ex, err := source.ReadDir(p.opts.InputDir, p.opts.Files, p.opts.Source)
	if err != nil {
		return nil, err
	}

	p.cleaned = cleanse.New(p.opts.Cleanse).Clean(ex, p.report)
	p.observe(StageClean, start)
	return p.cleaned, nil
}

// Load cleans the extracts if needed and loads the normalized schema.
func (p *Pipeline) Load(ctx context.Context, conn db.DB) error {
	cleaned, err := p.Clean()
	if err != nil {
		return err
	}
	return p.LoadCleaned(ctx, conn, cleaned)
}

// LoadCleaned loads already cleaned records: customers, then identity
// resolution, then products, then orders with their items. Each phase
// commits on its own.
func (p *Pipeline) LoadCleaned(ctx context.Context, conn db.DB, cleaned *model.Cleaned) error {
	start := time.Now()

	resolver, err := identity.New(p.opts.Strategy)
	if err != nil {
		return err
	}
	ld := loader.New(conn, loader.Options{
		WriteXref: resolver.Name() == identity.StrategyXref,
	})

	if err := ld.LoadCustomers(ctx, cleaned.Customers, p.report.Section(report.Customers)); err != nil {
		return err
	}

	customerKeys, err := resolver.Resolve(ctx, conn, cleaned.Customers)
	if err != nil {
		return err
	}

	productKeys, err := ld.LoadProducts(ctx, cleaned.Products, p.report.Section(report.Products))
	if err != nil {
		return err
	}

	orders := loader.GroupOrders(cleaned.Sales, p.opts.Now())
	err = ld.LoadOrders(ctx, orders, customerKeys, productKeys, p.report.Section(report.Sales))
	if err != nil {
		return err
	}

	if err := db.SaveRun(ctx, conn, StageLoad, db.NewRunID()); err != nil {
		return err
	}

	logging.Info().
		Str("strategy", resolver.Name()).
		Int("orders", len(orders)).
		Msg("Normalized schema loaded")

	p.observe(StageLoad, start)
	return nil
}

// Warehouse derives the star schema from source into target.
func (p *Pipeline) Warehouse(ctx context.Context, source, target db.DB) error {
	start := time.Now()

	m := warehouse.New(source, target)
	_, err := m.Run(ctx, warehouse.Options{Force: p.opts.Force}, p.report.Section(report.Warehouse))
	if err != nil {
		return err
	}

	p.observe(StageWarehouse, start)
	return nil
}

// Finish logs the report and writes the report and metrics files when
// configured.
func (p *Pipeline) Finish() error {
	p.report.Log()

	if p.opts.ReportPath != "" {
		if err := p.report.WriteFile(p.opts.ReportPath); err != nil {
			return err
		}
	}

	if p.opts.MetricsPath != "" {
		p.metrics.ObserveReport(p.report)
		if err := p.metrics.WriteTextfile(p.opts.MetricsPath); err != nil {
			return err
		}
	}

	return nil
}

func (p *Pipeline) observe(stage string, start time.Time) {
	now := time.Now()
	p.metrics.ObserveStage(stage, now.Sub(start), now)
	logging.Debug().
		Str("stage", stage).
		Dur("took", now.Sub(start)).
		Msg("Stage complete")
}
