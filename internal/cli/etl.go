package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/KOTHKAI7/25071715-fleximart-data-architecture/internal/cleanse"
	"github.com/KOTHKAI7/25071715-fleximart-data-architecture/internal/config"
	"github.com/KOTHKAI7/25071715-fleximart-data-architecture/internal/db"
	"github.com/KOTHKAI7/25071715-fleximart-data-architecture/internal/logging"
	"github.com/KOTHKAI7/25071715-fleximart-data-architecture/internal/pipeline"
	"github.com/KOTHKAI7/25071715-fleximart-data-architecture/internal/source"
	"github.com/KOTHKAI7/25071715-fleximart-data-architecture/internal/warehouse"
)

var (
	loadStrategy   string
	warehouseForce bool
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Clean the raw extracts and write the data-quality report",
	Long: `Read and clean the raw extracts without touching any database.
Useful to inspect the data-quality report before loading.

Example:
  fleximart-etl clean --input-dir ./data --report report.txt`,
	RunE: runClean,
}

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Clean the extracts and load the normalized schema",
	Long: `Clean the raw extracts and load customers, products, orders and
order items into the normalized schema. Customers whose email already
exists are skipped; orders and items referencing unknown keys are skipped
and counted.

Identity strategies:
  email - re-correlate customers by email after insert (default); ids
          sharing an email collapse onto one customer
  xref  - record each customer's source id next to its key; customers
          skipped on a duplicate email leave their orders unresolved

Example:
  fleximart-etl load --input-dir ./data --database fleximart`,
	RunE: runLoad,
}

var warehouseCmd = &cobra.Command{
	Use:   "warehouse",
	Short: "Populate the star schema from the normalized schema",
	Long: `Derive dim_customer, dim_product, dim_date and fact_sales from the
normalized schema. A completed load is recorded; loading again requires
--force because facts are appended.

Example:
  fleximart-etl warehouse --warehouse-database fleximart_dw`,
	RunE: runWarehouse,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full pipeline: clean, load and warehouse",
	Long: `Clean the extracts, load the normalized schema and populate the
warehouse in one invocation, then write a single data-quality report
covering every stage.

Example:
  fleximart-etl run --input-dir ./data --metrics-textfile etl.prom`,
	RunE: runRun,
}

func init() {
	for _, cmd := range []*cobra.Command{loadCmd, runCmd} {
		cmd.Flags().StringVar(&loadStrategy, "identity-strategy", "",
			"customer identity strategy: email or xref")
	}
	for _, cmd := range []*cobra.Command{warehouseCmd, runCmd} {
		cmd.Flags().BoolVar(&warehouseForce, "force", false,
			"load facts again although a previous load is recorded")
	}
}

func applyETLFlags() {
	if loadStrategy != "" {
		cfg.Identity.Strategy = loadStrategy
	}
	if warehouseForce {
		cfg.Warehouse.Force = true
	}
}

// pipelineOptions maps configuration onto pipeline options.
func pipelineOptions(c *config.Config) pipeline.Options {
	return pipeline.Options{
		InputDir: c.Input.Dir,
		Files: source.Files{
			Customers: c.Input.CustomersFile,
			Products:  c.Input.ProductsFile,
			Sales:     c.Input.SalesFile,
		},
		Source: source.Options{Delimiter: c.Input.DelimiterRune()},
		Cleanse: cleanse.Options{
			CountryCode:   c.Cleanse.CountryCode,
			DefaultStatus: c.Cleanse.DefaultStatus,
		},
		Strategy:    c.Identity.Strategy,
		Force:       c.Warehouse.Force,
		ReportPath:  c.Report.Path,
		MetricsPath: c.Metrics.Textfile,
	}
}

// signalContext cancels on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sigChan:
			logging.Info().
				Str("signal", sig.String()).
				Msg("Received shutdown signal")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigChan)
	}()

	return ctx, cancel
}

// connections opens the normalized pool and, when the warehouse lives
// elsewhere, a second pool for it.
func connections(ctx context.Context, withWarehouse bool) (normalized, dw *pgxpool.Pool, closeAll func(), err error) {
	normalized, err = db.Connect(ctx, cfg.Database.ConnString())
	if err != nil {
		return nil, nil, nil, eris.Wrap(err, "failed to connect to database")
	}

	dw = normalized
	if withWarehouse && !cfg.Database.SharedWarehouse() {
		dw, err = db.Connect(ctx, cfg.Database.WarehouseConnString())
		if err != nil {
			normalized.Close()
			return nil, nil, nil, eris.Wrap(err, "failed to connect to warehouse")
		}
	}

	closeAll = func() {
		if dw != normalized {
			dw.Close()
		}
		normalized.Close()
	}
	return normalized, dw, closeAll, nil
}

func warehouseError(err error) error {
	if errors.Is(err, warehouse.ErrAlreadyLoaded) {
		return eris.Wrap(err, "use --force to load again")
	}
	return err
}

func runClean(cmd *cobra.Command, args []string) error {
	if err := cfg.ValidateClean(); err != nil {
		return err
	}

	p := pipeline.New(pipelineOptions(cfg))
	cleaned, err := p.Clean()
	if err != nil {
		return err
	}

	logging.Info().
		Int("customers", len(cleaned.Customers)).
		Int("products", len(cleaned.Products)).
		Int("sale_lines", len(cleaned.Sales)).
		Msg("Extracts cleaned")

	return p.Finish()
}

func runLoad(cmd *cobra.Command, args []string) error {
	applyETLFlags()
	if err := cfg.ValidateLoad(); err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	pool, _, closeAll, err := connections(ctx, false)
	if err != nil {
		return err
	}
	defer closeAll()

	p := pipeline.New(pipelineOptions(cfg))
	if err := p.Load(ctx, pool); err != nil {
		return err
	}
	return p.Finish()
}

func runWarehouse(cmd *cobra.Command, args []string) error {
	applyETLFlags()
	if err := cfg.ValidateWarehouse(); err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	normalized, dw, closeAll, err := connections(ctx, true)
	if err != nil {
		return err
	}
	defer closeAll()

	p := pipeline.New(pipelineOptions(cfg))
	if err := p.Warehouse(ctx, normalized, dw); err != nil {
		return warehouseError(err)
	}
	return p.Finish()
}

func runRun(cmd *cobra.Command, args []string) error {
	applyETLFlags()
	if err := cfg.ValidateLoad(); err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	normalized, dw, closeAll, err := connections(ctx, true)
	if err != nil {
		return err
	}
	defer closeAll()

	logging.Info().
		Str("input_dir", cfg.Input.Dir).
		Str("identity_strategy", cfg.Identity.Strategy).
		Bool("shared_warehouse", cfg.Database.SharedWarehouse()).
		Msg("Starting pipeline")

	p := pipeline.New(pipelineOptions(cfg))
	if err := p.Load(ctx, normalized); err != nil {
		return err
	}
	if err := p.Warehouse(ctx, normalized, dw); err != nil {
		return warehouseError(err)
	}
	return p.Finish()
}
