package cli

import (
	"context"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/KOTHKAI7/25071715-fleximart-data-architecture/internal/db"
	"github.com/KOTHKAI7/25071715-fleximart-data-architecture/internal/logging"
)

var initDropExisting bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the normalized and warehouse schemas",
	Long: `Create the normalized schema (customers, products, orders,
order_items) and the star schema (dim_customer, dim_product, dim_date,
fact_sales). Both databases must already exist; when no warehouse database
is configured both schemas share one database.

Example:
  fleximart-etl init --database fleximart --warehouse-database fleximart_dw
  fleximart-etl init --connection "postgres://..." --drop-existing`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initDropExisting, "drop-existing", false,
		"drop existing schemas and run metadata before creating them")
}

func runInit(cmd *cobra.Command, args []string) error {
	// Override config with CLI flags
	if initDropExisting {
		cfg.Init.DropExisting = true
	}

	// Validate configuration
	if err := cfg.ValidateDatabase(); err != nil {
		return err
	}

	ctx := context.Background()

	logging.Info().
		Bool("drop_existing", cfg.Init.DropExisting).
		Bool("shared_warehouse", cfg.Database.SharedWarehouse()).
		Msg("Initializing schemas")

	if err := initSchema(ctx, cfg.Database.ConnString(),
		db.DropNormalizedSchema, db.CreateNormalizedSchema); err != nil {
		return eris.Wrap(err, "failed to initialize normalized schema")
	}

	if err := initSchema(ctx, cfg.Database.WarehouseConnString(),
		db.DropWarehouseSchema, db.CreateWarehouseSchema); err != nil {
		return eris.Wrap(err, "failed to initialize warehouse schema")
	}

	logging.Info().Msg("Schema initialization complete")
	return nil
}

type schemaFunc func(ctx context.Context, conn db.DB) error

// initSchema runs drop (when requested) and create on one database.
func initSchema(ctx context.Context, connString string, drop, create schemaFunc) error {
	conn, err := db.ConnectSingle(ctx, connString)
	if err != nil {
		return eris.Wrap(err, "failed to connect to database")
	}
	defer conn.Close(ctx)

	if cfg.Init.DropExisting {
		logging.Info().Msg("Dropping existing schema")
		if err := drop(ctx, conn); err != nil {
			return err
		}
		if err := db.DropMetadata(ctx, conn); err != nil {
			logging.Debug().Err(err).Msg("No metadata table to drop")
		}
	}

	return create(ctx, conn)
}
