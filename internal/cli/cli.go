//-------------------------------------------------------------------------
//
// FlexiMart Data Pipeline
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package cli implements the command-line interface for fleximart-etl.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/KOTHKAI7/25071715-fleximart-data-architecture/internal/config"
	"github.com/KOTHKAI7/25071715-fleximart-data-architecture/internal/logging"
	"github.com/KOTHKAI7/25071715-fleximart-data-architecture/pkg/version"
)

var (
	// Global flags
	cfgFile             string
	inputDir            string
	dbHost              string
	dbPort              int
	dbUser              string
	dbPassword          string
	dbName              string
	warehouseName       string
	connection          string
	warehouseConnection string
	reportPath          string
	metricsTextfile     string
	logLevel            string

	// Global config
	cfg *config.Config

	rootCmd = &cobra.Command{
		Use:   "fleximart-etl",
		Short: "FlexiMart commerce ETL and warehouse loader",
		Long: `fleximart-etl reads the raw customer, product and sales extracts,
cleans them, loads a normalized PostgreSQL schema and derives a star-schema
warehouse from it.

Every run writes a data-quality report counting duplicates removed, values
imputed and rows skipped, so nothing is dropped silently.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "",
		"config file (default: ./fleximart-etl.yaml)")
	pf.StringVar(&inputDir, "input-dir", "",
		"directory holding the raw extracts")
	pf.StringVar(&dbHost, "host", "", "database host")
	pf.IntVar(&dbPort, "port", 0, "database port")
	pf.StringVar(&dbUser, "user", "", "database user")
	pf.StringVar(&dbPassword, "password", "", "database password")
	pf.StringVar(&dbName, "database", "", "normalized database name")
	pf.StringVar(&warehouseName, "warehouse-database", "",
		"warehouse database name (default: same as --database when unset in config)")
	pf.StringVar(&connection, "connection", "",
		"PostgreSQL connection string for the normalized database")
	pf.StringVar(&warehouseConnection, "warehouse-connection", "",
		"PostgreSQL connection string for the warehouse")
	pf.StringVar(&reportPath, "report", "",
		"data-quality report path")
	pf.StringVar(&metricsTextfile, "metrics-textfile", "",
		"write Prometheus metrics to this file")
	pf.StringVar(&logLevel, "log-level", "",
		"log level (debug, info, warn, error)")

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(loadCmd)
	rootCmd.AddCommand(warehouseCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(generateCmd)
}

func initConfig() error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return err
	}

	// Override with CLI flags
	if inputDir != "" {
		cfg.Input.Dir = inputDir
	}
	if dbHost != "" {
		cfg.Database.Host = dbHost
	}
	if dbPort > 0 {
		cfg.Database.Port = dbPort
	}
	if dbUser != "" {
		cfg.Database.User = dbUser
	}
	if dbPassword != "" {
		cfg.Database.Password = dbPassword
	}
	if dbName != "" {
		cfg.Database.Name = dbName
	}
	if warehouseName != "" {
		cfg.Database.WarehouseName = warehouseName
	}
	if connection != "" {
		cfg.Database.Connection = connection
	}
	if warehouseConnection != "" {
		cfg.Database.WarehouseConnection = warehouseConnection
	}
	if reportPath != "" {
		cfg.Report.Path = reportPath
	}
	if metricsTextfile != "" {
		cfg.Metrics.Textfile = metricsTextfile
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	// Reinitialize logger with config
	logging.Init(logging.Config{
		Level:  cfg.LogLevel,
		Pretty: true,
	})

	return nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Println(version.Info())
	},
}
