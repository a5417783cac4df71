//-------------------------------------------------------------------------
//
// FlexiMart Data Pipeline
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package config handles configuration management for fleximart-etl.
// Configuration is loaded from config files and CLI flags (no environment variables).
// CLI flags take precedence over config file values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/spf13/viper"

	"github.com/KOTHKAI7/25071715-fleximart-data-architecture/internal/db"
	"github.com/KOTHKAI7/25071715-fleximart-data-architecture/internal/identity"
)

// Config holds all configuration for fleximart-etl.
type Config struct {
	// LogLevel controls logging verbosity (debug, info, warn, error).
	LogLevel string `mapstructure:"log_level"`

	// Database holds store connection settings.
	Database DatabaseConfig `mapstructure:"database"`

	// Input locates the raw extracts.
	Input InputConfig `mapstructure:"input"`

	// Cleanse tunes the entity cleaner.
	Cleanse CleanseConfig `mapstructure:"cleanse"`

	// Identity selects how customers are re-correlated after insert.
	Identity IdentityConfig `mapstructure:"identity"`

	// Init holds configuration for the init subcommand.
	Init InitConfig `mapstructure:"init"`

	// Warehouse holds configuration for the warehouse subcommand.
	Warehouse WarehouseConfig `mapstructure:"warehouse"`

	// Report controls the data-quality report file.
	Report ReportConfig `mapstructure:"report"`

	// Metrics controls the Prometheus textfile.
	Metrics MetricsConfig `mapstructure:"metrics"`

	// Generate holds configuration for the generate subcommand.
	Generate GenerateConfig `mapstructure:"generate"`
}

// DatabaseConfig holds connection settings for the normalized database and
// the warehouse database. A full connection string wins over the discrete
// fields.
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`

	// Name is the normalized database.
	Name string `mapstructure:"name"`

	// WarehouseName is the star-schema database; empty means Name.
	WarehouseName string `mapstructure:"warehouse_name"`

	SSLMode string `mapstructure:"sslmode"`

	// Connection overrides the discrete fields for the normalized database.
	Connection string `mapstructure:"connection"`

	// WarehouseConnection overrides the discrete fields for the warehouse.
	WarehouseConnection string `mapstructure:"warehouse_connection"`
}

// InputConfig locates the raw extracts.
type InputConfig struct {
	Dir           string `mapstructure:"dir"`
	CustomersFile string `mapstructure:"customers_file"`
	ProductsFile  string `mapstructure:"products_file"`
	SalesFile     string `mapstructure:"sales_file"`

	// Delimiter is a single character, or "tab".
	Delimiter string `mapstructure:"delimiter"`
}

// CleanseConfig tunes the entity cleaner.
type CleanseConfig struct {
	// CountryCode is prepended to bare 10-digit phone numbers.
	CountryCode string `mapstructure:"country_code"`

	// DefaultStatus fills sale lines without a status.
	DefaultStatus string `mapstructure:"default_status"`
}

// IdentityConfig selects the customer identity strategy.
type IdentityConfig struct {
	// Strategy is "email" or "xref".
	Strategy string `mapstructure:"strategy"`
}

// InitConfig holds configuration for schema initialization.
type InitConfig struct {
	// DropExisting drops existing schema before initialization.
	DropExisting bool `mapstructure:"drop_existing"`
}

// WarehouseConfig holds configuration for the warehouse load.
type WarehouseConfig struct {
	// Force loads facts again although a previous run is recorded.
	Force bool `mapstructure:"force"`
}

// ReportConfig controls the report file.
type ReportConfig struct {
	// Path of the text report; empty disables the file.
	Path string `mapstructure:"path"`
}

// MetricsConfig controls the Prometheus textfile.
type MetricsConfig struct {
	// Textfile is the .prom output path; empty disables it.
	Textfile string `mapstructure:"textfile"`
}

// GenerateConfig holds configuration for sample extract generation.
type GenerateConfig struct {
	Customers int   `mapstructure:"customers"`
	Products  int   `mapstructure:"products"`
	Sales     int   `mapstructure:"sales"`
	Seed      int64 `mapstructure:"seed"`

	// DirtyRate is the probability, per field, of injecting a defect.
	DirtyRate float64 `mapstructure:"dirty_rate"`

	// OutputDir receives the generated files.
	OutputDir string `mapstructure:"output_dir"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		Database: DatabaseConfig{
			Host:          "localhost",
			Port:          5432,
			User:          "postgres",
			Name:          "fleximart",
			WarehouseName: "fleximart_dw",
		},
		Input: InputConfig{
			Dir:           "data",
			CustomersFile: "customers_raw.csv",
			ProductsFile:  "products_raw.csv",
			SalesFile:     "sales_raw.csv",
			Delimiter:     ",",
		},
		Cleanse: CleanseConfig{
			CountryCode:   "91",
			DefaultStatus: "Pending",
		},
		Identity: IdentityConfig{
			Strategy: identity.DefaultStrategy,
		},
		Report: ReportConfig{
			Path: "data_quality_report.txt",
		},
		Generate: GenerateConfig{
			Customers: 25,
			Products:  20,
			Sales:     40,
			Seed:      1,
			DirtyRate: 0.15,
			OutputDir: "data",
		},
	}
}

// Load reads configuration from config files.
// Config file locations (in order of precedence):
// 1. Path specified by configFile parameter
// 2. ./fleximart-etl.yaml
// 3. ~/.config/fleximart-etl/fleximart-etl.yaml
func Load(configFile string) (*Config, error) {
	v := viper.New()

	v.SetConfigName("fleximart-etl")
	v.SetConfigType("yaml")

	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "fleximart-etl"))
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	}

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	return cfg, nil
}

// ConnString returns the normalized database connection string.
func (d DatabaseConfig) ConnString() string {
	if d.Connection != "" {
		return d.Connection
	}
	return d.params(d.Name).ConnString()
}

// WarehouseConnString returns the warehouse connection string.
func (d DatabaseConfig) WarehouseConnString() string {
	if d.WarehouseConnection != "" {
		return d.WarehouseConnection
	}
	if d.WarehouseName == "" {
		return d.ConnString()
	}
	return d.params(d.WarehouseName).ConnString()
}

// SharedWarehouse reports whether both schemas live in one database.
func (d DatabaseConfig) SharedWarehouse() bool {
	return d.WarehouseConnString() == d.ConnString()
}

func (d DatabaseConfig) params(name string) db.Params {
	return db.Params{
		Host:     d.Host,
		Port:     d.Port,
		User:     d.User,
		Password: d.Password,
		Database: name,
		SSLMode:  d.SSLMode,
	}
}

// DelimiterRune returns the configured field delimiter.
func (i InputConfig) DelimiterRune() rune {
	switch strings.ToLower(i.Delimiter) {
	case "", ",":
		return ','
	case "tab", `\t`:
		return '\t'
	}
	r, _ := utf8.DecodeRuneInString(i.Delimiter)
	return r
}

// Validate checks settings shared by every command.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be one of debug, info, warn, error")
	}
	return nil
}

// ValidateDatabase checks configuration required to reach the store.
func (c *Config) ValidateDatabase() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Database.Connection == "" && c.Database.Name == "" {
		return fmt.Errorf("database name or connection string is required")
	}
	if c.Database.Port < 0 || c.Database.Port > 65535 {
		return fmt.Errorf("database port must be between 0 and 65535")
	}
	return nil
}

// ValidateClean checks configuration required to read and clean extracts.
func (c *Config) ValidateClean() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Input.Dir == "" {
		return fmt.Errorf("input directory is required")
	}
	if c.Input.CustomersFile == "" || c.Input.ProductsFile == "" || c.Input.SalesFile == "" {
		return fmt.Errorf("customers, products and sales file names are required")
	}
	d := strings.ToLower(c.Input.Delimiter)
	if d != "tab" && d != `\t` && utf8.RuneCountInString(c.Input.Delimiter) > 1 {
		return fmt.Errorf("delimiter must be a single character or 'tab'")
	}
	cc := strings.TrimPrefix(c.Cleanse.CountryCode, "+")
	if cc == "" || strings.Trim(cc, "0123456789") != "" || len(cc) > 3 {
		return fmt.Errorf("country_code must be 1 to 3 digits")
	}
	return nil
}

// ValidateLoad checks configuration required for the load command.
func (c *Config) ValidateLoad() error {
	if err := c.ValidateClean(); err != nil {
		return err
	}
	if err := c.ValidateDatabase(); err != nil {
		return err
	}
	if !slices.Contains(identity.Strategies(), c.Identity.Strategy) {
		return fmt.Errorf("identity strategy must be one of %v", identity.Strategies())
	}
	return nil
}

// ValidateWarehouse checks configuration required for the warehouse command.
func (c *Config) ValidateWarehouse() error {
	return c.ValidateDatabase()
}

// ValidateGenerate checks configuration required for the generate command.
func (c *Config) ValidateGenerate() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Generate.Customers < 1 || c.Generate.Products < 1 || c.Generate.Sales < 1 {
		return fmt.Errorf("customers, products and sales counts must be at least 1")
	}
	if c.Generate.DirtyRate < 0 || c.Generate.DirtyRate > 1 {
		return fmt.Errorf("dirty_rate must be between 0 and 1")
	}
	if c.Generate.OutputDir == "" {
		return fmt.Errorf("output directory is required")
	}
	return nil
}
