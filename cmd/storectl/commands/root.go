package commands

import (
	"fmt"
	"os"

	"storefront/internal/config"
	"storefront/internal/repos"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	dbDSN      string
	jsonOutput bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "storectl",
	Short: "Storefront operations CLI",
	Long: `storectl runs maintenance tasks against the storefront database.

Commands:
  sweep      - Cancel pending orders that were never paid
  restock    - Book an inbound stock movement for a product
  stock-log  - Print a product's stock movements`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbDSN, "db", "", "Database DSN (defaults to DB_DSN / config file)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
}

func openDB() (*sqlx.DB, config.Config, error) {
	cfg := config.Load()
	if dbDSN != "" {
		cfg.DBDSN = dbDSN
	}
	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		return nil, cfg, fmt.Errorf("open database: %w", err)
	}
	return db, cfg, nil
}
