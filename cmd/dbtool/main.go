package main

import (
	"context"
	"database/sql"
	"delivery-dispatch-service/internal/adapters/csvsource"
	"delivery-dispatch-service/internal/adapters/repositories"
	"delivery-dispatch-service/internal/config"
	"delivery-dispatch-service/internal/platform/db"
	"delivery-dispatch-service/internal/platform/logging"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	configPath string
	dbDriver   string
	dbURL      string
	seedDir    string

	log = logging.New("dbtool")
)

var rootCmd = &cobra.Command{
	Use:   "dbtool",
	Short: "Manage the dispatch database",
	Long:  "Creates the package, location and distance tables and loads a CSV dataset into Postgres or SQLite.",
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the schema",
	RunE: func(cmd *cobra.Command, _ []string) error {
		conn, _, err := open()
		if err != nil {
			return err
		}
		defer conn.Close()

		log.Info().Msg("initializing database schema")
		if err := repositories.InitSchema(cmd.Context(), conn); err != nil {
			return err
		}
		log.Info().Msg("schema ready")
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Replace the stored dataset with the CSV files in --dir",
	RunE: func(cmd *cobra.Command, _ []string) error {
		conn, driver, err := open()
		if err != nil {
			return err
		}
		defer conn.Close()

		return initAndSeed(cmd.Context(), conn, driver, log)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.Get("CONFIG_PATH", ""), "Path to a YAML or JSON config file")
	rootCmd.PersistentFlags().StringVar(&dbDriver, "driver", "", "Database driver: sqlite or postgres (default from config)")
	rootCmd.PersistentFlags().StringVar(&dbURL, "url", "", "Database URL or SQLite path (default from config)")
	seedCmd.Flags().StringVar(&seedDir, "dir", "", "Directory holding packages.csv, locations.csv and distances.csv (default from config)")

	rootCmd.AddCommand(initCmd, seedCmd)
}

func main() {
	if err := config.LoadEnv(); err != nil {
		log.Warn().Err(err).Msg("reading .env failed (using environment variables)")
	}

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// open resolves the connection settings, letting flags override the config.
func open() (*sql.DB, string, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, "", err
	}

	driver, url := cfg.DB.Driver, cfg.DB.URL
	if dbDriver != "" {
		driver = dbDriver
	}
	if dbURL != "" {
		url = dbURL
	}
	if seedDir == "" {
		seedDir = cfg.Data.Dir
	}

	conn, err := db.Open(driver, url)
	if err != nil {
		return nil, "", err
	}
	return conn, driver, nil
}

func initAndSeed(ctx context.Context, conn *sql.DB, driver string, log zerolog.Logger) error {
	log.Info().Msg("initializing database schema")
	if err := repositories.InitSchema(ctx, conn); err != nil {
		return fmt.Errorf("schema initialization failed: %w", err)
	}

	log.Info().Str("dir", seedDir).Msg("seeding database")
	ds, err := csvsource.New(seedDir).LoadDataset(ctx)
	if err != nil {
		return fmt.Errorf("seeding failed: %w", err)
	}
	if err := repositories.NewSQLRepository(conn, driver, log).SaveDataset(ctx, ds); err != nil {
		return fmt.Errorf("seeding failed: %w", err)
	}
	log.Info().Int("packages", len(ds.Packages)).Int("locations", len(ds.Locations)).Msg("seeding complete")
	return nil
}
