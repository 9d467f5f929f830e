package main

import (
	"context"
	"delivery-dispatch-service/internal/adapters/csvsource"
	"delivery-dispatch-service/internal/config"
	"delivery-dispatch-service/internal/domain"
	"delivery-dispatch-service/internal/platform/logging"
	"delivery-dispatch-service/internal/services"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	configPath string
	dataDir    string
	seed       uint64
	atFlag     string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "planner",
	Short: "Dispatch the day's packages and report on the plan",
	Long:  "Loads packages, locations and distances from CSV files, assigns packages to trucks, optimizes each route and prints point-in-time reports.",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.Get("CONFIG_PATH", ""), "Path to a YAML or JSON config file")
	rootCmd.PersistentFlags().StringVarP(&dataDir, "data", "d", "", "Directory holding the CSV dataset (default from config)")
	rootCmd.PersistentFlags().Uint64Var(&seed, "seed", 0, "Optimizer seed (0 keeps the configured seed)")
	rootCmd.PersistentFlags().StringVar(&atFlag, "at", "EOD", "Report time of day, e.g. 10:25 or 9:35 AM")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log dispatch progress to stderr")
}

func main() {
	_ = config.LoadEnv()

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// dispatch runs one dispatch over the CSV dataset using the configured fleet.
func dispatch(ctx context.Context) (*services.DispatchRun, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if seed != 0 {
		cfg.Dispatch.Seed = seed
	}
	dir := dataDir
	if dir == "" {
		dir = cfg.Data.Dir
	}

	req, err := cfg.DispatchRequest()
	if err != nil {
		return nil, err
	}

	log := zerolog.Nop()
	if verbose {
		log = logging.NewWithWriter("planner", os.Stderr)
	}

	src := csvsource.New(dir)
	return services.RunDispatch(ctx, req, src, src, nil, log, nil)
}

func reportTime() (domain.TimeOfDay, error) {
	at, err := domain.ParseClock(atFlag)
	if err != nil {
		return 0, fmt.Errorf("--at: %w", err)
	}
	return at, nil
}
