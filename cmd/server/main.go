package main

import (
	"context"
	"database/sql"
	"delivery-dispatch-service/internal/adapters/cache"
	"delivery-dispatch-service/internal/adapters/csvsource"
	"delivery-dispatch-service/internal/adapters/repositories"
	"delivery-dispatch-service/internal/api"
	"delivery-dispatch-service/internal/config"
	"delivery-dispatch-service/internal/platform/db"
	"delivery-dispatch-service/internal/platform/logging"
	"delivery-dispatch-service/internal/platform/obs"
	"delivery-dispatch-service/internal/ports"
	"delivery-dispatch-service/internal/services"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
)

// main is the application composition root.
// It wires the SQL store and optional Redis plan cache behind ports, runs one
// dispatch for the day and serves reports about it.
func main() {
	log := logging.New("server")
	if err := run(log); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func run(log zerolog.Logger) error {
	if err := config.LoadEnv(); err != nil {
		log.Warn().Err(err).Msg("reading .env failed (using environment variables)")
	}

	cfg, err := config.Load(config.Get("CONFIG_PATH", ""))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := db.Open(cfg.DB.Driver, cfg.DB.URL)
	if err != nil {
		return err
	}
	defer conn.Close()

	repo := repositories.NewSQLRepository(conn, cfg.DB.Driver, log)

	// Initialize schema and seed the CSV dataset into an empty store for local runs.
	if err := initAndSeed(ctx, conn, repo, cfg.Data.Dir, log); err != nil {
		return err
	}

	var planCache ports.PlanCache
	if cfg.Redis.URL != "" {
		client, err := cache.Connect(ctx, cfg.Redis.URL)
		if err != nil {
			return err
		}
		defer client.Close()
		planCache = cache.NewRedisPlanCache(client, cache.DefaultPlanTTL, log)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := obs.MustRegisterMetrics(reg)

	req, err := cfg.DispatchRequest()
	if err != nil {
		return err
	}
	dispatch, err := services.RunDispatch(ctx, req, repo, repo, planCache, log, metrics)
	if err != nil {
		return err
	}
	log.Info().
		Str("run_id", dispatch.Result.RunID.String()).
		Uint64("seed", dispatch.Result.Seed).
		Bool("on_time", dispatch.Result.OnTime).
		Bool("from_cache", dispatch.FromCache).
		Float64("total_miles", dispatch.Result.TotalMiles).
		Msg("dispatch ready")

	router := api.NewRouter(dispatch, reg, log, nil)

	log.Info().Str("addr", ":"+cfg.HTTP.Port).Msg("server listening")
	srv := &http.Server{
		Addr:              ":" + cfg.HTTP.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func initAndSeed(ctx context.Context, conn *sql.DB, repo *repositories.SQLRepository, dataDir string, log zerolog.Logger) error {
	if err := repositories.InitSchema(ctx, conn); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}

	existing, err := repo.ListPackages(ctx)
	if err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}
	if len(existing) > 0 || dataDir == "" {
		return nil
	}

	ds, err := csvsource.New(dataDir).LoadDataset(ctx)
	if err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}
	if err := repo.SaveDataset(ctx, ds); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}

	log.Info().Str("dir", dataDir).Int("packages", len(ds.Packages)).Msg("seeded empty store from csv")
	return nil
}
