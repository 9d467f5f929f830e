package config

import (
	"delivery-dispatch-service/internal/domain"
	"delivery-dispatch-service/internal/services"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix marks environment overrides. Nested keys use a double
// underscore: WGUPS_DISPATCH__SEED=42 sets dispatch.seed.
const EnvPrefix = "WGUPS_"

type Config struct {
	Dispatch    DispatchConfig           `json:"dispatch"`
	Fleet       FleetConfig              `json:"fleet"`
	Planner     PlannerConfig            `json:"planner"`
	Corrections map[string]AddressConfig `json:"corrections" validate:"dive"`
	Data        DataConfig               `json:"data"`
	DB          DBConfig                 `json:"db"`
	Redis       RedisConfig              `json:"redis"`
	HTTP        HTTPConfig               `json:"http"`
}

type DispatchConfig struct {
	Restarts       int    `json:"restarts" validate:"gte=1"`
	RepairRestarts int    `json:"repair_restarts" validate:"gte=1"`
	Seed           uint64 `json:"seed"`
	Parallel       bool   `json:"parallel"`
}

type FleetConfig struct {
	Capacity   int      `json:"capacity" validate:"gte=1"`
	SpeedMPH   float64  `json:"speed_mph" validate:"gt=0"`
	Departures []string `json:"departures" validate:"min=1,dive,required"`
	Drivers    []string `json:"drivers"`
	// ReturnTruck drives back to the depot and hands off to WaitingTruck (0 disables).
	ReturnTruck  int `json:"return_truck" validate:"gte=0"`
	WaitingTruck int `json:"waiting_truck" validate:"gte=0"`
}

type PlannerConfig struct {
	DelayCutoffs []string `json:"delay_cutoffs" validate:"dive,required"`
}

type AddressConfig struct {
	Street string `json:"street" validate:"required"`
	City   string `json:"city"`
	State  string `json:"state"`
	Zip    string `json:"zip" validate:"required"`
}

type DataConfig struct {
	Dir string `json:"dir"`
}

type DBConfig struct {
	Driver string `json:"driver" validate:"oneof=sqlite postgres"`
	URL    string `json:"url"`
}

type RedisConfig struct {
	URL string `json:"url"`
}

type HTTPConfig struct {
	Port string `json:"port" validate:"required"`
}

func defaults() map[string]any {
	return map[string]any{
		"dispatch.restarts":        services.DefaultRestarts,
		"dispatch.repair_restarts": services.DefaultRepairRestarts,
		"dispatch.seed":            0,
		"dispatch.parallel":        true,
		"fleet.capacity":           domain.DefaultCapacity,
		"fleet.speed_mph":          domain.DefaultSpeedMPH,
		"fleet.departures":         []string{"08:00", "09:05", "10:20"},
		"fleet.drivers":            []string{"Driver 1", "Driver 2", "Driver 1"},
		"fleet.return_truck":       1,
		"fleet.waiting_truck":      3,
		"planner.delay_cutoffs":    []string{"09:00", "10:20"},
		"data.dir":                 "data",
		"db.driver":                "sqlite",
		"db.url":                   "data/app.db",
		"http.port":                "8080",
	}
}

// Get returns the environment value for key or fallback when it is unset.
func Get(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// LoadEnv reads .env into the process environment. A missing file is not an error.
func LoadEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load env: %w", err)
	}
	return nil
}

// Load layers defaults, the optional YAML or JSON file at path, and
// WGUPS_ environment overrides, then validates the result.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	for key, v := range defaults() {
		if err := k.Set(key, v); err != nil {
			return nil, fmt.Errorf("load config: default %s: %w", key, err)
		}
	}

	if path != "" {
		var parser koanf.Parser
		switch ext := strings.ToLower(filepath.Ext(path)); ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		default:
			return nil, fmt.Errorf("load config: unsupported config format: %s", ext)
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, fmt.Errorf("load config: %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("load config: env: %w", err)
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, fmt.Errorf("load config: unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	n := len(c.Fleet.Departures)
	if c.Fleet.ReturnTruck > n || c.Fleet.WaitingTruck > n {
		return fmt.Errorf("validate config: hand-off trucks %d->%d outside fleet of %d", c.Fleet.ReturnTruck, c.Fleet.WaitingTruck, n)
	}
	if c.Fleet.WaitingTruck != 0 && c.Fleet.WaitingTruck == c.Fleet.ReturnTruck {
		return fmt.Errorf("validate config: truck %d cannot hand off to itself", c.Fleet.ReturnTruck)
	}
	if c.Fleet.ReturnTruck != 0 && c.Fleet.WaitingTruck != 0 && c.Fleet.ReturnTruck > c.Fleet.WaitingTruck {
		return fmt.Errorf("validate config: returning truck %d must be numbered before waiting truck %d", c.Fleet.ReturnTruck, c.Fleet.WaitingTruck)
	}
	if _, err := c.corrections(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}
	return nil
}

// BuildFleet creates one truck per configured departure.
func (c *Config) BuildFleet() (*domain.Fleet, error) {
	trucks := make([]*domain.Truck, 0, len(c.Fleet.Departures))
	for i, raw := range c.Fleet.Departures {
		depart, err := domain.ParseClock(raw)
		if err != nil {
			return nil, fmt.Errorf("build fleet: truck %d departure: %w", i+1, err)
		}

		driver := fmt.Sprintf("Driver %d", i+1)
		if i < len(c.Fleet.Drivers) && c.Fleet.Drivers[i] != "" {
			driver = c.Fleet.Drivers[i]
		}

		t := domain.NewTruck(i+1, driver, depart)
		t.Capacity = c.Fleet.Capacity
		t.SpeedMPH = c.Fleet.SpeedMPH
		if t.TruckID == c.Fleet.ReturnTruck {
			t.ReturnsToDepot = true
			t.HandsOffTo = c.Fleet.WaitingTruck
		}
		trucks = append(trucks, t)
	}

	fleet, err := domain.NewFleet(trucks...)
	if err != nil {
		return nil, fmt.Errorf("build fleet: %w", err)
	}
	return fleet, nil
}

func (c *Config) LoadPlanner() (services.LoadPlanner, error) {
	p := services.NewLoadPlanner(len(c.Fleet.Departures), c.Fleet.Capacity)
	p.DelayCutoffs = make([]domain.TimeOfDay, 0, len(c.Planner.DelayCutoffs))
	for _, raw := range c.Planner.DelayCutoffs {
		cut, err := domain.ParseClock(raw)
		if err != nil {
			return services.LoadPlanner{}, fmt.Errorf("load planner: delay cutoff: %w", err)
		}
		p.DelayCutoffs = append(p.DelayCutoffs, cut)
	}
	return p, nil
}

func (c *Config) DispatchOptions() (services.DispatchOptions, error) {
	corrections, err := c.corrections()
	if err != nil {
		return services.DispatchOptions{}, fmt.Errorf("dispatch options: %w", err)
	}
	return services.DispatchOptions{
		Restarts:       c.Dispatch.Restarts,
		RepairRestarts: c.Dispatch.RepairRestarts,
		Seed:           c.Dispatch.Seed,
		Parallel:       c.Dispatch.Parallel,
		Corrections:    corrections,
	}, nil
}

// DispatchRequest bundles the fleet, planner and options for one run.
func (c *Config) DispatchRequest() (services.DispatchRequest, error) {
	fleet, err := c.BuildFleet()
	if err != nil {
		return services.DispatchRequest{}, err
	}
	planner, err := c.LoadPlanner()
	if err != nil {
		return services.DispatchRequest{}, err
	}
	opts, err := c.DispatchOptions()
	if err != nil {
		return services.DispatchRequest{}, err
	}
	return services.DispatchRequest{Fleet: fleet, Planner: planner, Options: opts}, nil
}

func (c *Config) corrections() (map[int]domain.Address, error) {
	out := make(map[int]domain.Address, len(c.Corrections))
	for key, a := range c.Corrections {
		id, err := strconv.Atoi(strings.TrimSpace(key))
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("correction key %q is not a package id", key)
		}
		out[id] = domain.Address{Street: a.Street, City: a.City, State: a.State, Zip: a.Zip}
	}
	return out, nil
}
