package repositories

import (
	"context"
	"database/sql"
	"delivery-dispatch-service/internal/domain"
	"delivery-dispatch-service/internal/platform/db"
	"delivery-dispatch-service/internal/platform/obs"
	"delivery-dispatch-service/internal/ports"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// SQL-backed implementation of the PackageRepository, NetworkSource and
// DatasetWriter ports. Queries are written with "?" placeholders and
// rebound to "$n" for Postgres.
type SQLRepository struct {
	DB     *sql.DB
	Driver string
	Log    zerolog.Logger
}

func NewSQLRepository(conn *sql.DB, driver string, log zerolog.Logger) *SQLRepository {
	return &SQLRepository{DB: conn, Driver: driver, Log: log}
}

func (s *SQLRepository) rebind(query string) string {
	if s.Driver != db.DriverPostgres {
		return query
	}

	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Return all packages stored in the database.
func (s *SQLRepository) ListPackages(ctx context.Context) (_ []*domain.Package, err error) {
	defer obs.Time(ctx, s.Log, "repository.ListPackages")(&err)

	if s.DB == nil {
		return nil, errors.New("list packages: DB is nil")
	}

	query := `
	SELECT
		package_id,
		street,
		city,
		state,
		zip,
		deadline,
		weight_kg,
		notes
	FROM packages
	ORDER BY package_id;
	`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list packages: query packages table: %w", err)
	}
	defer rows.Close()

	packages := make([]*domain.Package, 0, 64)
	for rows.Next() {
		var (
			id       int
			addr     domain.Address
			deadline string
			weight   float64
			notes    string
		)
		if err := rows.Scan(&id, &addr.Street, &addr.City, &addr.State, &addr.Zip, &deadline, &weight, &notes); err != nil {
			return nil, fmt.Errorf("list packages: scan row: %w", err)
		}

		due, err := domain.ParseClock(deadline)
		if err != nil {
			return nil, fmt.Errorf("list packages: package_id=%d: %w", id, err)
		}
		p, err := domain.NewPackage(id, addr, due, weight, notes)
		if err != nil {
			return nil, fmt.Errorf("list packages: %w", err)
		}
		packages = append(packages, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list packages: row iteration: %w", err)
	}

	return packages, nil
}

// Load the location table and distance matrix.
func (s *SQLRepository) LoadNetwork(ctx context.Context) (_ *domain.RoadNetwork, err error) {
	defer obs.Time(ctx, s.Log, "repository.LoadNetwork")(&err)

	if s.DB == nil {
		return nil, errors.New("load network: DB is nil")
	}

	locs, err := s.locations(ctx)
	if err != nil {
		return nil, fmt.Errorf("load network: %w", err)
	}
	if len(locs) == 0 {
		return nil, fmt.Errorf("load network: no locations stored: %w", domain.ErrNotFound)
	}

	matrix, err := s.distanceRows(ctx, len(locs))
	if err != nil {
		return nil, fmt.Errorf("load network: %w", err)
	}

	table, err := domain.NewLocationTable(locs)
	if err != nil {
		return nil, fmt.Errorf("load network: %w", err)
	}
	dm, err := domain.NewDistanceMatrix(matrix)
	if err != nil {
		return nil, fmt.Errorf("load network: %w", err)
	}
	return domain.NewRoadNetwork(table, dm)
}

func (s *SQLRepository) locations(ctx context.Context) ([]domain.Location, error) {
	rows, err := s.DB.QueryContext(ctx, `
	SELECT location_idx, name, street, zip
	FROM locations
	ORDER BY location_idx;
	`)
	if err != nil {
		return nil, fmt.Errorf("query locations table: %w", err)
	}
	defer rows.Close()

	var locs []domain.Location
	for rows.Next() {
		var (
			idx int
			loc domain.Location
		)
		if err := rows.Scan(&idx, &loc.Name, &loc.Address.Street, &loc.Address.Zip); err != nil {
			return nil, fmt.Errorf("scan location row: %w", err)
		}
		if idx != len(locs) {
			return nil, fmt.Errorf("location index %d out of sequence, want %d", idx, len(locs))
		}
		locs = append(locs, loc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("location row iteration: %w", err)
	}
	return locs, nil
}

func (s *SQLRepository) distanceRows(ctx context.Context, n int) ([][]float64, error) {
	matrix := make([][]float64, n)
	for i := range matrix {
		matrix[i] = make([]float64, n)
		for j := range matrix[i] {
			matrix[i][j] = math.NaN()
		}
	}

	rows, err := s.DB.QueryContext(ctx, `SELECT from_idx, to_idx, miles FROM distances;`)
	if err != nil {
		return nil, fmt.Errorf("query distances table: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			from, to int
			miles    float64
		)
		if err := rows.Scan(&from, &to, &miles); err != nil {
			return nil, fmt.Errorf("scan distance row: %w", err)
		}
		if from < 0 || from >= n || to < 0 || to >= n {
			return nil, fmt.Errorf("distance (%d,%d) outside %d locations: %w", from, to, n, domain.ErrInvalidMatrix)
		}
		matrix[from][to] = miles
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("distance row iteration: %w", err)
	}
	return matrix, nil
}

// SaveDataset replaces every stored package, location and distance in one
// transaction. Empty (NaN) matrix cells are not stored.
func (s *SQLRepository) SaveDataset(ctx context.Context, ds ports.Dataset) (err error) {
	defer obs.Time(ctx, s.Log, "repository.SaveDataset")(&err)

	if s.DB == nil {
		return errors.New("save dataset: DB is nil")
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save dataset: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{"packages", "locations", "distances"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+";"); err != nil {
			return fmt.Errorf("save dataset: clear %s: %w", table, err)
		}
	}

	pkgStmt, err := tx.PrepareContext(ctx, s.rebind(`
	INSERT INTO packages (package_id, street, city, state, zip, deadline, weight_kg, notes)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?);
	`))
	if err != nil {
		return fmt.Errorf("save dataset: prepare package insert: %w", err)
	}
	defer pkgStmt.Close()

	for _, p := range ds.Packages {
		a := p.Address
		if _, err := pkgStmt.ExecContext(ctx, p.PackageID, a.Street, a.City, a.State, a.Zip, p.Deadline.Clock24(), p.WeightKg, p.Notes); err != nil {
			return fmt.Errorf("save dataset: insert package_id=%d: %w", p.PackageID, err)
		}
	}

	locStmt, err := tx.PrepareContext(ctx, s.rebind(`
	INSERT INTO locations (location_idx, name, street, zip)
	VALUES (?, ?, ?, ?);
	`))
	if err != nil {
		return fmt.Errorf("save dataset: prepare location insert: %w", err)
	}
	defer locStmt.Close()

	for i, loc := range ds.Locations {
		if _, err := locStmt.ExecContext(ctx, i, loc.Name, loc.Address.Street, loc.Address.Zip); err != nil {
			return fmt.Errorf("save dataset: insert location %d: %w", i, err)
		}
	}

	distStmt, err := tx.PrepareContext(ctx, s.rebind(`
	INSERT INTO distances (from_idx, to_idx, miles)
	VALUES (?, ?, ?)
	ON CONFLICT (from_idx, to_idx) DO UPDATE
	SET miles = EXCLUDED.miles;
	`))
	if err != nil {
		return fmt.Errorf("save dataset: prepare distance insert: %w", err)
	}
	defer distStmt.Close()

	for i, row := range ds.Distances {
		for j, miles := range row {
			if math.IsNaN(miles) {
				continue
			}
			if _, err := distStmt.ExecContext(ctx, i, j, miles); err != nil {
				return fmt.Errorf("save dataset: insert distance (%d,%d): %w", i, j, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save dataset: commit tx: %w", err)
	}

	s.Log.Info().
		Int("packages", len(ds.Packages)).
		Int("locations", len(ds.Locations)).
		Msg("dataset saved")
	return nil
}
