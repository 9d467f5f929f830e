package csvsource

import (
	"context"
	"delivery-dispatch-service/internal/domain"
	"delivery-dispatch-service/internal/ports"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	PackagesFile  = "packages.csv"
	LocationsFile = "locations.csv"
	DistancesFile = "distances.csv"
)

// ErrInvalidRecord is returned when a CSV row fails validation.
var ErrInvalidRecord = errors.New("invalid record")

// Source reads the dispatch inputs from a directory of CSV files. It
// implements ports.PackageRepository and ports.NetworkSource.
type Source struct {
	Dir      string
	validate *validator.Validate
}

func New(dir string) *Source {
	return &Source{Dir: dir, validate: validator.New()}
}

func (s *Source) readAll(name string) ([][]string, error) {
	path := filepath.Join(s.Dir, name)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %q: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	var rows [][]string
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %q: %w", path, err)
		}
		if len(row) == 1 && strings.TrimSpace(row[0]) == "" {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// ListPackages parses packages.csv. Deadlines are "EOD" or a time of day.
func (s *Source) ListPackages(ctx context.Context) ([]*domain.Package, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("list packages: %w", err)
	}

	rows, err := s.readAll(PackagesFile)
	if err != nil {
		return nil, fmt.Errorf("list packages: %w", err)
	}
	if len(rows) > 0 && isHeader(rows[0], packageHeader) {
		rows = rows[1:]
	}

	seen := make(map[int]int, len(rows))
	pkgs := make([]*domain.Package, 0, len(rows))
	for i, row := range rows {
		line := i + 2
		rec, err := parsePackageRecord(row)
		if err != nil {
			return nil, fmt.Errorf("list packages: line %d: %v: %w", line, err, ErrInvalidRecord)
		}
		if err := validateRecord(s.validate, rec); err != nil {
			return nil, fmt.Errorf("list packages: line %d: %w", line, err)
		}
		if prev, dup := seen[rec.ID]; dup {
			return nil, fmt.Errorf("list packages: line %d: id %d repeats line %d: %w", line, rec.ID, prev, ErrInvalidRecord)
		}
		seen[rec.ID] = line

		p, err := rec.Package()
		if err != nil {
			return nil, fmt.Errorf("list packages: line %d: %w", line, err)
		}
		pkgs = append(pkgs, p)
	}

	return pkgs, nil
}

// Locations parses locations.csv; the first data row is the depot.
func (s *Source) Locations(ctx context.Context) ([]domain.Location, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}

	rows, err := s.readAll(LocationsFile)
	if err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	if len(rows) > 0 && isHeader(rows[0], locationHeader) {
		rows = rows[1:]
	}

	locs := make([]domain.Location, 0, len(rows))
	for i, row := range rows {
		if len(row) < len(locationHeader) {
			return nil, fmt.Errorf("list locations: line %d: want %d fields, got %d: %w", i+2, len(locationHeader), len(row), ErrInvalidRecord)
		}
		rec := LocationRecord{
			Name:   strings.TrimSpace(row[0]),
			Street: strings.TrimSpace(row[1]),
			Zip:    strings.TrimSpace(row[2]),
		}
		if err := validateRecord(s.validate, rec); err != nil {
			return nil, fmt.Errorf("list locations: line %d: %w", i+2, err)
		}
		locs = append(locs, rec.Location())
	}

	return locs, nil
}

// DistanceRows parses distances.csv. Blank cells become NaN so only one
// triangle of the matrix has to be filled in.
func (s *Source) DistanceRows(ctx context.Context) ([][]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("read distances: %w", err)
	}

	rows, err := s.readAll(DistancesFile)
	if err != nil {
		return nil, fmt.Errorf("read distances: %w", err)
	}

	out := make([][]float64, len(rows))
	for i, row := range rows {
		out[i] = make([]float64, len(row))
		for j, cell := range row {
			cell = strings.TrimSpace(cell)
			if cell == "" {
				out[i][j] = math.NaN()
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, fmt.Errorf("read distances: row %d col %d: %q: %w", i+1, j+1, cell, ErrInvalidRecord)
			}
			out[i][j] = v
		}
	}

	return out, nil
}

// LoadNetwork combines locations.csv and distances.csv.
func (s *Source) LoadNetwork(ctx context.Context) (*domain.RoadNetwork, error) {
	locs, err := s.Locations(ctx)
	if err != nil {
		return nil, fmt.Errorf("load network: %w", err)
	}
	rows, err := s.DistanceRows(ctx)
	if err != nil {
		return nil, fmt.Errorf("load network: %w", err)
	}

	table, err := domain.NewLocationTable(locs)
	if err != nil {
		return nil, fmt.Errorf("load network: %w", err)
	}
	dm, err := domain.NewDistanceMatrix(rows)
	if err != nil {
		return nil, fmt.Errorf("load network: %w", err)
	}
	return domain.NewRoadNetwork(table, dm)
}

// LoadDataset reads all three files.
func (s *Source) LoadDataset(ctx context.Context) (ports.Dataset, error) {
	pkgs, err := s.ListPackages(ctx)
	if err != nil {
		return ports.Dataset{}, fmt.Errorf("load dataset: %w", err)
	}
	locs, err := s.Locations(ctx)
	if err != nil {
		return ports.Dataset{}, fmt.Errorf("load dataset: %w", err)
	}
	rows, err := s.DistanceRows(ctx)
	if err != nil {
		return ports.Dataset{}, fmt.Errorf("load dataset: %w", err)
	}
	return ports.Dataset{Packages: pkgs, Locations: locs, Distances: rows}, nil
}
