package memory

import (
	"context"
	"delivery-dispatch-service/internal/domain"
	"delivery-dispatch-service/internal/ports"
	"fmt"
	"slices"
)

// Source serves a fixed dataset from memory. It backs tests and callers that
// already hold parsed records.
type Source struct {
	ds ports.Dataset
}

func NewSource(ds ports.Dataset) *Source {
	return &Source{ds: ds}
}

// ListPackages returns copies so a dispatch never mutates the source records.
func (s *Source) ListPackages(ctx context.Context) ([]*domain.Package, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("list packages: %w", err)
	}

	out := make([]*domain.Package, 0, len(s.ds.Packages))
	for _, p := range s.ds.Packages {
		c := *p
		out = append(out, &c)
	}
	slices.SortFunc(out, func(a, b *domain.Package) int { return a.PackageID - b.PackageID })
	return out, nil
}

func (s *Source) LoadNetwork(ctx context.Context) (*domain.RoadNetwork, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("load network: %w", err)
	}

	table, err := domain.NewLocationTable(s.ds.Locations)
	if err != nil {
		return nil, fmt.Errorf("load network: %w", err)
	}
	dm, err := domain.NewDistanceMatrix(s.ds.Distances)
	if err != nil {
		return nil, fmt.Errorf("load network: %w", err)
	}
	return domain.NewRoadNetwork(table, dm)
}

// SaveDataset replaces the held dataset.
func (s *Source) SaveDataset(ctx context.Context, ds ports.Dataset) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("save dataset: %w", err)
	}
	s.ds = ds
	return nil
}
