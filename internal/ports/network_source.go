package ports

import (
	"context"
	"delivery-dispatch-service/internal/domain"
)

// Port: the location table and aligned distance matrix the hub plans against.
type NetworkSource interface {
	// Return the road network; location 0 is the depot.
	LoadNetwork(ctx context.Context) (*domain.RoadNetwork, error)
}

// Dataset is a complete set of dispatch inputs.
type Dataset struct {
	Packages  []*domain.Package
	Locations []domain.Location
	// Distances are matrix rows aligned with Locations; NaN marks an empty cell.
	Distances [][]float64
}

// Port: a store that can persist a full dataset, replacing what it held.
type DatasetWriter interface {
	SaveDataset(ctx context.Context, ds Dataset) error
}
