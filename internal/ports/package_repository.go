package ports

import (
	"context"
	"delivery-dispatch-service/internal/domain"
)

// Port: a boundary for retrieving Package entities from a data source.
type PackageRepository interface {
	// Retrieve every package to be dispatched today, ordered by ID.
	ListPackages(ctx context.Context) ([]*domain.Package, error)
}
