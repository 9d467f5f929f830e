package ports

import (
	"context"
	"delivery-dispatch-service/internal/domain"
)

// Port: storage for finished dispatch plans keyed by input fingerprint.
type PlanCache interface {
	// Return the snapshot for fingerprint; ok is false on a miss.
	Get(ctx context.Context, fingerprint string) (snapshot domain.PlanSnapshot, ok bool, err error)
	// Store snapshot under its own fingerprint.
	Put(ctx context.Context, snapshot domain.PlanSnapshot) error
}
