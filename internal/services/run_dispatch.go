package services

import (
	"context"
	"delivery-dispatch-service/internal/domain"
	"delivery-dispatch-service/internal/platform/obs"
	"delivery-dispatch-service/internal/ports"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type DispatchRequest struct {
	Fleet   *domain.Fleet
	Planner LoadPlanner
	Options DispatchOptions
}

// DispatchRun is a finished dispatch ready for reporting.
type DispatchRun struct {
	Coordinator *Coordinator
	Reporter    Reporter
	Network     *domain.RoadNetwork
	Result      DispatchResult
	Fingerprint string
	// FromCache is set when the plan was restored instead of recomputed.
	FromCache bool
}

// RunDispatch loads the inputs, restores a cached plan when one matches the
// fingerprint, and otherwise dispatches and caches the result. cache may be
// nil. Plans are only cached for an explicit seed, since a time-based seed
// never repeats.
func RunDispatch(
	ctx context.Context,
	req DispatchRequest,
	repo ports.PackageRepository,
	source ports.NetworkSource,
	cache ports.PlanCache,
	log zerolog.Logger,
	metrics *obs.DispatchMetrics,
) (_ *DispatchRun, err error) {
	defer obs.Time(ctx, log, "run dispatch")(&err)

	if req.Fleet == nil {
		return nil, fmt.Errorf("run dispatch: fleet is required")
	}

	pkgs, err := repo.ListPackages(ctx)
	if err != nil {
		return nil, fmt.Errorf("run dispatch: list packages: %w", err)
	}
	network, err := source.LoadNetwork(ctx)
	if err != nil {
		return nil, fmt.Errorf("run dispatch: load network: %w", err)
	}

	index := domain.NewPackageIndex()
	for _, p := range pkgs {
		if err := index.Insert(p); err != nil {
			return nil, fmt.Errorf("run dispatch: %w", err)
		}
	}

	run := &DispatchRun{
		Coordinator: NewCoordinator(network, index, req.Fleet, req.Planner, req.Options, log, metrics),
		Reporter:    Reporter{Network: network, Index: index, Fleet: req.Fleet},
		Network:     network,
	}

	useCache := cache != nil && req.Options.Seed != 0
	if useCache {
		run.Fingerprint = Fingerprint(pkgs, network, req.Fleet, req.Planner, req.Options)

		snap, ok, err := cache.Get(ctx, run.Fingerprint)
		if err != nil {
			log.Warn().Err(err).Str("fingerprint", run.Fingerprint).Msg("plan cache lookup failed, dispatching")
		} else if ok {
			if err := run.restore(snap); err != nil {
				return nil, fmt.Errorf("run dispatch: %w", err)
			}
			log.Info().Str("fingerprint", run.Fingerprint).Msg("restored cached plan")
			return run, nil
		}
	}

	if run.Result, err = run.Coordinator.Dispatch(ctx); err != nil {
		return nil, fmt.Errorf("run dispatch: %w", err)
	}

	if useCache {
		snap := domain.TakeSnapshot(run.Fingerprint, req.Fleet, index)
		if err := cache.Put(ctx, snap); err != nil {
			log.Warn().Err(err).Str("fingerprint", run.Fingerprint).Msg("plan cache store failed")
		}
	}

	return run, nil
}

func (r *DispatchRun) restore(snap domain.PlanSnapshot) error {
	c := r.Coordinator
	if err := c.applyCorrections(); err != nil {
		return fmt.Errorf("restore plan: %w", err)
	}
	if err := snap.Apply(c.fleet, c.packages); err != nil {
		return fmt.Errorf("restore plan: %w", err)
	}

	violations, err := c.violations()
	if err != nil {
		return fmt.Errorf("restore plan: %w", err)
	}
	for _, t := range c.fleet.Trucks() {
		r.Result.TotalMiles += r.Network.Distances.RouteMiles(t.Route)
	}

	r.Result.RunID = uuid.New()
	r.Result.Seed = c.opts.Seed
	r.Result.Violations = violations
	r.Result.OnTime = len(violations) == 0
	r.Result.Swaps = []Swap{}
	r.FromCache = true
	return nil
}
