package services

import (
	"context"
	"delivery-dispatch-service/internal/domain"
	"delivery-dispatch-service/internal/platform/obs"
	"fmt"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultRestarts       = 100
	DefaultRepairRestarts = 10
)

type DispatchOptions struct {
	// Restarts is the optimizer restart budget per truck.
	Restarts int
	// RepairRestarts is the restart budget when re-routing trucks after a swap.
	RepairRestarts int
	// Seed drives every random permutation; 0 picks a time-based seed.
	Seed uint64
	// Parallel optimizes trucks concurrently. Results match a sequential run.
	Parallel bool
	// Corrections replace listed addresses from domain.AddressCutover on.
	Corrections map[int]domain.Address
}

func DefaultDispatchOptions() DispatchOptions {
	return DispatchOptions{
		Restarts:       DefaultRestarts,
		RepairRestarts: DefaultRepairRestarts,
		Parallel:       true,
	}
}

// Swap records a repair that exchanged two packages between trucks.
type Swap struct {
	TruckA   int `json:"truck_a"`
	PackageA int `json:"package_a"`
	TruckB   int `json:"truck_b"`
	PackageB int `json:"package_b"`
}

// Violation is a package projected to arrive after its deadline.
type Violation struct {
	PackageID   int              `json:"package_id"`
	TruckID     int              `json:"truck_id"`
	Deadline    domain.TimeOfDay `json:"deadline"`
	DeliveredAt domain.TimeOfDay `json:"delivered_at"`
}

// DispatchResult summarizes one dispatch cycle. A non-empty Violations list
// means repair could not make every delivery on time; it is not an error.
type DispatchResult struct {
	RunID      uuid.UUID   `json:"run_id"`
	Seed       uint64      `json:"seed"`
	OnTime     bool        `json:"on_time"`
	Violations []Violation `json:"violations"`
	Swaps      []Swap      `json:"swaps"`
	TotalMiles float64     `json:"total_miles"`
}

// Coordinator runs dispatch for one fleet over one package index. It owns
// both for the duration of Dispatch; callers must not mutate them concurrently.
type Coordinator struct {
	network  *domain.RoadNetwork
	packages *domain.PackageIndex
	fleet    *domain.Fleet
	planner  LoadPlanner
	opts     DispatchOptions
	log      zerolog.Logger
	metrics  *obs.DispatchMetrics

	timeline Timeline
	// departures are the scheduled departures before any hand-off delay.
	departures map[int]domain.TimeOfDay
	pinned     map[int]struct{}
	// attempt numbers optimizer runs so each draws a distinct random stream.
	attempt uint64
}

func NewCoordinator(
	network *domain.RoadNetwork,
	packages *domain.PackageIndex,
	fleet *domain.Fleet,
	planner LoadPlanner,
	opts DispatchOptions,
	log zerolog.Logger,
	metrics *obs.DispatchMetrics,
) *Coordinator {
	if opts.Restarts < 1 {
		opts.Restarts = DefaultRestarts
	}
	if opts.RepairRestarts < 1 {
		opts.RepairRestarts = DefaultRepairRestarts
	}

	departures := make(map[int]domain.TimeOfDay, fleet.Len())
	for _, t := range fleet.Trucks() {
		departures[t.TruckID] = t.DepartAt
	}

	return &Coordinator{
		network:    network,
		packages:   packages,
		fleet:      fleet,
		planner:    planner,
		opts:       opts,
		log:        log,
		metrics:    metrics,
		timeline:   Timeline{Network: network, Packages: packages, Fleet: fleet},
		departures: departures,
	}
}

// Dispatch plans loads, optimizes every truck's route, verifies deadlines,
// and repairs violations by swapping unpinned packages between trucks.
func (c *Coordinator) Dispatch(ctx context.Context) (res DispatchResult, err error) {
	defer obs.Time(ctx, c.log, "dispatch")(&err)
	start := time.Now()

	if c.opts.Seed == 0 {
		c.opts.Seed = uint64(time.Now().UnixNano())
	}
	c.attempt = 0
	res.RunID = uuid.New()
	res.Seed = c.opts.Seed
	res.Swaps = []Swap{}

	log := c.log.With().Str("run_id", res.RunID.String()).Uint64("seed", c.opts.Seed).Logger()

	if err := c.applyCorrections(); err != nil {
		return res, fmt.Errorf("dispatch: %w", err)
	}
	c.pinned = PinnedPackages(c.packages.All())

	if err := c.assignLoads(); err != nil {
		return res, fmt.Errorf("dispatch: %w", err)
	}

	if err := c.optimize(ctx, c.fleet.Trucks(), c.opts.Restarts); err != nil {
		return res, fmt.Errorf("dispatch: %w", err)
	}

	onTime, err := c.checkFleet()
	if err != nil {
		return res, fmt.Errorf("dispatch: %w", err)
	}

	for _, pair := range c.fleet.Pairs() {
		a, b := pair[0], pair[1]
		if onTime[a.TruckID] && onTime[b.TruckID] {
			continue
		}

		log.Info().Int("truck_a", a.TruckID).Int("truck_b", b.TruckID).Msg("deadline violation, attempting repair")
		swap, ok, err := c.repair(ctx, a, b, onTime)
		if err != nil {
			return res, fmt.Errorf("dispatch: %w", err)
		}
		if ok {
			log.Info().Interface("swap", swap).Msg("repair swap kept")
			res.Swaps = append(res.Swaps, swap)
		} else {
			log.Warn().Int("truck_a", a.TruckID).Int("truck_b", b.TruckID).Msg("repair exhausted without resolving violation")
		}

		if onTime, err = c.checkFleet(); err != nil {
			return res, fmt.Errorf("dispatch: %w", err)
		}
	}

	if res.Violations, err = c.violations(); err != nil {
		return res, fmt.Errorf("dispatch: %w", err)
	}
	res.OnTime = len(res.Violations) == 0

	for _, t := range c.fleet.Trucks() {
		miles := c.network.Distances.RouteMiles(t.Route)
		res.TotalMiles += miles
		c.metrics.RouteMiles(t.TruckID, miles)
	}
	c.metrics.Violations(len(res.Violations))
	c.metrics.Observe(time.Since(start))

	log.Info().
		Bool("on_time", res.OnTime).
		Int("violations", len(res.Violations)).
		Int("swaps", len(res.Swaps)).
		Float64("total_miles", res.TotalMiles).
		Msg("dispatch complete")

	return res, nil
}

func (c *Coordinator) applyCorrections() error {
	for id, addr := range c.opts.Corrections {
		p, err := c.packages.Lookup(id)
		if err != nil {
			return fmt.Errorf("apply correction: %w", err)
		}
		p.Correction = &domain.Correction{Address: addr, EffectiveAt: domain.AddressCutover}
	}
	return nil
}

// assignLoads runs the load planner and hands each load to its truck.
func (c *Coordinator) assignLoads() error {
	for _, t := range c.fleet.Trucks() {
		t.Clear()
		t.DepartAt = c.departures[t.TruckID]
	}

	all := c.packages.All()
	for _, p := range all {
		p.Unassign()
	}

	loads, err := c.planner.Plan(all)
	if err != nil {
		return fmt.Errorf("assign loads: %w", err)
	}
	if len(loads) != c.fleet.Len() {
		return fmt.Errorf("assign loads: planner produced %d loads for %d trucks", len(loads), c.fleet.Len())
	}

	for i, ids := range loads {
		t := c.fleet.Trucks()[i]
		if err := t.LoadMultiple(ids); err != nil {
			return fmt.Errorf("assign loads: %w", err)
		}
		for _, id := range ids {
			p, err := c.packages.Lookup(id)
			if err != nil {
				return fmt.Errorf("assign loads: %w", err)
			}
			p.Assign(t.TruckID, t.DepartAt)
		}
	}
	return nil
}

// optimize runs restarts for each truck, one writer per truck. Each truck
// draws from its own stream so parallel and sequential runs agree.
func (c *Coordinator) optimize(ctx context.Context, trucks []*domain.Truck, restarts int) error {
	c.attempt++
	attempt := c.attempt

	stops := make(map[int][]int, len(trucks))
	for _, t := range trucks {
		pkgs, err := c.truckPackages(t)
		if err != nil {
			return fmt.Errorf("optimize: %w", err)
		}
		if stops[t.TruckID], err = Stops(c.network, pkgs); err != nil {
			return fmt.Errorf("optimize: truck %d: %w", t.TruckID, err)
		}
	}

	run := func(ctx context.Context, t *domain.Truck) error {
		src := rand.NewPCG(c.opts.Seed, attempt<<8|uint64(t.TruckID))
		opt := NewRouteOptimizer(c.network.Distances, src)
		return opt.Optimize(ctx, t, stops[t.TruckID], restarts, func(improved bool) {
			c.metrics.Restart(t.TruckID, improved)
		})
	}

	if !c.opts.Parallel {
		for _, t := range trucks {
			if err := run(ctx, t); err != nil {
				return fmt.Errorf("optimize: %w", err)
			}
		}
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, t := range trucks {
		g.Go(func() error { return run(gctx, t) })
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("optimize: %w", err)
	}
	return nil
}

func (c *Coordinator) truckPackages(t *domain.Truck) ([]*domain.Package, error) {
	pkgs := make([]*domain.Package, 0, len(t.PackageIDs))
	for _, id := range t.PackageIDs {
		p, err := c.packages.Lookup(id)
		if err != nil {
			return nil, fmt.Errorf("truck %d: %w", t.TruckID, err)
		}
		pkgs = append(pkgs, p)
	}
	return pkgs, nil
}

// checkFleet replays every truck in truck-number order from its scheduled
// departure so hand-off delays are applied before the waiting truck is replayed.
func (c *Coordinator) checkFleet() (map[int]bool, error) {
	for _, t := range c.fleet.Trucks() {
		t.DepartAt = c.departures[t.TruckID]
	}

	onTime := make(map[int]bool, c.fleet.Len())
	for _, t := range c.fleet.Trucks() {
		ok, err := c.timeline.OnTime(t)
		if err != nil {
			return nil, fmt.Errorf("check fleet: %w", err)
		}
		onTime[t.TruckID] = ok
	}
	return onTime, nil
}

func (c *Coordinator) violations() ([]Violation, error) {
	out := []Violation{}
	for _, t := range c.fleet.Trucks() {
		late, err := c.timeline.Late(t)
		if err != nil {
			return nil, fmt.Errorf("violations: %w", err)
		}
		for _, p := range late {
			out = append(out, Violation{
				PackageID:   p.PackageID,
				TruckID:     t.TruckID,
				Deadline:    p.Deadline,
				DeliveredAt: p.DeliveredAt,
			})
		}
	}
	return out, nil
}

// repair tries every pairing of an unpinned package on a with one on b. The
// first swap that puts both a and b on time without making any truck in
// before late is kept; every other swap is reverted. When no swap works the
// fleet is left as it was.
func (c *Coordinator) repair(ctx context.Context, a, b *domain.Truck, before map[int]bool) (Swap, bool, error) {
	candidatesA := c.swapCandidates(a)
	candidatesB := c.swapCandidates(b)

	for _, idA := range candidatesA {
		for _, idB := range candidatesB {
			if err := ctx.Err(); err != nil {
				return Swap{}, false, fmt.Errorf("repair: %w", err)
			}

			fleetBefore := c.fleet.Snapshot()
			pkgsBefore, err := c.savePackages(a, b)
			if err != nil {
				return Swap{}, false, fmt.Errorf("repair: %w", err)
			}

			if err := c.swap(a, idA, b, idB); err != nil {
				return Swap{}, false, fmt.Errorf("repair: %w", err)
			}
			if err := c.optimize(ctx, []*domain.Truck{a, b}, c.opts.RepairRestarts); err != nil {
				return Swap{}, false, fmt.Errorf("repair: %w", err)
			}

			onTime, err := c.checkFleet()
			if err != nil {
				return Swap{}, false, fmt.Errorf("repair: %w", err)
			}
			if resolves(before, onTime, a.TruckID, b.TruckID) {
				c.metrics.Swap(true)
				return Swap{TruckA: a.TruckID, PackageA: idA, TruckB: b.TruckID, PackageB: idB}, true, nil
			}

			c.metrics.Swap(false)
			c.fleet.Restore(fleetBefore)
			for _, saved := range pkgsBefore {
				p, err := c.packages.Lookup(saved.PackageID)
				if err != nil {
					return Swap{}, false, fmt.Errorf("repair: %w", err)
				}
				*p = saved
			}
		}
	}

	return Swap{}, false, nil
}

// swapCandidates lists a truck's unpinned packages in ID order.
func (c *Coordinator) swapCandidates(t *domain.Truck) []int {
	ids := t.SortedPackageIDs()
	return slices.DeleteFunc(ids, func(id int) bool {
		_, pinned := c.pinned[id]
		return pinned
	})
}

func (c *Coordinator) savePackages(trucks ...*domain.Truck) ([]domain.Package, error) {
	var saved []domain.Package
	for _, t := range trucks {
		for _, id := range t.PackageIDs {
			p, err := c.packages.Lookup(id)
			if err != nil {
				return nil, err
			}
			saved = append(saved, *p)
		}
	}
	return saved, nil
}

// swap exchanges package ownership and discards both trucks' routes.
func (c *Coordinator) swap(a *domain.Truck, idA int, b *domain.Truck, idB int) error {
	pa, err := c.packages.Lookup(idA)
	if err != nil {
		return fmt.Errorf("swap: %w", err)
	}
	pb, err := c.packages.Lookup(idB)
	if err != nil {
		return fmt.Errorf("swap: %w", err)
	}

	if !a.Unload(idA) || !b.Unload(idB) {
		return fmt.Errorf("swap: packages %d and %d are not on trucks %d and %d", idA, idB, a.TruckID, b.TruckID)
	}
	if err := a.Load(idB); err != nil {
		return fmt.Errorf("swap: %w", err)
	}
	if err := b.Load(idA); err != nil {
		return fmt.Errorf("swap: %w", err)
	}

	pa.Assign(b.TruckID, b.DepartAt)
	pb.Assign(a.TruckID, a.DepartAt)
	a.ResetRoute()
	b.ResetRoute()
	return nil
}

// resolves reports whether trucks a and b are on time after a swap and no
// truck that was on time before it has become late.
func resolves(before, after map[int]bool, a, b int) bool {
	if !after[a] || !after[b] {
		return false
	}
	for id, ok := range before {
		if ok && !after[id] {
			return false
		}
	}
	return true
}

// PinnedPackages returns the IDs that repair may never move: every package
// carrying a note and every package named in a "delivered with" note.
func PinnedPackages(pkgs []*domain.Package) map[int]struct{} {
	pinned := make(map[int]struct{}, len(pkgs))
	for _, p := range pkgs {
		if !p.Note.IsSpecial() {
			continue
		}
		pinned[p.PackageID] = struct{}{}
		for _, id := range p.Note.With {
			pinned[id] = struct{}{}
		}
	}
	return pinned
}

// Fleet exposes the coordinated trucks for reporting.
func (c *Coordinator) Fleet() *domain.Fleet { return c.fleet }

// Packages exposes the coordinated package index for reporting.
func (c *Coordinator) Packages() *domain.PackageIndex { return c.packages }

// Timeline exposes the simulator bound to this coordinator's fleet.
func (c *Coordinator) Timeline() Timeline { return c.timeline }
