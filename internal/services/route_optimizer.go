package services

import (
	"context"
	"delivery-dispatch-service/internal/domain"
	"fmt"
	"math/rand/v2"
	"slices"
)

// improvementEpsilon keeps float noise from counting as an improving move.
const improvementEpsilon = 1e-9

// RouteOptimizer orders a truck's stops with randomized restarts of a
// restricted 3-opt local search.
//
// The neighborhood reverses two adjacent segments [i..j] and [j+1..k]; it is
// narrower than classical 3-opt and reaches a local optimum, not a global one.
type RouteOptimizer struct {
	distances *domain.DistanceMatrix
	rng       *rand.Rand
}

// NewRouteOptimizer draws its random permutations from src. Give each truck
// its own source so concurrent optimizers never share state.
func NewRouteOptimizer(distances *domain.DistanceMatrix, src rand.Source) *RouteOptimizer {
	return &RouteOptimizer{distances: distances, rng: rand.New(src)}
}

// RouteScore is the quantity the optimizer minimizes: the full route length
// plus the depot-to-first-stop leg.
func RouteScore(distances *domain.DistanceMatrix, route []int) float64 {
	if len(route) < 2 {
		return 0
	}
	return distances.RouteMiles(route) + distances.Miles(route[0], route[1])
}

// Stops resolves the distinct location indices a set of packages is delivered to.
func Stops(network *domain.RoadNetwork, pkgs []*domain.Package) ([]int, error) {
	seen := make(map[int]struct{}, len(pkgs))
	stops := make([]int, 0, len(pkgs))
	for _, p := range pkgs {
		loc, err := network.StopOf(p)
		if err != nil {
			return nil, fmt.Errorf("stops: %w", err)
		}
		if _, ok := seen[loc]; ok {
			continue
		}
		seen[loc] = struct{}{}
		stops = append(stops, loc)
	}

	// Sorted so a given seed always shuffles the same input.
	slices.Sort(stops)
	return stops, nil
}

// Search runs one restart: a fresh random order of stops, then hill climbing
// until a full pass finds no improving move.
func (o *RouteOptimizer) Search(stops []int, returnToDepot bool) ([]int, float64) {
	route := make([]int, 0, len(stops)+2)
	route = append(route, domain.Depot)
	route = append(route, stops...)
	o.rng.Shuffle(len(stops), func(i, j int) {
		route[i+1], route[j+1] = route[j+1], route[i+1]
	})

	// The trailing depot stays fixed.
	last := len(route) - 1
	if returnToDepot {
		route = append(route, domain.Depot)
	}

	return o.improve(route, last)
}

// improve applies first-improvement segment reversals over stops 1..last.
func (o *RouteOptimizer) improve(route []int, last int) ([]int, float64) {
	best := RouteScore(o.distances, route)
	candidate := make([]int, len(route))

	for improved := true; improved; {
		improved = false
		for i := 1; i <= last-2; i++ {
			for j := i + 1; j <= last-1; j++ {
				for k := j + 1; k <= last; k++ {
					copy(candidate, route)
					slices.Reverse(candidate[i : j+1])
					slices.Reverse(candidate[j+1 : k+1])

					if score := RouteScore(o.distances, candidate); score+improvementEpsilon < best {
						copy(route, candidate)
						best = score
						improved = true
					}
				}
			}
		}
	}

	return route, best
}

// Optimize runs restarts searches for t and offers each result to
// t.UpdateRoute, so the stored route only ever improves. onRestart, when
// non-nil, is told whether each restart replaced the stored route.
func (o *RouteOptimizer) Optimize(
	ctx context.Context,
	t *domain.Truck,
	stops []int,
	restarts int,
	onRestart func(improved bool),
) error {
	for r := 0; r < restarts; r++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("optimize truck %d: restart %d: %w", t.TruckID, r, err)
		}

		route, score := o.Search(stops, t.ReturnsToDepot)
		improved := t.UpdateRoute(route, score)
		if onRestart != nil {
			onRestart(improved)
		}
	}
	return nil
}
