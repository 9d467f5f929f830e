package services

import (
	"context"
	"delivery-dispatch-service/internal/domain"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouteScoreCountsFirstLegTwice(t *testing.T) {
	net := lineNetwork(t, 4)

	// 2 + 2 + 2 route miles plus the 2-mile depot leg.
	assert.InDelta(t, 8.0, RouteScore(net.Distances, []int{0, 1, 2, 3}), 1e-9)
	assert.InDelta(t, 0.0, RouteScore(net.Distances, []int{0}), 1e-9)
}

func TestStopsDeduplicates(t *testing.T) {
	net := lineNetwork(t, 5)
	pkgs := []*domain.Package{
		newPackage(t, 1, 3, domain.EndOfDay, ""),
		newPackage(t, 2, 1, domain.EndOfDay, ""),
		newPackage(t, 3, 3, domain.EndOfDay, ""),
	}

	stops, err := Stops(net, pkgs)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3}, stops)
}

func TestStopsUnknownAddress(t *testing.T) {
	net := lineNetwork(t, 3)
	p, err := domain.NewPackage(1, domain.Address{Street: "1 Nowhere Ln", Zip: "00000"}, domain.EndOfDay, 1, "")
	require.NoError(t, err)

	_, err = Stops(net, []*domain.Package{p})
	require.ErrorIs(t, err, domain.ErrUnknownLocation)
}

func TestRouteOptimizerImproveSwapsLeadingPair(t *testing.T) {
	net := lineNetwork(t, 4)
	opt := NewRouteOptimizer(net.Distances, rand.NewPCG(1, 1))

	route, score := opt.improve([]int{0, 2, 1, 3}, 3)
	assert.Equal(t, []int{0, 1, 2, 3}, route)
	assert.InDelta(t, 8.0, score, 1e-9)
}

func TestRouteOptimizerSearchShape(t *testing.T) {
	net := lineNetwork(t, 7)
	opt := NewRouteOptimizer(net.Distances, rand.NewPCG(7, 7))
	stops := []int{1, 2, 3, 4, 5, 6}

	route, score := opt.Search(stops, false)
	require.Len(t, route, len(stops)+1)
	assert.Equal(t, domain.Depot, route[0])
	assert.ElementsMatch(t, stops, route[1:])
	assert.InDelta(t, RouteScore(net.Distances, route), score, 1e-9)

	returning, _ := opt.Search(stops, true)
	require.Len(t, returning, len(stops)+2)
	assert.Equal(t, domain.Depot, returning[0])
	assert.Equal(t, domain.Depot, returning[len(returning)-1])
	assert.ElementsMatch(t, stops, returning[1:len(returning)-1])
}

func TestRouteOptimizerSearchNeverWorsensStart(t *testing.T) {
	net := lineNetwork(t, 7)
	stops := []int{1, 2, 3, 4, 5, 6}

	for seed := uint64(1); seed <= 20; seed++ {
		// Replay the same stream to recover the starting permutation.
		start := append([]int{domain.Depot}, stops...)
		rand.New(rand.NewPCG(seed, 0)).Shuffle(len(stops), func(i, j int) {
			start[i+1], start[j+1] = start[j+1], start[i+1]
		})

		_, score := NewRouteOptimizer(net.Distances, rand.NewPCG(seed, 0)).Search(stops, false)
		assert.LessOrEqualf(t, score, RouteScore(net.Distances, start), "seed %d", seed)
	}
}

func TestRouteOptimizerOptimizeIsMonotonic(t *testing.T) {
	net := lineNetwork(t, 7)
	truck := domain.NewTruck(2, "Driver 2", domain.Clock(9, 5))
	opt := NewRouteOptimizer(net.Distances, rand.NewPCG(42, 2))

	var history []float64
	improvements := 0
	err := opt.Optimize(context.Background(), truck, []int{1, 2, 3, 4, 5, 6}, 50, func(improved bool) {
		if improved {
			improvements++
		}
		history = append(history, truck.BestDistance)
	})
	require.NoError(t, err)

	require.Len(t, history, 50)
	assert.GreaterOrEqual(t, improvements, 1)
	for i := 1; i < len(history); i++ {
		assert.LessOrEqualf(t, history[i], history[i-1], "restart %d", i)
	}
	assert.GreaterOrEqual(t, truck.BestDistance, 12.0)
	assert.InDelta(t, RouteScore(net.Distances, truck.Route), truck.BestDistance, 1e-9)
}

func TestRouteOptimizerFindsBestOfThree(t *testing.T) {
	net := lineNetwork(t, 4)
	truck := domain.NewTruck(1, "Driver 1", domain.Clock(8, 0))
	opt := NewRouteOptimizer(net.Distances, rand.NewPCG(3, 1))

	require.NoError(t, opt.Optimize(context.Background(), truck, []int{1, 2, 3}, DefaultRestarts, nil))
	assert.Equal(t, []int{0, 1, 2, 3}, truck.Route)
	assert.InDelta(t, 8.0, truck.BestDistance, 1e-9)
}

func TestRouteOptimizerEmptyTruck(t *testing.T) {
	net := lineNetwork(t, 3)
	truck := domain.NewTruck(1, "Driver 1", domain.Clock(8, 0))
	truck.ReturnsToDepot = true

	require.NoError(t, NewRouteOptimizer(net.Distances, rand.NewPCG(1, 1)).Optimize(context.Background(), truck, nil, 3, nil))
	assert.Equal(t, []int{0, 0}, truck.Route)
	assert.Zero(t, truck.BestDistance)
}

func TestRouteOptimizerHonorsCancellation(t *testing.T) {
	net := lineNetwork(t, 4)
	truck := domain.NewTruck(1, "Driver 1", domain.Clock(8, 0))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewRouteOptimizer(net.Distances, rand.NewPCG(1, 1)).Optimize(ctx, truck, []int{1, 2, 3}, 10, nil)
	require.ErrorIs(t, err, context.Canceled)
	assert.True(t, slices.Equal(truck.Route, nil))
}
