package services

import (
	"delivery-dispatch-service/internal/domain"
	"fmt"
	"maps"
	"slices"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// Fingerprint identifies a dispatch input: packages, road network, fleet
// schedule, load planner settings and the options that steer the optimizer.
// Equal fingerprints produce equal plans, so a cached plan can stand in for
// a new dispatch.
func Fingerprint(pkgs []*domain.Package, network *domain.RoadNetwork, fleet *domain.Fleet, planner LoadPlanner, opts DispatchOptions) string {
	h := xxhash.New()
	write := func(parts ...string) {
		for _, p := range parts {
			_, _ = h.WriteString(p)
			_, _ = h.WriteString("\x1f")
		}
		_, _ = h.WriteString("\x1e")
	}

	for _, p := range pkgs {
		write(strconv.Itoa(p.PackageID), p.Address.Key(), p.Deadline.Clock24(), p.Notes)
	}

	for i := 0; i < network.Locations.Len(); i++ {
		write(network.Locations.At(i).Address.Key())
	}
	for i := 0; i < network.Distances.Len(); i++ {
		for j := 0; j < i; j++ {
			write(strconv.FormatFloat(network.Distances.Miles(i, j), 'f', -1, 64))
		}
	}

	for _, t := range fleet.Trucks() {
		write(strconv.Itoa(t.TruckID), t.DepartAt.Clock24(), strconv.Itoa(t.Capacity),
			strconv.FormatFloat(t.SpeedMPH, 'f', -1, 64), strconv.FormatBool(t.ReturnsToDepot), strconv.Itoa(t.HandsOffTo))
	}

	write(strconv.Itoa(planner.Trucks), strconv.Itoa(planner.Capacity),
		strconv.Itoa(planner.GroupLoad), strconv.Itoa(planner.WrongAddressLoad))
	cutoffs := make([]string, 0, len(planner.DelayCutoffs))
	for _, c := range planner.DelayCutoffs {
		cutoffs = append(cutoffs, c.Clock24())
	}
	write(cutoffs...)

	write(strconv.FormatUint(opts.Seed, 10), strconv.Itoa(opts.Restarts), strconv.Itoa(opts.RepairRestarts))
	for _, id := range slices.Sorted(maps.Keys(opts.Corrections)) {
		write(strconv.Itoa(id), opts.Corrections[id].Key())
	}

	return fmt.Sprintf("%016x", h.Sum64())
}
