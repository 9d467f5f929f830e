package services

import (
	"delivery-dispatch-service/internal/domain"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFingerprintIsStable(t *testing.T) {
	net := lineNetwork(t, 4)
	pkgs := []*domain.Package{
		newPackage(t, 1, 1, domain.EndOfDay, ""),
		newPackage(t, 2, 2, domain.Clock(10, 30), "Can only be on truck 2"),
	}
	fleet := standardFleet(t)
	planner := NewLoadPlanner(3, 16)
	opts := testOptions(5)

	a := Fingerprint(pkgs, net, fleet, planner, opts)
	assert.Len(t, a, 16)
	assert.Equal(t, a, Fingerprint(pkgs, net, standardFleet(t), NewLoadPlanner(3, 16), opts))

	opts.Seed = 6
	assert.NotEqual(t, a, Fingerprint(pkgs, net, fleet, planner, opts))

	opts.Seed = 5
	pkgs[1].Notes = "Can only be on truck 3"
	assert.NotEqual(t, a, Fingerprint(pkgs, net, fleet, planner, opts))
}

func TestFingerprintCoversPlannerSettings(t *testing.T) {
	net := lineNetwork(t, 4)
	pkgs := []*domain.Package{newPackage(t, 1, 1, domain.EndOfDay, "")}
	fleet := standardFleet(t)
	opts := testOptions(5)
	base := Fingerprint(pkgs, net, fleet, NewLoadPlanner(3, 16), opts)

	tests := []struct {
		name   string
		change func(*LoadPlanner)
	}{
		{"delay cutoff moved", func(p *LoadPlanner) { p.DelayCutoffs = []domain.TimeOfDay{domain.Clock(9, 15), domain.AddressCutover} }},
		{"delay cutoff dropped", func(p *LoadPlanner) { p.DelayCutoffs = p.DelayCutoffs[:1] }},
		{"group load", func(p *LoadPlanner) { p.GroupLoad = 2 }},
		{"wrong address load", func(p *LoadPlanner) { p.WrongAddressLoad = 1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			planner := NewLoadPlanner(3, 16)
			tt.change(&planner)
			assert.NotEqual(t, base, Fingerprint(pkgs, net, fleet, planner, opts))
		})
	}
}
