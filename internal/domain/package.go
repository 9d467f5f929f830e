package domain

import (
	"fmt"
	"time"
)

// AddressCutover is when a corrected address becomes known to the hub.
var AddressCutover = Clock(10, 20)

// Correction replaces a package's listed address from EffectiveAt onwards.
type Correction struct {
	Address     Address
	EffectiveAt TimeOfDay
}

// Represents a single delivery unit handled by the system.
// A Package is created once at load time and never destroyed during a run.
// Truck assignment is set by load planning and repair; Status and the
// dispatch/delivery times are populated by timeline simulation.
type Package struct {
	PackageID  int
	Address    Address
	Correction *Correction
	Deadline   TimeOfDay
	WeightKg   float64
	Notes      string
	Note       Note

	// TruckID is 0 while the package is unassigned.
	TruckID      int
	Status       Status
	DispatchedAt TimeOfDay
	DeliveredAt  TimeOfDay

	// ReportedAddress is the address shown at the last status update.
	ReportedAddress Address
}

// NewPackage validates and parses the raw record fields.
func NewPackage(id int, addr Address, deadline TimeOfDay, weightKg float64, notes string) (*Package, error) {
	if id <= 0 {
		return nil, fmt.Errorf("new package: invalid id %d", id)
	}

	note, err := ParseNote(notes)
	if err != nil {
		return nil, fmt.Errorf("new package %d: %w", id, err)
	}

	return &Package{
		PackageID:       id,
		Address:         addr,
		Deadline:        deadline,
		WeightKg:        weightKg,
		Notes:           notes,
		Note:            note,
		Status:          AtHub,
		DispatchedAt:    NotYet,
		DeliveredAt:     NotYet,
		ReportedAddress: addr,
	}, nil
}

// HasDeadline reports whether the package must arrive before end of day.
func (p *Package) HasDeadline() bool { return p.Deadline < EndOfDay }

// DeliveryAddress is where the package is actually taken.
func (p *Package) DeliveryAddress() Address {
	if p.Correction != nil {
		return p.Correction.Address
	}
	return p.Address
}

// AddressAt is the address the hub knows about at time t.
func (p *Package) AddressAt(t TimeOfDay) Address {
	if p.Correction != nil && t >= p.Correction.EffectiveAt {
		return p.Correction.Address
	}
	return p.Address
}

// StatusAt derives the package status at time t from its dispatch and delivery times.
func (p *Package) StatusAt(t TimeOfDay) Status {
	switch {
	case !p.DispatchedAt.IsSet() || t < p.DispatchedAt:
		return AtHub
	case !p.DeliveredAt.IsSet() || t < p.DeliveredAt:
		return EnRoute
	default:
		return Delivered
	}
}

// OnTime reports whether the simulated delivery meets the deadline.
func (p *Package) OnTime() bool {
	return p.DeliveredAt.IsSet() && p.DeliveredAt <= p.Deadline
}

// Lateness is how far past the deadline the package arrives; zero when on time.
func (p *Package) Lateness() time.Duration {
	if !p.DeliveredAt.IsSet() || p.DeliveredAt <= p.Deadline {
		return 0
	}
	return p.DeliveredAt.Sub(p.Deadline)
}

// Assign records truck ownership and the time the package leaves the hub.
func (p *Package) Assign(truckID int, departAt TimeOfDay) {
	p.TruckID = truckID
	p.DispatchedAt = departAt
}

func (p *Package) Unassign() {
	p.TruckID = 0
	p.DispatchedAt = NotYet
	p.DeliveredAt = NotYet
}
