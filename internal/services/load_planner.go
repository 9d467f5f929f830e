package services

import (
	"delivery-dispatch-service/internal/domain"
	"fmt"
	"slices"
)

// LoadPlanner partitions the day's packages into one load per truck.
//
// Note-constrained and deadline packages are seeded first so the locality
// passes can cluster nearby stops onto the same truck before any route is
// optimized. Placement never exceeds Capacity; when every load is full,
// planning fails with domain.ErrCapacityExceeded.
type LoadPlanner struct {
	Trucks   int
	Capacity int

	// GroupLoad receives every package of a "delivered with" group (1-based).
	GroupLoad int
	// WrongAddressLoad receives packages whose address is corrected later (1-based).
	WrongAddressLoad int
	// DelayCutoffs map a delayed arrival time to a load: arrivals before
	// DelayCutoffs[i] go to load i+1, later ones to the load after the last cutoff.
	DelayCutoffs []domain.TimeOfDay
}

func NewLoadPlanner(trucks, capacity int) LoadPlanner {
	return LoadPlanner{
		Trucks:           trucks,
		Capacity:         capacity,
		GroupLoad:        1,
		WrongAddressLoad: trucks,
		DelayCutoffs:     []domain.TimeOfDay{domain.Clock(9, 0), domain.AddressCutover},
	}
}

type load struct {
	ids     []int
	streets map[string]struct{}
	zips    map[string]struct{}
}

type planState struct {
	capacity int
	loads    []*load
	placed   map[int]int
	byID     map[int]*domain.Package
}

func (s *planState) isPlaced(id int) bool {
	_, ok := s.placed[id]
	return ok
}

func (s *planState) hasRoom(li int) bool { return len(s.loads[li].ids) < s.capacity }

func (s *planState) place(p *domain.Package, li int) error {
	if s.isPlaced(p.PackageID) {
		return nil
	}
	if !s.hasRoom(li) {
		return fmt.Errorf("package %d on load %d: %w", p.PackageID, li+1, domain.ErrCapacityExceeded)
	}

	l := s.loads[li]
	l.ids = append(l.ids, p.PackageID)
	addr := p.DeliveryAddress()
	l.streets[addr.StreetKey()] = struct{}{}
	l.zips[addr.ZipKey()] = struct{}{}
	s.placed[p.PackageID] = li
	return nil
}

// firstMatching returns the first load with room whose location set matches.
func (s *planState) firstMatching(match func(*load) bool) int {
	for li, l := range s.loads {
		if s.hasRoom(li) && match(l) {
			return li
		}
	}
	return -1
}

// Plan returns one ordered list of package IDs per truck.
func (lp LoadPlanner) Plan(pkgs []*domain.Package) ([][]int, error) {
	if lp.Trucks < 1 || lp.Capacity < 1 {
		return nil, fmt.Errorf("plan loads: need at least one truck with capacity, got trucks=%d capacity=%d", lp.Trucks, lp.Capacity)
	}

	s := &planState{
		capacity: lp.Capacity,
		loads:    make([]*load, lp.Trucks),
		placed:   make(map[int]int, len(pkgs)),
		byID:     make(map[int]*domain.Package, len(pkgs)),
	}
	for i := range s.loads {
		s.loads[i] = &load{streets: map[string]struct{}{}, zips: map[string]struct{}{}}
	}
	for _, p := range pkgs {
		s.byID[p.PackageID] = p
	}

	// Earliest deadlines first.
	sorted := slices.Clone(pkgs)
	slices.SortStableFunc(sorted, func(a, b *domain.Package) int {
		switch {
		case a.Deadline < b.Deadline:
			return -1
		case a.Deadline > b.Deadline:
			return 1
		}
		return 0
	})

	if err := lp.placeNoted(s, sorted); err != nil {
		return nil, fmt.Errorf("plan loads: %w", err)
	}

	// Deadline packages join a load already visiting their street or zip.
	for _, p := range sorted {
		if s.isPlaced(p.PackageID) || !p.HasDeadline() {
			continue
		}
		addr := p.DeliveryAddress()
		li := s.firstMatching(func(l *load) bool {
			_, street := l.streets[addr.StreetKey()]
			_, zip := l.zips[addr.ZipKey()]
			return street || zip
		})
		if li >= 0 {
			if err := s.place(p, li); err != nil {
				return nil, fmt.Errorf("plan loads: %w", err)
			}
		}
	}

	// Any deadline package still waiting rides the first truck out.
	for _, p := range sorted {
		if s.isPlaced(p.PackageID) || !p.HasDeadline() {
			continue
		}
		li := 0
		if !s.hasRoom(li) {
			li = s.firstMatching(func(*load) bool { return true })
		}
		if li < 0 {
			return nil, fmt.Errorf("plan loads: package %d: every load is full: %w", p.PackageID, domain.ErrCapacityExceeded)
		}
		if err := s.place(p, li); err != nil {
			return nil, fmt.Errorf("plan loads: %w", err)
		}
	}

	// Street affinity, then zip affinity.
	for _, p := range sorted {
		if s.isPlaced(p.PackageID) {
			continue
		}
		street := p.DeliveryAddress().StreetKey()
		if li := s.firstMatching(func(l *load) bool { _, ok := l.streets[street]; return ok }); li >= 0 {
			if err := s.place(p, li); err != nil {
				return nil, fmt.Errorf("plan loads: %w", err)
			}
		}
	}
	for _, p := range sorted {
		if s.isPlaced(p.PackageID) {
			continue
		}
		zip := p.DeliveryAddress().ZipKey()
		if li := s.firstMatching(func(l *load) bool { _, ok := l.zips[zip]; return ok }); li >= 0 {
			if err := s.place(p, li); err != nil {
				return nil, fmt.Errorf("plan loads: %w", err)
			}
		}
	}

	// Whatever is left balances onto the lightest load.
	for _, p := range sorted {
		if s.isPlaced(p.PackageID) {
			continue
		}
		li := -1
		for i, l := range s.loads {
			if !s.hasRoom(i) {
				continue
			}
			if li < 0 || len(l.ids) < len(s.loads[li].ids) {
				li = i
			}
		}
		if li < 0 {
			return nil, fmt.Errorf("plan loads: package %d: every load is full: %w", p.PackageID, domain.ErrCapacityExceeded)
		}
		if err := s.place(p, li); err != nil {
			return nil, fmt.Errorf("plan loads: %w", err)
		}
	}

	out := make([][]int, len(s.loads))
	for i, l := range s.loads {
		out[i] = l.ids
	}
	return out, nil
}

// placeNoted applies the hard placements dictated by package notes.
func (lp LoadPlanner) placeNoted(s *planState, sorted []*domain.Package) error {
	for _, p := range sorted {
		// A placed group member still pulls its own mates along.
		if s.isPlaced(p.PackageID) && p.Note.Kind != domain.NoteDeliveredWith {
			continue
		}

		switch p.Note.Kind {
		case domain.NoteOnTruck:
			if p.Note.Truck > lp.Trucks {
				return fmt.Errorf("package %d requires truck %d of %d: %w", p.PackageID, p.Note.Truck, lp.Trucks, domain.ErrInvalidNote)
			}
			if err := s.place(p, p.Note.Truck-1); err != nil {
				return err
			}

		case domain.NoteWrongAddress:
			if err := s.place(p, lp.clampLoad(lp.WrongAddressLoad)); err != nil {
				return err
			}

		case domain.NoteDeliveredWith:
			group := []*domain.Package{p}
			for _, id := range p.Note.With {
				mate, ok := s.byID[id]
				if !ok {
					return fmt.Errorf("package %d must travel with package %d: %w", p.PackageID, id, domain.ErrNotFound)
				}
				group = append(group, mate)
			}

			li, err := lp.groupLoad(s, group)
			if err != nil {
				return err
			}
			for _, member := range group {
				if err := s.place(member, li); err != nil {
					return err
				}
			}

		case domain.NoteDelayed:
			if err := s.place(p, lp.loadForDelay(p.Note.Until)); err != nil {
				return err
			}
		}
	}
	return nil
}

// groupLoad picks the load for a "delivered with" group: the truck a member
// is noted to ride, else the load a member already sits on, else GroupLoad.
// Members bound to different loads are an ErrInvalidNote.
func (lp LoadPlanner) groupLoad(s *planState, group []*domain.Package) (int, error) {
	li := -1
	bind := func(p *domain.Package, want int) error {
		if li >= 0 && li != want {
			return fmt.Errorf("package %d on load %d conflicts with its group on load %d: %w", p.PackageID, want+1, li+1, domain.ErrInvalidNote)
		}
		li = want
		return nil
	}

	for _, p := range group {
		if p.Note.Kind != domain.NoteOnTruck {
			continue
		}
		if p.Note.Truck > lp.Trucks {
			return 0, fmt.Errorf("package %d requires truck %d of %d: %w", p.PackageID, p.Note.Truck, lp.Trucks, domain.ErrInvalidNote)
		}
		if err := bind(p, p.Note.Truck-1); err != nil {
			return 0, err
		}
	}
	for _, p := range group {
		if at, ok := s.placed[p.PackageID]; ok {
			if err := bind(p, at); err != nil {
				return 0, err
			}
		}
	}

	if li < 0 {
		li = lp.clampLoad(lp.GroupLoad)
	}
	return li, nil
}

func (lp LoadPlanner) loadForDelay(until domain.TimeOfDay) int {
	li := len(lp.DelayCutoffs)
	for i, cutoff := range lp.DelayCutoffs {
		if until < cutoff {
			li = i
			break
		}
	}
	return lp.clampLoad(li + 1)
}

// clampLoad turns a 1-based load number into an in-range index.
func (lp LoadPlanner) clampLoad(n int) int {
	switch {
	case n < 1:
		return 0
	case n > lp.Trucks:
		return lp.Trucks - 1
	}
	return n - 1
}
