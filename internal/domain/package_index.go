package domain

import (
	"fmt"
	"slices"
	"sync"
)

const defaultBuckets = 40

// PackageIndex stores packages by ID in a chained hash table. It owns the
// Package records for a dispatch run; trucks and reports refer to them by ID.
type PackageIndex struct {
	mu      sync.RWMutex
	buckets [][]*Package
	count   int
}

func NewPackageIndex() *PackageIndex {
	return NewPackageIndexSize(defaultBuckets)
}

// NewPackageIndexSize preallocates size buckets.
func NewPackageIndexSize(size int) *PackageIndex {
	if size < 1 {
		size = defaultBuckets
	}
	return &PackageIndex{buckets: make([][]*Package, size)}
}

func (x *PackageIndex) bucket(id int) int {
	h := id % len(x.buckets)
	if h < 0 {
		h += len(x.buckets)
	}
	return h
}

// Insert stores p, replacing any package with the same ID.
func (x *PackageIndex) Insert(p *Package) error {
	if p == nil {
		return fmt.Errorf("insert package: package is nil")
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	b := x.bucket(p.PackageID)
	for i, existing := range x.buckets[b] {
		if existing.PackageID == p.PackageID {
			x.buckets[b][i] = p
			return nil
		}
	}
	x.buckets[b] = append(x.buckets[b], p)
	x.count++

	if x.count > len(x.buckets) {
		x.resize(len(x.buckets) * 2)
	}
	return nil
}

// resize rehashes every entry into size buckets. Caller holds the write lock.
func (x *PackageIndex) resize(size int) {
	old := x.buckets
	x.buckets = make([][]*Package, size)
	for _, chain := range old {
		for _, p := range chain {
			b := x.bucket(p.PackageID)
			x.buckets[b] = append(x.buckets[b], p)
		}
	}
}

// Lookup returns the package with the given ID or ErrNotFound.
func (x *PackageIndex) Lookup(id int) (*Package, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	for _, p := range x.buckets[x.bucket(id)] {
		if p.PackageID == id {
			return p, nil
		}
	}
	return nil, fmt.Errorf("package %d: %w", id, ErrNotFound)
}

func (x *PackageIndex) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.count
}

// Buckets is the current table size.
func (x *PackageIndex) Buckets() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.buckets)
}

// All returns every package ordered by ID.
func (x *PackageIndex) All() []*Package {
	x.mu.RLock()
	out := make([]*Package, 0, x.count)
	for _, chain := range x.buckets {
		out = append(out, chain...)
	}
	x.mu.RUnlock()

	slices.SortFunc(out, func(a, b *Package) int { return a.PackageID - b.PackageID })
	return out
}

// UpdateAllStatuses sets every package's status and reported address as of time at.
func (x *PackageIndex) UpdateAllStatuses(at TimeOfDay) {
	x.mu.Lock()
	defer x.mu.Unlock()

	for _, chain := range x.buckets {
		for _, p := range chain {
			p.Status = p.StatusAt(at)
			p.ReportedAddress = p.AddressAt(at)
		}
	}
}
