package csvsource

import (
	"delivery-dispatch-service/internal/domain"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	packageHeader  = []string{"id", "address", "city", "state", "zip", "deadline", "weight", "notes"}
	locationHeader = []string{"name", "address", "zip"}
)

// PackageRecord is one validated row of packages.csv.
type PackageRecord struct {
	ID       int     `validate:"required,gt=0"`
	Street   string  `validate:"required"`
	City     string  `validate:"required"`
	State    string  `validate:"required,len=2,alpha"`
	Zip      string  `validate:"required,numeric,len=5"`
	Deadline string  `validate:"required"`
	WeightKg float64 `validate:"gt=0"`
	Notes    string
}

// LocationRecord is one validated row of locations.csv.
type LocationRecord struct {
	Name   string `validate:"required"`
	Street string `validate:"required"`
	Zip    string `validate:"required,numeric,len=5"`
}

func parsePackageRecord(row []string) (PackageRecord, error) {
	if len(row) < len(packageHeader)-1 {
		return PackageRecord{}, fmt.Errorf("want %d fields, got %d", len(packageHeader), len(row))
	}
	field := func(i int) string {
		if i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	id, err := strconv.Atoi(field(0))
	if err != nil {
		return PackageRecord{}, fmt.Errorf("id %q: %w", field(0), err)
	}
	weight, err := strconv.ParseFloat(field(6), 64)
	if err != nil {
		return PackageRecord{}, fmt.Errorf("weight %q: %w", field(6), err)
	}

	return PackageRecord{
		ID:       id,
		Street:   field(1),
		City:     field(2),
		State:    field(3),
		Zip:      field(4),
		Deadline: field(5),
		WeightKg: weight,
		Notes:    field(7),
	}, nil
}

// Package converts a validated record into a domain Package.
func (r PackageRecord) Package() (*domain.Package, error) {
	deadline, err := domain.ParseClock(r.Deadline)
	if err != nil {
		return nil, fmt.Errorf("package %d: deadline: %w", r.ID, err)
	}

	addr := domain.Address{Street: r.Street, City: r.City, State: r.State, Zip: r.Zip}
	return domain.NewPackage(r.ID, addr, deadline, r.WeightKg, r.Notes)
}

// Location converts a validated record into a domain Location.
func (r LocationRecord) Location() domain.Location {
	return domain.Location{Name: r.Name, Address: domain.Address{Street: r.Street, Zip: r.Zip}}
}

// validateRecord returns the first field failure in a readable form.
func validateRecord(v *validator.Validate, rec any) error {
	err := v.Struct(rec)
	if err == nil {
		return nil
	}
	if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
		fe := verrs[0]
		return fmt.Errorf("field %s fails %q (value %v): %w", fe.Field(), fe.Tag(), fe.Value(), ErrInvalidRecord)
	}
	return fmt.Errorf("validate record: %w", err)
}

func isHeader(row, header []string) bool {
	if len(row) == 0 || len(header) == 0 {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(row[0]), header[0])
}
