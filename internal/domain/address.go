package domain

import "strings"

// Address is a street delivery address. Street and Zip are the keys used for
// location matching and load locality.
type Address struct {
	Street string `json:"street"`
	City   string `json:"city"`
	State  string `json:"state"`
	Zip    string `json:"zip"`
}

// Key normalizes the street and zip into a location lookup key.
func (a Address) Key() string {
	return normalizeStreet(a.Street) + "|" + strings.TrimSpace(a.Zip)
}

// StreetKey is the normalized street line.
func (a Address) StreetKey() string { return normalizeStreet(a.Street) }

// ZipKey is the trimmed zip code.
func (a Address) ZipKey() string { return strings.TrimSpace(a.Zip) }

// SameStreet reports whether a and b share a street line, ignoring case and spacing.
func (a Address) SameStreet(b Address) bool {
	return normalizeStreet(a.Street) == normalizeStreet(b.Street)
}

func (a Address) String() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{a.Street, a.City, strings.TrimSpace(a.State + " " + a.Zip)} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

func normalizeStreet(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
