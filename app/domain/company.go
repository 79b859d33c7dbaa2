package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Company is the tenant a registration creates. Name is unique across all
// companies.
type Company struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Country   string    `json:"country"`
	Sector    string    `json:"sector"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewCompany creates a new company with a generated id
func NewCompany(name, country, sector string) (*Company, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("name is required")
	}

	if strings.TrimSpace(country) == "" {
		return nil, fmt.Errorf("country is required")
	}

	sector = strings.TrimSpace(sector)
	if sector == "" {
		return nil, fmt.Errorf("sector is required")
	}

	now := time.Now()

	return &Company{
		ID:        uuid.New(),
		Name:      name,
		Country:   country,
		Sector:    sector,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// DefaultCountries are supported when no other list is configured.
var DefaultCountries = []string{"France", "Luxembourg"}

// CountrySet is the set of countries a company may be registered in.
// Matching is exact, mirroring the stored value.
type CountrySet struct {
	names map[string]struct{}
	order []string
}

// NewCountrySet builds a set from names, dropping blanks and duplicates.
func NewCountrySet(names ...string) *CountrySet {
	set := &CountrySet{names: make(map[string]struct{}, len(names))}
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, dup := set.names[n]; dup {
			continue
		}
		set.names[n] = struct{}{}
		set.order = append(set.order, n)
	}
	return set
}

// Contains reports whether country is supported
func (s *CountrySet) Contains(country string) bool {
	if s == nil {
		return false
	}
	_, ok := s.names[country]
	return ok
}

// Names returns the supported countries in alphabetical order.
func (s *CountrySet) Names() []string {
	if s == nil {
		return nil
	}
	out := append([]string(nil), s.order...)
	sort.Strings(out)
	return out
}

// Len returns the number of supported countries.
func (s *CountrySet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.order)
}
