// Package model defines the domain types used across the application.
package model

import (
	"fmt"
	"strings"
)

// City is one of the locations supported by the Holland2Stay feed.
type City string

// Supported cities.
const (
	Delft      City = "Delft"
	Eindhoven  City = "Eindhoven"
	DenHaag    City = "DenHaag"
	Zoetermeer City = "Zoetermeer"
	Rijswijk   City = "Rijswijk"
	Rotterdam  City = "Rotterdam"
)

// AllCities lists every supported city in a stable order.
var AllCities = []City{Delft, Eindhoven, DenHaag, Zoetermeer, Rijswijk, Rotterdam}

var cityIDs = map[City]string{
	Delft:      "26",
	Eindhoven:  "29",
	DenHaag:    "90",
	Zoetermeer: "6088",
	Rijswijk:   "6224",
	Rotterdam:  "25",
}

// FeedID returns the numeric identifier the upstream feed uses for the city.
func (c City) FeedID() string {
	return cityIDs[c]
}

func (c City) String() string {
	return string(c)
}

// ParseCity converts the textual command form of a city back into a City.
// Matching is case-insensitive; the result round-trips through String().
func ParseCity(s string) (City, error) {
	for _, c := range AllCities {
		if strings.EqualFold(s, string(c)) {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown city %q, supported: %s", s, CityNames())
}

// CityNames returns a comma-separated list of all supported cities.
func CityNames() string {
	names := make([]string, len(AllCities))
	for i, c := range AllCities {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}

// Listing is a single available unit from the feed. Two listings are the
// same listing only if every field matches, so a changed price or start
// date makes a distinct listing that is reported as new again.
type Listing struct {
	Name          string
	City          City
	LivingArea    string
	Floor         string
	MinimumStay   string
	BasicRent     float64
	AvailableFrom string
	ContractType  string
}

func (l Listing) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", l.City, l.Name)
	if l.LivingArea != "" {
		fmt.Fprintf(&b, ", %s m2", l.LivingArea)
	}
	if l.Floor != "" {
		fmt.Fprintf(&b, ", floor %s", l.Floor)
	}
	if l.BasicRent > 0 {
		fmt.Fprintf(&b, ", €%.2f", l.BasicRent)
	}
	if l.AvailableFrom != "" {
		fmt.Fprintf(&b, ", available from %s", l.AvailableFrom)
	}
	return b.String()
}

// CitySet is a set of cities.
type CitySet map[City]struct{}

// ListingSet is a set of listings keyed by the full attribute tuple.
type ListingSet map[Listing]struct{}

// Clone returns an independent copy of the set.
func (s ListingSet) Clone() ListingSet {
	cp := make(ListingSet, len(s))
	for l := range s {
		cp[l] = struct{}{}
	}
	return cp
}
