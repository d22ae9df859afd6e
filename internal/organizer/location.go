package organizer

import (
	"fmt"
	"strings"
)

// Location identifies one of the five canonical package scan roots.
type Location int

const (
	// LocationNative is the package list the host editor provides.
	LocationNative Location = iota
	// LocationAssetStore is the legacy (pre 5.x) Asset Store cache.
	LocationAssetStore
	// LocationAssetStore5x is the modern Asset Store cache.
	LocationAssetStore5x
	// LocationCustom is a user-chosen directory.
	LocationCustom
	// LocationArchive is the user-chosen backup directory.
	LocationArchive
)

var locationNames = map[Location]string{
	LocationNative:       "native",
	LocationAssetStore:   "store",
	LocationAssetStore5x: "store5x",
	LocationCustom:       "custom",
	LocationArchive:      "archive",
}

// AllLocations returns every location in declaration order.
func AllLocations() []Location {
	return []Location{LocationNative, LocationAssetStore, LocationAssetStore5x, LocationCustom, LocationArchive}
}

func (l Location) String() string {
	if name, ok := locationNames[l]; ok {
		return name
	}
	return fmt.Sprintf("location(%d)", int(l))
}

// IsCanonicalStore reports whether l is one of the Asset Store cache
// directories managed by the editor.
func (l Location) IsCanonicalStore() bool {
	return l == LocationAssetStore || l == LocationAssetStore5x
}

// ParseLocation maps a location name (as printed by String) to a Location.
func ParseLocation(s string) (Location, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for loc, n := range locationNames {
		if n == name {
			return loc, nil
		}
	}
	return 0, fmt.Errorf("unknown location %q: expected native, store, store5x, custom, or archive", s)
}
