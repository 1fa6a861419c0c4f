package domain

import (
	"fmt"
	"strconv"
)

// Immutable geographic coordinates (longitude, latitude).
type Coordinates struct {
	Lon float64
	Lat float64
}

// Return coordinates as [lon, lat] for external API compatibility.
func (c Coordinates) CoordsToList() []float64 { return []float64{c.Lon, c.Lat} }

// ParseLonLat builds Coordinates from string-encoded values as returned
// by the geocoding API.
func ParseLonLat(lon, lat string) (Coordinates, error) {
	lonF, err := strconv.ParseFloat(lon, 64)
	if err != nil {
		return Coordinates{}, fmt.Errorf("parse lon %q: %w", lon, err)
	}
	latF, err := strconv.ParseFloat(lat, 64)
	if err != nil {
		return Coordinates{}, fmt.Errorf("parse lat %q: %w", lat, err)
	}
	return Coordinates{Lon: lonF, Lat: latF}, nil
}
