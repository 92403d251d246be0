// Package display turns raw tracker values into the strings shown to users.
package display

import "fmt"

// UnnamedPub is shown for OSM elements that carry no name tag.
const UnnamedPub = "Unnamed Pub"

const metersPerKilometer = 1000.0

// cardinals are the 8-point compass labels, clockwise from north.
var cardinals = []string{"N", "NE", "E", "SE", "S", "SW", "W", "NW"} //nolint:gochecknoglobals // fixed lookup table

// DistanceLabel formats a distance for display: whole meters below one
// kilometer, kilometers with two decimals at or above it.
func DistanceLabel(meters float64) string {
	if meters < metersPerKilometer {
		return fmt.Sprintf("%.0fm", meters)
	}
	return fmt.Sprintf("%.2fkm", meters/metersPerKilometer)
}

// Name returns the display name for a pub, falling back to UnnamedPub.
func Name(name string) string {
	if name == "" {
		return UnnamedPub
	}
	return name
}

// Cardinal maps a bearing in degrees to its 8-point compass label.
func Cardinal(bearingDeg float64) string {
	idx := int((bearingDeg+22.5)/45.0) % len(cardinals)
	if idx < 0 {
		idx += len(cardinals)
	}
	return cardinals[idx]
}
