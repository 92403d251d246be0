// Package simulate generates a pedestrian walking track and feeds it to a
// running compass service, either over HTTP or through the MQTT sensor
// topics. It exists to exercise the whole pipeline without leaving the desk.
package simulate

import (
	"math"
	"math/rand"

	"pubcompass/internal/domain/geo"
)

const (
	// Maximum change of walking direction per step, degrees.
	maxTurnPerStep = 30.0

	metersPerDegreeLat = 111320.0
)

// Step is one sample of the simulated walk: where the walker is and which
// way the phone is pointing. Alpha is the raw deviceorientation value the
// service expects, counterclockwise from north.
type Step struct {
	Fix        geo.Coordinate
	HeadingDeg float64
	Alpha      float64
}

// Track generates a random walk of n steps starting at origin. The walker
// keeps a drifting heading rather than teleporting randomly, which makes
// refresh-threshold behavior observable.
func Track(origin geo.Coordinate, n int, stepMeters float64, seed int64) []Step {
	rng := rand.New(rand.NewSource(seed))

	steps := make([]Step, 0, n)
	pos := origin
	heading := rng.Float64() * 360

	for i := 0; i < n; i++ {
		heading = math.Mod(heading+(rng.Float64()*2-1)*maxTurnPerStep+360, 360)
		pos = advance(pos, heading, stepMeters)
		steps = append(steps, Step{
			Fix:        pos,
			HeadingDeg: heading,
			Alpha:      math.Mod(360-heading, 360),
		})
	}
	return steps
}

// advance moves a coordinate stepMeters along the given bearing. The flat
// approximation is fine at walking distances.
func advance(c geo.Coordinate, bearingDeg, meters float64) geo.Coordinate {
	rad := bearingDeg * math.Pi / 180
	dLat := meters * math.Cos(rad) / metersPerDegreeLat
	dLon := meters * math.Sin(rad) / (metersPerDegreeLat * math.Cos(c.Lat*math.Pi/180))
	return geo.Coordinate{Lat: c.Lat + dLat, Lon: c.Lon + dLon}
}
