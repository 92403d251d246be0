// Package geo contains pure great-circle math used by the tracker and the
// pub repository. Nothing in here fails: degenerate inputs (identical
// points) produce determinate values, never NaN.
package geo

import "math"

// earthRadiusMeters is the mean Earth radius used for haversine distances.
const earthRadiusMeters = 6371000.0

// Coordinate is a WGS84 point in decimal degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// DistanceMeters returns the haversine great-circle distance between a and b.
// Symmetric in its arguments; zero when a == b.
func DistanceMeters(a, b Coordinate) float64 {
	phi1 := radians(a.Lat)
	phi2 := radians(b.Lat)
	dPhi := radians(b.Lat - a.Lat)
	dLambda := radians(b.Lon - a.Lon)

	h := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusMeters * c
}

// InitialBearingDegrees returns the forward azimuth from a toward b,
// normalized to [0, 360). The bearing of a point toward itself is
// mathematically indeterminate; 0 is returned so nothing downstream has to
// deal with NaN.
func InitialBearingDegrees(a, b Coordinate) float64 {
	if a == b {
		return 0
	}

	phi1 := radians(a.Lat)
	phi2 := radians(b.Lat)
	dLambda := radians(b.Lon - a.Lon)

	y := math.Sin(dLambda) * math.Cos(phi2)
	x := math.Cos(phi1)*math.Sin(phi2) - math.Sin(phi1)*math.Cos(phi2)*math.Cos(dLambda)

	return math.Mod(degrees(math.Atan2(y, x))+360, 360)
}

// RelativeBearing returns target-heading as a signed rotation in (-180, 180].
// Positive means the indicator turns clockwise to face the target.
func RelativeBearing(target, heading float64) float64 {
	d := math.Mod(target-heading, 360)
	if d > 180 {
		d -= 360
	}
	if d <= -180 {
		d += 360
	}
	return d
}

// HeadingFromAlpha maps a raw device-orientation alpha angle to a compass
// heading in [0, 360). Alpha increases counterclockwise; compass headings
// increase clockwise, hence heading = 360 - alpha.
func HeadingFromAlpha(alpha float64) float64 {
	h := math.Mod(360-alpha, 360)
	if h < 0 {
		h += 360
	}
	return h
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }

func degrees(rad float64) float64 { return rad * 180 / math.Pi }
