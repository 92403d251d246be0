package overpass

import "pubcompass/internal/domain/geo"

// response is shaped for the Overpass JSON payload.
type response struct {
	Elements []element `json:"elements"`
}

// element is a single OSM element. Nodes carry lat/lon directly; ways carry
// a center object computed by "out center".
type element struct {
	Type   string            `json:"type"`
	ID     int64             `json:"id"`
	Lat    float64           `json:"lat"`
	Lon    float64           `json:"lon"`
	Center *center           `json:"center,omitempty"`
	Tags   map[string]string `json:"tags"`
}

type center struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// point extracts the element's coordinate from either representation.
func (e element) point() (geo.Coordinate, bool) {
	if e.Center != nil {
		return geo.Coordinate{Lat: e.Center.Lat, Lon: e.Center.Lon}, true
	}
	if e.Lat != 0 || e.Lon != 0 {
		return geo.Coordinate{Lat: e.Lat, Lon: e.Lon}, true
	}
	return geo.Coordinate{}, false
}
