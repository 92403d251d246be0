package overpass

import "errors"

// Sentinel kinds for search failures. All of them surface to the tracker as
// a recoverable refresh failure.
var (
	ErrRequest = errors.New("overpass request failed")
	ErrStatus  = errors.New("overpass returned non-success status")
	ErrDecode  = errors.New("overpass payload malformed")
)
