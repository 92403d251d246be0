package app

import "errors"

// Sentinel kinds for tracker lifecycle errors.
var (
	// ErrNoFetcher means Start was called without a candidate search
	// collaborator.
	ErrNoFetcher = errors.New("tracker requires a fetcher")

	// ErrSensorUnavailable means a sensor source could not be attached at
	// startup. Fatal: reported once, halts initialization.
	ErrSensorUnavailable = errors.New("sensor source unavailable")
)
