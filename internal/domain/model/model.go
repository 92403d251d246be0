// Package model contains domain models passed between layers.
package model

import "pubcompass/internal/domain/geo"

// Pub is a single point of interest returned by the candidate search.
// Identity is ID; Name may be empty for unnamed OSM elements.
type Pub struct {
	ID       string         `json:"id"`
	Name     string         `json:"name,omitempty"`
	Location geo.Coordinate `json:"location"`
}

// EventKind discriminates tracker events flowing through the queue.
type EventKind int

// Tracker event kinds.
const (
	EventFix EventKind = iota
	EventHeading
	EventSelect
	EventFetchDone
)

// Event is a single tracker input. Exactly one payload field is meaningful,
// selected by Kind. Fix, heading and selection events come from the sensor
// and API adapters; fetch-done events are produced internally when a
// candidate refresh completes.
type Event struct {
	Kind EventKind

	Fix       geo.Coordinate // EventFix
	Heading   float64        // EventHeading, compass degrees
	Selection string         // EventSelect, empty clears the selection

	// EventFetchDone
	Candidates []Pub
	FetchErr   error
}

// State names the tracker's position in its lifecycle.
type State string

// Tracker states.
const (
	StateAwaitingFix        State = "awaiting_fix"
	StateAwaitingCandidates State = "awaiting_candidates"
	StateReady              State = "ready"
)

// StatusLevel classifies a user-visible status message.
type StatusLevel string

// Status levels.
const (
	StatusInfo  StatusLevel = "info"
	StatusError StatusLevel = "error"
	StatusFatal StatusLevel = "fatal"
)

// Status is a transient user-visible message. A nil *Status on a frame means
// any previously shown status must be cleared.
type Status struct {
	Level   StatusLevel `json:"level"`
	Message string      `json:"message"`
}

// Candidate is one row of the rendered pub list.
type Candidate struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	DistanceLabel string  `json:"distance"`
	Meters        float64 `json:"meters"`
	Selected      bool    `json:"selected"`
}

// Frame is the full derived display state handed to rendering collaborators.
// It is recomputed wholesale on every tracker update; renderers never patch
// previous frames.
type Frame struct {
	State State `json:"state"`

	TargetID      string  `json:"target_id,omitempty"`
	TargetName    string  `json:"target_name,omitempty"`
	DistanceLabel string  `json:"distance,omitempty"`
	RotationDeg   float64 `json:"rotation_deg"`
	BearingDeg    float64 `json:"bearing_deg"`
	Cardinal      string  `json:"cardinal,omitempty"`
	HeadingDeg    float64 `json:"heading_deg"`

	Candidates []Candidate `json:"candidates,omitempty"`

	Status *Status `json:"status,omitempty"`
}
