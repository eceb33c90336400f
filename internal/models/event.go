package models

import "time"

// EventKind identifies the role of a detected event
type EventKind string

// Event kinds. The set is closed: a stop either performs an operation
// (load, dump) or waits for one.
const (
	EventLoad           EventKind = "LOAD"
	EventDump           EventKind = "DUMP"
	EventWaitBeforeLoad EventKind = "WAIT_BEFORE_LOAD"
	EventWaitBeforeDump EventKind = "WAIT_BEFORE_DUMP"
)

// Event represents a detected operational event within a session.
// CycleID is assigned by the cycle validator, once per event; IsComplete
// is meaningful for LOAD events only.
type Event struct {
	ID        int64     `json:"id,omitempty" db:"id"`
	SessionID int64     `json:"session_id,omitempty" db:"session_id"`
	Kind      EventKind `json:"kind" db:"kind"`

	Start           time.Time `json:"start" db:"start_ts"`
	End             time.Time `json:"end" db:"end_ts"`
	DurationSeconds float64   `json:"duration_sec" db:"duration_s"`

	Latitude   float64 `json:"latitude" db:"latitude"`
	Longitude  float64 `json:"longitude" db:"longitude"`
	ClusterKey string  `json:"cluster_key" db:"cluster_key"`

	CycleID    *int `json:"cycle_id,omitempty" db:"cycle_id"`
	IsComplete bool `json:"is_complete" db:"is_complete"`
}

// EventFilter represents filter parameters for querying events
type EventFilter struct {
	SessionID int64  `form:"sessionId"`
	Kind      string `form:"kind"`
	CycleID   int    `form:"cycleId"`
	StartTime int64  `form:"startTime"` // Unix timestamp
	EndTime   int64  `form:"endTime"`   // Unix timestamp
	Page      int    `form:"page"`
	PageSize  int    `form:"pageSize"`
}
