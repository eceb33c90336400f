package models

import "time"

// Session represents one ingested vehicle telemetry session
type Session struct {
	ID          int64  `json:"id" db:"id"`
	Name        string `json:"name" db:"name"`
	VehicleID   string `json:"vehicle_id,omitempty" db:"vehicle_id"`
	SampleCount int64  `json:"sample_count" db:"sample_count"`

	StartTime int64 `json:"start_time" db:"start_time"` // Unix timestamp
	EndTime   int64 `json:"end_time" db:"end_time"`     // Unix timestamp

	// Detection lifecycle
	Status       string `json:"status" db:"status"`
	ErrorMessage string `json:"error_message,omitempty" db:"error_message"`
	SummaryJSON  string `json:"summary,omitempty" db:"summary_json"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Session status constants
const (
	SessionStatusPending   = "pending"
	SessionStatusRunning   = "running"
	SessionStatusCompleted = "completed"
	SessionStatusFailed    = "failed"
)

// SessionFilter represents filter parameters for querying sessions
type SessionFilter struct {
	VehicleID string `form:"vehicleId"`
	Status    string `form:"status"`
	Page      int    `form:"page"`
	PageSize  int    `form:"pageSize"`
}
