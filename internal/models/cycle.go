package models

import "time"

// Cycle is a read-only view of one complete load→haul→dump→haul sequence.
// A cycle exists only for loads validated as complete.
type Cycle struct {
	ID        int64 `json:"id,omitempty" db:"id"`
	SessionID int64 `json:"session_id,omitempty" db:"session_id"`
	Number    int   `json:"number" db:"number"`

	LoadStart time.Time `json:"load_start" db:"load_start"`
	LoadEnd   time.Time `json:"load_end" db:"load_end"`
	DumpStart time.Time `json:"dump_start" db:"dump_start"`
	DumpEnd   time.Time `json:"dump_end" db:"dump_end"`

	// ReturnEnd is the start of the following load, bounding the empty
	// haul leg. Zero when the session ends before another load begins.
	ReturnEnd time.Time `json:"return_end,omitempty" db:"return_end"`

	LoadSeconds       float64 `json:"load_sec" db:"load_s"`
	DumpSeconds       float64 `json:"dump_sec" db:"dump_s"`
	HaulLoadedSeconds float64 `json:"haul_loaded_sec" db:"haul_loaded_s"`
	HaulEmptySeconds  float64 `json:"haul_empty_sec" db:"haul_empty_s"`

	// Haul distances are sums of consecutive great-circle hops over the
	// raw telemetry within each leg, in kilometres.
	HaulLoadedKm float64 `json:"haul_loaded_km" db:"haul_loaded_km"`
	HaulEmptyKm  float64 `json:"haul_empty_km" db:"haul_empty_km"`

	// Waits are the idle events attached to this cycle by the validator.
	Waits []Event `json:"waits,omitempty" db:"-"`
}

// HasReturn reports whether the cycle has a bounded empty haul leg
func (c Cycle) HasReturn() bool {
	return !c.ReturnEnd.IsZero()
}

// Cycle phase names used by statistics and anomaly records
const (
	PhaseLoad       = "load"
	PhaseHaulLoaded = "haul_loaded"
	PhaseDump       = "dump"
	PhaseHaulEmpty  = "haul_empty"
)

// PhaseStats holds the robust statistics of one cycle phase across all
// completed cycles. Haul phases are normalized to minutes per kilometre
// before aggregation. A zero MAD disables anomaly flagging for the phase.
type PhaseStats struct {
	Phase     string  `json:"phase"`
	Count     int     `json:"count"`
	Median    float64 `json:"median"`
	MAD       float64 `json:"mad"`
	Min       float64 `json:"min"`
	Max       float64 `json:"max"`
	Threshold float64 `json:"threshold"`
	Enabled   bool    `json:"enabled"`
}

// CycleStatistics groups the per-phase statistics of one detection run
type CycleStatistics struct {
	Load       PhaseStats `json:"load"`
	HaulLoaded PhaseStats `json:"haul_loaded"`
	Dump       PhaseStats `json:"dump"`
	HaulEmpty  PhaseStats `json:"haul_empty"`
}

// Anomaly flags one cycle phase whose duration exceeded the robust
// threshold. When the raw-telemetry sub-search finds the responsible
// low-speed interval, the idle fields anchor it to real coordinates.
type Anomaly struct {
	ID          int64  `json:"id,omitempty" db:"id"`
	SessionID   int64  `json:"session_id,omitempty" db:"session_id"`
	CycleNumber int    `json:"cycle_number" db:"cycle_number"`
	Phase       string `json:"phase" db:"phase"`

	Value     float64 `json:"value" db:"value"`
	Threshold float64 `json:"threshold" db:"threshold"`

	HasIdle     bool      `json:"has_idle" db:"has_idle"`
	IdleStart   time.Time `json:"idle_start,omitempty" db:"idle_start"`
	IdleEnd     time.Time `json:"idle_end,omitempty" db:"idle_end"`
	IdleSeconds float64   `json:"idle_sec,omitempty" db:"idle_s"`
	IdleLat     float64   `json:"idle_lat,omitempty" db:"idle_lat"`
	IdleLon     float64   `json:"idle_lon,omitempty" db:"idle_lon"`
}

// CycleFilter represents filter parameters for querying cycles
type CycleFilter struct {
	SessionID int64 `form:"sessionId"`
	Number    int   `form:"number"`
	Page      int   `form:"page"`
	PageSize  int   `form:"pageSize"`
}
