package detection

// Params holds every threshold the cycle detection engine uses. All calls
// are parameterized explicitly; there is no process-wide state.
type Params struct {
	// Stop segmentation
	SpeedStopKmh      float64 // below this a sample counts as stopped
	GapSeconds        float64 // max silence between stopped samples
	MinStopSeconds    float64 // shorter stops are dropped
	MinStopSamples    int     // sparser stops are dropped
	MovementTolerance int     // consecutive moving samples absorbed into a stop

	// Hotspot clustering
	RoundDecimals int // coordinate rounding for cluster keys

	// Load operation
	LoadMinSeconds              float64
	LoadMinSecondsRelaxed       float64
	LoadActiveFraction          float64
	LoadActiveFractionRelaxed   float64
	LoadRadiusMeters            float64
	LoadMergeGapMinutes         float64
	LoadMergeMaxDurationSeconds float64

	// Dump operation. DumpActiveFraction is a spike density over the
	// spike span (spikes per second), not a fraction of the whole stop.
	DumpMinSeconds     float64
	DumpMaxSeconds     float64
	DumpActiveFraction float64
	DumpRadiusMeters   float64

	// Waits
	WaitMinSeconds          float64
	WaitAttachWindowSeconds float64 // wait-to-operation cycle id inheritance
	WaitFoldGapSeconds      float64 // wait folded into the following load

	// Cycle pairing
	MaxLoadToDumpHours float64

	// Acceleration spikes
	AccelSpikeThreshold float64

	// Anomaly detection
	AnomalyKMads          float64
	AnomalySpeedStopKmh   float64 // looser stop threshold for the idle sub-search
	AnomalyMinStopSeconds float64
}

// DefaultParams returns the engine defaults matching the source heuristics
func DefaultParams() Params {
	return Params{
		SpeedStopKmh:      0.5,
		GapSeconds:        2,
		MinStopSeconds:    10,
		MinStopSamples:    3,
		MovementTolerance: 2,

		RoundDecimals: 3,

		LoadMinSeconds:              120,
		LoadMinSecondsRelaxed:       90,
		LoadActiveFraction:          0.08,
		LoadActiveFractionRelaxed:   0.05,
		LoadRadiusMeters:            250.0,
		LoadMergeGapMinutes:         15.0,
		LoadMergeMaxDurationSeconds: 600,

		DumpMinSeconds:     10,
		DumpMaxSeconds:     120,
		DumpActiveFraction: 0.30,
		DumpRadiusMeters:   250.0,

		WaitMinSeconds:          15,
		WaitAttachWindowSeconds: 300,
		WaitFoldGapSeconds:      5,

		MaxLoadToDumpHours: 4.0,

		AccelSpikeThreshold: 0.05,

		AnomalyKMads:          3.0,
		AnomalySpeedStopKmh:   3.0,
		AnomalyMinStopSeconds: 30,
	}
}
