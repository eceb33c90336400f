package detection

import (
	"log"

	"github.com/gabrielsapucaia/trackingnew-sub000/internal/models"
)

// Result is the complete output of one detection run over one session
type Result struct {
	SessionID int64 `json:"session_id,omitempty"`

	LoadAnchor Anchor `json:"load_anchor"`
	DumpAnchor Anchor `json:"dump_anchor"`

	SegmentCount int `json:"segment_count"`

	Events     []models.Event         `json:"events"`
	Cycles     []models.Cycle         `json:"cycles"`
	Statistics models.CycleStatistics `json:"statistics"`
	Anomalies  []models.Anomaly       `json:"anomalies"`
}

// Engine runs the one-way detection pipeline: segmentation → hotspot
// location → classification → cycle validation → anomaly detection.
// Each stage consumes a complete in-memory result before the next starts;
// a run over one session is fully independent of any other.
type Engine struct {
	params Params
}

// NewEngine creates an engine with the given parameters
func NewEngine(p Params) *Engine {
	return &Engine{params: p}
}

// Detect reconstructs the operational cycles of one ordered telemetry
// session. The sequence must be non-decreasing in timestamp; out-of-order
// input is a caller error. Fatal states (no stops, no anchor) abort with
// a sentinel error; everything else degrades per-part.
func (e *Engine) Detect(sessionID int64, samples []models.TelemetrySample) (*Result, error) {
	segments := NewSegmenter(e.params).Segments(samples)
	if len(segments) == 0 {
		return nil, ErrNoStopSegments
	}
	log.Printf("[CycleEngine] Session %d: %d stop segments from %d samples", sessionID, len(segments), len(samples))

	loadAnchor, dumpAnchor, err := LocateAnchors(segments, e.params)
	if err != nil {
		return nil, err
	}
	log.Printf("[CycleEngine] Session %d: load anchor %s (%d segments), dump anchor %s (%d segments)",
		sessionID, loadAnchor.Key, loadAnchor.Count, dumpAnchor.Key, dumpAnchor.Count)

	candidates := NewClassifier(e.params, loadAnchor, dumpAnchor).Classify(segments)
	validated := NewValidator(e.params).Validate(candidates)
	cycles := buildCycles(validated, samples, sessionID)

	statistics, anomalies := NewAnomalyDetector(e.params).Analyze(cycles, samples)
	log.Printf("[CycleEngine] Session %d: %d events, %d cycles, %d anomalies",
		sessionID, len(validated.loads)+len(validated.dumps)+len(validated.waits), len(cycles), len(anomalies))

	return &Result{
		SessionID:    sessionID,
		LoadAnchor:   loadAnchor,
		DumpAnchor:   dumpAnchor,
		SegmentCount: len(segments),
		Events:       validated.Events(sessionID),
		Cycles:       cycles,
		Statistics:   statistics,
		Anomalies:    anomalies,
	}, nil
}
