package service

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/gabrielsapucaia/trackingnew-sub000/internal/detection"
	"github.com/gabrielsapucaia/trackingnew-sub000/internal/models"
	"github.com/gabrielsapucaia/trackingnew-sub000/internal/repository"
)

// DetectionService orchestrates a cycle detection run over a stored
// session: load samples, run the engine, persist the result.
type DetectionService struct {
	sessions *repository.SessionRepository
	events   *repository.EventRepository
	params   detection.Params
}

// NewDetectionService creates a new detection service
func NewDetectionService(sessions *repository.SessionRepository, events *repository.EventRepository, params detection.Params) *DetectionService {
	return &DetectionService{sessions: sessions, events: events, params: params}
}

// Run executes detection for the session and persists the output.
// Fatal engine states (no stops, no anchor) mark the session failed with
// a descriptive message and are returned to the caller.
func (s *DetectionService) Run(sessionID int64) (*detection.Result, error) {
	log.Printf("[DetectionService] Starting detection for session %d", sessionID)

	if err := s.sessions.UpdateStatus(sessionID, models.SessionStatusRunning, ""); err != nil {
		return nil, err
	}

	samples, err := s.sessions.GetSamples(sessionID)
	if err != nil {
		s.sessions.UpdateStatus(sessionID, models.SessionStatusFailed, err.Error())
		return nil, err
	}

	result, err := detection.NewEngine(s.params).Detect(sessionID, samples)
	if err != nil {
		s.sessions.UpdateStatus(sessionID, models.SessionStatusFailed, err.Error())
		return nil, fmt.Errorf("detection failed for session %d: %w", sessionID, err)
	}

	if err := s.events.ReplaceResults(sessionID, result.Events, result.Cycles, result.Anomalies); err != nil {
		s.sessions.UpdateStatus(sessionID, models.SessionStatusFailed, err.Error())
		return nil, err
	}

	summary := map[string]interface{}{
		"segments":    result.SegmentCount,
		"events":      len(result.Events),
		"cycles":      len(result.Cycles),
		"anomalies":   len(result.Anomalies),
		"load_anchor": result.LoadAnchor,
		"dump_anchor": result.DumpAnchor,
		"statistics":  result.Statistics,
	}
	summaryJSON, _ := json.Marshal(summary)

	if err := s.sessions.SetSummary(sessionID, string(summaryJSON)); err != nil {
		return nil, err
	}
	if err := s.sessions.UpdateStatus(sessionID, models.SessionStatusCompleted, ""); err != nil {
		return nil, err
	}

	log.Printf("[DetectionService] Session %d completed: %d cycles, %d anomalies", sessionID, len(result.Cycles), len(result.Anomalies))
	return result, nil
}
