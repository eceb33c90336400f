package service

import (
	"github.com/gabrielsapucaia/trackingnew-sub000/internal/models"
	"github.com/gabrielsapucaia/trackingnew-sub000/internal/repository"
)

// EventService handles business logic for detected events and cycles
type EventService struct {
	repo *repository.EventRepository
}

// NewEventService creates a new event service
func NewEventService(repo *repository.EventRepository) *EventService {
	return &EventService{repo: repo}
}

// GetEvents retrieves events with filtering and pagination
func (s *EventService) GetEvents(filter models.EventFilter) ([]models.Event, int64, error) {
	return s.repo.GetEvents(filter)
}

// GetCycles retrieves the cycles of a session
func (s *EventService) GetCycles(filter models.CycleFilter) ([]models.Cycle, error) {
	return s.repo.GetCycles(filter)
}

// GetAnomalies retrieves the anomalies of a session
func (s *EventService) GetAnomalies(sessionID int64) ([]models.Anomaly, error) {
	return s.repo.GetAnomalies(sessionID)
}
