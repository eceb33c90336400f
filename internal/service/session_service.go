package service

import (
	"fmt"
	"io"

	"github.com/gabrielsapucaia/trackingnew-sub000/internal/ingest"
	"github.com/gabrielsapucaia/trackingnew-sub000/internal/models"
	"github.com/gabrielsapucaia/trackingnew-sub000/internal/repository"
)

// SessionService handles business logic for telemetry sessions
type SessionService struct {
	repo *repository.SessionRepository
}

// NewSessionService creates a new session service
func NewSessionService(repo *repository.SessionRepository) *SessionService {
	return &SessionService{repo: repo}
}

// Ingest parses a session CSV and stores it for detection
func (s *SessionService) Ingest(name, vehicleID string, r io.Reader) (*models.Session, error) {
	samples, err := ingest.ReadSamples(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse session %q: %w", name, err)
	}
	if len(samples) == 0 {
		return nil, fmt.Errorf("session %q contains no usable samples", name)
	}

	session := &models.Session{Name: name, VehicleID: vehicleID}
	if err := s.repo.Create(session, samples); err != nil {
		return nil, err
	}
	return session, nil
}

// List retrieves sessions with filtering and pagination
func (s *SessionService) List(filter models.SessionFilter) ([]models.Session, int64, error) {
	return s.repo.List(filter)
}

// GetByID retrieves a single session
func (s *SessionService) GetByID(id int64) (*models.Session, error) {
	return s.repo.GetByID(id)
}
