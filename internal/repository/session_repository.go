package repository

import (
	"database/sql"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/gabrielsapucaia/trackingnew-sub000/internal/database"
	"github.com/gabrielsapucaia/trackingnew-sub000/internal/models"
)

// SessionRepository handles database operations for telemetry sessions
type SessionRepository struct {
	db *sql.DB
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create inserts a session together with its ordered samples
func (r *SessionRepository) Create(session *models.Session, samples []models.TelemetrySample) error {
	if len(samples) > 0 {
		session.SampleCount = int64(len(samples))
		session.StartTime = samples[0].Timestamp.Unix()
		session.EndTime = samples[len(samples)-1].Timestamp.Unix()
	}
	if session.Status == "" {
		session.Status = models.SessionStatusPending
	}

	return database.Transaction(r.db, func(tx *sql.Tx) error {
		result, err := tx.Exec(`
			INSERT INTO sessions (name, vehicle_id, sample_count, start_time, end_time, status)
			VALUES (?, ?, ?, ?, ?, ?)
		`, session.Name, session.VehicleID, session.SampleCount, session.StartTime, session.EndTime, session.Status)
		if err != nil {
			return fmt.Errorf("failed to insert session: %w", err)
		}

		session.ID, err = result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get session id: %w", err)
		}

		stmt, err := tx.Prepare(`
			INSERT INTO telemetry_samples (session_id, ts, ts_nanos, latitude, longitude, speed_kmh, accel_magnitude, pitch)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare sample insert: %w", err)
		}
		defer stmt.Close()

		for _, s := range samples {
			_, err := stmt.Exec(
				session.ID,
				s.Timestamp.Unix(),
				s.Timestamp.Nanosecond(),
				s.Latitude,
				s.Longitude,
				s.SpeedKmh,
				nullableFloat(s.AccelMagnitude),
				nullableFloat(s.Pitch),
			)
			if err != nil {
				return fmt.Errorf("failed to insert sample: %w", err)
			}
		}

		return nil
	})
}

// GetSamples returns the ordered sample sequence of a session
func (r *SessionRepository) GetSamples(sessionID int64) ([]models.TelemetrySample, error) {
	rows, err := r.db.Query(`
		SELECT ts, ts_nanos, latitude, longitude, speed_kmh, accel_magnitude, pitch
		FROM telemetry_samples
		WHERE session_id = ?
		ORDER BY ts, ts_nanos, id
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query samples: %w", err)
	}
	defer rows.Close()

	var samples []models.TelemetrySample
	for rows.Next() {
		var (
			ts, nanos int64
			lat, lon  sql.NullFloat64
			speed     sql.NullFloat64
			accel     sql.NullFloat64
			pitch     sql.NullFloat64
		)
		if err := rows.Scan(&ts, &nanos, &lat, &lon, &speed, &accel, &pitch); err != nil {
			return nil, fmt.Errorf("failed to scan sample: %w", err)
		}

		samples = append(samples, models.TelemetrySample{
			Timestamp:      time.Unix(ts, nanos).UTC(),
			Latitude:       floatOrNaN(lat),
			Longitude:      floatOrNaN(lon),
			SpeedKmh:       floatOrNaN(speed),
			AccelMagnitude: floatOrNaN(accel),
			Pitch:          floatOrNaN(pitch),
		})
	}

	return samples, rows.Err()
}

// GetByID retrieves a single session
func (r *SessionRepository) GetByID(id int64) (*models.Session, error) {
	var s models.Session
	err := r.db.QueryRow(`
		SELECT id, name, vehicle_id, sample_count, start_time, end_time, status, error_message, summary_json, created_at, updated_at
		FROM sessions WHERE id = ?
	`, id).Scan(&s.ID, &s.Name, &s.VehicleID, &s.SampleCount, &s.StartTime, &s.EndTime,
		&s.Status, &s.ErrorMessage, &s.SummaryJSON, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to get session %d: %w", id, err)
	}
	return &s, nil
}

// List retrieves sessions with filtering and pagination
func (r *SessionRepository) List(filter models.SessionFilter) ([]models.Session, int64, error) {
	query := `SELECT id, name, vehicle_id, sample_count, start_time, end_time, status, error_message, summary_json, created_at, updated_at FROM sessions`

	var conditions []string
	var args []interface{}

	if filter.VehicleID != "" {
		conditions = append(conditions, "vehicle_id = ?")
		args = append(args, filter.VehicleID)
	}
	if filter.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, filter.Status)
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := "SELECT COUNT(*) FROM sessions"
	if len(conditions) > 0 {
		countQuery += " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int64
	if err := r.db.QueryRow(countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count sessions: %w", err)
	}

	page, pageSize := normalizePage(filter.Page, filter.PageSize)
	query += " ORDER BY id DESC LIMIT ? OFFSET ?"
	args = append(args, pageSize, (page-1)*pageSize)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []models.Session
	for rows.Next() {
		var s models.Session
		if err := rows.Scan(&s.ID, &s.Name, &s.VehicleID, &s.SampleCount, &s.StartTime, &s.EndTime,
			&s.Status, &s.ErrorMessage, &s.SummaryJSON, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, s)
	}

	return sessions, total, rows.Err()
}

// UpdateStatus updates the detection lifecycle status of a session
func (r *SessionRepository) UpdateStatus(id int64, status, errorMessage string) error {
	_, err := r.db.Exec(`
		UPDATE sessions
		SET status = ?, error_message = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, status, errorMessage, id)
	if err != nil {
		return fmt.Errorf("failed to update session status: %w", err)
	}
	return nil
}

// SetSummary stores the detection summary JSON of a completed run
func (r *SessionRepository) SetSummary(id int64, summaryJSON string) error {
	_, err := r.db.Exec(`
		UPDATE sessions
		SET summary_json = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, summaryJSON, id)
	if err != nil {
		return fmt.Errorf("failed to set session summary: %w", err)
	}
	return nil
}

func nullableFloat(v float64) interface{} {
	if math.IsNaN(v) {
		return nil
	}
	return v
}

func floatOrNaN(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 100
	}
	if pageSize > 1000 {
		pageSize = 1000
	}
	return page, pageSize
}
