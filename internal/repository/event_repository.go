package repository

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/gabrielsapucaia/trackingnew-sub000/internal/database"
	"github.com/gabrielsapucaia/trackingnew-sub000/internal/models"
)

// EventRepository handles database operations for detected events, cycles
// and anomalies
type EventRepository struct {
	db *sql.DB
}

// NewEventRepository creates a new event repository
func NewEventRepository(db *sql.DB) *EventRepository {
	return &EventRepository{db: db}
}

// ReplaceResults atomically replaces a session's detection output.
// Re-running detection overwrites the previous run.
func (r *EventRepository) ReplaceResults(sessionID int64, events []models.Event, cycles []models.Cycle, anomalies []models.Anomaly) error {
	return database.Transaction(r.db, func(tx *sql.Tx) error {
		for _, table := range []string{"events", "cycles", "anomalies"} {
			if _, err := tx.Exec("DELETE FROM "+table+" WHERE session_id = ?", sessionID); err != nil {
				return fmt.Errorf("failed to clear %s: %w", table, err)
			}
		}

		eventStmt, err := tx.Prepare(`
			INSERT INTO events (session_id, cycle_id, kind, start_ts, end_ts, duration_s, latitude, longitude, cluster_key, is_complete)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare event insert: %w", err)
		}
		defer eventStmt.Close()

		for _, e := range events {
			var cycleID interface{}
			if e.CycleID != nil {
				cycleID = *e.CycleID
			}
			if _, err := eventStmt.Exec(sessionID, cycleID, string(e.Kind),
				e.Start.Unix(), e.End.Unix(), e.DurationSeconds,
				e.Latitude, e.Longitude, e.ClusterKey, boolToInt(e.IsComplete)); err != nil {
				return fmt.Errorf("failed to insert event: %w", err)
			}
		}

		cycleStmt, err := tx.Prepare(`
			INSERT INTO cycles (session_id, number, load_start, load_end, dump_start, dump_end, return_end,
				load_s, dump_s, haul_loaded_s, haul_empty_s, haul_loaded_km, haul_empty_km)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare cycle insert: %w", err)
		}
		defer cycleStmt.Close()

		for _, c := range cycles {
			returnEnd := int64(0)
			if c.HasReturn() {
				returnEnd = c.ReturnEnd.Unix()
			}
			if _, err := cycleStmt.Exec(sessionID, c.Number,
				c.LoadStart.Unix(), c.LoadEnd.Unix(), c.DumpStart.Unix(), c.DumpEnd.Unix(), returnEnd,
				c.LoadSeconds, c.DumpSeconds, c.HaulLoadedSeconds, c.HaulEmptySeconds,
				c.HaulLoadedKm, c.HaulEmptyKm); err != nil {
				return fmt.Errorf("failed to insert cycle: %w", err)
			}
		}

		anomalyStmt, err := tx.Prepare(`
			INSERT INTO anomalies (session_id, cycle_number, phase, value, threshold, has_idle, idle_start, idle_end, idle_s, idle_lat, idle_lon)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare anomaly insert: %w", err)
		}
		defer anomalyStmt.Close()

		for _, a := range anomalies {
			idleStart, idleEnd := int64(0), int64(0)
			if a.HasIdle {
				idleStart, idleEnd = a.IdleStart.Unix(), a.IdleEnd.Unix()
			}
			if _, err := anomalyStmt.Exec(sessionID, a.CycleNumber, a.Phase, a.Value, a.Threshold,
				boolToInt(a.HasIdle), idleStart, idleEnd, a.IdleSeconds, a.IdleLat, a.IdleLon); err != nil {
				return fmt.Errorf("failed to insert anomaly: %w", err)
			}
		}

		return nil
	})
}

// GetEvents retrieves events with filtering and pagination, ordered by
// start time
func (r *EventRepository) GetEvents(filter models.EventFilter) ([]models.Event, int64, error) {
	query := `SELECT id, session_id, cycle_id, kind, start_ts, end_ts, duration_s, latitude, longitude, cluster_key, is_complete FROM events`

	var conditions []string
	var args []interface{}

	if filter.SessionID > 0 {
		conditions = append(conditions, "session_id = ?")
		args = append(args, filter.SessionID)
	}
	if filter.Kind != "" {
		conditions = append(conditions, "kind = ?")
		args = append(args, filter.Kind)
	}
	if filter.CycleID > 0 {
		conditions = append(conditions, "cycle_id = ?")
		args = append(args, filter.CycleID)
	}
	if filter.StartTime > 0 {
		conditions = append(conditions, "start_ts >= ?")
		args = append(args, filter.StartTime)
	}
	if filter.EndTime > 0 {
		conditions = append(conditions, "end_ts <= ?")
		args = append(args, filter.EndTime)
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := "SELECT COUNT(*) FROM events"
	if len(conditions) > 0 {
		countQuery += " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int64
	if err := r.db.QueryRow(countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count events: %w", err)
	}

	page, pageSize := normalizePage(filter.Page, filter.PageSize)
	query += " ORDER BY start_ts, id LIMIT ? OFFSET ?"
	args = append(args, pageSize, (page-1)*pageSize)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		var (
			e        models.Event
			cycleID  sql.NullInt64
			start    int64
			end      int64
			complete int
			kind     string
		)
		if err := rows.Scan(&e.ID, &e.SessionID, &cycleID, &kind, &start, &end,
			&e.DurationSeconds, &e.Latitude, &e.Longitude, &e.ClusterKey, &complete); err != nil {
			return nil, 0, fmt.Errorf("failed to scan event: %w", err)
		}
		e.Kind = models.EventKind(kind)
		e.Start = time.Unix(start, 0).UTC()
		e.End = time.Unix(end, 0).UTC()
		e.IsComplete = complete != 0
		if cycleID.Valid {
			id := int(cycleID.Int64)
			e.CycleID = &id
		}
		events = append(events, e)
	}

	return events, total, rows.Err()
}

// GetCycles retrieves cycle views for a session, ordered by number
func (r *EventRepository) GetCycles(filter models.CycleFilter) ([]models.Cycle, error) {
	query := `SELECT id, session_id, number, load_start, load_end, dump_start, dump_end, return_end,
		load_s, dump_s, haul_loaded_s, haul_empty_s, haul_loaded_km, haul_empty_km FROM cycles`

	var conditions []string
	var args []interface{}

	if filter.SessionID > 0 {
		conditions = append(conditions, "session_id = ?")
		args = append(args, filter.SessionID)
	}
	if filter.Number > 0 {
		conditions = append(conditions, "number = ?")
		args = append(args, filter.Number)
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY number"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query cycles: %w", err)
	}
	defer rows.Close()

	var cycles []models.Cycle
	for rows.Next() {
		var c models.Cycle
		var loadStart, loadEnd, dumpStart, dumpEnd, retEnd int64
		if err := rows.Scan(&c.ID, &c.SessionID, &c.Number, &loadStart, &loadEnd, &dumpStart, &dumpEnd, &retEnd,
			&c.LoadSeconds, &c.DumpSeconds, &c.HaulLoadedSeconds, &c.HaulEmptySeconds,
			&c.HaulLoadedKm, &c.HaulEmptyKm); err != nil {
			return nil, fmt.Errorf("failed to scan cycle: %w", err)
		}
		c.LoadStart = time.Unix(loadStart, 0).UTC()
		c.LoadEnd = time.Unix(loadEnd, 0).UTC()
		c.DumpStart = time.Unix(dumpStart, 0).UTC()
		c.DumpEnd = time.Unix(dumpEnd, 0).UTC()
		if retEnd > 0 {
			c.ReturnEnd = time.Unix(retEnd, 0).UTC()
		}
		cycles = append(cycles, c)
	}

	return cycles, rows.Err()
}

// GetAnomalies retrieves the anomalies of a session
func (r *EventRepository) GetAnomalies(sessionID int64) ([]models.Anomaly, error) {
	rows, err := r.db.Query(`
		SELECT id, session_id, cycle_number, phase, value, threshold, has_idle, idle_start, idle_end, idle_s, idle_lat, idle_lon
		FROM anomalies
		WHERE session_id = ?
		ORDER BY cycle_number, phase
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query anomalies: %w", err)
	}
	defer rows.Close()

	var anomalies []models.Anomaly
	for rows.Next() {
		var (
			a                  models.Anomaly
			hasIdle            int
			idleStart, idleEnd int64
		)
		if err := rows.Scan(&a.ID, &a.SessionID, &a.CycleNumber, &a.Phase, &a.Value, &a.Threshold,
			&hasIdle, &idleStart, &idleEnd, &a.IdleSeconds, &a.IdleLat, &a.IdleLon); err != nil {
			return nil, fmt.Errorf("failed to scan anomaly: %w", err)
		}
		a.HasIdle = hasIdle != 0
		if a.HasIdle {
			a.IdleStart = time.Unix(idleStart, 0).UTC()
			a.IdleEnd = time.Unix(idleEnd, 0).UTC()
		}
		anomalies = append(anomalies, a)
	}

	return anomalies, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
