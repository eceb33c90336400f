package database

import (
	"database/sql"
	"fmt"
	"log"
)

// Migration represents one schema migration
type Migration struct {
	Version int
	Name    string
	SQL     string
}

// migrations is the ordered, append-only schema history
var migrations = []Migration{
	{
		Version: 1,
		Name:    "create_sessions",
		SQL: `
			CREATE TABLE IF NOT EXISTS sessions (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				name TEXT NOT NULL,
				vehicle_id TEXT DEFAULT '',
				sample_count INTEGER DEFAULT 0,
				start_time INTEGER DEFAULT 0,
				end_time INTEGER DEFAULT 0,
				status TEXT NOT NULL DEFAULT 'pending',
				error_message TEXT DEFAULT '',
				summary_json TEXT DEFAULT '',
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
			)
		`,
	},
	{
		Version: 2,
		Name:    "create_telemetry_samples",
		SQL: `
			CREATE TABLE IF NOT EXISTS telemetry_samples (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				session_id INTEGER NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
				ts INTEGER NOT NULL,
				ts_nanos INTEGER NOT NULL DEFAULT 0,
				latitude REAL,
				longitude REAL,
				speed_kmh REAL,
				accel_magnitude REAL,
				pitch REAL
			);
			CREATE INDEX IF NOT EXISTS idx_telemetry_session_ts ON telemetry_samples(session_id, ts, ts_nanos)
		`,
	},
	{
		Version: 3,
		Name:    "create_events",
		SQL: `
			CREATE TABLE IF NOT EXISTS events (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				session_id INTEGER NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
				cycle_id INTEGER,
				kind TEXT NOT NULL,
				start_ts INTEGER NOT NULL,
				end_ts INTEGER NOT NULL,
				duration_s REAL NOT NULL,
				latitude REAL NOT NULL,
				longitude REAL NOT NULL,
				cluster_key TEXT NOT NULL,
				is_complete INTEGER NOT NULL DEFAULT 0,
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
			);
			CREATE INDEX IF NOT EXISTS idx_events_session_start ON events(session_id, start_ts)
		`,
	},
	{
		Version: 4,
		Name:    "create_cycles",
		SQL: `
			CREATE TABLE IF NOT EXISTS cycles (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				session_id INTEGER NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
				number INTEGER NOT NULL,
				load_start INTEGER NOT NULL,
				load_end INTEGER NOT NULL,
				dump_start INTEGER NOT NULL,
				dump_end INTEGER NOT NULL,
				return_end INTEGER DEFAULT 0,
				load_s REAL NOT NULL,
				dump_s REAL NOT NULL,
				haul_loaded_s REAL NOT NULL,
				haul_empty_s REAL DEFAULT 0,
				haul_loaded_km REAL NOT NULL,
				haul_empty_km REAL DEFAULT 0
			);
			CREATE INDEX IF NOT EXISTS idx_cycles_session_number ON cycles(session_id, number)
		`,
	},
	{
		Version: 5,
		Name:    "create_anomalies",
		SQL: `
			CREATE TABLE IF NOT EXISTS anomalies (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				session_id INTEGER NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
				cycle_number INTEGER NOT NULL,
				phase TEXT NOT NULL,
				value REAL NOT NULL,
				threshold REAL NOT NULL,
				has_idle INTEGER NOT NULL DEFAULT 0,
				idle_start INTEGER DEFAULT 0,
				idle_end INTEGER DEFAULT 0,
				idle_s REAL DEFAULT 0,
				idle_lat REAL DEFAULT 0,
				idle_lon REAL DEFAULT 0
			)
		`,
	},
}

// Migrate applies pending migrations in version order
func Migrate(db *sql.DB) error {
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	applied := make(map[int]bool)
	rows, err := db.Query("SELECT version FROM migrations ORDER BY version")
	if err != nil {
		return fmt.Errorf("failed to query migrations: %w", err)
	}
	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan migration version: %w", err)
		}
		applied[version] = true
	}
	rows.Close()

	for _, m := range migrations {
		if applied[m.Version] {
			continue
		}
		if _, err := db.Exec(m.SQL); err != nil {
			return fmt.Errorf("failed to apply migration %d (%s): %w", m.Version, m.Name, err)
		}
		if _, err := db.Exec("INSERT INTO migrations (version, name) VALUES (?, ?)", m.Version, m.Name); err != nil {
			return fmt.Errorf("failed to record migration %d: %w", m.Version, err)
		}
		log.Printf("[Database] Applied migration %d: %s", m.Version, m.Name)
	}

	return nil
}
