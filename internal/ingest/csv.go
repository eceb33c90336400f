// Package ingest parses the external loader's session format into the
// ordered in-memory sample sequence the detection engine consumes.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/gabrielsapucaia/trackingnew-sub000/internal/models"
)

// Expected column names. Extra columns are ignored; pitch and the
// acceleration magnitude are optional.
const (
	colTime  = "time"
	colLat   = "latitude"
	colLon   = "longitude"
	colSpeed = "speed_kmh"
	colAccel = "linear_accel_magnitude"
	colPitch = "pitch"
)

// ReadSamples reads a telemetry session CSV into ordered samples.
// Rows with an unparseable timestamp, position or speed are skipped;
// out-of-order timestamps are a caller error and abort the read.
func ReadSamples(r io.Reader) ([]models.TelemetrySample, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(strings.ToLower(name))] = i
	}
	for _, required := range []string{colTime, colLat, colLon, colSpeed} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("missing required column %q", required)
		}
	}

	var samples []models.TelemetrySample
	var last time.Time
	line := 1

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV record: %w", err)
		}
		line++

		ts, err := time.Parse(time.RFC3339, field(record, cols, colTime))
		if err != nil {
			continue // unparseable row, local skip
		}
		if !last.IsZero() && ts.Before(last) {
			return nil, fmt.Errorf("out-of-order timestamp at line %d: %s before %s", line, ts.Format(time.RFC3339), last.Format(time.RFC3339))
		}

		lat, latOK := parseFloat(field(record, cols, colLat))
		lon, lonOK := parseFloat(field(record, cols, colLon))
		speed, speedOK := parseFloat(field(record, cols, colSpeed))
		if !latOK || !lonOK || !speedOK {
			continue
		}

		accel := math.NaN()
		if v, ok := parseFloat(field(record, cols, colAccel)); ok {
			accel = v
		}
		pitch := math.NaN()
		if v, ok := parseFloat(field(record, cols, colPitch)); ok {
			pitch = v
		}

		samples = append(samples, models.TelemetrySample{
			Timestamp:      ts,
			Latitude:       lat,
			Longitude:      lon,
			SpeedKmh:       speed,
			AccelMagnitude: accel,
			Pitch:          pitch,
		})
		last = ts
	}

	return samples, nil
}

func field(record []string, cols map[string]int, name string) string {
	idx, ok := cols[name]
	if !ok || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

func parseFloat(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}
