package detection

import (
	"time"

	"github.com/gabrielsapucaia/trackingnew-sub000/internal/models"
	"github.com/gabrielsapucaia/trackingnew-sub000/internal/spatial"
)

// buildCycles derives the read-only cycle views from the validated
// events. A cycle exists only for a complete load with an assigned id.
func buildCycles(res *validation, samples []models.TelemetrySample, sessionID int64) []models.Cycle {
	var cycles []models.Cycle

	for i, load := range res.loads {
		if !load.isComplete || load.cycleID == nil || load.matchedDump == nil {
			continue
		}
		dump := load.matchedDump

		c := models.Cycle{
			SessionID: sessionID,
			Number:    *load.cycleID,
			LoadStart: load.start,
			LoadEnd:   load.end,
			DumpStart: dump.start,
			DumpEnd:   dump.end,

			LoadSeconds:       load.durationSeconds(),
			DumpSeconds:       dump.durationSeconds(),
			HaulLoadedSeconds: dump.start.Sub(load.end).Seconds(),
			HaulLoadedKm:      pathDistanceKm(samples, load.end, dump.start),
		}

		// The pairing horizon caps at the next load's start, not the dump's
		// end, so a long dump can overrun it; such a cycle has no empty leg.
		if i+1 < len(res.loads) {
			next := res.loads[i+1]
			if !next.start.Before(dump.end) {
				c.ReturnEnd = next.start
				c.HaulEmptySeconds = next.start.Sub(dump.end).Seconds()
				c.HaulEmptyKm = pathDistanceKm(samples, dump.end, next.start)
			}
		}

		for _, wait := range res.waits {
			if wait.cycleID != nil && *wait.cycleID == c.Number {
				c.Waits = append(c.Waits, toEvent(sessionID, wait.candidate, wait.cycleID, false))
			}
		}

		cycles = append(cycles, c)
	}

	return cycles
}

// pathDistanceKm sums the consecutive great-circle hops of the raw
// telemetry inside [from, to], in kilometres.
func pathDistanceKm(samples []models.TelemetrySample, from, to time.Time) float64 {
	var (
		total   float64
		prevSet bool
		prevLat float64
		prevLon float64
	)

	for _, s := range samples {
		if !s.HasFix() || s.Timestamp.Before(from) {
			continue
		}
		if s.Timestamp.After(to) {
			break
		}
		if prevSet {
			total += spatial.HaversineDistance(prevLat, prevLon, s.Latitude, s.Longitude)
		}
		prevLat, prevLon = s.Latitude, s.Longitude
		prevSet = true
	}

	return total / 1000.0
}
