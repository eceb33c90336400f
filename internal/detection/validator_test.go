package detection

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gabrielsapucaia/trackingnew-sub000/internal/models"
	"github.com/gabrielsapucaia/trackingnew-sub000/internal/spatial"
)

// cand builds a classified candidate offset in seconds from testStart
func cand(kind models.EventKind, startSec, durSec int, lat, lon float64) candidate {
	start := testStart.Add(time.Duration(startSec) * time.Second)
	return candidate{
		kind:       kind,
		start:      start,
		end:        start.Add(time.Duration(durSec) * time.Second),
		lat:        lat,
		lon:        lon,
		clusterKey: spatial.CellKey(lat, lon, DefaultParams().RoundDecimals),
	}
}

func TestValidatorLoadMerge(t *testing.T) {
	v := NewValidator(DefaultParams())

	t.Run("merges adjacent load fragments", func(t *testing.T) {
		res := v.Validate([]candidate{
			cand(models.EventLoad, 0, 100, -19.9000, -43.900),
			cand(models.EventLoad, 160, 300, -19.9002, -43.900),
		})

		require.Len(t, res.loads, 1)
		merged := res.loads[0]
		assert.Equal(t, testStart, merged.start)
		assert.Equal(t, testStart.Add(460*time.Second), merged.end)
		// Duration-weighted position: (−19.9000·100 + −19.9002·300) / 400
		assert.InDelta(t, -19.90015, merged.lat, 1e-9)
	})

	t.Run("merging contiguous fragments is seamless", func(t *testing.T) {
		res := v.Validate([]candidate{
			cand(models.EventLoad, 0, 100, -19.900, -43.900),
			cand(models.EventLoad, 100, 100, -19.900, -43.900),
		})

		require.Len(t, res.loads, 1)
		assert.Equal(t, testStart, res.loads[0].start)
		assert.Equal(t, testStart.Add(200*time.Second), res.loads[0].end)
		assert.InDelta(t, -19.900, res.loads[0].lat, 1e-9)
	})

	t.Run("does not merge beyond the duration cap", func(t *testing.T) {
		res := v.Validate([]candidate{
			cand(models.EventLoad, 0, 400, -19.900, -43.900),
			cand(models.EventLoad, 500, 400, -19.900, -43.900),
		})
		assert.Len(t, res.loads, 2)
	})

	t.Run("does not merge across a long gap", func(t *testing.T) {
		res := v.Validate([]candidate{
			cand(models.EventLoad, 0, 100, -19.900, -43.900),
			cand(models.EventLoad, 1100, 100, -19.900, -43.900), // 16.7 min later
		})
		assert.Len(t, res.loads, 2)
	})

	t.Run("does not merge distant loads", func(t *testing.T) {
		res := v.Validate([]candidate{
			cand(models.EventLoad, 0, 100, -19.900, -43.900),
			cand(models.EventLoad, 160, 100, -19.910, -43.900), // ~1.1 km away
		})
		assert.Len(t, res.loads, 2)
	})
}

func TestValidatorCycleIDs(t *testing.T) {
	v := NewValidator(DefaultParams())
	loadLat, loadLon := -19.900, -43.900
	dumpLat, dumpLon := -19.910, -43.900

	t.Run("complete cycles get monotonic ids and dumps inherit them", func(t *testing.T) {
		res := v.Validate([]candidate{
			cand(models.EventLoad, 0, 150, loadLat, loadLon),
			cand(models.EventDump, 600, 60, dumpLat, dumpLon),
			cand(models.EventLoad, 2000, 150, loadLat, loadLon),
			cand(models.EventDump, 2600, 60, dumpLat, dumpLon),
		})

		require.Len(t, res.loads, 2)
		require.Len(t, res.dumps, 2)

		for i, load := range res.loads {
			assert.True(t, load.isComplete)
			require.NotNil(t, load.cycleID)
			assert.Equal(t, i+1, *load.cycleID)
			require.NotNil(t, res.dumps[i].cycleID)
			assert.Equal(t, i+1, *res.dumps[i].cycleID)
		}
	})

	t.Run("dump just inside the pairing timeout completes the load", func(t *testing.T) {
		res := v.Validate([]candidate{
			cand(models.EventLoad, 0, 300, loadLat, loadLon),
			cand(models.EventDump, 300+int((3*time.Hour+59*time.Minute).Seconds()), 60, dumpLat, dumpLon),
		})

		require.Len(t, res.loads, 1)
		assert.True(t, res.loads[0].isComplete)
	})

	t.Run("dump past the pairing timeout leaves the load incomplete", func(t *testing.T) {
		res := v.Validate([]candidate{
			cand(models.EventLoad, 0, 300, loadLat, loadLon),
			cand(models.EventDump, 300+int((4*time.Hour+time.Minute).Seconds()), 60, dumpLat, dumpLon),
		})

		require.Len(t, res.loads, 1)
		load := res.loads[0]
		assert.False(t, load.isComplete)
		// First load overall still receives an id.
		require.NotNil(t, load.cycleID)
		assert.Equal(t, 1, *load.cycleID)
		assert.Nil(t, res.dumps[0].cycleID)
	})

	t.Run("the next load caps the pairing horizon", func(t *testing.T) {
		// The dump lies within four hours of the first load but after the
		// second load started, so it belongs to the second cycle.
		res := v.Validate([]candidate{
			cand(models.EventLoad, 0, 150, loadLat, loadLon),
			cand(models.EventLoad, 3600, 150, loadLat, loadLon),
			cand(models.EventDump, 4200, 60, dumpLat, dumpLon),
		})

		require.Len(t, res.loads, 2)
		assert.False(t, res.loads[0].isComplete)
		assert.True(t, res.loads[1].isComplete)
		require.NotNil(t, res.dumps[0].cycleID)
		assert.Equal(t, *res.loads[1].cycleID, *res.dumps[0].cycleID)
	})

	t.Run("only the first of consecutive incomplete loads gets an id", func(t *testing.T) {
		hour := int(time.Hour.Seconds())
		res := v.Validate([]candidate{
			cand(models.EventLoad, 0, 300, loadLat, loadLon),
			cand(models.EventDump, 900, 60, dumpLat, dumpLon),
			cand(models.EventLoad, 1*hour, 300, loadLat, loadLon),
			cand(models.EventLoad, 2*hour, 300, loadLat, loadLon),
			cand(models.EventLoad, 5*hour, 300, loadLat, loadLon),
			cand(models.EventDump, 5*hour+600, 60, dumpLat, dumpLon),
		})

		require.Len(t, res.loads, 4)

		assert.True(t, res.loads[0].isComplete)
		require.NotNil(t, res.loads[0].cycleID)
		assert.Equal(t, 1, *res.loads[0].cycleID)

		// Incomplete after a complete load: id assigned.
		assert.False(t, res.loads[1].isComplete)
		require.NotNil(t, res.loads[1].cycleID)
		assert.Equal(t, 2, *res.loads[1].cycleID)

		// Incomplete after an incomplete load: no id.
		assert.False(t, res.loads[2].isComplete)
		assert.Nil(t, res.loads[2].cycleID)

		// Ids stay monotonic across the hole.
		assert.True(t, res.loads[3].isComplete)
		require.NotNil(t, res.loads[3].cycleID)
		assert.Equal(t, 3, *res.loads[3].cycleID)
	})
}

func TestValidatorWaits(t *testing.T) {
	v := NewValidator(DefaultParams())
	loadLat, loadLon := -19.900, -43.900
	dumpLat, dumpLon := -19.910, -43.900

	t.Run("waits inherit the id of the nearest operation", func(t *testing.T) {
		res := v.Validate([]candidate{
			cand(models.EventLoad, 100, 150, loadLat, loadLon),
			cand(models.EventDump, 600, 60, dumpLat, dumpLon),
			cand(models.EventWaitBeforeDump, 300, 40, dumpLat, dumpLon),
		})

		require.Len(t, res.waits, 1)
		require.NotNil(t, res.waits[0].cycleID)
		assert.Equal(t, 1, *res.waits[0].cycleID)
	})

	t.Run("waits outside the attach window stay unassigned", func(t *testing.T) {
		res := v.Validate([]candidate{
			cand(models.EventLoad, 100, 150, loadLat, loadLon),
			cand(models.EventDump, 600, 60, dumpLat, dumpLon),
			cand(models.EventWaitBeforeDump, 2000, 40, dumpLat, dumpLon),
		})

		require.Len(t, res.waits, 1)
		assert.Nil(t, res.waits[0].cycleID)
	})

	t.Run("folds a leading wait back into its load", func(t *testing.T) {
		res := v.Validate([]candidate{
			cand(models.EventWaitBeforeLoad, 0, 95, loadLat, loadLon),
			cand(models.EventLoad, 100, 200, loadLat, loadLon),
			cand(models.EventDump, 700, 60, dumpLat, dumpLon),
		})

		require.Len(t, res.loads, 1)
		assert.Empty(t, res.waits)
		assert.Equal(t, testStart, res.loads[0].start)
		assert.Equal(t, testStart.Add(300*time.Second), res.loads[0].end)
	})

	t.Run("does not fold waits of other kinds", func(t *testing.T) {
		res := v.Validate([]candidate{
			cand(models.EventWaitBeforeDump, 0, 95, loadLat, loadLon),
			cand(models.EventLoad, 100, 200, loadLat, loadLon),
			cand(models.EventDump, 700, 60, dumpLat, dumpLon),
		})

		require.Len(t, res.waits, 1)
		assert.Equal(t, testStart.Add(100*time.Second), res.loads[0].start)
	})

	t.Run("does not fold across a gap", func(t *testing.T) {
		res := v.Validate([]candidate{
			cand(models.EventWaitBeforeLoad, 0, 90, loadLat, loadLon), // 10 s before the load
			cand(models.EventLoad, 100, 200, loadLat, loadLon),
			cand(models.EventDump, 700, 60, dumpLat, dumpLon),
		})

		require.Len(t, res.waits, 1)
		assert.Equal(t, testStart.Add(100*time.Second), res.loads[0].start)
	})
}

func TestValidationEvents(t *testing.T) {
	v := NewValidator(DefaultParams())

	res := v.Validate([]candidate{
		cand(models.EventDump, 600, 60, -19.910, -43.900),
		cand(models.EventLoad, 0, 150, -19.900, -43.900),
		cand(models.EventWaitBeforeDump, 300, 40, -19.910, -43.900),
	})

	events := res.Events(7)
	require.Len(t, events, 3)

	// Output is ordered by start regardless of candidate order.
	assert.Equal(t, models.EventLoad, events[0].Kind)
	assert.Equal(t, models.EventWaitBeforeDump, events[1].Kind)
	assert.Equal(t, models.EventDump, events[2].Kind)

	for _, e := range events {
		assert.EqualValues(t, 7, e.SessionID)
		assert.Equal(t, e.End.Sub(e.Start).Seconds(), e.DurationSeconds)
	}
	assert.True(t, events[0].IsComplete)
}
