package detection

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gabrielsapucaia/trackingnew-sub000/internal/models"
)

func TestBuildCycles(t *testing.T) {
	v := NewValidator(DefaultParams())
	loadLat, loadLon := -19.900, -43.900
	dumpLat, dumpLon := -19.910, -43.900

	t.Run("derives phase times from the validated pair", func(t *testing.T) {
		res := v.Validate([]candidate{
			cand(models.EventLoad, 0, 150, loadLat, loadLon),
			cand(models.EventDump, 450, 60, dumpLat, dumpLon),
			cand(models.EventLoad, 810, 150, loadLat, loadLon),
		})

		cycles := buildCycles(res, nil, 1)
		require.Len(t, cycles, 1)

		c := cycles[0]
		assert.Equal(t, 1, c.Number)
		assert.InDelta(t, 150, c.LoadSeconds, 1e-9)
		assert.InDelta(t, 300, c.HaulLoadedSeconds, 1e-9)
		assert.True(t, c.HasReturn())
		assert.Equal(t, testStart.Add(810*time.Second), c.ReturnEnd)
		assert.InDelta(t, 300, c.HaulEmptySeconds, 1e-9)
	})

	t.Run("drops the empty leg when the dump overruns the next load", func(t *testing.T) {
		// The dump starts inside the pairing horizon but its tail runs past
		// the second load's start.
		res := v.Validate([]candidate{
			cand(models.EventLoad, 0, 150, loadLat, loadLon),
			cand(models.EventDump, 500, 300, dumpLat, dumpLon),
			cand(models.EventLoad, 700, 150, loadLat, loadLon),
		})

		require.Len(t, res.loads, 2)
		require.True(t, res.loads[0].isComplete)

		cycles := buildCycles(res, nil, 1)
		require.Len(t, cycles, 1)
		assert.False(t, cycles[0].HasReturn())
		assert.Zero(t, cycles[0].HaulEmptySeconds)
		assert.Zero(t, cycles[0].HaulEmptyKm)
	})
}
