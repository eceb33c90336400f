package ingest

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadSamples(t *testing.T) {
	t.Run("parses a well-formed session", func(t *testing.T) {
		in := strings.Join([]string{
			"time,latitude,longitude,speed_kmh,linear_accel_magnitude,pitch",
			"2025-06-01T08:00:00Z,-19.900,-43.900,0.2,0.08,-1.5",
			"2025-06-01T08:00:01Z,-19.900,-43.900,0.3,0.02,-1.4",
		}, "\n")

		samples, err := ReadSamples(strings.NewReader(in))
		require.NoError(t, err)
		require.Len(t, samples, 2)

		first := samples[0]
		assert.Equal(t, time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC), first.Timestamp)
		assert.Equal(t, -19.900, first.Latitude)
		assert.Equal(t, 0.2, first.SpeedKmh)
		assert.Equal(t, 0.08, first.AccelMagnitude)
		assert.Equal(t, -1.5, first.Pitch)
		assert.True(t, first.HasAccel())
		assert.True(t, first.HasPitch())
	})

	t.Run("optional columns become NaN", func(t *testing.T) {
		in := strings.Join([]string{
			"time,latitude,longitude,speed_kmh,linear_accel_magnitude,pitch",
			"2025-06-01T08:00:00Z,-19.900,-43.900,0.2,,",
		}, "\n")

		samples, err := ReadSamples(strings.NewReader(in))
		require.NoError(t, err)
		require.Len(t, samples, 1)
		assert.True(t, math.IsNaN(samples[0].AccelMagnitude))
		assert.True(t, math.IsNaN(samples[0].Pitch))
		assert.False(t, samples[0].HasAccel())
	})

	t.Run("tolerates missing optional columns entirely", func(t *testing.T) {
		in := strings.Join([]string{
			"time,latitude,longitude,speed_kmh",
			"2025-06-01T08:00:00Z,-19.900,-43.900,0.2",
		}, "\n")

		samples, err := ReadSamples(strings.NewReader(in))
		require.NoError(t, err)
		require.Len(t, samples, 1)
		assert.True(t, math.IsNaN(samples[0].AccelMagnitude))
	})

	t.Run("skips unparseable rows", func(t *testing.T) {
		in := strings.Join([]string{
			"time,latitude,longitude,speed_kmh",
			"2025-06-01T08:00:00Z,-19.900,-43.900,0.2",
			"not-a-time,-19.900,-43.900,0.2",
			"2025-06-01T08:00:02Z,broken,-43.900,0.2",
			"2025-06-01T08:00:03Z,-19.900,-43.900,0.4",
		}, "\n")

		samples, err := ReadSamples(strings.NewReader(in))
		require.NoError(t, err)
		require.Len(t, samples, 2)
		assert.Equal(t, 0.4, samples[1].SpeedKmh)
	})

	t.Run("rejects out-of-order timestamps", func(t *testing.T) {
		in := strings.Join([]string{
			"time,latitude,longitude,speed_kmh",
			"2025-06-01T08:00:05Z,-19.900,-43.900,0.2",
			"2025-06-01T08:00:01Z,-19.900,-43.900,0.2",
		}, "\n")

		_, err := ReadSamples(strings.NewReader(in))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "out-of-order timestamp")
	})

	t.Run("rejects a header without the required columns", func(t *testing.T) {
		in := "time,latitude,longitude\n2025-06-01T08:00:00Z,-19.9,-43.9\n"
		_, err := ReadSamples(strings.NewReader(in))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "speed_kmh")
	})

	t.Run("header matching is case-insensitive", func(t *testing.T) {
		in := strings.Join([]string{
			"Time,Latitude,Longitude,Speed_KmH",
			"2025-06-01T08:00:00Z,-19.900,-43.900,0.2",
		}, "\n")

		samples, err := ReadSamples(strings.NewReader(in))
		require.NoError(t, err)
		assert.Len(t, samples, 1)
	})
}
