package detection

import (
	"math"
	"time"

	"github.com/gabrielsapucaia/trackingnew-sub000/internal/models"
)

var testStart = time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

// sampleSeq builds ordered synthetic telemetry for tests
type sampleSeq struct {
	now     time.Time
	samples []models.TelemetrySample
}

func newSeq(start time.Time) *sampleSeq {
	return &sampleSeq{now: start}
}

// stop appends n stationary samples at 1 s intervals. accel may be NaN
// to model a silent accelerometer.
func (q *sampleSeq) stop(lat, lon, speed, accel float64, n int) *sampleSeq {
	for i := 0; i < n; i++ {
		q.samples = append(q.samples, models.TelemetrySample{
			Timestamp:      q.now,
			Latitude:       lat,
			Longitude:      lon,
			SpeedKmh:       speed,
			AccelMagnitude: accel,
			Pitch:          math.NaN(),
		})
		q.now = q.now.Add(time.Second)
	}
	return q
}

// drive appends n moving samples at 5 s intervals, interpolating the
// position between the two endpoints.
func (q *sampleSeq) drive(fromLat, fromLon, toLat, toLon float64, n int) *sampleSeq {
	for i := 0; i < n; i++ {
		f := float64(i) / float64(n-1)
		if n == 1 {
			f = 1
		}
		q.samples = append(q.samples, models.TelemetrySample{
			Timestamp:      q.now,
			Latitude:       fromLat + (toLat-fromLat)*f,
			Longitude:      fromLon + (toLon-fromLon)*f,
			SpeedKmh:       30,
			AccelMagnitude: 0.01,
			Pitch:          math.NaN(),
		})
		q.now = q.now.Add(5 * time.Second)
	}
	return q
}

func (q *sampleSeq) pause(d time.Duration) *sampleSeq {
	q.now = q.now.Add(d)
	return q
}

// makeSegment builds a stop segment of durSec seconds at 1 s sampling.
// spikeAt lists the sample offsets whose acceleration crosses the default
// spike threshold; a nil accelerometer is modeled with accelNaN.
func makeSegment(start time.Time, lat, lon float64, durSec int, spikeAt []int, accelNaN bool) *StopSegment {
	spikes := make(map[int]bool, len(spikeAt))
	for _, i := range spikeAt {
		spikes[i] = true
	}

	var seg *StopSegment
	for i := 0; i <= durSec; i++ {
		accel := 0.01
		if accelNaN {
			accel = math.NaN()
		} else if spikes[i] {
			accel = 0.1
		}
		s := models.TelemetrySample{
			Timestamp:      start.Add(time.Duration(i) * time.Second),
			Latitude:       lat,
			Longitude:      lon,
			SpeedKmh:       0.2,
			AccelMagnitude: accel,
			Pitch:          math.NaN(),
		}
		if seg == nil {
			seg = newStopSegment(s, DefaultParams().AccelSpikeThreshold)
		} else {
			seg.add(s, DefaultParams().AccelSpikeThreshold)
		}
	}
	return seg
}

// spikeRange returns the offsets [from, to] inclusive
func spikeRange(from, to int) []int {
	var out []int
	for i := from; i <= to; i++ {
		out = append(out, i)
	}
	return out
}
