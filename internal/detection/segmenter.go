package detection

import (
	"time"

	"github.com/gabrielsapucaia/trackingnew-sub000/internal/models"
)

// StopSegment is a maximal run of low-speed samples, with short gaps and
// movement blips tolerated. It is owned by the segmenter while being
// built and read-only once returned.
type StopSegment struct {
	Start time.Time
	End   time.Time

	SampleCount int

	sumLat float64
	sumLon float64

	sumAccel   float64
	accelCount int
	MaxAccel   float64

	SpikeCount int
	FirstSpike time.Time
	LastSpike  time.Time

	MinPitch  float64
	MaxPitch  float64
	pitchSeen bool
}

func newStopSegment(s models.TelemetrySample, spikeThreshold float64) *StopSegment {
	seg := &StopSegment{Start: s.Timestamp}
	seg.add(s, spikeThreshold)
	return seg
}

func (g *StopSegment) add(s models.TelemetrySample, spikeThreshold float64) {
	g.SampleCount++
	g.End = s.Timestamp
	g.sumLat += s.Latitude
	g.sumLon += s.Longitude

	if s.HasAccel() {
		g.sumAccel += s.AccelMagnitude
		g.accelCount++
		if s.AccelMagnitude > g.MaxAccel {
			g.MaxAccel = s.AccelMagnitude
		}
		if s.AccelMagnitude >= spikeThreshold {
			g.SpikeCount++
			if g.FirstSpike.IsZero() {
				g.FirstSpike = s.Timestamp
			}
			g.LastSpike = s.Timestamp
		}
	}

	if s.HasPitch() {
		if !g.pitchSeen || s.Pitch < g.MinPitch {
			g.MinPitch = s.Pitch
		}
		if !g.pitchSeen || s.Pitch > g.MaxPitch {
			g.MaxPitch = s.Pitch
		}
		g.pitchSeen = true
	}
}

// Duration returns the full span of the stop
func (g *StopSegment) Duration() time.Duration {
	return g.End.Sub(g.Start)
}

// MeanLat returns the mean latitude over the segment's samples
func (g *StopSegment) MeanLat() float64 {
	if g.SampleCount == 0 {
		return 0
	}
	return g.sumLat / float64(g.SampleCount)
}

// MeanLon returns the mean longitude over the segment's samples
func (g *StopSegment) MeanLon() float64 {
	if g.SampleCount == 0 {
		return 0
	}
	return g.sumLon / float64(g.SampleCount)
}

// MeanAccel returns the mean acceleration magnitude over the samples that
// carried one
func (g *StopSegment) MeanAccel() float64 {
	if g.accelCount == 0 {
		return 0
	}
	return g.sumAccel / float64(g.accelCount)
}

// SpikeFraction returns the share of samples whose acceleration crossed
// the spike threshold
func (g *StopSegment) SpikeFraction() float64 {
	if g.SampleCount == 0 {
		return 0
	}
	return float64(g.SpikeCount) / float64(g.SampleCount)
}

// SpikeSpan returns the interval from the first to the last spike, zero
// when no spike was recorded
func (g *StopSegment) SpikeSpan() time.Duration {
	if g.FirstSpike.IsZero() {
		return 0
	}
	return g.LastSpike.Sub(g.FirstSpike)
}

// HasSpikes reports whether any sample crossed the spike threshold
func (g *StopSegment) HasSpikes() bool {
	return g.SpikeCount > 0
}

// HasAccelData reports whether any sample carried an acceleration
// magnitude at all. A silent accelerometer is distinct from one reporting
// sub-threshold values.
func (g *StopSegment) HasAccelData() bool {
	return g.accelCount > 0
}

// Segmenter scans an ordered sample sequence and emits stop segments for
// contiguous low-speed intervals. It holds no state between calls.
type Segmenter struct {
	speedStopKmh      float64
	gapSeconds        float64
	minStopSeconds    float64
	minStopSamples    int
	movementTolerance int
	spikeThreshold    float64
}

// NewSegmenter creates a segmenter from the engine parameters
func NewSegmenter(p Params) *Segmenter {
	return &Segmenter{
		speedStopKmh:      p.SpeedStopKmh,
		gapSeconds:        p.GapSeconds,
		minStopSeconds:    p.MinStopSeconds,
		minStopSamples:    p.MinStopSamples,
		movementTolerance: p.MovementTolerance,
		spikeThreshold:    p.AccelSpikeThreshold,
	}
}

// newIdleSegmenter builds the looser segmenter the anomaly sub-search uses
// to find genuine low-speed intervals inside a flagged phase.
func newIdleSegmenter(p Params) *Segmenter {
	s := NewSegmenter(p)
	s.speedStopKmh = p.AnomalySpeedStopKmh
	s.minStopSeconds = p.AnomalyMinStopSeconds
	return s
}

// Segments consumes the ordered sample sequence once and returns the
// ordered list of stop segments. Unusable samples are skipped without
// resetting the gap clock; segments below the minimum duration or sample
// count are dropped silently.
func (s *Segmenter) Segments(samples []models.TelemetrySample) []*StopSegment {
	var (
		segments []*StopSegment
		current  *StopSegment
		pending  []models.TelemetrySample // moving samples awaiting absorption
		moving   int
		lastSeen time.Time // last sample still belonging to the open stop
	)

	closeCurrent := func() {
		if current != nil && s.keep(current) {
			segments = append(segments, current)
		}
		current = nil
		pending = pending[:0]
		moving = 0
	}

	for _, sample := range samples {
		if !sample.Usable() {
			continue
		}

		if sample.SpeedKmh < s.speedStopKmh {
			if current != nil && sample.Timestamp.Sub(lastSeen).Seconds() > s.gapSeconds {
				closeCurrent()
			}
			if current == nil {
				current = newStopSegment(sample, s.spikeThreshold)
			} else {
				// Absorb the movement blip now that the stop resumed.
				for _, p := range pending {
					current.add(p, s.spikeThreshold)
				}
				pending = pending[:0]
				current.add(sample, s.spikeThreshold)
			}
			moving = 0
			lastSeen = sample.Timestamp
			continue
		}

		if current == nil {
			continue
		}
		moving++
		if moving <= s.movementTolerance {
			pending = append(pending, sample)
			lastSeen = sample.Timestamp
			continue
		}
		// Tolerance exceeded: the buffered tail is discarded, so the
		// segment ends at its last stopped sample.
		closeCurrent()
	}

	closeCurrent()
	return segments
}

func (s *Segmenter) keep(seg *StopSegment) bool {
	return seg.SampleCount >= s.minStopSamples && seg.Duration().Seconds() >= s.minStopSeconds
}
