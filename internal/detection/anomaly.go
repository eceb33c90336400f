package detection

import (
	"time"

	"github.com/gabrielsapucaia/trackingnew-sub000/internal/models"
	"github.com/gabrielsapucaia/trackingnew-sub000/internal/stats"
)

// AnomalyDetector flags abnormally long cycle phases using median/MAD
// statistics and locates the low-speed sub-interval responsible.
type AnomalyDetector struct {
	params Params
}

// NewAnomalyDetector creates an anomaly detector from the engine parameters
func NewAnomalyDetector(p Params) *AnomalyDetector {
	return &AnomalyDetector{params: p}
}

// phaseInstance is one cycle's observation of a phase, with the raw time
// window the idle sub-search scans on flagging.
type phaseInstance struct {
	cycleNumber int
	value       float64
	windowStart time.Time
	windowEnd   time.Time
}

// Analyze computes per-phase robust statistics across all completed
// cycles and returns the anomalies. Haul phases are normalized to minutes
// per kilometre before aggregation since distance varies per leg. A zero
// MAD disables flagging for that phase only.
func (a *AnomalyDetector) Analyze(cycles []models.Cycle, samples []models.TelemetrySample) (models.CycleStatistics, []models.Anomaly) {
	statistics := models.CycleStatistics{}
	var anomalies []models.Anomaly

	phases := []struct {
		name    string
		out     *models.PhaseStats
		collect func(c models.Cycle) (phaseInstance, bool)
	}{
		{models.PhaseLoad, &statistics.Load, func(c models.Cycle) (phaseInstance, bool) {
			return phaseInstance{c.Number, c.LoadSeconds, c.LoadStart, c.LoadEnd}, true
		}},
		{models.PhaseHaulLoaded, &statistics.HaulLoaded, func(c models.Cycle) (phaseInstance, bool) {
			if c.HaulLoadedKm <= 0 {
				return phaseInstance{}, false
			}
			return phaseInstance{c.Number, c.HaulLoadedSeconds / 60 / c.HaulLoadedKm, c.LoadEnd, c.DumpStart}, true
		}},
		{models.PhaseDump, &statistics.Dump, func(c models.Cycle) (phaseInstance, bool) {
			return phaseInstance{c.Number, c.DumpSeconds, c.DumpStart, c.DumpEnd}, true
		}},
		{models.PhaseHaulEmpty, &statistics.HaulEmpty, func(c models.Cycle) (phaseInstance, bool) {
			if !c.HasReturn() || c.HaulEmptyKm <= 0 {
				return phaseInstance{}, false
			}
			return phaseInstance{c.Number, c.HaulEmptySeconds / 60 / c.HaulEmptyKm, c.DumpEnd, c.ReturnEnd}, true
		}},
	}

	for _, phase := range phases {
		var instances []phaseInstance
		var values []float64
		for _, c := range cycles {
			if inst, ok := phase.collect(c); ok {
				instances = append(instances, inst)
				values = append(values, inst.value)
			}
		}

		median, mad, threshold := stats.RobustThreshold(values, a.params.AnomalyKMads)
		*phase.out = models.PhaseStats{
			Phase:     phase.name,
			Count:     len(values),
			Median:    median,
			MAD:       mad,
			Min:       stats.Min(values),
			Max:       stats.Max(values),
			Threshold: threshold,
			// All observations identical disables flagging instead of
			// flagging everything.
			Enabled: len(values) > 0 && mad > 0,
		}

		if !phase.out.Enabled {
			continue
		}

		for _, inst := range instances {
			if inst.value <= threshold {
				continue
			}
			anomaly := models.Anomaly{
				CycleNumber: inst.cycleNumber,
				Phase:       phase.name,
				Value:       inst.value,
				Threshold:   threshold,
			}
			a.locateIdle(&anomaly, samples, inst.windowStart, inst.windowEnd)
			anomalies = append(anomalies, anomaly)
		}
	}

	return statistics, anomalies
}

// locateIdle re-scans the raw telemetry within the flagged phase window
// with looser stop thresholds and anchors the anomaly to the longest
// genuine low-speed interval's real coordinates.
func (a *AnomalyDetector) locateIdle(anomaly *models.Anomaly, samples []models.TelemetrySample, from, to time.Time) {
	window := samplesWithin(samples, from, to)
	if len(window) == 0 {
		return
	}

	var longest *StopSegment
	for _, seg := range newIdleSegmenter(a.params).Segments(window) {
		if longest == nil || seg.Duration() > longest.Duration() {
			longest = seg
		}
	}
	if longest == nil {
		return
	}

	anomaly.HasIdle = true
	anomaly.IdleStart = longest.Start
	anomaly.IdleEnd = longest.End
	anomaly.IdleSeconds = longest.Duration().Seconds()
	anomaly.IdleLat = longest.MeanLat()
	anomaly.IdleLon = longest.MeanLon()
}

func samplesWithin(samples []models.TelemetrySample, from, to time.Time) []models.TelemetrySample {
	var out []models.TelemetrySample
	for _, s := range samples {
		if s.Timestamp.Before(from) {
			continue
		}
		if s.Timestamp.After(to) {
			break
		}
		out = append(out, s)
	}
	return out
}
