package detection

import (
	"time"

	"github.com/gabrielsapucaia/trackingnew-sub000/internal/models"
	"github.com/gabrielsapucaia/trackingnew-sub000/internal/spatial"
)

// candidate is an immutable pre-validation event. Cycle ids and
// completeness are assigned later by the validator, which wraps
// candidates rather than mutating them in place.
type candidate struct {
	kind       models.EventKind
	start      time.Time
	end        time.Time
	lat        float64
	lon        float64
	clusterKey string
}

func (c candidate) durationSeconds() float64 {
	return c.end.Sub(c.start).Seconds()
}

// Classifier labels each stop segment as a load operation, a dump
// operation, or an idle wait, given the two located hotspots.
type Classifier struct {
	params Params
	load   Anchor
	dump   Anchor
}

// NewClassifier creates a classifier bound to the located anchors
func NewClassifier(p Params, load, dump Anchor) *Classifier {
	return &Classifier{params: p, load: load, dump: dump}
}

func (c *Classifier) inLoadArea(seg *StopSegment) bool {
	return spatial.HaversineDistance(c.load.Lat, c.load.Lon, seg.MeanLat(), seg.MeanLon()) <= c.params.LoadRadiusMeters
}

func (c *Classifier) inDumpArea(seg *StopSegment) bool {
	return spatial.HaversineDistance(c.dump.Lat, c.dump.Lon, seg.MeanLat(), seg.MeanLon()) <= c.params.DumpRadiusMeters
}

func (c *Classifier) isLoadOperation(seg *StopSegment) bool {
	if !c.inLoadArea(seg) {
		return false
	}
	dur := seg.Duration().Seconds()
	frac := seg.SpikeFraction()
	if dur >= c.params.LoadMinSeconds && frac >= c.params.LoadActiveFraction {
		return true
	}
	return dur >= c.params.LoadMinSecondsRelaxed && frac >= c.params.LoadActiveFractionRelaxed
}

// isLoadOperationWithoutSpikes covers loads recorded with no
// accelerometer data at all. A stop whose accelerometer reported only
// sub-threshold values is an idle wait, not a load.
func (c *Classifier) isLoadOperationWithoutSpikes(seg *StopSegment) bool {
	return c.inLoadArea(seg) && !seg.HasAccelData() &&
		seg.Duration().Seconds() >= c.params.LoadMinSecondsRelaxed
}

// isDumpOperation measures activity density over the spike span, not over
// the whole stop, so a long queueing stop with a short burst of dumping
// activity still classifies correctly.
func (c *Classifier) isDumpOperation(seg *StopSegment) bool {
	if !c.inDumpArea(seg) {
		return false
	}
	span := seg.SpikeSpan().Seconds()
	if span <= 0 || span < c.params.DumpMinSeconds || span > c.params.DumpMaxSeconds {
		return false
	}
	return float64(seg.SpikeCount)/span >= c.params.DumpActiveFraction
}

// Classify walks the segments in order and emits candidates. Operation
// events cover only the activity window (first spike to last spike); the
// idle portions before and after become separate wait events when long
// enough.
func (c *Classifier) Classify(segments []*StopSegment) []candidate {
	var out []candidate

	for _, seg := range segments {
		switch {
		case c.isLoadOperation(seg) || c.isLoadOperationWithoutSpikes(seg):
			out = append(out, c.operation(seg, models.EventLoad, models.EventWaitBeforeLoad, models.EventWaitBeforeDump)...)
		case c.isDumpOperation(seg):
			out = append(out, c.operation(seg, models.EventDump, models.EventWaitBeforeDump, models.EventWaitBeforeLoad)...)
		case c.inLoadArea(seg):
			if w, ok := c.wait(seg, seg.Start, seg.End, models.EventWaitBeforeLoad); ok {
				out = append(out, w)
			}
		case c.inDumpArea(seg):
			if w, ok := c.wait(seg, seg.Start, seg.End, models.EventWaitBeforeDump); ok {
				out = append(out, w)
			}
		}
	}

	return out
}

// operation splits a segment into wait-before, activity window and
// wait-after. A load's trailing idle precedes the dump phase and a dump's
// trailing idle precedes the next load, hence the two wait kinds.
func (c *Classifier) operation(seg *StopSegment, kind, waitBefore, waitAfter models.EventKind) []candidate {
	winStart, winEnd := seg.Start, seg.End
	if seg.HasSpikes() {
		winStart, winEnd = seg.FirstSpike, seg.LastSpike
	}

	var out []candidate
	if w, ok := c.wait(seg, seg.Start, winStart, waitBefore); ok {
		out = append(out, w)
	}
	out = append(out, candidate{
		kind:       kind,
		start:      winStart,
		end:        winEnd,
		lat:        seg.MeanLat(),
		lon:        seg.MeanLon(),
		clusterKey: spatial.CellKey(seg.MeanLat(), seg.MeanLon(), c.params.RoundDecimals),
	})
	if w, ok := c.wait(seg, winEnd, seg.End, waitAfter); ok {
		out = append(out, w)
	}
	return out
}

func (c *Classifier) wait(seg *StopSegment, start, end time.Time, kind models.EventKind) (candidate, bool) {
	if end.Sub(start).Seconds() < c.params.WaitMinSeconds {
		return candidate{}, false
	}
	return candidate{
		kind:       kind,
		start:      start,
		end:        end,
		lat:        seg.MeanLat(),
		lon:        seg.MeanLon(),
		clusterKey: spatial.CellKey(seg.MeanLat(), seg.MeanLon(), c.params.RoundDecimals),
	}, true
}
