package detection

import (
	"sort"
	"time"

	"github.com/gabrielsapucaia/trackingnew-sub000/internal/models"
	"github.com/gabrielsapucaia/trackingnew-sub000/internal/spatial"
	"github.com/gabrielsapucaia/trackingnew-sub000/internal/stats"
)

// validatedLoad wraps a load candidate with the fields only the validator
// may assign. A load's cycle id is assigned once and never reassigned.
type validatedLoad struct {
	candidate
	cycleID     *int
	isComplete  bool
	matchedDump *validatedDump
}

type validatedDump struct {
	candidate
	cycleID *int
}

type validatedWait struct {
	candidate
	cycleID *int
}

// validation is the full output of the validator, kept split by role so
// the cycle assembly can pair loads with their dumps directly.
type validation struct {
	loads []*validatedLoad
	dumps []*validatedDump
	waits []*validatedWait
}

// Validator pairs load and dump candidates into cycles with monotonic,
// 1-based cycle ids.
type Validator struct {
	params Params
}

// NewValidator creates a validator from the engine parameters
func NewValidator(p Params) *Validator {
	return &Validator{params: p}
}

// Validate runs the two-pass algorithm over the classified candidates.
// Pass 1 detects and merges load candidates without consulting dump data;
// pass 2 matches each load to the nearest following dump within the
// timeout and assigns cycle ids. Waits are then attached to the nearest
// temporally adjacent operation, and leading waits are folded back into
// their load.
func (v *Validator) Validate(candidates []candidate) *validation {
	res := &validation{}

	for _, c := range candidates {
		switch c.kind {
		case models.EventLoad:
			v.appendLoad(res, c)
		case models.EventDump:
			res.dumps = append(res.dumps, &validatedDump{candidate: c})
		default:
			res.waits = append(res.waits, &validatedWait{candidate: c})
		}
	}

	sort.Slice(res.loads, func(i, j int) bool { return res.loads[i].start.Before(res.loads[j].start) })
	sort.Slice(res.dumps, func(i, j int) bool { return res.dumps[i].start.Before(res.dumps[j].start) })

	v.assignCycleIDs(res)
	v.attachDumps(res)
	v.attachWaits(res)
	v.foldLeadingWaits(res)

	return res
}

// appendLoad implements pass 1: a new load candidate either opens a new
// load or merges into the immediately preceding one when the gap,
// distance and merged duration all stay within bounds.
func (v *Validator) appendLoad(res *validation, c candidate) {
	if n := len(res.loads); n > 0 {
		prev := res.loads[n-1]
		gap := c.start.Sub(prev.end)
		dist := spatial.HaversineDistance(prev.lat, prev.lon, c.lat, c.lon)
		merged := c.end.Sub(prev.start).Seconds()

		if gap >= 0 &&
			gap.Minutes() <= v.params.LoadMergeGapMinutes &&
			dist <= v.params.LoadRadiusMeters &&
			merged <= v.params.LoadMergeMaxDurationSeconds {
			weights := []float64{prev.durationSeconds(), c.durationSeconds()}
			prev.lat = stats.WeightedMean([]float64{prev.lat, c.lat}, weights)
			prev.lon = stats.WeightedMean([]float64{prev.lon, c.lon}, weights)
			prev.end = c.end
			return
		}
	}
	res.loads = append(res.loads, &validatedLoad{candidate: c})
}

// assignCycleIDs implements pass 2. A load is complete when a dump starts
// within [load.end, horizon], the horizon being capped by the next load.
// Incomplete loads still receive an id only when they are the first load
// overall or directly follow a complete one: a run of consecutive
// incomplete loads after the first shares no new ids. The asymmetry
// replicates the established output contract; see DESIGN.md.
func (v *Validator) assignCycleIDs(res *validation) {
	maxPairing := v.maxLoadToDump()
	nextID := 1

	for i, load := range res.loads {
		horizon := load.end.Add(maxPairing)
		if i+1 < len(res.loads) && res.loads[i+1].start.Before(horizon) {
			horizon = res.loads[i+1].start
		}

		for _, dump := range res.dumps {
			if dump.start.Before(load.end) {
				continue
			}
			if dump.start.After(horizon) {
				break
			}
			load.matchedDump = dump
			break
		}

		if load.matchedDump != nil {
			load.isComplete = true
			id := nextID
			nextID++
			load.cycleID = &id
			continue
		}

		load.isComplete = false
		if i == 0 || res.loads[i-1].isComplete {
			id := nextID
			nextID++
			load.cycleID = &id
		}
	}
}

// attachDumps gives each dump the cycle id of the nearest complete load
// that ends at or before it, within the pairing horizon.
func (v *Validator) attachDumps(res *validation) {
	maxPairing := v.maxLoadToDump()

	for _, dump := range res.dumps {
		var nearest *validatedLoad
		for _, load := range res.loads {
			if !load.isComplete || load.end.After(dump.start) {
				continue
			}
			if dump.start.Sub(load.end) > maxPairing {
				continue
			}
			if nearest == nil || load.end.After(nearest.end) {
				nearest = load
			}
		}
		if nearest != nil {
			dump.cycleID = nearest.cycleID
		}
	}
}

// attachWaits gives each wait the cycle id of whichever load or dump
// starts within the attach window of it, loads checked first.
func (v *Validator) attachWaits(res *validation) {
	window := time.Duration(v.params.WaitAttachWindowSeconds * float64(time.Second))

	for _, wait := range res.waits {
		if id, ok := nearestCycleID(wait, loadStarts(res.loads), window); ok {
			wait.cycleID = id
			continue
		}
		if id, ok := nearestCycleID(wait, dumpStarts(res.dumps), window); ok {
			wait.cycleID = id
		}
	}
}

type opStart struct {
	start   time.Time
	cycleID *int
}

func loadStarts(loads []*validatedLoad) []opStart {
	out := make([]opStart, 0, len(loads))
	for _, l := range loads {
		out = append(out, opStart{start: l.start, cycleID: l.cycleID})
	}
	return out
}

func dumpStarts(dumps []*validatedDump) []opStart {
	out := make([]opStart, 0, len(dumps))
	for _, d := range dumps {
		out = append(out, opStart{start: d.start, cycleID: d.cycleID})
	}
	return out
}

// nearestCycleID finds the operation whose start is closest to the wait's
// span, within the window, and returns its cycle id.
func nearestCycleID(wait *validatedWait, ops []opStart, window time.Duration) (*int, bool) {
	var (
		best     *int
		bestDist time.Duration
		found    bool
	)
	for _, op := range ops {
		d := distanceToSpan(op.start, wait.start, wait.end)
		if d > window {
			continue
		}
		if !found || d < bestDist {
			best = op.cycleID
			bestDist = d
			found = true
		}
	}
	return best, found
}

func distanceToSpan(t, start, end time.Time) time.Duration {
	if t.Before(start) {
		return start.Sub(t)
	}
	if t.After(end) {
		return t.Sub(end)
	}
	return 0
}

// foldLeadingWaits pulls a load's start back over a wait-before-load that
// directly precedes it within the load radius. Activity-window trimming
// can otherwise truncate the true start of a load.
func (v *Validator) foldLeadingWaits(res *validation) {
	foldGap := time.Duration(v.params.WaitFoldGapSeconds * float64(time.Second))
	kept := res.waits[:0]

	for _, wait := range res.waits {
		if wait.kind != models.EventWaitBeforeLoad {
			kept = append(kept, wait)
			continue
		}

		var folded bool
		for _, load := range res.loads {
			gap := load.start.Sub(wait.end)
			if gap < 0 || gap > foldGap {
				continue
			}
			if spatial.HaversineDistance(load.lat, load.lon, wait.lat, wait.lon) > v.params.LoadRadiusMeters {
				continue
			}

			weights := []float64{load.durationSeconds(), wait.durationSeconds()}
			load.lat = stats.WeightedMean([]float64{load.lat, wait.lat}, weights)
			load.lon = stats.WeightedMean([]float64{load.lon, wait.lon}, weights)
			load.start = wait.start
			folded = true
			break
		}
		if !folded {
			kept = append(kept, wait)
		}
	}
	res.waits = kept
}

func (v *Validator) maxLoadToDump() time.Duration {
	return time.Duration(v.params.MaxLoadToDumpHours * float64(time.Hour))
}

// Events flattens the validation result into the ordered output sequence
func (r *validation) Events(sessionID int64) []models.Event {
	var events []models.Event

	for _, l := range r.loads {
		events = append(events, toEvent(sessionID, l.candidate, l.cycleID, l.isComplete))
	}
	for _, d := range r.dumps {
		events = append(events, toEvent(sessionID, d.candidate, d.cycleID, false))
	}
	for _, w := range r.waits {
		events = append(events, toEvent(sessionID, w.candidate, w.cycleID, false))
	}

	sort.Slice(events, func(i, j int) bool { return events[i].Start.Before(events[j].Start) })
	return events
}

func toEvent(sessionID int64, c candidate, cycleID *int, complete bool) models.Event {
	return models.Event{
		SessionID:       sessionID,
		Kind:            c.kind,
		Start:           c.start,
		End:             c.end,
		DurationSeconds: c.durationSeconds(),
		Latitude:        c.lat,
		Longitude:       c.lon,
		ClusterKey:      c.clusterKey,
		CycleID:         cycleID,
		IsComplete:      complete,
	}
}
