package detection

import (
	"errors"

	"github.com/gabrielsapucaia/trackingnew-sub000/internal/spatial"
	"github.com/gabrielsapucaia/trackingnew-sub000/internal/stats"
)

// Fatal detection errors. No anchor means the run cannot proceed.
var (
	ErrNoStopSegments = errors.New("no stop segments detected in session")
	ErrNoLoadAnchor   = errors.New("no stop segment qualifies as a load anchor")
	ErrNoDumpAnchor   = errors.New("no stop segment qualifies as a dump anchor")
)

// SegmentPredicate selects the segments that vote for a hotspot
type SegmentPredicate func(seg *StopSegment) bool

// Anchor is the representative coordinate of an inferred operation area,
// chosen by majority vote over rounded-coordinate clusters.
type Anchor struct {
	Lat   float64 `json:"lat"`
	Lon   float64 `json:"lon"`
	Key   string  `json:"cluster_key"`
	Count int     `json:"segment_count"`
}

type cluster struct {
	lats    []float64
	lons    []float64
	weights []float64
}

// findAnchor groups segments by rounded coordinates, counts the ones
// satisfying pred per cell, and returns the densest cell. Ties are broken
// by the first-encountered cell in input order: deterministic, arbitrary.
// The anchor coordinate is the duration-weighted mean of the matching
// segments, never the rounded key.
func findAnchor(segments []*StopSegment, pred SegmentPredicate, decimals int) (Anchor, bool) {
	clusters := make(map[string]*cluster)
	var order []string

	for _, seg := range segments {
		if !pred(seg) {
			continue
		}
		key := spatial.CellKey(seg.MeanLat(), seg.MeanLon(), decimals)
		c, ok := clusters[key]
		if !ok {
			c = &cluster{}
			clusters[key] = c
			order = append(order, key)
		}
		w := seg.Duration().Seconds()
		if w <= 0 {
			w = 1
		}
		c.lats = append(c.lats, seg.MeanLat())
		c.lons = append(c.lons, seg.MeanLon())
		c.weights = append(c.weights, w)
	}

	if len(order) == 0 {
		return Anchor{}, false
	}

	bestKey := order[0]
	for _, key := range order[1:] {
		if len(clusters[key].lats) > len(clusters[bestKey].lats) {
			bestKey = key
		}
	}

	best := clusters[bestKey]
	return Anchor{
		Lat:   stats.WeightedMean(best.lats, best.weights),
		Lon:   stats.WeightedMean(best.lons, best.weights),
		Key:   bestKey,
		Count: len(best.lats),
	}, true
}

// LocateAnchors infers the load and dump hotspots from the stop segments,
// without external configuration. The load area is located first; the
// dump search then excludes everything within the load radius. Both
// searches fall back to a relaxed duration-only predicate before failing.
func LocateAnchors(segments []*StopSegment, p Params) (load, dump Anchor, err error) {
	loadPred := func(seg *StopSegment) bool {
		return seg.Duration().Seconds() >= p.LoadMinSeconds &&
			seg.SpikeFraction() >= p.LoadActiveFraction
	}
	loadRelaxed := func(seg *StopSegment) bool {
		return seg.Duration().Seconds() >= p.LoadMinSeconds
	}

	load, ok := findAnchor(segments, loadPred, p.RoundDecimals)
	if !ok {
		load, ok = findAnchor(segments, loadRelaxed, p.RoundDecimals)
	}
	if !ok {
		return Anchor{}, Anchor{}, ErrNoLoadAnchor
	}

	outsideLoad := func(seg *StopSegment) bool {
		return spatial.HaversineDistance(load.Lat, load.Lon, seg.MeanLat(), seg.MeanLon()) > p.LoadRadiusMeters
	}
	dumpPred := func(seg *StopSegment) bool {
		dur := seg.Duration().Seconds()
		return dur >= p.DumpMinSeconds && dur <= p.DumpMaxSeconds &&
			seg.SpikeFraction() >= p.DumpActiveFraction &&
			outsideLoad(seg)
	}
	dumpRelaxed := func(seg *StopSegment) bool {
		dur := seg.Duration().Seconds()
		return dur >= p.DumpMinSeconds && dur <= p.DumpMaxSeconds && outsideLoad(seg)
	}

	dump, ok = findAnchor(segments, dumpPred, p.RoundDecimals)
	if !ok {
		dump, ok = findAnchor(segments, dumpRelaxed, p.RoundDecimals)
	}
	if !ok {
		return Anchor{}, Anchor{}, ErrNoDumpAnchor
	}

	return load, dump, nil
}
