package detection

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gabrielsapucaia/trackingnew-sub000/internal/spatial"
)

// loadSegment builds a segment satisfying the strict load predicate:
// long enough and with a healthy spike fraction.
func loadSegment(start time.Time, lat, lon float64) *StopSegment {
	return makeSegment(start, lat, lon, 150, spikeRange(10, 40), false)
}

// dumpSegment builds a short segment with a dense spike burst
func dumpSegment(start time.Time, lat, lon float64) *StopSegment {
	return makeSegment(start, lat, lon, 60, spikeRange(10, 40), false)
}

func TestFindAnchor(t *testing.T) {
	p := DefaultParams()
	pred := func(seg *StopSegment) bool {
		return seg.Duration().Seconds() >= p.LoadMinSeconds
	}

	t.Run("picks the densest cluster", func(t *testing.T) {
		segs := []*StopSegment{
			loadSegment(testStart, -19.950, -43.950),
			loadSegment(testStart.Add(1*time.Hour), -19.900, -43.900),
			loadSegment(testStart.Add(2*time.Hour), -19.900, -43.900),
			loadSegment(testStart.Add(3*time.Hour), -19.900, -43.900),
		}

		anchor, ok := findAnchor(segs, pred, p.RoundDecimals)
		require.True(t, ok)
		assert.Equal(t, spatial.CellKey(-19.900, -43.900, p.RoundDecimals), anchor.Key)
		assert.Equal(t, 3, anchor.Count)
	})

	t.Run("winner does not depend on segment order", func(t *testing.T) {
		segs := []*StopSegment{
			loadSegment(testStart, -19.950, -43.950),
			loadSegment(testStart.Add(1*time.Hour), -19.900, -43.900),
			loadSegment(testStart.Add(2*time.Hour), -19.900, -43.900),
		}
		reversed := []*StopSegment{segs[2], segs[1], segs[0]}

		a, ok := findAnchor(segs, pred, p.RoundDecimals)
		require.True(t, ok)
		b, ok := findAnchor(reversed, pred, p.RoundDecimals)
		require.True(t, ok)
		assert.Equal(t, a.Key, b.Key)
		assert.InDelta(t, a.Lat, b.Lat, 1e-12)
	})

	t.Run("breaks ties by input order", func(t *testing.T) {
		segs := []*StopSegment{
			loadSegment(testStart, -19.950, -43.950),
			loadSegment(testStart.Add(1*time.Hour), -19.900, -43.900),
		}

		anchor, ok := findAnchor(segs, pred, p.RoundDecimals)
		require.True(t, ok)
		assert.Equal(t, spatial.CellKey(-19.950, -43.950, p.RoundDecimals), anchor.Key)

		reversed := []*StopSegment{segs[1], segs[0]}
		anchor, ok = findAnchor(reversed, pred, p.RoundDecimals)
		require.True(t, ok)
		assert.Equal(t, spatial.CellKey(-19.900, -43.900, p.RoundDecimals), anchor.Key)
	})

	t.Run("anchor is the duration-weighted mean, not the cell key", func(t *testing.T) {
		segs := []*StopSegment{
			makeSegment(testStart, -19.9001, -43.900, 120, spikeRange(10, 40), false),
			makeSegment(testStart.Add(time.Hour), -19.8999, -43.900, 360, spikeRange(10, 40), false),
		}

		anchor, ok := findAnchor(segs, pred, p.RoundDecimals)
		require.True(t, ok)
		assert.Equal(t, 2, anchor.Count)
		// (−19.9001·120 + −19.8999·360) / 480
		assert.InDelta(t, -19.89995, anchor.Lat, 1e-9)
		assert.InDelta(t, -43.900, anchor.Lon, 1e-9)
	})

	t.Run("no matching segment means no anchor", func(t *testing.T) {
		segs := []*StopSegment{makeSegment(testStart, -19.9, -43.9, 30, nil, false)}
		_, ok := findAnchor(segs, pred, p.RoundDecimals)
		assert.False(t, ok)
	})
}

func TestLocateAnchors(t *testing.T) {
	p := DefaultParams()

	t.Run("locates load and dump areas", func(t *testing.T) {
		segs := []*StopSegment{
			loadSegment(testStart, -19.900, -43.900),
			loadSegment(testStart.Add(1*time.Hour), -19.900, -43.900),
			dumpSegment(testStart.Add(30*time.Minute), -19.910, -43.900),
			dumpSegment(testStart.Add(90*time.Minute), -19.910, -43.900),
		}

		load, dump, err := LocateAnchors(segs, p)
		require.NoError(t, err)
		assert.Equal(t, spatial.CellKey(-19.900, -43.900, p.RoundDecimals), load.Key)
		assert.Equal(t, spatial.CellKey(-19.910, -43.900, p.RoundDecimals), dump.Key)
		assert.Equal(t, 2, load.Count)
		assert.Equal(t, 2, dump.Count)
	})

	t.Run("falls back to the relaxed load predicate", func(t *testing.T) {
		// Long stops with no spike data fail the strict predicate.
		segs := []*StopSegment{
			makeSegment(testStart, -19.900, -43.900, 150, nil, true),
			makeSegment(testStart.Add(time.Hour), -19.910, -43.900, 60, nil, true),
		}

		load, dump, err := LocateAnchors(segs, p)
		require.NoError(t, err)
		assert.Equal(t, spatial.CellKey(-19.900, -43.900, p.RoundDecimals), load.Key)
		assert.Equal(t, spatial.CellKey(-19.910, -43.900, p.RoundDecimals), dump.Key)
	})

	t.Run("dump search excludes the load radius", func(t *testing.T) {
		segs := []*StopSegment{
			loadSegment(testStart, -19.900, -43.900),
			// Dense short stop inside the load area must not become the dump.
			dumpSegment(testStart.Add(30*time.Minute), -19.9001, -43.900),
			dumpSegment(testStart.Add(60*time.Minute), -19.910, -43.900),
		}

		_, dump, err := LocateAnchors(segs, p)
		require.NoError(t, err)
		assert.Equal(t, spatial.CellKey(-19.910, -43.900, p.RoundDecimals), dump.Key)
	})

	t.Run("fails without a load anchor", func(t *testing.T) {
		segs := []*StopSegment{makeSegment(testStart, -19.9, -43.9, 30, nil, false)}
		_, _, err := LocateAnchors(segs, p)
		assert.ErrorIs(t, err, ErrNoLoadAnchor)
	})

	t.Run("fails without a dump anchor", func(t *testing.T) {
		segs := []*StopSegment{loadSegment(testStart, -19.900, -43.900)}
		_, _, err := LocateAnchors(segs, p)
		assert.ErrorIs(t, err, ErrNoDumpAnchor)
	})
}
