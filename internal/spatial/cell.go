package spatial

import (
	"math"
	"strconv"
)

// RoundCoord rounds a coordinate to the given number of decimal places.
// At 3 decimals a cell spans roughly 111 m of latitude, which is the
// clustering resolution used for hotspot voting.
func RoundCoord(v float64, decimals int) float64 {
	scale := math.Pow(10, float64(decimals))
	return math.Round(v*scale) / scale
}

// CellKey builds a deterministic clustering bucket key from a coordinate
// pair rounded to the given number of decimal places. Two positions share
// a key iff they are equal after rounding; the key is never persisted as
// a real location.
func CellKey(lat, lon float64, decimals int) string {
	return strconv.FormatFloat(RoundCoord(lat, decimals), 'f', decimals, 64) +
		"," +
		strconv.FormatFloat(RoundCoord(lon, decimals), 'f', decimals, 64)
}
