package models

import (
	"math"
	"time"
)

// TelemetrySample represents one pre-converted telemetry record from a
// vehicle session. The input sequence is expected to be non-decreasing in
// Timestamp; the engine never re-sorts it.
type TelemetrySample struct {
	Timestamp time.Time `json:"timestamp"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	SpeedKmh  float64   `json:"speed_kmh"`

	// AccelMagnitude is the scalar linear acceleration magnitude in m/s².
	// NaN when the sensor reported nothing for this sample.
	AccelMagnitude float64 `json:"accel_magnitude"`

	// Pitch in degrees. NaN when absent.
	Pitch float64 `json:"pitch"`
}

// HasFix reports whether the sample carries a usable GPS position
func (s TelemetrySample) HasFix() bool {
	if math.IsNaN(s.Latitude) || math.IsNaN(s.Longitude) {
		return false
	}
	return s.Latitude >= -90 && s.Latitude <= 90 && s.Longitude >= -180 && s.Longitude <= 180
}

// HasAccel reports whether the acceleration magnitude is present
func (s TelemetrySample) HasAccel() bool {
	return !math.IsNaN(s.AccelMagnitude)
}

// HasPitch reports whether the pitch angle is present
func (s TelemetrySample) HasPitch() bool {
	return !math.IsNaN(s.Pitch)
}

// Usable reports whether the sample can participate in segmentation.
// Samples with a missing position or speed contribute to neither a stop
// segment nor a gap reset.
func (s TelemetrySample) Usable() bool {
	return !s.Timestamp.IsZero() && s.HasFix() && !math.IsNaN(s.SpeedKmh)
}
