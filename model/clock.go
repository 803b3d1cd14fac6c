package model

import "math"

// FrameHz is the fixed logical frame rate (spec.md Section 4.C13: "Fixed
// 30 Hz frame").
const FrameHz = 30

// FrameMs is the duration of one logical frame in milliseconds.
const FrameMs = 1000.0 / FrameHz

// MsToFrames converts a millisecond duration to a whole number of frames,
// rounding up so a configured duration is never served short.
func MsToFrames(ms int) int64 {
	if ms <= 0 {
		return 0
	}
	return int64(math.Ceil(float64(ms) / FrameMs))
}

// SecondsToFrames converts a fractional-second duration (as BuildTime is
// expressed in the bundle, spec.md Section 6) to whole frames.
func SecondsToFrames(seconds float64) int64 {
	if seconds <= 0 {
		return 0
	}
	return int64(math.Ceil(seconds * FrameHz))
}
