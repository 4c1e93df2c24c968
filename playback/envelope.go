package playback

// Gain returns the linear fade multiplier at frame pos of a total-frame
// stream. The fade-in ramps 0→1 over the first fadeIn frames and the
// fade-out ramps 1→0 over the last fadeOut frames. Overlapping ramps are
// summed, so a short asset with long fades can go negative; the result is
// not clamped. A zero window disables its ramp.
func Gain(pos, total, fadeIn, fadeOut int64) float64 {
	gain := 1.0

	if fadeIn > 0 && pos < fadeIn {
		gain -= 1 - float64(pos)/float64(fadeIn)
	}

	if left := total - pos; fadeOut > 0 && left < fadeOut {
		gain -= 1 - float64(left)/float64(fadeOut)
	}

	return gain
}

// msToFrames converts a fade length in milliseconds to frames at rate.
func msToFrames(ms int32, rate uint32) int64 {
	if ms <= 0 {
		return 0
	}

	return int64(ms) * int64(rate) / 1000
}
