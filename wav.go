package wavplay

import (
	"math"
	"time"
)

func framesDuration(frames int64, sampleRate int) time.Duration {
	if sampleRate <= 0 || frames <= 0 {
		return 0
	}

	return time.Duration(frames) * time.Second / time.Duration(sampleRate)
}

func samplesNumFromDuration(dur time.Duration, sampleRate int) int {
	if sampleRate <= 0 || dur <= 0 {
		return 0
	}

	return int(math.Floor(dur.Seconds() * math.Abs(float64(sampleRate))))
}
