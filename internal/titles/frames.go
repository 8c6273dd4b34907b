package titles

import (
	"errors"
	"fmt"
	"math"
	"time"
)

var ErrInvalidFrameRate = errors.New("frame rate must be a positive finite number")

func ValidateFPS(fps float64) error {
	if math.IsNaN(fps) || math.IsInf(fps, 0) || fps <= 0 {
		return fmt.Errorf("%w: %v", ErrInvalidFrameRate, fps)
	}
	return nil
}

// Frames converts a span to whole frames, rounding to nearest with ties to
// even. Negative spans give zero or negative counts.
func Frames(d time.Duration, fps float64) int {
	return int(math.RoundToEven(d.Seconds() * fps))
}

// CueFrames is Frames clamped to at least one frame so every cue stays
// visible on the timeline.
func CueFrames(d time.Duration, fps float64) int {
	return max(1, Frames(d, fps))
}

// FramesToDuration is the inverse of Frames, used for reporting.
func FramesToDuration(frames int, fps float64) time.Duration {
	return time.Duration(float64(frames) / fps * float64(time.Second))
}
