package subtitle

import (
	"errors"
	"time"
)

// returned when a subtitle text yields no usable cue
var ErrNoCues = errors.New("no cues parsed")

// represents single subtitle cue
type Cue struct {
	Index int // 1-based position among parsed cues
	Start time.Duration
	End   time.Duration
	Text  string
}

func (c Cue) StartSeconds() float64 {
	return c.Start.Seconds()
}

func (c Cue) EndSeconds() float64 {
	return c.End.Seconds()
}

// end minus start; negative for inverted cues, which are passed through as-is
func (c Cue) Duration() time.Duration {
	return c.End - c.Start
}

// block counters gathered while parsing
type ParseStats struct {
	Blocks  int
	Skipped int
}

func (s ParseStats) Parsed() int {
	return s.Blocks - s.Skipped
}
