package titles

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mgpai22/srt2titles/internal/subtitle"
)

const (
	DefaultExtension    = ".kdenlivetitle"
	DefaultFillerSuffix = "_blank"
)

var ErrEmptyTimeline = errors.New("no cues to emit")

// distinguishes filler clips from subtitle clips
type Kind int

const (
	KindSubtitle Kind = iota
	KindFiller
)

func (k Kind) String() string {
	switch k {
	case KindFiller:
		return "filler"
	case KindSubtitle:
		return "subtitle"
	default:
		return "unknown"
	}
}

// one title clip ready to be written as Filename with Content
type Descriptor struct {
	Filename string
	Content  string
	Kind     Kind
	Sequence int
	Frames   int
	Text     string
}

// Emitter lays cues end to end on a timeline starting at zero, rendering a
// filler clip for every gap of at least one frame and a clip for every cue.
type Emitter struct {
	Template     string
	FPS          float64
	FillerSuffix string
	Extension    string
}

func NewEmitter(template string, fps float64) *Emitter {
	return &Emitter{
		Template:     template,
		FPS:          fps,
		FillerSuffix: DefaultFillerSuffix,
		Extension:    DefaultExtension,
	}
}

// Emit renders the descriptors for cues in timeline order. Sorting the
// result by filename gives the same order.
//
// Overlapping or inverted cues are not errors: a gap that rounds to zero or
// less simply gets no filler, and a cue that rounds to less than one frame is
// stretched to one frame.
func (e *Emitter) Emit(cues []subtitle.Cue) ([]Descriptor, error) {
	if len(cues) == 0 {
		return nil, ErrEmptyTimeline
	}
	if err := ValidateFPS(e.FPS); err != nil {
		return nil, err
	}
	if e.FillerSuffix == "" || strings.ContainsAny(e.FillerSuffix, `/\`) {
		return nil, fmt.Errorf("invalid filler suffix %q", e.FillerSuffix)
	}

	width := sequenceWidth(len(cues))
	descriptors := make([]Descriptor, 0, len(cues)*2)
	var previousEnd time.Duration

	for _, cue := range cues {
		if blank := Frames(cue.Start-previousEnd, e.FPS); blank > 0 {
			descriptors = append(descriptors, e.descriptor(
				KindFiller, len(descriptors)+1, width, blank, "",
			))
		}

		frames := CueFrames(cue.End-cue.Start, e.FPS)
		descriptors = append(descriptors, e.descriptor(
			KindSubtitle, len(descriptors)+1, width, frames, cue.Text,
		))

		previousEnd = cue.End
	}

	return descriptors, nil
}

func (e *Emitter) descriptor(
	kind Kind,
	seq, width, frames int,
	text string,
) Descriptor {
	return Descriptor{
		Filename: e.filename(kind, seq, width),
		Content:  Render(e.Template, frames, text),
		Kind:     kind,
		Sequence: seq,
		Frames:   frames,
		Text:     text,
	}
}

func (e *Emitter) filename(kind Kind, seq, width int) string {
	ext := e.Extension
	if ext == "" {
		ext = DefaultExtension
	}
	if kind == KindFiller {
		return fmt.Sprintf("%0*d%s%s", width, seq, e.FillerSuffix, ext)
	}
	return fmt.Sprintf("%0*d%s", width, seq, ext)
}

// digits needed for the largest possible sequence number, a filler before
// every cue
func sequenceWidth(cueCount int) int {
	return len(strconv.Itoa(cueCount * 2))
}

// totals over an emitted timeline
type Summary struct {
	Subtitles   int
	Fillers     int
	TotalFrames int
	Duration    time.Duration
}

func Summarize(descriptors []Descriptor, fps float64) Summary {
	var s Summary
	for _, d := range descriptors {
		switch d.Kind {
		case KindFiller:
			s.Fillers++
		case KindSubtitle:
			s.Subtitles++
		}
		s.TotalFrames += d.Frames
	}
	if fps > 0 {
		s.Duration = FramesToDuration(s.TotalFrames, fps)
	}
	return s
}
