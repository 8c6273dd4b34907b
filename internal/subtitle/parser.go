package subtitle

import (
	"strings"
)

// index line, timecode line, then text
const textStartLine = 2

// parses subtitle text into cues, see Parse
func ParseCues(text string) ([]Cue, error) {
	cues, _, err := Parse(text)
	return cues, err
}

// parses subtitle text into cues in source order. Blocks without a usable
// timecode are skipped and counted in the stats. ErrNoCues is returned when
// nothing survives.
func Parse(text string) ([]Cue, ParseStats, error) {
	var stats ParseStats

	text = strings.TrimPrefix(text, "\ufeff")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	var cues []Cue
	for _, block := range splitBlocks(text) {
		stats.Blocks++

		cue, ok := parseBlock(block)
		if !ok {
			stats.Skipped++
			continue
		}
		cue.Index = len(cues) + 1
		cues = append(cues, cue)
	}

	if len(cues) == 0 {
		return nil, stats, ErrNoCues
	}
	return cues, stats, nil
}

// splits text into blocks of trimmed lines. Any line that is blank after
// trimming (unicode spaces included) ends the current block.
func splitBlocks(text string) [][]string {
	var blocks [][]string
	var current []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			if len(current) > 0 {
				blocks = append(blocks, current)
				current = nil
			}
			continue
		}
		current = append(current, line)
	}
	if len(current) > 0 {
		blocks = append(blocks, current)
	}
	return blocks
}

func parseBlock(lines []string) (Cue, bool) {
	if len(lines) < 2 {
		return Cue{}, false
	}

	timeLine := findTimecodeLine(lines)
	if timeLine < 0 {
		return Cue{}, false
	}

	start, end, ok := parseTimecodeRange(lines[timeLine])
	if !ok {
		return Cue{}, false
	}

	var text string
	if len(lines) > textStartLine {
		text = strings.Join(lines[textStartLine:], " ")
	}

	return Cue{Start: start, End: end, Text: text}, true
}

// index of the timecode line, -1 if none. The header lines are tried
// first, then the rest of the block.
func findTimecodeLine(lines []string) int {
	header := min(len(lines), textStartLine+1)
	for i := 0; i < header; i++ {
		if hasTimecode(lines[i]) {
			return i
		}
	}
	for i := header; i < len(lines); i++ {
		if hasTimecode(lines[i]) {
			return i
		}
	}
	return -1
}
