package subtitle

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// HH:MM:SS,mmm --> HH:MM:SS,mmm, comma or period before the milliseconds
var timecodeRegex = regexp.MustCompile(
	`(\d{2}):(\d{2}):(\d{2})[,.](\d{3})\s*-->\s*(\d{2}):(\d{2}):(\d{2})[,.](\d{3})`,
)

func hasTimecode(line string) bool {
	return timecodeRegex.MatchString(line)
}

// parses the first timecode range found anywhere in line
func parseTimecodeRange(line string) (start, end time.Duration, ok bool) {
	matches := timecodeRegex.FindStringSubmatch(line)
	if len(matches) != 9 {
		return 0, 0, false
	}

	start, ok = parseTimecode(matches[1], matches[2], matches[3], matches[4])
	if !ok {
		return 0, 0, false
	}
	end, ok = parseTimecode(matches[5], matches[6], matches[7], matches[8])
	if !ok {
		return 0, 0, false
	}
	return start, end, true
}

func parseTimecode(hours, minutes, seconds, millis string) (time.Duration, bool) {
	h, err := strconv.Atoi(hours)
	if err != nil {
		return 0, false
	}
	m, err := strconv.Atoi(minutes)
	if err != nil || m > 59 {
		return 0, false
	}
	s, err := strconv.Atoi(seconds)
	if err != nil || s > 59 {
		return 0, false
	}
	ms, err := strconv.Atoi(millis)
	if err != nil {
		return 0, false
	}

	return time.Duration(h)*time.Hour +
		time.Duration(m)*time.Minute +
		time.Duration(s)*time.Second +
		time.Duration(ms)*time.Millisecond, true
}

// formats d as HH:MM:SS,mmm
func FormatTimecode(d time.Duration) string {
	sign := ""
	if d < 0 {
		sign = "-"
		d = -d
	}
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	millis := int(d.Milliseconds()) % 1000

	return fmt.Sprintf("%s%02d:%02d:%02d,%03d", sign, hours, minutes, seconds, millis)
}
