package subtitle

import (
	"sort"
	"strings"

	"github.com/abadojack/whatlanggo"
	"golang.org/x/text/language"
)

// majority language over cue texts; language.Und when nothing is detected
func DetectLanguage(cues []Cue) language.Tag {
	counts := make(map[string]int)
	for _, cue := range cues {
		if strings.TrimSpace(cue.Text) == "" {
			continue
		}
		code := whatlanggo.DetectLang(cue.Text).Iso6391()
		if code == "" {
			continue
		}
		counts[code]++
	}

	if len(counts) == 0 {
		return language.Und
	}

	codes := make([]string, 0, len(counts))
	for code := range counts {
		codes = append(codes, code)
	}
	// ties resolve alphabetically so repeated runs agree
	sort.Slice(codes, func(i, j int) bool {
		if counts[codes[i]] != counts[codes[j]] {
			return counts[codes[i]] > counts[codes[j]]
		}
		return codes[i] < codes[j]
	})

	tag, err := language.Parse(codes[0])
	if err != nil {
		return language.Und
	}
	return tag
}
