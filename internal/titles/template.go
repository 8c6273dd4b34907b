package titles

import (
	"regexp"
	"strconv"
	"strings"
)

const (
	rootTag   = "<kdenlivetitle"
	itemClose = "</item>"
)

var (
	durationAttr = regexp.MustCompile(`\bduration="\d+"`)
	outAttr      = regexp.MustCompile(`\bout="\d+"`)
	contentElem  = regexp.MustCompile(`(?is)(<content\b[^>]*>)(.*?)(</content>)`)

	contentEscaper = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&apos;",
		"\r\n", " ",
		"\n", " ",
		"\r", " ",
	)
)

// Render returns template with its duration, out point and first content
// element rewritten for a clip of the given length. The template itself is
// never modified and everything outside the three fields is kept byte for
// byte.
func Render(template string, frames int, content string) string {
	doc := setAttr(template, durationAttr, "duration", frames)
	doc = setAttr(doc, outAttr, "out", max(0, frames-1))
	return setContent(doc, EscapeContent(content))
}

// EscapeContent escapes markup characters and folds line breaks into spaces.
func EscapeContent(text string) string {
	return contentEscaper.Replace(text)
}

// replaces the first name="N" match or inserts the attribute after the root tag
func setAttr(doc string, re *regexp.Regexp, name string, value int) string {
	attr := name + `="` + strconv.Itoa(value) + `"`
	if loc := re.FindStringIndex(doc); loc != nil {
		return doc[:loc[0]] + attr + doc[loc[1]:]
	}
	return strings.Replace(doc, rootTag, rootTag+" "+attr, 1)
}

// rewrites the body of the first content element, or adds one before the
// last item close tag
func setContent(doc, escaped string) string {
	if loc := contentElem.FindStringSubmatchIndex(doc); loc != nil {
		return doc[:loc[4]] + escaped + doc[loc[5]:]
	}

	i := strings.LastIndex(doc, itemClose)
	if i < 0 {
		return doc
	}
	return doc[:i] + "    <content>" + escaped + "</content>\n  " + doc[i:]
}
