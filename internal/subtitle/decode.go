package subtitle

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// DefaultEncoding decodes UTF-8, honouring a UTF-8 or UTF-16 byte-order mark.
const DefaultEncoding = "utf-8"

// Decode converts raw subtitle bytes to text. An empty name or "utf-8"
// sniffs a byte-order mark; any other IANA name (windows-1252,
// iso-8859-15, shift_jis, ...) selects that code page.
func Decode(raw []byte, encoding string) (string, error) {
	name := strings.ToLower(strings.TrimSpace(encoding))
	switch name {
	case "", "utf-8", "utf8", "auto":
		decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
		out, _, err := transform.Bytes(decoder, raw)
		if err != nil {
			return "", fmt.Errorf("failed to decode subtitle text: %w", err)
		}
		return string(out), nil
	}

	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil {
		return "", fmt.Errorf("unsupported encoding %q: %w", encoding, err)
	}
	if enc == nil {
		return "", fmt.Errorf("unsupported encoding %q", encoding)
	}

	out, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		return "", fmt.Errorf("failed to decode subtitle text as %s: %w", name, err)
	}
	return string(out), nil
}

// ReadFile reads and decodes a subtitle file.
func ReadFile(path, encoding string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read subtitle file: %w", err)
	}
	return Decode(raw, encoding)
}
