package prompt

import (
	"errors"
	"fmt"
)

// ErrUnsupportedStyle indicates a style key that is not in the catalog.
var ErrUnsupportedStyle = errors.New("unsupported style")

// Style identifies a summary style from the catalog.
type Style int

// Catalog styles, in display order.
const (
	Default Style = iota
	Bullet
	Simple
	Tweet
	Executive
	Markdown
	Headline
	MeetingNotes
	Poetic
	Snarky
	Steps

	numStyles
)

type styleEntry struct {
	key         string
	instruction string
}

var catalog = [numStyles]styleEntry{
	Default:      {"default", "Summarize the following text."},
	Bullet:       {"bullet", "Summarize the following in bullet points."},
	Simple:       {"simple", "Summarize like you're explaining it to a 10-year-old."},
	Tweet:        {"tweet", "Summarize in under 280 characters."},
	Executive:    {"executive", "Give a concise 3-sentence executive summary."},
	Markdown:     {"markdown", "Summarize with Markdown headings and bullet points."},
	Headline:     {"headline", "Give 3 catchy news-style headlines."},
	MeetingNotes: {"meeting_notes", "Convert into structured meeting notes with action items."},
	Poetic:       {"poetic", "Summarize the following as a short poem."},
	Snarky:       {"snarky", "Summarize this with sarcasm and wit."},
	Steps:        {"steps", "Convert this into a step-by-step guide."},
}

// Valid reports whether s is a catalog style.
func (s Style) Valid() bool {
	return s >= 0 && s < numStyles
}

// String returns the style key, e.g. "meeting_notes".
func (s Style) String() string {
	if !s.Valid() {
		return fmt.Sprintf("Style(%d)", int(s))
	}
	return catalog[s].key
}

// Instruction returns the instruction text for the style.
// Invalid styles return the Default instruction.
func (s Style) Instruction() string {
	if !s.Valid() {
		return catalog[Default].instruction
	}
	return catalog[s].instruction
}

// MarshalText implements encoding.TextMarshaler.
func (s Style) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedStyle, int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler so styles can be read
// directly from YAML and TOML config files.
func (s *Style) UnmarshalText(text []byte) error {
	parsed, err := ParseStyle(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseStyle looks up a style by key.
func ParseStyle(key string) (Style, error) {
	for i, e := range catalog {
		if e.key == key {
			return Style(i), nil
		}
	}
	return Default, fmt.Errorf("%w: %q", ErrUnsupportedStyle, key)
}

// ParseStyleOrDefault looks up a style by key, falling back to Default.
func ParseStyleOrDefault(key string) Style {
	s, err := ParseStyle(key)
	if err != nil {
		return Default
	}
	return s
}

// Styles returns every catalog style in display order.
func Styles() []Style {
	styles := make([]Style, numStyles)
	for i := range styles {
		styles[i] = Style(i)
	}
	return styles
}

// Keys returns every catalog key in display order.
func Keys() []string {
	keys := make([]string, numStyles)
	for i, e := range catalog {
		keys[i] = e.key
	}
	return keys
}
