package prompt

import (
	"fmt"
	"strings"
)

// CueMarker is appended to every prompt.
const CueMarker = "Summary:"

// Options selects the instruction for a prompt.
type Options struct {
	// Style picks the catalog instruction. Ignored when CustomPrompt is set.
	Style Style

	// CustomPrompt replaces the style instruction entirely when non-empty.
	CustomPrompt string
}

// Instruction returns the instruction these options resolve to.
func (o Options) Instruction() (string, error) {
	if o.CustomPrompt != "" {
		return o.CustomPrompt, nil
	}
	if !o.Style.Valid() {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedStyle, o.Style)
	}
	return o.Style.Instruction(), nil
}

// Build returns instruction, a blank line, text, a blank line, and CueMarker.
func Build(text string, opts Options) (string, error) {
	instruction, err := opts.Instruction()
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.Grow(len(instruction) + len(text) + len(CueMarker) + 4)
	sb.WriteString(instruction)
	sb.WriteString("\n\n")
	sb.WriteString(text)
	sb.WriteString("\n\n")
	sb.WriteString(CueMarker)
	return sb.String(), nil
}
