package deck

import (
	"fmt"
	"strings"
)

// Blank is the marker that denotes a fill-in slot in a prompt card.
// Card files keep the historical "%s" form, but a prompt is parsed once
// into segments and blank positions; filling is an explicit indexed
// merge, never a format call.
const Blank = "%s"

// DefaultPlaceholder is what Display substitutes for blanks when a
// prompt is rendered to players before anyone has answered.
const DefaultPlaceholder = "____"

// Template is a prompt card parsed into its text segments and blank
// slots. A template with n blanks has n+1 segments (possibly empty).
type Template struct {
	raw      string
	segments []string
}

// ParseTemplate splits a prompt card on its blank markers.
func ParseTemplate(card Card) Template {
	raw := string(card)
	return Template{
		raw:      raw,
		segments: strings.Split(raw, Blank),
	}
}

// Blanks returns the number of blank slots in the prompt.
func (t Template) Blanks() int {
	return len(t.segments) - 1
}

// Required returns how many response cards the prompt consumes. Prompts
// with no blanks still take one card, played verbatim.
func (t Template) Required() int {
	if b := t.Blanks(); b > 0 {
		return b
	}
	return 1
}

// Fill merges the played cards into the prompt, left to right. A prompt
// with zero blanks yields the single card's text verbatim.
func (t Template) Fill(cards []Card) (string, error) {
	if len(cards) != t.Required() {
		return "", fmt.Errorf("prompt needs %d cards, got %d", t.Required(), len(cards))
	}
	if t.Blanks() == 0 {
		return string(cards[0]), nil
	}

	var b strings.Builder
	for i, seg := range t.segments {
		b.WriteString(seg)
		if i < len(cards) {
			b.WriteString(string(cards[i]))
		}
	}
	return b.String(), nil
}

// Display renders the prompt for players, with blanks replaced by the
// given placeholder. An empty placeholder uses DefaultPlaceholder.
func (t Template) Display(placeholder string) string {
	if placeholder == "" {
		placeholder = DefaultPlaceholder
	}
	return strings.Join(t.segments, placeholder)
}

// String returns the raw prompt text, markers intact.
func (t Template) String() string {
	return t.raw
}
