package deck

// Card is an opaque text token. Prompt cards may contain blank markers
// (see Template); response cards are plain text. Cards are immutable
// values: equality is textual, but a deck or hand may legitimately hold
// duplicates and operations that remove a card remove exactly one
// instance.
type Card string

// String returns the card text.
func (c Card) String() string {
	return string(c)
}
