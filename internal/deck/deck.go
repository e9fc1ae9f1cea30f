package deck

import (
	"bufio"
	"errors"
	"fmt"
	rand "math/rand/v2"
	"os"
	"strings"
)

// ErrEmptyDeck is returned by Deal when no cards remain. The game engine
// treats exhaustion as a game-ending condition, not something to retry.
var ErrEmptyDeck = errors.New("deck is empty")

// commentPrefix marks card-file lines that should be skipped.
const commentPrefix = "#"

// Deck is an ordered, mutable, shuffled sequence of cards of one flavor.
// A dealt card is removed from the deck; a returned card is re-inserted
// and the deck reshuffled by the caller. Decks are not safe for
// concurrent use; the owning game serializes access.
type Deck struct {
	cards []Card
	rng   *rand.Rand
}

// New creates a shuffled deck from the given cards. The slice is copied
// so callers may reuse their card list for multiple games.
func New(cards []Card, rng *rand.Rand) *Deck {
	d := &Deck{
		cards: append([]Card(nil), cards...),
		rng:   rng,
	}
	d.Shuffle()
	return d
}

// LoadCards reads a line-delimited card file. Blank lines and lines
// beginning with "#" are skipped. An unreadable or empty file is an
// error: a game cannot be constructed without cards.
func LoadCards(path string) ([]Card, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening card file: %w", err)
	}
	defer f.Close()

	var cards []Card
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, commentPrefix) {
			continue
		}
		cards = append(cards, Card(line))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading card file %s: %w", path, err)
	}
	if len(cards) == 0 {
		return nil, fmt.Errorf("card file %s contains no cards", path)
	}
	return cards, nil
}

// Shuffle randomizes the order of the remaining cards.
func (d *Deck) Shuffle() {
	d.rng.Shuffle(len(d.cards), func(i, j int) {
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	})
}

// Deal removes and returns the last card of the deck.
func (d *Deck) Deal() (Card, error) {
	if len(d.cards) == 0 {
		return "", ErrEmptyDeck
	}
	card := d.cards[len(d.cards)-1]
	d.cards = d.cards[:len(d.cards)-1]
	return card, nil
}

// Return re-inserts a card, typically from a departing player's hand.
// Callers should Shuffle once all cards have been returned.
func (d *Deck) Return(card Card) {
	d.cards = append(d.cards, card)
}

// Len returns the number of cards remaining.
func (d *Deck) Len() int {
	return len(d.cards)
}

// Empty reports whether the deck has no cards left.
func (d *Deck) Empty() bool {
	return len(d.cards) == 0
}
