package game

import "github.com/czarbot/czarbot/internal/deck"

// PlayerState is a player's turn-state tag within the current round.
type PlayerState int

const (
	// Waiting players have nothing to do right now (they already
	// submitted, or they are the judge waiting on submissions).
	Waiting PlayerState = iota
	// Choosing players owe the round a submission.
	Choosing
	// Picking is the judge while a winner is being selected.
	Picking
)

// String returns the string representation of a player state.
func (ps PlayerState) String() string {
	switch ps {
	case Waiting:
		return "waiting"
	case Choosing:
		return "choosing"
	case Picking:
		return "picking"
	default:
		return "unknown"
	}
}

// Player is one seat in a game. The engine owns all players and performs
// every draw on their behalf; players never reach back into the game.
type Player struct {
	name   string
	hand   []deck.Card
	points int
	state  PlayerState
	joined int // insertion order, breaks scoring ties
}

// Name returns the player's unique name.
func (p *Player) Name() string { return p.name }

// Points returns the player's accumulated score.
func (p *Player) Points() int { return p.points }

// State returns the player's current turn-state tag.
func (p *Player) State() PlayerState { return p.state }

// Hand returns a copy of the player's current hand.
func (p *Player) Hand() []deck.Card {
	return append([]deck.Card(nil), p.hand...)
}

// draw tops the hand up to handSize from the given deck. It stops
// quietly when the deck runs dry; round preparation decides whether
// that ends the game.
func (p *Player) draw(d *deck.Deck, handSize int) {
	for len(p.hand) < handSize && !d.Empty() {
		card, err := d.Deal()
		if err != nil {
			return
		}
		p.hand = append(p.hand, card)
	}
}

// removeCards removes exactly the cards at the given hand indices and
// returns them in index order. Indices must be pre-validated.
func (p *Player) removeCards(indices []int) []deck.Card {
	cards := make([]deck.Card, len(indices))
	for i, idx := range indices {
		cards[i] = p.hand[idx]
	}

	// Delete from the highest index down so earlier positions stay valid.
	sorted := append([]int(nil), indices...)
	for i := 0; i < len(sorted); i++ {
		for j := i + 1; j < len(sorted); j++ {
			if sorted[j] > sorted[i] {
				sorted[i], sorted[j] = sorted[j], sorted[i]
			}
		}
	}
	for _, idx := range sorted {
		p.hand = append(p.hand[:idx], p.hand[idx+1:]...)
	}
	return cards
}
