package game

import (
	"sort"

	"github.com/czarbot/czarbot/internal/deck"
)

// The query surface exists for the transport layer to render state. All
// queries snapshot under the instance lock and return copies; callers
// can never reach the engine's internals.

// State returns the engine's current phase.
func (g *Game) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// MaxPoints returns the configured point cap.
func (g *Game) MaxPoints() int {
	return g.maxPoints
}

// Judge returns the acting judge's name, or "" outside an active round.
func (g *Game) Judge() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.judge == nil {
		return ""
	}
	return g.judge.name
}

// Players returns the roster in join order.
func (g *Game) Players() []string {
	g.mu.Lock()
	defer g.mu.Unlock()

	players := make([]*Player, 0, len(g.players))
	for _, p := range g.players {
		players = append(players, p)
	}
	sort.Slice(players, func(i, j int) bool {
		return players[i].joined < players[j].joined
	})

	names := make([]string, len(players))
	for i, p := range players {
		names[i] = p.name
	}
	return names
}

// PlayerCount returns the roster size.
func (g *Game) PlayerCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.players)
}

// Hand returns a copy of the named player's hand.
func (g *Game) Hand(name string) ([]deck.Card, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	p, ok := g.players[name]
	if !ok {
		return nil, ErrUnknownPlayer
	}
	return p.Hand(), nil
}

// PlayerState returns the named player's turn-state tag.
func (g *Game) PlayerState(name string) (PlayerState, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	p, ok := g.players[name]
	if !ok {
		return Waiting, ErrUnknownPlayer
	}
	return p.state, nil
}

// PromptText renders the current prompt with blanks replaced by the
// placeholder ("" uses the default).
func (g *Game) PromptText(placeholder string) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.prompt.Display(placeholder)
}

// Required returns how many cards the current prompt consumes.
func (g *Game) Required() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.required
}

// Submissions returns the assembled submission texts in their shuffled
// presentation order. Authors stay hidden until the judge picks.
func (g *Game) Submissions() []string {
	g.mu.Lock()
	defer g.mu.Unlock()

	texts := make([]string, len(g.submissions))
	for i, sub := range g.submissions {
		texts[i] = sub.text
	}
	return texts
}

// Choosing returns the names of players still owing a submission.
func (g *Game) Choosing() []string {
	g.mu.Lock()
	defer g.mu.Unlock()

	var names []string
	for _, p := range g.order {
		if p.state == Choosing {
			names = append(names, p.name)
		}
	}
	return names
}

// Scores returns the latest score snapshot: points descending, ties in
// join order. Empty until the first tally (a pick or a game end).
func (g *Game) Scores() []Score {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]Score(nil), g.scores...)
}
