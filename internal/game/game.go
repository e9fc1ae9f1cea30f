// Package game implements the round engine for a fill-in-the-blank
// party card game. Each round a rotating judge sits out while every
// other player plays response cards into a prompt card's blanks; the
// judge picks a winner, the winner scores a point, and the game ends
// when someone reaches the point cap or either deck runs out.
//
// The engine is driven entirely by its caller: no timers, no background
// goroutines. Every exported operation takes the per-instance mutex, so
// a chat transport may deliver concurrent joins, submissions, and
// departures for the same game without corrupting it. The engine never
// logs; surfacing errors to humans is the transport's job.
package game

import (
	rand "math/rand/v2"
	"sort"
	"sync"

	"github.com/czarbot/czarbot/internal/deck"
	"github.com/czarbot/czarbot/internal/randutil"
)

const (
	// DefaultMaxPoints is the point cap when none is configured.
	DefaultMaxPoints = 5
	// DefaultHandSize is how many response cards a player holds.
	DefaultHandSize = 10
	// MinPlayers is the smallest roster a round can run with.
	MinPlayers = 3
)

// State is the engine's phase tag.
type State int

const (
	// Starting is the pre-game lobby; the only state that admits joins.
	Starting State = iota
	// WaitingForChoices means a prompt is out and submissions are due.
	WaitingForChoices
	// WaitingForPick means all submissions are in and the judge decides.
	WaitingForPick
	// Over is terminal. Only inspection is valid afterwards.
	Over
)

// String returns the string representation of a game state.
func (s State) String() string {
	switch s {
	case Starting:
		return "starting"
	case WaitingForChoices:
		return "waiting for choices"
	case WaitingForPick:
		return "waiting for pick"
	case Over:
		return "over"
	default:
		return "unknown"
	}
}

// submission is one player's assembled answer for the current round.
// The played cards are retained so departures can unwind them.
type submission struct {
	player *Player
	cards  []deck.Card
	text   string
}

// Score is one row of the score snapshot.
type Score struct {
	Name   string
	Points int
}

// Result reports a round's winning pick.
type Result struct {
	Winner string
	Text   string
	Points int
}

// Option configures a Game during construction.
type Option func(*Game)

// WithMaxPoints sets the score a player must reach to win. The engine
// accepts any positive value; range policy belongs to the caller.
func WithMaxPoints(points int) Option {
	return func(g *Game) { g.maxPoints = points }
}

// WithHandSize sets the response-card hand capacity.
func WithHandSize(size int) Option {
	return func(g *Game) { g.handSize = size }
}

// WithRand sets the RNG used for queue and submission shuffling. Decks
// carry their own RNG. Tests use this for determinism.
func WithRand(rng *rand.Rand) Option {
	return func(g *Game) { g.rng = rng }
}

// Game aggregates the decks, roster, judge rotation, and round state of
// one game instance. It exclusively owns its players, decks, and
// submissions. Independent instances share nothing.
type Game struct {
	mu  sync.Mutex
	rng *rand.Rand

	maxPoints int
	handSize  int

	prompts   *deck.Deck
	responses *deck.Deck

	players map[string]*Player
	order   []*Player // judge rotation; front is next up
	joinSeq int

	state       State
	judge       *Player
	prompt      deck.Template
	required    int
	submissions []*submission
	scores      []Score
}

// New creates a game around the two decks. Both decks were shuffled at
// load; they are shuffled again when the game starts.
func New(prompts, responses *deck.Deck, opts ...Option) *Game {
	g := &Game{
		rng:       randutil.NewFromTime(),
		maxPoints: DefaultMaxPoints,
		handSize:  DefaultHandSize,
		prompts:   prompts,
		responses: responses,
		players:   make(map[string]*Player),
		state:     Starting,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// AddPlayer registers a new player. Joins are only valid before the
// game starts; the rotation is reshuffled so late joiners land at a
// random position.
func (g *Game) AddPlayer(name string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state != Starting {
		return ErrWrongPhase
	}
	if _, exists := g.players[name]; exists {
		return ErrDuplicatePlayer
	}

	p := &Player{name: name, state: Waiting, joined: g.joinSeq}
	g.joinSeq++
	g.players[name] = p
	g.order = append(g.order, p)
	g.rng.Shuffle(len(g.order), func(i, j int) {
		g.order[i], g.order[j] = g.order[j], g.order[i]
	})
	return nil
}

// RemovePlayer removes a player in any state. Their hand and any
// pending submission go back into the response deck, which is then
// reshuffled. Dropping below MinPlayers mid-game ends the game; losing
// the judge voids the round in progress and starts a fresh one, with
// pending submissions returned to their owners' hands.
func (g *Game) RemovePlayer(name string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	p, ok := g.players[name]
	if !ok {
		return ErrUnknownPlayer
	}
	started := g.state != Starting

	delete(g.players, name)
	for i, other := range g.order {
		if other == p {
			g.order = append(g.order[:i], g.order[i+1:]...)
			break
		}
	}

	for _, card := range p.hand {
		g.responses.Return(card)
	}
	p.hand = nil

	for i, sub := range g.submissions {
		if sub.player == p {
			for _, card := range sub.cards {
				g.responses.Return(card)
			}
			g.submissions = append(g.submissions[:i], g.submissions[i+1:]...)
			break
		}
	}
	g.responses.Shuffle()

	if g.state == Over {
		// Terminal: roster cleanup only.
		return nil
	}

	switch {
	case started && len(g.players) < MinPlayers:
		g.endGame()

	case g.state == WaitingForChoices && p != g.judge &&
		len(g.submissions) == len(g.players)-1:
		// This was the last submission we were waiting on.
		g.preparePicks()

	case started && p == g.judge:
		// The round is void without its judge. Hand everyone their
		// cards back and start over with a new judge and prompt.
		for _, sub := range g.submissions {
			owner := sub.player
			owner.hand = append(owner.hand, sub.cards...)
		}
		g.submissions = nil
		g.prepareRound()
	}
	return nil
}

// Ready starts the game. At least MinPlayers must have joined.
func (g *Game) Ready() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state != Starting {
		return ErrWrongPhase
	}
	if len(g.players) < MinPlayers {
		return ErrNotEnoughPlayers
	}
	g.prepareRound()
	return nil
}

// Choose plays the cards at the given hand indices for the named
// player. Submissions are only accepted while the round is collecting
// them. Indices are validated before any mutation: a failed Choose
// leaves the hand, the player's state, and the submission list exactly
// as they were. On success the cards are merged into the prompt, the
// hand is refilled, and the round advances to picking once every
// non-judge player has submitted.
func (g *Game) Choose(name string, indices []int) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state != WaitingForChoices {
		return ErrWrongPhase
	}
	p, ok := g.players[name]
	if !ok {
		return ErrUnknownPlayer
	}
	if p.state != Choosing {
		return ErrWrongPhase
	}

	if len(indices) != g.required {
		return ErrInvalidChoice
	}
	seen := make(map[int]bool, len(indices))
	for _, idx := range indices {
		if idx < 0 || idx >= len(p.hand) || seen[idx] {
			return ErrInvalidChoice
		}
		seen[idx] = true
	}

	cards := p.removeCards(indices)
	text, err := g.prompt.Fill(cards)
	if err != nil {
		// Required-count mismatch was checked above.
		for _, card := range cards {
			p.hand = append(p.hand, card)
		}
		return ErrInvalidChoice
	}

	g.submissions = append(g.submissions, &submission{
		player: p,
		cards:  cards,
		text:   text,
	})
	p.draw(g.responses, g.handSize)
	p.state = Waiting

	if len(g.submissions) == len(g.players)-1 {
		g.preparePicks()
	}
	return nil
}

// Pick selects the round's winning submission by index, awards the
// point, and rolls into the next round (or ends the game).
func (g *Game) Pick(index int) (Result, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state != WaitingForPick {
		return Result{}, ErrWrongPhase
	}
	if index < 0 || index >= len(g.submissions) {
		return Result{}, ErrInvalidPick
	}

	winner := g.submissions[index]
	winner.player.points++
	result := Result{
		Winner: winner.player.name,
		Text:   winner.text,
		Points: winner.player.points,
	}

	g.tallyScores()
	g.prepareRound()
	return result, nil
}

// prepareRound starts a new round, or ends the game if a win condition
// is hit. Invoked by Ready, by Pick, and by judge-departure skips.
func (g *Game) prepareRound() {
	// The decks were shuffled at load; shuffle again at game start.
	if g.state == Starting {
		g.prompts.Shuffle()
		g.responses.Shuffle()
	}

	// Win check before any drawing: an ended game deals no cards.
	for _, p := range g.players {
		if p.points >= g.maxPoints {
			g.endGame()
			return
		}
	}
	for _, p := range g.players {
		p.draw(g.responses, g.handSize)
	}

	// Out of cards is the designed end, not an error.
	if g.responses.Empty() || g.prompts.Empty() {
		g.endGame()
		return
	}

	g.judge = g.order[0]
	g.order = append(g.order[1:], g.judge)

	g.submissions = nil
	for _, p := range g.players {
		p.state = Choosing
	}
	g.judge.state = Waiting

	card, err := g.prompts.Deal()
	if err != nil {
		g.endGame()
		return
	}
	g.prompt = deck.ParseTemplate(card)
	g.required = g.prompt.Required()
	g.state = WaitingForChoices
}

// preparePicks shuffles the submissions so the judge cannot infer
// authorship from arrival order, then hands the round to the judge.
func (g *Game) preparePicks() {
	g.rng.Shuffle(len(g.submissions), func(i, j int) {
		g.submissions[i], g.submissions[j] = g.submissions[j], g.submissions[i]
	})
	g.judge.state = Picking
	g.state = WaitingForPick
}

func (g *Game) endGame() {
	g.tallyScores()
	g.state = Over
}

// tallyScores rebuilds the score snapshot: points descending, ties
// broken by join order.
func (g *Game) tallyScores() {
	players := make([]*Player, 0, len(g.players))
	for _, p := range g.players {
		players = append(players, p)
	}
	sort.Slice(players, func(i, j int) bool {
		if players[i].points != players[j].points {
			return players[i].points > players[j].points
		}
		return players[i].joined < players[j].joined
	})

	g.scores = make([]Score, len(players))
	for i, p := range players {
		g.scores[i] = Score{Name: p.name, Points: p.points}
	}
}
