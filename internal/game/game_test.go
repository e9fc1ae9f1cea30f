package game

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/czarbot/czarbot/internal/deck"
	"github.com/czarbot/czarbot/internal/randutil"
)

// newTestGame builds a game with deterministic RNGs. Every prompt card
// is identical so the dealt prompt is known regardless of shuffling.
func newTestGame(t *testing.T, prompt string, numPrompts, numResponses int, opts ...Option) *Game {
	t.Helper()

	prompts := make([]deck.Card, numPrompts)
	for i := range prompts {
		prompts[i] = deck.Card(prompt)
	}
	responses := make([]deck.Card, numResponses)
	for i := range responses {
		responses[i] = deck.Card(fmt.Sprintf("response %03d", i))
	}

	opts = append([]Option{WithRand(randutil.New(42))}, opts...)
	return New(
		deck.New(prompts, randutil.New(1)),
		deck.New(responses, randutil.New(2)),
		opts...,
	)
}

func addPlayers(t *testing.T, g *Game, names ...string) {
	t.Helper()
	for _, name := range names {
		require.NoError(t, g.AddPlayer(name))
	}
}

// nonJudges returns the roster minus the acting judge.
func nonJudges(g *Game) []string {
	var names []string
	for _, name := range g.Players() {
		if name != g.Judge() {
			names = append(names, name)
		}
	}
	return names
}

// submitAll makes every choosing player submit their first cards.
func submitAll(t *testing.T, g *Game) {
	t.Helper()
	required := g.Required()
	indices := make([]int, required)
	for i := range indices {
		indices[i] = i
	}
	for _, name := range nonJudges(g) {
		state, err := g.PlayerState(name)
		require.NoError(t, err)
		if state == Choosing {
			require.NoError(t, g.Choose(name, indices))
		}
	}
}

func TestAddPlayer(t *testing.T) {
	g := newTestGame(t, "Why %s?", 10, 100)

	require.NoError(t, g.AddPlayer("alice"))
	assert.ErrorIs(t, g.AddPlayer("alice"), ErrDuplicatePlayer)

	addPlayers(t, g, "bob", "carol")
	assert.Equal(t, 3, g.PlayerCount())

	require.NoError(t, g.Ready())
	assert.ErrorIs(t, g.AddPlayer("dave"), ErrWrongPhase, "no joins after start")
}

func TestReadyRequiresThreePlayers(t *testing.T) {
	g := newTestGame(t, "Why %s?", 10, 100)

	addPlayers(t, g, "alice", "bob")
	assert.ErrorIs(t, g.Ready(), ErrNotEnoughPlayers)
	assert.Equal(t, Starting, g.State(), "failed start must not change state")

	addPlayers(t, g, "carol")
	require.NoError(t, g.Ready())
	assert.Equal(t, WaitingForChoices, g.State())
	assert.ErrorIs(t, g.Ready(), ErrWrongPhase, "double start")
}

func TestRoundStartDealsHandsAndPrompt(t *testing.T) {
	g := newTestGame(t, "I can't stop thinking about %s.", 10, 100)
	addPlayers(t, g, "alice", "bob", "carol")
	require.NoError(t, g.Ready())

	judge := g.Judge()
	require.NotEmpty(t, judge)
	assert.Equal(t, 1, g.Required())
	assert.Equal(t, "I can't stop thinking about ____.", g.PromptText(""))

	for _, name := range g.Players() {
		hand, err := g.Hand(name)
		require.NoError(t, err)
		assert.Len(t, hand, DefaultHandSize)

		state, err := g.PlayerState(name)
		require.NoError(t, err)
		if name == judge {
			assert.Equal(t, Waiting, state)
		} else {
			assert.Equal(t, Choosing, state)
		}
	}

	// Three hands of 10 dealt from 100 responses, one prompt dealt.
	g.mu.Lock()
	responsesLeft, promptsLeft := g.responses.Len(), g.prompts.Len()
	g.mu.Unlock()
	assert.Equal(t, 70, responsesLeft)
	assert.Equal(t, 9, promptsLeft)
}

func TestChooseValidation(t *testing.T) {
	g := newTestGame(t, "Why %s?", 10, 100)
	addPlayers(t, g, "alice", "bob", "carol")
	require.NoError(t, g.Ready())

	judge := g.Judge()
	player := nonJudges(g)[0]

	before, err := g.Hand(player)
	require.NoError(t, err)

	t.Run("unknown player", func(t *testing.T) {
		assert.ErrorIs(t, g.Choose("mallory", []int{0}), ErrUnknownPlayer)
	})

	t.Run("judge cannot choose", func(t *testing.T) {
		assert.ErrorIs(t, g.Choose(judge, []int{0}), ErrWrongPhase)
	})

	t.Run("out of range index", func(t *testing.T) {
		assert.ErrorIs(t, g.Choose(player, []int{10}), ErrInvalidChoice)
		assert.ErrorIs(t, g.Choose(player, []int{-1}), ErrInvalidChoice)
	})

	t.Run("wrong card count", func(t *testing.T) {
		assert.ErrorIs(t, g.Choose(player, []int{0, 1}), ErrInvalidChoice)
		assert.ErrorIs(t, g.Choose(player, nil), ErrInvalidChoice)
	})

	// A failed choose leaves everything untouched.
	after, err := g.Hand(player)
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Empty(t, g.Submissions())
	state, err := g.PlayerState(player)
	require.NoError(t, err)
	assert.Equal(t, Choosing, state)

	t.Run("double submission", func(t *testing.T) {
		require.NoError(t, g.Choose(player, []int{0}))
		assert.ErrorIs(t, g.Choose(player, []int{0}), ErrWrongPhase)
	})
}

func TestChooseRejectsDuplicateIndices(t *testing.T) {
	g := newTestGame(t, "Why did %s %s?", 10, 100)
	addPlayers(t, g, "alice", "bob", "carol")
	require.NoError(t, g.Ready())

	player := nonJudges(g)[0]
	assert.ErrorIs(t, g.Choose(player, []int{3, 3}), ErrInvalidChoice,
		"the same hand card cannot fill two blanks")
}

func TestSubmissionCountTriggersPick(t *testing.T) {
	g := newTestGame(t, "Why %s?", 10, 100)
	addPlayers(t, g, "alice", "bob", "carol", "dave")
	require.NoError(t, g.Ready())

	players := nonJudges(g)
	require.Len(t, players, 3)

	require.NoError(t, g.Choose(players[0], []int{0}))
	assert.Equal(t, WaitingForChoices, g.State())
	require.NoError(t, g.Choose(players[1], []int{0}))
	assert.Equal(t, WaitingForChoices, g.State())
	require.NoError(t, g.Choose(players[2], []int{0}))

	assert.Equal(t, WaitingForPick, g.State(), "last submission flips the round")
	assert.Len(t, g.Submissions(), 3)

	judgeState, err := g.PlayerState(g.Judge())
	require.NoError(t, err)
	assert.Equal(t, Picking, judgeState)
}

func TestChooseRefillsHand(t *testing.T) {
	g := newTestGame(t, "Why did %s %s?", 10, 100)
	addPlayers(t, g, "alice", "bob", "carol")
	require.NoError(t, g.Ready())

	player := nonJudges(g)[0]
	before, err := g.Hand(player)
	require.NoError(t, err)

	require.NoError(t, g.Choose(player, []int{0, 5}))

	after, err := g.Hand(player)
	require.NoError(t, err)
	assert.Len(t, after, DefaultHandSize, "hand topped back up after playing")
	assert.NotContains(t, after, before[0])
	assert.NotContains(t, after, before[5])
}

func TestTwoBlankSubstitutionOrder(t *testing.T) {
	g := newTestGame(t, "Why did %s %s?", 10, 100)
	addPlayers(t, g, "alice", "bob", "carol")
	require.NoError(t, g.Ready())
	require.Equal(t, 2, g.Required())

	players := nonJudges(g)
	hand, err := g.Hand(players[0])
	require.NoError(t, err)
	want := fmt.Sprintf("Why did %s %s?", hand[0], hand[5])

	require.NoError(t, g.Choose(players[0], []int{0, 5}))
	require.NoError(t, g.Choose(players[1], []int{0, 1}))

	assert.Contains(t, g.Submissions(), want, "cards fill blanks left to right")
}

func TestZeroBlankPromptTakesOneCardVerbatim(t *testing.T) {
	g := newTestGame(t, "What's that smell?", 10, 100)
	addPlayers(t, g, "alice", "bob", "carol")
	require.NoError(t, g.Ready())
	require.Equal(t, 1, g.Required())

	players := nonJudges(g)
	hand, err := g.Hand(players[0])
	require.NoError(t, err)

	require.NoError(t, g.Choose(players[0], []int{2}))
	assert.Contains(t, g.Submissions(), string(hand[2]))
}

func TestPickAwardsPointAndStartsNextRound(t *testing.T) {
	g := newTestGame(t, "Why %s?", 10, 200)
	addPlayers(t, g, "alice", "bob", "carol")
	require.NoError(t, g.Ready())

	firstJudge := g.Judge()
	submitAll(t, g)
	require.Equal(t, WaitingForPick, g.State())

	_, err := g.Pick(5)
	assert.ErrorIs(t, err, ErrInvalidPick)
	_, err = g.Pick(-1)
	assert.ErrorIs(t, err, ErrInvalidPick)

	result, err := g.Pick(0)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Points)
	assert.NotEqual(t, firstJudge, result.Winner, "the judge never submits")

	// Next round is underway with the rotation advanced.
	assert.Equal(t, WaitingForChoices, g.State())
	assert.NotEqual(t, firstJudge, g.Judge(), "judge rotates to the back")

	scores := g.Scores()
	require.NotEmpty(t, scores)
	assert.Equal(t, result.Winner, scores[0].Name)
	assert.Equal(t, 1, scores[0].Points)

	_, err = g.Pick(0)
	assert.ErrorIs(t, err, ErrWrongPhase, "pick outside the picking phase")
}

func TestPickWrongPhase(t *testing.T) {
	g := newTestGame(t, "Why %s?", 10, 100)
	addPlayers(t, g, "alice", "bob", "carol")

	_, err := g.Pick(0)
	assert.ErrorIs(t, err, ErrWrongPhase)
}

func TestMaxPointsEndsGameWithoutDrawing(t *testing.T) {
	g := newTestGame(t, "Why %s?", 10, 200, WithMaxPoints(1))
	addPlayers(t, g, "alice", "bob", "carol")
	require.NoError(t, g.Ready())

	submitAll(t, g)
	result, err := g.Pick(0)
	require.NoError(t, err)

	assert.Equal(t, Over, g.State(), "winner hit the cap, game ends")
	scores := g.Scores()
	require.NotEmpty(t, scores)
	assert.Equal(t, result.Winner, scores[0].Name)

	// Terminal state rejects everything but inspection.
	assert.ErrorIs(t, g.Ready(), ErrWrongPhase)
	assert.ErrorIs(t, g.AddPlayer("dave"), ErrWrongPhase)
	_, err = g.Pick(0)
	assert.ErrorIs(t, err, ErrWrongPhase)
}

func TestDeckExhaustionEndsGame(t *testing.T) {
	// 31 responses: three opening hands of 10 leave 1 card. The round
	// plays, hands refill short, and the next round preparation finds
	// the response deck empty and ends the game.
	g := newTestGame(t, "Why %s?", 10, 31)
	addPlayers(t, g, "alice", "bob", "carol")
	require.NoError(t, g.Ready())

	submitAll(t, g)
	_, err := g.Pick(0)
	require.NoError(t, err)

	assert.Equal(t, Over, g.State())
	assert.NotEmpty(t, g.Scores(), "ending tallies a final snapshot")
}

func TestRemovePlayerReturnsCardsToDeck(t *testing.T) {
	g := newTestGame(t, "Why %s?", 10, 100)
	addPlayers(t, g, "alice", "bob", "carol", "dave")
	require.NoError(t, g.Ready())

	// 100 responses minus four hands of 10.
	player := nonJudges(g)[0]
	require.NoError(t, g.Choose(player, []int{0}))

	// player now holds 10 again (refilled) plus 1 card locked in the
	// submission; deck holds 100 - 40 - 1 = 59.
	require.NoError(t, g.RemovePlayer(player))

	// Their 10 hand cards and the submitted card come back: 59+11=70.
	g.mu.Lock()
	deckLen := g.responses.Len()
	g.mu.Unlock()
	assert.Equal(t, 70, deckLen)
	assert.Empty(t, g.Submissions(), "pending submission was excised")
	assert.ErrorIs(t, g.RemovePlayer(player), ErrUnknownPlayer)
}

func TestRemovePlayerBelowMinimumEndsGame(t *testing.T) {
	g := newTestGame(t, "Why %s?", 10, 100)
	addPlayers(t, g, "alice", "bob", "carol")
	require.NoError(t, g.Ready())

	require.NoError(t, g.RemovePlayer(nonJudges(g)[0]))
	assert.Equal(t, Over, g.State(), "two players cannot continue")
}

func TestChooseAfterForcedEnd(t *testing.T) {
	g := newTestGame(t, "Why %s?", 10, 100)
	addPlayers(t, g, "alice", "bob", "carol")
	require.NoError(t, g.Ready())

	// Ending the game mid-round leaves the remaining player still
	// tagged Choosing; their submission must be rejected anyway.
	remaining := nonJudges(g)
	require.NoError(t, g.RemovePlayer(remaining[0]))
	require.Equal(t, Over, g.State())

	assert.ErrorIs(t, g.Choose(remaining[1], []int{0}), ErrWrongPhase)
	assert.Equal(t, Over, g.State(), "a terminal game stays terminal")
	assert.Empty(t, g.Submissions())
}

func TestRemovePlayerPreStart(t *testing.T) {
	g := newTestGame(t, "Why %s?", 10, 100)
	addPlayers(t, g, "alice", "bob", "carol")

	require.NoError(t, g.RemovePlayer("bob"))
	assert.Equal(t, Starting, g.State(), "pre-start removal is pure bookkeeping")
	assert.Equal(t, 2, g.PlayerCount())
	assert.ErrorIs(t, g.RemovePlayer("mallory"), ErrUnknownPlayer)
}

func TestRemoveLastChooserAdvancesToPick(t *testing.T) {
	g := newTestGame(t, "Why %s?", 10, 100)
	addPlayers(t, g, "alice", "bob", "carol", "dave")
	require.NoError(t, g.Ready())

	players := nonJudges(g)
	require.NoError(t, g.Choose(players[0], []int{0}))
	require.NoError(t, g.Choose(players[1], []int{0}))
	require.Equal(t, WaitingForChoices, g.State())

	// The only player still owed a submission leaves.
	require.NoError(t, g.RemovePlayer(players[2]))

	assert.Equal(t, WaitingForPick, g.State())
	assert.Len(t, g.Submissions(), 2)
}

func TestJudgeDepartureSkipsRound(t *testing.T) {
	g := newTestGame(t, "Why did %s %s?", 10, 200)
	addPlayers(t, g, "alice", "bob", "carol", "dave")
	require.NoError(t, g.Ready())

	judge := g.Judge()
	players := nonJudges(g)
	submitAll(t, g)
	require.Equal(t, WaitingForPick, g.State())

	require.NoError(t, g.RemovePlayer(judge))

	// A fresh round: new judge, submissions undone, cards back with
	// their owners (on top of the refilled hand).
	assert.Equal(t, WaitingForChoices, g.State())
	assert.NotEqual(t, judge, g.Judge())
	assert.Empty(t, g.Submissions())

	newJudge := g.Judge()
	for _, name := range players {
		hand, err := g.Hand(name)
		require.NoError(t, err)
		if name == newJudge {
			continue
		}
		assert.Len(t, hand, DefaultHandSize+2,
			"returned submission cards sit on top of the refilled hand")
	}
}

func TestJudgeDepartureDuringChoices(t *testing.T) {
	g := newTestGame(t, "Why %s?", 10, 200)
	addPlayers(t, g, "alice", "bob", "carol", "dave")
	require.NoError(t, g.Ready())

	judge := g.Judge()
	players := nonJudges(g)
	require.NoError(t, g.Choose(players[0], []int{0}))

	require.NoError(t, g.RemovePlayer(judge))

	assert.Equal(t, WaitingForChoices, g.State(), "round restarts without the judge")
	assert.NotEqual(t, judge, g.Judge())
	assert.Empty(t, g.Submissions())
}

func TestScoresSortedWithStableTies(t *testing.T) {
	g := newTestGame(t, "Why %s?", 10, 100)
	addPlayers(t, g, "alice", "bob", "carol")

	// Reach into the roster to fabricate a standing: bob leads, alice
	// and carol tie and must stay in join order.
	g.mu.Lock()
	g.players["bob"].points = 3
	g.players["alice"].points = 1
	g.players["carol"].points = 1
	g.tallyScores()
	g.mu.Unlock()

	scores := g.Scores()
	require.Len(t, scores, 3)
	assert.Equal(t, Score{Name: "bob", Points: 3}, scores[0])
	assert.Equal(t, Score{Name: "alice", Points: 1}, scores[1])
	assert.Equal(t, Score{Name: "carol", Points: 1}, scores[2])
}

func TestFullGame(t *testing.T) {
	g := newTestGame(t, "Why %s?", 50, 500, WithMaxPoints(3))
	addPlayers(t, g, "alice", "bob", "carol", "dave")
	require.NoError(t, g.Ready())

	// Judge index 0 every round until somebody reaches three points.
	for rounds := 0; g.State() != Over; rounds++ {
		require.Less(t, rounds, 50, "game should converge")
		submitAll(t, g)
		require.Equal(t, WaitingForPick, g.State())
		_, err := g.Pick(0)
		require.NoError(t, err)
	}

	scores := g.Scores()
	require.Len(t, scores, 4)
	assert.Equal(t, 3, scores[0].Points)
	for i := 1; i < len(scores); i++ {
		assert.GreaterOrEqual(t, scores[i-1].Points, scores[i].Points)
	}
}
