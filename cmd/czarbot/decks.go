package main

import (
	"fmt"

	"github.com/czarbot/czarbot/cmd/czarbot/shared"
	"github.com/czarbot/czarbot/internal/deck"
)

// DecksCmd validates card files before a server is pointed at them.
type DecksCmd struct {
	Prompts   string `short:"p" default:"decks/prompts.txt" help:"Prompt deck file"`
	Responses string `short:"r" default:"decks/responses.txt" help:"Response deck file"`
}

func (c *DecksCmd) Run() error {
	logger := shared.SetupLogger("info")

	prompts, err := deck.LoadCards(c.Prompts)
	if err != nil {
		return fmt.Errorf("loading prompt deck: %w", err)
	}
	responses, err := deck.LoadCards(c.Responses)
	if err != nil {
		return fmt.Errorf("loading response deck: %w", err)
	}

	blanks := make(map[int]int)
	maxRequired := 0
	for _, card := range prompts {
		t := deck.ParseTemplate(card)
		blanks[t.Blanks()]++
		if t.Required() > maxRequired {
			maxRequired = t.Required()
		}
	}

	duplicates := 0
	seen := make(map[deck.Card]bool, len(responses))
	for _, card := range responses {
		if seen[card] {
			duplicates++
		}
		seen[card] = true
	}

	logger.Info("Prompt deck loaded", "file", c.Prompts, "cards", len(prompts))
	for n, count := range blanks {
		logger.Info("Blank count", "blanks", n, "prompts", count)
	}
	logger.Info("Response deck loaded", "file", c.Responses, "cards", len(responses), "duplicates", duplicates)

	// Dealing opening hands to a minimum game takes 3 full hands.
	if len(responses) < 3*10 {
		logger.Warn("Response deck may be too small to deal opening hands")
	}
	fmt.Printf("OK: %d prompts (up to %d cards each), %d responses\n",
		len(prompts), maxRequired, len(responses))
	return nil
}
