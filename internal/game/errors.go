package game

import "errors"

// All engine errors are recoverable by the caller and leave game state
// untouched. Callers match them with errors.Is; the transport layer
// decides which ones are worth relaying to chat.
var (
	// ErrWrongPhase means the operation was invoked outside its valid
	// state, or outside the acting player's turn.
	ErrWrongPhase = errors.New("wrong phase for this move")

	// ErrDuplicatePlayer means the name is already in the roster.
	ErrDuplicatePlayer = errors.New("player already in the game")

	// ErrUnknownPlayer means no player with that name is registered.
	ErrUnknownPlayer = errors.New("no such player")

	// ErrNotEnoughPlayers means a start was attempted with fewer than
	// MinPlayers registered.
	ErrNotEnoughPlayers = errors.New("not enough players")

	// ErrInvalidChoice means a submission referenced malformed or
	// out-of-range hand indices. The hand is not mutated.
	ErrInvalidChoice = errors.New("invalid card choice")

	// ErrInvalidPick means the judge picked a submission index that is
	// out of range. No score is mutated.
	ErrInvalidPick = errors.New("invalid pick")
)
