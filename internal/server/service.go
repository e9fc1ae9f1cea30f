package server

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/google/uuid"

	"github.com/czarbot/czarbot/internal/deck"
	"github.com/czarbot/czarbot/internal/game"
	"github.com/czarbot/czarbot/internal/randutil"
	"github.com/czarbot/czarbot/internal/server/statistics"
)

// Client is one connected chat participant. Connections implement it;
// tests substitute fakes.
type Client interface {
	Name() string
	Send(msg *Message)
}

// Room is one chat room holding at most one game at a time. The service
// owns the room registry; the engine knows nothing about rooms.
type Room struct {
	ID         string
	Name       string
	game       *game.Game
	members    map[string]Client
	lastActive time.Time
}

func (r *Room) memberNames() []string {
	names := make([]string, 0, len(r.members))
	for name := range r.members {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GameService owns all rooms and drives game instances from chat
// commands. Card lists are loaded once at construction; each new game
// gets its own freshly shuffled decks.
type GameService struct {
	logger    *log.Logger
	clock     quartz.Clock
	stats     *statistics.Store
	settings  GameSettings
	prompts   []deck.Card
	responses []deck.Card

	mu    sync.Mutex
	rooms map[string]*Room
}

// NewGameService loads both card lists and builds the service. Missing
// or empty card files are fatal: no game can exist without cards.
func NewGameService(settings GameSettings, stats *statistics.Store, clock quartz.Clock, logger *log.Logger) (*GameService, error) {
	prompts, err := deck.LoadCards(settings.PromptDeck)
	if err != nil {
		return nil, fmt.Errorf("loading prompt deck: %w", err)
	}
	responses, err := deck.LoadCards(settings.ResponseDeck)
	if err != nil {
		return nil, fmt.Errorf("loading response deck: %w", err)
	}

	s := &GameService{
		logger:    logger.WithPrefix("service"),
		clock:     clock,
		stats:     stats,
		settings:  settings,
		prompts:   prompts,
		responses: responses,
		rooms:     make(map[string]*Room),
	}
	return s, nil
}

// JoinRoom adds the client to the named room, creating it on demand.
func (s *GameService) JoinRoom(c Client, roomName string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[roomName]
	if !ok {
		room = &Room{
			ID:      uuid.NewString(),
			Name:    roomName,
			members: make(map[string]Client),
		}
		s.rooms[roomName] = room
		s.logger.Info("Room created", "room", roomName, "id", room.ID)
	}
	room.members[c.Name()] = c
	room.lastActive = s.clock.Now()

	s.sendTo(c, MessageTypeRoomJoined, RoomJoinedData{
		Room:    roomName,
		Members: room.memberNames(),
	})
	s.notice(room, fmt.Sprintf("%s joined the room.", c.Name()))
}

// LeaveRoom removes the client from its room, and from any game there.
func (s *GameService) LeaveRoom(c Client, roomName string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[roomName]
	if !ok || room.members[c.Name()] == nil {
		return
	}
	s.removeFromGame(room, c.Name())
	delete(room.members, c.Name())
	s.broadcast(room, MessageTypePlayerLeft, PlayerLeftData{Room: roomName, Player: c.Name()})

	if len(room.members) == 0 && room.game == nil {
		delete(s.rooms, roomName)
		s.logger.Info("Room removed", "room", roomName)
	}
}

// Disconnect removes the client from every room it occupies.
func (s *GameService) Disconnect(c Client) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for name, room := range s.rooms {
		if room.members[c.Name()] == nil {
			continue
		}
		s.removeFromGame(room, c.Name())
		delete(room.members, c.Name())
		s.broadcast(room, MessageTypePlayerLeft, PlayerLeftData{Room: name, Player: c.Name()})
		if len(room.members) == 0 && room.game == nil {
			delete(s.rooms, name)
		}
	}
}

// Play creates a game in the room (joining the creator automatically)
// or joins the pending one, mirroring the .play chat command.
func (s *GameService) Play(c Client, roomName string, maxPoints int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room := s.memberRoom(c, roomName)
	if room == nil {
		return
	}
	room.lastActive = s.clock.Now()

	if room.game == nil {
		if maxPoints == 0 {
			maxPoints = s.settings.DefaultMaxPoints
		}
		if maxPoints < s.settings.MinPoints || maxPoints > s.settings.MaxPoints {
			s.sendTo(c, MessageTypeError, ErrorData{
				Code: "bad_max_points",
				Message: fmt.Sprintf("Games run to between %d and %d points.",
					s.settings.MinPoints, s.settings.MaxPoints),
			})
			return
		}

		rng := randutil.NewFromTime()
		room.game = game.New(
			deck.New(s.prompts, rng),
			deck.New(s.responses, rng),
			game.WithMaxPoints(maxPoints),
			game.WithHandSize(s.settings.HandSize),
		)
		if err := room.game.AddPlayer(c.Name()); err != nil {
			// A fresh game always admits its creator.
			s.logger.Error("Failed to seat game creator", "error", err)
			room.game = nil
			return
		}

		s.broadcast(room, MessageTypeGameCreated, GameCreatedData{
			Room:      roomName,
			Creator:   c.Name(),
			MaxPoints: maxPoints,
		})
		s.notice(room, fmt.Sprintf("A new game has been created; %s is in. "+
			"Use play to join, then ready to begin. First to %d points wins.",
			c.Name(), maxPoints))
		return
	}

	err := room.game.AddPlayer(c.Name())
	switch {
	case errors.Is(err, game.ErrWrongPhase):
		s.sendTo(c, MessageTypeError, ErrorData{Code: "in_progress", Message: "The game is already in progress."})
	case errors.Is(err, game.ErrDuplicatePlayer):
		s.sendTo(c, MessageTypeError, ErrorData{Code: "already_playing", Message: "You're already playing."})
	case err == nil:
		s.broadcast(room, MessageTypePlayerJoined, PlayerJoinedData{
			Room:    roomName,
			Player:  c.Name(),
			Players: room.game.Players(),
		})
		s.notice(room, fmt.Sprintf("%s has joined the game. Players: %s",
			c.Name(), strings.Join(room.game.Players(), ", ")))
	}
}

// Ready starts the room's game, mirroring the .ready chat command.
func (s *GameService) Ready(c Client, roomName string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room := s.memberRoom(c, roomName)
	if room == nil {
		return
	}
	g := room.game
	if g == nil {
		s.sendTo(c, MessageTypeError, ErrorData{Code: "no_game", Message: "No game in progress. Start one with play."})
		return
	}
	if _, err := g.PlayerState(c.Name()); errors.Is(err, game.ErrUnknownPlayer) {
		s.sendTo(c, MessageTypeError, ErrorData{Code: "not_playing", Message: "Don't start a game you're not playing."})
		return
	}

	switch err := g.Ready(); {
	case errors.Is(err, game.ErrWrongPhase):
		s.sendTo(c, MessageTypeError, ErrorData{Code: "in_progress", Message: "The game has already begun."})
		return
	case errors.Is(err, game.ErrNotEnoughPlayers):
		s.sendTo(c, MessageTypeError, ErrorData{Code: "not_enough_players", Message: "Not enough players to begin the game."})
		return
	}

	room.lastActive = s.clock.Now()
	s.notice(room, fmt.Sprintf("The game has begun! Playing until someone earns %d points or the cards run out.", g.MaxPoints()))
	s.announceRound(room)
}

// Choose plays cards for the client, mirroring .choose.
func (s *GameService) Choose(c Client, roomName string, indices []int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room := s.memberRoom(c, roomName)
	if room == nil {
		return
	}
	g := room.game
	if g == nil {
		s.sendTo(c, MessageTypeError, ErrorData{Code: "no_game", Message: "No game in progress."})
		return
	}

	switch err := g.Choose(c.Name(), indices); {
	case errors.Is(err, game.ErrInvalidChoice):
		s.sendTo(c, MessageTypeError, ErrorData{Code: "invalid_choice", Message: "That isn't a valid choice."})
		return
	case errors.Is(err, game.ErrUnknownPlayer):
		s.sendTo(c, MessageTypeError, ErrorData{Code: "not_playing", Message: "It doesn't look like you're playing. Join in next time!"})
		return
	case errors.Is(err, game.ErrWrongPhase):
		s.sendTo(c, MessageTypeError, ErrorData{Code: "not_your_turn", Message: "Please wait for your turn."})
		return
	}

	room.lastActive = s.clock.Now()
	if g.State() == game.WaitingForPick {
		s.announcePick(room)
		return
	}
	s.broadcast(room, MessageTypePlayerChose, PlayerChoseData{
		Room:          roomName,
		Player:        c.Name(),
		StillChoosing: g.Choosing(),
	})
}

// Pick selects the round winner for the judge, mirroring the .pick
// chat command.
func (s *GameService) Pick(c Client, roomName string, index int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room := s.memberRoom(c, roomName)
	if room == nil {
		return
	}
	g := room.game
	if g == nil {
		s.sendTo(c, MessageTypeError, ErrorData{Code: "no_game", Message: "No game in progress."})
		return
	}
	if g.Judge() != c.Name() {
		s.sendTo(c, MessageTypeError, ErrorData{Code: "not_judge", Message: "Only the judge picks a winner."})
		return
	}

	result, err := g.Pick(index)
	switch {
	case errors.Is(err, game.ErrInvalidPick):
		s.sendTo(c, MessageTypeError, ErrorData{Code: "invalid_pick", Message: "Invalid pick. Please try again!"})
		return
	case errors.Is(err, game.ErrWrongPhase):
		s.sendTo(c, MessageTypeError, ErrorData{Code: "not_picking", Message: "Wrong time to pick a winner."})
		return
	}

	room.lastActive = s.clock.Now()
	s.broadcast(room, MessageTypeRoundResult, RoundResultData{
		Room:   roomName,
		Winner: result.Winner,
		Text:   result.Text,
		Points: result.Points,
	})
	s.notice(room, fmt.Sprintf("%s won the round with '%s' and now has %d point(s).",
		result.Winner, result.Text, result.Points))

	switch g.State() {
	case game.WaitingForChoices:
		s.announceRound(room)
	case game.Over:
		s.finishGame(room, "completed", true)
	}
}

// Score broadcasts the current standing merged with the ledger.
func (s *GameService) Score(c Client, roomName string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room := s.memberRoom(c, roomName)
	if room == nil {
		return
	}
	if room.game == nil {
		s.sendTo(c, MessageTypeError, ErrorData{Code: "no_game", Message: "No game in progress."})
		return
	}
	s.broadcast(room, MessageTypeScores, ScoresData{
		Room:   roomName,
		Scores: s.scoreLines(room.game.Scores()),
	})
}

// memberRoom resolves the room and verifies membership.
func (s *GameService) memberRoom(c Client, roomName string) *Room {
	room, ok := s.rooms[roomName]
	if !ok || room.members[c.Name()] == nil {
		s.sendTo(c, MessageTypeError, ErrorData{Code: "not_in_room", Message: "Join the room first."})
		return nil
	}
	return room
}

// removeFromGame handles a member dropping out of the room's game, in
// whatever phase.
func (s *GameService) removeFromGame(room *Room, name string) {
	g := room.game
	if g == nil {
		return
	}
	if _, err := g.PlayerState(name); err != nil {
		return // not a player, just a spectator
	}

	initial := g.State()
	wasJudge := g.Judge() == name
	if err := g.RemovePlayer(name); err != nil {
		return
	}
	s.notice(room, fmt.Sprintf("%s left the game!", name))

	if initial != game.Starting && initial != game.Over {
		if err := s.stats.RecordQuit(name); err != nil {
			s.logger.Error("Failed to record quit", "error", err, "player", name)
		}
	}

	switch {
	case g.State() == game.Over && initial != game.Over:
		s.notice(room, "The game has ended due to lack of players.")
		s.finishGame(room, "not_enough_players", false)

	case wasJudge && g.State() == game.WaitingForChoices:
		// The engine voided the round and started a fresh one.
		s.notice(room, fmt.Sprintf("Round skipped since %s was supposed to pick a winner.", name))
		s.announceRound(room)

	case initial == game.WaitingForChoices && g.State() == game.WaitingForPick:
		// That was the last submission the round was waiting on.
		s.announcePick(room)

	case g.State() == game.Starting && g.PlayerCount() == 0:
		s.notice(room, "All players left - there will be no game.")
		room.game = nil
	}
}

// announceRound broadcasts the new prompt and privately sends each
// player their hand view.
func (s *GameService) announceRound(room *Room) {
	g := room.game
	prompt := g.PromptText("")
	judge := g.Judge()
	required := g.Required()

	s.broadcast(room, MessageTypeRoundStart, RoundStartData{
		Room:     room.Name,
		Prompt:   prompt,
		Judge:    judge,
		Required: required,
	})

	for _, name := range g.Players() {
		member := room.members[name]
		if member == nil {
			continue
		}
		hand, err := g.Hand(name)
		if err != nil {
			continue
		}
		cards := make([]string, len(hand))
		for i, card := range hand {
			cards[i] = card.String()
		}
		s.sendTo(member, MessageTypeHand, HandData{
			Room:     room.Name,
			Cards:    cards,
			Prompt:   prompt,
			Judge:    judge,
			Required: required,
		})
	}
}

// announcePick broadcasts the anonymized submissions for judging.
func (s *GameService) announcePick(room *Room) {
	g := room.game
	s.broadcast(room, MessageTypePickStart, PickStartData{
		Room:        room.Name,
		Prompt:      g.PromptText(""),
		Judge:       g.Judge(),
		Submissions: g.Submissions(),
	})
	s.notice(room, fmt.Sprintf("%s: pick your favorite!", g.Judge()))
}

// finishGame records the outcome (unless the game fizzled), broadcasts
// the final standing, and clears the room's game so play can restart.
func (s *GameService) finishGame(room *Room, reason string, recordStats bool) {
	g := room.game
	scores := g.Scores()

	if recordStats && len(scores) > 0 {
		for i, score := range scores {
			var err error
			if i == 0 {
				err = s.stats.RecordWin(score.Name)
			} else {
				err = s.stats.RecordLoss(score.Name)
			}
			if err != nil {
				s.logger.Error("Failed to save game stats", "error", err, "player", score.Name)
				s.notice(room, "I had an issue saving game stats.")
				break
			}
		}
	}

	s.broadcast(room, MessageTypeGameOver, GameOverData{
		Room:   room.Name,
		Reason: reason,
		Scores: s.scoreLines(scores),
	})
	s.notice(room, "Well played! Use play to start a new game.")
	room.game = nil
}

func (s *GameService) scoreLines(scores []game.Score) []ScoreLine {
	lines := make([]ScoreLine, len(scores))
	for i, score := range scores {
		record := s.stats.Get(score.Name)
		lines[i] = ScoreLine{
			Name:   score.Name,
			Points: score.Points,
			Wins:   record.Wins,
			Losses: record.Losses,
			Quits:  record.Quits,
		}
	}
	return lines
}

func (s *GameService) notice(room *Room, text string) {
	s.broadcast(room, MessageTypeNotice, NoticeData{Room: room.Name, Text: text})
}

func (s *GameService) broadcast(room *Room, mt MessageType, data interface{}) {
	msg, err := NewMessage(mt, data)
	if err != nil {
		s.logger.Error("Failed to create broadcast message", "error", err, "type", mt)
		return
	}
	for _, member := range room.members {
		member.Send(msg)
	}
}

func (s *GameService) sendTo(c Client, mt MessageType, data interface{}) {
	msg, err := NewMessage(mt, data)
	if err != nil {
		s.logger.Error("Failed to create message", "error", err, "type", mt)
		return
	}
	c.Send(msg)
}
