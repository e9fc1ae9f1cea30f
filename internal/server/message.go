package server

import (
	"encoding/json"
	"time"
)

// Message is the base WebSocket message envelope.
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewMessage creates a new message with the current timestamp.
func NewMessage(messageType MessageType, data interface{}) (*Message, error) {
	var dataBytes json.RawMessage
	if data != nil {
		b, err := json.Marshal(data)
		if err != nil {
			return nil, err
		}
		dataBytes = b
	}

	return &Message{
		Type:      messageType,
		Data:      dataBytes,
		Timestamp: time.Now(),
	}, nil
}

// Client → Server payloads

type HelloData struct {
	Name string `json:"name"`
}

type JoinRoomData struct {
	Room string `json:"room"`
}

type PlayData struct {
	// MaxPoints of 0 means "use the server default".
	MaxPoints int `json:"maxPoints,omitempty"`
}

type ChooseData struct {
	Indices []int `json:"indices"`
}

type PickData struct {
	Index int `json:"index"`
}

// Server → Client payloads

type WelcomeData struct {
	Name string `json:"name"`
}

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NoticeData is a plain chat line broadcast to a room.
type NoticeData struct {
	Room string `json:"room"`
	Text string `json:"text"`
}

type RoomJoinedData struct {
	Room    string   `json:"room"`
	Members []string `json:"members"`
}

type GameCreatedData struct {
	Room      string `json:"room"`
	Creator   string `json:"creator"`
	MaxPoints int    `json:"maxPoints"`
}

type PlayerJoinedData struct {
	Room    string   `json:"room"`
	Player  string   `json:"player"`
	Players []string `json:"players"`
}

type PlayerLeftData struct {
	Room   string `json:"room"`
	Player string `json:"player"`
}

type RoundStartData struct {
	Room     string `json:"room"`
	Prompt   string `json:"prompt"`
	Judge    string `json:"judge"`
	Required int    `json:"required"`
}

// HandData is sent privately to each player, never broadcast.
type HandData struct {
	Room     string   `json:"room"`
	Cards    []string `json:"cards"`
	Prompt   string   `json:"prompt"`
	Judge    string   `json:"judge"`
	Required int      `json:"required"`
}

type PlayerChoseData struct {
	Room          string   `json:"room"`
	Player        string   `json:"player"`
	StillChoosing []string `json:"stillChoosing"`
}

// PickStartData carries the judge-anonymized submissions in their
// shuffled presentation order.
type PickStartData struct {
	Room        string   `json:"room"`
	Prompt      string   `json:"prompt"`
	Judge       string   `json:"judge"`
	Submissions []string `json:"submissions"`
}

type RoundResultData struct {
	Room   string `json:"room"`
	Winner string `json:"winner"`
	Text   string `json:"text"`
	Points int    `json:"points"`
}

// ScoreLine merges a live game score with the persistent ledger.
type ScoreLine struct {
	Name   string `json:"name"`
	Points int    `json:"points"`
	Wins   int    `json:"wins"`
	Losses int    `json:"losses"`
	Quits  int    `json:"quits"`
}

type ScoresData struct {
	Room   string      `json:"room"`
	Scores []ScoreLine `json:"scores"`
}

type GameOverData struct {
	Room   string      `json:"room"`
	Reason string      `json:"reason"`
	Scores []ScoreLine `json:"scores"`
}
