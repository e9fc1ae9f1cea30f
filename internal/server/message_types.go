package server

// MessageType represents a WebSocket message type with type safety
type MessageType string

// WebSocket message type constants for the chat protocol
const (
	// Client to server messages
	MessageTypeHello     MessageType = "hello"
	MessageTypeJoinRoom  MessageType = "join_room"
	MessageTypeLeaveRoom MessageType = "leave_room"
	MessageTypePlay      MessageType = "play"
	MessageTypeReady     MessageType = "ready"
	MessageTypeChoose    MessageType = "choose"
	MessageTypePick      MessageType = "pick"
	MessageTypeScore     MessageType = "score"

	// Server to client messages
	MessageTypeWelcome      MessageType = "welcome"
	MessageTypeError        MessageType = "error"
	MessageTypeNotice       MessageType = "notice"
	MessageTypeRoomJoined   MessageType = "room_joined"
	MessageTypeGameCreated  MessageType = "game_created"
	MessageTypePlayerJoined MessageType = "player_joined"
	MessageTypePlayerLeft   MessageType = "player_left"
	MessageTypeRoundStart   MessageType = "round_start"
	MessageTypeHand         MessageType = "hand"
	MessageTypePlayerChose  MessageType = "player_chose"
	MessageTypePickStart    MessageType = "pick_start"
	MessageTypeRoundResult  MessageType = "round_result"
	MessageTypeScores       MessageType = "scores"
	MessageTypeGameOver     MessageType = "game_over"
)

// String returns the string representation of the message type
func (mt MessageType) String() string {
	return string(mt)
}
