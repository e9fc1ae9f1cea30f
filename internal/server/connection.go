package server

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8192
)

// Connection represents a WebSocket connection to one chat client.
type Connection struct {
	conn      *websocket.Conn
	send      chan *Message
	logger    *log.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	mu        sync.RWMutex
	closeOnce sync.Once
	service   *GameService
	onClose   func(*Connection)

	name string
	room string
}

// NewConnection creates a new connection wrapper.
func NewConnection(conn *websocket.Conn, logger *log.Logger, service *GameService) *Connection {
	ctx, cancel := context.WithCancel(context.Background())

	return &Connection{
		conn:    conn,
		send:    make(chan *Message, 256),
		logger:  logger.WithPrefix("conn"),
		ctx:     ctx,
		cancel:  cancel,
		service: service,
	}
}

// Start begins handling the connection.
func (c *Connection) Start() {
	go c.writePump()
	go c.readPump()
}

// Close closes the connection.
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		close(c.send)
		err = c.conn.Close()
		if c.onClose != nil {
			c.onClose(c)
		}
	})
	return err
}

// Name returns the nick bound by the hello message, "" until then.
func (c *Connection) Name() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.name
}

// Room returns the room this connection last joined.
func (c *Connection) Room() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.room
}

// Send queues a message for delivery, dropping the connection if its
// buffer is full.
func (c *Connection) Send(msg *Message) {
	defer func() {
		if r := recover(); r != nil {
			// Channel closed during shutdown.
			c.logger.Debug("Send on closed connection", "error", r)
		}
	}()

	select {
	case c.send <- msg:
	case <-c.ctx.Done():
	default:
		c.logger.Warn("Connection send buffer full, closing connection")
		_ = c.Close()
	}
}

// readPump handles incoming messages from the client.
func (c *Connection) readPump() {
	defer func() {
		if c.Name() != "" {
			c.service.Disconnect(c)
		}
		_ = c.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		var msg Message
		err := c.conn.ReadJSON(&msg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket error", "error", err)
			}
			return
		}

		c.handleMessage(&msg)
	}
}

// writePump handles outgoing messages to the client.
func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.Error("Failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}

// handleMessage dispatches one incoming message.
func (c *Connection) handleMessage(msg *Message) {
	c.logger.Debug("Received message", "type", msg.Type, "player", c.Name())

	if msg.Type == MessageTypeHello {
		var data HelloData
		if err := json.Unmarshal(msg.Data, &data); err != nil || data.Name == "" {
			c.sendError("invalid_message", "Failed to parse hello data")
			return
		}
		c.mu.Lock()
		c.name = data.Name
		c.mu.Unlock()
		c.sendMessage(MessageTypeWelcome, WelcomeData{Name: data.Name})
		return
	}

	if c.Name() == "" {
		c.sendError("no_hello", "Introduce yourself with a hello message first")
		return
	}

	switch msg.Type {
	case MessageTypeJoinRoom:
		var data JoinRoomData
		if err := json.Unmarshal(msg.Data, &data); err != nil || data.Room == "" {
			c.sendError("invalid_message", "Failed to parse join room data")
			return
		}
		c.mu.Lock()
		c.room = data.Room
		c.mu.Unlock()
		c.service.JoinRoom(c, data.Room)

	case MessageTypeLeaveRoom:
		c.service.LeaveRoom(c, c.Room())

	case MessageTypePlay:
		var data PlayData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse play data")
			return
		}
		c.service.Play(c, c.Room(), data.MaxPoints)

	case MessageTypeReady:
		c.service.Ready(c, c.Room())

	case MessageTypeChoose:
		var data ChooseData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse choose data")
			return
		}
		c.service.Choose(c, c.Room(), data.Indices)

	case MessageTypePick:
		var data PickData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse pick data")
			return
		}
		c.service.Pick(c, c.Room(), data.Index)

	case MessageTypeScore:
		c.service.Score(c, c.Room())

	default:
		c.sendError("unknown_message_type", "Unknown message type: "+msg.Type.String())
	}
}

func (c *Connection) sendMessage(mt MessageType, data interface{}) {
	msg, err := NewMessage(mt, data)
	if err != nil {
		c.logger.Error("Failed to create message", "error", err, "type", mt)
		return
	}
	c.Send(msg)
}

func (c *Connection) sendError(code, message string) {
	c.sendMessage(MessageTypeError, ErrorData{Code: code, Message: message})
}
