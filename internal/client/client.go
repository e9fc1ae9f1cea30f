// Package client provides a WebSocket client for talking to a czarbot
// server, used by the terminal client and by integration tooling.
package client

import (
	"fmt"
	"net/url"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/czarbot/czarbot/internal/server"
)

// EventHandler is a function that handles incoming messages.
type EventHandler func(*server.Message)

// Client is a WebSocket connection to a czarbot server. Handlers run on
// the reader goroutine, so they must not block.
type Client struct {
	serverURL string
	conn      *websocket.Conn
	logger    *log.Logger

	mu        sync.RWMutex
	handlers  map[server.MessageType][]EventHandler
	connected bool
	stopChan  chan struct{}
}

// New creates a client for the given server URL.
func New(serverURL string, logger *log.Logger) *Client {
	return &Client{
		serverURL: serverURL,
		logger:    logger.WithPrefix("client"),
		handlers:  make(map[server.MessageType][]EventHandler),
		stopChan:  make(chan struct{}),
	}
}

// Connect dials the server and starts the message reader.
func (c *Client) Connect() error {
	u, err := url.Parse(c.serverURL)
	if err != nil {
		return fmt.Errorf("invalid server URL: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		u.Scheme = "ws"
	}
	if u.Path == "" || u.Path == "/" {
		u.Path = "/ws"
	}

	c.logger.Info("Connecting to server", "url", u.String())
	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.connected = true
	c.mu.Unlock()

	go c.readMessages()
	return nil
}

// Disconnect closes the connection.
func (c *Client) Disconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected {
		return nil
	}
	c.connected = false
	close(c.stopChan)

	if c.conn != nil {
		_ = c.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		return c.conn.Close()
	}
	return nil
}

// Send marshals and sends a typed message.
func (c *Client) Send(mt server.MessageType, data interface{}) error {
	msg, err := server.NewMessage(mt, data)
	if err != nil {
		return err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.connected || c.conn == nil {
		return fmt.Errorf("not connected")
	}
	return c.conn.WriteJSON(msg)
}

// Hello introduces the client by name. Must be the first message.
func (c *Client) Hello(name string) error {
	return c.Send(server.MessageTypeHello, server.HelloData{Name: name})
}

// JoinRoom joins the named room.
func (c *Client) JoinRoom(room string) error {
	return c.Send(server.MessageTypeJoinRoom, server.JoinRoomData{Room: room})
}

// LeaveRoom leaves the current room.
func (c *Client) LeaveRoom() error {
	return c.Send(server.MessageTypeLeaveRoom, nil)
}

// Play starts or joins a game. A maxPoints of 0 uses the server default.
func (c *Client) Play(maxPoints int) error {
	return c.Send(server.MessageTypePlay, server.PlayData{MaxPoints: maxPoints})
}

// Ready begins the pending game.
func (c *Client) Ready() error {
	return c.Send(server.MessageTypeReady, nil)
}

// Choose plays the hand cards at the given indices.
func (c *Client) Choose(indices []int) error {
	return c.Send(server.MessageTypeChoose, server.ChooseData{Indices: indices})
}

// Pick selects the winning submission, judge only.
func (c *Client) Pick(index int) error {
	return c.Send(server.MessageTypePick, server.PickData{Index: index})
}

// Score requests the current standings.
func (c *Client) Score() error {
	return c.Send(server.MessageTypeScore, nil)
}

// OnMessage registers a handler for a message type.
func (c *Client) OnMessage(mt server.MessageType, handler EventHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[mt] = append(c.handlers[mt], handler)
}

func (c *Client) readMessages() {
	defer func() {
		c.mu.Lock()
		c.connected = false
		c.mu.Unlock()
	}()

	for {
		select {
		case <-c.stopChan:
			return
		default:
			var msg server.Message
			if err := c.conn.ReadJSON(&msg); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					c.logger.Error("WebSocket error", "error", err)
				}
				return
			}
			c.dispatch(&msg)
		}
	}
}

func (c *Client) dispatch(msg *server.Message) {
	c.mu.RLock()
	handlers := c.handlers[msg.Type]
	c.mu.RUnlock()

	for _, handler := range handlers {
		handler(msg)
	}
}
