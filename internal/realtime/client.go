package realtime

import (
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/05Ashutosh/food-recipe/internal/logging"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 * 1024
	sendBuffer     = 256
)

// Client is one websocket connection.
type Client struct {
	id   string
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	// authUserID is the user resolved from the upgrade request's session,
	// zero for anonymous connections. A client may only join its own room;
	// anonymous clients cannot join any.
	authUserID uint64
}

// NewClient wraps conn. authUserID is zero when the upgrade was anonymous.
func NewClient(hub *Hub, conn *websocket.Conn, authUserID uint64) *Client {
	return &Client{
		id:         uuid.NewString(),
		hub:        hub,
		conn:       conn,
		send:       make(chan []byte, sendBuffer),
		authUserID: authUserID,
	}
}

// ID returns the connection id.
func (c *Client) ID() string { return c.id }

// Start registers the client and runs its pumps. It returns once the
// pumps are running; the connection is closed when the hub closes or the
// peer goes away.
func (c *Client) Start() error {
	if err := c.hub.Register(c); err != nil {
		_ = c.conn.Close()
		return err
	}
	go c.writePump()
	go c.readPump()
	return nil
}

func (c *Client) readPump() {
	defer func() {
		c.hub.Leave(c.id)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		logging.Error().Err(err).Msg("failed to set read deadline")
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logging.Warn().Err(err).Str("conn", c.id).Msg("unexpected websocket close")
			}
			return
		}
		var msg Message
		if err := json.Unmarshal(raw, &msg); err != nil {
			c.reply(EventError, "malformed message")
			continue
		}
		c.handle(msg)
	}
}

// handle dispatches one inbound frame.
func (c *Client) handle(msg Message) {
	switch msg.Event {
	case EventJoin:
		userID, ok := parseUserID(msg.Data)
		if !ok {
			c.reply(EventError, "join requires a user id")
			return
		}
		if c.authUserID == 0 {
			c.reply(EventError, "join requires a session")
			return
		}
		if userID != c.authUserID {
			logging.Warn().Str("conn", c.id).Uint64("auth_user", c.authUserID).Uint64("room", userID).
				Msg("rejected join for another user's room")
			c.reply(EventError, "cannot join another user's room")
			return
		}
		if err := c.hub.Join(c.id, userID); err != nil {
			logging.Debug().Err(err).Str("conn", c.id).Msg("join failed")
		}
	case EventPing:
		c.reply(EventPong, nil)
	}
}

// reply queues a frame for this client only, dropping it if the queue is full.
func (c *Client) reply(event string, payload any) {
	var data json.RawMessage
	if payload != nil {
		data, _ = json.Marshal(payload)
	}
	frame, err := json.Marshal(Message{Event: event, Data: data})
	if err != nil {
		return
	}
	c.hub.mu.RLock()
	defer c.hub.mu.RUnlock()
	if _, ok := c.hub.clients[c.id]; !ok {
		return
	}
	select {
	case c.send <- frame:
	default:
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				logging.Debug().Err(err).Str("conn", c.id).Msg("websocket write failed")
				return
			}
		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// parseUserID accepts the id as a JSON string ("42") or number (42).
func parseUserID(data json.RawMessage) (uint64, bool) {
	s := strings.TrimSpace(string(data))
	if s == "" || s == "null" {
		return 0, false
	}
	if strings.HasPrefix(s, `"`) {
		if err := json.Unmarshal(data, &s); err != nil {
			return 0, false
		}
	}
	id, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}
