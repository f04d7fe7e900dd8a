package server

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingInterval   = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
)

// Client owns one live websocket connection. Its identity is unknown
// until the peer sends a register event.
type Client struct {
	id         string
	conn       *websocket.Conn
	chatServer *ChatServer
	log        *zap.SugaredLogger
	send       chan *ServerMessage
	stop       chan struct{}

	userMu sync.RWMutex
	userId string
}

func NewClient(id string, conn *websocket.Conn, cs *ChatServer, logger *zap.SugaredLogger) *Client {
	return &Client{
		id:         id,
		conn:       conn,
		chatServer: cs,
		log:        logger,
		send:       make(chan *ServerMessage, 256),
		stop:       make(chan struct{}),
	}
}

func (c *Client) UserId() string {
	c.userMu.RLock()
	defer c.userMu.RUnlock()
	return c.userId
}

func (c *Client) setUserId(userId string) {
	c.userMu.Lock()
	defer c.userMu.Unlock()
	c.userId = userId
}

func (c *Client) Write() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
		c.log.Debugw("write pump exiting", "conn", c.id)
	}()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				return
			}

			bytes, err := json.Marshal(msg)
			if err != nil {
				c.log.Errorw("failed to serialize message", "conn", c.id, "error", err)
				continue
			}

			if !c.sendMessage(websocket.TextMessage, bytes) {
				return
			}
		case <-c.stop:
			return
		case <-ticker.C:
			if !c.sendMessage(websocket.PingMessage, nil) {
				return
			}
		}
	}
}

func (c *Client) Read() {
	defer func() {
		c.conn.Close()
		c.cleanup()
		c.log.Debugw("read pump exiting", "conn", c.id)
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error { c.conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				c.log.Warnw("websocket read", "conn", c.id, "error", err)
			}
			break
		}

		var msg ClientMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			c.log.Debugw("error parsing message", "conn", c.id, "error", err)
			c.queueMessage(ErrInvalidMessage(-1, "invalid message format"))
			continue
		}

		msg.client = c
		msg.Timestamp = Now()

		// events from a single connection are handled sequentially
		// here, which serializes this sender's writes
		switch {
		case msg.Register != nil:
			c.chatServer.handleRegister(&msg)
		case msg.Join != nil:
			c.chatServer.handleJoin(&msg)
		case msg.Publish != nil:
			c.chatServer.handleSend(&msg)
		case msg.Typing != nil:
			c.chatServer.handleTyping(&msg)
		default:
			c.queueMessage(ErrInvalidMessage(msg.Id, "unknown event"))
		}
	}
}

// queueMessage hands msg to the write pump without blocking; delivery
// to a slow connection is dropped rather than holding up the caller.
func (c *Client) queueMessage(msg *ServerMessage) bool {
	select {
	case c.send <- msg:
	default:
		c.log.Warnw("send buffer full, dropping message", "conn", c.id)
		c.chatServer.stats.Incr(StatBroadcastsDropped)
		return false
	}

	return true
}

func (c *Client) sendMessage(msgType int, msg []byte) bool {
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))

	if err := c.conn.WriteMessage(msgType, msg); err != nil {
		if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure,
			websocket.CloseNormalClosure) {
			c.log.Warnw("websocket write", "conn", c.id, "error", err)
		}
		return false
	}

	return true
}

func (c *Client) stopClient() {
	select {
	case <-c.stop:
	default:
		close(c.stop)
	}
}

func (c *Client) cleanup() {
	c.chatServer.handleDisconnect(c)
	c.stopClient()
}
