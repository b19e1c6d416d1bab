package server

import (
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingInterval   = (pongWait * 9) / 10
	maxMessageSize = 1024
)

type Client struct {
	id          uuid.UUID
	conn        *websocket.Conn
	registry    *Registry
	log         *log.Logger
	userId      int
	displayName string
	channelId   int
	send        chan *Event
	stop        chan struct{}
}

func NewClient(conn *websocket.Conn, reg *Registry, l *log.Logger, userId int, displayName string, channelId int) *Client {
	return &Client{
		id:          uuid.New(),
		conn:        conn,
		registry:    reg,
		log:         l,
		userId:      userId,
		displayName: displayName,
		channelId:   channelId,
		send:        make(chan *Event, 256),
		stop:        make(chan struct{}),
	}
}

func (c *Client) Write() {
	ticker := time.NewTicker(time.Duration(pingInterval))
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case event, ok := <-c.send:
			if !ok {
				return
			}

			bytes, err := json.Marshal(event)
			if err != nil {
				c.log.Println("failed to serialize event:", err)
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
		c.registry.Disconnect(c)
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(appData string) error { c.conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				c.log.Printf("ws: read: %v", err)
			}
			break
		}

		var event ClientEvent
		if err := json.Unmarshal(raw, &event); err != nil {
			c.log.Println("error parsing event:", err)
			c.queueEvent(ErrorEvent("invalid event format"))
			continue
		}

		c.handleEvent(&event)
	}
}

// handleEvent dispatches one inbound frame. Unknown types are logged and
// dropped rather than closing the connection.
func (c *Client) handleEvent(event *ClientEvent) {
	switch event.Type {
	case "ping":
		c.queueEvent(PongEvent())
	case "typing":
		c.registry.BroadcastToChannel(c.channelId, TypingEvent(c.channelId, c.userId, c.displayName, event.IsTyping), c)
	case "message_read":
		c.registry.BroadcastToChannel(c.channelId, MessageReadEvent(c.channelId, c.userId, event.MessageId), c)
	default:
		c.log.Printf("unknown event type %q from user %d", event.Type, c.userId)
	}
}

func (c *Client) queueEvent(event *Event) bool {
	select {
	case c.send <- event:
	default:
		c.log.Println("failed to send event to client, channel is full")
		return false
	}

	return true
}

func (c *Client) sendMessage(msgType int, msg []byte) bool {
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))

	if err := c.conn.WriteMessage(msgType, msg); err != nil {
		if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure,
			websocket.CloseNormalClosure) {
			c.log.Printf("write message: %s", err)
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
