package server

import (
	"time"

	"github.com/hivechat/hivechat/internal/types"
)

const (
	EventUserJoined  = "user_joined"
	EventUserLeft    = "user_left"
	EventOnlineUsers = "online_users"
	EventNewMessage  = "new_message"
	EventTyping      = "typing_status"
	EventMessageRead = "message_read"
	EventPong        = "pong"
	EventError       = "error"
)

// Event is one frame pushed to connected clients. Only the fields relevant
// to the event type are populated.
type Event struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`

	ChannelId   int                   `json:"channel_id,omitempty"`
	UserId      int                   `json:"user_id,omitempty"`
	DisplayName string                `json:"display_name,omitempty"`
	IsTyping    bool                  `json:"is_typing,omitempty"`
	MessageId   int                   `json:"message_id,omitempty"`
	Users       []OnlineUser          `json:"users,omitempty"`
	Message     *types.ChannelMessage `json:"message,omitempty"`
	Error       string                `json:"error,omitempty"`
}

// OnlineUser is one distinct user present in a channel. ConnectedAt is the
// user's earliest live connection when they hold several.
type OnlineUser struct {
	UserId      int       `json:"user_id"`
	DisplayName string    `json:"display_name"`
	ConnectedAt time.Time `json:"connected_at"`
}

// ClientEvent is a frame received from a client.
type ClientEvent struct {
	Type      string `json:"type"`
	ChannelId int    `json:"channel_id,omitempty"`
	IsTyping  bool   `json:"is_typing,omitempty"`
	MessageId int    `json:"message_id,omitempty"`
}

func UserJoinedEvent(channelId, userId int, displayName string) *Event {
	return &Event{
		Type:        EventUserJoined,
		Timestamp:   Now(),
		ChannelId:   channelId,
		UserId:      userId,
		DisplayName: displayName,
	}
}

func UserLeftEvent(channelId, userId int, displayName string) *Event {
	return &Event{
		Type:        EventUserLeft,
		Timestamp:   Now(),
		ChannelId:   channelId,
		UserId:      userId,
		DisplayName: displayName,
	}
}

func OnlineUsersEvent(channelId int, users []OnlineUser) *Event {
	return &Event{
		Type:      EventOnlineUsers,
		Timestamp: Now(),
		ChannelId: channelId,
		Users:     users,
	}
}

func NewMessageEvent(msg *types.ChannelMessage) *Event {
	return &Event{
		Type:      EventNewMessage,
		Timestamp: Now(),
		ChannelId: msg.ChannelId,
		Message:   msg,
	}
}

func TypingEvent(channelId, userId int, displayName string, isTyping bool) *Event {
	return &Event{
		Type:        EventTyping,
		Timestamp:   Now(),
		ChannelId:   channelId,
		UserId:      userId,
		DisplayName: displayName,
		IsTyping:    isTyping,
	}
}

func MessageReadEvent(channelId, userId, messageId int) *Event {
	return &Event{
		Type:      EventMessageRead,
		Timestamp: Now(),
		ChannelId: channelId,
		UserId:    userId,
		MessageId: messageId,
	}
}

func PongEvent() *Event {
	return &Event{
		Type:      EventPong,
		Timestamp: Now(),
	}
}

func ErrorEvent(msg string) *Event {
	return &Event{
		Type:      EventError,
		Timestamp: Now(),
		Error:     msg,
	}
}

func Now() time.Time {
	return time.Now().UTC().Round(time.Millisecond)
}
