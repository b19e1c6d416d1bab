package server

import (
	"log"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hivechat/hivechat/internal/stats"
	"github.com/hivechat/hivechat/internal/types"
)

// ConnInfo is the registry's record of one live connection.
type ConnInfo struct {
	Id          uuid.UUID
	UserId      int
	DisplayName string
	ChannelId   int
	ConnectedAt time.Time
}

// Registry tracks live websocket connections per channel. A user may hold
// several connections to the same channel; presence events fire only on the
// first connect and the last disconnect.
type Registry struct {
	log      *log.Logger
	stats    stats.StatsProvider
	mu       sync.Mutex
	channels map[int]map[*Client]struct{}
	meta     map[*Client]ConnInfo
}

func NewRegistry(logger *log.Logger, sp stats.StatsProvider) *Registry {
	return &Registry{
		log:      logger,
		stats:    sp,
		channels: make(map[int]map[*Client]struct{}),
		meta:     make(map[*Client]ConnInfo),
	}
}

// Connect registers the client in its channel and announces presence.
func (r *Registry) Connect(c *Client) {
	r.mu.Lock()
	if _, ok := r.meta[c]; ok {
		r.mu.Unlock()
		return
	}

	roster := r.channels[c.channelId]
	if roster == nil {
		roster = make(map[*Client]struct{})
		r.channels[c.channelId] = roster
		r.stats.Incr(stats.ActiveChannels)
	}

	firstForUser := !r.userPresentLocked(c.channelId, c.userId)
	roster[c] = struct{}{}
	r.meta[c] = ConnInfo{
		Id:          c.id,
		UserId:      c.userId,
		DisplayName: c.displayName,
		ChannelId:   c.channelId,
		ConnectedAt: Now(),
	}
	r.mu.Unlock()

	r.stats.Incr(stats.ActiveConnections)
	r.log.Printf("user %d connected to channel %d (%s)", c.userId, c.channelId, c.id)

	if firstForUser {
		r.BroadcastToChannel(c.channelId, UserJoinedEvent(c.channelId, c.userId, c.displayName), c)
	}
	r.BroadcastToChannel(c.channelId, OnlineUsersEvent(c.channelId, r.OnlineUsers(c.channelId)), nil)
}

// Disconnect removes the client. Safe to call more than once; only the
// first call fires presence events.
func (r *Registry) Disconnect(c *Client) {
	r.mu.Lock()
	info, ok := r.meta[c]
	if !ok {
		r.mu.Unlock()
		return
	}

	delete(r.meta, c)
	if roster, ok := r.channels[info.ChannelId]; ok {
		delete(roster, c)
		if len(roster) == 0 {
			delete(r.channels, info.ChannelId)
			r.stats.Decr(stats.ActiveChannels)
		}
	}
	lastForUser := !r.userPresentLocked(info.ChannelId, info.UserId)
	r.mu.Unlock()

	c.stopClient()
	r.stats.Decr(stats.ActiveConnections)
	r.log.Printf("user %d disconnected from channel %d (%s)", info.UserId, info.ChannelId, info.Id)

	if lastForUser {
		r.BroadcastToChannel(info.ChannelId, UserLeftEvent(info.ChannelId, info.UserId, info.DisplayName), nil)
		r.BroadcastToChannel(info.ChannelId, OnlineUsersEvent(info.ChannelId, r.OnlineUsers(info.ChannelId)), nil)
	}
}

// userPresentLocked reports whether the user still has a connection in the
// channel. Caller holds r.mu.
func (r *Registry) userPresentLocked(channelId, userId int) bool {
	for client := range r.channels[channelId] {
		if r.meta[client].UserId == userId {
			return true
		}
	}
	return false
}

// OnlineUsers returns the distinct users present in a channel, ordered by id.
func (r *Registry) OnlineUsers(channelId int) []OnlineUser {
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[int]OnlineUser)
	for client := range r.channels[channelId] {
		info := r.meta[client]
		user, ok := seen[info.UserId]
		if !ok || info.ConnectedAt.Before(user.ConnectedAt) {
			seen[info.UserId] = OnlineUser{
				UserId:      info.UserId,
				DisplayName: info.DisplayName,
				ConnectedAt: info.ConnectedAt,
			}
		}
	}

	users := make([]OnlineUser, 0, len(seen))
	for _, user := range seen {
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].UserId < users[j].UserId })

	return users
}

// ConnectionCount returns the number of live connections in a channel.
func (r *Registry) ConnectionCount(channelId int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.channels[channelId])
}

// BroadcastToChannel queues the event on every connection in the channel
// except skip. Connections whose send buffer is full are dropped from the
// registry.
func (r *Registry) BroadcastToChannel(channelId int, event *Event, skip *Client) {
	r.mu.Lock()
	targets := make([]*Client, 0, len(r.channels[channelId]))
	for client := range r.channels[channelId] {
		if client == skip {
			continue
		}
		targets = append(targets, client)
	}
	r.mu.Unlock()

	var failed []*Client
	for _, client := range targets {
		if !client.queueEvent(event) {
			failed = append(failed, client)
		}
	}

	r.stats.Incr(stats.BroadcastsSent)

	for _, client := range failed {
		r.log.Printf("dropping unresponsive connection %s in channel %d", client.id, channelId)
		r.Disconnect(client)
	}
}

// BroadcastNewMessage sends a new_message event to every connection in the
// channel except those belonging to excludeUserId. The sender sees its own
// message in the HTTP response instead.
func (r *Registry) BroadcastNewMessage(channelId int, msg *types.ChannelMessage, excludeUserId int) {
	event := NewMessageEvent(msg)

	r.mu.Lock()
	targets := make([]*Client, 0, len(r.channels[channelId]))
	for client := range r.channels[channelId] {
		if r.meta[client].UserId == excludeUserId {
			continue
		}
		targets = append(targets, client)
	}
	r.mu.Unlock()

	var failed []*Client
	for _, client := range targets {
		if !client.queueEvent(event) {
			failed = append(failed, client)
		}
	}

	r.stats.Incr(stats.BroadcastsSent)

	for _, client := range failed {
		r.log.Printf("dropping unresponsive connection %s in channel %d", client.id, channelId)
		r.Disconnect(client)
	}
}

// Shutdown stops every live connection.
func (r *Registry) Shutdown() {
	r.mu.Lock()
	clients := make([]*Client, 0, len(r.meta))
	for client := range r.meta {
		clients = append(clients, client)
	}
	r.mu.Unlock()

	for _, client := range clients {
		r.Disconnect(client)
	}
}
