package api

import (
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
	"github.com/hivechat/hivechat/internal/server"
)

// CloseAuthFailure is sent when the websocket token is missing or invalid.
// The connection is upgraded first so the client receives a close frame it
// can distinguish from a network error.
const CloseAuthFailure = 4001

func (s *ChatApp) serveWs(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}

			return slices.Contains(s.allowedOrigins, origin)
		},
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Println("error upgrading connection:", err)
		return
	}

	auth, err := s.parseSessionToken(bearerToken(r))
	if err != nil {
		s.log.Println("ws auth failed:", err)
		s.closeWithCode(conn, CloseAuthFailure, "authentication failed")
		return
	}

	channelId, err := strconv.Atoi(r.URL.Query().Get("channel_id"))
	if err != nil {
		s.closeWithCode(conn, websocket.ClosePolicyViolation, "channel_id is required")
		return
	}

	channel, err := s.db.GetChannel(channelId)
	if err != nil || channel.TenantId != auth.TenantID {
		s.closeWithCode(conn, websocket.ClosePolicyViolation, "channel not found")
		return
	}

	if channel.IsPrivate && !s.db.IsChannelMember(channel.Id, auth.UserID) {
		s.closeWithCode(conn, CloseAuthFailure, "not a channel member")
		return
	}

	client := server.NewClient(conn, s.registry, s.log, auth.UserID, auth.DisplayName, channel.Id)

	s.registry.Connect(client)
	go client.Write()
	go client.Read()
}

func (s *ChatApp) closeWithCode(conn *websocket.Conn, code int, reason string) {
	deadline := time.Now().Add(time.Second)
	conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), deadline)
	conn.Close()
}
