package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/hivechat/hivechat/internal/database"
	"github.com/stretchr/testify/assert"
)

func dialWs(t *testing.T, url string) *websocket.Conn {
	t.Helper()

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	assert.NoError(t, err, "upgrade should succeed even before auth")
	t.Cleanup(func() { conn.Close() })
	conn.SetReadDeadline(time.Now().Add(time.Second))

	return conn
}

func TestServeWs_invalidToken(t *testing.T) {
	ta := newTestApp(t)

	srv := httptest.NewServer(http.HandlerFunc(ta.app.serveWs))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=garbage&channel_id=10"
	conn := dialWs(t, url)

	_, _, err := conn.ReadMessage()
	closeErr, ok := err.(*websocket.CloseError)
	assert.Truef(t, ok, "expected a close frame, got %v", err)
	assert.Equal(t, CloseAuthFailure, closeErr.Code, "auth failures close with code 4001 after the upgrade")
}

func TestServeWs_missingChannel(t *testing.T) {
	ta := newTestApp(t)
	ta.db.On("GetAccountById", 1).Return(testAccount, nil)

	srv := httptest.NewServer(http.HandlerFunc(ta.app.serveWs))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=" + ta.token(t, testAccount)
	conn := dialWs(t, url)

	_, _, err := conn.ReadMessage()
	closeErr, ok := err.(*websocket.CloseError)
	assert.Truef(t, ok, "expected a close frame, got %v", err)
	assert.Equal(t, websocket.ClosePolicyViolation, closeErr.Code)
}

func TestServeWs_connectAndExchangeEvents(t *testing.T) {
	ta := newTestApp(t)
	ta.db.On("GetAccountById", 1).Return(testAccount, nil)
	ta.db.On("GetChannel", 10).Return(database.Channel{Id: 10, TenantId: "acme"}, nil)

	srv := httptest.NewServer(http.HandlerFunc(ta.app.serveWs))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=" + ta.token(t, testAccount) + "&channel_id=10"
	conn := dialWs(t, url)

	// roster snapshot arrives on connect
	var roster map[string]any
	assert.NoError(t, conn.ReadJSON(&roster))
	assert.Equal(t, "online_users", roster["type"])

	assert.NoError(t, conn.WriteJSON(map[string]any{"type": "ping"}))

	var pong map[string]any
	assert.NoError(t, conn.ReadJSON(&pong))
	assert.Equal(t, "pong", pong["type"])
}
