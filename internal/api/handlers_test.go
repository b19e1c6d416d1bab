package api

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hivechat/hivechat/internal/ai"
	"github.com/hivechat/hivechat/internal/blob"
	"github.com/hivechat/hivechat/internal/chat"
	"github.com/hivechat/hivechat/internal/config"
	"github.com/hivechat/hivechat/internal/database"
	"github.com/hivechat/hivechat/internal/notify"
	"github.com/hivechat/hivechat/internal/server"
	"github.com/hivechat/hivechat/internal/stats"
	"github.com/hivechat/hivechat/internal/tenantdb"
	"github.com/hivechat/hivechat/internal/testutil"
	"github.com/hivechat/hivechat/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type fakeStores struct {
	store tenantdb.MessageStore
}

func (f *fakeStores) For(tenantId string) (tenantdb.MessageStore, error) {
	return f.store, nil
}

type testApp struct {
	app       *ChatApp
	db        *database.MockMasterRepository
	store     *tenantdb.MockMessageStore
	responder *ai.MockResponder
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	logger := testutil.TestLogger(t)

	su := &stats.MockStatsUpdater{}
	su.On("Incr", mock.Anything).Return()
	su.On("Decr", mock.Anything).Return()

	db := &database.MockMasterRepository{}
	store := &tenantdb.MockMessageStore{}
	responder := &ai.MockResponder{}

	registry := server.NewRegistry(logger, su)
	stores := &fakeStores{store: store}
	pipeline := chat.NewPipeline(logger, stores, responder, registry, su, true)
	otp := notify.NewOTPService(logger, db)

	blobs, err := blob.NewLocalStore(t.TempDir())
	assert.NoError(t, err)

	cfg := &config.Config{
		ServerAddr:       "localhost:0",
		SigningKey:       []byte("test-signing-key"),
		UploadDir:        t.TempDir(),
		ArchiveAfterDays: 7,
	}

	app := NewChatApp(http.NewServeMux(), logger, db, registry, pipeline, stores, blobs, otp, su, cfg)

	return &testApp{app: app, db: db, store: store, responder: responder}
}

func (ta *testApp) token(t *testing.T, account database.Account) string {
	token, err := ta.app.createSessionToken(account, time.Hour)
	assert.NoError(t, err)
	return token
}

var testAccount = database.Account{
	Id:           1,
	TenantId:     "acme",
	DisplayName:  "alice",
	EmailAddress: "alice@example.com",
	Role:         types.RoleMember,
}

func TestHealthCheck(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		ta := newTestApp(t)
		ta.db.On("Ping").Return(nil).Once()

		rr := httptest.NewRecorder()
		ta.app.healthCheck(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "OK", rr.Body.String())
	})

	t.Run("database down", func(t *testing.T) {
		ta := newTestApp(t)
		ta.db.On("Ping").Return(sql.ErrConnDone).Once()

		rr := httptest.NewRecorder()
		ta.app.healthCheck(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
	})
}

func TestCreateAccountHandler(t *testing.T) {
	tcases := []struct {
		name       string
		body       any
		setupMocks func(db *database.MockMasterRepository)
		wantStatus int
	}{
		{
			name: "successfully creates a new account",
			body: RegisterRequest{
				TenantId:    "acme",
				DisplayName: "alice",
				Email:       "alice@example.com",
				Password:    "password",
			},
			setupMocks: func(db *database.MockMasterRepository) {
				db.On("GetTenantById", "acme").Return(database.Tenant{Id: "acme"}, nil)
				db.On("GetAccountByEmail", "acme", "alice@example.com").Return(database.Account{}, sql.ErrNoRows)
				db.On("CreateAccount", mock.Anything).Return(testAccount, nil)
			},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "invalid json body",
			body:       "not json",
			setupMocks: func(db *database.MockMasterRepository) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "missing required fields",
			body: RegisterRequest{
				TenantId: "acme",
				Email:    "alice@example.com",
			},
			setupMocks: func(db *database.MockMasterRepository) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "unknown tenant",
			body: RegisterRequest{
				TenantId:    "nope",
				DisplayName: "alice",
				Email:       "alice@example.com",
				Password:    "password",
			},
			setupMocks: func(db *database.MockMasterRepository) {
				db.On("GetTenantById", "nope").Return(database.Tenant{}, sql.ErrNoRows)
			},
			wantStatus: http.StatusNotFound,
		},
		{
			name: "duplicate email",
			body: RegisterRequest{
				TenantId:    "acme",
				DisplayName: "alice",
				Email:       "alice@example.com",
				Password:    "password",
			},
			setupMocks: func(db *database.MockMasterRepository) {
				db.On("GetTenantById", "acme").Return(database.Tenant{Id: "acme"}, nil)
				db.On("GetAccountByEmail", "acme", "alice@example.com").Return(testAccount, nil)
			},
			wantStatus: http.StatusConflict,
		},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			ta := newTestApp(t)
			tc.setupMocks(ta.db)

			var body bytes.Buffer
			json.NewEncoder(&body).Encode(tc.body)

			rr := httptest.NewRecorder()
			ta.app.createAccount(rr, httptest.NewRequest(http.MethodPost, "/api/auth/register", &body))

			assert.Equal(t, tc.wantStatus, rr.Code)
			if tc.wantStatus == http.StatusCreated {
				var user types.User
				assert.NoError(t, json.NewDecoder(rr.Body).Decode(&user))
				assert.Equal(t, testAccount.Id, user.Id)
				assert.Equal(t, "acme", user.TenantId)
			}
		})
	}
}

func TestLoginHandler(t *testing.T) {
	pwdHash, err := hashPassword("password")
	assert.NoError(t, err)
	account := testAccount
	account.PasswordHash = pwdHash

	t.Run("successful login returns a usable token", func(t *testing.T) {
		ta := newTestApp(t)
		ta.db.On("GetAccountByEmail", "acme", "alice@example.com").Return(account, nil)
		ta.db.On("GetAccountById", 1).Return(account, nil)

		var body bytes.Buffer
		json.NewEncoder(&body).Encode(LoginRequest{TenantId: "acme", Email: "alice@example.com", Password: "password"})

		rr := httptest.NewRecorder()
		ta.app.login(rr, httptest.NewRequest(http.MethodPost, "/api/auth/login", &body))

		assert.Equal(t, http.StatusOK, rr.Code)

		var resp LoginResponse
		assert.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
		assert.NotEmpty(t, resp.Token)
		assert.Equal(t, 1, resp.User.Id)

		auth, err := ta.app.parseSessionToken(resp.Token)
		assert.NoError(t, err)
		assert.Equal(t, 1, auth.UserID)
		assert.Equal(t, "acme", auth.TenantID)
		assert.Equal(t, "alice", auth.DisplayName)
	})

	t.Run("wrong password", func(t *testing.T) {
		ta := newTestApp(t)
		ta.db.On("GetAccountByEmail", "acme", "alice@example.com").Return(account, nil)

		var body bytes.Buffer
		json.NewEncoder(&body).Encode(LoginRequest{TenantId: "acme", Email: "alice@example.com", Password: "wrong"})

		rr := httptest.NewRecorder()
		ta.app.login(rr, httptest.NewRequest(http.MethodPost, "/api/auth/login", &body))

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("unknown account", func(t *testing.T) {
		ta := newTestApp(t)
		ta.db.On("GetAccountByEmail", "acme", "bob@example.com").Return(database.Account{}, sql.ErrNoRows)

		var body bytes.Buffer
		json.NewEncoder(&body).Encode(LoginRequest{TenantId: "acme", Email: "bob@example.com", Password: "password"})

		rr := httptest.NewRecorder()
		ta.app.login(rr, httptest.NewRequest(http.MethodPost, "/api/auth/login", &body))

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestAuthMiddleware(t *testing.T) {
	t.Run("missing token", func(t *testing.T) {
		ta := newTestApp(t)

		called := false
		handler := ta.app.authMiddleware(func(w http.ResponseWriter, r *http.Request) {
			called = true
		})

		rr := httptest.NewRecorder()
		handler(rr, httptest.NewRequest(http.MethodGet, "/api/auth/session", nil))

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.False(t, called, "handler must not run without a token")
	})

	t.Run("garbage token", func(t *testing.T) {
		ta := newTestApp(t)

		handler := ta.app.authMiddleware(func(w http.ResponseWriter, r *http.Request) {})

		req := httptest.NewRequest(http.MethodGet, "/api/auth/session", nil)
		req.Header.Set("Authorization", "Bearer garbage")

		rr := httptest.NewRecorder()
		handler(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("valid token populates auth context", func(t *testing.T) {
		ta := newTestApp(t)
		ta.db.On("GetAccountById", 1).Return(testAccount, nil)

		var got types.AuthContext
		handler := ta.app.authMiddleware(func(w http.ResponseWriter, r *http.Request) {
			got, _ = Auth(r.Context())
		})

		req := httptest.NewRequest(http.MethodGet, "/api/auth/session", nil)
		req.Header.Set("Authorization", "Bearer "+ta.token(t, testAccount))

		rr := httptest.NewRecorder()
		handler(rr, req)

		assert.Equal(t, 1, got.UserID)
		assert.Equal(t, "acme", got.TenantID)
		assert.Equal(t, "alice", got.DisplayName)
	})
}

func TestPostMessageHandler(t *testing.T) {
	t.Run("returns user message and assistant reply", func(t *testing.T) {
		ta := newTestApp(t)
		ta.db.On("GetChannel", 10).Return(database.Channel{Id: 10, TenantId: "acme"}, nil)
		ta.db.On("GetTenantById", "acme").Return(database.Tenant{Id: "acme", AIEnabled: true}, nil)

		ta.store.On("CreateMessage", mock.MatchedBy(func(msg types.ChannelMessage) bool {
			return msg.MessageType == types.MessageTypeUser
		})).Return(types.ChannelMessage{Id: 1, ChannelId: 10, UserId: 1, Message: "hello", MessageType: types.MessageTypeUser}, nil)
		ta.store.On("CreateMessage", mock.MatchedBy(func(msg types.ChannelMessage) bool {
			return msg.MessageType == types.MessageTypeAI
		})).Return(types.ChannelMessage{Id: 2, ChannelId: 10, UserId: types.AIUserID, Message: "hi", MessageType: types.MessageTypeAI}, nil)
		ta.store.On("ListSince", 10, mock.Anything).Return([]types.ChannelMessage{}, nil)

		ta.responder.On("Name").Return("openai")
		ta.responder.On("Generate", mock.Anything, mock.Anything).Return("hi", nil)

		var body bytes.Buffer
		json.NewEncoder(&body).Encode(PostMessageRequest{Message: "hello"})

		req := httptest.NewRequest(http.MethodPost, "/api/channels/10/messages", &body)
		req.SetPathValue("id", "10")
		req = req.WithContext(WithAuth(req.Context(), types.AuthContext{UserID: 1, TenantID: "acme", DisplayName: "alice", Role: types.RoleMember}))

		rr := httptest.NewRecorder()
		ta.app.postMessage(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var resp MessagesResponse
		assert.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
		assert.Len(t, resp.Messages, 2)
		assert.Equal(t, types.MessageTypeUser, resp.Messages[0].MessageType)
		assert.Equal(t, types.AIUserID, resp.Messages[1].UserId)
	})

	t.Run("channel in another tenant is invisible", func(t *testing.T) {
		ta := newTestApp(t)
		ta.db.On("GetChannel", 10).Return(database.Channel{Id: 10, TenantId: "globex"}, nil)

		var body bytes.Buffer
		json.NewEncoder(&body).Encode(PostMessageRequest{Message: "hello"})

		req := httptest.NewRequest(http.MethodPost, "/api/channels/10/messages", &body)
		req.SetPathValue("id", "10")
		req = req.WithContext(WithAuth(req.Context(), types.AuthContext{UserID: 1, TenantID: "acme"}))

		rr := httptest.NewRecorder()
		ta.app.postMessage(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("empty message is rejected", func(t *testing.T) {
		ta := newTestApp(t)
		ta.db.On("GetChannel", 10).Return(database.Channel{Id: 10, TenantId: "acme"}, nil)
		ta.db.On("GetTenantById", "acme").Return(database.Tenant{Id: "acme"}, nil)

		var body bytes.Buffer
		json.NewEncoder(&body).Encode(PostMessageRequest{Message: "   "})

		req := httptest.NewRequest(http.MethodPost, "/api/channels/10/messages", &body)
		req.SetPathValue("id", "10")
		req = req.WithContext(WithAuth(req.Context(), types.AuthContext{UserID: 1, TenantID: "acme"}))

		rr := httptest.NewRecorder()
		ta.app.postMessage(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("storage failure is a server error", func(t *testing.T) {
		ta := newTestApp(t)
		ta.db.On("GetChannel", 10).Return(database.Channel{Id: 10, TenantId: "acme"}, nil)
		ta.db.On("GetTenantById", "acme").Return(database.Tenant{Id: "acme"}, nil)
		ta.store.On("CreateMessage", mock.Anything).Return(types.ChannelMessage{}, errors.New("disk full"))

		var body bytes.Buffer
		json.NewEncoder(&body).Encode(PostMessageRequest{Message: "hello"})

		req := httptest.NewRequest(http.MethodPost, "/api/channels/10/messages", &body)
		req.SetPathValue("id", "10")
		req = req.WithContext(WithAuth(req.Context(), types.AuthContext{UserID: 1, TenantID: "acme"}))

		rr := httptest.NewRecorder()
		ta.app.postMessage(rr, req)

		assert.Equal(t, http.StatusInternalServerError, rr.Code,
			"a failed write is not the client's fault")
	})
}

func TestCreateChannelHandler(t *testing.T) {
	ta := newTestApp(t)
	ta.db.On("CreateChannel", mock.Anything).Return(database.Channel{Id: 10, TenantId: "acme", Name: "general", CreatedBy: 1}, nil)
	ta.db.On("AddChannelMember", 10, 1, types.RoleAdmin).Return(nil)

	var body bytes.Buffer
	json.NewEncoder(&body).Encode(CreateChannelRequest{Name: "general"})

	req := httptest.NewRequest(http.MethodPost, "/api/channels", &body)
	req = req.WithContext(WithAuth(req.Context(), types.AuthContext{UserID: 1, TenantID: "acme"}))

	rr := httptest.NewRecorder()
	ta.app.createChannel(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)
	ta.db.AssertCalled(t, "AddChannelMember", 10, 1, types.RoleAdmin)

	var ch types.Channel
	assert.NoError(t, json.NewDecoder(rr.Body).Decode(&ch))
	assert.Equal(t, "general", ch.Name)
}

type failingBlobStore struct{}

func (f *failingBlobStore) Save(channelId int, filename string, data []byte) (*blob.SavedFile, error) {
	return nil, errors.New("write file: no space left on device")
}

func multipartBody(t *testing.T, filename string, data []byte) (*bytes.Buffer, string) {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", filename)
	assert.NoError(t, err)
	_, err = part.Write(data)
	assert.NoError(t, err)
	assert.NoError(t, w.Close())

	return &body, w.FormDataContentType()
}

func TestUploadFileHandler(t *testing.T) {
	t.Run("storage failure is a server error", func(t *testing.T) {
		ta := newTestApp(t)
		ta.app.blobs = &failingBlobStore{}
		ta.db.On("GetChannel", 10).Return(database.Channel{Id: 10, TenantId: "acme"}, nil)

		body, contentType := multipartBody(t, "cat.png", []byte("png-bytes"))
		req := httptest.NewRequest(http.MethodPost, "/api/channels/10/files", body)
		req.Header.Set("Content-Type", contentType)
		req.SetPathValue("id", "10")
		req = req.WithContext(WithAuth(req.Context(), types.AuthContext{UserID: 1, TenantID: "acme"}))

		rr := httptest.NewRecorder()
		ta.app.uploadFile(rr, req)

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
	})

	t.Run("empty file is a client error", func(t *testing.T) {
		ta := newTestApp(t)
		ta.db.On("GetChannel", 10).Return(database.Channel{Id: 10, TenantId: "acme"}, nil)

		body, contentType := multipartBody(t, "empty.txt", nil)
		req := httptest.NewRequest(http.MethodPost, "/api/channels/10/files", body)
		req.Header.Set("Content-Type", contentType)
		req.SetPathValue("id", "10")
		req = req.WithContext(WithAuth(req.Context(), types.AuthContext{UserID: 1, TenantID: "acme"}))

		rr := httptest.NewRecorder()
		ta.app.uploadFile(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestUpdateMemberRoleHandler(t *testing.T) {
	t.Run("members are forbidden", func(t *testing.T) {
		ta := newTestApp(t)
		ta.db.On("GetChannel", 10).Return(database.Channel{Id: 10, TenantId: "acme"}, nil)

		var body bytes.Buffer
		json.NewEncoder(&body).Encode(UpdateMemberRoleRequest{Role: types.RoleAdmin})

		req := httptest.NewRequest(http.MethodPut, "/api/channels/10/members/2", &body)
		req.SetPathValue("id", "10")
		req.SetPathValue("userId", "2")
		req = req.WithContext(WithAuth(req.Context(), types.AuthContext{UserID: 1, TenantID: "acme", Role: types.RoleMember}))

		rr := httptest.NewRecorder()
		ta.app.updateMemberRole(rr, req)

		assert.Equal(t, http.StatusForbidden, rr.Code)
		ta.db.AssertNotCalled(t, "UpdateMemberRole", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("admin promotes a member", func(t *testing.T) {
		ta := newTestApp(t)
		ta.db.On("GetChannel", 10).Return(database.Channel{Id: 10, TenantId: "acme"}, nil)
		ta.db.On("UpdateMemberRole", 10, 2, types.RoleAdmin).Return(nil)

		var body bytes.Buffer
		json.NewEncoder(&body).Encode(UpdateMemberRoleRequest{Role: types.RoleAdmin})

		req := httptest.NewRequest(http.MethodPut, "/api/channels/10/members/2", &body)
		req.SetPathValue("id", "10")
		req.SetPathValue("userId", "2")
		req = req.WithContext(WithAuth(req.Context(), types.AuthContext{UserID: 1, TenantID: "acme", Role: types.RoleAdmin}))

		rr := httptest.NewRecorder()
		ta.app.updateMemberRole(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var member types.ChannelMember
		assert.NoError(t, json.NewDecoder(rr.Body).Decode(&member))
		assert.Equal(t, 2, member.UserId)
		assert.Equal(t, types.RoleAdmin, member.Role)
	})

	t.Run("unknown member", func(t *testing.T) {
		ta := newTestApp(t)
		ta.db.On("GetChannel", 10).Return(database.Channel{Id: 10, TenantId: "acme"}, nil)
		ta.db.On("UpdateMemberRole", 10, 9, types.RoleAdmin).Return(sql.ErrNoRows)

		var body bytes.Buffer
		json.NewEncoder(&body).Encode(UpdateMemberRoleRequest{Role: types.RoleAdmin})

		req := httptest.NewRequest(http.MethodPut, "/api/channels/10/members/9", &body)
		req.SetPathValue("id", "10")
		req.SetPathValue("userId", "9")
		req = req.WithContext(WithAuth(req.Context(), types.AuthContext{UserID: 1, TenantID: "acme", Role: types.RoleAdmin}))

		rr := httptest.NewRecorder()
		ta.app.updateMemberRole(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestUpdateAccountHandler(t *testing.T) {
	pwdHash, err := hashPassword("password")
	assert.NoError(t, err)
	account := testAccount
	account.PasswordHash = pwdHash

	t.Run("changes display name, keeps password", func(t *testing.T) {
		ta := newTestApp(t)
		ta.db.On("GetAccountById", 1).Return(account, nil)
		ta.db.On("UpdateAccount", mock.MatchedBy(func(params database.UpdateAccountParams) bool {
			return params.UserId == 1 && params.DisplayName == "alicia" && params.PasswordHash == pwdHash
		})).Return(database.Account{Id: 1, TenantId: "acme", DisplayName: "alicia"}, nil)

		var body bytes.Buffer
		json.NewEncoder(&body).Encode(UpdateAccountRequest{DisplayName: "alicia"})

		req := httptest.NewRequest(http.MethodPut, "/api/auth/account", &body)
		req = req.WithContext(WithAuth(req.Context(), types.AuthContext{UserID: 1, TenantID: "acme"}))

		rr := httptest.NewRecorder()
		ta.app.updateAccount(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var user types.User
		assert.NoError(t, json.NewDecoder(rr.Body).Decode(&user))
		assert.Equal(t, "alicia", user.DisplayName)
	})

	t.Run("new password is rehashed", func(t *testing.T) {
		ta := newTestApp(t)
		ta.db.On("GetAccountById", 1).Return(account, nil)
		ta.db.On("UpdateAccount", mock.MatchedBy(func(params database.UpdateAccountParams) bool {
			return params.PasswordHash != pwdHash && verifyPassword(params.PasswordHash, "hunter2")
		})).Return(account, nil)

		var body bytes.Buffer
		json.NewEncoder(&body).Encode(UpdateAccountRequest{Password: "hunter2"})

		req := httptest.NewRequest(http.MethodPut, "/api/auth/account", &body)
		req = req.WithContext(WithAuth(req.Context(), types.AuthContext{UserID: 1, TenantID: "acme"}))

		rr := httptest.NewRecorder()
		ta.app.updateAccount(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
	})
}

func TestArchiveHandler(t *testing.T) {
	t.Run("members are forbidden", func(t *testing.T) {
		ta := newTestApp(t)

		req := httptest.NewRequest(http.MethodPost, "/api/admin/archive", nil)
		req = req.WithContext(WithAuth(req.Context(), types.AuthContext{UserID: 1, TenantID: "acme", Role: types.RoleMember}))

		rr := httptest.NewRecorder()
		ta.app.archiveMessages(rr, req)

		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("admin archives old messages", func(t *testing.T) {
		ta := newTestApp(t)
		ta.store.On("ArchiveOlderThan", 7).Return(int64(3), nil)

		req := httptest.NewRequest(http.MethodPost, "/api/admin/archive", nil)
		req = req.WithContext(WithAuth(req.Context(), types.AuthContext{UserID: 1, TenantID: "acme", Role: types.RoleAdmin}))

		rr := httptest.NewRecorder()
		ta.app.archiveMessages(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var resp map[string]int64
		assert.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
		assert.Equal(t, int64(3), resp["archived"])
	})
}
