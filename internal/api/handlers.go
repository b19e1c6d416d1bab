package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/hivechat/hivechat/internal/blob"
	"github.com/hivechat/hivechat/internal/chat"
	"github.com/hivechat/hivechat/internal/database"
	"github.com/hivechat/hivechat/internal/stats"
	"github.com/hivechat/hivechat/internal/types"
)

const maxUploadBytes = 10 << 20

type CreateChannelRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	IsPrivate   bool   `json:"is_private"`
	MaxMembers  int    `json:"max_members"`
}

type UpdateChannelRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	IsPrivate   bool   `json:"is_private"`
}

type AddMemberRequest struct {
	UserId int    `json:"user_id"`
	Role   string `json:"role"`
}

type UpdateMemberRoleRequest struct {
	Role string `json:"role"`
}

type PostMessageRequest struct {
	Message string `json:"message"`
}

type MessagesResponse struct {
	Messages []*types.ChannelMessage `json:"messages"`
}

func (s *ChatApp) healthCheck(w http.ResponseWriter, r *http.Request) {
	if err := s.db.Ping(); err != nil {
		s.log.Println("health check:", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (s *ChatApp) writeJson(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if v == nil {
		return
	}

	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Printf("json encode: %v", err)
	}
}

// pathInt parses an integer path parameter, returning ok=false on garbage.
func pathInt(r *http.Request, name string) (int, bool) {
	v, err := strconv.Atoi(r.PathValue(name))
	if err != nil {
		return 0, false
	}
	return v, true
}

// channelForRequest loads the channel from the id path parameter and checks
// it belongs to the caller's tenant.
func (s *ChatApp) channelForRequest(w http.ResponseWriter, r *http.Request, auth types.AuthContext) (database.Channel, bool) {
	channelId, ok := pathInt(r, "id")
	if !ok {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return database.Channel{}, false
	}

	channel, err := s.db.GetChannel(channelId)
	if err != nil {
		var errResp *ApiError
		if errors.Is(err, sql.ErrNoRows) {
			errResp = NewNotFoundError()
		} else {
			errResp = NewInternalServerError(err)
		}
		s.writeJson(w, errResp.StatusCode, errResp)
		return database.Channel{}, false
	}

	if channel.TenantId != auth.TenantID {
		errResp := NewNotFoundError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return database.Channel{}, false
	}

	return channel, true
}

func (s *ChatApp) createChannel(w http.ResponseWriter, r *http.Request) {
	auth, _ := Auth(r.Context())

	var req CreateChannelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if req.Name == "" {
		errResp := NewValidationError("channel name is required")
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	newChannel, err := s.db.CreateChannel(database.CreateChannelParams{
		TenantId:    auth.TenantID,
		Name:        req.Name,
		Description: req.Description,
		IsPrivate:   req.IsPrivate,
		MaxMembers:  req.MaxMembers,
		CreatedBy:   auth.UserID,
	})
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	// the creator is the channel's first admin
	if err := s.db.AddChannelMember(newChannel.Id, auth.UserID, types.RoleAdmin); err != nil {
		s.log.Println("add creator to channel:", err)
	}

	s.writeJson(w, http.StatusCreated, channelToType(newChannel))
}

func (s *ChatApp) listChannels(w http.ResponseWriter, r *http.Request) {
	auth, _ := Auth(r.Context())

	dbChannels, err := s.db.ListChannels(auth.TenantID, auth.UserID, auth.Role != types.RoleMember)
	if err != nil {
		s.log.Println("list channels:", err)
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	channels := make([]types.Channel, 0, len(dbChannels))
	for _, ch := range dbChannels {
		channels = append(channels, channelToType(ch))
	}

	s.writeJson(w, http.StatusOK, channels)
}

func (s *ChatApp) getChannel(w http.ResponseWriter, r *http.Request) {
	auth, _ := Auth(r.Context())

	channel, ok := s.channelForRequest(w, r, auth)
	if !ok {
		return
	}

	s.writeJson(w, http.StatusOK, channelToType(channel))
}

func (s *ChatApp) updateChannel(w http.ResponseWriter, r *http.Request) {
	auth, _ := Auth(r.Context())

	channel, ok := s.channelForRequest(w, r, auth)
	if !ok {
		return
	}

	if channel.CreatedBy != auth.UserID && auth.Role == types.RoleMember {
		errResp := NewForbiddenError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	var req UpdateChannelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if req.Name == "" {
		req.Name = channel.Name
	}

	updated, err := s.db.UpdateChannel(database.UpdateChannelParams{
		ChannelId:   channel.Id,
		Name:        req.Name,
		Description: req.Description,
		IsPrivate:   req.IsPrivate,
	})
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, channelToType(updated))
}

func (s *ChatApp) deleteChannel(w http.ResponseWriter, r *http.Request) {
	auth, _ := Auth(r.Context())

	channel, ok := s.channelForRequest(w, r, auth)
	if !ok {
		return
	}

	if channel.CreatedBy != auth.UserID && auth.Role == types.RoleMember {
		errResp := NewForbiddenError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if err := s.db.DeleteChannel(channel.Id); err != nil {
		var errResp *ApiError
		if errors.Is(err, sql.ErrNoRows) {
			errResp = NewNotFoundError()
		} else {
			errResp = NewInternalServerError(err)
		}
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusNoContent, nil)
}

func (s *ChatApp) listMembers(w http.ResponseWriter, r *http.Request) {
	auth, _ := Auth(r.Context())

	channel, ok := s.channelForRequest(w, r, auth)
	if !ok {
		return
	}

	dbMembers, err := s.db.ListChannelMembers(channel.Id)
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	members := make([]types.ChannelMember, 0, len(dbMembers))
	for _, m := range dbMembers {
		members = append(members, types.ChannelMember{
			UserId:   m.UserId,
			Role:     m.Role,
			JoinedAt: m.JoinedAt,
		})
	}

	s.writeJson(w, http.StatusOK, members)
}

func (s *ChatApp) addMember(w http.ResponseWriter, r *http.Request) {
	auth, _ := Auth(r.Context())

	channel, ok := s.channelForRequest(w, r, auth)
	if !ok {
		return
	}

	var req AddMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserId == 0 {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	member, err := s.db.GetAccountById(req.UserId)
	if err != nil || member.TenantId != auth.TenantID {
		errResp := NewNotFoundError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	role := req.Role
	if role == "" {
		role = types.RoleMember
	}

	if err := s.db.AddChannelMember(channel.Id, req.UserId, role); err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusCreated, types.ChannelMember{UserId: req.UserId, Role: role})
}

func (s *ChatApp) updateMemberRole(w http.ResponseWriter, r *http.Request) {
	auth, _ := Auth(r.Context())

	channel, ok := s.channelForRequest(w, r, auth)
	if !ok {
		return
	}

	if auth.Role == types.RoleMember {
		errResp := NewForbiddenError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	userId, ok := pathInt(r, "userId")
	if !ok {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	var req UpdateMemberRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Role == "" {
		errResp := NewValidationError("role is required")
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if err := s.db.UpdateMemberRole(channel.Id, userId, req.Role); err != nil {
		var errResp *ApiError
		if errors.Is(err, sql.ErrNoRows) {
			errResp = NewNotFoundError()
		} else {
			errResp = NewInternalServerError(err)
		}
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, types.ChannelMember{UserId: userId, Role: req.Role})
}

func (s *ChatApp) removeMember(w http.ResponseWriter, r *http.Request) {
	auth, _ := Auth(r.Context())

	channel, ok := s.channelForRequest(w, r, auth)
	if !ok {
		return
	}

	userId, ok := pathInt(r, "userId")
	if !ok {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if userId != auth.UserID && auth.Role == types.RoleMember {
		errResp := NewForbiddenError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if err := s.db.RemoveChannelMember(channel.Id, userId); err != nil {
		var errResp *ApiError
		if errors.Is(err, sql.ErrNoRows) {
			errResp = NewNotFoundError()
		} else {
			errResp = NewInternalServerError(err)
		}
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusNoContent, nil)
}

func (s *ChatApp) getMessages(w http.ResponseWriter, r *http.Request) {
	auth, _ := Auth(r.Context())

	channel, ok := s.channelForRequest(w, r, auth)
	if !ok {
		return
	}

	skip, _ := strconv.Atoi(r.URL.Query().Get("skip"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	daysBack, _ := strconv.Atoi(r.URL.Query().Get("days_back"))
	if limit <= 0 {
		limit = 50
	}

	store, err := s.stores.For(auth.TenantID)
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	var messages []types.ChannelMessage
	if daysBack > 0 {
		messages, err = store.GetMessages(channel.Id, skip, limit, daysBack)
	} else {
		messages, err = store.GetAllMessages(channel.Id, skip, limit)
	}
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, messages)
}

func (s *ChatApp) postMessage(w http.ResponseWriter, r *http.Request) {
	auth, _ := Auth(r.Context())

	channel, ok := s.channelForRequest(w, r, auth)
	if !ok {
		return
	}

	var req PostMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	tenant, err := s.db.GetTenantById(auth.TenantID)
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	messages, err := s.pipeline.PostMessage(r.Context(), chat.PostMessageParams{
		TenantId:    auth.TenantID,
		ChannelId:   channel.Id,
		UserId:      auth.UserID,
		DisplayName: auth.DisplayName,
		Content:     req.Message,
		AIEnabled:   tenant.AIEnabled,
	})
	if err != nil {
		var errResp *ApiError
		if errors.Is(err, chat.ErrEmptyMessage) {
			errResp = NewValidationError(err.Error())
		} else {
			errResp = NewInternalServerError(err)
		}
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, MessagesResponse{Messages: messages})
}

func (s *ChatApp) uploadFile(w http.ResponseWriter, r *http.Request) {
	auth, _ := Auth(r.Context())

	channel, ok := s.channelForRequest(w, r, auth)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		errResp := NewValidationError("invalid multipart form")
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		errResp := NewValidationError("file field is required")
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	saved, err := s.blobs.Save(channel.Id, header.Filename, data)
	if err != nil {
		var errResp *ApiError
		if errors.Is(err, blob.ErrInvalidFile) {
			errResp = NewValidationError(err.Error())
		} else {
			errResp = NewInternalServerError(err)
		}
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}
	s.stats.Incr(stats.FilesUploaded)

	tenant, err := s.db.GetTenantById(auth.TenantID)
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	messages, err := s.pipeline.PostMessage(r.Context(), chat.PostMessageParams{
		TenantId:    auth.TenantID,
		ChannelId:   channel.Id,
		UserId:      auth.UserID,
		DisplayName: auth.DisplayName,
		Content:     r.FormValue("message"),
		AIEnabled:   tenant.AIEnabled,
		File:        saved,
	})
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, MessagesResponse{Messages: messages})
}

// archiveMessages flags messages older than the retention window in the
// caller's tenant store. Restricted to admins.
func (s *ChatApp) archiveMessages(w http.ResponseWriter, r *http.Request) {
	auth, _ := Auth(r.Context())

	if auth.Role == types.RoleMember {
		errResp := NewForbiddenError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	store, err := s.stores.For(auth.TenantID)
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	archived, err := store.ArchiveOlderThan(s.archiveAfter)
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, map[string]int64{"archived": archived})
}

func channelToType(ch database.Channel) types.Channel {
	return types.Channel{
		Id:          ch.Id,
		Name:        ch.Name,
		Description: ch.Description,
		IsPrivate:   ch.IsPrivate,
		IsActive:    ch.IsActive,
		MaxMembers:  ch.MaxMembers,
		CreatedBy:   ch.CreatedBy,
		MemberCount: ch.MemberCount,
		CreatedAt:   ch.CreatedAt,
		UpdatedAt:   ch.UpdatedAt,
	}
}
