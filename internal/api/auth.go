package api

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/hivechat/hivechat/internal/database"
	"github.com/hivechat/hivechat/internal/notify"
	"github.com/hivechat/hivechat/internal/types"
	"golang.org/x/crypto/bcrypt"
)

const (
	userIdClaim   = "user-id"
	tenantIdClaim = "tenant-id"
	expClaim      = "exp"

	defaultJwtExpiration = time.Hour * 24
)

type contextKey string

const authKey contextKey = "auth"

func WithAuth(ctx context.Context, auth types.AuthContext) context.Context {
	return context.WithValue(ctx, authKey, auth)
}

func Auth(ctx context.Context) (types.AuthContext, bool) {
	auth, ok := ctx.Value(authKey).(types.AuthContext)
	return auth, ok
}

// bearerToken extracts the token from the Authorization header, falling
// back to the token query parameter for websocket clients.
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}

	return r.URL.Query().Get("token")
}

type RegisterRequest struct {
	TenantId    string `json:"tenant_id"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
	Password    string `json:"password"`
}

type LoginRequest struct {
	TenantId string `json:"tenant_id"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string     `json:"token"`
	User  types.User `json:"user"`
}

type UpdateAccountRequest struct {
	DisplayName string `json:"display_name"`
	Password    string `json:"password"`
}

type OTPRequest struct {
	Transport string `json:"transport"`
}

type OTPVerifyRequest struct {
	Code string `json:"code"`
}

func (s *ChatApp) createAccount(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if req.TenantId == "" || req.DisplayName == "" || req.Email == "" || req.Password == "" {
		errResp := NewValidationError("tenant_id, display_name, email and password are required")
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	tenant, err := s.db.GetTenantById(req.TenantId)
	if err != nil {
		var errResp *ApiError
		if errors.Is(err, sql.ErrNoRows) {
			errResp = NewNotFoundError()
		} else {
			errResp = NewInternalServerError(err)
		}
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if _, err := s.db.GetAccountByEmail(tenant.Id, req.Email); err == nil {
		errResp := NewConflictError("an account with this email already exists")
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	pwdHash, err := hashPassword(req.Password)
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	newUser, err := s.db.CreateAccount(database.CreateAccountParams{
		TenantId:     tenant.Id,
		DisplayName:  req.DisplayName,
		EmailAddress: req.Email,
		PhoneNumber:  req.PhoneNumber,
		PasswordHash: pwdHash,
		Role:         types.RoleMember,
	})
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusCreated, accountToUser(newUser))
}

func (s *ChatApp) login(w http.ResponseWriter, r *http.Request) {
	var lr LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&lr); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if lr.TenantId == "" || lr.Email == "" || lr.Password == "" {
		errResp := NewValidationError("tenant_id, email and password are required")
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	dbUser, err := s.db.GetAccountByEmail(lr.TenantId, lr.Email)
	if err != nil {
		var errResp *ApiError
		if errors.Is(err, sql.ErrNoRows) {
			errResp = NewNotFoundError()
		} else {
			errResp = NewInternalServerError(err)
		}
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if !verifyPassword(dbUser.PasswordHash, lr.Password) {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	token, err := s.createSessionToken(dbUser, defaultJwtExpiration)
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, LoginResponse{
		Token: token,
		User:  accountToUser(dbUser),
	})
}

func (s *ChatApp) session(w http.ResponseWriter, r *http.Request) {
	auth, ok := Auth(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	user, err := s.db.GetAccountById(auth.UserID)
	if err != nil {
		var errResp *ApiError
		if errors.Is(err, sql.ErrNoRows) {
			errResp = NewNotFoundError()
		} else {
			errResp = NewInternalServerError(err)
		}
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, accountToUser(user))
}

// updateAccount changes the caller's own profile. The password only changes
// when a new one is supplied.
func (s *ChatApp) updateAccount(w http.ResponseWriter, r *http.Request) {
	auth, ok := Auth(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	var req UpdateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	account, err := s.db.GetAccountById(auth.UserID)
	if err != nil {
		var errResp *ApiError
		if errors.Is(err, sql.ErrNoRows) {
			errResp = NewNotFoundError()
		} else {
			errResp = NewInternalServerError(err)
		}
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	displayName := req.DisplayName
	if displayName == "" {
		displayName = account.DisplayName
	}

	pwdHash := account.PasswordHash
	if req.Password != "" {
		pwdHash, err = hashPassword(req.Password)
		if err != nil {
			errResp := NewInternalServerError(err)
			s.writeJson(w, errResp.StatusCode, errResp)
			return
		}
	}

	updated, err := s.db.UpdateAccount(database.UpdateAccountParams{
		UserId:       account.Id,
		DisplayName:  displayName,
		PasswordHash: pwdHash,
	})
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, accountToUser(updated))
}

func (s *ChatApp) requestOTP(w http.ResponseWriter, r *http.Request) {
	auth, ok := Auth(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	var req OTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	user, err := s.db.GetAccountById(auth.UserID)
	if err != nil {
		errResp := NewNotFoundError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	recipient := user.EmailAddress
	if req.Transport == "sms" {
		recipient = user.PhoneNumber
	}
	if recipient == "" {
		errResp := NewValidationError("no recipient on file for this transport")
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if err := s.otp.Request(user.Id, req.Transport, recipient); err != nil {
		var errResp *ApiError
		if errors.Is(err, notify.ErrResendTooSoon) {
			errResp = NewTooManyRequestsError(err.Error())
		} else {
			errResp = NewInternalServerError(err)
		}
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusAccepted, map[string]string{"status": "sent"})
}

func (s *ChatApp) verifyOTP(w http.ResponseWriter, r *http.Request) {
	auth, ok := Auth(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	var req OTPVerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Code == "" {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if err := s.otp.Verify(auth.UserID, req.Code); err != nil {
		var errResp *ApiError
		if errors.Is(err, notify.ErrCodeInvalid) {
			errResp = NewValidationError(err.Error())
		} else {
			errResp = NewInternalServerError(err)
		}
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, map[string]string{"status": "verified"})
}

func (s *ChatApp) listTenants(w http.ResponseWriter, r *http.Request) {
	dbTenants, err := s.db.ListTenants()
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	tenants := make([]types.Tenant, 0, len(dbTenants))
	for _, t := range dbTenants {
		tenants = append(tenants, types.Tenant{
			Id:          t.Id,
			Name:        t.Name,
			Description: t.Description,
			Type:        t.TenantType,
			MaxUsers:    t.MaxUsers,
			AIEnabled:   t.AIEnabled,
		})
	}

	s.writeJson(w, http.StatusOK, tenants)
}

func accountToUser(a database.Account) types.User {
	return types.User{
		Id:           a.Id,
		TenantId:     a.TenantId,
		DisplayName:  a.DisplayName,
		EmailAddress: a.EmailAddress,
		PhoneNumber:  a.PhoneNumber,
		Role:         a.Role,
		IsVerified:   a.IsVerified,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}

func hashPassword(passwd string) (string, error) {
	passwdHash, err := bcrypt.GenerateFromPassword([]byte(passwd), bcrypt.DefaultCost)
	return string(passwdHash), err
}

func verifyPassword(passwdHash, passwd string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(passwdHash), []byte(passwd))
	return err == nil
}

func (s *ChatApp) createSessionToken(user database.Account, exp time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		userIdClaim:   user.Id,
		tenantIdClaim: user.TenantId,
		expClaim:      time.Now().Add(exp).Unix(),
	})

	return token.SignedString(s.signingKey)
}

func (s *ChatApp) parseSessionToken(tokenString string) (types.AuthContext, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.signingKey, nil
	})
	if err != nil {
		return types.AuthContext{}, fmt.Errorf("parse token: %w", err)
	}

	if !token.Valid {
		return types.AuthContext{}, fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return types.AuthContext{}, fmt.Errorf("invalid token claims")
	}

	userId, ok := claims[userIdClaim].(float64)
	if !ok {
		return types.AuthContext{}, fmt.Errorf("invalid user id claim")
	}

	tenantId, ok := claims[tenantIdClaim].(string)
	if !ok {
		return types.AuthContext{}, fmt.Errorf("invalid tenant id claim")
	}

	user, err := s.db.GetAccountById(int(userId))
	if err != nil {
		return types.AuthContext{}, fmt.Errorf("lookup account: %w", err)
	}

	return types.AuthContext{
		UserID:      user.Id,
		TenantID:    tenantId,
		DisplayName: user.DisplayName,
		Role:        user.Role,
	}, nil
}
