package api

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/hivechat/hivechat/internal/blob"
	"github.com/hivechat/hivechat/internal/chat"
	"github.com/hivechat/hivechat/internal/config"
	"github.com/hivechat/hivechat/internal/database"
	"github.com/hivechat/hivechat/internal/notify"
	"github.com/hivechat/hivechat/internal/server"
	"github.com/hivechat/hivechat/internal/stats"
)

type ChatApp struct {
	log            *log.Logger
	db             database.MasterRepository
	registry       *server.Registry
	pipeline       *chat.Pipeline
	stores         chat.StoreProvider
	blobs          blob.BlobStore
	otp            *notify.OTPService
	stats          stats.StatsProvider
	mux            *http.Server
	signingKey     []byte
	allowedOrigins []string
	archiveAfter   int
}

func NewChatApp(mux *http.ServeMux, logger *log.Logger, db database.MasterRepository, registry *server.Registry,
	pipeline *chat.Pipeline, stores chat.StoreProvider, blobs blob.BlobStore, otp *notify.OTPService, sp stats.StatsProvider, cfg *config.Config) *ChatApp {
	s := &ChatApp{
		log:            logger,
		db:             db,
		registry:       registry,
		pipeline:       pipeline,
		stores:         stores,
		blobs:          blobs,
		otp:            otp,
		stats:          sp,
		signingKey:     cfg.SigningKey,
		allowedOrigins: cfg.AllowedOrigins,
		archiveAfter:   cfg.ArchiveAfterDays,
	}

	mux.HandleFunc("GET /healthz", s.healthCheck)
	mux.HandleFunc("POST /api/auth/register", s.createAccount)
	mux.HandleFunc("POST /api/auth/login", s.login)
	mux.HandleFunc("GET /api/auth/session", s.authMiddleware(s.session))
	mux.HandleFunc("PUT /api/auth/account", s.authMiddleware(s.updateAccount))
	mux.HandleFunc("POST /api/auth/otp/request", s.authMiddleware(s.requestOTP))
	mux.HandleFunc("POST /api/auth/otp/verify", s.authMiddleware(s.verifyOTP))
	mux.HandleFunc("GET /api/tenants", s.listTenants)
	mux.HandleFunc("POST /api/channels", s.authMiddleware(s.createChannel))
	mux.HandleFunc("GET /api/channels", s.authMiddleware(s.listChannels))
	mux.HandleFunc("GET /api/channels/{id}", s.authMiddleware(s.getChannel))
	mux.HandleFunc("PUT /api/channels/{id}", s.authMiddleware(s.updateChannel))
	mux.HandleFunc("DELETE /api/channels/{id}", s.authMiddleware(s.deleteChannel))
	mux.HandleFunc("GET /api/channels/{id}/members", s.authMiddleware(s.listMembers))
	mux.HandleFunc("POST /api/channels/{id}/members", s.authMiddleware(s.addMember))
	mux.HandleFunc("PUT /api/channels/{id}/members/{userId}", s.authMiddleware(s.updateMemberRole))
	mux.HandleFunc("DELETE /api/channels/{id}/members/{userId}", s.authMiddleware(s.removeMember))
	mux.HandleFunc("GET /api/channels/{id}/messages", s.authMiddleware(s.getMessages))
	mux.HandleFunc("POST /api/channels/{id}/messages", s.authMiddleware(s.postMessage))
	mux.HandleFunc("POST /api/channels/{id}/files", s.authMiddleware(s.uploadFile))
	mux.HandleFunc("POST /api/admin/archive", s.authMiddleware(s.archiveMessages))
	mux.HandleFunc("GET /ws", s.serveWs)
	mux.Handle("GET /uploads/", http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadDir))))

	h := handlers.CORS(
		handlers.MaxAge(3600),
		handlers.AllowedOrigins(cfg.AllowedOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Origin", "Content-Type", "Accept", "Authorization"}),
		handlers.AllowCredentials(),
	)(mux)

	h = s.errorHandler(h)

	srv := &http.Server{
		Addr:    cfg.ServerAddr,
		Handler: h,
	}

	s.mux = srv
	return s
}

func (s *ChatApp) Start() error {
	s.log.Printf("starting server on %s\n", s.mux.Addr)
	return s.mux.ListenAndServe()
}

func (s *ChatApp) Shutdown(ctx context.Context) error {
	s.log.Println("shutting down HTTP server...")
	if err := s.mux.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	return nil
}
