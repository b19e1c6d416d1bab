package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"github.com/hivechat/hivechat/internal/ai"
	"github.com/hivechat/hivechat/internal/api"
	"github.com/hivechat/hivechat/internal/blob"
	"github.com/hivechat/hivechat/internal/chat"
	"github.com/hivechat/hivechat/internal/config"
	"github.com/hivechat/hivechat/internal/database"
	"github.com/hivechat/hivechat/internal/notify"
	"github.com/hivechat/hivechat/internal/server"
	"github.com/hivechat/hivechat/internal/stats"
	"github.com/hivechat/hivechat/internal/tenantdb"
)

const defaultSigningKey = "wT0phFUusHZIrDhL9bUKPUhwaxKhpi/SaI6PtgB+MgU="

type stringSliceFlag []string

func (s *stringSliceFlag) String() string {
	return strings.Join(*s, ",")
}

func (s *stringSliceFlag) Set(value string) error {
	*s = append(*s, strings.Split(value, ",")...)
	return nil
}

var (
	addr           string
	dsn            string
	tenantDataDir  string
	uploadDir      string
	signingKey     string
	aiProvider     string
	archiveDays    int
	allowedOrigins stringSliceFlag
)

func main() {
	flag.StringVar(&addr, "addr", "localhost:8000", "server address")
	flag.StringVar(&dsn, "dsn", "host=localhost user=postgres password=postgres dbname=postgres sslmode=disable", "master database connection string")
	flag.StringVar(&tenantDataDir, "tenant-data-dir", "data", "directory for per-tenant message databases")
	flag.StringVar(&uploadDir, "upload-dir", "uploads", "directory for uploaded files")
	flag.StringVar(&signingKey, "signing-key", defaultSigningKey, "base64 encoded signing key")
	flag.StringVar(&aiProvider, "ai-provider", config.ProviderOpenAI, "assistant backend (openai or anthropic)")
	flag.IntVar(&archiveDays, "archive-days", 7, "archive messages older than this many days")
	flag.Var(&allowedOrigins, "allowed-origins", "comma-separated list of allowed origins for CORS")
	flag.Parse()

	logger := log.New(os.Stderr, "[hivechat] ", log.LstdFlags)

	cfg, err := config.NewConfig(addr, dsn, tenantDataDir, signingKey, allowedOrigins)
	if err != nil {
		logger.Fatal("config:", err)
	}
	cfg.UploadDir = uploadDir
	cfg.AIProvider = aiProvider
	cfg.ArchiveAfterDays = archiveDays
	cfg.OpenAIKey = os.Getenv("OPENAI_API_KEY")
	cfg.AnthropicKey = os.Getenv("ANTHROPIC_API_KEY")
	cfg.SMTPHost = os.Getenv("SMTP_HOST")
	if port := os.Getenv("SMTP_PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			logger.Fatal("invalid SMTP_PORT:", err)
		}
		cfg.SMTPPort = p
	}
	cfg.SMTPUser = os.Getenv("SMTP_USER")
	cfg.SMTPPass = os.Getenv("SMTP_PASS")
	cfg.SMSBaseURL = os.Getenv("SMS_GATEWAY_URL")
	cfg.SMSAuthToken = os.Getenv("SMS_AUTH_TOKEN")
	cfg.SMSCustomerID = os.Getenv("SMS_CUSTOMER_ID")

	dbConn, err := database.NewPgMasterRepository(cfg.MasterDSN)
	if err != nil {
		logger.Fatal("db open:", err)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Fatal("db close:", err)
		}
	}()

	if err := dbConn.EnsureSchema(); err != nil {
		logger.Fatal("ensure schema:", err)
	}

	tenants, err := tenantdb.NewManager(cfg.TenantDataDir)
	if err != nil {
		logger.Fatal("tenant databases:", err)
	}
	defer tenants.Close()

	blobs, err := blob.NewLocalStore(cfg.UploadDir)
	if err != nil {
		logger.Fatal("upload store:", err)
	}

	responder, err := ai.New(cfg, logger)
	if err != nil {
		logger.Fatal("responder:", err)
	}

	mux := http.NewServeMux()

	statsUpdater := stats.NewStatsUpdater(mux)

	registry := server.NewRegistry(logger, statsUpdater)

	pipeline := chat.NewPipeline(logger, tenants, responder, registry, statsUpdater, cfg.AIChatEnabled)

	otp := notify.NewOTPService(logger, dbConn,
		notify.NewEmailSender(logger, cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPUser),
		notify.NewSMSSender(logger, cfg.SMSBaseURL, cfg.SMSAuthToken, cfg.SMSCustomerID),
	)

	srv := api.NewChatApp(mux, logger, dbConn, registry, pipeline, tenants, blobs, otp, statsUpdater, cfg)

	statsUpdater.Run()
	defer statsUpdater.Stop()

	sweeperStop := make(chan struct{})
	go archiveSweeper(logger, tenants, cfg.ArchiveAfterDays, sweeperStop)
	defer close(sweeperStop)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigs:
		logger.Printf("received signal: %s\n", sig)
	case err := <-errCh:
		logger.Println("server:", err)
	}

	shutDownCtx, cancel := context.WithTimeout(
		context.Background(),
		10*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutDownCtx); err != nil {
		logger.Fatalln("HTTP server shutdown:", err)
	}

	logger.Println("closing websocket connections...")
	registry.Shutdown()

	logger.Println("shutdown complete")
}

// archiveSweeper flags old messages in every tenant database once a day.
func archiveSweeper(logger *log.Logger, tenants *tenantdb.Manager, days int, stop <-chan struct{}) {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ids, err := tenants.Tenants()
			if err != nil {
				logger.Println("list tenant databases:", err)
				continue
			}

			for _, id := range ids {
				store, err := tenants.For(id)
				if err != nil {
					logger.Printf("open tenant %q: %s", id, err)
					continue
				}

				archived, err := store.ArchiveOlderThan(days)
				if err != nil {
					logger.Printf("archive tenant %q: %s", id, err)
					continue
				}

				if archived > 0 {
					logger.Printf("archived %d messages for tenant %q", archived, id)
				}
			}
		case <-stop:
			return
		}
	}
}
