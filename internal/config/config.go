package config

import (
	"encoding/base64"
	"fmt"
)

const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

type Config struct {
	ServerAddr     string
	MasterDSN      string
	TenantDataDir  string
	UploadDir      string
	SigningKey     []byte
	AllowedOrigins []string

	AIProvider    string
	OpenAIKey     string
	AnthropicKey  string
	AIChatEnabled bool

	ArchiveAfterDays int

	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string

	SMSBaseURL    string
	SMSCustomerID string
	SMSAuthToken  string
}

func decodeSigningSecret(base64Secret string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(base64Secret)
}

func NewConfig(serverAddr, masterDSN, tenantDataDir, base64Secret string, allowedOrigins []string) (*Config, error) {
	if serverAddr == "" {
		return nil, fmt.Errorf("server address cannot be empty")
	}
	if masterDSN == "" {
		return nil, fmt.Errorf("master database DSN cannot be empty")
	}
	if tenantDataDir == "" {
		return nil, fmt.Errorf("tenant database directory cannot be empty")
	}
	if base64Secret == "" {
		return nil, fmt.Errorf("signing secret cannot be empty")
	}

	signingKey, err := decodeSigningSecret(base64Secret)
	if err != nil {
		return nil, fmt.Errorf("decode signing secret: %w", err)
	}

	return &Config{
		ServerAddr:       serverAddr,
		MasterDSN:        masterDSN,
		TenantDataDir:    tenantDataDir,
		UploadDir:        "uploads",
		SigningKey:       signingKey,
		AllowedOrigins:   allowedOrigins,
		AIProvider:       ProviderOpenAI,
		SMTPPort:         587,
		AIChatEnabled:    true,
		ArchiveAfterDays: 7,
	}, nil
}

// ValidateAI checks that the selected responder backend has a credential.
// A missing key is not fatal at startup; the responder degrades at call time.
func (c *Config) ValidateAI() error {
	switch c.AIProvider {
	case ProviderOpenAI, ProviderAnthropic:
		return nil
	default:
		return fmt.Errorf("invalid AI provider %q", c.AIProvider)
	}
}
