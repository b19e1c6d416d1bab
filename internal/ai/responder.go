package ai

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"github.com/hivechat/hivechat/internal/config"
)

// systemPrompt is shared by all backends.
const systemPrompt = "You are a helpful AI assistant. Provide clear, concise, and helpful responses."

// ErrNotConfigured marks a backend missing its credential. It is never
// retried; everything else is treated as transient.
var ErrNotConfigured = errors.New("ai: provider not configured")

// Request is one generation request. FilePath/FileName are set for file
// analysis; image files are attached to backends that support them.
type Request struct {
	Prompt   string
	FilePath string
	FileName string
}

// Responder produces generated text for a prompt. Implementations carry
// their own retry policy for transient failures.
type Responder interface {
	Name() string
	Generate(ctx context.Context, req Request) (string, error)
}

// New selects the responder backend from configuration. The choice is made
// once at construction; call sites never branch on provider names.
func New(cfg *config.Config, logger *log.Logger) (Responder, error) {
	if err := cfg.ValidateAI(); err != nil {
		return nil, err
	}

	switch cfg.AIProvider {
	case config.ProviderAnthropic:
		return NewAnthropicResponder(cfg.AnthropicKey, logger), nil
	default:
		return NewOpenAIResponder(cfg.OpenAIKey, logger), nil
	}
}

var imageExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// imageMediaType reports the media type for image filenames, empty otherwise.
func imageMediaType(name string) string {
	return imageExtensions[strings.ToLower(filepath.Ext(name))]
}

func emptyResponseErr(provider string) error {
	return fmt.Errorf("%s: empty response", provider)
}
