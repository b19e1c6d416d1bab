package ai

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"os"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const (
	anthropicModel     = anthropic.Model("claude-sonnet-4-20250514")
	anthropicMaxTokens = 1000
)

// AnthropicResponder generates replies through the Anthropic messages API.
type AnthropicResponder struct {
	client anthropic.Client
	apiKey string
	logger *log.Logger
}

func NewAnthropicResponder(apiKey string, logger *log.Logger) *AnthropicResponder {
	return &AnthropicResponder{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
		apiKey: apiKey,
		logger: logger,
	}
}

func (r *AnthropicResponder) Name() string {
	return "anthropic"
}

func (r *AnthropicResponder) Generate(ctx context.Context, req Request) (string, error) {
	return withRetry(ctx, r.logger, r.Name(), func(ctx context.Context) (string, error) {
		return r.generate(ctx, req)
	})
}

func (r *AnthropicResponder) generate(ctx context.Context, req Request) (string, error) {
	if r.apiKey == "" {
		return "", fmt.Errorf("%w: ANTHROPIC_API_KEY is not set", ErrNotConfigured)
	}

	content := []anthropic.ContentBlockParamUnion{
		anthropic.NewTextBlock(req.Prompt),
	}
	if req.FilePath != "" {
		if mediaType := imageMediaType(req.FileName); mediaType != "" {
			data, err := os.ReadFile(req.FilePath)
			if err != nil {
				return "", fmt.Errorf("read attachment: %w", err)
			}
			content = append(content, anthropic.NewImageBlockBase64(mediaType, base64.StdEncoding.EncodeToString(data)))
		}
	}

	msg, err := r.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropicModel,
		MaxTokens: anthropicMaxTokens,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(content...),
		},
	})
	if err != nil {
		return "", fmt.Errorf("messages: %w", err)
	}
	if len(msg.Content) == 0 {
		return "", emptyResponseErr(r.Name())
	}

	return msg.Content[0].Text, nil
}
