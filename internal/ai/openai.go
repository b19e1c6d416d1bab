package ai

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"os"

	openai "github.com/sashabaranov/go-openai"
)

const (
	openaiModel       = openai.GPT4o
	openaiTemperature = 0.7
	openaiMaxTokens   = 1000
)

// OpenAIResponder generates replies through the OpenAI chat completions API.
// Image attachments are sent inline as data URLs.
type OpenAIResponder struct {
	client *openai.Client
	apiKey string
	logger *log.Logger
}

func NewOpenAIResponder(apiKey string, logger *log.Logger) *OpenAIResponder {
	r := &OpenAIResponder{
		apiKey: apiKey,
		logger: logger,
	}
	if apiKey != "" {
		r.client = openai.NewClient(apiKey)
	}
	return r
}

func (r *OpenAIResponder) Name() string {
	return "openai"
}

func (r *OpenAIResponder) Generate(ctx context.Context, req Request) (string, error) {
	return withRetry(ctx, r.logger, r.Name(), func(ctx context.Context) (string, error) {
		return r.generate(ctx, req)
	})
}

func (r *OpenAIResponder) generate(ctx context.Context, req Request) (string, error) {
	if r.client == nil {
		return "", fmt.Errorf("%w: OPENAI_API_KEY is not set", ErrNotConfigured)
	}

	userMsg := openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Prompt,
	}
	if req.FilePath != "" {
		if mediaType := imageMediaType(req.FileName); mediaType != "" {
			data, err := os.ReadFile(req.FilePath)
			if err != nil {
				return "", fmt.Errorf("read attachment: %w", err)
			}
			userMsg.Content = ""
			userMsg.MultiContent = []openai.ChatMessagePart{
				{
					Type: openai.ChatMessagePartTypeText,
					Text: req.Prompt,
				},
				{
					Type: openai.ChatMessagePartTypeImageURL,
					ImageURL: &openai.ChatMessageImageURL{
						URL: fmt.Sprintf("data:%s;base64,%s", mediaType, base64.StdEncoding.EncodeToString(data)),
					},
				},
			}
		}
	}

	resp, err := r.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       openaiModel,
		Temperature: openaiTemperature,
		MaxTokens:   openaiMaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemPrompt,
			},
			userMsg,
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", emptyResponseErr(r.Name())
	}

	return resp.Choices[0].Message.Content, nil
}
