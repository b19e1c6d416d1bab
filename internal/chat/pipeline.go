package chat

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/hivechat/hivechat/internal/ai"
	"github.com/hivechat/hivechat/internal/blob"
	"github.com/hivechat/hivechat/internal/stats"
	"github.com/hivechat/hivechat/internal/tenantdb"
	"github.com/hivechat/hivechat/internal/types"
)

// fallbackReply is persisted when every generation attempt fails, so the
// conversation still records that the assistant was asked.
const fallbackReply = "I apologize, but I'm having trouble generating a response right now. Please try again later."

// historyLimit caps how many of today's messages are replayed into the
// responder prompt.
const historyLimit = 50

// ErrEmptyMessage is returned for messages with no text and no attachment.
// Callers treat it as client error; anything else from PostMessage is a
// server-side failure.
var ErrEmptyMessage = errors.New("message cannot be empty")

// Broadcaster fans a stored message out to a channel's connections,
// excluding the author's own connections.
type Broadcaster interface {
	BroadcastNewMessage(channelId int, msg *types.ChannelMessage, excludeUserId int)
}

// StoreProvider resolves the message store for a tenant.
type StoreProvider interface {
	For(tenantId string) (tenantdb.MessageStore, error)
}

// Pipeline persists channel messages and drives the assistant reply cycle.
type Pipeline struct {
	log       *log.Logger
	stores    StoreProvider
	responder ai.Responder
	bcast     Broadcaster
	stats     stats.StatsProvider
	aiEnabled bool
}

func NewPipeline(logger *log.Logger, stores StoreProvider, responder ai.Responder, bcast Broadcaster, sp stats.StatsProvider, aiEnabled bool) *Pipeline {
	return &Pipeline{
		log:       logger,
		stores:    stores,
		responder: responder,
		bcast:     bcast,
		stats:     sp,
		aiEnabled: aiEnabled,
	}
}

// PostMessageParams carries one user message through the pipeline.
type PostMessageParams struct {
	TenantId    string
	ChannelId   int
	UserId      int
	DisplayName string
	Content     string
	AIEnabled   bool
	File        *blob.SavedFile
}

// PostMessage stores the user's message, generates and stores the assistant
// reply when the tenant has the assistant enabled, and broadcasts both to
// the channel. The author's own connections are excluded; the returned slice
// is their copy. A failed assistant reply never fails the user's message.
func (p *Pipeline) PostMessage(ctx context.Context, params PostMessageParams) ([]*types.ChannelMessage, error) {
	content := strings.TrimSpace(params.Content)
	if content == "" && params.File == nil {
		return nil, ErrEmptyMessage
	}

	store, err := p.stores.For(params.TenantId)
	if err != nil {
		return nil, err
	}

	userMsg := types.ChannelMessage{
		ChannelId:   params.ChannelId,
		UserId:      params.UserId,
		Message:     content,
		MessageType: types.MessageTypeUser,
	}
	if params.File != nil {
		userMsg.Attachment = &types.Attachment{
			FileUrl:  params.File.URL,
			FileName: params.File.Name,
			FileType: params.File.Type,
		}
		if content == "" {
			userMsg.Message = fmt.Sprintf("Shared a file: %s", params.File.Name)
		}
	}

	userMsg, err = store.CreateMessage(userMsg)
	if err != nil {
		return nil, fmt.Errorf("save message: %w", err)
	}
	p.stats.Incr(stats.MessagesCreated)

	messages := []*types.ChannelMessage{&userMsg}

	if p.aiEnabled && params.AIEnabled && p.responder != nil {
		if aiMsg := p.respond(ctx, store, params, content); aiMsg != nil {
			messages = append(messages, aiMsg)
		}
	}

	for _, msg := range messages {
		p.bcast.BroadcastNewMessage(params.ChannelId, msg, params.UserId)
	}

	return messages, nil
}

// respond generates and persists the assistant reply. Returns nil only when
// the reply could not be persisted; generation failures fall back to a
// canned apology so the exchange is still recorded.
func (p *Pipeline) respond(ctx context.Context, store tenantdb.MessageStore, params PostMessageParams, content string) *types.ChannelMessage {
	var req ai.Request
	if params.File != nil {
		req = ai.Request{
			Prompt:   analysisPrompt(params.File.Type, content),
			FilePath: params.File.Path,
			FileName: params.File.Name,
		}
	} else {
		req = ai.Request{Prompt: p.buildPrompt(store, params.ChannelId, content)}
	}

	reply, err := p.responder.Generate(ctx, req)
	if err != nil {
		p.log.Printf("ai response failed for channel %d: %s", params.ChannelId, err)
		reply = fallbackReply
	}

	provider := p.responder.Name()
	aiMsg := types.ChannelMessage{
		ChannelId:   params.ChannelId,
		UserId:      types.AIUserID,
		Message:     reply,
		Provider:    &provider,
		MessageType: types.MessageTypeAI,
	}

	aiMsg, err = store.CreateMessage(aiMsg)
	if err != nil {
		p.log.Printf("save ai response for channel %d: %s", params.ChannelId, err)
		return nil
	}

	p.stats.Incr(stats.AIResponses)
	return &aiMsg
}

// buildPrompt prefixes the new message with today's conversation so the
// responder sees the ongoing exchange in order.
func (p *Pipeline) buildPrompt(store tenantdb.MessageStore, channelId int, content string) string {
	startOfDay := time.Now().UTC().Truncate(24 * time.Hour)
	history, err := store.ListSince(channelId, startOfDay)
	if err != nil {
		p.log.Printf("load conversation history for channel %d: %s", channelId, err)
		return content
	}

	if len(history) > historyLimit {
		history = history[len(history)-historyLimit:]
	}

	var b strings.Builder
	for _, msg := range history {
		if msg.MessageType == types.MessageTypeAI {
			b.WriteString("Assistant: ")
		} else {
			b.WriteString("User: ")
		}
		b.WriteString(msg.Message)
		b.WriteString("\n")
	}
	b.WriteString("User: ")
	b.WriteString(content)

	return b.String()
}

// analysisPrompt picks the instruction for an uploaded file by its type.
func analysisPrompt(fileType, caption string) string {
	var prompt string
	switch fileType {
	case "jpg", "jpeg", "png", "gif", "webp":
		prompt = "Please analyze this image and describe what you see."
	case "pdf", "doc", "docx", "txt", "md":
		prompt = "Please summarize the key points of this document."
	case "csv", "xls", "xlsx":
		prompt = "Please analyze this data file and describe any notable patterns."
	default:
		prompt = "Please describe this file and what it might be used for."
	}

	if caption != "" {
		prompt = fmt.Sprintf("%s\n\nThe user added: %s", prompt, caption)
	}

	return prompt
}
