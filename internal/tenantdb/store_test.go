package tenantdb

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/hivechat/hivechat/internal/types"
	"github.com/stretchr/testify/assert"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(filepath.Join(t.TempDir(), "tenant.db"))
	assert.NoError(t, err)
	t.Cleanup(func() {
		store.Close()
	})

	return store
}

func TestCreateMessage(t *testing.T) {
	store := newTestStore(t)

	provider := "openai"
	msg, err := store.CreateMessage(types.ChannelMessage{
		ChannelId:   1,
		UserId:      5,
		Message:     "hello",
		Provider:    &provider,
		MessageType: types.MessageTypeUser,
	})

	assert.NoError(t, err)
	assert.NotZero(t, msg.Id, "expected an assigned id")
	assert.False(t, msg.CreatedAt.IsZero(), "expected a created timestamp")

	second, err := store.CreateMessage(types.ChannelMessage{
		ChannelId:   1,
		UserId:      types.AIUserID,
		Message:     "hi",
		MessageType: types.MessageTypeAI,
	})
	assert.NoError(t, err)
	assert.Greater(t, second.Id, msg.Id, "ids should be monotonically increasing")
}

func TestCreateMessage_withAttachment(t *testing.T) {
	store := newTestStore(t)

	msg, err := store.CreateMessage(types.ChannelMessage{
		ChannelId:   1,
		UserId:      5,
		Message:     "Shared a file: cat.png",
		MessageType: types.MessageTypeUser,
		Attachment: &types.Attachment{
			FileUrl:  "/uploads/channels/1/abc.png",
			FileName: "cat.png",
			FileType: "png",
		},
	})
	assert.NoError(t, err)

	messages, err := store.GetAllMessages(1, 0, 10)
	assert.NoError(t, err)
	assert.Len(t, messages, 1)
	assert.NotNil(t, messages[0].Attachment)
	assert.Equal(t, "/uploads/channels/1/abc.png", messages[0].Attachment.FileUrl)
	assert.Equal(t, "cat.png", messages[0].Attachment.FileName)
	assert.Equal(t, "png", messages[0].Attachment.FileType)
	assert.NotZero(t, msg.Id)
}

func TestGetMessages(t *testing.T) {
	store := newTestStore(t)

	now := time.Now().UTC()
	for i, age := range []time.Duration{0, time.Hour, 30 * 24 * time.Hour} {
		_, err := store.CreateMessage(types.ChannelMessage{
			ChannelId:   1,
			UserId:      5,
			Message:     "msg",
			MessageType: types.MessageTypeUser,
			CreatedAt:   now.Add(-age),
		})
		if err != nil {
			t.Fatalf("create message %d: %v", i, err)
		}
	}
	// another channel's message must never leak in
	_, err := store.CreateMessage(types.ChannelMessage{
		ChannelId:   2,
		UserId:      5,
		Message:     "other channel",
		MessageType: types.MessageTypeUser,
	})
	assert.NoError(t, err)

	messages, err := store.GetMessages(1, 0, 10, 7)
	assert.NoError(t, err)
	assert.Lenf(t, messages, 2, "expected only messages within the window, got %d", len(messages))
	for _, msg := range messages {
		assert.Equal(t, 1, msg.ChannelId)
	}

	// newest first
	assert.True(t, messages[0].CreatedAt.After(messages[1].CreatedAt) || messages[0].CreatedAt.Equal(messages[1].CreatedAt))
}

func TestListSince(t *testing.T) {
	store := newTestStore(t)

	now := time.Now().UTC()
	for _, m := range []struct {
		text string
		age  time.Duration
	}{
		{"oldest", 3 * time.Hour},
		{"middle", 2 * time.Hour},
		{"newest", time.Hour},
		{"yesterday", 30 * time.Hour},
	} {
		_, err := store.CreateMessage(types.ChannelMessage{
			ChannelId:   1,
			UserId:      5,
			Message:     m.text,
			MessageType: types.MessageTypeUser,
			CreatedAt:   now.Add(-m.age),
		})
		assert.NoError(t, err)
	}

	messages, err := store.ListSince(1, now.Add(-4*time.Hour))
	assert.NoError(t, err)
	assert.Len(t, messages, 3)
	assert.Equal(t, "oldest", messages[0].Message, "expected chronological order")
	assert.Equal(t, "middle", messages[1].Message)
	assert.Equal(t, "newest", messages[2].Message)
}

func TestArchiveOlderThan(t *testing.T) {
	store := newTestStore(t)

	now := time.Now().UTC()
	for _, age := range []time.Duration{time.Hour, 10 * 24 * time.Hour, 20 * 24 * time.Hour} {
		_, err := store.CreateMessage(types.ChannelMessage{
			ChannelId:   1,
			UserId:      5,
			Message:     "msg",
			MessageType: types.MessageTypeUser,
			CreatedAt:   now.Add(-age),
		})
		assert.NoError(t, err)
	}

	archived, err := store.ArchiveOlderThan(7)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), archived)

	// a second sweep only touches rows not yet flagged
	archived, err = store.ArchiveOlderThan(7)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), archived)

	recent, err := store.GetMessages(1, 0, 10, 30)
	assert.NoError(t, err)
	assert.Lenf(t, recent, 1, "archived rows should be hidden from the default view")

	all, err := store.GetAllMessages(1, 0, 10)
	assert.NoError(t, err)
	assert.Lenf(t, all, 3, "archival must never delete rows")
}

func TestManagerFor(t *testing.T) {
	dir := t.TempDir()
	m, err := NewManager(dir)
	assert.NoError(t, err)
	t.Cleanup(func() { m.Close() })

	s1, err := m.For("acme")
	assert.NoError(t, err)
	s2, err := m.For("acme")
	assert.NoError(t, err)
	assert.Same(t, s1, s2, "expected the same store instance per tenant")

	_, err = m.For("globex")
	assert.NoError(t, err)

	tenants, err := m.Tenants()
	assert.NoError(t, err)
	assert.ElementsMatch(t, []string{"acme", "globex"}, tenants)
}

func TestManagerFor_invalidTenantId(t *testing.T) {
	m, err := NewManager(t.TempDir())
	assert.NoError(t, err)
	t.Cleanup(func() { m.Close() })

	for _, id := range []string{"", "../escape", "a/b", `a\b`} {
		_, err := m.For(id)
		assert.Errorf(t, err, "expected tenant id %q to be rejected", id)
	}
}
