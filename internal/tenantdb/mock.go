package tenantdb

import (
	"time"

	"github.com/hivechat/hivechat/internal/types"
	"github.com/stretchr/testify/mock"
)

type MockMessageStore struct {
	mock.Mock
}

func (m *MockMessageStore) CreateMessage(msg types.ChannelMessage) (types.ChannelMessage, error) {
	args := m.Called(msg)
	return args.Get(0).(types.ChannelMessage), args.Error(1)
}
func (m *MockMessageStore) GetMessages(channelId, skip, limit, daysBack int) ([]types.ChannelMessage, error) {
	args := m.Called(channelId, skip, limit, daysBack)
	return args.Get(0).([]types.ChannelMessage), args.Error(1)
}
func (m *MockMessageStore) GetAllMessages(channelId, skip, limit int) ([]types.ChannelMessage, error) {
	args := m.Called(channelId, skip, limit)
	return args.Get(0).([]types.ChannelMessage), args.Error(1)
}
func (m *MockMessageStore) ListSince(channelId int, since time.Time) ([]types.ChannelMessage, error) {
	args := m.Called(channelId, since)
	return args.Get(0).([]types.ChannelMessage), args.Error(1)
}
func (m *MockMessageStore) ArchiveOlderThan(days int) (int64, error) {
	args := m.Called(days)
	return args.Get(0).(int64), args.Error(1)
}
