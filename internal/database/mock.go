package database

import (
	"github.com/stretchr/testify/mock"
)

type MockMasterRepository struct {
	mock.Mock
}

func (m *MockMasterRepository) Ping() error {
	args := m.Called()
	return args.Error(0)
}
func (m *MockMasterRepository) CreateAccount(params CreateAccountParams) (Account, error) {
	args := m.Called(params)
	return args.Get(0).(Account), args.Error(1)
}
func (m *MockMasterRepository) UpdateAccount(params UpdateAccountParams) (Account, error) {
	args := m.Called(params)
	return args.Get(0).(Account), args.Error(1)
}
func (m *MockMasterRepository) GetAccountById(accountId int) (Account, error) {
	args := m.Called(accountId)
	return args.Get(0).(Account), args.Error(1)
}
func (m *MockMasterRepository) GetAccountByEmail(tenantId, email string) (Account, error) {
	args := m.Called(tenantId, email)
	return args.Get(0).(Account), args.Error(1)
}
func (m *MockMasterRepository) MarkAccountVerified(accountId int) error {
	args := m.Called(accountId)
	return args.Error(0)
}
func (m *MockMasterRepository) ListTenants() ([]Tenant, error) {
	args := m.Called()
	return args.Get(0).([]Tenant), args.Error(1)
}
func (m *MockMasterRepository) GetTenantById(tenantId string) (Tenant, error) {
	args := m.Called(tenantId)
	return args.Get(0).(Tenant), args.Error(1)
}
func (m *MockMasterRepository) CreateChannel(params CreateChannelParams) (Channel, error) {
	args := m.Called(params)
	return args.Get(0).(Channel), args.Error(1)
}
func (m *MockMasterRepository) GetChannel(channelId int) (Channel, error) {
	args := m.Called(channelId)
	return args.Get(0).(Channel), args.Error(1)
}
func (m *MockMasterRepository) ListChannels(tenantId string, userId int, includePrivate bool) ([]Channel, error) {
	args := m.Called(tenantId, userId, includePrivate)
	return args.Get(0).([]Channel), args.Error(1)
}
func (m *MockMasterRepository) UpdateChannel(params UpdateChannelParams) (Channel, error) {
	args := m.Called(params)
	return args.Get(0).(Channel), args.Error(1)
}
func (m *MockMasterRepository) DeleteChannel(channelId int) error {
	args := m.Called(channelId)
	return args.Error(0)
}
func (m *MockMasterRepository) AddChannelMember(channelId, userId int, role string) error {
	args := m.Called(channelId, userId, role)
	return args.Error(0)
}
func (m *MockMasterRepository) RemoveChannelMember(channelId, userId int) error {
	args := m.Called(channelId, userId)
	return args.Error(0)
}
func (m *MockMasterRepository) UpdateMemberRole(channelId, userId int, role string) error {
	args := m.Called(channelId, userId, role)
	return args.Error(0)
}
func (m *MockMasterRepository) ListChannelMembers(channelId int) ([]ChannelMember, error) {
	args := m.Called(channelId)
	return args.Get(0).([]ChannelMember), args.Error(1)
}
func (m *MockMasterRepository) IsChannelMember(channelId, userId int) bool {
	args := m.Called(channelId, userId)
	return args.Bool(0)
}
func (m *MockMasterRepository) CreateOTP(params CreateOTPParams) (OTPCode, error) {
	args := m.Called(params)
	return args.Get(0).(OTPCode), args.Error(1)
}
func (m *MockMasterRepository) GetActiveOTP(accountId int) (OTPCode, error) {
	args := m.Called(accountId)
	return args.Get(0).(OTPCode), args.Error(1)
}
func (m *MockMasterRepository) ConsumeOTP(otpId int) error {
	args := m.Called(otpId)
	return args.Error(0)
}
