package database

// MasterRepository is the system database shared by all tenants: accounts,
// tenant definitions, channel metadata and membership, and OTP codes.
// Per-tenant message content lives in the tenantdb package instead.
type MasterRepository interface {
	Ping() error

	CreateAccount(params CreateAccountParams) (Account, error)
	UpdateAccount(params UpdateAccountParams) (Account, error)
	GetAccountById(accountId int) (Account, error)
	GetAccountByEmail(tenantId, email string) (Account, error)
	MarkAccountVerified(accountId int) error

	ListTenants() ([]Tenant, error)
	GetTenantById(tenantId string) (Tenant, error)

	CreateChannel(params CreateChannelParams) (Channel, error)
	GetChannel(channelId int) (Channel, error)
	ListChannels(tenantId string, userId int, includePrivate bool) ([]Channel, error)
	UpdateChannel(params UpdateChannelParams) (Channel, error)
	DeleteChannel(channelId int) error

	AddChannelMember(channelId, userId int, role string) error
	RemoveChannelMember(channelId, userId int) error
	UpdateMemberRole(channelId, userId int, role string) error
	ListChannelMembers(channelId int) ([]ChannelMember, error)
	IsChannelMember(channelId, userId int) bool

	CreateOTP(params CreateOTPParams) (OTPCode, error)
	GetActiveOTP(accountId int) (OTPCode, error)
	ConsumeOTP(otpId int) error
}
