package database

import "time"

type Account struct {
	Id           int
	TenantId     string
	DisplayName  string
	EmailAddress string
	PhoneNumber  string
	PasswordHash string
	Role         string
	IsVerified   bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Tenant struct {
	Id          string
	Name        string
	Description string
	TenantType  string
	MaxUsers    int
	AIEnabled   bool
	CreatedAt   time.Time
}

type Channel struct {
	Id          int
	TenantId    string
	Name        string
	Description string
	IsPrivate   bool
	IsActive    bool
	MaxMembers  int
	CreatedBy   int
	MemberCount int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type ChannelMember struct {
	ChannelId int
	UserId    int
	Role      string
	JoinedAt  time.Time
}

type OTPCode struct {
	Id        int
	AccountId int
	CodeHash  string
	Transport string
	ExpiresAt time.Time
	Consumed  bool
	CreatedAt time.Time
}

type CreateAccountParams struct {
	TenantId     string
	DisplayName  string
	EmailAddress string
	PhoneNumber  string
	PasswordHash string
	Role         string
}

type UpdateAccountParams struct {
	UserId       int
	DisplayName  string
	PasswordHash string
}

type CreateChannelParams struct {
	TenantId    string
	Name        string
	Description string
	IsPrivate   bool
	MaxMembers  int
	CreatedBy   int
}

type UpdateChannelParams struct {
	ChannelId   int
	Name        string
	Description string
	IsPrivate   bool
}

type CreateOTPParams struct {
	AccountId int
	CodeHash  string
	Transport string
	ExpiresAt time.Time
}
