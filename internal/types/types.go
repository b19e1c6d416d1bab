package types

import (
	"time"
)

// AIUserID is the sentinel user id recorded on AI-authored messages.
const AIUserID = -1

type User struct {
	Id           int       `json:"id"`
	TenantId     string    `json:"tenant_id"`
	DisplayName  string    `json:"display_name"`
	EmailAddress string    `json:"email_address,omitempty"`
	PhoneNumber  string    `json:"phone_number,omitempty"`
	Role         string    `json:"role,omitempty"`
	IsVerified   bool      `json:"is_verified"`
	Password     string    `json:"-"`
	CreatedAt    time.Time `json:"created_at,omitempty"`
	UpdatedAt    time.Time `json:"updated_at,omitempty"`
}

type Tenant struct {
	Id          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Type        string `json:"type,omitempty"`
	MaxUsers    int    `json:"max_users,omitempty"`
	AIEnabled   bool   `json:"ai_enabled"`
}

type Channel struct {
	Id          int       `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	IsPrivate   bool      `json:"is_private"`
	IsActive    bool      `json:"is_active"`
	MaxMembers  int       `json:"max_members,omitempty"`
	CreatedBy   int       `json:"created_by"`
	MemberCount int       `json:"member_count,omitempty"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
	UpdatedAt   time.Time `json:"updated_at,omitempty"`
}

type ChannelMember struct {
	UserId   int       `json:"user_id"`
	Role     string    `json:"role"`
	JoinedAt time.Time `json:"joined_at"`
}

// ChannelMessage is one unit of channel content. A user message and its AI
// reply are always two separate rows, linked only by channel and time.
type ChannelMessage struct {
	Id          int         `json:"id"`
	ChannelId   int         `json:"channel_id"`
	UserId      int         `json:"user_id"`
	Message     string      `json:"message"`
	Response    *string     `json:"response"`
	Provider    *string     `json:"provider"`
	MessageType string      `json:"message_type"`
	CreatedAt   time.Time   `json:"created_at"`
	IsArchived  bool        `json:"is_archived,omitempty"`
	Attachment  *Attachment `json:"attachment,omitempty"`
}

type Attachment struct {
	Id       string `json:"id"`
	FileUrl  string `json:"file_url"`
	FileName string `json:"file_name"`
	FileType string `json:"file_type"`
}

// AuthContext identifies the caller after token verification.
type AuthContext struct {
	UserID      int
	TenantID    string
	DisplayName string
	Role        string
}

const (
	MessageTypeUser   = "user"
	MessageTypeAI     = "ai"
	MessageTypeSystem = "system"
)

const (
	RoleMember    = "member"
	RoleAdmin     = "admin"
	RoleSuperUser = "superuser"
)
