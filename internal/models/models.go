package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Collection names used on the change feed.
const (
	CollectionParties        = "parties"
	CollectionPartyMessages  = "partyMessages"
	CollectionNotifications  = "notifications"
	CollectionFriendRequests = "friendRequests"
	CollectionFriendships    = "friendships"
	CollectionUsers          = "users"
)

const (
	SystemJoin    = "join"
	SystemLeave   = "leave"
	SystemPromote = "promote"
	SystemKick    = "kick"

	SystemDisplayName = "System"
)

const (
	NotificationFriendRequest    = "friend_request"
	NotificationPartyInvite      = "party_invite"
	NotificationPartyKick        = "party_kick"
	NotificationFriendAccepted   = "friend_accepted"
	NotificationPartyJoinRequest = "party_join_request"
)

const (
	RequestPending  = "pending"
	RequestAccepted = "accepted"
	RequestDeclined = "declined"
)

const (
	StatusOnline  = "online"
	StatusAway    = "away"
	StatusBusy    = "busy"
	StatusOffline = "offline"

	AppearanceOnline  = "online"
	AppearanceDND     = "dnd"
	AppearanceOffline = "offline"
)

type Party struct {
	bun.BaseModel `bun:"table:parties,alias:p"`

	ID        uuid.UUID `bun:"id,pk,type:text"            json:"id"`
	LeaderID  uuid.UUID `bun:"leader_id,notnull,type:text" json:"leader_id"`
	Version   int64     `bun:"version,notnull"             json:"version"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull" json:"updated_at"`

	Members   []PartyMember `bun:"rel:has-many,join:id=party_id" json:"members,omitempty"`
	MemberIDs []uuid.UUID   `bun:"-"                             json:"member_ids"`
}

// HasMember reports whether userID is in the loaded member list.
func (p *Party) HasMember(userID uuid.UUID) bool {
	for _, id := range p.MemberIDs {
		if id == userID {
			return true
		}
	}
	return false
}

type PartyMember struct {
	bun.BaseModel `bun:"table:party_members,alias:pm"`

	PartyID   uuid.UUID `bun:"party_id,notnull,type:text"   json:"party_id"`
	AccountID uuid.UUID `bun:"account_id,notnull,type:text"  json:"account_id"`
	JoinedAt  time.Time `bun:"joined_at,nullzero,notnull"    json:"joined_at"`
}

// PartyMessage is a chat line. UserID is null for system messages.
type PartyMessage struct {
	bun.BaseModel `bun:"table:party_messages,alias:msg"`

	ID                uuid.UUID     `bun:"id,pk,type:text"                json:"id"`
	PartyID           uuid.UUID     `bun:"party_id,notnull,type:text"      json:"party_id"`
	UserID            uuid.NullUUID `bun:"user_id,type:text"               json:"user_id"`
	DisplayName       string        `bun:"display_name,notnull"            json:"display_name"`
	Message           string        `bun:"message,notnull"                 json:"message"`
	IsSystemMessage   bool          `bun:"is_system_message,notnull"       json:"is_system_message"`
	SystemMessageType string        `bun:"system_message_type,nullzero"    json:"system_message_type,omitempty"`
	CreatedAt         time.Time     `bun:"created_at,nullzero,notnull"     json:"created_at"`
}

type Notification struct {
	bun.BaseModel `bun:"table:notifications,alias:n"`

	ID                  uuid.UUID     `bun:"id,pk,type:text"                json:"id"`
	UserID              uuid.UUID     `bun:"user_id,notnull,type:text"       json:"user_id"`
	Type                string        `bun:"type,notnull"                    json:"type"`
	FromUserID          uuid.NullUUID `bun:"from_user_id,type:text"          json:"from_user_id"`
	FromUserDisplayName string        `bun:"from_user_display_name,nullzero" json:"from_user_display_name,omitempty"`
	FromUserPhotoURL    string        `bun:"from_user_photo_url,nullzero"    json:"from_user_photo_url,omitempty"`
	PartyID             uuid.NullUUID `bun:"party_id,type:text"              json:"party_id"`
	Message             string        `bun:"message,notnull"                 json:"message"`
	Read                bool          `bun:"read,notnull"                    json:"read"`
	CreatedAt           time.Time     `bun:"created_at,nullzero,notnull"     json:"created_at"`
}

type FriendRequest struct {
	bun.BaseModel `bun:"table:friend_requests,alias:fr"`

	ID         uuid.UUID `bun:"id,pk,type:text"               json:"id"`
	FromUserID uuid.UUID `bun:"from_user_id,notnull,type:text" json:"from_user_id"`
	ToUserID   uuid.UUID `bun:"to_user_id,notnull,type:text"   json:"to_user_id"`
	Status     string    `bun:"status,notnull"                 json:"status"`
	CreatedAt  time.Time `bun:"created_at,nullzero,notnull"    json:"created_at"`
}

// Friendship is one direction of a friend pair; accepting a request writes two.
type Friendship struct {
	bun.BaseModel `bun:"table:friendships,alias:fs"`

	ID        uuid.UUID `bun:"id,pk,type:text"            json:"id"`
	UserID    uuid.UUID `bun:"user_id,notnull,type:text"   json:"user_id"`
	FriendID  uuid.UUID `bun:"friend_id,notnull,type:text" json:"friend_id"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull" json:"created_at"`
}

type UserSettings struct {
	AllowPartyInvites   bool   `bun:"allow_party_invites,notnull"   json:"allow_party_invites"`
	AllowFriendRequests bool   `bun:"allow_friend_requests,notnull" json:"allow_friend_requests"`
	AppearanceStatus    string `bun:"appearance_status,notnull"     json:"appearance_status"`
}

// User is synced from the identity provider. IsAdmin is only ever written by
// the internal sync endpoint.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID              uuid.UUID    `bun:"id,pk,type:text"              json:"id"`
	Username        string       `bun:"username,notnull,unique"       json:"username"`
	DisplayName     string       `bun:"display_name,notnull"          json:"display_name"`
	PhotoURL        string       `bun:"photo_url,nullzero"            json:"photo_url,omitempty"`
	Status          string       `bun:"status,notnull"                json:"status"`
	CurrentActivity string       `bun:"current_activity,nullzero"     json:"current_activity,omitempty"`
	IsAdmin         bool         `bun:"is_admin,notnull"              json:"is_admin"`
	Settings        UserSettings `bun:"embed:settings_"               json:"settings"`
	LastActive      time.Time    `bun:"last_active,nullzero"          json:"last_active"`
	CreatedAt       time.Time    `bun:"created_at,nullzero,notnull"   json:"created_at"`
	UpdatedAt       time.Time    `bun:"updated_at,nullzero,notnull"   json:"updated_at"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
