// Package users mirrors identity-provider profiles into the lobby and owns
// the player-editable parts of a user document: settings and presence.
package users

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bananalabs-oss/lobby/internal/apperrors"
	"github.com/bananalabs-oss/lobby/internal/models"
	"github.com/bananalabs-oss/lobby/internal/store"
	"github.com/google/uuid"
)

// OfflineAfter is how long a user stays visible without a heartbeat.
const OfflineAfter = 2 * time.Minute

// Profile is what the identity provider knows about a user.
type Profile struct {
	ID          uuid.UUID `json:"-"`
	Username    string    `json:"username"     binding:"required"`
	DisplayName string    `json:"display_name" binding:"required"`
	PhotoURL    string    `json:"photo_url"`
	IsAdmin     bool      `json:"is_admin"`
}

// SettingsUpdate carries the settings a player wants to change; nil fields
// are left alone.
type SettingsUpdate struct {
	AllowPartyInvites   *bool   `json:"allow_party_invites"`
	AllowFriendRequests *bool   `json:"allow_friend_requests"`
	AppearanceStatus    *string `json:"appearance_status"`
}

type Service struct {
	store *store.Store
	now   func() time.Time
}

func NewService(st *store.Store) *Service {
	return &Service{store: st, now: func() time.Time { return time.Now().UTC() }}
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.store.GetUser(ctx, id)
}

// Sync creates or refreshes a user from the identity provider. New users
// start online with invites and friend requests allowed.
func (s *Service) Sync(ctx context.Context, p Profile) (*models.User, error) {
	username := strings.ToLower(strings.TrimSpace(p.Username))
	if n := utf8.RuneCountInString(username); n < 3 || n > 20 {
		return nil, apperrors.ErrInvalidUsername
	}
	displayName := strings.TrimSpace(p.DisplayName)
	if n := utf8.RuneCountInString(displayName); n < 1 || n > 30 {
		return nil, apperrors.ErrInvalidDisplayName
	}

	ts := s.now()
	user := &models.User{
		ID:          p.ID,
		Username:    username,
		DisplayName: displayName,
		PhotoURL:    p.PhotoURL,
		Status:      models.StatusOnline,
		IsAdmin:     p.IsAdmin,
		Settings: models.UserSettings{
			AllowPartyInvites:   true,
			AllowFriendRequests: true,
			AppearanceStatus:    models.AppearanceOnline,
		},
		LastActive: ts,
		CreatedAt:  ts,
		UpdatedAt:  ts,
	}
	if err := s.store.UpsertUser(ctx, user); err != nil {
		return nil, err
	}
	return s.store.GetUser(ctx, p.ID)
}

func validAppearance(status string) bool {
	switch status {
	case models.AppearanceOnline, models.AppearanceDND, models.AppearanceOffline:
		return true
	}
	return false
}

func (s *Service) UpdateSettings(ctx context.Context, id uuid.UUID, update SettingsUpdate) (*models.User, error) {
	user, err := s.store.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	settings := user.Settings
	if update.AllowPartyInvites != nil {
		settings.AllowPartyInvites = *update.AllowPartyInvites
	}
	if update.AllowFriendRequests != nil {
		settings.AllowFriendRequests = *update.AllowFriendRequests
	}
	if update.AppearanceStatus != nil {
		if !validAppearance(*update.AppearanceStatus) {
			return nil, apperrors.ErrInvalidAppearance
		}
		settings.AppearanceStatus = *update.AppearanceStatus
	}

	if err := s.store.UpdateUserSettings(ctx, id, settings); err != nil {
		return nil, err
	}
	user.Settings = settings
	return user, nil
}

// Heartbeat records that the user is around and what they are doing.
func (s *Service) Heartbeat(ctx context.Context, id uuid.UUID, status, activity string) error {
	if status == "" {
		status = models.StatusOnline
	}
	switch status {
	case models.StatusOnline, models.StatusAway, models.StatusBusy, models.StatusOffline:
	default:
		return apperrors.ErrInvalidStatus
	}
	return s.store.TouchUser(ctx, id, status, activity, s.now())
}

// DisplayStatus is what other players see: offline once the user signed off
// or went quiet for OfflineAfter, otherwise their chosen appearance.
func DisplayStatus(user *models.User, now time.Time) string {
	if user.Status == models.StatusOffline {
		return models.AppearanceOffline
	}
	if user.LastActive.IsZero() || now.Sub(user.LastActive) > OfflineAfter {
		return models.AppearanceOffline
	}
	if user.Settings.AppearanceStatus == "" {
		return models.AppearanceOnline
	}
	return user.Settings.AppearanceStatus
}
