package store

import (
	"context"
	"time"

	"github.com/bananalabs-oss/lobby/internal/apperrors"
	"github.com/bananalabs-oss/lobby/internal/feed"
	"github.com/bananalabs-oss/lobby/internal/models"
	"github.com/google/uuid"
)

func (s *Store) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user := new(models.User)
	err := s.db.NewSelect().Model(user).Where("id = ?", id).Scan(ctx)
	if err != nil {
		return nil, fail(err, "store.GetUser", apperrors.ErrUserNotFound)
	}
	return user, nil
}

func (s *Store) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	user := new(models.User)
	err := s.db.NewSelect().Model(user).Where("username = ?", username).Scan(ctx)
	if err != nil {
		return nil, fail(err, "store.FindUserByUsername", apperrors.ErrUserNotFound)
	}
	return user, nil
}

// UpsertUser inserts user or refreshes its identity fields. Settings, status
// and activity of an existing user are left untouched.
func (s *Store) UpsertUser(ctx context.Context, user *models.User) error {
	_, err := s.db.NewInsert().
		Model(user).
		On("CONFLICT (id) DO UPDATE").
		Set("username = EXCLUDED.username").
		Set("display_name = EXCLUDED.display_name").
		Set("photo_url = EXCLUDED.photo_url").
		Set("is_admin = EXCLUDED.is_admin").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrUsernameTaken
		}
		return fail(err, "store.UpsertUser", nil)
	}
	s.emit(ctx, models.CollectionUsers, user.ID.String(), feed.OpUpdated)
	return nil
}

func (s *Store) UpdateUserSettings(ctx context.Context, id uuid.UUID, settings models.UserSettings) error {
	res, err := s.db.NewUpdate().
		Model((*models.User)(nil)).
		Set("settings_allow_party_invites = ?", settings.AllowPartyInvites).
		Set("settings_allow_friend_requests = ?", settings.AllowFriendRequests).
		Set("settings_appearance_status = ?", settings.AppearanceStatus).
		Set("updated_at = ?", now()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fail(err, "store.UpdateUserSettings", nil)
	}
	if affected(res) == 0 {
		return apperrors.ErrUserNotFound
	}
	s.emit(ctx, models.CollectionUsers, id.String(), feed.OpUpdated)
	return nil
}

// TouchUser records a presence heartbeat.
func (s *Store) TouchUser(ctx context.Context, id uuid.UUID, status, activity string, at time.Time) error {
	res, err := s.db.NewUpdate().
		Model((*models.User)(nil)).
		Set("status = ?", status).
		Set("current_activity = ?", activity).
		Set("last_active = ?", at).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fail(err, "store.TouchUser", nil)
	}
	if affected(res) == 0 {
		return apperrors.ErrUserNotFound
	}
	s.emit(ctx, models.CollectionUsers, id.String(), feed.OpUpdated)
	return nil
}
