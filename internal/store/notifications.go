package store

import (
	"context"
	"time"

	"github.com/bananalabs-oss/lobby/internal/apperrors"
	"github.com/bananalabs-oss/lobby/internal/feed"
	"github.com/bananalabs-oss/lobby/internal/models"
	"github.com/google/uuid"
)

const notificationPageSize = 100

func (s *Store) AddNotification(ctx context.Context, n *models.Notification) error {
	if n.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return fail(err, "store.AddNotification.NewID", nil)
		}
		n.ID = id
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = now()
	}

	if _, err := s.db.NewInsert().Model(n).Exec(ctx); err != nil {
		return fail(err, "store.AddNotification", nil)
	}
	s.emit(ctx, models.CollectionNotifications, n.ID.String(), feed.OpAdded)
	return nil
}

func (s *Store) GetNotification(ctx context.Context, id uuid.UUID) (*models.Notification, error) {
	n := new(models.Notification)
	err := s.db.NewSelect().Model(n).Where("id = ?", id).Scan(ctx)
	if err != nil {
		return nil, fail(err, "store.GetNotification", apperrors.ErrNotificationNotFound)
	}
	return n, nil
}

// ListNotifications returns a recipient's notifications, newest first.
func (s *Store) ListNotifications(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]models.Notification, error) {
	var list []models.Notification
	q := s.db.NewSelect().
		Model(&list).
		Where("user_id = ?", userID)
	if unreadOnly {
		q = q.Where("read = ?", false)
	}
	err := q.OrderExpr("created_at DESC, id DESC").
		Limit(notificationPageSize).
		Scan(ctx)
	if err != nil {
		return nil, fail(err, "store.ListNotifications", nil)
	}
	return list, nil
}

func (s *Store) MarkNotificationRead(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.NewUpdate().
		Model((*models.Notification)(nil)).
		Set("read = ?", true).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fail(err, "store.MarkNotificationRead", nil)
	}
	if affected(res) > 0 {
		s.emit(ctx, models.CollectionNotifications, id.String(), feed.OpUpdated)
	}
	return nil
}

// DeleteReadNotificationsBefore garbage-collects read notifications created
// before cutoff. Unread notifications are never collected.
func (s *Store) DeleteReadNotificationsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.NewDelete().
		Model((*models.Notification)(nil)).
		Where("read = ?", true).
		Where("created_at < ?", cutoff).
		Exec(ctx)
	if err != nil {
		return 0, fail(err, "store.DeleteReadNotificationsBefore", nil)
	}

	n := affected(res)
	if n > 0 {
		s.emit(ctx, models.CollectionNotifications, "", feed.OpDeleted)
	}
	return n, nil
}
