package store

import (
	"context"
	"time"

	"github.com/bananalabs-oss/lobby/internal/apperrors"
	"github.com/bananalabs-oss/lobby/internal/feed"
	"github.com/bananalabs-oss/lobby/internal/models"
	"github.com/google/uuid"
)

func (s *Store) AddFriendRequest(ctx context.Context, from, to uuid.UUID) (*models.FriendRequest, error) {
	req := &models.FriendRequest{
		ID:         uuid.New(),
		FromUserID: from,
		ToUserID:   to,
		Status:     models.RequestPending,
		CreatedAt:  now(),
	}
	if _, err := s.db.NewInsert().Model(req).Exec(ctx); err != nil {
		return nil, fail(err, "store.AddFriendRequest", nil)
	}
	s.emit(ctx, models.CollectionFriendRequests, req.ID.String(), feed.OpAdded)
	return req, nil
}

func (s *Store) GetFriendRequest(ctx context.Context, id uuid.UUID) (*models.FriendRequest, error) {
	req := new(models.FriendRequest)
	err := s.db.NewSelect().Model(req).Where("id = ?", id).Scan(ctx)
	if err != nil {
		return nil, fail(err, "store.GetFriendRequest", apperrors.ErrRequestNotFound)
	}
	return req, nil
}

func (s *Store) HasPendingRequest(ctx context.Context, from, to uuid.UUID) (bool, error) {
	exists, err := s.db.NewSelect().
		Model((*models.FriendRequest)(nil)).
		Where("from_user_id = ? AND to_user_id = ? AND status = ?", from, to, models.RequestPending).
		Exists(ctx)
	if err != nil {
		return false, fail(err, "store.HasPendingRequest", nil)
	}
	return exists, nil
}

// ListPendingRequests returns requests addressed to userID that await an answer.
func (s *Store) ListPendingRequests(ctx context.Context, userID uuid.UUID) ([]models.FriendRequest, error) {
	var reqs []models.FriendRequest
	err := s.db.NewSelect().
		Model(&reqs).
		Where("to_user_id = ? AND status = ?", userID, models.RequestPending).
		OrderExpr("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, fail(err, "store.ListPendingRequests", nil)
	}
	return reqs, nil
}

func (s *Store) SetFriendRequestStatus(ctx context.Context, id uuid.UUID, status string) error {
	res, err := s.db.NewUpdate().
		Model((*models.FriendRequest)(nil)).
		Set("status = ?", status).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fail(err, "store.SetFriendRequestStatus", nil)
	}
	if affected(res) == 0 {
		return apperrors.ErrRequestNotFound
	}
	s.emit(ctx, models.CollectionFriendRequests, id.String(), feed.OpUpdated)
	return nil
}

// DeleteResolvedFriendRequestsBefore removes accepted and declined requests
// created before cutoff.
func (s *Store) DeleteResolvedFriendRequestsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.NewDelete().
		Model((*models.FriendRequest)(nil)).
		Where("status <> ?", models.RequestPending).
		Where("created_at < ?", cutoff).
		Exec(ctx)
	if err != nil {
		return 0, fail(err, "store.DeleteResolvedFriendRequestsBefore", nil)
	}

	n := affected(res)
	if n > 0 {
		s.emit(ctx, models.CollectionFriendRequests, "", feed.OpDeleted)
	}
	return n, nil
}

// AddFriendship writes one direction of a pair. An existing row is kept.
func (s *Store) AddFriendship(ctx context.Context, userID, friendID uuid.UUID) error {
	fs := &models.Friendship{
		ID:        uuid.New(),
		UserID:    userID,
		FriendID:  friendID,
		CreatedAt: now(),
	}
	res, err := s.db.NewInsert().
		Model(fs).
		On("CONFLICT (user_id, friend_id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return fail(err, "store.AddFriendship", nil)
	}
	if affected(res) > 0 {
		s.emit(ctx, models.CollectionFriendships, fs.ID.String(), feed.OpAdded)
	}
	return nil
}

func (s *Store) AreFriends(ctx context.Context, userID, friendID uuid.UUID) (bool, error) {
	exists, err := s.db.NewSelect().
		Model((*models.Friendship)(nil)).
		Where("user_id = ? AND friend_id = ?", userID, friendID).
		Exists(ctx)
	if err != nil {
		return false, fail(err, "store.AreFriends", nil)
	}
	return exists, nil
}

func (s *Store) ListFriendships(ctx context.Context, userID uuid.UUID) ([]models.Friendship, error) {
	var list []models.Friendship
	err := s.db.NewSelect().
		Model(&list).
		Where("user_id = ?", userID).
		OrderExpr("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fail(err, "store.ListFriendships", nil)
	}
	return list, nil
}

// DeleteFriendships removes both directions of a pair.
func (s *Store) DeleteFriendships(ctx context.Context, userID, friendID uuid.UUID) error {
	res, err := s.db.NewDelete().
		Model((*models.Friendship)(nil)).
		Where("(user_id = ? AND friend_id = ?) OR (user_id = ? AND friend_id = ?)", userID, friendID, friendID, userID).
		Exec(ctx)
	if err != nil {
		return fail(err, "store.DeleteFriendships", nil)
	}
	if affected(res) > 0 {
		s.emit(ctx, models.CollectionFriendships, userID.String(), feed.OpDeleted)
	}
	return nil
}
