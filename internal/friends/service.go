// Package friends handles friend requests and the friend list.
package friends

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bananalabs-oss/lobby/internal/apperrors"
	"github.com/bananalabs-oss/lobby/internal/models"
	"github.com/bananalabs-oss/lobby/internal/store"
	"github.com/bananalabs-oss/lobby/internal/users"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

const DefaultRetention = 7 * 24 * time.Hour

// Friend is one entry of a friend list.
type Friend struct {
	User          models.User `json:"user"`
	DisplayStatus string      `json:"display_status"`
	Since         time.Time   `json:"since"`
}

type Service struct {
	store     *store.Store
	retention time.Duration
	now       func() time.Time
}

func NewService(st *store.Store, retention time.Duration) *Service {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &Service{
		store:     st,
		retention: retention,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// SendRequest asks the user called toUsername to be fromID's friend.
func (s *Service) SendRequest(ctx context.Context, fromID uuid.UUID, toUsername string) (*models.FriendRequest, error) {
	username := strings.ToLower(strings.TrimSpace(toUsername))
	if username == "" {
		return nil, apperrors.ErrUserNotFound
	}

	target, err := s.store.FindUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if target.ID == fromID {
		return nil, apperrors.ErrCannotAddSelf
	}
	if !target.Settings.AllowFriendRequests {
		return nil, apperrors.ErrRequestsDisabled
	}

	friends, err := s.store.AreFriends(ctx, fromID, target.ID)
	if err != nil {
		return nil, err
	}
	if friends {
		return nil, apperrors.ErrAlreadyFriends
	}

	pending, err := s.store.HasPendingRequest(ctx, fromID, target.ID)
	if err != nil {
		return nil, err
	}
	if pending {
		return nil, apperrors.ErrRequestAlreadySent
	}

	sender, err := s.store.GetUser(ctx, fromID)
	if err != nil {
		return nil, err
	}

	var req *models.FriendRequest
	err = s.store.RunInTx(ctx, func(ctx context.Context, tx *store.Store) error {
		var err error
		req, err = tx.AddFriendRequest(ctx, fromID, target.ID)
		if err != nil {
			return err
		}
		return tx.AddNotification(ctx, &models.Notification{
			UserID:              target.ID,
			Type:                models.NotificationFriendRequest,
			FromUserID:          uuid.NullUUID{UUID: sender.ID, Valid: true},
			FromUserDisplayName: sender.DisplayName,
			FromUserPhotoURL:    sender.PhotoURL,
			Message:             fmt.Sprintf("%s sent you a friend request", sender.DisplayName),
		})
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}

// pendingFor loads a pending request addressed to userID.
func (s *Service) pendingFor(ctx context.Context, requestID, userID uuid.UUID) (*models.FriendRequest, error) {
	req, err := s.store.GetFriendRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.ToUserID != userID || req.Status != models.RequestPending {
		return nil, apperrors.ErrRequestNotFound
	}
	return req, nil
}

// Accept makes the pair friends in both directions and tells the requester.
func (s *Service) Accept(ctx context.Context, requestID, userID uuid.UUID) error {
	req, err := s.pendingFor(ctx, requestID, userID)
	if err != nil {
		return err
	}
	accepter, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return err
	}

	return s.store.RunInTx(ctx, func(ctx context.Context, tx *store.Store) error {
		if err := tx.AddFriendship(ctx, userID, req.FromUserID); err != nil {
			return err
		}
		if err := tx.AddFriendship(ctx, req.FromUserID, userID); err != nil {
			return err
		}
		if err := tx.SetFriendRequestStatus(ctx, req.ID, models.RequestAccepted); err != nil {
			return err
		}
		return tx.AddNotification(ctx, &models.Notification{
			UserID:              req.FromUserID,
			Type:                models.NotificationFriendAccepted,
			FromUserID:          uuid.NullUUID{UUID: accepter.ID, Valid: true},
			FromUserDisplayName: accepter.DisplayName,
			FromUserPhotoURL:    accepter.PhotoURL,
			Message:             fmt.Sprintf("%s accepted your friend request", accepter.DisplayName),
		})
	})
}

func (s *Service) Decline(ctx context.Context, requestID, userID uuid.UUID) error {
	req, err := s.pendingFor(ctx, requestID, userID)
	if err != nil {
		return err
	}
	return s.store.SetFriendRequestStatus(ctx, req.ID, models.RequestDeclined)
}

// Remove ends a friendship from either side.
func (s *Service) Remove(ctx context.Context, userID, friendID uuid.UUID) error {
	return s.store.DeleteFriendships(ctx, userID, friendID)
}

// List returns userID's friends with their current display status. Friends
// whose user document is gone are skipped.
func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]Friend, error) {
	links, err := s.store.ListFriendships(ctx, userID)
	if err != nil {
		return nil, err
	}

	found := make([]*models.User, len(links))
	g, gctx := errgroup.WithContext(ctx)
	for i, link := range links {
		g.Go(func() error {
			user, err := s.store.GetUser(gctx, link.FriendID)
			if errors.Is(err, apperrors.ErrUserNotFound) {
				return nil
			}
			if err != nil {
				return err
			}
			found[i] = user
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	now := s.now()
	list := make([]Friend, 0, len(links))
	for i, user := range found {
		if user == nil {
			continue
		}
		list = append(list, Friend{
			User:          *user,
			DisplayStatus: users.DisplayStatus(user, now),
			Since:         links[i].CreatedAt,
		})
	}
	return list, nil
}

func (s *Service) Pending(ctx context.Context, userID uuid.UUID) ([]models.FriendRequest, error) {
	return s.store.ListPendingRequests(ctx, userID)
}

// CleanupResolved deletes answered requests older than the retention window.
func (s *Service) CleanupResolved(ctx context.Context, now time.Time) (int64, error) {
	return s.store.DeleteResolvedFriendRequestsBefore(ctx, now.Add(-s.retention))
}
