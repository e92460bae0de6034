// Package notifications is the inbox side of the lobby: listing, reading and
// acting on party invites and join requests.
package notifications

import (
	"context"
	"time"

	"github.com/bananalabs-oss/lobby/internal/apperrors"
	"github.com/bananalabs-oss/lobby/internal/models"
	"github.com/bananalabs-oss/lobby/internal/parties"
	"github.com/bananalabs-oss/lobby/internal/store"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const DefaultRetention = 7 * 24 * time.Hour

type Service struct {
	store     *store.Store
	parties   *parties.Service
	retention time.Duration
}

func NewService(st *store.Store, ps *parties.Service, retention time.Duration) *Service {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &Service{store: st, parties: ps, retention: retention}
}

func (s *Service) List(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]models.Notification, error) {
	return s.store.ListNotifications(ctx, userID, unreadOnly)
}

// owned loads a notification addressed to userID. Someone else's
// notification is reported as missing.
func (s *Service) owned(ctx context.Context, id, userID uuid.UUID) (*models.Notification, error) {
	n, err := s.store.GetNotification(ctx, id)
	if err != nil {
		return nil, err
	}
	if n.UserID != userID {
		return nil, apperrors.ErrNotificationNotFound
	}
	return n, nil
}

// MarkRead flips read on one of userID's notifications. A notification that
// is already gone is not an error.
func (s *Service) MarkRead(ctx context.Context, id, userID uuid.UUID) error {
	_, err := s.owned(ctx, id, userID)
	if errors.Is(err, apperrors.ErrNotificationNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return s.store.MarkNotificationRead(ctx, id)
}

// Decline dismisses an invite or join request. Nobody is told.
func (s *Service) Decline(ctx context.Context, id, userID uuid.UUID) error {
	return s.MarkRead(ctx, id, userID)
}

// Accept acts on a party invite or join request addressed to userID and
// returns the party that was joined.
func (s *Service) Accept(ctx context.Context, id, userID uuid.UUID) (uuid.UUID, error) {
	n, err := s.owned(ctx, id, userID)
	if err != nil {
		return uuid.Nil, err
	}
	switch n.Type {
	case models.NotificationPartyInvite:
		return s.acceptInvite(ctx, n, userID)
	case models.NotificationPartyJoinRequest:
		return s.acceptJoinRequest(ctx, n, userID)
	default:
		return uuid.Nil, apperrors.ErrNotActionable
	}
}

func (s *Service) AcceptPartyInvite(ctx context.Context, id, userID uuid.UUID) (uuid.UUID, error) {
	n, err := s.owned(ctx, id, userID)
	if err != nil {
		return uuid.Nil, err
	}
	return s.acceptInvite(ctx, n, userID)
}

func (s *Service) AcceptPartyJoinRequest(ctx context.Context, id, leaderID uuid.UUID) (uuid.UUID, error) {
	n, err := s.owned(ctx, id, leaderID)
	if err != nil {
		return uuid.Nil, err
	}
	return s.acceptJoinRequest(ctx, n, leaderID)
}

// livingParty reads the party an invite points at. Unlike a plain join, a
// vanished party here is reported to the user.
func (s *Service) livingParty(ctx context.Context, partyID uuid.UUID) (*models.Party, error) {
	party, err := s.store.GetParty(ctx, partyID)
	if errors.Is(err, apperrors.ErrPartyNotFound) {
		return nil, apperrors.ErrPartyGone
	}
	return party, err
}

// inParty reports whether userID already belongs to some party.
func (s *Service) inParty(ctx context.Context, userID uuid.UUID) (bool, error) {
	_, err := s.store.FindPartyByMember(ctx, userID)
	if errors.Is(err, apperrors.ErrNotInParty) {
		return false, nil
	}
	return err == nil, err
}

func (s *Service) join(ctx context.Context, n *models.Notification, partyID, userID uuid.UUID) (uuid.UUID, error) {
	name, err := s.parties.DisplayName(ctx, userID)
	if err != nil {
		return uuid.Nil, err
	}
	err = s.parties.Join(ctx, partyID, userID, name)
	if errors.Is(err, apperrors.ErrPartyNotFound) {
		return uuid.Nil, apperrors.ErrPartyGone
	}
	if err != nil {
		return uuid.Nil, err
	}

	if err := s.store.MarkNotificationRead(ctx, n.ID); err != nil {
		return uuid.Nil, err
	}
	return partyID, nil
}

func (s *Service) acceptInvite(ctx context.Context, n *models.Notification, userID uuid.UUID) (uuid.UUID, error) {
	if n.Type != models.NotificationPartyInvite || !n.PartyID.Valid {
		return uuid.Nil, apperrors.ErrInvalidInvite
	}
	if _, err := s.livingParty(ctx, n.PartyID.UUID); err != nil {
		return uuid.Nil, err
	}

	busy, err := s.inParty(ctx, userID)
	if err != nil {
		return uuid.Nil, err
	}
	if busy {
		return uuid.Nil, apperrors.ErrAlreadyInParty
	}

	return s.join(ctx, n, n.PartyID.UUID, userID)
}

func (s *Service) acceptJoinRequest(ctx context.Context, n *models.Notification, leaderID uuid.UUID) (uuid.UUID, error) {
	if n.Type != models.NotificationPartyJoinRequest || !n.PartyID.Valid || !n.FromUserID.Valid {
		return uuid.Nil, apperrors.ErrInvalidJoinRequest
	}
	party, err := s.livingParty(ctx, n.PartyID.UUID)
	if err != nil {
		return uuid.Nil, err
	}
	if party.LeaderID != leaderID {
		return uuid.Nil, apperrors.ErrAcceptNotLeader
	}

	requester := n.FromUserID.UUID
	busy, err := s.inParty(ctx, requester)
	if err != nil {
		return uuid.Nil, err
	}
	if busy {
		return uuid.Nil, apperrors.ErrUserAlreadyInParty
	}

	return s.join(ctx, n, party.ID, requester)
}

// CleanupRead deletes read notifications older than the retention window.
func (s *Service) CleanupRead(ctx context.Context, now time.Time) (int64, error) {
	return s.store.DeleteReadNotificationsBefore(ctx, now.Add(-s.retention))
}
