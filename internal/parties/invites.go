package parties

import (
	"context"

	"github.com/bananalabs-oss/lobby/internal/apperrors"
	"github.com/bananalabs-oss/lobby/internal/models"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Invite sends friendID a party invite from actorID, creating a party for
// actorID first if they are not in one.
func (s *Service) Invite(ctx context.Context, actorID, friendID uuid.UUID) (*models.Notification, error) {
	if actorID == friendID {
		return nil, apperrors.ErrCannotInviteSelf
	}

	sender, err := s.store.GetUser(ctx, actorID)
	if err != nil {
		return nil, err
	}
	friend, err := s.store.GetUser(ctx, friendID)
	if err != nil {
		return nil, err
	}
	if !friend.Settings.AllowPartyInvites {
		return nil, apperrors.ErrInvitesDisabled
	}

	current, err := s.store.FindPartyByMember(ctx, actorID)
	if err != nil && !errors.Is(err, apperrors.ErrNotInParty) {
		return nil, err
	}
	if current != nil && current.HasMember(friendID) {
		return nil, apperrors.ErrAlreadyInYourParty
	}

	_, err = s.store.FindPartyByMember(ctx, friendID)
	switch {
	case err == nil:
		return nil, apperrors.ErrFriendInAnotherParty
	case !errors.Is(err, apperrors.ErrNotInParty):
		return nil, err
	}

	if current == nil {
		current, err = s.Create(ctx, actorID)
		if err != nil {
			return nil, err
		}
	}

	return s.dispatch.Invited(ctx, current.ID, sender, friendID)
}

// RequestToJoin asks the leader of partyID to let requesterID in.
func (s *Service) RequestToJoin(ctx context.Context, partyID, requesterID uuid.UUID) (*models.Notification, error) {
	party, err := s.store.GetParty(ctx, partyID)
	if errors.Is(err, apperrors.ErrPartyNotFound) {
		return nil, apperrors.ErrPartyGone
	}
	if err != nil {
		return nil, err
	}
	return s.requestJoin(ctx, party, requesterID)
}

// RequestToJoinFriend asks to join whatever party friendID is in.
func (s *Service) RequestToJoinFriend(ctx context.Context, friendID, requesterID uuid.UUID) (*models.Notification, error) {
	party, err := s.store.FindPartyByMember(ctx, friendID)
	if errors.Is(err, apperrors.ErrNotInParty) {
		return nil, apperrors.ErrFriendNotInParty
	}
	if err != nil {
		return nil, err
	}
	return s.requestJoin(ctx, party, requesterID)
}

func (s *Service) requestJoin(ctx context.Context, party *models.Party, requesterID uuid.UUID) (*models.Notification, error) {
	if party.HasMember(requesterID) {
		return nil, apperrors.ErrAlreadyMember
	}
	requester, err := s.store.GetUser(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	return s.dispatch.JoinRequested(ctx, party, requester)
}
