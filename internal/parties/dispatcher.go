package parties

import (
	"context"
	"fmt"

	"github.com/bananalabs-oss/lobby/internal/apperrors"
	"github.com/bananalabs-oss/lobby/internal/models"
	"github.com/bananalabs-oss/lobby/internal/store"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const unknownDisplayName = "Unknown"

// Dispatcher records the side effects of a party transition. It runs after
// the transition has committed; a failure here does not undo the transition.
type Dispatcher struct {
	store *store.Store
}

func NewDispatcher(st *store.Store) *Dispatcher {
	return &Dispatcher{store: st}
}

func systemText(kind, displayName string) string {
	switch kind {
	case models.SystemJoin:
		return fmt.Sprintf("%s joined the party", displayName)
	case models.SystemLeave:
		return fmt.Sprintf("%s left the party", displayName)
	case models.SystemPromote:
		return fmt.Sprintf("%s was promoted to party leader", displayName)
	case models.SystemKick:
		return fmt.Sprintf("%s was removed from the party", displayName)
	default:
		return displayName
	}
}

func (d *Dispatcher) system(ctx context.Context, partyID uuid.UUID, kind, displayName string) error {
	return d.store.AddPartyMessage(ctx, &models.PartyMessage{
		PartyID:           partyID,
		DisplayName:       models.SystemDisplayName,
		Message:           systemText(kind, displayName),
		IsSystemMessage:   true,
		SystemMessageType: kind,
	})
}

func (d *Dispatcher) displayName(ctx context.Context, userID uuid.UUID) (string, error) {
	user, err := d.store.GetUser(ctx, userID)
	if errors.Is(err, apperrors.ErrUserNotFound) {
		return unknownDisplayName, nil
	}
	if err != nil {
		return "", err
	}
	return user.DisplayName, nil
}

func (d *Dispatcher) Joined(ctx context.Context, partyID uuid.UUID, displayName string) error {
	return d.system(ctx, partyID, models.SystemJoin, displayName)
}

func (d *Dispatcher) Left(ctx context.Context, partyID uuid.UUID, displayName string) error {
	return d.system(ctx, partyID, models.SystemLeave, displayName)
}

func (d *Dispatcher) Promoted(ctx context.Context, partyID uuid.UUID, displayName string) error {
	return d.system(ctx, partyID, models.SystemPromote, displayName)
}

// PromotedMember is used when the caller only knows the new leader's id, as
// after a leader leaves.
func (d *Dispatcher) PromotedMember(ctx context.Context, partyID, leaderID uuid.UUID) error {
	name, err := d.displayName(ctx, leaderID)
	if err != nil {
		return err
	}
	return d.Promoted(ctx, partyID, name)
}

// Kicked posts the kick message and tells the kicked user.
func (d *Dispatcher) Kicked(ctx context.Context, partyID, userID, kickedBy uuid.UUID) error {
	name, err := d.displayName(ctx, userID)
	if err != nil {
		return err
	}
	if err := d.system(ctx, partyID, models.SystemKick, name); err != nil {
		return err
	}
	return d.store.AddNotification(ctx, &models.Notification{
		UserID:     userID,
		Type:       models.NotificationPartyKick,
		FromUserID: uuid.NullUUID{UUID: kickedBy, Valid: true},
		PartyID:    uuid.NullUUID{UUID: partyID, Valid: true},
		Message:    "You have been removed from the party",
	})
}

// Invited sends a party_invite notification from sender to recipient.
func (d *Dispatcher) Invited(ctx context.Context, partyID uuid.UUID, sender *models.User, recipient uuid.UUID) (*models.Notification, error) {
	n := &models.Notification{
		UserID:              recipient,
		Type:                models.NotificationPartyInvite,
		FromUserID:          uuid.NullUUID{UUID: sender.ID, Valid: true},
		FromUserDisplayName: sender.DisplayName,
		FromUserPhotoURL:    sender.PhotoURL,
		PartyID:             uuid.NullUUID{UUID: partyID, Valid: true},
		Message:             fmt.Sprintf("%s invited you to join their party", sender.DisplayName),
	}
	if err := d.store.AddNotification(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

// JoinRequested asks the party leader to let requester in.
func (d *Dispatcher) JoinRequested(ctx context.Context, party *models.Party, requester *models.User) (*models.Notification, error) {
	n := &models.Notification{
		UserID:              party.LeaderID,
		Type:                models.NotificationPartyJoinRequest,
		FromUserID:          uuid.NullUUID{UUID: requester.ID, Valid: true},
		FromUserDisplayName: requester.DisplayName,
		FromUserPhotoURL:    requester.PhotoURL,
		PartyID:             uuid.NullUUID{UUID: party.ID, Valid: true},
		Message:             fmt.Sprintf("%s wants to join your party", requester.DisplayName),
	}
	if err := d.store.AddNotification(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}
