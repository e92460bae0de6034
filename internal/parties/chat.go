package parties

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/bananalabs-oss/lobby/internal/apperrors"
	"github.com/bananalabs-oss/lobby/internal/models"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const (
	maxMessageLength = 500
	historyLimit     = 50
)

func (s *Service) requireMember(ctx context.Context, partyID, userID uuid.UUID) error {
	party, err := s.store.GetParty(ctx, partyID)
	if errors.Is(err, apperrors.ErrPartyNotFound) {
		return apperrors.ErrNotInParty
	}
	if err != nil {
		return err
	}
	if !party.HasMember(userID) {
		return apperrors.ErrNotInParty
	}
	return nil
}

// SendMessage posts a member's chat line.
func (s *Service) SendMessage(ctx context.Context, partyID, senderID uuid.UUID, text string) (*models.PartyMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperrors.ErrEmptyMessage
	}
	if utf8.RuneCountInString(text) > maxMessageLength {
		return nil, apperrors.ErrMessageTooLong
	}
	if err := s.requireMember(ctx, partyID, senderID); err != nil {
		return nil, err
	}

	name, err := s.dispatch.displayName(ctx, senderID)
	if err != nil {
		return nil, err
	}

	msg := &models.PartyMessage{
		PartyID:     partyID,
		UserID:      uuid.NullUUID{UUID: senderID, Valid: true},
		DisplayName: name,
		Message:     text,
	}
	if err := s.store.AddPartyMessage(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// Messages returns the recent chat history, oldest first.
func (s *Service) Messages(ctx context.Context, partyID, userID uuid.UUID) ([]models.PartyMessage, error) {
	if err := s.requireMember(ctx, partyID, userID); err != nil {
		return nil, err
	}
	return s.store.ListPartyMessages(ctx, partyID, historyLimit)
}
