package store

import (
	"context"

	"github.com/bananalabs-oss/lobby/internal/feed"
	"github.com/bananalabs-oss/lobby/internal/models"
	"github.com/google/uuid"
)

// AddPartyMessage assigns a time-ordered id and timestamp when unset.
func (s *Store) AddPartyMessage(ctx context.Context, msg *models.PartyMessage) error {
	if msg.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return fail(err, "store.AddPartyMessage.NewID", nil)
		}
		msg.ID = id
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = now()
	}

	if _, err := s.db.NewInsert().Model(msg).Exec(ctx); err != nil {
		return fail(err, "store.AddPartyMessage", nil)
	}
	s.emit(ctx, models.CollectionPartyMessages, msg.ID.String(), feed.OpAdded)
	return nil
}

// ListPartyMessages returns the newest limit messages, oldest first.
func (s *Store) ListPartyMessages(ctx context.Context, partyID uuid.UUID, limit int) ([]models.PartyMessage, error) {
	var msgs []models.PartyMessage
	err := s.db.NewSelect().
		Model(&msgs).
		Where("party_id = ?", partyID).
		OrderExpr("created_at DESC, id DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fail(err, "store.ListPartyMessages", nil)
	}

	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

func (s *Store) DeletePartyMessages(ctx context.Context, partyID uuid.UUID) (int64, error) {
	res, err := s.db.NewDelete().
		Model((*models.PartyMessage)(nil)).
		Where("party_id = ?", partyID).
		Exec(ctx)
	if err != nil {
		return 0, fail(err, "store.DeletePartyMessages", nil)
	}

	n := affected(res)
	if n > 0 {
		s.emit(ctx, models.CollectionPartyMessages, partyID.String(), feed.OpDeleted)
	}
	return n, nil
}
