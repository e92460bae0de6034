package store

import (
	"context"

	"github.com/bananalabs-oss/lobby/internal/apperrors"
	"github.com/bananalabs-oss/lobby/internal/feed"
	"github.com/bananalabs-oss/lobby/internal/models"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

func orderMembers(q *bun.SelectQuery) *bun.SelectQuery {
	return q.OrderExpr("pm.joined_at ASC, pm.account_id ASC")
}

func fillMemberIDs(p *models.Party) {
	p.MemberIDs = make([]uuid.UUID, len(p.Members))
	for i, m := range p.Members {
		p.MemberIDs[i] = m.AccountID
	}
}

func (s *Store) GetParty(ctx context.Context, partyID uuid.UUID) (*models.Party, error) {
	party := new(models.Party)
	err := s.db.NewSelect().
		Model(party).
		Relation("Members", orderMembers).
		Where("p.id = ?", partyID).
		Scan(ctx)
	if err != nil {
		return nil, fail(err, "store.GetParty", apperrors.ErrPartyNotFound)
	}
	fillMemberIDs(party)
	return party, nil
}

// FindPartyByMember answers "which party is this user in".
func (s *Store) FindPartyByMember(ctx context.Context, userID uuid.UUID) (*models.Party, error) {
	member := new(models.PartyMember)
	err := s.db.NewSelect().
		Model(member).
		Where("account_id = ?", userID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, fail(err, "store.FindPartyByMember", apperrors.ErrNotInParty)
	}

	party, err := s.GetParty(ctx, member.PartyID)
	if errors.Is(err, apperrors.ErrPartyNotFound) {
		return nil, apperrors.ErrNotInParty
	}
	return party, err
}

func (s *Store) ListParties(ctx context.Context) ([]models.Party, error) {
	var parties []models.Party
	err := s.db.NewSelect().
		Model(&parties).
		Relation("Members", orderMembers).
		OrderExpr("p.created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fail(err, "store.ListParties", nil)
	}
	for i := range parties {
		fillMemberIDs(&parties[i])
	}
	return parties, nil
}

// AddParty creates a party led by leaderID with leaderID as its only member.
func (s *Store) AddParty(ctx context.Context, leaderID uuid.UUID) (*models.Party, error) {
	ts := now()
	party := &models.Party{
		ID:        uuid.New(),
		LeaderID:  leaderID,
		Version:   1,
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	member := models.PartyMember{
		PartyID:   party.ID,
		AccountID: leaderID,
		JoinedAt:  ts,
	}

	err := s.RunInTx(ctx, func(ctx context.Context, tx *Store) error {
		if _, err := tx.db.NewInsert().Model(party).Exec(ctx); err != nil {
			return fail(err, "store.AddParty.InsertParty", nil)
		}
		if _, err := tx.db.NewInsert().Model(&member).Exec(ctx); err != nil {
			if isUniqueViolation(err) {
				return apperrors.ErrAlreadyInParty
			}
			return fail(err, "store.AddParty.InsertMember", nil)
		}
		tx.emit(ctx, models.CollectionParties, party.ID.String(), feed.OpAdded)
		return nil
	})
	if err != nil {
		return nil, err
	}

	party.Members = []models.PartyMember{member}
	party.MemberIDs = []uuid.UUID{leaderID}
	return party, nil
}

// AddMember is the union-add primitive: it reports false when userID was
// already a member. A user who is in another party yields ErrAlreadyInParty.
func (s *Store) AddMember(ctx context.Context, partyID, userID uuid.UUID) (bool, error) {
	member := &models.PartyMember{
		PartyID:   partyID,
		AccountID: userID,
		JoinedAt:  now(),
	}
	res, err := s.db.NewInsert().
		Model(member).
		On("CONFLICT (party_id, account_id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			return false, apperrors.ErrAlreadyInParty
		}
		return false, fail(err, "store.AddMember", nil)
	}
	return affected(res) > 0, nil
}

// RemoveMember is the array-remove primitive.
func (s *Store) RemoveMember(ctx context.Context, partyID, userID uuid.UUID) (bool, error) {
	res, err := s.db.NewDelete().
		Model((*models.PartyMember)(nil)).
		Where("party_id = ? AND account_id = ?", partyID, userID).
		Exec(ctx)
	if err != nil {
		return false, fail(err, "store.RemoveMember", nil)
	}
	return affected(res) > 0, nil
}

// UpdateParty writes leader_id and bumps the version, but only if the stored
// version still equals party.Version. A stale read yields ErrPartyConflict.
func (s *Store) UpdateParty(ctx context.Context, party *models.Party) error {
	ts := now()
	res, err := s.db.NewUpdate().
		Model((*models.Party)(nil)).
		Set("leader_id = ?", party.LeaderID).
		Set("version = version + 1").
		Set("updated_at = ?", ts).
		Where("id = ?", party.ID).
		Where("version = ?", party.Version).
		Exec(ctx)
	if err != nil {
		return fail(err, "store.UpdateParty", nil)
	}
	if affected(res) == 0 {
		return apperrors.ErrPartyConflict
	}

	party.Version++
	party.UpdatedAt = ts
	s.emit(ctx, models.CollectionParties, party.ID.String(), feed.OpUpdated)
	return nil
}

// DeleteParty removes the party, its member rows and its chat history.
func (s *Store) DeleteParty(ctx context.Context, partyID uuid.UUID) error {
	return s.RunInTx(ctx, func(ctx context.Context, tx *Store) error {
		if _, err := tx.db.NewDelete().
			Model((*models.PartyMember)(nil)).
			Where("party_id = ?", partyID).
			Exec(ctx); err != nil {
			return fail(err, "store.DeleteParty.Members", nil)
		}

		if _, err := tx.DeletePartyMessages(ctx, partyID); err != nil {
			return err
		}

		if _, err := tx.db.NewDelete().
			Model((*models.Party)(nil)).
			Where("id = ?", partyID).
			Exec(ctx); err != nil {
			return fail(err, "store.DeleteParty.Party", nil)
		}

		tx.emit(ctx, models.CollectionParties, partyID.String(), feed.OpDeleted)
		return nil
	})
}
