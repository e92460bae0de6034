package parties

import (
	"context"

	"github.com/bananalabs-oss/lobby/internal/apperrors"
	"github.com/bananalabs-oss/lobby/internal/models"
	"github.com/bananalabs-oss/lobby/internal/store"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// maxAttempts bounds retries of a membership transaction that lost a version
// race against a concurrent writer.
const maxAttempts = 3

const adminSuffix = " (Admin)"

// Service owns party membership. Every write runs in one store transaction
// guarded by the party version; side effects are dispatched after commit.
type Service struct {
	store    *store.Store
	dispatch *Dispatcher
}

func NewService(st *store.Store) *Service {
	return &Service{store: st, dispatch: NewDispatcher(st)}
}

func (s *Service) withRetry(ctx context.Context, fn func(ctx context.Context, tx *store.Store) error) error {
	var err error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		err = s.store.RunInTx(ctx, fn)
		if !errors.Is(err, apperrors.ErrPartyConflict) {
			return err
		}
	}
	return err
}

func without(ids []uuid.UUID, drop uuid.UUID) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id != drop {
			out = append(out, id)
		}
	}
	return out
}

// Principal resolves userID's authority from the stored user document.
func (s *Service) Principal(ctx context.Context, userID uuid.UUID) (Principal, error) {
	user, err := s.store.GetUser(ctx, userID)
	if errors.Is(err, apperrors.ErrUserNotFound) {
		return Member(userID), nil
	}
	if err != nil {
		return Principal{}, err
	}
	return Principal{ID: userID, Admin: user.IsAdmin}, nil
}

func (s *Service) DisplayName(ctx context.Context, userID uuid.UUID) (string, error) {
	return s.dispatch.displayName(ctx, userID)
}

// Create starts a party with userID as leader and only member.
func (s *Service) Create(ctx context.Context, userID uuid.UUID) (*models.Party, error) {
	return s.store.AddParty(ctx, userID)
}

func (s *Service) Get(ctx context.Context, partyID uuid.UUID) (*models.Party, error) {
	return s.store.GetParty(ctx, partyID)
}

func (s *Service) Mine(ctx context.Context, userID uuid.UUID) (*models.Party, error) {
	return s.store.FindPartyByMember(ctx, userID)
}

func (s *Service) List(ctx context.Context) ([]models.Party, error) {
	return s.store.ListParties(ctx)
}

// Join adds userID to the party. Membership has set semantics, so a repeat
// join leaves the member list alone; the join message is posted either way.
// A vanished party is ErrPartyNotFound.
func (s *Service) Join(ctx context.Context, partyID, userID uuid.UUID, displayName string) error {
	err := s.withRetry(ctx, func(ctx context.Context, tx *store.Store) error {
		party, err := tx.GetParty(ctx, partyID)
		if err != nil {
			return err
		}

		added, err := tx.AddMember(ctx, partyID, userID)
		if err != nil || !added {
			return err
		}
		return tx.UpdateParty(ctx, party)
	})
	if err != nil {
		return err
	}

	return s.dispatch.Joined(ctx, partyID, displayName)
}

// Leave removes userID. The last member out deletes the party together with
// its messages; a departing leader hands off to the first remaining member.
// Leaving a party that no longer exists, or that you are not in, is a no-op.
func (s *Service) Leave(ctx context.Context, partyID, userID uuid.UUID, displayName string) error {
	var (
		left      bool
		deleted   bool
		newLeader uuid.UUID
	)
	err := s.withRetry(ctx, func(ctx context.Context, tx *store.Store) error {
		left, deleted, newLeader = false, false, uuid.Nil

		party, err := tx.GetParty(ctx, partyID)
		if errors.Is(err, apperrors.ErrPartyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if !party.HasMember(userID) {
			return nil
		}

		if _, err := tx.RemoveMember(ctx, partyID, userID); err != nil {
			return err
		}
		left = true

		remaining := without(party.MemberIDs, userID)
		if len(remaining) == 0 {
			deleted = true
			return tx.DeleteParty(ctx, partyID)
		}

		if party.LeaderID == userID {
			party.LeaderID = remaining[0]
			newLeader = remaining[0]
		}
		return tx.UpdateParty(ctx, party)
	})
	if err != nil || !left || deleted {
		return err
	}

	if err := s.dispatch.Left(ctx, partyID, displayName); err != nil {
		return err
	}
	if newLeader != uuid.Nil {
		return s.dispatch.PromotedMember(ctx, partyID, newLeader)
	}
	return nil
}

// Kick removes userID on behalf of the leader and notifies the kicked user.
func (s *Service) Kick(ctx context.Context, partyID, userID uuid.UUID, kickedBy Principal) error {
	if userID == kickedBy.ID {
		return apperrors.ErrCannotKickSelf
	}

	var kicked bool
	err := s.withRetry(ctx, func(ctx context.Context, tx *store.Store) error {
		kicked = false

		party, err := tx.GetParty(ctx, partyID)
		if errors.Is(err, apperrors.ErrPartyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := authorize(party, kickedBy, apperrors.ErrKickNotLeader); err != nil {
			return err
		}
		if !party.HasMember(userID) {
			return apperrors.ErrNotPartyMember
		}
		if userID == party.LeaderID {
			return apperrors.ErrCannotKickLeader
		}

		if _, err := tx.RemoveMember(ctx, partyID, userID); err != nil {
			return err
		}
		kicked = true
		return tx.UpdateParty(ctx, party)
	})
	if err != nil || !kicked {
		return err
	}

	return s.dispatch.Kicked(ctx, partyID, userID, kickedBy.ID)
}

// Promote hands leadership to newLeaderID, who must already be a member.
func (s *Service) Promote(ctx context.Context, partyID, newLeaderID uuid.UUID, currentLeader Principal) error {
	var promoted bool
	err := s.withRetry(ctx, func(ctx context.Context, tx *store.Store) error {
		promoted = false

		party, err := tx.GetParty(ctx, partyID)
		if errors.Is(err, apperrors.ErrPartyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := authorize(party, currentLeader, apperrors.ErrPromoteNotLeader); err != nil {
			return err
		}
		if !party.HasMember(newLeaderID) {
			return apperrors.ErrNotPartyMember
		}
		if party.LeaderID == newLeaderID {
			return nil
		}

		party.LeaderID = newLeaderID
		promoted = true
		return tx.UpdateParty(ctx, party)
	})
	if err != nil || !promoted {
		return err
	}

	return s.dispatch.PromotedMember(ctx, partyID, newLeaderID)
}

// AdminJoin puts an admin into any party, moving them out of their current
// one first.
func (s *Service) AdminJoin(ctx context.Context, partyID uuid.UUID, admin Principal, displayName string) error {
	if !admin.Admin {
		return apperrors.ErrNotAdmin
	}

	current, err := s.store.FindPartyByMember(ctx, admin.ID)
	switch {
	case errors.Is(err, apperrors.ErrNotInParty):
	case err != nil:
		return err
	case current.ID == partyID:
		return nil
	default:
		if _, err := s.store.GetParty(ctx, partyID); err != nil {
			return err
		}
		if err := s.Leave(ctx, current.ID, admin.ID, displayName); err != nil {
			return err
		}
	}

	return s.Join(ctx, partyID, admin.ID, displayName+adminSuffix)
}

// AdminPromoteSelf makes a member admin the leader without the leader check.
func (s *Service) AdminPromoteSelf(ctx context.Context, partyID uuid.UUID, admin Principal, displayName string) error {
	if !admin.Admin {
		return apperrors.ErrNotAdmin
	}

	var promoted bool
	err := s.withRetry(ctx, func(ctx context.Context, tx *store.Store) error {
		promoted = false

		party, err := tx.GetParty(ctx, partyID)
		if err != nil {
			return err
		}
		if !party.HasMember(admin.ID) {
			return apperrors.ErrNotPartyMember
		}
		if party.LeaderID == admin.ID {
			return nil
		}

		party.LeaderID = admin.ID
		promoted = true
		return tx.UpdateParty(ctx, party)
	})
	if err != nil || !promoted {
		return err
	}

	return s.dispatch.Promoted(ctx, partyID, displayName+adminSuffix)
}

// AdminTakeover joins the party if needed and then takes the lead.
func (s *Service) AdminTakeover(ctx context.Context, partyID uuid.UUID, admin Principal, displayName string) error {
	if err := s.AdminJoin(ctx, partyID, admin, displayName); err != nil {
		return err
	}
	return s.AdminPromoteSelf(ctx, partyID, admin, displayName)
}
