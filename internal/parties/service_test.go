package parties_test

import (
	"context"
	"testing"

	"github.com/bananalabs-oss/lobby/internal/apperrors"
	"github.com/bananalabs-oss/lobby/internal/models"
	"github.com/bananalabs-oss/lobby/internal/parties"
	"github.com/bananalabs-oss/lobby/internal/store"
	"github.com/bananalabs-oss/lobby/internal/store/storetest"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	st  *store.Store
	svc *parties.Service
	ctx context.Context
}

func setup(t *testing.T) *fixture {
	t.Helper()
	st, _ := storetest.Open(t)
	return &fixture{st: st, svc: parties.NewService(st), ctx: context.Background()}
}

func (f *fixture) party(t *testing.T, id uuid.UUID) *models.Party {
	t.Helper()
	p, err := f.st.GetParty(f.ctx, id)
	require.NoError(t, err)
	return p
}

func (f *fixture) messages(t *testing.T, partyID uuid.UUID) []models.PartyMessage {
	t.Helper()
	msgs, err := f.st.ListPartyMessages(f.ctx, partyID, 100)
	require.NoError(t, err)
	return msgs
}

func systemTypes(msgs []models.PartyMessage) []string {
	var out []string
	for _, m := range msgs {
		if m.IsSystemMessage {
			out = append(out, m.SystemMessageType)
		}
	}
	return out
}

// partyOf creates a party led by the first user with the rest joined in order.
func (f *fixture) partyOf(t *testing.T, users ...*models.User) *models.Party {
	t.Helper()
	p, err := f.svc.Create(f.ctx, users[0].ID)
	require.NoError(t, err)
	for _, u := range users[1:] {
		require.NoError(t, f.svc.Join(f.ctx, p.ID, u.ID, u.DisplayName))
	}
	return f.party(t, p.ID)
}

func TestCreateAndJoin(t *testing.T) {
	f := setup(t)
	u1 := storetest.SeedUser(t, f.st, "Ana")
	u2 := storetest.SeedUser(t, f.st, "Bo")

	p, err := f.svc.Create(f.ctx, u1.ID)
	require.NoError(t, err)
	assert.Equal(t, u1.ID, p.LeaderID)
	assert.Equal(t, []uuid.UUID{u1.ID}, p.MemberIDs)

	require.NoError(t, f.svc.Join(f.ctx, p.ID, u2.ID, u2.DisplayName))

	got := f.party(t, p.ID)
	assert.Equal(t, []uuid.UUID{u1.ID, u2.ID}, got.MemberIDs)
	assert.Equal(t, u1.ID, got.LeaderID)

	msgs := f.messages(t, p.ID)
	require.Len(t, msgs, 1)
	assert.Equal(t, "Bo joined the party", msgs[0].Message)
	assert.Equal(t, models.SystemJoin, msgs[0].SystemMessageType)
	assert.Equal(t, models.SystemDisplayName, msgs[0].DisplayName)
	assert.False(t, msgs[0].UserID.Valid)
}

func TestJoinTwiceKeepsMembersUnique(t *testing.T) {
	f := setup(t)
	u1 := storetest.SeedUser(t, f.st, "Ana")
	u2 := storetest.SeedUser(t, f.st, "Bo")
	p := f.partyOf(t, u1, u2)

	require.NoError(t, f.svc.Join(f.ctx, p.ID, u2.ID, u2.DisplayName))

	got := f.party(t, p.ID)
	assert.Equal(t, []uuid.UUID{u1.ID, u2.ID}, got.MemberIDs)
	assert.Equal(t, p.Version, got.Version, "no-op join must not touch the party")
}

func TestJoinVanishedParty(t *testing.T) {
	f := setup(t)
	u := storetest.SeedUser(t, f.st, "Ana")

	err := f.svc.Join(f.ctx, uuid.New(), u.ID, u.DisplayName)
	assert.ErrorIs(t, err, apperrors.ErrPartyNotFound)
}

func TestJoinWhileInAnotherParty(t *testing.T) {
	f := setup(t)
	u1 := storetest.SeedUser(t, f.st, "Ana")
	u2 := storetest.SeedUser(t, f.st, "Bo")
	p1 := f.partyOf(t, u1)
	p2 := f.partyOf(t, u2)

	err := f.svc.Join(f.ctx, p1.ID, u2.ID, u2.DisplayName)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyInParty)
	assert.Empty(t, f.messages(t, p1.ID))
	assert.Equal(t, []uuid.UUID{u2.ID}, f.party(t, p2.ID).MemberIDs)
}

func TestLeaderLeavesHandsOff(t *testing.T) {
	f := setup(t)
	u1 := storetest.SeedUser(t, f.st, "Ana")
	u2 := storetest.SeedUser(t, f.st, "Bo")
	p := f.partyOf(t, u1, u2)

	require.NoError(t, f.svc.Leave(f.ctx, p.ID, u1.ID, u1.DisplayName))

	got := f.party(t, p.ID)
	assert.Equal(t, []uuid.UUID{u2.ID}, got.MemberIDs)
	assert.Equal(t, u2.ID, got.LeaderID)

	msgs := f.messages(t, p.ID)
	assert.Equal(t, []string{models.SystemJoin, models.SystemLeave, models.SystemPromote}, systemTypes(msgs))
	assert.Equal(t, "Ana left the party", msgs[1].Message)
	assert.Equal(t, "Bo was promoted to party leader", msgs[2].Message)
}

func TestLeaderLeavesPromotesFirstRemaining(t *testing.T) {
	f := setup(t)
	u1 := storetest.SeedUser(t, f.st, "Ana")
	u2 := storetest.SeedUser(t, f.st, "Bo")
	u3 := storetest.SeedUser(t, f.st, "Cy")
	p := f.partyOf(t, u1, u2, u3)

	require.NoError(t, f.svc.Leave(f.ctx, p.ID, u1.ID, u1.DisplayName))

	got := f.party(t, p.ID)
	assert.Equal(t, u2.ID, got.LeaderID)
	assert.Contains(t, got.MemberIDs, got.LeaderID)
}

func TestMemberLeavesKeepsLeader(t *testing.T) {
	f := setup(t)
	u1 := storetest.SeedUser(t, f.st, "Ana")
	u2 := storetest.SeedUser(t, f.st, "Bo")
	p := f.partyOf(t, u1, u2)

	require.NoError(t, f.svc.Leave(f.ctx, p.ID, u2.ID, u2.DisplayName))

	got := f.party(t, p.ID)
	assert.Equal(t, []uuid.UUID{u1.ID}, got.MemberIDs)
	assert.Equal(t, u1.ID, got.LeaderID)
	assert.Equal(t, []string{models.SystemJoin, models.SystemLeave}, systemTypes(f.messages(t, p.ID)))
}

func TestLastMemberLeavesDeletesParty(t *testing.T) {
	f := setup(t)
	u1 := storetest.SeedUser(t, f.st, "Ana")
	u2 := storetest.SeedUser(t, f.st, "Bo")
	p := f.partyOf(t, u1, u2)

	_, err := f.svc.SendMessage(f.ctx, p.ID, u1.ID, "gg")
	require.NoError(t, err)

	require.NoError(t, f.svc.Leave(f.ctx, p.ID, u2.ID, u2.DisplayName))
	require.NoError(t, f.svc.Leave(f.ctx, p.ID, u1.ID, u1.DisplayName))

	_, err = f.st.GetParty(f.ctx, p.ID)
	assert.ErrorIs(t, err, apperrors.ErrPartyNotFound)
	assert.Empty(t, f.messages(t, p.ID))

	_, err = f.svc.Mine(f.ctx, u1.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotInParty)
}

func TestLeaveIsIdempotent(t *testing.T) {
	f := setup(t)
	u1 := storetest.SeedUser(t, f.st, "Ana")
	u2 := storetest.SeedUser(t, f.st, "Bo")
	p := f.partyOf(t, u1)

	assert.NoError(t, f.svc.Leave(f.ctx, uuid.New(), u1.ID, u1.DisplayName))
	assert.NoError(t, f.svc.Leave(f.ctx, p.ID, u2.ID, u2.DisplayName))
	assert.Empty(t, f.messages(t, p.ID))
	assert.Equal(t, []uuid.UUID{u1.ID}, f.party(t, p.ID).MemberIDs)
}

func TestLeaderAlwaysMemberAcrossJoinsAndLeaves(t *testing.T) {
	f := setup(t)
	users := []*models.User{
		storetest.SeedUser(t, f.st, "Ana"),
		storetest.SeedUser(t, f.st, "Bo"),
		storetest.SeedUser(t, f.st, "Cy"),
	}
	p := f.partyOf(t, users...)

	steps := []struct {
		user *models.User
		join bool
	}{
		{users[0], false},
		{users[0], true},
		{users[1], false},
		{users[2], false},
		{users[1], true},
		{users[0], false},
	}
	for _, step := range steps {
		var err error
		if step.join {
			err = f.svc.Join(f.ctx, p.ID, step.user.ID, step.user.DisplayName)
		} else {
			err = f.svc.Leave(f.ctx, p.ID, step.user.ID, step.user.DisplayName)
		}
		require.NoError(t, err)

		got := f.party(t, p.ID)
		assert.Contains(t, got.MemberIDs, got.LeaderID)
	}
}

func TestKick(t *testing.T) {
	f := setup(t)
	u1 := storetest.SeedUser(t, f.st, "Ana")
	u2 := storetest.SeedUser(t, f.st, "Bo")
	p := f.partyOf(t, u1, u2)

	require.NoError(t, f.svc.Kick(f.ctx, p.ID, u2.ID, parties.Member(u1.ID)))

	got := f.party(t, p.ID)
	assert.Equal(t, []uuid.UUID{u1.ID}, got.MemberIDs)

	msgs := f.messages(t, p.ID)
	assert.Equal(t, []string{models.SystemJoin, models.SystemKick}, systemTypes(msgs))
	assert.Equal(t, "Bo was removed from the party", msgs[1].Message)

	notes, err := f.st.ListNotifications(f.ctx, u2.ID, true)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, models.NotificationPartyKick, notes[0].Type)
	assert.Equal(t, u2.ID, notes[0].UserID)
	assert.Equal(t, p.ID, notes[0].PartyID.UUID)
}

func TestKickByNonLeaderMutatesNothing(t *testing.T) {
	f := setup(t)
	u1 := storetest.SeedUser(t, f.st, "Ana")
	u2 := storetest.SeedUser(t, f.st, "Bo")
	u3 := storetest.SeedUser(t, f.st, "Cy")
	p := f.partyOf(t, u1, u2, u3)

	err := f.svc.Kick(f.ctx, p.ID, u3.ID, parties.Member(u2.ID))
	assert.ErrorIs(t, err, apperrors.ErrKickNotLeader)

	got := f.party(t, p.ID)
	assert.Equal(t, p.MemberIDs, got.MemberIDs)
	assert.Equal(t, p.Version, got.Version)
	assert.Len(t, f.messages(t, p.ID), 2)

	notes, err := f.st.ListNotifications(f.ctx, u3.ID, false)
	require.NoError(t, err)
	assert.Empty(t, notes)
}

func TestKickGuards(t *testing.T) {
	f := setup(t)
	u1 := storetest.SeedUser(t, f.st, "Ana")
	u2 := storetest.SeedUser(t, f.st, "Bo")
	admin := storetest.SeedUser(t, f.st, "Root", func(u *models.User) { u.IsAdmin = true })
	p := f.partyOf(t, u1, u2)

	assert.ErrorIs(t, f.svc.Kick(f.ctx, p.ID, u1.ID, parties.Member(u1.ID)), apperrors.ErrCannotKickSelf)
	assert.ErrorIs(t, f.svc.Kick(f.ctx, p.ID, uuid.New(), parties.Member(u1.ID)), apperrors.ErrNotPartyMember)

	root, err := f.svc.Principal(f.ctx, admin.ID)
	require.NoError(t, err)
	assert.True(t, root.Admin)
	assert.ErrorIs(t, f.svc.Kick(f.ctx, p.ID, u1.ID, root), apperrors.ErrCannotKickLeader)

	require.NoError(t, f.svc.Kick(f.ctx, p.ID, u2.ID, root))
	assert.Equal(t, []uuid.UUID{u1.ID}, f.party(t, p.ID).MemberIDs)

	assert.NoError(t, f.svc.Kick(f.ctx, uuid.New(), u2.ID, parties.Member(u1.ID)))
}

func TestPromote(t *testing.T) {
	f := setup(t)
	u1 := storetest.SeedUser(t, f.st, "Ana")
	u2 := storetest.SeedUser(t, f.st, "Bo")
	p := f.partyOf(t, u1, u2)

	err := f.svc.Promote(f.ctx, p.ID, u2.ID, parties.Member(u2.ID))
	assert.ErrorIs(t, err, apperrors.ErrPromoteNotLeader)
	assert.Equal(t, u1.ID, f.party(t, p.ID).LeaderID)

	err = f.svc.Promote(f.ctx, p.ID, uuid.New(), parties.Member(u1.ID))
	assert.ErrorIs(t, err, apperrors.ErrNotPartyMember)

	require.NoError(t, f.svc.Promote(f.ctx, p.ID, u2.ID, parties.Member(u1.ID)))
	assert.Equal(t, u2.ID, f.party(t, p.ID).LeaderID)

	msgs := f.messages(t, p.ID)
	assert.Equal(t, []string{models.SystemJoin, models.SystemPromote}, systemTypes(msgs))
	assert.Equal(t, "Bo was promoted to party leader", msgs[1].Message)

	// The old leader has lost authority.
	err = f.svc.Kick(f.ctx, p.ID, u2.ID, parties.Member(u1.ID))
	assert.ErrorIs(t, err, apperrors.ErrKickNotLeader)
}

func TestAdminTakeover(t *testing.T) {
	f := setup(t)
	u1 := storetest.SeedUser(t, f.st, "Ana")
	u2 := storetest.SeedUser(t, f.st, "Bo")
	admin := storetest.SeedUser(t, f.st, "Root", func(u *models.User) { u.IsAdmin = true })
	p := f.partyOf(t, u1)
	own := f.partyOf(t, admin, u2)

	root, err := f.svc.Principal(f.ctx, admin.ID)
	require.NoError(t, err)

	require.NoError(t, f.svc.AdminTakeover(f.ctx, p.ID, root, admin.DisplayName))

	got := f.party(t, p.ID)
	assert.Equal(t, admin.ID, got.LeaderID)
	assert.Equal(t, []uuid.UUID{u1.ID, admin.ID}, got.MemberIDs)

	msgs := f.messages(t, p.ID)
	require.Len(t, msgs, 2)
	assert.Equal(t, "Root (Admin) joined the party", msgs[0].Message)
	assert.Equal(t, "Root (Admin) was promoted to party leader", msgs[1].Message)

	// The admin's previous party was left behind in good order.
	prev := f.party(t, own.ID)
	assert.Equal(t, []uuid.UUID{u2.ID}, prev.MemberIDs)
	assert.Equal(t, u2.ID, prev.LeaderID)
}

func TestAdminOperationsRequireAdmin(t *testing.T) {
	f := setup(t)
	u1 := storetest.SeedUser(t, f.st, "Ana")
	u2 := storetest.SeedUser(t, f.st, "Bo")
	p := f.partyOf(t, u1)

	assert.ErrorIs(t, f.svc.AdminJoin(f.ctx, p.ID, parties.Member(u2.ID), u2.DisplayName), apperrors.ErrNotAdmin)
	assert.ErrorIs(t, f.svc.AdminPromoteSelf(f.ctx, p.ID, parties.Member(u2.ID), u2.DisplayName), apperrors.ErrNotAdmin)
	assert.Equal(t, []uuid.UUID{u1.ID}, f.party(t, p.ID).MemberIDs)
}

func TestInvite(t *testing.T) {
	f := setup(t)
	u1 := storetest.SeedUser(t, f.st, "Ana")
	u2 := storetest.SeedUser(t, f.st, "Bo")

	n, err := f.svc.Invite(f.ctx, u1.ID, u2.ID)
	require.NoError(t, err)
	assert.Equal(t, models.NotificationPartyInvite, n.Type)
	assert.Equal(t, u2.ID, n.UserID)
	assert.Equal(t, "Ana invited you to join their party", n.Message)

	mine, err := f.svc.Mine(f.ctx, u1.ID)
	require.NoError(t, err, "inviting without a party creates one")
	assert.Equal(t, mine.ID, n.PartyID.UUID)

	require.NoError(t, f.svc.Join(f.ctx, mine.ID, u2.ID, u2.DisplayName))
	_, err = f.svc.Invite(f.ctx, u1.ID, u2.ID)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyInYourParty)
}

func TestInviteRejections(t *testing.T) {
	f := setup(t)
	u1 := storetest.SeedUser(t, f.st, "Ana")
	busy := storetest.SeedUser(t, f.st, "Bo")
	shy := storetest.SeedUser(t, f.st, "Cy", func(u *models.User) { u.Settings.AllowPartyInvites = false })
	f.partyOf(t, busy)

	_, err := f.svc.Invite(f.ctx, u1.ID, u1.ID)
	assert.ErrorIs(t, err, apperrors.ErrCannotInviteSelf)

	_, err = f.svc.Invite(f.ctx, u1.ID, shy.ID)
	assert.ErrorIs(t, err, apperrors.ErrInvitesDisabled)

	_, err = f.svc.Invite(f.ctx, u1.ID, busy.ID)
	assert.ErrorIs(t, err, apperrors.ErrFriendInAnotherParty)

	_, err = f.svc.Invite(f.ctx, u1.ID, uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)

	_, err = f.svc.Mine(f.ctx, u1.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotInParty, "failed invites must not create a party")
}

func TestRequestToJoin(t *testing.T) {
	f := setup(t)
	u1 := storetest.SeedUser(t, f.st, "Ana")
	u2 := storetest.SeedUser(t, f.st, "Bo")
	p := f.partyOf(t, u1)

	n, err := f.svc.RequestToJoinFriend(f.ctx, u1.ID, u2.ID)
	require.NoError(t, err)
	assert.Equal(t, models.NotificationPartyJoinRequest, n.Type)
	assert.Equal(t, u1.ID, n.UserID)
	assert.Equal(t, u2.ID, n.FromUserID.UUID)
	assert.Equal(t, p.ID, n.PartyID.UUID)
	assert.Equal(t, "Bo wants to join your party", n.Message)

	_, err = f.svc.RequestToJoin(f.ctx, uuid.New(), u2.ID)
	assert.ErrorIs(t, err, apperrors.ErrPartyGone)

	_, err = f.svc.RequestToJoinFriend(f.ctx, u2.ID, u1.ID)
	assert.ErrorIs(t, err, apperrors.ErrFriendNotInParty)

	_, err = f.svc.RequestToJoin(f.ctx, p.ID, u1.ID)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyMember)
}

func TestChat(t *testing.T) {
	f := setup(t)
	u1 := storetest.SeedUser(t, f.st, "Ana")
	outsider := storetest.SeedUser(t, f.st, "Bo")
	p := f.partyOf(t, u1)

	msg, err := f.svc.SendMessage(f.ctx, p.ID, u1.ID, "  ready?  ")
	require.NoError(t, err)
	assert.Equal(t, "ready?", msg.Message)
	assert.Equal(t, "Ana", msg.DisplayName)
	assert.Equal(t, u1.ID, msg.UserID.UUID)

	_, err = f.svc.SendMessage(f.ctx, p.ID, u1.ID, "   ")
	assert.ErrorIs(t, err, apperrors.ErrEmptyMessage)

	_, err = f.svc.SendMessage(f.ctx, p.ID, outsider.ID, "hi")
	assert.ErrorIs(t, err, apperrors.ErrNotInParty)

	_, err = f.svc.Messages(f.ctx, p.ID, outsider.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotInParty)

	msgs, err := f.svc.Messages(f.ctx, p.ID, u1.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.False(t, msgs[0].IsSystemMessage)
}
