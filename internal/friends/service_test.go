package friends_test

import (
	"context"
	"testing"
	"time"

	"github.com/bananalabs-oss/lobby/internal/apperrors"
	"github.com/bananalabs-oss/lobby/internal/friends"
	"github.com/bananalabs-oss/lobby/internal/models"
	"github.com/bananalabs-oss/lobby/internal/store/storetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFriendRequestLifecycle(t *testing.T) {
	st, _ := storetest.Open(t)
	svc := friends.NewService(st, 0)
	ctx := context.Background()
	ana := storetest.SeedUser(t, st, "Ana")
	bo := storetest.SeedUser(t, st, "Bo")

	req, err := svc.SendRequest(ctx, ana.ID, "  "+bo.Username+" ")
	require.NoError(t, err)
	assert.Equal(t, models.RequestPending, req.Status)

	notes, err := st.ListNotifications(ctx, bo.ID, true)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, models.NotificationFriendRequest, notes[0].Type)
	assert.Equal(t, "Ana sent you a friend request", notes[0].Message)

	_, err = svc.SendRequest(ctx, ana.ID, bo.Username)
	assert.ErrorIs(t, err, apperrors.ErrRequestAlreadySent)

	pending, err := svc.Pending(ctx, bo.ID)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	assert.ErrorIs(t, svc.Accept(ctx, req.ID, ana.ID), apperrors.ErrRequestNotFound, "only the recipient may accept")
	require.NoError(t, svc.Accept(ctx, req.ID, bo.ID))
	assert.ErrorIs(t, svc.Accept(ctx, req.ID, bo.ID), apperrors.ErrRequestNotFound)

	for _, pair := range [][2]*models.User{{ana, bo}, {bo, ana}} {
		list, err := svc.List(ctx, pair[0].ID)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, pair[1].ID, list[0].User.ID)
	}

	notes, err = st.ListNotifications(ctx, ana.ID, true)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, models.NotificationFriendAccepted, notes[0].Type)

	_, err = svc.SendRequest(ctx, ana.ID, bo.Username)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyFriends)

	require.NoError(t, svc.Remove(ctx, bo.ID, ana.ID))
	list, err := svc.List(ctx, ana.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestSendRequestRejections(t *testing.T) {
	st, _ := storetest.Open(t)
	svc := friends.NewService(st, 0)
	ctx := context.Background()
	ana := storetest.SeedUser(t, st, "Ana")
	closed := storetest.SeedUser(t, st, "Cy", func(u *models.User) { u.Settings.AllowFriendRequests = false })

	_, err := svc.SendRequest(ctx, ana.ID, "nobody")
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)

	_, err = svc.SendRequest(ctx, ana.ID, ana.Username)
	assert.ErrorIs(t, err, apperrors.ErrCannotAddSelf)

	_, err = svc.SendRequest(ctx, ana.ID, closed.Username)
	assert.ErrorIs(t, err, apperrors.ErrRequestsDisabled)

	pending, err := svc.Pending(ctx, closed.ID)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestDeclineAndCleanup(t *testing.T) {
	st, _ := storetest.Open(t)
	svc := friends.NewService(st, time.Hour)
	ctx := context.Background()
	ana := storetest.SeedUser(t, st, "Ana")
	bo := storetest.SeedUser(t, st, "Bo")
	cy := storetest.SeedUser(t, st, "Cy")

	declined, err := svc.SendRequest(ctx, ana.ID, bo.Username)
	require.NoError(t, err)
	open, err := svc.SendRequest(ctx, ana.ID, cy.Username)
	require.NoError(t, err)

	require.NoError(t, svc.Decline(ctx, declined.ID, bo.ID))
	got, err := st.GetFriendRequest(ctx, declined.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestDeclined, got.Status)

	n, err := svc.CleanupResolved(ctx, time.Now().UTC().Add(2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = st.GetFriendRequest(ctx, declined.ID)
	assert.ErrorIs(t, err, apperrors.ErrRequestNotFound)
	_, err = st.GetFriendRequest(ctx, open.ID)
	assert.NoError(t, err, "pending requests are never collected")
}
